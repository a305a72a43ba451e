package dom

import (
	"sort"
)

// FindNodeAt returns the innermost node whose range contains offset. It returns
// nil when offset is outside the text or falls in a gap no node covers.
func (d *Document) FindNodeAt(offset int) Node {
	if !d.rng.Contains(offset) {
		return nil
	}
	return findIn(d.nodes, offset)
}

// FindNodeAt searches the subtree of e, e included.
func (e *Element) FindNodeAt(offset int) Node {
	if !e.rng.Contains(offset) {
		return nil
	}
	if found := findIn(e.nodes, offset); found != nil {
		return found
	}
	return e
}

func findIn(nodes []Node, offset int) Node {
	// last child starting at or before offset
	i := sort.Search(len(nodes), func(i int) bool {
		return nodes[i].Range().Start > offset
	}) - 1
	if i < 0 {
		return nil
	}

	child := nodes[i]
	if !child.Range().Contains(offset) {
		return nil
	}
	if el, ok := child.(*Element); ok {
		return el.FindNodeAt(offset)
	}
	return child
}

// Walk visits n and its descendants in document order. Returning false from fn skips the children of that node.
func Walk(n Node, fn func(Node) bool) {
	if !fn(n) {
		return
	}
	if p, ok := n.(Parent); ok {
		for _, c := range p.Children() {
			Walk(c, fn)
		}
	}
}

// FindNode returns every descendant of the document matching pred, in document order.
func (d *Document) FindNode(pred func(Node) bool) []Node {
	var out []Node
	for _, c := range d.nodes {
		Walk(c, func(n Node) bool {
			if pred(n) {
				out = append(out, n)
			}
			return true
		})
	}
	return out
}

// Elements returns every element of the document in document order.
func (d *Document) Elements() []*Element {
	var out []*Element
	for _, n := range d.FindNode(func(n Node) bool { return n.Kind() == KindElement }) {
		out = append(out, n.(*Element))
	}
	return out
}
