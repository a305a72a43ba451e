// Package dom holds the range annotated document tree built from the xmlparse event stream.
package dom

import (
	"github.com/walteh/rwxml/pkg/position"
)

// NodeKind tags the variant of a Node.
type NodeKind int

const (
	KindDocument NodeKind = iota
	KindElement
	KindText
	KindComment
	KindProcInst
)

func (k NodeKind) String() string {
	switch k {
	case KindDocument:
		return "Document"
	case KindElement:
		return "Element"
	case KindText:
		return "Text"
	case KindComment:
		return "Comment"
	case KindProcInst:
		return "ProcInst"
	default:
		return "Unknown"
	}
}

// Node is one of *Document, *Element, *Text, *Comment or *ProcInst.
type Node interface {
	Kind() NodeKind
	Range() position.Range
	// Parent is nil for the document.
	Parent() Parent
	PrevSibling() Node
	NextSibling() Node
	Document() *Document
	// String returns the exact source text covered by the node.
	String() string

	base() *node
}

// Parent is a node that owns children: *Document or *Element.
type Parent interface {
	Node
	Children() []Node
	appendChild(n Node)
}

type node struct {
	doc    *Document
	parent Parent
	prev   Node
	next   Node
	rng    position.Range
}

func (n *node) base() *node { return n }

func (n *node) Range() position.Range { return n.rng }

func (n *node) Parent() Parent { return n.parent }

func (n *node) PrevSibling() Node { return n.prev }

func (n *node) NextSibling() Node { return n.next }

func (n *node) Document() *Document { return n.doc }

func (n *node) String() string {
	if n.doc == nil {
		return ""
	}
	return n.rng.Slice(n.doc.text)
}

type children struct {
	nodes []Node
}

func (c *children) Children() []Node { return c.nodes }

func (c *children) appendChild(n Node) {
	if len(c.nodes) > 0 {
		last := c.nodes[len(c.nodes)-1]
		last.base().next = n
		n.base().prev = last
	}
	c.nodes = append(c.nodes, n)
}

// Document is the root of a parsed tree. It owns the source text, which never changes after Parse.
type Document struct {
	node
	children
	uri  string
	text string

	strays []position.Range
}

func (d *Document) Kind() NodeKind { return KindDocument }

func (d *Document) URI() string { return d.uri }

func (d *Document) Text() string { return d.text }

func (d *Document) String() string { return d.text }

// StrayCloseTags returns the ranges of close tags that matched no open element.
// They belong to no node.
func (d *Document) StrayCloseTags() []position.Range {
	return append([]position.Range(nil), d.strays...)
}

// Root returns the first top level element, if any.
func (d *Document) Root() *Element {
	for _, c := range d.nodes {
		if el, ok := c.(*Element); ok {
			return el
		}
	}
	return nil
}

// Text is character data. Adjacent text runs and CDATA sections share one node.
type Text struct {
	node
	data string
	// CDATA is set when the node starts with a CDATA section.
	CDATA bool
}

func (t *Text) Kind() NodeKind { return KindText }

// Data returns the character data with entity references decoded and CDATA
// sections unwrapped. String returns the source text.
func (t *Text) Data() string { return t.data }

// Comment holds the payload of one or more adjacent comments.
type Comment struct {
	node
	data string
}

func (c *Comment) Kind() NodeKind { return KindComment }

func (c *Comment) Data() string { return c.data }

// ProcInst is a processing instruction, the XML declaration, or a <!...> declaration (Target starting with '!').
type ProcInst struct {
	node
	Target string
	data   string
}

func (p *ProcInst) Kind() NodeKind { return KindProcInst }

func (p *ProcInst) Data() string { return p.data }
