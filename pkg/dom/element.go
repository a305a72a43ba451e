package dom

import (
	"github.com/walteh/rwxml/pkg/position"
)

// Attr is one attribute of an open tag. Value has its entity references decoded.
// ValueRange excludes the quotes and is position.Unset for attributes written
// without a value.
type Attr struct {
	Name       string
	Value      string
	NameRange  position.Range
	ValueRange position.Range
}

type Element struct {
	node
	children

	Name string
	// NameRange covers the tag name inside the open tag.
	NameRange    position.Range
	OpenTagRange position.Range
	// CloseTagRange and CloseNameRange are unset for self closing and implicitly closed elements.
	CloseTagRange  position.Range
	CloseNameRange position.Range
	SelfClosing    bool

	attrs []*Attr
}

func (e *Element) Kind() NodeKind { return KindElement }

func (e *Element) Attrs() []*Attr { return e.attrs }

// Attr returns the first attribute called name.
func (e *Element) Attr(name string) (*Attr, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a, true
		}
	}
	return nil, false
}

func (e *Element) AttrValue(name string) string {
	if a, ok := e.Attr(name); ok {
		return a.Value
	}
	return ""
}

// ParentElement returns the enclosing element, nil for top level elements.
func (e *Element) ParentElement() *Element {
	p, _ := e.parent.(*Element)
	return p
}

func (e *Element) ChildElements() []*Element {
	var out []*Element
	for _, c := range e.nodes {
		if el, ok := c.(*Element); ok {
			out = append(out, el)
		}
	}
	return out
}

// Child returns the first child element called name.
func (e *Element) Child(name string) *Element {
	for _, c := range e.nodes {
		if el, ok := c.(*Element); ok && el.Name == name {
			return el
		}
	}
	return nil
}

// IsLeaf reports whether the element has no child elements.
func (e *Element) IsLeaf() bool {
	for _, c := range e.nodes {
		if c.Kind() == KindElement {
			return false
		}
	}
	return true
}

// Content returns the data of the first text child of a leaf element.
func (e *Element) Content() (string, bool) {
	if !e.IsLeaf() {
		return "", false
	}
	for _, c := range e.nodes {
		if t, ok := c.(*Text); ok {
			return t.data, true
		}
	}
	return "", false
}

func (e *Element) OpenTag() string {
	return e.OpenTagRange.Slice(e.doc.text)
}

func (e *Element) CloseTag() string {
	return e.CloseTagRange.Slice(e.doc.text)
}

// IndexInParent is the position of e among the element children of its parent.
func (e *Element) IndexInParent() int {
	idx := 0
	for n := e.prev; n != nil; n = n.PrevSibling() {
		if n.Kind() == KindElement {
			idx++
		}
	}
	return idx
}
