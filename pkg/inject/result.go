package inject

import (
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/pkg/catalog"
	"github.com/walteh/rwxml/pkg/defpath"
	"github.com/walteh/rwxml/pkg/dom"
)

// ErrPathNotFound is returned by Lookup for paths addressing no element.
var ErrPathNotFound = errors.Base("def path not found")

// Result is the typed view of one document. It is read only once Inject returns.
type Result struct {
	Document *dom.Document
	// Defs are the promoted top level definitions in document order.
	Defs []*Binding

	cat      *catalog.Catalog
	opts     Options
	bindings map[*dom.Element]*Binding
	order    []*Binding
}

func (r *Result) Catalog() *catalog.Catalog { return r.cat }

func (r *Result) Options() Options { return r.opts }

// Binding returns the binding of el, if it was typed.
func (r *Result) Binding(el *dom.Element) (*Binding, bool) {
	b, ok := r.bindings[el]
	return b, ok
}

// Bindings returns every binding in document order.
func (r *Result) Bindings() []*Binding {
	return append([]*Binding(nil), r.order...)
}

// BindingAt returns the binding of the innermost bound element containing offset.
func (r *Result) BindingAt(offset int) *Binding {
	n := r.Document.FindNodeAt(offset)
	if n == nil {
		return nil
	}
	el, ok := n.(*dom.Element)
	if !ok {
		el, _ = n.Parent().(*dom.Element)
	}
	for ; el != nil; el = el.ParentElement() {
		if b, ok := r.bindings[el]; ok {
			return b
		}
	}
	return nil
}

// PathOf returns the def path of any element below the root element, bound or not.
func (r *Result) PathOf(el *dom.Element) defpath.Path {
	if b, ok := r.bindings[el]; ok {
		return b.Path()
	}
	return r.computePath(el)
}

// computePath names top level elements by def name, then by Name attribute, then
// by index. Children of containers are addressed by index, everything else by tag.
func (r *Result) computePath(el *dom.Element) defpath.Path {
	parent := el.ParentElement()
	if parent == nil {
		return defpath.New(el.Name)
	}
	if parent.ParentElement() == nil {
		return r.topLevelPath(el)
	}

	p := r.PathOf(parent)
	if pb, ok := r.bindings[parent]; ok && isContainer(pb.Type) {
		return p.Index(el.IndexInParent())
	}
	return p.Field(el.Name)
}

func (r *Result) topLevelPath(el *dom.Element) defpath.Path {
	p := defpath.New(el.Name)
	if name := defName(el, r.opts.DefNameTag); name != "" {
		return p.Field(name)
	}
	if name := el.AttrValue(NameAttr); name != "" {
		return p.Field(name)
	}
	return p.Index(el.IndexInParent())
}

// Lookup resolves a def path written by Binding.Path.
func (r *Result) Lookup(path string) (*dom.Element, error) {
	p, err := defpath.Parse(path)
	if err != nil {
		return nil, err
	}
	if len(p) < 2 {
		return nil, errors.Errorf("%w: %s: a def path needs a def tag and a name or index", ErrPathNotFound, path)
	}

	root := r.Document.Root()
	if root == nil || root.Name != r.opts.RootTag {
		return nil, errors.Errorf("%w: %s: document has no <%s> root", ErrPathNotFound, path, r.opts.RootTag)
	}

	var el *dom.Element
	for _, c := range root.ChildElements() {
		if c.Name != p[0].Name {
			continue
		}
		if top := r.topLevelPath(c); top[1] == p[1] || (p[1].IsIndex && c.IndexInParent() == p[1].Index) {
			el = c
			break
		}
	}
	if el == nil {
		return nil, errors.Errorf("%w: %s: no def %s", ErrPathNotFound, path, p[:2])
	}

	for i, s := range p[2:] {
		var next *dom.Element
		if s.IsIndex {
			if kids := el.ChildElements(); s.Index < len(kids) {
				next = kids[s.Index]
			}
		} else {
			next = el.Child(s.Name)
		}
		if next == nil {
			return nil, errors.Errorf("%w: %s: nothing at %s", ErrPathNotFound, path, p[:i+3])
		}
		el = next
	}
	return el, nil
}

// FindDef returns the def with the given tag whose def name or Name attribute is name.
func (r *Result) FindDef(tag, name string) *Binding {
	for _, d := range r.Defs {
		if d.Element.Name != tag {
			continue
		}
		if d.DefName() == name || d.Element.AttrValue(NameAttr) == name {
			return d
		}
	}
	return nil
}

// DefFinder resolves defs by tag and name, possibly across documents.
type DefFinder interface {
	FindDef(tag, name string) *Binding
}

// ResolveParent returns the parent of def from this document, then from defs
// when it is not nil. A def is never its own parent.
func (r *Result) ResolveParent(def *Binding, defs DefFinder) *Binding {
	if parent := r.ParentOf(def); parent != nil {
		return parent
	}
	name := def.Element.AttrValue(ParentNameAttr)
	if name == "" || defs == nil {
		return nil
	}
	if found := defs.FindDef(def.Element.Name, name); found != nil && found != def {
		return found
	}
	return nil
}

// ParentOf returns the def named by the ParentName attribute of def, searching
// defs with the same tag by their Name attribute.
func (r *Result) ParentOf(def *Binding) *Binding {
	name := def.Element.AttrValue(ParentNameAttr)
	if name == "" {
		return nil
	}
	for _, d := range r.Defs {
		if d != def && d.Element.Name == def.Element.Name && d.Element.AttrValue(NameAttr) == name {
			return d
		}
	}
	return nil
}
