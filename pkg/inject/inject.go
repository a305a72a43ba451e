// Package inject overlays catalog types onto a parsed definition document.
//
// Injection never changes the document. Every element that could be typed gets a
// Binding in the side table of the returned Result; elements that could not be
// typed, such as unknown fields or tags naming missing types, are left unbound.
package inject

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/rwxml/pkg/catalog"
	"github.com/walteh/rwxml/pkg/dom"
)

// Attributes with a fixed meaning on defs.
const (
	NameAttr       = "Name"
	ParentNameAttr = "ParentName"
	AbstractAttr   = "Abstract"
)

// Options names the reserved tags and types driving injection.
type Options struct {
	// RootTag is the tag of the document element holding the defs.
	RootTag string
	// DefNameTag is the child tag carrying the name of a def.
	DefNameTag string
	// ClassAttr is the attribute overriding the declared type of an element.
	ClassAttr string
	// DefMarker is the full name of the type every def type extends.
	DefMarker string
}

func DefaultOptions() Options {
	return Options{
		RootTag:    "Defs",
		DefNameTag: "defName",
		ClassAttr:  "Class",
		DefMarker:  "Verse.Def",
	}
}

func (o Options) withDefaults() Options {
	def := DefaultOptions()
	if o.RootTag == "" {
		o.RootTag = def.RootTag
	}
	if o.DefNameTag == "" {
		o.DefNameTag = def.DefNameTag
	}
	if o.ClassAttr == "" {
		o.ClassAttr = def.ClassAttr
	}
	if o.DefMarker == "" {
		o.DefMarker = def.DefMarker
	}
	return o
}

// Injector is read only and may inject many documents concurrently.
type Injector struct {
	cat  *catalog.Catalog
	opts Options
}

// New returns an injector for cat. Empty option fields take their default.
func New(cat *catalog.Catalog, opts Options) *Injector {
	return &Injector{cat: cat, opts: opts.withDefaults()}
}

func (in *Injector) Catalog() *catalog.Catalog { return in.cat }

func (in *Injector) Options() Options { return in.opts }

// Inject types doc. Every child of the root element whose tag names a def type
// becomes a def and is typed recursively.
func (in *Injector) Inject(ctx context.Context, doc *dom.Document) *Result {
	logger := zerolog.Ctx(ctx)
	r := &Result{
		Document: doc,
		cat:      in.cat,
		opts:     in.opts,
		bindings: map[*dom.Element]*Binding{},
	}

	root := doc.Root()
	if root == nil || root.Name != in.opts.RootTag {
		logger.Debug().Str("uri", doc.URI()).Str("want", in.opts.RootTag).Msg("document has no def root, skipping injection")
		return r
	}

	for _, el := range root.ChildElements() {
		typ := in.cat.TypeInfoByName(ctx, el.Name)
		if !isDefType(typ, in.opts.DefMarker) {
			logger.Trace().Str("tag", el.Name).Msg("top level element is not a def")
			continue
		}
		if b := in.inject(ctx, r, el, typ, nil, RoleDefRoot); b != nil {
			r.Defs = append(r.Defs, b)
		}
	}

	logger.Debug().
		Str("uri", doc.URI()).
		Int("defs", len(r.Defs)).
		Int("bindings", len(r.order)).
		Msg("injected document")

	return r
}

func (in *Injector) inject(ctx context.Context, r *Result, el *dom.Element, expected *catalog.TypeInfo, field *catalog.FieldInfo, role Role) *Binding {
	b := in.bind(ctx, r, el, expected, field, role)
	if b != nil {
		in.descend(ctx, r, b)
	}
	return b
}

// bind applies the Class override and records the binding. Nothing is recorded
// when neither the expected type nor the override resolves.
func (in *Injector) bind(ctx context.Context, r *Result, el *dom.Element, expected *catalog.TypeInfo, field *catalog.FieldInfo, role Role) *Binding {
	typ := expected
	if class := el.AttrValue(in.opts.ClassAttr); class != "" {
		if override := in.cat.TypeInfoByName(ctx, class); override != nil {
			typ = override
		} else {
			zerolog.Ctx(ctx).Trace().Str("tag", el.Name).Str("class", class).Msg("class override did not resolve")
		}
	}
	if typ == nil {
		return nil
	}

	b := &Binding{
		Element:  el,
		Type:     typ,
		Field:    field,
		Role:     role,
		Declared: expected,
		result:   r,
	}
	r.bindings[el] = b
	r.order = append(r.order, b)
	return b
}

func (in *Injector) descend(ctx context.Context, r *Result, b *Binding) {
	typ := b.Type
	switch {
	case typ.HasCustomLoader():
		return
	case typ.IsDictionary():
		in.descendDictionary(ctx, r, b)
	case isContainer(typ):
		item := itemType(typ)
		for _, child := range b.Element.ChildElements() {
			in.inject(ctx, r, child, item, nil, RoleListItem)
		}
	default:
		for _, child := range b.Element.ChildElements() {
			f := typ.Field(child.Name, true, true)
			if f == nil {
				zerolog.Ctx(ctx).Trace().Str("type", typ.FullName).Str("tag", child.Name).Msg("no field for tag")
				continue
			}
			in.inject(ctx, r, child, f.Type(), f, RolePlainField)
		}
	}
}

// descendDictionary types the items of a dictionary. An item is either an
// element holding key and value children, typed with the first and second
// generic argument, or an element whose tag is the key and whose content is
// the value.
func (in *Injector) descendDictionary(ctx context.Context, r *Result, b *Binding) {
	keyType := b.Type.GenericArgument(0)
	valueType := b.Type.GenericArgument(1)
	item := itemType(b.Type)

	for _, child := range b.Element.ChildElements() {
		key, value := child.Child("key"), child.Child("value")
		if key == nil && value == nil && child.Name != "li" {
			in.inject(ctx, r, child, valueType, nil, RoleDictValue)
			continue
		}

		in.bind(ctx, r, child, item, nil, RoleListItem)
		if key != nil {
			in.inject(ctx, r, key, keyType, nil, RoleDictKey)
		}
		if value != nil {
			in.inject(ctx, r, value, valueType, nil, RoleDictValue)
		}
	}
}

// isContainer reports whether the children of t are items rather than fields.
// Strings are enumerable but written as text.
func isContainer(t *catalog.TypeInfo) bool {
	return (t.IsEnumerable() || t.IsDictionary()) && !t.IsString()
}

func itemType(t *catalog.TypeInfo) *catalog.TypeInfo {
	if item := t.EnumerableType(); item != nil {
		return item
	}
	return t.ArrayElementType()
}
