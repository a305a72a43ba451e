package inject

import (
	"sync"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/pkg/catalog"
	"github.com/walteh/rwxml/pkg/defpath"
	"github.com/walteh/rwxml/pkg/dom"
)

// Role is how a bound element relates to the value that contains it.
type Role int

const (
	RolePlainField Role = iota
	RoleListItem
	RoleDictKey
	RoleDictValue
	RoleDefRoot
)

func (r Role) String() string {
	switch r {
	case RolePlainField:
		return "field"
	case RoleListItem:
		return "list item"
	case RoleDictKey:
		return "dictionary key"
	case RoleDictValue:
		return "dictionary value"
	case RoleDefRoot:
		return "def"
	default:
		return "unknown"
	}
}

// Binding attaches a catalog type to one element of an injected document.
type Binding struct {
	Element *dom.Element
	Type    *catalog.TypeInfo
	// Field is the matched field for RolePlainField bindings, nil otherwise.
	Field *catalog.FieldInfo
	Role  Role
	// Declared is the type expected from the surrounding structure before any
	// Class override was applied. It may be nil when only the override resolved.
	Declared *catalog.TypeInfo

	result *Result

	pathOnce sync.Once
	path     defpath.Path
}

func (b *Binding) IsDef() bool {
	return b.Role == RoleDefRoot
}

// Overridden reports whether a Class attribute replaced the declared type.
func (b *Binding) Overridden() bool {
	return b.Declared != b.Type
}

// DefName returns the content of the def name child, or "" when absent.
func (b *Binding) DefName() string {
	return defName(b.Element, b.result.opts.DefNameTag)
}

// DefType returns the bound type of a def. It panics when the binding is not a
// def or its type does not extend the def marker type.
func (b *Binding) DefType() *catalog.TypeInfo {
	if b.Role != RoleDefRoot {
		panic(errors.Errorf("<%s> is bound as %s, not as a def", b.Element.Name, b.Role))
	}
	if !isDefType(b.Type, b.result.opts.DefMarker) {
		panic(errors.Errorf("def <%s> is bound to %s which does not extend %s", b.Element.Name, b.Type, b.result.opts.DefMarker))
	}
	return b.Type
}

// IsAbstract reports whether a def only exists to be inherited from.
func (b *Binding) IsAbstract() bool {
	return b.Element.AttrValue(AbstractAttr) == "True"
}

// Path returns the def path of the element, computed once.
func (b *Binding) Path() defpath.Path {
	b.pathOnce.Do(func() {
		b.path = b.result.computePath(b.Element)
	})
	return b.path
}

func defName(el *dom.Element, tag string) string {
	child := el.Child(tag)
	if child == nil {
		return ""
	}
	content, _ := child.Content()
	return content
}

func isDefType(t *catalog.TypeInfo, marker string) bool {
	return t != nil && (t.FullName == marker || t.IsDerivedFromName(marker))
}
