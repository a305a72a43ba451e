package catalog

import (
	"slices"
	"sort"
	"strings"
)

// TypeID addresses a TypeInfo inside its Catalog.
type TypeID int32

// NoType marks a reference that did not resolve to any type of the catalog.
const NoType TypeID = -1

const (
	StringType                 = "System.String"
	EnumerableInterface        = "System.Collections.IEnumerable"
	GenericEnumerableInterface = "System.Collections.Generic.IEnumerable"
	ListInterface              = "System.Collections.IList"
	DictionaryInterface        = "System.Collections.IDictionary"

	// CustomLoaderMethod marks types that read their own XML.
	CustomLoaderMethod = "LoadDataFromXmlCustom"
)

// Attribute is a resolved AttributeRecord.
type Attribute struct {
	Name     string
	TypeName string
	Args     []string

	cat *Catalog
	typ TypeID
}

// Type returns nil when the attribute type is not in the catalog.
func (a *Attribute) Type() *TypeInfo {
	return a.cat.Type(a.typ)
}

// TypeInfo describes one type of the catalog. It is immutable once the catalog is
// loaded and may be shared between goroutines.
type TypeInfo struct {
	FullName  string
	Namespace string
	ClassName string
	IsGeneric bool
	IsArray   bool
	IsEnum    bool
	Enums     []string
	Methods   []string

	id  TypeID
	cat *Catalog

	attributes map[string]*Attribute
	fields     map[string]*FieldInfo

	genericNames []string
	generics     []TypeID

	baseName string
	base     TypeID

	interfaces map[string]TypeID
}

func (t *TypeInfo) ID() TypeID { return t.id }

func (t *TypeInfo) String() string { return t.FullName }

func (t *TypeInfo) Catalog() *Catalog { return t.cat }

// Base returns the base type, nil when there is none or it did not resolve.
func (t *TypeInfo) Base() *TypeInfo {
	return t.cat.Type(t.base)
}

// BaseName is the full name of the base type as written in the export.
func (t *TypeInfo) BaseName() string {
	return t.baseName
}

// GenericArguments returns one entry per generic argument, nil for unresolved arguments.
func (t *TypeInfo) GenericArguments() []*TypeInfo {
	out := make([]*TypeInfo, len(t.generics))
	for i, id := range t.generics {
		out[i] = t.cat.Type(id)
	}
	return out
}

func (t *TypeInfo) GenericArgumentNames() []string {
	return slices.Clone(t.genericNames)
}

// GenericArgument returns the i-th generic argument, nil when absent or unresolved.
func (t *TypeInfo) GenericArgument(i int) *TypeInfo {
	if i < 0 || i >= len(t.generics) {
		return nil
	}
	return t.cat.Type(t.generics[i])
}

func (t *TypeInfo) Attribute(name string) (*Attribute, bool) {
	a, ok := t.attributes[name]
	return a, ok
}

// ancestors returns t followed by its base chain. A corrupt export with a cycle
// is cut off once every type has been visited.
func (t *TypeInfo) ancestors() []*TypeInfo {
	var chain []*TypeInfo
	for cur := t; cur != nil && len(chain) <= len(t.cat.types); cur = cur.Base() {
		chain = append(chain, cur)
	}
	return chain
}

// IsDerivedFrom reports whether base is a strict ancestor of t.
func (t *TypeInfo) IsDerivedFrom(base *TypeInfo) bool {
	if base == nil {
		return false
	}
	return t.IsDerivedFromName(base.FullName)
}

func (t *TypeInfo) IsDerivedFromName(fullName string) bool {
	for _, a := range t.ancestors()[1:] {
		if a.FullName == fullName {
			return true
		}
	}
	return false
}

// Extends is IsDerivedFrom including t itself.
func (t *TypeInfo) Extends(base *TypeInfo) bool {
	if base == nil {
		return false
	}
	return t.FullName == base.FullName || t.IsDerivedFrom(base)
}

// Interfaces returns the implemented interfaces by full name. Values are nil for
// interfaces missing from the catalog. With inherited, the interfaces of every
// ancestor are included, t's own entries winning on name collisions.
func (t *TypeInfo) Interfaces(inherited bool) map[string]*TypeInfo {
	out := make(map[string]*TypeInfo)
	chain := []*TypeInfo{t}
	if inherited {
		chain = t.ancestors()
	}
	for _, cur := range chain {
		for name, id := range cur.interfaces {
			if _, ok := out[name]; !ok {
				out[name] = t.cat.Type(id)
			}
		}
	}
	return out
}

func (t *TypeInfo) IsImplementingInterface(fullName string) bool {
	for _, cur := range t.ancestors() {
		if _, ok := cur.interfaces[fullName]; ok {
			return true
		}
	}
	return false
}

// implementsGeneric matches interfaces by their open generic name.
func (t *TypeInfo) implementsGeneric(openName string) bool {
	for _, cur := range t.ancestors() {
		for name := range cur.interfaces {
			if OpenGenericName(name) == openName {
				return true
			}
		}
	}
	return false
}

func (t *TypeInfo) IsString() bool {
	return t.FullName == StringType
}

func (t *TypeInfo) IsEnumerable() bool {
	return t.IsArray ||
		t.IsImplementingInterface(EnumerableInterface) ||
		t.implementsGeneric(GenericEnumerableInterface) ||
		OpenGenericName(t.FullName) == GenericEnumerableInterface
}

func (t *TypeInfo) IsList() bool {
	return t.IsImplementingInterface(ListInterface) ||
		t.implementsGeneric("System.Collections.Generic.IList") ||
		OpenGenericName(t.FullName) == "System.Collections.Generic.List"
}

func (t *TypeInfo) IsDictionary() bool {
	return t.IsImplementingInterface(DictionaryInterface) ||
		t.implementsGeneric("System.Collections.Generic.IDictionary") ||
		OpenGenericName(t.FullName) == "System.Collections.Generic.Dictionary"
}

// IsListStructured reports whether XML for t is a sequence of items, either because
// t is a collection or because t wraps a single collection argument.
func (t *TypeInfo) IsListStructured() bool {
	if t.IsEnumerable() || t.IsArray || t.IsDictionary() {
		return true
	}
	if t.IsGeneric && len(t.generics) == 1 {
		if arg := t.GenericArgument(0); arg != nil && arg.IsEnumerable() {
			return true
		}
	}
	return false
}

// EnumerableType returns the item type T such that t behaves as a sequence of T, or nil.
func (t *TypeInfo) EnumerableType() *TypeInfo {
	return t.enumerableType(0)
}

func (t *TypeInfo) enumerableType(depth int) *TypeInfo {
	if depth > len(t.cat.types) {
		return nil
	}

	// strings are sequences of characters, treated as sequences of themselves
	if t.IsString() {
		return t
	}

	ifaces := t.Interfaces(true)
	names := make([]string, 0, len(ifaces))
	for name := range ifaces {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		iface := ifaces[name]
		if iface == nil || OpenGenericName(name) != GenericEnumerableInterface {
			continue
		}
		if len(iface.generics) == 1 {
			if arg := iface.GenericArgument(0); arg != nil {
				return arg
			}
		}
	}

	if OpenGenericName(t.FullName) == GenericEnumerableInterface && len(t.generics) == 1 {
		if arg := t.GenericArgument(0); arg != nil {
			return arg
		}
	}

	if t.IsGeneric && len(t.generics) == 1 {
		arg := t.GenericArgument(0)
		if arg == nil {
			return nil
		}
		if inner := arg.enumerableType(depth + 1); inner != nil {
			return inner
		}
		return arg
	}

	return nil
}

// ArrayElementType resolves the element type of an array from its "T[]" name.
func (t *TypeInfo) ArrayElementType() *TypeInfo {
	if !t.IsArray {
		return nil
	}
	name, ok := strings.CutSuffix(t.FullName, "[]")
	if !ok {
		return nil
	}
	if id, ok := t.cat.byName[name]; ok {
		return t.cat.types[id]
	}
	return nil
}

// HasCustomLoader reports whether the type reads its own XML instead of field by field.
func (t *TypeInfo) HasCustomLoader() bool {
	return slices.Contains(t.Methods, CustomLoaderMethod)
}

// Fields returns the declared fields by name. With inherited, the fields of every
// ancestor are merged in, t's own declarations winning on name collisions.
func (t *TypeInfo) Fields(inherited bool) map[string]*FieldInfo {
	out := make(map[string]*FieldInfo)
	chain := []*TypeInfo{t}
	if inherited {
		chain = t.ancestors()
	}
	for _, cur := range chain {
		for name, f := range cur.fields {
			if _, ok := out[name]; !ok {
				out[name] = f
			}
		}
	}
	return out
}

// FieldNames returns the sorted names of Fields(inherited).
func (t *TypeInfo) FieldNames(inherited bool) []string {
	fields := t.Fields(inherited)
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field looks a field up by exact name, then through the ancestors when inherited,
// then by alias name when includeAlias.
func (t *TypeInfo) Field(name string, inherited, includeAlias bool) *FieldInfo {
	if f, ok := t.fields[name]; ok {
		return f
	}

	if inherited {
		for _, a := range t.ancestors()[1:] {
			if f, ok := a.fields[name]; ok {
				return f
			}
		}
	}

	if includeAlias {
		fields := t.Fields(inherited)
		names := make([]string, 0, len(fields))
		for n := range fields {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			if f := fields[n]; f.AliasName != "" && f.AliasName == name {
				return f
			}
		}
	}

	return nil
}

// OpenGenericName strips generic arity and arguments from a type name:
// "System.Collections.Generic.List`1[[Verse.ThingDef]]" becomes "System.Collections.Generic.List".
func OpenGenericName(name string) string {
	if i := strings.IndexAny(name, "`<["); i >= 0 {
		return name[:i]
	}
	return name
}
