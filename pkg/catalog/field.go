package catalog

// LoadAliasAttribute names the field attribute carrying an alternative XML tag.
const LoadAliasAttribute = "LoadAlias"

type FieldInfo struct {
	Name      string
	AliasName string
	IsPublic  bool
	IsPrivate bool

	cat *Catalog

	typeName string
	typ      TypeID

	declaringName string
	declaring     TypeID

	attributes map[string]*Attribute
}

// Type returns the declared field type, nil when it did not resolve.
func (f *FieldInfo) Type() *TypeInfo {
	return f.cat.Type(f.typ)
}

func (f *FieldInfo) TypeName() string {
	return f.typeName
}

// DeclaringType returns the type owning the field, nil when it did not resolve.
func (f *FieldInfo) DeclaringType() *TypeInfo {
	return f.cat.Type(f.declaring)
}

func (f *FieldInfo) DeclaringTypeName() string {
	return f.declaringName
}

func (f *FieldInfo) Attribute(name string) (*Attribute, bool) {
	a, ok := f.attributes[name]
	return a, ok
}

func (f *FieldInfo) String() string {
	return f.declaringName + "." + f.Name
}
