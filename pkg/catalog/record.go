package catalog

// Record is one type of a flat catalog export. Every reference to another type
// is a full name string, resolved when the catalog is loaded.
type Record struct {
	FullName         string                     `json:"fullName" yaml:"fullName"`
	NamespaceName    string                     `json:"namespaceName" yaml:"namespaceName"`
	ClassName        string                     `json:"className" yaml:"className"`
	Attributes       map[string]AttributeRecord `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	Fields           map[string]FieldRecord     `json:"fields,omitempty" yaml:"fields,omitempty"`
	GenericArguments []string                   `json:"genericArguments,omitempty" yaml:"genericArguments,omitempty"`
	BaseClass        string                     `json:"baseClass,omitempty" yaml:"baseClass,omitempty"`
	Methods          []string                   `json:"methods,omitempty" yaml:"methods,omitempty"`
	IsGeneric        bool                       `json:"isGeneric,omitempty" yaml:"isGeneric,omitempty"`
	IsArray          bool                       `json:"isArray,omitempty" yaml:"isArray,omitempty"`
	IsEnum           bool                       `json:"isEnum,omitempty" yaml:"isEnum,omitempty"`
	Enums            []string                   `json:"enums,omitempty" yaml:"enums,omitempty"`
	Interfaces       map[string]string          `json:"interfaces,omitempty" yaml:"interfaces,omitempty"`
}

type FieldRecord struct {
	FieldType     string                     `json:"fieldType" yaml:"fieldType"`
	DeclaringType string                     `json:"declaringType" yaml:"declaringType"`
	Attributes    map[string]AttributeRecord `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	IsPublic      bool                       `json:"isPublic,omitempty" yaml:"isPublic,omitempty"`
	IsPrivate     bool                       `json:"isPrivate,omitempty" yaml:"isPrivate,omitempty"`
}

// AttributeRecord is a custom attribute applied to a type or field.
type AttributeRecord struct {
	TypeName string   `json:"typeName" yaml:"typeName"`
	Args     []string `json:"args,omitempty" yaml:"args,omitempty"`
}
