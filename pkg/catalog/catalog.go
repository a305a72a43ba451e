// Package catalog loads a flat type export into a linked, read only graph of
// TypeInfo records and resolves type names against it.
package catalog

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// ErrDuplicateType is returned by Load when two records share a full name.
var ErrDuplicateType = errors.Base("duplicate type in catalog")

// Catalog is the arena of every loaded type. It is read only after Load and safe
// for concurrent use.
type Catalog struct {
	types       []*TypeInfo
	byName      map[string]TypeID
	byClassName map[string]TypeID

	unresolved []string
}

// Type returns the type with the given id, nil for NoType.
func (c *Catalog) Type(id TypeID) *TypeInfo {
	if c == nil || id < 0 || int(id) >= len(c.types) {
		return nil
	}
	return c.types[id]
}

// Types returns every type in load order.
func (c *Catalog) Types() []*TypeInfo {
	return append([]*TypeInfo(nil), c.types...)
}

func (c *Catalog) Len() int {
	return len(c.types)
}

// Unresolved returns the sorted, de-duplicated names referenced by the export but missing from it.
func (c *Catalog) Unresolved() []string {
	return append([]string(nil), c.unresolved...)
}

// Load builds a catalog in two passes: one TypeInfo is allocated per record, then
// every name reference is replaced by the id of the type it names. References to
// names missing from the export stay unresolved. Duplicate full names fail the load.
func Load(ctx context.Context, records []Record) (*Catalog, error) {
	cat := &Catalog{
		types:       make([]*TypeInfo, 0, len(records)),
		byName:      make(map[string]TypeID, len(records)),
		byClassName: make(map[string]TypeID, len(records)),
	}

	for i := range records {
		rec := &records[i]
		if _, ok := cat.byName[rec.FullName]; ok {
			return nil, errors.Errorf("%w: %s", ErrDuplicateType, rec.FullName)
		}

		id := TypeID(len(cat.types))
		cat.types = append(cat.types, &TypeInfo{
			FullName:  rec.FullName,
			Namespace: rec.NamespaceName,
			ClassName: rec.ClassName,
			IsGeneric: rec.IsGeneric,
			IsArray:   rec.IsArray,
			IsEnum:    rec.IsEnum,
			Enums:     append([]string(nil), rec.Enums...),
			Methods:   append([]string(nil), rec.Methods...),
			id:        id,
			cat:       cat,
			base:      NoType,
		})
		cat.byName[rec.FullName] = id

		key := strings.ToLower(rec.ClassName)
		if _, ok := cat.byClassName[key]; !ok && key != "" {
			cat.byClassName[key] = id
		}
	}

	missing := map[string]struct{}{}
	resolve := func(name string) TypeID {
		if name == "" {
			return NoType
		}
		if id, ok := cat.byName[name]; ok {
			return id
		}
		missing[name] = struct{}{}
		return NoType
	}

	for i := range records {
		rec := &records[i]
		t := cat.types[i]

		t.attributes = cat.resolveAttributes(rec.Attributes, resolve)

		t.baseName = rec.BaseClass
		t.base = resolve(rec.BaseClass)

		t.genericNames = append([]string(nil), rec.GenericArguments...)
		t.generics = make([]TypeID, len(rec.GenericArguments))
		for j, name := range rec.GenericArguments {
			t.generics[j] = resolve(name)
		}

		t.interfaces = make(map[string]TypeID, len(rec.Interfaces))
		for key, name := range rec.Interfaces {
			t.interfaces[key] = resolve(name)
		}

		t.fields = make(map[string]*FieldInfo, len(rec.Fields))
		for name, fr := range rec.Fields {
			f := &FieldInfo{
				Name:          name,
				IsPublic:      fr.IsPublic,
				IsPrivate:     fr.IsPrivate,
				cat:           cat,
				typeName:      fr.FieldType,
				typ:           resolve(fr.FieldType),
				declaringName: fr.DeclaringType,
				declaring:     resolve(fr.DeclaringType),
				attributes:    cat.resolveAttributes(fr.Attributes, resolve),
			}
			if alias, ok := f.attributes[LoadAliasAttribute]; ok && len(alias.Args) > 0 {
				f.AliasName = alias.Args[0]
			}
			t.fields[name] = f
		}
	}

	for name := range missing {
		cat.unresolved = append(cat.unresolved, name)
	}
	sort.Strings(cat.unresolved)

	zerolog.Ctx(ctx).Debug().
		Int("types", len(cat.types)).
		Int("unresolved", len(cat.unresolved)).
		Msg("loaded type catalog")

	return cat, nil
}

func (c *Catalog) resolveAttributes(recs map[string]AttributeRecord, resolve func(string) TypeID) map[string]*Attribute {
	out := make(map[string]*Attribute, len(recs))
	for name, ar := range recs {
		out[name] = &Attribute{
			Name:     name,
			TypeName: ar.TypeName,
			Args:     append([]string(nil), ar.Args...),
			cat:      c,
			typ:      resolve(ar.TypeName),
		}
	}
	return out
}
