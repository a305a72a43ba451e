// Package hover provides functionality for generating hover information.
package hover

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/pkg/catalog"
	"github.com/walteh/rwxml/pkg/dom"
	"github.com/walteh/rwxml/pkg/inject"
	"github.com/walteh/rwxml/pkg/position"
)

// HoverInfo represents the information to be displayed in a hover tooltip
type HoverInfo struct {
	// Content is the markdown content to display
	Content []string
	// Range is the range in the document that this hover applies to
	Range position.Range
}

// maxEnumValues caps the enum values listed in a hover.
const maxEnumValues = 12

// Builder answers hover requests for injected documents.
type Builder struct {
	// Defs resolves ParentName references. When nil only the document itself is searched.
	Defs inject.DefFinder
}

// BuildHoverResponse describes what is at offset using only the document itself.
func BuildHoverResponse(ctx context.Context, r *inject.Result, offset int) (*HoverInfo, error) {
	return (&Builder{}).Build(ctx, r, offset)
}

// Build describes what is at offset in an injected document. It returns nil
// when the offset is not inside a typed element.
func (hb *Builder) Build(ctx context.Context, r *inject.Result, offset int) (*HoverInfo, error) {
	if r == nil {
		return nil, errors.New("injection result cannot be nil")
	}
	logger := zerolog.Ctx(ctx)

	n := r.Document.FindNodeAt(offset)
	if n == nil {
		logger.Trace().Int("offset", offset).Msg("no node at offset")
		return nil, nil
	}

	el, ok := n.(*dom.Element)
	if ok {
		if info := hb.attributeHover(ctx, r, el, offset); info != nil {
			return info, nil
		}
	} else {
		el, _ = n.Parent().(*dom.Element)
	}
	if el == nil {
		return nil, nil
	}

	b, ok := r.Binding(el)
	if !ok {
		logger.Trace().Str("tag", el.Name).Msg("element is not bound")
		return nil, nil
	}

	return &HoverInfo{
		Content: []string{FormatBinding(b)},
		Range:   el.Range(),
	}, nil
}

// attributeHover covers the values of the Class and ParentName attributes.
func (hb *Builder) attributeHover(ctx context.Context, r *inject.Result, el *dom.Element, offset int) *HoverInfo {
	for _, a := range el.Attrs() {
		if !a.ValueRange.Contains(offset) {
			continue
		}
		switch a.Name {
		case r.Options().ClassAttr:
			typ := r.Catalog().TypeInfoByName(ctx, a.Value)
			if typ == nil {
				return &HoverInfo{Content: []string{fmt.Sprintf("class `%s` is not in the catalog", a.Value)}, Range: a.ValueRange}
			}
			return &HoverInfo{Content: []string{FormatType(typ)}, Range: a.ValueRange}
		case inject.ParentNameAttr:
			b, ok := r.Binding(el)
			if !ok || !b.IsDef() {
				return nil
			}
			parent := r.ResolveParent(b, hb.Defs)
			if parent == nil {
				where := "in this file"
				if hb.Defs != nil {
					where = "in the project"
				}
				return &HoverInfo{Content: []string{fmt.Sprintf("parent `%s` is not defined %s", a.Value, where)}, Range: a.ValueRange}
			}
			return &HoverInfo{Content: []string{FormatBinding(parent)}, Range: a.ValueRange}
		}
	}
	return nil
}

// FormatBinding renders a binding as markdown.
func FormatBinding(b *inject.Binding) string {
	var sb strings.Builder

	switch {
	case b.IsDef():
		name := b.DefName()
		if name == "" {
			name = b.Element.AttrValue(inject.NameAttr)
		}
		fmt.Fprintf(&sb, "### def `%s`\n\n", name)
	case b.Field != nil:
		fmt.Fprintf(&sb, "### field `%s`\n\n", b.Field.Name)
	default:
		fmt.Fprintf(&sb, "### %s `<%s>`\n\n", b.Role, b.Element.Name)
	}

	fmt.Fprintf(&sb, "**Type**: `%s`\n", b.Type.FullName)
	if b.Overridden() && b.Declared != nil {
		fmt.Fprintf(&sb, "\n**Declared**: `%s`\n", b.Declared.FullName)
	}
	if b.Field != nil {
		fmt.Fprintf(&sb, "\n**Declared by**: `%s`\n", b.Field.DeclaringTypeName())
		if b.Field.AliasName != "" {
			fmt.Fprintf(&sb, "\n**Alias**: `%s`\n", b.Field.AliasName)
		}
	}
	fmt.Fprintf(&sb, "\n**Path**: `%s`\n", b.Path())

	if details := typeDetails(b.Type); details != "" {
		sb.WriteString("\n")
		sb.WriteString(details)
	}

	return strings.TrimRight(sb.String(), "\n")
}

// FormatType renders a catalog type as markdown.
func FormatType(t *catalog.TypeInfo) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "### type `%s`\n", t.FullName)
	if base := t.BaseName(); base != "" {
		fmt.Fprintf(&sb, "\n**Base**: `%s`\n", base)
	}
	if details := typeDetails(t); details != "" {
		sb.WriteString("\n")
		sb.WriteString(details)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func typeDetails(t *catalog.TypeInfo) string {
	switch {
	case t.IsEnum:
		values := t.Enums
		more := ""
		if len(values) > maxEnumValues {
			more = fmt.Sprintf(", … (%d more)", len(values)-maxEnumValues)
			values = values[:maxEnumValues]
		}
		return fmt.Sprintf("**Values**: %s%s\n", strings.Join(values, ", "), more)
	case t.IsDictionary():
		return fmt.Sprintf("**Keys**: `%s`\n\n**Values**: `%s`\n", nameOf(t.GenericArgument(0), t, 0), nameOf(t.GenericArgument(1), t, 1))
	case t.IsEnumerable() && !t.IsString():
		item := t.EnumerableType()
		if item == nil {
			item = t.ArrayElementType()
		}
		if item == nil {
			return ""
		}
		return fmt.Sprintf("**Items**: `%s`\n", item.FullName)
	case t.HasCustomLoader():
		return "Reads its own XML.\n"
	}

	fields := t.FieldNames(true)
	if len(fields) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.WriteString("**Fields**:\n")
	for _, name := range fields {
		f := t.Field(name, true, false)
		fmt.Fprintf(&sb, "- `%s` `%s`\n", name, f.TypeName())
	}
	return sb.String()
}

func nameOf(arg *catalog.TypeInfo, t *catalog.TypeInfo, i int) string {
	if arg != nil {
		return arg.FullName
	}
	if names := t.GenericArgumentNames(); i < len(names) {
		return names[i]
	}
	return "?"
}
