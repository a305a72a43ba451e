package diagnostic

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/rwxml/pkg/dom"
	"github.com/walteh/rwxml/pkg/inject"
	"github.com/walteh/rwxml/pkg/position"
)

// Generator is responsible for generating diagnostics from an injected document
type Generator interface {
	// Generate generates diagnostics from an injected document
	Generate(ctx context.Context, r *inject.Result) (*Diagnostics, error)
}

// DefFinder resolves defs by tag and name, possibly across documents.
type DefFinder = inject.DefFinder

// Diagnostics represents diagnostic information that can be formatted in different ways
type Diagnostics struct {
	Errors   []Diagnostic
	Warnings []Diagnostic
	Infos    []Diagnostic
}

// Diagnostic represents a single diagnostic message
type Diagnostic struct {
	Message  string
	Code     Code
	Range    position.Range
	Line     int
	Column   int
	EndLine  int
	EndCol   int
	Severity DiagnosticSeverity
}

// DiagnosticSeverity represents the severity level of a diagnostic
type DiagnosticSeverity string

const (
	Error   DiagnosticSeverity = "error"
	Warning DiagnosticSeverity = "warning"
	Info    DiagnosticSeverity = "info"
)

// Code identifies the kind of problem reported.
type Code string

const (
	CodeStrayCloseTag      Code = "stray-close-tag"
	CodeUnclosedElement    Code = "unclosed-element"
	CodeUnknownDefType     Code = "unknown-def-type"
	CodeNotADefType        Code = "not-a-def-type"
	CodeMissingDefName     Code = "missing-def-name"
	CodeDuplicateDef       Code = "duplicate-def"
	CodeMissingParent      Code = "missing-parent"
	CodeUnknownField       Code = "unknown-field"
	CodeUnresolvedField    Code = "unresolved-field-type"
	CodeUnresolvedClass    Code = "unresolved-class"
	CodeClassNotAssignable Code = "class-not-assignable"
	CodeInvalidEnumValue   Code = "invalid-enum-value"
)

// All returns every diagnostic ordered by position.
func (d *Diagnostics) All() []Diagnostic {
	all := make([]Diagnostic, 0, len(d.Errors)+len(d.Warnings)+len(d.Infos))
	all = append(all, d.Errors...)
	all = append(all, d.Warnings...)
	all = append(all, d.Infos...)
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].Range.Start < all[j].Range.Start
	})
	return all
}

func (d *Diagnostics) Len() int {
	return len(d.Errors) + len(d.Warnings) + len(d.Infos)
}

// DefaultGenerator is the default implementation of Generator
type DefaultGenerator struct {
	// Defs resolves ParentName references. When nil only the document itself is searched.
	Defs DefFinder
}

// NewDefaultGenerator creates a new DefaultGenerator
func NewDefaultGenerator() *DefaultGenerator {
	return &DefaultGenerator{}
}

type collector struct {
	text  string
	diags *Diagnostics
}

func (c *collector) add(sev DiagnosticSeverity, code Code, rng position.Range, format string, args ...any) {
	span := rng.ToSpan(c.text)
	d := Diagnostic{
		Message:  fmt.Sprintf(format, args...),
		Code:     code,
		Range:    rng,
		Line:     span.Start.Line + 1,
		Column:   span.Start.Character + 1,
		EndLine:  span.End.Line + 1,
		EndCol:   span.End.Character + 1,
		Severity: sev,
	}
	switch sev {
	case Error:
		c.diags.Errors = append(c.diags.Errors, d)
	case Warning:
		c.diags.Warnings = append(c.diags.Warnings, d)
	default:
		c.diags.Infos = append(c.diags.Infos, d)
	}
}

// Generate implements Generator
func (g *DefaultGenerator) Generate(ctx context.Context, r *inject.Result) (*Diagnostics, error) {
	if r == nil {
		return nil, errors.Errorf("injection result is nil")
	}

	c := &collector{
		text: r.Document.Text(),
		diags: &Diagnostics{
			Errors:   make([]Diagnostic, 0),
			Warnings: make([]Diagnostic, 0),
			Infos:    make([]Diagnostic, 0),
		},
	}

	for _, rng := range r.Document.StrayCloseTags() {
		c.add(Warning, CodeStrayCloseTag, rng, "close tag %s has no matching open tag", rng.Slice(c.text))
	}

	for _, el := range r.Document.Elements() {
		if !el.SelfClosing && !el.CloseTagRange.IsValid() {
			c.add(Warning, CodeUnclosedElement, el.NameRange, "element <%s> is not closed", el.Name)
		}
	}

	if root := r.Document.Root(); root != nil && root.Name == r.Options().RootTag {
		g.checkTopLevel(ctx, r, c, root)
	}

	for _, b := range r.Bindings() {
		g.checkBinding(ctx, r, c, b)
	}

	zerolog.Ctx(ctx).Debug().
		Str("uri", r.Document.URI()).
		Int("errors", len(c.diags.Errors)).
		Int("warnings", len(c.diags.Warnings)).
		Int("infos", len(c.diags.Infos)).
		Msg("generated diagnostics")

	return c.diags, nil
}

func (g *DefaultGenerator) checkTopLevel(ctx context.Context, r *inject.Result, c *collector, root *dom.Element) {
	for _, el := range root.ChildElements() {
		if _, ok := r.Binding(el); ok {
			continue
		}
		if typ := r.Catalog().TypeInfoByName(ctx, el.Name); typ != nil {
			c.add(Warning, CodeNotADefType, el.NameRange, "%s does not extend %s", typ.FullName, r.Options().DefMarker)
		} else {
			c.add(Warning, CodeUnknownDefType, el.NameRange, "unknown def type <%s>", el.Name)
		}
	}

	seen := map[string]*inject.Binding{}
	for _, def := range r.Defs {
		name := def.DefName()
		switch {
		case name == "" && !def.IsAbstract():
			c.add(Warning, CodeMissingDefName, def.Element.NameRange, "def <%s> has no <%s>", def.Element.Name, r.Options().DefNameTag)
		case name != "":
			key := def.Element.Name + "/" + name
			if first, ok := seen[key]; ok {
				c.add(Error, CodeDuplicateDef, def.Element.Child(r.Options().DefNameTag).Range(),
					"%s %s is already defined at %s", def.Element.Name, name, position.GetLineAndColumn(c.text, first.Element.Range().Start))
			} else {
				seen[key] = def
			}
		}

		parent, ok := def.Element.Attr(inject.ParentNameAttr)
		if !ok || parent.Value == "" {
			continue
		}
		if r.ResolveParent(def, g.Defs) != nil {
			continue
		}
		c.add(Warning, CodeMissingParent, parent.ValueRange, "parent %s %s not found", def.Element.Name, parent.Value)
	}
}

func (g *DefaultGenerator) checkBinding(ctx context.Context, r *inject.Result, c *collector, b *inject.Binding) {
	el := b.Element

	if class, ok := el.Attr(r.Options().ClassAttr); ok && class.Value != "" {
		if !b.Overridden() && r.Catalog().TypeInfoByName(ctx, class.Value) == nil {
			c.add(Error, CodeUnresolvedClass, class.ValueRange, "class %s not found", class.Value)
		} else if b.Declared != nil && !b.Type.Extends(b.Declared) {
			c.add(Warning, CodeClassNotAssignable, class.ValueRange, "%s does not extend %s", b.Type.FullName, b.Declared.FullName)
		}
	}

	if b.Type.IsEnum {
		g.checkEnum(c, b)
		return
	}

	if b.Type.HasCustomLoader() || b.Type.IsEnumerable() || b.Type.IsDictionary() {
		return
	}

	for _, child := range el.ChildElements() {
		if _, ok := r.Binding(child); ok {
			continue
		}
		f := b.Type.Field(child.Name, true, true)
		if f == nil {
			c.add(Warning, CodeUnknownField, child.NameRange, "no field %s in %s", child.Name, b.Type.FullName)
			continue
		}
		if f.Type() == nil {
			c.add(Info, CodeUnresolvedField, child.NameRange, "type %s of field %s is not in the catalog", f.TypeName(), f)
		}
	}
}

// checkEnum accepts comma separated flag values.
func (g *DefaultGenerator) checkEnum(c *collector, b *inject.Binding) {
	content, ok := b.Element.Content()
	if !ok {
		return
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return
	}
	for _, v := range strings.Split(content, ",") {
		v = strings.TrimSpace(v)
		if !containsFold(b.Type.Enums, v) {
			c.add(Error, CodeInvalidEnumValue, contentRange(b.Element), "%s is not a value of %s", v, b.Type.FullName)
			return
		}
	}
}

func containsFold(values []string, v string) bool {
	for _, x := range values {
		if strings.EqualFold(x, v) {
			return true
		}
	}
	return false
}

func contentRange(el *dom.Element) position.Range {
	for _, n := range el.Children() {
		if t, ok := n.(*dom.Text); ok {
			return t.Range()
		}
	}
	return el.Range()
}

// Formatter formats diagnostics into different output formats
type Formatter interface {
	// Format formats diagnostics into a specific output format
	Format(diagnostics *Diagnostics) ([]byte, error)
}

// VSCodeFormatter formats diagnostics into VSCode-compatible format
type VSCodeFormatter struct{}

// NewVSCodeFormatter creates a new VSCodeFormatter
func NewVSCodeFormatter() *VSCodeFormatter {
	return &VSCodeFormatter{}
}

type vscodePosition struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type vscodeRange struct {
	Start vscodePosition `json:"start"`
	End   vscodePosition `json:"end"`
}

type vscodeDiagnostic struct {
	Severity int         `json:"severity"`
	Code     Code        `json:"code"`
	Message  string      `json:"message"`
	Range    vscodeRange `json:"range"`
}

var vscodeSeverity = map[DiagnosticSeverity]int{
	Error:   1,
	Warning: 2,
	Info:    3,
}

// Format implements Formatter
func (f *VSCodeFormatter) Format(diagnostics *Diagnostics) ([]byte, error) {
	if diagnostics == nil {
		return nil, errors.Errorf("diagnostics is nil")
	}

	result := make([]vscodeDiagnostic, 0, diagnostics.Len())
	for _, d := range diagnostics.All() {
		result = append(result, vscodeDiagnostic{
			Severity: vscodeSeverity[d.Severity],
			Code:     d.Code,
			Message:  d.Message,
			Range: vscodeRange{
				// VSCode is 0-based
				Start: vscodePosition{Line: d.Line - 1, Character: d.Column - 1},
				End:   vscodePosition{Line: d.EndLine - 1, Character: d.EndCol - 1},
			},
		})
	}

	return json.Marshal(result)
}
