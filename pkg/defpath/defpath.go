// Package defpath parses and formats the dotted paths addressing nodes inside
// definitions, such as "ThingDef.Steel.comps[1].compClass".
package defpath

import (
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"gitlab.com/tozd/go/errors"
)

var (
	pathLexer = lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_\-]*`},
		{Name: "Int", Pattern: `\d+`},
		{Name: "Punct", Pattern: `[.\[\]]`},
		{Name: "whitespace", Pattern: `\s+`},
	})

	pathParser = participle.MustBuild[pathGrammar](
		participle.Lexer(pathLexer),
		participle.Elide("whitespace"),
	)
)

type pathGrammar struct {
	Head  string      `parser:"@Ident"`
	Steps []*stepNode `parser:"@@*"`
}

type stepNode struct {
	Field *string `parser:"  '.' @Ident"`
	Index *int    `parser:"| '[' @Int ']'"`
}

// Segment is one step of a Path: a tag or def name, or an index among child elements.
type Segment struct {
	Name    string
	Index   int
	IsIndex bool
}

func (s Segment) String() string {
	if s.IsIndex {
		return "[" + strconv.Itoa(s.Index) + "]"
	}
	return s.Name
}

// Path always starts with a name segment.
type Path []Segment

// New starts a path at the given name.
func New(name string) Path {
	return Path{{Name: name}}
}

// Field returns a copy of p extended by a named step.
func (p Path) Field(name string) Path {
	return append(p.clone(), Segment{Name: name})
}

// Index returns a copy of p extended by an index step.
func (p Path) Index(i int) Path {
	return append(p.clone(), Segment{Index: i, IsIndex: true})
}

func (p Path) clone() Path {
	out := make(Path, len(p), len(p)+1)
	copy(out, p)
	return out
}

func (p Path) String() string {
	var sb strings.Builder
	for i, s := range p {
		if i > 0 && !s.IsIndex {
			sb.WriteByte('.')
		}
		sb.WriteString(s.String())
	}
	return sb.String()
}

// Parse reads a path written by Path.String.
func Parse(s string) (Path, error) {
	g, err := pathParser.ParseString("", s)
	if err != nil {
		return nil, errors.Errorf("parsing def path %q: %w", s, err)
	}

	p := New(g.Head)
	for _, st := range g.Steps {
		switch {
		case st.Field != nil:
			p = append(p, Segment{Name: *st.Field})
		case st.Index != nil:
			p = append(p, Segment{Index: *st.Index, IsIndex: true})
		}
	}
	return p, nil
}
