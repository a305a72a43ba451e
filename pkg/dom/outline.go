package dom

import (
	"fmt"
	"strings"
)

// Outline renders the structure of n, one node per line, for debugging and tests.
func Outline(n Node) string {
	var sb strings.Builder
	writeOutline(&sb, n, 0)
	return sb.String()
}

func writeOutline(sb *strings.Builder, n Node, depth int) {
	sb.WriteString(strings.Repeat("  ", depth))
	switch v := n.(type) {
	case *Document:
		fmt.Fprintf(sb, "Document %q", v.uri)
	case *Element:
		fmt.Fprintf(sb, "Element <%s>", v.Name)
		for _, a := range v.attrs {
			fmt.Fprintf(sb, " %s=%q", a.Name, a.Value)
		}
		if v.SelfClosing {
			sb.WriteString(" self-closing")
		} else if !v.CloseTagRange.IsValid() {
			sb.WriteString(" unclosed")
		}
	case *Text:
		fmt.Fprintf(sb, "Text %q", v.data)
	case *Comment:
		fmt.Fprintf(sb, "Comment %q", v.data)
	case *ProcInst:
		fmt.Fprintf(sb, "ProcInst %s %q", v.Target, v.data)
	}
	fmt.Fprintf(sb, " %s\n", n.Range())

	if p, ok := n.(Parent); ok {
		for _, c := range p.Children() {
			writeOutline(sb, c, depth+1)
		}
	}
}
