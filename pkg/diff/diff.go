// Package diff renders readable differences for test failures.
package diff

import (
	"strings"

	"github.com/k0kubun/pp/v3"
	"github.com/kylelemons/godebug/diff"
)

// Text diffs two multi line strings. It returns "" when they are equal.
func Text(want, got string) string {
	if want == got {
		return ""
	}
	d := diff.Diff(got, want)
	str := "\n\n"
	str += "to convert ACTUAL ⏩️ EXPECTED:\n\n"
	str += "add:    ➕\n"
	str += "remove: ➖\n"
	str += "\n"
	str += strings.ReplaceAll(strings.ReplaceAll("\n"+d, "\n-", "\n➖"), "\n+", "\n➕")
	return str
}

// Values pretty prints both values, exported fields only, and diffs the output.
func Values[T any](want T, got T) string {
	printer := pp.New()
	printer.SetExportedOnly(true)
	printer.SetColoringEnabled(false)
	return Text(printer.Sprint(want), printer.Sprint(got))
}
