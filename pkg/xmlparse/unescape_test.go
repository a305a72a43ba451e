package xmlparse_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/walteh/rwxml/pkg/xmlparse"
)

func TestUnescape(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: "steel", expected: "steel"},
		{name: "predefined", input: "&lt;a&gt; &amp; &quot;b&quot; &apos;c&apos;", expected: `<a> & "b" 'c'`},
		{name: "decimal", input: "&#65;&#66;", expected: "AB"},
		{name: "hex", input: "&#x263A;", expected: "☺"},
		{name: "unknown_entity", input: "a&nbsp;b", expected: "a&nbsp;b"},
		{name: "no_semicolon", input: "salt & pepper", expected: "salt & pepper"},
		{name: "bad_number", input: "&#xZZ;&#;", expected: "&#xZZ;&#;"},
		{name: "invalid_rune", input: "&#xD800;", expected: "&#xD800;"},
		{name: "after_bad_reference", input: "&bogus&amp;", expected: "&bogus&"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, xmlparse.Unescape(tt.input))
		})
	}
}
