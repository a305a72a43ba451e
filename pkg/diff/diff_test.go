package diff_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/walteh/rwxml/pkg/diff"
)

func TestText(t *testing.T) {
	assert.Empty(t, diff.Text("a\nb\n", "a\nb\n"))

	out := diff.Text("a\nb\n", "a\nc\n")
	assert.Contains(t, out, "➕b")
	assert.Contains(t, out, "➖c")
}

func TestValues(t *testing.T) {
	type pair struct {
		Name  string
		Count int
	}
	assert.Empty(t, diff.Values(pair{Name: "x", Count: 1}, pair{Name: "x", Count: 1}))
	assert.NotEmpty(t, diff.Values(pair{Name: "x", Count: 1}, pair{Name: "x", Count: 2}))
}
