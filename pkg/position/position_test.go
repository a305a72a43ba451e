package position_test

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/rwxml/pkg/position"
)

func TestRangeContains(t *testing.T) {
	tests := []struct {
		name   string
		rng    position.Range
		offset int
		want   bool
	}{
		{name: "start bound", rng: position.NewRange(2, 5), offset: 2, want: true},
		{name: "end bound is inclusive", rng: position.NewRange(2, 5), offset: 5, want: true},
		{name: "after end", rng: position.NewRange(2, 5), offset: 6, want: false},
		{name: "before start", rng: position.NewRange(2, 5), offset: 1, want: false},
		{name: "unset never contains", rng: position.Unset, offset: -1, want: false},
		{name: "half set never contains", rng: position.Range{Start: 3, End: -1}, offset: 3, want: false},
		{name: "empty range", rng: position.NewEmptyRange(4), offset: 4, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.rng.Contains(tt.offset))
		})
	}
}

func TestRangeLenAndValidity(t *testing.T) {
	assert.Equal(t, 4, position.NewRange(2, 5).Len())
	assert.Equal(t, 0, position.NewEmptyRange(7).Len())
	assert.Equal(t, 0, position.Unset.Len())

	assert.True(t, position.NewEmptyRange(7).IsValid())
	assert.False(t, position.Unset.IsValid())
	assert.False(t, position.NewRange(5, 2).IsValid())

	assert.True(t, position.NewRange(0, 10).ContainsRange(position.NewRange(3, 4)))
	assert.False(t, position.NewRange(0, 10).ContainsRange(position.NewRange(3, 11)))
	assert.False(t, position.NewRange(0, 10).ContainsRange(position.Unset))
}

func TestRangeSlice(t *testing.T) {
	text := "<Defs><A>1</A></Defs>"
	assert.Equal(t, "<A>", position.NewRange(6, 8).Slice(text))
	assert.Equal(t, "", position.NewEmptyRange(6).Slice(text))
	assert.Equal(t, "", position.NewRange(6, 100).Slice(text))
	assert.Equal(t, "", position.Unset.Slice(text))
}

func TestGetLineAndColumn(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		offset   int
		wantLine int
		wantCol  int
	}{
		{name: "empty text", text: "", offset: 0, wantLine: 0, wantCol: 0},
		{name: "single line", text: "Hello, World!", offset: 7, wantLine: 0, wantCol: 7},
		{name: "second line", text: "Hello\nWorld\nTest", offset: 8, wantLine: 1, wantCol: 2},
		{name: "start of line", text: "Hello\nWorld", offset: 6, wantLine: 1, wantCol: 0},
		{name: "multibyte characters count once", text: "<a>héllo</a>", offset: 7, wantLine: 0, wantCol: 6},
		{name: "clamped past end", text: "ab\ncd", offset: 99, wantLine: 1, wantCol: 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := position.GetLineAndColumn(tt.text, tt.offset)
			assert.Equal(t, tt.wantLine, got.Line)
			assert.Equal(t, tt.wantCol, got.Character)
		})
	}
}

func TestGetOffsetRoundTrip(t *testing.T) {
	text := "<Defs>\n  <ThingDef>\n    <label>héllo</label>\n  </ThingDef>\n</Defs>"
	for offset := 0; offset < len(text); offset++ {
		if !utf8.RuneStart(text[offset]) {
			continue
		}
		place := position.GetLineAndColumn(text, offset)
		require.Equal(t, offset, position.GetOffset(text, place), "offset %d", offset)
	}

	assert.Equal(t, -1, position.GetOffset(text, position.Place{Line: 40}))
	assert.Equal(t, -1, position.GetOffset(text, position.Place{Line: 0, Character: 40}))
}

func TestToSpan(t *testing.T) {
	text := "<a>\n<b/>\n</a>"
	span := position.NewRange(4, 7).ToSpan(text)
	assert.Equal(t, position.Place{Line: 1, Character: 0}, span.Start)
	assert.Equal(t, position.Place{Line: 1, Character: 4}, span.End)
	assert.Equal(t, position.Span{}, position.Unset.ToSpan(text))
}
