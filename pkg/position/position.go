package position

import (
	"fmt"
	"strings"

	"github.com/apparentlymart/go-textseg/v13/textseg"
)

// Range is an inclusive pair of byte offsets into a source text.
// A bound of -1 means the bound has not been assigned yet.
type Range struct {
	Start int
	End   int
}

// Unset is the zero value for ranges whose bounds are not known yet.
var Unset = Range{Start: -1, End: -1}

func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

// NewEmptyRange returns a zero length range positioned before offset.
func NewEmptyRange(offset int) Range {
	return Range{Start: offset, End: offset - 1}
}

// IsValid reports whether both bounds are set and End >= Start-1.
func (r Range) IsValid() bool {
	return r.Start >= 0 && r.End >= 0 && r.End >= r.Start-1
}

// Contains reports whether offset lies within the range. An unset range contains nothing.
func (r Range) Contains(offset int) bool {
	if !r.IsValid() {
		return false
	}
	return r.Start <= offset && offset <= r.End
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	if !r.IsValid() || !other.IsValid() {
		return false
	}
	return r.Start <= other.Start && other.End <= r.End
}

// Len is End - Start + 1, zero for unset ranges.
func (r Range) Len() int {
	if !r.IsValid() {
		return 0
	}
	return r.End - r.Start + 1
}

// Slice returns the text covered by the range, or "" when the range does not fit.
func (r Range) Slice(text string) string {
	if !r.IsValid() || r.End >= len(text) {
		return ""
	}
	return text[r.Start : r.End+1]
}

func (r Range) String() string {
	return fmt.Sprintf("[%d:%d]", r.Start, r.End)
}

// Place is a zero based line and a zero based character column.
// Columns count grapheme clusters, not bytes.
type Place struct {
	Line      int
	Character int
}

func (p Place) String() string {
	return fmt.Sprintf("%d:%d", p.Line+1, p.Character+1)
}

// GetLineAndColumn calculates the place of a byte offset in text.
// Offsets past the end of the text are clamped to the end.
func GetLineAndColumn(text string, offset int) Place {
	if offset > len(text) {
		offset = len(text)
	}
	if offset <= 0 {
		return Place{}
	}

	line := strings.Count(text[:offset], "\n")
	lineStart := strings.LastIndexByte(text[:offset], '\n') + 1

	col, err := textseg.TokenCount([]byte(text[lineStart:offset]), textseg.ScanGraphemeClusters)
	if err != nil {
		col = offset - lineStart
	}

	return Place{Line: line, Character: col}
}

// GetOffset is the inverse of GetLineAndColumn. Places outside the text return -1.
func GetOffset(text string, place Place) int {
	offset := 0
	for i := 0; i < place.Line; i++ {
		idx := strings.IndexByte(text[offset:], '\n')
		if idx < 0 {
			return -1
		}
		offset += idx + 1
	}

	end := strings.IndexByte(text[offset:], '\n')
	if end < 0 {
		end = len(text) - offset
	}
	lineText := []byte(text[offset : offset+end])

	col := 0
	for col < place.Character {
		if len(lineText) == 0 {
			return -1
		}
		adv, _, err := textseg.ScanGraphemeClusters(lineText, true)
		if err != nil || adv == 0 {
			return -1
		}
		lineText = lineText[adv:]
		offset += adv
		col++
	}

	return offset
}

// Span is the pair of places covering a range, End being exclusive.
type Span struct {
	Start Place
	End   Place
}

func (r Range) ToSpan(text string) Span {
	if !r.IsValid() {
		return Span{}
	}
	return Span{
		Start: GetLineAndColumn(text, r.Start),
		End:   GetLineAndColumn(text, r.End+1),
	}
}
