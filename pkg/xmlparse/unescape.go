package xmlparse

import (
	"strconv"
	"strings"
	"unicode/utf8"
)

var predefinedEntities = map[string]string{
	"amp":  "&",
	"lt":   "<",
	"gt":   ">",
	"quot": `"`,
	"apos": "'",
}

// Unescape replaces the predefined entities and character references of s.
// Unknown or malformed references are kept as written.
func Unescape(s string) string {
	if strings.IndexByte(s, '&') < 0 {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for {
		i := strings.IndexByte(s, '&')
		if i < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		sb.WriteString(s[:i])
		s = s[i:]

		semi := strings.IndexByte(s, ';')
		if semi < 0 {
			sb.WriteString(s)
			return sb.String()
		}
		if r, ok := decodeReference(s[1:semi]); ok {
			sb.WriteString(r)
			s = s[semi+1:]
			continue
		}
		sb.WriteByte('&')
		s = s[1:]
	}
}

func decodeReference(ref string) (string, bool) {
	if v, ok := predefinedEntities[ref]; ok {
		return v, true
	}
	num, ok := strings.CutPrefix(ref, "#")
	if !ok {
		return "", false
	}
	base := 10
	if hex, ok := strings.CutPrefix(num, "x"); ok {
		num, base = hex, 16
	}
	n, err := strconv.ParseUint(num, base, 32)
	if err != nil || !utf8.ValidRune(rune(n)) {
		return "", false
	}
	return string(rune(n)), true
}
