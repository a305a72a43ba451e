// Package xmlparse implements a tolerant, single pass XML tokenizer.
//
// The tokenizer never fails. Malformed constructs are closed at the most
// permissive point (end of input, the next '<', the next '>') so the rest of
// the text is still tokenized. Every event carries the byte offsets it covers.
package xmlparse

import (
	"strings"

	"github.com/walteh/rwxml/pkg/position"
)

// Event is one step of the token stream.
//
//	KindOpenTagName  Name, NameRange, Range.Start ('<')
//	KindAttribute    Name, NameRange, Value, ValueRange, Range
//	KindOpenTagEnd   Name, Range (whole open tag), SelfClosing
//	KindText         Value, Range
//	KindComment      Value (payload), ValueRange, Range
//	KindCDATA        Value (payload), ValueRange, Range
//	KindProcInst     Name (target), Value (body), ValueRange, Range
//	KindCloseTag     Name, NameRange, Range
type Event struct {
	Kind        Kind
	Name        string
	NameRange   position.Range
	Value       string
	ValueRange  position.Range
	Range       position.Range
	SelfClosing bool
	// Unterminated is set when the construct was closed by recovery rather than by its own delimiter.
	Unterminated bool
}

// Tokenizer turns source text into Events. The zero value is not usable, see NewTokenizer.
type Tokenizer struct {
	src   string
	pos   int
	state State

	// offset of the '<' of the tag being tokenized
	tagStart int
	tagName  string

	// pending attribute while in StateAttributeValue
	attrName      string
	attrNameRange position.Range
}

func NewTokenizer(src string) *Tokenizer {
	return &Tokenizer{src: src, state: StateContent}
}

// Tokenize returns every event of src, excluding the final KindEOF.
func Tokenize(src string) []Event {
	tok := NewTokenizer(src)
	var events []Event
	for {
		ev := tok.Next()
		if ev.Kind == KindEOF {
			return events
		}
		events = append(events, ev)
	}
}

func (t *Tokenizer) State() State {
	return t.state
}

func (t *Tokenizer) Offset() int {
	return t.pos
}

// Next returns the next event. Once the input is exhausted it keeps returning KindEOF.
func (t *Tokenizer) Next() Event {
	for {
		switch t.state {
		case StateContent:
			if t.pos >= len(t.src) {
				return Event{Kind: KindEOF, Range: position.NewEmptyRange(len(t.src))}
			}
			if t.src[t.pos] == '<' {
				t.state = StateTagOpenStart
				continue
			}
			return t.text()

		case StateTagOpenStart:
			t.tagStart = t.pos
			rest := t.src[t.pos:]
			switch {
			case strings.HasPrefix(rest, "<!--"):
				t.state = StateComment
			case strings.HasPrefix(rest, "<![CDATA["):
				t.state = StateCDATA
			case strings.HasPrefix(rest, "<?xml") && len(rest) > 5 && (isSpace(rest[5]) || rest[5] == '?'):
				t.state = StateXMLDeclaration
			case strings.HasPrefix(rest, "<?"), strings.HasPrefix(rest, "<!"):
				t.state = StateProcessingInstruction
			case strings.HasPrefix(rest, "</"):
				t.state = StateEndTagName
			case len(rest) > 1 && isNameStart(rest[1]):
				t.state = StateTagName
			default:
				// a '<' that cannot start markup is literal text
				t.state = StateContent
				t.pos++
				return Event{Kind: KindText, Value: "<", Range: position.NewRange(t.tagStart, t.tagStart)}
			}

		case StateTagName:
			return t.openTagName()

		case StateAttributeName:
			if ev, ok := t.attributeName(); ok {
				return ev
			}

		case StateAttributeValue:
			return t.attributeValue()

		case StateEndTagName:
			return t.closeTag()

		case StateComment:
			return t.delimited(KindComment, len("<!--"), "-->")

		case StateCDATA:
			return t.delimited(KindCDATA, len("<![CDATA["), "]]>")

		case StateXMLDeclaration, StateProcessingInstruction:
			return t.procInst()
		}
	}
}

func (t *Tokenizer) text() Event {
	start := t.pos
	end := strings.IndexByte(t.src[start:], '<')
	if end < 0 {
		t.pos = len(t.src)
	} else {
		t.pos = start + end
	}
	return Event{
		Kind:  KindText,
		Value: t.src[start:t.pos],
		Range: position.NewRange(start, t.pos-1),
	}
}

func (t *Tokenizer) openTagName() Event {
	nameStart := t.tagStart + 1
	t.pos = scanName(t.src, nameStart)
	t.tagName = t.src[nameStart:t.pos]
	t.state = StateAttributeName
	return Event{
		Kind:      KindOpenTagName,
		Name:      t.tagName,
		NameRange: position.NewRange(nameStart, t.pos-1),
		Range:     position.Range{Start: t.tagStart, End: -1},
	}
}

// attributeName reports false when it consumed input without producing an event.
func (t *Tokenizer) attributeName() (Event, bool) {
	t.pos = skipSpace(t.src, t.pos)

	if t.pos >= len(t.src) {
		return t.endOpenTag(len(t.src)-1, false, true), true
	}

	switch c := t.src[t.pos]; {
	case c == '>':
		t.pos++
		return t.endOpenTag(t.pos-1, false, false), true
	case c == '/' && t.pos+1 < len(t.src) && t.src[t.pos+1] == '>':
		t.pos += 2
		return t.endOpenTag(t.pos-1, true, false), true
	case c == '<':
		// unterminated tag, the '<' belongs to the next construct
		return t.endOpenTag(t.pos-1, false, true), true
	case c == '/' || c == '=' || c == '"' || c == '\'':
		t.pos++
		return Event{}, false
	}

	nameStart := t.pos
	t.pos = scanName(t.src, nameStart)
	t.attrName = t.src[nameStart:t.pos]
	t.attrNameRange = position.NewRange(nameStart, t.pos-1)

	next := skipSpace(t.src, t.pos)
	if next < len(t.src) && t.src[next] == '=' {
		t.pos = skipSpace(t.src, next+1)
		t.state = StateAttributeValue
		return Event{}, false
	}

	return Event{
		Kind:       KindAttribute,
		Name:       t.attrName,
		NameRange:  t.attrNameRange,
		ValueRange: position.Unset,
		Range:      t.attrNameRange,
	}, true
}

func (t *Tokenizer) attributeValue() Event {
	t.state = StateAttributeName
	ev := Event{
		Kind:      KindAttribute,
		Name:      t.attrName,
		NameRange: t.attrNameRange,
	}

	if t.pos >= len(t.src) {
		ev.ValueRange = position.Unset
		ev.Range = t.attrNameRange
		ev.Unterminated = true
		return ev
	}

	if q := t.src[t.pos]; q == '"' || q == '\'' {
		valueStart := t.pos + 1
		end := strings.IndexByte(t.src[valueStart:], q)
		if end >= 0 {
			end += valueStart
			ev.Value = t.src[valueStart:end]
			ev.ValueRange = position.NewRange(valueStart, end-1)
			ev.Range = position.NewRange(t.attrNameRange.Start, end)
			t.pos = end + 1
			return ev
		}
		// no closing quote, stop the value at the end of the tag
		end = strings.IndexByte(t.src[valueStart:], '>')
		if end < 0 {
			end = len(t.src)
		} else {
			end += valueStart
		}
		ev.Value = t.src[valueStart:end]
		ev.ValueRange = position.NewRange(valueStart, end-1)
		ev.Range = position.NewRange(t.attrNameRange.Start, end-1)
		ev.Unterminated = true
		t.pos = end
		return ev
	}

	valueStart := t.pos
	end := valueStart
	for end < len(t.src) {
		c := t.src[end]
		if isSpace(c) || c == '>' || (c == '/' && end+1 < len(t.src) && t.src[end+1] == '>') {
			break
		}
		end++
	}
	ev.Value = t.src[valueStart:end]
	ev.ValueRange = position.NewRange(valueStart, end-1)
	ev.Range = position.NewRange(t.attrNameRange.Start, end-1)
	t.pos = end
	return ev
}

func (t *Tokenizer) endOpenTag(end int, selfClosing, unterminated bool) Event {
	t.state = StateContent
	return Event{
		Kind:         KindOpenTagEnd,
		Name:         t.tagName,
		Range:        position.NewRange(t.tagStart, end),
		SelfClosing:  selfClosing,
		Unterminated: unterminated,
	}
}

func (t *Tokenizer) closeTag() Event {
	t.state = StateContent
	nameStart := t.tagStart + 2
	nameEnd := scanName(t.src, nameStart)

	ev := Event{
		Kind:      KindCloseTag,
		Name:      t.src[nameStart:nameEnd],
		NameRange: position.NewRange(nameStart, nameEnd-1),
	}

	i := nameEnd
	for i < len(t.src) && t.src[i] != '>' && t.src[i] != '<' {
		i++
	}
	switch {
	case i >= len(t.src):
		ev.Range = position.NewRange(t.tagStart, len(t.src)-1)
		ev.Unterminated = true
		t.pos = len(t.src)
	case t.src[i] == '<':
		ev.Range = position.NewRange(t.tagStart, i-1)
		ev.Unterminated = true
		t.pos = i
	default:
		ev.Range = position.NewRange(t.tagStart, i)
		t.pos = i + 1
	}
	return ev
}

func (t *Tokenizer) delimited(kind Kind, openLen int, closer string) Event {
	t.state = StateContent
	payloadStart := t.tagStart + openLen
	ev := Event{Kind: kind}

	end := strings.Index(t.src[payloadStart:], closer)
	if end < 0 {
		ev.Value = t.src[payloadStart:]
		ev.ValueRange = position.NewRange(payloadStart, len(t.src)-1)
		ev.Range = position.NewRange(t.tagStart, len(t.src)-1)
		ev.Unterminated = true
		t.pos = len(t.src)
		return ev
	}

	end += payloadStart
	ev.Value = t.src[payloadStart:end]
	ev.ValueRange = position.NewRange(payloadStart, end-1)
	ev.Range = position.NewRange(t.tagStart, end+len(closer)-1)
	t.pos = end + len(closer)
	return ev
}

// procInst handles <?target body?>, the XML declaration and <!DOCTYPE ...> style declarations.
// Declarations are reported with a target starting with '!'. Without a closer the
// construct ends at the first '>' or before the next '<'.
func (t *Tokenizer) procInst() Event {
	t.state = StateContent
	declaration := t.src[t.tagStart+1] == '!'

	nameStart := t.tagStart + 2
	if declaration {
		nameStart = t.tagStart + 1
	}
	nameEnd := t.tagStart + 2
	for nameEnd < len(t.src) && isNameChar(t.src[nameEnd]) && t.src[nameEnd] != '?' {
		nameEnd++
	}

	closer := "?>"
	end := -1
	if declaration {
		closer = ">"
		end = declarationEnd(t.src, nameEnd)
	} else if idx := strings.Index(t.src[t.tagStart+1:], closer); idx >= 0 {
		// "<?>" shares its '?' with the closer
		end = t.tagStart + 1 + idx
	}

	unterminated := end < 0
	if unterminated {
		end, closer = recoverEnd(t.src, nameEnd)
	}

	if nameStart > end {
		nameStart, nameEnd = end, end
	}
	bodyStart := skipSpace(t.src, nameEnd)
	if bodyStart > end {
		bodyStart = end
	}

	t.pos = end + len(closer)
	return Event{
		Kind:         KindProcInst,
		Name:         t.src[nameStart:nameEnd],
		NameRange:    position.NewRange(nameStart, nameEnd-1),
		Value:        t.src[bodyStart:end],
		ValueRange:   position.NewRange(bodyStart, end-1),
		Range:        position.NewRange(t.tagStart, t.pos-1),
		Unterminated: unterminated,
	}
}

// recoverEnd returns the offset of the first '>' or '<' at or after from, with the
// '>' as closer. It returns the end of input when there is neither.
func recoverEnd(src string, from int) (int, string) {
	i := strings.IndexAny(src[from:], "<>")
	if i < 0 {
		return len(src), ""
	}
	if src[from+i] == '>' {
		return from + i, ">"
	}
	return from + i, ""
}

// declarationEnd finds the '>' closing a declaration, skipping a bracketed internal subset.
func declarationEnd(src string, from int) int {
	depth := 0
	for i := from; i < len(src); i++ {
		switch src[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '>':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func scanName(src string, from int) int {
	i := from
	for i < len(src) && isNameChar(src[i]) {
		i++
	}
	return i
}

func skipSpace(src string, from int) int {
	i := from
	for i < len(src) && isSpace(src[i]) {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isNameStart(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c == '_' || c == ':' || c >= 0x80
}

func isNameChar(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '/', '>', '<', '=', '"', '\'':
		return false
	}
	return true
}
