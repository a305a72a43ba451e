package dom

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/walteh/rwxml/pkg/position"
	"github.com/walteh/rwxml/pkg/xmlparse"
)

// Parse builds a document tree from text. It never fails: malformed markup is
// recovered by the tokenizer and unclosed elements are closed at end of input.
func Parse(ctx context.Context, uri string, text string) *Document {
	doc := &Document{uri: uri, text: text}
	doc.doc = doc
	doc.rng = position.NewRange(0, len(text)-1)

	b := &builder{doc: doc, stack: []Parent{doc}}

	tok := xmlparse.NewTokenizer(text)
	for ev := tok.Next(); ev.Kind != xmlparse.KindEOF; ev = tok.Next() {
		b.handle(ev)
	}
	b.finish()

	zerolog.Ctx(ctx).Debug().
		Str("uri", uri).
		Int("bytes", len(text)).
		Int("elements", b.elements).
		Int("stray_close_tags", len(doc.strays)).
		Msg("parsed document")

	return doc
}

type builder struct {
	doc   *Document
	stack []Parent

	elements int
}

func (b *builder) top() Parent {
	return b.stack[len(b.stack)-1]
}

func (b *builder) attach(n Node) {
	parent := b.top()
	base := n.base()
	base.doc = b.doc
	base.parent = parent
	parent.appendChild(n)
}

func (b *builder) lastChild() Node {
	nodes := b.top().Children()
	if len(nodes) == 0 {
		return nil
	}
	return nodes[len(nodes)-1]
}

func (b *builder) handle(ev xmlparse.Event) {
	switch ev.Kind {
	case xmlparse.KindOpenTagName:
		el := &Element{
			Name:           ev.Name,
			NameRange:      ev.NameRange,
			OpenTagRange:   position.Unset,
			CloseTagRange:  position.Unset,
			CloseNameRange: position.Unset,
		}
		el.rng = position.Range{Start: ev.Range.Start, End: -1}
		b.attach(el)
		b.stack = append(b.stack, el)
		b.elements++

	case xmlparse.KindAttribute:
		el, ok := b.top().(*Element)
		if !ok {
			return
		}
		el.attrs = append(el.attrs, &Attr{
			Name:       ev.Name,
			Value:      xmlparse.Unescape(ev.Value),
			NameRange:  ev.NameRange,
			ValueRange: ev.ValueRange,
		})

	case xmlparse.KindOpenTagEnd:
		el, ok := b.top().(*Element)
		if !ok {
			return
		}
		el.OpenTagRange = ev.Range
		el.rng.End = ev.Range.End
		if ev.SelfClosing {
			el.SelfClosing = true
			b.stack = b.stack[:len(b.stack)-1]
		}

	case xmlparse.KindText, xmlparse.KindCDATA:
		data := ev.Value
		if ev.Kind == xmlparse.KindText {
			data = xmlparse.Unescape(data)
		}
		if prev, ok := b.lastChild().(*Text); ok && prev.rng.End+1 == ev.Range.Start {
			prev.data += data
			prev.rng.End = ev.Range.End
			return
		}
		b.attach(&Text{node: node{rng: ev.Range}, data: data, CDATA: ev.Kind == xmlparse.KindCDATA})

	case xmlparse.KindComment:
		if prev, ok := b.lastChild().(*Comment); ok && prev.rng.End+1 == ev.Range.Start {
			prev.data += ev.Value
			prev.rng.End = ev.Range.End
			return
		}
		b.attach(&Comment{node: node{rng: ev.Range}, data: ev.Value})

	case xmlparse.KindProcInst:
		b.attach(&ProcInst{node: node{rng: ev.Range}, Target: ev.Name, data: ev.Value})

	case xmlparse.KindCloseTag:
		b.closeTag(ev)
	}
}

func (b *builder) closeTag(ev xmlparse.Event) {
	match := -1
	for i := len(b.stack) - 1; i > 0; i-- {
		if el, ok := b.stack[i].(*Element); ok && el.Name == ev.Name {
			match = i
			break
		}
	}
	if match < 0 {
		// a close tag without an open element leaves a gap in the tree
		b.doc.strays = append(b.doc.strays, ev.Range)
		return
	}

	for i := len(b.stack) - 1; i > match; i-- {
		closeImplicitly(b.stack[i].(*Element))
	}

	el := b.stack[match].(*Element)
	el.CloseTagRange = ev.Range
	el.CloseNameRange = ev.NameRange
	el.rng.End = ev.Range.End
	b.stack = b.stack[:match]
}

func (b *builder) finish() {
	for i := len(b.stack) - 1; i > 0; i-- {
		closeImplicitly(b.stack[i].(*Element))
	}
	b.stack = b.stack[:1]
}

// closeImplicitly ends an element at the end of its last child.
func closeImplicitly(el *Element) {
	end := el.OpenTagRange.End
	if n := len(el.nodes); n > 0 {
		if last := el.nodes[n-1].Range().End; last > end {
			end = last
		}
	}
	el.rng.End = end
}
