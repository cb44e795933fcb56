package domain

import (
	"html"
	"regexp"
	"sort"
	"strings"
)

// SpanKind classifies a styled sub-span. The value doubles as the CSS class
// the renderer puts on the span.
type SpanKind string

const (
	SpanBlend      SpanKind = "blended-words"
	SpanOption     SpanKind = "option-words"
	SpanWeight     SpanKind = "weighted-words"
	SpanEmphasis   SpanKind = "emphasis-words"
	SpanDeEmphasis SpanKind = "de-emphasis-words"
	SpanBang       SpanKind = "bang"
)

// Span is a byte range of a phrase string. Open spans were never closed
// (an unmatched opener) and run to the end of the string.
type Span struct {
	Kind  SpanKind `json:"kind"`
	Start int      `json:"start"`
	End   int      `json:"end"`
	Open  bool     `json:"open,omitempty"`
}

// Text returns the slice of s the span covers.
func (sp Span) Text(s string) string {
	return s[sp.Start:sp.End]
}

var (
	optionPattern = regexp.MustCompile(`\{.*\}`)
	weightPattern = regexp.MustCompile(`\b\d+(\.\d+)?\b`)
)

// Classify runs the blend, option, weight, emphasis and de-emphasis passes
// over one phrase string and returns the spans in pass order.
func Classify(s string) []Span {
	var spans []Span
	spans = append(spans, blendSpans(s)...)

	// Greedy on purpose: only the outermost {...} run is flagged.
	if loc := optionPattern.FindStringIndex(s); loc != nil {
		spans = append(spans, Span{Kind: SpanOption, Start: loc[0], End: loc[1]})
	}
	for _, loc := range weightPattern.FindAllStringIndex(s, -1) {
		spans = append(spans, Span{Kind: SpanWeight, Start: loc[0], End: loc[1]})
	}

	spans = append(spans, depthSpans(s, '(', ')', SpanEmphasis)...)
	spans = append(spans, depthSpans(s, '[', ']', SpanDeEmphasis)...)
	return spans
}

// SpansOf filters spans by kind, keeping their order.
func SpansOf(spans []Span, kind SpanKind) []Span {
	var out []Span
	for _, sp := range spans {
		if sp.Kind == kind {
			out = append(out, sp)
		}
	}
	return out
}

func blendSpans(s string) []Span {
	var (
		spans []Span
		quote byte
		start int
	)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch != '"' && ch != '`' {
			continue
		}
		switch {
		case quote == 0:
			quote, start = ch, i
		case quote == ch:
			spans = append(spans, Span{Kind: SpanBlend, Start: start, End: i + 1})
			quote = 0
		}
	}
	// An unmatched trailing quote yields no span; its text stays as plain text.
	return spans
}

// depthSpans flags every maximal top-level run between open and close. A
// stray closer drives the depth negative and suppresses later runs, and an
// opener without a closer leaves its span open to the end of s.
func depthSpans(s string, open, close byte, kind SpanKind) []Span {
	var (
		spans []Span
		level int
		start int
	)
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case open:
			if level == 0 {
				start = i
			}
			level++
		case close:
			level--
			if level == 0 {
				spans = append(spans, Span{Kind: kind, Start: start, End: i + 1})
			}
		}
	}
	if level > 0 {
		spans = append(spans, Span{Kind: kind, Start: start, End: len(s), Open: true})
	}
	return spans
}

// Style renders one phrase string as markup. The bang pass applies, since the
// phrase is the whole composed output.
func Style(s string) string {
	return StyleList([]string{s})[0]
}

// StyleList renders each phrase string as markup. Only the very first
// character of the first phrase can be flagged as a bang.
func StyleList(phrases []string) []string {
	out := make([]string, len(phrases))
	for i, p := range phrases {
		spans := Classify(p)
		if i == 0 && strings.HasPrefix(p, "!") {
			spans = append(spans, Span{Kind: SpanBang, Start: 0, End: 1})
		}
		out[i] = Render(p, spans)
	}
	return out
}

type tagEvent struct {
	pos   int
	close bool
	width int
	order int
	kind  SpanKind
}

// Render interleaves span tags with the escaped text of s. At a shared
// position, closing tags come before opening tags, wider spans open first and
// close last. A span that closes while a later span is still open is split:
// the inner tags close with it and reopen after it, so the markup stays nested.
func Render(s string, spans []Span) string {
	events := make([]tagEvent, 0, len(spans)*2)
	for i, sp := range spans {
		width := sp.End - sp.Start
		events = append(events, tagEvent{pos: sp.Start, width: width, order: i, kind: sp.Kind})
		if !sp.Open {
			events = append(events, tagEvent{pos: sp.End, close: true, width: width, order: i, kind: sp.Kind})
		}
	}
	sort.SliceStable(events, func(a, b int) bool {
		ea, eb := events[a], events[b]
		if ea.pos != eb.pos {
			return ea.pos < eb.pos
		}
		if ea.close != eb.close {
			return ea.close
		}
		if ea.close {
			if ea.width != eb.width {
				return ea.width < eb.width
			}
			return ea.order > eb.order
		}
		if ea.width != eb.width {
			return ea.width > eb.width
		}
		return ea.order < eb.order
	})

	var (
		b     strings.Builder
		stack []tagEvent
		last  int
	)
	openTag := func(ev tagEvent) {
		b.WriteString(`<span class="` + string(ev.kind) + `">`)
	}
	for _, ev := range events {
		b.WriteString(textEscaper.Replace(s[last:ev.pos]))
		last = ev.pos
		if !ev.close {
			openTag(ev)
			stack = append(stack, ev)
			continue
		}
		at := len(stack) - 1
		for at >= 0 && stack[at].order != ev.order {
			at--
		}
		if at < 0 {
			continue
		}
		above := append([]tagEvent(nil), stack[at+1:]...)
		b.WriteString(strings.Repeat("</span>", len(above)+1))
		stack = append(stack[:at], above...)
		for _, inner := range above {
			openTag(inner)
		}
	}
	b.WriteString(textEscaper.Replace(s[last:]))
	return b.String()
}

var (
	textEscaper = strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	tagPattern  = regexp.MustCompile(`<[^>]+>`)
)

// StripMarkup turns rendered row markup back into plain phrase text.
func StripMarkup(markup string) string {
	plain := tagPattern.ReplaceAllString(markup, "")
	plain = strings.ReplaceAll(plain, "&nbsp;", " ")
	return strings.ReplaceAll(html.UnescapeString(plain), "\u00a0", " ")
}
