package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStyle(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain",
			in:   "a cat",
			want: "a cat",
		},
		{
			name: "weight nested in emphasis",
			in:   "(cat:1.2)",
			want: `<span class="emphasis-words">(cat:<span class="weighted-words">1.2</span>)</span>`,
		},
		{
			name: "nested parens make one span",
			in:   "((a (b)))",
			want: `<span class="emphasis-words">((a (b)))</span>`,
		},
		{
			name: "de-emphasis",
			in:   "[[dim]] light",
			want: `<span class="de-emphasis-words">[[dim]]</span> light`,
		},
		{
			name: "option match is greedy",
			in:   "{red|blue} and {x}",
			want: `<span class="option-words">{red|blue} and {x}</span>`,
		},
		{
			name: "blend",
			in:   "\"a\" b `c`",
			want: `<span class="blended-words">"a"</span> b <span class="blended-words">` + "`c`" + `</span>`,
		},
		{
			name: "unmatched quote stays plain",
			in:   `"a b`,
			want: `"a b`,
		},
		{
			name: "mismatched quote chars do not pair",
			in:   "\"a`",
			want: "\"a`",
		},
		{
			name: "unclosed emphasis stays open",
			in:   "(a b",
			want: `<span class="emphasis-words">(a b`,
		},
		{
			name: "bang",
			in:   "!cat",
			want: `<span class="bang">!</span>cat`,
		},
		{
			name: "escaped text",
			in:   "a < b & c",
			want: "a &lt; b &amp; c",
		},
		{
			name: "crossing spans are split",
			in:   "{a (b} c)",
			want: `<span class="option-words">{a <span class="emphasis-words">(b}</span></span><span class="emphasis-words"> c)</span>`,
		},
		{
			name: "standalone numbers",
			in:   "2 cats, 3.5",
			want: `<span class="weighted-words">2</span> cats, <span class="weighted-words">3.5</span>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Style(tt.in))
		})
	}
}

func TestClassify_StrayCloserSuppressesLaterRuns(t *testing.T) {
	spans := Classify("a) (b)")
	assert.Empty(t, SpansOf(spans, SpanEmphasis))
}

func TestClassify_OpenSpan(t *testing.T) {
	spans := SpansOf(Classify("x [y (z"), SpanDeEmphasis)
	if assert.Len(t, spans, 1) {
		assert.True(t, spans[0].Open)
		assert.Equal(t, "[y (z", spans[0].Text("x [y (z"))
	}
}

func TestStyleList_BangOnlyOnFirstPhrase(t *testing.T) {
	got := StyleList([]string{"a", "!b"})
	assert.Equal(t, []string{"a", "!b"}, got)
}

func TestStripMarkup_InvertsStyle(t *testing.T) {
	inputs := []string{
		"(cat:1.2)",
		"!a <b> & c",
		"\"q, r\" {x|y} [[z]]",
		"(open 2.5",
	}
	for _, s := range inputs {
		assert.Equal(t, s, StripMarkup(Style(s)), "input %q", s)
	}
	assert.Equal(t, "a b", StripMarkup("a&nbsp;b"))
}
