package domain

import (
	"errors"
	"strings"
)

const (
	// PhraseSeparator joins phrases when the flat text is rebuilt.
	PhraseSeparator = ", "
	// PlaceholderPhrase is spliced into the text when a row gains a boundary comma.
	PlaceholderPhrase = "New Prompt"
)

var (
	ErrRowOutOfRange  = errors.New("row index out of range")
	ErrSpanOutOfRange = errors.New("span index out of range")
)

// Wrapper is the leading/trailing bracket run around a phrase value.
// Front and Back always hold the same number of characters.
type Wrapper struct {
	Front string `json:"front"`
	Back  string `json:"back"`
}

// Empty reports whether the wrapper carries no brackets.
func (w Wrapper) Empty() bool {
	return w.Front == "" && w.Back == ""
}

// Depth is the number of bracket characters on each side.
func (w Wrapper) Depth() int {
	return len([]rune(w.Front))
}

// String renders the wrapper the way the row handle shows it, e.g. "(())".
func (w Wrapper) String() string {
	return w.Front + w.Back
}

// Phrase is one tokenized segment of the prompt text.
type Phrase struct {
	Raw     string  `json:"raw"`
	Wrapper Wrapper `json:"wrapper"`
	Value   string  `json:"value"`
}

// NewPhrase decomposes a raw segment.
func NewPhrase(raw string) Phrase {
	w, v := Decompose(raw)
	return Phrase{Raw: raw, Wrapper: w, Value: v}
}

// IsPlaceholder reports whether the phrase is an unfilled "New Prompt" row.
func (p Phrase) IsPlaceholder() bool {
	return strings.TrimSpace(p.Value) == PlaceholderPhrase
}

// Row is the structured view of one phrase at an ordinal position.
type Row struct {
	Index       int     `json:"index"`
	Raw         string  `json:"raw"`
	Wrapper     Wrapper `json:"wrapper"`
	Value       string  `json:"value"`
	Markup      string  `json:"markup"`
	Placeholder bool    `json:"placeholder,omitempty"`
}

// Phrase returns the text the row contributes to the flat prompt.
func (r Row) Phrase() string {
	return Recompose(r.Wrapper, r.Value)
}
