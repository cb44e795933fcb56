package domain

import (
	"math"
	"strconv"
	"strings"
)

// Direction of a wheel gesture: Up wraps (or raises), Down unwraps (or lowers).
type Direction int

const (
	Up   Direction = 1
	Down Direction = -1
)

// WeightIncrement is the change applied per wheel step on a weight span.
const WeightIncrement = 0.01

// DefaultWeight is appended by AddWeight.
const DefaultWeight = "1.0"

// AdjustWeight shifts a numeric weight by deltaSteps increments, rounded to two
// decimals. There is no clamp. A non-numeric weight is returned unchanged.
func AdjustWeight(weight string, deltaSteps int) string {
	w, err := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	if err != nil {
		return weight
	}
	w = math.Round((w+WeightIncrement*float64(deltaSteps))*100) / 100
	return strconv.FormatFloat(w, 'f', 2, 64)
}

// ToggleEmphasis adds one bracket pair around an emphasis or de-emphasis span
// when dir is Up, and removes one pair when dir is Down and the span is at
// least doubly wrapped. The last pair is never removed here.
func ToggleEmphasis(span string, kind SpanKind, dir Direction) string {
	open, close := "(", ")"
	if kind == SpanDeEmphasis {
		open, close = "[", "]"
	}
	if dir == Up {
		return open + span + close
	}
	if strings.HasPrefix(span, open+open) && strings.HasSuffix(span, close) {
		return span[1 : len(span)-1]
	}
	return span
}

// AdjustWeightAt rewrites the index-th weight span of a phrase.
func AdjustWeightAt(phrase string, index, deltaSteps int) (string, error) {
	weights := SpansOf(Classify(phrase), SpanWeight)
	if index < 0 || index >= len(weights) {
		return phrase, ErrSpanOutOfRange
	}
	sp := weights[index]
	return phrase[:sp.Start] + AdjustWeight(sp.Text(phrase), deltaSteps) + phrase[sp.End:], nil
}

// ToggleEmphasisAt rewrites the index-th emphasis or de-emphasis span of a phrase.
func ToggleEmphasisAt(phrase string, kind SpanKind, index int, dir Direction) (string, error) {
	spans := SpansOf(Classify(phrase), kind)
	if index < 0 || index >= len(spans) {
		return phrase, ErrSpanOutOfRange
	}
	sp := spans[index]
	return phrase[:sp.Start] + ToggleEmphasis(sp.Text(phrase), kind, dir) + phrase[sp.End:], nil
}

// AdjustWrapper changes a row's wrapper by one level. Up strips a
// de-emphasis bracket if there is one and otherwise adds an emphasis pair;
// Down does the mirror image.
func AdjustWrapper(w Wrapper, dir Direction) Wrapper {
	strip, add := "[", Wrapper{Front: "(", Back: ")"}
	if dir == Down {
		strip, add = "(", Wrapper{Front: "[", Back: "]"}
	}
	if strings.Contains(w.Front, strip) {
		return Wrapper{Front: w.Front[1:], Back: w.Back[:len(w.Back)-1]}
	}
	return Wrapper{Front: add.Front + w.Front, Back: w.Back + add.Back}
}

// WrapKind selects the brackets WrapSelection puts around a selection.
type WrapKind string

const (
	WrapEmphasis   WrapKind = "emphasis"
	WrapDeEmphasis WrapKind = "de-emphasis"
	WrapOption     WrapKind = "option"
	WrapBlend      WrapKind = "blend"
)

// WrapSelection wraps the first occurrence of selection in text.
func WrapSelection(text, selection string, kind WrapKind) string {
	if selection == "" {
		return text
	}
	var wrapped string
	switch kind {
	case WrapEmphasis:
		wrapped = "(" + selection + ")"
	case WrapDeEmphasis:
		wrapped = "[" + selection + "]"
	case WrapOption:
		wrapped = "{" + selection + "}"
	case WrapBlend:
		wrapped = "`" + selection + "`"
	default:
		return text
	}
	return strings.Replace(text, selection, wrapped, 1)
}

// AddWeight appends ":1.0" after the selected byte range of a phrase unless
// the selection is empty or already carries a weight.
func AddWeight(phrase string, start, end int) string {
	if start < 0 || end > len(phrase) || start >= end {
		return phrase
	}
	if strings.Contains(phrase[start:end], ":") {
		return phrase
	}
	return phrase[:end] + ":" + DefaultWeight + phrase[end:]
}

// CountTokens estimates the token count of a prompt: every digit counts as a
// token, and every four other non-whitespace characters count as one.
func CountTokens(text string) int {
	digits, others := 0, 0
	for _, r := range text {
		switch {
		case r >= '0' && r <= '9':
			digits++
		case r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '\f' || r == '\v':
		default:
			others++
		}
	}
	return digits + (others+3)/4
}
