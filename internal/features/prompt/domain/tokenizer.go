package domain

import "strings"

// Tokenize splits a flat prompt into trimmed, non-empty phrases.
//
// Commas end a phrase only at bracket depth zero, and a closing bracket that
// returns the depth to zero ends the phrase it closes. A period followed by a
// space is treated as a sentence break. Quoted spans (" or `) are copied
// verbatim, so they may contain commas and brackets.
func Tokenize(text string) []string {
	var (
		stack    []rune
		buf      strings.Builder
		phrases  []string
		inQuotes bool
	)

	emit := func() {
		if p := strings.TrimSpace(buf.String()); p != "" {
			phrases = append(phrases, p)
		}
		buf.Reset()
	}

	runes := []rune(text)
	for i, ch := range runes {
		if ch == '"' || ch == '`' {
			inQuotes = !inQuotes
		}
		if inQuotes {
			buf.WriteRune(ch)
			continue
		}

		switch {
		case isOpener(ch):
			stack = append(stack, ch)
			buf.WriteRune(ch)
		case isCloser(ch):
			buf.WriteRune(ch)
			var last rune
			if n := len(stack); n > 0 {
				last = stack[n-1]
				stack = stack[:n-1]
			}
			// A mismatched closer still pops; only a matched pair can end the phrase.
			if len(stack) == 0 && closerFor(last) == ch {
				emit()
			}
		case ch == '.' && len(stack) == 0 && i+1 < len(runes) && runes[i+1] == ' ':
			emit()
		case ch == ',' && len(stack) == 0:
			emit()
		default:
			buf.WriteRune(ch)
		}
	}
	emit()

	return phrases
}

// JoinPhrases is the inverse of Tokenize for already-trimmed phrases.
func JoinPhrases(phrases []string) string {
	return strings.Join(phrases, PhraseSeparator)
}

func isOpener(ch rune) bool {
	return ch == '(' || ch == '[' || ch == '{'
}

func isCloser(ch rune) bool {
	return ch == ')' || ch == ']' || ch == '}'
}

func closerFor(open rune) rune {
	switch open {
	case '(':
		return ')'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return 0
}
