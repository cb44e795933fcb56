package domain

import "strings"

// ToRows tokenizes the flat text into one row per phrase, in order.
func ToRows(text string) []Row {
	segments := Tokenize(text)
	markup := StyleList(segments)
	rows := make([]Row, len(segments))
	for i, seg := range segments {
		p := NewPhrase(seg)
		row := Row{
			Index:   i,
			Raw:     p.Raw,
			Wrapper: p.Wrapper,
			Value:   p.Value,
			Markup:  markup[i],
		}
		if p.IsPlaceholder() {
			row.Value = ""
			row.Markup = ""
			row.Placeholder = true
		}
		rows[i] = row
	}
	return rows
}

// ToText rebuilds the flat text from the plain live values of the rows. A value
// starting with a comma gains a placeholder phrase before it, and one ending
// with a comma gains a placeholder after it. Empty values are dropped.
func ToText(values []string) string {
	phrases := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		var before, after bool
		if strings.HasPrefix(v, ",") {
			v = strings.TrimSpace(v[1:])
			before = true
		}
		if strings.HasSuffix(v, ",") {
			v = strings.TrimSpace(v[:len(v)-1])
			after = true
		}
		if before {
			phrases = append(phrases, PlaceholderPhrase)
		}
		if v != "" {
			phrases = append(phrases, v)
		}
		if after {
			phrases = append(phrases, PlaceholderPhrase)
		}
	}
	return JoinPhrases(phrases)
}

// Move removes the element at source and inserts it at target, where target
// indexes the already-shortened list. Out-of-range indexes leave the list as is.
func Move[T any](list []T, source, target int) []T {
	out := make([]T, len(list))
	copy(out, list)
	if source < 0 || source >= len(list) || target < 0 {
		return out
	}
	item := out[source]
	out = append(out[:source], out[source+1:]...)
	if target > len(out) {
		target = len(out)
	}
	out = append(out, item)
	copy(out[target+1:], out[target:len(out)-1])
	out[target] = item
	return out
}

// MoveText reorders the phrase at source to target and returns the new text.
func MoveText(text string, source, target int) string {
	return JoinPhrases(Move(Tokenize(text), source, target))
}

// DeleteByRowIdentity removes the first occurrence of rowText from text,
// preferring an occurrence with a leading separator so the comma goes with
// the phrase. Duplicate phrases are resolved by first match; a missing
// phrase leaves the text unchanged.
func DeleteByRowIdentity(text, rowText string) string {
	if rowText == "" {
		return text
	}
	for _, candidate := range []string{PhraseSeparator + rowText, "," + rowText, rowText} {
		if strings.Contains(text, candidate) {
			return strings.Replace(text, candidate, "", 1)
		}
	}
	return text
}
