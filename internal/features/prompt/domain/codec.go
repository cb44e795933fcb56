package domain

import "strings"

// Decompose splits a phrase into its wrapper and inner value.
//
// A phrase fully wrapped in braces gets a single {} wrapper. A phrase starting
// with ( or [ takes the leading run of ( and [ characters as its front wrapper
// and the same number of trailing characters as its back wrapper; the bracket
// types on the two sides are not checked against each other.
func Decompose(raw string) (Wrapper, string) {
	runes := []rune(raw)
	n := len(runes)
	if n == 0 {
		return Wrapper{}, raw
	}

	if n >= 2 && runes[0] == '{' && runes[n-1] == '}' {
		return Wrapper{Front: "{", Back: "}"}, strings.TrimSpace(string(runes[1 : n-1]))
	}

	if runes[0] != '(' && runes[0] != '[' {
		return Wrapper{}, raw
	}

	k := 0
	for k < n && (runes[k] == '(' || runes[k] == '[') {
		k++
	}
	if k > n/2 {
		k = n / 2
	}

	return Wrapper{
		Front: string(runes[:k]),
		Back:  string(runes[n-k:]),
	}, strings.TrimSpace(string(runes[k : n-k]))
}

// Recompose is the inverse of Decompose.
func Recompose(w Wrapper, value string) string {
	return w.Front + value + w.Back
}
