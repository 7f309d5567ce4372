// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"regexp"
	"strings"
)

// tokenPattern matches either a double-quoted phrase or a run of non-space
// characters. An unterminated quote is treated as part of a word.
var tokenPattern = regexp.MustCompile(`"([^"]*)"|(\S+)`)

// Tokens is parsed keyword input.
type Tokens struct {
	// Phrases are the contents of "quoted" segments.
	Phrases []string
	// Words are the remaining whitespace-separated terms.
	Words []string
}

// IsEmpty reports whether there is nothing to match.
func (t Tokens) IsEmpty() bool {
	return len(t.Phrases) == 0 && len(t.Words) == 0
}

// Tokenize lowercases keywords and splits them into exact phrases and
// individual words. Empty quotes ("") contribute nothing.
func Tokenize(keywords string) Tokens {
	var t Tokens
	for _, m := range tokenPattern.FindAllStringSubmatch(strings.ToLower(keywords), -1) {
		switch {
		case m[1] != "":
			t.Phrases = append(t.Phrases, m[1])
		case m[2] != "":
			t.Words = append(t.Words, m[2])
		}
	}
	return t
}

// Matches reports whether text contains every phrase and every word as a
// substring. text is expected to be lowercased already.
func Matches(text string, t Tokens) bool {
	for _, p := range t.Phrases {
		if !strings.Contains(text, p) {
			return false
		}
	}
	for _, w := range t.Words {
		if !strings.Contains(text, w) {
			return false
		}
	}
	return true
}
