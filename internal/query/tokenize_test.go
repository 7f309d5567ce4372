// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		phrases []string
		words   []string
	}{
		{"empty", "", nil, nil},
		{"words", "Inflation  Labor", nil, []string{"inflation", "labor"}},
		{"phrase and word", `"Labor Market" inflation`, []string{"labor market"}, []string{"inflation"}},
		{"two phrases", `"a b" "c d"`, []string{"a b", "c d"}, nil},
		{"empty quotes ignored", `"" tax`, nil, []string{"tax"}},
		{"unterminated quote is a word", `"open tax`, nil, []string{`"open`, "tax"}},
		{"quote inside a word", `x"y z"`, nil, []string{`x"y`, `z"`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Tokenize(tt.in)
			assert.Equal(t, tt.phrases, got.Phrases)
			assert.Equal(t, tt.words, got.Words)
		})
	}
}

func TestMatchesIsConjunctive(t *testing.T) {
	text := "econometrica 2018 the labor market and inflation smith"

	assert.True(t, Matches(text, Tokens{}))
	assert.True(t, Matches(text, Tokenize(`"labor market" inflation`)))
	assert.True(t, Matches(text, Tokenize("infl mark")), "words match as substrings")
	assert.False(t, Matches(text, Tokenize(`"market labor"`)))
	assert.False(t, Matches(text, Tokenize("inflation unemployment")))
	assert.False(t, Matches(text, Tokenize(`"labor market" unemployment`)))
}

func TestTokensIsEmpty(t *testing.T) {
	assert.True(t, Tokenize("   ").IsEmpty())
	assert.True(t, Tokenize(`""`).IsEmpty())
	assert.False(t, Tokenize("x").IsEmpty())
}
