package index

import (
	"strings"
	"unicode"
)

// stopWords are excluded from the token set; they match everything and
// rank nothing.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "and": {}, "are": {}, "as": {}, "at": {},
	"be": {}, "by": {}, "for": {}, "from": {}, "has": {}, "he": {},
	"in": {}, "is": {}, "it": {}, "its": {}, "of": {}, "on": {},
	"that": {}, "the": {}, "to": {}, "was": {}, "were": {}, "will": {},
	"with": {},
}

// Tokenize lowercases text, splits it on non-alphanumeric runs, and drops
// stop words and single characters. Duplicates are removed; order is not
// significant.
func Tokenize(texts ...string) []string {
	seen := make(map[string]struct{})
	var tokens []string
	for _, text := range texts {
		words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		for _, word := range words {
			if len(word) < 2 {
				continue
			}
			if _, stop := stopWords[word]; stop {
				continue
			}
			if _, dup := seen[word]; dup {
				continue
			}
			seen[word] = struct{}{}
			tokens = append(tokens, word)
		}
	}
	return tokens
}
