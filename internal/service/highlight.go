package service

import (
	"strings"
	"unicode"

	"github.com/okieraised/points-of-interests/internal/models"
)

// MatchRanges marks every place where a fragment word prefixes a word of text.
// Offsets are in runes and matching ignores case.
func MatchRanges(text, fragment string) []models.Range {
	tokens := fragmentTokens(fragment)
	if len(tokens) == 0 {
		return nil
	}

	// Lowercase rune by rune so offsets stay aligned with text.
	runes := []rune(text)
	for i, r := range runes {
		runes[i] = unicode.ToLower(r)
	}

	var ranges []models.Range
	for i, r := range runes {
		if !isWordRune(r) || (i > 0 && isWordRune(runes[i-1])) {
			continue
		}
		best := 0
		for _, tok := range tokens {
			if len(tok) > best && hasRunePrefix(runes[i:], tok) {
				best = len(tok)
			}
		}
		if best > 0 {
			ranges = append(ranges, models.Range{Start: i, End: i + best})
		}
	}
	return ranges
}

func fragmentTokens(fragment string) [][]rune {
	words := strings.FieldsFunc(fragment, func(r rune) bool { return !isWordRune(r) })
	tokens := make([][]rune, len(words))
	for i, w := range words {
		tok := []rune(w)
		for j, r := range tok {
			tok[j] = unicode.ToLower(r)
		}
		tokens[i] = tok
	}
	return tokens
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

func hasRunePrefix(s, prefix []rune) bool {
	if len(prefix) > len(s) {
		return false
	}
	for i := range prefix {
		if s[i] != prefix[i] {
			return false
		}
	}
	return true
}
