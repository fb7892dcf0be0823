// Package heuristics scores a single message on surface-level aggression
// signals, independent of any lexicon match. All checks are pure functions of
// the text.
package heuristics

import (
	"regexp"
	"strings"
	"unicode"
)

// maximal runs of word characters, 15 chars or longer ("shout words")
var longWordRegex = regexp.MustCompile(`\b\w{15,}\b`)

// ContextScore returns a small additive score for shouting and emphasis:
// +2 if the entire text is uppercase, +1 if it contains '!' or '?', and +1 if
// it contains more than two words of 15+ characters.
func ContextScore(text string) int {
	score := 0
	if isShouting(text) {
		score += 2
	}
	if strings.ContainsAny(text, "!?") {
		score += 1
	}
	if len(longWordRegex.FindAllString(text, -1)) > 2 {
		score += 1
	}
	return score
}

// true if the text contains at least one letter and no lowercase letters
func isShouting(text string) bool {
	hasLetter := false
	for _, c := range text {
		if unicode.IsLetter(c) {
			hasLetter = true
			if unicode.IsLower(c) {
				return false
			}
		}
	}
	return hasLetter
}
