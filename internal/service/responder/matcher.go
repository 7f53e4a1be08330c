package responder

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/portfolio-chat/backend/internal/model/knowledge"
)

// minMatchingWords is how many long question words must appear in the input.
const minMatchingWords = 2

// Phrases that select an entry whenever both the input and its question contain them.
var anchorPhrases = []string{"who are you", "projects", "achievement", "career goals"}

var punctuation = regexp.MustCompile(`[^\w\s]`)

// Match returns the answer of the first entry the input matches. The check is a
// case-insensitive substring heuristic and may produce false positives.
func Match(entries []knowledge.Entry, input string) (string, bool) {
	message := strings.ToLower(input)

	for _, entry := range entries {
		question := strings.ToLower(entry.Question)

		matching := 0
		for _, word := range strings.Split(question, " ") {
			if utf8.RuneCountInString(word) > 3 && strings.Contains(message, word) {
				matching++
			}
		}

		if matching >= minMatchingWords || strings.Contains(message, punctuation.ReplaceAllString(question, "")) {
			return entry.Answer, true
		}

		for _, phrase := range anchorPhrases {
			if strings.Contains(message, phrase) && strings.Contains(question, phrase) {
				return entry.Answer, true
			}
		}
	}

	return "", false
}

// Greeting returns the canned reply for "hello" or "hi", checked in that order.
func Greeting(input, hello, hi string) (string, bool) {
	message := strings.ToLower(input)
	switch {
	case strings.Contains(message, "hello"):
		return hello, true
	case strings.Contains(message, "hi"):
		return hi, true
	default:
		return "", false
	}
}
