package agent

import "strings"

const (
	headlineMaxLen = 80
	keyPointMaxLen = 120
	maxKeyPoints   = 3
)

// Summarize extracts a headline and up to three key points from an email.
// The headline prefers the subject, then the first sentence, then a prefix
// of the raw body. An empty body degrades to a single empty key point
// rather than failing.
func Summarize(email Email) EmailSummary {
	sentences := SplitSentences(email.Body)

	var first, second string
	if len(sentences) > 0 {
		first = sentences[0]
	}
	if len(sentences) > 1 {
		second = sentences[1]
	}

	headline := email.Subject
	if headline == "" {
		candidate := first
		if candidate == "" {
			candidate = prefix(email.Body, headlineMaxLen)
		}
		headline = strings.TrimSpace(Truncate(candidate, headlineMaxLen))
	}

	keyPoints := make([]string, 0, maxKeyPoints)
	for _, sentence := range sentences {
		if len(keyPoints) == maxKeyPoints {
			break
		}
		keyPoints = append(keyPoints, Truncate(sentence, keyPointMaxLen))
	}

	if len(keyPoints) == 0 {
		fallback := first
		if fallback == "" {
			fallback = second
		}
		keyPoints = append(keyPoints, Truncate(fallback, keyPointMaxLen))
	}

	return EmailSummary{Headline: headline, KeyPoints: keyPoints}
}
