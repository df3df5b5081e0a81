package agent

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	sentenceBoundary = regexp.MustCompile(`([.!?])\s+`)
	newlineRun       = regexp.MustCompile(`\n+`)
	nameSeparators   = strings.NewReplacer(".", " ", "_", " ", "-", " ")
)

// SplitSentences breaks free text into trimmed, non-empty sentences. A
// sentence ends at terminal punctuation followed by whitespace, or at a run
// of newlines. Source order is preserved.
func SplitSentences(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	marked := sentenceBoundary.ReplaceAllString(text, "$1\n")

	var sentences []string
	for _, piece := range newlineRun.Split(marked, -1) {
		piece = strings.TrimSpace(piece)
		if piece != "" {
			sentences = append(sentences, piece)
		}
	}
	return sentences
}

// Truncate shortens text to at most maxLen characters, appending a
// three-character ellipsis when there is room for one. The result never
// exceeds maxLen.
func Truncate(text string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(text)
	if len(runes) <= maxLen {
		return text
	}
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}

// NameFromAddress derives a display name from the local part of an email
// address: separators become spaces and each word gets a capital first
// letter. Used as a greeting fallback when the sender name is empty.
func NameFromAddress(address string) string {
	local, _, _ := strings.Cut(address, "@")
	cleaned := nameSeparators.Replace(local)

	var b strings.Builder
	b.Grow(len(cleaned))
	prevWord := false
	for _, r := range cleaned {
		if prevWord {
			b.WriteRune(r)
		} else {
			b.WriteRune(unicode.ToUpper(r))
		}
		prevWord = unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return strings.TrimSpace(b.String())
}

// prefix returns the first n characters of text without breaking runes.
func prefix(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n])
}
