// Package export renders minus-word lists in the plain-text format the ad
// platform imports directly: one negative keyword per line, each prefixed
// with a hyphen.
package export

import "strings"

// Format renders words one per line, prefixing each with "-" unless the
// word already carries one. No other punctuation is emitted; the shape is
// a compatibility requirement for the negative-keyword import.
func Format(words []string) string {
	var b strings.Builder
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		if !strings.HasPrefix(word, "-") {
			b.WriteString("-")
		}
		b.WriteString(word)
		b.WriteString("\n")
	}
	return b.String()
}

// Parse reverses Format: one word per line, a single leading hyphen
// stripped, case preserved, blank lines skipped.
func Parse(text string) []string {
	lines := strings.Split(text, "\n")
	words := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		line = strings.TrimPrefix(line, "-")
		if line == "" {
			continue
		}
		words = append(words, line)
	}
	return words
}
