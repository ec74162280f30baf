// Package textwrap splits subtitle text into display lines.
package textwrap

import (
	"strings"
	"unicode/utf8"
)

// Normalize collapses text to a single logical line: hard line breaks become
// spaces and surrounding whitespace is trimmed.
func Normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", " ")
	text = strings.ReplaceAll(text, "\n", " ")
	text = strings.ReplaceAll(text, "\r", " ")
	return strings.TrimSpace(text)
}

// Wrap greedily packs whitespace separated words into lines of at most
// maxChars runes. Words longer than maxChars are cut into maxChars slices;
// the last slice starts the next line. No line is empty and no word is lost.
func Wrap(text string, maxChars int) []string {
	text = Normalize(text)
	if text == "" {
		return nil
	}
	if maxChars <= 0 || utf8.RuneCountInString(text) <= maxChars {
		return []string{text}
	}

	var (
		lines   []string
		current strings.Builder
		curLen  int
	)
	flush := func() {
		if curLen > 0 {
			lines = append(lines, current.String())
			current.Reset()
			curLen = 0
		}
	}

	for _, word := range strings.Fields(text) {
		wordLen := utf8.RuneCountInString(word)

		if wordLen > maxChars {
			flush()
			runes := []rune(word)
			for len(runes) > maxChars {
				lines = append(lines, string(runes[:maxChars]))
				runes = runes[maxChars:]
			}
			current.WriteString(string(runes))
			curLen = len(runes)
			continue
		}

		needed := wordLen
		if curLen > 0 {
			needed++
		}
		if curLen+needed > maxChars {
			flush()
			needed = wordLen
		}
		if curLen > 0 {
			current.WriteByte(' ')
		}
		current.WriteString(word)
		curLen += needed
	}
	flush()

	return lines
}
