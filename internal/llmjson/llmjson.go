// Package llmjson pulls JSON arrays out of chat model replies. Models wrap
// their answer in markdown fences, surround it with prose, or nest it in an
// object; the helpers here undo all three.
package llmjson

import (
	"encoding/json"
	"errors"
	"regexp"
	"strings"
	"unicode/utf8"
)

// ErrNotFound is returned when no acceptable array is present.
var ErrNotFound = errors.New("no valid JSON array found in response")

var fence = regexp.MustCompile("```(?:json)?\\s*")

// Clean strips markdown code fences and surrounding whitespace.
func Clean(s string) string {
	s = fence.ReplaceAllString(strings.TrimSpace(s), "")
	return strings.TrimSpace(strings.ReplaceAll(s, "```", ""))
}

// Array returns the first array of T in text that accept approves. The
// array may stand alone or be the value of an object field; fields named in
// keys are tried before the others.
func Array[T any](text string, keys []string, accept func([]T) bool) ([]T, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '[' && text[i] != '{' {
			continue
		}
		var raw json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err != nil {
			continue
		}
		if items, ok := fromValue(raw, keys, accept); ok {
			return items, nil
		}
	}
	return nil, ErrNotFound
}

func fromValue[T any](raw json.RawMessage, keys []string, accept func([]T) bool) ([]T, bool) {
	if items, ok := decode(raw, accept); ok {
		return items, true
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, false
	}
	for _, key := range keys {
		if v, found := fields[key]; found {
			if items, ok := decode(v, accept); ok {
				return items, true
			}
		}
	}
	for _, v := range fields {
		if items, ok := decode(v, accept); ok {
			return items, true
		}
	}
	return nil, false
}

func decode[T any](raw json.RawMessage, accept func([]T) bool) ([]T, bool) {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil || !accept(items) {
		return nil, false
	}
	return items, true
}

// EscapeBackslashes doubles every backslash that does not start a valid
// JSON escape. Models echo the ASS line break \N verbatim, which would
// otherwise make the whole reply undecodable.
func EscapeBackslashes(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			b.WriteByte(s[i])
			continue
		}
		next := s[i+1]
		switch next {
		case '"', '\\', '/', 'b', 'f', 'n', 'r', 't', 'u':
			b.WriteByte('\\')
		default:
			b.WriteString(`\\`)
		}
		b.WriteByte(next)
		i++
	}
	return b.String()
}

// Snippet shortens s to at most n runes for error messages.
func Snippet(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n]) + "..."
}
