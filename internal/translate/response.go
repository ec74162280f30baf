package translate

import (
	"fmt"

	"github.com/ibrahimglmz/video-altyazi-ekleme-araci/internal/llmjson"
)

var resultKeys = []string{"results", "translations", "data", "items"}

// parseResults turns a model reply into exactly expected results.
func parseResults(reply string, expected int) ([]TranslationResult, error) {
	text := llmjson.Clean(reply)
	if text == "" {
		return nil, fmt.Errorf("no text in response")
	}

	results, err := llmjson.Array(llmjson.EscapeBackslashes(text), resultKeys, validateResults)
	if err != nil {
		return nil, fmt.Errorf(
			"failed to parse JSON response: %w (response: %s)",
			err,
			llmjson.Snippet(text, 200),
		)
	}

	if len(results) != expected {
		return nil, fmt.Errorf("expected %d results, got %d", expected, len(results))
	}
	return results, nil
}

// at least one result must carry text
func validateResults(results []TranslationResult) bool {
	for _, r := range results {
		if r.Text != "" {
			return true
		}
	}
	return false
}
