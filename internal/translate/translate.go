// Package translate rewrites subtitle text into another language with an
// LLM, batching entries into JSON requests.
package translate

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// single text item to translate
type TranslationItem struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// translated text item
type TranslationResult struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// interface for text translation
type Translator interface {
	Translate(
		ctx context.Context,
		items []TranslationItem,
	) ([]TranslationResult, error)
}

// optional interface for translators that support concurrent batch processing
type ConcurrentTranslator interface {
	Translator
	TranslateWithConcurrency(
		ctx context.Context,
		items []TranslationItem,
		concurrency int,
	) ([]TranslationResult, error)
}

// translation service provider
type Provider string

const (
	ProviderGemini    Provider = "gemini"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// environment variable holding the provider's API key
func (p Provider) KeyEnv() string {
	switch p {
	case ProviderGemini:
		return "GEMINI_API_KEY"
	case ProviderOpenAI:
		return "OPENAI_API_KEY"
	case ProviderAnthropic:
		return "ANTHROPIC_API_KEY"
	default:
		return "API_KEY"
	}
}

type Options struct {
	InputLanguage  string
	TargetLanguage string
	Model          string
	Prompt         string
	BatchSize      int // items per API request (default 50)
}

const DefaultBatchSize = 50

func (o Options) batchSize() int {
	if o.BatchSize > 0 {
		return o.BatchSize
	}
	return DefaultBatchSize
}

// creates Translator based on provider
func Factory(
	ctx context.Context,
	provider Provider,
	apiKey string,
	opts Options,
) (Translator, error) {
	if opts.TargetLanguage == "" {
		return nil, fmt.Errorf("target language is required")
	}

	switch provider {
	case ProviderGemini:
		return NewGeminiTranslator(ctx, apiKey, opts)
	case ProviderOpenAI:
		return NewOpenAITranslator(ctx, apiKey, opts)
	case ProviderAnthropic:
		return NewAnthropicTranslator(ctx, apiKey, opts)
	default:
		return nil, fmt.Errorf("unsupported translation provider: %s", provider)
	}
}

// Run translates items with the translator's concurrent path when it has one.
func Run(ctx context.Context, t Translator, items []TranslationItem, concurrency int) ([]TranslationResult, error) {
	if ct, ok := t.(ConcurrentTranslator); ok && concurrency > 1 {
		return ct.TranslateWithConcurrency(ctx, items, concurrency)
	}
	return t.Translate(ctx, items)
}

var promptRules = []string{
	"Translate the meaning of each text; do not merge or split entries.",
	`Leave override tags such as {\an8} or {\pos(x,y)} exactly as they are.`,
	`Keep \N line breaks in the same places.`,
	"Keep every translation short enough to be read, or spoken, in the time of the original line.",
	`Reply with a JSON array of {"index": number, "text": string} objects, one per input entry, with the input index values.`,
	"No explanations and no markdown.",
}

// BuildPrompt renders the request for one batch of items.
func BuildPrompt(opts Options, items []TranslationItem) string {
	var sb strings.Builder
	if opts.InputLanguage != "" {
		fmt.Fprintf(&sb, "You translate film subtitles from %s to %s.\n\n", opts.InputLanguage, opts.TargetLanguage)
	} else {
		fmt.Fprintf(&sb, "You translate film subtitles to %s.\n\n", opts.TargetLanguage)
	}
	sb.WriteString("Rules:\n")
	for _, rule := range promptRules {
		sb.WriteString("- " + rule + "\n")
	}
	if opts.Prompt != "" {
		fmt.Fprintf(&sb, "- %s\n", opts.Prompt)
	}

	body, _ := json.MarshalIndent(items, "", "  ")
	sb.WriteString("\nEntries:\n")
	sb.Write(body)
	sb.WriteString("\n")
	return sb.String()
}
