package translate

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiTranslator sends batches to Gemini's GenerateContent endpoint.
type GeminiTranslator struct {
	chat
	client *genai.Client
}

func NewGeminiTranslator(ctx context.Context, apiKey string, opts Options) (*GeminiTranslator, error) {
	base, err := newChat(ProviderGemini, apiKey, defaultGeminiModel, opts)
	if err != nil {
		return nil, err
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	t := &GeminiTranslator{chat: base, client: client}
	t.complete = t.generate
	return t, nil
}

func (t *GeminiTranslator) generate(ctx context.Context, prompt string) (string, error) {
	contents := []*genai.Content{genai.NewContentFromText(prompt, genai.RoleUser)}
	resp, err := t.client.Models.GenerateContent(ctx, t.model, contents, nil)
	if err != nil {
		return "", err
	}
	return geminiText(resp)
}

// geminiText joins the parts of the first candidate that carries text.
func geminiText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response from Gemini")
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var sb strings.Builder
		for _, p := range c.Content.Parts {
			sb.WriteString(p.Text)
		}
		if sb.Len() > 0 {
			return sb.String(), nil
		}
	}
	return "", fmt.Errorf("no text in Gemini response")
}
