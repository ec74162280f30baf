package translate

import (
	"context"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const defaultOpenAIModel = "gpt-5-mini"

// OpenAITranslator sends batches through the Chat Completions API.
type OpenAITranslator struct {
	chat
	client openai.Client
}

// NewOpenAITranslator accepts extra request options so tests can point the
// client at a local server.
func NewOpenAITranslator(
	_ context.Context,
	apiKey string,
	opts Options,
	extra ...option.RequestOption,
) (*OpenAITranslator, error) {
	base, err := newChat(ProviderOpenAI, apiKey, defaultOpenAIModel, opts)
	if err != nil {
		return nil, err
	}
	t := &OpenAITranslator{
		chat:   base,
		client: openai.NewClient(append([]option.RequestOption{option.WithAPIKey(apiKey)}, extra...)...),
	}
	t.complete = t.completion
	return t, nil
}

func (t *OpenAITranslator) completion(ctx context.Context, prompt string) (string, error) {
	resp, err := t.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:    t.model,
		Messages: []openai.ChatCompletionMessageParamUnion{openai.UserMessage(prompt)},
	})
	if err != nil {
		return "", err
	}
	if resp == nil || len(resp.Choices) == 0 {
		return "", fmt.Errorf("empty response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}
