package translate

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// reply budget per batch; 50 subtitle lines fit comfortably
const anthropicMaxTokens = 4096

// AnthropicTranslator sends batches to Claude through the Messages API.
type AnthropicTranslator struct {
	chat
	client anthropic.Client
}

func NewAnthropicTranslator(_ context.Context, apiKey string, opts Options) (*AnthropicTranslator, error) {
	base, err := newChat(ProviderAnthropic, apiKey, string(anthropic.ModelClaudeHaiku4_5), opts)
	if err != nil {
		return nil, err
	}
	t := &AnthropicTranslator{
		chat:   base,
		client: anthropic.NewClient(option.WithAPIKey(apiKey)),
	}
	t.complete = t.message
	return t, nil
}

func (t *AnthropicTranslator) message(ctx context.Context, prompt string) (string, error) {
	msg, err := t.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(t.model),
		MaxTokens: anthropicMaxTokens,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", err
	}
	if msg == nil {
		return "", fmt.Errorf("empty response from Anthropic")
	}
	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if sb.Len() == 0 {
		return "", fmt.Errorf("no text in Anthropic response (stop reason %q)", msg.StopReason)
	}
	return sb.String(), nil
}
