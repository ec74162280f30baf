package translate

import (
	"context"
	"fmt"
)

// completeFunc sends one prompt to a chat model and returns its reply text.
type completeFunc func(ctx context.Context, prompt string) (string, error)

// chat is the batching core shared by the LLM providers. Each provider
// only knows how to turn a prompt into reply text.
type chat struct {
	provider Provider
	model    string
	options  Options
	complete completeFunc
}

func newChat(provider Provider, apiKey, defaultModel string, opts Options) (chat, error) {
	if apiKey == "" {
		return chat{}, fmt.Errorf("%s: API key is required (set %s)", provider, provider.KeyEnv())
	}
	model := opts.Model
	if model == "" {
		model = defaultModel
	}
	return chat{provider: provider, model: model, options: opts}, nil
}

func (c *chat) Translate(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	return translateBatches(ctx, items, c.options.batchSize(), 1, c.translateBatch)
}

// TranslateWithConcurrency sends each batch of BatchSize items as one
// request, with up to concurrency requests in flight.
func (c *chat) TranslateWithConcurrency(
	ctx context.Context,
	items []TranslationItem,
	concurrency int,
) ([]TranslationResult, error) {
	return translateBatches(ctx, items, c.options.batchSize(), concurrency, c.translateBatch)
}

func (c *chat) translateBatch(ctx context.Context, items []TranslationItem) ([]TranslationResult, error) {
	reply, err := c.complete(ctx, BuildPrompt(c.options, items))
	if err != nil {
		return nil, fmt.Errorf("%s translation failed: %w", c.provider, err)
	}
	return parseResults(reply, len(items))
}

func (c *chat) Close() error {
	return nil
}
