package llm

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAI struct {
	client    openai.Client
	model     string
	maxTokens int
}

func newOpenAI(cfg *Config) *openAI {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(cfg.Retries),
	}
	if u := baseURL(cfg.BaseURL, "/v1"); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	return &openAI{
		client:    openai.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (o *openAI) Complete(ctx context.Context, p *Prompt) (string, error) {
	parts := []openai.ChatCompletionContentPartUnionParam{openai.TextContentPart(p.Text)}
	if p.ImageURL != "" {
		parts = append(parts, openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{URL: p.ImageURL}))
	}

	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(p.System),
			openai.UserMessage(parts),
		},
		MaxCompletionTokens: openai.Int(int64(o.maxTokens)),
	})
	if err != nil {
		var apiErr *openai.Error
		if errors.As(err, &apiErr) {
			err = &HTTPError{StatusCode: apiErr.StatusCode, Body: apiErr.Message, err: err}
		}
		return "", fmt.Errorf("openai completion with %q: %w", o.model, err)
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai completion with %q: %w", o.model, ErrNoAnswer)
	}
	return resp.Choices[0].Message.Content, nil
}
