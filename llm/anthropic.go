package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

type claude struct {
	client    anthropic.Client
	model     string
	maxTokens int
}

func newAnthropic(cfg *Config) *claude {
	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithHTTPClient(cfg.HTTPClient),
		option.WithMaxRetries(cfg.Retries),
	}
	if u := baseURL(cfg.BaseURL, ""); u != "" {
		opts = append(opts, option.WithBaseURL(u))
	}
	return &claude{
		client:    anthropic.NewClient(opts...),
		model:     cfg.Model,
		maxTokens: cfg.MaxTokens,
	}
}

func (c *claude) Complete(ctx context.Context, p *Prompt) (string, error) {
	blocks := []anthropic.ContentBlockParamUnion{anthropic.NewTextBlock(p.Text)}
	if p.ImageURL != "" {
		mt, data, ok := splitDataURL(p.ImageURL)
		if !ok {
			return "", errNotDataURL
		}
		blocks = append(blocks, anthropic.NewImageBlockBase64(mt, data))
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(c.maxTokens),
		Messages:  []anthropic.MessageParam{anthropic.NewUserMessage(blocks...)},
	}
	if p.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: p.System}}
	}

	msg, err := c.client.Messages.New(ctx, params)
	if err != nil {
		var apiErr *anthropic.Error
		if errors.As(err, &apiErr) {
			err = &HTTPError{StatusCode: apiErr.StatusCode, Body: apiErr.Error(), err: err}
		}
		return "", fmt.Errorf("anthropic completion with %q: %w", c.model, err)
	}

	var out []string
	for _, block := range msg.Content {
		if block.Type == "text" {
			out = append(out, block.Text)
		}
	}
	if len(out) == 0 {
		return "", fmt.Errorf("anthropic completion with %q: %w", c.model, ErrNoAnswer)
	}
	return strings.Join(out, "\n"), nil
}
