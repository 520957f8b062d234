package llm

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

type gemini struct {
	client    *genai.Client
	model     string
	maxTokens int
}

func newGemini(cfg *Config) (*gemini, error) {
	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: cfg.HTTPClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions.BaseURL = baseURL(cfg.BaseURL, "")
	}
	// NewClient only uses the context to look up credentials, which an API
	// key skips.
	client, err := genai.NewClient(context.Background(), cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &gemini{client: client, model: cfg.Model, maxTokens: cfg.MaxTokens}, nil
}

func (g *gemini) Complete(ctx context.Context, p *Prompt) (string, error) {
	parts := []*genai.Part{genai.NewPartFromText(p.Text)}
	if p.ImageURL != "" {
		mt, encoded, ok := splitDataURL(p.ImageURL)
		if !ok {
			return "", errNotDataURL
		}
		dat, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return "", fmt.Errorf("failed to decode image data: %w", err)
		}
		parts = append(parts, genai.NewPartFromBytes(dat, mt))
	}

	gc := &genai.GenerateContentConfig{MaxOutputTokens: int32(g.maxTokens)}
	if p.System != "" {
		gc.SystemInstruction = genai.NewContentFromText(p.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}, gc)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			err = &HTTPError{StatusCode: apiErr.Code, Body: apiErr.Message, err: err}
		}
		return "", fmt.Errorf("gemini completion with %q: %w", g.model, err)
	}

	out := resp.Text()
	if out == "" {
		return "", fmt.Errorf("gemini completion with %q: %w", g.model, ErrNoAnswer)
	}
	return out, nil
}
