// Package llm talks to hosted multimodal chat models. Each provider gets a
// system prompt, a block of user text and the board image, and answers with
// text.
package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	ErrUnsupportedProvider = errors.New("llm: unsupported provider")
	ErrNoAnswer            = errors.New("llm: model returned no text")
	errNotDataURL          = errors.New("llm: image must be a data: URL")
)

// Prompt is a single-turn request with one image.
type Prompt struct {
	System string
	Text   string
	// ImageURL must be a data: URL, the image is sent inline.
	ImageURL string
}

type Client interface {
	Complete(ctx context.Context, p *Prompt) (string, error)
}

type Config struct {
	// Provider is one of openai, anthropic, gemini (or google, google-genai).
	Provider string
	Model    string
	APIKey   string
	// BaseURL is the scheme and host of the provider's API, mostly for tests.
	// The provider's version path is added to it.
	BaseURL    string
	HTTPClient *http.Client
	// MaxTokens bounds the answer length, 1024 if unset.
	MaxTokens int
	// Retries is how many times a failed request is retried, for providers
	// that retry at all.
	Retries int
}

// New returns a client for the configured provider.
func New(cfg *Config) (Client, error) {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.MaxTokens == 0 {
		cfg.MaxTokens = 1024
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Provider)) {
	case "openai":
		return newOpenAI(cfg), nil
	case "anthropic":
		return newAnthropic(cfg), nil
	case "gemini", "google", "google-genai":
		return newGemini(cfg)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedProvider, cfg.Provider)
}

// KeyEnv returns the environment variables that hold the API key for a
// provider, in order of preference.
func KeyEnv(provider string) []string {
	switch strings.ToLower(strings.TrimSpace(provider)) {
	case "openai":
		return []string{"OPENAI_API_KEY"}
	case "anthropic":
		return []string{"ANTHROPIC_API_KEY"}
	case "gemini", "google", "google-genai":
		return []string{"GOOGLE_API_KEY", "GEMINI_API_KEY"}
	}
	return nil
}

// baseURL joins the configured address with a version path, with the
// trailing slash the SDKs expect. An empty address keeps the SDK default.
func baseURL(addr, version string) string {
	if addr == "" {
		return ""
	}
	return strings.TrimSuffix(addr, "/") + version + "/"
}

// HTTPError is returned when a provider answers with an error status.
type HTTPError struct {
	StatusCode int
	Body       string
	err        error
}

func (h *HTTPError) Error() string {
	return fmt.Sprintf("[%d] error from model API: %s", h.StatusCode, h.Body)
}

func (h *HTTPError) Unwrap() error {
	return h.err
}

// splitDataURL pulls the media type and base64 payload out of a data: URL.
func splitDataURL(u string) (mediaType, data string, ok bool) {
	if !strings.HasPrefix(u, "data:") {
		return "", "", false
	}
	header, encoded, found := strings.Cut(u, ",")
	if !found {
		return "", "", false
	}
	mediaType = "image/png"
	if mt, _, _ := strings.Cut(strings.TrimPrefix(header, "data:"), ";"); mt != "" {
		mediaType = mt
	}
	return mediaType, encoded, true
}
