// internal/providers/genai.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	httpclient "pagegen-workers/internal/common/http"
)

// GenAIProvider calls a generic text generation service exposing
// POST /api/ai/generate.
type GenAIProvider struct {
	name      string
	maxTokens int
	client    *httpclient.Client
}

type genAIRequest struct {
	Prompt      string  `json:"prompt"`
	System      string  `json:"system"`
	MaxTokens   int     `json:"max_tokens"`
	Temperature float64 `json:"temperature"`
}

type genAIResponse struct {
	Text string `json:"text"`
}

func NewGenAIProvider(name, baseURL, apiKey string, maxTokens int, timeout time.Duration) (*GenAIProvider, error) {
	if baseURL == "" {
		return nil, errors.New("genai base url missing")
	}
	if u, err := url.Parse(baseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("genai base url %q is not absolute", baseURL)
	}
	client := httpclient.NewClient(baseURL, timeout,
		httpclient.WithBearerToken(apiKey),
		httpclient.WithHeader("User-Agent", "pagegen-workers"),
	)
	return &GenAIProvider{
		name:      name,
		maxTokens: maxTokens,
		client:    client,
	}, nil
}

func (p *GenAIProvider) Name() string { return p.name }

func (p *GenAIProvider) Generate(ctx context.Context, instruction string) (string, error) {
	var out genAIResponse
	err := p.client.PostJSON(ctx, "/api/ai/generate", genAIRequest{
		Prompt:      instruction,
		System:      SystemPrompt,
		MaxTokens:   p.maxTokens,
		Temperature: 0.4,
	}, &out)
	if err != nil {
		return "", p.classify(err)
	}
	if strings.TrimSpace(out.Text) == "" {
		return "", Transient(p.name, errors.New("empty text"))
	}
	return out.Text, nil
}

// SelfTest probes GET /health.
func (p *GenAIProvider) SelfTest(ctx context.Context) error {
	if err := p.client.Get(ctx, "/health", nil); err != nil {
		return p.classify(err)
	}
	return nil
}

func (p *GenAIProvider) classify(err error) error {
	var se *httpclient.StatusError
	if errors.As(err, &se) {
		return classifyStatus(p.name, se.StatusCode, err)
	}
	return Transient(p.name, err)
}
