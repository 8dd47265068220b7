// internal/providers/openai.go
package providers

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

// OpenAIProvider talks to the OpenAI chat completions API or any endpoint
// compatible with it.
type OpenAIProvider struct {
	name      string
	model     string
	maxTokens int
	client    openai.Client
}

func NewOpenAIProvider(name, apiKey, baseURL, model string, maxTokens int) (*OpenAIProvider, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key missing")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey), option.WithMaxRetries(0)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	return &OpenAIProvider{
		name:      name,
		model:     model,
		maxTokens: maxTokens,
		client:    openai.NewClient(opts...),
	}, nil
}

func (p *OpenAIProvider) Name() string { return p.name }

func (p *OpenAIProvider) Generate(ctx context.Context, instruction string) (string, error) {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(p.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(SystemPrompt),
			openai.UserMessage(instruction),
		},
	}
	if p.maxTokens > 0 {
		params.MaxTokens = openai.Int(int64(p.maxTokens))
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", p.classify(err)
	}
	if len(resp.Choices) == 0 {
		return "", Transient(p.name, errors.New("empty choices"))
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", Transient(p.name, errors.New("empty completion"))
	}
	return content, nil
}

// SelfTest lists models, which authenticates without spending tokens.
func (p *OpenAIProvider) SelfTest(ctx context.Context) error {
	if _, err := p.client.Models.List(ctx); err != nil {
		return p.classify(err)
	}
	return nil
}

func (p *OpenAIProvider) classify(err error) error {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return classifyStatus(p.name, apiErr.StatusCode, err)
	}
	return Transient(p.name, fmt.Errorf("openai request: %w", err))
}
