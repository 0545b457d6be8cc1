package distill

import (
	"context"
	"fmt"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// AnthropicTextGenerator は Anthropic Messages API を使う TextGenerator 実装です。
type AnthropicTextGenerator struct {
	client *anthropic.Client
	model  string
}

// NewAnthropicTextGenerator は依存関係を注入して初期化します。
func NewAnthropicTextGenerator(client *anthropic.Client, model string) (*AnthropicTextGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if model == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &AnthropicTextGenerator{client: client, model: model}, nil
}

func (g *AnthropicTextGenerator) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(g.model),
		MaxTokens: int64(req.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(req.UserMessage)),
		},
	}
	if req.SystemPrompt != "" {
		params.System = []anthropic.TextBlockParam{{Text: req.SystemPrompt}}
	}
	if req.Temperature > 0 {
		params.Temperature = anthropic.Float(req.Temperature)
	}

	resp, err := g.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("%w: anthropic messages: %v", domain.ErrUpstreamUnavailable, err)
	}

	var sb strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	return strings.TrimSpace(sb.String()), nil
}
