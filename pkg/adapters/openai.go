package adapters

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"

	openai "github.com/sashabaranov/go-openai"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// OpenAIGenerator は OpenAI 画像 API（DALL-E 系）の Generator 実装です。
// このバックエンドは参照画像を受け取れないため、渡されても無視します。
// 人物の同一性はプロンプトビルダー側がテキストで表現します。
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator は依存関係を注入して OpenAIGenerator を初期化します。
func NewOpenAIGenerator(client *openai.Client, model string) (*OpenAIGenerator, error) {
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	return &OpenAIGenerator{client: client, model: model}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, bundle domain.PromptBundle, opts domain.ProviderOptions) (*domain.GenerationResult, error) {
	if len(bundle.ReferenceImage) > 0 {
		slog.DebugContext(ctx, "OpenAI バックエンドは参照画像を使えないため無視します",
			"reference_bytes", len(bundle.ReferenceImage))
	}

	req := openai.ImageRequest{
		Prompt:         bundle.Prompt,
		Model:          g.model,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	}
	if o, ok := opts.(domain.OpenAIOptions); ok {
		if o.Model != "" {
			req.Model = o.Model
		}
		if o.Size != "" {
			req.Size = o.Size
		}
		req.Quality = o.Quality
		req.Style = o.Style
	}

	resp, err := g.client.CreateImage(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("%w: openai image generation: %v", domain.ErrUpstreamUnavailable, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: openai returned no image data", domain.ErrUpstreamUnavailable)
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode openai image payload: %w", err)
	}

	return &domain.GenerationResult{
		ImageBytes:    data,
		MimeType:      "image/png",
		RevisedPrompt: resp.Data[0].RevisedPrompt,
	}, nil
}

func (g *OpenAIGenerator) ReferencePolicy() ReferencePolicy { return RefNone }

// CheckHealth はモデル一覧の取得で到達性と認証を同時に確認します。
func (g *OpenAIGenerator) CheckHealth(ctx context.Context) error {
	if g.client == nil {
		return fmt.Errorf("openai client is not configured")
	}
	if _, err := g.client.ListModels(ctx); err != nil {
		return fmt.Errorf("openai is not reachable: %w", err)
	}
	return nil
}
