package adapters

import (
	"context"
	"fmt"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// DefaultGeminiModel は未指定時に使う画像生成モデルです。
const DefaultGeminiModel = "gemini-2.5-flash-image"

// GeminiGenerator は Gemini バックエンドの Generator 実装です。
// 参照画像は任意で、あれば InlineData パーツとして同送します。
type GeminiGenerator struct {
	aiClient gemini.GenerativeModel
	model    string
}

// NewGeminiGenerator は依存関係を注入して GeminiGenerator を初期化します。
func NewGeminiGenerator(aiClient gemini.GenerativeModel, model string) (*GeminiGenerator, error) {
	if aiClient == nil {
		return nil, fmt.Errorf("aiClient is required")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	return &GeminiGenerator{aiClient: aiClient, model: model}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, bundle domain.PromptBundle, opts domain.ProviderOptions) (*domain.GenerationResult, error) {
	parts := []*genai.Part{{Text: bundle.Prompt}}

	if len(bundle.ReferenceImage) > 0 {
		if imgPart := toInlinePart(bundle.ReferenceImage); imgPart != nil {
			parts = append(parts, imgPart)
		}
	}

	gOpts := gemini.GenerateOptions{}
	if o, ok := opts.(domain.GeminiOptions); ok {
		gOpts.AspectRatio = o.AspectRatio
		gOpts.Seed = o.Seed
		if o.Model != "" {
			// リクエスト単位のモデル上書きは許容する
			return g.generate(ctx, o.Model, parts, gOpts)
		}
	}
	return g.generate(ctx, g.model, parts, gOpts)
}

func (g *GeminiGenerator) generate(ctx context.Context, model string, parts []*genai.Part, gOpts gemini.GenerateOptions) (*domain.GenerationResult, error) {
	resp, err := g.aiClient.GenerateWithParts(ctx, model, parts, gOpts)
	if err != nil {
		return nil, fmt.Errorf("%w: gemini generation: %v", domain.ErrUpstreamUnavailable, err)
	}
	return parseGeminiResponse(resp)
}

func (g *GeminiGenerator) ReferencePolicy() ReferencePolicy { return RefOptional }

// CheckHealth は設定の完全性のみを確認します。Gemini には軽量な疎通 API がないため、
// 生成を伴う呼び出しはしません。
func (g *GeminiGenerator) CheckHealth(ctx context.Context) error {
	if g.aiClient == nil {
		return fmt.Errorf("gemini client is not configured")
	}
	if g.model == "" {
		return fmt.Errorf("gemini model is not configured")
	}
	return nil
}
