package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// DefaultSelfHostedTimeout は自前ホストの描画 1 回あたりの上限です。
// 拡散モデルの推論は分単位なので要約系より大幅に長く取ります。
// HTTP クライアントを構築する側でこのタイムアウトを設定してください。
const DefaultSelfHostedTimeout = 2 * time.Minute

// SelfHostedGenerator は自前ホストの Stable Diffusion サービスの Generator 実装です。
// IP-Adapter で顔の同一性を保つ設計のため、参照画像が必須です。
type SelfHostedGenerator struct {
	baseURL string
	client  ServiceClient
}

// NewSelfHostedGenerator はサービスのベース URL と HTTP クライアントを受け取って初期化します。
func NewSelfHostedGenerator(baseURL string, client ServiceClient) (*SelfHostedGenerator, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("baseURL is required")
	}
	if client == nil {
		return nil, fmt.Errorf("client is required")
	}
	return &SelfHostedGenerator{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}, nil
}

type selfHostedRequest struct {
	Prompt            string  `json:"prompt"`
	NegativePrompt    string  `json:"negative_prompt,omitempty"`
	NumInferenceSteps int     `json:"num_inference_steps,omitempty"`
	IPAdapterScale    float64 `json:"ip_adapter_scale,omitempty"`
	ReferenceImage    string  `json:"reference_image"` // base64
}

type selfHostedResponse struct {
	Image string `json:"image"` // base64
}

func (g *SelfHostedGenerator) Generate(ctx context.Context, bundle domain.PromptBundle, opts domain.ProviderOptions) (*domain.GenerationResult, error) {
	// ネットワークに出る前に必須入力を検査する
	if len(bundle.ReferenceImage) == 0 {
		return nil, fmt.Errorf("%w: selfhosted backend requires a reference image", domain.ErrInvalidInput)
	}

	req := selfHostedRequest{
		Prompt:         bundle.Prompt,
		ReferenceImage: base64.StdEncoding.EncodeToString(bundle.ReferenceImage),
	}
	if o, ok := opts.(domain.SelfHostedOptions); ok {
		req.NegativePrompt = o.NegativePrompt
		req.NumInferenceSteps = o.Steps
		req.IPAdapterScale = o.IPAdapterScale
		// リクエストごとの画風指定はプロンプト末尾のタグとして反映する
		if o.StylePrompt != "" {
			req.Prompt = req.Prompt + ", " + o.StylePrompt
		}
	}

	body, err := g.client.PostJSONAndFetchBytes(ctx, g.baseURL+"/api/v1/generate", req)
	if err != nil {
		return nil, fmt.Errorf("%w: selfhosted generation: %v", domain.ErrUpstreamUnavailable, err)
	}

	var out selfHostedResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return nil, fmt.Errorf("%w: selfhosted response decode: %v", domain.ErrUpstreamUnavailable, err)
	}

	data, err := base64.StdEncoding.DecodeString(out.Image)
	if err != nil || len(data) == 0 {
		return nil, fmt.Errorf("%w: selfhosted returned an invalid image payload", domain.ErrUpstreamUnavailable)
	}

	return &domain.GenerationResult{
		ImageBytes: data,
		MimeType:   http.DetectContentType(data),
	}, nil
}

func (g *SelfHostedGenerator) ReferencePolicy() ReferencePolicy { return RefRequired }

// CheckHealth はサービスの /health を叩いて到達性を確認します。
func (g *SelfHostedGenerator) CheckHealth(ctx context.Context) error {
	if _, err := g.client.FetchBytes(ctx, g.baseURL+"/health"); err != nil {
		return fmt.Errorf("selfhosted service is not reachable: %w", err)
	}
	return nil
}
