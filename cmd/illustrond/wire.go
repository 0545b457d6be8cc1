package main

import (
	"context"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	openai "github.com/sashabaranov/go-openai"
	"github.com/shouni/go-gemini-client/pkg/gemini"
	"github.com/shouni/go-http-kit/pkg/httpkit"

	"github.com/shouni/memoir-illust-kit/pkg/adapters"
	"github.com/shouni/memoir-illust-kit/pkg/blobstore"
	"github.com/shouni/memoir-illust-kit/pkg/distill"
	"github.com/shouni/memoir-illust-kit/pkg/domain"
	"github.com/shouni/memoir-illust-kit/pkg/illustrator"
	"github.com/shouni/memoir-illust-kit/pkg/prompts"
)

// providerPair はプロバイダー 1 つ分の戦略ペア（プロンプトビルダーと画像ジェネレーター）です。
type providerPair struct {
	builder   prompts.Builder
	generator adapters.Generator
}

// app は illustrond の配線済み依存一式です。
// 主体ディレクトリはリクエストごとに与えられるため、ここには持ちません。
type app struct {
	cfg       Config
	pairs     map[domain.Provider]providerPair
	distiller *distill.Distiller
	textGen   distill.TextGenerator
	resolver  *illustrator.ReferenceResolver
	store     blobstore.Gateway
}

// wireApp は設定から具象クライアント群を組み立てます。
// API キーが与えられたプロバイダーだけを登録し、stub は常に使えます。
func wireApp(ctx context.Context, cfg Config) (*app, error) {
	store, err := blobstore.NewMinioGateway(ctx, blobstore.MinioConfig{
		Endpoint:  cfg.MinioEndpoint,
		AccessKey: cfg.MinioAccessKey,
		SecretKey: cfg.MinioSecretKey,
		Bucket:    cfg.MinioBucket,
		UseSSL:    cfg.MinioUseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("wire blob store: %w", err)
	}

	textGen, err := wireTextGenerator(cfg)
	if err != nil {
		return nil, fmt.Errorf("wire text generator: %w", err)
	}

	distiller, err := distill.NewDistiller(textGen, distill.Brevity(cfg.DistillBrevity), 0)
	if err != nil {
		return nil, fmt.Errorf("wire distiller: %w", err)
	}

	resolver, err := illustrator.NewReferenceResolver(store, httpkit.New(cfg.FetchTimeout))
	if err != nil {
		return nil, fmt.Errorf("wire reference resolver: %w", err)
	}

	pairs := map[domain.Provider]providerPair{
		domain.ProviderStub: {
			builder:   prompts.NewStubBuilder(),
			generator: adapters.NewStubGenerator(nil),
		},
	}

	if cfg.GeminiAPIKey != "" {
		aiClient, err := gemini.NewClient(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey})
		if err != nil {
			return nil, fmt.Errorf("wire gemini client: %w", err)
		}
		gen, err := adapters.NewGeminiGenerator(aiClient, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("wire gemini generator: %w", err)
		}
		pairs[domain.ProviderGemini] = providerPair{
			builder:   prompts.NewGeminiBuilder(),
			generator: gen,
		}
	}

	if cfg.OpenAIAPIKey != "" {
		gen, err := adapters.NewOpenAIGenerator(openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIImageModel)
		if err != nil {
			return nil, fmt.Errorf("wire openai generator: %w", err)
		}
		pairs[domain.ProviderOpenAI] = providerPair{
			builder:   prompts.NewOpenAIBuilder(),
			generator: gen,
		}
	}

	if cfg.SelfHostedURL != "" {
		// 拡散モデルの推論は長いので、参照取得用とは別に生成タイムアウトのクライアントを使う
		timeout := cfg.GenerationTimeout
		if timeout <= 0 {
			timeout = adapters.DefaultSelfHostedTimeout
		}
		gen, err := adapters.NewSelfHostedGenerator(cfg.SelfHostedURL, httpkit.New(timeout))
		if err != nil {
			return nil, fmt.Errorf("wire selfhosted generator: %w", err)
		}
		pairs[domain.ProviderSelfHosted] = providerPair{
			builder:   prompts.NewSelfHostedBuilder(""),
			generator: gen,
		}
	}

	if _, ok := pairs[domain.Provider(cfg.DefaultProvider)]; !ok {
		return nil, fmt.Errorf("default provider %q is not configured", cfg.DefaultProvider)
	}

	return &app{
		cfg:       cfg,
		pairs:     pairs,
		distiller: distiller,
		textGen:   textGen,
		resolver:  resolver,
		store:     store,
	}, nil
}

func wireTextGenerator(cfg Config) (distill.TextGenerator, error) {
	switch cfg.TextBackend {
	case "anthropic":
		client := anthropic.NewClient(option.WithAPIKey(cfg.AnthropicAPIKey))
		return distill.NewAnthropicTextGenerator(&client, cfg.AnthropicModel)
	case "openai":
		return distill.NewOpenAITextGenerator(openai.NewClient(cfg.OpenAIAPIKey), cfg.OpenAIChatModel)
	default:
		return nil, fmt.Errorf("unknown text backend: %s", cfg.TextBackend)
	}
}

// orchestratorFor はリクエストスコープの主体ディレクトリとコンテキストプロバイダーを
// 束ねてオーケストレーターを組み立てます。ctxProv は nil 可（集約なし）です。
func (a *app) orchestratorFor(provider domain.Provider, dir illustrator.SubjectDirectory, ctxProv illustrator.ContextProvider) (*illustrator.Orchestrator, error) {
	pair, ok := a.pairs[provider]
	if !ok {
		return nil, fmt.Errorf("%w: provider %q is not configured", domain.ErrInvalidInput, provider)
	}

	return illustrator.New(pair.builder, pair.generator, a.distiller, ctxProv, dir, a.resolver, a.store, illustrator.Config{
		CanvasSize:        a.cfg.CanvasSize,
		GenerationTimeout: a.cfg.GenerationTimeout,
		EnableContext:     a.cfg.EnableContext && ctxProv != nil,
	})
}

// aggregatorFor はリクエストに同梱された直近の思い出からコンテキスト集約器を作ります。
func (a *app) aggregatorFor(store distill.MemoryStore) (illustrator.ContextProvider, error) {
	return distill.NewContextAggregator(store, a.distiller, a.textGen, 0)
}
