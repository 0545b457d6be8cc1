package main

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config は illustrond の起動設定です。環境変数（ILLUSTROND_ プレフィックス）から読み込みます。
type Config struct {
	ListenAddr      string
	DefaultProvider string

	// 画像バックエンド
	GeminiAPIKey     string
	GeminiModel      string
	OpenAIAPIKey     string
	OpenAIImageModel string
	SelfHostedURL    string

	// テキストバックエンド（蒸留・集約）
	TextBackend      string // anthropic | openai
	AnthropicAPIKey  string
	AnthropicModel   string
	OpenAIChatModel  string
	DistillBrevity   string
	EnableContext    bool

	// ブロブストア
	MinioEndpoint  string
	MinioAccessKey string
	MinioSecretKey string
	MinioBucket    string
	MinioUseSSL    bool

	PresignTTL        time.Duration
	GenerationTimeout time.Duration
	FetchTimeout      time.Duration
	CanvasSize        int
}

func loadConfig(v *viper.Viper) Config {
	v.SetEnvPrefix("ILLUSTROND")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("listen_addr", ":8080")
	v.SetDefault("default_provider", "stub")
	v.SetDefault("text_backend", "anthropic")
	v.SetDefault("anthropic_model", "claude-3-5-haiku-latest")
	v.SetDefault("distill_brevity", "brief")
	v.SetDefault("enable_context", false)
	v.SetDefault("minio_bucket", "illustrations")
	v.SetDefault("presign_ttl", "15m")
	v.SetDefault("generation_timeout", "2m")
	v.SetDefault("fetch_timeout", "30s")
	v.SetDefault("canvas_size", 1024)

	return Config{
		ListenAddr:      v.GetString("listen_addr"),
		DefaultProvider: v.GetString("default_provider"),

		GeminiAPIKey:     v.GetString("gemini_api_key"),
		GeminiModel:      v.GetString("gemini_model"),
		OpenAIAPIKey:     v.GetString("openai_api_key"),
		OpenAIImageModel: v.GetString("openai_image_model"),
		SelfHostedURL:    v.GetString("selfhosted_url"),

		TextBackend:     v.GetString("text_backend"),
		AnthropicAPIKey: v.GetString("anthropic_api_key"),
		AnthropicModel:  v.GetString("anthropic_model"),
		OpenAIChatModel: v.GetString("openai_chat_model"),
		DistillBrevity:  v.GetString("distill_brevity"),
		EnableContext:   v.GetBool("enable_context"),

		MinioEndpoint:  v.GetString("minio_endpoint"),
		MinioAccessKey: v.GetString("minio_access_key"),
		MinioSecretKey: v.GetString("minio_secret_key"),
		MinioBucket:    v.GetString("minio_bucket"),
		MinioUseSSL:    v.GetBool("minio_use_ssl"),

		PresignTTL:        v.GetDuration("presign_ttl"),
		GenerationTimeout: v.GetDuration("generation_timeout"),
		FetchTimeout:      v.GetDuration("fetch_timeout"),
		CanvasSize:        v.GetInt("canvas_size"),
	}
}
