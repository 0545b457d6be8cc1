package domain

// Provider は描画バックエンドの識別子です。
type Provider string

const (
	ProviderOpenAI     Provider = "openai"
	ProviderGemini     Provider = "gemini"
	ProviderSelfHosted Provider = "selfhosted"
	ProviderStub       Provider = "stub"
)

// ProviderOptions はプロバイダー別の生成オプションを判別付きで運ぶ契約です。
// 緩い map ではなく、プロバイダーごとの具象構造体で表現します。
type ProviderOptions interface {
	Provider() Provider
}

// OpenAIOptions は OpenAI 系バックエンド（DALL-E 等）向けのオプションです。
type OpenAIOptions struct {
	Model   string
	Size    string
	Quality string
	Style   string
}

func (OpenAIOptions) Provider() Provider { return ProviderOpenAI }

// GeminiOptions は Gemini バックエンド向けのオプションです。
type GeminiOptions struct {
	Model       string
	AspectRatio string
	Seed        *int64 // nil でランダム、値指定で固定
}

func (GeminiOptions) Provider() Provider { return ProviderGemini }

// SelfHostedOptions は自前ホストの Stable Diffusion サービス向けのオプションです。
// IP-Adapter を使うため参照画像が必須になります。
type SelfHostedOptions struct {
	Steps          int     // num_inference_steps。0 ならサービス側デフォルト
	IPAdapterScale float64 // 0 ならサービス側デフォルト
	NegativePrompt string
	StylePrompt    string
}

func (SelfHostedOptions) Provider() Provider { return ProviderSelfHosted }

// StubOptions はネットワークに出ない開発・テスト用スタブのオプションです。
type StubOptions struct{}

func (StubOptions) Provider() Provider { return ProviderStub }
