package domain

// PromptBundle はプロンプトビルダーから画像ジェネレーターへ渡す最終成果物です。
// ジェネレーターはプロンプトの組み立て方を一切関知しません（provider-opaque）。
type PromptBundle struct {
	Prompt         string
	ReferenceImage []byte // 合成済み（またはそのままの）参照画像。省略可
}

// GenerationResult は画像ジェネレーターの出力です。不変として扱います。
type GenerationResult struct {
	ImageBytes    []byte
	MimeType      string
	RevisedPrompt string // プロバイダーが書き換えたプロンプト（あれば）
}

// StoredArtifact はブロブストアへのアップロード完了後に呼び出し元へ返す唯一の永続参照です。
type StoredArtifact struct {
	URI string `json:"uri"`
}

// ArtifactType は保存パスの名前空間を決める成果物の種別です。
type ArtifactType string

const (
	ArtifactMemory  ArtifactType = "memories"
	ArtifactSubject ArtifactType = "subjects"
	ArtifactAvatar  ArtifactType = "avatars"
)
