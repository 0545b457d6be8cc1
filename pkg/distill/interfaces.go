package distill

import (
	"context"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// TextRequest は外部テキスト生成サービスへの要求です。
type TextRequest struct {
	SystemPrompt string
	UserMessage  string
	MaxTokens    int
	Temperature  float64
}

// TextGenerator はテキスト生成バックエンドの契約です。
// 蒸留とコンテキスト集約の両方がこの窓口を使います。
type TextGenerator interface {
	GenerateText(ctx context.Context, req TextRequest) (string, error)
}

// MemoryStore は保存済みの思い出へのアクセスの契約です。永続化自体は外部の責務です。
// SaveSummary は派生フィールド（要約）の書き戻し専用で、本文は決して変更しません。
type MemoryStore interface {
	ListRecent(ctx context.Context, userID string, limit int) ([]domain.StoredMemory, error)
	SaveSummary(ctx context.Context, memoryID, summary string) error
}
