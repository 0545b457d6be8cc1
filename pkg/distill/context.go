package distill

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// DefaultRecentLimit は集約対象にする直近の思い出の件数です。
const DefaultRecentLimit = 5

const aggregateSystemPrompt = `You weave short summaries of a person's recent memories into one brief narrative paragraph.
The narrative is background context for illustrating a new memory: convey the period of life and its mood.
Reply with the paragraph only.`

// ContextAggregator は直近の思い出から補助コンテキストの段落を作ります。
// 要約が未計算の思い出には蒸留をかけて書き戻します（write-through キャッシュ）。
// この書き戻しがパイプライン唯一の入力変更で、対象は派生フィールドのみです。
type ContextAggregator struct {
	store       MemoryStore
	distiller   *Distiller
	textGen     TextGenerator
	recentLimit int
}

// NewContextAggregator は依存関係を注入して ContextAggregator を初期化します。
func NewContextAggregator(store MemoryStore, distiller *Distiller, textGen TextGenerator, recentLimit int) (*ContextAggregator, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if distiller == nil {
		return nil, fmt.Errorf("distiller is required")
	}
	if textGen == nil {
		return nil, fmt.Errorf("textGen is required")
	}
	if recentLimit <= 0 {
		recentLimit = DefaultRecentLimit
	}
	return &ContextAggregator{
		store:       store,
		distiller:   distiller,
		textGen:     textGen,
		recentLimit: recentLimit,
	}, nil
}

// RecentContext は直近の思い出から一段落のナラティブを生成します。
// 直近の思い出が 0 件なら空文字列を返します（エラーではありません）。
func (a *ContextAggregator) RecentContext(ctx context.Context, userID string, current domain.MemoryRef, distilled string) (string, error) {
	recent, err := a.store.ListRecent(ctx, userID, a.recentLimit)
	if err != nil {
		return "", fmt.Errorf("failed to list recent memories: %w", err)
	}
	if len(recent) == 0 {
		return "", nil
	}

	summaries := make([]string, 0, len(recent))
	for _, m := range recent {
		summary := m.Summary
		if summary == "" {
			summary = a.backfillSummary(ctx, m)
		}
		summaries = append(summaries, fmt.Sprintf("%s: %s", m.Date.Format("2006-01-02"), summary))
	}

	userMessage := fmt.Sprintf("Recent memories:\n%s\n\nThe new memory being illustrated is titled %q: %s",
		strings.Join(summaries, "\n"), current.Title, distilled)

	narrative, err := a.textGen.GenerateText(ctx, TextRequest{
		SystemPrompt: aggregateSystemPrompt,
		UserMessage:  userMessage,
		MaxTokens:    BrevityDetailed.maxTokens(),
		Temperature:  0.7,
	})
	if err != nil {
		return "", fmt.Errorf("failed to aggregate recent memories: %w", err)
	}
	return narrative, nil
}

// backfillSummary は欠けている要約を計算して書き戻します。
// 書き戻しは last-writer-wins で十分です。計算結果はほぼ決定的で、繰り返しても収束します。
func (a *ContextAggregator) backfillSummary(ctx context.Context, m domain.StoredMemory) string {
	ref := domain.MemoryRef{Title: m.Title, Content: m.Content, Date: m.Date}
	summary, degraded := a.distiller.Distill(ctx, ref, domain.SubjectProfile{})
	if degraded {
		// 原文フォールバックをキャッシュに固定しない
		return summary
	}

	if err := a.store.SaveSummary(ctx, m.ID, summary); err != nil {
		slog.WarnContext(ctx, "要約の書き戻しに失敗しました", "memory_id", m.ID, "error", err)
	}
	return summary
}
