package distill

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// Brevity は蒸留結果の長さの設定です。トークン予算に対応します。
type Brevity string

const (
	BrevityBrief    Brevity = "brief"
	BrevityDetailed Brevity = "detailed"
)

func (b Brevity) maxTokens() int {
	if b == BrevityDetailed {
		return 150
	}
	return 100
}

// DefaultTimeout は要約呼び出し 1 回あたりのタイムアウトです。
// 画像生成と違い数秒で答えが出ない要約は切り捨てて原文にフォールバックします。
const DefaultTimeout = 10 * time.Second

const distillSystemPrompt = `You summarize personal memories into short scene descriptions for an illustrator.
Write in the third person. Focus on what the scene looks like: the setting, the people, the action.
Capture the emotional theme of the memory without naming emotions mechanically.
Reply with the scene description only, no preamble.`

// Distiller は思い出の自由文を短いシーン記述に減らします。
// 外部サービスの失敗時は原文をそのまま返し、例外を上げません。
type Distiller struct {
	textGen TextGenerator
	brevity Brevity
	timeout time.Duration
}

// NewDistiller は依存関係を注入して Distiller を初期化します。
func NewDistiller(textGen TextGenerator, brevity Brevity, timeout time.Duration) (*Distiller, error) {
	if textGen == nil {
		return nil, fmt.Errorf("textGen is required")
	}
	if brevity != BrevityBrief && brevity != BrevityDetailed {
		brevity = BrevityBrief
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Distiller{textGen: textGen, brevity: brevity, timeout: timeout}, nil
}

// Distill は蒸留済みテキストを返します。第 2 戻り値はフォールバックが起きたとき true で、
// 呼び出し元は縮退運転としてログに残す必要があります。
func (d *Distiller) Distill(ctx context.Context, memory domain.MemoryRef, subject domain.SubjectProfile) (string, bool) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	userMessage := fmt.Sprintf("Title: %s\nDate: %s\nAbout: %s\nMemory:\n%s",
		memory.Title,
		memory.Date.Format("2006-01-02"),
		subject.Name,
		memory.Content,
	)

	text, err := d.textGen.GenerateText(ctx, TextRequest{
		SystemPrompt: distillSystemPrompt,
		UserMessage:  userMessage,
		MaxTokens:    d.brevity.maxTokens(),
		Temperature:  0.7,
	})
	if err != nil {
		slog.WarnContext(ctx, "思い出の蒸留に失敗したため原文で続行します", "title", memory.Title, "error", err)
		return memory.Content, true
	}
	if text == "" {
		slog.WarnContext(ctx, "蒸留結果が空だったため原文で続行します", "title", memory.Title)
		return memory.Content, true
	}
	return text, false
}
