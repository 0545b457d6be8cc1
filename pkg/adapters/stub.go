package adapters

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math/rand"
	"sync"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// StubGenerator はネットワークに一切出ない開発・テスト用の Generator 実装です。
// 固定プールからサンプル画像を疑似ランダムに返し、プールが空なら
// 最小限のプレースホルダー PNG を返します。
type StubGenerator struct {
	pool [][]byte

	// rand.Rand は並行利用できないため mu で直列化する
	mu  sync.Mutex
	rng *rand.Rand
}

// NewStubGenerator はサンプル画像プールを受け取って初期化します。pool は nil 可です。
func NewStubGenerator(pool [][]byte) *StubGenerator {
	return &StubGenerator{
		pool: pool,
		rng:  rand.New(rand.NewSource(1)),
	}
}

func (g *StubGenerator) Generate(ctx context.Context, bundle domain.PromptBundle, opts domain.ProviderOptions) (*domain.GenerationResult, error) {
	if len(g.pool) > 0 {
		g.mu.Lock()
		sample := g.pool[g.rng.Intn(len(g.pool))]
		g.mu.Unlock()
		return &domain.GenerationResult{ImageBytes: sample, MimeType: "image/png"}, nil
	}
	return &domain.GenerationResult{ImageBytes: placeholderPNG(), MimeType: "image/png"}, nil
}

func (g *StubGenerator) ReferencePolicy() ReferencePolicy { return RefOptional }

func (g *StubGenerator) CheckHealth(ctx context.Context) error { return nil }

// placeholderPNG は 16x16 の無地グレー PNG を生成します。
func placeholderPNG() []byte {
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			img.Set(x, y, color.RGBA{0xCC, 0xCC, 0xCC, 0xFF})
		}
	}
	buf := new(bytes.Buffer)
	// 固定サイズの RGBA なのでエンコードは失敗しない
	_ = png.Encode(buf, img)
	return buf.Bytes()
}
