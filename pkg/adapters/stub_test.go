package adapters

import (
	"bytes"
	"context"
	"image"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

func TestStubGenerator(t *testing.T) {
	ctx := context.Background()

	t.Run("プールが空ならプレースホルダー PNG を返す", func(t *testing.T) {
		g := NewStubGenerator(nil)

		result, err := g.Generate(ctx, domain.PromptBundle{Prompt: "anything"}, domain.StubOptions{})

		require.NoError(t, err)
		assert.Equal(t, "image/png", result.MimeType)

		img, format, err := image.Decode(bytes.NewReader(result.ImageBytes))
		require.NoError(t, err)
		assert.Equal(t, "png", format)
		assert.Equal(t, 16, img.Bounds().Dx())
	})

	t.Run("プールがあればプールからサンプルする", func(t *testing.T) {
		pool := [][]byte{[]byte("sample-a"), []byte("sample-b")}
		g := NewStubGenerator(pool)

		for i := 0; i < 10; i++ {
			result, err := g.Generate(ctx, domain.PromptBundle{}, domain.StubOptions{})
			require.NoError(t, err)
			assert.Contains(t, pool, result.ImageBytes)
		}
	})

	t.Run("並行呼び出しでも安全にサンプルできる", func(t *testing.T) {
		pool := [][]byte{[]byte("sample-a"), []byte("sample-b")}
		g := NewStubGenerator(pool)

		var wg sync.WaitGroup
		for i := 0; i < 16; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				result, err := g.Generate(ctx, domain.PromptBundle{}, domain.StubOptions{})
				assert.NoError(t, err)
				assert.Contains(t, pool, result.ImageBytes)
			}()
		}
		wg.Wait()
	})

	t.Run("参照画像の有無は任意", func(t *testing.T) {
		g := NewStubGenerator(nil)
		assert.Equal(t, RefOptional, g.ReferencePolicy())
		assert.NoError(t, g.CheckHealth(ctx))
	})
}
