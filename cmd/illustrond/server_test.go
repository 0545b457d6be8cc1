package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/memoir-illust-kit/pkg/adapters"
	"github.com/shouni/memoir-illust-kit/pkg/blobstore"
	"github.com/shouni/memoir-illust-kit/pkg/distill"
	"github.com/shouni/memoir-illust-kit/pkg/domain"
	"github.com/shouni/memoir-illust-kit/pkg/illustrator"
	"github.com/shouni/memoir-illust-kit/pkg/prompts"
)

// --- テスト用の軽量実装 ---

type stubTextGen struct{}

func (stubTextGen) GenerateText(ctx context.Context, req distill.TextRequest) (string, error) {
	return "a short scene", nil
}

type stubHTTPFetcher struct{}

func (stubHTTPFetcher) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	return nil, fmt.Errorf("no network in tests")
}

func (stubHTTPFetcher) IsSafeURL(rawURL string) (bool, error) { return true, nil }

type memGateway struct {
	objects map[string][]byte
}

func (m *memGateway) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	return blobstore.FormatURI("test-bucket", key), nil
}

func (m *memGateway) Get(ctx context.Context, uri string) ([]byte, error) {
	_, key, err := blobstore.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", uri)
	}
	return data, nil
}

func (m *memGateway) PresignedViewURL(ctx context.Context, uri string, ttl time.Duration) (string, error) {
	return "https://view.example.com/signed", nil
}

func (m *memGateway) PresignedUploadURL(ctx context.Context, uri string, contentType string, ttl time.Duration) (string, error) {
	return "https://upload.example.com/signed", nil
}

func newTestApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := &memGateway{}
	distiller, err := distill.NewDistiller(stubTextGen{}, distill.BrevityBrief, 0)
	require.NoError(t, err)
	resolver, err := illustrator.NewReferenceResolver(store, stubHTTPFetcher{})
	require.NoError(t, err)

	return &app{
		cfg: Config{
			DefaultProvider: "stub",
			EnableContext:   true,
			PresignTTL:      15 * time.Minute,
		},
		pairs: map[domain.Provider]providerPair{
			domain.ProviderStub: {
				builder:   prompts.NewStubBuilder(),
				generator: adapters.NewStubGenerator(nil),
			},
		},
		distiller: distiller,
		textGen:   stubTextGen{},
		resolver:  resolver,
		store:     store,
	}
}

func postJSON(t *testing.T, router *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestServer_MemoryIllustration(t *testing.T) {
	router := newRouter(newTestApp(t))

	t.Run("stub プロバイダーで挿絵を生成して URI を返す", func(t *testing.T) {
		rec := postJSON(t, router, "/api/v1/illustrations/memory", gin.H{
			"user_id": "user-1",
			"memory":  gin.H{"title": "Beach trip", "content": "We drove to the coast."},
			"user":    gin.H{"profile": gin.H{"name": "Hana", "age": 42}},
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp illustrationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.URI, "store://test-bucket/memories/user-1/")
		assert.Equal(t, "https://view.example.com/signed", resp.ViewURL)
	})

	t.Run("同梱された直近の思い出の要約計算結果を返す", func(t *testing.T) {
		rec := postJSON(t, router, "/api/v1/illustrations/memory", gin.H{
			"user_id": "user-1",
			"memory":  gin.H{"title": "Beach trip", "content": "We drove to the coast."},
			"user":    gin.H{"profile": gin.H{"name": "Hana", "age": 42}},
			"recent_memories": []gin.H{
				{"id": "m1", "title": "Old", "content": "old content", "date": "2020-01-01T00:00:00Z"},
			},
		})

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var resp illustrationResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, "a short scene", resp.ComputedSummaries["m1"])
	})

	t.Run("ユーザープロフィール欠落は 400", func(t *testing.T) {
		rec := postJSON(t, router, "/api/v1/illustrations/memory", gin.H{
			"user_id": "user-1",
			"memory":  gin.H{"title": "t", "content": "c"},
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("未設定のプロバイダーは 400", func(t *testing.T) {
		rec := postJSON(t, router, "/api/v1/illustrations/memory", gin.H{
			"user_id":  "user-1",
			"memory":   gin.H{"title": "t", "content": "c"},
			"user":     gin.H{"profile": gin.H{"name": "Hana"}},
			"provider": "gemini",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_SubjectPortrait(t *testing.T) {
	router := newRouter(newTestApp(t))

	rec := postJSON(t, router, "/api/v1/illustrations/subject", gin.H{
		"user_id": "user-1",
		"user":    gin.H{"profile": gin.H{"name": "Hana", "age": 42}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp illustrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.URI, "store://test-bucket/subjects/user-1/")
}

func TestServer_CharacterAvatar(t *testing.T) {
	router := newRouter(newTestApp(t))

	rec := postJSON(t, router, "/api/v1/characters/c1/avatar", gin.H{
		"user_id":   "user-1",
		"character": gin.H{"profile": gin.H{"name": "Ken", "age": 45, "relationship": "brother"}},
	})

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp illustrationResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "store://test-bucket/user-1/c1/avatar.png", resp.URI)
}

func TestServer_Health(t *testing.T) {
	router := newRouter(newTestApp(t))

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Providers map[string]string `json:"providers"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Providers["stub"])
}

func TestDecodeOptions(t *testing.T) {
	t.Run("selfhosted のオプションを写す", func(t *testing.T) {
		raw := json.RawMessage(`{"num_inference_steps":30,"ip_adapter_scale":0.7,"negative_prompt":"blurry"}`)
		opts, err := decodeOptions(domain.ProviderSelfHosted, raw)
		require.NoError(t, err)

		sh, ok := opts.(domain.SelfHostedOptions)
		require.True(t, ok)
		assert.Equal(t, 30, sh.Steps)
		assert.InDelta(t, 0.7, sh.IPAdapterScale, 0.001)
		assert.Equal(t, "blurry", sh.NegativePrompt)
	})

	t.Run("オプション省略はゼロ値", func(t *testing.T) {
		opts, err := decodeOptions(domain.ProviderGemini, nil)
		require.NoError(t, err)
		assert.Equal(t, domain.GeminiOptions{}, opts)
	})

	t.Run("未知のプロバイダーはエラー", func(t *testing.T) {
		_, err := decodeOptions(domain.Provider("bogus"), nil)
		assert.Error(t, err)
	})
}
