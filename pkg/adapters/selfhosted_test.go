package adapters

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// mockServiceClient は ServiceClient のテストダブルです。
type mockServiceClient struct {
	postResponse []byte
	postErr      error
	fetchErr     error
	postCalls    int
	lastPostURL  string
	lastPayload  any
	lastFetchURL string
}

func (m *mockServiceClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.lastFetchURL = url
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	return []byte("ok"), nil
}

func (m *mockServiceClient) PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error) {
	m.postCalls++
	m.lastPostURL = url
	m.lastPayload = data
	if m.postErr != nil {
		return nil, m.postErr
	}
	return m.postResponse, nil
}

func encodeResponse(t *testing.T, image []byte) []byte {
	t.Helper()
	body, err := json.Marshal(selfHostedResponse{
		Image: base64.StdEncoding.EncodeToString(image),
	})
	require.NoError(t, err)
	return body
}

func TestSelfHostedGenerator_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("参照画像なしはネットワークに出る前に入力エラー", func(t *testing.T) {
		client := &mockServiceClient{}
		g, err := NewSelfHostedGenerator("http://localhost:8000", client)
		require.NoError(t, err)

		_, err = g.Generate(ctx, domain.PromptBundle{Prompt: "p"}, domain.SelfHostedOptions{})

		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Zero(t, client.postCalls, "no HTTP request should be made")
	})

	t.Run("リクエスト内容と応答のデコード", func(t *testing.T) {
		png := testPNG(t)
		client := &mockServiceClient{postResponse: encodeResponse(t, png)}
		g, _ := NewSelfHostedGenerator("http://localhost:8000/", client)

		result, err := g.Generate(ctx, domain.PromptBundle{
			Prompt:         "a summer scene, age 40",
			ReferenceImage: []byte("ref-bytes"),
		}, domain.SelfHostedOptions{
			Steps:          30,
			IPAdapterScale: 0.7,
			NegativePrompt: "blurry",
		})

		require.NoError(t, err)
		assert.Equal(t, png, result.ImageBytes)
		assert.Equal(t, "image/png", result.MimeType)
		assert.Equal(t, "http://localhost:8000/api/v1/generate", client.lastPostURL)

		req, ok := client.lastPayload.(selfHostedRequest)
		require.True(t, ok)
		assert.Equal(t, "a summer scene, age 40", req.Prompt)
		assert.Equal(t, "blurry", req.NegativePrompt)
		assert.Equal(t, 30, req.NumInferenceSteps)
		assert.InDelta(t, 0.7, req.IPAdapterScale, 0.001)

		decoded, err := base64.StdEncoding.DecodeString(req.ReferenceImage)
		require.NoError(t, err)
		assert.Equal(t, []byte("ref-bytes"), decoded)
	})

	t.Run("リクエストごとの画風指定はプロンプト末尾に付く", func(t *testing.T) {
		client := &mockServiceClient{postResponse: encodeResponse(t, testPNG(t))}
		g, _ := NewSelfHostedGenerator("http://localhost:8000", client)

		_, err := g.Generate(ctx, domain.PromptBundle{
			Prompt:         "a summer scene",
			ReferenceImage: []byte("ref"),
		}, domain.SelfHostedOptions{StylePrompt: "watercolor, soft light"})

		require.NoError(t, err)
		req, ok := client.lastPayload.(selfHostedRequest)
		require.True(t, ok)
		assert.Equal(t, "a summer scene, watercolor, soft light", req.Prompt)
	})

	t.Run("クライアントのエラーは上流エラー", func(t *testing.T) {
		client := &mockServiceClient{postErr: fmt.Errorf("status 503: model loading")}
		g, _ := NewSelfHostedGenerator("http://localhost:8000", client)

		_, err := g.Generate(ctx, domain.PromptBundle{
			Prompt:         "p",
			ReferenceImage: []byte("ref"),
		}, domain.SelfHostedOptions{})

		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
		assert.Contains(t, err.Error(), "503")
	})

	t.Run("壊れた base64 は上流エラー", func(t *testing.T) {
		body, err := json.Marshal(selfHostedResponse{Image: "%%not-base64%%"})
		require.NoError(t, err)
		client := &mockServiceClient{postResponse: body}
		g, _ := NewSelfHostedGenerator("http://localhost:8000", client)

		_, err = g.Generate(ctx, domain.PromptBundle{
			Prompt:         "p",
			ReferenceImage: []byte("ref"),
		}, domain.SelfHostedOptions{})

		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})

	t.Run("JSON でない応答は上流エラー", func(t *testing.T) {
		client := &mockServiceClient{postResponse: []byte("<html>gateway error</html>")}
		g, _ := NewSelfHostedGenerator("http://localhost:8000", client)

		_, err := g.Generate(ctx, domain.PromptBundle{
			Prompt:         "p",
			ReferenceImage: []byte("ref"),
		}, domain.SelfHostedOptions{})

		assert.ErrorIs(t, err, domain.ErrUpstreamUnavailable)
	})
}

func TestSelfHostedGenerator_CheckHealth(t *testing.T) {
	ctx := context.Background()

	t.Run("healthy なサービス", func(t *testing.T) {
		client := &mockServiceClient{}
		g, _ := NewSelfHostedGenerator("http://localhost:8000", client)

		require.NoError(t, g.CheckHealth(ctx))
		assert.Equal(t, "http://localhost:8000/health", client.lastFetchURL)
	})

	t.Run("到達不能なサービス", func(t *testing.T) {
		client := &mockServiceClient{fetchErr: fmt.Errorf("connection refused")}
		g, _ := NewSelfHostedGenerator("http://localhost:8000", client)

		assert.Error(t, g.CheckHealth(ctx))
	})
}

func TestSelfHostedGenerator_Policy(t *testing.T) {
	g, err := NewSelfHostedGenerator("http://localhost:8000", &mockServiceClient{})
	require.NoError(t, err)
	assert.Equal(t, RefRequired, g.ReferencePolicy())

	_, err = NewSelfHostedGenerator("", &mockServiceClient{})
	assert.Error(t, err, "baseURL is required")

	_, err = NewSelfHostedGenerator("http://localhost:8000", nil)
	assert.Error(t, err, "client is required")
}
