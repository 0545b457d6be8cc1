package adapters

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/shouni/go-gemini-client/pkg/gemini"
	"google.golang.org/genai"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// toInlinePart はバイト列を genai.Part (InlineData) に変換します。
// MIME タイプが画像でなければ nil を返します。
func toInlinePart(data []byte) *genai.Part {
	mimeType := http.DetectContentType(data)
	if !strings.HasPrefix(mimeType, "image/") {
		return nil
	}
	return &genai.Part{
		InlineData: &genai.Blob{
			MIMEType: mimeType,
			Data:     data,
		},
	}
}

// parseGeminiResponse は Gemini の応答から最初の画像パーツを取り出します。
func parseGeminiResponse(resp *gemini.Response) (*domain.GenerationResult, error) {
	if resp == nil || resp.RawResponse == nil || len(resp.RawResponse.Candidates) == 0 {
		return nil, fmt.Errorf("%w: gemini returned no candidates", domain.ErrUpstreamUnavailable)
	}

	// 最初の候補のみを利用する
	candidate := resp.RawResponse.Candidates[0]

	if candidate.Content != nil {
		for _, part := range candidate.Content.Parts {
			if part.InlineData != nil && len(part.InlineData.Data) > 0 {
				return &domain.GenerationResult{
					ImageBytes: part.InlineData.Data,
					MimeType:   part.InlineData.MIMEType,
				}, nil
			}
		}
	}

	// 安全フィルター等によるブロックの確認
	if candidate.FinishReason != genai.FinishReasonUnspecified && candidate.FinishReason != genai.FinishReasonStop {
		return nil, fmt.Errorf("%w: generation stopped (FinishReason: %s)", domain.ErrUpstreamUnavailable, candidate.FinishReason)
	}

	return nil, fmt.Errorf("%w: gemini returned no image data", domain.ErrUpstreamUnavailable)
}
