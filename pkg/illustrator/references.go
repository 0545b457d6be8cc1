package illustrator

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/memoir-illust-kit/pkg/blobstore"
)

// ReferenceResolver は参照写真の所在（store:// URI か http(s) URL）からバイト列を取得します。
type ReferenceResolver struct {
	store      blobstore.Gateway
	httpClient HTTPClient
}

// NewReferenceResolver は依存関係を注入して ReferenceResolver を初期化します。
func NewReferenceResolver(store blobstore.Gateway, httpClient HTTPClient) (*ReferenceResolver, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if httpClient == nil {
		return nil, fmt.Errorf("httpClient is required")
	}
	return &ReferenceResolver{store: store, httpClient: httpClient}, nil
}

// Fetch は所在に応じてブロブストアか HTTP から画像を取得します。
// 外部 URL の SSRF 検証（スキーム制限・内部ネットワーク拒否）は
// HTTP クライアント側に委譲し、通過したものだけ取得します。
func (r *ReferenceResolver) Fetch(ctx context.Context, locator string) ([]byte, error) {
	if strings.HasPrefix(locator, blobstore.URIScheme) {
		return r.store.Get(ctx, locator)
	}

	if safe, err := r.httpClient.IsSafeURL(locator); err != nil || !safe {
		return nil, fmt.Errorf("unsafe reference url was rejected: %w", err)
	}
	return r.httpClient.FetchBytes(ctx, locator)
}
