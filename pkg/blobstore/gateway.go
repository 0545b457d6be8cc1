package blobstore

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// URIScheme は本システムのオブジェクト URI のスキームです。形式は store://bucket/key。
const URIScheme = "store://"

// Gateway はブロブストアへの窓口の契約です。
type Gateway interface {
	// Put はバイト列を保存して store:// URI を返します。
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
	// Get は store:// URI からバイト列を取得します。
	Get(ctx context.Context, uri string) ([]byte, error)
	// PresignedViewURL は期限付きの閲覧 URL を発行します。
	PresignedViewURL(ctx context.Context, uri string, ttl time.Duration) (string, error)
	// PresignedUploadURL は期限付きのアップロード URL を発行します。
	PresignedUploadURL(ctx context.Context, uri string, contentType string, ttl time.Duration) (string, error)
}

// ParseURI は store://bucket/key を分解します。
func ParseURI(uri string) (bucket, key string, err error) {
	if !strings.HasPrefix(uri, URIScheme) {
		return "", "", fmt.Errorf("invalid store URI: %s", uri)
	}
	rest := strings.TrimPrefix(uri, URIScheme)
	parts := strings.SplitN(rest, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid store URI: %s", uri)
	}
	return parts[0], parts[1], nil
}

// FormatURI は bucket と key から store:// URI を組み立てます。
func FormatURI(bucket, key string) string {
	return URIScheme + bucket + "/" + key
}

// JoinKey は空要素を捨てつつ "/" 区切りでオブジェクトキーを組み立てます。
func JoinKey(parts ...string) string {
	filtered := make([]string, 0, len(parts))
	for _, part := range parts {
		part = strings.Trim(part, "/")
		if part != "" {
			filtered = append(filtered, part)
		}
	}
	return strings.Join(filtered, "/")
}
