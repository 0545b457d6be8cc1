package domain

import (
	"errors"
	"fmt"
)

// パイプライン全体で共有するエラー分類。
// errors.Is / errors.As で判定できるよう、番兵エラーと構造体エラーを使い分けます。
var (
	// ErrUpstreamUnavailable は外部サービスへの到達失敗・タイムアウトを表します。
	ErrUpstreamUnavailable = errors.New("upstream service unavailable")

	// ErrInvalidInput は必須参照画像の欠落や存在しない主体など、
	// ネットワーク呼び出しの前に検出すべき入力不備を表します。
	ErrInvalidInput = errors.New("invalid input")

	// ErrPersistenceFailure はブロブストアへのアップロード失敗を表します。
	ErrPersistenceFailure = errors.New("persistence failure")
)

// CompositingError はグリッド合成中にどの入力画像で失敗したかを特定するエラーです。
type CompositingError struct {
	Index int // 失敗した入力画像の位置（0 始まり）
	Err   error
}

func (e *CompositingError) Error() string {
	return fmt.Sprintf("compositing failed at input image %d: %v", e.Index, e.Err)
}

func (e *CompositingError) Unwrap() error { return e.Err }
