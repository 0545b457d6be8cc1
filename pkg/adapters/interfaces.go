package adapters

import (
	"context"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// ReferencePolicy はバックエンドが参照画像をどう扱うかの宣言です。
type ReferencePolicy int

const (
	// RefNone は参照画像を受け取れないバックエンドです。
	RefNone ReferencePolicy = iota
	// RefOptional は参照画像があれば使うバックエンドです。
	RefOptional
	// RefRequired は参照画像なしでは生成できないバックエンドです。
	RefRequired
)

// ServiceClient は自前ホストのサービスとの通信に必要な HTTP 操作だけを
// 切り出した契約です。go-http-kit のクライアントがこれを満たします。
type ServiceClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
	PostJSONAndFetchBytes(ctx context.Context, url string, data any) ([]byte, error)
}

// Generator は描画バックエンドの共通契約です。
// PromptBundle の中身（プロンプトの組み立て方）には関知しません。
type Generator interface {
	// Generate はプロンプトと省略可能な参照画像から 1 枚の画像を生成します。
	Generate(ctx context.Context, bundle domain.PromptBundle, opts domain.ProviderOptions) (*domain.GenerationResult, error)
	// ReferencePolicy はこのバックエンドの参照画像の要否を返します。
	ReferencePolicy() ReferencePolicy
	// CheckHealth は画像を生成せずに到達性と設定の完全性を検査します。
	CheckHealth(ctx context.Context) error
}
