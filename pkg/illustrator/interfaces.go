package illustrator

import (
	"context"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// HTTPClient は参照写真の取得に必要な HTTP 操作だけを切り出した契約です。
// go-http-kit のクライアントがこれを満たします。
type HTTPClient interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
	IsSafeURL(rawURL string) (bool, error)
}

// SubjectRecord は主体 1 人分のプロフィールと参照写真の所在です。
// ReferenceLocator は store:// URI または http(s) URL で、空なら参照写真なしです。
type SubjectRecord struct {
	Profile          domain.SubjectProfile
	ReferenceLocator string
}

// SubjectDirectory はユーザー・登場人物の検索の契約です。
// 永続層は外部の責務で、ここでは読み取り専用ビューだけを扱います。
type SubjectDirectory interface {
	User(ctx context.Context, userID string) (SubjectRecord, error)
	Character(ctx context.Context, userID, characterID string) (SubjectRecord, error)
}

// MemoryDistiller は思い出の蒸留の契約です。第 2 戻り値はフォールバック発生を示します。
type MemoryDistiller interface {
	Distill(ctx context.Context, memory domain.MemoryRef, subject domain.SubjectProfile) (string, bool)
}

// ContextProvider は直近の思い出からの補助コンテキスト生成の契約です。
type ContextProvider interface {
	RecentContext(ctx context.Context, userID string, current domain.MemoryRef, distilled string) (string, error)
}
