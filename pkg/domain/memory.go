package domain

import "time"

// MemoryRef は挿絵生成の入力となる思い出の読み取り専用ビューです。
// パイプラインはこの値を一切変更しません。
type MemoryRef struct {
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	Tags    []string  `json:"tags"` // タグ付けされた登場人物の ID
}

// SubjectProfile はユーザーと登場人物を区別せずに扱うための共通投影です。
// プロンプトビルダーはどちら由来かを意識しません。
type SubjectProfile struct {
	Name               string `json:"name"`
	Age                int    `json:"age"`
	Gender             string `json:"gender,omitempty"`
	CulturalBackground string `json:"cultural_background,omitempty"`
	Relationship       string `json:"relationship,omitempty"`   // 主体ユーザーから見た関係（登場人物のみ）
	PreferredStyle     string `json:"preferred_style,omitempty"` // 画風の希望
}

// ReferenceImage は 1 回のパイプライン実行の間だけ保持される参照写真です。
// 実行をまたいでキャッシュしてはいけません。
type ReferenceImage struct {
	OwnerID   string
	SubjectID string
	Bytes     []byte
}

// StoredMemory は文書ストアに永続化済みの思い出のうち、
// コンテキスト集約が参照するフィールドだけを切り出したものです。
// Summary は派生フィールドで、空の場合に限り書き戻しされます。
type StoredMemory struct {
	ID      string    `json:"id"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	Date    time.Time `json:"date"`
	Summary string    `json:"summary,omitempty"`
}
