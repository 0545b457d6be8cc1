package prompts

import "github.com/shouni/memoir-illust-kit/pkg/domain"

// MemoryPromptInput は思い出プロンプトの組み立てに必要な入力一式です。
type MemoryPromptInput struct {
	Memory    domain.MemoryRef
	Distilled string // 蒸留済み（失敗時は原文そのまま）のシーン記述
	Subject   domain.SubjectProfile
	Context   string // 直近の思い出から作った補助コンテキスト。空可
}

// GridSubject はグリッドプロンプト節の 1 人分のエントリです。
type GridSubject struct {
	Name         string
	Relationship string
	IsPrimary    bool
	DeAging      string // 空なら若返り指示なし
}

// Builder はプロバイダーごとのプロンプト組み立て戦略の契約です。
// 各実装が自分の書式と饒舌さを管理し、オーケストレーターは中身を覗きません。
type Builder interface {
	// BuildMemoryPrompt は思い出の挿絵用のベースプロンプトを生成します。
	BuildMemoryPrompt(in MemoryPromptInput) string
	// BuildSubjectPrompt は思い出に依存しない肖像（ポートレート）用プロンプトを生成します。
	BuildSubjectPrompt(profile domain.SubjectProfile) string
	// BuildGridPrompt はグリッド説明文と各人物のエントリから複数人向けの節を生成します。
	// オーケストレーターはこれをベースプロンプトの末尾に連結するだけです。
	BuildGridPrompt(gridDescription string, subjects []GridSubject) string
}
