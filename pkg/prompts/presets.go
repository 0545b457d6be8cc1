package prompts

// 画風・ネガティブプロンプトの定番プリセット。
// 自前ホストの Stable Diffusion 系バックエンドで使います。

const (
	// StyleSketch はデフォルトの画風。個人的で郷愁のあるモノクロスケッチ。
	StyleSketch = "highest quality, monochrome, professional sketch, personal, nostalgic, clean"

	// StyleGraphicNovel はグラフィックノベル調のハイコントラスト。
	StyleGraphicNovel = "high contrast, minimalistic, colored black and grungy white, stark, graphic novel illustration, cross hatching"

	// StyleJournal は日記の走り書き風。
	StyleJournal = "monochrome, journal entry sketch, graphic novel illustration"
)

// SubjectPortraitPrompt は思い出に依存しない肖像生成の固定コンテンツプロンプトです。
const SubjectPortraitPrompt = "highest quality, professional sketch, monochrome"

// DefaultNegativePrompt は生成失敗になりやすい要素の抑止です。
const DefaultNegativePrompt = "worst quality, low quality, error, glitch, mistake, busy, words, writing, photo, photo-realistic"
