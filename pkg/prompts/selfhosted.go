package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// SelfHostedBuilder は自前ホストの Stable Diffusion サービス向けの戦略です。
// SD 系モデルはカンマ区切りのタグ列が最も安定するため、文章にはしません。
type SelfHostedBuilder struct {
	// StylePrompt が空なら StyleSketch を使います。
	StylePrompt string
}

func NewSelfHostedBuilder(stylePrompt string) *SelfHostedBuilder {
	return &SelfHostedBuilder{StylePrompt: stylePrompt}
}

func (b *SelfHostedBuilder) BuildMemoryPrompt(in MemoryPromptInput) string {
	tags := []string{in.Distilled}
	if in.Subject.Age > 0 {
		tags = append(tags, fmt.Sprintf("age %d", in.Subject.Age))
	}
	tags = append(tags, b.style(in.Subject.PreferredStyle))
	// コンテキストは SD ではノイズになりやすいのでタグ化しない
	return strings.Join(tags, ", ")
}

func (b *SelfHostedBuilder) BuildSubjectPrompt(profile domain.SubjectProfile) string {
	tags := []string{SubjectPortraitPrompt}
	if profile.Age > 0 {
		tags = append(tags, fmt.Sprintf("age %d", profile.Age))
	}
	if profile.PreferredStyle != "" {
		tags = append(tags, profile.PreferredStyle)
	}
	return strings.Join(tags, ", ")
}

func (b *SelfHostedBuilder) BuildGridPrompt(gridDescription string, subjects []GridSubject) string {
	// IP-Adapter は合成画像そのものを見るので、グリッドの説明と人数だけ短く添える
	var sb strings.Builder
	sb.WriteString(", ")
	sb.WriteString(gridDescription)
	for _, s := range subjects {
		if s.DeAging != "" {
			sb.WriteString(", " + s.Name + ": " + s.DeAging)
		}
	}
	return sb.String()
}

func (b *SelfHostedBuilder) style(preferred string) string {
	if preferred != "" {
		return preferred
	}
	if b.StylePrompt != "" {
		return b.StylePrompt
	}
	return StyleSketch
}
