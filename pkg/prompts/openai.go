package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// OpenAIBuilder は OpenAI 系バックエンド向けのプロンプト戦略です。
// DALL-E はプロンプトを自前で書き換えるため、厳密なセクション構造で
// 要素の取りこぼしを防ぎます。
type OpenAIBuilder struct{}

func NewOpenAIBuilder() *OpenAIBuilder { return &OpenAIBuilder{} }

func (b *OpenAIBuilder) BuildMemoryPrompt(in MemoryPromptInput) string {
	var sec []string
	sec = append(sec, "Create an illustration of the following remembered scene.")
	sec = append(sec, "Scene: "+in.Distilled)
	if in.Memory.Title != "" {
		sec = append(sec, "Title: "+in.Memory.Title)
	}
	if !in.Memory.Date.IsZero() {
		sec = append(sec, "Date of the memory: "+in.Memory.Date.Format("January 2, 2006"))
	}
	sec = append(sec, "Main subject: "+describeSubject(in.Subject))
	sec = append(sec, "Style: "+styleOrDefault(in.Subject.PreferredStyle))
	if in.Context != "" {
		sec = append(sec, "Background context (mood only, do not depict literally): "+in.Context)
	}
	return strings.Join(sec, "\n")
}

func (b *OpenAIBuilder) BuildSubjectPrompt(profile domain.SubjectProfile) string {
	sec := []string{
		"Create a portrait illustration.",
		"Subject: " + describeSubject(profile),
		"Composition: head and shoulders, facing slightly off-camera.",
		"Style: " + styleOrDefault(profile.PreferredStyle),
	}
	return strings.Join(sec, "\n")
}

func (b *OpenAIBuilder) BuildGridPrompt(gridDescription string, subjects []GridSubject) string {
	var sb strings.Builder
	sb.WriteString("\n\nReference image:\n")
	sb.WriteString(gridDescription)
	sb.WriteString("\nPeople to depict:\n")
	for _, s := range subjects {
		sb.WriteString("- " + s.Name)
		if s.Relationship != "" {
			sb.WriteString(" (" + s.Relationship + ")")
		}
		if s.IsPrimary {
			sb.WriteString(", the primary subject")
		}
		if s.DeAging != "" {
			sb.WriteString("; " + s.DeAging)
		}
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}

// describeSubject はプロフィールを一行の英語記述に落とします。
func describeSubject(p domain.SubjectProfile) string {
	desc := fmt.Sprintf("%s, %d years old", p.Name, p.Age)
	if p.Gender != "" {
		desc += ", " + p.Gender
	}
	if p.CulturalBackground != "" {
		desc += ", " + p.CulturalBackground + " background"
	}
	return desc
}

func styleOrDefault(preferred string) string {
	if preferred != "" {
		return preferred
	}
	return StyleSketch
}
