package prompts

import (
	"fmt"
	"strings"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// GeminiBuilder は Gemini バックエンド向けのプロンプト戦略です。
// Gemini は自由文の方が素直に従うため、一つの段落として流し込みます。
type GeminiBuilder struct{}

func NewGeminiBuilder() *GeminiBuilder { return &GeminiBuilder{} }

func (b *GeminiBuilder) BuildMemoryPrompt(in MemoryPromptInput) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Illustrate this remembered moment: %s.", strings.TrimRight(in.Distilled, "."))
	fmt.Fprintf(&sb, " The scene centers on %s.", describeSubject(in.Subject))
	if !in.Memory.Date.IsZero() {
		fmt.Fprintf(&sb, " It took place around %s.", in.Memory.Date.Format("January 2006"))
	}
	if in.Context != "" {
		fmt.Fprintf(&sb, " For emotional tone only, this person's recent life reads: %s", in.Context)
	}
	fmt.Fprintf(&sb, " Render it as %s.", styleOrDefault(in.Subject.PreferredStyle))
	return sb.String()
}

func (b *GeminiBuilder) BuildSubjectPrompt(profile domain.SubjectProfile) string {
	return fmt.Sprintf(
		"Draw a head-and-shoulders portrait of %s, rendered as %s.",
		describeSubject(profile), styleOrDefault(profile.PreferredStyle),
	)
}

func (b *GeminiBuilder) BuildGridPrompt(gridDescription string, subjects []GridSubject) string {
	var sb strings.Builder
	sb.WriteString("\n\nNote that ")
	sb.WriteString(gridDescription)
	sb.WriteString("\nIn the final illustration include ")
	for i, s := range subjects {
		if i > 0 {
			if i == len(subjects)-1 {
				sb.WriteString(" and ")
			} else {
				sb.WriteString(", ")
			}
		}
		sb.WriteString(s.Name)
		if s.Relationship != "" {
			sb.WriteString(" (" + s.Relationship + ")")
		}
		if s.DeAging != "" {
			sb.WriteString("; " + s.DeAging)
		}
	}
	sb.WriteString(".")
	return sb.String()
}
