package prompts

import (
	"fmt"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// StubBuilder は組み立て結果を検証しやすい最小限の戦略です。テストと開発用。
type StubBuilder struct{}

func NewStubBuilder() *StubBuilder { return &StubBuilder{} }

func (b *StubBuilder) BuildMemoryPrompt(in MemoryPromptInput) string {
	return fmt.Sprintf("memory[%s]: %s", in.Subject.Name, in.Distilled)
}

func (b *StubBuilder) BuildSubjectPrompt(profile domain.SubjectProfile) string {
	return fmt.Sprintf("subject[%s]", profile.Name)
}

func (b *StubBuilder) BuildGridPrompt(gridDescription string, subjects []GridSubject) string {
	return fmt.Sprintf("\ngrid[%d]: %s", len(subjects), gridDescription)
}
