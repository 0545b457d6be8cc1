package distill

import (
	"context"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// --- Mocks ---

type mockTextGen struct {
	text     string
	err      error
	requests []TextRequest
}

func (m *mockTextGen) GenerateText(ctx context.Context, req TextRequest) (string, error) {
	m.requests = append(m.requests, req)
	return m.text, m.err
}

type mockMemoryStore struct {
	memories       []domain.StoredMemory
	listErr        error
	saveErr        error
	savedSummaries map[string]string
}

func (m *mockMemoryStore) ListRecent(ctx context.Context, userID string, limit int) ([]domain.StoredMemory, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	if limit < len(m.memories) {
		return m.memories[:limit], nil
	}
	return m.memories, nil
}

func (m *mockMemoryStore) SaveSummary(ctx context.Context, memoryID, summary string) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.savedSummaries == nil {
		m.savedSummaries = make(map[string]string)
	}
	m.savedSummaries[memoryID] = summary
	return nil
}
