package illustrator

import (
	"context"
	"fmt"
	"time"

	"github.com/shouni/memoir-illust-kit/pkg/adapters"
	"github.com/shouni/memoir-illust-kit/pkg/blobstore"
	"github.com/shouni/memoir-illust-kit/pkg/domain"
)

// --- Mocks ---

type mockGenerator struct {
	policy     adapters.ReferencePolicy
	result     *domain.GenerationResult
	err        error
	callCount  int
	lastBundle domain.PromptBundle
}

func (m *mockGenerator) Generate(ctx context.Context, bundle domain.PromptBundle, opts domain.ProviderOptions) (*domain.GenerationResult, error) {
	m.callCount++
	m.lastBundle = bundle
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &domain.GenerationResult{ImageBytes: []byte("generated"), MimeType: "image/png"}, nil
}

func (m *mockGenerator) ReferencePolicy() adapters.ReferencePolicy { return m.policy }

func (m *mockGenerator) CheckHealth(ctx context.Context) error { return nil }

type mockDistiller struct {
	text     string
	degraded bool
}

func (m *mockDistiller) Distill(ctx context.Context, memory domain.MemoryRef, subject domain.SubjectProfile) (string, bool) {
	if m.degraded {
		return memory.Content, true
	}
	return m.text, false
}

type mockContextProvider struct {
	text string
	err  error
}

func (m *mockContextProvider) RecentContext(ctx context.Context, userID string, current domain.MemoryRef, distilled string) (string, error) {
	return m.text, m.err
}

type mockDirectory struct {
	user       SubjectRecord
	userErr    error
	characters map[string]SubjectRecord
}

func (m *mockDirectory) User(ctx context.Context, userID string) (SubjectRecord, error) {
	return m.user, m.userErr
}

func (m *mockDirectory) Character(ctx context.Context, userID, characterID string) (SubjectRecord, error) {
	rec, ok := m.characters[characterID]
	if !ok {
		return SubjectRecord{}, fmt.Errorf("character not found: %s", characterID)
	}
	return rec, nil
}

type mockHTTPClient struct {
	data       map[string][]byte
	err        error
	unsafe     bool
	fetchCalls int
}

func (m *mockHTTPClient) FetchBytes(ctx context.Context, url string) ([]byte, error) {
	m.fetchCalls++
	if m.err != nil {
		return nil, m.err
	}
	data, ok := m.data[url]
	if !ok {
		return nil, fmt.Errorf("no fixture for %s", url)
	}
	return data, nil
}

func (m *mockHTTPClient) IsSafeURL(rawURL string) (bool, error) {
	if m.unsafe {
		return false, fmt.Errorf("restricted network destination: %s", rawURL)
	}
	return true, nil
}

type mockGateway struct {
	objects map[string][]byte
	putErr  error
	getErr  error
	lastKey string
}

func (m *mockGateway) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if m.putErr != nil {
		return "", m.putErr
	}
	if m.objects == nil {
		m.objects = make(map[string][]byte)
	}
	m.objects[key] = data
	m.lastKey = key
	return blobstore.FormatURI("test-bucket", key), nil
}

func (m *mockGateway) Get(ctx context.Context, uri string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	_, key, err := blobstore.ParseURI(uri)
	if err != nil {
		return nil, err
	}
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("object not found: %s", uri)
	}
	return data, nil
}

func (m *mockGateway) PresignedViewURL(ctx context.Context, uri string, ttl time.Duration) (string, error) {
	return "https://presigned.example.com/view", nil
}

func (m *mockGateway) PresignedUploadURL(ctx context.Context, uri string, contentType string, ttl time.Duration) (string, error) {
	return "https://presigned.example.com/upload", nil
}
