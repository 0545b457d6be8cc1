package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/shouni/memoir-illust-kit/pkg/domain"
	"github.com/shouni/memoir-illust-kit/pkg/illustrator"
)

// server は illustrond の HTTP ハンドラー群です。
// 主体プロフィールと直近の思い出はリクエストに同梱され、永続化は呼び出し側の責務です。
type server struct {
	app *app
}

func newRouter(a *app) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	s := &server{app: a}

	api := r.Group("/api/v1")
	api.POST("/illustrations/memory", s.handleMemoryIllustration)
	api.POST("/illustrations/subject", s.handleSubjectPortrait)
	api.POST("/characters/:id/avatar", s.handleCharacterAvatar)

	r.GET("/health", s.handleHealth)
	return r
}

// --- リクエスト・レスポンス型 ---

type subjectPayload struct {
	Profile          domain.SubjectProfile `json:"profile"`
	ReferenceLocator string                `json:"reference_locator"`
}

type characterPayload struct {
	ID               string                `json:"id"`
	Profile          domain.SubjectProfile `json:"profile"`
	ReferenceLocator string                `json:"reference_locator"`
}

type memoryIllustrationRequest struct {
	UserID         string                `json:"user_id" binding:"required"`
	Memory         domain.MemoryRef      `json:"memory" binding:"required"`
	User           subjectPayload        `json:"user"`
	Characters     []characterPayload    `json:"characters"`
	RecentMemories []domain.StoredMemory `json:"recent_memories"`
	Provider       string                `json:"provider"`
	Options        json.RawMessage       `json:"options"`
}

type subjectPortraitRequest struct {
	UserID   string          `json:"user_id" binding:"required"`
	User     subjectPayload  `json:"user"`
	Provider string          `json:"provider"`
	Options  json.RawMessage `json:"options"`
}

type characterAvatarRequest struct {
	UserID    string          `json:"user_id" binding:"required"`
	Character subjectPayload  `json:"character"`
	Provider  string          `json:"provider"`
	Options   json.RawMessage `json:"options"`
}

type illustrationResponse struct {
	URI               string            `json:"uri"`
	ViewURL           string            `json:"view_url,omitempty"`
	ComputedSummaries map[string]string `json:"computed_summaries,omitempty"`
}

// --- リクエストスコープのアダプター ---

// requestDirectory はリクエストに同梱されたプロフィールを SubjectDirectory として見せます。
type requestDirectory struct {
	user       illustrator.SubjectRecord
	characters map[string]illustrator.SubjectRecord
}

func newRequestDirectory(user subjectPayload, characters []characterPayload) *requestDirectory {
	d := &requestDirectory{
		user:       illustrator.SubjectRecord{Profile: user.Profile, ReferenceLocator: user.ReferenceLocator},
		characters: make(map[string]illustrator.SubjectRecord, len(characters)),
	}
	for _, ch := range characters {
		d.characters[ch.ID] = illustrator.SubjectRecord{Profile: ch.Profile, ReferenceLocator: ch.ReferenceLocator}
	}
	return d
}

func (d *requestDirectory) User(ctx context.Context, userID string) (illustrator.SubjectRecord, error) {
	if d.user.Profile.Name == "" {
		return illustrator.SubjectRecord{}, fmt.Errorf("user profile was not provided")
	}
	return d.user, nil
}

func (d *requestDirectory) Character(ctx context.Context, userID, characterID string) (illustrator.SubjectRecord, error) {
	rec, ok := d.characters[characterID]
	if !ok {
		return illustrator.SubjectRecord{}, fmt.Errorf("character %s was not provided", characterID)
	}
	return rec, nil
}

// requestMemoryStore はリクエストに同梱された直近の思い出を MemoryStore として見せます。
// 書き戻された要約は応答で呼び出し側へ返し、永続化は呼び出し側に委ねます。
type requestMemoryStore struct {
	memories []domain.StoredMemory

	mu    sync.Mutex
	saved map[string]string
}

func (s *requestMemoryStore) ListRecent(ctx context.Context, userID string, limit int) ([]domain.StoredMemory, error) {
	if limit < len(s.memories) {
		return s.memories[:limit], nil
	}
	return s.memories, nil
}

func (s *requestMemoryStore) SaveSummary(ctx context.Context, memoryID, summary string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.saved == nil {
		s.saved = make(map[string]string)
	}
	s.saved[memoryID] = summary
	return nil
}

// --- ハンドラー ---

func (s *server) handleMemoryIllustration(c *gin.Context) {
	var req memoryIllustrationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider := s.provider(req.Provider)
	opts, err := decodeOptions(provider, req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var ctxProv illustrator.ContextProvider
	memStore := &requestMemoryStore{memories: req.RecentMemories}
	if s.app.cfg.EnableContext && len(req.RecentMemories) > 0 {
		ctxProv, err = s.app.aggregatorFor(memStore)
		if err != nil {
			respondError(c, err)
			return
		}
	}

	tagged := make([]string, 0, len(req.Characters))
	for _, ch := range req.Characters {
		tagged = append(tagged, ch.ID)
	}

	o, err := s.app.orchestratorFor(provider, newRequestDirectory(req.User, req.Characters), ctxProv)
	if err != nil {
		respondError(c, err)
		return
	}

	artifact, err := o.GenerateMemoryIllustration(c.Request.Context(), req.UserID, req.Memory, tagged, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, illustrationResponse{
		URI:               artifact.URI,
		ViewURL:           s.viewURL(c.Request.Context(), artifact.URI),
		ComputedSummaries: memStore.saved,
	})
}

func (s *server) handleSubjectPortrait(c *gin.Context) {
	var req subjectPortraitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	provider := s.provider(req.Provider)
	opts, err := decodeOptions(provider, req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	o, err := s.app.orchestratorFor(provider, newRequestDirectory(req.User, nil), nil)
	if err != nil {
		respondError(c, err)
		return
	}

	artifact, err := o.GenerateSubjectPortrait(c.Request.Context(), req.UserID, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, illustrationResponse{
		URI:     artifact.URI,
		ViewURL: s.viewURL(c.Request.Context(), artifact.URI),
	})
}

func (s *server) handleCharacterAvatar(c *gin.Context) {
	var req characterAvatarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	characterID := c.Param("id")
	provider := s.provider(req.Provider)
	opts, err := decodeOptions(provider, req.Options)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dir := newRequestDirectory(subjectPayload{}, []characterPayload{{
		ID:               characterID,
		Profile:          req.Character.Profile,
		ReferenceLocator: req.Character.ReferenceLocator,
	}})

	o, err := s.app.orchestratorFor(provider, dir, nil)
	if err != nil {
		respondError(c, err)
		return
	}

	artifact, err := o.GenerateCharacterAvatar(c.Request.Context(), req.UserID, characterID, opts)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, illustrationResponse{
		URI:     artifact.URI,
		ViewURL: s.viewURL(c.Request.Context(), artifact.URI),
	})
}

// handleHealth は登録済みの全プロバイダーの到達性をまとめて返します。
func (s *server) handleHealth(c *gin.Context) {
	status := http.StatusOK
	providers := make(map[string]string, len(s.app.pairs))

	for name, pair := range s.app.pairs {
		if err := pair.generator.CheckHealth(c.Request.Context()); err != nil {
			providers[string(name)] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		providers[string(name)] = "ok"
	}

	c.JSON(status, gin.H{"providers": providers})
}

// --- ヘルパー ---

func (s *server) provider(requested string) domain.Provider {
	if requested == "" {
		return domain.Provider(s.app.cfg.DefaultProvider)
	}
	return domain.Provider(requested)
}

func (s *server) viewURL(ctx context.Context, uri string) string {
	url, err := s.app.store.PresignedViewURL(ctx, uri, s.app.cfg.PresignTTL)
	if err != nil {
		return ""
	}
	return url
}

// openaiOptionsPayload 等は JSON ボディをプロバイダー別オプションへ写すための器です。
type openaiOptionsPayload struct {
	Model   string `json:"model"`
	Size    string `json:"size"`
	Quality string `json:"quality"`
	Style   string `json:"style"`
}

type geminiOptionsPayload struct {
	Model       string `json:"model"`
	AspectRatio string `json:"aspect_ratio"`
	Seed        *int64 `json:"seed"`
}

type selfHostedOptionsPayload struct {
	Steps          int     `json:"num_inference_steps"`
	IPAdapterScale float64 `json:"ip_adapter_scale"`
	NegativePrompt string  `json:"negative_prompt"`
	StylePrompt    string  `json:"style_prompt"`
}

func decodeOptions(provider domain.Provider, raw json.RawMessage) (domain.ProviderOptions, error) {
	switch provider {
	case domain.ProviderOpenAI:
		var p openaiOptionsPayload
		if err := decodeInto(raw, &p); err != nil {
			return nil, err
		}
		return domain.OpenAIOptions{Model: p.Model, Size: p.Size, Quality: p.Quality, Style: p.Style}, nil
	case domain.ProviderGemini:
		var p geminiOptionsPayload
		if err := decodeInto(raw, &p); err != nil {
			return nil, err
		}
		return domain.GeminiOptions{Model: p.Model, AspectRatio: p.AspectRatio, Seed: p.Seed}, nil
	case domain.ProviderSelfHosted:
		var p selfHostedOptionsPayload
		if err := decodeInto(raw, &p); err != nil {
			return nil, err
		}
		return domain.SelfHostedOptions{
			Steps:          p.Steps,
			IPAdapterScale: p.IPAdapterScale,
			NegativePrompt: p.NegativePrompt,
			StylePrompt:    p.StylePrompt,
		}, nil
	case domain.ProviderStub:
		return domain.StubOptions{}, nil
	default:
		return nil, fmt.Errorf("unknown provider: %s", provider)
	}
}

func decodeInto(raw json.RawMessage, out any) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("invalid options payload: %w", err)
	}
	return nil
}

// respondError はエラー分類を HTTP ステータスへ写します。
func respondError(c *gin.Context, err error) {
	var cerr *domain.CompositingError

	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.As(err, &cerr):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		status = http.StatusBadGateway
	case errors.Is(err, domain.ErrPersistenceFailure):
		status = http.StatusInternalServerError
	}

	c.JSON(status, gin.H{"error": err.Error()})
}
