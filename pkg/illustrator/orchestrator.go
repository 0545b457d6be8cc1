package illustrator

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shouni/memoir-illust-kit/pkg/adapters"
	"github.com/shouni/memoir-illust-kit/pkg/blobstore"
	"github.com/shouni/memoir-illust-kit/pkg/domain"
	"github.com/shouni/memoir-illust-kit/pkg/imggrid"
	"github.com/shouni/memoir-illust-kit/pkg/prompts"
)

// Config はオーケストレーターの動作設定です。
type Config struct {
	// CanvasSize はグリッド合成キャンバスの一辺。0 なら imggrid のデフォルト。
	CanvasSize int
	// GenerationTimeout は画像生成 1 回の上限。要約系より大幅に長く取ります。
	GenerationTimeout time.Duration
	// ContextTimeout はコンテキスト集約 1 回の上限。
	ContextTimeout time.Duration
	// EnableContext が false なら直近の思い出からのコンテキスト集約を行いません。
	EnableContext bool
	// FetchConcurrency は参照写真の並行取得数。0 ならデフォルト。
	FetchConcurrency int
}

const (
	defaultGenerationTimeout = 2 * time.Minute
	defaultContextTimeout    = 15 * time.Second
	defaultFetchConcurrency  = 4
)

// Orchestrator は蒸留・コンテキスト集約・参照写真収集・グリッド合成・
// プロンプト組み立て・画像生成・保存をひとつなぎにする根元のコンポーネントです。
// 1 回の呼び出しは他の呼び出しと独立で、共有の可変状態を持ちません。
type Orchestrator struct {
	builder     prompts.Builder
	generator   adapters.Generator
	distiller   MemoryDistiller
	contextProv ContextProvider
	directory   SubjectDirectory
	resolver    *ReferenceResolver
	store       blobstore.Gateway
	cfg         Config
	now         func() time.Time
}

// New は戦略ペア（プロンプトビルダーと画像ジェネレーター）を含む依存一式を注入して
// Orchestrator を初期化します。contextProv のみ nil を許容します（集約無効）。
func New(
	builder prompts.Builder,
	generator adapters.Generator,
	distiller MemoryDistiller,
	contextProv ContextProvider,
	directory SubjectDirectory,
	resolver *ReferenceResolver,
	store blobstore.Gateway,
	cfg Config,
) (*Orchestrator, error) {
	if builder == nil {
		return nil, fmt.Errorf("builder is required")
	}
	if generator == nil {
		return nil, fmt.Errorf("generator is required")
	}
	if distiller == nil {
		return nil, fmt.Errorf("distiller is required")
	}
	if directory == nil {
		return nil, fmt.Errorf("directory is required")
	}
	if resolver == nil {
		return nil, fmt.Errorf("resolver is required")
	}
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if cfg.GenerationTimeout <= 0 {
		cfg.GenerationTimeout = defaultGenerationTimeout
	}
	if cfg.ContextTimeout <= 0 {
		cfg.ContextTimeout = defaultContextTimeout
	}
	if cfg.FetchConcurrency <= 0 {
		cfg.FetchConcurrency = defaultFetchConcurrency
	}

	return &Orchestrator{
		builder:     builder,
		generator:   generator,
		distiller:   distiller,
		contextProv: contextProv,
		directory:   directory,
		resolver:    resolver,
		store:       store,
		cfg:         cfg,
		now:         time.Now,
	}, nil
}

// fetchedReference は取得に成功した参照写真とその主体です。
type fetchedReference struct {
	record    SubjectRecord
	isPrimary bool
	bytes     []byte
}

// GenerateMemoryIllustration は思い出 1 件の挿絵を生成して保存します。
// 蒸留とコンテキスト集約の失敗は縮退運転で吸収し、
// 画像生成と保存の失敗は致命的エラーとして呼び出し元へ返します。
func (o *Orchestrator) GenerateMemoryIllustration(
	ctx context.Context,
	userID string,
	memory domain.MemoryRef,
	taggedSubjectIDs []string,
	opts domain.ProviderOptions,
) (domain.StoredArtifact, error) {
	// 入力不備はネットワーク呼び出しの前に落とす
	user, err := o.directory.User(ctx, userID)
	if err != nil {
		return domain.StoredArtifact{}, fmt.Errorf("%w: user %s: %v", domain.ErrInvalidInput, userID, err)
	}

	records := make([]SubjectRecord, 0, 1+len(taggedSubjectIDs))
	records = append(records, user)
	for _, id := range taggedSubjectIDs {
		rec, err := o.directory.Character(ctx, userID, id)
		if err != nil {
			return domain.StoredArtifact{}, fmt.Errorf("%w: character %s: %v", domain.ErrInvalidInput, id, err)
		}
		records = append(records, rec)
	}

	distilled, degraded := o.distiller.Distill(ctx, memory, user.Profile)
	if degraded {
		slog.WarnContext(ctx, "蒸留フォールバックで続行します", "user_id", userID, "title", memory.Title)
	}

	contextStr := o.recentContext(ctx, userID, memory, distilled)

	prompt := o.builder.BuildMemoryPrompt(prompts.MemoryPromptInput{
		Memory:    memory,
		Distilled: distilled,
		Subject:   user.Profile,
		Context:   contextStr,
	})

	var reference []byte
	if o.generator.ReferencePolicy() != adapters.RefNone {
		fetched := o.collectReferences(ctx, records)

		switch {
		case len(fetched) == 0:
			if o.generator.ReferencePolicy() == adapters.RefRequired {
				return domain.StoredArtifact{}, fmt.Errorf(
					"%w: the selected backend requires a reference image and none could be collected", domain.ErrInvalidInput)
			}
		case len(fetched) == 1:
			// 1 枚なら合成せずそのまま使う
			reference = fetched[0].bytes
		default:
			images := make([][]byte, len(fetched))
			names := make([]string, len(fetched))
			for i, f := range fetched {
				images[i] = f.bytes
				names[i] = f.record.Profile.Name
			}

			composed, layout, err := imggrid.Compose(images, o.cfg.CanvasSize)
			if err != nil {
				return domain.StoredArtifact{}, err
			}

			desc := imggrid.Describe(layout, names)
			prompt += o.builder.BuildGridPrompt(desc, o.gridSubjects(fetched, memory.Date))
			reference = composed
		}
	}

	result, err := o.generate(ctx, prompt, reference, opts)
	if err != nil {
		return domain.StoredArtifact{}, err
	}

	key := blobstore.GeneratedKey(domain.ArtifactMemory, userID)
	uri, err := o.store.Put(ctx, key, result.ImageBytes, mimeOrPNG(result.MimeType))
	if err != nil {
		return domain.StoredArtifact{}, err
	}

	slog.InfoContext(ctx, "思い出の挿絵を生成しました", "user_id", userID, "uri", uri)
	return domain.StoredArtifact{URI: uri}, nil
}

// GenerateSubjectPortrait はユーザー本人の肖像を生成して保存します。思い出には依存しません。
func (o *Orchestrator) GenerateSubjectPortrait(ctx context.Context, userID string, opts domain.ProviderOptions) (domain.StoredArtifact, error) {
	user, err := o.directory.User(ctx, userID)
	if err != nil {
		return domain.StoredArtifact{}, fmt.Errorf("%w: user %s: %v", domain.ErrInvalidInput, userID, err)
	}

	key := blobstore.GeneratedKey(domain.ArtifactSubject, userID)
	uri, err := o.portrait(ctx, user, key, opts)
	if err != nil {
		return domain.StoredArtifact{}, err
	}

	slog.InfoContext(ctx, "肖像を生成しました", "user_id", userID, "uri", uri)
	return domain.StoredArtifact{URI: uri}, nil
}

// GenerateCharacterAvatar は登場人物のアバターを生成し、安定パスへ上書き保存します。
func (o *Orchestrator) GenerateCharacterAvatar(ctx context.Context, userID, characterID string, opts domain.ProviderOptions) (domain.StoredArtifact, error) {
	character, err := o.directory.Character(ctx, userID, characterID)
	if err != nil {
		return domain.StoredArtifact{}, fmt.Errorf("%w: character %s: %v", domain.ErrInvalidInput, characterID, err)
	}

	key := blobstore.AvatarKey(userID, characterID)
	uri, err := o.portrait(ctx, character, key, opts)
	if err != nil {
		return domain.StoredArtifact{}, err
	}

	slog.InfoContext(ctx, "アバターを生成しました", "user_id", userID, "character_id", characterID, "uri", uri)
	return domain.StoredArtifact{URI: uri}, nil
}

// CheckHealth は選択中のバックエンドの到達性・設定を検査します。
func (o *Orchestrator) CheckHealth(ctx context.Context) error {
	return o.generator.CheckHealth(ctx)
}

// portrait は肖像系（本人・登場人物）の共通パスです。
func (o *Orchestrator) portrait(ctx context.Context, subject SubjectRecord, key string, opts domain.ProviderOptions) (string, error) {
	policy := o.generator.ReferencePolicy()

	// 所在が空なら取得を試す前に落とせる
	if policy == adapters.RefRequired && subject.ReferenceLocator == "" {
		return "", fmt.Errorf("%w: the selected backend requires a reference image and %s has none registered",
			domain.ErrInvalidInput, subject.Profile.Name)
	}

	prompt := o.builder.BuildSubjectPrompt(subject.Profile)

	var reference []byte
	if policy != adapters.RefNone && subject.ReferenceLocator != "" {
		data, err := o.resolver.Fetch(ctx, subject.ReferenceLocator)
		if err != nil {
			if policy == adapters.RefRequired {
				return "", fmt.Errorf("%w: reference image for %s could not be fetched: %v",
					domain.ErrInvalidInput, subject.Profile.Name, err)
			}
			slog.WarnContext(ctx, "参照写真の取得に失敗したため参照なしで続行します",
				"subject", subject.Profile.Name, "error", err)
		} else {
			reference = data
		}
	}

	result, err := o.generate(ctx, prompt, reference, opts)
	if err != nil {
		return "", err
	}

	return o.store.Put(ctx, key, result.ImageBytes, mimeOrPNG(result.MimeType))
}

// recentContext はコンテキスト集約を試みます。失敗は「コンテキストなし」に縮退し、決して致命化しません。
func (o *Orchestrator) recentContext(ctx context.Context, userID string, memory domain.MemoryRef, distilled string) string {
	if !o.cfg.EnableContext || o.contextProv == nil {
		return ""
	}

	cctx, cancel := context.WithTimeout(ctx, o.cfg.ContextTimeout)
	defer cancel()

	contextStr, err := o.contextProv.RecentContext(cctx, userID, memory, distilled)
	if err != nil {
		slog.WarnContext(ctx, "コンテキスト集約に失敗したためコンテキストなしで続行します", "user_id", userID, "error", err)
		return ""
	}
	return contextStr
}

// collectReferences は各主体の参照写真を並行に取得します。
// 1 人の失敗は他を巻き込まず、そのまま除外します（部分結果の収集）。
func (o *Orchestrator) collectReferences(ctx context.Context, records []SubjectRecord) []fetchedReference {
	results := make([][]byte, len(records))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.cfg.FetchConcurrency)
	for i, rec := range records {
		if rec.ReferenceLocator == "" {
			continue
		}
		g.Go(func() error {
			data, err := o.resolver.Fetch(gctx, rec.ReferenceLocator)
			if err != nil {
				// 取りこぼした主体はグリッドから抜けるだけ
				slog.WarnContext(gctx, "参照写真の取得に失敗したためこの主体を除外します",
					"subject", rec.Profile.Name, "error", err)
				return nil
			}
			results[i] = data
			return nil
		})
	}
	// goroutine はエラーを返さないので Wait のエラーは常に nil
	_ = g.Wait()

	fetched := make([]fetchedReference, 0, len(records))
	for i, rec := range records {
		if results[i] == nil {
			continue
		}
		fetched = append(fetched, fetchedReference{
			record:    rec,
			isPrimary: i == 0,
			bytes:     results[i],
		})
	}
	return fetched
}

// gridSubjects は取得できた主体からグリッドプロンプト用のエントリを作ります。
// 思い出の日付が分かる場合は主体ごとに若返り指示を計算します。
func (o *Orchestrator) gridSubjects(fetched []fetchedReference, memoryDate time.Time) []prompts.GridSubject {
	subjects := make([]prompts.GridSubject, 0, len(fetched))
	for _, f := range fetched {
		s := prompts.GridSubject{
			Name:         f.record.Profile.Name,
			Relationship: f.record.Profile.Relationship,
			IsPrimary:    f.isPrimary,
		}
		if !memoryDate.IsZero() && f.record.Profile.Age > 0 {
			ageAt := prompts.AgeAtMemory(f.record.Profile.Age, memoryDate, o.now())
			s.DeAging = prompts.DeAgingInstruction(f.record.Profile.Age, ageAt)
		}
		subjects = append(subjects, s)
	}
	return subjects
}

// generate は生成タイムアウトを掛けて画像ジェネレーターを呼びます。
func (o *Orchestrator) generate(ctx context.Context, prompt string, reference []byte, opts domain.ProviderOptions) (*domain.GenerationResult, error) {
	gctx, cancel := context.WithTimeout(ctx, o.cfg.GenerationTimeout)
	defer cancel()

	result, err := o.generator.Generate(gctx, domain.PromptBundle{
		Prompt:         prompt,
		ReferenceImage: reference,
	}, opts)
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	return result, nil
}

func mimeOrPNG(mimeType string) string {
	if mimeType == "" {
		return "image/png"
	}
	return mimeType
}
