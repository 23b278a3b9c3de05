package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/paper-translator/internal/config"
	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/ports"
	"github.com/kirillkom/paper-translator/internal/core/usecase"
	"github.com/kirillkom/paper-translator/internal/infrastructure/assembly"
	"github.com/kirillkom/paper-translator/internal/infrastructure/audit/xlsx"
	"github.com/kirillkom/paper-translator/internal/infrastructure/chunking"
	"github.com/kirillkom/paper-translator/internal/infrastructure/cleaning"
	"github.com/kirillkom/paper-translator/internal/infrastructure/extractor/pdfreader"
	"github.com/kirillkom/paper-translator/internal/infrastructure/extractor/pdftotext"
	"github.com/kirillkom/paper-translator/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/paper-translator/internal/infrastructure/llm"
	"github.com/kirillkom/paper-translator/internal/infrastructure/llm/ollama"
	"github.com/kirillkom/paper-translator/internal/infrastructure/llm/openai"
	"github.com/kirillkom/paper-translator/internal/infrastructure/queue/nats"
	"github.com/kirillkom/paper-translator/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/paper-translator/internal/infrastructure/resilience"
	"github.com/kirillkom/paper-translator/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/paper-translator/internal/infrastructure/terminology"
	"github.com/kirillkom/paper-translator/internal/observability/metrics"
)

const serviceName = "paper-translator"

type Options struct {
	// ConnectQueue opens the NATS connection; the CLI needs it only to
	// enqueue jobs, the worker always.
	ConnectQueue bool
}

type App struct {
	Config config.Config

	Queue     *nats.Queue
	Metrics   *metrics.TranslationMetrics
	ProcessUC ports.DocumentProcessor
	BatchUC   ports.BatchRunner

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, opts Options) (*App, error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*App, error) {
		closeAll()
		return nil, err
	}

	prompts, err := loadPrompts(cfg.PromptFile)
	if err != nil {
		return fail(err)
	}

	policy := resiliencePolicy(cfg)
	chatExecutor := resilience.NewExecutor(policy.ForTranslation(cfg.ChatRetryAttempts))
	metadataExecutor := resilience.NewExecutor(policy)

	chat, err := newChatClient(cfg, cfg.LLMModel, chatExecutor, "llm.translate")
	if err != nil {
		return fail(err)
	}

	extractor, err := newExtractor(cfg)
	if err != nil {
		return fail(err)
	}

	store, err := localfs.New(cfg.OutputDir)
	if err != nil {
		return fail(fmt.Errorf("init output storage: %w", err))
	}

	translationMetrics := metrics.NewTranslationMetrics(serviceName)
	sleeper := resilience.Sleeper{}

	deps := usecase.ProcessDependencies{
		Extractor:  extractor,
		Normalizer: cleaning.NewNormalizer(cfg.NormalizeRepeatThreshold, cfg.NormalizeMaxNoiseLen, cfg.NormalizePublisherNoise),
		Chunker:    chunking.NewSplitter(cfg.ChunkSize),
		Assembler:  assembly.NewAssembler(cfg.HeadingMaxLen),
		Renderer:   assembly.NewRenderer(cfg.OutputFormat),
		Store:      store,
		Metrics:    translationMetrics,
	}

	if cfg.MetadataEnabled {
		model := cfg.LLMMetadataModel
		if model == "" {
			model = cfg.LLMModel
		}
		metadataChat, err := newChatClient(cfg, model, metadataExecutor, "llm.metadata")
		if err != nil {
			return fail(err)
		}
		deps.Metadata = llm.NewMetadataExtractor(metadataChat, cfg.LLMMetadataTimeout)
	}

	if cfg.AuditXLSX {
		deps.Workbook = xlsx.NewWriter(store)
	}

	var db *sql.DB
	if cfg.PostgresDSN != "" {
		db, err = postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return fail(fmt.Errorf("open postgres: %w", err))
		}
		closers = append(closers, func() { _ = db.Close() })
		repo := postgres.NewRunRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return fail(fmt.Errorf("ensure schema: %w", err))
		}
		deps.Recorder = repo
	}

	var queue *nats.Queue
	if opts.ConnectQueue {
		queue, err = nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{
			ResultSubject:      cfg.NATSResultSubject,
			ResilienceExecutor: metadataExecutor,
		})
		if err != nil {
			return fail(fmt.Errorf("init message queue: %w", err))
		}
		closers = append(closers, queue.Close)
		deps.Publisher = queue
	}

	translatorOpts := []usecase.TranslatorOption{usecase.WithTranslationMetrics(translationMetrics)}
	if deps.Recorder != nil {
		translatorOpts = append(translatorOpts, usecase.WithRunRecorder(deps.Recorder))
	}
	deps.Translator = usecase.NewTranslator(
		chat,
		terminology.NewExtractor(),
		sleeper,
		prompts,
		usecase.TranslationSettings{
			ContextPairs:  cfg.ContextPairs,
			Temperature:   cfg.LLMTemperature,
			MaxTokens:     cfg.LLMMaxTokens,
			Timeout:       cfg.LLMTranslateTimeout,
			PaceDelay:     cfg.PaceDelay,
			PaceLongDelay: cfg.PaceLongDelay,
			PaceLongEvery: cfg.PaceLongEvery,
			ErrorCooldown: cfg.ErrorCooldown,
		},
		translatorOpts...,
	)

	processUC := usecase.NewProcessDocumentUseCase(deps)
	batchUC := usecase.NewBatchUseCase(processUC, sleeper, cfg.DocumentCooldown)

	slog.Info("bootstrap_ready",
		"provider", cfg.LLMProvider,
		"model", cfg.LLMModel,
		"extractor", cfg.Extractor,
		"output_dir", store.BasePath(),
		"output_format", cfg.OutputFormat,
		"postgres", db != nil,
		"queue", queue != nil,
	)

	return &App{
		Config:    cfg,
		Queue:     queue,
		Metrics:   translationMetrics,
		ProcessUC: processUC,
		BatchUC:   batchUC,
		closeFn:   closeAll,
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func resiliencePolicy(cfg config.Config) resilience.Policy {
	return resilience.Policy{
		RetryMaxAttempts:        cfg.ResilienceRetryMaxAttempts,
		RetryInitialBackoff:     cfg.ResilienceRetryInitialBackoff,
		RetryMaxBackoff:         cfg.ResilienceRetryMaxBackoff,
		RetryMultiplier:         cfg.ResilienceRetryMultiplier,
		BreakerEnabled:          cfg.ResilienceBreakerEnabled,
		BreakerMinRequests:      uint32(max(cfg.ResilienceBreakerMinRequests, 0)),
		BreakerFailureRatio:     cfg.ResilienceBreakerFailureRatio,
		BreakerOpenTimeout:      cfg.ResilienceBreakerOpenTimeout,
		BreakerHalfOpenMaxCalls: uint32(max(cfg.ResilienceBreakerHalfOpenCalls, 0)),
	}
}

func newChatClient(cfg config.Config, model string, executor *resilience.Executor, operation string) (ports.ChatCompleter, error) {
	switch cfg.LLMProvider {
	case "ollama":
		return ollama.New(cfg.LLMBaseURL, model, executor, operation), nil
	case "openai", "deepseek", "":
		if cfg.LLMAPIKey == "" {
			return nil, domain.WrapError(domain.ErrMissingCredential, "bootstrap", fmt.Errorf("LLM_API_KEY is not set"))
		}
		return openai.New(cfg.LLMBaseURL, cfg.LLMAPIKey, model,
			openai.WithExecutor(executor),
			openai.WithOperation(operation),
			openai.WithRequestsPerMinute(cfg.LLMRequestsPerMin),
		), nil
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "bootstrap", fmt.Errorf("unknown LLM_PROVIDER %q", cfg.LLMProvider))
	}
}

func newExtractor(cfg config.Config) (ports.TextExtractor, error) {
	var pdf ports.TextExtractor
	switch cfg.Extractor {
	case "pdfreader", "native":
		pdf = pdfreader.NewExtractor()
	case "pdftotext", "":
		tool := pdftotext.NewExtractor(cfg.PDFToTextBin)
		if err := tool.Available(); err != nil {
			return nil, fmt.Errorf("pdftotext check: %w", err)
		}
		pdf = tool
	default:
		return nil, domain.WrapError(domain.ErrInvalidInput, "bootstrap", fmt.Errorf("unknown EXTRACTOR %q", cfg.Extractor))
	}
	return plaintext.NewExtractor(pdf), nil
}

func loadPrompts(path string) (usecase.Prompts, error) {
	prompts := usecase.DefaultPrompts()
	overrides, err := config.LoadPromptOverrides(path)
	if err != nil {
		return prompts, err
	}
	if overrides.System != nil {
		prompts.System = *overrides.System
	}
	if overrides.DomainHint != nil {
		prompts.DomainHint = *overrides.DomainHint
	}
	if overrides.FailurePrefix != nil {
		prompts.FailurePrefix = *overrides.FailurePrefix
	}
	return prompts, nil
}
