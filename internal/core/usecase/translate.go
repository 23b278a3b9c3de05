package usecase

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/ports"
)

type TranslationSettings struct {
	// ContextPairs is how many user/assistant pairs stay in the window
	// after each successful chunk.
	ContextPairs  int
	Temperature   float64
	MaxTokens     int
	Timeout       time.Duration
	PaceDelay     time.Duration
	PaceLongDelay time.Duration
	PaceLongEvery int
	ErrorCooldown time.Duration
}

func DefaultTranslationSettings() TranslationSettings {
	return TranslationSettings{
		ContextPairs:  3,
		Temperature:   0.2,
		MaxTokens:     4000,
		Timeout:       600 * time.Second,
		PaceDelay:     time.Second,
		PaceLongDelay: 5 * time.Second,
		PaceLongEvery: 10,
		ErrorCooldown: 10 * time.Second,
	}
}

func (s TranslationSettings) normalize() TranslationSettings {
	d := DefaultTranslationSettings()
	if s.ContextPairs <= 0 {
		s.ContextPairs = d.ContextPairs
	}
	if s.MaxTokens <= 0 {
		s.MaxTokens = d.MaxTokens
	}
	if s.Timeout <= 0 {
		s.Timeout = d.Timeout
	}
	if s.PaceLongEvery <= 0 {
		s.PaceLongEvery = d.PaceLongEvery
	}
	if s.PaceDelay < 0 {
		s.PaceDelay = 0
	}
	if s.PaceLongDelay < 0 {
		s.PaceLongDelay = 0
	}
	if s.ErrorCooldown < 0 {
		s.ErrorCooldown = 0
	}
	return s
}

// Translator sends the chunks of a document through one windowed
// conversation, strictly in order.
type Translator struct {
	chat     ports.ChatCompleter
	terms    ports.TermExtractor
	sleeper  ports.Sleeper
	recorder ports.RunRecorder
	metrics  ports.TranslationMetrics
	prompts  Prompts
	settings TranslationSettings
	now      func() time.Time
}

type TranslatorOption func(*Translator)

func WithRunRecorder(recorder ports.RunRecorder) TranslatorOption {
	return func(t *Translator) { t.recorder = recorder }
}

func WithTranslationMetrics(metrics ports.TranslationMetrics) TranslatorOption {
	return func(t *Translator) { t.metrics = metrics }
}

func WithClock(now func() time.Time) TranslatorOption {
	return func(t *Translator) { t.now = now }
}

func NewTranslator(
	chat ports.ChatCompleter,
	terms ports.TermExtractor,
	sleeper ports.Sleeper,
	prompts Prompts,
	settings TranslationSettings,
	opts ...TranslatorOption,
) *Translator {
	t := &Translator{
		chat:     chat,
		terms:    terms,
		sleeper:  sleeper,
		prompts:  prompts.withDefaults(),
		settings: settings.normalize(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Translate runs every chunk through the chat service. Failed chunks carry a
// marker and never stop the document. The only error is context
// cancellation, returned with the partial result; untouched chunks stay
// pending.
func (t *Translator) Translate(ctx context.Context, documentID, title string, chunks []domain.Chunk) (domain.TranslationResult, error) {
	s := t.newSession(documentID, title, chunks)
	for i := range s.chunks {
		if err := ctx.Err(); err != nil {
			return s.result(), err
		}
		if err := s.translateChunk(ctx, i); err != nil {
			return s.result(), err
		}
	}
	return s.result(), nil
}

// session is the mutable state of one document: its window, glossary and
// log. It is discarded when the document finishes.
type session struct {
	t          *Translator
	documentID string
	title      string
	chunks     []domain.Chunk
	conv       *domain.Conversation
	glossary   *domain.Glossary
	log        []domain.TranslationLogEntry
}

func (t *Translator) newSession(documentID, title string, chunks []domain.Chunk) *session {
	owned := make([]domain.Chunk, len(chunks))
	copy(owned, chunks)
	return &session{
		t:          t,
		documentID: documentID,
		title:      title,
		chunks:     owned,
		conv:       domain.NewConversation(t.prompts.System),
		glossary:   domain.NewGlossary(),
	}
}

func (s *session) result() domain.TranslationResult {
	return domain.TranslationResult{Chunks: s.chunks, Glossary: s.glossary, Log: s.log}
}

var errEmptyReply = errors.New("empty translation returned")

func (s *session) translateChunk(ctx context.Context, i int) error {
	t := s.t
	chunk := &s.chunks[i]

	s.conv.Append(domain.RoleUser, t.prompts.UserTurn(s.title, i, len(s.chunks), chunk.Source))
	started := time.Now()
	reply, err := t.chat.Complete(ctx, domain.ChatRequest{
		Turns:       s.conv.Turns(),
		Timeout:     t.settings.Timeout,
		Temperature: t.settings.Temperature,
		MaxTokens:   t.settings.MaxTokens,
	})
	elapsed := time.Since(started)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = errEmptyReply
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			s.conv.DropLast(domain.RoleUser)
			return ctxErr
		}
		s.recoverFromFailure(ctx, i, err, elapsed)
		return s.cooldown(ctx)
	}

	s.conv.Append(domain.RoleAssistant, reply)
	s.conv.KeepRecent(2 * t.settings.ContextPairs)

	chunk.Translation = reply
	chunk.Status = domain.ChunkTranslated
	s.appendLog(ctx, domain.TranslationLogEntry{
		ChunkIndex:   i,
		SourceLength: utf8.RuneCountInString(chunk.Source),
		OutputLength: utf8.RuneCountInString(reply),
		Timestamp:    t.now(),
		Outcome:      domain.OutcomeTranslated,
	}, elapsed)

	if t.terms != nil {
		for _, entry := range t.terms.Harvest(s.glossary, reply, i) {
			slog.Debug("term_harvested", "document_id", s.documentID, "term", entry.Term, "gloss", entry.Gloss)
		}
	}
	slog.Info("chunk_translated",
		"document_id", s.documentID,
		"chunk", i+1,
		"total", len(s.chunks),
		"duration_ms", elapsed.Milliseconds(),
	)
	return s.pace(ctx, i)
}

// pace waits after every call; every PaceLongEvery-th chunk waits longer.
func (s *session) pace(ctx context.Context, i int) error {
	d := s.t.settings.PaceDelay
	if (i+1)%s.t.settings.PaceLongEvery == 0 {
		d = s.t.settings.PaceLongDelay
	}
	return s.sleep(ctx, d)
}

func (s *session) sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 || s.t.sleeper == nil {
		return nil
	}
	return s.t.sleeper.Sleep(ctx, d)
}

func (s *session) appendLog(ctx context.Context, entry domain.TranslationLogEntry, elapsed time.Duration) {
	s.log = append(s.log, entry)
	if s.t.metrics != nil {
		s.t.metrics.ObserveChunk(entry.Outcome, elapsed)
	}
	if s.t.recorder != nil {
		if err := s.t.recorder.RecordChunk(ctx, s.documentID, entry); err != nil {
			slog.Warn("run_record_failed", "document_id", s.documentID, "chunk", entry.ChunkIndex+1, "error", err)
		}
	}
}
