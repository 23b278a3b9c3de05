package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

type chatCall struct {
	turns []domain.Turn
}

// chatFake answers with "译文<n>" per call. Calls listed in fail return
// failErr; onCall runs before the answer is produced.
type chatFake struct {
	mu      sync.Mutex
	calls   []chatCall
	fail    map[int]bool
	failErr error
	reply   func(call int, req domain.ChatRequest) string
	onCall  func(call int)
	timeout time.Duration
}

func (f *chatFake) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	f.mu.Lock()
	call := len(f.calls)
	f.calls = append(f.calls, chatCall{turns: req.Turns})
	f.timeout = req.Timeout
	f.mu.Unlock()

	if f.onCall != nil {
		f.onCall(call)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.fail[call] {
		if f.failErr != nil {
			return "", f.failErr
		}
		return "", errors.New("boom")
	}
	if f.reply != nil {
		return f.reply(call, req), nil
	}
	return fmt.Sprintf("译文%d", call), nil
}

type sleeperFake struct {
	slept []time.Duration
}

func (f *sleeperFake) Sleep(ctx context.Context, d time.Duration) error {
	f.slept = append(f.slept, d)
	return ctx.Err()
}

// termsFake records glossary terms of the form "term=gloss" on whole replies.
type termsFake struct{}

func (termsFake) Harvest(glossary *domain.Glossary, translated string, chunk int) []domain.TerminologyEntry {
	var out []domain.TerminologyEntry
	if term, gloss, ok := strings.Cut(translated, " = "); ok {
		if glossary.Add(term, gloss, chunk) {
			out = append(out, domain.TerminologyEntry{Term: term, Gloss: gloss, FirstChunk: chunk})
		}
	}
	return out
}

type recorderFake struct {
	chunks    []domain.TranslationLogEntry
	documents []domain.DocumentReport
	err       error
}

func (f *recorderFake) RecordChunk(_ context.Context, _ string, entry domain.TranslationLogEntry) error {
	f.chunks = append(f.chunks, entry)
	return f.err
}

func (f *recorderFake) RecordDocument(_ context.Context, report domain.DocumentReport) error {
	f.documents = append(f.documents, report)
	return f.err
}

func makeChunks(n int) []domain.Chunk {
	chunks := make([]domain.Chunk, n)
	for i := range chunks {
		chunks[i] = domain.Chunk{Index: i, Source: fmt.Sprintf("Sentence %d. ", i), Status: domain.ChunkPending}
	}
	return chunks
}

func fixedClock() func() time.Time {
	t := time.Date(2026, 10, 19, 9, 0, 0, 0, time.UTC)
	return func() time.Time { return t }
}
