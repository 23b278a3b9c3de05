package usecase

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/kirillkom/paper-translator/internal/core/domain"
)

// recoveryTurns is what survives a failed call besides the system turn:
// the last complete user/assistant pair.
const recoveryTurns = 2

// recoverFromFailure marks chunk i failed and shrinks the window so the next
// request starts from the system turn and the last good exchange. The
// unanswered user turn is dropped first, which keeps the turns alternating.
func (s *session) recoverFromFailure(ctx context.Context, i int, cause error, elapsed time.Duration) {
	chunk := &s.chunks[i]
	reason := cause.Error()

	chunk.Translation = s.t.prompts.FailureMarker(reason)
	chunk.Status = domain.ChunkFailed

	s.conv.DropLast(domain.RoleUser)
	s.conv.KeepRecent(recoveryTurns)

	s.appendLog(ctx, domain.TranslationLogEntry{
		ChunkIndex:   i,
		SourceLength: utf8.RuneCountInString(chunk.Source),
		Timestamp:    s.t.now(),
		Outcome:      domain.OutcomeFailed,
		Error:        reason,
	}, elapsed)

	slog.Warn("chunk_failed",
		"document_id", s.documentID,
		"chunk", i+1,
		"total", len(s.chunks),
		"error", reason,
		"cooldown_ms", s.t.settings.ErrorCooldown.Milliseconds(),
	)
}

// cooldown replaces the normal pacing after a failed call.
func (s *session) cooldown(ctx context.Context) error {
	return s.sleep(ctx, s.t.settings.ErrorCooldown)
}
