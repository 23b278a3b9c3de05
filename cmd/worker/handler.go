package main

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/ports"
)

// jobHandler translates one queued document, then waits cooldown before the
// subscription hands it the next job.
func jobHandler(processor ports.DocumentProcessor, sleeper ports.Sleeper, cooldown time.Duration) func(context.Context, domain.ProcessRequest) error {
	return func(ctx context.Context, req domain.ProcessRequest) error {
		report := processor.Process(ctx, req)

		var err error
		if report.Status == domain.StatusSkipped {
			err = errors.New(report.Reason)
		}

		if cooldown > 0 && sleeper != nil {
			slog.Debug("worker_cooldown", "path", req.Path, "cooldown_ms", cooldown.Milliseconds())
			if sleepErr := sleeper.Sleep(ctx, cooldown); sleepErr != nil {
				slog.Info("worker_cooldown_interrupted", "path", req.Path, "error", sleepErr)
			}
		}
		return err
	}
}
