package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/kirillkom/paper-translator/internal/bootstrap"
	"github.com/kirillkom/paper-translator/internal/config"
	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/core/usecase"
	"github.com/kirillkom/paper-translator/internal/observability/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		file    = flag.String("file", "", "translate a single source file")
		title   = flag.String("title", "", "display title for -file (defaults to the derived title)")
		dir     = flag.String("dir", "", "translate every PDF in this directory (defaults to SOURCE_DIR)")
		enqueue = flag.Bool("enqueue", false, "publish jobs to NATS instead of translating locally")
	)
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "load .env: %v\n", err)
	}
	cfg := config.Load()
	slog.SetDefault(logging.NewJSONLogger("paper-translator", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, bootstrap.Options{ConnectQueue: *enqueue})
	if err != nil {
		slog.Error("bootstrap_failed", "error", err)
		return 1
	}
	defer app.Close()

	if *enqueue {
		return enqueueJobs(ctx, app, *file, *title, *dir)
	}

	if *file != "" {
		report := app.ProcessUC.Process(ctx, domain.ProcessRequest{Path: *file, Title: *title})
		printJSON(report)
		if report.Status == domain.StatusSkipped {
			return 1
		}
		return 0
	}

	source := *dir
	if source == "" {
		source = cfg.SourceDir
	}
	batch, err := app.BatchUC.RunDirectory(ctx, source)
	if err != nil && ctx.Err() == nil {
		slog.Error("batch_failed", "dir", source, "error", err)
		return 1
	}
	printJSON(batch)
	if ctx.Err() != nil {
		slog.Warn("batch_interrupted", "dir", source, "documents", len(batch.Documents))
		return 130
	}
	return 0
}

func enqueueJobs(ctx context.Context, app *bootstrap.App, file, title, dir string) int {
	var requests []domain.ProcessRequest
	if file != "" {
		requests = append(requests, domain.ProcessRequest{Path: file, Title: title})
	} else {
		if dir == "" {
			dir = app.Config.SourceDir
		}
		paths, err := usecase.ListSources(dir)
		if err != nil {
			slog.Error("enqueue_failed", "dir", dir, "error", err)
			return 1
		}
		for _, path := range paths {
			requests = append(requests, domain.ProcessRequest{Path: path})
		}
	}

	for _, req := range requests {
		if err := app.Queue.PublishJob(ctx, req); err != nil {
			slog.Error("enqueue_failed", "path", req.Path, "error", err)
			return 1
		}
		slog.Info("job_enqueued", "path", req.Path, "subject", app.Config.NATSSubject)
	}
	return 0
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
