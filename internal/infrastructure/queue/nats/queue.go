package nats

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/infrastructure/resilience"
)

// Queue carries translation jobs to workers and announces finished
// documents on a result subject.
type Queue struct {
	conn          *nats.Conn
	subject       string
	resultSubject string
	executor      *resilience.Executor
}

type Options struct {
	ResultSubject        string
	ConnectTimeout       time.Duration
	ReconnectWait        time.Duration
	MaxReconnects        int
	RetryOnFailedConnect *bool
	ResilienceExecutor   *resilience.Executor
}

func New(url, subject string, options Options) (*Queue, error) {
	connectTimeout := options.ConnectTimeout
	if connectTimeout <= 0 {
		connectTimeout = 2 * time.Second
	}
	reconnectWait := options.ReconnectWait
	if reconnectWait <= 0 {
		reconnectWait = 2 * time.Second
	}
	maxReconnects := options.MaxReconnects
	if maxReconnects <= 0 {
		maxReconnects = 60
	}
	retryOnFailedConnect := true
	if options.RetryOnFailedConnect != nil {
		retryOnFailedConnect = *options.RetryOnFailedConnect
	}

	conn, err := nats.Connect(
		url,
		nats.Name("paper-translator"),
		nats.Timeout(connectTimeout),
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.RetryOnFailedConnect(retryOnFailedConnect),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			slog.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			slog.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect nats: %w", err)
	}
	return &Queue{
		conn:          conn,
		subject:       subject,
		resultSubject: options.ResultSubject,
		executor:      options.ResilienceExecutor,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

// PublishJob enqueues one source file for a worker.
func (q *Queue) PublishJob(ctx context.Context, req domain.ProcessRequest) error {
	if strings.TrimSpace(req.Path) == "" {
		return domain.WrapError(domain.ErrInvalidInput, "publish job", fmt.Errorf("empty path"))
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal job: %w", err)
	}
	return q.publish(ctx, q.subject, payload)
}

// PublishDocumentTranslated sends the report of a finished document. Without
// a result subject it does nothing.
func (q *Queue) PublishDocumentTranslated(ctx context.Context, report domain.DocumentReport) error {
	if q.resultSubject == "" {
		return nil
	}
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("marshal report: %w", err)
	}
	return q.publish(ctx, q.resultSubject, payload)
}

func (q *Queue) publish(ctx context.Context, subject string, payload []byte) error {
	err := q.executor.Execute(ctx, "nats.publish", func(_ context.Context) error {
		if err := q.conn.Publish(subject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}, classifyNATSError)
	if err != nil {
		return wrapTemporary("nats publish "+subject, err)
	}
	return nil
}

// SubscribeJobs queue-subscribes on the job subject until ctx is done.
// Handlers run one at a time, so a worker translates one document at a time.
func (q *Queue) SubscribeJobs(ctx context.Context, handler func(context.Context, domain.ProcessRequest) error) error {
	sub, err := q.conn.QueueSubscribe(q.subject, "translators", func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		req, err := DecodeJob(msg.Data)
		if err != nil {
			slog.Error("job_decode_failed", "error", err, "payload", string(msg.Data))
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, req); err != nil {
			slog.Error("worker_handler_failed", "path", req.Path, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

// DecodeJob accepts a JSON job or a bare file path.
func DecodeJob(data []byte) (domain.ProcessRequest, error) {
	raw := strings.TrimSpace(string(data))
	if raw == "" {
		return domain.ProcessRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode job", fmt.Errorf("empty message"))
	}
	if !strings.HasPrefix(raw, "{") {
		return domain.ProcessRequest{Path: raw}, nil
	}
	var req domain.ProcessRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return domain.ProcessRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode job", err)
	}
	if strings.TrimSpace(req.Path) == "" {
		return domain.ProcessRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode job", fmt.Errorf("missing path"))
	}
	return req, nil
}
