package openai

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/infrastructure/llm"
	"github.com/kirillkom/paper-translator/internal/infrastructure/resilience"
)

const DefaultBaseURL = "https://api.deepseek.com"

// Client talks to an OpenAI-compatible /chat/completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	operation  string
	httpClient *http.Client
	limiter    *rate.Limiter
	executor   *resilience.Executor
}

type Option func(*Client)

// WithRequestsPerMinute caps outgoing calls. Zero disables the cap.
func WithRequestsPerMinute(rpm int) Option {
	return func(c *Client) {
		if rpm > 0 {
			c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
		}
	}
}

func WithExecutor(executor *resilience.Executor) Option {
	return func(c *Client) { c.executor = executor }
}

// WithOperation names the breaker and retry logs of this client.
func WithOperation(name string) Option {
	return func(c *Client) { c.operation = name }
}

func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) { c.httpClient = client }
}

func New(baseURL, apiKey, model string, opts ...Option) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		model:      model,
		operation:  "openai.chat",
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Stream      bool          `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

func (c *Client) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	if len(req.Turns) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "openai complete", fmt.Errorf("no turns"))
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	payload := chatRequest{
		Model:       c.model,
		Messages:    toMessages(req.Turns),
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	endpoint := llm.Endpoint{
		Provider: "openai",
		URL:      c.baseURL + "/chat/completions",
		Headers:  map[string]string{"Authorization": "Bearer " + c.apiKey},
	}

	content, err := resilience.Run(ctx, c.executor, c.operation, func(callCtx context.Context) (string, error) {
		if req.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, req.Timeout)
			defer cancel()
		}
		var response chatResponse
		if err := llm.PostJSON(callCtx, c.httpClient, endpoint, payload, &response, "chat"); err != nil {
			return "", err
		}
		if len(response.Choices) == 0 {
			return "", fmt.Errorf("openai chat: no choices returned")
		}
		return strings.TrimSpace(response.Choices[0].Message.Content), nil
	}, llm.ClassifyError)
	if err != nil {
		return "", llm.WrapTemporaryIfNeeded("openai complete", err)
	}
	return content, nil
}

func toMessages(turns []domain.Turn) []chatMessage {
	out := make([]chatMessage, 0, len(turns))
	for _, t := range turns {
		out = append(out, chatMessage{Role: string(t.Role), Content: t.Content})
	}
	return out
}
