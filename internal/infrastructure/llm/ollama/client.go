package ollama

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/kirillkom/paper-translator/internal/core/domain"
	"github.com/kirillkom/paper-translator/internal/infrastructure/llm"
	"github.com/kirillkom/paper-translator/internal/infrastructure/resilience"
)

const DefaultBaseURL = "http://localhost:11434"

// Client talks to a local Ollama /api/chat endpoint.
type Client struct {
	baseURL    string
	model      string
	operation  string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(baseURL, model string, executor *resilience.Executor, operation string) *Client {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = DefaultBaseURL
	}
	if operation == "" {
		operation = "ollama.chat"
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		model:      model,
		operation:  operation,
		httpClient: &http.Client{},
		executor:   executor,
	}
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

func (c *Client) Complete(ctx context.Context, req domain.ChatRequest) (string, error) {
	if len(req.Turns) == 0 {
		return "", domain.WrapError(domain.ErrInvalidInput, "ollama complete", fmt.Errorf("no turns"))
	}

	messages := make([]message, 0, len(req.Turns))
	for _, t := range req.Turns {
		messages = append(messages, message{Role: string(t.Role), Content: t.Content})
	}
	options := map[string]any{"temperature": req.Temperature}
	if req.MaxTokens > 0 {
		options["num_predict"] = req.MaxTokens
	}
	payload := map[string]any{
		"model":    c.model,
		"messages": messages,
		"stream":   false,
		"options":  options,
	}
	endpoint := llm.Endpoint{Provider: "ollama", URL: c.baseURL + "/api/chat"}

	content, err := resilience.Run(ctx, c.executor, c.operation, func(callCtx context.Context) (string, error) {
		if req.Timeout > 0 {
			var cancel context.CancelFunc
			callCtx, cancel = context.WithTimeout(callCtx, req.Timeout)
			defer cancel()
		}
		var response struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		}
		if err := llm.PostJSON(callCtx, c.httpClient, endpoint, payload, &response, "chat"); err != nil {
			return "", err
		}
		return strings.TrimSpace(response.Message.Content), nil
	}, llm.ClassifyError)
	if err != nil {
		return "", llm.WrapTemporaryIfNeeded("ollama complete", err)
	}
	return content, nil
}
