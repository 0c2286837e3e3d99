// Package nlsql talks to the external natural-language-to-SQL service that
// answers free-text questions about the invoice data.
package nlsql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Config holds client configuration for the NL-to-SQL service.
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Answer is the service's reply to one question.
type Answer struct {
	Query        string           `json:"query"`
	GeneratedSQL string           `json:"generated_sql"`
	Results      []map[string]any `json:"results"`
	RowCount     int              `json:"row_count"`
}

// Client is a thin HTTP client for the service's POST /query endpoint.
type Client struct {
	baseURL string
	hc      *http.Client
	logger  *slog.Logger
}

func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		baseURL: cfg.BaseURL,
		hc:      &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// Ask forwards one free-text question and returns the validated answer.
func (c *Client) Ask(ctx context.Context, question string) (*Answer, error) {
	reqID := uuid.New().String()
	start := time.Now()

	body, err := json.Marshal(map[string]string{"query": question})
	if err != nil {
		return nil, fmt.Errorf("encode json: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/query", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	c.logger.Info("nlsql.request", "req_id", reqID, "content_length", len(body))

	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Error("nlsql.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, err
	}
	defer func(rc io.ReadCloser) {
		if err := rc.Close(); err != nil {
			c.logger.Warn("nlsql.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	raw, _ := io.ReadAll(resp.Body)

	c.logger.Info("nlsql.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode/100 != 2 {
		return nil, fmt.Errorf("nlsql service: non-2xx status: %d", resp.StatusCode)
	}

	if err := ValidateAnswer(raw); err != nil {
		return nil, err
	}

	var answer Answer
	if err := json.Unmarshal(raw, &answer); err != nil {
		return nil, fmt.Errorf("decode answer: %w", err)
	}
	return &answer, nil
}
