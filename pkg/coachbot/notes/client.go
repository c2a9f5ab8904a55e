// Package notes implements the client for the Craft-style note store.
// A check-in entry becomes a single text block appended to the end of
// today's daily note. One POST per entry; the caller decides what to tell
// the user when it fails.
package notes

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// publishTimeout bounds the single HTTP attempt.
const publishTimeout = 10 * time.Second

// Client appends blocks to the note store's daily note.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// PublishError describes a failed publish attempt with a human-readable
// cause. Every failure mode (transport, timeout, non-2xx) is reported this
// way; Publish never panics past its boundary.
type PublishError struct {
	// StatusCode is the HTTP status, or 0 for transport/timeout failures.
	StatusCode int

	// Cause is a short human-readable description.
	Cause string

	// Err is the underlying error, if any.
	Err error
}

func (e *PublishError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("notes: %s: %v", e.Cause, e.Err)
	}
	return fmt.Sprintf("notes: %s", e.Cause)
}

func (e *PublishError) Unwrap() error { return e.Err }

// blockRequest is the note store's block-append payload.
type blockRequest struct {
	Blocks   []block  `json:"blocks"`
	Position position `json:"position"`
}

type block struct {
	Type     string `json:"type"`
	Markdown string `json:"markdown"`
}

type position struct {
	Position string `json:"position"`
	Date     string `json:"date"`
}

// New creates a note store client for the given base URL.
func New(baseURL string, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: publishTimeout},
		logger:     logger.With("component", "notes"),
	}
}

// Publish appends the given markdown to the end of today's daily note.
// Success is HTTP 200 or 201. Anything else returns a *PublishError; there
// is no retry.
func (c *Client) Publish(ctx context.Context, markdown string) error {
	payload := blockRequest{
		Blocks: []block{{Type: "text", Markdown: markdown}},
		Position: position{
			Position: "end",
			Date:     "today",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return &PublishError{Cause: "encoding request", Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/blocks", bytes.NewReader(body))
	if err != nil {
		return &PublishError{Cause: "building request", Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &PublishError{Cause: "note store unreachable", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
		c.logger.Info("entry published to daily note")
		return nil
	}

	// Read a bounded amount of the error body for the log line.
	detail, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	c.logger.Error("note store rejected entry",
		"status", resp.StatusCode,
		"body", string(detail),
	)
	return &PublishError{
		StatusCode: resp.StatusCode,
		Cause:      fmt.Sprintf("note store returned status %d", resp.StatusCode),
	}
}
