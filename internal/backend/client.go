// Package backend is the HTTP client for the extraction and execution
// services. The services are black boxes; this package owns only the wire
// shapes and the translation of transport failures into the error taxonomy.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

const (
	pathAnalyze = "/autopilot/run"
	pathConfirm = "/autopilot/confirm"
	pathAdjust  = "/autopilot/adjust-time"
)

// Service defines the three contracts consumed from the backend.
type Service interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error)
	Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error)
	AdjustTime(ctx context.Context, req AdjustRequest) (*AdjustResponse, error)
}

type client struct {
	http   *http.Client
	base   string
	logger *slog.Logger
}

// New creates a backend Service from the given configuration.
func New(cfg *Config, logger *slog.Logger) Service {
	return &client{
		http:   &http.Client{Timeout: cfg.TimeoutDuration()},
		base:   strings.TrimRight(cfg.BaseURL, "/"),
		logger: logger.With("system", "backend"),
	}
}

func (c *client) Analyze(ctx context.Context, req AnalyzeRequest) (*AnalyzeResponse, error) {
	var resp AnalyzeResponse
	if err := c.post(ctx, pathAnalyze, req, &resp); err != nil {
		return nil, err
	}
	if resp.RunID == "" {
		return nil, fmt.Errorf("%w: analyze response missing run_id", ErrUnavailable)
	}
	return &resp, nil
}

func (c *client) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	var resp ConfirmResponse
	if err := c.post(ctx, pathConfirm, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) AdjustTime(ctx context.Context, req AdjustRequest) (*AdjustResponse, error) {
	var resp AdjustResponse
	if err := c.post(ctx, pathAdjust, req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+path, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		mapped := mapTransportError(err)
		c.logger.Warn("backend call failed",
			"path", path,
			"duration", time.Since(start),
			"error", err,
		)
		return mapped
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.mapStatus(path, resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	c.logger.Debug("backend call complete", "path", path, "duration", time.Since(start))
	return nil
}

func (c *client) mapStatus(path string, resp *http.Response) error {
	detail := readDetail(resp.Body)

	switch {
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return fmt.Errorf("%w: %s", ErrValidation, detail)
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrRunNotFound, detail)
	case resp.StatusCode >= http.StatusInternalServerError:
		c.logger.Warn("backend error response", "path", path, "status", resp.StatusCode, "detail", detail)
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return fmt.Errorf("%w: unexpected status %d", ErrUnavailable, resp.StatusCode)
	}
}

func mapTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrTimeout
	}

	var timeout interface{ Timeout() bool }
	if errors.As(err, &timeout) && timeout.Timeout() {
		return ErrTimeout
	}

	return fmt.Errorf("%w: %v", ErrUnavailable, err)
}

// readDetail extracts the "detail" field the service attaches to error
// responses, falling back to the raw body.
func readDetail(r io.Reader) string {
	data, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil || len(data) == 0 {
		return "no detail"
	}

	var body struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(data, &body); err == nil && body.Detail != "" {
		return body.Detail
	}

	return string(data)
}
