// Package gateway talks to the external assignment service that accepts or
// rejects planned accompaniment visits.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

const apiKeyHeader = "X-API-Key"

// Assignment is one planned visit submitted for confirmation.
type Assignment struct {
	TeacherID string `json:"teacherId"`
	Day       int    `json:"dayOfWeek"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
	Course    string `json:"course,omitempty"`
	Site      string `json:"site,omitempty"`
}

// ConfirmRequest is the batch payload posted to the assignment service.
type ConfirmRequest struct {
	SpecialistID string       `json:"specialistId"`
	WeekID       string       `json:"weekId"`
	Assignments  []Assignment `json:"assignments"`
}

// ConfirmResponse lists the teacher ids the service accepted and rejected.
type ConfirmResponse struct {
	Successful []string `json:"successful"`
	Failed     []string `json:"failed"`
}

// Config configures the confirmation client.
type Config struct {
	BaseURL       string
	APIKey        string
	RatePerSecond float64
	Burst         int
	Timeout       time.Duration
}

// MetricsRecorder receives outbound call timings.
type MetricsRecorder interface {
	ObserveHTTPRequest(method, path string, status int, duration time.Duration)
}

// ConfirmationClient posts assignment batches to the external service.
type ConfirmationClient struct {
	cfg     Config
	client  *http.Client
	limiter *rate.Limiter
	metrics MetricsRecorder
	logger  *zap.Logger
}

// NewConfirmationClient builds a client. A nil http.Client falls back to one
// bounded by cfg.Timeout.
func NewConfirmationClient(cfg Config, client *http.Client, metrics MetricsRecorder, logger *zap.Logger) *ConfirmationClient {
	if logger == nil {
		logger = zap.NewNop()
	}
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	limit := rate.Inf
	if cfg.RatePerSecond > 0 {
		limit = rate.Limit(cfg.RatePerSecond)
	}
	burst := cfg.Burst
	if burst <= 0 {
		burst = 1
	}
	return &ConfirmationClient{
		cfg:     cfg,
		client:  client,
		limiter: rate.NewLimiter(limit, burst),
		metrics: metrics,
		logger:  logger,
	}
}

// Confirm submits the batch and returns the per-teacher verdicts. Transport
// failures, non-2xx replies and undecodable bodies map to
// ErrConfirmationUnavailable so callers can release the week untouched.
func (c *ConfirmationClient) Confirm(ctx context.Context, req ConfirmRequest) (*ConfirmResponse, error) {
	if c.cfg.BaseURL == "" {
		return nil, appErrors.Clone(appErrors.ErrConfirmationUnavailable, "confirmation service not configured")
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfirmationUnavailable.Code, appErrors.ErrConfirmationUnavailable.Status, "confirmation rate limit wait aborted")
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to encode confirmation batch")
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/assignments/confirm", bytes.NewReader(body))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build confirmation request")
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		httpReq.Header.Set(apiKeyHeader, c.cfg.APIKey)
	}

	start := time.Now()
	resp, err := c.client.Do(httpReq)
	duration := time.Since(start)
	status := http.StatusServiceUnavailable
	if resp != nil {
		status = resp.StatusCode
	}
	if c.metrics != nil {
		c.metrics.ObserveHTTPRequest(http.MethodPost, "gateway_assignments_confirm", status, duration)
	}
	if err != nil {
		c.logger.Warn("confirmation request failed", zap.String("week", req.WeekID), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrConfirmationUnavailable.Code, appErrors.ErrConfirmationUnavailable.Status, "confirmation service unreachable")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Warn("confirmation rejected batch", zap.String("week", req.WeekID), zap.Int("status", resp.StatusCode))
		return nil, appErrors.Clone(appErrors.ErrConfirmationUnavailable, fmt.Sprintf("confirmation service responded %d", resp.StatusCode))
	}

	var out ConfirmResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrConfirmationUnavailable.Code, appErrors.ErrConfirmationUnavailable.Status, "invalid confirmation response")
	}
	c.logger.Debug("confirmation batch answered",
		zap.String("week", req.WeekID),
		zap.Int("successful", len(out.Successful)),
		zap.Int("failed", len(out.Failed)),
		zap.Duration("duration", duration),
	)
	return &out, nil
}
