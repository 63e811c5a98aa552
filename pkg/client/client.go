// Package client is a Go client for the merkle proof service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Layr-Labs/merkle-proofs-go/pkg/persistence"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/report"
	"github.com/Layr-Labs/merkle-proofs-go/pkg/types"
)

// ErrNotFound is returned when the service has no tree or leaf for the request.
var ErrNotFound = errors.New("not found")

// RetryConfig configures retry behavior
type RetryConfig struct {
	MaxAttempts     int
	InitialBackoff  time.Duration
	MaxBackoff      time.Duration
	BackoffMultiple float64
}

// DefaultRetryConfig provides default retry settings
var DefaultRetryConfig = RetryConfig{
	MaxAttempts:     5,
	InitialBackoff:  100 * time.Millisecond,
	MaxBackoff:      5 * time.Second,
	BackoffMultiple: 2.0,
}

// ClientConfig holds the configuration for the proof service client
type ClientConfig struct {
	BaseURL    string
	HTTPClient *http.Client
	Retry      *RetryConfig
	Logger     *zap.Logger
}

// Client talks to a proof service. Transport errors, 429 and 5xx responses are retried
// with exponential backoff.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	retryConfig RetryConfig
	logger      *zap.Logger
}

// StatusError is a non-2xx response that was not retried or ran out of retries.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("proof service returned %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) Is(target error) bool {
	return target == ErrNotFound && e.StatusCode == http.StatusNotFound
}

// NewClient creates a new proof service client
func NewClient(cfg *ClientConfig) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	c := &Client{
		baseURL:     strings.TrimRight(cfg.BaseURL, "/"),
		httpClient:  cfg.HTTPClient,
		retryConfig: DefaultRetryConfig,
		logger:      cfg.Logger,
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	if cfg.Retry != nil {
		c.retryConfig = *cfg.Retry
	}
	if c.retryConfig.MaxAttempts < 1 {
		c.retryConfig.MaxAttempts = 1
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}

	return c, nil
}

// BuildTree builds and stores a tree on the service and returns its report
func (c *Client) BuildTree(ctx context.Context, req *types.BuildTreeRequest) (*report.Report, error) {
	var rep report.Report
	if err := c.do(ctx, http.MethodPost, "/trees", req, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ListTrees returns the summaries of stored reports
func (c *Client) ListTrees(ctx context.Context) ([]*persistence.ReportSummary, error) {
	var resp types.ListTreesResponse
	if err := c.do(ctx, http.MethodGet, "/trees", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Trees, nil
}

// GetTree fetches the stored report for root
func (c *Client) GetTree(ctx context.Context, root string) (*report.Report, error) {
	var rep report.Report
	if err := c.do(ctx, http.MethodGet, "/trees/"+url.PathEscape(root), nil, &rep); err != nil {
		return nil, err
	}
	return &rep, nil
}

// DeleteTree removes the stored report for root
func (c *Client) DeleteTree(ctx context.Context, root string) error {
	return c.do(ctx, http.MethodDelete, "/trees/"+url.PathEscape(root), nil, nil)
}

// GetProof fetches the leaf entry at index of the report for root
func (c *Client) GetProof(ctx context.Context, root string, index int) (*report.LeafEntry, error) {
	var entry report.LeafEntry
	path := fmt.Sprintf("/trees/%s/proofs/%d", url.PathEscape(root), index)
	if err := c.do(ctx, http.MethodGet, path, nil, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Verify asks the service to verify a triple. A rejected proof is returned as a
// response with Valid false, not as an error.
func (c *Client) Verify(ctx context.Context, req *types.VerifyRequest) (*types.VerifyResponse, error) {
	var resp types.VerifyResponse
	err := c.do(ctx, http.MethodPost, "/verify", req, &resp)
	var statusErr *StatusError
	if errors.As(err, &statusErr) && statusErr.StatusCode == http.StatusBadRequest && resp.Error != "" {
		return &resp, nil
	}
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Health checks the service and its report store
func (c *Client) Health(ctx context.Context) error {
	var resp types.HealthResponse
	return c.do(ctx, http.MethodGet, "/health", nil, &resp)
}

// do sends the request with retries and decodes the response body into out.
// On a non-2xx response the body is still decoded into out when it is JSON.
func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var data []byte
	if body != nil {
		var err error
		if data, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var lastErr error
	backoff := c.retryConfig.InitialBackoff
	for attempt := 0; attempt < c.retryConfig.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff = time.Duration(float64(backoff) * c.retryConfig.BackoffMultiple)
			if backoff > c.retryConfig.MaxBackoff {
				backoff = c.retryConfig.MaxBackoff
			}
		}

		retry, err := c.attempt(ctx, method, path, data, out)
		if err == nil {
			return nil
		}
		lastErr = err
		if !retry {
			return err
		}
		c.logger.Sugar().Debugw("Proof service request failed, retrying",
			"method", method,
			"path", path,
			"attempt", attempt+1,
			"error", err,
		)
	}

	return fmt.Errorf("request failed after %d attempts: %w", c.retryConfig.MaxAttempts, lastErr)
}

func (c *Client) attempt(ctx context.Context, method, path string, data []byte, out interface{}) (bool, error) {
	var reqBody io.Reader
	if data != nil {
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return false, fmt.Errorf("failed to create request: %w", err)
	}
	if data != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return ctx.Err() == nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return true, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if out == nil || len(respBody) == 0 {
			return false, nil
		}
		if err := json.Unmarshal(respBody, out); err != nil {
			return false, fmt.Errorf("failed to decode response: %w", err)
		}
		return false, nil
	}

	statusErr := &StatusError{StatusCode: resp.StatusCode, Message: errorMessage(respBody)}
	if out != nil {
		_ = json.Unmarshal(respBody, out)
	}
	retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= http.StatusInternalServerError
	return retry, statusErr
}

func errorMessage(body []byte) string {
	var resp types.ErrorResponse
	if err := json.Unmarshal(body, &resp); err == nil && resp.Error != "" {
		return resp.Error
	}
	return strings.TrimSpace(string(body))
}
