package nli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"
)

// ClientConfig configures the HTTP NLI client.
type ClientConfig struct {
	// BaseURL is the sidecar address, e.g. http://localhost:8090.
	BaseURL string
	// Timeout bounds a single classification call.
	Timeout time.Duration
	// MaxBatchSize splits larger batches into sequential requests.
	MaxBatchSize int
	// RequestsPerSecond limits outbound request rate. 0 disables limiting.
	RequestsPerSecond float64
}

// Client is an HTTP adapter for the NLI sidecar (POST /nli). Transport
// failures degrade each affected pair to neutral; the pipeline never sees a
// classification error.
type Client struct {
	cfg     ClientConfig
	http    *http.Client
	limiter *rate.Limiter
	logger  *zap.Logger

	// ready flips to 1 after the first successful health probe. The probe
	// is shared through init so concurrent first callers wait on a single
	// in-flight attempt; a failed probe is not cached and is retried on
	// the next call.
	ready int32
	init  singleflight.Group
}

type classifyRequest struct {
	Pairs []Pair `json:"pairs"`
}

type classifyResponse struct {
	Results []Result `json:"results"`
}

// NewClient creates an NLI client. The logger is required for degradation
// visibility.
func NewClient(cfg ClientConfig, logger *zap.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("nli: base URL is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("nli: logger is required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.MaxBatchSize <= 0 {
		cfg.MaxBatchSize = 16
	}

	var limiter *rate.Limiter
	if cfg.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1)
	}

	return &Client{
		cfg:     cfg,
		http:    &http.Client{Timeout: cfg.Timeout},
		limiter: limiter,
		logger:  logger.Named("nli"),
	}, nil
}

// ClassifyBatch implements Service. Results are same length and order as
// pairs. On any backend failure the affected sub-batch degrades to neutral
// with midpoint confidence.
func (c *Client) ClassifyBatch(ctx context.Context, pairs []Pair) ([]Result, error) {
	if len(pairs) == 0 {
		return nil, nil
	}

	if err := c.ensureReady(ctx); err != nil {
		c.logger.Warn("backend unavailable, degrading batch to neutral",
			zap.Int("pairs", len(pairs)), zap.Error(err))
		return NeutralResults(len(pairs)), nil
	}

	out := make([]Result, 0, len(pairs))
	for start := 0; start < len(pairs); start += c.cfg.MaxBatchSize {
		end := start + c.cfg.MaxBatchSize
		if end > len(pairs) {
			end = len(pairs)
		}
		chunk := pairs[start:end]

		results, err := c.classify(ctx, chunk)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Warn("classification failed, degrading chunk to neutral",
				zap.Int("pairs", len(chunk)), zap.Error(err))
			results = NeutralResults(len(chunk))
		}
		out = append(out, results...)
	}
	return out, nil
}

// ensureReady performs the one-time health probe. Concurrent first callers
// share the same in-flight probe via singleflight; failure is surfaced to
// all waiters and retried on the next call rather than cached.
func (c *Client) ensureReady(ctx context.Context) error {
	if atomic.LoadInt32(&c.ready) == 1 {
		return nil
	}
	_, err, _ := c.init.Do("probe", func() (interface{}, error) {
		if err := c.probe(ctx); err != nil {
			return nil, err
		}
		atomic.StoreInt32(&c.ready, 1)
		return nil, nil
	})
	return err
}

func (c *Client) probe(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("probe: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe: unexpected status %d", resp.StatusCode)
	}
	c.logger.Info("backend ready", zap.String("base_url", c.cfg.BaseURL))
	return nil
}

func (c *Client) classify(ctx context.Context, pairs []Pair) ([]Result, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	body, err := json.Marshal(classifyRequest{Pairs: pairs})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/nli", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post /nli: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var parsed classifyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Results) != len(pairs) {
		return nil, fmt.Errorf("result count mismatch: got %d, want %d", len(parsed.Results), len(pairs))
	}
	return parsed.Results, nil
}

var _ Service = (*Client)(nil)
