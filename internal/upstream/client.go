package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"resumechat/internal/convert"
	"resumechat/internal/core"
	"resumechat/internal/util"

	"github.com/bytedance/sonic"
)

// Client is a thin JSON client for the upstream REST API.
// Every failure it returns is already a *core.ChatError.
type Client struct {
	baseURL    string
	apiKey     string
	betaHeader string
	httpClient *http.Client
	metrics    core.MetricsCollector
	logger     core.Logger
}

// ClientConfig configuration for Client
type ClientConfig struct {
	BaseURL    string
	APIKey     string
	BetaHeader string
	HTTPClient *http.Client
	Metrics    core.MetricsCollector
	Logger     core.Logger
}

// NewClient creates a new upstream client
func NewClient(cfg ClientConfig) *Client {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = http.DefaultClient
	}
	if cfg.Metrics == nil {
		cfg.Metrics = &core.NopMetrics{}
	}
	if cfg.Logger == nil {
		cfg.Logger = &core.NopLogger{}
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		betaHeader: cfg.BetaHeader,
		httpClient: cfg.HTTPClient,
		metrics:    cfg.Metrics,
		logger:     cfg.Logger,
	}
}

// Do sends one request and decodes a 2xx body into out (when non-nil).
// Success bodies are parsed best-effort: an unparseable body leaves out untouched.
func (c *Client) Do(ctx context.Context, op, method, path string, payload, out any) error {
	req, err := util.NewJSONRequest(ctx, method, c.baseURL+path, payload, c.apiKey)
	if err != nil {
		return core.ErrBadGateway(fmt.Errorf("%s: build request: %w", op, err))
	}
	if c.betaHeader != "" {
		req.Header.Set(core.HeaderOpenAIBeta, c.betaHeader)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req) //nolint:gosec // G107: URL built from operator-configured base URL
	if err != nil {
		c.metrics.RecordUpstreamCall(op, 0, time.Since(start))
		c.logger.Error("Upstream %s transport error: %v", op, err)
		return transportError(ctx, op, err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, core.MaxResponseBodySize))
	c.metrics.RecordUpstreamCall(op, resp.StatusCode, time.Since(start))
	if err != nil {
		c.logger.Error("Upstream %s read error: %v", op, err)
		return transportError(ctx, op, err)
	}

	c.logger.Debug("Upstream %s %s -> %d in %s", method, path, resp.StatusCode, time.Since(start))

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		var errBody core.UpstreamErrorBody
		_ = sonic.Unmarshal(body, &errBody)
		message := convert.UpstreamErrorMessage(&errBody)
		c.logger.Error("Upstream %s error: status=%d, body=%s", op, resp.StatusCode, util.PreviewText(string(body), 512))
		return core.ErrUpstream(resp.StatusCode, message)
	}

	if out != nil && len(body) > 0 {
		if err := sonic.Unmarshal(body, out); err != nil {
			c.logger.Warn("Upstream %s returned unparseable body: %v", op, err)
		}
	}
	return nil
}

// transportError maps a failure to reach the upstream; a request deadline becomes a timeout
func transportError(ctx context.Context, op string, err error) error {
	cause := fmt.Errorf("%s: %w", op, err)
	if ctx.Err() == context.DeadlineExceeded {
		return core.ErrUpstreamTimeout(cause)
	}
	return core.ErrBadGateway(cause)
}
