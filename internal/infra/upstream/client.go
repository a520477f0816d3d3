package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"stylemcp/internal/domain"
	"stylemcp/internal/infra/telemetry"
)

// Operation labels used for logs and metrics.
const (
	OpCompleteTheLook = "complete_the_look"
	OpVisuallySimilar = "visually_similar"
	OpTrackEvent      = "track_event"
	OpUpdateItems     = "update_items"
)

const (
	DefaultAPIVersion = "v1"
	DefaultRetryCount = 3
	DefaultRetryDelay = time.Second
	DefaultTimeout    = 10 * time.Second
)

// Config carries the upstream connection settings. Zero values fall
// back to the package defaults.
type Config struct {
	BaseURL    string
	AppID      string
	APIVersion string
	Region     string
	Locale     string

	// RetryCount is the number of additional attempts after the first
	// failure; every failure class is retried with a fixed RetryDelay
	// between attempts.
	RetryCount int
	RetryDelay time.Duration
	Timeout    time.Duration

	HTTPClient *http.Client
}

// Metrics receives client instrumentation. *telemetry.Metrics
// satisfies it.
type Metrics interface {
	ObserveUpstreamRequest(operation string, duration time.Duration, err error)
	IncUpstreamRetry(operation string)
}

type nopMetrics struct{}

func (nopMetrics) ObserveUpstreamRequest(string, time.Duration, error) {}
func (nopMetrics) IncUpstreamRetry(string)                            {}

// Options configures a Client.
type Options struct {
	Config  Config
	Logger  *zap.Logger
	Metrics Metrics
}

// Client issues HTTP requests to the upstream recommendation API and
// normalizes its responses. It does not validate caller input; the
// integration service does that before calling in.
type Client struct {
	baseURL    string
	appID      string
	apiVersion string
	region     string
	locale     string
	retryCount int
	retryDelay time.Duration
	httpClient *http.Client
	logger     *zap.Logger
	metrics    Metrics
}

func New(opts Options) (*Client, error) {
	cfg := opts.Config
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		return nil, domain.E(domain.CodeInvalidArgument, "upstream.New", "base url is required", nil)
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, domain.E(domain.CodeInvalidArgument, "upstream.New", "invalid base url", err)
	}

	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = DefaultAPIVersion
	}
	retryCount := cfg.RetryCount
	if retryCount == 0 {
		retryCount = DefaultRetryCount
	}
	if retryCount < 0 {
		retryCount = 0
	}
	retryDelay := cfg.RetryDelay
	if retryDelay == 0 {
		retryDelay = DefaultRetryDelay
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	metrics := opts.Metrics
	if metrics == nil {
		metrics = nopMetrics{}
	}

	return &Client{
		baseURL:    baseURL,
		appID:      cfg.AppID,
		apiVersion: apiVersion,
		region:     cfg.Region,
		locale:     cfg.Locale,
		retryCount: retryCount,
		retryDelay: retryDelay,
		httpClient: httpClient,
		logger:     logger.Named("upstream"),
		metrics:    metrics,
	}, nil
}

// CompleteTheLook fetches outfit recommendations for a product.
func (c *Client) CompleteTheLook(ctx context.Context, p CompleteTheLookParams) (*CompleteTheLookResponse, error) {
	q := c.baseQuery(p.SessionID)
	q.Set("product_id", p.ProductID)
	if p.ColorID != "" {
		q.Set("color_id", p.ColorID)
	}
	if p.InStock != nil {
		q.Set("in_stock", strconv.FormatBool(*p.InStock))
	}
	if p.OnSale != nil {
		q.Set("on_sale", strconv.FormatBool(*p.OnSale))
	}
	setPagination(q, p.Limit, p.Offset)

	return doRequest[CompleteTheLookResponse](ctx, c, OpCompleteTheLook, http.MethodGet, c.endpoint(p.APIVersion, "complete-the-look"), q, nil)
}

// VisuallySimilar fetches visually similar products.
func (c *Client) VisuallySimilar(ctx context.Context, p VisuallySimilarParams) (*VisuallySimilarResponse, error) {
	q := c.baseQuery(p.SessionID)
	q.Set("product_id", p.ProductID)
	setPagination(q, p.Limit, p.Offset)

	return doRequest[VisuallySimilarResponse](ctx, c, OpVisuallySimilar, http.MethodGet, c.endpoint(p.APIVersion, "visually-similar"), q, nil)
}

// TrackEvent submits one analytics event.
func (c *Client) TrackEvent(ctx context.Context, p TrackEventParams) (*TrackEventResponse, error) {
	body := map[string]any{
		"event_type": p.EventType,
		"product_id": p.ProductID,
	}
	if p.SessionID != "" {
		body["session_id"] = p.SessionID
	}
	if c.appID != "" {
		body["app_id"] = c.appID
	}
	if len(p.Attributes) > 0 {
		body["attributes"] = p.Attributes
	}

	return doRequest[TrackEventResponse](ctx, c, OpTrackEvent, http.MethodPost, c.endpoint(p.APIVersion, "track-event"), nil, body)
}

// UpdateItems submits an item-detail update batch.
func (c *Client) UpdateItems(ctx context.Context, p UpdateItemsParams) (*UpdateItemsResponse, error) {
	body := map[string]any{
		"items": p.Items,
	}
	if p.SessionID != "" {
		body["session_id"] = p.SessionID
	}
	if c.appID != "" {
		body["app_id"] = c.appID
	}

	return doRequest[UpdateItemsResponse](ctx, c, OpUpdateItems, http.MethodPost, c.endpoint(p.APIVersion, "item-details"), nil, body)
}

func (c *Client) endpoint(versionOverride, operation string) string {
	version := versionOverride
	if version == "" {
		version = c.apiVersion
	}
	return fmt.Sprintf("%s/api/%s/%s", c.baseURL, version, operation)
}

func (c *Client) baseQuery(sessionID string) url.Values {
	q := url.Values{}
	if c.appID != "" {
		q.Set("app_id", c.appID)
	}
	if c.region != "" {
		q.Set("region", c.region)
	}
	if c.locale != "" {
		q.Set("locale", c.locale)
	}
	if sessionID != "" {
		q.Set("session_id", sessionID)
	}
	return q
}

func setPagination(q url.Values, limit, offset int) {
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		q.Set("offset", strconv.Itoa(offset))
	}
}

// doRequest runs one logical upstream request with the fixed-delay
// retry policy: every failure class (transport, non-2xx, undecodable
// body) is retried identically, retryCount additional times, and the
// last error is surfaced once the budget is spent.
//
// Each attempt decodes into a fresh value; a body that fails decoding
// partway can never leak fields into a later attempt's result.
func doRequest[T any](ctx context.Context, c *Client, op, method, endpoint string, query url.Values, body any) (*T, error) {
	ctx, _ = telemetry.EnsureRequestMeta(ctx)
	logger := telemetry.LoggerWithRequest(ctx, c.logger)

	requestURL := endpoint
	if len(query) > 0 {
		requestURL = endpoint + "?" + query.Encode()
	}

	start := time.Now()
	attempts := c.retryCount + 1

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			c.metrics.IncUpstreamRetry(op)
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()
				c.metrics.ObserveUpstreamRequest(op, time.Since(start), lastErr)
				return nil, domain.Wrap(domain.CodeCanceled, "upstream."+op, lastErr)
			case <-time.After(c.retryDelay):
			}
		}

		out := new(T)
		err := c.once(ctx, method, requestURL, body, out)
		if err == nil {
			c.metrics.ObserveUpstreamRequest(op, time.Since(start), nil)
			return out, nil
		}
		lastErr = err
		logger.Warn("upstream request failed",
			zap.String("operation", op),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Error(err),
		)
	}

	c.metrics.ObserveUpstreamRequest(op, time.Since(start), lastErr)
	return nil, domain.Wrap(domain.CodeUnavailable, "upstream."+op, lastErr)
}

func (c *Client) once(ctx context.Context, method, requestURL string, body, out any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return domain.E(domain.CodeInternal, "", "encode request body", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, requestURL, reqBody)
	if err != nil {
		return domain.E(domain.CodeInternal, "", "build request", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if meta, ok := telemetry.RequestMetaFromContext(ctx); ok {
		req.Header.Set("X-Request-Id", meta.RequestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domain.Error{Code: domain.CodeUnavailable, Message: "upstream request failed", Cause: err, Retryable: true}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domain.Error{Code: domain.CodeUnavailable, Message: "read upstream response", Cause: err, Retryable: true}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.Error{
			Code:      domain.CodeUpstream,
			Message:   errorMessage(data, resp.StatusCode),
			Retryable: true,
		}
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domain.Error{Code: domain.CodeInternal, Message: "undecodable upstream response", Cause: err, Retryable: true}
	}
	return nil
}

// errorMessage digs the human-readable message out of an upstream
// error payload, falling back to a generic status line.
func errorMessage(body []byte, status int) string {
	var payload struct {
		Error   json.RawMessage `json:"error"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if len(payload.Error) > 0 {
			var nested struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal(payload.Error, &nested); err == nil && nested.Message != "" {
				return nested.Message
			}
			var flat string
			if err := json.Unmarshal(payload.Error, &flat); err == nil && flat != "" {
				return flat
			}
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	return fmt.Sprintf("upstream returned status %d", status)
}
