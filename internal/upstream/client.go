package upstream

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/trackmyoffer/bff/pkg/observability"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const (
	contentTypeJSON = "application/json"

	// maxResponseSize caps how much of an upstream body is buffered for relaying.
	maxResponseSize = 10 << 20
)

// ErrUnexpectedStatus is matched by every StatusError
var ErrUnexpectedStatus = errors.New("unexpected upstream status")

// StatusError is a non-2xx answer from the feature service
type StatusError struct {
	Op     string
	Status int
	Body   []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: upstream responded with status %d", e.Op, e.Status)
}

// Is reports ErrUnexpectedStatus
func (e *StatusError) Is(target error) bool {
	return target == ErrUnexpectedStatus
}

// Request describes one call to the feature service
type Request struct {
	// Op names the call in metrics and logs.
	Op     string
	Method string
	Path   string
	Query  url.Values
	// Body is sent as application/json when non-nil.
	Body []byte
}

// Response is a buffered upstream answer. Non-2xx statuses are returned, not raised.
type Response struct {
	Status      int
	Body        []byte
	ContentType string
}

// OK reports a 2xx status
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Err returns a StatusError for a non-2xx response and nil otherwise
func (r *Response) Err(op string) error {
	if r.OK() {
		return nil
	}
	return &StatusError{Op: op, Status: r.Status, Body: r.Body}
}

// Client calls the feature service through a shared http.Client whose timeout bounds every call
type Client struct {
	baseURL string
	http    *http.Client
	metrics *observability.Metrics
	logger  *zap.Logger
}

// NewClient creates a new feature service client
func NewClient(baseURL string, httpClient *http.Client, metrics *observability.Metrics, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
		metrics: metrics,
		logger:  logger,
	}
}

// Do issues req and buffers the response. The error is reserved for transport failures,
// including timeouts.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	endpoint := c.baseURL + req.Path
	if len(req.Query) > 0 {
		endpoint += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, endpoint, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s request: %w", req.Op, err)
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	httpReq.Header.Set("Accept", contentTypeJSON)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.recordError(ctx, req.Op)
		c.logger.Warn("upstream call failed",
			zap.String("op", req.Op),
			zap.String("method", req.Method),
			zap.String("path", req.Path),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%s request failed: %w", req.Op, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		c.recordError(ctx, req.Op)
		return nil, fmt.Errorf("failed to read %s response: %w", req.Op, err)
	}

	c.recordCall(ctx, req.Op, resp.StatusCode, time.Since(start))

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = contentTypeJSON
	}

	return &Response{
		Status:      resp.StatusCode,
		Body:        payload,
		ContentType: contentType,
	}, nil
}

func (c *Client) recordCall(ctx context.Context, op string, status int, elapsed time.Duration) {
	if c.metrics == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("status", strconv.Itoa(status)),
	)
	c.metrics.UpstreamRequests.Add(ctx, 1, attrs)
	c.metrics.UpstreamDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attribute.String("op", op)))
}

func (c *Client) recordError(ctx context.Context, op string) {
	if c.metrics == nil {
		return
	}
	c.metrics.UpstreamErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("op", op)))
}
