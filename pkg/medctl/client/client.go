package client

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const (
	DefaultBasePath = "/api/medicines"
	DefaultTimeout  = 30 * time.Second

	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 10 << 20

	tracerName = "github.com/meditracker/medctl/pkg/medctl/client"
)

type Client struct {
	baseURL    *url.URL
	basePath   string
	http       *http.Client
	timeout    time.Duration
	userAgent  string
	log        *zap.SugaredLogger
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
}

type Option func(*Client) error

func New(opts ...Option) (*Client, error) {
	c := &Client{
		http:      &http.Client{},
		basePath:  DefaultBasePath,
		timeout:   DefaultTimeout,
		userAgent: "medctl",
		log:       zap.NewNop().Sugar(),
		tracer:    noop.NewTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	if c.baseURL == nil {
		return nil, errors.New("server is required")
	}
	c.http.Timeout = c.timeout
	return c, nil
}

func WithServer(server string) Option {
	return func(c *Client) error {
		if server == "" {
			return errors.New("server is required")
		}
		parsed, err := url.Parse(server)
		if err != nil {
			return fmt.Errorf("invalid server: %w", err)
		}
		if parsed.Scheme != "http" && parsed.Scheme != "https" {
			return fmt.Errorf("invalid server %q: scheme must be http or https", server)
		}
		c.baseURL = parsed
		return nil
	}
}

// WithBasePath sets the collection path all medicine endpoints are relative to.
func WithBasePath(basePath string) Option {
	return func(c *Client) error {
		if basePath == "" {
			return nil
		}
		if !strings.HasPrefix(basePath, "/") {
			basePath = "/" + basePath
		}
		c.basePath = basePath
		return nil
	}
}

func WithUserAgent(userAgent string) Option {
	return func(c *Client) error {
		c.userAgent = userAgent
		return nil
	}
}

func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout <= 0 {
			return fmt.Errorf("invalid timeout: %s", timeout)
		}
		c.timeout = timeout
		return nil
	}
}

func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Client) error {
		if log != nil {
			c.log = log
		}
		return nil
	}
}

// WithTracerProvider records a client span per request. Without a propagator
// the trace context stays local.
func WithTracerProvider(tp trace.TracerProvider, propagator propagation.TextMapPropagator) Option {
	return func(c *Client) error {
		if tp == nil {
			return errors.New("tracer provider is nil")
		}
		c.tracer = tp.Tracer(tracerName)
		c.propagator = propagator
		return nil
	}
}

// WithHTTPClient replaces the underlying client. The configured timeout still
// applies to a shallow copy of hc; the caller's client is not modified and the
// transport is shared.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		if hc == nil {
			return errors.New("http client is nil")
		}
		copied := *hc
		c.http = &copied
		return nil
	}
}

func WithTLSConfig(caFile string, insecureSkipTLSVerify bool) Option {
	return func(c *Client) error {
		if caFile == "" && !insecureSkipTLSVerify {
			return nil
		}
		tlsConfig, err := loadTLSConfig(caFile, insecureSkipTLSVerify)
		if err != nil {
			return err
		}
		c.http = &http.Client{Transport: &http.Transport{TLSClientConfig: tlsConfig}}
		return nil
	}
}

func loadTLSConfig(caFile string, insecure bool) (*tls.Config, error) {
	tlsConfig := &tls.Config{MinVersion: tls.VersionTLS12, InsecureSkipVerify: insecure} //nolint:gosec // opt-in via config
	if caFile == "" {
		return tlsConfig, nil
	}
	data, err := os.ReadFile(caFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read CA file: %w", err)
	}
	pool := x509.NewCertPool()
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, errors.New("failed to parse CA file")
	}
	tlsConfig.RootCAs = pool
	return tlsConfig, nil
}

// CollectionURL returns the absolute URL of the collection endpoint.
func (c *Client) CollectionURL() string {
	return c.resolve("", nil).String()
}

func (c *Client) resolve(endpoint string, query url.Values) *url.URL {
	full := *c.baseURL
	full.Path = path.Join("/", full.Path, c.basePath, endpoint)
	full.RawPath = ""
	full.RawQuery = ""
	if len(query) > 0 {
		full.RawQuery = query.Encode()
	}
	return &full
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Reason     string
	URL        string
	Header     http.Header
	Body       []byte
	RequestID  string
}

// IsJSON reports whether the response declares a JSON content type.
func (r *Response) IsJSON() bool {
	ct := r.Header.Get("Content-Type")
	if ct == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return strings.HasPrefix(strings.ToLower(ct), "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// Decode unmarshals the body into out. Error statuses yield an *HTTPError.
func (r *Response) Decode(out any) error {
	if r.StatusCode >= 400 {
		return newHTTPError(r)
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) do(ctx context.Context, method, endpoint string, query url.Values, body []byte) (*Response, error) {
	target := c.resolve(endpoint, query)
	requestID := uuid.NewString()

	ctx, span := c.tracer.Start(ctx, method,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.full", target.String()),
			attribute.String("medctl.request_id", requestID),
		),
	)
	defer span.End()

	var payload io.Reader
	if body != nil {
		payload = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target.String(), payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set(RequestIDHeader, requestID)
	if c.propagator != nil {
		c.propagator.Inject(ctx, propagation.HeaderCarrier(req.Header))
	}

	log := c.log.With("method", method, "url", target.String(), "requestID", requestID)
	log.Debugw("Sending request", "bodyBytes", len(body))
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		log.Debugw("Request failed", "error", err, "duration", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	log.Debugw("Received response", "status", resp.StatusCode, "bodyBytes", len(raw), "duration", time.Since(start))

	span.SetAttributes(
		attribute.Int("http.response.status_code", resp.StatusCode),
		attribute.Int("http.response.body.size", len(raw)),
	)
	if resp.StatusCode >= http.StatusBadRequest {
		span.SetStatus(codes.Error, resp.Status)
	}

	finalURL := target.String()
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}
	return &Response{
		StatusCode: resp.StatusCode,
		Reason:     reasonPhrase(resp),
		URL:        finalURL,
		Header:     resp.Header,
		Body:       raw,
		RequestID:  requestID,
	}, nil
}

func reasonPhrase(resp *http.Response) string {
	reason := strings.TrimSpace(strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)))
	if reason == "" {
		reason = http.StatusText(resp.StatusCode)
	}
	return reason
}

func newHTTPError(r *Response) error {
	var apiErr struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if len(r.Body) > 0 {
		_ = json.Unmarshal(r.Body, &apiErr)
	}
	msg := strings.TrimSpace(apiErr.Message)
	if msg == "" {
		msg = strings.TrimSpace(apiErr.Error)
	}
	if msg == "" && !r.IsJSON() {
		msg = strings.TrimSpace(string(r.Body))
	}
	if msg == "" {
		msg = r.Reason
	}
	return &HTTPError{StatusCode: r.StatusCode, Message: msg}
}

type HTTPError struct {
	StatusCode int
	Message    string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("request failed (%d): %s", e.StatusCode, e.Message)
}
