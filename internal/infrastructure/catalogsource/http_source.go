// Package catalogsource implements the upstream product endpoint client.
package catalogsource

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/vitrina/backend/internal/domain/catalog"
)

// DefaultMaxResponseBytes caps how much of a response body is read (10MB)
const DefaultMaxResponseBytes = 10 * 1024 * 1024

// ErrInvalidURL indicates a missing endpoint URL
var ErrInvalidURL = errors.New("catalogsource: endpoint URL is required")

// Config configures the HTTP catalog source
type Config struct {
	URL string
	// Timeout bounds one fetch; zero means only the caller's context applies
	Timeout          time.Duration
	MaxResponseBytes int64
}

// requestBody is the upstream's wire format for a query
type requestBody struct {
	CategoryID   int `json:"idCategoria"`
	ApprovedLine int `json:"lineaAprobada"`
}

// HTTPSource posts catalog queries to the upstream endpoint
type HTTPSource struct {
	config     Config
	httpClient *http.Client
	logger     *zap.Logger
}

// Option configures an HTTPSource
type Option func(*HTTPSource)

// WithHTTPClient replaces the default instrumented client
func WithHTTPClient(client *http.Client) Option {
	return func(s *HTTPSource) {
		s.httpClient = client
	}
}

// WithLogger sets the logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *HTTPSource) {
		s.logger = logger
	}
}

// NewHTTPSource creates a catalog source for cfg
func NewHTTPSource(cfg Config, opts ...Option) (*HTTPSource, error) {
	if cfg.URL == "" {
		return nil, ErrInvalidURL
	}
	if cfg.MaxResponseBytes <= 0 {
		cfg.MaxResponseBytes = DefaultMaxResponseBytes
	}

	s := &HTTPSource{
		config: cfg,
		httpClient: &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Fetch performs one POST for q and returns the raw body. Non-2xx statuses
// and network, read or size faults come back as *catalog.TransportError.
// There is no retry.
func (s *HTTPSource) Fetch(ctx context.Context, q catalog.Query) ([]byte, error) {
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	payload, err := json.Marshal(requestBody{CategoryID: q.CategoryID, ApprovedLine: q.ApprovedLine})
	if err != nil {
		return nil, catalog.WrapTransportError(fmt.Errorf("failed to encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.URL, bytes.NewReader(payload))
	if err != nil {
		return nil, catalog.WrapTransportError(fmt.Errorf("failed to create request: %w", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, catalog.WrapTransportError(err)
	}
	defer resp.Body.Close()

	s.logger.Debug("Catalog source responded",
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain a little so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, catalog.NewTransportError(resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.config.MaxResponseBytes+1))
	if err != nil {
		return nil, catalog.WrapTransportError(fmt.Errorf("failed to read response: %w", err))
	}
	if int64(len(body)) > s.config.MaxResponseBytes {
		return nil, catalog.WrapTransportError(
			fmt.Errorf("response exceeds %d bytes", s.config.MaxResponseBytes))
	}
	return body, nil
}
