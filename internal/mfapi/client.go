// Package mfapi is the client for the public mutual fund API (api.mfapi.in).
// It exposes the two read operations the application needs: the full scheme
// list and the NAV history of a single scheme.
package mfapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/rabbit-invest/rabbit-invest-backend/internal/apperrors"
	"github.com/rabbit-invest/rabbit-invest-backend/internal/model"
)

// Client is the read-only contract of the fund data gateway.
type Client interface {
	FetchAllFunds(ctx context.Context) ([]model.Fund, error)
	FetchNAV(ctx context.Context, schemeCode string) (model.NAVResponse, error)
}

// HTTPClient fetches fund data over HTTP. It never retries; the timeout is
// the one configured on the underlying http.Client.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	log        zerolog.Logger
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(c *http.Client) Option {
	return func(h *HTTPClient) { h.httpClient = c }
}

// WithRateLimit paces outbound requests to perSecond, with a burst of the same
// size rounded up. A non-positive value disables pacing.
func WithRateLimit(perSecond float64) Option {
	return func(h *HTTPClient) {
		if perSecond <= 0 {
			h.limiter = nil
			return
		}
		burst := int(perSecond)
		if float64(burst) < perSecond {
			burst++
		}
		h.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(log zerolog.Logger) Option {
	return func(h *HTTPClient) { h.log = log.With().Str("client", "mfapi").Logger() }
}

// NewHTTPClient creates a client for the API rooted at baseURL.
func NewHTTPClient(baseURL string, timeout time.Duration, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		log:        zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchAllFunds returns every scheme listed by GET /mf, in upstream order.
func (c *HTTPClient) FetchAllFunds(ctx context.Context) ([]model.Fund, error) {
	endpoint, err := c.endpoint("mf")
	if err != nil {
		return nil, err
	}

	var funds []model.Fund
	if err := c.getJSON(ctx, endpoint, &funds); err != nil {
		return nil, err
	}
	return funds, nil
}

// FetchNAV returns the NAV history of one scheme from GET /mf/{schemeCode}.
func (c *HTTPClient) FetchNAV(ctx context.Context, schemeCode string) (model.NAVResponse, error) {
	endpoint, err := c.endpoint("mf", schemeCode)
	if err != nil {
		return model.NAVResponse{}, err
	}

	var nav model.NAVResponse
	if err := c.getJSON(ctx, endpoint, &nav); err != nil {
		return model.NAVResponse{}, fmt.Errorf("scheme %s: %w", schemeCode, err)
	}
	return nav, nil
}

func (c *HTTPClient) endpoint(segments ...string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("%w: %q", apperrors.ErrInvalidAddress, c.baseURL)
	}
	joined, err := url.JoinPath(base.String(), segments...)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperrors.ErrInvalidAddress, err)
	}
	return joined, nil
}

// getJSON performs a GET and decodes the body into out, mapping failures onto
// the gateway error taxonomy.
func (c *HTTPClient) getJSON(ctx context.Context, endpoint string, out interface{}) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrInvalidAddress, err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.Debug().Err(err).Str("url", endpoint).Dur("duration", time.Since(start)).Msg("request failed")
		return fmt.Errorf("%w: %v", apperrors.ErrTransport, err)
	}
	defer resp.Body.Close()

	c.log.Debug().
		Str("url", endpoint).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("%w: unexpected status %d", apperrors.ErrTransport, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%w: reading body: %v", apperrors.ErrTransport, err)
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", apperrors.ErrDecode, err)
	}
	return nil
}
