// Package statsapi fetches pre-aggregated dashboard statistics from the
// external ZEND stats service.
package statsapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/zendhq/zend-site/internal/models"
)

// PageSizes are the page sizes the dashboard offers.
var PageSizes = []int{5, 10, 20, 50}

// DefaultPageSize is the page size used before the visitor picks one.
const DefaultPageSize = 10

// DefaultTimeout bounds a single stats request.
const DefaultTimeout = 10 * time.Second

// maxBodySize caps how much of a response body is read.
const maxBodySize = 8 << 20

// ValidLimit reports whether limit is one of PageSizes.
func ValidLimit(limit int) bool {
	return slices.Contains(PageSizes, limit)
}

// Config holds the configuration for the stats client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration
	RPS        float64 // outbound requests per second, 0 disables the throttle
	Burst      int
	HTTPClient *http.Client
}

// Client fetches pages of stats over HTTP.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	decoder    *decoder
}

// NewClient creates a new stats client with the provided configuration.
func NewClient(cfg Config) *Client {
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: hc,
		timeout:    timeout,
		decoder:    newDecoder(),
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return c
}

// FetchPage requests one page of stats. The request always goes to the
// network; every intermediate cache is told not to answer it.
//
// Errors are *NetworkError, *HTTPError or *ParseError, or ErrInvalidPage /
// ErrInvalidLimit for arguments that would never be sent.
func (c *Client) FetchPage(ctx context.Context, page, limit int) (*models.Stats, error) {
	if page < 1 {
		return nil, ErrInvalidPage
	}
	if !ValidLimit(limit) {
		return nil, ErrInvalidLimit
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &NetworkError{Err: fmt.Errorf("throttle: %w", err)}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.pageURL(page, limit), nil)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Cache-Control", "no-cache, no-store")
	req.Header.Set("Pragma", "no-cache")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodySize))
		return nil, &HTTPError{StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, &NetworkError{Err: err}
		}
		return nil, &ParseError{Err: fmt.Errorf("read body: %w", err)}
	}

	return c.decoder.decode(body, page, limit)
}

func (c *Client) pageURL(page, limit int) string {
	q := url.Values{}
	q.Set("page", strconv.Itoa(page))
	q.Set("limit", strconv.Itoa(limit))
	return c.baseURL + "/stats?" + q.Encode()
}
