// Package eodhd provides a client for the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/Avishkar2004/8byte/internal/common"
	"github.com/Avishkar2004/8byte/internal/errs"
	"github.com/Avishkar2004/8byte/internal/interfaces"
	"github.com/Avishkar2004/8byte/internal/models"
)

// flexFloat64 handles JSON values that may be either a number or a string.
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" || s == "NA" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

const (
	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultTimeout   = 30 * time.Second
	DefaultRateLimit = 10 // requests per second
)

// Client implements the Source interface against the EODHD API.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
	now        func() time.Time
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the client-side requests-per-second limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 API response
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request and classifies failures into
// the fetch error taxonomy.
func (c *Client) get(ctx context.Context, fact, symbol, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return errs.New(errs.KindTimeout, fact, symbol, fmt.Errorf("rate limit wait: %w", err))
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return errs.New(errs.KindTransient, fact, symbol, fmt.Errorf("failed to create request: %w", err))
	}

	c.logger.Debug().Str("url", c.baseURL+path).Str("symbol", symbol).Msg("EODHD API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errs.New(classifyTransportError(err), fact, symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		apiErr := &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
		return errs.New(classifyStatus(resp.StatusCode), fact, symbol, apiErr)
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return errs.New(errs.KindParseFailure, fact, symbol, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

// classifyStatus maps an HTTP status to a fetch error kind.
func classifyStatus(status int) errs.Kind {
	switch {
	case status == http.StatusTooManyRequests:
		return errs.KindUpstreamRejected
	case status == http.StatusNotFound:
		return errs.KindNotFound
	case status >= 500:
		return errs.KindTransient
	default:
		// Remaining 4xx (bad request, auth) won't heal on retry
		return errs.KindParseFailure
	}
}

// classifyTransportError maps a transport-level failure to a fetch error kind.
func classifyTransportError(err error) errs.Kind {
	if errors.Is(err, context.DeadlineExceeded) {
		return errs.KindTimeout
	}
	var ue *url.Error
	if errors.As(err, &ue) && ue.Timeout() {
		return errs.KindTimeout
	}
	return errs.KindTransient
}

// realTimeResponse represents the /real-time API response
type realTimeResponse struct {
	Code          string      `json:"code"`
	Timestamp     int64       `json:"timestamp"`
	Open          flexFloat64 `json:"open"`
	High          flexFloat64 `json:"high"`
	Low           flexFloat64 `json:"low"`
	Close         flexFloat64 `json:"close"`
	PreviousClose flexFloat64 `json:"previousClose"`
	Change        flexFloat64 `json:"change"`
	ChangePct     flexFloat64 `json:"change_p"`
	Volume        int64       `json:"volume"`
}

// FetchQuote retrieves the current price snapshot for a symbol.
func (c *Client) FetchQuote(ctx context.Context, symbol string) (*models.QuoteFact, error) {
	path := fmt.Sprintf("/real-time/%s", symbol)

	var resp realTimeResponse
	if err := c.get(ctx, string(models.FactQuote), symbol, path, nil, &resp); err != nil {
		return nil, err
	}

	if resp.Close == 0 {
		return nil, errs.New(errs.KindParseFailure, string(models.FactQuote), symbol,
			fmt.Errorf("real-time response carries no price"))
	}

	return &models.QuoteFact{
		CurrentPrice:  float64(resp.Close),
		PreviousClose: float64(resp.PreviousClose),
		Change:        float64(resp.Change),
		ChangePct:     float64(resp.ChangePct),
		Volume:        resp.Volume,
		ObservedAt:    c.now(),
	}, nil
}

// highlightsResponse represents the filtered /fundamentals Highlights section
type highlightsResponse struct {
	PERatio           flexFloat64 `json:"PERatio"`
	EarningsShare     flexFloat64 `json:"EarningsShare"`
	RevenueTTM        flexFloat64 `json:"RevenueTTM"`
	MostRecentQuarter string      `json:"MostRecentQuarter"`
}

func (c *Client) getHighlights(ctx context.Context, fact, symbol string) (*highlightsResponse, error) {
	path := fmt.Sprintf("/fundamentals/%s", symbol)

	params := url.Values{}
	params.Set("filter", "Highlights")

	var resp highlightsResponse
	if err := c.get(ctx, fact, symbol, path, params, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// FetchRatio retrieves valuation ratio data for a symbol.
// A zero or missing PERatio maps to a nil ratio (unknown, not an error).
func (c *Client) FetchRatio(ctx context.Context, symbol string) (*models.RatioFact, error) {
	resp, err := c.getHighlights(ctx, string(models.FactRatio), symbol)
	if err != nil {
		return nil, err
	}

	fact := &models.RatioFact{ObservedAt: c.now()}
	if resp.PERatio != 0 {
		pe := float64(resp.PERatio)
		fact.PERatio = &pe
	}
	return fact, nil
}

// FetchEarnings retrieves the latest earnings data for a symbol.
// Individually missing fields stay nil; an all-nil fact is valid.
func (c *Client) FetchEarnings(ctx context.Context, symbol string) (*models.EarningsFact, error) {
	resp, err := c.getHighlights(ctx, string(models.FactEarnings), symbol)
	if err != nil {
		return nil, err
	}

	fact := &models.EarningsFact{ObservedAt: c.now()}

	if resp.MostRecentQuarter != "" && resp.MostRecentQuarter != "0000-00-00" {
		if d, err := time.Parse("2006-01-02", resp.MostRecentQuarter); err == nil {
			fact.Date = &d
		}
	}
	if resp.EarningsShare != 0 {
		eps := float64(resp.EarningsShare)
		fact.EPS = &eps
	}
	if resp.RevenueTTM != 0 {
		rev := float64(resp.RevenueTTM)
		fact.Revenue = &rev
	}

	return fact, nil
}

// Ensure Client implements Source
var _ interfaces.Source = (*Client)(nil)
