package eodhd

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Avishkar2004/8byte/internal/errs"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-key", WithBaseURL(srv.URL), WithRateLimit(1000))
}

func TestFetchQuote(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/real-time/AAPL.US", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("api_token"))
		fmt.Fprint(w, `{
			"code": "AAPL.US",
			"timestamp": 1700000000,
			"close": 165.5,
			"previousClose": 163.0,
			"change": 2.5,
			"change_p": 1.5337,
			"volume": 51234567
		}`)
	})

	quote, err := c.FetchQuote(context.Background(), "AAPL.US")
	require.NoError(t, err)
	assert.Equal(t, 165.5, quote.CurrentPrice)
	assert.Equal(t, 163.0, quote.PreviousClose)
	assert.Equal(t, 2.5, quote.Change)
	assert.Equal(t, 1.5337, quote.ChangePct)
	assert.Equal(t, int64(51234567), quote.Volume)
	assert.False(t, quote.ObservedAt.IsZero())
}

func TestFetchQuoteStringNumbers(t *testing.T) {
	// EODHD sometimes returns numeric fields as strings
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "BHP.AU", "close": "45.20", "previousClose": "44.80", "change": "0.40", "change_p": "0.89", "volume": 100}`)
	})

	quote, err := c.FetchQuote(context.Background(), "BHP.AU")
	require.NoError(t, err)
	assert.Equal(t, 45.20, quote.CurrentPrice)
}

func TestFetchQuoteNoPrice(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"code": "HALTED.US", "close": "NA"}`)
	})

	_, err := c.FetchQuote(context.Background(), "HALTED.US")
	require.Error(t, err)
	assert.Equal(t, errs.KindParseFailure, errs.KindOf(err))
}

func TestFetchQuoteNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "ticker not found", http.StatusNotFound)
	})

	_, err := c.FetchQuote(context.Background(), "NOPE.US")
	require.Error(t, err)
	assert.Equal(t, errs.KindNotFound, errs.KindOf(err))
}

func TestFetchQuoteThrottled(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	})

	_, err := c.FetchQuote(context.Background(), "AAPL.US")
	require.Error(t, err)
	assert.Equal(t, errs.KindUpstreamRejected, errs.KindOf(err))
}

func TestFetchQuoteServerError(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})

	_, err := c.FetchQuote(context.Background(), "AAPL.US")
	require.Error(t, err)
	assert.Equal(t, errs.KindTransient, errs.KindOf(err))

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
}

func TestFetchQuoteAuthFailureNotRetryable(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid api token", http.StatusUnauthorized)
	})

	_, err := c.FetchQuote(context.Background(), "AAPL.US")
	require.Error(t, err)
	assert.False(t, errs.Retryable(err), "auth failures won't heal on retry")
}

func TestFetchQuoteMalformedBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html>maintenance page</html>`)
	})

	_, err := c.FetchQuote(context.Background(), "AAPL.US")
	require.Error(t, err)
	assert.Equal(t, errs.KindParseFailure, errs.KindOf(err))
}

func TestFetchQuoteTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, `{"close": 1}`)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := c.FetchQuote(ctx, "AAPL.US")
	require.Error(t, err)
	assert.Equal(t, errs.KindTimeout, errs.KindOf(err))
}

func TestFetchRatio(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/AAPL.US", r.URL.Path)
		assert.Equal(t, "Highlights", r.URL.Query().Get("filter"))
		fmt.Fprint(w, `{"PERatio": 27.54, "EarningsShare": 6.42, "RevenueTTM": 391035000000, "MostRecentQuarter": "2026-06-30"}`)
	})

	ratio, err := c.FetchRatio(context.Background(), "AAPL.US")
	require.NoError(t, err)
	require.NotNil(t, ratio.PERatio)
	assert.Equal(t, 27.54, *ratio.PERatio)
}

func TestFetchRatioUnknownPE(t *testing.T) {
	// Loss-making company: no P/E. Absence is a valid fact, not an error.
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"PERatio": "N/A", "EarningsShare": -1.2}`)
	})

	ratio, err := c.FetchRatio(context.Background(), "LOSSY.US")
	require.NoError(t, err)
	assert.Nil(t, ratio.PERatio)
	assert.False(t, ratio.ObservedAt.IsZero())
}

func TestFetchEarnings(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"PERatio": 27.54, "EarningsShare": 6.42, "RevenueTTM": 391035000000, "MostRecentQuarter": "2026-06-30"}`)
	})

	earnings, err := c.FetchEarnings(context.Background(), "AAPL.US")
	require.NoError(t, err)
	require.NotNil(t, earnings.Date)
	assert.Equal(t, time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), *earnings.Date)
	require.NotNil(t, earnings.EPS)
	assert.Equal(t, 6.42, *earnings.EPS)
	require.NotNil(t, earnings.Revenue)
	assert.Equal(t, 391035000000.0, *earnings.Revenue)
}

func TestFetchEarningsAllUnknown(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"MostRecentQuarter": "0000-00-00"}`)
	})

	earnings, err := c.FetchEarnings(context.Background(), "NEWLISTING.US")
	require.NoError(t, err)
	assert.Nil(t, earnings.Date)
	assert.Nil(t, earnings.EPS)
	assert.Nil(t, earnings.Revenue)
	assert.False(t, earnings.ObservedAt.IsZero(), "an all-unknown earnings fact is still a fact")
}
