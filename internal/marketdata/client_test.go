package marketdata

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetEOD(t *testing.T) {
	var gotPath string
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date": "2025-08-01", "open": 100.0, "high": 105.0, "low": 99.0, "close": 104.0, "volume": 1000000},
			{"date": "2025-08-04", "open": 104.0, "high": 108.0, "low": 103.0, "close": 107.5, "volume": 900000}
		]`))
	}))
	defer server.Close()

	c := NewClient("test-key", WithBaseURL(server.URL))
	from := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2025, 8, 31, 0, 0, 0, 0, time.UTC)

	eod, err := c.GetEOD(context.Background(), "AAPL.US", WithDateRange(from, to))
	require.NoError(t, err)

	assert.Equal(t, "/eod/AAPL.US", gotPath)
	assert.Equal(t, "test-key", gotQuery["api_token"])
	assert.Equal(t, "json", gotQuery["fmt"])
	assert.Equal(t, "d", gotQuery["period"])
	assert.Equal(t, "2025-08-01", gotQuery["from"])
	assert.Equal(t, "2025-08-31", gotQuery["to"])

	require.Len(t, eod, 2)
	assert.Equal(t, 104.0, eod[0].Close)
	assert.Equal(t, time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC), eod[0].Date)
	assert.Equal(t, int64(900000), eod[1].Volume)
}

func TestGetNews(t *testing.T) {
	var gotQuery map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = map[string]string{}
		for key := range r.URL.Query() {
			gotQuery[key] = r.URL.Query().Get(key)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[
			{"date": "2025-08-15T13:30:00+00:00", "title": "Earnings beat expectations", "content": "...", "link": "https://example.com/a", "symbols": ["AAPL.US"]},
			{"date": "2025-08-14", "title": "Supplier outlook cut", "content": "...", "link": "https://example.com/b", "symbols": ["AAPL.US"]}
		]`))
	}))
	defer server.Close()

	c := NewClient("test-key", WithBaseURL(server.URL))
	news, err := c.GetNews(context.Background(), "AAPL.US", WithLimit(15))
	require.NoError(t, err)

	assert.Equal(t, "AAPL.US", gotQuery["s"])
	assert.Equal(t, "15", gotQuery["limit"])

	require.Len(t, news, 2)
	assert.Equal(t, "Earnings beat expectations", news[0].Title)
	assert.Equal(t, 2025, news[0].Date.Year())
	// Date-only fallback parsing.
	assert.Equal(t, time.Date(2025, 8, 14, 0, 0, 0, 0, time.UTC), news[1].Date)
}

func TestGetFundamentalsReturnsRawPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/fundamentals/AAPL.US", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"General": {"Code": "AAPL", "Name": "Apple Inc"}}`))
	}))
	defer server.Close()

	c := NewClient("test-key", WithBaseURL(server.URL))
	raw, err := c.GetFundamentals(context.Background(), "AAPL.US")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "Apple Inc")
}

func TestRateLimitResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	c := NewClient("test-key", WithBaseURL(server.URL))
	_, err := c.GetEOD(context.Background(), "AAPL.US")
	require.Error(t, err)

	var rateErr *RateLimitError
	require.ErrorAs(t, err, &rateErr)
	assert.Equal(t, time.Minute, rateErr.RetryAfter)
}

func TestAPIErrorCarriesStatusAndEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte("invalid api key"))
	}))
	defer server.Close()

	c := NewClient("bad-key", WithBaseURL(server.URL))
	_, err := c.GetNews(context.Background(), "AAPL.US")
	require.Error(t, err)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusForbidden, apiErr.StatusCode)
	assert.Equal(t, "/news", apiErr.Endpoint)
	assert.Contains(t, apiErr.Message, "invalid api key")
}
