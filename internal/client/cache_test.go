package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/stocksense/internal/models"
)

// cacheTestServer counts requests per endpoint so tests can assert which
// operations hit the network and which were served locally.
type cacheTestServer struct {
	server       *httptest.Server
	analyzeCount atomic.Int64
	resultsCount atomic.Int64
	tickersCount atomic.Int64
	healthCount  atomic.Int64
	deleteCount  atomic.Int64
}

func newCacheTestServer(t *testing.T) *cacheTestServer {
	t.Helper()
	cts := &cacheTestServer{}
	cts.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodPost && strings.HasPrefix(r.URL.Path, "/analyze/"):
			cts.analyzeCount.Add(1)
			json.NewEncoder(w).Encode(models.AnalysisResult{
				Ticker:  strings.TrimPrefix(r.URL.Path, "/analyze/"),
				Summary: "computed",
			})
		case r.Method == http.MethodGet && strings.HasPrefix(r.URL.Path, "/results/"):
			cts.resultsCount.Add(1)
			json.NewEncoder(w).Encode(models.AnalysisResult{
				Ticker:  strings.TrimPrefix(r.URL.Path, "/results/"),
				Summary: "fetched",
			})
		case r.Method == http.MethodDelete:
			cts.deleteCount.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"message": "analysis evicted"})
		case r.URL.Path == "/cached-tickers":
			cts.tickersCount.Add(1)
			json.NewEncoder(w).Encode([]models.CachedTicker{{Ticker: "AAPL", UpdatedAt: time.Now()}})
		case r.URL.Path == "/health":
			cts.healthCount.Add(1)
			json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(cts.server.Close)
	return cts
}

func TestAnalyzeWritesThroughToResultCache(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	result, err := cache.Analyze(ctx, "AAPL", false)
	require.NoError(t, err)
	assert.Equal(t, "computed", result.Summary)

	// The result endpoint is never hit: the analysis wrote through.
	got, err := cache.GetResult(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "computed", got.Summary)
	assert.Equal(t, int64(1), cts.analyzeCount.Load())
	assert.Equal(t, int64(0), cts.resultsCount.Load())
}

func TestGetResultFetchesOnceOnMiss(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		got, err := cache.GetResult(ctx, "MSFT")
		require.NoError(t, err)
		assert.Equal(t, "fetched", got.Summary)
	}
	assert.Equal(t, int64(1), cts.resultsCount.Load())
}

func TestEmptyTickerRejectedBeforeNetwork(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	_, err := cache.GetResult(ctx, "")
	assert.Error(t, err)
	_, err = cache.Analyze(ctx, "", false)
	assert.Error(t, err)
	err = cache.Evict(ctx, "")
	assert.Error(t, err)

	assert.Equal(t, int64(0), cts.analyzeCount.Load())
	assert.Equal(t, int64(0), cts.resultsCount.Load())
	assert.Equal(t, int64(0), cts.deleteCount.Load())
}

func TestTickerListRefetchedOnlyWhenStale(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	// First read fetches, repeat reads are served locally.
	_, err := cache.CachedTickers(ctx)
	require.NoError(t, err)
	_, err = cache.CachedTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), cts.tickersCount.Load())

	// An analysis write marks the list stale; the next read re-fetches.
	_, err = cache.Analyze(ctx, "AAPL", false)
	require.NoError(t, err)
	_, err = cache.CachedTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cts.tickersCount.Load())

	// An eviction does the same.
	require.NoError(t, cache.Evict(ctx, "AAPL"))
	_, err = cache.CachedTickers(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), cts.tickersCount.Load())
}

func TestListRefreshDoesNotTouchResultEntries(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	_, err := cache.Analyze(ctx, "AAPL", false)
	require.NoError(t, err)

	_, err = cache.CachedTickers(ctx)
	require.NoError(t, err)

	// The per-ticker entry survives the list refresh.
	_, err = cache.GetResult(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, int64(0), cts.resultsCount.Load())
}

func TestEvictionRemovesResultEntry(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	_, err := cache.Analyze(ctx, "AAPL", false)
	require.NoError(t, err)
	require.NoError(t, cache.Evict(ctx, "AAPL"))

	// The next read must go back to the network.
	got, err := cache.GetResult(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "fetched", got.Summary)
	assert.Equal(t, int64(1), cts.resultsCount.Load())
}

func TestMixedCaseTickersShareOneCacheEntry(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	// Lowercase analyze, lowercase evict: the entry keyed by the
	// server-normalized ticker must not survive the eviction.
	_, err := cache.Analyze(ctx, "aapl", false)
	require.NoError(t, err)
	require.NoError(t, cache.Evict(ctx, "aapl"))

	got, err := cache.GetResult(ctx, "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "fetched", got.Summary)
	assert.Equal(t, int64(1), cts.resultsCount.Load())

	// Reads under any casing hit the same entry.
	got, err = cache.GetResult(ctx, " aapl ")
	require.NoError(t, err)
	assert.Equal(t, "fetched", got.Summary)
	assert.Equal(t, int64(1), cts.resultsCount.Load())
}

func TestHealthCachedWithinTTL(t *testing.T) {
	cts := newCacheTestServer(t)
	cache := NewSessionCache(New(cts.server.URL))
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		health, err := cache.Health(ctx)
		require.NoError(t, err)
		assert.Equal(t, "healthy", health["status"])
	}
	assert.Equal(t, int64(1), cts.healthCount.Load())

	// Force expiry and confirm the next read probes again.
	cache.healthTTL = time.Nanosecond
	time.Sleep(time.Millisecond)
	_, err := cache.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cts.healthCount.Load())
}
