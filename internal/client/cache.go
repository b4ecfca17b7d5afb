package client

import (
	"context"
	"sync"
	"time"

	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/models"
)

// defaultHealthTTL bounds how long a health probe is trusted before the
// next read goes back to the network.
const defaultHealthTTL = 30 * time.Second

// SessionCache mirrors a subset of server state for a single client session:
// the health probe, the cached-ticker list, and per-ticker analysis results.
//
// Invalidation is one-directional. A write-through or eviction marks the
// ticker list stale, but list refreshes never touch per-ticker entries and
// per-ticker writes never implicitly refresh the list.
type SessionCache struct {
	client *Client

	mu           sync.Mutex
	results      map[string]*models.AnalysisResult
	tickers      []models.CachedTicker
	tickersFresh bool
	health       map[string]string
	healthAt     time.Time
	healthTTL    time.Duration
}

// NewSessionCache creates a session cache over the given API client.
func NewSessionCache(client *Client) *SessionCache {
	return &SessionCache{
		client:    client,
		results:   make(map[string]*models.AnalysisResult),
		healthTTL: defaultHealthTTL,
	}
}

// Analyze runs an analysis and writes the result through into the local
// per-ticker cache, marking the ticker list stale. Tickers are normalized
// before any map access so local keys always match the server's.
func (s *SessionCache) Analyze(ctx context.Context, ticker string, force bool) (*models.AnalysisResult, error) {
	ticker, err := common.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	result, err := s.client.Analyze(ctx, ticker, force)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.results[result.Ticker] = result
	s.tickersFresh = false
	s.mu.Unlock()

	return result, nil
}

// GetResult returns the analysis for the ticker, serving from the local
// cache when a write-through already populated it. An empty ticker is a
// caller error and is rejected before any network interaction.
func (s *SessionCache) GetResult(ctx context.Context, ticker string) (*models.AnalysisResult, error) {
	ticker, err := common.NormalizeTicker(ticker)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if cached, ok := s.results[ticker]; ok {
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	result, err := s.client.GetResult(ctx, ticker)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.results[result.Ticker] = result
	s.mu.Unlock()

	return result, nil
}

// Evict removes the server-side row, drops the local entry, and marks the
// ticker list stale.
func (s *SessionCache) Evict(ctx context.Context, ticker string) error {
	ticker, err := common.NormalizeTicker(ticker)
	if err != nil {
		return err
	}

	if err := s.client.Evict(ctx, ticker); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.results, ticker)
	s.tickersFresh = false
	s.mu.Unlock()

	return nil
}

// CachedTickers returns the cached-ticker list, re-fetching only when a
// prior write or eviction marked it stale.
func (s *SessionCache) CachedTickers(ctx context.Context) ([]models.CachedTicker, error) {
	s.mu.Lock()
	if s.tickersFresh {
		tickers := s.tickers
		s.mu.Unlock()
		return tickers, nil
	}
	s.mu.Unlock()

	tickers, err := s.client.ListCachedTickers(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.tickers = tickers
	s.tickersFresh = true
	s.mu.Unlock()

	return tickers, nil
}

// Health returns the service liveness payload, trusted for at most the
// configured TTL before the next read probes again.
func (s *SessionCache) Health(ctx context.Context) (map[string]string, error) {
	s.mu.Lock()
	if s.health != nil && time.Since(s.healthAt) < s.healthTTL {
		health := s.health
		s.mu.Unlock()
		return health, nil
	}
	s.mu.Unlock()

	health, err := s.client.Health(ctx)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.health = health
	s.healthAt = time.Now()
	s.mu.Unlock()

	return health, nil
}
