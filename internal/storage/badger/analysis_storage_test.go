package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

func openTestDB(t *testing.T) *BadgerDB {
	t.Helper()

	tmpDir := t.TempDir()

	options := badgerhold.DefaultOptions
	options.Options = badgerdb.DefaultOptions(tmpDir).WithLogger(nil)

	store, err := badgerhold.Open(options)
	if err != nil {
		t.Fatalf("Failed to open badgerhold store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	return &BadgerDB{store: store, logger: arbor.NewLogger()}
}

func TestAnalysisUpsertByTicker(t *testing.T) {
	db := openTestDB(t)
	storage := NewAnalysisStorage(db, arbor.NewLogger())
	ctx := context.Background()

	first := &models.AnalysisResult{
		Ticker:  "TSLA",
		Summary: "first run",
		Sentiment: models.SentimentVerdict{
			OverallSentiment:  models.SentimentNeutral,
			OverallConfidence: 0.5,
		},
	}
	if err := storage.SaveAnalysis(ctx, first); err != nil {
		t.Fatalf("SaveAnalysis() failed: %v", err)
	}
	firstUpdated := first.UpdatedAt

	// Second save for the same ticker must replace, not insert
	time.Sleep(5 * time.Millisecond)
	second := &models.AnalysisResult{Ticker: "TSLA", Summary: "second run"}
	if err := storage.SaveAnalysis(ctx, second); err != nil {
		t.Fatalf("SaveAnalysis() overwrite failed: %v", err)
	}

	count, err := storage.CountAnalyses(ctx)
	if err != nil {
		t.Fatalf("CountAnalyses() failed: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 row after overwrite, got %d", count)
	}

	got, err := storage.GetAnalysis(ctx, "TSLA")
	if err != nil {
		t.Fatalf("GetAnalysis() failed: %v", err)
	}
	if got.Summary != "second run" {
		t.Errorf("expected overwritten summary, got %q", got.Summary)
	}
	if !got.UpdatedAt.After(firstUpdated) {
		t.Error("expected UpdatedAt to advance on overwrite")
	}
}

func TestAnalysisGetMissing(t *testing.T) {
	db := openTestDB(t)
	storage := NewAnalysisStorage(db, arbor.NewLogger())

	_, err := storage.GetAnalysis(context.Background(), "NVDA")
	if !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestAnalysisDelete(t *testing.T) {
	db := openTestDB(t)
	storage := NewAnalysisStorage(db, arbor.NewLogger())
	ctx := context.Background()

	if err := storage.SaveAnalysis(ctx, &models.AnalysisResult{Ticker: "AAPL"}); err != nil {
		t.Fatalf("SaveAnalysis() failed: %v", err)
	}
	if err := storage.DeleteAnalysis(ctx, "AAPL"); err != nil {
		t.Fatalf("DeleteAnalysis() failed: %v", err)
	}
	if _, err := storage.GetAnalysis(ctx, "AAPL"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if err := storage.DeleteAnalysis(ctx, "AAPL"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("expected ErrNotFound deleting twice, got %v", err)
	}
}

func TestListCachedTickersOrdering(t *testing.T) {
	db := openTestDB(t)
	storage := NewAnalysisStorage(db, arbor.NewLogger())
	ctx := context.Background()

	for _, ticker := range []string{"AAPL", "NVDA", "TSLA"} {
		if err := storage.SaveAnalysis(ctx, &models.AnalysisResult{Ticker: ticker}); err != nil {
			t.Fatalf("SaveAnalysis(%s) failed: %v", ticker, err)
		}
		time.Sleep(5 * time.Millisecond)
	}

	tickers, err := storage.ListCachedTickers(ctx)
	if err != nil {
		t.Fatalf("ListCachedTickers() failed: %v", err)
	}
	if len(tickers) != 3 {
		t.Fatalf("expected 3 tickers, got %d", len(tickers))
	}

	// Most recently written first
	want := []string{"TSLA", "NVDA", "AAPL"}
	for i, w := range want {
		if tickers[i].Ticker != w {
			t.Errorf("position %d: got %s, want %s", i, tickers[i].Ticker, w)
		}
	}
}
