// Package monitor runs the background kill-criteria sweep: on a cron
// schedule every active thesis gets a fresh analysis of its ticker and an
// emitter evaluation.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/models"
)

// sweepTimeout bounds one full sweep across all active theses.
const sweepTimeout = 10 * time.Minute

// Service schedules the kill-criteria sweep.
type Service struct {
	analysis      interfaces.AnalysisService
	thesisStorage interfaces.ThesisStorage
	emitter       interfaces.AlertEmitter
	cron          *cron.Cron
	logger        arbor.ILogger
	mu            sync.Mutex
	running       bool
	sweeping      bool
}

// NewService creates a new monitor service.
func NewService(
	analysis interfaces.AnalysisService,
	thesisStorage interfaces.ThesisStorage,
	emitter interfaces.AlertEmitter,
	logger arbor.ILogger,
) *Service {
	return &Service{
		analysis:      analysis,
		thesisStorage: thesisStorage,
		emitter:       emitter,
		cron:          cron.New(),
		logger:        logger,
	}
}

// Start begins the sweep on the given cron schedule.
func (s *Service) Start(config *common.MonitorConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return fmt.Errorf("monitor already running")
	}

	schedule := config.Schedule
	if schedule == "" {
		schedule = "0 */6 * * *" // Default: every 6 hours
	}

	if _, err := s.cron.AddFunc(schedule, s.runSweep); err != nil {
		return fmt.Errorf("failed to add monitor cron job: %w", err)
	}

	s.cron.Start()
	s.running = true

	s.logger.Info().
		Str("schedule", schedule).
		Msg("Kill criteria monitor started")

	return nil
}

// Stop halts the scheduler. A sweep already in flight runs to completion.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return
	}
	s.cron.Stop()
	s.running = false
	s.logger.Info().Msg("Kill criteria monitor stopped")
}

// runSweep executes one monitoring pass. Overlapping passes are skipped.
func (s *Service) runSweep() {
	s.mu.Lock()
	if s.sweeping {
		s.mu.Unlock()
		s.logger.Warn().Msg("Previous sweep still running, skipping this cycle")
		return
	}
	s.sweeping = true
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.sweeping = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	if err := s.Sweep(ctx); err != nil {
		s.logger.Error().Err(err).Msg("Monitor sweep failed")
	}
}

// Sweep evaluates every active thesis against a fresh analysis of its
// ticker. Per-ticker failures are logged and the sweep continues; only a
// failure to list theses aborts.
func (s *Service) Sweep(ctx context.Context) error {
	start := time.Now()

	theses, err := s.thesisStorage.ListActive(ctx)
	if err != nil {
		return fmt.Errorf("failed to list active theses: %w", err)
	}
	if len(theses) == 0 {
		s.logger.Debug().Msg("No active theses to monitor")
		return nil
	}

	// One analysis per distinct ticker, shared across theses
	byTicker := make(map[string][]*models.Thesis)
	for _, thesis := range theses {
		byTicker[thesis.Ticker] = append(byTicker[thesis.Ticker], thesis)
	}

	s.logger.Info().
		Int("theses", len(theses)).
		Int("tickers", len(byTicker)).
		Msg("Starting kill criteria sweep")

	evaluated := 0
	alerted := 0
	for ticker, tickerTheses := range byTicker {
		fresh, err := s.analysis.RequestAnalysis(ctx, ticker, true, nil)
		if err != nil {
			s.logger.Warn().
				Err(err).
				Str("ticker", ticker).
				Msg("Sweep analysis failed, skipping ticker")
			continue
		}

		for _, thesis := range tickerTheses {
			alert, err := s.emitter.Evaluate(ctx, thesis, fresh)
			if err != nil {
				s.logger.Warn().
					Err(err).
					Str("thesis_id", thesis.ID).
					Str("ticker", ticker).
					Msg("Sweep evaluation failed")
				continue
			}
			evaluated++
			if alert != nil {
				alerted++
			}
		}
	}

	s.logger.Info().
		Int("evaluated", evaluated).
		Int("alerts", alerted).
		Dur("duration", time.Since(start)).
		Msg("Kill criteria sweep completed")

	return nil
}
