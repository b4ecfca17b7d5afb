// Package app wires configuration, storage, services and handlers into a
// runnable application.
package app

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/stocksense/internal/common"
	"github.com/ternarybob/stocksense/internal/handlers"
	"github.com/ternarybob/stocksense/internal/interfaces"
	"github.com/ternarybob/stocksense/internal/marketdata"
	"github.com/ternarybob/stocksense/internal/services/alerts"
	"github.com/ternarybob/stocksense/internal/services/analysis"
	"github.com/ternarybob/stocksense/internal/services/auth"
	"github.com/ternarybob/stocksense/internal/services/engine"
	"github.com/ternarybob/stocksense/internal/services/events"
	"github.com/ternarybob/stocksense/internal/services/llm"
	"github.com/ternarybob/stocksense/internal/services/monitor"
	"github.com/ternarybob/stocksense/internal/storage"
)

// App holds all application components and dependencies
type App struct {
	Config         *common.Config
	Logger         arbor.ILogger
	StorageManager interfaces.StorageManager

	// Domain services
	EventService    interfaces.EventService
	LLMService      interfaces.LLMService
	MarketData      *marketdata.Client
	Engine          interfaces.AnalysisEngine
	AlertEmitter    interfaces.AlertEmitter
	AnalysisService interfaces.AnalysisService
	AuthService     interfaces.AuthService
	MonitorService  *monitor.Service

	// HTTP handlers
	APIHandler      *handlers.APIHandler
	AnalysisHandler *handlers.AnalysisHandler
	AlertHandler    *handlers.AlertHandler
	ThesisHandler   *handlers.ThesisHandler
	WSHandler       *handlers.WebSocketHandler
}

// New initializes the application with all dependencies
func New(cfg *common.Config, logger arbor.ILogger) (*App, error) {
	app := &App{
		Config: cfg,
		Logger: logger,
	}

	if err := app.initStorage(); err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	if err := app.initServices(); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.initHandlers()

	if cfg.Monitor.Enabled {
		if err := app.MonitorService.Start(&cfg.Monitor); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
	}

	logger.Info().
		Str("llm_provider", cfg.LLM.Provider).
		Bool("monitor_enabled", cfg.Monitor.Enabled).
		Msg("Application initialization complete")

	return app, nil
}

func (a *App) initStorage() error {
	storageManager, err := storage.NewStorageManager(a.Logger, a.Config)
	if err != nil {
		return fmt.Errorf("failed to create storage manager: %w", err)
	}

	a.StorageManager = storageManager
	a.Logger.Debug().
		Str("storage", "badger").
		Str("path", a.Config.Storage.Badger.Path).
		Msg("Storage layer initialized")

	return nil
}

func (a *App) initServices() error {
	a.EventService = events.NewService(a.Logger)

	llmService, err := llm.NewLLMService(&a.Config.LLM, a.Logger)
	if err != nil {
		return err
	}
	a.LLMService = llmService

	mdOpts := []marketdata.ClientOption{marketdata.WithLogger(a.Logger)}
	if a.Config.MarketData.BaseURL != "" {
		mdOpts = append(mdOpts, marketdata.WithBaseURL(a.Config.MarketData.BaseURL))
	}
	if a.Config.MarketData.RateLimit > 0 {
		mdOpts = append(mdOpts, marketdata.WithRateLimit(a.Config.MarketData.RateLimit))
	}
	a.MarketData = marketdata.NewClient(a.Config.MarketData.APIKey, mdOpts...)

	a.Engine = engine.NewService(a.MarketData, a.LLMService, &a.Config.MarketData, a.Logger)

	a.AlertEmitter = alerts.NewService(a.StorageManager.AlertStorage(), a.EventService, a.Logger)

	a.AnalysisService = analysis.NewService(
		a.Engine,
		a.StorageManager.AnalysisStorage(),
		a.StorageManager.ThesisStorage(),
		a.AlertEmitter,
		a.Logger,
	)

	a.AuthService = auth.NewService(a.StorageManager.SessionStorage(), a.Logger)

	a.MonitorService = monitor.NewService(
		a.AnalysisService,
		a.StorageManager.ThesisStorage(),
		a.AlertEmitter,
		a.Logger,
	)

	return nil
}

func (a *App) initHandlers() {
	a.APIHandler = handlers.NewAPIHandler()
	a.AnalysisHandler = handlers.NewAnalysisHandler(a.AnalysisService, a.AuthService, a.Logger)
	a.AlertHandler = handlers.NewAlertHandler(a.StorageManager.AlertStorage(), a.AuthService, a.Logger)
	a.ThesisHandler = handlers.NewThesisHandler(a.StorageManager.ThesisStorage(), a.AuthService, a.Logger)
	a.WSHandler = handlers.NewWebSocketHandler(a.EventService, a.Logger)
}

// Shutdown stops background work and closes storage.
func (a *App) Shutdown(ctx context.Context) error {
	if a.MonitorService != nil {
		a.MonitorService.Stop()
	}

	if a.StorageManager != nil {
		if err := a.StorageManager.Close(); err != nil {
			return fmt.Errorf("failed to close storage: %w", err)
		}
	}

	a.Logger.Info().Msg("Application shut down")
	return nil
}
