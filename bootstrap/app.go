package bootstrap

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"argus/api"
	"argus/classify"
	"argus/config"
	"argus/detect"
	"argus/intel"
	"argus/notify"
	"argus/service"

	"go.uber.org/zap"
)

// App wires every component of the console backend together.
type App struct {
	Config *config.Config
	Logger *zap.Logger
	Sugar  *zap.SugaredLogger

	Storage *StorageComponents

	Classifier   classify.Classifier
	Registry     *intel.Registry
	Orchestrator *intel.Orchestrator
	Engine       *detect.Engine
	Notifier     *notify.Notifier

	AnalysisService    *service.AnalysisService
	RuleService        *service.RuleService
	AlertService       *service.AlertService
	IntegrationService *service.IntegrationService
	ActorService       *service.ActorService
	ReportService      *service.ReportService

	APIServer *api.API
}

// NewApp creates a new application instance and initializes all components.
func NewApp(ctx context.Context) (*App, error) {
	app := &App{}

	logger, sugar, err := InitLogger()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.Logger = logger
	app.Sugar = sugar

	sugar.Info("Argus threat intelligence console starting...")

	cfg, err := InitConfig(sugar)
	if err != nil {
		return nil, err
	}
	app.Config = cfg

	storageComponents, err := InitStorage(cfg, sugar)
	if err != nil {
		return nil, err
	}
	app.Storage = storageComponents

	app.Classifier = initClassifier(cfg, sugar)
	app.Registry = intel.NewRegistry()
	cache := intel.NewLookupCache(cfg.Intel.CacheSize, cfg.Intel.CacheTTL)
	app.Orchestrator = intel.NewOrchestrator(app.Registry, cache, sugar)
	app.Notifier = notify.NewNotifier(cfg.Notify.Channels, sugar)
	app.Engine = detect.NewEngine(storageComponents.Rules, storageComponents.Alerts, app.Notifier, sugar)

	app.ActorService = service.NewActorService(storageComponents.Actors, sugar)
	app.AnalysisService = service.NewAnalysisService(
		app.Classifier,
		app.Orchestrator,
		storageComponents.Analyses,
		storageComponents.Integrations,
		app.Engine,
		app.ActorService,
		sugar,
	)
	app.RuleService = service.NewRuleService(storageComponents.Rules, sugar)
	app.AlertService = service.NewAlertService(storageComponents.Alerts, sugar)
	app.IntegrationService = service.NewIntegrationService(
		storageComponents.Integrations,
		storageComponents.Analyses,
		app.Registry,
		app.Engine,
		sugar,
	)
	app.ReportService = service.NewReportService(
		storageComponents.Reports,
		storageComponents.Analyses,
		storageComponents.Alerts,
		sugar,
	)

	if err := app.IntegrationService.SeedCatalog(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed integration catalog: %w", err)
	}
	if err := app.ActorService.SeedKnowledgebase(ctx); err != nil {
		return nil, fmt.Errorf("failed to seed actor knowledgebase: %w", err)
	}

	app.APIServer = api.NewAPI(
		app.AnalysisService,
		app.RuleService,
		app.AlertService,
		app.IntegrationService,
		app.ActorService,
		app.ReportService,
		cfg,
		sugar,
	)

	return app, nil
}

// initClassifier selects the classifier backend from configuration
func initClassifier(cfg *config.Config, sugar *zap.SugaredLogger) classify.Classifier {
	settings := classify.Settings{
		Model:              cfg.Classifier.Model,
		Temperature:        cfg.Classifier.Temperature,
		MaxTokens:          cfg.Classifier.MaxTokens,
		Language:           cfg.Classifier.Language,
		DetailLevel:        cfg.Classifier.DetailLevel,
		RiskTolerance:      cfg.Classifier.RiskTolerance,
		CustomInstructions: cfg.Classifier.CustomInstructions,
		MaxContextItems:    cfg.Classifier.MaxContextItems,
	}

	if cfg.Classifier.Provider == "llm" {
		sugar.Infow("Using LLM classifier", "model", cfg.Classifier.Model)
		return classify.NewLLMClassifier(cfg.Classifier.BaseURL, cfg.Classifier.APIKey, settings, sugar)
	}

	sugar.Info("Using heuristic classifier")
	return classify.NewHeuristicClassifier()
}

// Start launches the API server.
func (a *App) Start(ctx context.Context) error {
	addr := net.JoinHostPort(a.Config.API.Host, strconv.Itoa(a.Config.API.Port))
	a.Sugar.Infow("Starting API server", "addr", addr)

	go func() {
		if err := a.APIServer.Start(addr); err != nil && err != http.ErrServerClosed {
			a.Sugar.Fatalf("API server failed: %v", err)
		}
	}()

	return nil
}

// WaitForShutdown blocks until a shutdown signal is received.
func (a *App) WaitForShutdown() {
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	<-c
}

// Shutdown gracefully shuts down all components.
func (a *App) Shutdown() {
	a.Sugar.Info("Shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := a.APIServer.Stop(ctx); err != nil {
		a.Sugar.Errorf("API server shutdown error: %v", err)
	}

	if a.Storage != nil && a.Storage.SQLite != nil {
		if err := a.Storage.SQLite.Close(); err != nil {
			a.Sugar.Errorf("SQLite close error: %v", err)
		}
	}

	a.Sugar.Info("Shutdown complete")
	_ = a.Logger.Sync()
}
