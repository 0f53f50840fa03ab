// Package cmd provides command-line interface commands for Argus.
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"argus/bootstrap"
	"argus/classify"
	"argus/detect"
	"argus/intel"
	"argus/service"

	"github.com/fatih/color"
	"go.uber.org/zap"
)

// CLI output formatters
var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	warningColor = color.New(color.FgYellow)
	infoColor    = color.New(color.FgCyan)
	headerColor  = color.New(color.FgBlue, color.Bold)
)

// Global flags
var (
	outputJSON bool
	noColor    bool
	quiet      bool
)

const defaultTimeout = 5 * time.Minute

// backend bundles the services a CLI command works against
type backend struct {
	Analyses *service.AnalysisService
	Rules    *service.RuleService
	Alerts   *service.AlertService
	Actors   *service.ActorService
}

// initBackend builds the service layer without starting the API server.
// The returned cleanup closes the database and must always be called.
func initBackend(ctx context.Context) (*backend, func(), error) {
	sugar := zap.NewNop().Sugar()
	if !quiet {
		_, s, err := bootstrap.InitLogger()
		if err != nil {
			return nil, nil, err
		}
		sugar = s
	}

	cfg, err := bootstrap.InitConfig(sugar)
	if err != nil {
		return nil, nil, err
	}

	storageComponents, err := bootstrap.InitStorage(cfg, sugar)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if err := storageComponents.SQLite.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to close database: %v\n", err)
		}
	}

	registry := intel.NewRegistry()
	cache := intel.NewLookupCache(cfg.Intel.CacheSize, cfg.Intel.CacheTTL)
	orchestrator := intel.NewOrchestrator(registry, cache, sugar)
	engine := detect.NewEngine(storageComponents.Rules, storageComponents.Alerts, nil, sugar)
	actors := service.NewActorService(storageComponents.Actors, sugar)

	var classifier classify.Classifier = classify.NewHeuristicClassifier()
	if cfg.Classifier.Provider == "llm" {
		classifier = classify.NewLLMClassifier(cfg.Classifier.BaseURL, cfg.Classifier.APIKey, classify.Settings{
			Model:              cfg.Classifier.Model,
			Temperature:        cfg.Classifier.Temperature,
			MaxTokens:          cfg.Classifier.MaxTokens,
			Language:           cfg.Classifier.Language,
			DetailLevel:        cfg.Classifier.DetailLevel,
			RiskTolerance:      cfg.Classifier.RiskTolerance,
			CustomInstructions: cfg.Classifier.CustomInstructions,
			MaxContextItems:    cfg.Classifier.MaxContextItems,
		}, sugar)
	}

	b := &backend{
		Analyses: service.NewAnalysisService(
			classifier,
			orchestrator,
			storageComponents.Analyses,
			storageComponents.Integrations,
			engine,
			actors,
			sugar,
		),
		Rules:  service.NewRuleService(storageComponents.Rules, sugar),
		Alerts: service.NewAlertService(storageComponents.Alerts, sugar),
		Actors: actors,
	}
	return b, cleanup, nil
}

// outputAsJSON renders any value as indented JSON on stdout
func outputAsJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
