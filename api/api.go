package api

import (
	"context"
	"net/http"

	"argus/config"
	"argus/service"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// API holds the HTTP server serving the console backend
type API struct {
	router       *mux.Router
	server       *http.Server
	analyses     *service.AnalysisService
	rules        *service.RuleService
	alerts       *service.AlertService
	integrations *service.IntegrationService
	actors       *service.ActorService
	reports      *service.ReportService
	config       *config.Config
	logger       *zap.SugaredLogger
}

// NewAPI creates a new API server
func NewAPI(
	analyses *service.AnalysisService,
	rules *service.RuleService,
	alerts *service.AlertService,
	integrations *service.IntegrationService,
	actors *service.ActorService,
	reports *service.ReportService,
	cfg *config.Config,
	logger *zap.SugaredLogger,
) *API {
	api := &API{
		router:       mux.NewRouter(),
		analyses:     analyses,
		rules:        rules,
		alerts:       alerts,
		integrations: integrations,
		actors:       actors,
		reports:      reports,
		config:       cfg,
		logger:       logger,
	}
	api.setupRoutes()
	return api
}

// setupRoutes sets up the API routes
func (a *API) setupRoutes() {
	a.router.Use(a.recoveryMiddleware)
	a.router.Use(a.loggingMiddleware)
	a.router.Use(a.corsMiddleware)

	a.router.HandleFunc("/api/analyze", a.analyze).Methods("POST")
	a.router.HandleFunc("/api/history", a.getHistory).Methods("GET")
	a.router.HandleFunc("/api/history/{id}", a.getAnalysis).Methods("GET")
	a.router.HandleFunc("/api/history/{id}", a.deleteAnalysis).Methods("DELETE")

	a.router.HandleFunc("/api/rules", a.getRules).Methods("GET")
	a.router.HandleFunc("/api/rules", a.createRule).Methods("POST")
	a.router.HandleFunc("/api/rules/{id}", a.getRule).Methods("GET")
	a.router.HandleFunc("/api/rules/{id}", a.deleteRule).Methods("DELETE")
	a.router.HandleFunc("/api/rules/{id}/toggle", a.toggleRule).Methods("POST")

	a.router.HandleFunc("/api/alerts", a.getAlerts).Methods("GET")
	a.router.HandleFunc("/api/alerts/{id}/status", a.updateAlertStatus).Methods("PUT")

	a.router.HandleFunc("/api/integrations", a.getIntegrations).Methods("GET")
	a.router.HandleFunc("/api/integrations", a.saveIntegration).Methods("POST")
	a.router.HandleFunc("/api/integrations/{id}", a.deleteIntegration).Methods("DELETE")
	a.router.HandleFunc("/api/integrations/{id}/toggle", a.toggleIntegration).Methods("POST")
	a.router.HandleFunc("/api/integrations/{id}/test", a.testIntegration).Methods("POST")
	a.router.HandleFunc("/api/integrations/{id}/run", a.runIntegration).Methods("POST")

	a.router.HandleFunc("/api/actors", a.getActors).Methods("GET")
	a.router.HandleFunc("/api/actors", a.saveActor).Methods("POST")
	a.router.HandleFunc("/api/actors/{id}", a.getActor).Methods("GET")
	a.router.HandleFunc("/api/actors/{id}", a.deleteActor).Methods("DELETE")

	a.router.HandleFunc("/api/reports", a.getReports).Methods("GET")
	a.router.HandleFunc("/api/reports", a.createReport).Methods("POST")
	a.router.HandleFunc("/api/reports/{id}", a.getReport).Methods("GET")
	a.router.HandleFunc("/api/reports/{id}", a.deleteReport).Methods("DELETE")

	a.router.HandleFunc("/health", a.healthCheck).Methods("GET")
	a.router.Handle("/metrics", promhttp.Handler())
}

// Start starts the API server
func (a *API) Start(addr string) error {
	a.server = &http.Server{
		Addr:    addr,
		Handler: a.router,
	}
	return a.server.ListenAndServe()
}

// Stop stops the API server
func (a *API) Stop(ctx context.Context) error {
	if a.server != nil {
		return a.server.Shutdown(ctx)
	}
	return nil
}

// Handler exposes the router, for tests
func (a *API) Handler() http.Handler {
	return a.router
}

func (a *API) healthCheck(w http.ResponseWriter, r *http.Request) {
	a.respondJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
}
