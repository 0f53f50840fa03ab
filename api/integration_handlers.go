package api

import (
	"net/http"

	"argus/core"

	"github.com/gorilla/mux"
)

func (a *API) getIntegrations(w http.ResponseWriter, r *http.Request) {
	integrations, err := a.integrations.GetIntegrations(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	if integrations == nil {
		integrations = []core.IntegrationConfig{}
	}
	a.respondJSON(w, integrations, http.StatusOK)
}

func (a *API) saveIntegration(w http.ResponseWriter, r *http.Request) {
	var cfg core.IntegrationConfig
	if !a.decodeBody(w, r, &cfg) {
		return
	}
	if err := a.integrations.SaveIntegration(r.Context(), &cfg); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, cfg, http.StatusOK)
}

func (a *API) deleteIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.integrations.DeleteIntegration(r.Context(), id); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
}

// toggleIntegrationRequest controls an enable or disable attempt. Override
// lets the caller enable an integration whose connection test failed.
type toggleIntegrationRequest struct {
	Enabled  bool `json:"enabled"`
	Override bool `json:"override,omitempty"`
}

func (a *API) toggleIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req toggleIntegrationRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	cfg, err := a.integrations.SetEnabled(r.Context(), id, req.Enabled, req.Override)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, cfg, http.StatusOK)
}

func (a *API) testIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	cfg, err := a.integrations.GetIntegration(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}

	result := a.integrations.TestConnection(r.Context(), cfg)
	a.respondJSON(w, result, http.StatusOK)
}

func (a *API) runIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := a.integrations.RunIntegration(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, result, http.StatusOK)
}
