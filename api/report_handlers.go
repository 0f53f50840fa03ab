package api

import (
	"net/http"

	"argus/core"

	"github.com/gorilla/mux"
)

func (a *API) getReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.reports.GetReports(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	if reports == nil {
		reports = []core.ReportConfig{}
	}
	a.respondJSON(w, reports, http.StatusOK)
}

// createReportRequest names the report to generate
type createReportRequest struct {
	Title string `json:"title,omitempty"`
	Type  string `json:"type,omitempty"`
}

func (a *API) createReport(w http.ResponseWriter, r *http.Request) {
	var req createReportRequest
	if !a.decodeBody(w, r, &req) {
		return
	}

	report, err := a.reports.CreateReport(r.Context(), req.Title, req.Type)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, report, http.StatusCreated)
}

func (a *API) getReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	report, err := a.reports.GetReport(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, report, http.StatusOK)
}

func (a *API) deleteReport(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.reports.DeleteReport(r.Context(), id); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
