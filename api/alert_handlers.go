package api

import (
	"net/http"

	"argus/core"

	"github.com/gorilla/mux"
)

func (a *API) getAlerts(w http.ResponseWriter, r *http.Request) {
	alerts, err := a.alerts.GetAlerts(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	if alerts == nil {
		alerts = []core.TriggeredAlert{}
	}
	a.respondJSON(w, alerts, http.StatusOK)
}

// statusUpdateRequest carries the requested lifecycle transition
type statusUpdateRequest struct {
	Status core.AlertStatus `json:"status"`
}

func (a *API) updateAlertStatus(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req statusUpdateRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	if !req.Status.IsValid() {
		a.respondJSON(w, map[string]string{"error": "unknown alert status: " + string(req.Status)}, http.StatusBadRequest)
		return
	}

	alert, err := a.alerts.UpdateAlertStatus(r.Context(), id, req.Status)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, alert, http.StatusOK)
}
