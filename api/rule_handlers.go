package api

import (
	"net/http"

	"argus/core"

	"github.com/gorilla/mux"
)

func (a *API) getRules(w http.ResponseWriter, r *http.Request) {
	rules, err := a.rules.GetRules(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	if rules == nil {
		rules = []core.AlertRule{}
	}
	a.respondJSON(w, rules, http.StatusOK)
}

func (a *API) createRule(w http.ResponseWriter, r *http.Request) {
	var rule core.AlertRule
	if !a.decodeBody(w, r, &rule) {
		return
	}

	created, err := a.rules.CreateRule(r.Context(), &rule)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, created, http.StatusCreated)
}

func (a *API) getRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rule, err := a.rules.GetRule(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, rule, http.StatusOK)
}

func (a *API) toggleRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	rule, err := a.rules.ToggleRule(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, rule, http.StatusOK)
}

func (a *API) deleteRule(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.rules.DeleteRule(r.Context(), id); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
