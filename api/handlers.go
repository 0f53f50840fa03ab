package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"argus/core"
	"argus/storage"

	"github.com/gorilla/mux"
)

const maxRequestBodySize = 1 << 20

// respondJSON writes a JSON response with proper error handling
func (a *API) respondJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		a.logger.Errorw("Failed to encode JSON response",
			"error", err,
			"data_type", fmt.Sprintf("%T", data))
	}
}

// respondError maps domain errors onto HTTP status codes
func (a *API) respondError(w http.ResponseWriter, err error) {
	var vErr *core.ValidationError
	var cErr *core.ClassificationError

	status := http.StatusInternalServerError
	switch {
	case errors.As(err, &vErr):
		status = http.StatusBadRequest
	case errors.As(err, &cErr):
		status = http.StatusBadGateway
	case storage.IsNotFound(err):
		status = http.StatusNotFound
	}

	if status == http.StatusInternalServerError {
		a.logger.Errorw("Request failed", "error", err)
	}
	a.respondJSON(w, map[string]string{"error": err.Error()}, status)
}

// decodeBody reads a bounded JSON request body
func (a *API) decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodySize)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		a.respondJSON(w, map[string]string{"error": "invalid request body: " + err.Error()}, http.StatusBadRequest)
		return false
	}
	return true
}

// analyzeRequest is the indicator submission payload
type analyzeRequest struct {
	Input string `json:"input"`
	Type  string `json:"type,omitempty"`
}

func (a *API) analyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !a.decodeBody(w, r, &req) {
		return
	}
	if req.Input == "" {
		a.respondJSON(w, map[string]string{"error": "input is required"}, http.StatusBadRequest)
		return
	}

	result, err := a.analyses.Analyze(r.Context(), req.Input, core.IndicatorType(req.Type), nil)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, result, http.StatusOK)
}

func (a *API) getHistory(w http.ResponseWriter, r *http.Request) {
	results, err := a.analyses.GetHistory(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	if results == nil {
		results = []core.AnalysisResult{}
	}
	a.respondJSON(w, results, http.StatusOK)
}

func (a *API) getAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	result, err := a.analyses.GetAnalysis(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, result, http.StatusOK)
}

func (a *API) deleteAnalysis(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.analyses.DeleteAnalysis(r.Context(), id); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
