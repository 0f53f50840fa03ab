package api

import (
	"net/http"

	"argus/core"

	"github.com/gorilla/mux"
)

func (a *API) getActors(w http.ResponseWriter, r *http.Request) {
	actors, err := a.actors.GetActors(r.Context())
	if err != nil {
		a.respondError(w, err)
		return
	}
	if actors == nil {
		actors = []core.ThreatActor{}
	}
	a.respondJSON(w, actors, http.StatusOK)
}

func (a *API) getActor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	actor, err := a.actors.GetActor(r.Context(), id)
	if err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, actor, http.StatusOK)
}

func (a *API) saveActor(w http.ResponseWriter, r *http.Request) {
	var actor core.ThreatActor
	if !a.decodeBody(w, r, &actor) {
		return
	}
	if err := a.actors.SaveActor(r.Context(), &actor); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, actor, http.StatusOK)
}

func (a *API) deleteActor(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if err := a.actors.DeleteActor(r.Context(), id); err != nil {
		a.respondError(w, err)
		return
	}
	a.respondJSON(w, map[string]string{"status": "deleted"}, http.StatusOK)
}
