package rest

import (
	"net/http"

	"github.com/RichardKnop/ragchat/api"
)

// List selectable model and retriever labels
// (GET /selections)
func (a *Adapter) ListSelections(w http.ResponseWriter, r *http.Request) {
	renderJSON(w, http.StatusOK, api.Selections{
		Models:     a.catalogue.ModelLabels(),
		Retrievers: a.catalogue.RetrieverLabels(),
	})
}

// (GET /healthz)
func (a *Adapter) Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}
