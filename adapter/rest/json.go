package rest

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/RichardKnop/ragchat/api"
)

const maxRequestSize = 1 << 20

func readRequestJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

func renderJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func renderJSONError(w http.ResponseWriter, status int, err error) {
	renderJSON(w, status, api.Error{Error: err.Error()})
}
