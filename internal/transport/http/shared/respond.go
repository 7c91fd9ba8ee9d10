// Package shared centralizes JSON response envelopes so every handler renders
// errors the same way.
package shared

import (
	"encoding/json"
	"net/http"

	dErrors "fieldcheck/pkg/domainerrors"
)

// WriteJSON renders v with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError translates a domain error into {"error": message} with the
// status its code maps to. Non-domain errors render as a 500 with a generic
// message so internals never leak.
func WriteError(w http.ResponseWriter, err error) {
	status := dErrors.ToHTTPStatus(dErrors.CodeOf(err))
	WriteJSON(w, status, map[string]string{"error": dErrors.Message(err)})
}
