// Package shared centralizes JSON response writing so every handler produces
// the same envelopes.
package shared

import (
	"encoding/json"
	"errors"
	"net/http"

	dErrors "inscripciones/pkg/domain-errors"
)

// WriteJSON writes a JSON body with the given status.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

// ErrorResponse is the JSON error envelope. FieldErrors is only present for
// validation failures so clients can display every violation at once.
type ErrorResponse struct {
	Error       string            `json:"error"`
	Message     string            `json:"message,omitempty"`
	FieldErrors map[string]string `json:"fieldErrors,omitempty"`
}

// WriteError translates a domain error to an HTTP response. Messages are only
// surfaced for coded errors; raw internals stay in the logs.
func WriteError(w http.ResponseWriter, err error) {
	code := dErrors.CodeOf(err)
	resp := ErrorResponse{Error: string(code)}
	var de *dErrors.Error
	if errors.As(err, &de) {
		resp.Message = de.Message
		resp.FieldErrors = de.Fields
	}
	WriteJSON(w, dErrors.ToHTTPStatus(code), resp)
}
