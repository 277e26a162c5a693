package httputil

import (
	"encoding/json"
	"net/http"
)

// Envelope is the JSON body every REST endpoint returns. 204 responses carry
// no body at all; codes >= 400 populate Errors and set Status to false.
type Envelope struct {
	Status bool     `json:"status"`
	Code   int      `json:"code"`
	Data   any      `json:"data,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// Respond writes the envelope for a success payload.
func Respond(w http.ResponseWriter, code int, data any) {
	if code == http.StatusNoContent {
		w.WriteHeader(code)
		return
	}

	writeJSON(w, code, Envelope{
		Status: true,
		Code:   code,
		Data:   data,
	})
}

// RespondError writes the envelope for one or more error messages.
func RespondError(w http.ResponseWriter, code int, errs ...string) {
	writeJSON(w, code, Envelope{
		Status: false,
		Code:   code,
		Errors: errs,
	})
}

func writeJSON(w http.ResponseWriter, code int, payload Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(payload)
}
