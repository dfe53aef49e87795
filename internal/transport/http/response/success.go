package response

import (
	"encoding/json"
	"net/http"
)

// Message is the body of operations that only confirm an outcome.
type Message struct {
	Message string `json:"message"`
}

// WriteJSON writes v as a bare JSON body. API responses carry tokens and
// personal data, so intermediaries must not store them.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	h := w.Header()
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", "application/json; charset=utf-8")
	}
	h.Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func OK(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusOK, v)
}

func Created(w http.ResponseWriter, v any) {
	WriteJSON(w, http.StatusCreated, v)
}
