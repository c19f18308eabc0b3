package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps JSON request bodies.
const MaxBodyBytes = 1 << 20

// Envelope is the body of every API response. Data holds the payload on
// success and a human-readable reason on failure.
type Envelope struct {
	Data  any  `json:"data"`
	Error bool `json:"error"`
}

// WriteJSON writes a JSON response with the given status code.
// It automatically sets the Content-Type header and Cache-Control headers.
func WriteJSON(w http.ResponseWriter, code int, v any) {
	NoCache(w)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteData writes a successful envelope.
func WriteData(w http.ResponseWriter, code int, data any) {
	WriteJSON(w, code, Envelope{Data: data})
}

// WriteReason writes a failed envelope carrying reason.
func WriteReason(w http.ResponseWriter, code int, reason string) {
	WriteJSON(w, code, Envelope{Data: reason, Error: true})
}

// NoCache sets the Cache-Control and Pragma headers to prevent caching.
// This is commonly required for sensitive responses like tokens.
func NoCache(w http.ResponseWriter) {
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
}

// DecodeJSON reads a single JSON object from the request body into v.
// Unknown fields are ignored, an empty body decodes to the zero value.
func DecodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("decode request body: %w", err)
	}
	return nil
}
