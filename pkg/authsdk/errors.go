package authsdk

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	// StatusCode is the HTTP status code of the response
	StatusCode int

	// Reason is the message the server put in the envelope
	Reason string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("authmodes: %d: %s", e.StatusCode, e.Reason)
}

// parseErrorResponse builds an APIError from a failed response body.
func parseErrorResponse(resp *http.Response, body []byte) error {
	var env struct {
		Data  string `json:"data"`
		Error bool   `json:"error"`
	}
	if err := json.Unmarshal(body, &env); err == nil && env.Data != "" {
		return &APIError{StatusCode: resp.StatusCode, Reason: env.Data}
	}

	// Fallback: create generic error from status code
	return &APIError{
		StatusCode: resp.StatusCode,
		Reason:     fmt.Sprintf("HTTP %d: %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
}
