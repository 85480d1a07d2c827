package functions

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Result is the outcome of one dispatch: an HTTP status and a JSON object body
type Result struct {
	Status int
	Body   map[string]any
}

// NewErrorResult creates a Result carrying an {"error": message} body
func NewErrorResult(status int, message string) Result {
	return Result{
		Status: status,
		Body:   map[string]any{"error": message},
	}
}

// IsError reports whether the result is a non-2xx response
func (r Result) IsError() bool {
	return r.Status < 200 || r.Status > 299
}

// Write sends the result as an application/json response
func (r Result) Write(w http.ResponseWriter) error {
	data, err := json.Marshal(r.Body)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(r.Status)
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}
