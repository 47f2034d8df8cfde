package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// HTTPError represents a non-2xx HTTP response from the API.
// Message holds the body's "message" field and is empty when the body had none.
type HTTPError struct {
	StatusCode int
	Message    string
	Path       string
	Body       []byte
}

func (e *HTTPError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, msg)
}

// IsStatus returns true if err (or any wrapped error) is an HTTPError with the given status code.
func IsStatus(err error, code int) bool {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.StatusCode == code
	}
	return false
}

// errorBody is the backend's error envelope. Every field is optional.
type errorBody struct {
	Status  *int    `json:"status"`
	Error   *string `json:"error"`
	Message *string `json:"message"`
}

// decodeMessage extracts the optional "message" field from an error body.
// Anything that is not a JSON object with a string message yields "".
func decodeMessage(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil {
		return ""
	}
	if eb.Message == nil {
		return ""
	}
	return *eb.Message
}
