package errors

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
)

// maxBodyLen bounds how much of an error body is kept on APIError.
const maxBodyLen = 2048

// ClassifyHTTPError maps a non-2xx response onto the SDK taxonomy:
//   - 401 and 403 become *AuthenticationError regardless of operation
//   - 404 becomes *ResourceNotFoundError
//   - everything else becomes *APIError carrying the status and server message
func ClassifyHTTPError(statusCode int, body []byte, resource string) error {
	msg := serverMessage(body)
	switch statusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		if msg == "" {
			msg = "check your API key"
		}
		return &AuthenticationError{StatusCode: statusCode, Message: msg}
	case http.StatusNotFound:
		return &ResourceNotFoundError{Resource: resource, Message: msg}
	default:
		if msg == "" {
			msg = http.StatusText(statusCode)
		}
		return &APIError{StatusCode: statusCode, Message: msg, Body: truncate(string(body))}
	}
}

// NewHTTPError is a convenience wrapper used by the API layer which prefixes
// the message with the failing operation.
func NewHTTPError(statusCode int, body []byte, operation, resource string) error {
	err := ClassifyHTTPError(statusCode, body, resource)
	if apiErr, ok := err.(*APIError); ok {
		apiErr.Message = fmt.Sprintf("%s: %s", operation, apiErr.Message)
	}
	return err
}

// NewNetworkError wraps a transport-level failure (no response received).
func NewNetworkError(operation string, err error) *APIError {
	return &APIError{Message: operation + " request failed", Cause: err}
}

// NewDecodeError wraps a response body that could not be decoded.
func NewDecodeError(operation string, statusCode int, err error) *APIError {
	return &APIError{StatusCode: statusCode, Message: operation + ": invalid response body", Cause: err}
}

// serverMessage extracts a human readable message from a JSON error body.
// The API is not consistent about the field name, so the common ones are
// tried in order.
func serverMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return strings.TrimSpace(truncate(string(body)))
	}
	for _, key := range []string{"error", "message", "detail"} {
		switch v := payload[key].(type) {
		case string:
			if v != "" {
				return v
			}
		case map[string]any:
			if m, ok := v["message"].(string); ok && m != "" {
				return m
			}
		}
	}
	// JSON:API error documents: {"errors":[{"detail":"..."}]}
	if list, ok := payload["errors"].([]any); ok && len(list) > 0 {
		if first, ok := list[0].(map[string]any); ok {
			for _, key := range []string{"detail", "title"} {
				if s, ok := first[key].(string); ok && s != "" {
					return s
				}
			}
		}
	}
	return ""
}

func truncate(s string) string {
	if len(s) <= maxBodyLen {
		return s
	}
	return s[:maxBodyLen] + "…"
}
