package apiclient

import (
	"context"
	"errors"
	"fmt"
	"net"
)

// Status codes used for failures that never produced an HTTP response.
const (
	StatusNoResponse = 0
	StatusTimeout    = 408
	StatusSetup      = 500
)

// ClientError is the single shape every failed call is reported as.
type ClientError struct {
	Message    string
	StatusCode int
	// Data is the decoded error body, when the server sent one.
	Data any
}

func (e *ClientError) Error() string {
	return e.Message
}

// StatusCode extracts the status of a *ClientError anywhere in err's chain.
// It returns -1 when err carries none.
func StatusCode(err error) int {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.StatusCode
	}
	return -1
}

// IsClientError reports whether err is a 4xx response.
func IsClientError(err error) bool {
	code := StatusCode(err)
	return code >= 400 && code < 500
}

func setupError(err error) *ClientError {
	msg := "An unknown error occurred"
	if err != nil && err.Error() != "" {
		msg = err.Error()
	}
	return &ClientError{Message: msg, StatusCode: StatusSetup, Data: err}
}

// transportError classifies a failure from http.Client.Do.
func transportError(err error) *ClientError {
	if isTimeout(err) {
		return &ClientError{Message: "Request timeout", StatusCode: StatusTimeout}
	}
	return &ClientError{Message: "Network error - no response received", StatusCode: StatusNoResponse}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

// responseError builds the error for a non-2xx response. The message comes
// from the body's "error" or "message" field when present.
func responseError(status int, body map[string]any) *ClientError {
	msg := ""
	if body != nil {
		if s, ok := body["error"].(string); ok && s != "" {
			msg = s
		} else if s, ok := body["message"].(string); ok && s != "" {
			msg = s
		}
	}
	if msg == "" && status != 0 {
		msg = fmt.Sprintf("Request failed with status code %d", status)
	}
	if msg == "" {
		msg = "An error occurred!"
	}
	ce := &ClientError{Message: msg, StatusCode: status}
	if body != nil {
		ce.Data = body
	}
	return ce
}
