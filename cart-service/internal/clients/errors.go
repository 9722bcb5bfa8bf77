package clients

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrServiceUnavailable = errors.New("service unavailable")
)

// APIError is a non-success answer from a collaborator.
type APIError struct {
	Service    string
	StatusCode int
	Message    string
	Errors     []string
}

func (e *APIError) Error() string {
	msg := e.Message
	if msg == "" && len(e.Errors) > 0 {
		msg = strings.Join(e.Errors, "; ")
	}
	if msg == "" {
		msg = "unexpected response"
	}
	return fmt.Sprintf("%s: status %d: %s", e.Service, e.StatusCode, msg)
}
