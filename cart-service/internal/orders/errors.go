package orders

import (
	"errors"
	"strings"

	"github.com/fjod/fitlyf/cart-service/internal/clients"
)

var (
	ErrSubmissionInProgress = errors.New("an order is already being placed")
	ErrEmptyCart            = errors.New("cart is empty")
	ErrOrderNotFound        = errors.New("order not found")
)

const genericSubmitMessage = "Failed to place order. Please try again."

// SubmitError is a failed placement. Message is what the shopper sees.
type SubmitError struct {
	Message string
	Err     error
}

func (e *SubmitError) Error() string {
	return e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Err
}

// newSubmitError prefers the server's message, then its field errors, then a
// generic message.
func newSubmitError(err error) *SubmitError {
	msg := genericSubmitMessage
	var apiErr *clients.APIError
	if errors.As(err, &apiErr) {
		switch {
		case strings.TrimSpace(apiErr.Message) != "":
			msg = apiErr.Message
		case len(apiErr.Errors) > 0:
			msg = strings.Join(apiErr.Errors, ", ")
		}
	}
	return &SubmitError{Message: msg, Err: err}
}
