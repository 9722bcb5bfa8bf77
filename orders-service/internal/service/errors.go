package service

import (
	"errors"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var ErrOrderNotFound = errors.New("order not found")

// ValidationError lists every problem found in an order request.
type ValidationError struct {
	errs *multierror.Error
}

func (e *ValidationError) add(msg string) {
	e.errs = multierror.Append(e.errs, errors.New(msg))
}

func (e *ValidationError) empty() bool {
	return e.errs.ErrorOrNil() == nil
}

func (e *ValidationError) Error() string {
	return "invalid order: " + strings.Join(e.Messages(), "; ")
}

// Messages returns the individual problems in the order they were found.
func (e *ValidationError) Messages() []string {
	if e.errs == nil {
		return nil
	}
	out := make([]string, 0, len(e.errs.Errors))
	for _, err := range e.errs.Errors {
		out = append(out, err.Error())
	}
	return out
}
