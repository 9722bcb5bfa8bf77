package checkout

import (
	"errors"
	"fmt"
	"strings"

	"github.com/hashicorp/go-multierror"
)

var ErrNotReadyToPlace = errors.New("order can only be placed from the review step")

// ValidationError lists every field that blocked a step transition.
type ValidationError struct {
	Step   Step
	Fields []FieldError
	errs   *multierror.Error
}

func newValidationError(step Step, fields []FieldError) *ValidationError {
	merr := &multierror.Error{}
	for _, f := range fields {
		merr = multierror.Append(merr, f)
	}
	merr.ErrorFormat = func(es []error) string {
		msgs := make([]string, len(es))
		for i, e := range es {
			msgs[i] = e.Error()
		}
		return strings.Join(msgs, "; ")
	}
	return &ValidationError{Step: step, Fields: fields, errs: merr}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s step is incomplete: %s", e.Step, e.errs.Error())
}

func (e *ValidationError) Unwrap() error {
	return e.errs
}

// Messages maps each field to its message. A field keeps its first message.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		if _, ok := out[f.Field]; !ok {
			out[f.Field] = f.Message
		}
	}
	return out
}
