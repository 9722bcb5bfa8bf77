// Package checkout drives the four-step checkout wizard: details, shipping,
// payment and review.
package checkout

import (
	"context"
	"sync"

	"github.com/fjod/fitlyf/pkg/contracts"
)

// Placer submits a completed form and returns the new order id.
type Placer interface {
	Submit(ctx context.Context, form Form) (string, error)
}

// Sequencer is a linear state machine over the checkout steps. Next only
// advances when the current step validates; Previous always goes back.
type Sequencer struct {
	mu   sync.Mutex
	step Step
	form Form
}

func NewSequencer() *Sequencer {
	return &Sequencer{step: StepDetails, form: NewForm()}
}

func (s *Sequencer) Step() Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.step
}

func (s *Sequencer) Form() Form {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.form
}

func (s *Sequencer) SetCustomer(c contracts.Customer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.Customer = c
}

func (s *Sequencer) SetShipping(u ShippingUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.ShippingMethod = u.Method
	s.form.GiftWrap = u.GiftWrap
	s.form.Notes = u.Notes
}

func (s *Sequencer) SetPayment(u PaymentUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form.PaymentMethod = u.Method
	s.form.TermsAccepted = u.TermsAccepted
}

// Next validates the current step and advances. On failure the step is
// unchanged and a *ValidationError is returned. Next at Review is a no-op.
func (s *Sequencer) Next() (Step, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := transitions[s.step]
	if !ok {
		return s.step, nil
	}
	if fields := t.validate(s.form); len(fields) > 0 {
		return s.step, newValidationError(s.step, fields)
	}
	s.step = t.next
	return s.step, nil
}

// Previous goes back one step without validating.
func (s *Sequencer) Previous() Step {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.step > StepDetails {
		s.step--
	}
	return s.step
}

// Reset returns to Details with an empty form.
func (s *Sequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.step = StepDetails
	s.form = NewForm()
}

// PlaceOrder hands the form to p. It is only allowed at Review, and every step
// is validated again because the form may have been edited since. A
// successful placement resets the wizard; a failed one leaves it as it was.
func (s *Sequencer) PlaceOrder(ctx context.Context, p Placer) (string, error) {
	s.mu.Lock()
	if s.step != StepReview {
		s.mu.Unlock()
		return "", ErrNotReadyToPlace
	}
	form := s.form.normalized()
	s.mu.Unlock()

	for _, step := range []Step{StepDetails, StepShipping, StepPayment} {
		if fields := transitions[step].validate(form); len(fields) > 0 {
			return "", newValidationError(step, fields)
		}
	}

	orderID, err := p.Submit(ctx, form)
	if err != nil {
		return "", err
	}
	s.Reset()
	return orderID, nil
}
