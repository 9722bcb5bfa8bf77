package checkout

import (
	"encoding/json"
	"fmt"
)

// Step is a page of the checkout wizard.
type Step int

const (
	StepDetails Step = iota
	StepShipping
	StepPayment
	StepReview
)

var stepNames = [...]string{"details", "shipping", "payment", "review"}

func (s Step) String() string {
	if s < StepDetails || s > StepReview {
		return fmt.Sprintf("step(%d)", int(s))
	}
	return stepNames[s]
}

// Number is the 1-based position shown to the user.
func (s Step) Number() int {
	return int(s) + 1
}

func (s Step) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Step) UnmarshalJSON(b []byte) error {
	var name string
	if err := json.Unmarshal(b, &name); err != nil {
		return err
	}
	for i, n := range stepNames {
		if n == name {
			*s = Step(i)
			return nil
		}
	}
	return fmt.Errorf("unknown checkout step %q", name)
}

// transition is the gate out of a step.
type transition struct {
	next     Step
	validate func(Form) []FieldError
}

var transitions = map[Step]transition{
	StepDetails:  {next: StepShipping, validate: validateDetails},
	StepShipping: {next: StepPayment, validate: validateShipping},
	StepPayment:  {next: StepReview, validate: validatePayment},
}
