// Package checkout models the shipping, payment and review wizard of one session.
package checkout

// Step is a checkout wizard state.
type Step string

const (
	StepShipping Step = "shipping"
	StepPayment  Step = "payment"
	StepReview   Step = "review"
)

// transitions lists every allowed move. Anything absent is rejected.
var transitions = map[Step]map[Step]bool{
	StepShipping: {StepPayment: true},
	StepPayment:  {StepReview: true, StepShipping: true},
	StepReview:   {StepPayment: true},
}

var forward = map[Step]Step{
	StepShipping: StepPayment,
	StepPayment:  StepReview,
}

var backward = map[Step]Step{
	StepPayment: StepShipping,
	StepReview:  StepPayment,
}

// CanTransition reports whether from -> to is in the transition table.
func CanTransition(from, to Step) bool {
	return transitions[from][to]
}

// Next returns the step after s, if any.
func (s Step) Next() (Step, bool) {
	n, ok := forward[s]
	return n, ok
}

// Prev returns the step before s, if any.
func (s Step) Prev() (Step, bool) {
	p, ok := backward[s]
	return p, ok
}
