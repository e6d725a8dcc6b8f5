package checkout

import (
	"bihar-bazaar/internal/model"
)

// PendingPayment is an order created for online payment that awaits the gateway callback.
type PendingPayment struct {
	Order   model.Order
	Handoff model.PaymentHandoff
}

// Session is the transient checkout state. It is not safe for concurrent use;
// callers serialise access per visitor.
type Session struct {
	step              Step
	selectedAddressID string
	paymentMethod     model.PaymentMethod
	deliveryNotes     string
	coupon            *model.Coupon
	pending           *PendingPayment
}

// NewSession starts at shipping with online payment selected.
func NewSession() *Session {
	return &Session{
		step:          StepShipping,
		paymentMethod: model.PaymentOnline,
	}
}

// View is the serialisable form of a Session.
type View struct {
	Step              Step                `json:"activeStep"`
	SelectedAddressID string              `json:"selectedAddressId,omitempty"`
	PaymentMethod     model.PaymentMethod `json:"paymentMethod"`
	DeliveryNotes     string              `json:"deliveryNotes,omitempty"`
	AppliedCoupon     *model.Coupon       `json:"appliedCoupon,omitempty"`
	AwaitingPayment   bool                `json:"awaitingPayment"`
	CanPlaceOrder     bool                `json:"canPlaceOrder"`
}

func (s *Session) View() View {
	v := View{
		Step:              s.step,
		SelectedAddressID: s.selectedAddressID,
		PaymentMethod:     s.paymentMethod,
		DeliveryNotes:     s.deliveryNotes,
		AwaitingPayment:   s.pending != nil,
		CanPlaceOrder:     s.CanPlaceOrder(),
	}
	if s.coupon != nil {
		c := *s.coupon
		v.AppliedCoupon = &c
	}
	return v
}

func (s *Session) Step() Step                         { return s.step }
func (s *Session) SelectedAddressID() string          { return s.selectedAddressID }
func (s *Session) PaymentMethod() model.PaymentMethod { return s.paymentMethod }
func (s *Session) DeliveryNotes() string              { return s.deliveryNotes }

// Coupon returns the applied coupon or nil.
func (s *Session) Coupon() *model.Coupon {
	if s.coupon == nil {
		return nil
	}
	c := *s.coupon
	return &c
}

// SelectAddress records the shipping address. Existence is checked by the caller.
func (s *Session) SelectAddress(id string) {
	s.selectedAddressID = id
}

func (s *Session) SetPaymentMethod(m model.PaymentMethod) error {
	if _, err := model.ParsePaymentMethod(string(m)); err != nil {
		return err
	}
	s.paymentMethod = m
	return nil
}

func (s *Session) SetDeliveryNotes(notes string) {
	s.deliveryNotes = notes
}

// ApplyCoupon replaces any applied coupon.
func (s *Session) ApplyCoupon(c model.Coupon) {
	s.coupon = &c
}

func (s *Session) RemoveCoupon() {
	s.coupon = nil
}

// Advance moves one step forward. Leaving shipping requires a selected address;
// on failure the step is unchanged.
func (s *Session) Advance() (Step, error) {
	next, ok := s.step.Next()
	if !ok {
		return s.step, model.ErrInvalidStep
	}
	if s.step == StepShipping && s.selectedAddressID == "" {
		return s.step, model.ErrAddressRequired
	}
	return s.moveTo(next)
}

// Back moves one step backward. There is no step before shipping.
func (s *Session) Back() (Step, error) {
	prev, ok := s.step.Prev()
	if !ok {
		return s.step, model.ErrInvalidStep
	}
	return s.moveTo(prev)
}

func (s *Session) moveTo(to Step) (Step, error) {
	if !CanTransition(s.step, to) {
		return s.step, model.ErrInvalidStep
	}
	s.step = to
	return s.step, nil
}

// CanPlaceOrder reports whether submission is allowed, which is only from review.
func (s *Session) CanPlaceOrder() bool {
	return s.step == StepReview && s.selectedAddressID != ""
}

// SetPendingPayment remembers an online order awaiting gateway confirmation.
func (s *Session) SetPendingPayment(p PendingPayment) {
	s.pending = &p
}

// PendingPayment returns the order awaiting payment, or nil.
func (s *Session) PendingPayment() *PendingPayment {
	return s.pending
}
