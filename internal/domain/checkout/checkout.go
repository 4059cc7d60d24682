// Package checkout implements the per-user checkout state machine that turns
// a cart into an order.
package checkout

import (
	"context"
	"strings"
	"time"

	"github.com/agromart/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// State is a checkout session state
type State string

// Checkout states
const (
	StateBuildingCart    State = "BUILDING_CART"
	StateSelectingMethod State = "SELECTING_METHOD"
	StateEnteringCard    State = "ENTERING_CARD"
	StateSubmitting      State = "SUBMITTING"
	StateConfirmed       State = "CONFIRMED"
	StateFailed          State = "FAILED"
)

// PaymentMethod is the card type chosen by the buyer
type PaymentMethod string

// Payment methods
const (
	MethodDebit  PaymentMethod = "debit"
	MethodCredit PaymentMethod = "credit"
)

// ParsePaymentMethod parses a payment method case-insensitively
func ParsePaymentMethod(s string) (PaymentMethod, bool) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(s)))
	return m, m == MethodDebit || m == MethodCredit
}

// CardDetails holds the raw card fields. Only presence is validated.
type CardDetails struct {
	Number string `json:"number"`
	Expiry string `json:"expiry"`
	CVV    string `json:"cvv"`
}

// Complete reports whether all three fields are non-empty
func (c CardDetails) Complete() bool {
	return strings.TrimSpace(c.Number) != "" &&
		strings.TrimSpace(c.Expiry) != "" &&
		strings.TrimSpace(c.CVV) != ""
}

// Last4 returns the last four characters of the card number
func (c CardDetails) Last4() string {
	n := strings.ReplaceAll(strings.TrimSpace(c.Number), " ", "")
	if len(n) <= 4 {
		return n
	}
	return n[len(n)-4:]
}

// CardOnFile is what a session keeps of the entered card. The full number
// and the CVV are never stored.
type CardOnFile struct {
	Last4  string `json:"last4"`
	Expiry string `json:"expiry"`
}

// Validation errors
var (
	ErrEmptyCart      = shared.NewDomainError("EMPTY_CART", "Your cart is empty")
	ErrNoMethod       = shared.NewDomainError("PAYMENT_METHOD_REQUIRED", "Please select a payment method (debit or credit)")
	ErrIncompleteCard = shared.NewDomainError("CARD_DETAILS_REQUIRED", "Card number, expiry and CVV are required")
	ErrSubmitting     = shared.NewDomainError("CONFLICT", "Order submission already in progress")
)

// Session is one user's progress through checkout
type Session struct {
	ID        uuid.UUID     `json:"id"`
	UserID    string        `json:"user_id"`
	State     State         `json:"state"`
	Method    PaymentMethod `json:"method,omitempty"`
	Card      *CardOnFile   `json:"card,omitempty"`
	OrderID   *uuid.UUID    `json:"order_id,omitempty"`
	LastError string        `json:"last_error,omitempty"`
	Attempts  int           `json:"attempts"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

// NewSession starts a checkout in BUILDING_CART
func NewSession(userID string) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.New(),
		UserID:    userID,
		State:     StateBuildingCart,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Proceed moves BUILDING_CART to SELECTING_METHOD. An empty cart is rejected
// and the state is left unchanged.
func (s *Session) Proceed(cartEmpty bool) error {
	if s.State != StateBuildingCart {
		return s.invalidState("proceed to payment")
	}
	if cartEmpty {
		return ErrEmptyCart
	}
	s.moveTo(StateSelectingMethod)
	return nil
}

// SelectMethod moves SELECTING_METHOD to ENTERING_CARD. The method may also
// be changed while entering card details.
func (s *Session) SelectMethod(raw string) error {
	if s.State != StateSelectingMethod && s.State != StateEnteringCard {
		return s.invalidState("select a payment method")
	}
	m, ok := ParsePaymentMethod(raw)
	if !ok {
		return ErrNoMethod
	}
	s.Method = m
	s.moveTo(StateEnteringCard)
	return nil
}

// EnterCard records the card once all three fields are present. Only the
// last four digits and the expiry are kept. Re-keying is also accepted after
// a failed submission.
func (s *Session) EnterCard(card CardDetails) error {
	if s.State != StateEnteringCard && s.State != StateFailed {
		return s.invalidState("enter card details")
	}
	if !card.Complete() {
		return ErrIncompleteCard
	}
	s.Card = &CardOnFile{
		Last4:  card.Last4(),
		Expiry: strings.TrimSpace(card.Expiry),
	}
	s.UpdatedAt = time.Now()
	return nil
}

// CanSubmit reports whether BeginSubmit would succeed
func (s *Session) CanSubmit() bool {
	return (s.State == StateEnteringCard || s.State == StateFailed) &&
		s.Method != "" && s.Card != nil
}

// BeginSubmit enters SUBMITTING from ENTERING_CARD or, for a retry, from
// FAILED. A session already SUBMITTING rejects the duplicate.
func (s *Session) BeginSubmit() error {
	switch {
	case s.State == StateSubmitting:
		return ErrSubmitting
	case s.State == StateFailed || s.State == StateEnteringCard:
		if s.Method == "" {
			return ErrNoMethod
		}
		if s.Card == nil {
			return ErrIncompleteCard
		}
	default:
		return s.invalidState("submit the order")
	}
	s.Attempts++
	s.LastError = ""
	s.moveTo(StateSubmitting)
	return nil
}

// Confirm moves SUBMITTING to CONFIRMED and drops the card details
func (s *Session) Confirm(orderID uuid.UUID) error {
	if s.State != StateSubmitting {
		return s.invalidState("confirm the order")
	}
	s.OrderID = &orderID
	s.Card = nil
	s.moveTo(StateConfirmed)
	return nil
}

// Fail moves SUBMITTING to FAILED. The card on file is kept for retry.
func (s *Session) Fail(cause error) error {
	if s.State != StateSubmitting {
		return s.invalidState("fail the order")
	}
	if cause != nil {
		s.LastError = cause.Error()
	}
	s.moveTo(StateFailed)
	return nil
}

// IsFinished reports whether the session reached CONFIRMED
func (s *Session) IsFinished() bool {
	return s.State == StateConfirmed
}

func (s *Session) moveTo(state State) {
	s.State = state
	s.UpdatedAt = time.Now()
}

func (s *Session) invalidState(action string) error {
	return shared.NewDomainError("INVALID_STATE", "Cannot "+action+" while checkout is "+string(s.State))
}

// View is the client-facing representation of a session. Card numbers are
// never exposed beyond the last four digits.
type View struct {
	ID           uuid.UUID     `json:"id"`
	State        State         `json:"state"`
	Method       PaymentMethod `json:"method,omitempty"`
	CardLast4    string        `json:"card_last4,omitempty"`
	CardExpiry   string        `json:"card_expiry,omitempty"`
	CardCaptured bool          `json:"card_captured"`
	OrderID      *uuid.UUID    `json:"order_id,omitempty"`
	LastError    string        `json:"last_error,omitempty"`
	Attempts     int           `json:"attempts"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// ToView masks the session for output
func (s *Session) ToView() View {
	v := View{
		ID:        s.ID,
		State:     s.State,
		Method:    s.Method,
		OrderID:   s.OrderID,
		LastError: s.LastError,
		Attempts:  s.Attempts,
		UpdatedAt: s.UpdatedAt,
	}
	if s.Card != nil {
		v.CardCaptured = true
		v.CardLast4 = s.Card.Last4
		v.CardExpiry = s.Card.Expiry
	}
	return v
}

// SessionStore keeps the active checkout session per user
type SessionStore interface {
	Get(ctx context.Context, userID string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Delete(ctx context.Context, userID string) error
}
