// Package storage defines the persistence contract shared by the Postgres
// and in-memory backends. All shared state (ledger counters, promo usage,
// registration status) lives behind this interface; Update is the sole
// coordination point between concurrent confirmation callbacks.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/oakhollow/camp-registration/internal/model"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDuplicateCode is returned when a promo code's canonical form already exists.
var ErrDuplicateCode = errors.New("promo code already exists")

// ErrDuplicateWeek is returned when a camp week id already exists.
var ErrDuplicateWeek = errors.New("camp week already exists")

// ErrDuplicatePayment is returned when a registration reuses a payment id.
var ErrDuplicatePayment = errors.New("payment id already registered")

// RegistrationFilter narrows a registration listing. Zero values match all.
type RegistrationFilter struct {
	// WeekID matches registrations where any child holds a real booking
	// (full week or days) for the week.
	WeekID string
	// Status matches the lifecycle status exactly.
	Status model.Status
	// Query is a case-insensitive substring match against parent and child
	// names and the parent email.
	Query string
}

// Store is the durable document store.
type Store interface {
	// Camp weeks.
	CreateWeek(ctx context.Context, week *model.CampWeek) error
	ListWeeks(ctx context.Context) ([]model.CampWeek, error)
	HasWeeks(ctx context.Context) (bool, error)

	// Promo codes. Codes are keyed by canonical form.
	CreatePromo(ctx context.Context, promo *model.PromoCode) error
	GetPromo(ctx context.Context, code string) (*model.PromoCode, error)
	TogglePromo(ctx context.Context, code string, active *bool) (*model.PromoCode, error)
	HasPromos(ctx context.Context) (bool, error)

	// Registrations. Listing is newest first.
	CreateRegistration(ctx context.Context, reg *model.Registration) error
	ListRegistrations(ctx context.Context, filter RegistrationFilter) ([]model.Registration, error)

	// Update runs fn as one atomic unit: every read and write inside a
	// single invocation commits together or not at all, and invocations
	// touching overlapping records are serialized against each other.
	// A non-nil error from fn rolls the unit back.
	Update(ctx context.Context, fn func(tx ConfirmTx) error) error
}

// ConfirmTx is the transactional view used by the confirmation workflow.
type ConfirmTx interface {
	// RegistrationByPaymentID locks and returns the registration holding
	// the payment id, or ErrNotFound.
	RegistrationByPaymentID(ctx context.Context, paymentID string) (*model.Registration, error)

	// MarkPaid flips the registration to paid and records the timestamp.
	MarkPaid(ctx context.Context, regID string, paidAt time.Time) error

	// RedeemPromo increments the code's used count, clamped at max_uses.
	// An unknown code is a no-op.
	RedeemPromo(ctx context.Context, code string) error

	// AddWeeklyUsage adjusts a week's weekly_used counter, clamped to
	// [0, weekly_slots]. An unknown week is a no-op.
	AddWeeklyUsage(ctx context.Context, weekID string, n int) error

	// AddDailyUsage adjusts a week's daily_used counter, clamped to
	// [0, daily_slots]. An unknown week is a no-op.
	AddDailyUsage(ctx context.Context, weekID string, n int) error
}
