package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Status is the registration lifecycle state. The only transition is
// pending → paid, performed exactly once by the confirmation workflow.
type Status string

const (
	StatusPending Status = "pending"
	StatusPaid    Status = "paid"
)

// Contact holds a parent or emergency contact.
type Contact struct {
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Child is one child on a registration, with a sparse map from week id to
// that child's session selection for the week.
type Child struct {
	Name     string                      `json:"name"`
	Grade    string                      `json:"grade,omitempty"`
	Sessions map[string]SessionSelection `json:"sessions"`
}

// Registration is a family's registration attempt: the audit/billing record
// of what was requested, the pricing snapshot computed at submission time,
// and the payment lifecycle status. Records are never deleted.
type Registration struct {
	ID             string          `json:"id"`
	Season         string          `json:"season"`
	Parent         Contact         `json:"parent"`
	Emergency      Contact         `json:"emergency"`
	Children       []Child         `json:"children"`
	WaiverAccepted bool            `json:"waiver_accepted"`
	PromoCode      string          `json:"promo_code,omitempty"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	Status         Status          `json:"status"`
	PaymentID      string          `json:"payment_id"`
	CreatedAt      time.Time       `json:"created_at"`
	PaidAt         *time.Time      `json:"paid_at,omitempty"`
}

// ReferencesWeek reports whether any child holds a real booking (full week
// or at least one day) for the given week.
func (r *Registration) ReferencesWeek(weekID string) bool {
	for _, child := range r.Children {
		sel, ok := child.Sessions[weekID]
		if !ok {
			continue
		}
		if sel.BooksWeekly() || sel.BooksDaily() {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can hand out records without
// sharing the children slice or session maps.
func (r *Registration) Clone() *Registration {
	out := *r
	out.Children = make([]Child, len(r.Children))
	for i, child := range r.Children {
		c := child
		c.Sessions = make(map[string]SessionSelection, len(child.Sessions))
		for weekID, sel := range child.Sessions {
			if sel.Days != nil {
				sel.Days = append([]string(nil), sel.Days...)
			}
			c.Sessions[weekID] = sel
		}
		out.Children[i] = c
	}
	if r.PaidAt != nil {
		paidAt := *r.PaidAt
		out.PaidAt = &paidAt
	}
	return &out
}

// Stats aggregates the registration history for the admin dashboard.
type Stats struct {
	TotalKids     int                `json:"total_kids"`
	TotalRevenue  decimal.Decimal    `json:"total_revenue"`
	TotalFamilies int                `json:"total_families"`
	PendingCount  int                `json:"pending_count"`
	Weeks         []WeekAvailability `json:"weeks"`
}

// ErrorResponse is a standard JSON error envelope.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ConfirmResult summarises the outcome of one confirmation callback.
// Applied is false for the benign no-op branches: unknown payment id, or a
// registration that was already paid (duplicate delivery).
type ConfirmResult struct {
	Applied      bool          `json:"applied"`
	Registration *Registration `json:"registration,omitempty"`
}
