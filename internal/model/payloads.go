package model

import (
	"fmt"
	"net/mail"
	"strings"

	"github.com/shopspring/decimal"
)

// CreateRegistrationRequest is the payload from the client-facing submission
// flow. Pricing is a snapshot already computed client-side; the payment id
// was issued by the payment processor at authorization time and doubles as
// the idempotency key for confirmation.
type CreateRegistrationRequest struct {
	Season         string          `json:"season"`
	Parent         Contact         `json:"parent"`
	Emergency      Contact         `json:"emergency"`
	Children       []Child         `json:"children"`
	WaiverAccepted bool            `json:"waiver_accepted"`
	PromoCode      string          `json:"promo_code"`
	Subtotal       decimal.Decimal `json:"subtotal"`
	Discount       decimal.Decimal `json:"discount"`
	Total          decimal.Decimal `json:"total"`
	PaymentID      string          `json:"payment_id"`
}

// Validate checks the payload before it is converted into the typed model.
// Internal invariants must never be exposed to malformed input.
func (r *CreateRegistrationRequest) Validate() error {
	r.Parent.Name = strings.TrimSpace(r.Parent.Name)
	r.Parent.Email = strings.TrimSpace(strings.ToLower(r.Parent.Email))
	r.PaymentID = strings.TrimSpace(r.PaymentID)

	if r.Parent.Name == "" {
		return fmt.Errorf("parent name is required")
	}
	if _, err := mail.ParseAddress(r.Parent.Email); err != nil {
		return fmt.Errorf("parent email is not a valid email address")
	}
	if len(r.Children) == 0 {
		return fmt.Errorf("at least one child is required")
	}
	for i, child := range r.Children {
		if strings.TrimSpace(child.Name) == "" {
			return fmt.Errorf("child %d: name is required", i+1)
		}
		for weekID, sel := range child.Sessions {
			if sel.Type == SessionDays && len(sel.Days) == 0 {
				return fmt.Errorf("child %d: week %s: day selection has no days", i+1, weekID)
			}
		}
	}
	if !r.WaiverAccepted {
		return fmt.Errorf("waiver must be accepted")
	}
	if r.PaymentID == "" {
		return fmt.Errorf("payment_id is required")
	}
	if r.Subtotal.IsNegative() || r.Discount.IsNegative() || r.Total.IsNegative() {
		return fmt.Errorf("pricing amounts cannot be negative")
	}
	if r.Discount.GreaterThan(r.Subtotal) {
		return fmt.Errorf("discount cannot exceed subtotal")
	}
	if !r.Subtotal.Sub(r.Discount).Equal(r.Total) {
		return fmt.Errorf("total does not match subtotal minus discount")
	}
	return nil
}

// CreatePromoRequest is the administrative payload for creating a code.
type CreatePromoRequest struct {
	Code        string          `json:"code"`
	Type        PromoType       `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	MaxUses     *int            `json:"max_uses"`
}

// Validate canonicalizes the code and checks the discount terms.
func (r *CreatePromoRequest) Validate() error {
	r.Code = CanonicalCode(r.Code)
	if r.Code == "" {
		return fmt.Errorf("code is required")
	}
	if !ValidPromoType(r.Type) {
		return fmt.Errorf("unknown promo type %q", r.Type)
	}
	if r.Value.IsNegative() {
		return fmt.Errorf("value cannot be negative")
	}
	if r.MaxUses != nil && *r.MaxUses <= 0 {
		return fmt.Errorf("max_uses must be a positive integer")
	}
	return nil
}

// TogglePromoRequest sets or flips a code's active flag: when Active is
// omitted the flag is flipped, otherwise it is assigned.
type TogglePromoRequest struct {
	Active *bool `json:"active"`
}

// ValidatePromoRequest carries a code as typed by the shopper.
type ValidatePromoRequest struct {
	Code string `json:"code"`
}

// ConfirmRequest is the payment processor's confirmation callback body.
type ConfirmRequest struct {
	PaymentID string `json:"payment_id"`
}
