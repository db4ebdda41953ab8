package model

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// PromoType identifies how a promo code discounts a registration.
type PromoType string

const (
	PromoPercent  PromoType = "percent"
	PromoFixed    PromoType = "fixed_amount"
	PromoFreeDays PromoType = "free_days"
)

// ValidPromoType reports whether t is a known discount type.
func ValidPromoType(t PromoType) bool {
	switch t {
	case PromoPercent, PromoFixed, PromoFreeDays:
		return true
	}
	return false
}

// PromoCode is a discount code with an optional redemption cap.
// Code always holds the canonical form.
type PromoCode struct {
	ID          string          `json:"id"`
	Code        string          `json:"code"`
	Type        PromoType       `json:"type"`
	Value       decimal.Decimal `json:"value"`
	Description string          `json:"description"`
	Active      bool            `json:"active"`
	UsedCount   int             `json:"used_count"`
	MaxUses     *int            `json:"max_uses,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

// CanonicalCode normalizes a submitted code for lookup and storage:
// surrounding whitespace is stripped and the result upper-cased, so
// "  earlybird " and "EARLYBIRD" resolve to the same record.
func CanonicalCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Usable reports whether the code may still be applied to a new
// registration: it must be active and not exhausted.
func (p *PromoCode) Usable() bool {
	if !p.Active {
		return false
	}
	if p.MaxUses != nil && p.UsedCount >= *p.MaxUses {
		return false
	}
	return true
}

// Validation is the read model returned to a shopping client. Checking a
// code never reserves or consumes a use.
func (p *PromoCode) Validation() PromoValidation {
	v := PromoValidation{Valid: p.Usable()}
	if v.Valid {
		v.Code = p.Code
		v.Type = p.Type
		v.Value = p.Value
		v.Description = p.Description
	}
	return v
}

// PromoValidation is the outcome of validating a submitted code.
type PromoValidation struct {
	Valid       bool            `json:"valid"`
	Code        string          `json:"code,omitempty"`
	Type        PromoType       `json:"type,omitempty"`
	Value       decimal.Decimal `json:"value,omitempty"`
	Description string          `json:"description,omitempty"`
}
