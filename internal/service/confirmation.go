package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/storage"
)

// Confirm applies a payment processor confirmation callback. It is the
// only path that mutates the availability ledger and promo usage, and it
// is idempotent: the payment id is the idempotency key, and callbacks are
// not guaranteed exactly-once delivery.
//
// The whole unit — status flip, promo redemption, ledger reconciliation —
// commits atomically through store.Update, so a concurrent availability
// read never observes a paid registration whose slot increments are still
// pending, and a transient failure before commit leaves the callback
// safely retriable.
func (s *Service) Confirm(ctx context.Context, paymentID string) (*model.ConfirmResult, error) {
	result := &model.ConfirmResult{}
	err := s.store.Update(ctx, func(tx storage.ConfirmTx) error {
		// The store may replay this unit after losing a serialization
		// conflict; only the attempt that commits decides the outcome.
		*result = model.ConfirmResult{}

		reg, err := tx.RegistrationByPaymentID(ctx, paymentID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				// The callback may reference a payment this system never
				// created, or a duplicate delivered after the record was
				// removed. Benign no-op.
				return nil
			}
			return err
		}
		if reg.Status == model.StatusPaid {
			// Idempotency guard: re-confirmation must never
			// double-increment the ledger or the promo counter.
			result.Registration = reg
			return nil
		}

		paidAt := s.now()
		if err := tx.MarkPaid(ctx, reg.ID, paidAt); err != nil {
			return err
		}
		if reg.PromoCode != "" {
			if err := tx.RedeemPromo(ctx, reg.PromoCode); err != nil {
				return err
			}
		}
		if err := reconcile(ctx, tx, reg); err != nil {
			return err
		}

		reg.Status = model.StatusPaid
		reg.PaidAt = &paidAt
		result.Applied = true
		result.Registration = reg
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("confirm payment %s: %w", paymentID, err)
	}

	if result.Applied {
		s.log.Info("payment confirmed",
			zap.String("payment_id", paymentID),
			zap.String("registration_id", result.Registration.ID),
		)
	} else {
		s.log.Info("payment confirmation ignored", zap.String("payment_id", paymentID))
	}
	return result, nil
}

// reconcile applies a paid registration's session selections to the
// availability ledger: one full-week slot per child per full-week
// selection, one daily slot unit per child per week with at least one day
// chosen. "none" selections and unknown weeks are skipped silently — the
// caller cannot be blocked on this system's referential integrity.
//
// Deliberately a per-child, per-week loop rather than bulk arithmetic:
// the session map is sparse and each child may touch a different subset
// of weeks.
func reconcile(ctx context.Context, tx storage.ConfirmTx, reg *model.Registration) error {
	for _, child := range reg.Children {
		for weekID, sel := range child.Sessions {
			switch {
			case sel.BooksWeekly():
				if err := tx.AddWeeklyUsage(ctx, weekID, 1); err != nil {
					return err
				}
			case sel.BooksDaily():
				if err := tx.AddDailyUsage(ctx, weekID, 1); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
