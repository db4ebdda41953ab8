package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/storage"
)

// maxTxAttempts bounds the optimistic retry of a confirmation unit that
// loses a serialization conflict. Confirmation has no side effects outside
// the store until commit, so replaying the whole unit is safe.
const maxTxAttempts = 3

// Update runs fn inside one serializable transaction, retrying on
// serialization failures and deadlocks.
func (s *Store) Update(ctx context.Context, fn func(tx storage.ConfirmTx) error) error {
	var err error
	for attempt := 1; attempt <= maxTxAttempts; attempt++ {
		err = s.runUpdate(ctx, fn)
		if err == nil || !isRetryable(err) {
			return err
		}
	}
	return fmt.Errorf("confirmation transaction: %w", err)
}

func (s *Store) runUpdate(ctx context.Context, fn func(tx storage.ConfirmTx) error) error {
	tx, err := s.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	if err = fn(&pgTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// pgTx is the transactional view handed to the confirmation workflow.
type pgTx struct {
	tx pgx.Tx
}

// RegistrationByPaymentID locks the registration row for the duration of
// the transaction. Concurrent confirmations for the same payment id block
// here until the first one commits, so the loser re-reads the row and sees
// status already paid.
func (t *pgTx) RegistrationByPaymentID(ctx context.Context, paymentID string) (*model.Registration, error) {
	row := t.tx.QueryRow(ctx,
		`SELECT `+registrationColumns+`
		 FROM registrations
		 WHERE payment_id = $1
		 FOR UPDATE`,
		paymentID,
	)
	reg, err := scanRegistration(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("lock registration row: %w", err)
	}
	return reg, nil
}

func (t *pgTx) MarkPaid(ctx context.Context, regID string, paidAt time.Time) error {
	tag, err := t.tx.Exec(ctx,
		`UPDATE registrations SET status = $2, paid_at = $3 WHERE id = $1`,
		regID, string(model.StatusPaid), paidAt,
	)
	if err != nil {
		return fmt.Errorf("mark registration paid: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrNotFound
	}
	return nil
}

// RedeemPromo increments usage, saturating at max_uses. An unknown code
// affects zero rows, which is the intended no-op.
func (t *pgTx) RedeemPromo(ctx context.Context, code string) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE promo_codes
		 SET used_count = LEAST(used_count + 1, COALESCE(max_uses, used_count + 1))
		 WHERE code = $1`,
		code,
	)
	if err != nil {
		return fmt.Errorf("redeem promo: %w", err)
	}
	return nil
}

// AddWeeklyUsage adjusts the weekly counter as one atomic statement: the
// read-modify-write happens inside the UPDATE, and the result is clamped
// to [0, weekly_slots]. Unknown weeks affect zero rows.
func (t *pgTx) AddWeeklyUsage(ctx context.Context, weekID string, n int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE camp_weeks
		 SET weekly_used = LEAST(weekly_slots, GREATEST(0, weekly_used + $2))
		 WHERE id = $1`,
		weekID, n,
	)
	if err != nil {
		return fmt.Errorf("increment weekly usage: %w", err)
	}
	return nil
}

func (t *pgTx) AddDailyUsage(ctx context.Context, weekID string, n int) error {
	_, err := t.tx.Exec(ctx,
		`UPDATE camp_weeks
		 SET daily_used = LEAST(daily_slots, GREATEST(0, daily_used + $2))
		 WHERE id = $1`,
		weekID, n,
	)
	if err != nil {
		return fmt.Errorf("increment daily usage: %w", err)
	}
	return nil
}

// isRetryable reports whether the transaction lost a serialization
// conflict (SQLSTATE 40001) or a deadlock (40P01) and should be replayed.
func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "40001" || pgErr.Code == "40P01"
}
