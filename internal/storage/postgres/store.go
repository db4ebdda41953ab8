package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/storage"
)

func (s *Store) CreateWeek(ctx context.Context, week *model.CampWeek) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO camp_weeks (id, label, start_date, end_date, weekly_slots, weekly_used, daily_slots, daily_used)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		week.ID, week.Label, week.StartDate, week.EndDate,
		week.WeeklySlots, week.WeeklyUsed, week.DailySlots, week.DailyUsed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateWeek
		}
		return fmt.Errorf("insert week: %w", err)
	}
	return nil
}

func (s *Store) ListWeeks(ctx context.Context) ([]model.CampWeek, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, label, start_date, end_date, weekly_slots, weekly_used, daily_slots, daily_used
		 FROM camp_weeks
		 ORDER BY start_date ASC, id ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list weeks: %w", err)
	}
	defer rows.Close()

	var weeks []model.CampWeek
	for rows.Next() {
		var w model.CampWeek
		if err := rows.Scan(&w.ID, &w.Label, &w.StartDate, &w.EndDate,
			&w.WeeklySlots, &w.WeeklyUsed, &w.DailySlots, &w.DailyUsed); err != nil {
			return nil, fmt.Errorf("scan week: %w", err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func (s *Store) HasWeeks(ctx context.Context) (bool, error) {
	return s.hasAny(ctx, "camp_weeks")
}

func (s *Store) CreatePromo(ctx context.Context, promo *model.PromoCode) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO promo_codes (id, code, type, value, description, active, used_count, max_uses, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		promo.ID, promo.Code, string(promo.Type), promo.Value, promo.Description,
		promo.Active, promo.UsedCount, promo.MaxUses, promo.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicateCode
		}
		return fmt.Errorf("insert promo: %w", err)
	}
	return nil
}

func (s *Store) GetPromo(ctx context.Context, code string) (*model.PromoCode, error) {
	var p model.PromoCode
	var promoType string
	err := s.pool.QueryRow(ctx,
		`SELECT id, code, type, value, description, active, used_count, max_uses, created_at
		 FROM promo_codes WHERE code = $1`,
		code,
	).Scan(&p.ID, &p.Code, &promoType, &p.Value, &p.Description,
		&p.Active, &p.UsedCount, &p.MaxUses, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get promo: %w", err)
	}
	p.Type = model.PromoType(promoType)
	return &p, nil
}

func (s *Store) TogglePromo(ctx context.Context, code string, active *bool) (*model.PromoCode, error) {
	var err error
	if active != nil {
		_, err = s.pool.Exec(ctx,
			`UPDATE promo_codes SET active = $2 WHERE code = $1`, code, *active)
	} else {
		_, err = s.pool.Exec(ctx,
			`UPDATE promo_codes SET active = NOT active WHERE code = $1`, code)
	}
	if err != nil {
		return nil, fmt.Errorf("toggle promo: %w", err)
	}
	return s.GetPromo(ctx, code)
}

func (s *Store) HasPromos(ctx context.Context) (bool, error) {
	return s.hasAny(ctx, "promo_codes")
}

func (s *Store) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	parent, emergency, children, err := marshalRegistrationDocs(reg)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`INSERT INTO registrations (id, season, parent, emergency, children, waiver_accepted,
		                            promo_code, subtotal, discount, total, status, payment_id, created_at, paid_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		reg.ID, reg.Season, parent, emergency, children, reg.WaiverAccepted,
		reg.PromoCode, reg.Subtotal, reg.Discount, reg.Total,
		string(reg.Status), reg.PaymentID, reg.CreatedAt, reg.PaidAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return storage.ErrDuplicatePayment
		}
		return fmt.Errorf("insert registration: %w", err)
	}
	return nil
}

const registrationColumns = `id, season, parent, emergency, children, waiver_accepted,
	promo_code, subtotal, discount, total, status, payment_id, created_at, paid_at`

func (s *Store) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]model.Registration, error) {
	query := `SELECT ` + registrationColumns + ` FROM registrations`
	var clauses []string
	var args []any

	if filter.Status != "" {
		args = append(args, string(filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.WeekID != "" {
		args = append(args, filter.WeekID)
		n := len(args)
		// Matches Registration.ReferencesWeek: a full-week booking, or a
		// day selection with at least one day.
		clauses = append(clauses, fmt.Sprintf(
			`EXISTS (
				SELECT 1 FROM jsonb_array_elements(children) AS c
				WHERE c->'sessions'->$%d->>'type' = 'full_week'
				   OR (c->'sessions'->$%d->>'type' = 'days'
				       AND jsonb_array_length(c->'sessions'->$%d->'days') > 0)
			)`, n, n, n))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		n := len(args)
		clauses = append(clauses, fmt.Sprintf(
			`(parent->>'name' ILIKE $%d OR parent->>'email' ILIKE $%d OR EXISTS (
				SELECT 1 FROM jsonb_array_elements(children) AS c WHERE c->>'name' ILIKE $%d
			))`, n, n, n))
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	defer rows.Close()

	var regs []model.Registration
	for rows.Next() {
		reg, err := scanRegistration(rows)
		if err != nil {
			return nil, err
		}
		regs = append(regs, *reg)
	}
	return regs, rows.Err()
}

func (s *Store) hasAny(ctx context.Context, table string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM `+table+`)`).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("probe %s: %w", table, err)
	}
	return exists, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRegistration(row rowScanner) (*model.Registration, error) {
	var reg model.Registration
	var status string
	var parent, emergency, children []byte
	err := row.Scan(&reg.ID, &reg.Season, &parent, &emergency, &children, &reg.WaiverAccepted,
		&reg.PromoCode, &reg.Subtotal, &reg.Discount, &reg.Total,
		&status, &reg.PaymentID, &reg.CreatedAt, &reg.PaidAt)
	if err != nil {
		return nil, err
	}
	reg.Status = model.Status(status)
	if err := json.Unmarshal(parent, &reg.Parent); err != nil {
		return nil, fmt.Errorf("decode parent: %w", err)
	}
	if err := json.Unmarshal(emergency, &reg.Emergency); err != nil {
		return nil, fmt.Errorf("decode emergency contact: %w", err)
	}
	if err := json.Unmarshal(children, &reg.Children); err != nil {
		return nil, fmt.Errorf("decode children: %w", err)
	}
	return &reg, nil
}

func marshalRegistrationDocs(reg *model.Registration) (parent, emergency, children []byte, err error) {
	if parent, err = json.Marshal(reg.Parent); err != nil {
		return nil, nil, nil, fmt.Errorf("encode parent: %w", err)
	}
	if emergency, err = json.Marshal(reg.Emergency); err != nil {
		return nil, nil, nil, fmt.Errorf("encode emergency contact: %w", err)
	}
	if children, err = json.Marshal(reg.Children); err != nil {
		return nil, nil, nil, fmt.Errorf("encode children: %w", err)
	}
	return parent, emergency, children, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
