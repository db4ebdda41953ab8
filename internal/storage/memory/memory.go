// Package memory implements storage.Store with in-process maps. It backs
// the test suite and the STORE=memory development mode. Update holds the
// write lock for the whole callback, which gives each invocation the same
// all-or-nothing, serialized view the Postgres backend provides with a
// transaction.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/storage"
)

// Store is a mutex-guarded in-memory document store.
type Store struct {
	mu            sync.RWMutex
	weeks         map[string]*model.CampWeek
	weekOrder     []string
	promos        map[string]*model.PromoCode
	registrations map[string]*model.Registration
	byPayment     map[string]string // payment id → registration id
}

// New constructs an empty Store.
func New() *Store {
	return &Store{
		weeks:         make(map[string]*model.CampWeek),
		promos:        make(map[string]*model.PromoCode),
		registrations: make(map[string]*model.Registration),
		byPayment:     make(map[string]string),
	}
}

func (s *Store) CreateWeek(ctx context.Context, week *model.CampWeek) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.weeks[week.ID]; ok {
		return storage.ErrDuplicateWeek
	}
	w := *week
	s.weekOrder = append(s.weekOrder, w.ID)
	s.weeks[w.ID] = &w
	return nil
}

func (s *Store) ListWeeks(ctx context.Context) ([]model.CampWeek, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.CampWeek, 0, len(s.weekOrder))
	for _, id := range s.weekOrder {
		out = append(out, *s.weeks[id])
	}
	return out, nil
}

func (s *Store) HasWeeks(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.weeks) > 0, nil
}

func (s *Store) CreatePromo(ctx context.Context, promo *model.PromoCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.promos[promo.Code]; ok {
		return storage.ErrDuplicateCode
	}
	s.promos[promo.Code] = clonePromo(promo)
	return nil
}

func (s *Store) GetPromo(ctx context.Context, code string) (*model.PromoCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	promo, ok := s.promos[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return clonePromo(promo), nil
}

func (s *Store) TogglePromo(ctx context.Context, code string, active *bool) (*model.PromoCode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	promo, ok := s.promos[code]
	if !ok {
		return nil, storage.ErrNotFound
	}
	if active != nil {
		promo.Active = *active
	} else {
		promo.Active = !promo.Active
	}
	return clonePromo(promo), nil
}

func (s *Store) HasPromos(ctx context.Context) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.promos) > 0, nil
}

func (s *Store) CreateRegistration(ctx context.Context, reg *model.Registration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byPayment[reg.PaymentID]; ok {
		return storage.ErrDuplicatePayment
	}
	s.registrations[reg.ID] = reg.Clone()
	s.byPayment[reg.PaymentID] = reg.ID
	return nil
}

func (s *Store) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]model.Registration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []model.Registration
	for _, reg := range s.registrations {
		if !matches(reg, filter) {
			continue
		}
		out = append(out, *reg.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	return out, nil
}

func matches(reg *model.Registration, filter storage.RegistrationFilter) bool {
	if filter.Status != "" && reg.Status != filter.Status {
		return false
	}
	if filter.WeekID != "" && !reg.ReferencesWeek(filter.WeekID) {
		return false
	}
	if filter.Query != "" {
		q := strings.ToLower(filter.Query)
		hit := strings.Contains(strings.ToLower(reg.Parent.Name), q) ||
			strings.Contains(strings.ToLower(reg.Parent.Email), q)
		for _, child := range reg.Children {
			hit = hit || strings.Contains(strings.ToLower(child.Name), q)
		}
		if !hit {
			return false
		}
	}
	return true
}

// Update runs fn under the write lock. Mutations made through the tx view
// are staged and applied only when fn returns nil, so a failed unit leaves
// the store untouched.
func (s *Store) Update(ctx context.Context, fn func(tx storage.ConfirmTx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	tx := &memTx{store: s}
	if err := fn(tx); err != nil {
		return err
	}
	for _, apply := range tx.staged {
		apply()
	}
	return nil
}

// memTx stages mutations as closures applied in order on commit.
type memTx struct {
	store  *Store
	staged []func()
}

func (t *memTx) stage(apply func()) {
	t.staged = append(t.staged, apply)
}

func (t *memTx) RegistrationByPaymentID(ctx context.Context, paymentID string) (*model.Registration, error) {
	id, ok := t.store.byPayment[paymentID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return t.store.registrations[id].Clone(), nil
}

func (t *memTx) MarkPaid(ctx context.Context, regID string, paidAt time.Time) error {
	reg, ok := t.store.registrations[regID]
	if !ok {
		return storage.ErrNotFound
	}
	at := paidAt
	t.stage(func() {
		reg.Status = model.StatusPaid
		reg.PaidAt = &at
	})
	return nil
}

func (t *memTx) RedeemPromo(ctx context.Context, code string) error {
	promo, ok := t.store.promos[code]
	if !ok {
		return nil
	}
	t.stage(func() {
		promo.UsedCount++
		if promo.MaxUses != nil && promo.UsedCount > *promo.MaxUses {
			promo.UsedCount = *promo.MaxUses
		}
	})
	return nil
}

func (t *memTx) AddWeeklyUsage(ctx context.Context, weekID string, n int) error {
	week, ok := t.store.weeks[weekID]
	if !ok {
		return nil
	}
	t.stage(func() {
		week.WeeklyUsed = clamp(week.WeeklyUsed+n, week.WeeklySlots)
	})
	return nil
}

func (t *memTx) AddDailyUsage(ctx context.Context, weekID string, n int) error {
	week, ok := t.store.weeks[weekID]
	if !ok {
		return nil
	}
	t.stage(func() {
		week.DailyUsed = clamp(week.DailyUsed+n, week.DailySlots)
	})
	return nil
}

func clamp(v, ceiling int) int {
	return min(max(0, v), ceiling)
}

func clonePromo(p *model.PromoCode) *model.PromoCode {
	out := *p
	if p.MaxUses != nil {
		maxUses := *p.MaxUses
		out.MaxUses = &maxUses
	}
	return &out
}
