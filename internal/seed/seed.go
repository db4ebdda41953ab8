// Package seed bootstraps week definitions and starter promo codes on an
// empty store. Run is idempotent: each record kind is inserted only when
// none of that kind exists, so a restart never duplicates weeks or resets
// usage counters.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/storage"
)

const (
	weeklySlots = 20
	dailySlots  = 25
)

// Run seeds the store when it is empty.
func Run(ctx context.Context, store storage.Store, log *zap.Logger) error {
	hasWeeks, err := store.HasWeeks(ctx)
	if err != nil {
		return fmt.Errorf("probe weeks: %w", err)
	}
	if !hasWeeks {
		for _, week := range defaultWeeks() {
			w := week
			if err := store.CreateWeek(ctx, &w); err != nil {
				return fmt.Errorf("seed week %s: %w", w.ID, err)
			}
		}
		log.Info("seeded camp weeks", zap.Int("count", len(defaultWeeks())))
	}

	hasPromos, err := store.HasPromos(ctx)
	if err != nil {
		return fmt.Errorf("probe promos: %w", err)
	}
	if !hasPromos {
		for _, promo := range starterPromos() {
			p := promo
			if err := store.CreatePromo(ctx, &p); err != nil {
				return fmt.Errorf("seed promo %s: %w", p.Code, err)
			}
		}
		log.Info("seeded starter promo codes", zap.Int("count", len(starterPromos())))
	}
	return nil
}

func defaultWeeks() []model.CampWeek {
	weeks := make([]model.CampWeek, 0, 6)
	start := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 6; i++ {
		monday := start.AddDate(0, 0, 7*i)
		friday := monday.AddDate(0, 0, 4)
		weeks = append(weeks, model.CampWeek{
			ID:          fmt.Sprintf("week%d", i+1),
			Label:       fmt.Sprintf("Week %d · %s – %s", i+1, monday.Format("Jan 2"), friday.Format("Jan 2")),
			StartDate:   monday,
			EndDate:     friday,
			WeeklySlots: weeklySlots,
			DailySlots:  dailySlots,
		})
	}
	return weeks
}

func starterPromos() []model.PromoCode {
	now := time.Now().UTC()
	referralMax := 50
	return []model.PromoCode{
		{
			ID:          uuid.New().String(),
			Code:        "EARLYBIRD",
			Type:        model.PromoPercent,
			Value:       decimal.NewFromInt(10),
			Description: "10% off for early registration",
			Active:      true,
			CreatedAt:   now,
		},
		{
			ID:          uuid.New().String(),
			Code:        "REFERRAL",
			Type:        model.PromoFixed,
			Value:       decimal.NewFromInt(25),
			Description: "$25 off for referring a family",
			Active:      true,
			MaxUses:     &referralMax,
			CreatedAt:   now,
		},
		{
			ID:          uuid.New().String(),
			Code:        "SIBLING",
			Type:        model.PromoFreeDays,
			Value:       decimal.NewFromInt(1),
			Description: "One free day for each additional sibling",
			Active:      true,
			CreatedAt:   now,
		},
	}
}
