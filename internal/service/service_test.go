package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/service"
	"github.com/oakhollow/camp-registration/internal/storage/memory"
)

// newService wires a Service against a fresh in-memory store with four
// seeded weeks of 20 weekly / 25 daily slots.
func newService(t *testing.T) (*service.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	seedWeeks(t, store, 4)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	return service.New(store, zap.NewNop(), node), store
}

func seedWeeks(t *testing.T, store *memory.Store, n int) {
	t.Helper()
	start := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		monday := start.AddDate(0, 0, 7*i)
		err := store.CreateWeek(context.Background(), &model.CampWeek{
			ID:          fmt.Sprintf("week%d", i+1),
			Label:       fmt.Sprintf("Week %d", i+1),
			StartDate:   monday,
			EndDate:     monday.AddDate(0, 0, 4),
			WeeklySlots: 20,
			DailySlots:  25,
		})
		require.NoError(t, err)
	}
}

// fullWeekRequest builds a valid submission: one child booked full-week on
// the given week.
func fullWeekRequest(weekID, paymentID string) model.CreateRegistrationRequest {
	return model.CreateRegistrationRequest{
		Season: "summer-2026",
		Parent: model.Contact{Name: "Dana Whitfield", Email: "dana@example.com"},
		Children: []model.Child{{
			Name: "Sam",
			Sessions: map[string]model.SessionSelection{
				weekID: {Type: model.SessionFullWeek},
			},
		}},
		WaiverAccepted: true,
		Subtotal:       decimal.NewFromInt(250),
		Discount:       decimal.Zero,
		Total:          decimal.NewFromInt(250),
		PaymentID:      paymentID,
	}
}

func weekByID(t *testing.T, svc *service.Service, weekID string) model.WeekAvailability {
	t.Helper()
	weeks, err := svc.Availability(context.Background())
	require.NoError(t, err)
	for _, w := range weeks {
		if w.WeekID == weekID {
			return w
		}
	}
	t.Fatalf("week %s not found", weekID)
	return model.WeekAvailability{}
}
