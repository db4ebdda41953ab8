package model_test

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakhollow/camp-registration/internal/model"
)

func TestCanonicalCode(t *testing.T) {
	assert.Equal(t, "EARLYBIRD", model.CanonicalCode("  earlybird "))
	assert.Equal(t, "EARLYBIRD", model.CanonicalCode("EARLYBIRD"))
	assert.Equal(t, "", model.CanonicalCode("   "))
}

func TestCampWeekDerivedFigures(t *testing.T) {
	week := model.CampWeek{WeeklySlots: 20, WeeklyUsed: 5, DailySlots: 25, DailyUsed: 10}

	assert.Equal(t, 15, week.WeeklyRemaining())
	assert.Equal(t, 15, week.DailyRemaining())
	assert.Equal(t, 15, week.DisplayRemaining()) // 30 - (5+10)
	assert.False(t, week.IsFull())

	week.WeeklyUsed = 20
	week.DailyUsed = 25
	assert.Equal(t, 0, week.WeeklyRemaining())
	assert.Equal(t, 0, week.DisplayRemaining())
	assert.True(t, week.IsFull())
}

func TestCampWeekDisplayRemainingNeverNegative(t *testing.T) {
	week := model.CampWeek{WeeklySlots: 40, WeeklyUsed: 40, DailySlots: 40, DailyUsed: 40}
	assert.Equal(t, 0, week.DisplayRemaining())
}

func TestSessionSelectionUnmarshal(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    model.SessionSelection
		wantErr bool
	}{
		{
			name:  "full week",
			input: `{"type":"full_week"}`,
			want:  model.SessionSelection{Type: model.SessionFullWeek},
		},
		{
			name:  "none",
			input: `{"type":"none"}`,
			want:  model.SessionSelection{Type: model.SessionNone},
		},
		{
			name:  "omitted type means none",
			input: `{}`,
			want:  model.SessionSelection{Type: model.SessionNone},
		},
		{
			name:  "days normalized and deduplicated",
			input: `{"type":"days","days":[" Monday","WEDNESDAY","monday"]}`,
			want:  model.SessionSelection{Type: model.SessionDays, Days: []string{"monday", "wednesday"}},
		},
		{
			name:    "unknown type rejected",
			input:   `{"type":"weekend"}`,
			wantErr: true,
		},
		{
			name:    "unknown day rejected",
			input:   `{"type":"days","days":["funday"]}`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got model.SessionSelection
			err := json.Unmarshal([]byte(tt.input), &got)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSessionSelectionBooks(t *testing.T) {
	assert.True(t, model.SessionSelection{Type: model.SessionFullWeek}.BooksWeekly())
	assert.False(t, model.SessionSelection{Type: model.SessionFullWeek}.BooksDaily())

	days := model.SessionSelection{Type: model.SessionDays, Days: []string{"monday"}}
	assert.True(t, days.BooksDaily())
	assert.False(t, days.BooksWeekly())

	// A day selection with no days consumes nothing.
	assert.False(t, model.SessionSelection{Type: model.SessionDays}.BooksDaily())
	assert.False(t, model.SessionSelection{Type: model.SessionNone}.BooksDaily())
}

func validRequest() model.CreateRegistrationRequest {
	return model.CreateRegistrationRequest{
		Season: "summer-2026",
		Parent: model.Contact{Name: "Dana Whitfield", Email: "dana@example.com"},
		Children: []model.Child{{
			Name: "Sam",
			Sessions: map[string]model.SessionSelection{
				"week1": {Type: model.SessionFullWeek},
			},
		}},
		WaiverAccepted: true,
		Subtotal:       decimal.NewFromInt(250),
		Discount:       decimal.NewFromInt(25),
		Total:          decimal.NewFromInt(225),
		PaymentID:      "pi_valid",
	}
}

func TestCreateRegistrationRequestValidate(t *testing.T) {
	req := validRequest()
	require.NoError(t, req.Validate())

	tests := []struct {
		name   string
		mutate func(*model.CreateRegistrationRequest)
	}{
		{"missing parent name", func(r *model.CreateRegistrationRequest) { r.Parent.Name = " " }},
		{"bad email", func(r *model.CreateRegistrationRequest) { r.Parent.Email = "not-an-email" }},
		{"no children", func(r *model.CreateRegistrationRequest) { r.Children = nil }},
		{"unnamed child", func(r *model.CreateRegistrationRequest) { r.Children[0].Name = "" }},
		{"waiver not accepted", func(r *model.CreateRegistrationRequest) { r.WaiverAccepted = false }},
		{"missing payment id", func(r *model.CreateRegistrationRequest) { r.PaymentID = "" }},
		{"negative discount", func(r *model.CreateRegistrationRequest) {
			r.Discount = decimal.NewFromInt(-5)
		}},
		{"discount exceeds subtotal", func(r *model.CreateRegistrationRequest) {
			r.Discount = decimal.NewFromInt(300)
		}},
		{"pricing mismatch", func(r *model.CreateRegistrationRequest) {
			r.Total = decimal.NewFromInt(999)
		}},
		{"empty day selection", func(r *model.CreateRegistrationRequest) {
			r.Children[0].Sessions["week2"] = model.SessionSelection{Type: model.SessionDays}
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)
			assert.Error(t, req.Validate())
		})
	}
}

func TestPromoUsable(t *testing.T) {
	maxUses := 2
	promo := model.PromoCode{Active: true, MaxUses: &maxUses}
	assert.True(t, promo.Usable())

	promo.UsedCount = 2
	assert.False(t, promo.Usable(), "exhausted code must report unusable even while active")

	promo.UsedCount = 0
	promo.Active = false
	assert.False(t, promo.Usable())

	unlimited := model.PromoCode{Active: true, UsedCount: 10_000}
	assert.True(t, unlimited.Usable())
}

func TestRegistrationReferencesWeek(t *testing.T) {
	reg := model.Registration{Children: []model.Child{{
		Name: "Sam",
		Sessions: map[string]model.SessionSelection{
			"week1": {Type: model.SessionFullWeek},
			"week2": {Type: model.SessionNone},
			"week3": {Type: model.SessionDays, Days: []string{"friday"}},
			"week4": {Type: model.SessionDays},
		},
	}}}

	assert.True(t, reg.ReferencesWeek("week1"))
	assert.True(t, reg.ReferencesWeek("week3"))
	assert.False(t, reg.ReferencesWeek("week2"), "a none entry is not a reference")
	assert.False(t, reg.ReferencesWeek("week4"), "an empty day set books nothing")
	assert.False(t, reg.ReferencesWeek("week9"))
}

func TestRegistrationCloneIsDeep(t *testing.T) {
	reg := model.Registration{Children: []model.Child{{
		Name: "Sam",
		Sessions: map[string]model.SessionSelection{
			"week1": {Type: model.SessionDays, Days: []string{"monday"}},
		},
	}}}

	clone := reg.Clone()
	clone.Children[0].Sessions["week1"] = model.SessionSelection{Type: model.SessionFullWeek}
	clone.Children[0].Name = "Alex"

	assert.Equal(t, "Sam", reg.Children[0].Name)
	assert.Equal(t, model.SessionDays, reg.Children[0].Sessions["week1"].Type)
}
