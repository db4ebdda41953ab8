package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/oakhollow/camp-registration/internal/handler"
	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/service"
	"github.com/oakhollow/camp-registration/internal/storage/memory"
)

func newTestRouter(t *testing.T) *chi.Mux {
	t.Helper()
	store := memory.New()
	for i := 1; i <= 2; i++ {
		monday := time.Date(2026, time.June, 15, 0, 0, 0, 0, time.UTC).AddDate(0, 0, 7*(i-1))
		err := store.CreateWeek(context.Background(), &model.CampWeek{
			ID:          fmt.Sprintf("week%d", i),
			Label:       fmt.Sprintf("Week %d", i),
			StartDate:   monday,
			EndDate:     monday.AddDate(0, 0, 4),
			WeeklySlots: 20,
			DailySlots:  25,
		})
		require.NoError(t, err)
	}

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)
	h := handler.New(service.New(store, zap.NewNop(), node))

	r := chi.NewRouter()
	r.Get("/health", handler.HealthCheck)
	r.Get("/availability", h.Availability)
	r.Post("/promos/validate", h.ValidatePromo)
	r.Post("/registrations", h.CreateRegistration)
	r.Post("/payments/confirm", h.ConfirmPayment)
	r.Route("/admin", func(r chi.Router) {
		r.Post("/promos", h.CreatePromo)
		r.Post("/promos/{code}/toggle", h.TogglePromo)
		r.Get("/registrations", h.ListRegistrations)
		r.Get("/registrations/stats", h.Stats)
	})
	return r
}

func doJSON(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func registrationBody(weekID, paymentID string) map[string]any {
	return map[string]any{
		"season": "summer-2026",
		"parent": map[string]any{"name": "Dana Whitfield", "email": "dana@example.com"},
		"children": []map[string]any{{
			"name": "Sam",
			"sessions": map[string]any{
				weekID: map[string]any{"type": "full_week"},
			},
		}},
		"waiver_accepted": true,
		"subtotal":        "250",
		"discount":        "0",
		"total":           "250",
		"payment_id":      paymentID,
	}
}

func TestHealth(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAvailabilityEndpoint(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodGet, "/availability", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var weeks []model.WeekAvailability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weeks))
	require.Len(t, weeks, 2)
	assert.Equal(t, "week1", weeks[0].WeekID)
	assert.Equal(t, 20, weeks[0].WeeklyRemaining)
	assert.Equal(t, 30, weeks[0].DisplayRemaining)
	assert.False(t, weeks[0].IsFull)
}

func TestRegistrationAndConfirmFlow(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/registrations", registrationBody("week1", "pi_1"))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var reg model.Registration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &reg))
	assert.Equal(t, model.StatusPending, reg.Status)

	rec = doJSON(t, r, http.MethodPost, "/payments/confirm", map[string]any{"payment_id": "pi_1"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ConfirmResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Applied)
	assert.Equal(t, model.StatusPaid, result.Registration.Status)

	// Duplicate delivery: still 200, nothing applied.
	rec = doJSON(t, r, http.MethodPost, "/payments/confirm", map[string]any{"payment_id": "pi_1"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Applied)

	rec = doJSON(t, r, http.MethodGet, "/availability", nil)
	var weeks []model.WeekAvailability
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &weeks))
	assert.Equal(t, 19, weeks[0].WeeklyRemaining)
}

func TestConfirmUnknownPaymentReturns200(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/payments/confirm", map[string]any{"payment_id": "pi_ghost"})
	require.Equal(t, http.StatusOK, rec.Code)

	var result model.ConfirmResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Applied)
}

func TestConfirmMissingPaymentIDRejected(t *testing.T) {
	r := newTestRouter(t)
	rec := doJSON(t, r, http.MethodPost, "/payments/confirm", map[string]any{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegistrationValidationErrors(t *testing.T) {
	r := newTestRouter(t)

	body := registrationBody("week1", "pi_1")
	body["waiver_accepted"] = false
	rec := doJSON(t, r, http.MethodPost, "/registrations", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	body = registrationBody("week1", "pi_1")
	body["total"] = "999"
	rec = doJSON(t, r, http.MethodPost, "/registrations", body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReusedPaymentIDConflict(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/registrations", registrationBody("week1", "pi_1"))
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/registrations", registrationBody("week2", "pi_1"))
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestPromoAdminAndValidation(t *testing.T) {
	r := newTestRouter(t)

	create := map[string]any{"code": "earlybird", "type": "percent", "value": "10", "description": "10% off"}
	rec := doJSON(t, r, http.MethodPost, "/admin/promos", create)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = doJSON(t, r, http.MethodPost, "/admin/promos", create)
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/promos/validate", map[string]any{"code": "  EarlyBird "})
	require.Equal(t, http.StatusOK, rec.Code)
	var validation model.PromoValidation
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &validation))
	assert.True(t, validation.Valid)
	assert.Equal(t, "EARLYBIRD", validation.Code)

	// Flip off, then validate again.
	rec = doJSON(t, r, http.MethodPost, "/admin/promos/EARLYBIRD/toggle", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/promos/validate", map[string]any{"code": "earlybird"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &validation))
	assert.False(t, validation.Valid)

	rec = doJSON(t, r, http.MethodPost, "/admin/promos/MISSING/toggle", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminListAndStats(t *testing.T) {
	r := newTestRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/registrations", registrationBody("week1", "pi_1"))
	require.Equal(t, http.StatusCreated, rec.Code)
	rec = doJSON(t, r, http.MethodPost, "/payments/confirm", map[string]any{"payment_id": "pi_1"})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodGet, "/admin/registrations?status=paid", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var regs []model.Registration
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
	assert.Len(t, regs, 1)

	rec = doJSON(t, r, http.MethodGet, "/admin/registrations?week=week2", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &regs))
	assert.Empty(t, regs)

	rec = doJSON(t, r, http.MethodGet, "/admin/registrations/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var stats model.Stats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.Equal(t, 1, stats.TotalKids)
	assert.Equal(t, 1, stats.TotalFamilies)
}
