// Package handler contains chi HTTP handlers that translate HTTP
// requests/responses to and from the service layer.
package handler

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/service"
	"github.com/oakhollow/camp-registration/internal/storage"
)

// Handler holds all HTTP handlers for the camp registration API.
type Handler struct {
	svc *service.Service
}

// New constructs a Handler.
func New(svc *service.Service) *Handler {
	return &Handler{svc: svc}
}

// ─── Helper utilities ─────────────────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20) // 1 MB limit
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

// ─── Client-facing handlers ───────────────────────────────────────────────────

// Availability handles GET /availability
// Returns the per-week availability snapshot for the display flow.
func (h *Handler) Availability(w http.ResponseWriter, r *http.Request) {
	weeks, err := h.svc.Availability(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load availability")
		return
	}
	if weeks == nil {
		weeks = []model.WeekAvailability{}
	}
	writeJSON(w, http.StatusOK, weeks)
}

// ValidatePromo handles POST /promos/validate
// Always returns 200; an unknown, inactive, or exhausted code reports
// valid=false rather than an error.
func (h *Handler) ValidatePromo(w http.ResponseWriter, r *http.Request) {
	var req model.ValidatePromoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	result, err := h.svc.ValidatePromo(r.Context(), req.Code)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to validate promo code")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// CreateRegistration handles POST /registrations
// Persists a pending registration alongside the payment authorization the
// client already obtained. No capacity is held at this point.
func (h *Handler) CreateRegistration(w http.ResponseWriter, r *http.Request) {
	var req model.CreateRegistrationRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	reg, err := h.svc.CreateRegistration(r.Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicatePayment) {
			writeError(w, http.StatusConflict, "payment id already registered")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}

// ConfirmPayment handles POST /payments/confirm
// The payment processor's confirmation callback. Benign no-ops (unknown
// payment id, duplicate delivery) return 200 with applied=false — the
// processor must never be told to retry them.
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	var req model.ConfirmRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.PaymentID == "" {
		writeError(w, http.StatusBadRequest, "payment_id is required")
		return
	}
	result, err := h.svc.Confirm(r.Context(), req.PaymentID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to confirm payment")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

// ─── Administrative handlers ──────────────────────────────────────────────────

// CreatePromo handles POST /admin/promos
func (h *Handler) CreatePromo(w http.ResponseWriter, r *http.Request) {
	var req model.CreatePromoRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	promo, err := h.svc.CreatePromo(r.Context(), req)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicateCode) {
			writeError(w, http.StatusConflict, "promo code already exists")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, promo)
}

// TogglePromo handles POST /admin/promos/{code}/toggle
// An omitted "active" field flips the flag; a present one sets it.
func (h *Handler) TogglePromo(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	// An empty body is allowed and means "flip".
	var req model.TogglePromoRequest
	if err := decodeJSON(r, &req); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	promo, err := h.svc.TogglePromo(r.Context(), code, req.Active)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "promo code not found")
			return
		}
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, promo)
}

// ListRegistrations handles GET /admin/registrations?week=&status=&q=
func (h *Handler) ListRegistrations(w http.ResponseWriter, r *http.Request) {
	filter := storage.RegistrationFilter{
		WeekID: r.URL.Query().Get("week"),
		Status: model.Status(r.URL.Query().Get("status")),
		Query:  r.URL.Query().Get("q"),
	}
	regs, err := h.svc.ListRegistrations(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list registrations")
		return
	}
	if regs == nil {
		regs = []model.Registration{}
	}
	writeJSON(w, http.StatusOK, regs)
}

// Stats handles GET /admin/registrations/stats
func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to aggregate stats")
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// ─── Health check ─────────────────────────────────────────────────────────────

// HealthCheck handles GET /health
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
