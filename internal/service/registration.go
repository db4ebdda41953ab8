package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/storage"
)

// CreateRegistration validates the submission payload and persists it in
// pending status. Capacity is not held here: a registration reserves
// nothing until the payment processor confirms it.
func (s *Service) CreateRegistration(ctx context.Context, req model.CreateRegistrationRequest) (*model.Registration, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	reg := &model.Registration{
		ID:             s.ids.Generate().String(),
		Season:         req.Season,
		Parent:         req.Parent,
		Emergency:      req.Emergency,
		Children:       req.Children,
		WaiverAccepted: req.WaiverAccepted,
		PromoCode:      model.CanonicalCode(req.PromoCode),
		Subtotal:       req.Subtotal,
		Discount:       req.Discount,
		Total:          req.Total,
		Status:         model.StatusPending,
		PaymentID:      req.PaymentID,
		CreatedAt:      s.now(),
	}
	if err := s.store.CreateRegistration(ctx, reg); err != nil {
		if errors.Is(err, storage.ErrDuplicatePayment) {
			return nil, storage.ErrDuplicatePayment
		}
		return nil, fmt.Errorf("create registration: %w", err)
	}
	s.log.Info("registration created",
		zap.String("registration_id", reg.ID),
		zap.String("payment_id", reg.PaymentID),
		zap.Int("children", len(reg.Children)),
	)
	return reg, nil
}

// ListRegistrations returns registrations matching the filter, newest first.
func (s *Service) ListRegistrations(ctx context.Context, filter storage.RegistrationFilter) ([]model.Registration, error) {
	regs, err := s.store.ListRegistrations(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list registrations: %w", err)
	}
	return regs, nil
}

// Stats aggregates the registration history and per-week availability for
// the admin dashboard.
func (s *Service) Stats(ctx context.Context) (*model.Stats, error) {
	regs, err := s.store.ListRegistrations(ctx, storage.RegistrationFilter{})
	if err != nil {
		return nil, fmt.Errorf("load registrations: %w", err)
	}
	weeks, err := s.Availability(ctx)
	if err != nil {
		return nil, err
	}

	stats := &model.Stats{TotalRevenue: decimal.Zero, Weeks: weeks}
	for _, reg := range regs {
		switch reg.Status {
		case model.StatusPaid:
			stats.TotalFamilies++
			stats.TotalKids += len(reg.Children)
			stats.TotalRevenue = stats.TotalRevenue.Add(reg.Total)
		case model.StatusPending:
			stats.PendingCount++
		}
	}
	return stats, nil
}
