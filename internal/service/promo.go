package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/oakhollow/camp-registration/internal/model"
	"github.com/oakhollow/camp-registration/internal/storage"
)

// ValidatePromo canonicalizes and checks a submitted code without mutating
// any state, so a shopping client may re-check a code any number of times.
// Absent, inactive, and exhausted codes all report invalid rather than an
// error. Redemption happens only at confirmation time.
func (s *Service) ValidatePromo(ctx context.Context, code string) (model.PromoValidation, error) {
	canonical := model.CanonicalCode(code)
	if canonical == "" {
		return model.PromoValidation{}, nil
	}
	promo, err := s.store.GetPromo(ctx, canonical)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return model.PromoValidation{}, nil
		}
		return model.PromoValidation{}, fmt.Errorf("look up promo: %w", err)
	}
	return promo.Validation(), nil
}

// CreatePromo registers a new discount code. The canonical form must be
// unique; a duplicate surfaces storage.ErrDuplicateCode to the caller.
func (s *Service) CreatePromo(ctx context.Context, req model.CreatePromoRequest) (*model.PromoCode, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	promo := &model.PromoCode{
		ID:          uuid.New().String(),
		Code:        req.Code,
		Type:        req.Type,
		Value:       req.Value,
		Description: req.Description,
		Active:      true,
		MaxUses:     req.MaxUses,
		CreatedAt:   s.now(),
	}
	if err := s.store.CreatePromo(ctx, promo); err != nil {
		if errors.Is(err, storage.ErrDuplicateCode) {
			return nil, storage.ErrDuplicateCode
		}
		return nil, fmt.Errorf("create promo: %w", err)
	}
	return promo, nil
}

// TogglePromo flips a code's active flag, or sets it when active is given.
func (s *Service) TogglePromo(ctx context.Context, code string, active *bool) (*model.PromoCode, error) {
	canonical := model.CanonicalCode(code)
	if canonical == "" {
		return nil, fmt.Errorf("code is required")
	}
	promo, err := s.store.TogglePromo(ctx, canonical, active)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("toggle promo: %w", err)
	}
	return promo, nil
}
