package service

import (
	"context"
	"fmt"

	"github.com/oakhollow/camp-registration/internal/model"
)

// Availability returns the per-week availability snapshot for the
// client-facing display flow. Pure read: the figures are consistent with
// the last committed confirmation and may be stale by the time a
// subsequent write occurs, which is fine — the authoritative check happens
// at confirmation time, not here.
func (s *Service) Availability(ctx context.Context) ([]model.WeekAvailability, error) {
	weeks, err := s.store.ListWeeks(ctx)
	if err != nil {
		return nil, fmt.Errorf("load weeks: %w", err)
	}
	out := make([]model.WeekAvailability, len(weeks))
	for i := range weeks {
		out[i] = weeks[i].Availability()
	}
	return out, nil
}
