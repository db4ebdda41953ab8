// Package model defines the core domain types for the camp registration system.
package model

import "time"

// displayCap is the advertised per-week headcount: the public-facing
// "spots left" figure is shared across the weekly and daily pools.
const displayCap = 30

// CampWeek is one unit of sellable inventory: a calendar week with
// independent weekly-session and daily-session capacity pools.
type CampWeek struct {
	ID          string    `json:"id"`
	Label       string    `json:"label"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	WeeklySlots int       `json:"weekly_slots"`
	WeeklyUsed  int       `json:"weekly_used"`
	DailySlots  int       `json:"daily_slots"`
	DailyUsed   int       `json:"daily_used"`
}

// WeeklyRemaining returns the number of unsold full-week seats.
func (w *CampWeek) WeeklyRemaining() int {
	return max(0, w.WeeklySlots-w.WeeklyUsed)
}

// DailyRemaining returns the number of unsold daily-session seats.
func (w *CampWeek) DailyRemaining() int {
	return max(0, w.DailySlots-w.DailyUsed)
}

// DisplayRemaining returns the single human-facing remaining-spots figure
// shared across both pools.
func (w *CampWeek) DisplayRemaining() int {
	return max(0, displayCap-(w.WeeklyUsed+w.DailyUsed))
}

// IsFull returns true when no display spots remain.
func (w *CampWeek) IsFull() bool {
	return w.DisplayRemaining() == 0
}

// Availability is the read model returned to the client-facing display flow.
func (w *CampWeek) Availability() WeekAvailability {
	return WeekAvailability{
		WeekID:           w.ID,
		Label:            w.Label,
		StartDate:        w.StartDate,
		EndDate:          w.EndDate,
		WeeklyRemaining:  w.WeeklyRemaining(),
		DailyRemaining:   w.DailyRemaining(),
		DisplayRemaining: w.DisplayRemaining(),
		IsFull:           w.IsFull(),
	}
}

// WeekAvailability is the per-week availability snapshot.
type WeekAvailability struct {
	WeekID           string    `json:"week_id"`
	Label            string    `json:"label"`
	StartDate        time.Time `json:"start_date"`
	EndDate          time.Time `json:"end_date"`
	WeeklyRemaining  int       `json:"weekly_remaining"`
	DailyRemaining   int       `json:"daily_remaining"`
	DisplayRemaining int       `json:"display_remaining"`
	IsFull           bool      `json:"is_full"`
}
