package model

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SessionType is the kind of booking a child holds for one camp week.
type SessionType string

const (
	SessionNone     SessionType = "none"
	SessionFullWeek SessionType = "full_week"
	SessionDays     SessionType = "days"
)

// weekdays enumerates the accepted day names, normalized to lowercase.
var weekdays = map[string]bool{
	"monday":    true,
	"tuesday":   true,
	"wednesday": true,
	"thursday":  true,
	"friday":    true,
	"saturday":  true,
	"sunday":    true,
}

// SessionSelection is a tagged variant: either no booking, a full-week
// booking, or a set of specific weekdays. Days is meaningful only when
// Type is SessionDays.
type SessionSelection struct {
	Type SessionType `json:"type"`
	Days []string    `json:"days,omitempty"`
}

// UnmarshalJSON converts the loosely typed client payload into the typed
// variant, rejecting unknown session types and day names so malformed
// input never reaches the reconciliation loop.
func (s *SessionSelection) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type string   `json:"type"`
		Days []string `json:"days"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch SessionType(raw.Type) {
	case SessionNone, SessionFullWeek:
		s.Type = SessionType(raw.Type)
		s.Days = nil
		return nil
	case SessionDays:
		s.Type = SessionDays
	case "":
		// An omitted type means no booking for that week.
		s.Type = SessionNone
		s.Days = nil
		return nil
	default:
		return fmt.Errorf("unknown session type %q", raw.Type)
	}

	seen := make(map[string]bool, len(raw.Days))
	days := make([]string, 0, len(raw.Days))
	for _, d := range raw.Days {
		name := strings.ToLower(strings.TrimSpace(d))
		if !weekdays[name] {
			return fmt.Errorf("unknown day name %q", d)
		}
		if seen[name] {
			continue
		}
		seen[name] = true
		days = append(days, name)
	}
	s.Days = days
	return nil
}

// BooksWeekly reports whether the selection consumes one full-week slot.
func (s SessionSelection) BooksWeekly() bool {
	return s.Type == SessionFullWeek
}

// BooksDaily reports whether the selection consumes one daily slot unit.
// A day-selection consumes one unit per child per week regardless of how
// many days were chosen.
func (s SessionSelection) BooksDaily() bool {
	return s.Type == SessionDays && len(s.Days) > 0
}
