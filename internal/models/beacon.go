package models

import "time"

// BeaconEvent is a single detected activity instant from the feeding-station
// sensor. Events have no identity beyond their timestamp; duplicates are kept.
type BeaconEvent struct {
	OccurredAt time.Time `json:"occurred_at"`
}

// Window is a named half-open hour-of-day interval [StartHour, EndHour) within
// one calendar day. Windows never wrap past midnight.
type Window struct {
	Name      string `json:"name"`
	StartHour int    `json:"start_hour"`
	EndHour   int    `json:"end_hour"`
}

// Contains reports whether an hour-of-day falls inside the window.
// StartHour is inclusive, EndHour exclusive.
func (w Window) Contains(hour int) bool {
	return hour >= w.StartHour && hour < w.EndHour
}

// Overlaps reports whether two windows share any hour.
func (w Window) Overlaps(other Window) bool {
	return w.StartHour < other.EndHour && other.StartHour < w.EndHour
}

// WindowStatus is the per-window classification result for the current
// feeding day. SatisfyingEvent, when set, is the most recent qualifying
// event in the window, not the earliest.
type WindowStatus struct {
	Window
	Satisfied       bool         `json:"satisfied"`
	SatisfyingEvent *BeaconEvent `json:"satisfying_event,omitempty"`
}

// OverallStatus is the full classifier output for one poll cycle. Windows
// preserves configuration order. LastEventOverall is computed over the entire
// fetched set regardless of feeding day or window membership.
type OverallStatus struct {
	Windows          []WindowStatus `json:"windows"`
	LastEventOverall *BeaconEvent   `json:"last_event_overall,omitempty"`
	FeedingDayStart  time.Time      `json:"feeding_day_start"`
}

// MealView is the presentation-ready form of one window.
type MealView struct {
	Name      string     `json:"name"`
	StartHour int        `json:"start_hour"`
	EndHour   int        `json:"end_hour"`
	Fed       bool       `json:"fed"`
	FedAt     *time.Time `json:"fed_at,omitempty"`
	FedAgo    string     `json:"fed_ago,omitempty"`
}

// StatusView is the reduced, display-ready status published after each poll
// cycle. It is rebuilt whole every cycle; a fetch failure produces a view
// carrying only Error and GeneratedAt.
type StatusView struct {
	GeneratedAt     time.Time  `json:"generated_at"`
	FeedingDayStart time.Time  `json:"feeding_day_start"`
	Meals           []MealView `json:"meals"`
	SatisfiedCount  int        `json:"satisfied_count"`
	TotalWindows    int        `json:"total_windows"`
	LastEventAt     *time.Time `json:"last_event_at,omitempty"`
	LastEventAgo    string     `json:"last_event_ago,omitempty"`
	EventCount      int        `json:"event_count"`
	SkippedLines    int        `json:"skipped_lines"`
	Error           string     `json:"error,omitempty"`
}
