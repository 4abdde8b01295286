// Package classify turns a raw beacon event set into a per-window feeding
// verdict. Classification is a pure function of (events, now, reset hour,
// windows); it holds no state between calls.
package classify

import (
	"time"

	"feedwatch/internal/models"
)

// FeedingDayStart returns the start of the feeding day containing now:
// today at resetHour:00:00, rolled back one calendar day when now falls
// before the reset hour. The feeding day is [start, start+24h).
func FeedingDayStart(now time.Time, resetHour int) time.Time {
	start := time.Date(now.Year(), now.Month(), now.Day(), resetHour, 0, 0, 0, now.Location())
	if now.Before(start) {
		start = start.AddDate(0, 0, -1)
	}
	return start
}

// Classify evaluates every configured window against the fetched event set.
//
// Only events at or after the feeding day start count toward windows. Window
// membership is a pure hour-of-day test on the half-open interval
// [StartHour, EndHour). A satisfied window reports its most recent
// qualifying event, not its first.
//
// LastEventOverall is the maximum-timestamp event over the entire unfiltered
// set. It is a "last seen" diagnostic, so it must reflect reality even when
// the current feeding day has no qualifying events at all.
func Classify(events []models.BeaconEvent, now time.Time, resetHour int, windows []models.Window) models.OverallStatus {
	dayStart := FeedingDayStart(now, resetHour)

	var todayEvents []models.BeaconEvent
	for _, e := range events {
		if !e.OccurredAt.Before(dayStart) {
			todayEvents = append(todayEvents, e)
		}
	}

	statuses := make([]models.WindowStatus, 0, len(windows))
	for _, w := range windows {
		ws := models.WindowStatus{Window: w}
		for _, e := range todayEvents {
			if !w.Contains(e.OccurredAt.Hour()) {
				continue
			}
			if ws.SatisfyingEvent == nil || e.OccurredAt.After(ws.SatisfyingEvent.OccurredAt) {
				ev := e
				ws.SatisfyingEvent = &ev
			}
		}
		ws.Satisfied = ws.SatisfyingEvent != nil
		statuses = append(statuses, ws)
	}

	var last *models.BeaconEvent
	for _, e := range events {
		if last == nil || e.OccurredAt.After(last.OccurredAt) {
			ev := e
			last = &ev
		}
	}

	return models.OverallStatus{
		Windows:          statuses,
		LastEventOverall: last,
		FeedingDayStart:  dayStart,
	}
}
