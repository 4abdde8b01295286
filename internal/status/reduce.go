// Package status flattens classifier output into the display-ready view the
// dashboard and CLI consume.
package status

import (
	"time"

	"feedwatch/internal/models"
	"feedwatch/pkg/utils"
)

// Reduce builds the presentation view for one classified cycle. EventCount
// and skipped carry the parse tallies through for diagnostics.
func Reduce(overall models.OverallStatus, now time.Time, eventCount, skipped int) *models.StatusView {
	view := &models.StatusView{
		GeneratedAt:     now,
		FeedingDayStart: overall.FeedingDayStart,
		Meals:           make([]models.MealView, 0, len(overall.Windows)),
		TotalWindows:    len(overall.Windows),
		EventCount:      eventCount,
		SkippedLines:    skipped,
	}

	for _, ws := range overall.Windows {
		meal := models.MealView{
			Name:      ws.Name,
			StartHour: ws.StartHour,
			EndHour:   ws.EndHour,
			Fed:       ws.Satisfied,
		}
		if ws.SatisfyingEvent != nil {
			fedAt := ws.SatisfyingEvent.OccurredAt
			meal.FedAt = &fedAt
			meal.FedAgo = utils.FormatAgo(now.Sub(fedAt))
		}
		if meal.Fed {
			view.SatisfiedCount++
		}
		view.Meals = append(view.Meals, meal)
	}

	if overall.LastEventOverall != nil {
		lastAt := overall.LastEventOverall.OccurredAt
		view.LastEventAt = &lastAt
		view.LastEventAgo = utils.FormatAgo(now.Sub(lastAt))
	}

	return view
}

// ErrorView builds the view published when a cycle fails to fetch. It
// replaces the previous status wholesale; stale meal data is never shown
// alongside an error.
func ErrorView(now time.Time, err error) *models.StatusView {
	return &models.StatusView{
		GeneratedAt: now,
		Error:       err.Error(),
	}
}
