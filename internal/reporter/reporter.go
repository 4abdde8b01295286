package reporter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"feedwatch/internal/config"
	"feedwatch/internal/database"
	"feedwatch/internal/models"
)

// Reporter summarizes cycle history into per-feeding-day results. The
// verdict for a day comes from the last cycle observed within it, since each
// cycle reclassifies the whole day from scratch.
type Reporter struct {
	config *config.Config
	repo   *database.Repository
}

// New creates a new reporter
func New(cfg *config.Config, repo *database.Repository) *Reporter {
	return &Reporter{
		config: cfg,
		repo:   repo,
	}
}

// GenerateReport builds a feeding report covering the last N feeding days.
func (r *Reporter) GenerateReport(days int) (*models.Report, error) {
	if days < 1 {
		return nil, fmt.Errorf("report must cover at least 1 day, got %d", days)
	}

	now := time.Now()
	since := now.AddDate(0, 0, -days)

	cycles, err := r.repo.GetCyclesSince(since)
	if err != nil {
		return nil, fmt.Errorf("failed to load cycle history: %w", err)
	}

	report := &models.Report{
		Period: models.ReportPeriod{
			Start: since,
			End:   now,
			Days:  days,
		},
		Days:        summarizeDays(cycles),
		WindowRates: map[string]float64{},
		GeneratedAt: now,
	}

	// Satisfaction rate per window across the covered days.
	counts := map[string]int{}
	for _, day := range report.Days {
		for _, name := range day.SatisfiedWindows {
			counts[name]++
		}
	}
	if len(report.Days) > 0 {
		for _, w := range r.config.Feeding.Windows {
			report.WindowRates[w.Name] = float64(counts[w.Name]) / float64(len(report.Days))
		}
	}

	return report, nil
}

// summarizeDays collapses cycles to one result per feeding day, keeping the
// latest cycle of each day.
func summarizeDays(cycles []*models.CycleLog) []models.DayResult {
	latest := map[int64]*models.CycleLog{}
	for _, c := range cycles {
		key := c.FeedingDayStart.Unix()
		if prev, ok := latest[key]; !ok || c.PolledAt.After(prev.PolledAt) {
			latest[key] = c
		}
	}

	results := make([]models.DayResult, 0, len(latest))
	for _, c := range latest {
		var satisfied []string
		if c.SatisfiedWindows != "" {
			satisfied = strings.Split(c.SatisfiedWindows, ",")
		}
		results = append(results, models.DayResult{
			FeedingDay:       c.FeedingDayStart,
			SatisfiedWindows: satisfied,
			SatisfiedCount:   c.SatisfiedCount,
			TotalWindows:     c.TotalWindows,
		})
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].FeedingDay.Before(results[j].FeedingDay)
	})

	return results
}

// FormatReportText formats the report as human-readable text
func (r *Reporter) FormatReportText(report *models.Report) string {
	output := fmt.Sprintf("Feeding Report - last %d day(s)\n", report.Period.Days)
	output += fmt.Sprintf("Period: %s to %s\n\n",
		report.Period.Start.Format("2006-01-02 15:04"),
		report.Period.End.Format("2006-01-02 15:04"))

	if len(report.Days) == 0 {
		output += "No poll history recorded for this period.\n"
		return output
	}

	output += fmt.Sprintf("%-14s %8s  %s\n", "Feeding Day", "Fed", "Windows")
	output += fmt.Sprintf("%s\n", "------------------------------------------------------------")

	for _, day := range report.Days {
		windows := strings.Join(day.SatisfiedWindows, ", ")
		if windows == "" {
			windows = "-"
		}
		output += fmt.Sprintf("%-14s %5d/%-2d  %s\n",
			day.FeedingDay.Format("2006-01-02"),
			day.SatisfiedCount,
			day.TotalWindows,
			windows)
	}

	output += "\n"
	for _, w := range r.config.Feeding.Windows {
		rate, ok := report.WindowRates[w.Name]
		if !ok {
			continue
		}
		output += fmt.Sprintf("%-12s satisfied on %.0f%% of days\n", w.Name, rate*100)
	}

	return output
}

// FormatReportJSON formats the report as JSON
func (r *Reporter) FormatReportJSON(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return string(data), nil
}
