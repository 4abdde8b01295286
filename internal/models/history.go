package models

import (
	"time"

	"gorm.io/gorm"
)

// CycleLog records the outcome of one completed poll cycle. History rows are
// a diagnostic sink only; classification never reads them back.
type CycleLog struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	PolledAt         time.Time      `gorm:"not null;index" json:"polled_at"`
	FeedingDayStart  time.Time      `gorm:"not null;index" json:"feeding_day_start"`
	EventCount       int            `gorm:"not null;default:0" json:"event_count"`
	SkippedLines     int            `gorm:"not null;default:0" json:"skipped_lines"`
	SatisfiedCount   int            `gorm:"not null;default:0" json:"satisfied_count"`
	TotalWindows     int            `gorm:"not null;default:0" json:"total_windows"`
	SatisfiedWindows string         `gorm:"not null;default:''" json:"satisfied_windows"` // comma-separated window names
	LastEventAt      *time.Time     `json:"last_event_at,omitempty"`
	CreatedAt        time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

type ErrorLog struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Timestamp time.Time      `gorm:"not null;index" json:"timestamp"`
	ErrorMsg  string         `gorm:"not null" json:"error_msg"`
	CreatedAt time.Time      `gorm:"autoCreateTime;index" json:"created_at"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// DayResult summarizes one feeding day for reports, derived from the last
// cycle observed within that day.
type DayResult struct {
	FeedingDay       time.Time `json:"feeding_day"`
	SatisfiedWindows []string  `json:"satisfied_windows"`
	SatisfiedCount   int       `json:"satisfied_count"`
	TotalWindows     int       `json:"total_windows"`
}

type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
	Days  int       `json:"days"`
}

type Report struct {
	Period      ReportPeriod       `json:"period"`
	Days        []DayResult        `json:"days"`
	WindowRates map[string]float64 `json:"window_rates"` // fraction of days each window was satisfied
	GeneratedAt time.Time          `json:"generated_at"`
}
