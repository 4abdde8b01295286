package database

import (
	"time"

	"feedwatch/internal/models"

	"github.com/pkg/errors"

	"gorm.io/gorm"
)

// Repository handles all database operations for the poll history. History
// is an append-only diagnostic sink: classification never reads it back.
type Repository struct {
	db *DB
}

// NewRepository creates a new repository instance
func NewRepository(db *DB) *Repository {
	return &Repository{db: db}
}

// CreateCycleLog records the outcome of one completed poll cycle
func (r *Repository) CreateCycleLog(cycle *models.CycleLog) error {
	result := r.db.Create(cycle)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert cycle log")
	}
	return nil
}

// CreateErrorLog records a fetch failure
func (r *Repository) CreateErrorLog(errorLog *models.ErrorLog) error {
	result := r.db.Create(errorLog)
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to insert error log")
	}
	return nil
}

// GetCyclesSince retrieves all cycle logs polled at or after a given time,
// oldest first
func (r *Repository) GetCyclesSince(since time.Time) ([]*models.CycleLog, error) {
	var cycles []*models.CycleLog
	result := r.db.Where("polled_at >= ?", since).Order("polled_at ASC").Find(&cycles)

	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query cycle logs")
	}

	return cycles, nil
}

// GetLatestCycle retrieves the most recent cycle log, or nil when the
// history is empty
func (r *Repository) GetLatestCycle() (*models.CycleLog, error) {
	var cycle models.CycleLog
	result := r.db.Order("polled_at DESC").First(&cycle)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, errors.Wrap(result.Error, "failed to get latest cycle log")
	}
	return &cycle, nil
}

// GetRecentErrors retrieves error logs since a given time, newest first
func (r *Repository) GetRecentErrors(since time.Time) ([]*models.ErrorLog, error) {
	var errs []*models.ErrorLog
	result := r.db.Where("timestamp >= ?", since).Order("timestamp DESC").Find(&errs)
	if result.Error != nil {
		return nil, errors.Wrap(result.Error, "failed to query error logs")
	}
	return errs, nil
}

// DeleteOldCycles deletes cycle logs older than a specified date (soft delete)
func (r *Repository) DeleteOldCycles(before time.Time) (int64, error) {
	result := r.db.Where("polled_at < ?", before).Delete(&models.CycleLog{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to delete old cycle logs")
	}
	return result.RowsAffected, nil
}

// Clear removes all history from the database
func (r *Repository) Clear() error {
	if result := r.db.Exec("DELETE FROM cycle_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear cycle logs")
	}
	if result := r.db.Exec("DELETE FROM error_logs"); result.Error != nil {
		return errors.Wrap(result.Error, "failed to clear error logs")
	}
	return nil
}
