package poller

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"feedwatch/internal/classify"
	"feedwatch/internal/config"
	"feedwatch/internal/database"
	"feedwatch/internal/feed"
	"feedwatch/internal/models"
	"feedwatch/internal/status"
)

// Service drives the poll pipeline: fetch -> parse -> classify -> reduce ->
// publish. Each cycle rebuilds the published view from scratch; nothing
// derived survives from one cycle to the next.
type Service struct {
	config  *config.Config
	fetcher *feed.Fetcher
	repo    *database.Repository // nil disables the history sink
	loc     *time.Location

	stopChan chan struct{}
	stopOnce sync.Once

	mu      sync.RWMutex
	running bool
	latest  *models.StatusView
}

func NewService(cfg *config.Config, fetcher *feed.Fetcher, repo *database.Repository) *Service {
	loc, err := cfg.Location()
	if err != nil {
		loc = time.Local
	}

	return &Service{
		config:   cfg,
		fetcher:  fetcher,
		repo:     repo,
		loc:      loc,
		stopChan: make(chan struct{}),
		running:  false,
	}
}

// Start runs the poll loop until the context is cancelled or Stop is called.
// The first cycle runs immediately rather than waiting out a full interval.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("poller is already running")
	}
	s.running = true
	s.mu.Unlock()

	log.Printf("Starting poller with %v interval against %s", s.config.Source.PollInterval, s.fetcher.URL())

	ticker := time.NewTicker(s.config.Source.PollInterval)
	defer ticker.Stop()

	s.pollCycle(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Poller stopped by context")
			s.setRunning(false)
			return ctx.Err()

		case <-s.stopChan:
			log.Println("Poller stopped")
			s.setRunning(false)
			return nil

		case <-ticker.C:
			s.pollCycle(ctx)
		}
	}
}

// Stop is safe to call from any goroutine and more than once.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
}

func (s *Service) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

func (s *Service) setRunning(running bool) {
	s.mu.Lock()
	s.running = running
	s.mu.Unlock()
}

// Latest returns the most recently published view, or nil before the first
// cycle completes.
func (s *Service) Latest() *models.StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.latest
}

// pollCycle runs one cycle and publishes its result. A result arriving after
// teardown is discarded rather than applied.
func (s *Service) pollCycle(ctx context.Context) {
	view, err := s.PollOnce(ctx)
	if err != nil {
		s.recordError(err)
		view = status.ErrorView(time.Now().In(s.loc), err)
		log.Printf("Poll cycle failed: %v", err)
	}

	select {
	case <-s.stopChan:
		return
	default:
	}
	if ctx.Err() != nil {
		return
	}

	s.publish(view)

	if err == nil {
		log.Printf("Poll cycle: %d events (%d skipped), %d/%d windows satisfied",
			view.EventCount, view.SkippedLines, view.SatisfiedCount, view.TotalWindows)
		s.recordCycle(view)
	}
}

// PollOnce executes a single fetch-parse-classify-reduce pass and returns
// the resulting view without publishing it. The CLI status command uses this
// directly.
func (s *Service) PollOnce(ctx context.Context) (*models.StatusView, error) {
	raw, err := s.fetcher.Fetch(ctx)
	if err != nil {
		return nil, err
	}

	parsed := feed.ParseLog(raw, s.loc)
	now := time.Now().In(s.loc)

	overall := classify.Classify(parsed.Events, now, s.config.Feeding.ResetHour, s.config.Feeding.Windows)
	return status.Reduce(overall, now, len(parsed.Events), parsed.Skipped), nil
}

func (s *Service) publish(view *models.StatusView) {
	s.mu.Lock()
	s.latest = view
	s.mu.Unlock()
}

func (s *Service) recordCycle(view *models.StatusView) {
	if s.repo == nil {
		return
	}

	var satisfied []string
	for _, meal := range view.Meals {
		if meal.Fed {
			satisfied = append(satisfied, meal.Name)
		}
	}

	cycle := &models.CycleLog{
		PolledAt:         view.GeneratedAt,
		FeedingDayStart:  view.FeedingDayStart,
		EventCount:       view.EventCount,
		SkippedLines:     view.SkippedLines,
		SatisfiedCount:   view.SatisfiedCount,
		TotalWindows:     view.TotalWindows,
		SatisfiedWindows: strings.Join(satisfied, ","),
		LastEventAt:      view.LastEventAt,
	}

	if err := s.repo.CreateCycleLog(cycle); err != nil {
		log.Printf("Failed to record cycle history: %v", err)
	}

	if days := s.config.Database.RetentionDays; days > 0 {
		if _, err := s.repo.DeleteOldCycles(view.GeneratedAt.AddDate(0, 0, -days)); err != nil {
			log.Printf("Failed to prune old cycle history: %v", err)
		}
	}
}

func (s *Service) recordError(err error) {
	if s.repo == nil {
		return
	}

	errorLog := &models.ErrorLog{
		Timestamp: time.Now().In(s.loc),
		ErrorMsg:  err.Error(),
	}

	if dbErr := s.repo.CreateErrorLog(errorLog); dbErr != nil {
		log.Printf("Failed to store error in database: %v (original error: %v)", dbErr, err)
	}
}
