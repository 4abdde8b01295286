package classify

import (
	"testing"
	"time"

	"feedwatch/internal/models"
)

var testWindows = []models.Window{
	{Name: "breakfast", StartHour: 7, EndHour: 10},
	{Name: "dinner", StartHour: 16, EndHour: 20},
}

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}

func events(times ...time.Time) []models.BeaconEvent {
	evs := make([]models.BeaconEvent, 0, len(times))
	for _, ts := range times {
		evs = append(evs, models.BeaconEvent{OccurredAt: ts})
	}
	return evs
}

func windowByName(t *testing.T, status models.OverallStatus, name string) models.WindowStatus {
	t.Helper()
	for _, ws := range status.Windows {
		if ws.Name == name {
			return ws
		}
	}
	t.Fatalf("window %q not in result", name)
	return models.WindowStatus{}
}

func TestFeedingDayStart(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		resetHour int
		want      time.Time
	}{
		{"afternoon", at(18, 0), 2, at(2, 0)},
		{"just after reset", at(2, 0), 2, at(2, 0)},
		{"just before reset", at(1, 59), 2, time.Date(2023, 12, 31, 2, 0, 0, 0, time.UTC)},
		{"midnight reset", at(13, 0), 0, at(0, 0)},
		{"exactly midnight with midnight reset", at(0, 0), 0, at(0, 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeedingDayStart(tt.now, tt.resetHour)
			if !got.Equal(tt.want) {
				t.Errorf("FeedingDayStart(%v, %d) = %v, want %v", tt.now, tt.resetHour, got, tt.want)
			}
		})
	}
}

// The worked scenario: two breakfast events and one dinner event, evaluated
// at 18:00. Both windows satisfied, each by its latest in-window event.
func TestClassifyScenario(t *testing.T) {
	evs := events(at(7, 30), at(7, 45), at(17, 10))
	status := Classify(evs, at(18, 0), 2, testWindows)

	breakfast := windowByName(t, status, "breakfast")
	if !breakfast.Satisfied {
		t.Error("breakfast not satisfied")
	}
	if breakfast.SatisfyingEvent == nil || !breakfast.SatisfyingEvent.OccurredAt.Equal(at(7, 45)) {
		t.Errorf("breakfast satisfying event = %v, want 07:45", breakfast.SatisfyingEvent)
	}

	dinner := windowByName(t, status, "dinner")
	if !dinner.Satisfied {
		t.Error("dinner not satisfied")
	}
	if dinner.SatisfyingEvent == nil || !dinner.SatisfyingEvent.OccurredAt.Equal(at(17, 10)) {
		t.Errorf("dinner satisfying event = %v, want 17:10", dinner.SatisfyingEvent)
	}

	if status.LastEventOverall == nil || !status.LastEventOverall.OccurredAt.Equal(at(17, 10)) {
		t.Errorf("LastEventOverall = %v, want 17:10", status.LastEventOverall)
	}
}

func TestClassifyWindowBoundaries(t *testing.T) {
	tests := []struct {
		name      string
		event     time.Time
		window    string
		satisfied bool
	}{
		{"exactly at start is inside", at(7, 0), "breakfast", true},
		{"exactly at end is outside", at(10, 0), "breakfast", false},
		{"one second before end is inside", time.Date(2024, 1, 1, 9, 59, 59, 0, time.UTC), "breakfast", true},
		{"before start is outside", at(6, 59), "breakfast", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status := Classify(events(tt.event), at(12, 0), 2, testWindows)
			ws := windowByName(t, status, tt.window)
			if ws.Satisfied != tt.satisfied {
				t.Errorf("event at %v: satisfied = %v, want %v", tt.event, ws.Satisfied, tt.satisfied)
			}
		})
	}
}

func TestClassifyFeedingDayBoundary(t *testing.T) {
	// Reset hour 2: 01:59 belongs to the previous feeding day, 02:00 to the
	// current one. Use a window covering the small hours so membership is
	// decided by the day filter alone.
	windows := []models.Window{{Name: "early", StartHour: 0, EndHour: 6}}

	status := Classify(events(at(1, 59)), at(12, 0), 2, windows)
	if windowByName(t, status, "early").Satisfied {
		t.Error("01:59 counted toward the current feeding day, want previous")
	}

	status = Classify(events(at(2, 0)), at(12, 0), 2, windows)
	if !windowByName(t, status, "early").Satisfied {
		t.Error("02:00 not counted toward the current feeding day")
	}
}

func TestClassifyYesterdayEventsExcluded(t *testing.T) {
	yesterday := time.Date(2023, 12, 31, 7, 30, 0, 0, time.UTC)
	status := Classify(events(yesterday), at(12, 0), 2, testWindows)

	if windowByName(t, status, "breakfast").Satisfied {
		t.Error("yesterday's breakfast satisfied today's window")
	}
	// But it is still the last event overall.
	if status.LastEventOverall == nil || !status.LastEventOverall.OccurredAt.Equal(yesterday) {
		t.Errorf("LastEventOverall = %v, want yesterday 07:30", status.LastEventOverall)
	}
}

func TestClassifyLastEventOverallIgnoresWindows(t *testing.T) {
	// A 03:00 event satisfies no window but must still be reported as last
	// activity.
	status := Classify(events(at(3, 0)), at(12, 0), 2, testWindows)

	for _, ws := range status.Windows {
		if ws.Satisfied {
			t.Errorf("window %s satisfied by out-of-window event", ws.Name)
		}
	}
	if status.LastEventOverall == nil || !status.LastEventOverall.OccurredAt.Equal(at(3, 0)) {
		t.Errorf("LastEventOverall = %v, want 03:00", status.LastEventOverall)
	}
}

func TestClassifyEmptySet(t *testing.T) {
	status := Classify(nil, at(12, 0), 2, testWindows)

	if len(status.Windows) != len(testWindows) {
		t.Fatalf("got %d window statuses, want %d", len(status.Windows), len(testWindows))
	}
	for _, ws := range status.Windows {
		if ws.Satisfied {
			t.Errorf("window %s satisfied with no events", ws.Name)
		}
		if ws.SatisfyingEvent != nil {
			t.Errorf("window %s has satisfying event with no events", ws.Name)
		}
	}
	if status.LastEventOverall != nil {
		t.Errorf("LastEventOverall = %v, want nil", status.LastEventOverall)
	}
}

func TestClassifyLastQualifyingWins(t *testing.T) {
	status := Classify(events(at(7, 5), at(8, 30), at(9, 59)), at(12, 0), 2, testWindows)
	breakfast := windowByName(t, status, "breakfast")
	if breakfast.SatisfyingEvent == nil || !breakfast.SatisfyingEvent.OccurredAt.Equal(at(9, 59)) {
		t.Errorf("satisfying event = %v, want the most recent (09:59)", breakfast.SatisfyingEvent)
	}
}

func TestClassifyIdempotent(t *testing.T) {
	evs := events(at(7, 30), at(7, 45), at(17, 10))
	now := at(18, 0)

	first := Classify(evs, now, 2, testWindows)
	second := Classify(evs, now, 2, testWindows)

	if len(first.Windows) != len(second.Windows) {
		t.Fatal("window counts differ between runs")
	}
	for i := range first.Windows {
		a, b := first.Windows[i], second.Windows[i]
		if a.Satisfied != b.Satisfied {
			t.Errorf("window %s: satisfied differs between runs", a.Name)
		}
		if (a.SatisfyingEvent == nil) != (b.SatisfyingEvent == nil) {
			t.Errorf("window %s: satisfying event presence differs", a.Name)
		}
		if a.SatisfyingEvent != nil && !a.SatisfyingEvent.OccurredAt.Equal(b.SatisfyingEvent.OccurredAt) {
			t.Errorf("window %s: satisfying event differs between runs", a.Name)
		}
	}
}

func TestClassifyDuplicateEvents(t *testing.T) {
	status := Classify(events(at(7, 30), at(7, 30)), at(12, 0), 2, testWindows)
	breakfast := windowByName(t, status, "breakfast")
	if !breakfast.Satisfied || !breakfast.SatisfyingEvent.OccurredAt.Equal(at(7, 30)) {
		t.Errorf("duplicates mishandled: %+v", breakfast)
	}
}

func TestClassifyNoWindows(t *testing.T) {
	status := Classify(events(at(7, 30)), at(12, 0), 2, nil)
	if len(status.Windows) != 0 {
		t.Errorf("got %d window statuses, want 0", len(status.Windows))
	}
	if status.LastEventOverall == nil {
		t.Error("LastEventOverall missing with zero configured windows")
	}
}
