package feed

import (
	"sort"
	"strings"
	"time"

	"feedwatch/internal/models"
)

// commentMarker prefixes lines the sensor writes for humans, not for us.
const commentMarker = "#"

// timeLayouts are tried in order against the first CSV field. The sensor
// writes local wall-clock times without a zone; zoned variants are accepted
// from hand-edited logs.
var timeLayouts = []string{
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

// ParseResult is the outcome of parsing one fetched log body.
type ParseResult struct {
	Events  []models.BeaconEvent
	Skipped int // data lines whose timestamp failed to parse
}

// ParseLog converts a raw beacon log into validated events, sorted by
// ascending time. The first line is a header and is discarded
// unconditionally. Comment and blank lines are skipped. A data line whose
// first comma-delimited field fails to parse is silently dropped and only
// counted; a malformed line is never an error.
func ParseLog(raw string, loc *time.Location) ParseResult {
	var result ParseResult

	lines := strings.Split(strings.ReplaceAll(raw, "\r\n", "\n"), "\n")
	if len(lines) > 0 {
		lines = lines[1:] // header
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		field := line
		if idx := strings.Index(line, ","); idx >= 0 {
			field = line[:idx]
		}
		field = strings.TrimSpace(field)

		ts, ok := parseTimestamp(field, loc)
		if !ok {
			result.Skipped++
			continue
		}

		result.Events = append(result.Events, models.BeaconEvent{OccurredAt: ts})
	}

	// The source appends newest-last, but nothing guarantees it; the
	// classifier relies on ascending order.
	sort.Slice(result.Events, func(i, j int) bool {
		return result.Events[i].OccurredAt.Before(result.Events[j].OccurredAt)
	})

	return result
}

func parseTimestamp(s string, loc *time.Location) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.ParseInLocation(layout, s, loc); err == nil {
			return ts.In(loc), true
		}
	}
	return time.Time{}, false
}
