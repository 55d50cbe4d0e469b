package census

import (
	"context"
	"fmt"
	"strings"
	"time"
)

const isoFormat = "2006-01-02T15:04:05Z"

type window struct {
	start time.Time
	end   time.Time
}

// dayWindow returns the inclusive [00:00:00, 23:59:59] UTC window of a day.
func dayWindow(day time.Time) window {
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	return window{start: start, end: start.Add(24*time.Hour - time.Second)}
}

// splitWindow halves a window at its second-aligned midpoint. The halves
// stay disjoint so records are not double-counted at the seam.
func splitWindow(w window) (window, window) {
	mid := w.start.Add(w.end.Sub(w.start) / 2).Truncate(time.Second)
	if !mid.After(w.start) {
		mid = w.start.Add(time.Second)
	}
	rightStart := mid.Add(time.Second)
	if rightStart.After(w.end) {
		rightStart = w.end
	}
	return window{start: w.start, end: mid}, window{start: rightStart, end: w.end}
}

// buildQuery composes the search query: the quoted phrase plus a date range
// qualifier on the configured date field.
func buildQuery(phrase, dateField string, w window) string {
	if !strings.HasPrefix(phrase, `"`) {
		phrase = `"` + phrase + `"`
	}
	return fmt.Sprintf("%s %s-date:%s..%s",
		phrase, dateField, w.start.UTC().Format(isoFormat), w.end.UTC().Format(isoFormat))
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
