package census

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDayWindow(t *testing.T) {
	w := dayWindow(time.Date(2024, 3, 15, 13, 37, 0, 0, time.UTC))

	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), w.start)
	assert.Equal(t, time.Date(2024, 3, 15, 23, 59, 59, 0, time.UTC), w.end)
}

func TestSplitWindowDisjointAndCovering(t *testing.T) {
	w := dayWindow(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))
	left, right := splitWindow(w)

	assert.Equal(t, w.start, left.start)
	assert.Equal(t, w.end, right.end)
	assert.True(t, right.start.After(left.end), "halves must not overlap")
	assert.Equal(t, time.Second, right.start.Sub(left.end), "halves must not leave a gap")
}

func TestSplitWindowTinyWindow(t *testing.T) {
	start := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	left, right := splitWindow(window{start: start, end: start.Add(time.Second)})

	assert.False(t, left.end.Before(left.start))
	assert.False(t, right.end.Before(right.start))
	assert.True(t, left.start.Equal(start))
	assert.True(t, right.end.Equal(start.Add(time.Second)))
}

func TestBuildQuery(t *testing.T) {
	w := window{
		start: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		end:   time.Date(2024, 1, 1, 23, 59, 59, 0, time.UTC),
	}

	query := buildQuery("Sure! Pl", "committer", w)
	assert.Equal(t, `"Sure! Pl" committer-date:2024-01-01T00:00:00Z..2024-01-01T23:59:59Z`, query)

	// An already quoted phrase is not quoted twice.
	query = buildQuery(`"Sure! Pl"`, "author", w)
	assert.Equal(t, `"Sure! Pl" author-date:2024-01-01T00:00:00Z..2024-01-01T23:59:59Z`, query)
}

func TestConfigDefaults(t *testing.T) {
	cfg := Config{}
	require.NoError(t, cfg.PrepareAndValidate())

	assert.Equal(t, "Sure! Pl", cfg.Query)
	assert.Equal(t, "committer", cfg.DateField)
	assert.Equal(t, 100, cfg.PerPage)
	assert.Equal(t, 10, cfg.MaxPages)
	assert.Equal(t, "surepl-commits.json", cfg.Output)
	assert.Equal(t, defaultSpanDays, int(cfg.end.Sub(cfg.start).Hours()/24))
}

func TestConfigValidation(t *testing.T) {
	cfg := Config{DateField: "pusher"}
	assert.Error(t, cfg.PrepareAndValidate())

	cfg = Config{PerPage: 500}
	assert.Error(t, cfg.PrepareAndValidate())

	cfg = Config{Start: "2024-05-01", End: "2024-04-01"}
	assert.Error(t, cfg.PrepareAndValidate())

	cfg = Config{Start: "not-a-date"}
	assert.Error(t, cfg.PrepareAndValidate())

	cfg = Config{Start: "2024-04-01", End: "2024-05-01"}
	require.NoError(t, cfg.PrepareAndValidate())
	assert.Equal(t, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC), cfg.start)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), cfg.end)
}
