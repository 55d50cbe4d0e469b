// Package stats computes the dashboard aggregates. Everything here is a
// pure function of the loaded records: no mutation, recomputed per call.
package stats

import (
	"sort"
	"strings"
	"time"

	"github.com/maxbolgarin/census/internal/model"
)

const dayFormat = "2006-01-02"

// Summary holds the derived aggregates shown at the top of the dashboard.
type Summary struct {
	Total           int        `json:"total"`
	DistinctRepos   int        `json:"distinct_repos"`
	DistinctAuthors int        `json:"distinct_authors"`
	PerDay          []DayCount `json:"per_day"`
}

// DayCount is one bucket of the per-day time series.
type DayCount struct {
	Day   string `json:"day"`
	Count int    `json:"count"`
}

// Summarize computes the aggregates over a record sequence.
func Summarize(records []model.CommitRecord) Summary {
	repos := make(map[string]struct{})
	authors := make(map[string]struct{})
	days := make(map[string]int)

	for _, record := range records {
		if record.Repo != "" {
			repos[record.Repo] = struct{}{}
		}
		if record.AuthorLogin != "" {
			authors[record.AuthorLogin] = struct{}{}
		}
		if date := record.Date(); !date.IsZero() {
			days[date.UTC().Format(dayFormat)]++
		}
	}

	perDay := make([]DayCount, 0, len(days))
	for day, count := range days {
		perDay = append(perDay, DayCount{Day: day, Count: count})
	}
	sort.Slice(perDay, func(i, j int) bool { return perDay[i].Day < perDay[j].Day })

	return Summary{
		Total:           len(records),
		DistinctRepos:   len(repos),
		DistinctAuthors: len(authors),
		PerDay:          perDay,
	}
}

// Filter selects records by repository substring, author login and date
// range. Zero values mean "no constraint".
type Filter struct {
	Repo   string    // case-insensitive substring of the repository name
	Author string    // exact author login
	From   time.Time // inclusive
	To     time.Time // inclusive
}

// Apply returns the records matching the filter, in their original order.
func (f Filter) Apply(records []model.CommitRecord) []model.CommitRecord {
	repo := strings.ToLower(f.Repo)

	out := make([]model.CommitRecord, 0, len(records))
	for _, record := range records {
		if repo != "" && !strings.Contains(strings.ToLower(record.Repo), repo) {
			continue
		}
		if f.Author != "" && record.AuthorLogin != f.Author {
			continue
		}
		date := record.Date()
		if !f.From.IsZero() && date.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && date.After(f.To) {
			continue
		}
		out = append(out, record)
	}

	return out
}

// SortKey names a record ordering.
type SortKey string

const (
	SortByDate SortKey = "date"
	SortByRepo SortKey = "repo"
)

// SortRecords returns a sorted copy of the records; the input is untouched.
// The sort is stable so equal keys keep the provider's ranking order.
func SortRecords(records []model.CommitRecord, key SortKey, desc bool) []model.CommitRecord {
	out := make([]model.CommitRecord, len(records))
	copy(out, records)

	less := func(i, j int) bool { return out[i].Date().Before(out[j].Date()) }
	if key == SortByRepo {
		less = func(i, j int) bool { return out[i].Repo < out[j].Repo }
	}
	if desc {
		inner := less
		less = func(i, j int) bool { return inner(j, i) }
	}
	sort.SliceStable(out, less)

	return out
}
