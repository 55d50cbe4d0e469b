package stats

import (
	"testing"
	"time"

	"github.com/maxbolgarin/census/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func record(sha, repo, login string, date time.Time) model.CommitRecord {
	return model.CommitRecord{
		SHA:           sha,
		Repo:          repo,
		Message:       "Sure! Pl " + sha,
		AuthorLogin:   login,
		AuthorDate:    date,
		CommitterDate: date,
	}
}

func testRecords() []model.CommitRecord {
	return []model.CommitRecord{
		record("a1", "x/y", "bob", time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)),
		record("b2", "x/y", "alice", time.Date(2024, 1, 1, 11, 0, 0, 0, time.UTC)),
		record("c3", "z/w", "bob", time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)),
		record("d4", "acme/tools", "", time.Date(2024, 1, 3, 8, 0, 0, 0, time.UTC)),
	}
}

func TestSummarizeSingleRecord(t *testing.T) {
	summary := Summarize([]model.CommitRecord{{
		SHA:         "a1",
		Repo:        "x/y",
		Message:     "Sure! Pl deploy",
		AuthorLogin: "bob",
		AuthorDate:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}})

	assert.Equal(t, 1, summary.Total)
	assert.Equal(t, 1, summary.DistinctRepos)
	assert.Equal(t, 1, summary.DistinctAuthors)
}

func TestSummarize(t *testing.T) {
	summary := Summarize(testRecords())

	assert.Equal(t, 4, summary.Total)
	assert.Equal(t, 3, summary.DistinctRepos)
	assert.Equal(t, 2, summary.DistinctAuthors) // the anonymous author does not count

	require.Len(t, summary.PerDay, 3)
	assert.Equal(t, DayCount{Day: "2024-01-01", Count: 2}, summary.PerDay[0])
	assert.Equal(t, DayCount{Day: "2024-01-02", Count: 1}, summary.PerDay[1])
	assert.Equal(t, DayCount{Day: "2024-01-03", Count: 1}, summary.PerDay[2])
}

func TestSummarizeEmpty(t *testing.T) {
	summary := Summarize(nil)

	assert.Equal(t, 0, summary.Total)
	assert.Equal(t, 0, summary.DistinctRepos)
	assert.Equal(t, 0, summary.DistinctAuthors)
	assert.Empty(t, summary.PerDay)
}

func TestFilterRepoSubstring(t *testing.T) {
	// "x/y" appears in exactly two records.
	out := Filter{Repo: "x/y"}.Apply(testRecords())
	assert.Len(t, out, 2)

	// Substring matching is case-insensitive.
	out = Filter{Repo: "ACME"}.Apply(testRecords())
	require.Len(t, out, 1)
	assert.Equal(t, "acme/tools", out[0].Repo)

	out = Filter{Repo: "nothing"}.Apply(testRecords())
	assert.Empty(t, out)
}

func TestFilterAuthor(t *testing.T) {
	out := Filter{Author: "bob"}.Apply(testRecords())
	assert.Equal(t, []string{"a1", "c3"}, shas(out))
}

func TestFilterDateRange(t *testing.T) {
	from := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 2, 23, 59, 59, 0, time.UTC)

	out := Filter{From: from, To: to}.Apply(testRecords())
	assert.Equal(t, []string{"c3"}, shas(out))

	out = Filter{From: from}.Apply(testRecords())
	assert.Equal(t, []string{"c3", "d4"}, shas(out))

	out = Filter{To: to}.Apply(testRecords())
	assert.Equal(t, []string{"a1", "b2", "c3"}, shas(out))
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	records := testRecords()
	Filter{Repo: "x/y"}.Apply(records)
	assert.Equal(t, testRecords(), records)
}

func TestSortRecords(t *testing.T) {
	records := testRecords()

	byDateDesc := SortRecords(records, SortByDate, true)
	assert.Equal(t, []string{"d4", "c3", "b2", "a1"}, shas(byDateDesc))

	byRepo := SortRecords(records, SortByRepo, false)
	assert.Equal(t, []string{"d4", "a1", "b2", "c3"}, shas(byRepo))

	// Stable: equal repos keep their original relative order.
	assert.Equal(t, "a1", byRepo[1].SHA)
	assert.Equal(t, "b2", byRepo[2].SHA)

	// Input order is untouched.
	assert.Equal(t, []string{"a1", "b2", "c3", "d4"}, shas(records))
}

func shas(records []model.CommitRecord) []string {
	out := make([]string, 0, len(records))
	for _, r := range records {
		out = append(out, r.SHA)
	}
	return out
}
