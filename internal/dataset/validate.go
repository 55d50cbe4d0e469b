package dataset

import (
	"fmt"
	"strings"

	"github.com/maxbolgarin/census/internal/model"
)

// Issue describes one problem found in a loaded dataset.
type Issue struct {
	Index  int    `json:"index"`           // record index, -1 for header issues
	Field  string `json:"field,omitempty"` // offending field name
	Reason string `json:"reason"`
}

func (i Issue) String() string {
	if i.Index < 0 {
		return fmt.Sprintf("meta: %s", i.Reason)
	}
	return fmt.Sprintf("record %d: %s", i.Index, i.Reason)
}

// Report is the result of a dataset validation pass. It names exactly which
// fields are missing or inconsistent instead of letting consumers fail on
// duck-typed access.
type Report struct {
	Issues []Issue `json:"issues,omitempty"`
}

// OK reports whether the dataset passed validation.
func (r *Report) OK() bool {
	return len(r.Issues) == 0
}

func (r *Report) Error() string {
	if r.OK() {
		return ""
	}
	lines := make([]string, 0, len(r.Issues))
	for _, issue := range r.Issues {
		lines = append(lines, issue.String())
	}
	return "invalid dataset: " + strings.Join(lines, "; ")
}

func (r *Report) add(index int, field, reason string) {
	r.Issues = append(r.Issues, Issue{Index: index, Field: field, Reason: reason})
}

// Validate checks a loaded dataset against the snapshot invariants: a
// populated header, required record fields, sha uniqueness and messages
// containing the queried phrase.
func Validate(dataset *model.Dataset) *Report {
	report := &Report{}

	if dataset.Meta.Query == "" {
		report.add(-1, "query", "missing field: query")
	}
	if dataset.Meta.FetchedAt.IsZero() {
		report.add(-1, "fetched_at", "missing field: fetched_at")
	}
	if dataset.Meta.TotalCount != len(dataset.Commits) {
		report.add(-1, "total_count", fmt.Sprintf("total_count is %d but dataset has %d records",
			dataset.Meta.TotalCount, len(dataset.Commits)))
	}

	// Search matching is case-insensitive upstream, so the containment
	// check has to be as well.
	phrase := strings.ToLower(strings.Trim(dataset.Meta.Query, `"`))
	seen := make(map[string]struct{}, len(dataset.Commits))

	for i, record := range dataset.Commits {
		if record.SHA == "" {
			report.add(i, "sha", "missing field: sha")
		}
		if record.Repo == "" {
			report.add(i, "repo", "missing field: repo")
		}
		if record.Message == "" {
			report.add(i, "message", "missing field: message")
		} else if phrase != "" && !strings.Contains(strings.ToLower(record.Message), phrase) {
			report.add(i, "message", "message does not contain the queried phrase")
		}
		if record.Date().IsZero() {
			report.add(i, "committer_date", "missing field: committer_date or author_date")
		}

		if record.SHA != "" && record.Repo != "" {
			key := record.Key()
			if _, ok := seen[key]; ok {
				report.add(i, "sha", "duplicate record: "+key)
			}
			seen[key] = struct{}{}
		}
	}

	return report
}
