package model

import "time"

// Meta is the dataset header describing how the snapshot was produced.
type Meta struct {
	Source     string    `json:"source"`
	Query      string    `json:"query"`
	DateField  string    `json:"date_field"`
	Start      string    `json:"start"`
	End        string    `json:"end"`
	FetchedAt  time.Time `json:"fetched_at"`
	TotalCount int       `json:"total_count"`
	Truncated  bool      `json:"truncated,omitempty"`
	Notes      string    `json:"notes,omitempty"`

	RepoEnriched   int  `json:"repo_enriched,omitempty"`
	TopicsIncluded bool `json:"topics_included,omitempty"`
}

// Dataset is the persisted snapshot of one fetch run. It is written as a
// whole and never modified afterwards; the next run replaces the file.
type Dataset struct {
	Meta    Meta           `json:"meta"`
	Commits []CommitRecord `json:"commits"`
	Repos   []RepoInfo     `json:"repos,omitempty"`
}
