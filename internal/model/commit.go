package model

import "time"

// CommitRecord is one matched commit, flattened from the search API response.
type CommitRecord struct {
	SHA           string    `json:"sha"`
	Repo          string    `json:"repo"`
	RepoURL       string    `json:"repo_url,omitempty"`
	CommitURL     string    `json:"commit_url,omitempty"`
	Message       string    `json:"message"`
	AuthorLogin   string    `json:"author_login,omitempty"`
	AuthorURL     string    `json:"author_url,omitempty"`
	AuthorName    string    `json:"author_name,omitempty"`
	AuthorDate    time.Time `json:"author_date"`
	CommitterDate time.Time `json:"committer_date"`
}

// Key identifies a record within one dataset snapshot. Commit search can
// return the same commit from forked repositories, so the repository name is
// part of the key.
func (c CommitRecord) Key() string {
	return c.Repo + ":" + c.SHA
}

// Date returns the date used for bucketing and sorting, preferring the
// committer date because search windows are built on it by default.
func (c CommitRecord) Date() time.Time {
	if !c.CommitterDate.IsZero() {
		return c.CommitterDate
	}
	return c.AuthorDate
}

// RepoInfo is optional repository metadata fetched during enrichment.
type RepoInfo struct {
	FullName    string    `json:"full_name"`
	HTMLURL     string    `json:"html_url,omitempty"`
	Description string    `json:"description,omitempty"`
	Homepage    string    `json:"homepage,omitempty"`
	Topics      []string  `json:"topics,omitempty"`
	Language    string    `json:"language,omitempty"`
	OwnerLogin  string    `json:"owner_login,omitempty"`
	OwnerType   string    `json:"owner_type,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	PushedAt    time.Time `json:"pushed_at"`
	Stars       int       `json:"stargazers_count"`
	Forks       int       `json:"forks_count"`
	Archived    bool      `json:"archived,omitempty"`
	IsTemplate  bool      `json:"is_template,omitempty"`
	License     string    `json:"license,omitempty"`
}

// User represents the authenticated API user.
type User struct {
	Login string
	Name  string
}

// SearchPage is one page of commit search results.
type SearchPage struct {
	TotalCount int
	Incomplete bool
	Records    []CommitRecord
}
