package model

import "context"

// SearchProvider abstracts the commit search API.
type SearchProvider interface {
	// GetCurrentUser returns the authenticated user, used to fail fast on a
	// bad credential before any search request is made.
	GetCurrentUser(ctx context.Context) (*User, error)

	// SearchCommits returns one page of commit search results for the given
	// query. Pages are 1-based. A rate-limited request is reported as
	// *RateLimitError so the caller can wait and retry the same page.
	SearchCommits(ctx context.Context, query string, page, perPage int) (*SearchPage, error)

	// GetRepository returns metadata for a repository in "owner/name" form.
	// When includeTopics is set, missing topics are backfilled from the
	// dedicated topics endpoint.
	GetRepository(ctx context.Context, fullName string, includeTopics bool) (*RepoInfo, error)
}
