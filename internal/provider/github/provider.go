package github

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/go-github/v57/github"
	"github.com/maxbolgarin/census/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
	"golang.org/x/oauth2"
)

var _ model.SearchProvider = (*Provider)(nil)

const rateLimitGrace = 2 * time.Second

// Config represents GitHub client configuration.
type Config struct {
	BaseURL   string
	Token     string
	UserAgent string
}

// Provider implements the SearchProvider interface for the GitHub search API.
type Provider struct {
	client *github.Client
	config Config
	logger logze.Logger
}

// New creates a new GitHub provider.
func New(config Config) (*Provider, error) {
	if config.Token == "" {
		return nil, errm.New("GitHub token is required")
	}
	log := logze.With("provider", "github")

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: config.Token},
	)
	tc := oauth2.NewClient(context.Background(), ts)

	client := github.NewClient(tc)

	// Set base URL if provided (for GitHub Enterprise)
	if config.BaseURL != "" {
		var err error
		client, err = github.NewClient(tc).WithEnterpriseURLs(config.BaseURL, config.BaseURL)
		if err != nil {
			return nil, errm.Wrap(err, "failed to create GitHub Enterprise client")
		}
	}
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}

	return &Provider{
		client: client,
		config: config,
		logger: log,
	}, nil
}

// GetCurrentUser retrieves information about the current authenticated user.
func (p *Provider) GetCurrentUser(ctx context.Context) (*model.User, error) {
	user, _, err := p.client.Users.Get(ctx, "")
	if err != nil {
		return nil, convertError(err, "failed to get current user")
	}

	return &model.User{
		Login: user.GetLogin(),
		Name:  user.GetName(),
	}, nil
}

// SearchCommits retrieves one page of commit search results. Pages are
// 1-based. A rate-limited request is returned as *model.RateLimitError so
// the caller can wait and retry the same page.
func (p *Provider) SearchCommits(ctx context.Context, query string, page, perPage int) (*model.SearchPage, error) {
	opts := &github.SearchOptions{
		ListOptions: github.ListOptions{
			Page:    page,
			PerPage: perPage,
		},
	}

	result, _, err := p.client.Search.Commits(ctx, query, opts)
	if err != nil {
		return nil, convertError(err, "failed to search commits")
	}

	out := &model.SearchPage{
		TotalCount: result.GetTotal(),
		Incomplete: result.GetIncompleteResults(),
		Records:    make([]model.CommitRecord, 0, len(result.Commits)),
	}
	for _, item := range result.Commits {
		out.Records = append(out.Records, toRecord(item))
	}

	p.logger.Debug("fetched search page", "page", page, "items", len(out.Records), "total", out.TotalCount)

	return out, nil
}

// GetRepository retrieves repository metadata. When includeTopics is set,
// topics missing from the repository payload are backfilled from the
// dedicated endpoint.
func (p *Provider) GetRepository(ctx context.Context, fullName string, includeTopics bool) (*model.RepoInfo, error) {
	owner, repo, err := splitFullName(fullName)
	if err != nil {
		return nil, err
	}

	repository, _, err := p.client.Repositories.Get(ctx, owner, repo)
	if err != nil {
		return nil, convertError(err, "failed to get repository")
	}

	info := toRepoInfo(repository)
	if includeTopics && len(info.Topics) == 0 {
		topics, _, err := p.client.Repositories.ListAllTopics(ctx, owner, repo)
		if err != nil {
			// Topics are supplementary metadata, not worth failing the fetch.
			p.logger.Warn("failed to list repository topics", "repo", fullName, "error", err)
		} else {
			info.Topics = topics
		}
	}

	return info, nil
}

func toRecord(item *github.CommitResult) model.CommitRecord {
	record := model.CommitRecord{
		SHA:       item.GetSHA(),
		Repo:      item.GetRepository().GetFullName(),
		RepoURL:   item.GetRepository().GetHTMLURL(),
		CommitURL: item.GetHTMLURL(),
		Message:   item.GetCommit().GetMessage(),
	}

	// Commits may have no associated GitHub account, e.g. after the author
	// deleted theirs; the git-level name and dates are still present.
	if author := item.GetAuthor(); author != nil {
		record.AuthorLogin = author.GetLogin()
		record.AuthorURL = author.GetHTMLURL()
	}
	if commitAuthor := item.GetCommit().GetAuthor(); commitAuthor != nil {
		record.AuthorName = commitAuthor.GetName()
		record.AuthorDate = commitAuthor.GetDate().Time
	}
	if committer := item.GetCommit().GetCommitter(); committer != nil {
		record.CommitterDate = committer.GetDate().Time
	}

	return record
}

func toRepoInfo(repository *github.Repository) *model.RepoInfo {
	return &model.RepoInfo{
		FullName:    repository.GetFullName(),
		HTMLURL:     repository.GetHTMLURL(),
		Description: repository.GetDescription(),
		Homepage:    repository.GetHomepage(),
		Topics:      repository.Topics,
		Language:    repository.GetLanguage(),
		OwnerLogin:  repository.GetOwner().GetLogin(),
		OwnerType:   repository.GetOwner().GetType(),
		CreatedAt:   repository.GetCreatedAt().Time,
		UpdatedAt:   repository.GetUpdatedAt().Time,
		PushedAt:    repository.GetPushedAt().Time,
		Stars:       repository.GetStargazersCount(),
		Forks:       repository.GetForksCount(),
		Archived:    repository.GetArchived(),
		IsTemplate:  repository.GetIsTemplate(),
		License:     repository.GetLicense().GetSPDXID(),
	}
}

func splitFullName(fullName string) (string, string, error) {
	parts := strings.Split(fullName, "/")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", errm.New("invalid repository name, expected 'owner/repo': %s", fullName)
	}
	return parts[0], parts[1], nil
}

// convertError maps go-github errors to census errors: rate limit conditions
// become recoverable *model.RateLimitError, bad credentials get a clear
// message so the run fails with an explicit authentication error.
func convertError(err error, msg string) error {
	var rateErr *github.RateLimitError
	if errors.As(err, &rateErr) {
		return &model.RateLimitError{
			ResetAfter: max(time.Until(rateErr.Rate.Reset.Time), 0) + rateLimitGrace,
		}
	}

	var abuseErr *github.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		return &model.RateLimitError{
			ResetAfter: abuseErr.GetRetryAfter() + rateLimitGrace,
		}
	}

	var respErr *github.ErrorResponse
	if errors.As(err, &respErr) && respErr.Response != nil && respErr.Response.StatusCode == http.StatusUnauthorized {
		return errm.Wrap(err, "authentication failed, check the provided token")
	}

	return errm.Wrap(err, msg)
}
