package census

import (
	"context"
	"errors"
	"time"

	"github.com/maxbolgarin/abstract"
	"github.com/maxbolgarin/census/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

const (
	// The search API serves at most this many results per query; wider
	// windows are split until they fit or cannot be split further.
	resultWindowCap = 1000
	minSplitWindow  = time.Hour

	datasetSource = "GitHub Search API (commits)"
	datasetNotes  = "Commit search is capped at 1000 results per query; time windows are split when needed."
)

// Fetcher pages through commit search results and assembles a dataset.
// Requests are strictly sequential: one page in flight, a min-delay pause
// between pages and a bounded wait when the provider rate-limits.
type Fetcher struct {
	provider model.SearchProvider
	cfg      Config
	log      logze.Logger
}

// NewFetcher creates a new dataset fetcher.
func NewFetcher(provider model.SearchProvider, cfg Config) (*Fetcher, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, errm.Wrap(err, "validate config")
	}

	return &Fetcher{
		provider: provider,
		cfg:      cfg,
		log:      logze.With("component", "fetcher"),
	}, nil
}

// Run fetches every matching commit in the configured date span and returns
// the assembled dataset. It fails on the first non-recoverable error without
// producing a partial dataset.
func (f *Fetcher) Run(ctx context.Context) (*model.Dataset, error) {
	timer := abstract.StartTimer()

	user, err := retryRateLimited(ctx, f, func() (*model.User, error) {
		return f.provider.GetCurrentUser(ctx)
	})
	if err != nil {
		return nil, errm.Wrap(err, "credential check failed")
	}

	f.log.Info("starting fetch run",
		"user", user.Login,
		"user_name", user.Name,
		"query", f.cfg.Query,
		"start", f.cfg.start.Format(dayFormat),
		"end", f.cfg.end.Format(dayFormat))

	var (
		raw       []model.CommitRecord
		truncated bool
	)
	for day := f.cfg.start; !day.After(f.cfg.end); day = day.AddDate(0, 0, 1) {
		f.log.Debug("fetching day", "day", day.Format(dayFormat))

		records, trunc, err := f.fetchWindow(ctx, dayWindow(day))
		if err != nil {
			return nil, errm.Wrap(err, "fetch day "+day.Format(dayFormat))
		}
		raw = append(raw, records...)
		truncated = truncated || trunc

		if err := f.pause(ctx); err != nil {
			return nil, err
		}
	}

	commits := f.dedupe(raw)

	dataset := &model.Dataset{
		Meta: model.Meta{
			Source:     datasetSource,
			Query:      f.cfg.Query,
			DateField:  f.cfg.DateField,
			Start:      f.cfg.start.Format(dayFormat),
			End:        f.cfg.end.Format(dayFormat),
			FetchedAt:  time.Now().UTC(),
			TotalCount: len(commits),
			Truncated:  truncated,
			Notes:      datasetNotes,
		},
		Commits: commits,
	}

	if f.cfg.EnrichRepos {
		if err := f.enrichRepos(ctx, dataset); err != nil {
			return nil, errm.Wrap(err, "enrich repositories")
		}
	}

	f.log.Info("fetch run finished",
		"commits", len(commits),
		"truncated", truncated,
		"elapsed_time", timer.ElapsedTime().String())

	return dataset, nil
}

// fetchWindow collects every record of one time window, splitting the window
// in half when the reported total exceeds the provider's result cap.
func (f *Fetcher) fetchWindow(ctx context.Context, w window) ([]model.CommitRecord, bool, error) {
	query := buildQuery(f.cfg.Query, f.cfg.DateField, w)

	page, err := f.searchPage(ctx, query, 1)
	if err != nil {
		return nil, false, err
	}
	total := page.TotalCount

	if total > resultWindowCap && w.end.Sub(w.start) > minSplitWindow {
		left, right := splitWindow(w)

		if err := f.pause(ctx); err != nil {
			return nil, false, err
		}
		leftRecords, leftTrunc, err := f.fetchWindow(ctx, left)
		if err != nil {
			return nil, false, err
		}

		if err := f.pause(ctx); err != nil {
			return nil, false, err
		}
		rightRecords, rightTrunc, err := f.fetchWindow(ctx, right)
		if err != nil {
			return nil, false, err
		}

		return append(leftRecords, rightRecords...), leftTrunc || rightTrunc, nil
	}

	records := page.Records
	pageNum := 1
	for len(page.Records) == f.cfg.PerPage && pageNum < f.cfg.MaxPages {
		if err := f.pause(ctx); err != nil {
			return nil, false, err
		}

		pageNum++
		page, err = f.searchPage(ctx, query, pageNum)
		if err != nil {
			return nil, false, err
		}
		records = append(records, page.Records...)
	}

	truncated := total > resultWindowCap
	if truncated {
		f.log.Warn("window still exceeds the result cap, output may be truncated",
			"start", w.start.Format(isoFormat), "end", w.end.Format(isoFormat), "total", total)
	}

	return records, truncated, nil
}

// searchPage requests one page, waiting out rate limits and retrying the
// same page cursor so pagination resumes mid-run instead of restarting.
func (f *Fetcher) searchPage(ctx context.Context, query string, page int) (*model.SearchPage, error) {
	return retryRateLimited(ctx, f, func() (*model.SearchPage, error) {
		return f.provider.SearchCommits(ctx, query, page, f.cfg.PerPage)
	})
}

// retryRateLimited runs a provider call, pausing and retrying on rate-limit
// signals up to the configured ceiling. Any other error is final.
func retryRateLimited[T any](ctx context.Context, f *Fetcher, call func() (T, error)) (T, error) {
	var zero T
	for attempt := 0; ; attempt++ {
		result, err := call()
		if err == nil {
			return result, nil
		}

		var rateErr *model.RateLimitError
		if !errors.As(err, &rateErr) {
			return zero, err
		}
		if attempt >= f.cfg.MaxRetries {
			return zero, errm.Wrap(err, "rate limit retry ceiling reached")
		}

		wait := min(rateErr.ResetAfter, f.cfg.RateLimitWait)
		f.log.Info("rate limited, waiting before retrying", "wait", wait.String(), "attempt", attempt+1)
		if err := sleepContext(ctx, wait); err != nil {
			return zero, err
		}
	}
}

// dedupe drops records missing a required field and collapses duplicates
// (the same commit can appear at window seams and in forks), preserving
// first-seen order.
func (f *Fetcher) dedupe(raw []model.CommitRecord) []model.CommitRecord {
	seen := make(map[string]struct{}, len(raw))
	out := make([]model.CommitRecord, 0, len(raw))

	for _, record := range raw {
		if record.SHA == "" || record.Repo == "" {
			f.log.Warn("dropping record with missing required field",
				"sha", record.SHA, "repo", record.Repo, "url", record.CommitURL)
			continue
		}
		if _, ok := seen[record.Key()]; ok {
			continue
		}
		seen[record.Key()] = struct{}{}
		out = append(out, record)
	}

	return out
}

func (f *Fetcher) pause(ctx context.Context) error {
	return sleepContext(ctx, f.cfg.MinDelay)
}
