package census

import (
	"context"
	"errors"
	"os"
	"sort"

	jsoniter "github.com/json-iterator/go"
	"github.com/maxbolgarin/census/internal/model"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// enrichRepos fetches metadata for every distinct repository in the dataset.
// A cache file makes re-runs skip repositories fetched before. Individual
// failures are skipped; hitting the rate-limit ceiling fails the run.
func (f *Fetcher) enrichRepos(ctx context.Context, dataset *model.Dataset) error {
	cache := loadRepoCache(f.cfg.RepoCache, f.log)

	names := distinctRepos(dataset.Commits)
	if f.cfg.MaxRepos > 0 && len(names) > f.cfg.MaxRepos {
		names = names[:f.cfg.MaxRepos]
	}

	for _, name := range names {
		if _, ok := cache[name]; ok {
			continue
		}
		f.log.Debug("enriching repository", "repo", name)

		info, err := retryRateLimited(ctx, f, func() (*model.RepoInfo, error) {
			return f.provider.GetRepository(ctx, name, !f.cfg.SkipTopics)
		})
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var rateErr *model.RateLimitError
			if errors.As(err, &rateErr) {
				return errm.Wrap(err, "rate limit exhausted while enriching "+name)
			}
			f.log.Warn("repository fetch failed, skipping", "repo", name, "error", err)
			continue
		}
		cache[name] = *info

		if err := f.pause(ctx); err != nil {
			return err
		}
	}

	if err := saveRepoCache(f.cfg.RepoCache, cache); err != nil {
		f.log.Warn("failed to save repo cache", "path", f.cfg.RepoCache, "error", err)
	}

	dataset.Repos = make([]model.RepoInfo, 0, len(names))
	for _, name := range names {
		if info, ok := cache[name]; ok {
			dataset.Repos = append(dataset.Repos, info)
		}
	}
	dataset.Meta.RepoEnriched = len(dataset.Repos)
	dataset.Meta.TopicsIncluded = !f.cfg.SkipTopics

	return nil
}

func distinctRepos(records []model.CommitRecord) []string {
	seen := make(map[string]struct{}, len(records))
	names := make([]string, 0, len(records))
	for _, record := range records {
		if record.Repo == "" {
			continue
		}
		if _, ok := seen[record.Repo]; ok {
			continue
		}
		seen[record.Repo] = struct{}{}
		names = append(names, record.Repo)
	}
	sort.Strings(names)
	return names
}

// loadRepoCache reads the cache file, ignoring a missing or unreadable one.
func loadRepoCache(path string, log logze.Logger) map[string]model.RepoInfo {
	cache := make(map[string]model.RepoInfo)
	if path == "" {
		return cache
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("cannot read repo cache, starting empty", "path", path, "error", err)
		}
		return cache
	}
	if err := json.Unmarshal(data, &cache); err != nil {
		log.Warn("ignoring malformed repo cache", "path", path, "error", err)
		return make(map[string]model.RepoInfo)
	}

	return cache
}

func saveRepoCache(path string, cache map[string]model.RepoInfo) error {
	if path == "" {
		return nil
	}

	data, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return errm.Wrap(err, "marshal repo cache")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errm.Wrap(err, "write repo cache")
	}

	return nil
}
