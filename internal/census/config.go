package census

import (
	"time"

	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const (
	defaultQuery     = "Sure! Pl"
	defaultDateField = "committer"
	defaultPerPage   = 100
	defaultMaxPages  = 10
	defaultMinDelay  = 1200 * time.Millisecond
	defaultWait      = 5 * time.Minute
	defaultRetries   = 3
	defaultOutput    = "surepl-commits.json"
	defaultRepoCache = "surepl-repo-cache.json"
	defaultSpanDays  = 89

	dayFormat = "2006-01-02"
)

// Config represents fetch run configuration.
type Config struct {
	// Query is the literal phrase to search for. It is quoted in the API
	// query to force exact-match semantics.
	Query     string `yaml:"query" env:"CENSUS_QUERY"`
	DateField string `yaml:"date_field" env:"CENSUS_DATE_FIELD"` // committer or author
	Start     string `yaml:"start" env:"CENSUS_START"`           // YYYY-MM-DD, default today-89
	End       string `yaml:"end" env:"CENSUS_END"`               // YYYY-MM-DD, default today

	PerPage  int           `yaml:"per_page" env:"CENSUS_PER_PAGE"`
	MaxPages int           `yaml:"max_pages" env:"CENSUS_MAX_PAGES"`
	MinDelay time.Duration `yaml:"min_delay" env:"CENSUS_MIN_DELAY"`

	// RateLimitWait caps a single wait before retrying a rate-limited page,
	// MaxRetries caps how many such waits one page may cause.
	RateLimitWait time.Duration `yaml:"rate_limit_wait" env:"CENSUS_RATE_LIMIT_WAIT"`
	MaxRetries    int           `yaml:"max_retries" env:"CENSUS_MAX_RETRIES"`

	Output string `yaml:"output" env:"CENSUS_OUTPUT"`

	EnrichRepos bool   `yaml:"enrich_repos" env:"CENSUS_ENRICH_REPOS"`
	RepoCache   string `yaml:"repo_cache" env:"CENSUS_REPO_CACHE"`
	MaxRepos    int    `yaml:"max_repos" env:"CENSUS_MAX_REPOS"`
	SkipTopics  bool   `yaml:"skip_topics" env:"CENSUS_SKIP_TOPICS"`

	start time.Time
	end   time.Time
}

func (c *Config) PrepareAndValidate() error {
	c.Query = lang.Check(c.Query, defaultQuery)
	c.DateField = lang.Check(c.DateField, defaultDateField)
	c.PerPage = lang.Check(c.PerPage, defaultPerPage)
	c.MaxPages = lang.Check(c.MaxPages, defaultMaxPages)
	c.MinDelay = lang.Check(c.MinDelay, defaultMinDelay)
	c.RateLimitWait = lang.Check(c.RateLimitWait, defaultWait)
	c.MaxRetries = lang.Check(c.MaxRetries, defaultRetries)
	c.Output = lang.Check(c.Output, defaultOutput)
	c.RepoCache = lang.Check(c.RepoCache, defaultRepoCache)

	if c.DateField != "committer" && c.DateField != "author" {
		return errm.New("date_field must be 'committer' or 'author', got: %s", c.DateField)
	}
	if c.PerPage < 1 || c.PerPage > 100 {
		return errm.New("per_page must be between 1 and 100, got: %d", c.PerPage)
	}

	today := time.Now().UTC().Truncate(24 * time.Hour)

	c.start = today.AddDate(0, 0, -defaultSpanDays)
	if c.Start != "" {
		day, err := time.ParseInLocation(dayFormat, c.Start, time.UTC)
		if err != nil {
			return errm.Wrap(err, "invalid start date")
		}
		c.start = day
	}

	c.end = today
	if c.End != "" {
		day, err := time.ParseInLocation(dayFormat, c.End, time.UTC)
		if err != nil {
			return errm.Wrap(err, "invalid end date")
		}
		c.end = day
	}

	if c.end.Before(c.start) {
		return errm.New("end date must not be before start date")
	}

	return nil
}
