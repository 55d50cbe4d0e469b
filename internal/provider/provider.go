package provider

import (
	"github.com/maxbolgarin/census/internal/model"
	"github.com/maxbolgarin/census/internal/provider/github"
	"github.com/maxbolgarin/erro"
)

// NewProvider creates the commit search provider based on the configuration.
// The census targets one fixed API, so there is a single implementation
// behind the SearchProvider seam.
func NewProvider(cfg Config) (model.SearchProvider, error) {
	if err := cfg.PrepareAndValidate(); err != nil {
		return nil, erro.Wrap(err, "validate config")
	}

	provider, err := github.New(github.Config{
		BaseURL:   cfg.BaseURL,
		Token:     cfg.Token,
		UserAgent: cfg.UserAgent,
	})
	if err != nil {
		return nil, erro.Wrap(err, "failed to create provider")
	}

	return provider, nil
}
