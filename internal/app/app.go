package app

import (
	"context"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/maxbolgarin/census/internal/census"
	"github.com/maxbolgarin/census/internal/config"
	"github.com/maxbolgarin/census/internal/dataset"
	"github.com/maxbolgarin/census/internal/provider"
	"github.com/maxbolgarin/census/internal/server"
	"github.com/maxbolgarin/contem"
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/logze/v2"
)

// Census is the main service that wires the fetcher and the dashboard.
type Census struct {
	dashboard *server.Server

	cfg config.Config
	log logze.Logger
}

// LoadConfig reads configuration from a yaml file with environment
// overrides, or from the environment alone when no path is given.
func LoadConfig(path string) (config.Config, error) {
	var cfg config.Config
	if path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return cfg, errm.Wrap(err, "read config file")
		}
		return cfg, nil
	}
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return cfg, errm.Wrap(err, "read config from environment")
	}
	return cfg, nil
}

// New creates a new census service.
func New(ctx contem.Context, cfg config.Config) (*Census, error) {
	service := &Census{
		cfg: cfg,
		log: logze.With("component", "app"),
	}

	// The dashboard needs no credential, so it is always constructed; the
	// provider is built per fetch run where the token is actually required.
	dashboard, err := server.New(cfg.Server)
	if err != nil {
		return nil, errm.Wrap(err, "failed to create dashboard server")
	}
	service.dashboard = dashboard
	ctx.Add(dashboard.Stop)

	return service, nil
}

// RunFetch performs one fetch run and atomically replaces the dataset file.
// On any fatal error the previous dataset is left untouched.
func (s *Census) RunFetch(ctx context.Context) error {
	if err := s.cfg.ValidateFetch(); err != nil {
		return err
	}

	searchProvider, err := provider.NewProvider(s.cfg.Provider)
	if err != nil {
		return errm.Wrap(err, "failed to create search provider")
	}

	fetcher, err := census.NewFetcher(searchProvider, s.cfg.Fetch)
	if err != nil {
		return errm.Wrap(err, "failed to create fetcher")
	}

	result, err := fetcher.Run(ctx)
	if err != nil {
		return errm.Wrap(err, "fetch run failed")
	}

	if err := dataset.Save(s.cfg.Fetch.Output, result); err != nil {
		return errm.Wrap(err, "failed to save dataset")
	}

	s.log.Info("dataset written",
		"path", s.cfg.Fetch.Output,
		"commits", result.Meta.TotalCount,
		"truncated", result.Meta.Truncated)

	return nil
}

// StartDashboard starts the dashboard server and blocks until shutdown.
func (s *Census) StartDashboard(ctx context.Context) error {
	if err := s.dashboard.Start(ctx); err != nil {
		return errm.Wrap(err, "failed to start dashboard server")
	}

	s.log.Info("dashboard started", "address", s.cfg.Server.Address)

	<-ctx.Done()
	return nil
}
