package config

import (
	"github.com/maxbolgarin/census/internal/census"
	"github.com/maxbolgarin/census/internal/provider"
	"github.com/maxbolgarin/census/internal/server"
)

// Config represents the main application configuration. Each section is
// prepared and validated by the component that owns it.
type Config struct {
	Provider provider.Config `yaml:"provider"`
	Fetch    census.Config   `yaml:"fetch"`
	Server   server.Config   `yaml:"server"`
}
