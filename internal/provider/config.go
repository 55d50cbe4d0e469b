package provider

import (
	"github.com/maxbolgarin/errm"
	"github.com/maxbolgarin/lang"
)

const defaultUserAgent = "surepl-commit-census"

// Config represents search API provider configuration.
type Config struct {
	BaseURL   string `yaml:"base_url" env:"PROVIDER_BASE_URL"`
	Token     string `yaml:"token" env:"GITHUB_TOKEN"`
	UserAgent string `yaml:"user_agent" env:"PROVIDER_USER_AGENT"`
}

func (c *Config) PrepareAndValidate() error {
	if c.Token == "" {
		return errm.New("token is required")
	}

	c.UserAgent = lang.Check(c.UserAgent, defaultUserAgent)

	return nil
}
