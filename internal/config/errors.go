package config

import "errors"

var (
	ErrMissingProviderToken = errors.New("provider token is required")
)

// ValidateFetch checks the settings a fetch run cannot start without. The
// dashboard needs none of them, so this is not part of loading.
func (c *Config) ValidateFetch() error {
	if c.Provider.Token == "" {
		return ErrMissingProviderToken
	}
	return nil
}
