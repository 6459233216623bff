package priceprovider

import (
	"fmt"
	"net/url"
	"time"
)

const defaultSourceTimeout = 5 * time.Second

// Config lists the price sources in order of preference.
type Config struct {
	Sources []string      `long:"source" description:"URL of a price source; repeat the option to add more sources"`
	Timeout time.Duration `long:"timeout" description:"The timeout of a single price source request"`
}

func DefaultConfig() Config {
	return Config{
		Timeout: defaultSourceTimeout,
	}
}

func (c *Config) Validate() error {
	if len(c.Sources) == 0 {
		return fmt.Errorf("at least one price source is required")
	}
	for _, s := range c.Sources {
		u, err := url.Parse(s)
		if err != nil {
			return fmt.Errorf("invalid price source %q: %w", s, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("invalid price source %q: scheme must be http or https", s)
		}
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("price source timeout must be positive, got %v", c.Timeout)
	}

	return nil
}
