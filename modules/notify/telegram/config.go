package telegram

import (
	"fmt"
	"net/url"
	"time"
)

// Config holds the Telegram module's ambient configuration. Credentials and
// destinations are not configured here — they arrive per call as
// host-persisted settings.
type Config struct {
	// APIURL overrides the Bot API base URL. Useful for self-hosted
	// bot API servers and tests.
	APIURL string `yaml:"api_url"`

	// Timeout bounds each outbound HTTP call.
	Timeout time.Duration `yaml:"timeout"`
}

// defaults applies default values to unset fields.
func (c *Config) defaults() {
	if c.APIURL == "" {
		c.APIURL = "https://api.telegram.org"
	}
	if c.Timeout <= 0 {
		c.Timeout = 60 * time.Second
	}
}

// validate checks configuration field constraints after defaults have been
// applied.
func (c *Config) validate() error {
	u, err := url.Parse(c.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("telegram: api_url must be a valid http/https URL, got %q", c.APIURL)
	}
	return nil
}
