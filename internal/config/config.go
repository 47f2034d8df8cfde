// Package config provides configuration loading for ojcli.
package config

import (
	"net/url"
	"strings"
)

// Modes.
const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// Defaults.
const (
	DefaultProxyTarget = "http://localhost:8080"
	DefaultWebURL      = "http://localhost:5173"
	apiPrefix          = "/api"
)

// Config is the complete client configuration.
type Config struct {
	// Mode selects how the API root is found: development goes through the
	// local proxy target, production uses APIURL.
	Mode string `mapstructure:"mode" validate:"oneof=development production"`

	// APIURL is the API root in production, e.g. https://oj.example.com/api.
	APIURL string `mapstructure:"api_url" validate:"required_if=Mode production,omitempty,url"`

	// ProxyTarget is the backend origin used in development.
	ProxyTarget string `mapstructure:"proxy_target" validate:"omitempty,url"`

	// WebURL is the front end the navigator opens pages on.
	WebURL string `mapstructure:"web_url" validate:"omitempty,url"`

	// OpenBrowser controls whether navigation launches the system browser.
	OpenBrowser bool `mapstructure:"open_browser"`

	Storage StorageConfig `mapstructure:"storage"`
	Log     LogConfig     `mapstructure:"log"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

// StorageConfig selects the persistent key/value backend.
type StorageConfig struct {
	Driver        string `mapstructure:"driver" validate:"oneof=file sqlite redis"`
	Path          string `mapstructure:"path"`
	RedisAddr     string `mapstructure:"redis_addr" validate:"required_if=Driver redis,omitempty,hostname_port"`
	RedisPassword string `mapstructure:"redis_password"`
	RedisDB       int    `mapstructure:"redis_db" validate:"min=0"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Dev   bool   `mapstructure:"dev"`
}

// MetricsConfig configures request metrics export.
type MetricsConfig struct {
	// Textfile, when set, receives the request metrics in the Prometheus
	// text format when the process exits.
	Textfile string `mapstructure:"textfile"`
}

// SetDefaults fills in optional fields left empty.
func (c *Config) SetDefaults() {
	if c.Mode == "" {
		c.Mode = ModeDevelopment
	}
	if c.ProxyTarget == "" {
		c.ProxyTarget = DefaultProxyTarget
	}
	if c.WebURL == "" {
		c.WebURL = c.defaultWebURL()
	}
	if c.Storage.Driver == "" {
		c.Storage.Driver = "file"
	}
	if c.Log.Level == "" {
		c.Log.Level = "warn"
	}
}

func (c *Config) defaultWebURL() string {
	if c.Mode != ModeProduction || c.APIURL == "" {
		return DefaultWebURL
	}
	u, err := url.Parse(c.APIURL)
	if err != nil || u.Host == "" {
		return DefaultWebURL
	}
	return u.Scheme + "://" + u.Host
}

// APIBaseURL returns the root every API path is appended to.
func (c *Config) APIBaseURL() string {
	if c.Mode == ModeProduction {
		return strings.TrimRight(c.APIURL, "/")
	}
	return strings.TrimRight(c.ProxyTarget, "/") + apiPrefix
}
