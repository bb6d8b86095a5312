// Package config provides YAML configuration parsing for the hasticctl
// binary and for host applications that wire the hastic client from a
// configuration file instead of code.
//
// Example configuration:
//
//	url: http://localhost:8000
//	timeout: 5s
//	status_poll_interval: 1s
//	span_poll_interval: 3s
//	headers:
//	  Authorization: Bearer ${HASTIC_TOKEN}
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultTimeout            = 10 * time.Second
	defaultStatusPollInterval = time.Second
	defaultSpanPollInterval   = 3 * time.Second
)

// minPollInterval prevents accidental DoS of the server with overly
// aggressive polling.
const minPollInterval = 100 * time.Millisecond

// Config is the root configuration structure.
//
// It maps directly to the YAML file. Use [Load] or [Parse] to create one.
type Config struct {
	// URL is the Hastic datasource URL. Required.
	// Supports environment variable substitution: ${VAR} or ${VAR:-default}
	URL string `yaml:"url"`

	// Timeout bounds each request. Defaults to 10s.
	Timeout Duration `yaml:"timeout"`

	// StatusPollInterval is the delay between unit status polls.
	// Defaults to 1s.
	StatusPollInterval Duration `yaml:"status_poll_interval"`

	// SpanPollInterval is the delay between detection span polls.
	// Defaults to 3s.
	SpanPollInterval Duration `yaml:"span_poll_interval"`

	// Headers are custom HTTP headers sent with every request.
	// Values support environment variable substitution.
	Headers map[string]string `yaml:"headers"`
}

// Duration wraps time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}

	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}

	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(:-([^}]*))?\}`)

// expandEnvVars replaces ${VAR} and ${VAR:-default} patterns with
// environment values.
func expandEnvVars(s string) (string, error) {
	var firstErr error

	result := envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if firstErr != nil {
			return match
		}

		submatches := envVarPattern.FindStringSubmatch(match)
		if len(submatches) < 2 {
			return match
		}

		varName := submatches[1]
		hasDefault := len(submatches) > 2 && submatches[2] != ""
		defaultVal := ""
		if hasDefault && len(submatches) > 3 {
			defaultVal = submatches[3]
		}

		value, exists := os.LookupEnv(varName)
		if !exists {
			if hasDefault {
				return defaultVal
			}
			firstErr = fmt.Errorf("environment variable %q is not set", varName)
			return match
		}
		return value
	})

	if firstErr != nil {
		return "", firstErr
	}
	return result, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse parses YAML configuration data.
//
// Environment variables are expanded in URL and header values, then
// defaults are applied and the result validated.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if cfg.Timeout == 0 {
		cfg.Timeout = Duration(defaultTimeout)
	}
	if cfg.StatusPollInterval == 0 {
		cfg.StatusPollInterval = Duration(defaultStatusPollInterval)
	}
	if cfg.SpanPollInterval == 0 {
		cfg.SpanPollInterval = Duration(defaultSpanPollInterval)
	}

	if err := cfg.expandAndValidate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// expandAndValidate expands environment variables and validates the config.
func (c *Config) expandAndValidate() error {
	if c.URL == "" {
		return errors.New("url is required")
	}
	expanded, err := expandEnvVars(c.URL)
	if err != nil {
		return fmt.Errorf("url: %w", err)
	}
	c.URL = expanded

	parsedURL, err := url.Parse(c.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", parsedURL.Scheme)
	}

	for k, v := range c.Headers {
		expanded, err := expandEnvVars(v)
		if err != nil {
			return fmt.Errorf("headers[%s]: %w", k, err)
		}
		c.Headers[k] = expanded
	}

	if c.Timeout.Duration() < 0 {
		return fmt.Errorf("timeout cannot be negative, got %s", c.Timeout.Duration())
	}
	if c.StatusPollInterval.Duration() < minPollInterval {
		return fmt.Errorf("status_poll_interval must be at least %s, got %s",
			minPollInterval, c.StatusPollInterval.Duration())
	}
	if c.SpanPollInterval.Duration() < minPollInterval {
		return fmt.Errorf("span_poll_interval must be at least %s, got %s",
			minPollInterval, c.SpanPollInterval.Duration())
	}

	return nil
}
