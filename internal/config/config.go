// Package config loads the client configuration from an optional YAML
// file, with environment-variable overrides on top.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Breaker struct {
	// FailureThreshold is the number of consecutive network failures
	// before the breaker opens.
	FailureThreshold uint32
	// OpenTimeout is how long the breaker stays open before probing.
	OpenTimeout time.Duration
}

type Config struct {
	BaseURL string
	Timeout time.Duration
	Breaker Breaker
}

func Default() Config {
	return Config{
		BaseURL: "http://localhost:8080",
		Timeout: 30 * time.Second,
		Breaker: Breaker{
			FailureThreshold: 5,
			OpenTimeout:      30 * time.Second,
		},
	}
}

// fileConfig is the YAML shape. Durations are strings ("30s", "1m") since
// yaml.v3 has no native time.Duration decoding.
type fileConfig struct {
	BaseURL string `yaml:"base_url"`
	Timeout string `yaml:"timeout"`
	Breaker struct {
		FailureThreshold *uint32 `yaml:"failure_threshold"`
		OpenTimeout      string  `yaml:"open_timeout"`
	} `yaml:"breaker"`
}

// Load reads the YAML file at path when path is non-empty, then applies
// env overrides. Unset fields keep their defaults.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		var fc fileConfig
		if err := yaml.Unmarshal(raw, &fc); err != nil {
			return cfg, fmt.Errorf("parse config: %w", err)
		}
		if fc.BaseURL != "" {
			cfg.BaseURL = fc.BaseURL
		}
		if err := setDuration(&cfg.Timeout, fc.Timeout, "timeout"); err != nil {
			return cfg, err
		}
		if fc.Breaker.FailureThreshold != nil {
			cfg.Breaker.FailureThreshold = *fc.Breaker.FailureThreshold
		}
		if err := setDuration(&cfg.Breaker.OpenTimeout, fc.Breaker.OpenTimeout, "breaker.open_timeout"); err != nil {
			return cfg, err
		}
	}

	if v := os.Getenv("STOREFRONT_BASE_URL"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("STOREFRONT_TIMEOUT"); v != "" {
		if err := setDuration(&cfg.Timeout, v, "STOREFRONT_TIMEOUT"); err != nil {
			return cfg, err
		}
	}
	if v := os.Getenv("STOREFRONT_BREAKER_FAILURES"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return cfg, fmt.Errorf("parse STOREFRONT_BREAKER_FAILURES: %w", err)
		}
		cfg.Breaker.FailureThreshold = uint32(n)
	}
	if v := os.Getenv("STOREFRONT_BREAKER_OPEN_TIMEOUT"); v != "" {
		if err := setDuration(&cfg.Breaker.OpenTimeout, v, "STOREFRONT_BREAKER_OPEN_TIMEOUT"); err != nil {
			return cfg, err
		}
	}

	return cfg, nil
}

func setDuration(dst *time.Duration, raw, field string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return fmt.Errorf("parse %s: %w", field, err)
	}
	*dst = d
	return nil
}
