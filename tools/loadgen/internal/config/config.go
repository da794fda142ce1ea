// Package config provides configuration for the storefront load generator.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Errors returned by the config package.
var (
	// ErrInvalidConfig is returned when the configuration is invalid.
	ErrInvalidConfig = errors.New("config: invalid configuration")
	// ErrConfigNotFound is returned when the config file is not found.
	ErrConfigNotFound = errors.New("config: configuration file not found")
)

// Journey names understood by the shopper package.
const (
	JourneyBrowse       = "browse"
	JourneyCart         = "cart"
	JourneyCheckout     = "checkout"
	JourneyPrescription = "prescription"
	JourneyAccount      = "account"
)

// KnownJourneys lists every journey in a stable order.
var KnownJourneys = []string{JourneyBrowse, JourneyCart, JourneyCheckout, JourneyPrescription, JourneyAccount}

// Config is the root configuration for a load test.
type Config struct {
	// Name is a descriptive name for this run.
	Name string `yaml:"name"`

	// Target describes the storefront under test.
	Target TargetConfig `yaml:"target"`

	// Duration is the total duration of the load test.
	// Default: 1m
	Duration time.Duration `yaml:"duration"`

	// QPS is the rate at which journeys start.
	// Default: 5
	QPS float64 `yaml:"qps"`

	// Burst is the token bucket size for journey starts.
	// Default: 1
	Burst int `yaml:"burst"`

	// Concurrency caps journeys in flight.
	// Default: 10
	Concurrency int `yaml:"concurrency"`

	// Journeys weights each journey; zero or missing disables it.
	Journeys map[string]int `yaml:"journeys"`

	// Seed makes generated shopper data reproducible; 0 picks a random seed.
	Seed uint64 `yaml:"seed"`

	// Prometheus is the listen address of the metrics endpoint, e.g. ":9091".
	Prometheus string `yaml:"prometheus"`
}

// TargetConfig holds target system configuration.
type TargetConfig struct {
	// BaseURL is the storefront origin (e.g. "http://localhost:8080").
	BaseURL string `yaml:"baseURL"`

	// APIVersion is the API version prefix.
	// Default: "v1"
	APIVersion string `yaml:"apiVersion"`

	// Timeout is the per-request timeout.
	// Default: 10s
	Timeout time.Duration `yaml:"timeout"`
}

// APIBase returns the versioned API root, e.g. http://host/api/v1
func (t TargetConfig) APIBase() string {
	return strings.TrimRight(t.BaseURL, "/") + "/api/" + t.APIVersion
}

// Default returns a configuration exercising every journey.
func Default() *Config {
	cfg := &Config{
		Name:   "storefront",
		Target: TargetConfig{BaseURL: "http://localhost:8080"},
		Journeys: map[string]int{
			JourneyBrowse:       5,
			JourneyCart:         3,
			JourneyCheckout:     2,
			JourneyPrescription: 1,
			JourneyAccount:      1,
		},
	}
	cfg.ApplyDefaults()
	return cfg
}

// Load reads a YAML configuration file and applies defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration and applies defaults.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyDefaults fills zero values.
func (c *Config) ApplyDefaults() {
	if c.Target.APIVersion == "" {
		c.Target.APIVersion = "v1"
	}
	if c.Target.Timeout == 0 {
		c.Target.Timeout = 10 * time.Second
	}
	if c.Duration == 0 {
		c.Duration = time.Minute
	}
	if c.QPS == 0 {
		c.QPS = 5
	}
	if c.Burst == 0 {
		c.Burst = 1
	}
	if c.Concurrency == 0 {
		c.Concurrency = 10
	}
}

// Validate reports the first configuration problem.
func (c *Config) Validate() error {
	if c.Target.BaseURL == "" {
		return fmt.Errorf("%w: target.baseURL is required", ErrInvalidConfig)
	}
	if c.QPS < 0 || c.Burst < 0 || c.Concurrency < 0 || c.Duration < 0 {
		return fmt.Errorf("%w: qps, burst, concurrency and duration must not be negative", ErrInvalidConfig)
	}

	total := 0
	for name, weight := range c.Journeys {
		if !isKnownJourney(name) {
			return fmt.Errorf("%w: unknown journey %q", ErrInvalidConfig, name)
		}
		if weight < 0 {
			return fmt.Errorf("%w: journey %q has negative weight", ErrInvalidConfig, name)
		}
		total += weight
	}
	if total == 0 {
		return fmt.Errorf("%w: at least one journey needs a positive weight", ErrInvalidConfig)
	}
	return nil
}

// EnabledJourneys returns journeys with a positive weight in KnownJourneys order.
func (c *Config) EnabledJourneys() []string {
	var names []string
	for _, name := range KnownJourneys {
		if c.Journeys[name] > 0 {
			names = append(names, name)
		}
	}
	return names
}

func isKnownJourney(name string) bool {
	for _, known := range KnownJourneys {
		if known == name {
			return true
		}
	}
	return false
}
