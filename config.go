package hamal

import (
	"context"
	"fmt"

	"github.com/viant/afs"
	"github.com/viant/hamal/internal/logging"
	"github.com/viant/hamal/service/meta"
)

// Config is a serialisable representation of the middleware configuration. It can
// be populated from JSON or YAML. The zero-value is useful – all nested fields
// inherit their package defaults.
type Config struct {
	Logging   *logging.Config `json:"logging,omitempty" yaml:"logging,omitempty"`
	Tracing   TracingConfig   `json:"tracing" yaml:"tracing"`
	Events    EventsConfig    `json:"events" yaml:"events"`
	PolicyURL string          `json:"policyURL,omitempty" yaml:"policyURL,omitempty"`
}

// TracingConfig configures OpenTelemetry span export
type TracingConfig struct {
	Enabled        bool   `json:"enabled" yaml:"enabled"`
	ServiceName    string `json:"serviceName,omitempty" yaml:"serviceName,omitempty"`
	ServiceVersion string `json:"serviceVersion,omitempty" yaml:"serviceVersion,omitempty"`
	OutputFile     string `json:"outputFile,omitempty" yaml:"outputFile,omitempty"`
}

// EventsConfig configures dispatch event publishing
type EventsConfig struct {
	Enabled     bool `json:"enabled" yaml:"enabled"`
	QueueBuffer int  `json:"queueBuffer,omitempty" yaml:"queueBuffer,omitempty"`
}

// DefaultConfig returns a Config populated with the default values used by
// New. Callers may modify the returned struct before passing it to NewFromConfig.
func DefaultConfig() *Config {
	return &Config{
		Logging: &logging.Config{Level: "info", Format: "console", Outputs: []string{"stderr"}},
		Tracing: TracingConfig{ServiceName: "hamal", ServiceVersion: "dev"},
		Events:  EventsConfig{QueueBuffer: 100},
	}
}

// Validate returns error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Tracing.Enabled && c.Tracing.ServiceName == "" {
		return fmt.Errorf("tracing.serviceName must be set when tracing is enabled")
	}
	if c.Events.QueueBuffer < 0 {
		return fmt.Errorf("events.queueBuffer must be >= 0")
	}
	if c.Logging != nil {
		switch c.Logging.Format {
		case "", "console", "json":
		default:
			return fmt.Errorf("logging.format must be console or json, but had %v", c.Logging.Format)
		}
	}
	return nil
}

// LoadConfig loads configuration from YAML or JSON resource; ${env.KEY} expressions are expanded
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	ret := DefaultConfig()
	if err := meta.New(afs.New(), "").Load(ctx, URL, ret); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := ret.Validate(); err != nil {
		return nil, err
	}
	return ret, nil
}
