package eventqueue

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"go.yaml.in/yaml/v3"

	eqerrors "github.com/vnykmshr/eventq/pkg/common/errors"
	"github.com/vnykmshr/eventq/pkg/common/validation"
	"github.com/vnykmshr/eventq/pkg/metrics"
)

// Settings is the file-loadable part of Config.
//
// log_level adjusts the base Logger; when the base has none, a JSON logger on
// stderr is created at that level. queue_size sizes the queue-owned pool and
// requires workers.
type Settings struct {
	PastPolicy      string          `yaml:"past_policy"`
	MaxEvents       int             `yaml:"max_events"`
	CallbackTimeout string          `yaml:"callback_timeout"`
	Workers         int             `yaml:"workers"`
	QueueSize       int             `yaml:"queue_size"`
	Timezone        string          `yaml:"timezone"`
	LogLevel        string          `yaml:"log_level"`
	Metrics         MetricsSettings `yaml:"metrics"`
}

// MetricsSettings enables Prometheus metrics under a queue name label.
type MetricsSettings struct {
	Enabled bool   `yaml:"enabled"`
	Name    string `yaml:"name"`
}

// LoadSettings reads and validates a YAML settings file.
func LoadSettings(path string) (Settings, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, eqerrors.NewOperationError(module, "LoadSettings", err).WithContext(path)
	}
	return ParseSettings(b)
}

// ParseSettings decodes YAML settings. Unknown keys are rejected.
func ParseSettings(b []byte) (Settings, error) {
	var s Settings
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&s); err != nil && !errors.Is(err, io.EOF) {
		return Settings{}, fmt.Errorf("%w: decode settings: %v", eqerrors.ErrInvalidConfiguration, err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Validate checks every field without building a Config.
func (s Settings) Validate() error {
	_, err := s.Apply(Config{})
	return err
}

// Apply copies the settings over base and returns the result.
func (s Settings) Apply(base Config) (Config, error) {
	cfg := base

	policy, err := ParsePastPolicy(s.PastPolicy)
	if err != nil {
		return base, err
	}
	cfg.PastPolicy = policy

	if err := validation.ValidateNonNegative(module, "max_events", s.MaxEvents); err != nil {
		return base, err
	}
	cfg.MaxEvents = s.MaxEvents

	if s.CallbackTimeout != "" {
		d, err := time.ParseDuration(s.CallbackTimeout)
		if err != nil {
			return base, eqerrors.NewValidationError(module, "callback_timeout", s.CallbackTimeout, "not a duration").
				WithHint(`use a Go duration such as "5s"`)
		}
		cfg.CallbackTimeout = d
	}

	if err := validation.ValidateNonNegative(module, "workers", s.Workers); err != nil {
		return base, err
	}
	if s.QueueSize != 0 && s.Workers == 0 {
		return base, eqerrors.NewValidationError(module, "queue_size", s.QueueSize, "requires workers").
			WithHint("set workers or remove queue_size")
	}
	if s.Workers > 0 {
		cfg.Workers = s.Workers
		cfg.QueueSize = s.QueueSize
	}

	if s.Timezone != "" {
		loc, err := time.LoadLocation(s.Timezone)
		if err != nil {
			return base, eqerrors.NewValidationError(module, "timezone", s.Timezone, "unknown location")
		}
		cfg.Location = loc
	}

	if s.LogLevel != "" {
		lvl, err := zerolog.ParseLevel(s.LogLevel)
		if err != nil {
			return base, eqerrors.NewValidationError(module, "log_level", s.LogLevel, "unknown level")
		}
		var l zerolog.Logger
		if cfg.Logger != nil {
			l = cfg.Logger.Level(lvl)
		} else {
			l = zerolog.New(os.Stderr).With().Timestamp().Logger().Level(lvl)
		}
		cfg.Logger = &l
	}

	if s.Metrics.Enabled && s.Metrics.Name == "" {
		return base, eqerrors.NewValidationError(module, "metrics.name", s.Metrics.Name, "required when metrics are enabled")
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}

// NewFromSettings builds a queue from base overlaid with s. When metrics are
// enabled they are recorded into metrics.DefaultRegistry.
func NewFromSettings(s Settings, base Config) (Queue, error) {
	cfg, err := s.Apply(base)
	if err != nil {
		return nil, err
	}
	if s.Metrics.Enabled {
		return NewWithConfigAndMetrics(cfg, s.Metrics.Name, metrics.DefaultConfig())
	}
	return NewWithConfig(cfg)
}
