package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Config holds configuration for metrics collection.
type Config struct {
	// Enabled controls whether metrics collection is active.
	Enabled bool

	// Registry is the Prometheus registerer to use. If nil, DefaultRegistry is used.
	Registry prometheus.Registerer
}

// DefaultConfig returns a default metrics configuration.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
	}
}

var (
	resolvedMu sync.Mutex
	resolved   = map[prometheus.Registerer]*Registry{}
)

// Resolve returns the Registry a component should record into, or nil when
// metrics are disabled. Components resolving the same registerer share one
// Registry, so collectors are registered once.
func (c Config) Resolve() *Registry {
	if !c.Enabled {
		return nil
	}
	if c.Registry == nil || c.Registry == prometheus.DefaultRegisterer {
		return DefaultRegistry
	}

	resolvedMu.Lock()
	defer resolvedMu.Unlock()
	if r, ok := resolved[c.Registry]; ok {
		return r
	}
	r := NewRegistry(c.Registry)
	resolved[c.Registry] = r
	return r
}
