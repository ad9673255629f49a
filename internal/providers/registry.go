package providers

import (
	"embed"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed config/sources.yaml
var sourcesYAML embed.FS

// SourceConfig defines a single upstream provider.
type SourceConfig struct {
	ID             string `yaml:"id" json:"id"`
	Name           string `yaml:"name" json:"name"`
	Description    string `yaml:"description" json:"description"`
	Color          string `yaml:"color" json:"color"`
	BaseURL        string `yaml:"base_url" json:"-"`
	APIKey         string `yaml:"api_key,omitempty" json:"-"`
	TimeoutSeconds int    `yaml:"timeout_seconds,omitempty" json:"-"`
}

// Timeout returns the per-provider request timeout.
func (c SourceConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 20 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

type registryFile struct {
	Sources []SourceConfig `yaml:"sources"`
}

// Registry holds the configured providers in their fixed, declared
// order. Merge order and the /sources listing both follow this order.
type Registry struct {
	configs   []SourceConfig
	providers map[string]Provider
}

// LoadRegistry reads the embedded sources.yaml, expanding ${VAR}
// references from the environment, and constructs one adapter per
// configured source.
func LoadRegistry() (*Registry, error) {
	data, err := sourcesYAML.ReadFile("config/sources.yaml")
	if err != nil {
		return nil, fmt.Errorf("reading embedded sources.yaml: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	var file registryFile
	if err := yaml.Unmarshal([]byte(expanded), &file); err != nil {
		return nil, fmt.Errorf("parsing sources.yaml: %w", err)
	}
	if len(file.Sources) == 0 {
		return nil, fmt.Errorf("sources.yaml defines no sources")
	}

	r := &Registry{providers: make(map[string]Provider, len(file.Sources))}
	for _, cfg := range file.Sources {
		p, err := newProvider(cfg)
		if err != nil {
			return nil, err
		}
		r.configs = append(r.configs, cfg)
		r.providers[cfg.ID] = p
	}
	return r, nil
}

// NewRegistry builds a registry from pre-constructed providers,
// preserving the order of configs for merging and listing.
func NewRegistry(configs []SourceConfig, provs map[string]Provider) *Registry {
	r := &Registry{providers: make(map[string]Provider, len(configs))}
	for _, cfg := range configs {
		if p, ok := provs[cfg.ID]; ok {
			r.configs = append(r.configs, cfg)
			r.providers[cfg.ID] = p
		}
	}
	return r
}

func newProvider(cfg SourceConfig) (Provider, error) {
	switch cfg.ID {
	case "sam":
		return NewSAMGov(cfg), nil
	case "usaspending":
		return NewUSASpending(cfg), nil
	case "grants":
		return NewGrantsGov(cfg), nil
	default:
		return nil, fmt.Errorf("no adapter for source id %q", cfg.ID)
	}
}

// Lookup returns the adapter for a provider id.
func (r *Registry) Lookup(id string) (Provider, bool) {
	p, ok := r.providers[id]
	return p, ok
}

// Order returns all provider ids in declared order.
func (r *Registry) Order() []string {
	ids := make([]string, 0, len(r.configs))
	for _, cfg := range r.configs {
		ids = append(ids, cfg.ID)
	}
	return ids
}

// Sources returns the static source descriptors for the listing
// endpoint.
func (r *Registry) Sources() []SourceConfig {
	out := make([]SourceConfig, len(r.configs))
	copy(out, r.configs)
	return out
}
