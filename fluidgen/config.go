// Package fluidgen generates typed TypeScript clients from a fluid route
// table. A generation pass is a single synchronous pipeline: snapshot the
// route table, discover route files, introspect into IR, render in memory,
// then write through a sink. A fatal error anywhere means nothing is
// written.
package fluidgen

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fluidkit/fluid-go/fluidgen/ir"
	"github.com/fluidkit/fluid-go/fluidgen/typescript"
)

// DefaultConfigFile is the conventional project config file name.
const DefaultConfigFile = "fluid.config.yaml"

// Config is the project configuration for generation passes.
type Config struct {
	Boundary BoundaryConfig `yaml:"boundary"`

	Output    OutputConfig    `yaml:"output"`
	Discovery DiscoveryConfig `yaml:"discovery"`

	// Environment selects the active entry of Environments.
	Environment string `yaml:"environment"`

	// Environments maps environment names to their settings.
	Environments map[string]EnvironmentConfig `yaml:"environments"`
}

// BoundaryConfig declares the project boundary.
type BoundaryConfig struct {
	// Prefixes lists the package path prefixes considered part of the
	// project. Types outside every prefix are treated as external.
	Prefixes []string `yaml:"prefixes"`
}

// OutputConfig controls where and how generated files are laid out.
type OutputConfig struct {
	// Root is the output directory for generated files.
	Root string `yaml:"root"`

	// Placement is "mirror" (default) or "colocate".
	Placement string `yaml:"placement"`
}

// DiscoveryConfig controls filesystem route discovery.
type DiscoveryConfig struct {
	// Enabled turns the filesystem scan on.
	Enabled bool `yaml:"enabled"`

	// Root is the directory to scan, relative to the working directory.
	// Defaults to ".".
	Root string `yaml:"root"`

	Tokens  []string `yaml:"tokens"`
	Include []string `yaml:"include"`
	Exclude []string `yaml:"exclude"`
}

// EnvironmentConfig is the per-environment client configuration.
type EnvironmentConfig struct {
	BaseURL string `yaml:"base_url"`
}

// LoadConfig reads and validates a YAML config file. Unknown keys are
// rejected so typos fail loudly instead of silently falling back to
// defaults.
func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, &ir.ConfigError{Context: path, Reason: err.Error()}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the configuration and fills in defaults.
func (c *Config) Validate() error {
	if c.Output.Root == "" {
		c.Output.Root = "src/lib/api"
	}
	switch c.Output.Placement {
	case "":
		c.Output.Placement = string(typescript.PlacementMirror)
	case string(typescript.PlacementMirror), string(typescript.PlacementColocate):
	default:
		return &ir.ConfigError{
			Context: "output.placement",
			Reason:  fmt.Sprintf("unknown placement %q, want mirror or colocate", c.Output.Placement),
		}
	}
	if c.Discovery.Root == "" {
		c.Discovery.Root = "."
	}
	if c.Environment != "" {
		if _, ok := c.Environments[c.Environment]; !ok {
			return &ir.ConfigError{
				Context: "environment",
				Reason:  fmt.Sprintf("environment %q is not defined", c.Environment),
			}
		}
	}
	return nil
}

// BaseURL returns the base URL of the active environment, or empty when no
// environment is configured.
func (c *Config) BaseURL() string {
	if c.Environment == "" {
		return ""
	}
	return c.Environments[c.Environment].BaseURL
}
