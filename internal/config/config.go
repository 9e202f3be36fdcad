// Package config loads and validates the layerfang run configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/Sumatoshi-tech/layerfang/pkg/layers"
	"github.com/Sumatoshi-tech/layerfang/pkg/rules"
)

// Output format names accepted by the reporter.
const (
	FormatText  = "text"
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// DefaultWorkers is the per-file analysis pool size.
const DefaultWorkers = 4

// DefaultLayers is the declared layer set used when none is configured.
var DefaultLayers = []string{"domain", "dataset", "adaptor", "service"}

// Sentinel errors for configuration validation.
var (
	ErrRootRequired     = errors.New("root directory is required")
	ErrRootNotDirectory = errors.New("root must be an existing directory")
	ErrNoLayers         = errors.New("at least one layer must be declared")
	ErrReservedLayer    = errors.New("layer name is reserved")
	ErrDuplicateLayer   = errors.New("duplicate layer name")
	ErrInvalidWorkers   = errors.New("workers must be at least 1")
	ErrUnknownFormat    = errors.New("unknown output format")
)

// Config is the immutable per-run configuration. It is built once at startup
// and threaded explicitly into every component; nothing reads ambient
// parameters. Field tags use mapstructure for viper unmarshalling.
type Config struct {
	Root         string   `mapstructure:"root"`
	PackageName  string   `mapstructure:"package_name"`
	Layers       []string `mapstructure:"layers"`
	Forbid       []string `mapstructure:"forbid"`
	IncludeTests bool     `mapstructure:"include_tests"`
	Workers      int      `mapstructure:"workers"`
	Format       string   `mapstructure:"format"`
	NoColor      bool     `mapstructure:"no_color"`
	Output       string   `mapstructure:"output"`
}

// Validate checks the configuration and fails with the first problem found.
// Any error here is fatal and aborts before scanning.
func (c *Config) Validate() error {
	if c.Root == "" {
		return ErrRootRequired
	}

	info, err := os.Stat(c.Root)
	if err != nil || !info.IsDir() {
		return fmt.Errorf("%w: %s", ErrRootNotDirectory, c.Root)
	}

	if len(c.Layers) == 0 {
		return ErrNoLayers
	}

	seen := make(map[string]struct{}, len(c.Layers))

	for _, layer := range c.Layers {
		if layers.IsReserved(layer) {
			return fmt.Errorf("%w: %q", ErrReservedLayer, layer)
		}

		if _, dup := seen[layer]; dup {
			return fmt.Errorf("%w: %q", ErrDuplicateLayer, layer)
		}

		seen[layer] = struct{}{}
	}

	if c.Workers < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Workers)
	}

	switch c.Format {
	case FormatText, FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, c.Format)
	}

	// Parsing the forbid entries also validates their shape; the resulting
	// policy must only reference declared layers.
	policy, err := c.Policy()
	if err != nil {
		return err
	}

	return policy.Validate(c.LayerNames())
}

// Policy builds the forbidden mapping from the configured entries, falling
// back to the default layered policy when none are given.
func (c *Config) Policy() (rules.Policy, error) {
	if len(c.Forbid) == 0 {
		return rules.Default(), nil
	}

	return rules.Parse(c.Forbid)
}

// LayerNames returns the declared layer set.
func (c *Config) LayerNames() layers.Names {
	return layers.NewNames(c.Layers)
}

// ResolvePackageName fills the package name from the root basename when it
// was not configured.
func (c *Config) ResolvePackageName() {
	if c.PackageName == "" {
		c.PackageName = filepath.Base(filepath.Clean(c.Root))
	}
}
