// Package store provides the flags that select and configure the object store
// holding backups. Each store provider registers its own flags.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/leg100/kdr/pkg/blob"
	"github.com/spf13/pflag"
)

// flags represents the store provider flags
type flags interface {
	addToFlagSet(*pflag.FlagSet)
	createStore(context.Context) (blob.Store, error)
	validate() error
}

// flagMaker is a constructor for a flags obj
type flagMaker func() flags

// providerMap maps name of store provider to a flags constructor
type providerMap struct {
	name  string
	maker flagMaker
}

// providers is the collection of provider mappings
type providerMaps []providerMap

var (
	// mappings is a singleton containing collection of provider mappings
	mappings = providerMaps{}

	// ErrInvalidConfig is wrapped within all errors from this pkg, and can be
	// used by downstream to identify errors
	ErrInvalidConfig = errors.New("invalid store config")

	ErrInvalidProvider = fmt.Errorf("%w: invalid provider", ErrInvalidConfig)
)

func addProvider(name string, f flagMaker) {
	mappings = append(mappings, providerMap{name: name, maker: f})
}

// Config holds the flag configuration for all providers
type Config struct {
	providers       []string
	providerToFlags map[string]flags

	flagSet *pflag.FlagSet

	// Name of Selected provider
	Selected string
}

func NewConfig(optionalMappings ...providerMap) *Config {
	cfg := &Config{
		flagSet:         pflag.NewFlagSet("store", pflag.ContinueOnError),
		providerToFlags: make(map[string]flags),
	}

	cfgMappings := mappings
	if len(optionalMappings) > 0 {
		cfgMappings = optionalMappings
	}

	for _, m := range cfgMappings {
		cfg.providers = append(cfg.providers, m.name)
		cfg.providerToFlags[m.name] = m.maker()
		cfg.providerToFlags[m.name].addToFlagSet(cfg.flagSet)
	}

	cfg.flagSet.StringVar(&cfg.Selected, "store", "", fmt.Sprintf("Object store provider holding backups (%v)", strings.Join(cfg.providers, ",")))

	return cfg
}

// AddToFlagSet adds config's (and its providers') flagsets to fs
func (c *Config) AddToFlagSet(fs *pflag.FlagSet) {
	fs.AddFlagSet(c.flagSet)
}

// Validate all user-specified flags
func (c *Config) Validate() error {
	if c.Selected == "" {
		return fmt.Errorf("%w: no provider specified (valid providers: %s)", ErrInvalidProvider, strings.Join(c.providers, ","))
	}
	flags, ok := c.providerToFlags[c.Selected]
	if !ok {
		return fmt.Errorf("%w: %s (valid providers: %s)", ErrInvalidProvider, c.Selected, strings.Join(c.providers, ","))
	}

	// Validate selected provider's flags
	return flags.validate()
}

// CreateSelectedStore validates flags and then constructs the selected store
func (c *Config) CreateSelectedStore(ctx context.Context) (blob.Store, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c.providerToFlags[c.Selected].createStore(ctx)
}
