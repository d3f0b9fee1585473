package state

import (
	"github.com/pkg/errors"
	"time"
)

// Config defines the SQLite database the comments are persisted to.
type Config struct {
	Path    string  `yaml:"path" default:"/var/lib/icingacore/state.db"`
	Options Options `yaml:"options"`
}

// Options define user configurable persistence options.
type Options struct {
	// FlushInterval is the interval of writing changed comments to the database.
	FlushInterval time.Duration `yaml:"flush-interval" default:"10s"`
	// BusyTimeout is how long SQLite waits for a lock before reporting SQLITE_BUSY.
	BusyTimeout time.Duration `yaml:"busy-timeout" default:"5s"`
}

// Validate checks constraints in the supplied database configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	if c.Path == "" {
		return errors.New("database path missing")
	}

	return c.Options.Validate()
}

// Validate checks constraints in the supplied options and returns an error if they are violated.
func (o *Options) Validate() error {
	if o.FlushInterval <= 0 {
		return errors.New("flush-interval must be positive")
	}

	if o.BusyTimeout < 0 {
		return errors.New("busy-timeout must not be negative")
	}

	return nil
}
