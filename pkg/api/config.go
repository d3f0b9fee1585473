package api

import (
	"github.com/pkg/errors"
	"time"
)

// Config defines the HTTP API server configuration.
type Config struct {
	Listen string `yaml:"listen" default:"localhost:5680"`
	// RequestTimeout limits the processing time of a request.
	RequestTimeout time.Duration `yaml:"request-timeout" default:"30s"`
}

// Validate checks constraints in the supplied API configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	if c.Listen == "" {
		return errors.New("listen address missing")
	}

	if c.RequestTimeout <= 0 {
		return errors.New("request-timeout must be positive")
	}

	return nil
}
