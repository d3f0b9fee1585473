package config

import (
	"github.com/creasty/defaults"
	"github.com/goccy/go-yaml"
	"github.com/icinga/icingacore/pkg/api"
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/logging"
	"github.com/icinga/icingacore/pkg/objects"
	"github.com/icinga/icingacore/pkg/state"
	"github.com/icinga/icingacore/pkg/task"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"io"
	"os"
)

// DefaultConfigPath specifies the default location of icingacore's config.yml for package installations.
const DefaultConfigPath = "/etc/icingacore/config.yml"

// Config defines icingacore config.
type Config struct {
	Logging       logging.Config   `yaml:"logging"`
	Database      state.Config     `yaml:"database"`
	Comments      comments.Options `yaml:"comments"`
	Notifications task.Options     `yaml:"notifications"`
	API           api.Config       `yaml:"api"`
	Objects       objects.Config   `yaml:"objects"`
}

// Validate checks constraints in the supplied configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	if err := c.Logging.Validate(); err != nil {
		return errors.Wrap(err, "invalid logging config")
	}
	if err := c.Database.Validate(); err != nil {
		return errors.Wrap(err, "invalid database config")
	}
	if err := c.Comments.Validate(); err != nil {
		return errors.Wrap(err, "invalid comments config")
	}
	if err := c.Notifications.Validate(); err != nil {
		return errors.Wrap(err, "invalid notifications config")
	}
	if err := c.API.Validate(); err != nil {
		return errors.Wrap(err, "invalid api config")
	}
	if err := c.Objects.Validate(); err != nil {
		return errors.Wrap(err, "invalid objects config")
	}

	return nil
}

// Flags defines CLI flags.
type Flags struct {
	// Version decides whether to just print the version and exit.
	Version bool `long:"version" description:"print version and exit"`

	// Config is the path to the config file. If not provided, it defaults to DefaultConfigPath.
	Config string `short:"c" long:"config" description:"path to config file (default: /etc/icingacore/config.yml)"`
	// default must be kept in sync with DefaultConfigPath.
}

// GetConfigPath returns the path specified via the command line, or DefaultConfigPath if none is provided.
func (f Flags) GetConfigPath() string {
	if f.Config == "" {
		return DefaultConfigPath
	}

	return f.Config
}

// ParseFlags parses CLI flags and returns a Flags value created from them.
func ParseFlags() (*Flags, error) {
	return parseFlags(os.Args[1:])
}

func parseFlags(args []string) (*Flags, error) {
	f := &Flags{}
	parser := flags.NewParser(f, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		return nil, errors.Wrap(err, "can't parse CLI flags")
	}

	return f, nil
}

// FromYAMLFile returns a new Config value created from the given YAML config file.
func FromYAMLFile(name string) (*Config, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "can't open YAML file "+name)
	}
	defer func() { _ = f.Close() }()

	c, err := FromYAML(f)
	if err != nil {
		return nil, errors.Wrapf(err, "can't load config from %s", name)
	}

	return c, nil
}

// FromYAML decodes and validates a Config from r. Unset options get their defaults.
func FromYAML(r io.Reader) (*Config, error) {
	c := &Config{}
	if err := yaml.NewDecoder(r, yaml.DisallowUnknownField()).Decode(c); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "can't parse YAML")
	}

	// Only zero fields are set, so this must run after decoding.
	if err := defaults.Set(c); err != nil {
		return nil, errors.Wrap(err, "can't set config defaults")
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}

	return c, nil
}
