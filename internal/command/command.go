package command

import (
	"fmt"
	"github.com/icinga/icingacore/internal"
	"github.com/icinga/icingacore/internal/config"
	"github.com/icinga/icingacore/pkg/logging"
	"github.com/jessevdk/go-flags"
	"github.com/pkg/errors"
	"os"
	"runtime"
)

// Command bundles what every icingacore process needs at startup.
type Command struct {
	Flags   *config.Flags
	Config  *config.Config
	Logging *logging.Logging
	Logger  *logging.Logger
}

// New creates and returns a new Command, parses CLI flags and the YAML config, and initializes logging.
// It prints the version and exits if requested.
func New() *Command {
	f, err := config.ParseFlags()
	if err != nil {
		var fe *flags.Error
		if errors.As(err, &fe) && fe.Type == flags.ErrHelp {
			os.Exit(0)
		}

		os.Exit(2)
	}

	if f.Version {
		printVersion()
		os.Exit(0)
	}

	cfg, err := config.FromYAMLFile(f.GetConfigPath())
	if err != nil {
		fatal(err)
	}

	l, err := logging.NewLoggingFromConfig("icingacore", cfg.Logging)
	if err != nil {
		fatal(errors.Wrap(err, "can't configure logging"))
	}

	return &Command{
		Flags:   f,
		Config:  cfg,
		Logging: l,
		Logger:  l.GetLogger(),
	}
}

func printVersion() {
	fmt.Println("icingacore version:", internal.Version.Version)
	if internal.Version.Commit != "" {
		fmt.Println("Commit:", internal.Version.Commit)
	}
	fmt.Printf("Go version: %s (%s, %s)\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// fatal prints err to stderr and exits. It is used before logging is set up.
func fatal(err error) {
	_, _ = fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}
