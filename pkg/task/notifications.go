package task

import (
	"bytes"
	"context"
	"github.com/icinga/icingacore/pkg/macro"
	"github.com/nicholas-fedor/shoutrrr"
	"github.com/pkg/errors"
	"os"
	"os/exec"
	"sort"
	"strings"
	"time"
)

// PluginNotification returns a Function that runs the macro-resolved command line with /bin/sh.
// The macros are exported to the command's environment as ICINGA_<NAME>.
// The command is killed after timeout.
func PluginNotification(timeout time.Duration) Function {
	return func(ctx context.Context, args Arguments) (any, error) {
		if args.Command == "" {
			return nil, errors.Errorf("notification %q has no command", args.Name)
		}

		commandLine, err := macro.Resolve(args.Command, args.Macros)
		if err != nil {
			return nil, errors.Wrapf(err, "can't resolve command of notification %q", args.Name)
		}

		ctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		var output bytes.Buffer
		cmd := exec.CommandContext(ctx, "/bin/sh", "-c", commandLine)
		cmd.Env = append(os.Environ(), environment(args.Macros)...)
		cmd.Stdout = &output
		cmd.Stderr = &output
		cmd.WaitDelay = time.Second

		if err := cmd.Run(); err != nil {
			if ctx.Err() == context.DeadlineExceeded {
				return nil, errors.Errorf("notification command %q timed out after %s", commandLine, timeout)
			}

			return nil, errors.Wrapf(err, "notification command %q failed: %s",
				commandLine, strings.TrimSpace(output.String()))
		}

		return strings.TrimSpace(output.String()), nil
	}
}

// Sender sends a message to a shoutrrr service URL.
type Sender interface {
	Send(url, message string) error
}

// ShoutrrrSender sends messages via shoutrrr.
type ShoutrrrSender struct{}

// Send implements the Sender interface.
func (ShoutrrrSender) Send(url, message string) error {
	return shoutrrr.Send(url, message)
}

// ShoutrrrNotification returns a Function that sends the macro-resolved message template
// to the macro-resolved command, which is a shoutrrr service URL.
func ShoutrrrNotification(sender Sender, template string) Function {
	return func(ctx context.Context, args Arguments) (any, error) {
		url, err := macro.Resolve(args.Command, args.Macros)
		if err != nil {
			return nil, errors.Wrapf(err, "can't resolve service URL of notification %q", args.Name)
		}

		if url == "" {
			return nil, errors.Errorf("notification %q has no service URL", args.Name)
		}

		message, err := macro.Resolve(template, args.Macros)
		if err != nil {
			return nil, errors.Wrapf(err, "can't resolve message of notification %q", args.Name)
		}

		if err := sender.Send(url, message); err != nil {
			return nil, errors.Wrapf(err, "can't send notification %q", args.Name)
		}

		return message, nil
	}
}

// NullNotification does nothing.
func NullNotification(context.Context, Arguments) (any, error) {
	return nil, nil
}

// environment returns the macros as sorted ICINGA_<NAME>=<value> pairs.
func environment(macros macro.Macros) []string {
	env := make([]string, 0, len(macros))
	for name, value := range macros {
		env = append(env, "ICINGA_"+name+"="+value)
	}

	sort.Strings(env)

	return env
}
