package task

import (
	"github.com/pkg/errors"
	"time"
)

// Function names of the notification functions.
const (
	PluginNotificationFunction   = "native::PluginNotification"
	ShoutrrrNotificationFunction = "native::ShoutrrrNotification"
	NullNotificationFunction     = "native::NullNotification"
)

// DefaultShoutrrrMessage is the default message template of ShoutrrrNotification.
const DefaultShoutrrrMessage = "[$NOTIFICATIONTYPE$] $HOSTNAME$!$SERVICEDESC$ is $SERVICESTATE$: $SERVICEOUTPUT$"

// Options define the notification functions' options.
type Options struct {
	// PluginTimeout limits the runtime of notification commands.
	PluginTimeout time.Duration `yaml:"plugin-timeout" default:"1m"`
	// ShoutrrrMessage is the message template of shoutrrr notifications.
	ShoutrrrMessage string `yaml:"shoutrrr-message" default:"[$NOTIFICATIONTYPE$] $HOSTNAME$!$SERVICEDESC$ is $SERVICESTATE$: $SERVICEOUTPUT$"`
}

// Validate checks constraints in the supplied options and returns an error if they are violated.
func (o *Options) Validate() error {
	if o.PluginTimeout <= 0 {
		return errors.New("plugin-timeout must be positive")
	}

	if o.ShoutrrrMessage == "" {
		return errors.New("shoutrrr-message must not be empty")
	}

	return nil
}

// NewNotificationRegistry returns a Registry with all notification functions registered.
func NewNotificationRegistry(options Options, sender Sender) *Registry {
	r := NewRegistry()

	// The names are distinct, so registering can't fail.
	_ = r.Register(PluginNotificationFunction, PluginNotification(options.PluginTimeout))
	_ = r.Register(ShoutrrrNotificationFunction, ShoutrrrNotification(sender, options.ShoutrrrMessage))
	_ = r.Register(NullNotificationFunction, NullNotification)

	return r
}
