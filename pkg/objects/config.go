package objects

import (
	"github.com/icinga/icingacore/pkg/macro"
	"github.com/icinga/icingacore/pkg/task"
	"github.com/pkg/errors"
)

// Config defines the monitored objects.
type Config struct {
	// Vars are the application's macros.
	Vars          macro.Macros         `yaml:"vars"`
	Hosts         []HostConfig         `yaml:"hosts"`
	Users         []UserConfig         `yaml:"users"`
	Notifications []NotificationConfig `yaml:"notifications"`
}

// HostConfig defines a host and its services.
type HostConfig struct {
	Name        string          `yaml:"name"`
	DisplayName string          `yaml:"display_name"`
	Address     string          `yaml:"address"`
	Vars        macro.Macros    `yaml:"vars"`
	Services    []ServiceConfig `yaml:"services"`
}

// ServiceConfig defines a service.
type ServiceConfig struct {
	Name        string       `yaml:"name"`
	DisplayName string       `yaml:"display_name"`
	Vars        macro.Macros `yaml:"vars"`
}

// UserConfig defines a user.
type UserConfig struct {
	Name        string       `yaml:"name"`
	DisplayName string       `yaml:"display_name"`
	Email       string       `yaml:"email"`
	Pager       string       `yaml:"pager"`
	Vars        macro.Macros `yaml:"vars"`
}

// NotificationConfig defines a notification.
type NotificationConfig struct {
	Name    string            `yaml:"name"`
	Host    string            `yaml:"host"`
	Service string            `yaml:"service"`
	Command string            `yaml:"command"`
	Users   []string          `yaml:"users"`
	Vars    macro.Macros      `yaml:"vars"`
	Methods map[string]string `yaml:"methods"`
}

// Validate checks constraints in the supplied objects configuration and returns an error if they are violated.
func (c *Config) Validate() error {
	for _, h := range c.Hosts {
		if h.Name == "" {
			return errors.New("host name missing")
		}

		for _, s := range h.Services {
			if s.Name == "" {
				return errors.Errorf("service name of host %q missing", h.Name)
			}
		}
	}

	for _, u := range c.Users {
		if u.Name == "" {
			return errors.New("user name missing")
		}
	}

	for _, n := range c.Notifications {
		if n.Name == "" {
			return errors.New("notification name missing")
		}

		if n.Host == "" {
			return errors.Errorf("host of notification %q missing", n.Name)
		}
	}

	return nil
}

// Populate registers all configured objects with r.
func (c *Config) Populate(r *Registry) error {
	for _, hc := range c.Hosts {
		h := NewHost(hc.Name)
		h.DisplayName = hc.DisplayName
		h.Address = hc.Address
		h.Macros = hc.Vars

		if err := r.RegisterHost(h); err != nil {
			return err
		}

		for _, sc := range hc.Services {
			s := NewService(h, sc.Name)
			s.DisplayName = sc.DisplayName
			s.Macros = sc.Vars

			if err := r.RegisterService(s); err != nil {
				return err
			}
		}
	}

	for _, uc := range c.Users {
		u := NewUser(uc.Name)
		u.DisplayName = uc.DisplayName
		u.Email = uc.Email
		u.Pager = uc.Pager
		u.Macros = uc.Vars

		if err := r.RegisterUser(u); err != nil {
			return err
		}
	}

	for _, nc := range c.Notifications {
		n := NewNotification(nc.Name, nc.Host, nc.Service)
		n.Command = nc.Command
		n.Users = nc.Users
		n.Macros = nc.Vars

		for method, function := range nc.Methods {
			n.Methods[method] = function
		}

		if len(n.Methods) == 0 {
			n.Methods[task.NotifyMethod] = task.PluginNotificationFunction
		}

		if err := r.RegisterNotification(n); err != nil {
			return err
		}
	}

	return nil
}
