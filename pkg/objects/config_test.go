package objects

import (
	"github.com/icinga/icingacore/pkg/macro"
	"github.com/icinga/icingacore/pkg/task"
	"github.com/stretchr/testify/require"
	"testing"
)

func TestConfig_Populate(t *testing.T) {
	c := &Config{
		Hosts: []HostConfig{{
			Name:     "web01",
			Address:  "192.0.2.1",
			Vars:     macro.Macros{"os": "Linux"},
			Services: []ServiceConfig{{Name: "ping"}, {Name: "http", DisplayName: "HTTP"}},
		}},
		Users: []UserConfig{{Name: "jdoe", Email: "jdoe@example.com"}},
		Notifications: []NotificationConfig{
			{Name: "mail", Host: "web01", Service: "http", Command: "mail $USEREMAIL$", Users: []string{"jdoe"}},
			{Name: "chat", Host: "web01", Methods: map[string]string{task.NotifyMethod: task.ShoutrrrNotificationFunction}},
		},
	}
	require.NoError(t, c.Validate())

	r := NewRegistry(NewApplication(nil), nil)
	require.NoError(t, c.Populate(r))

	require.Len(t, r.Hosts(), 1)
	require.Len(t, r.Services(), 2)

	http, err := r.Service("web01", "http")
	require.NoError(t, err)
	require.Equal(t, "HTTP", http.DisplayName)

	mail, err := r.Notification("mail")
	require.NoError(t, err)
	fn, ok := mail.Method(task.NotifyMethod)
	require.True(t, ok)
	require.Equal(t, task.PluginNotificationFunction, fn)
	require.Len(t, r.NotificationsFor(http), 1)

	chat, err := r.Notification("chat")
	require.NoError(t, err)
	fn, ok = chat.Method(task.NotifyMethod)
	require.True(t, ok)
	require.Equal(t, task.ShoutrrrNotificationFunction, fn)

	require.Error(t, c.Populate(r), "populating twice must fail on duplicates")
}

func TestConfig_Validate(t *testing.T) {
	subtests := []struct {
		name   string
		config Config
	}{
		{"host_name", Config{Hosts: []HostConfig{{}}}},
		{"service_name", Config{Hosts: []HostConfig{{Name: "web01", Services: []ServiceConfig{{}}}}}},
		{"user_name", Config{Users: []UserConfig{{}}}},
		{"notification_name", Config{Notifications: []NotificationConfig{{Host: "web01"}}}},
		{"notification_host", Config{Notifications: []NotificationConfig{{Name: "mail"}}}},
	}

	for _, st := range subtests {
		t.Run(st.name, func(t *testing.T) {
			require.Error(t, st.config.Validate())
		})
	}

	require.NoError(t, (&Config{}).Validate())
}
