package objects

import (
	"github.com/icinga/icingacore/pkg/macro"
	"github.com/icinga/icingacore/pkg/task"
	"sort"
	"sync"
)

// Notification describes whom to notify how about a service or host.
type Notification struct {
	// Command is the notification command line. It may contain macros.
	Command string
	Macros  macro.Macros
	// Users are the names of the recipients. Duplicates are allowed.
	Users []string
	// Methods maps method names, e.g. "notify", to registered task functions.
	Methods map[string]string

	name string

	// targetMu protects host and service.
	targetMu sync.RWMutex
	host     string
	service  string

	// tasksMu protects tasks.
	tasksMu sync.Mutex
	tasks   map[*task.Task]struct{}
}

// NewNotification returns a new Notification for the given host and service.
// An empty service means the host check.
func NewNotification(name, host, service string) *Notification {
	return &Notification{
		Methods: map[string]string{},
		name:    name,
		host:    host,
		service: service,
		tasks:   map[*task.Task]struct{}{},
	}
}

// Name returns the notification's name.
func (n *Notification) Name() string {
	return n.name
}

// Target returns the names of the host and the service the notification applies to.
func (n *Notification) Target() (host, service string) {
	n.targetMu.RLock()
	defer n.targetMu.RUnlock()

	return n.host, n.service
}

// Method implements the task.MethodOwner interface.
func (n *Notification) Method(name string) (string, bool) {
	function, ok := n.Methods[name]
	return function, ok && function != ""
}

// AddTask registers an in-flight task.
func (n *Notification) AddTask(t *task.Task) {
	n.tasksMu.Lock()
	defer n.tasksMu.Unlock()

	n.tasks[t] = struct{}{}
}

// RemoveTask unregisters a completed task.
func (n *Notification) RemoveTask(t *task.Task) {
	n.tasksMu.Lock()
	defer n.tasksMu.Unlock()

	delete(n.tasks, t)
}

// PendingTasks returns the number of in-flight tasks.
func (n *Notification) PendingTasks() int {
	n.tasksMu.Lock()
	defer n.tasksMu.Unlock()

	return len(n.tasks)
}

// GetService returns the service the notification applies to.
// If no service is set, this is the host check of the host.
func (n *Notification) GetService(r *Registry) (*Service, error) {
	hostName, serviceName := n.Target()

	host, err := r.Host(hostName)
	if err != nil {
		return nil, err
	}

	if serviceName == "" {
		return host.CheckService(), nil
	}

	return r.ServiceByShortName(host, serviceName)
}

// GetUsers returns the distinct recipients ordered by name.
func (n *Notification) GetUsers(r *Registry) ([]*User, error) {
	seen := make(map[string]struct{}, len(n.Users))
	users := make([]*User, 0, len(n.Users))

	for _, name := range n.Users {
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}

		user, err := r.User(name)
		if err != nil {
			return nil, err
		}

		users = append(users, user)
	}

	sort.Slice(users, func(i, j int) bool {
		return users[i].name < users[j].name
	})

	return users, nil
}

func (n *Notification) setTarget(host, service string) {
	n.targetMu.Lock()
	defer n.targetMu.Unlock()

	n.host = host
	n.service = service
}

// Assert interface compliance.
var (
	_ task.MethodOwner = (*Notification)(nil)
)
