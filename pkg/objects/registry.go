package objects

import (
	"fmt"
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/pkg/errors"
	"sort"
	"sync"
)

// ChangeType specifies what happened to an object.
type ChangeType uint8

const (
	Created ChangeType = iota
	Deleted
	Modified
)

// String returns "created", "deleted" or "modified".
func (ct ChangeType) String() string {
	switch ct {
	case Created:
		return "created"
	case Deleted:
		return "deleted"
	default:
		return "modified"
	}
}

// Change describes a structural change of the object population.
type Change struct {
	Type ChangeType
	Kind string
	Name string
}

// Registry holds all objects by kind and name.
// It implements comments.Source, resolving handles to registered hosts and services.
//
// Listeners registered with OnChange are called after every structural change,
// i.e. objects being registered or unregistered and notification targets being changed.
// They are called outside of the registry's lock, in the order they have been registered.
type Registry struct {
	app     *Application
	toucher Toucher

	mu            sync.RWMutex
	hosts         map[string]*Host
	services      map[string]*Service
	users         map[string]*User
	notifications map[string]*Notification
	// byService maps service names, or host names for host checks, to their notifications.
	byService map[string][]*Notification

	listenersMu sync.Mutex
	listeners   []func(Change)
}

// NewRegistry returns a new, empty Registry.
// Touches of the comment stores of registered hosts and services are forwarded to toucher, which may be nil.
func NewRegistry(app *Application, toucher Toucher) *Registry {
	return &Registry{
		app:           app,
		toucher:       toucher,
		hosts:         map[string]*Host{},
		services:      map[string]*Service{},
		users:         map[string]*User{},
		notifications: map[string]*Notification{},
		byService:     map[string][]*Notification{},
	}
}

// Application returns the application singleton.
func (r *Registry) Application() *Application {
	return r.app
}

// OnChange registers a listener for structural changes.
func (r *Registry) OnChange(listener func(Change)) {
	r.listenersMu.Lock()
	defer r.listenersMu.Unlock()

	r.listeners = append(r.listeners, listener)
}

// AttachCache refreshes c now and after every structural change,
// so that its index follows hosts and services coming and going.
func (r *Registry) AttachCache(c *comments.Cache) {
	r.OnChange(func(Change) { c.Refresh() })
	c.Refresh()
}

// RegisterHost adds the host.
func (r *Registry) RegisterHost(h *Host) error {
	r.mu.Lock()

	if _, ok := r.hosts[h.name]; ok {
		r.mu.Unlock()
		return errors.Errorf("%s %q already exists", KindHost, h.name)
	}

	r.hosts[h.name] = h
	h.registry.Store(r)
	r.mu.Unlock()

	r.changed(Change{Type: Created, Kind: KindHost, Name: h.name})

	return nil
}

// UnregisterHost removes the host and all of its services.
func (r *Registry) UnregisterHost(name string) error {
	r.mu.Lock()

	h, ok := r.hosts[name]
	if !ok {
		r.mu.Unlock()
		return notFound(KindHost, name)
	}

	var removed []string
	for fullName, s := range r.services {
		if s.host == h {
			delete(r.services, fullName)
			s.registry.Store(nil)
			removed = append(removed, fullName)
		}
	}

	delete(r.hosts, name)
	h.registry.Store(nil)
	r.mu.Unlock()

	sort.Strings(removed)
	for _, fullName := range removed {
		r.changed(Change{Type: Deleted, Kind: KindService, Name: fullName})
	}

	r.changed(Change{Type: Deleted, Kind: KindHost, Name: name})

	return nil
}

// RegisterService adds the service. Its host must already be registered.
func (r *Registry) RegisterService(s *Service) error {
	if s.IsHostCheck() {
		return errors.Errorf("can't register the host check of %s %q", KindHost, s.host.name)
	}

	r.mu.Lock()

	if h, ok := r.hosts[s.host.name]; !ok || h != s.host {
		r.mu.Unlock()
		return notFound(KindHost, s.host.name)
	}

	name := s.Name()
	if _, ok := r.services[name]; ok {
		r.mu.Unlock()
		return errors.Errorf("%s %q already exists", KindService, name)
	}

	r.services[name] = s
	s.registry.Store(r)
	r.mu.Unlock()

	r.changed(Change{Type: Created, Kind: KindService, Name: name})

	return nil
}

// UnregisterService removes the service.
func (r *Registry) UnregisterService(host, service string) error {
	name := host + "!" + service

	r.mu.Lock()

	s, ok := r.services[name]
	if !ok {
		r.mu.Unlock()
		return notFound(KindService, name)
	}

	delete(r.services, name)
	s.registry.Store(nil)
	r.mu.Unlock()

	r.changed(Change{Type: Deleted, Kind: KindService, Name: name})

	return nil
}

// RegisterUser adds the user.
func (r *Registry) RegisterUser(u *User) error {
	r.mu.Lock()

	if _, ok := r.users[u.name]; ok {
		r.mu.Unlock()
		return errors.Errorf("%s %q already exists", KindUser, u.name)
	}

	r.users[u.name] = u
	r.mu.Unlock()

	r.changed(Change{Type: Created, Kind: KindUser, Name: u.name})

	return nil
}

// UnregisterUser removes the user.
func (r *Registry) UnregisterUser(name string) error {
	r.mu.Lock()

	if _, ok := r.users[name]; !ok {
		r.mu.Unlock()
		return notFound(KindUser, name)
	}

	delete(r.users, name)
	r.mu.Unlock()

	r.changed(Change{Type: Deleted, Kind: KindUser, Name: name})

	return nil
}

// RegisterNotification adds the notification.
// Its host, service and users are resolved on dispatch, so they don't need to exist yet.
func (r *Registry) RegisterNotification(n *Notification) error {
	r.mu.Lock()

	if _, ok := r.notifications[n.name]; ok {
		r.mu.Unlock()
		return errors.Errorf("%s %q already exists", KindNotification, n.name)
	}

	r.notifications[n.name] = n
	r.rebuildByService()
	r.mu.Unlock()

	r.changed(Change{Type: Created, Kind: KindNotification, Name: n.name})

	return nil
}

// UnregisterNotification removes the notification.
func (r *Registry) UnregisterNotification(name string) error {
	r.mu.Lock()

	if _, ok := r.notifications[name]; !ok {
		r.mu.Unlock()
		return notFound(KindNotification, name)
	}

	delete(r.notifications, name)
	r.rebuildByService()
	r.mu.Unlock()

	r.changed(Change{Type: Deleted, Kind: KindNotification, Name: name})

	return nil
}

// SetNotificationTarget changes the host and service the notification applies to.
func (r *Registry) SetNotificationTarget(name, host, service string) error {
	r.mu.Lock()

	n, ok := r.notifications[name]
	if !ok {
		r.mu.Unlock()
		return notFound(KindNotification, name)
	}

	n.setTarget(host, service)
	r.rebuildByService()
	r.mu.Unlock()

	r.changed(Change{Type: Modified, Kind: KindNotification, Name: name})

	return nil
}

// Host returns the host with the given name.
func (r *Registry) Host(name string) (*Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.hosts[name]; ok {
		return h, nil
	}

	return nil, notFound(KindHost, name)
}

// Service returns the service with the given host and short name.
// An empty service name yields the host check.
func (r *Registry) Service(host, service string) (*Service, error) {
	h, err := r.Host(host)
	if err != nil {
		return nil, err
	}

	if service == "" {
		return h.CheckService(), nil
	}

	return r.ServiceByShortName(h, service)
}

// ServiceByShortName returns the service of the host with the given short name.
func (r *Registry) ServiceByShortName(h *Host, service string) (*Service, error) {
	name := h.name + "!" + service

	r.mu.RLock()
	defer r.mu.RUnlock()

	if s, ok := r.services[name]; ok && s.host == h {
		return s, nil
	}

	return nil, notFound(KindService, name)
}

// HostOf returns the registered host of the service.
func (r *Registry) HostOf(s *Service) (*Host, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if h, ok := r.hosts[s.host.name]; ok && h == s.host {
		return h, nil
	}

	return nil, notFound(KindHost, s.host.name)
}

// HostCheckService returns the host check pseudo-service of the host.
func (r *Registry) HostCheckService(h *Host) *Service {
	return h.CheckService()
}

// User returns the user with the given name.
func (r *Registry) User(name string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if u, ok := r.users[name]; ok {
		return u, nil
	}

	return nil, notFound(KindUser, name)
}

// Notification returns the notification with the given name.
func (r *Registry) Notification(name string) (*Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if n, ok := r.notifications[name]; ok {
		return n, nil
	}

	return nil, notFound(KindNotification, name)
}

// Hosts returns all hosts ordered by name.
func (r *Registry) Hosts() []*Host {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.hosts)
}

// Services returns all services, without host checks, ordered by name.
func (r *Registry) Services() []*Service {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.services)
}

// Users returns all users ordered by name.
func (r *Registry) Users() []*User {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.users)
}

// Notifications returns all notifications ordered by name.
func (r *Registry) Notifications() []*Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return sortedValues(r.notifications)
}

// NotificationsFor returns the notifications applying to the service, ordered by name.
func (r *Registry) NotificationsFor(s *Service) []*Notification {
	r.mu.RLock()
	defer r.mu.RUnlock()

	notifications := r.byService[s.Name()]

	return append(make([]*Notification, 0, len(notifications)), notifications...)
}

// Owners implements the comments.Source interface.
// It returns all hosts followed by all services.
func (r *Registry) Owners() []comments.Owner {
	r.mu.RLock()
	defer r.mu.RUnlock()

	owners := make([]comments.Owner, 0, len(r.hosts)+len(r.services))
	for _, h := range sortedValues(r.hosts) {
		owners = append(owners, h)
	}

	for _, s := range sortedValues(r.services) {
		owners = append(owners, s)
	}

	return owners
}

// Owner implements the comments.Source interface.
func (r *Registry) Owner(h comments.Handle) (comments.Owner, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	switch h.Kind {
	case KindHost:
		if host, ok := r.hosts[h.Name]; ok {
			return host, true
		}
	case KindService:
		if s, ok := r.services[h.Name]; ok {
			return s, true
		}
	}

	return nil, false
}

func (r *Registry) touch(owner comments.Handle, attribute string) {
	if r.toucher != nil {
		r.toucher.Touch(owner, attribute)
	}
}

// rebuildByService rebuilds the notifications by service cache. r.mu must be locked.
func (r *Registry) rebuildByService() {
	byService := map[string][]*Notification{}

	for _, n := range sortedValues(r.notifications) {
		host, service := n.Target()

		key := host
		if service != "" {
			key += "!" + service
		}

		byService[key] = append(byService[key], n)
	}

	r.byService = byService
}

func (r *Registry) changed(change Change) {
	r.listenersMu.Lock()
	listeners := append([]func(Change){}, r.listeners...)
	r.listenersMu.Unlock()

	for _, listener := range listeners {
		listener(change)
	}
}

type named interface {
	Name() string
}

// sortedValues returns the values of m ordered by name.
func sortedValues[T named](m map[string]T) []T {
	values := make([]T, 0, len(m))
	for _, v := range m {
		values = append(values, v)
	}

	sort.Slice(values, func(i, j int) bool {
		return values[i].Name() < values[j].Name()
	})

	return values
}

// Assert interface compliance.
var (
	_ comments.Source = (*Registry)(nil)
	_ fmt.Stringer    = ChangeType(0)
)
