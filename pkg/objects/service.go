package objects

import (
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/macro"
	"strconv"
)

// Service is a monitored service of a host.
// The zero short name denotes the host check pseudo-service, which shares its host's comments.
type Service struct {
	registration
	checkState

	DisplayName string
	Macros      macro.Macros

	host     *Host
	name     string
	comments *comments.Store
}

// NewService returns a new Service of the given host.
func NewService(host *Host, name string) *Service {
	s := &Service{host: host, name: name}
	s.comments = comments.NewStore(func() { s.Touch(comments.Attribute) })

	return s
}

// Name returns the full name "<host>!<service>", or the host name for the host check.
func (s *Service) Name() string {
	if s.IsHostCheck() {
		return s.host.name
	}

	return s.host.name + "!" + s.name
}

// ShortName returns the service name without the host part.
func (s *Service) ShortName() string {
	return s.name
}

// HostName returns the name of the service's host.
func (s *Service) HostName() string {
	return s.host.name
}

// IsHostCheck reports whether s is the host check pseudo-service of its host.
func (s *Service) IsHostCheck() bool {
	return s.name == ""
}

// Handle implements the comments.Owner interface.
// The host check is represented by its host.
func (s *Service) Handle() comments.Handle {
	if s.IsHostCheck() {
		return s.host.Handle()
	}

	return comments.Handle{Kind: KindService, Name: s.Name()}
}

// Comments implements the comments.Owner interface.
func (s *Service) Comments() *comments.Store {
	if s.IsHostCheck() {
		return s.host.comments
	}

	return s.comments
}

// Touch marks the given attribute of the service as changed.
func (s *Service) Touch(attribute string) {
	if s.IsHostCheck() {
		s.host.Touch(attribute)
		return
	}

	s.touch(s.Handle(), attribute)
}

// DynamicMacros returns the SERVICE* macros computed from the current check state.
func (s *Service) DynamicMacros() macro.Macros {
	cr := s.LastCheckResult()

	displayName := s.DisplayName
	if displayName == "" {
		displayName = s.name
	}

	var lastCheck string
	if !cr.ExecutionEnd.IsZero() {
		lastCheck = strconv.FormatInt(cr.ExecutionEnd.Unix(), 10)
	}

	return macro.Macros{
		"SERVICEDESC":        s.name,
		"SERVICEDISPLAYNAME": displayName,
		"SERVICESTATE":       cr.State.String(),
		"SERVICESTATEID":     strconv.Itoa(int(cr.State)),
		"SERVICESTATETYPE":   cr.StateType.String(),
		"SERVICEOUTPUT":      cr.Output,
		"LASTSERVICECHECK":   lastCheck,
	}
}

// Assert interface compliance.
var (
	_ comments.Owner = (*Service)(nil)
)
