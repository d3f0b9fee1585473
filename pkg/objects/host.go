package objects

import (
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/macro"
	"strconv"
)

// Host is a monitored host.
// Its own check state is kept by its host check pseudo-service.
type Host struct {
	registration

	DisplayName string
	Address     string
	Macros      macro.Macros

	name     string
	comments *comments.Store
	check    *Service
}

// NewHost returns a new Host together with its host check.
func NewHost(name string) *Host {
	h := &Host{name: name}
	h.comments = comments.NewStore(func() { h.Touch(comments.Attribute) })
	h.check = &Service{host: h}

	return h
}

// Name returns the host's name.
func (h *Host) Name() string {
	return h.name
}

// Handle implements the comments.Owner interface.
func (h *Host) Handle() comments.Handle {
	return comments.Handle{Kind: KindHost, Name: h.name}
}

// Comments implements the comments.Owner interface.
func (h *Host) Comments() *comments.Store {
	return h.comments
}

// Touch marks the given attribute of the host as changed.
func (h *Host) Touch(attribute string) {
	h.touch(h.Handle(), attribute)
}

// CheckService returns the host check pseudo-service.
func (h *Host) CheckService() *Service {
	return h.check
}

// DynamicMacros returns the HOST* macros, with the state taken from the host check.
func (h *Host) DynamicMacros() macro.Macros {
	cr := h.check.LastCheckResult()

	displayName := h.DisplayName
	if displayName == "" {
		displayName = h.name
	}

	return macro.Macros{
		"HOSTNAME":        h.name,
		"HOSTDISPLAYNAME": displayName,
		"HOSTALIAS":       displayName,
		"HOSTADDRESS":     h.Address,
		"HOSTSTATE":       cr.State.HostState().String(),
		"HOSTSTATEID":     strconv.Itoa(int(cr.State.HostState())),
		"HOSTOUTPUT":      cr.Output,
	}
}

// Assert interface compliance.
var (
	_ comments.Owner = (*Host)(nil)
)
