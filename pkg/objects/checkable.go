package objects

import (
	"github.com/icinga/icingacore/pkg/comments"
	"github.com/icinga/icingacore/pkg/types"
	"sync"
	"sync/atomic"
	"time"
)

// Toucher marks an attribute of a comment owner for re-serialization.
type Toucher interface {
	Touch(owner comments.Handle, attribute string)
}

// CheckResult is the current check state of a service.
type CheckResult struct {
	State     types.ServiceState
	StateType types.StateType
	Output    string
	// ExecutionEnd is the time the check finished. Zero if the service has never been checked.
	ExecutionEnd time.Time
}

// registration links a registered object to its registry.
type registration struct {
	registry atomic.Pointer[Registry]
}

func (r *registration) touch(owner comments.Handle, attribute string) {
	if registry := r.registry.Load(); registry != nil {
		registry.touch(owner, attribute)
	}
}

// checkState guards the last check result of a checkable.
type checkState struct {
	mu     sync.RWMutex
	result CheckResult
}

// ProcessCheckResult replaces the current check state.
func (cs *checkState) ProcessCheckResult(cr CheckResult) {
	cs.mu.Lock()
	defer cs.mu.Unlock()

	cs.result = cr
}

// LastCheckResult returns the current check state.
func (cs *checkState) LastCheckResult() CheckResult {
	cs.mu.RLock()
	defer cs.mu.RUnlock()

	return cs.result
}
