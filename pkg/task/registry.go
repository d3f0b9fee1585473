package task

import (
	"context"
	"github.com/icinga/icingacore/pkg/macro"
	"github.com/icinga/icingacore/pkg/types"
	"github.com/pkg/errors"
	"sync"
)

// NotifyMethod is the method sending a notification.
const NotifyMethod = "notify"

// Arguments are passed to a Function.
type Arguments struct {
	// Name of the object the method is called on.
	Name string
	// Command is the object's command line. It may contain macros.
	Command string
	// Macros are the resolved macros.
	Macros macro.Macros
	Type   types.NotificationType
}

// Function implements a method.
type Function func(ctx context.Context, args Arguments) (any, error)

// MethodOwner is an object with methods, mapping method names to function names.
type MethodOwner interface {
	Method(name string) (function string, ok bool)
}

// Registry maps function names to functions.
type Registry struct {
	mu        sync.RWMutex
	functions map[string]Function
}

// NewRegistry returns a new, empty Registry.
func NewRegistry() *Registry {
	return &Registry{functions: map[string]Function{}}
}

// Register adds the function under the given name.
func (r *Registry) Register(name string, fn Function) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.functions[name]; ok {
		return errors.Errorf("function %q already registered", name)
	}

	r.functions[name] = fn

	return nil
}

// Function returns the function with the given name.
func (r *Registry) Function(name string) (Function, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	fn, ok := r.functions[name]
	return fn, ok
}

// MakeMethodTask returns a not yet started Task calling the owner's method with args.
// It returns false if the owner has no such method or its function is not registered.
func (r *Registry) MakeMethodTask(ctx context.Context, owner MethodOwner, method string, args Arguments) (*Task, bool) {
	name, ok := owner.Method(method)
	if !ok {
		return nil, false
	}

	fn, ok := r.Function(name)
	if !ok {
		return nil, false
	}

	return New(ctx, func(ctx context.Context) (any, error) {
		return fn(ctx, args)
	}), true
}
