package objects

import (
	"fmt"
	"github.com/pkg/errors"
)

// Object kinds as used in handles, errors and change events.
const (
	KindHost         = "Host"
	KindService      = "Service"
	KindUser         = "User"
	KindNotification = "Notification"
)

// NotFoundError is returned if a name reference cannot be resolved.
type NotFoundError struct {
	Kind string
	Name string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q does not exist", e.Kind, e.Name)
}

// IsNotFound reports whether err or any error it wraps is a *NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

func notFound(kind, name string) error {
	return &NotFoundError{Kind: kind, Name: name}
}

// Assert interface compliance.
var (
	_ error = (*NotFoundError)(nil)
)
