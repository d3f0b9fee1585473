package objects

import "github.com/icinga/icingacore/pkg/macro"

// User is a notification recipient.
type User struct {
	DisplayName string
	Email       string
	Pager       string
	Macros      macro.Macros

	name string
}

// NewUser returns a new User.
func NewUser(name string) *User {
	return &User{name: name}
}

// Name returns the user's name.
func (u *User) Name() string {
	return u.name
}

// DynamicMacros returns the USER* macros.
func (u *User) DynamicMacros() macro.Macros {
	displayName := u.DisplayName
	if displayName == "" {
		displayName = u.name
	}

	return macro.Macros{
		"USERNAME":        u.name,
		"USERDISPLAYNAME": displayName,
		"USEREMAIL":       u.Email,
		"USERPAGER":       u.Pager,
	}
}
