package user

import (
	"errors"
	"fmt"
)

// ErrUserNotFound is returned when a lookup does not match any user
var ErrUserNotFound = errors.New("user not found")

// ErrInvalidCredentials is returned when the username/password pair does not
// match a registered user
var ErrInvalidCredentials = errors.New("invalid credentials or user does not exist")

// ErrUsernameAlreadyExists is returned when attempting to register a username that already exists
type ErrUsernameAlreadyExists struct {
	Username string
}

func (e ErrUsernameAlreadyExists) Error() string {
	return fmt.Sprintf("username already exists: %s", e.Username)
}
