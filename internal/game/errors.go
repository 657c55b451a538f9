package game

import (
	"errors"
	"fmt"

	"github.com/pixil98/go-mmo/internal/protocol"
)

var (
	ErrUserExists   = errors.New("user already in world")
	ErrUserNotFound = errors.New("user not found")
	ErrNotUser      = errors.New("entity is not a user")
)

// UserError is a failure caused by a player's request. The player is told
// through the error code.
type UserError struct {
	Code protocol.Code
	Args []any
}

func (e *UserError) Error() string {
	return fmt.Sprintf("rejected with %s", e.Code)
}

// Message is the protocol message reporting the error to the player.
func (e *UserError) Message() protocol.Message {
	return protocol.New(e.Code, e.Args...)
}

func userError(code protocol.Code, args ...any) error {
	return &UserError{Code: code, Args: args}
}
