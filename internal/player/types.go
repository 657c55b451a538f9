package player

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mmo/internal/game"
)

// Account is a stored login and the saved state of its character.
type Account struct {
	Name         string           `json:"name"`
	PasswordHash string           `json:"password_hash"`
	Created      time.Time        `json:"created"`
	LastLogin    time.Time        `json:"last_login"`
	State        *game.UserRecord `json:"state,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (a *Account) Validate() error {
	el := errors.NewErrorList()
	if a.Name == "" {
		el.Add(fmt.Errorf("account name is required"))
	}
	if a.PasswordHash == "" {
		el.Add(fmt.Errorf("password hash is required"))
	}
	return el.Err()
}
