package player

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/storage"
)

var ErrWrongPassword = errors.New("wrong password")

// Accounts authenticates players against stored, hashed passwords.
type Accounts struct {
	store storage.Storer[*Account]
	cost  int
	clock func() time.Time

	// mu guards read-modify-write of account records.
	mu sync.Mutex
}

type AccountsOpt func(*Accounts)

// WithHashCost sets the bcrypt cost used for new passwords.
func WithHashCost(cost int) AccountsOpt {
	return func(a *Accounts) {
		a.cost = cost
	}
}

func WithAccountClock(clock func() time.Time) AccountsOpt {
	return func(a *Accounts) {
		a.clock = clock
	}
}

func NewAccounts(store storage.Storer[*Account], opts ...AccountsOpt) *Accounts {
	a := &Accounts{
		store: store,
		cost:  bcrypt.DefaultCost,
		clock: time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Login checks the password of an existing account, or creates the account
// when key is unknown. created reports which happened.
func (a *Accounts) Login(display, key, password string) (acct *Account, created bool, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	now := a.clock()
	acct = a.store.Get(key)
	if acct == nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), a.cost)
		if err != nil {
			return nil, false, fmt.Errorf("hashing password: %w", err)
		}
		acct = &Account{
			Name:         display,
			PasswordHash: string(hash),
			Created:      now,
		}
		created = true
	} else if err := bcrypt.CompareHashAndPassword([]byte(acct.PasswordHash), []byte(password)); err != nil {
		return nil, false, ErrWrongPassword
	}

	updated := *acct
	updated.LastLogin = now
	if err := a.store.Save(key, &updated); err != nil {
		return nil, false, fmt.Errorf("saving account: %w", err)
	}
	return &updated, created, nil
}

// SaveState stores the character state of an existing account.
func (a *Accounts) SaveState(key string, rec *game.UserRecord) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	acct := a.store.Get(key)
	if acct == nil {
		return fmt.Errorf("account %q not found", key)
	}
	updated := *acct
	updated.State = rec
	if err := a.store.Save(key, &updated); err != nil {
		return fmt.Errorf("saving account %q: %w", key, err)
	}
	return nil
}

// State returns the saved character state for key, nil if there is none.
func (a *Accounts) State(key string) *game.UserRecord {
	acct := a.store.Get(key)
	if acct == nil {
		return nil
	}
	return acct.State
}
