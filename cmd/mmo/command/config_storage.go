package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-mmo/internal/data"
	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/player"
	"github.com/pixil98/go-mmo/internal/storage"
)

type StorageConfig struct {
	// Data is the root of the game definitions.
	Data string `json:"data"`
	// Map is the id of the map to run. Empty runs without terrain.
	Map string `json:"map"`
	// Accounts is where player accounts are kept. It is created if missing.
	Accounts string `json:"accounts"`
}

func (c *StorageConfig) Validate() error {
	el := errors.NewErrorList()

	if c.Data == "" {
		el.Add(fmt.Errorf("storage: data is required"))
	} else if _, err := os.Stat(c.Data); err != nil {
		el.Add(fmt.Errorf("storage: invalid data path %q: %w", c.Data, err))
	}
	if c.Accounts == "" {
		el.Add(fmt.Errorf("storage: accounts is required"))
	}

	return el.Err()
}

// BuildRegistry loads the game definitions and resolves them into a
// registry.
func (c *StorageConfig) BuildRegistry() (*game.Registry, error) {
	dict, err := data.Open(c.Data)
	if err != nil {
		return nil, fmt.Errorf("opening data: %w", err)
	}
	reg, err := dict.Build(c.Map)
	if err != nil {
		return nil, fmt.Errorf("building registry: %w", err)
	}
	return reg, nil
}

func (c *StorageConfig) BuildAccountStore() (*storage.FileStore[*player.Account], error) {
	st, err := storage.NewFileStore[*player.Account](c.Accounts, storage.WithCreate())
	if err != nil {
		return nil, fmt.Errorf("opening accounts: %w", err)
	}
	return st, nil
}
