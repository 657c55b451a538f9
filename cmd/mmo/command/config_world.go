package command

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/pixil98/go-errors"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/player"
	"github.com/pixil98/go-mmo/internal/script"
	"github.com/pixil98/go-mmo/internal/server"
)

type WorldConfig struct {
	Seed          uint64     `json:"seed"`
	SpawnPoint    [2]float64 `json:"spawn_point"`
	SpawnRadius   float64    `json:"spawn_radius"`
	CullDistance  float64    `json:"cull_distance"`
	ClientTimeout string     `json:"client_timeout"`
	LoginTimeout  string     `json:"login_timeout"`
	SavePeriod    string     `json:"save_period"`
	ScriptTimeout string     `json:"script_timeout"`
	HashCost      int        `json:"hash_cost"`
}

func (c *WorldConfig) Validate() error {
	el := errors.NewErrorList()

	if c.SpawnRadius < 0 {
		el.Add(fmt.Errorf("world: spawn_radius must not be negative"))
	}
	if c.CullDistance < 0 {
		el.Add(fmt.Errorf("world: cull_distance must not be negative"))
	}
	if c.HashCost != 0 && (c.HashCost < bcrypt.MinCost || c.HashCost > bcrypt.MaxCost) {
		el.Add(fmt.Errorf("world: hash_cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost))
	}
	for name, v := range map[string]string{
		"client_timeout": c.ClientTimeout,
		"login_timeout":  c.LoginTimeout,
		"save_period":    c.SavePeriod,
		"script_timeout": c.ScriptTimeout,
	} {
		if err := checkDuration(name, v); err != nil {
			el.Add(fmt.Errorf("world: %w", err))
		}
	}

	return el.Err()
}

func (c *WorldConfig) BuildWorld(reg *game.Registry, pub game.Publisher) *game.World {
	var scriptOpts []script.RunnerOpt
	if c.ScriptTimeout != "" {
		scriptOpts = append(scriptOpts, script.WithTimeout(parseDuration(c.ScriptTimeout)))
	}

	opts := []game.WorldOpt{
		game.WithRNG(game.NewRNG(c.Seed)),
		game.WithSpawnPoint(game.Point{c.SpawnPoint[0], c.SpawnPoint[1]}, c.SpawnRadius),
		game.WithScripts(script.NewRunner(scriptOpts...)),
	}
	if c.CullDistance > 0 {
		opts = append(opts, game.WithCullDistance(c.CullDistance))
	}
	return game.NewWorld(reg, pub, opts...)
}

func (c *WorldConfig) accountOpts() []player.AccountsOpt {
	if c.HashCost == 0 {
		return nil
	}
	return []player.AccountsOpt{player.WithHashCost(c.HashCost)}
}

func (c *WorldConfig) sessionOpts() []player.SessionManagerOpt {
	var opts []player.SessionManagerOpt
	if c.ClientTimeout != "" {
		opts = append(opts, player.WithClientTimeout(parseDuration(c.ClientTimeout)))
	}
	if c.LoginTimeout != "" {
		opts = append(opts, player.WithLoginTimeout(parseDuration(c.LoginTimeout)))
	}
	return opts
}

func (c *WorldConfig) managerOpts() []server.ManagerOpt {
	if c.SavePeriod == "" {
		return nil
	}
	return []server.ManagerOpt{server.WithSavePeriod(parseDuration(c.SavePeriod))}
}
