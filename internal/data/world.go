package data

import (
	"fmt"
	"unicode/utf8"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mmo/internal/unlocks"
)

type TerrainSpec struct {
	Passable bool `json:"passable"`
}

// Validate satisfies storage.ValidatingSpec
func (s *TerrainSpec) Validate() error {
	return nil
}

// TerrainListSpec is a named whitelist of terrain ids.
type TerrainListSpec struct {
	Terrain []string `json:"terrain"`
}

// Validate satisfies storage.ValidatingSpec
func (s *TerrainListSpec) Validate() error {
	if len(s.Terrain) == 0 {
		return fmt.Errorf("terrain list must name at least one terrain")
	}
	return nil
}

// SpawnerSpec places and respawns entities of one type around a point.
type SpawnerSpec struct {
	Location    [2]float64 `json:"location"`
	Radius      float64    `json:"radius"`
	Type        string     `json:"type"`
	Quantity    int        `json:"quantity"`
	RespawnTime Duration   `json:"respawn_time"`
	Terrain     string     `json:"terrain,omitempty"`
}

// Validate satisfies storage.ValidatingSpec
func (s *SpawnerSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Type == "" {
		el.Add(fmt.Errorf("spawner type is required"))
	}
	if s.Quantity < 1 {
		el.Add(fmt.Errorf("spawner quantity must be positive"))
	}
	if s.Radius < 0 {
		el.Add(fmt.Errorf("spawner radius must not be negative"))
	}
	return el.Err()
}

// UnlockSpec lists what a single trigger can unlock.
type UnlockSpec struct {
	Trigger unlocks.Trigger    `json:"trigger"`
	Effects []UnlockEffectSpec `json:"effects"`
}

type UnlockEffectSpec struct {
	Kind   unlocks.EffectKind `json:"kind"`
	ID     string             `json:"id"`
	Chance float64            `json:"chance"`
}

// Validate satisfies storage.ValidatingSpec
func (s *UnlockSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Trigger.ID == "" {
		el.Add(fmt.Errorf("trigger id is required"))
	}
	if len(s.Effects) == 0 {
		el.Add(fmt.Errorf("at least one effect is required"))
	}
	for i, e := range s.Effects {
		if e.ID == "" {
			el.Add(fmt.Errorf("effect %d: id is required", i))
		}
		if e.Chance <= 0 || e.Chance > 1 {
			el.Add(fmt.Errorf("effect %d: chance must be within (0, 1]", i))
		}
	}
	return el.Err()
}

// MapSpec is a terrain grid drawn as rows of legend characters.
type MapSpec struct {
	TileSize float64           `json:"tile_size"`
	Legend   map[string]string `json:"legend"`
	Rows     []string          `json:"rows"`
}

// Validate satisfies storage.ValidatingSpec
func (s *MapSpec) Validate() error {
	el := errors.NewErrorList()
	if s.TileSize <= 0 {
		el.Add(fmt.Errorf("tile_size must be positive"))
	}
	if len(s.Rows) == 0 {
		el.Add(fmt.Errorf("map must have at least one row"))
	}
	for key := range s.Legend {
		if utf8.RuneCountInString(key) != 1 {
			el.Add(fmt.Errorf("legend key %q must be a single character", key))
		}
	}
	for i, row := range s.Rows {
		if utf8.RuneCountInString(row) != utf8.RuneCountInString(s.Rows[0]) {
			el.Add(fmt.Errorf("row %d has a different width", i))
		}
		for _, r := range row {
			if _, ok := s.Legend[string(r)]; !ok {
				el.Add(fmt.Errorf("row %d: %q is not in the legend", i, r))
			}
		}
	}
	return el.Err()
}
