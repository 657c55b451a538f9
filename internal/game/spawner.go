package game

import (
	"log/slog"
	"time"
)

// Spawner keeps a number of entities of one type alive around a point.
type Spawner struct {
	Location    Point
	Radius      float64
	Type        *EntityType
	Quantity    int
	RespawnTime time.Duration
	// Terrain restricts where spawns may land, on top of the type's own
	// terrain allowance. Nil means no extra restriction.
	Terrain *TerrainList

	// queue holds the time left on each pending respawn.
	queue []time.Duration
}

// Pending is the number of respawns waiting to happen.
func (s *Spawner) Pending() int {
	return len(s.queue)
}

func (s *Spawner) scheduleSpawn() {
	s.queue = append(s.queue, s.RespawnTime)
}

func (s *Spawner) update(w *World, elapsed time.Duration) {
	if len(s.queue) == 0 {
		return
	}
	var due int
	for i := range s.queue {
		if s.queue[i] > elapsed {
			s.queue[i] -= elapsed
			continue
		}
		s.queue[i] = 0
		due++
	}

	kept := s.queue[:0]
	for _, d := range s.queue {
		if d > 0 {
			kept = append(kept, d)
		}
	}
	s.queue = kept

	for range due {
		if w.spawnFrom(s) == nil {
			s.scheduleSpawn()
		}
	}
}

func (s *Spawner) terrainAllows(w *World, p Point) bool {
	if s.Terrain == nil || w.reg.Map == nil {
		return true
	}
	return s.Terrain.Allows(w.reg.Map.TerrainAt(p))
}

// spawnFrom places one entity for s. It gives up after spawnAttempts
// invalid locations.
func (w *World) spawnFrom(s *Spawner) *Entity {
	for range spawnAttempts {
		p := randomPointNear(s.Location, s.Radius, w.rng)
		if !s.terrainAllows(w, p) || !w.IsLocationValid(s.Type, p, nil) {
			continue
		}
		e := w.spawn(s.Type, p)
		if e != nil {
			e.spawner = s
		}
		return e
	}
	slog.Warn("no room to spawn", "type", s.Type.ID, "x", s.Location.X(), "y", s.Location.Y())
	return nil
}
