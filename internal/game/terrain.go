package game

import "math"

// Terrain is one kind of map tile.
type Terrain struct {
	ID       string
	Passable bool
}

// TerrainList is a whitelist of terrain an entity type may stand on.
type TerrainList struct {
	ID      string
	allowed map[string]struct{}
}

func NewTerrainList(id string, terrain ...string) *TerrainList {
	l := &TerrainList{ID: id, allowed: map[string]struct{}{}}
	for _, t := range terrain {
		l.allowed[t] = struct{}{}
	}
	return l
}

// Allows reports whether t is on the list. A nil list allows any passable
// terrain.
func (l *TerrainList) Allows(t *Terrain) bool {
	if t == nil {
		return false
	}
	if l == nil {
		return t.Passable
	}
	_, ok := l.allowed[t.ID]
	return ok
}

// Map is a grid of square terrain tiles, indexed [row][column].
type Map struct {
	TileSize float64
	tiles    [][]*Terrain
}

func NewMap(tileSize float64, tiles [][]*Terrain) *Map {
	return &Map{TileSize: tileSize, tiles: tiles}
}

func (m *Map) Rows() int {
	return len(m.tiles)
}

func (m *Map) Cols() int {
	if len(m.tiles) == 0 {
		return 0
	}
	return len(m.tiles[0])
}

// Bounds is the map area in pixels.
func (m *Map) Bounds() Rect {
	return Rect{W: float64(m.Cols()) * m.TileSize, H: float64(m.Rows()) * m.TileSize}
}

// TerrainAt returns the tile under p, or nil outside the map.
func (m *Map) TerrainAt(p Point) *Terrain {
	if !IsFinite(p) || p.X() < 0 || p.Y() < 0 {
		return nil
	}
	col := int(p.X() / m.TileSize)
	row := int(p.Y() / m.TileSize)
	if row >= len(m.tiles) || col >= len(m.tiles[row]) {
		return nil
	}
	return m.tiles[row][col]
}

// Allows reports whether every tile touched by r is allowed by list, and r
// lies within the map.
func (m *Map) Allows(r Rect, list *TerrainList) bool {
	if !r.isFinite() {
		return false
	}
	b := m.Bounds()
	if r.X < b.X || r.Y < b.Y || r.X+r.W > b.X+b.W || r.Y+r.H > b.Y+b.H {
		return false
	}

	first := func(v float64) int { return int(math.Floor(v / m.TileSize)) }
	last := func(from, to float64) int {
		return max(int(math.Ceil(to/m.TileSize))-1, first(from))
	}

	for row := first(r.Y); row <= last(r.Y, r.Y+r.H) && row < m.Rows(); row++ {
		for col := first(r.X); col <= last(r.X, r.X+r.W) && col < m.Cols(); col++ {
			if !list.Allows(m.tiles[row][col]) {
				return false
			}
		}
	}
	return true
}
