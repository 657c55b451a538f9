package game

import (
	"time"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/stats"
)

// EntityType is the shared, immutable template of an entity. Types are owned
// by the Registry and never modified once loading finishes.
type EntityType struct {
	ID         string
	Name       string
	Kind       Kind
	Collision  Rect
	Collides   bool
	Stats      stats.Stats
	Tags       map[string]struct{}
	Terrain    *TerrainList
	CorpseTime time.Duration

	// Objects.
	Yield            *Yield
	GatherTime       time.Duration
	GatherTool       string
	Transform        *TransformSpec
	Materials        item.ItemSet
	ConstructionTime time.Duration
	Action           *ObjectAction

	// NPCs.
	Loot       *LootTable
	AggroRange float64
}

// TransformSpec describes how an object turns into another type over time.
type TransformSpec struct {
	Into           *EntityType
	Delay          time.Duration
	MustBeGathered bool
}

// ObjectAction is a scripted interaction offered by an object.
type ObjectAction struct {
	Label  string
	Script string
}

func (t *EntityType) HasTag(tag string) bool {
	_, ok := t.Tags[tag]
	return ok
}

// CollisionAt is the type's collision rectangle for an entity at p.
func (t *EntityType) CollisionAt(p Point) Rect {
	return t.Collision.At(p)
}

// TagAttackable marks object types that can be damaged.
const TagAttackable = "attackable"
