package game

import (
	"sort"

	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/unlocks"
)

// Registry owns every definition the simulation refers to.
type Registry struct {
	Items       map[string]*item.Item
	Recipes     map[string]*Recipe
	EntityTypes map[string]*EntityType
	BuffTypes   map[string]*BuffType
	Talents     map[string]*Talent
	Terrain     map[string]*Terrain
	Spawners    []*Spawner
	Unlocks     *unlocks.Graph
	Map         *Map

	// UserType is the template every player entity is built from.
	UserType *EntityType
	// DefaultConstructions are object types every player can build.
	DefaultConstructions []string
}

func NewRegistry() *Registry {
	return &Registry{
		Items:       map[string]*item.Item{},
		Recipes:     map[string]*Recipe{},
		EntityTypes: map[string]*EntityType{},
		BuffTypes:   map[string]*BuffType{},
		Talents:     map[string]*Talent{},
		Terrain:     map[string]*Terrain{},
		Unlocks:     unlocks.NewGraph(),
		UserType: &EntityType{
			ID:   "user",
			Name: "User",
			Kind: KindUser,
		},
	}
}

// DefaultKnown is what a new player starts out knowing.
func (r *Registry) DefaultKnown() unlocks.Known {
	k := unlocks.NewKnown()
	for id, rec := range r.Recipes {
		if rec.KnownByDefault {
			k.Learn(unlocks.Effect{Kind: unlocks.UnlockRecipe, ID: id})
		}
	}
	for _, id := range r.DefaultConstructions {
		k.Learn(unlocks.Effect{Kind: unlocks.UnlockConstruction, ID: id})
	}
	return k
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
