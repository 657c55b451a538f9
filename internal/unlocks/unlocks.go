package unlocks

import (
	"cmp"
	"fmt"
	"slices"
)

// TriggerKind is the player action that can lead to an unlock.
type TriggerKind int

const (
	OnCraft TriggerKind = iota
	OnAcquire
	OnGather
	OnConstruct
)

func (k TriggerKind) String() string {
	switch k {
	case OnCraft:
		return "craft"
	case OnAcquire:
		return "acquire"
	case OnGather:
		return "gather"
	case OnConstruct:
		return "construct"
	default:
		return fmt.Sprintf("trigger(%d)", int(k))
	}
}

func (k *TriggerKind) UnmarshalText(text []byte) error {
	for _, c := range []TriggerKind{OnCraft, OnAcquire, OnGather, OnConstruct} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown trigger kind: %s", text)
}

// actionPhrase opens the unlock hint shown for each trigger kind.
var actionPhrase = map[TriggerKind]string{
	OnCraft:     "Crafting this recipe",
	OnAcquire:   "Picking up this item",
	OnGather:    "Gathering from this object",
	OnConstruct: "Constructing this object",
}

// EffectKind is what an unlock grants.
type EffectKind int

const (
	UnlockRecipe EffectKind = iota
	UnlockConstruction
)

func (k EffectKind) String() string {
	switch k {
	case UnlockRecipe:
		return "recipe"
	case UnlockConstruction:
		return "construction"
	default:
		return fmt.Sprintf("effect(%d)", int(k))
	}
}

func (k *EffectKind) UnmarshalText(text []byte) error {
	for _, c := range []EffectKind{UnlockRecipe, UnlockConstruction} {
		if c.String() == string(text) {
			*k = c
			return nil
		}
	}
	return fmt.Errorf("unknown effect kind: %s", text)
}

type Trigger struct {
	Kind TriggerKind
	ID   string
}

// Compare orders triggers by kind, then id.
func (t Trigger) Compare(o Trigger) int {
	if c := cmp.Compare(t.Kind, o.Kind); c != 0 {
		return c
	}
	return cmp.Compare(t.ID, o.ID)
}

type Effect struct {
	Kind EffectKind
	ID   string
}

// Compare orders effects by kind, then id.
func (e Effect) Compare(o Effect) int {
	if c := cmp.Compare(e.Kind, o.Kind); c != 0 {
		return c
	}
	return cmp.Compare(e.ID, o.ID)
}

// Known is a player's current recipes and constructions.
type Known struct {
	Recipes       map[string]struct{}
	Constructions map[string]struct{}
}

func NewKnown() Known {
	return Known{
		Recipes:       map[string]struct{}{},
		Constructions: map[string]struct{}{},
	}
}

// Has reports whether the effect is already unlocked.
func (k Known) Has(e Effect) bool {
	var set map[string]struct{}
	switch e.Kind {
	case UnlockRecipe:
		set = k.Recipes
	case UnlockConstruction:
		set = k.Constructions
	}
	_, ok := set[e.ID]
	return ok
}

// Learn records an effect as unlocked.
func (k *Known) Learn(e Effect) {
	switch e.Kind {
	case UnlockRecipe:
		if k.Recipes == nil {
			k.Recipes = map[string]struct{}{}
		}
		k.Recipes[e.ID] = struct{}{}
	case UnlockConstruction:
		if k.Constructions == nil {
			k.Constructions = map[string]struct{}{}
		}
		k.Constructions[e.ID] = struct{}{}
	}
}

// Edge is one effect reachable from a trigger.
type Edge struct {
	Effect Effect
	Chance float64
}

// Graph maps triggers to the effects they may unlock. It is filled while
// loading data and only read afterwards.
type Graph struct {
	edges map[Trigger]map[Effect]float64
}

func NewGraph() *Graph {
	return &Graph{edges: map[Trigger]map[Effect]float64{}}
}

// Add inserts or overwrites the edge from t to e.
func (g *Graph) Add(t Trigger, e Effect, chance float64) error {
	if chance <= 0 || chance > 1 {
		return fmt.Errorf("unlock chance %v for %s %q must be in (0,1]", chance, t.Kind, t.ID)
	}
	if g.edges[t] == nil {
		g.edges[t] = map[Effect]float64{}
	}
	g.edges[t][e] = chance
	return nil
}

// Edges lists the effects reachable from t ordered by effect.
func (g *Graph) Edges(t Trigger) []Edge {
	out := make([]Edge, 0, len(g.edges[t]))
	for e, c := range g.edges[t] {
		out = append(out, Edge{Effect: e, Chance: c})
	}
	slices.SortFunc(out, func(a, b Edge) int { return a.Effect.Compare(b.Effect) })
	return out
}

// Triggers lists every trigger with at least one edge, ordered.
func (g *Graph) Triggers() []Trigger {
	out := make([]Trigger, 0, len(g.edges))
	for t := range g.edges {
		out = append(out, t)
	}
	slices.SortFunc(out, Trigger.Compare)
	return out
}

func (g *Graph) Len() int {
	var n int
	for _, effects := range g.edges {
		n += len(effects)
	}
	return n
}

// RNG is the randomness source unlock rolls draw from.
type RNG interface {
	Float64() float64
}

// Roll rolls every unknown effect reachable from t independently and returns
// the ones that unlocked, ordered by effect.
func (g *Graph) Roll(t Trigger, known Known, rng RNG) []Effect {
	var out []Effect
	for _, edge := range g.Edges(t) {
		if known.Has(edge.Effect) {
			continue
		}
		if rng.Float64() < edge.Chance {
			out = append(out, edge.Effect)
		}
	}
	return out
}
