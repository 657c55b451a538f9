package data

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/item"
	"github.com/pixil98/go-mmo/internal/storage"
	"github.com/pixil98/go-mmo/internal/unlocks"
)

// UserTypeID is the entity type players are built from when one is defined.
const UserTypeID = "user"

// Dictionary holds all game definition stores.
type Dictionary struct {
	Items        storage.Storer[*ItemSpec]
	Recipes      storage.Storer[*RecipeSpec]
	EntityTypes  storage.Storer[*EntityTypeSpec]
	Buffs        storage.Storer[*BuffSpec]
	Talents      storage.Storer[*TalentSpec]
	Terrain      storage.Storer[*TerrainSpec]
	TerrainLists storage.Storer[*TerrainListSpec]
	Spawners     storage.Storer[*SpawnerSpec]
	Unlocks      storage.Storer[*UnlockSpec]
	Maps         storage.Storer[*MapSpec]
}

// Open loads a dictionary from the standard subdirectories of root. A
// missing subdirectory leaves that store empty.
func Open(root string) (*Dictionary, error) {
	d := &Dictionary{}
	var err error
	if d.Items, err = open[*ItemSpec](root, "items"); err != nil {
		return nil, err
	}
	if d.Recipes, err = open[*RecipeSpec](root, "recipes"); err != nil {
		return nil, err
	}
	if d.EntityTypes, err = open[*EntityTypeSpec](root, "entities"); err != nil {
		return nil, err
	}
	if d.Buffs, err = open[*BuffSpec](root, "buffs"); err != nil {
		return nil, err
	}
	if d.Talents, err = open[*TalentSpec](root, "talents"); err != nil {
		return nil, err
	}
	if d.Terrain, err = open[*TerrainSpec](root, "terrain"); err != nil {
		return nil, err
	}
	if d.TerrainLists, err = open[*TerrainListSpec](root, "terrain_lists"); err != nil {
		return nil, err
	}
	if d.Spawners, err = open[*SpawnerSpec](root, "spawners"); err != nil {
		return nil, err
	}
	if d.Unlocks, err = open[*UnlockSpec](root, "unlocks"); err != nil {
		return nil, err
	}
	if d.Maps, err = open[*MapSpec](root, "maps"); err != nil {
		return nil, err
	}
	return d, nil
}

func open[T storage.ValidatingSpec](root, sub string) (storage.Storer[T], error) {
	path := filepath.Join(root, sub)
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	st, err := storage.NewFileStore[T](path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", sub, err)
	}
	return st, nil
}

// Build resolves every reference between the stores and produces the
// registry the world runs on. A record that refers to something missing is
// skipped with a warning. Only a missing map is an error.
func (d *Dictionary) Build(mapID string) (*game.Registry, error) {
	reg := game.NewRegistry()
	b := &builder{dict: d, reg: reg, lists: map[string]*game.TerrainList{}}

	b.terrain()
	b.items()
	b.buffs()
	b.talents()
	b.entityTypes()
	b.recipes()
	b.spawners()
	b.unlocks()

	if mapID != "" {
		m, err := b.worldMap(mapID)
		if err != nil {
			return nil, err
		}
		reg.Map = m
	}

	return reg, nil
}

type builder struct {
	dict  *Dictionary
	reg   *game.Registry
	lists map[string]*game.TerrainList
}

func skip(kind, id string, err error) {
	slog.Warn("skipping record", "kind", kind, "id", id, "error", err)
}

// each visits the records of a store in id order so that builds are
// deterministic.
func each[T storage.ValidatingSpec](st storage.Storer[T], fn func(id string, spec T)) {
	if st == nil {
		return
	}
	all := st.GetAll()
	ids := make([]string, 0, len(all))
	for id := range all {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fn(id, all[id])
	}
}

func (b *builder) terrain() {
	each(b.dict.Terrain, func(id string, s *TerrainSpec) {
		b.reg.Terrain[id] = &game.Terrain{ID: id, Passable: s.Passable}
	})
	each(b.dict.TerrainLists, func(id string, s *TerrainListSpec) {
		for _, t := range s.Terrain {
			if _, ok := b.reg.Terrain[t]; !ok {
				skip("terrain list", id, fmt.Errorf("unknown terrain %q", t))
				return
			}
		}
		b.lists[id] = game.NewTerrainList(id, s.Terrain...)
	})
}

func (b *builder) terrainList(id string) (*game.TerrainList, error) {
	if id == "" {
		return nil, nil
	}
	l, ok := b.lists[id]
	if !ok {
		return nil, fmt.Errorf("unknown terrain list %q", id)
	}
	return l, nil
}

func (b *builder) items() {
	each(b.dict.Items, func(id string, s *ItemSpec) {
		b.reg.Items[id] = s.build(id)
	})
}

func (b *builder) item(id string) (*item.Item, error) {
	it, ok := b.reg.Items[id]
	if !ok {
		return nil, fmt.Errorf("unknown item %q", id)
	}
	return it, nil
}

func (b *builder) itemSet(materials map[string]uint) (item.ItemSet, error) {
	var set item.ItemSet
	ids := make([]string, 0, len(materials))
	for id := range materials {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		it, err := b.item(id)
		if err != nil {
			return item.ItemSet{}, err
		}
		set.Add(it, materials[id])
	}
	return set, nil
}

func (b *builder) buffs() {
	each(b.dict.Buffs, func(id string, s *BuffSpec) {
		b.reg.BuffTypes[id] = s.build(id)
	})
}

func (b *builder) talents() {
	each(b.dict.Talents, func(id string, s *TalentSpec) {
		b.reg.Talents[id] = &game.Talent{ID: id, Name: s.Name, Stats: s.Stats}
	})
}

// entityTypes builds types in two passes so that transformations may refer
// to types defined in any file.
func (b *builder) entityTypes() {
	specs := map[string]*EntityTypeSpec{}
	each(b.dict.EntityTypes, func(id string, s *EntityTypeSpec) {
		t, err := b.entityType(id, s)
		if err != nil {
			skip("entity type", id, err)
			return
		}
		specs[id] = s
		b.reg.EntityTypes[id] = t
	})

	for _, id := range sortedIds(specs) {
		s := specs[id]
		if s.Transform == nil {
			continue
		}
		into, ok := b.reg.EntityTypes[s.Transform.Into]
		if !ok {
			skip("entity type", id, fmt.Errorf("unknown transform target %q", s.Transform.Into))
			delete(b.reg.EntityTypes, id)
			continue
		}
		b.reg.EntityTypes[id].Transform = &game.TransformSpec{
			Into:           into,
			Delay:          s.Transform.Delay.Std(),
			MustBeGathered: s.Transform.MustBeGathered,
		}
	}

	// Drop types whose transform target was itself dropped.
	for _, id := range sortedIds(specs) {
		t, ok := b.reg.EntityTypes[id]
		if !ok || t.Transform == nil {
			continue
		}
		if _, ok := b.reg.EntityTypes[t.Transform.Into.ID]; !ok {
			skip("entity type", id, fmt.Errorf("transform target %q was skipped", t.Transform.Into.ID))
			delete(b.reg.EntityTypes, id)
		}
	}

	for _, id := range sortedIds(specs) {
		t, ok := b.reg.EntityTypes[id]
		if !ok {
			continue
		}
		if t.Kind == game.KindUser && id == UserTypeID {
			b.reg.UserType = t
		}
		if t.Kind == game.KindObject && specs[id].KnownByDefault {
			b.reg.DefaultConstructions = append(b.reg.DefaultConstructions, id)
		}
	}

	for id, it := range b.reg.Items {
		if it.Constructs == "" {
			continue
		}
		if _, ok := b.reg.EntityTypes[it.Constructs]; !ok {
			slog.Warn("item constructs unknown type", "item", id, "type", it.Constructs)
			it.Constructs = ""
		}
	}
}

func sortedIds[V any](m map[string]V) []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (b *builder) entityType(id string, s *EntityTypeSpec) (*game.EntityType, error) {
	kind, err := s.Kind()
	if err != nil {
		return nil, err
	}

	terrain, err := b.terrainList(s.Terrain)
	if err != nil {
		return nil, err
	}

	t := &game.EntityType{
		ID:               id,
		Name:             s.Name,
		Kind:             kind,
		Collision:        s.Collision,
		Collides:         s.Collides,
		Stats:            s.Stats,
		Terrain:          terrain,
		CorpseTime:       s.CorpseTime.Std(),
		GatherTime:       s.GatherTime.Std(),
		GatherTool:       s.GatherTool,
		ConstructionTime: s.ConstructionTime.Std(),
		AggroRange:       s.AggroRange,
	}

	if len(s.Tags) > 0 {
		t.Tags = make(map[string]struct{}, len(s.Tags))
		for _, tag := range s.Tags {
			t.Tags[tag] = struct{}{}
		}
	}

	if len(s.Yield) > 0 {
		t.Yield = &game.Yield{}
		for _, y := range s.Yield {
			it, err := b.item(y.Item)
			if err != nil {
				return nil, fmt.Errorf("yield: %w", err)
			}
			t.Yield.Add(game.YieldEntry{
				Item:       it,
				InitMean:   y.InitMean,
				InitSD:     y.InitSD,
				GatherMean: y.GatherMean,
				GatherSD:   y.GatherSD,
			})
		}
	}

	t.Materials, err = b.itemSet(s.Materials)
	if err != nil {
		return nil, fmt.Errorf("materials: %w", err)
	}

	if s.Action != nil {
		t.Action = &game.ObjectAction{Label: s.Action.Label, Script: s.Action.Script}
	}

	if len(s.Loot) > 0 {
		t.Loot = &game.LootTable{}
		for _, l := range s.Loot {
			if err := b.addLoot(t.Loot, l); err != nil {
				return nil, fmt.Errorf("loot: %w", err)
			}
		}
	}

	return t, nil
}

func (b *builder) addLoot(table *game.LootTable, l LootSpec) error {
	if len(l.Choices) > 0 {
		choices := make([]game.LootChoice, 0, len(l.Choices))
		for _, c := range l.Choices {
			it, err := b.item(c.Item)
			if err != nil {
				return err
			}
			choices = append(choices, game.LootChoice{Item: it, Qty: c.Qty})
		}
		table.AddChoice(choices...)
		return nil
	}

	it, err := b.item(l.Item)
	if err != nil {
		return err
	}
	if l.Chance > 0 {
		table.AddSimple(it, l.Chance)
	} else {
		table.AddNormal(it, l.Mean, l.SD)
	}
	return nil
}

func (b *builder) recipes() {
	each(b.dict.Recipes, func(id string, s *RecipeSpec) {
		r, err := b.recipe(id, s)
		if err != nil {
			skip("recipe", id, err)
			return
		}
		b.reg.Recipes[id] = r
	})
}

func (b *builder) recipe(id string, s *RecipeSpec) (*game.Recipe, error) {
	product, err := b.item(s.Product)
	if err != nil {
		return nil, err
	}
	materials, err := b.itemSet(s.Materials)
	if err != nil {
		return nil, err
	}
	name := s.Name
	if name == "" {
		name = product.Name
	}
	return &game.Recipe{
		ID:             id,
		Name:           name,
		Product:        product,
		Quantity:       s.Quantity,
		Materials:      materials,
		Tools:          s.Tools,
		Time:           s.Time.Std(),
		KnownByDefault: s.KnownByDefault,
	}, nil
}

func (b *builder) spawners() {
	each(b.dict.Spawners, func(id string, s *SpawnerSpec) {
		t, ok := b.reg.EntityTypes[s.Type]
		if !ok {
			skip("spawner", id, fmt.Errorf("unknown entity type %q", s.Type))
			return
		}
		if t.Kind == game.KindUser {
			skip("spawner", id, fmt.Errorf("cannot spawn users"))
			return
		}
		terrain, err := b.terrainList(s.Terrain)
		if err != nil {
			skip("spawner", id, err)
			return
		}
		b.reg.Spawners = append(b.reg.Spawners, &game.Spawner{
			Location:    game.Point{s.Location[0], s.Location[1]},
			Radius:      s.Radius,
			Type:        t,
			Quantity:    s.Quantity,
			RespawnTime: s.RespawnTime.Std(),
			Terrain:     terrain,
		})
	})
}

func (b *builder) unlocks() {
	each(b.dict.Unlocks, func(id string, s *UnlockSpec) {
		if !b.triggerExists(s.Trigger) {
			skip("unlock", id, fmt.Errorf("unknown %s trigger %q", s.Trigger.Kind, s.Trigger.ID))
			return
		}
		for _, e := range s.Effects {
			effect := unlocks.Effect{Kind: e.Kind, ID: e.ID}
			if !b.effectExists(effect) {
				skip("unlock", id, fmt.Errorf("unknown %s %q", e.Kind, e.ID))
				continue
			}
			if err := b.reg.Unlocks.Add(s.Trigger, effect, e.Chance); err != nil {
				skip("unlock", id, err)
			}
		}
	})
}

func (b *builder) triggerExists(t unlocks.Trigger) bool {
	switch t.Kind {
	case unlocks.OnCraft:
		_, ok := b.reg.Recipes[t.ID]
		return ok
	case unlocks.OnAcquire:
		_, ok := b.reg.Items[t.ID]
		return ok
	case unlocks.OnGather, unlocks.OnConstruct:
		_, ok := b.reg.EntityTypes[t.ID]
		return ok
	default:
		return false
	}
}

func (b *builder) effectExists(e unlocks.Effect) bool {
	switch e.Kind {
	case unlocks.UnlockRecipe:
		_, ok := b.reg.Recipes[e.ID]
		return ok
	case unlocks.UnlockConstruction:
		_, ok := b.reg.EntityTypes[e.ID]
		return ok
	default:
		return false
	}
}

func (b *builder) worldMap(id string) (*game.Map, error) {
	if b.dict.Maps == nil {
		return nil, fmt.Errorf("map %q not found", id)
	}
	s := b.dict.Maps.Get(id)
	if s == nil {
		return nil, fmt.Errorf("map %q not found", id)
	}

	legend := make(map[rune]*game.Terrain, len(s.Legend))
	for key, terrainID := range s.Legend {
		t, ok := b.reg.Terrain[terrainID]
		if !ok {
			return nil, fmt.Errorf("map %q: unknown terrain %q", id, terrainID)
		}
		r, _ := utf8.DecodeRuneInString(key)
		legend[r] = t
	}

	tiles := make([][]*game.Terrain, len(s.Rows))
	for i, row := range s.Rows {
		for _, r := range row {
			tiles[i] = append(tiles[i], legend[r])
		}
	}
	return game.NewMap(s.TileSize, tiles), nil
}
