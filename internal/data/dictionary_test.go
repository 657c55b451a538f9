package data

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/unlocks"
	"github.com/pixil98/go-testutil"
)

func writeFile(t *testing.T, root, sub, name, body string) {
	t.Helper()
	dir := filepath.Join(root, sub)
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}
}

func testData(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	writeFile(t, root, "terrain", "grass", `{"version":1,"id":"grass","spec":{"passable":true}}`)
	writeFile(t, root, "terrain", "water", `{"version":1,"id":"water","spec":{"passable":false}}`)
	writeFile(t, root, "terrain_lists", "land", `{"version":1,"id":"land","spec":{"terrain":["grass"]}}`)

	writeFile(t, root, "items", "wood", `{"version":1,"id":"wood","spec":{"name":"wood","classes":["fuel"],"stack_size":10}}`)
	writeFile(t, root, "items", "axe", `{"version":1,"id":"axe","spec":{"name":"axe","classes":["woodcutting"],"gear":{"slot":"weapon","stats":{"attack":2}}}}`)
	writeFile(t, root, "items", "sapling", `{"version":1,"id":"sapling","spec":{"name":"sapling","constructs":"tree"}}`)
	writeFile(t, root, "items", "ghost", `{"version":1,"id":"ghost","spec":{"name":"ghost","constructs":"nothing"}}`)

	writeFile(t, root, "recipes", "plank", `{"version":1,"id":"plank","spec":{"product":"wood","quantity":2,"materials":{"wood":1},"time":"2s","known_by_default":true}}`)
	writeFile(t, root, "recipes", "broken", `{"version":1,"id":"broken","spec":{"product":"missing","materials":{}}}`)

	writeFile(t, root, "talents", "tough", `{"version":1,"id":"tough","spec":{"name":"Tough","stats":{"max_health":20}}}`)
	writeFile(t, root, "buffs", "regen", `{"version":1,"id":"regen","spec":{"name":"Regen","effect":{"type":"heal","school":"water","amount":3},"duration":"10s","tick_time":"1s"}}`)

	writeFile(t, root, "entities", "user", `{"version":1,"id":"user","spec":{"name":"Player","kind":"user","collision":{"w":10,"h":10},"stats":{"max_health":80,"speed":90}}}`)
	writeFile(t, root, "entities", "tree", `{"version":1,"id":"tree","spec":{
		"name":"Tree","kind":"object","collides":true,"collision":{"w":16,"h":16},
		"yield":[{"item":"wood","init_mean":5,"gather_mean":1}],
		"gather_time":"1s","gather_tool":"woodcutting",
		"transform":{"into":"stump","delay":"30s","must_be_gathered":true},
		"terrain":"land"}}`)
	writeFile(t, root, "entities", "stump", `{"version":1,"id":"stump","spec":{"name":"Stump","kind":"object"}}`)
	writeFile(t, root, "entities", "fire", `{"version":1,"id":"fire","spec":{"name":"Fire","kind":"object","materials":{"wood":3},"construction_time":"3s","known_by_default":true}}`)
	writeFile(t, root, "entities", "seedling", `{"version":1,"id":"seedling","spec":{"name":"Seedling","kind":"object","transform":{"into":"nowhere","delay":"1s"}}}`)
	writeFile(t, root, "entities", "wolf", `{"version":1,"id":"wolf","spec":{
		"name":"Wolf","kind":"npc","stats":{"max_health":20,"attack_time":"1.5s"},
		"loot":[{"item":"wood","chance":0.5},{"item":"wood","mean":2,"sd":1},{"choices":[{"item":"axe","qty":1},{"item":"wood","qty":3}]}],
		"corpse_time":"5s","aggro_range":60}}`)
	writeFile(t, root, "entities", "badloot", `{"version":1,"id":"badloot","spec":{"name":"Bad","kind":"npc","loot":[{"item":"gold","chance":1}]}}`)

	writeFile(t, root, "spawners", "wolves", `{"version":1,"id":"wolves","spec":{"location":[100,200],"radius":50,"type":"wolf","quantity":3,"respawn_time":"1m","terrain":"land"}}`)
	writeFile(t, root, "spawners", "ghosts", `{"version":1,"id":"ghosts","spec":{"type":"ghost","quantity":1}}`)

	writeFile(t, root, "unlocks", "from-wood", `{"version":1,"id":"from-wood","spec":{
		"trigger":{"kind":"acquire","id":"wood"},
		"effects":[{"kind":"construction","id":"fire","chance":0.5},{"kind":"recipe","id":"nope","chance":0.5}]}}`)
	writeFile(t, root, "unlocks", "from-nothing", `{"version":1,"id":"from-nothing","spec":{
		"trigger":{"kind":"craft","id":"nothing"},"effects":[{"kind":"recipe","id":"plank","chance":1}]}}`)

	writeFile(t, root, "maps", "world", `{"version":1,"id":"world","spec":{"tile_size":32,"legend":{".":"grass","~":"water"},"rows":["..~",".~~"]}}`)

	return root
}

func TestDictionary_Build(t *testing.T) {
	dict, err := Open(testData(t))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reg, err := dict.Build("world")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tests := map[string]struct {
		got any
		exp any
	}{
		"items":               {got: len(reg.Items), exp: 4},
		"axe gear":            {got: reg.Items["axe"].Gear != nil, exp: true},
		"dangling constructs": {got: reg.Items["ghost"].Constructs, exp: ""},
		"kept constructs":     {got: reg.Items["sapling"].Constructs, exp: "tree"},
		"recipes":             {got: len(reg.Recipes), exp: 1},
		"recipe time":         {got: reg.Recipes["plank"].Time, exp: 2 * time.Second},
		"recipe name":         {got: reg.Recipes["plank"].Name, exp: "wood"},
		"entity types":        {got: len(reg.EntityTypes), exp: 5},
		"user type":           {got: reg.UserType.Name, exp: "Player"},
		"tree kind":           {got: reg.EntityTypes["tree"].Kind, exp: game.KindObject},
		"tree transform":      {got: reg.EntityTypes["tree"].Transform.Into.ID, exp: "stump"},
		"transform resolved":  {got: reg.EntityTypes["tree"].Transform.Into == reg.EntityTypes["stump"], exp: true},
		"tree terrain":        {got: reg.EntityTypes["tree"].Terrain.ID, exp: "land"},
		"fire materials":      {got: reg.EntityTypes["fire"].Materials.Total(), exp: uint(3)},
		"wolf attack time":    {got: reg.EntityTypes["wolf"].Stats.AttackTime, exp: 1500 * time.Millisecond},
		"wolf loot":           {got: reg.EntityTypes["wolf"].Loot.Len(), exp: 3},
		"default builds":      {got: len(reg.DefaultConstructions), exp: 1},
		"buff tick":           {got: reg.BuffTypes["regen"].TickTime, exp: time.Second},
		"talent stats":        {got: reg.Talents["tough"].Stats.MaxHealth, exp: int32(20)},
		"spawners":            {got: len(reg.Spawners), exp: 1},
		"spawner location":    {got: reg.Spawners[0].Location, exp: game.Point{100, 200}},
		"unlock edges":        {got: reg.Unlocks.Len(), exp: 1},
		"map size":            {got: reg.Map.Cols() * reg.Map.Rows(), exp: 6},
		"map water":           {got: reg.Map.TerrainAt(game.Point{70, 5}).ID, exp: "water"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			testutil.AssertEqual(t, name, tt.got, tt.exp)
		})
	}

	_, ok := reg.EntityTypes["seedling"]
	testutil.AssertEqual(t, "unresolved transform skipped", ok, false)
	_, ok = reg.EntityTypes["badloot"]
	testutil.AssertEqual(t, "unknown loot item skipped", ok, false)

	edges := reg.Unlocks.Edges(unlocks.Trigger{Kind: unlocks.OnAcquire, ID: "wood"})
	testutil.AssertEqual(t, "edge count", len(edges), 1)
}

func TestDictionary_MissingMap(t *testing.T) {
	dict, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = dict.Build("world")
	testutil.AssertErrorContains(t, err, `map "world" not found`)

	reg, err := dict.Build("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	testutil.AssertEqual(t, "no map", reg.Map == nil, true)
	testutil.AssertEqual(t, "default user type", reg.UserType.ID, "user")
}
