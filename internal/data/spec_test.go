package data

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/pixil98/go-mmo/internal/storage"
	"github.com/pixil98/go-testutil"
)

func TestSpec_Validate(t *testing.T) {
	tests := map[string]struct {
		spec   storage.ValidatingSpec
		expErr string
	}{
		"item ok":           {spec: &ItemSpec{Name: "wood"}},
		"item no name":      {spec: &ItemSpec{}, expErr: "item name is required"},
		"recipe no product": {spec: &RecipeSpec{}, expErr: "recipe product is required"},
		"recipe zero material": {
			spec:   &RecipeSpec{Product: "plank", Materials: map[string]uint{"wood": 0}},
			expErr: `material "wood" quantity must be positive`,
		},
		"entity bad kind": {
			spec:   &EntityTypeSpec{Name: "x", KindStr: "dragon"},
			expErr: "unknown entity kind",
		},
		"npc with yield": {
			spec:   &EntityTypeSpec{Name: "x", KindStr: "npc", Yield: []YieldSpec{{Item: "wood"}}},
			expErr: "only objects may have",
		},
		"object with loot": {
			spec:   &EntityTypeSpec{Name: "x", KindStr: "object", Loot: []LootSpec{{Item: "wood"}}},
			expErr: "only npcs may have loot",
		},
		"loot chance too high": {
			spec:   &EntityTypeSpec{Name: "x", KindStr: "npc", Loot: []LootSpec{{Item: "wood", Chance: 2}}},
			expErr: "chance must be within",
		},
		"transform without target": {
			spec:   &EntityTypeSpec{Name: "x", KindStr: "object", Transform: &TransformSpec{}},
			expErr: "transform target is required",
		},
		"buff effect without tick": {
			spec:   &BuffSpec{Name: "b", Effect: &EffectSpec{Amount: 1}},
			expErr: "tick_time is required",
		},
		"talent no name":      {spec: &TalentSpec{}, expErr: "talent name is required"},
		"talent ok":           {spec: &TalentSpec{Name: "Tough"}},
		"terrain list empty":  {spec: &TerrainListSpec{}, expErr: "at least one terrain"},
		"spawner no quantity": {spec: &SpawnerSpec{Type: "wolf"}, expErr: "quantity must be positive"},
		"unlock bad chance": {
			spec:   &UnlockSpec{Effects: []UnlockEffectSpec{{ID: "a", Chance: 0}}},
			expErr: "chance must be within (0, 1]",
		},
		"map ragged": {
			spec:   &MapSpec{TileSize: 8, Legend: map[string]string{".": "grass"}, Rows: []string{"..", "."}},
			expErr: "row 1 has a different width",
		},
		"map unknown glyph": {
			spec:   &MapSpec{TileSize: 8, Legend: map[string]string{".": "grass"}, Rows: []string{".#"}},
			expErr: "not in the legend",
		},
		"map ok": {
			spec: &MapSpec{TileSize: 8, Legend: map[string]string{".": "grass"}, Rows: []string{".."}},
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			err := tt.spec.Validate()
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := map[string]struct {
		in     string
		exp    time.Duration
		expErr string
	}{
		"seconds":    {in: `"1.5s"`, exp: 1500 * time.Millisecond},
		"empty":      {in: `""`, exp: 0},
		"not string": {in: `5`, expErr: "duration must be a string"},
		"bad string": {in: `"soon"`, expErr: "parsing duration"},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tt.in), &d)
			if tt.expErr != "" {
				testutil.AssertErrorContains(t, err, tt.expErr)
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			testutil.AssertEqual(t, "duration", d.Std(), tt.exp)
		})
	}
}
