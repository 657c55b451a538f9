package data

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-mmo/internal/combat"
	"github.com/pixil98/go-mmo/internal/game"
	"github.com/pixil98/go-mmo/internal/stats"
)

// EntityTypeSpec defines an object, npc or user type.
type EntityTypeSpec struct {
	Name       string      `json:"name"`
	KindStr    string      `json:"kind"`
	Collision  game.Rect   `json:"collision"`
	Collides   bool        `json:"collides,omitempty"`
	Stats      stats.Stats `json:"stats"`
	Tags       []string    `json:"tags,omitempty"`
	Terrain    string      `json:"terrain,omitempty"`
	CorpseTime Duration    `json:"corpse_time"`

	// Objects.
	Yield            []YieldSpec     `json:"yield,omitempty"`
	GatherTime       Duration        `json:"gather_time"`
	GatherTool       string          `json:"gather_tool,omitempty"`
	Transform        *TransformSpec  `json:"transform,omitempty"`
	Materials        map[string]uint `json:"materials,omitempty"`
	ConstructionTime Duration        `json:"construction_time"`
	KnownByDefault   bool            `json:"known_by_default,omitempty"`
	Action           *ActionSpec     `json:"action,omitempty"`

	// NPCs.
	Loot       []LootSpec `json:"loot,omitempty"`
	AggroRange float64    `json:"aggro_range,omitempty"`
}

type YieldSpec struct {
	Item       string  `json:"item"`
	InitMean   float64 `json:"init_mean"`
	InitSD     float64 `json:"init_sd,omitempty"`
	GatherMean float64 `json:"gather_mean"`
	GatherSD   float64 `json:"gather_sd,omitempty"`
}

type TransformSpec struct {
	Into           string   `json:"into"`
	Delay          Duration `json:"delay"`
	MustBeGathered bool     `json:"must_be_gathered,omitempty"`
}

type ActionSpec struct {
	Label  string `json:"label"`
	Script string `json:"script"`
}

// LootSpec is one line of an npc loot table. Choices makes it a choice
// entry; otherwise a positive Chance makes it a simple entry, and Mean/SD
// make it a normally distributed one.
type LootSpec struct {
	Item    string       `json:"item,omitempty"`
	Chance  float64      `json:"chance,omitempty"`
	Mean    float64      `json:"mean,omitempty"`
	SD      float64      `json:"sd,omitempty"`
	Choices []ChoiceSpec `json:"choices,omitempty"`
}

type ChoiceSpec struct {
	Item string `json:"item"`
	Qty  uint   `json:"qty"`
}

// Kind returns the parsed entity kind from KindStr.
func (s *EntityTypeSpec) Kind() (game.Kind, error) {
	var k game.Kind
	err := k.UnmarshalText([]byte(s.KindStr))
	return k, err
}

// Validate satisfies storage.ValidatingSpec
func (s *EntityTypeSpec) Validate() error {
	el := errors.NewErrorList()

	if s.Name == "" {
		el.Add(fmt.Errorf("entity type name is required"))
	}

	kind, err := s.Kind()
	if err != nil {
		el.Add(err)
	}

	if s.Collision.W < 0 || s.Collision.H < 0 {
		el.Add(fmt.Errorf("collision size must not be negative"))
	}

	if err == nil && kind != game.KindObject {
		if len(s.Yield) > 0 || s.Transform != nil || len(s.Materials) > 0 || s.Action != nil {
			el.Add(fmt.Errorf("only objects may have yield, transform, materials or action"))
		}
	}
	if err == nil && kind != game.KindNPC && len(s.Loot) > 0 {
		el.Add(fmt.Errorf("only npcs may have loot"))
	}

	for i, y := range s.Yield {
		if y.Item == "" {
			el.Add(fmt.Errorf("yield %d: item is required", i))
		}
	}

	if s.Transform != nil && s.Transform.Into == "" {
		el.Add(fmt.Errorf("transform target is required"))
	}

	if s.Action != nil && s.Action.Script == "" {
		el.Add(fmt.Errorf("action script is required"))
	}

	for i, l := range s.Loot {
		el.Add(l.validate(i))
	}

	return el.Err()
}

func (l LootSpec) validate(i int) error {
	if len(l.Choices) > 0 {
		for _, c := range l.Choices {
			if c.Item == "" {
				return fmt.Errorf("loot %d: choice item is required", i)
			}
		}
		return nil
	}
	if l.Item == "" {
		return fmt.Errorf("loot %d: item is required", i)
	}
	if l.Chance < 0 || l.Chance > 1 {
		return fmt.Errorf("loot %d: chance must be within [0, 1]", i)
	}
	return nil
}

// BuffSpec defines a buff or debuff type.
type BuffSpec struct {
	Name     string      `json:"name"`
	Stats    stats.Mod   `json:"stats"`
	Effect   *EffectSpec `json:"effect,omitempty"`
	Duration Duration    `json:"duration"`
	TickTime Duration    `json:"tick_time"`
}

// TalentSpec is a stat bonus players may learn.
type TalentSpec struct {
	Name  string    `json:"name"`
	Stats stats.Mod `json:"stats"`
}

// Validate satisfies storage.ValidatingSpec
func (s *TalentSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("talent name is required")
	}
	return nil
}

type EffectSpec struct {
	Type   combat.Type  `json:"type"`
	School stats.School `json:"school"`
	Amount float64      `json:"amount"`
}

// Validate satisfies storage.ValidatingSpec
func (s *BuffSpec) Validate() error {
	el := errors.NewErrorList()
	if s.Name == "" {
		el.Add(fmt.Errorf("buff name is required"))
	}
	if s.Duration < 0 || s.TickTime < 0 {
		el.Add(fmt.Errorf("buff durations must not be negative"))
	}
	if s.Effect != nil && s.TickTime == 0 {
		el.Add(fmt.Errorf("tick_time is required when an effect is set"))
	}
	if s.Effect != nil && s.Effect.Type == combat.Debuff {
		el.Add(fmt.Errorf("buff effects must deal damage or heal"))
	}
	return el.Err()
}

func (s *BuffSpec) build(id string) *game.BuffType {
	b := &game.BuffType{
		ID:       id,
		Name:     s.Name,
		Stats:    s.Stats,
		Duration: s.Duration.Std(),
		TickTime: s.TickTime.Std(),
	}
	if s.Effect != nil {
		b.Effect = &game.SpellEffect{Type: s.Effect.Type, School: s.Effect.School, Amount: s.Effect.Amount}
	}
	return b
}
