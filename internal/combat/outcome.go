package combat

import (
	"fmt"

	"github.com/pixil98/go-mmo/internal/stats"
)

// Outcome is the result of resolving one attack or spell against a target.
type Outcome int

const (
	Fail Outcome = iota
	Miss
	Dodge
	Block
	Crit
	Hit
)

func (o Outcome) String() string {
	switch o {
	case Miss:
		return "miss"
	case Dodge:
		return "dodge"
	case Block:
		return "block"
	case Crit:
		return "crit"
	case Hit:
		return "hit"
	default:
		return "fail"
	}
}

// Type is what the attack or spell does on a hit.
type Type int

const (
	Damage Type = iota
	Heal
	Debuff
)

var typeNames = map[Type]string{
	Damage: "damage",
	Heal:   "heal",
	Debuff: "debuff",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", int(t))
}

func (t *Type) UnmarshalText(text []byte) error {
	for k, name := range typeNames {
		if name == string(text) {
			*t = k
			return nil
		}
	}
	return fmt.Errorf("unknown effect type: %s", text)
}

// MeleeRange is the farthest distance at which an attack counts as melee.
const MeleeRange = 32.0

// BaseMissChance is the miss percentage before the attacker's hit rating.
const BaseMissChance = 10

// CanHaveOutcome reports whether an action of type t could end in outcome o.
// Heals never miss, spells cannot be dodged or blocked, and only melee
// attacks may be blocked.
func CanHaveOutcome(t Type, o Outcome, school stats.School, distance float64) bool {
	switch t {
	case Heal:
		return o == Hit || o == Crit
	case Debuff:
		return o == Hit || o == Miss
	}

	switch o {
	case Dodge:
		return !school.IsMagic()
	case Block:
		return !school.IsMagic() && distance <= MeleeRange
	}
	return true
}

// RNG is the randomness source combat draws from.
type RNG interface {
	Float64() float64
}

type band struct {
	outcome Outcome
	chance  float64
}

// Roll decides the outcome of an action by an attacker with stats a against
// a target with stats d. Outcome bands are laid end to end on a 0-100 roll
// in the order miss, dodge, block, crit; whatever remains is a hit.
func Roll(a, d stats.Stats, t Type, school stats.School, distance float64, rng RNG) Outcome {
	roll := rng.Float64() * 100

	var bands []band
	add := func(o Outcome, chance float64) {
		if chance <= 0 || !CanHaveOutcome(t, o, school, distance) {
			return
		}
		bands = append(bands, band{outcome: o, chance: chance})
	}

	add(Miss, float64(BaseMissChance)-float64(a.Hit))
	add(Dodge, float64(d.Dodge))
	add(Block, float64(d.Block))
	add(Crit, float64(a.Crit))

	var upper float64
	for _, b := range bands {
		upper += b.chance
		if roll < upper {
			return b.outcome
		}
	}
	return Hit
}
