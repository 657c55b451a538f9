package stats

import (
	"fmt"
	"strings"
)

// Mod is a delta composed onto Stats by gear, buffs and talents.
// AttackTime and Speed are multipliers; zero leaves the value unchanged.
type Mod struct {
	MaxHealth   int32 `json:"max_health,omitempty"`
	MaxEnergy   int32 `json:"max_energy,omitempty"`
	Hps         int32 `json:"hps,omitempty"`
	Eps         int32 `json:"eps,omitempty"`
	Attack      int32 `json:"attack,omitempty"`
	Armor       int32 `json:"armor,omitempty"`
	AirResist   int32 `json:"air_resist,omitempty"`
	EarthResist int32 `json:"earth_resist,omitempty"`
	FireResist  int32 `json:"fire_resist,omitempty"`
	WaterResist int32 `json:"water_resist,omitempty"`
	Hit         int32 `json:"hit,omitempty"`
	Crit        int32 `json:"crit,omitempty"`
	Dodge       int32 `json:"dodge,omitempty"`
	Block       int32 `json:"block,omitempty"`
	BlockValue  int32 `json:"block_value,omitempty"`
	GatherBonus int32 `json:"gather_bonus,omitempty"`
	MagicDamage int32 `json:"magic_damage,omitempty"`

	AttackTime float64 `json:"attack_time,omitempty"`
	Speed      float64 `json:"speed,omitempty"`

	Stuns bool `json:"stuns,omitempty"`
}

type modLine struct {
	label string
	value int32
	pct   bool
}

func (m Mod) lines() []modLine {
	return []modLine{
		{"max health", m.MaxHealth, false},
		{"max energy", m.MaxEnergy, false},
		{"health regen", m.Hps, false},
		{"energy regen", m.Eps, false},
		{"attack", m.Attack, false},
		{"armor", m.Armor, false},
		{"air resistance", m.AirResist, false},
		{"earth resistance", m.EarthResist, false},
		{"fire resistance", m.FireResist, false},
		{"water resistance", m.WaterResist, false},
		{"hit", m.Hit, true},
		{"crit", m.Crit, true},
		{"dodge", m.Dodge, true},
		{"block", m.Block, true},
		{"block value", m.BlockValue, false},
		{"gathering bonus", m.GatherBonus, true},
		{"magic damage", m.MagicDamage, false},
	}
}

// Describe lists the non-neutral parts of m as short phrases, in a fixed
// order, for item and buff tooltips.
func (m Mod) Describe() []string {
	var out []string
	for _, l := range m.lines() {
		if l.value == 0 {
			continue
		}
		suffix := ""
		if l.pct {
			suffix = "%"
		}
		out = append(out, fmt.Sprintf("%+d%s %s", l.value, suffix, l.label))
	}
	if m.AttackTime != 0 && m.AttackTime != 1 {
		out = append(out, fmt.Sprintf("%+.0f%% attack time", (m.AttackTime-1)*100))
	}
	if m.Speed != 0 && m.Speed != 1 {
		out = append(out, fmt.Sprintf("%+.0f%% speed", (m.Speed-1)*100))
	}
	if m.Stuns {
		out = append(out, "stuns")
	}
	return out
}

func (m Mod) String() string {
	return strings.Join(m.Describe(), ", ")
}
