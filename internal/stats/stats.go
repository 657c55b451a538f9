package stats

import (
	"encoding/json"
	"fmt"
	"time"
)

// Stats is the composed attribute record of an entity.
type Stats struct {
	MaxHealth   uint32 `json:"max_health"`
	MaxEnergy   uint32 `json:"max_energy"`
	Hps         uint32 `json:"hps"`
	Eps         uint32 `json:"eps"`
	Attack      uint32 `json:"attack"`
	Armor       uint32 `json:"armor"`
	AirResist   uint32 `json:"air_resist"`
	EarthResist uint32 `json:"earth_resist"`
	FireResist  uint32 `json:"fire_resist"`
	WaterResist uint32 `json:"water_resist"`
	Hit         uint32 `json:"hit"`
	Crit        uint32 `json:"crit"`
	Dodge       uint32 `json:"dodge"`
	Block       uint32 `json:"block"`
	BlockValue  uint32 `json:"block_value"`
	GatherBonus uint32 `json:"gather_bonus"`

	MagicDamage int32 `json:"magic_damage"`

	AttackTime time.Duration `json:"attack_time"`
	Speed      float64       `json:"speed"`

	Stunned bool `json:"stunned,omitempty"`
}

// UnmarshalJSON accepts attack_time as a duration string such as "1.5s".
func (s *Stats) UnmarshalJSON(b []byte) error {
	type raw Stats
	aux := struct {
		*raw
		AttackTime string `json:"attack_time"`
	}{raw: (*raw)(s)}

	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	if aux.AttackTime != "" {
		d, err := time.ParseDuration(aux.AttackTime)
		if err != nil {
			return fmt.Errorf("parsing attack_time: %w", err)
		}
		s.AttackTime = d
	}
	return nil
}

// Add sums rhs into s field by field.
func (s *Stats) Add(rhs Stats) {
	s.MaxHealth += rhs.MaxHealth
	s.MaxEnergy += rhs.MaxEnergy
	s.Hps += rhs.Hps
	s.Eps += rhs.Eps
	s.Attack += rhs.Attack
	s.Armor += rhs.Armor
	s.AirResist += rhs.AirResist
	s.EarthResist += rhs.EarthResist
	s.FireResist += rhs.FireResist
	s.WaterResist += rhs.WaterResist
	s.Hit += rhs.Hit
	s.Crit += rhs.Crit
	s.Dodge += rhs.Dodge
	s.Block += rhs.Block
	s.BlockValue += rhs.BlockValue
	s.GatherBonus += rhs.GatherBonus
	s.MagicDamage += rhs.MagicDamage
	s.AttackTime += rhs.AttackTime
	s.Speed += rhs.Speed
	s.Stunned = s.Stunned || rhs.Stunned
}

// Apply composes a modifier onto s. Unsigned fields never drop below zero,
// magic damage may go negative, and the multipliers are only applied when
// they are set and differ from 1.
func (s *Stats) Apply(m Mod) {
	addFloored(&s.MaxHealth, m.MaxHealth)
	addFloored(&s.MaxEnergy, m.MaxEnergy)
	addFloored(&s.Hps, m.Hps)
	addFloored(&s.Eps, m.Eps)
	addFloored(&s.Attack, m.Attack)
	addFloored(&s.Armor, m.Armor)
	addFloored(&s.AirResist, m.AirResist)
	addFloored(&s.EarthResist, m.EarthResist)
	addFloored(&s.FireResist, m.FireResist)
	addFloored(&s.WaterResist, m.WaterResist)
	addFloored(&s.Hit, m.Hit)
	addFloored(&s.Crit, m.Crit)
	addFloored(&s.Dodge, m.Dodge)
	addFloored(&s.Block, m.Block)
	addFloored(&s.BlockValue, m.BlockValue)
	addFloored(&s.GatherBonus, m.GatherBonus)

	s.MagicDamage += m.MagicDamage

	if m.AttackTime != 0 && m.AttackTime != 1 {
		s.AttackTime = time.Duration(float64(s.AttackTime) * m.AttackTime)
	}
	if m.Speed != 0 && m.Speed != 1 {
		s.Speed *= m.Speed
	}

	if m.Stuns {
		s.Stunned = true
	}
}

func addFloored(v *uint32, delta int32) {
	sum := int64(*v) + int64(delta)
	if sum < 0 {
		*v = 0
		return
	}
	*v = uint32(sum)
}

// Resistance returns the resistance against the given school.
func (s Stats) Resistance(school School) uint32 {
	switch school {
	case Air:
		return s.AirResist
	case Earth:
		return s.EarthResist
	case Fire:
		return s.FireResist
	case Water:
		return s.WaterResist
	default:
		return s.Armor
	}
}

// ResistanceMultiplier is the share of incoming damage of the given school
// that gets through, in [0,1].
func (s Stats) ResistanceMultiplier(school School) float64 {
	res := s.Resistance(school)
	if res >= 100 {
		return 0
	}
	return float64(100-res) / 100
}

// Compose builds final stats from a base record and modifier layers,
// applied in the order given.
func Compose(base Stats, layers ...[]Mod) Stats {
	s := base
	for _, layer := range layers {
		for _, m := range layer {
			s.Apply(m)
		}
	}
	return s
}
