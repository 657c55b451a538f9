package combat

import (
	"math"

	"github.com/pixil98/go-mmo/internal/stats"
)

// CritMultiplier scales the damage of a critical hit.
const CritMultiplier = 2.0

// Magnitude turns a fractional amount into a whole one, rounding up with a
// probability equal to the fractional part.
func Magnitude(raw float64, rng RNG) uint32 {
	if raw <= 0 {
		return 0
	}
	whole := math.Floor(raw)
	if rng.Float64() < raw-whole {
		whole++
	}
	return uint32(whole)
}

// Mitigate applies the outcome and the target's defences to raw damage.
// Misses and dodges deal nothing, crits are doubled, blocks subtract the
// block value, and the remainder is scaled by the target's resistance.
func Mitigate(raw float64, o Outcome, target stats.Stats, school stats.School) float64 {
	switch o {
	case Miss, Dodge, Fail:
		return 0
	case Crit:
		raw *= CritMultiplier
	case Block:
		raw -= float64(target.BlockValue)
	}
	if raw <= 0 {
		return 0
	}
	return raw * target.ResistanceMultiplier(school)
}
