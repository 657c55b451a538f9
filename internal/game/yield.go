package game

import (
	"math"

	"github.com/pixil98/go-mmo/internal/item"
)

// YieldEntry is one gatherable item of an object type. The initial stock
// and the amount per gather are both normally distributed.
type YieldEntry struct {
	Item       *item.Item
	InitMean   float64
	InitSD     float64
	GatherMean float64
	GatherSD   float64
}

// Yield is what an object type can be gathered for.
type Yield struct {
	entries []YieldEntry
}

func (y *Yield) Add(e YieldEntry) {
	y.entries = append(y.entries, e)
}

func (y *Yield) Entries() []YieldEntry {
	return y.entries
}

// Instantiate rolls the starting contents of a new object.
func (y *Yield) Instantiate(rng RNG) item.ItemSet {
	var set item.ItemSet
	for _, e := range y.entries {
		qty := math.Round(max(0, normal(rng, e.InitMean, e.InitSD)))
		set.Add(e.Item, uint(qty))
	}
	return set
}

// GatherQuantity rolls how many of it one gather produces, at least one.
func (y *Yield) GatherQuantity(it *item.Item, rng RNG) uint {
	for _, e := range y.entries {
		if e.Item != it {
			continue
		}
		qty := math.Round(normal(rng, e.GatherMean, e.GatherSD))
		return uint(max(1, qty))
	}
	return 1
}
