package game

import (
	"errors"
	"math"

	"github.com/pixil98/go-mmo/internal/item"
)

var (
	ErrInvalidSlot = errors.New("invalid slot")
	ErrEmptySlot   = errors.New("empty slot")
)

type lootEntry interface {
	instantiate(rng RNG) (*item.Item, uint)
}

type chanceEntry struct {
	item   *item.Item
	chance float64
}

func (e chanceEntry) instantiate(rng RNG) (*item.Item, uint) {
	if rng.Float64() < e.chance {
		return e.item, 1
	}
	return e.item, 0
}

type normalEntry struct {
	item     *item.Item
	mean, sd float64
}

func (e normalEntry) instantiate(rng RNG) (*item.Item, uint) {
	raw := max(0, normal(rng, e.mean, e.sd))
	return e.item, uint(math.Round(raw))
}

// LootChoice is one of the options of a choice entry.
type LootChoice struct {
	Item *item.Item
	Qty  uint
}

type choiceEntry struct {
	choices []LootChoice
}

func (e choiceEntry) instantiate(rng RNG) (*item.Item, uint) {
	if len(e.choices) == 0 {
		return nil, 0
	}
	c := e.choices[rng.IntN(len(e.choices))]
	return c.Item, c.Qty
}

// LootTable describes what an NPC may drop.
type LootTable struct {
	entries []lootEntry
}

// AddSimple drops one of it with the given chance.
func (t *LootTable) AddSimple(it *item.Item, chance float64) {
	t.entries = append(t.entries, chanceEntry{item: it, chance: chance})
}

// AddNormal drops a normally distributed quantity of it, floored at zero.
func (t *LootTable) AddNormal(it *item.Item, mean, sd float64) {
	t.entries = append(t.entries, normalEntry{item: it, mean: mean, sd: sd})
}

// AddChoice drops exactly one of the choices, picked uniformly.
func (t *LootTable) AddChoice(choices ...LootChoice) {
	t.entries = append(t.entries, choiceEntry{choices: choices})
}

// AddAll appends every entry of other.
func (t *LootTable) AddAll(other *LootTable) {
	t.entries = append(t.entries, other.entries...)
}

func (t *LootTable) Len() int {
	return len(t.entries)
}

// Instantiate rolls every entry once.
func (t *LootTable) Instantiate(rng RNG) *Loot {
	l := &Loot{}
	for _, e := range t.entries {
		it, qty := e.instantiate(rng)
		if it == nil || qty == 0 {
			continue
		}
		l.slots = append(l.slots, item.Slot{Item: it, Qty: qty})
	}
	return l
}

// Loot is the concrete contents of a corpse. It is shared by the corpse and
// every player looking into it.
type Loot struct {
	slots item.Slots
}

func (l *Loot) IsEmpty() bool {
	for _, s := range l.slots {
		if !s.IsEmpty() {
			return false
		}
	}
	return true
}

func (l *Loot) Slots() item.Slots {
	return l.slots
}

// TakeSlot empties a slot and returns what it held.
func (l *Loot) TakeSlot(slot int) (item.Slot, error) {
	if slot < 0 || slot >= len(l.slots) {
		return item.Slot{}, ErrInvalidSlot
	}
	s := l.slots[slot]
	if s.IsEmpty() {
		return item.Slot{}, ErrEmptySlot
	}
	l.slots[slot] = item.Slot{}
	return s, nil
}
