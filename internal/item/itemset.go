package item

import (
	"fmt"
	"sort"
	"strings"
)

// ItemSet is a quantity ledger keyed by item definition. The zero value is an
// empty set ready to use.
//
// Copies of a non-empty ItemSet share one map, so a copy is only safe to
// read. Use Clone for an independent set.
type ItemSet struct {
	set   map[*Item]uint
	total uint
}

// NewItemSet builds a set from item/quantity pairs.
func NewItemSet(entries map[*Item]uint) ItemSet {
	var s ItemSet
	for it, qty := range entries {
		s.Add(it, qty)
	}
	return s
}

func (s *ItemSet) init() {
	if s.set == nil {
		s.set = map[*Item]uint{}
	}
}

// Add increases the quantity of it by qty.
func (s *ItemSet) Add(it *Item, qty uint) {
	if qty == 0 {
		return
	}
	s.init()
	s.set[it] += qty
	s.total += qty
	s.checkTotal()
}

// Remove decreases the quantity of it by qty, clamping at zero.
func (s *ItemSet) Remove(it *Item, qty uint) {
	have, ok := s.set[it]
	if !ok {
		return
	}
	if qty >= have {
		delete(s.set, it)
		s.total -= have
	} else {
		s.set[it] = have - qty
		s.total -= qty
	}
	s.checkTotal()
}

// Set overwrites the quantity of it.
func (s *ItemSet) Set(it *Item, qty uint) {
	s.init()
	s.total -= s.set[it]
	if qty == 0 {
		delete(s.set, it)
	} else {
		s.set[it] = qty
		s.total += qty
	}
	s.checkTotal()
}

// Quantity returns how many of it the set holds.
func (s ItemSet) Quantity(it *Item) uint {
	return s.set[it]
}

// Contains reports whether the set holds at least qty of it.
func (s ItemSet) Contains(it *Item, qty uint) bool {
	return s.set[it] >= qty
}

// ContainsSet reports whether every requirement in rhs is met at once.
func (s ItemSet) ContainsSet(rhs ItemSet) bool {
	remaining := s.Clone()
	for it, qty := range rhs.set {
		if !remaining.Contains(it, qty) {
			return false
		}
		remaining.Remove(it, qty)
	}
	return true
}

// ContainsClass reports whether any item in the set carries class.
func (s ItemSet) ContainsClass(class string) bool {
	for it := range s.set {
		if it.HasClass(class) {
			return true
		}
	}
	return false
}

// ContainsClasses reports whether every class in classes is carried by some
// item in the set.
func (s ItemSet) ContainsClasses(classes []string) bool {
	for _, c := range classes {
		if !s.ContainsClass(c) {
			return false
		}
	}
	return true
}

// AddSet adds every quantity in rhs.
func (s *ItemSet) AddSet(rhs ItemSet) {
	for it, qty := range rhs.set {
		s.Add(it, qty)
	}
}

// RemoveSet removes every quantity in rhs, clamping per item.
func (s *ItemSet) RemoveSet(rhs ItemSet) {
	for it, qty := range rhs.set {
		s.Remove(it, qty)
	}
}

// SatisfiedBy walks slots in order, consuming stock against the set, and
// reports whether the whole set could be taken from them. An empty set is
// always satisfied.
func (s ItemSet) SatisfiedBy(slots Slots) bool {
	if s.IsEmpty() {
		return true
	}
	remaining := s.Clone()
	for _, slot := range slots {
		if slot.Item == nil || slot.Qty == 0 {
			continue
		}
		remaining.Remove(slot.Item, slot.Qty)
		if remaining.IsEmpty() {
			return true
		}
	}
	return false
}

// Clone returns a set that shares no storage with s.
func (s ItemSet) Clone() ItemSet {
	var c ItemSet
	for it, qty := range s.set {
		c.Add(it, qty)
	}
	return c
}

func (s ItemSet) Total() uint {
	return s.total
}

// Len is the number of distinct items held.
func (s ItemSet) Len() int {
	return len(s.set)
}

func (s ItemSet) IsEmpty() bool {
	return s.total == 0
}

// Entry is one item/quantity pair.
type Entry struct {
	Item *Item
	Qty  uint
}

// Items lists the contents ordered by item id.
func (s ItemSet) Items() []Entry {
	out := make([]Entry, 0, len(s.set))
	for it, qty := range s.set {
		out = append(out, Entry{Item: it, Qty: qty})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Item.ID < out[j].Item.ID
	})
	return out
}

func (s ItemSet) String() string {
	parts := make([]string, 0, len(s.set))
	for _, e := range s.Items() {
		parts = append(parts, fmt.Sprintf("%dx %s", e.Qty, e.Item.ID))
	}
	return strings.Join(parts, ", ")
}

// checkTotal panics if the running total disagrees with the contents.
func (s ItemSet) checkTotal() {
	var sum uint
	for _, qty := range s.set {
		sum += qty
	}
	if sum != s.total {
		panic(fmt.Sprintf("item set total %d does not match contents %d", s.total, sum))
	}
}
