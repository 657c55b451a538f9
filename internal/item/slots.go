package item

// Slot is one inventory or container cell.
type Slot struct {
	Item *Item
	Qty  uint
}

func (s Slot) IsEmpty() bool {
	return s.Item == nil || s.Qty == 0
}

// Slots is a fixed-length slotted container such as a backpack.
type Slots []Slot

func NewSlots(n int) Slots {
	return make(Slots, n)
}

// Count returns the total quantity of it across all slots.
func (s Slots) Count(it *Item) uint {
	var n uint
	for _, slot := range s {
		if slot.Item == it {
			n += slot.Qty
		}
	}
	return n
}

// CanFit reports whether qty of it would fit without discarding anything.
func (s Slots) CanFit(it *Item, qty uint) bool {
	stack := it.stackSize()
	var room uint
	for _, slot := range s {
		switch {
		case slot.IsEmpty():
			room += stack
		case slot.Item == it && slot.Qty < stack:
			room += stack - slot.Qty
		}
		if room >= qty {
			return true
		}
	}
	return room >= qty
}

// Add places qty of it, topping up existing stacks before using empty slots.
// It returns the quantity that did not fit and the indices it touched.
func (s Slots) Add(it *Item, qty uint) (uint, []int) {
	stack := it.stackSize()
	var touched []int

	for i := range s {
		if qty == 0 {
			break
		}
		if s[i].Item != it || s[i].Qty == 0 || s[i].Qty >= stack {
			continue
		}
		n := min(stack-s[i].Qty, qty)
		s[i].Qty += n
		qty -= n
		touched = append(touched, i)
	}

	for i := range s {
		if qty == 0 {
			break
		}
		if !s[i].IsEmpty() {
			continue
		}
		n := min(stack, qty)
		s[i] = Slot{Item: it, Qty: n}
		qty -= n
		touched = append(touched, i)
	}

	return qty, touched
}

// Remove takes the quantities in set out of the slots, in slot order.
// It returns the indices that changed.
func (s Slots) Remove(set ItemSet) []int {
	remaining := set.Clone()
	var touched []int
	for i := range s {
		if s[i].IsEmpty() {
			continue
		}
		want := remaining.Quantity(s[i].Item)
		if want == 0 {
			continue
		}
		n := min(want, s[i].Qty)
		remaining.Remove(s[i].Item, n)
		s[i].Qty -= n
		if s[i].Qty == 0 {
			s[i] = Slot{}
		}
		touched = append(touched, i)
	}
	return touched
}

// ToSet collapses the slots into an ItemSet.
func (s Slots) ToSet() ItemSet {
	var set ItemSet
	for _, slot := range s {
		if !slot.IsEmpty() {
			set.Add(slot.Item, slot.Qty)
		}
	}
	return set
}

// HasClasses reports whether every class is carried by something in the slots.
func (s Slots) HasClasses(classes []string) bool {
	return s.ToSet().ContainsClasses(classes)
}
