package game

import (
	"time"

	"github.com/pixil98/go-mmo/internal/item"
)

// Recipe turns materials into a product, given the right tools.
type Recipe struct {
	ID             string
	Name           string
	Product        *item.Item
	Quantity       uint
	Materials      item.ItemSet
	Tools          []string
	Time           time.Duration
	KnownByDefault bool
}

func (r *Recipe) quantity() uint {
	return max(r.Quantity, 1)
}
