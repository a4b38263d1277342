package game

import (
	"fmt"

	"github.com/elliotchance/orderedmap/v3"
)

// Holding is one inventory line.
type Holding struct {
	Item     string `json:"item"`
	Quantity int    `json:"quantity"`
}

// Inventory keeps holdings in first-acquired order; the random events walk them in
// that order. A zero capacity means unlimited.
type Inventory struct {
	holdings *orderedmap.OrderedMap[string, int]
	Capacity int
}

func NewInventory(capacity int) *Inventory {
	return &Inventory{
		holdings: orderedmap.NewOrderedMap[string, int](),
		Capacity: capacity,
	}
}

func (inv *Inventory) Add(item string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	if quantity == 0 {
		return nil
	}
	if inv.Capacity > 0 && inv.TotalQuantity()+quantity > inv.Capacity {
		return fmt.Errorf("%w: capacity %d", ErrCapacityExceeded, inv.Capacity)
	}
	current, _ := inv.lines().Get(item)
	inv.lines().Set(item, current+quantity)
	return nil
}

func (inv *Inventory) Remove(item string, quantity int) error {
	if quantity < 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, quantity)
	}
	current, _ := inv.lines().Get(item)
	if quantity > current {
		return fmt.Errorf("%w: have %d %s, need %d", ErrInsufficientInventory, current, item, quantity)
	}
	if remaining := current - quantity; remaining == 0 {
		inv.lines().Delete(item)
	} else {
		inv.lines().Set(item, remaining)
	}
	return nil
}

func (inv *Inventory) Quantity(item string) int {
	qty, _ := inv.lines().Get(item)
	return qty
}

func (inv *Inventory) TotalQuantity() int {
	total := 0
	for el := inv.lines().Front(); el != nil; el = el.Next() {
		total += el.Value
	}
	return total
}

func (inv *Inventory) Len() int {
	return inv.lines().Len()
}

// Holdings returns the non-empty lines in acquisition order.
func (inv *Inventory) Holdings() []Holding {
	out := make([]Holding, 0, inv.lines().Len())
	for el := inv.lines().Front(); el != nil; el = el.Next() {
		out = append(out, Holding{Item: el.Key, Quantity: el.Value})
	}
	return out
}

func (inv *Inventory) lines() *orderedmap.OrderedMap[string, int] {
	if inv.holdings == nil {
		inv.holdings = orderedmap.NewOrderedMap[string, int]()
	}
	return inv.holdings
}

// restore sets a line without capacity checks; used when loading snapshots.
func (inv *Inventory) restore(item string, quantity int) {
	if quantity <= 0 {
		return
	}
	inv.lines().Set(item, quantity)
}
