package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryAddAndRemove(t *testing.T) {
	inv := NewInventory(0)

	require.NoError(t, inv.Add("a", 3))
	require.NoError(t, inv.Add("b", 2))
	require.NoError(t, inv.Add("a", 1))
	assert.Equal(t, 4, inv.Quantity("a"))
	assert.Equal(t, 6, inv.TotalQuantity())

	require.NoError(t, inv.Remove("a", 4))
	assert.Equal(t, 0, inv.Quantity("a"))
	assert.Equal(t, 1, inv.Len(), "emptied lines are dropped")
	assert.Equal(t, []Holding{{Item: "b", Quantity: 2}}, inv.Holdings())
}

func TestInventoryAddZeroIsNoop(t *testing.T) {
	inv := NewInventory(1)
	require.NoError(t, inv.Add("a", 0))
	assert.Equal(t, 0, inv.Len())
}

func TestInventoryRejectsNegative(t *testing.T) {
	inv := NewInventory(0)
	require.ErrorIs(t, inv.Add("a", -1), ErrInvalidQuantity)
	require.ErrorIs(t, inv.Remove("a", -1), ErrInvalidQuantity)
}

func TestInventoryCapacity(t *testing.T) {
	inv := NewInventory(5)
	require.NoError(t, inv.Add("a", 4))
	require.ErrorIs(t, inv.Add("b", 2), ErrCapacityExceeded)
	require.NoError(t, inv.Add("b", 1))
	assert.Equal(t, 5, inv.TotalQuantity())
}

func TestInventoryRemoveInsufficient(t *testing.T) {
	inv := NewInventory(0)
	require.NoError(t, inv.Add("a", 1))
	require.ErrorIs(t, inv.Remove("a", 2), ErrInsufficientInventory)
	require.ErrorIs(t, inv.Remove("zzz", 1), ErrInsufficientInventory)
	assert.Equal(t, 1, inv.Quantity("a"))
}

func TestInventoryKeepsAcquisitionOrder(t *testing.T) {
	inv := NewInventory(0)
	for _, name := range []string{"f", "a", "c"} {
		require.NoError(t, inv.Add(name, 1))
	}
	require.NoError(t, inv.Add("a", 2))

	var names []string
	for _, h := range inv.Holdings() {
		names = append(names, h.Item)
	}
	assert.Equal(t, []string{"f", "a", "c"}, names)
}

func TestInventoryZeroValueUsable(t *testing.T) {
	var inv Inventory
	assert.Equal(t, 0, inv.Quantity("a"))
	require.NoError(t, inv.Add("a", 1))
	assert.Equal(t, 1, inv.TotalQuantity())
}
