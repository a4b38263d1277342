package market

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixedNormal float64

func (f fixedNormal) NormFloat64() float64 { return float64(f) }

func TestNewItemDefaults(t *testing.T) {
	it := NewItem("x", 10)
	assert.Equal(t, 10.0, it.BaseValue)
	assert.InDelta(t, 1.0, it.MinValue, 1e-12)
	assert.InDelta(t, 40.0, it.MaxValue, 1e-12)
	assert.Equal(t, 10.0, it.LastValue)
}

func TestFluctuateStaysWithinBounds(t *testing.T) {
	base := []Item{NewItem("x", 10), NewItem("y", 50)}
	items := CloneItems(base)
	rng := rand.New(rand.NewSource(42))

	for day := 0; day < 500; day++ {
		Fluctuate(items, rng)
		for i, it := range items {
			require.GreaterOrEqual(t, it.Value, it.MinValue, "day %d item %s", day, it.Name)
			require.LessOrEqual(t, it.Value, it.MaxValue, "day %d item %s", day, it.Name)
			require.Equal(t, base[i].BaseValue, it.BaseValue)
		}
	}
}

func TestFluctuateClampsToMinAndMax(t *testing.T) {
	low := []Item{{Name: "low", Value: 1, BaseValue: 10, MinValue: 9, MaxValue: 12}}
	high := []Item{{Name: "high", Value: 20, BaseValue: 10, MinValue: 5, MaxValue: 12}}

	// step = 0.5 + 0.25*38 = 10: a big drop.
	Fluctuate(low, fixedNormal(38))
	// step = 0.5 - 0.25*2 = 0: value is already above max.
	Fluctuate(high, fixedNormal(-2))

	assert.Equal(t, low[0].MinValue, low[0].Value)
	assert.Equal(t, 1.0, low[0].LastValue)
	assert.Equal(t, high[0].MaxValue, high[0].Value)
	assert.Equal(t, 20.0, high[0].LastValue)
}

func TestFluctuateBlendsTowardAnchor(t *testing.T) {
	items := []Item{{Name: "a", Value: 10, BaseValue: 10, MinValue: 1, MaxValue: 40}}
	// step = 0.5 exactly: delta = +5, candidate = (10 + 5 + 10) / 2.
	Fluctuate(items, fixedNormal(0))
	assert.InDelta(t, 12.5, items[0].Value, 1e-12)
}

func TestFluctuateGBMTracksLastValue(t *testing.T) {
	items := []Item{NewItem("exp", 10)}
	FluctuateGBM(items, fixedNormal(0))

	assert.Equal(t, 10.0, items[0].LastValue)
	assert.NotEqual(t, items[0].LastValue, items[0].Value)
	assert.Greater(t, items[0].Value, 10.0)
}

func TestSimulateHistoryLength(t *testing.T) {
	items := []Item{NewItem("a", 10), NewItem("b", 20)}
	history := Simulate(3, items, rand.New(rand.NewSource(1)))

	require.Len(t, history, 2)
	for _, series := range history {
		assert.Len(t, series, 3)
	}
	assert.Equal(t, items[1].Value, history[1][2])
}

func TestCloneItemsResetsDynamicFields(t *testing.T) {
	original := []Item{{Name: "x", Value: 2.5, BaseValue: 5, MinValue: 1, MaxValue: 6, LastValue: 3}}

	cloned := CloneItems(original)

	require.Len(t, cloned, 1)
	assert.Equal(t, original[0].BaseValue, cloned[0].Value)
	assert.Equal(t, original[0].MinValue, cloned[0].MinValue)
	assert.Equal(t, original[0].MaxValue, cloned[0].MaxValue)
	assert.Equal(t, cloned[0].Value, cloned[0].LastValue)

	cloned[0].Value = 99
	assert.Equal(t, 2.5, original[0].Value)
}

func TestFind(t *testing.T) {
	items := []Item{NewItem("a", 1), NewItem("b", 2)}
	idx, ok := Find(items, "b")
	assert.True(t, ok)
	assert.Equal(t, 1, idx)

	_, ok = Find(items, "z")
	assert.False(t, ok)
}
