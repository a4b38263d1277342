package market

import "math"

const (
	walkMu    = 0.5
	walkSigma = walkMu / 2

	tradingDaysPerYear = 365.0
)

// NormalSource yields standard normal draws. *rand.Rand satisfies it.
type NormalSource interface {
	NormFloat64() float64
}

type Item struct {
	Name      string  `json:"name"`
	Value     float64 `json:"value"`
	BaseValue float64 `json:"base_value"`
	MinValue  float64 `json:"min_value"`
	MaxValue  float64 `json:"max_value"`
	LastValue float64 `json:"last_value"`
}

// NewItem builds a seed item priced at value. The anchor is the starting price and
// the clamps sit at 10% and 4x of it.
func NewItem(name string, value float64) Item {
	return Item{
		Name:      name,
		Value:     value,
		BaseValue: value,
		MinValue:  value * 0.1,
		MaxValue:  value * 4.0,
		LastValue: value,
	}
}

// CloneItems copies a template list with all drift removed.
func CloneItems(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, it := range items {
		value := it.BaseValue
		if value == 0 {
			value = it.Value
		}
		out = append(out, Item{
			Name:      it.Name,
			Value:     value,
			BaseValue: it.BaseValue,
			MinValue:  it.MinValue,
			MaxValue:  it.MaxValue,
			LastValue: value,
		})
	}
	return out
}

// Fluctuate moves every item one step along the bounded mean-reverting walk.
func Fluctuate(items []Item, src NormalSource) {
	for i := range items {
		it := &items[i]
		it.LastValue = it.Value

		step := walkMu + walkSigma*src.NormFloat64()
		next := it.Value
		if step <= 0.5 {
			next += it.BaseValue * step
		} else {
			next += it.BaseValue * -step
		}
		next = (next + it.BaseValue) / 2

		it.Value = clamp(next, it.MinValue, it.MaxValue)
	}
}

// FluctuateGBM applies one day of geometric Brownian motion. Prices are not clamped.
func FluctuateGBM(items []Item, src NormalSource) {
	dt := 1.0 / tradingDaysPerYear
	drift := (walkMu - 0.5*walkSigma*walkSigma) * dt
	vol := walkSigma * math.Sqrt(dt)
	for i := range items {
		it := &items[i]
		it.LastValue = it.Value
		it.Value *= math.Exp(drift + vol*src.NormFloat64())
	}
}

// Simulate runs the GBM model for the given number of iterations and returns the
// price series of each item, indexed like items.
func Simulate(iterations int, items []Item, src NormalSource) [][]float64 {
	history := make([][]float64, len(items))
	for i := range history {
		history[i] = make([]float64, 0, max(iterations, 0))
	}
	for n := 0; n < iterations; n++ {
		FluctuateGBM(items, src)
		for i, it := range items {
			history[i] = append(history[i], it.Value)
		}
	}
	return history
}

func Find(items []Item, name string) (int, bool) {
	for i := range items {
		if items[i].Name == name {
			return i, true
		}
	}
	return -1, false
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
