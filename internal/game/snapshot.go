package game

import (
	"encoding/json"
	"fmt"
	"maps"

	"openarbitrage/internal/market"
)

// SnapshotVersion tags the snapshot layout; decoding rejects any other value.
const SnapshotVersion = 1

type Snapshot struct {
	Version       int               `json:"version"`
	Day           int               `json:"day"`
	CityIndex     int               `json:"city_index"`
	Cash          float64           `json:"cash"`
	Loan          LoanAccount       `json:"loan"`
	Inventory     InventorySnapshot `json:"inventory"`
	Market        []market.Item     `json:"market"`
	Cities        []string          `json:"cities"`
	Rules         Rules             `json:"rules"`
	Status        Status            `json:"status"`
	Seed          int64             `json:"seed"`
	EventLog      []Event           `json:"event_log"`
	LastLossValue float64           `json:"last_loss_value"`
}

type InventorySnapshot struct {
	Holdings HoldingList `json:"holdings"`
	Capacity int         `json:"capacity"`
}

// HoldingList encodes as a JSON object keyed by item, in holding order.
type HoldingList []Holding

func (h HoldingList) MarshalJSON() ([]byte, error) {
	w := make(Weights, 0, len(h))
	for _, line := range h {
		w = append(w, Weight{Key: line.Item, Value: float64(line.Quantity)})
	}
	return w.MarshalJSON()
}

func (h *HoldingList) UnmarshalJSON(data []byte) error {
	out := HoldingList{}
	err := decodeOrderedObject(data, func(key string, dec *json.Decoder) error {
		var qty int
		if err := dec.Decode(&qty); err != nil {
			return fmt.Errorf("holding %q: %w", key, err)
		}
		out = append(out, Holding{Item: key, Quantity: qty})
		return nil
	})
	if err != nil {
		return err
	}
	*h = out
	return nil
}

// Snapshot captures the state. The random generator is not captured, only its seed.
func (s *State) Snapshot() Snapshot {
	return Snapshot{
		Version:   SnapshotVersion,
		Day:       s.Day,
		CityIndex: s.CityIndex,
		Cash:      s.Cash,
		Loan:      s.Loan,
		Inventory: InventorySnapshot{
			Holdings: s.Inventory.Holdings(),
			Capacity: s.Inventory.Capacity,
		},
		Market:        append([]market.Item(nil), s.Market...),
		Cities:        append([]string(nil), s.Cities...),
		Rules:         s.Rules.clone(),
		Status:        s.Status,
		Seed:          s.Seed,
		EventLog:      copyEvents(s.EventLog),
		LastLossValue: s.LastLossValue,
	}
}

// FromSnapshot rebuilds a state. Its random source is freshly seeded from the
// stored seed, so the continuation differs from the live session it came from.
func FromSnapshot(snap Snapshot) (*State, error) {
	if snap.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, snap.Version)
	}
	if len(snap.Cities) == 0 {
		return nil, fmt.Errorf("%w: no cities", ErrInvalidSnapshot)
	}
	if snap.CityIndex < 0 || snap.CityIndex >= len(snap.Cities) {
		return nil, fmt.Errorf("%w: city index %d", ErrInvalidSnapshot, snap.CityIndex)
	}
	status, err := parseStatus(string(snap.Status))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}

	inv := NewInventory(snap.Inventory.Capacity)
	for _, h := range snap.Inventory.Holdings {
		if h.Quantity < 0 {
			return nil, fmt.Errorf("%w: negative holding %s", ErrInvalidSnapshot, h.Item)
		}
		inv.restore(h.Item, h.Quantity)
	}

	events := copyEvents(snap.EventLog)
	return &State{
		Day:           snap.Day,
		CityIndex:     snap.CityIndex,
		Cash:          snap.Cash,
		Loan:          snap.Loan,
		Inventory:     inv,
		Market:        append([]market.Item(nil), snap.Market...),
		Cities:        append([]string(nil), snap.Cities...),
		Rules:         snap.Rules.clone(),
		Status:        status,
		Seed:          snap.Seed,
		EventLog:      events,
		LastLossValue: snap.LastLossValue,
		rng:           newRand(snap.Seed),
		appended:      len(events),
	}, nil
}

func MarshalState(s *State) ([]byte, error) {
	return json.Marshal(s.Snapshot())
}

func UnmarshalState(data []byte) (*State, error) {
	var head struct {
		Version int `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	if head.Version != SnapshotVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, head.Version)
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	return FromSnapshot(snap)
}

func copyEvents(in []Event) []Event {
	if in == nil {
		return nil
	}
	out := make([]Event, len(in))
	for i, e := range in {
		out[i] = e
		out[i].Details = maps.Clone(e.Details)
	}
	return out
}
