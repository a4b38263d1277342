package game

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"openarbitrage/internal/market"
)

// Event is one entry of the append-only event log.
type Event struct {
	Kind    string         `json:"kind"`
	Day     int            `json:"day"`
	City    string         `json:"city"`
	Details map[string]any `json:"details"`
}

// State is the whole game. It is owned by a single caller; nothing in this
// package synchronises access to it.
type State struct {
	Day           int
	CityIndex     int
	Cash          float64
	Loan          LoanAccount
	Inventory     *Inventory
	Market        []market.Item
	Cities        []string
	Rules         Rules
	Status        Status
	Seed          int64
	EventLog      []Event
	LastLossValue float64

	rng      *rand.Rand
	appended int
}

// NewState builds a fresh session from the default template, seeded with seed.
func NewState(seed int64, rules Rules) *State {
	return &State{
		Cash: StartingCash,
		Loan: LoanAccount{
			Balance:    StartingLoanBalance,
			Rate:       DailyLoanRate,
			MaxBalance: LoanLossThreshold,
		},
		Inventory: NewInventory(rules.InventoryCapacity),
		Market:    market.CloneItems(DefaultItems),
		Cities:    append([]string(nil), DefaultCities...),
		Rules:     rules.clone(),
		Status:    StatusOngoing,
		Seed:      seed,
		rng:       newRand(seed),
	}
}

// NewStateRandomSeed is NewState with a seed drawn from crypto/rand, so the
// session can still be replayed later.
func NewStateRandomSeed(rules Rules) (*State, error) {
	seed, err := NewSeed()
	if err != nil {
		return nil, err
	}
	return NewState(seed, rules), nil
}

func NewSeed() (int64, error) {
	var b [8]byte
	if _, err := crand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("read random seed: %w", err)
	}
	return int64(binary.LittleEndian.Uint64(b[:]) >> 1), nil
}

func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewSource(seed))
}

func (s *State) CurrentCity() string {
	if s.CityIndex < 0 || s.CityIndex >= len(s.Cities) {
		return ""
	}
	return s.Cities[s.CityIndex]
}

func (s *State) findItem(name string) (*market.Item, error) {
	idx, ok := market.Find(s.Market, name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownItem, name)
	}
	return &s.Market[idx], nil
}

// InventoryValue prices every holding at the current market. Holdings of items
// missing from the market are worth nothing.
func (s *State) InventoryValue() float64 {
	value := 0.0
	for _, h := range s.Inventory.Holdings() {
		if idx, ok := market.Find(s.Market, h.Item); ok {
			value += s.Market[idx].Value * float64(h.Quantity)
		}
	}
	return value
}

func (s *State) NetWorth() float64 {
	return s.Cash + s.InventoryValue() - s.Loan.Balance
}

// EventsAppended counts every event ever appended, including ones the log limit
// has since dropped.
func (s *State) EventsAppended() int {
	return s.appended
}

// EventsSince returns the events appended after the counter read mark, limited
// to what is still in the log.
func (s *State) EventsSince(mark int) []Event {
	n := s.appended - mark
	if n <= 0 {
		return nil
	}
	if n > len(s.EventLog) {
		n = len(s.EventLog)
	}
	out := make([]Event, n)
	copy(out, s.EventLog[len(s.EventLog)-n:])
	return out
}

func (s *State) appendEvent(kind string, details map[string]any) {
	s.EventLog = append(s.EventLog, Event{
		Kind:    kind,
		Day:     s.Day,
		City:    s.CurrentCity(),
		Details: details,
	})
	s.appended++
	if limit := s.Rules.EventLogLimit; limit > 0 && len(s.EventLog) > limit {
		trimmed := make([]Event, limit)
		copy(trimmed, s.EventLog[len(s.EventLog)-limit:])
		s.EventLog = trimmed
	}
}

func (s *State) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.random().Float64()
}

func (s *State) random() *rand.Rand {
	if s.rng == nil {
		s.rng = newRand(s.Seed)
	}
	return s.rng
}
