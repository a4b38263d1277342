package game

import (
	"fmt"

	"openarbitrage/internal/market"
)

// Command is the closed set of player and system actions. Only the variants in
// this file implement it.
type Command interface {
	// Name is the command's wire type.
	Name() string
	isCommand()
}

type Buy struct {
	ItemName string
	Quantity int
}

type Sell struct {
	ItemName string
	Quantity int
}

type Travel struct {
	DestinationIndex int
}

type RepayLoan struct {
	Amount float64
}

type AdvanceDay struct {
	Days int
}

type SetSeed struct {
	Seed int64
}

func (Buy) Name() string        { return "buy" }
func (Sell) Name() string       { return "sell" }
func (Travel) Name() string     { return "travel" }
func (RepayLoan) Name() string  { return "repay" }
func (AdvanceDay) Name() string { return "advance_day" }
func (SetSeed) Name() string    { return "set_seed" }

func (Buy) isCommand()        {}
func (Sell) isCommand()       {}
func (Travel) isCommand()     {}
func (RepayLoan) isCommand()  {}
func (AdvanceDay) isCommand() {}
func (SetSeed) isCommand()    {}

// Apply validates cmd against the state and applies it. On error the state is
// left as it was.
func (s *State) Apply(cmd Command) error {
	if s.Status.Terminal() {
		return fmt.Errorf("%w: %s", ErrGameFinished, s.Status)
	}

	switch c := cmd.(type) {
	case SetSeed:
		s.rng = newRand(c.Seed)
		s.Seed = c.Seed
		return nil
	case AdvanceDay:
		return s.advanceDay(c)
	case Travel:
		return s.travel(c)
	case Buy:
		return s.buy(c)
	case Sell:
		return s.sell(c)
	case RepayLoan:
		return s.repay(c)
	default:
		return fmt.Errorf("%w: %T", ErrUnsupportedCommand, cmd)
	}
}

func (s *State) advanceDay(c AdvanceDay) error {
	if c.Days < 0 {
		return fmt.Errorf("%w: days %d", ErrInvalidQuantity, c.Days)
	}
	for i := 0; i < c.Days; i++ {
		market.Fluctuate(s.Market, s.random())
		s.applyDailyEvent()
		s.Loan.Compound(1)
		s.Day++
	}
	s.evaluateOutcome()
	return nil
}

func (s *State) travel(c Travel) error {
	if c.DestinationIndex < 0 || c.DestinationIndex >= len(s.Cities) {
		return fmt.Errorf("%w: %d", ErrInvalidDestination, c.DestinationIndex)
	}
	if c.DestinationIndex == s.CityIndex {
		return nil
	}
	if s.Cash < s.Rules.TravelCost {
		return fmt.Errorf("%w: travel costs %.2f", ErrInsufficientCash, s.Rules.TravelCost)
	}
	s.Cash -= s.Rules.TravelCost
	s.CityIndex = c.DestinationIndex

	days := s.Rules.TravelTimeDays + s.applyTravelEvent()
	for i := 0; i < days; i++ {
		market.Fluctuate(s.Market, s.random())
		s.Loan.Compound(1)
		s.Day++
	}
	s.evaluateOutcome()
	return nil
}

func (s *State) buy(c Buy) error {
	item, err := s.findItem(c.ItemName)
	if err != nil {
		return err
	}
	if c.Quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, c.Quantity)
	}
	cost := item.Value * float64(c.Quantity)
	if cost > s.Cash {
		return fmt.Errorf("%w: need %.2f, have %.2f", ErrInsufficientCash, cost, s.Cash)
	}
	// Inventory first: a capacity failure must not have charged cash.
	if err := s.Inventory.Add(item.Name, c.Quantity); err != nil {
		return err
	}
	s.Cash -= cost
	s.evaluateOutcome()
	return nil
}

func (s *State) sell(c Sell) error {
	item, err := s.findItem(c.ItemName)
	if err != nil {
		return err
	}
	if c.Quantity <= 0 {
		return fmt.Errorf("%w: %d", ErrInvalidQuantity, c.Quantity)
	}
	if held := s.Inventory.Quantity(item.Name); held < c.Quantity {
		return fmt.Errorf("%w: have %d %s, selling %d", ErrInsufficientInventory, held, item.Name, c.Quantity)
	}
	if err := s.Inventory.Remove(item.Name, c.Quantity); err != nil {
		return err
	}
	s.Cash += item.Value * float64(c.Quantity)
	s.evaluateOutcome()
	return nil
}

func (s *State) repay(c RepayLoan) error {
	if c.Amount <= 0 {
		return fmt.Errorf("%w: repayment %.2f", ErrInvalidAmount, c.Amount)
	}
	if c.Amount > s.Cash {
		return fmt.Errorf("%w: repaying %.2f with %.2f", ErrInsufficientCash, c.Amount, s.Cash)
	}
	repaid, err := s.Loan.Repay(c.Amount)
	if err != nil {
		return err
	}
	s.Cash -= repaid
	s.evaluateOutcome()
	return nil
}

// evaluateOutcome settles the status. It never leaves a terminal status.
func (s *State) evaluateOutcome() {
	if s.Status.Terminal() {
		return
	}
	if s.Loan.Balance >= s.Loan.MaxBalance {
		s.Status = StatusLost
		return
	}
	if s.Rules.MaxDays > 0 && s.Day >= s.Rules.MaxDays {
		if s.NetWorth() >= s.Rules.WinNetWorth {
			s.Status = StatusWon
		} else {
			s.Status = StatusLost
		}
		return
	}
	if s.NetWorth() >= s.Rules.WinNetWorth {
		s.Status = StatusWon
	}
}
