package game

import (
	"errors"

	"openarbitrage/internal/market"
)

const (
	StartingCash = 250.0

	StartingLoanBalance = 10_000.0
	DailyLoanRate       = 0.01
	LoanLossThreshold   = 200_000.0
)

var (
	ErrUnknownItem           = errors.New("unknown item")
	ErrInvalidQuantity       = errors.New("quantity must be positive")
	ErrInvalidAmount         = errors.New("amount must be positive")
	ErrInsufficientCash      = errors.New("insufficient cash")
	ErrInsufficientInventory = errors.New("insufficient inventory")
	ErrCapacityExceeded      = errors.New("inventory capacity exceeded")
	ErrInvalidDestination    = errors.New("invalid destination")
	ErrGameFinished          = errors.New("game is finished")
	ErrUnsupportedCommand    = errors.New("unsupported command")
	ErrUnsupportedVersion    = errors.New("unsupported state version")
	ErrInvalidArgument       = errors.New("invalid command argument")
	ErrInvalidSnapshot       = errors.New("invalid state snapshot")
)

// DefaultItems is the template market every new session is cloned from.
var DefaultItems = []market.Item{
	market.NewItem("a", 10.00),
	market.NewItem("b", 50.00),
	market.NewItem("c", 25.00),
	market.NewItem("d", 30.00),
	market.NewItem("e", 5.00),
	market.NewItem("f", 1.00),
}

var DefaultCities = []string{
	"Sydney",
	"Melbourne",
	"Zurich",
	"New York",
	"Milano",
	"Santa Barbara",
}

type Status string

const (
	StatusOngoing Status = "ongoing"
	StatusWon     Status = "won"
	StatusLost    Status = "lost"
)

func (s Status) Terminal() bool {
	return s != StatusOngoing
}

func parseStatus(v string) (Status, error) {
	switch Status(v) {
	case StatusOngoing, StatusWon, StatusLost:
		return Status(v), nil
	case "":
		return StatusOngoing, nil
	default:
		return "", errors.New("unknown status " + v)
	}
}
