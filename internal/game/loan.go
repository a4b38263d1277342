package game

import "fmt"

type LoanAccount struct {
	Balance    float64 `json:"balance"`
	Rate       float64 `json:"rate"`
	MaxBalance float64 `json:"max_balance"`
}

// Compound applies one day of interest per iteration so every intermediate
// balance is the same as stepping day by day.
func (l *LoanAccount) Compound(days int) {
	for i := 0; i < days; i++ {
		l.Balance += l.Balance * l.Rate
	}
}

// Repay pays down at most the outstanding balance and returns what was applied.
// Callers must charge cash for the returned amount, not the requested one.
func (l *LoanAccount) Repay(amount float64) (float64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("%w: repayment %.2f", ErrInvalidAmount, amount)
	}
	repaid := min(amount, l.Balance)
	l.Balance -= repaid
	return repaid, nil
}
