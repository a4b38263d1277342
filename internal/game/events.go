package game

import "openarbitrage/internal/market"

func (s *State) applyDailyEvent() {
	if s.Rules.DailyEventChance <= 0 {
		return
	}
	chance := s.Rules.DailyEventChance * s.Rules.CityEventMultipliers.GetOr(s.CurrentCity(), 1.0)
	if chance <= 0 || s.random().Float64() > chance {
		return
	}
	kind, ok := WeightedChoice(s.Rules.DailyEventWeights, s.random())
	if !ok {
		return
	}
	switch kind {
	case EventDemandSpike:
		s.demandSpike()
	case EventTheft:
		s.theft()
	case EventCashWindfall:
		s.cashWindfall()
	case EventCreditorCall:
		s.creditorCall()
	case EventSpoilage:
		s.spoilage()
	case EventMarketShock:
		s.marketShock()
	case EventInsurancePayout:
		s.insurancePayout()
	}
}

// applyTravelEvent rolls the once-per-trip event and returns extra travel days.
func (s *State) applyTravelEvent() int {
	if s.Rules.TravelEventChance <= 0 || s.random().Float64() > s.Rules.TravelEventChance {
		return 0
	}
	kind, ok := WeightedChoice(s.Rules.TravelEventWeights, s.random())
	if !ok {
		return 0
	}
	switch kind {
	case EventWeatherDelay:
		return s.weatherDelay()
	case EventCustomsFine:
		s.customsFine()
	}
	return 0
}

func (s *State) demandSpike() {
	if len(s.Market) == 0 {
		return
	}
	item := &s.Market[s.random().Intn(len(s.Market))]
	before := item.Value
	multiplier := s.uniform(1.25, 1.6)
	item.Value *= multiplier
	s.appendEvent(EventDemandSpike, map[string]any{
		"item":         item.Name,
		"multiplier":   multiplier,
		"before_value": before,
		"after_value":  item.Value,
	})
}

func (s *State) theft() {
	total := s.Inventory.TotalQuantity()
	if total == 0 {
		return
	}
	toRemove := max(1, int(float64(total)*s.uniform(0.05, 0.2)))

	removed := map[string]int{}
	var order []string
	for i := 0; i < toRemove; i++ {
		var weights Weights
		for _, h := range s.Inventory.Holdings() {
			weights = append(weights, Weight{Key: h.Item, Value: float64(h.Quantity)})
		}
		name, ok := WeightedChoice(weights, s.random())
		if !ok {
			break
		}
		if err := s.Inventory.Remove(name, 1); err != nil {
			break
		}
		if removed[name] == 0 {
			order = append(order, name)
		}
		removed[name]++
	}

	lines := make([]Holding, 0, len(order))
	for _, name := range order {
		lines = append(lines, Holding{Item: name, Quantity: removed[name]})
	}
	s.LastLossValue += s.lossValue(lines)
	s.appendEvent(EventTheft, map[string]any{
		"removed": removed,
	})
}

func (s *State) cashWindfall() {
	amount := s.uniform(200, 800)
	s.Cash += amount
	s.appendEvent(EventCashWindfall, map[string]any{
		"amount": amount,
	})
}

func (s *State) creditorCall() {
	demand := s.uniform(250, 750)
	paid := 0.0
	if pay := min(demand, s.Cash); pay > 0 {
		repaid, err := s.Loan.Repay(pay)
		if err == nil {
			paid = repaid
			s.Cash -= repaid
		}
	}
	s.appendEvent(EventCreditorCall, map[string]any{
		"demand": demand,
		"paid":   paid,
	})
}

func (s *State) spoilage() {
	holdings := s.Inventory.Holdings()
	if len(holdings) == 0 {
		return
	}
	var name string
	if len(s.Rules.SpoilageItemMultipliers) > 0 {
		weights := make(Weights, 0, len(holdings))
		for _, h := range holdings {
			weights = append(weights, Weight{Key: h.Item, Value: s.Rules.SpoilageItemMultipliers.GetOr(h.Item, 1.0)})
		}
		chosen, ok := WeightedChoice(weights, s.random())
		if !ok {
			return
		}
		name = chosen
	} else {
		name = holdings[s.random().Intn(len(holdings))].Item
	}

	held := s.Inventory.Quantity(name)
	if held == 0 {
		return
	}
	toRemove := min(max(1, int(float64(held)*s.uniform(0.1, 0.3))), held)
	if err := s.Inventory.Remove(name, toRemove); err != nil {
		return
	}
	loss := s.lossValue([]Holding{{Item: name, Quantity: toRemove}})
	s.LastLossValue += loss
	s.appendEvent(EventSpoilage, map[string]any{
		"item":       name,
		"removed":    toRemove,
		"loss_value": loss,
	})
}

func (s *State) marketShock() {
	multiplier := s.uniform(0.85, 1.15)
	before := make(map[string]float64, len(s.Market))
	after := make(map[string]float64, len(s.Market))
	for i := range s.Market {
		it := &s.Market[i]
		before[it.Name] = it.Value
		it.Value *= multiplier
		after[it.Name] = it.Value
	}
	s.appendEvent(EventMarketShock, map[string]any{
		"multiplier": multiplier,
		"before":     before,
		"after":      after,
	})
}

func (s *State) insurancePayout() {
	base := s.LastLossValue
	payout := 0.0
	if base > 0 {
		payout = base * s.uniform(0.2, 0.4)
	}
	s.Cash += payout
	s.LastLossValue = 0
	s.appendEvent(EventInsurancePayout, map[string]any{
		"base_loss": base,
		"payout":    payout,
	})
}

func (s *State) weatherDelay() int {
	delay := 1 + s.random().Intn(2)
	s.appendEvent(EventWeatherDelay, map[string]any{
		"delay_days": delay,
	})
	return delay
}

// customsFine charges cash first and books any shortfall straight onto the loan.
func (s *State) customsFine() {
	fine := s.uniform(100, 300)
	addedToLoan := 0.0
	if s.Cash >= fine {
		s.Cash -= fine
	} else {
		addedToLoan = fine - s.Cash
		s.Cash = 0
		s.Loan.Balance += addedToLoan
	}
	s.appendEvent(EventCustomsFine, map[string]any{
		"fine":          fine,
		"added_to_loan": addedToLoan,
	})
}

// lossValue prices lost lines in the order given.
func (s *State) lossValue(lines []Holding) float64 {
	loss := 0.0
	for _, h := range lines {
		if idx, ok := market.Find(s.Market, h.Item); ok {
			loss += s.Market[idx].Value * float64(h.Quantity)
		}
	}
	return loss
}
