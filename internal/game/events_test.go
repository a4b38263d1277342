package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// dailyOnly returns rules where every day fires exactly kind.
func dailyOnly(kind string) Rules {
	r := quietRules()
	r.DailyEventChance = 1
	r.DailyEventWeights = Weights{{kind, 1}}
	return r
}

func travelOnly(kind string) Rules {
	r := quietRules()
	r.TravelEventChance = 1
	r.TravelEventWeights = Weights{{kind, 1}}
	return r
}

func lastEvent(t *testing.T, s *State) Event {
	t.Helper()
	require.NotEmpty(t, s.EventLog)
	return s.EventLog[len(s.EventLog)-1]
}

func TestDemandSpike(t *testing.T) {
	s := NewState(21, dailyOnly(EventDemandSpike))
	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	assert.Equal(t, EventDemandSpike, ev.Kind)
	assert.Equal(t, 0, ev.Day)
	assert.Equal(t, "Sydney", ev.City)

	mult := ev.Details["multiplier"].(float64)
	assert.GreaterOrEqual(t, mult, 1.25)
	assert.Less(t, mult, 1.6)
	before := ev.Details["before_value"].(float64)
	after := ev.Details["after_value"].(float64)
	assert.InDelta(t, before*mult, after, 1e-9)
	assert.Greater(t, after, before)

	idx, ok := findByName(s, ev.Details["item"].(string))
	require.True(t, ok)
	assert.Equal(t, after, s.Market[idx].Value)
}

func TestTheftRemovesHeldUnits(t *testing.T) {
	s := NewState(22, dailyOnly(EventTheft))
	require.NoError(t, s.Apply(Buy{ItemName: "e", Quantity: 30}))
	require.NoError(t, s.Apply(Buy{ItemName: "f", Quantity: 40}))
	held := s.Inventory.TotalQuantity()

	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	require.Equal(t, EventTheft, ev.Kind)
	removed := ev.Details["removed"].(map[string]int)
	total := 0
	for _, n := range removed {
		total += n
	}
	assert.GreaterOrEqual(t, total, 1)
	assert.Equal(t, held-total, s.Inventory.TotalQuantity())
	assert.Greater(t, s.LastLossValue, 0.0)
}

func TestTheftWithEmptyInventoryLogsNothing(t *testing.T) {
	s := NewState(22, dailyOnly(EventTheft))
	require.NoError(t, s.Apply(AdvanceDay{Days: 3}))
	assert.Empty(t, s.EventLog)
}

func TestCashWindfall(t *testing.T) {
	s := NewState(23, dailyOnly(EventCashWindfall))
	start := s.Cash
	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	amount := ev.Details["amount"].(float64)
	assert.GreaterOrEqual(t, amount, 200.0)
	assert.Less(t, amount, 800.0)
	assert.InDelta(t, start+amount, s.Cash, 1e-9)
}

func TestCreditorCallTakesAvailableCash(t *testing.T) {
	s := NewState(24, dailyOnly(EventCreditorCall))
	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	demand := ev.Details["demand"].(float64)
	assert.GreaterOrEqual(t, demand, 250.0)
	assert.Equal(t, StartingCash, ev.Details["paid"])
	assert.Equal(t, 0.0, s.Cash)
	assert.InDelta(t, (StartingLoanBalance-StartingCash)*1.01, s.Loan.Balance, 1e-6)
}

func TestCreditorCallWithNoCash(t *testing.T) {
	s := NewState(24, dailyOnly(EventCreditorCall))
	s.Cash = 0
	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	assert.Equal(t, 0.0, ev.Details["paid"])
	assert.InDelta(t, StartingLoanBalance*1.01, s.Loan.Balance, 1e-6)
}

func TestSpoilage(t *testing.T) {
	s := NewState(25, dailyOnly(EventSpoilage))
	require.NoError(t, s.Apply(Buy{ItemName: "f", Quantity: 50}))

	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	require.Equal(t, EventSpoilage, ev.Kind)
	assert.Equal(t, "f", ev.Details["item"])
	n := ev.Details["removed"].(int)
	assert.GreaterOrEqual(t, n, 1)
	assert.Equal(t, 50-n, s.Inventory.Quantity("f"))
	assert.InDelta(t, ev.Details["loss_value"].(float64), s.LastLossValue, 1e-9)
}

func TestSpoilageWithoutMultipliers(t *testing.T) {
	rules := dailyOnly(EventSpoilage)
	rules.SpoilageItemMultipliers = nil
	s := NewState(25, rules)
	require.NoError(t, s.Apply(Buy{ItemName: "a", Quantity: 10}))

	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	assert.Equal(t, "a", ev.Details["item"])
	assert.Less(t, s.Inventory.Quantity("a"), 10)
}

func TestMarketShockScalesEveryItem(t *testing.T) {
	s := NewState(26, dailyOnly(EventMarketShock))
	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	mult := ev.Details["multiplier"].(float64)
	assert.GreaterOrEqual(t, mult, 0.85)
	assert.Less(t, mult, 1.15)

	before := ev.Details["before"].(map[string]float64)
	after := ev.Details["after"].(map[string]float64)
	require.Len(t, before, len(s.Market))
	for _, it := range s.Market {
		assert.InDelta(t, before[it.Name]*mult, after[it.Name], 1e-9, it.Name)
		assert.Equal(t, after[it.Name], it.Value, it.Name)
	}
}

func TestInsurancePayout(t *testing.T) {
	s := NewState(27, dailyOnly(EventInsurancePayout))
	s.LastLossValue = 100
	start := s.Cash

	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))

	ev := lastEvent(t, s)
	payout := ev.Details["payout"].(float64)
	assert.Equal(t, 100.0, ev.Details["base_loss"])
	assert.GreaterOrEqual(t, payout, 20.0)
	assert.Less(t, payout, 40.0)
	assert.InDelta(t, start+payout, s.Cash, 1e-9)
	assert.Equal(t, 0.0, s.LastLossValue)

	require.NoError(t, s.Apply(AdvanceDay{Days: 1}))
	assert.Equal(t, 0.0, lastEvent(t, s).Details["payout"])
}

func TestWeatherDelayExtendsTrip(t *testing.T) {
	s := NewState(28, travelOnly(EventWeatherDelay))
	require.NoError(t, s.Apply(Travel{DestinationIndex: 2}))

	ev := lastEvent(t, s)
	require.Equal(t, EventWeatherDelay, ev.Kind)
	assert.Equal(t, "Zurich", ev.City)
	delay := ev.Details["delay_days"].(int)
	assert.Contains(t, []int{1, 2}, delay)
	assert.Equal(t, s.Rules.TravelTimeDays+delay, s.Day)
}

func TestCustomsFinePaidFromCash(t *testing.T) {
	s := NewState(29, travelOnly(EventCustomsFine))
	s.Cash = 1000
	require.NoError(t, s.Apply(Travel{DestinationIndex: 1}))

	ev := lastEvent(t, s)
	fine := ev.Details["fine"].(float64)
	assert.GreaterOrEqual(t, fine, 100.0)
	assert.Less(t, fine, 300.0)
	assert.Equal(t, 0.0, ev.Details["added_to_loan"])
	assert.InDelta(t, 1000-s.Rules.TravelCost-fine, s.Cash, 1e-9)
}

func TestCustomsFineShortfallGoesOnLoan(t *testing.T) {
	s := NewState(29, travelOnly(EventCustomsFine))
	s.Cash = s.Rules.TravelCost
	require.NoError(t, s.Apply(Travel{DestinationIndex: 1}))

	ev := lastEvent(t, s)
	fine := ev.Details["fine"].(float64)
	assert.Equal(t, fine, ev.Details["added_to_loan"])
	assert.Equal(t, 0.0, s.Cash)
	assert.InDelta(t, (StartingLoanBalance+fine)*1.01, s.Loan.Balance, 1e-6)
}

func TestNoEventsWhenChanceIsZero(t *testing.T) {
	s := NewState(30, quietRules())
	require.NoError(t, s.Apply(AdvanceDay{Days: 50}))
	assert.Empty(t, s.EventLog)
	assert.Equal(t, 0, s.EventsAppended())
}

func TestCityMultiplierCanSilenceEvents(t *testing.T) {
	rules := dailyOnly(EventCashWindfall)
	rules.CityEventMultipliers = rules.CityEventMultipliers.Set("Sydney", 0)
	s := NewState(31, rules)
	require.NoError(t, s.Apply(AdvanceDay{Days: 20}))
	assert.Empty(t, s.EventLog)
}

func TestEventLogLimit(t *testing.T) {
	rules := dailyOnly(EventCashWindfall)
	rules.EventLogLimit = 3
	s := NewState(32, rules)

	require.NoError(t, s.Apply(AdvanceDay{Days: 10}))

	require.Len(t, s.EventLog, 3)
	assert.Equal(t, 10, s.EventsAppended())
	assert.Equal(t, []int{7, 8, 9}, []int{s.EventLog[0].Day, s.EventLog[1].Day, s.EventLog[2].Day})

	assert.Len(t, s.EventsSince(0), 3)
	since := s.EventsSince(8)
	require.Len(t, since, 2)
	assert.Equal(t, 8, since[0].Day)
	assert.Nil(t, s.EventsSince(10))
}

func findByName(s *State, name string) (int, bool) {
	for i, it := range s.Market {
		if it.Name == name {
			return i, true
		}
	}
	return 0, false
}
