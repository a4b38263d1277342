package game

// Event kinds.
const (
	EventDemandSpike     = "demand_spike"
	EventTheft           = "theft"
	EventCashWindfall    = "cash_windfall"
	EventCreditorCall    = "creditor_call"
	EventSpoilage        = "spoilage"
	EventMarketShock     = "market_shock"
	EventInsurancePayout = "insurance_payout"
	EventWeatherDelay    = "weather_delay"
	EventCustomsFine     = "customs_fine"
)

// Rules holds every tunable of a session. Zero InventoryCapacity, MaxDays and
// EventLogLimit mean "no limit".
type Rules struct {
	TravelCost        float64 `json:"travel_cost"`
	TravelTimeDays    int     `json:"travel_time_days"`
	InventoryCapacity int     `json:"inventory_capacity"`
	WinNetWorth       float64 `json:"win_net_worth"`
	MaxDays           int     `json:"max_days"`
	DailyEventChance  float64 `json:"daily_event_chance"`
	TravelEventChance float64 `json:"travel_event_chance"`
	EventLogLimit     int     `json:"event_log_limit"`

	DailyEventWeights       Weights `json:"daily_event_weights"`
	TravelEventWeights      Weights `json:"travel_event_weights"`
	CityEventMultipliers    Weights `json:"city_event_multipliers"`
	SpoilageItemMultipliers Weights `json:"spoilage_item_multipliers"`
}

func DefaultRules() Rules {
	return Rules{
		TravelCost:        60.0,
		TravelTimeDays:    1,
		InventoryCapacity: 100,
		WinNetWorth:       20_000.0,
		MaxDays:           365,
		DailyEventChance:  0.3,
		TravelEventChance: 0.2,
		EventLogLimit:     200,
		DailyEventWeights: Weights{
			{EventDemandSpike, 1.4},
			{EventCashWindfall, 1.1},
			{EventMarketShock, 0.9},
			{EventTheft, 0.8},
			{EventSpoilage, 0.7},
			{EventCreditorCall, 0.6},
			{EventInsurancePayout, 0.5},
		},
		TravelEventWeights: Weights{
			{EventWeatherDelay, 0.6},
			{EventCustomsFine, 0.4},
		},
		CityEventMultipliers: Weights{
			{"Zurich", 1.1},
			{"New York", 1.1},
			{"Milano", 1.05},
			{"Santa Barbara", 0.9},
		},
		SpoilageItemMultipliers: Weights{
			{"e", 1.2},
			{"f", 1.4},
		},
	}
}

func (r Rules) clone() Rules {
	out := r
	out.DailyEventWeights = r.DailyEventWeights.Clone()
	out.TravelEventWeights = r.TravelEventWeights.Clone()
	out.CityEventMultipliers = r.CityEventMultipliers.Clone()
	out.SpoilageItemMultipliers = r.SpoilageItemMultipliers.Clone()
	return out
}
