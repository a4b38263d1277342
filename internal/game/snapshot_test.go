package game

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// playedState returns a session with holdings, a non-zero day and some events.
func playedState(t *testing.T) *State {
	t.Helper()
	rules := DefaultRules()
	rules.DailyEventChance = 0.8
	s := NewState(99, rules)
	require.NoError(t, s.Apply(Buy{ItemName: "e", Quantity: 10}))
	require.NoError(t, s.Apply(Buy{ItemName: "a", Quantity: 5}))
	require.NoError(t, s.Apply(AdvanceDay{Days: 6}))
	return s
}

func TestSnapshotRoundTrip(t *testing.T) {
	s := playedState(t)
	snap := s.Snapshot()

	restored, err := FromSnapshot(snap)
	require.NoError(t, err)

	assert.Equal(t, snap, restored.Snapshot())
	assert.Equal(t, s.NetWorth(), restored.NetWorth())
	assert.Equal(t, len(s.EventLog), restored.EventsAppended())
}

func TestSnapshotIsDetached(t *testing.T) {
	s := playedState(t)
	snap := s.Snapshot()

	s.Cash += 100
	require.NoError(t, s.Apply(Buy{ItemName: "f", Quantity: 1}))
	s.Market[0].Value = -1

	assert.NotEqual(t, -1.0, snap.Market[0].Value)
	_, held := snapQuantity(snap, "f")
	assert.False(t, held)
}

func TestMarshalStateRoundTrip(t *testing.T) {
	s := playedState(t)

	data, err := MarshalState(s)
	require.NoError(t, err)
	restored, err := UnmarshalState(data)
	require.NoError(t, err)

	want := s.Snapshot()
	got := restored.Snapshot()
	// Event details come back as generic JSON values.
	want.EventLog, got.EventLog = nil, nil
	assert.Equal(t, want, got)

	require.Len(t, restored.EventLog, len(s.EventLog))
	for i := range s.EventLog {
		assert.Equal(t, s.EventLog[i].Kind, restored.EventLog[i].Kind)
		assert.Equal(t, s.EventLog[i].Day, restored.EventLog[i].Day)
		assert.Equal(t, s.EventLog[i].City, restored.EventLog[i].City)
	}
}

func TestMarshalStateKeepsHoldingOrder(t *testing.T) {
	s := NewState(1, DefaultRules())
	require.NoError(t, s.Apply(Buy{ItemName: "f", Quantity: 2}))
	require.NoError(t, s.Apply(Buy{ItemName: "a", Quantity: 1}))
	require.NoError(t, s.Apply(Buy{ItemName: "e", Quantity: 3}))

	data, err := MarshalState(s)
	require.NoError(t, err)

	var raw struct {
		Inventory struct {
			Holdings json.RawMessage `json:"holdings"`
		} `json:"inventory"`
	}
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.JSONEq(t, `{"f":2,"a":1,"e":3}`, string(raw.Inventory.Holdings))
	assert.Equal(t, `{"f":2,"a":1,"e":3}`, string(raw.Inventory.Holdings))

	restored, err := UnmarshalState(data)
	require.NoError(t, err)
	assert.Equal(t, s.Inventory.Holdings(), restored.Inventory.Holdings())
}

func TestFromSnapshotRejectsOtherVersions(t *testing.T) {
	snap := NewState(1, DefaultRules()).Snapshot()
	snap.Version = 2

	_, err := FromSnapshot(snap)
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestUnmarshalStateRejectsOtherVersions(t *testing.T) {
	_, err := UnmarshalState([]byte(`{"version":2}`))
	require.ErrorIs(t, err, ErrUnsupportedVersion)

	_, err = UnmarshalState([]byte(`{}`))
	require.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestUnmarshalStateRejectsGarbage(t *testing.T) {
	_, err := UnmarshalState([]byte(`not json`))
	require.ErrorIs(t, err, ErrInvalidSnapshot)
}

func TestFromSnapshotValidates(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Snapshot)
	}{
		{name: "city index out of range", mutate: func(s *Snapshot) { s.CityIndex = len(s.Cities) }},
		{name: "negative city index", mutate: func(s *Snapshot) { s.CityIndex = -1 }},
		{name: "no cities", mutate: func(s *Snapshot) { s.Cities = nil }},
		{name: "unknown status", mutate: func(s *Snapshot) { s.Status = "paused" }},
		{name: "negative holding", mutate: func(s *Snapshot) {
			s.Inventory.Holdings = HoldingList{{Item: "a", Quantity: -1}}
		}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			snap := NewState(1, DefaultRules()).Snapshot()
			tc.mutate(&snap)
			_, err := FromSnapshot(snap)
			require.ErrorIs(t, err, ErrInvalidSnapshot)
		})
	}
}

func TestRestoredStateReseedsFromSeed(t *testing.T) {
	s := playedState(t)
	a, err := FromSnapshot(s.Snapshot())
	require.NoError(t, err)
	b, err := FromSnapshot(s.Snapshot())
	require.NoError(t, err)

	require.NoError(t, a.Apply(AdvanceDay{Days: 5}))
	require.NoError(t, b.Apply(AdvanceDay{Days: 5}))
	assert.Equal(t, a.Snapshot(), b.Snapshot())
}

func TestRestoredStateKeepsPlaying(t *testing.T) {
	s := playedState(t)
	restored, err := FromSnapshot(s.Snapshot())
	require.NoError(t, err)

	restored.Cash = 1000
	mark := restored.EventsAppended()
	require.NoError(t, restored.Apply(Travel{DestinationIndex: 3}))
	assert.Equal(t, "New York", restored.CurrentCity())
	assert.Len(t, restored.EventsSince(mark), restored.EventsAppended()-mark)
}

func snapQuantity(snap Snapshot, item string) (int, bool) {
	for _, h := range snap.Inventory.Holdings {
		if h.Item == item {
			return h.Quantity, true
		}
	}
	return 0, false
}
