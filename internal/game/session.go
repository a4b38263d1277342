package game

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"openarbitrage/internal/telemetry"
)

// Session owns one State and serialises every command against it. Adapters that
// may be called concurrently (HTTP) go through a Session rather than the State.
type Session struct {
	mu    sync.Mutex
	id    string
	state *State
	log   *slog.Logger
}

func NewSession(state *State, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		id:    uuid.NewString(),
		state: state,
		log:   logger,
	}
}

func (s *Session) ID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.id
}

// Apply runs cmd and returns the events it appended.
func (s *Session) Apply(ctx context.Context, cmd Command) ([]Event, error) {
	res, err := s.Exec(ctx, cmd)
	return res.Events, err
}

// Result is what one command produced, read under the same lock that applied it.
type Result struct {
	Events []Event
	View   View
}

// Exec runs cmd and returns its events together with the resulting view.
// A concurrent Replace cannot land between the two.
func (s *Session) Exec(ctx context.Context, cmd Command) (Result, error) {
	_, span := telemetry.Tracer("game").Start(ctx, "game.apply")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	span.SetAttributes(
		attribute.String("session.id", s.id),
		attribute.String("command.type", cmd.Name()),
	)

	mark := s.state.EventsAppended()
	before := s.state.Status
	if err := s.state.Apply(cmd); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.log.Debug("command rejected", "session_id", s.id, "type", cmd.Name(), "err", err)
		return Result{}, err
	}
	events := s.state.EventsSince(mark)

	span.SetAttributes(
		attribute.Int("game.day", s.state.Day),
		attribute.String("game.status", string(s.state.Status)),
		attribute.Int("game.events", len(events)),
	)
	s.log.Info("command applied",
		"session_id", s.id,
		"type", cmd.Name(),
		"day", s.state.Day,
		"city", s.state.CurrentCity(),
		"cash", s.state.Cash,
		"events", len(events),
	)
	if s.state.Status != before {
		s.log.Info("game finished", "session_id", s.id, "status", s.state.Status, "net_worth", s.state.NetWorth())
	}
	return Result{Events: events, View: s.view()}, nil
}

// Replace swaps in a new state under a new session id.
func (s *Session) Replace(state *State) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = state
	s.id = uuid.NewString()
	s.log.Info("session started", "session_id", s.id, "seed", state.Seed, "day", state.Day)
	return s.id
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// View is the state as the adapters present it.
type View struct {
	SessionID      string   `json:"session_id"`
	City           string   `json:"city"`
	NetWorth       float64  `json:"net_worth"`
	InventoryValue float64  `json:"inventory_value"`
	State          Snapshot `json:"state"`
}

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.view()
}

func (s *Session) view() View {
	return View{
		SessionID:      s.id,
		City:           s.state.CurrentCity(),
		NetWorth:       s.state.NetWorth(),
		InventoryValue: s.state.InventoryValue(),
		State:          s.state.Snapshot(),
	}
}
