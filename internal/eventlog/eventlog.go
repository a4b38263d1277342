// Package eventlog persists the events a session appends. The engine never
// writes storage itself; adapters hand each command's new events to a Sink.
package eventlog

import (
	"context"
	"fmt"
	"time"

	"openarbitrage/internal/config"
	"openarbitrage/internal/db"
	"openarbitrage/internal/game"
)

type Sink interface {
	Append(ctx context.Context, sessionID string, events []game.Event) error
	Close() error
}

// Record is a persisted event tagged with its session.
type Record struct {
	SessionID  string         `json:"session_id"`
	Kind       string         `json:"kind"`
	Day        int            `json:"day"`
	City       string         `json:"city"`
	Details    map[string]any `json:"details"`
	RecordedAt time.Time      `json:"recorded_at"`
}

func records(sessionID string, events []game.Event, now time.Time) []Record {
	out := make([]Record, 0, len(events))
	for _, e := range events {
		out = append(out, Record{
			SessionID:  sessionID,
			Kind:       e.Kind,
			Day:        e.Day,
			City:       e.City,
			Details:    e.Details,
			RecordedAt: now.UTC(),
		})
	}
	return out
}

// Nop drops everything.
type Nop struct{}

func (Nop) Append(context.Context, string, []game.Event) error { return nil }
func (Nop) Close() error                                       { return nil }

// Open builds the sink selected by cfg.Sink.
func Open(ctx context.Context, cfg config.EventsConfig) (Sink, error) {
	switch cfg.Sink {
	case config.SinkNone:
		return Nop{}, nil
	case config.SinkFile, "":
		return NewFileSink(cfg.LogPath), nil
	case config.SinkSQLite:
		return OpenSQLite(cfg.SQLitePath)
	case config.SinkPostgres:
		pool, err := db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		sink := NewPostgresSink(pool)
		if err := sink.EnsureSchema(ctx); err != nil {
			pool.Close()
			return nil, fmt.Errorf("event schema: %w", err)
		}
		return sink, nil
	default:
		return nil, fmt.Errorf("unknown event sink %q", cfg.Sink)
	}
}
