package eventlog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"openarbitrage/internal/game"
)

// PostgresSink writes events to arbitrage.events. It owns the pool.
type PostgresSink struct {
	db *pgxpool.Pool
}

func NewPostgresSink(pool *pgxpool.Pool) *PostgresSink {
	return &PostgresSink{db: pool}
}

func (p *PostgresSink) EnsureSchema(ctx context.Context) error {
	_, err := p.db.Exec(ctx, `
		CREATE SCHEMA IF NOT EXISTS arbitrage;
		CREATE TABLE IF NOT EXISTS arbitrage.events (
			id BIGSERIAL PRIMARY KEY,
			session_id TEXT NOT NULL,
			kind TEXT NOT NULL,
			day INTEGER NOT NULL,
			city TEXT NOT NULL,
			details JSONB NOT NULL,
			recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS events_session_idx ON arbitrage.events (session_id, id);
	`)
	return err
}

func (p *PostgresSink) Append(ctx context.Context, sessionID string, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	tx, err := p.db.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.ReadCommitted})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	for _, e := range events {
		raw, err := json.Marshal(e.Details)
		if err != nil {
			return fmt.Errorf("encode details: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO arbitrage.events (session_id, kind, day, city, details)
			VALUES ($1, $2, $3, $4, $5::jsonb)
		`, sessionID, e.Kind, e.Day, e.City, string(raw))
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	}
	return tx.Commit(ctx)
}

func (p *PostgresSink) Close() error {
	p.db.Close()
	return nil
}
