package eventlog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"openarbitrage/internal/game"
)

// SQLiteSink stores events in a local SQLite database.
type SQLiteSink struct {
	conn *sqlx.DB
	now  func() time.Time
}

type eventRow struct {
	ID         int64  `db:"id"`
	SessionID  string `db:"session_id"`
	Kind       string `db:"kind"`
	Day        int    `db:"day"`
	City       string `db:"city"`
	Details    string `db:"details_json"`
	RecordedAt string `db:"recorded_at"`
}

const insertEventSQL = `INSERT INTO events (session_id, kind, day, city, details_json, recorded_at)
	VALUES (:session_id, :kind, :day, :city, :details_json, :recorded_at)`

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLiteSink, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create sqlite dir: %w", err)
		}
	}
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &SQLiteSink{conn: conn, now: time.Now}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteSink) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		day INTEGER NOT NULL,
		city TEXT NOT NULL,
		details_json TEXT NOT NULL,
		recorded_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_events_session ON events(session_id, id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *SQLiteSink) Append(ctx context.Context, sessionID string, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	rows := make([]eventRow, 0, len(events))
	for _, rec := range records(sessionID, events, s.now()) {
		details, err := json.Marshal(rec.Details)
		if err != nil {
			return fmt.Errorf("encode details: %w", err)
		}
		rows = append(rows, eventRow{
			SessionID:  rec.SessionID,
			Kind:       rec.Kind,
			Day:        rec.Day,
			City:       rec.City,
			Details:    string(details),
			RecordedAt: rec.RecordedAt.Format(time.RFC3339Nano),
		})
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.NamedExecContext(ctx, insertEventSQL, rows)
	if err != nil {
		return fmt.Errorf("insert events: %w", err)
	}
	return tx.Commit()
}

// Recent returns up to n of the session's latest events, oldest first.
func (s *SQLiteSink) Recent(ctx context.Context, sessionID string, n int) ([]Record, error) {
	var rows []eventRow
	err := s.conn.SelectContext(ctx, &rows, `
		SELECT id, session_id, kind, day, city, details_json, recorded_at
		FROM events
		WHERE session_id = ?
		ORDER BY id DESC
		LIMIT ?
	`, sessionID, n)
	if err != nil {
		return nil, err
	}

	out := make([]Record, len(rows))
	for i, row := range rows {
		rec := Record{
			SessionID: row.SessionID,
			Kind:      row.Kind,
			Day:       row.Day,
			City:      row.City,
		}
		if err := json.Unmarshal([]byte(row.Details), &rec.Details); err != nil {
			return nil, fmt.Errorf("decode details of event %d: %w", row.ID, err)
		}
		if t, err := time.Parse(time.RFC3339Nano, row.RecordedAt); err == nil {
			rec.RecordedAt = t
		}
		out[len(rows)-1-i] = rec
	}
	return out, nil
}

func (s *SQLiteSink) Close() error {
	return s.conn.Close()
}
