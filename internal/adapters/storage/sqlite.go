package storage

// sqlite.go — append-only audit journal of ledger transitions.
//
// Two tables:
//   - `journal_events`: one row per ledger transition (open, price update,
//     settlement) with the market-level facts.
//   - `position_snapshots`: the positions touched by an event, with their
//     values as of that event.
//
// The engine only appends. Nothing here is ever read back into the ledger —
// restart recovery is out of scope, the journal exists for audit.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/pdbot/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS journal_events (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    recorded_at DATETIME NOT NULL,
    kind        TEXT     NOT NULL,
    market_id   TEXT     NOT NULL,
    probability REAL,
    outcome     INTEGER,
    positions   INTEGER  NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS position_snapshots (
    id           INTEGER PRIMARY KEY AUTOINCREMENT,
    event_id     INTEGER NOT NULL,
    position_id  TEXT    NOT NULL,
    market_id    TEXT    NOT NULL,
    side         TEXT    NOT NULL,
    notional     REAL    NOT NULL,
    margin       REAL    NOT NULL,
    entry_p      REAL    NOT NULL,
    current_p    REAL    NOT NULL,
    pnl          REAL    NOT NULL,
    equity       REAL    NOT NULL,
    status       TEXT    NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_events_market   ON journal_events(market_id);
CREATE INDEX IF NOT EXISTS idx_events_at       ON journal_events(recorded_at DESC);
CREATE INDEX IF NOT EXISTS idx_snapshots_event ON position_snapshots(event_id);
CREATE INDEX IF NOT EXISTS idx_snapshots_pos   ON position_snapshots(position_id);
`

// Event kinds recorded in journal_events.
const (
	EventOpen        = "OPEN"
	EventPriceUpdate = "PRICE_UPDATE"
	EventSettlement  = "SETTLEMENT"
)

// JournalEvent is one recorded ledger transition.
type JournalEvent struct {
	ID          int64
	RecordedAt  time.Time
	Kind        string
	MarketID    string
	Probability *float64
	Outcome     *int
	Positions   int
}

// SQLiteJournal implements ports.Journal using SQLite (pure Go, no CGo).
type SQLiteJournal struct {
	db *sql.DB
}

// NewSQLiteJournal opens (or creates) the journal database at the given
// path and applies the schema. Use ":memory:" for an ephemeral journal.
func NewSQLiteJournal(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteJournal: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite is single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteJournal: apply schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

// RecordOpen records a newly opened position.
func (j *SQLiteJournal) RecordOpen(ctx context.Context, pos domain.Position) error {
	p := pos.EntryProbability
	return j.append(ctx, EventOpen, pos.MarketID, &p, nil, []domain.Position{pos})
}

// RecordPriceUpdate records a price change and the positions it touched.
func (j *SQLiteJournal) RecordPriceUpdate(ctx context.Context, marketID string, probability float64, updated []domain.Position) error {
	return j.append(ctx, EventPriceUpdate, marketID, &probability, nil, updated)
}

// RecordSettlement records a market settlement and the finalized positions.
func (j *SQLiteJournal) RecordSettlement(ctx context.Context, market domain.Market, finalized []domain.Position) error {
	p := market.CurrentProbability()
	return j.append(ctx, EventSettlement, market.ID, &p, market.Outcome, finalized)
}

// append writes one event plus its position snapshots in a single tx.
func (j *SQLiteJournal) append(ctx context.Context, kind, marketID string, probability *float64, outcome *int, positions []domain.Position) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.append: begin tx: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO journal_events (recorded_at, kind, market_id, probability, outcome, positions)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().UTC().Format(time.RFC3339), kind, marketID, probability, outcome, len(positions),
	)
	if err != nil {
		return fmt.Errorf("storage.append: insert event: %w", err)
	}
	eventID, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("storage.append: event id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO position_snapshots
			(event_id, position_id, market_id, side, notional, margin,
			 entry_p, current_p, pnl, equity, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("storage.append: prepare: %w", err)
	}
	defer stmt.Close()

	for _, pos := range positions {
		if _, err := stmt.ExecContext(ctx,
			eventID, pos.ID, pos.MarketID, string(pos.Side),
			pos.Notional, pos.MarginAmount,
			pos.EntryProbability, pos.CurrentProbability,
			pos.PnL, pos.Equity, string(pos.Status),
		); err != nil {
			return fmt.Errorf("storage.append: snapshot %s: %w", pos.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.append: commit: %w", err)
	}
	return nil
}

// RecentEvents returns the latest events, newest first.
func (j *SQLiteJournal) RecentEvents(ctx context.Context, limit int) ([]JournalEvent, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT id, recorded_at, kind, market_id, probability, outcome, positions
		FROM journal_events
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.RecentEvents: query: %w", err)
	}
	defer rows.Close()

	var events []JournalEvent
	for rows.Next() {
		var e JournalEvent
		var at string
		if err := rows.Scan(&e.ID, &at, &e.Kind, &e.MarketID, &e.Probability, &e.Outcome, &e.Positions); err != nil {
			return nil, fmt.Errorf("storage.RecentEvents: scan row: %w", err)
		}
		e.RecordedAt, _ = time.Parse(time.RFC3339, at)
		events = append(events, e)
	}
	return events, rows.Err()
}

// PositionHistory returns every recorded snapshot for a position in event
// order, oldest first.
func (j *SQLiteJournal) PositionHistory(ctx context.Context, positionID string) ([]domain.Position, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT position_id, market_id, side, notional, margin,
		       entry_p, current_p, pnl, equity, status
		FROM position_snapshots
		WHERE position_id = ?
		ORDER BY event_id ASC`, positionID)
	if err != nil {
		return nil, fmt.Errorf("storage.PositionHistory: query: %w", err)
	}
	defer rows.Close()

	var history []domain.Position
	for rows.Next() {
		var p domain.Position
		var side, status string
		if err := rows.Scan(&p.ID, &p.MarketID, &side, &p.Notional, &p.MarginAmount,
			&p.EntryProbability, &p.CurrentProbability, &p.PnL, &p.Equity, &status,
		); err != nil {
			return nil, fmt.Errorf("storage.PositionHistory: scan row: %w", err)
		}
		p.Side = domain.Side(side)
		p.Status = domain.PositionStatus(status)
		p.MarginPct = 0
		if p.Notional != 0 {
			p.MarginPct = p.MarginAmount / p.Notional
		}
		history = append(history, p)
	}
	return history, rows.Err()
}

// Close closes the database connection.
func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}
