package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store"
)

// sqliteJournal implements store.Journal using SQLite
type sqliteJournal struct {
	db *sql.DB
}

// OpenSQLite opens a SQLite journal with WAL mode enabled.
func OpenSQLite(ctx context.Context, path string) (store.Journal, error) {
	// busy_timeout goes in the DSN so every pooled connection gets it.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	// Enable WAL mode for better concurrency
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", internalerr.ErrStoreUnavailable, err)
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return &sqliteJournal{db: db}, nil
}

// Close closes the database connection
func (j *sqliteJournal) Close() error {
	return j.db.Close()
}

// initSchema creates tables if they don't exist
func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	text TEXT NOT NULL DEFAULT '',
	facts TEXT NOT NULL,
	goal TEXT NOT NULL,
	outcome TEXT NOT NULL,
	steps TEXT NOT NULL,
	answer TEXT NOT NULL DEFAULT '',
	explanation TEXT NOT NULL DEFAULT '',
	iterations INTEGER NOT NULL DEFAULT 0,
	error TEXT NOT NULL DEFAULT '',
	created_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sessions_created ON sessions(created_at);
CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON sessions(outcome);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("init schema: %w", err)
	}
	return nil
}

// Record inserts or replaces a session
func (j *sqliteJournal) Record(ctx context.Context, s store.Session) error {
	if s.ID == "" {
		return fmt.Errorf("record session: empty id: %w", internalerr.ErrInvalidInput)
	}
	facts, err := json.Marshal(nonNil(s.Facts))
	if err != nil {
		return err
	}
	steps, err := json.Marshal(nonNil(s.Steps))
	if err != nil {
		return err
	}
	_, err = j.db.ExecContext(ctx, `
INSERT INTO sessions (id, text, facts, goal, outcome, steps, answer, explanation, iterations, error, created_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	text=excluded.text,
	facts=excluded.facts,
	goal=excluded.goal,
	outcome=excluded.outcome,
	steps=excluded.steps,
	answer=excluded.answer,
	explanation=excluded.explanation,
	iterations=excluded.iterations,
	error=excluded.error,
	created_at=excluded.created_at
`,
		s.ID, s.Text, string(facts), s.Goal, string(s.Outcome), string(steps),
		s.Answer, s.Explanation, s.Iterations, s.Error,
		s.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("record session %s: %w", s.ID, err)
	}
	return nil
}

// timeLayout is fixed width so created_at sorts as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const sessionColumns = `id, text, facts, goal, outcome, steps, answer, explanation, iterations, error, created_at`

// Get loads one session by id
func (j *sqliteJournal) Get(ctx context.Context, id string) (store.Session, error) {
	row := j.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	s, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Session{}, fmt.Errorf("session %s: %w", id, internalerr.ErrNotFound)
	}
	return s, err
}

// Recent returns the newest sessions first
func (j *sqliteJournal) Recent(ctx context.Context, limit int) ([]store.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := j.db.QueryContext(ctx, `SELECT `+sessionColumns+` FROM sessions ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []store.Session
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Counts tallies sessions by outcome
func (j *sqliteJournal) Counts(ctx context.Context) (map[store.Outcome]int, error) {
	rows, err := j.db.QueryContext(ctx, `SELECT outcome, COUNT(*) FROM sessions GROUP BY outcome`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[store.Outcome]int)
	for rows.Next() {
		var outcome string
		var n int
		if err := rows.Scan(&outcome, &n); err != nil {
			return nil, err
		}
		out[store.Outcome(outcome)] = n
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanSession(sc scanner) (store.Session, error) {
	var s store.Session
	var facts, steps, outcome, created string
	if err := sc.Scan(&s.ID, &s.Text, &facts, &s.Goal, &outcome, &steps,
		&s.Answer, &s.Explanation, &s.Iterations, &s.Error, &created); err != nil {
		return store.Session{}, err
	}
	s.Outcome = store.Outcome(outcome)
	if err := json.Unmarshal([]byte(facts), &s.Facts); err != nil {
		return store.Session{}, fmt.Errorf("session %s facts: %w", s.ID, err)
	}
	if err := json.Unmarshal([]byte(steps), &s.Steps); err != nil {
		return store.Session{}, fmt.Errorf("session %s steps: %w", s.ID, err)
	}
	if parsed, err := time.Parse(timeLayout, created); err == nil {
		s.CreatedAt = parsed
	}
	return s, nil
}

func nonNil(xs []string) []string {
	if xs == nil {
		return []string{}
	}
	return xs
}
