package store

import (
	"context"
	"time"
)

// Journal persists proof sessions for later inspection.
type Journal interface {
	Close() error

	// Record inserts or replaces a session, keyed by ID.
	Record(ctx context.Context, s Session) error
	// Get returns internalerr.ErrNotFound for unknown ids.
	Get(ctx context.Context, id string) (Session, error)
	// Recent returns up to limit sessions, newest first.
	Recent(ctx context.Context, limit int) ([]Session, error)
	// Counts tallies sessions by outcome.
	Counts(ctx context.Context) (map[Outcome]int, error)
}

// Outcome is how a session ended.
type Outcome string

const (
	Proved        Outcome = "proved"
	Fixpoint      Outcome = "fixpoint"
	BoundExceeded Outcome = "bound_exceeded"
	// Invalid marks input that never reached the engine.
	Invalid Outcome = "invalid"
)

// Session is one proof attempt as recorded in the journal. Facts, goal and
// steps are kept in their text form.
type Session struct {
	ID   string
	Text string

	Facts []string
	Goal  string

	Outcome     Outcome
	Steps       []string
	Answer      string
	Explanation string
	Iterations  int
	Error       string

	CreatedAt time.Time
}
