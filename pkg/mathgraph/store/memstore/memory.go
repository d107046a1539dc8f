package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store"
)

// Journal is an in-memory implementation of store.Journal for tests and
// runs without a database.
type Journal struct {
	mu       sync.RWMutex
	sessions map[string]store.Session
}

// New creates a new in-memory journal.
func New() *Journal {
	return &Journal{sessions: make(map[string]store.Session)}
}

// Close implements store.Journal.
func (j *Journal) Close() error { return nil }

// Record stores a copy of the session, replacing any with the same id.
func (j *Journal) Record(ctx context.Context, s store.Session) error {
	if s.ID == "" {
		return fmt.Errorf("record session: empty id: %w", internalerr.ErrInvalidInput)
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.sessions[s.ID] = copySession(s)
	return nil
}

// Get returns a copy of the session.
func (j *Journal) Get(ctx context.Context, id string) (store.Session, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	s, ok := j.sessions[id]
	if !ok {
		return store.Session{}, fmt.Errorf("session %s: %w", id, internalerr.ErrNotFound)
	}
	return copySession(s), nil
}

// Recent returns the newest sessions first.
func (j *Journal) Recent(ctx context.Context, limit int) ([]store.Session, error) {
	if limit <= 0 {
		limit = 20
	}
	j.mu.RLock()
	all := make([]store.Session, 0, len(j.sessions))
	for _, s := range j.sessions {
		all = append(all, copySession(s))
	}
	j.mu.RUnlock()

	sort.Slice(all, func(a, b int) bool {
		if !all[a].CreatedAt.Equal(all[b].CreatedAt) {
			return all[a].CreatedAt.After(all[b].CreatedAt)
		}
		return all[a].ID > all[b].ID
	})
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

// Counts tallies sessions by outcome.
func (j *Journal) Counts(ctx context.Context) (map[store.Outcome]int, error) {
	j.mu.RLock()
	defer j.mu.RUnlock()
	out := make(map[store.Outcome]int)
	for _, s := range j.sessions {
		out[s.Outcome]++
	}
	return out, nil
}

func copySession(s store.Session) store.Session {
	s.Facts = append([]string(nil), s.Facts...)
	s.Steps = append([]string(nil), s.Steps...)
	return s
}
