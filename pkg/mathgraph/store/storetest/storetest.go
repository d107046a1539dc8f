// Package storetest holds the behaviour every store.Journal must share.
package storetest

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cognicore/mathgraph/pkg/mathgraph/internalerr"
	"github.com/cognicore/mathgraph/pkg/mathgraph/store"
)

// Run exercises a journal implementation. open must return an empty journal.
func Run(t *testing.T, open func(t *testing.T) store.Journal) {
	t.Run("RecordAndGet", func(t *testing.T) { testRecordAndGet(t, open(t)) })
	t.Run("Replace", func(t *testing.T) { testReplace(t, open(t)) })
	t.Run("Recent", func(t *testing.T) { testRecent(t, open(t)) })
	t.Run("Counts", func(t *testing.T) { testCounts(t, open(t)) })
	t.Run("Errors", func(t *testing.T) { testErrors(t, open(t)) })
	t.Run("Concurrent", func(t *testing.T) { testConcurrent(t, open(t)) })
}

var base = time.Date(2026, 10, 19, 9, 30, 0, 0, time.UTC)

func session(id string, at time.Time, outcome store.Outcome) store.Session {
	return store.Session{
		ID:          id,
		Text:        "if x + 7 = 15, find x",
		Facts:       []string{"eq(x + 7, 15)"},
		Goal:        "eq(x, ?)",
		Outcome:     outcome,
		Steps:       []string{"subtraction_property: eq(7 + x, 15) ⊢ eq(x, 8)"},
		Answer:      "? = 8",
		Explanation: "Subtract 7 from both sides.",
		Iterations:  1,
		CreatedAt:   at,
	}
}

func testRecordAndGet(t *testing.T, j store.Journal) {
	defer j.Close()
	ctx := context.Background()

	want := session("01A", base, store.Proved)
	require.NoError(t, j.Record(ctx, want))

	got, err := j.Get(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, want.Facts, got.Facts)
	assert.Equal(t, want.Steps, got.Steps)
	assert.Equal(t, want.Goal, got.Goal)
	assert.Equal(t, want.Answer, got.Answer)
	assert.Equal(t, want.Outcome, got.Outcome)
	assert.Equal(t, want.Iterations, got.Iterations)
	assert.True(t, want.CreatedAt.Equal(got.CreatedAt), "created at %v, want %v", got.CreatedAt, want.CreatedAt)

	// Callers cannot reach into stored sessions.
	got.Facts[0] = "changed"
	again, err := j.Get(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, "eq(x + 7, 15)", again.Facts[0])
}

func testReplace(t *testing.T, j store.Journal) {
	defer j.Close()
	ctx := context.Background()

	s := session("01A", base, store.Proved)
	require.NoError(t, j.Record(ctx, s))
	s.Explanation = "rewritten"
	s.Steps = nil
	require.NoError(t, j.Record(ctx, s))

	got, err := j.Get(ctx, "01A")
	require.NoError(t, err)
	assert.Equal(t, "rewritten", got.Explanation)
	assert.Empty(t, got.Steps)

	all, err := j.Recent(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testRecent(t *testing.T, j store.Journal) {
	defer j.Close()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		id := fmt.Sprintf("01%c", 'A'+i)
		require.NoError(t, j.Record(ctx, session(id, base.Add(time.Duration(i)*time.Millisecond), store.Proved)))
	}

	got, err := j.Recent(ctx, 3)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"01E", "01D", "01C"}, []string{got[0].ID, got[1].ID, got[2].ID})

	all, err := j.Recent(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func testCounts(t *testing.T, j store.Journal) {
	defer j.Close()
	ctx := context.Background()

	require.NoError(t, j.Record(ctx, session("1", base, store.Proved)))
	require.NoError(t, j.Record(ctx, session("2", base, store.Proved)))
	require.NoError(t, j.Record(ctx, session("3", base, store.Fixpoint)))
	require.NoError(t, j.Record(ctx, session("4", base, store.Invalid)))

	counts, err := j.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[store.Outcome]int{store.Proved: 2, store.Fixpoint: 1, store.Invalid: 1}, counts)
}

func testErrors(t *testing.T, j store.Journal) {
	defer j.Close()
	ctx := context.Background()

	_, err := j.Get(ctx, "missing")
	assert.ErrorIs(t, err, internalerr.ErrNotFound)

	err = j.Record(ctx, session("", base, store.Proved))
	assert.ErrorIs(t, err, internalerr.ErrInvalidInput)
}

func testConcurrent(t *testing.T, j store.Journal) {
	defer j.Close()
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs <- j.Record(ctx, session(fmt.Sprintf("s%02d", i), base, store.Proved))
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	counts, err := j.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 16, counts[store.Proved])
}
