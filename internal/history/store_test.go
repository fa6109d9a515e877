package history

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/project-hoist/internal/plan"
	"github.com/mvp-joe/project-hoist/internal/refactor"
)

// Test Plan for Store:
// - RecordRun stores the run and one row per action, totals from the report
// - Generated IDs are unique; explicit IDs are kept
// - ListRuns orders newest first and honors the limit
// - GetRun returns ErrRunNotFound for unknown IDs
// - Runs without a report store no actions
// - A store over a caller's connection records runs and leaves the connection open on Close
// - Open on a file path creates the directory and survives reopening

func newTestStore(t testing.TB) *Store {
	t.Helper()
	s, err := Open(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleReport() *refactor.Report {
	return &refactor.Report{Actions: []refactor.ActionResult{
		{
			Action: plan.Action{
				Kind:             plan.KindClass,
				RawKind:          "CLASS",
				ConceptName:      "Vehicle",
				ConcernedClasses: []string{"Car", "Truck"},
				Reason:           "Car and Truck share speed and drive",
			},
			Applied:         true,
			MovedOperations: []string{"drive"},
			MovedAttributes: []string{"speed", "wheels"},
		},
		{
			Action: plan.Action{Kind: plan.KindInterface, RawKind: "INTERFACE", ConceptName: "Flyer"},
			Skip:   refactor.SkipNoConcernedClasses,
		},
	}}
}

func TestRecordRun(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	started := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	id, err := s.RecordRun(ctx, Run{
		ModelPath:  "transport.ecore",
		OutputPath: "transport-refactored.ecore",
		StartedAt:  started,
		FinishedAt: started.Add(2 * time.Second),
		Status:     StatusSucceeded,
	}, sampleReport())
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "transport.ecore", run.ModelPath)
	assert.Equal(t, "transport-refactored.ecore", run.OutputPath)
	assert.Equal(t, 2, run.ActionsTotal)
	assert.Equal(t, 1, run.ActionsApplied)
	assert.Equal(t, StatusSucceeded, run.Status)
	assert.True(t, run.StartedAt.Equal(started))
	assert.True(t, run.FinishedAt.Equal(started.Add(2*time.Second)))

	actions, err := s.Actions(ctx, id)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	assert.Equal(t, 0, actions[0].Seq)
	assert.Equal(t, "CLASS", actions[0].Kind)
	assert.Equal(t, "Vehicle", actions[0].ConceptName)
	assert.Equal(t, "Car", actions[0].Representative)
	assert.Equal(t, []string{"drive"}, actions[0].MovedOperations)
	assert.Equal(t, []string{"speed", "wheels"}, actions[0].MovedAttributes)
	assert.Empty(t, actions[0].SkipReason)
	assert.Equal(t, "Car and Truck share speed and drive", actions[0].Rationale)

	assert.Equal(t, 1, actions[1].Seq)
	assert.Equal(t, "Flyer", actions[1].ConceptName)
	assert.Empty(t, actions[1].Representative)
	assert.Nil(t, actions[1].MovedOperations)
	assert.Equal(t, string(refactor.SkipNoConcernedClasses), actions[1].SkipReason)
	assert.Empty(t, actions[1].Rationale)
}

func TestNewStoreWithDB(t *testing.T) {
	t.Parallel()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, CreateSchema(db))

	s := NewStoreWithDB(db)
	ctx := context.Background()
	id, err := s.RecordRun(ctx, Run{ModelPath: "m.ecore", Status: StatusSucceeded}, sampleReport())
	require.NoError(t, err)

	// The caller owns the connection, so Close leaves it usable
	require.NoError(t, s.Close())
	require.NoError(t, db.PingContext(ctx))

	var count int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM applied_actions WHERE run_id = ?", id).Scan(&count))
	assert.Equal(t, 2, count)
}

func TestRecordRun_IDs(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.RecordRun(ctx, Run{ModelPath: "m.ecore", Status: StatusNoPlan}, nil)
	require.NoError(t, err)
	b, err := s.RecordRun(ctx, Run{ModelPath: "m.ecore", Status: StatusNoPlan}, nil)
	require.NoError(t, err)
	assert.NotEqual(t, a, b)

	c, err := s.RecordRun(ctx, Run{ID: "fixed", ModelPath: "m.ecore", Status: StatusEmptyPlan}, nil)
	require.NoError(t, err)
	assert.Equal(t, "fixed", c)

	_, err = s.RecordRun(ctx, Run{ID: "fixed", ModelPath: "m.ecore", Status: StatusEmptyPlan}, nil)
	assert.Error(t, err, "duplicate run id")

	actions, err := s.Actions(ctx, a)
	require.NoError(t, err)
	assert.Empty(t, actions)
}

func TestListRuns(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)

	for i, id := range []string{"first", "second", "third"} {
		_, err := s.RecordRun(ctx, Run{
			ID:        id,
			ModelPath: "m.ecore",
			StartedAt: base.Add(time.Duration(i) * time.Hour),
			Status:    StatusSucceeded,
		}, nil)
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx, 0)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, "third", runs[0].ID)
	assert.Equal(t, "first", runs[2].ID)

	runs, err = s.ListRuns(ctx, 2)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "second", runs[1].ID)
}

func TestGetRun_NotFound(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	_, err := s.GetRun(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestOpen_File(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "nested", "history.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.RecordRun(ctx, Run{ModelPath: "m.ecore", Status: StatusFailed}, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusFailed, run.Status)
}
