package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestStore(t *testing.T) *SQLiteLineageStore {
	t.Helper()
	st, err := NewSQLiteLineageStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

// commitRun builds and commits a complete run, returning it with its
// assigned ID.
func commitRun(t *testing.T, st LineageStore, component string, start time.Time, inputs, outputs []string) *ComponentRun {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, component, "", "", nil))

	run := NewComponentRun(component)
	run.StartTimestamp = start
	run.EndTimestamp = start.Add(time.Minute)
	for _, name := range inputs {
		p, err := st.GetOrCreateIOPointer(ctx, name, "")
		require.NoError(t, err)
		run.AddInput(p)
	}
	for _, name := range outputs {
		p, err := st.GetOrCreateIOPointer(ctx, name, "")
		require.NoError(t, err)
		run.AddOutput(p)
	}
	require.NoError(t, st.CommitComponentRun(context.Background(), run))
	require.NotZero(t, run.ID)
	return run
}

func TestCreateComponentIdempotent(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, "cleaning", "cleans raw data", "ana", []string{"etl"}))
	// Second create with different attributes must not modify anything.
	require.NoError(t, st.CreateComponent(ctx, "cleaning", "other description", "bob", []string{"ml"}))

	c, err := st.GetComponent(ctx, "cleaning")
	require.NoError(t, err)
	assert.Equal(t, "cleans raw data", c.Description)
	assert.Equal(t, "ana", c.Owner)
	assert.True(t, c.HasTag("etl"))
	assert.False(t, c.HasTag("ml"))

	count, err := st.ComponentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestGetComponentNotFound(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.GetComponent(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestAddTagsToComponent(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, "training", "", "ana", nil))
	require.NoError(t, st.AddTagsToComponent(ctx, "training", []string{"ml", "ml", "daily"}))
	require.NoError(t, st.AddTagsToComponent(ctx, "training", []string{"ml"}))

	c, err := st.GetComponent(ctx, "training")
	require.NoError(t, err)
	require.Len(t, c.Tags, 2)
}

func TestAddTagsToMissingComponent(t *testing.T) {
	st := setupTestStore(t)

	err := st.AddTagsToComponent(context.Background(), "ghost", []string{"ml"})
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestGetOrCreateTagStable(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	first, err := st.GetOrCreateTag(ctx, "nightly")
	require.NoError(t, err)
	second, err := st.GetOrCreateTag(ctx, "nightly")
	require.NoError(t, err)
	assert.Equal(t, first.Name, second.Name)
}

func TestGetOrCreateIOPointerInfersType(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	p, err := st.GetOrCreateIOPointer(ctx, "data.csv", "")
	require.NoError(t, err)
	assert.Equal(t, PointerTypeFile, p.PointerType)

	p, err = st.GetOrCreateIOPointer(ctx, "predictions", PointerTypeEndpoint)
	require.NoError(t, err)
	assert.Equal(t, PointerTypeEndpoint, p.PointerType)

	// A later lookup keeps the original type.
	p, err = st.GetOrCreateIOPointer(ctx, "data.csv", PointerTypeTable)
	require.NoError(t, err)
	assert.Equal(t, PointerTypeFile, p.PointerType)
}

func TestGetIOPointerNotFound(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.GetIOPointer(context.Background(), "ghost.csv")
	assert.ErrorIs(t, err, ErrPointerNotFound)
}

func TestCommitIncompleteRunPersistsNothing(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	run := NewComponentRun("cleaning")
	run.SetStartTimestamp()

	err := st.CommitComponentRun(ctx, run)
	var incomplete *IncompleteRunError
	require.ErrorAs(t, err, &incomplete)
	assert.ElementsMatch(t, []string{"end_timestamp", "outputs"}, incomplete.Missing)

	count, err := st.RunCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestCommitUnknownComponent(t *testing.T) {
	st := setupTestStore(t)

	run := NewComponentRun("ghost")
	run.SetStartTimestamp()
	run.SetEndTimestamp()
	run.AddOutput(&IOPointer{Name: "out.csv", PointerType: PointerTypeFile})

	err := st.CommitComponentRun(context.Background(), run)
	assert.ErrorIs(t, err, ErrComponentNotFound)
}

func TestCommitAndLoadRun(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	start := time.Now().Truncate(0)
	committed := commitRun(t, st, "cleaning", start, []string{"raw.csv"}, []string{"clean.csv"})

	loaded, err := st.GetComponentRun(ctx, committed.ID)
	require.NoError(t, err)
	assert.Equal(t, "cleaning", loaded.ComponentName)
	assert.Equal(t, start.UnixNano(), loaded.StartTimestamp.UnixNano())
	assert.Equal(t, []string{"raw.csv"}, loaded.InputNames())
	assert.Equal(t, []string{"clean.csv"}, loaded.OutputNames())
	assert.Empty(t, loaded.Dependencies)
}

func TestCommitPersistsDependencyEdges(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	producer := commitRun(t, st, "cleaning", time.Now(), nil, []string{"clean.csv"})

	consumer := NewComponentRun("training")
	consumer.SetStartTimestamp()
	consumer.SetEndTimestamp()
	p, err := st.GetOrCreateIOPointer(ctx, "model.pkl", "")
	require.NoError(t, err)
	consumer.AddOutput(p)
	consumer.Dependencies = []*ComponentRun{producer}
	require.NoError(t, st.CommitComponentRun(ctx, consumer))

	loaded, err := st.GetComponentRun(ctx, consumer.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Dependencies, 1)
	assert.Equal(t, producer.ID, loaded.Dependencies[0].ID)
	assert.Equal(t, "cleaning", loaded.Dependencies[0].ComponentName)
}

func TestCommitRejectsUncommittedDependency(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, "training", "", "ana", nil))

	run := NewComponentRun("training")
	run.SetStartTimestamp()
	run.SetEndTimestamp()
	run.AddOutput(&IOPointer{Name: "model.pkl", PointerType: PointerTypeFile})
	run.Dependencies = []*ComponentRun{NewComponentRun("cleaning")}

	err := st.CommitComponentRun(ctx, run)
	require.Error(t, err)

	// The failed commit must leave nothing behind.
	count, err := st.RunCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestGetRunNotFound(t *testing.T) {
	st := setupTestStore(t)

	_, err := st.GetComponentRun(context.Background(), 99)
	assert.ErrorIs(t, err, ErrRunNotFound)
}

func TestRunsProducing(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	first := commitRun(t, st, "cleaning", base, nil, []string{"clean.csv"})
	second := commitRun(t, st, "cleaning", base.Add(time.Hour), nil, []string{"clean.csv"})
	commitRun(t, st, "unrelated", base, nil, []string{"other.csv"})

	runs, err := st.RunsProducing(ctx, []string{"clean.csv"})
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, first.ID, runs[0].ID)
	assert.Equal(t, second.ID, runs[1].ID)
}

func TestLatestRunProducing(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	commitRun(t, st, "cleaning", time.Now(), nil, []string{"clean.csv"})
	latest := commitRun(t, st, "cleaning", time.Now(), nil, []string{"clean.csv"})

	run, err := st.LatestRunProducing(ctx, "clean.csv")
	require.NoError(t, err)
	assert.Equal(t, latest.ID, run.ID)

	_, err = st.LatestRunProducing(ctx, "never-produced.csv")
	assert.ErrorIs(t, err, ErrNoProducingRun)
}

func TestGetHistoryOrderingAndLimit(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	base := time.Now()
	r1 := commitRun(t, st, "training", base, nil, []string{"model_v1.pkl"})
	r2 := commitRun(t, st, "training", base.Add(time.Hour), nil, []string{"model_v2.pkl"})
	r3 := commitRun(t, st, "training", base.Add(2*time.Hour), nil, []string{"model_v3.pkl"})

	history, err := st.GetHistory(ctx, "training", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, []int64{r3.ID, r2.ID, r1.ID},
		[]int64{history[0].ID, history[1].ID, history[2].ID})

	limited, err := st.GetHistory(ctx, "training", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, r3.ID, limited[0].ID)
}

func TestComponentsWithOwner(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, "cleaning", "", "ana", nil))
	require.NoError(t, st.CreateComponent(ctx, "training", "", "ana", nil))
	require.NoError(t, st.CreateComponent(ctx, "serving", "", "bob", nil))

	components, err := st.ComponentsWithOwner(ctx, "ana")
	require.NoError(t, err)
	require.Len(t, components, 2)

	none, err := st.ComponentsWithOwner(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestComponentsWithTag(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, "cleaning", "", "ana", []string{"etl"}))
	require.NoError(t, st.CreateComponent(ctx, "training", "", "ana", []string{"ml", "etl"}))

	components, err := st.ComponentsWithTag(ctx, "etl")
	require.NoError(t, err)
	require.Len(t, components, 2)

	none, err := st.ComponentsWithTag(ctx, "unused")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestCreateOutputIDs(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	// No endpoint pointers yet.
	ids, err := st.CreateOutputIDs(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"0", "1", "2"}, ids)

	for _, name := range []string{"0", "1", "2", "3", "4"} {
		_, err := st.GetOrCreateIOPointer(ctx, name, PointerTypeEndpoint)
		require.NoError(t, err)
	}

	ids, err = st.CreateOutputIDs(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, []string{"5", "6", "7"}, ids)
}

func TestCreateOutputIDsSkipsNonNumericNames(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.GetOrCreateIOPointer(ctx, "7", PointerTypeEndpoint)
	require.NoError(t, err)
	_, err = st.GetOrCreateIOPointer(ctx, "not-a-number", PointerTypeEndpoint)
	require.NoError(t, err)
	// File pointers never participate in the sequence.
	_, err = st.GetOrCreateIOPointer(ctx, "99.csv", "")
	require.NoError(t, err)

	ids, err := st.CreateOutputIDs(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"8", "9"}, ids)
}

func TestDeleteComponentGuardsRuns(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, "cleaning", "", "ana", nil))
	commitRun(t, st, "cleaning", time.Now(), nil, []string{"clean.csv"})

	err := st.DeleteComponent(ctx, "cleaning", false)
	assert.ErrorIs(t, err, ErrComponentHasRuns)

	require.NoError(t, st.DeleteComponent(ctx, "cleaning", true))

	_, err = st.GetComponent(ctx, "cleaning")
	assert.ErrorIs(t, err, ErrComponentNotFound)
	count, err := st.RunCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDeleteComponentRun(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	run := commitRun(t, st, "cleaning", time.Now(), nil, []string{"clean.csv"})
	require.NoError(t, st.DeleteComponentRun(ctx, run.ID))

	_, err := st.GetComponentRun(ctx, run.ID)
	assert.ErrorIs(t, err, ErrRunNotFound)

	assert.ErrorIs(t, st.DeleteComponentRun(ctx, run.ID), ErrRunNotFound)
}

func TestDeleteIOPointer(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	_, err := st.GetOrCreateIOPointer(ctx, "tmp.csv", "")
	require.NoError(t, err)
	require.NoError(t, st.DeleteIOPointer(ctx, "tmp.csv"))

	_, err = st.GetIOPointer(ctx, "tmp.csv")
	assert.ErrorIs(t, err, ErrPointerNotFound)

	assert.ErrorIs(t, st.DeleteIOPointer(ctx, "ghost.csv"), ErrPointerNotFound)
}

func TestCounts(t *testing.T) {
	st := setupTestStore(t)
	ctx := context.Background()

	require.NoError(t, st.CreateComponent(ctx, "cleaning", "", "ana", nil))
	commitRun(t, st, "cleaning", time.Now(), []string{"raw.csv"}, []string{"clean.csv"})

	components, err := st.ComponentCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), components)

	runs, err := st.RunCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), runs)

	pointers, err := st.PointerCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), pointers)
}
