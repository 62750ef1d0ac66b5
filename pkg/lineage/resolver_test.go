package lineage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dan-solli/golineage/pkg/store"
)

func TestResolveDependenciesRecency(t *testing.T) {
	svc := newTestService(t)
	base := time.Now()

	commitAt(t, svc, "ingest", base, nil, []string{"data.csv"})
	newer := commitAt(t, svc, "ingest", base.Add(time.Hour), nil, []string{"data.csv"})

	run := svc.InitializeEmptyComponentRun("training")
	run.AddInput(&store.IOPointer{Name: "data.csv"})

	require.NoError(t, svc.ResolveDependencies(context.Background(), run))
	require.Len(t, run.Dependencies, 1)
	assert.Equal(t, newer.ID, run.Dependencies[0].ID)
}

func TestResolveDependenciesTieBreaksOnLowestID(t *testing.T) {
	svc := newTestService(t)
	at := time.Now()

	first := commitAt(t, svc, "ingest", at, nil, []string{"data.csv"})
	commitAt(t, svc, "ingest", at, nil, []string{"data.csv"})

	run := svc.InitializeEmptyComponentRun("training")
	run.AddInput(&store.IOPointer{Name: "data.csv"})

	require.NoError(t, svc.ResolveDependencies(context.Background(), run))
	require.Len(t, run.Dependencies, 1)
	assert.Equal(t, first.ID, run.Dependencies[0].ID)
}

func TestResolveDependenciesPartitionsByComponent(t *testing.T) {
	svc := newTestService(t)
	base := time.Now()

	// Two distinct pipelines produce the same artifact name; both are kept
	// as separate dependency candidates.
	fromIngest := commitAt(t, svc, "ingest", base, nil, []string{"data.csv"})
	fromBackfill := commitAt(t, svc, "backfill", base.Add(time.Hour), nil, []string{"data.csv"})

	run := svc.InitializeEmptyComponentRun("training")
	run.AddInput(&store.IOPointer{Name: "data.csv"})

	require.NoError(t, svc.ResolveDependencies(context.Background(), run))
	require.Len(t, run.Dependencies, 2)
	assert.Equal(t, fromIngest.ID, run.Dependencies[0].ID)
	assert.Equal(t, fromBackfill.ID, run.Dependencies[1].ID)
}

func TestResolveDependenciesNoProducers(t *testing.T) {
	svc := newTestService(t)

	run := svc.InitializeEmptyComponentRun("ingest")
	run.AddInput(&store.IOPointer{Name: "external.csv"})

	require.NoError(t, svc.ResolveDependencies(context.Background(), run))
	assert.Empty(t, run.Dependencies)
}

func TestResolveDependenciesNoInputs(t *testing.T) {
	svc := newTestService(t)

	run := svc.InitializeEmptyComponentRun("ingest")
	require.NoError(t, svc.ResolveDependencies(context.Background(), run))
	assert.Empty(t, run.Dependencies)
}
