package lineage

import (
	"context"
	"fmt"

	"github.com/dan-solli/golineage/pkg/store"
)

// TraceStep is one entry in a flat lineage trace: the run and its hop
// distance from the traced artifact's producer (root is depth 0).
type TraceStep struct {
	Depth int
	Run   *store.ComponentRun
}

// Trace reconstructs the upstream lineage of the named artifact. The walk
// starts at the most recently committed run producing outputName and
// descends depth-first through resolved dependencies, recording each run
// before its dependencies in pre-order. Runs reachable through multiple
// distinct paths appear once per path; a run revisited on its own ancestor
// path terminates that branch. Returns store.ErrNoProducingRun when no
// committed run produced the artifact.
func (s *Service) Trace(ctx context.Context, outputName string) ([]TraceStep, error) {
	op := s.startOp("trace", outputName)

	root, err := s.store.LatestRunProducing(ctx, outputName)
	if err != nil {
		s.finishOp(ctx, op, err, nil)
		return nil, err
	}

	walker := &traceWalker{service: s}
	steps, err := walker.walk(ctx, root, 0, map[int64]bool{})
	s.finishOp(ctx, op, err, map[string]int64{"steps": int64(len(steps))})
	if err != nil {
		return nil, err
	}
	return steps, nil
}

type traceWalker struct {
	service *Service
}

// walk visits run and its dependencies depth-first. onPath holds the run
// IDs of the current ancestor chain so a cyclic history terminates the
// branch instead of recursing forever.
func (w *traceWalker) walk(ctx context.Context, run *store.ComponentRun, depth int, onPath map[int64]bool) ([]TraceStep, error) {
	if onPath[run.ID] {
		w.service.logger.Warn("dependency cycle detected, terminating branch",
			"component", run.ComponentName,
			"run_id", run.ID)
		return nil, nil
	}
	onPath[run.ID] = true
	defer delete(onPath, run.ID)

	steps := []TraceStep{{Depth: depth, Run: run}}

	for _, dep := range run.Dependencies {
		// Dependencies on a loaded run are shallow; fetch the full run
		// so its own dependency edges are available.
		full, err := w.service.store.GetComponentRun(ctx, dep.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load dependency run %d: %w", dep.ID, err)
		}
		childSteps, err := w.walk(ctx, full, depth+1, onPath)
		if err != nil {
			return nil, err
		}
		steps = append(steps, childSteps...)
	}
	return steps, nil
}
