package lineage

import (
	"context"
	"fmt"

	"github.com/dan-solli/golineage/pkg/store"
)

// Run wraps a unit of work with automatic provenance capture. It records
// the start timestamp, executes fn, records the end timestamp, attaches the
// named input and output artifacts and commits the resulting run. The
// component must already be registered. If fn returns an error, nothing is
// committed and the error is returned.
func (s *Service) Run(ctx context.Context, componentName string, inputNames, outputNames []string, fn func(ctx context.Context) error) (*store.ComponentRun, error) {
	op := s.startOp("run", componentName)
	s.logger.Info("starting instrumented run",
		"component", componentName,
		"operation_id", op.id)

	run := store.NewComponentRun(componentName)
	run.SetStartTimestamp()

	if err := fn(ctx); err != nil {
		s.finishOp(ctx, op, err, nil)
		return nil, fmt.Errorf("component %q failed: %w", componentName, err)
	}

	run.SetEndTimestamp()

	for _, name := range inputNames {
		pointer, err := s.store.GetOrCreateIOPointer(ctx, name, "")
		if err != nil {
			s.finishOp(ctx, op, err, nil)
			return nil, fmt.Errorf("failed to resolve input %q: %w", name, err)
		}
		run.AddInput(pointer)
	}
	for _, name := range outputNames {
		pointer, err := s.store.GetOrCreateIOPointer(ctx, name, "")
		if err != nil {
			s.finishOp(ctx, op, err, nil)
			return nil, fmt.Errorf("failed to resolve output %q: %w", name, err)
		}
		run.AddOutput(pointer)
	}

	if err := s.CommitRun(ctx, run); err != nil {
		s.finishOp(ctx, op, err, nil)
		return nil, err
	}

	s.finishOp(ctx, op, nil, map[string]int64{
		"inputs":  int64(len(run.Inputs)),
		"outputs": int64(len(run.Outputs)),
	})
	return run, nil
}
