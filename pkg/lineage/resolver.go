package lineage

import (
	"context"
	"fmt"
	"sort"

	"github.com/dan-solli/golineage/pkg/store"
)

// ResolveDependencies infers the upstream runs a run depends on by matching
// its input artifact names against recorded outputs. Candidates are
// partitioned by producing component and the most recently started run wins
// each partition; an identical start timestamp is broken by the lowest run
// ID. Runs with no recorded producers keep an empty dependency set.
func (s *Service) ResolveDependencies(ctx context.Context, run *store.ComponentRun) error {
	inputNames := run.InputNames()
	if len(inputNames) == 0 {
		run.Dependencies = nil
		return nil
	}

	candidates, err := s.store.RunsProducing(ctx, inputNames)
	if err != nil {
		return fmt.Errorf("failed to query producing runs: %w", err)
	}

	// One winner per producing component.
	winners := make(map[string]*store.ComponentRun)
	for _, candidate := range candidates {
		current, ok := winners[candidate.ComponentName]
		if !ok {
			winners[candidate.ComponentName] = candidate
			continue
		}
		if candidate.StartTimestamp.After(current.StartTimestamp) {
			winners[candidate.ComponentName] = candidate
			continue
		}
		if candidate.StartTimestamp.Equal(current.StartTimestamp) && candidate.ID < current.ID {
			winners[candidate.ComponentName] = candidate
		}
	}

	deps := make([]*store.ComponentRun, 0, len(winners))
	for _, winner := range winners {
		deps = append(deps, winner)
	}
	sort.Slice(deps, func(i, j int) bool { return deps[i].ID < deps[j].ID })

	run.Dependencies = deps
	return nil
}
