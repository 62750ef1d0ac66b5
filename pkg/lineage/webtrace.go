package lineage

import (
	"context"
	"fmt"

	"github.com/dan-solli/golineage/pkg/store"
)

// TraceNode is one node in the nested lineage tree rendered by the web
// front end. Run nodes carry HasCaret and nested ChildNodes; artifact
// leaves carry a Parent reference to their owning run node.
type TraceNode struct {
	ID         string       `json:"id"`
	Label      string       `json:"label"`
	HasCaret   bool         `json:"hasCaret"`
	IsExpanded bool         `json:"isExpanded,omitempty"`
	ChildNodes []*TraceNode `json:"childNodes,omitempty"`
	Parent     string       `json:"parent,omitempty"`
}

// WebTrace builds the nested lineage tree for the named artifact, rooted at
// its most recently committed producer. Each run node lists the run's own
// output artifacts as leaves followed by a nested node per dependency run.
// Returns store.ErrNoProducingRun when no committed run produced the
// artifact.
func (s *Service) WebTrace(ctx context.Context, outputName string) ([]*TraceNode, error) {
	op := s.startOp("web_trace", outputName)

	root, err := s.store.LatestRunProducing(ctx, outputName)
	if err != nil {
		s.finishOp(ctx, op, err, nil)
		return nil, err
	}

	node, err := s.buildTraceNode(ctx, root, map[int64]bool{})
	s.finishOp(ctx, op, err, nil)
	if err != nil {
		return nil, err
	}
	return []*TraceNode{node}, nil
}

func (s *Service) buildTraceNode(ctx context.Context, run *store.ComponentRun, onPath map[int64]bool) (*TraceNode, error) {
	onPath[run.ID] = true
	defer delete(onPath, run.ID)

	node := &TraceNode{
		ID:         fmt.Sprintf("componentrun_%d", run.ID),
		Label:      run.ComponentName,
		HasCaret:   true,
		IsExpanded: true,
	}

	for _, out := range run.Outputs {
		node.ChildNodes = append(node.ChildNodes, &TraceNode{
			ID:       fmt.Sprintf("iopointer_%s", out.Name),
			Label:    out.Name,
			HasCaret: false,
			Parent:   node.ID,
		})
	}

	for _, dep := range run.Dependencies {
		if onPath[dep.ID] {
			s.logger.Warn("dependency cycle detected, terminating branch",
				"component", dep.ComponentName,
				"run_id", dep.ID)
			continue
		}
		full, err := s.store.GetComponentRun(ctx, dep.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to load dependency run %d: %w", dep.ID, err)
		}
		child, err := s.buildTraceNode(ctx, full, onPath)
		if err != nil {
			return nil, err
		}
		node.ChildNodes = append(node.ChildNodes, child)
	}
	return node, nil
}
