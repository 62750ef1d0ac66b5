// Package lineage provides provenance tracking for computational pipelines.
// Components produce timestamped runs that consume and emit named artifacts;
// dependency edges between runs are inferred from artifact names at commit
// time and can later be walked to reconstruct the upstream lineage of any
// artifact.
package lineage

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/dan-solli/golineage/pkg/metrics"
	"github.com/dan-solli/golineage/pkg/oplog"
	"github.com/dan-solli/golineage/pkg/store"
)

// Service is the main entry point for recording and querying pipeline
// provenance. It wraps a LineageStore with dependency resolution, lineage
// traversal and operational instrumentation.
type Service struct {
	store     store.LineageStore
	logger    *slog.Logger
	collector metrics.Collector
	exporter  oplog.Exporter
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetrics sets the metrics collector. Defaults to a no-op collector.
func WithMetrics(collector metrics.Collector) Option {
	return func(s *Service) {
		if collector != nil {
			s.collector = collector
		}
	}
}

// WithOperationLog sets the operation record exporter. Defaults to nil
// (no records exported).
func WithOperationLog(exporter oplog.Exporter) Option {
	return func(s *Service) {
		s.exporter = exporter
	}
}

// New creates a Service on top of the given store.
func New(st store.LineageStore, opts ...Option) (*Service, error) {
	if st == nil {
		return nil, fmt.Errorf("store must not be nil")
	}

	s := &Service{
		store:     st,
		logger:    slog.Default(),
		collector: metrics.NewNoopCollector(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close releases the underlying store and operation log.
func (s *Service) Close() error {
	var firstErr error
	if s.exporter != nil {
		if err := s.exporter.Close(); err != nil {
			firstErr = err
		}
	}
	if err := s.store.Close(); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}

// CreateComponent registers a named processing unit. Re-registering an
// existing name is a logged no-op.
func (s *Service) CreateComponent(ctx context.Context, name, description, owner string, tagNames []string) error {
	op := s.startOp("create_component", name)
	err := s.store.CreateComponent(ctx, name, description, owner, tagNames)
	s.finishOp(ctx, op, err, nil)
	if err != nil {
		return err
	}
	s.refreshStorageGauges(ctx)
	return nil
}

// GetComponent returns a registered component with its tags.
func (s *Service) GetComponent(ctx context.Context, name string) (*store.Component, error) {
	return s.store.GetComponent(ctx, name)
}

// TagComponent attaches tag names to an existing component with set
// semantics. Returns store.ErrComponentNotFound for unknown components.
func (s *Service) TagComponent(ctx context.Context, componentName string, tagNames []string) error {
	op := s.startOp("tag_component", componentName)
	err := s.store.AddTagsToComponent(ctx, componentName, tagNames)
	s.finishOp(ctx, op, err, nil)
	return err
}

// InitializeEmptyComponentRun constructs an unpersisted run shell for the
// named component. No validation occurs until commit.
func (s *Service) InitializeEmptyComponentRun(componentName string) *store.ComponentRun {
	return store.NewComponentRun(componentName)
}

// GetOrCreateIOPointer returns the artifact pointer for name, creating it
// if absent. An empty pointerType is inferred from the name.
func (s *Service) GetOrCreateIOPointer(ctx context.Context, name string, pointerType store.PointerType) (*store.IOPointer, error) {
	return s.store.GetOrCreateIOPointer(ctx, name, pointerType)
}

// CommitRun resolves the run's upstream dependencies from its inputs and
// persists it atomically. The run must carry start and end timestamps and
// at least one output, otherwise a *store.IncompleteRunError is returned
// and nothing is persisted.
func (s *Service) CommitRun(ctx context.Context, run *store.ComponentRun) error {
	op := s.startOp("commit_run", run.ComponentName)

	if err := run.CheckCompleteness(); err != nil {
		s.finishOp(ctx, op, err, nil)
		return err
	}

	resolveStart := time.Now()
	if err := s.ResolveDependencies(ctx, run); err != nil {
		s.finishOp(ctx, op, err, nil)
		return fmt.Errorf("failed to resolve dependencies: %w", err)
	}
	s.collector.RecordStage(ctx, op.name, "resolve", time.Since(resolveStart).Milliseconds())

	persistStart := time.Now()
	err := s.store.CommitComponentRun(ctx, run)
	s.collector.RecordStage(ctx, op.name, "persist", time.Since(persistStart).Milliseconds())

	s.finishOp(ctx, op, err, map[string]int64{
		"inputs":       int64(len(run.Inputs)),
		"outputs":      int64(len(run.Outputs)),
		"dependencies": int64(len(run.Dependencies)),
	})
	if err != nil {
		return err
	}

	s.logger.Info("committed component run",
		"component", run.ComponentName,
		"run_id", run.ID,
		"dependencies", len(run.Dependencies))
	s.refreshStorageGauges(ctx)
	return nil
}

// GetHistory returns the component's runs, most recently started first.
// A limit <= 0 returns all runs.
func (s *Service) GetHistory(ctx context.Context, componentName string, limit int) ([]*store.ComponentRun, error) {
	return s.store.GetHistory(ctx, componentName, limit)
}

// ComponentsWithOwner returns all components registered with the given
// owner. An unknown owner yields an empty slice, not an error.
func (s *Service) ComponentsWithOwner(ctx context.Context, owner string) ([]*store.Component, error) {
	return s.store.ComponentsWithOwner(ctx, owner)
}

// ComponentsWithTag returns all components carrying the given tag.
func (s *Service) ComponentsWithTag(ctx context.Context, tagName string) ([]*store.Component, error) {
	return s.store.ComponentsWithTag(ctx, tagName)
}

// CreateOutputIDs generates count fresh artifact identifiers that do not
// collide with existing sequence-generated pointers.
func (s *Service) CreateOutputIDs(ctx context.Context, count int) ([]string, error) {
	return s.store.CreateOutputIDs(ctx, count)
}

// activeOp tracks one in-flight instrumented operation.
type activeOp struct {
	id      string
	name    string
	subject string
	start   time.Time
}

func (s *Service) startOp(name, subject string) *activeOp {
	return &activeOp{
		id:      uuid.NewString(),
		name:    name,
		subject: subject,
		start:   time.Now(),
	}
}

func (s *Service) finishOp(ctx context.Context, op *activeOp, err error, counters map[string]int64) {
	elapsed := time.Since(op.start)

	status := "success"
	errType := ""
	if err != nil {
		status = "error"
		errType = ClassifyError(err)
		s.collector.RecordError(ctx, op.name, errType)
		s.logger.Error("operation failed",
			"operation", op.name,
			"operation_id", op.id,
			"subject", op.subject,
			"error", err)
	}
	s.collector.RecordOperation(ctx, op.name, status, elapsed.Milliseconds())

	if s.exporter == nil {
		return
	}
	record := &oplog.Record{
		Timestamp:   op.start,
		OperationID: op.id,
		Operation:   op.name,
		DurationMs:  elapsed.Milliseconds(),
		Status:      status,
		ErrorType:   errType,
		Subject:     op.subject,
		Counters:    counters,
	}
	if exportErr := s.exporter.Export(ctx, record); exportErr != nil {
		s.logger.Warn("failed to export operation record", "error", exportErr)
	}
}

// refreshStorageGauges is best effort; count failures are logged and
// otherwise ignored.
func (s *Service) refreshStorageGauges(ctx context.Context) {
	for gauge, count := range map[string]func(context.Context) (int64, error){
		"components": s.store.ComponentCount,
		"runs":       s.store.RunCount,
		"pointers":   s.store.PointerCount,
	} {
		n, err := count(ctx)
		if err != nil {
			s.logger.Warn("failed to refresh storage gauge", "gauge", gauge, "error", err)
			continue
		}
		s.collector.SetStorageCount(ctx, gauge, n)
	}
}
