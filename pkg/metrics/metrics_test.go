package metrics

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCollector_RecordOperation(t *testing.T) {
	collector := NewCollector()
	ctx := context.Background()

	// Record some operations
	collector.RecordOperation(ctx, "commit_run", "success", 12)
	collector.RecordOperation(ctx, "commit_run", "success", 8)
	collector.RecordOperation(ctx, "commit_run", "error", 3)
	collector.RecordOperation(ctx, "trace", "success", 2)

	// Verify counters
	if got := testutil.CollectAndCount(collector.operationsTotal); got != 3 {
		t.Errorf("expected 3 metric series (commit_run/success, commit_run/error, trace/success), got %d", got)
	}

	// Check specific counter value
	commitSuccess := testutil.ToFloat64(collector.operationsTotal.WithLabelValues("commit_run", "success"))
	if commitSuccess != 2 {
		t.Errorf("expected 2 commit_run/success operations, got %f", commitSuccess)
	}

	commitError := testutil.ToFloat64(collector.operationsTotal.WithLabelValues("commit_run", "error"))
	if commitError != 1 {
		t.Errorf("expected 1 commit_run/error operation, got %f", commitError)
	}
}

func TestMetricsCollector_RecordStage(t *testing.T) {
	collector := NewCollector()
	ctx := context.Background()

	// Record stage durations (in milliseconds)
	collector.RecordStage(ctx, "commit_run", "resolve", 4)
	collector.RecordStage(ctx, "commit_run", "persist", 9)
	collector.RecordStage(ctx, "commit_run", "persist", 11)

	// Verify histogram has entries
	if got := testutil.CollectAndCount(collector.operationDuration); got != 2 {
		t.Errorf("expected 2 histogram series, got %d", got)
	}

	persistHistogram := collector.operationDuration.WithLabelValues("commit_run", "persist")
	if persistHistogram == nil {
		t.Error("expected persist histogram to exist")
	}
}

func TestMetricsCollector_RecordError(t *testing.T) {
	collector := NewCollector()
	ctx := context.Background()

	collector.RecordError(ctx, "commit_run", "incomplete_run")
	collector.RecordError(ctx, "commit_run", "incomplete_run")
	collector.RecordError(ctx, "commit_run", "storage")
	collector.RecordError(ctx, "trace", "not_found")

	incomplete := testutil.ToFloat64(collector.errorsTotal.WithLabelValues("commit_run", "incomplete_run"))
	if incomplete != 2 {
		t.Errorf("expected 2 incomplete_run errors, got %f", incomplete)
	}

	storage := testutil.ToFloat64(collector.errorsTotal.WithLabelValues("commit_run", "storage"))
	if storage != 1 {
		t.Errorf("expected 1 storage error, got %f", storage)
	}
}

func TestMetricsCollector_SetStorageCount(t *testing.T) {
	collector := NewCollector()
	ctx := context.Background()

	collector.SetStorageCount(ctx, "components", 4)
	collector.SetStorageCount(ctx, "runs", 150)
	collector.SetStorageCount(ctx, "pointers", 300)

	components := testutil.ToFloat64(collector.storageCount.WithLabelValues("components"))
	if components != 4 {
		t.Errorf("expected 4 components, got %f", components)
	}

	// Update existing gauge
	collector.SetStorageCount(ctx, "components", 5)
	components = testutil.ToFloat64(collector.storageCount.WithLabelValues("components"))
	if components != 5 {
		t.Errorf("expected 5 components after update, got %f", components)
	}
}

func TestMetricsCollector_Registry(t *testing.T) {
	collector := NewCollector()
	ctx := context.Background()

	// Generate some metrics first so they appear in the registry
	collector.RecordOperation(ctx, "test", "success", 100)
	collector.RecordStage(ctx, "test", "stage1", 50)
	collector.RecordError(ctx, "test", "error1")
	collector.SetStorageCount(ctx, "runs", 10)

	registry := collector.Registry()
	if registry == nil {
		t.Fatal("expected non-nil registry")
	}

	// Verify metrics are registered
	metricFamilies, err := registry.Gather()
	if err != nil {
		t.Fatalf("failed to gather metrics: %v", err)
	}

	// We registered 4 metrics: operations_total, operation_duration, errors_total, storage_count
	expectedFamilies := 4
	if len(metricFamilies) != expectedFamilies {
		t.Errorf("expected %d metric families, got %d", expectedFamilies, len(metricFamilies))
	}
}
