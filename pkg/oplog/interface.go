// Package oplog exports per-operation timing records for offline analysis.
// Records carry identifiers and durations only, never artifact contents.
package oplog

import (
	"context"
	"time"
)

// Exporter writes operation records to a configured destination.
// Implementations must be safe for concurrent use.
type Exporter interface {
	// Export writes one record. Returns error if the export fails.
	Export(ctx context.Context, record *Record) error

	// Close flushes any buffered records and releases resources.
	Close() error
}

// Record captures one lineage operation: what was asked, how long it took,
// and how it ended.
type Record struct {
	// Timestamp is the operation start time
	Timestamp time.Time `json:"timestamp"`

	// OperationID uniquely identifies this operation (for correlation)
	OperationID string `json:"operationId"`

	// Operation is the operation type: "create_component", "commit_run",
	// "trace", "web_trace", "run"
	Operation string `json:"operation"`

	// DurationMs is the total operation duration in milliseconds
	DurationMs int64 `json:"durationMs"`

	// Status is "success" or "error"
	Status string `json:"status"`

	// ErrorType classifies the error (if Status == "error"):
	// incomplete_run, not_found, validation, storage
	ErrorType string `json:"errorType,omitempty"`

	// Subject names what the operation acted on: a component name for
	// component operations, an artifact name for trace operations.
	Subject string `json:"subject,omitempty"`

	// Counters provides operation-specific totals, e.g. "steps" for a
	// trace walk or "dependencies" for a commit.
	Counters map[string]int64 `json:"counters,omitempty"`
}

// FileExporterOption configures a FileExporter.
// Available in both build modes to keep the API identical.
type FileExporterOption func(interface{})
