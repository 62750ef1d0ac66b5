//go:build !oplog

package oplog

import "context"

// FileExporter discards all records when built without the oplog tag.
// The real implementation lives in exporter.go.
type FileExporter struct{}

// NewFileExporter returns an exporter that drops everything on the floor.
func NewFileExporter(path string, opts ...FileExporterOption) (*FileExporter, error) {
	return &FileExporter{}, nil
}

// Export discards the record.
func (e *FileExporter) Export(ctx context.Context, record *Record) error {
	return nil
}

// Close does nothing.
func (e *FileExporter) Close() error {
	return nil
}

// Compile-time interface check
var _ Exporter = (*FileExporter)(nil)
