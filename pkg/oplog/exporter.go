//go:build oplog

package oplog

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	defaultMaxFileSize = 50 * 1024 * 1024 // 50MB
	defaultMaxFiles    = 5
)

// FileExporter appends records as JSON lines to a file, rotating when the
// file exceeds a size threshold.
type FileExporter struct {
	mu          sync.Mutex
	path        string
	file        *os.File
	size        int64
	maxFileSize int64
	maxFiles    int
}

// WithMaxFileSize sets the rotation threshold in bytes.
func WithMaxFileSize(size int64) FileExporterOption {
	return func(v interface{}) {
		if e, ok := v.(*FileExporter); ok && size > 0 {
			e.maxFileSize = size
		}
	}
}

// WithMaxFiles sets how many rotated files to keep.
func WithMaxFiles(n int) FileExporterOption {
	return func(v interface{}) {
		if e, ok := v.(*FileExporter); ok && n > 0 {
			e.maxFiles = n
		}
	}
}

// NewFileExporter opens (or creates) the record file at path in append mode.
func NewFileExporter(path string, opts ...FileExporterOption) (*FileExporter, error) {
	if path == "" {
		return nil, fmt.Errorf("exporter path must not be empty")
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
	}

	e := &FileExporter{
		path:        path,
		maxFileSize: defaultMaxFileSize,
		maxFiles:    defaultMaxFiles,
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := e.open(); err != nil {
		return nil, err
	}
	return e, nil
}

func (e *FileExporter) open() error {
	f, err := os.OpenFile(e.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return fmt.Errorf("failed to stat log file: %w", err)
	}
	e.file = f
	e.size = info.Size()
	return nil
}

// Export writes one record as a JSON line.
func (e *FileExporter) Export(ctx context.Context, record *Record) error {
	if record == nil {
		return fmt.Errorf("record must not be nil")
	}

	line, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}
	line = append(line, '\n')

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.file == nil {
		return fmt.Errorf("exporter is closed")
	}

	if e.size+int64(len(line)) > e.maxFileSize {
		if err := e.rotateLocked(); err != nil {
			return fmt.Errorf("failed to rotate log file: %w", err)
		}
	}

	n, err := e.file.Write(line)
	e.size += int64(n)
	if err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}
	return nil
}

// rotateLocked shifts path.N to path.N+1, renames the current file to
// path.1 and reopens. Caller holds mu.
func (e *FileExporter) rotateLocked() error {
	if err := e.file.Close(); err != nil {
		return err
	}
	e.file = nil

	// Oldest file falls off the end.
	os.Remove(fmt.Sprintf("%s.%d", e.path, e.maxFiles))
	for i := e.maxFiles - 1; i >= 1; i-- {
		src := fmt.Sprintf("%s.%d", e.path, i)
		if _, err := os.Stat(src); err == nil {
			if err := os.Rename(src, fmt.Sprintf("%s.%d", e.path, i+1)); err != nil {
				return err
			}
		}
	}
	if err := os.Rename(e.path, e.path+".1"); err != nil && !os.IsNotExist(err) {
		return err
	}
	return e.open()
}

// Close flushes and closes the underlying file.
func (e *FileExporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.file == nil {
		return nil
	}
	err := e.file.Sync()
	if cerr := e.file.Close(); err == nil {
		err = cerr
	}
	e.file = nil
	return err
}

// Compile-time interface check
var _ Exporter = (*FileExporter)(nil)
