package lineage

import (
	"errors"
	"strings"

	"github.com/dan-solli/golineage/pkg/store"
)

// Error type constants for classification
const (
	ErrTypeIncompleteRun = "incomplete_run"
	ErrTypeNotFound      = "not_found"
	ErrTypeValidation    = "validation"
	ErrTypeStorage       = "storage"
	ErrTypeUnknown       = "unknown"
)

// ClassifyError inspects an error and returns its type classification.
// This enables grouping errors by category in metrics and operation records.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}

	var incomplete *store.IncompleteRunError
	if errors.As(err, &incomplete) {
		return ErrTypeIncompleteRun
	}

	if errors.Is(err, store.ErrComponentNotFound) ||
		errors.Is(err, store.ErrRunNotFound) ||
		errors.Is(err, store.ErrPointerNotFound) ||
		errors.Is(err, store.ErrNoProducingRun) {
		return ErrTypeNotFound
	}

	errStrLower := strings.ToLower(err.Error())

	// SQLite-flavoured storage failures
	if strings.Contains(errStrLower, "sql") ||
		strings.Contains(errStrLower, "database") ||
		strings.Contains(errStrLower, "constraint") ||
		strings.Contains(errStrLower, "transaction") ||
		strings.Contains(errStrLower, "locked") {
		return ErrTypeStorage
	}

	if strings.Contains(errStrLower, "invalid") ||
		strings.Contains(errStrLower, "required") ||
		strings.Contains(errStrLower, "must not be empty") ||
		strings.Contains(errStrLower, "must be") {
		return ErrTypeValidation
	}

	return ErrTypeUnknown
}
