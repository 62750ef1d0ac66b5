// Package store provides storage implementations for golineage's provenance records.
package store

import (
	"path/filepath"
	"strings"
	"time"
)

// PointerType classifies what an IOPointer addresses.
type PointerType string

const (
	// PointerTypeFile is a file-backed artifact (datasets, serialized models).
	PointerTypeFile PointerType = "file"
	// PointerTypeTable is a database table artifact.
	PointerTypeTable PointerType = "table"
	// PointerTypeEndpoint is a sequence-generated identifier handed out by
	// CreateOutputIDs for artifacts that have no natural name.
	PointerTypeEndpoint PointerType = "endpoint"
	// PointerTypeUnknown is used when no type was given and none could be inferred.
	PointerTypeUnknown PointerType = "unknown"
)

// TypeResolver infers a pointer type from an artifact name.
// Supplied to stores so the inference heuristic stays outside the storage layer.
type TypeResolver func(name string) PointerType

// DefaultTypeResolver maps common file extensions to pointer types.
// Unrecognized suffixes resolve to PointerTypeUnknown.
func DefaultTypeResolver(name string) PointerType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv", ".parquet", ".json", ".txt", ".npy", ".pkl", ".joblib", ".pt", ".onnx":
		return PointerTypeFile
	case ".db", ".sqlite", ".sql":
		return PointerTypeTable
	default:
		return PointerTypeUnknown
	}
}

// Tag is a unique label attachable to components.
type Tag struct {
	Name string
}

// IOPointer is a uniquely named, typed reference to a data artifact
// consumed or produced by a run. Identity is keyed purely by name.
type IOPointer struct {
	Name        string
	PointerType PointerType
}

// Component is a named processing unit whose executions are tracked.
type Component struct {
	Name        string
	Description string
	Owner       string
	Tags        []*Tag
}

// HasTag reports whether the component carries a tag with the given name.
func (c *Component) HasTag(name string) bool {
	for _, t := range c.Tags {
		if t.Name == name {
			return true
		}
	}
	return false
}

// ComponentRun is one timestamped execution of a Component.
//
// A run is built up in memory (timestamps, inputs, outputs, resolved
// dependencies) and committed exactly once; the store assigns ID at commit.
// Dependencies point to runs that produced artifacts this run consumed,
// never the reverse. On runs loaded from storage the dependency entries are
// shallow: they carry identity and timestamps but not their own associations.
type ComponentRun struct {
	ID             int64
	ComponentName  string
	StartTimestamp time.Time
	EndTimestamp   time.Time
	Inputs         []*IOPointer
	Outputs        []*IOPointer
	Dependencies   []*ComponentRun
}

// NewComponentRun constructs an unpersisted run shell for the named component.
// No validation and no side effects.
func NewComponentRun(componentName string) *ComponentRun {
	return &ComponentRun{ComponentName: componentName}
}

// SetStartTimestamp stamps the run's start time with the current time.
func (r *ComponentRun) SetStartTimestamp() {
	r.StartTimestamp = time.Now()
}

// SetEndTimestamp stamps the run's end time with the current time.
func (r *ComponentRun) SetEndTimestamp() {
	r.EndTimestamp = time.Now()
}

// AddInput records an input pointer. Duplicate names collapse (set semantics).
func (r *ComponentRun) AddInput(p *IOPointer) {
	r.Inputs = appendPointer(r.Inputs, p)
}

// AddInputs records multiple input pointers.
func (r *ComponentRun) AddInputs(ps []*IOPointer) {
	for _, p := range ps {
		r.AddInput(p)
	}
}

// AddOutput records an output pointer. Duplicate names collapse (set semantics).
func (r *ComponentRun) AddOutput(p *IOPointer) {
	r.Outputs = appendPointer(r.Outputs, p)
}

// AddOutputs records multiple output pointers.
func (r *ComponentRun) AddOutputs(ps []*IOPointer) {
	for _, p := range ps {
		r.AddOutput(p)
	}
}

// InputNames returns the names of the run's input pointers.
func (r *ComponentRun) InputNames() []string {
	return pointerNames(r.Inputs)
}

// OutputNames returns the names of the run's output pointers.
func (r *ComponentRun) OutputNames() []string {
	return pointerNames(r.Outputs)
}

// MissingFields returns the names of the fields a committable run still
// lacks: "start_timestamp", "end_timestamp", "outputs". Empty means the run
// passes the completeness check.
func (r *ComponentRun) MissingFields() []string {
	var missing []string
	if r.StartTimestamp.IsZero() {
		missing = append(missing, "start_timestamp")
	}
	if r.EndTimestamp.IsZero() {
		missing = append(missing, "end_timestamp")
	}
	if len(r.Outputs) == 0 {
		missing = append(missing, "outputs")
	}
	return missing
}

// CheckCompleteness validates the run against the commit invariant.
// Returns an *IncompleteRunError listing the missing fields, or nil.
func (r *ComponentRun) CheckCompleteness() error {
	if missing := r.MissingFields(); len(missing) > 0 {
		return &IncompleteRunError{ComponentName: r.ComponentName, Missing: missing}
	}
	return nil
}

func appendPointer(ps []*IOPointer, p *IOPointer) []*IOPointer {
	if p == nil {
		return ps
	}
	for _, existing := range ps {
		if existing.Name == p.Name {
			return ps
		}
	}
	return append(ps, p)
}

func pointerNames(ps []*IOPointer) []string {
	names := make([]string, 0, len(ps))
	for _, p := range ps {
		names = append(names, p.Name)
	}
	return names
}
