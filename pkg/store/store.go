package store

import (
	"context"
)

// LineageStore defines the repository interface over provenance entities.
// Implementations must provide get-or-create semantics keyed by name for
// tags and IO pointers, and an atomic commit for component runs: either the
// run row and all of its input/output/dependency associations become
// visible together, or none do.
type LineageStore interface {
	// CreateComponent persists a new component with its tags resolved
	// through get-or-create. If a component with the name already exists
	// the call is an idempotent no-op (logged, not an error).
	CreateComponent(ctx context.Context, name, description, owner string, tags []string) error

	// GetComponent retrieves a component with its tags loaded.
	// Returns ErrComponentNotFound if absent.
	GetComponent(ctx context.Context, name string) (*Component, error)

	// AddTagsToComponent attaches tags (get-or-create by name) to an
	// existing component. Duplicate names collapse to a single attachment.
	// Returns ErrComponentNotFound when the component does not exist.
	AddTagsToComponent(ctx context.Context, componentName string, tags []string) error

	// GetOrCreateTag returns the tag with the given name, creating it first
	// if absent. The upsert is atomic with respect to concurrent callers.
	GetOrCreateTag(ctx context.Context, name string) (*Tag, error)

	// GetOrCreateIOPointer returns the pointer with the given name, creating
	// it first if absent. When pointerType is empty the type is inferred
	// from the name via the store's injected TypeResolver. An existing
	// pointer is returned as stored; its type is not rewritten.
	GetOrCreateIOPointer(ctx context.Context, name string, pointerType PointerType) (*IOPointer, error)

	// GetIOPointer retrieves a pointer by name without creating it.
	// Returns ErrPointerNotFound if absent.
	GetIOPointer(ctx context.Context, name string) (*IOPointer, error)

	// CommitComponentRun validates completeness and persists the run with
	// all associations in one transaction, assigning run.ID on success.
	// An incomplete run fails with *IncompleteRunError before any
	// persistence; a run for an unregistered component fails with
	// ErrComponentNotFound.
	CommitComponentRun(ctx context.Context, run *ComponentRun) error

	// GetComponentRun retrieves a committed run with inputs, outputs and
	// shallow dependency entries loaded. Returns ErrRunNotFound if absent.
	GetComponentRun(ctx context.Context, id int64) (*ComponentRun, error)

	// RunsProducing returns every committed run whose output set intersects
	// the given artifact names. Associations are not loaded; the results
	// carry identity, component name and timestamps only. Order is by run ID.
	RunsProducing(ctx context.Context, names []string) ([]*ComponentRun, error)

	// LatestRunProducing returns the most recently committed run (highest
	// ID) whose outputs include the named artifact, fully loaded as by
	// GetComponentRun. Returns ErrNoProducingRun if no such run exists.
	LatestRunProducing(ctx context.Context, name string) (*ComponentRun, error)

	// GetHistory returns the component's runs ordered by start timestamp
	// descending. limit <= 0 means unlimited.
	GetHistory(ctx context.Context, componentName string, limit int) ([]*ComponentRun, error)

	// ComponentsWithOwner returns all components registered to the owner,
	// tags loaded. An unknown owner yields an empty slice, not an error.
	ComponentsWithOwner(ctx context.Context, owner string) ([]*Component, error)

	// ComponentsWithTag returns all components carrying the tag, tags
	// loaded. An unknown tag yields an empty slice, not an error.
	ComponentsWithTag(ctx context.Context, tagName string) ([]*Component, error)

	// CreateOutputIDs generates count fresh string identifiers that do not
	// collide with existing endpoint-type pointer names, by incrementing
	// past the current maximum numeric name. The identifiers are returned,
	// not persisted; they become pointers when first used.
	CreateOutputIDs(ctx context.Context, count int) ([]string, error)

	// ComponentCount returns the number of registered components.
	ComponentCount(ctx context.Context) (int64, error)

	// RunCount returns the number of committed runs.
	RunCount(ctx context.Context) (int64, error)

	// PointerCount returns the number of IO pointers.
	PointerCount(ctx context.Context) (int64, error)

	// DeleteComponent removes a component and its tag associations.
	// Historical runs are preserved unless deleteRuns is set; without it,
	// deleting a component that still has runs fails with ErrComponentHasRuns.
	DeleteComponent(ctx context.Context, name string, deleteRuns bool) error

	// DeleteComponentRun removes a run and its associations.
	DeleteComponentRun(ctx context.Context, id int64) error

	// DeleteIOPointer removes a pointer and any run associations referencing it.
	DeleteIOPointer(ctx context.Context, name string) error

	// Close releases resources held by the store.
	Close() error
}
