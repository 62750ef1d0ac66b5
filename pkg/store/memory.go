package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"sync"
)

// MemoryLineageStore is an in-memory implementation of LineageStore.
// It mirrors the SQLite store's semantics for use in tests and short-lived
// tooling. Nothing persists across restarts. Safe for concurrent use.
type MemoryLineageStore struct {
	mu         sync.RWMutex
	components map[string]*Component
	tags       map[string]struct{}
	pointers   map[string]*IOPointer
	runs       map[int64]*memRun
	nextRunID  int64
	typeFor    TypeResolver
}

// memRun is the stored form of a run: associations are kept by name/ID so
// returned values never alias internal state.
type memRun struct {
	run     ComponentRun
	inputs  []string
	outputs []string
	deps    []int64
}

// Compile-time interface check
var _ LineageStore = (*MemoryLineageStore)(nil)

// NewMemoryLineageStore creates a new in-memory lineage store.
func NewMemoryLineageStore() *MemoryLineageStore {
	return &MemoryLineageStore{
		components: make(map[string]*Component),
		tags:       make(map[string]struct{}),
		pointers:   make(map[string]*IOPointer),
		runs:       make(map[int64]*memRun),
		typeFor:    DefaultTypeResolver,
	}
}

// CreateComponent persists a new component; an existing name is a no-op.
func (m *MemoryLineageStore) CreateComponent(ctx context.Context, name, description, owner string, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.components[name]; ok {
		return nil
	}

	c := &Component{Name: name, Description: description, Owner: owner}
	for _, tag := range dedupeStrings(tags) {
		m.tags[tag] = struct{}{}
		c.Tags = append(c.Tags, &Tag{Name: tag})
	}
	m.components[name] = c
	return nil
}

// GetComponent retrieves a component with its tags.
func (m *MemoryLineageStore) GetComponent(ctx context.Context, name string) (*Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	c, ok := m.components[name]
	if !ok {
		return nil, fmt.Errorf("component %q: %w", name, ErrComponentNotFound)
	}
	return copyComponent(c), nil
}

// AddTagsToComponent attaches tags to an existing component.
func (m *MemoryLineageStore) AddTagsToComponent(ctx context.Context, componentName string, tags []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.components[componentName]
	if !ok {
		return fmt.Errorf("component %q: %w", componentName, ErrComponentNotFound)
	}
	for _, tag := range dedupeStrings(tags) {
		m.tags[tag] = struct{}{}
		if !c.HasTag(tag) {
			c.Tags = append(c.Tags, &Tag{Name: tag})
		}
	}
	sort.Slice(c.Tags, func(i, j int) bool { return c.Tags[i].Name < c.Tags[j].Name })
	return nil
}

// GetOrCreateTag returns the named tag, creating it if absent.
func (m *MemoryLineageStore) GetOrCreateTag(ctx context.Context, name string) (*Tag, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.tags[name] = struct{}{}
	return &Tag{Name: name}, nil
}

// GetOrCreateIOPointer returns the named pointer, creating it if absent.
func (m *MemoryLineageStore) GetOrCreateIOPointer(ctx context.Context, name string, pointerType PointerType) (*IOPointer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.getOrCreatePointerLocked(name, pointerType), nil
}

func (m *MemoryLineageStore) getOrCreatePointerLocked(name string, pointerType PointerType) *IOPointer {
	if existing, ok := m.pointers[name]; ok {
		cp := *existing
		return &cp
	}
	if pointerType == "" {
		pointerType = m.typeFor(name)
	}
	p := &IOPointer{Name: name, PointerType: pointerType}
	m.pointers[name] = p
	cp := *p
	return &cp
}

// GetIOPointer retrieves a pointer by name without creating it.
func (m *MemoryLineageStore) GetIOPointer(ctx context.Context, name string) (*IOPointer, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	p, ok := m.pointers[name]
	if !ok {
		return nil, fmt.Errorf("io pointer %q: %w", name, ErrPointerNotFound)
	}
	cp := *p
	return &cp, nil
}

// CommitComponentRun validates and stores a run atomically.
func (m *MemoryLineageStore) CommitComponentRun(ctx context.Context, run *ComponentRun) error {
	if err := run.CheckCompleteness(); err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.components[run.ComponentName]; !ok {
		return fmt.Errorf("component %q: %w", run.ComponentName, ErrComponentNotFound)
	}

	for _, dep := range run.Dependencies {
		if dep.ID == 0 {
			return fmt.Errorf("dependency on uncommitted run of %q", dep.ComponentName)
		}
	}

	m.nextRunID++
	id := m.nextRunID

	stored := &memRun{
		run: ComponentRun{
			ID:             id,
			ComponentName:  run.ComponentName,
			StartTimestamp: run.StartTimestamp,
			EndTimestamp:   run.EndTimestamp,
		},
	}
	for _, p := range run.Inputs {
		m.getOrCreatePointerLocked(p.Name, p.PointerType)
		stored.inputs = append(stored.inputs, p.Name)
	}
	for _, p := range run.Outputs {
		m.getOrCreatePointerLocked(p.Name, p.PointerType)
		stored.outputs = append(stored.outputs, p.Name)
	}
	for _, dep := range run.Dependencies {
		stored.deps = append(stored.deps, dep.ID)
	}
	sort.Strings(stored.inputs)
	sort.Strings(stored.outputs)
	sort.Slice(stored.deps, func(i, j int) bool { return stored.deps[i] < stored.deps[j] })

	m.runs[id] = stored
	run.ID = id
	return nil
}

// GetComponentRun retrieves a committed run with associations loaded.
func (m *MemoryLineageStore) GetComponentRun(ctx context.Context, id int64) (*ComponentRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.getRunLocked(id)
}

func (m *MemoryLineageStore) getRunLocked(id int64) (*ComponentRun, error) {
	stored, ok := m.runs[id]
	if !ok {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}

	run := stored.run
	for _, name := range stored.inputs {
		if p, ok := m.pointers[name]; ok {
			cp := *p
			run.Inputs = append(run.Inputs, &cp)
		}
	}
	for _, name := range stored.outputs {
		if p, ok := m.pointers[name]; ok {
			cp := *p
			run.Outputs = append(run.Outputs, &cp)
		}
	}
	for _, depID := range stored.deps {
		if dep, ok := m.runs[depID]; ok {
			shallow := dep.run
			run.Dependencies = append(run.Dependencies, &shallow)
		}
	}
	return &run, nil
}

// RunsProducing returns committed runs whose outputs intersect names.
func (m *MemoryLineageStore) RunsProducing(ctx context.Context, names []string) ([]*ComponentRun, error) {
	if len(names) == 0 {
		return nil, nil
	}

	wanted := make(map[string]struct{}, len(names))
	for _, n := range names {
		wanted[n] = struct{}{}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var runs []*ComponentRun
	for _, stored := range m.runs {
		for _, out := range stored.outputs {
			if _, ok := wanted[out]; ok {
				shallow := stored.run
				runs = append(runs, &shallow)
				break
			}
		}
	}
	sort.Slice(runs, func(i, j int) bool { return runs[i].ID < runs[j].ID })
	return runs, nil
}

// LatestRunProducing returns the most recently committed producer of name.
func (m *MemoryLineageStore) LatestRunProducing(ctx context.Context, name string) (*ComponentRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	best := int64(0)
	for id, stored := range m.runs {
		for _, out := range stored.outputs {
			if out == name && id > best {
				best = id
			}
		}
	}
	if best == 0 {
		return nil, fmt.Errorf("artifact %q: %w", name, ErrNoProducingRun)
	}
	return m.getRunLocked(best)
}

// GetHistory returns the component's runs newest first. limit <= 0 is unlimited.
func (m *MemoryLineageStore) GetHistory(ctx context.Context, componentName string, limit int) ([]*ComponentRun, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var ids []int64
	for id, stored := range m.runs {
		if stored.run.ComponentName == componentName {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool {
		a, b := m.runs[ids[i]], m.runs[ids[j]]
		if !a.run.StartTimestamp.Equal(b.run.StartTimestamp) {
			return a.run.StartTimestamp.After(b.run.StartTimestamp)
		}
		return ids[i] > ids[j]
	})
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	runs := make([]*ComponentRun, 0, len(ids))
	for _, id := range ids {
		run, err := m.getRunLocked(id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ComponentsWithOwner returns all components registered to the owner.
func (m *MemoryLineageStore) ComponentsWithOwner(ctx context.Context, owner string) ([]*Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	components := make([]*Component, 0)
	for _, c := range m.components {
		if c.Owner == owner {
			components = append(components, copyComponent(c))
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })
	return components, nil
}

// ComponentsWithTag returns all components carrying the tag.
func (m *MemoryLineageStore) ComponentsWithTag(ctx context.Context, tagName string) ([]*Component, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	components := make([]*Component, 0)
	for _, c := range m.components {
		if c.HasTag(tagName) {
			components = append(components, copyComponent(c))
		}
	}
	sort.Slice(components, func(i, j int) bool { return components[i].Name < components[j].Name })
	return components, nil
}

// CreateOutputIDs generates count fresh endpoint identifiers.
func (m *MemoryLineageStore) CreateOutputIDs(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	next := int64(0)
	for name, p := range m.pointers {
		if p.PointerType != PointerTypeEndpoint {
			continue
		}
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}

	ids := make([]string, 0, count)
	for i := int64(0); i < int64(count); i++ {
		ids = append(ids, strconv.FormatInt(next+i, 10))
	}
	return ids, nil
}

// ComponentCount returns the number of registered components.
func (m *MemoryLineageStore) ComponentCount(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.components)), nil
}

// RunCount returns the number of committed runs.
func (m *MemoryLineageStore) RunCount(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.runs)), nil
}

// PointerCount returns the number of IO pointers.
func (m *MemoryLineageStore) PointerCount(ctx context.Context) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return int64(len(m.pointers)), nil
}

// DeleteComponent removes a component; runs are preserved unless deleteRuns.
func (m *MemoryLineageStore) DeleteComponent(ctx context.Context, name string, deleteRuns bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.components[name]; !ok {
		return fmt.Errorf("component %q: %w", name, ErrComponentNotFound)
	}

	var runIDs []int64
	for id, stored := range m.runs {
		if stored.run.ComponentName == name {
			runIDs = append(runIDs, id)
		}
	}
	if len(runIDs) > 0 && !deleteRuns {
		return fmt.Errorf("component %q: %w", name, ErrComponentHasRuns)
	}
	for _, id := range runIDs {
		m.deleteRunLocked(id)
	}
	delete(m.components, name)
	return nil
}

// DeleteComponentRun removes a run and any dependency edges referencing it.
func (m *MemoryLineageStore) DeleteComponentRun(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.runs[id]; !ok {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	m.deleteRunLocked(id)
	return nil
}

func (m *MemoryLineageStore) deleteRunLocked(id int64) {
	delete(m.runs, id)
	for _, stored := range m.runs {
		deps := stored.deps[:0]
		for _, depID := range stored.deps {
			if depID != id {
				deps = append(deps, depID)
			}
		}
		stored.deps = deps
	}
}

// DeleteIOPointer removes a pointer and any run associations referencing it.
func (m *MemoryLineageStore) DeleteIOPointer(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.pointers[name]; !ok {
		return fmt.Errorf("io pointer %q: %w", name, ErrPointerNotFound)
	}
	delete(m.pointers, name)
	for _, stored := range m.runs {
		stored.inputs = removeString(stored.inputs, name)
		stored.outputs = removeString(stored.outputs, name)
	}
	return nil
}

// Close releases nothing; present to satisfy LineageStore.
func (m *MemoryLineageStore) Close() error {
	return nil
}

func copyComponent(c *Component) *Component {
	cp := &Component{Name: c.Name, Description: c.Description, Owner: c.Owner}
	for _, t := range c.Tags {
		cp.Tags = append(cp.Tags, &Tag{Name: t.Name})
	}
	return cp
}

func removeString(in []string, name string) []string {
	out := in[:0]
	for _, v := range in {
		if v != name {
			out = append(out, v)
		}
	}
	return out
}
