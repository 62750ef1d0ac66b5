package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
	"time"
)

// SQLiteLineageStore implements LineageStore using SQLite as the backend.
// A single store owns one connection pool; SQLite allows one writer at a
// time, so the pool is capped at a single connection.
type SQLiteLineageStore struct {
	db      *sql.DB
	logger  *slog.Logger
	typeFor TypeResolver
}

// Compile-time interface check
var _ LineageStore = (*SQLiteLineageStore)(nil)

// SQLiteOption configures a SQLiteLineageStore.
type SQLiteOption func(*SQLiteLineageStore)

// WithLogger sets the store's logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) SQLiteOption {
	return func(s *SQLiteLineageStore) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTypeResolver sets the pointer-type inference used when
// GetOrCreateIOPointer is called without an explicit type.
// Defaults to DefaultTypeResolver.
func WithTypeResolver(resolver TypeResolver) SQLiteOption {
	return func(s *SQLiteLineageStore) {
		if resolver != nil {
			s.typeFor = resolver
		}
	}
}

// NewSQLiteLineageStore creates a new SQLite-backed lineage store.
// The dbPath can be a file path or ":memory:" for an in-memory database.
// Creates tables and indexes if they don't exist.
func NewSQLiteLineageStore(dbPath string, opts ...SQLiteOption) (*SQLiteLineageStore, error) {
	db, err := sql.Open(sqliteDriverName, dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// One writer at a time avoids SQLITE_BUSY under contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	s := &SQLiteLineageStore{
		db:      db,
		logger:  slog.Default(),
		typeFor: DefaultTypeResolver,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return s, nil
}

// initSchema creates the database schema if it doesn't exist.
func (s *SQLiteLineageStore) initSchema() error {
	schema := `
	PRAGMA foreign_keys = ON;

	CREATE TABLE IF NOT EXISTS components (
		name TEXT PRIMARY KEY,
		description TEXT NOT NULL DEFAULT '',
		owner TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_components_owner ON components(owner);

	CREATE TABLE IF NOT EXISTS tags (
		name TEXT PRIMARY KEY
	);

	CREATE TABLE IF NOT EXISTS component_tags (
		component_name TEXT NOT NULL REFERENCES components(name) ON DELETE CASCADE,
		tag_name TEXT NOT NULL REFERENCES tags(name) ON DELETE CASCADE,
		PRIMARY KEY (component_name, tag_name)
	);

	CREATE TABLE IF NOT EXISTS io_pointers (
		name TEXT PRIMARY KEY,
		pointer_type TEXT NOT NULL DEFAULT 'unknown'
	);

	CREATE INDEX IF NOT EXISTS idx_io_pointers_type ON io_pointers(pointer_type);

	CREATE TABLE IF NOT EXISTS component_runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		component_name TEXT NOT NULL REFERENCES components(name),
		start_ts INTEGER NOT NULL,
		end_ts INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_component_runs_component ON component_runs(component_name, start_ts);

	CREATE TABLE IF NOT EXISTS run_inputs (
		run_id INTEGER NOT NULL REFERENCES component_runs(id) ON DELETE CASCADE,
		pointer_name TEXT NOT NULL REFERENCES io_pointers(name) ON DELETE CASCADE,
		PRIMARY KEY (run_id, pointer_name)
	);

	CREATE INDEX IF NOT EXISTS idx_run_inputs_pointer ON run_inputs(pointer_name);

	CREATE TABLE IF NOT EXISTS run_outputs (
		run_id INTEGER NOT NULL REFERENCES component_runs(id) ON DELETE CASCADE,
		pointer_name TEXT NOT NULL REFERENCES io_pointers(name) ON DELETE CASCADE,
		PRIMARY KEY (run_id, pointer_name)
	);

	CREATE INDEX IF NOT EXISTS idx_run_outputs_pointer ON run_outputs(pointer_name);

	CREATE TABLE IF NOT EXISTS run_dependencies (
		run_id INTEGER NOT NULL REFERENCES component_runs(id) ON DELETE CASCADE,
		depends_on_run_id INTEGER NOT NULL REFERENCES component_runs(id) ON DELETE CASCADE,
		PRIMARY KEY (run_id, depends_on_run_id)
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// CreateComponent persists a new component with its tags.
// Re-creating an existing name is a logged no-op.
func (s *SQLiteLineageStore) CreateComponent(ctx context.Context, name, description, owner string, tags []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO components (name, description, owner, created_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(name) DO NOTHING`,
		name, description, owner, time.Now().UnixNano())
	if err != nil {
		return fmt.Errorf("failed to create component: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check component insert: %w", err)
	}
	if affected == 0 {
		s.logger.Info("component already exists", "component", name)
		return nil
	}

	for _, tag := range dedupeStrings(tags) {
		if err := attachTag(ctx, tx, name, tag); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit component: %w", err)
	}

	s.logger.Info("created component", "component", name, "owner", owner, "tags", tags)
	return nil
}

// GetComponent retrieves a component with its tags loaded.
func (s *SQLiteLineageStore) GetComponent(ctx context.Context, name string) (*Component, error) {
	var c Component
	err := s.db.QueryRowContext(ctx,
		`SELECT name, description, owner FROM components WHERE name = ?`, name).
		Scan(&c.Name, &c.Description, &c.Owner)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("component %q: %w", name, ErrComponentNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get component: %w", err)
	}

	tags, err := s.componentTags(ctx, name)
	if err != nil {
		return nil, err
	}
	c.Tags = tags
	return &c, nil
}

// AddTagsToComponent attaches tags to an existing component.
func (s *SQLiteLineageStore) AddTagsToComponent(ctx context.Context, componentName string, tags []string) error {
	var exists int
	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM components WHERE name = ?`, componentName).Scan(&exists)
	if err != nil {
		return fmt.Errorf("failed to check component: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("component %q: %w", componentName, ErrComponentNotFound)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, tag := range dedupeStrings(tags) {
		if err := attachTag(ctx, tx, componentName, tag); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit tags: %w", err)
	}
	return nil
}

// attachTag upserts the tag and its join row inside the given transaction.
func attachTag(ctx context.Context, tx *sql.Tx, componentName, tag string) error {
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, tag); err != nil {
		return fmt.Errorf("failed to upsert tag: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO component_tags (component_name, tag_name) VALUES (?, ?)
		 ON CONFLICT(component_name, tag_name) DO NOTHING`, componentName, tag); err != nil {
		return fmt.Errorf("failed to attach tag: %w", err)
	}
	return nil
}

// GetOrCreateTag returns the named tag, creating it if absent.
func (s *SQLiteLineageStore) GetOrCreateTag(ctx context.Context, name string) (*Tag, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO tags (name) VALUES (?) ON CONFLICT(name) DO NOTHING`, name)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert tag: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.logger.Info("created tag", "tag", name)
	}
	return &Tag{Name: name}, nil
}

// GetOrCreateIOPointer returns the named pointer, creating it if absent.
// An empty pointerType is inferred from the name via the injected resolver.
func (s *SQLiteLineageStore) GetOrCreateIOPointer(ctx context.Context, name string, pointerType PointerType) (*IOPointer, error) {
	if pointerType == "" {
		pointerType = s.typeFor(name)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO io_pointers (name, pointer_type) VALUES (?, ?)
		 ON CONFLICT(name) DO NOTHING`, name, string(pointerType))
	if err != nil {
		return nil, fmt.Errorf("failed to upsert io pointer: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected > 0 {
		s.logger.Info("created io pointer", "pointer", name, "type", string(pointerType))
	}

	return s.GetIOPointer(ctx, name)
}

// GetIOPointer retrieves a pointer by name without creating it.
func (s *SQLiteLineageStore) GetIOPointer(ctx context.Context, name string) (*IOPointer, error) {
	var p IOPointer
	var ptype string
	err := s.db.QueryRowContext(ctx,
		`SELECT name, pointer_type FROM io_pointers WHERE name = ?`, name).
		Scan(&p.Name, &ptype)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("io pointer %q: %w", name, ErrPointerNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get io pointer: %w", err)
	}
	p.PointerType = PointerType(ptype)
	return &p, nil
}

// CommitComponentRun validates and persists a run with all associations
// in one transaction. run.ID is assigned on success.
func (s *SQLiteLineageStore) CommitComponentRun(ctx context.Context, run *ComponentRun) error {
	if err := run.CheckCompleteness(); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var exists int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM components WHERE name = ?`, run.ComponentName).Scan(&exists)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("component %q: %w", run.ComponentName, ErrComponentNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to check component: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		`INSERT INTO component_runs (component_name, start_ts, end_ts) VALUES (?, ?, ?)`,
		run.ComponentName, run.StartTimestamp.UnixNano(), run.EndTimestamp.UnixNano())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read run id: %w", err)
	}

	if err := insertRunPointers(ctx, tx, "run_inputs", id, run.Inputs); err != nil {
		return err
	}
	if err := insertRunPointers(ctx, tx, "run_outputs", id, run.Outputs); err != nil {
		return err
	}

	for _, dep := range run.Dependencies {
		if dep.ID == 0 {
			return fmt.Errorf("dependency on uncommitted run of %q", dep.ComponentName)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO run_dependencies (run_id, depends_on_run_id) VALUES (?, ?)
			 ON CONFLICT(run_id, depends_on_run_id) DO NOTHING`, id, dep.ID); err != nil {
			return fmt.Errorf("failed to insert dependency edge: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	run.ID = id
	s.logger.Info("committed component run",
		"component", run.ComponentName, "run_id", id,
		"inputs", len(run.Inputs), "outputs", len(run.Outputs),
		"dependencies", len(run.Dependencies))
	return nil
}

// insertRunPointers upserts the pointers and writes the join rows for one side
// of a run's associations. Pointers not seen before keep the type carried on
// the in-memory value.
func insertRunPointers(ctx context.Context, tx *sql.Tx, table string, runID int64, pointers []*IOPointer) error {
	for _, p := range pointers {
		ptype := p.PointerType
		if ptype == "" {
			ptype = PointerTypeUnknown
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO io_pointers (name, pointer_type) VALUES (?, ?)
			 ON CONFLICT(name) DO NOTHING`, p.Name, string(ptype)); err != nil {
			return fmt.Errorf("failed to upsert io pointer: %w", err)
		}
		// table is one of the two fixed join-table names, never user input.
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO `+table+` (run_id, pointer_name) VALUES (?, ?)
			 ON CONFLICT(run_id, pointer_name) DO NOTHING`, runID, p.Name); err != nil {
			return fmt.Errorf("failed to insert %s row: %w", table, err)
		}
	}
	return nil
}

// GetComponentRun retrieves a committed run with associations loaded.
func (s *SQLiteLineageStore) GetComponentRun(ctx context.Context, id int64) (*ComponentRun, error) {
	run, err := s.scanRun(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.loadAssociations(ctx, run); err != nil {
		return nil, err
	}
	return run, nil
}

func (s *SQLiteLineageStore) scanRun(ctx context.Context, id int64) (*ComponentRun, error) {
	var run ComponentRun
	var startNs, endNs int64
	err := s.db.QueryRowContext(ctx,
		`SELECT id, component_name, start_ts, end_ts FROM component_runs WHERE id = ?`, id).
		Scan(&run.ID, &run.ComponentName, &startNs, &endNs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	run.StartTimestamp = time.Unix(0, startNs)
	run.EndTimestamp = time.Unix(0, endNs)
	return &run, nil
}

// loadAssociations fills a run's inputs, outputs and shallow dependencies.
func (s *SQLiteLineageStore) loadAssociations(ctx context.Context, run *ComponentRun) error {
	inputs, err := s.runPointers(ctx, "run_inputs", run.ID)
	if err != nil {
		return err
	}
	outputs, err := s.runPointers(ctx, "run_outputs", run.ID)
	if err != nil {
		return err
	}
	run.Inputs = inputs
	run.Outputs = outputs

	rows, err := s.db.QueryContext(ctx,
		`SELECT r.id, r.component_name, r.start_ts, r.end_ts
		 FROM run_dependencies d
		 JOIN component_runs r ON r.id = d.depends_on_run_id
		 WHERE d.run_id = ?
		 ORDER BY r.id`, run.ID)
	if err != nil {
		return fmt.Errorf("failed to load dependencies: %w", err)
	}
	defer rows.Close()

	var deps []*ComponentRun
	for rows.Next() {
		var dep ComponentRun
		var startNs, endNs int64
		if err := rows.Scan(&dep.ID, &dep.ComponentName, &startNs, &endNs); err != nil {
			return fmt.Errorf("failed to scan dependency: %w", err)
		}
		dep.StartTimestamp = time.Unix(0, startNs)
		dep.EndTimestamp = time.Unix(0, endNs)
		deps = append(deps, &dep)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating dependencies: %w", err)
	}
	run.Dependencies = deps
	return nil
}

func (s *SQLiteLineageStore) runPointers(ctx context.Context, table string, runID int64) ([]*IOPointer, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT p.name, p.pointer_type FROM `+table+` j
		 JOIN io_pointers p ON p.name = j.pointer_name
		 WHERE j.run_id = ?
		 ORDER BY p.name`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", table, err)
	}
	defer rows.Close()

	var pointers []*IOPointer
	for rows.Next() {
		var p IOPointer
		var ptype string
		if err := rows.Scan(&p.Name, &ptype); err != nil {
			return nil, fmt.Errorf("failed to scan pointer: %w", err)
		}
		p.PointerType = PointerType(ptype)
		pointers = append(pointers, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pointers: %w", err)
	}
	return pointers, nil
}

// RunsProducing returns every committed run whose outputs intersect names.
func (s *SQLiteLineageStore) RunsProducing(ctx context.Context, names []string) ([]*ComponentRun, error) {
	if len(names) == 0 {
		return nil, nil
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(names)), ",")
	args := make([]any, len(names))
	for i, n := range names {
		args[i] = n
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT r.id, r.component_name, r.start_ts, r.end_ts
		 FROM component_runs r
		 JOIN run_outputs o ON o.run_id = r.id
		 WHERE o.pointer_name IN (`+placeholders+`)
		 ORDER BY r.id`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query producing runs: %w", err)
	}
	defer rows.Close()

	var runs []*ComponentRun
	for rows.Next() {
		var run ComponentRun
		var startNs, endNs int64
		if err := rows.Scan(&run.ID, &run.ComponentName, &startNs, &endNs); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartTimestamp = time.Unix(0, startNs)
		run.EndTimestamp = time.Unix(0, endNs)
		runs = append(runs, &run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating runs: %w", err)
	}
	return runs, nil
}

// LatestRunProducing returns the most recently committed producer of name.
func (s *SQLiteLineageStore) LatestRunProducing(ctx context.Context, name string) (*ComponentRun, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT r.id FROM component_runs r
		 JOIN run_outputs o ON o.run_id = r.id
		 WHERE o.pointer_name = ?
		 ORDER BY r.id DESC LIMIT 1`, name).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artifact %q: %w", name, ErrNoProducingRun)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find producing run: %w", err)
	}
	return s.GetComponentRun(ctx, id)
}

// GetHistory returns the component's runs newest first. limit <= 0 is unlimited.
func (s *SQLiteLineageStore) GetHistory(ctx context.Context, componentName string, limit int) ([]*ComponentRun, error) {
	query := `SELECT id FROM component_runs WHERE component_name = ?
		 ORDER BY start_ts DESC, id DESC`
	args := []any{componentName}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan run id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating history: %w", err)
	}

	runs := make([]*ComponentRun, 0, len(ids))
	for _, id := range ids {
		run, err := s.GetComponentRun(ctx, id)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

// ComponentsWithOwner returns all components registered to the owner.
func (s *SQLiteLineageStore) ComponentsWithOwner(ctx context.Context, owner string) ([]*Component, error) {
	return s.queryComponents(ctx,
		`SELECT name, description, owner FROM components WHERE owner = ? ORDER BY name`, owner)
}

// ComponentsWithTag returns all components carrying the tag.
func (s *SQLiteLineageStore) ComponentsWithTag(ctx context.Context, tagName string) ([]*Component, error) {
	return s.queryComponents(ctx,
		`SELECT c.name, c.description, c.owner FROM components c
		 JOIN component_tags ct ON ct.component_name = c.name
		 WHERE ct.tag_name = ? ORDER BY c.name`, tagName)
}

func (s *SQLiteLineageStore) queryComponents(ctx context.Context, query string, args ...any) ([]*Component, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer rows.Close()

	components := make([]*Component, 0)
	for rows.Next() {
		var c Component
		if err := rows.Scan(&c.Name, &c.Description, &c.Owner); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		components = append(components, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating components: %w", err)
	}

	for _, c := range components {
		tags, err := s.componentTags(ctx, c.Name)
		if err != nil {
			return nil, err
		}
		c.Tags = tags
	}
	return components, nil
}

func (s *SQLiteLineageStore) componentTags(ctx context.Context, componentName string) ([]*Tag, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT tag_name FROM component_tags WHERE component_name = ? ORDER BY tag_name`,
		componentName)
	if err != nil {
		return nil, fmt.Errorf("failed to load tags: %w", err)
	}
	defer rows.Close()

	var tags []*Tag
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan tag: %w", err)
		}
		tags = append(tags, &Tag{Name: name})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating tags: %w", err)
	}
	return tags, nil
}

// CreateOutputIDs generates count fresh endpoint identifiers past the
// current maximum numeric endpoint name. The block is contiguous.
func (s *SQLiteLineageStore) CreateOutputIDs(ctx context.Context, count int) ([]string, error) {
	if count <= 0 {
		return nil, nil
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT name FROM io_pointers WHERE pointer_type = ?`, string(PointerTypeEndpoint))
	if err != nil {
		return nil, fmt.Errorf("failed to query endpoint pointers: %w", err)
	}
	defer rows.Close()

	next := int64(0)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan pointer name: %w", err)
		}
		n, err := strconv.ParseInt(name, 10, 64)
		if err != nil {
			s.logger.Warn("skipping non-numeric endpoint pointer name", "pointer", name)
			continue
		}
		if n+1 > next {
			next = n + 1
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating pointer names: %w", err)
	}

	ids := make([]string, 0, count)
	for i := int64(0); i < int64(count); i++ {
		ids = append(ids, strconv.FormatInt(next+i, 10))
	}
	return ids, nil
}

// ComponentCount returns the total number of registered components.
func (s *SQLiteLineageStore) ComponentCount(ctx context.Context) (int64, error) {
	return s.count(ctx, "components")
}

// RunCount returns the total number of committed runs.
func (s *SQLiteLineageStore) RunCount(ctx context.Context) (int64, error) {
	return s.count(ctx, "component_runs")
}

// PointerCount returns the total number of IO pointers.
func (s *SQLiteLineageStore) PointerCount(ctx context.Context) (int64, error) {
	return s.count(ctx, "io_pointers")
}

func (s *SQLiteLineageStore) count(ctx context.Context, table string) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM `+table).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count %s: %w", table, err)
	}
	return count, nil
}

// DeleteComponent removes a component and its tag associations.
// Runs are preserved unless deleteRuns is set.
func (s *SQLiteLineageStore) DeleteComponent(ctx context.Context, name string, deleteRuns bool) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var runCount int64
	err = tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM component_runs WHERE component_name = ?`, name).Scan(&runCount)
	if err != nil {
		return fmt.Errorf("failed to count runs: %w", err)
	}
	if runCount > 0 {
		if !deleteRuns {
			return fmt.Errorf("component %q: %w", name, ErrComponentHasRuns)
		}
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM component_runs WHERE component_name = ?`, name); err != nil {
			return fmt.Errorf("failed to delete runs: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM components WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete component: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check component delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("component %q: %w", name, ErrComponentNotFound)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}

	s.logger.Info("deleted component", "component", name, "deleted_runs", runCount)
	return nil
}

// DeleteComponentRun removes a run and its associations.
func (s *SQLiteLineageStore) DeleteComponentRun(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM component_runs WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check run delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("run %d: %w", id, ErrRunNotFound)
	}
	s.logger.Info("deleted component run", "run_id", id)
	return nil
}

// DeleteIOPointer removes a pointer and any run associations referencing it.
func (s *SQLiteLineageStore) DeleteIOPointer(ctx context.Context, name string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM io_pointers WHERE name = ?`, name)
	if err != nil {
		return fmt.Errorf("failed to delete io pointer: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check pointer delete: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("io pointer %q: %w", name, ErrPointerNotFound)
	}
	s.logger.Info("deleted io pointer", "pointer", name)
	return nil
}

// Close releases database resources.
func (s *SQLiteLineageStore) Close() error {
	return s.db.Close()
}

func dedupeStrings(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
