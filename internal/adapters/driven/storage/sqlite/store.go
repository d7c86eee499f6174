package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	sqlite "modernc.org/sqlite"

	"github.com/docuchat-labs/docuchat/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/docuchat-labs/docuchat/internal/core/domain"
	"github.com/docuchat-labs/docuchat/internal/logger"
)

// DefaultEmbeddingDimensions is used when the caller does not specify a
// dimensionality.
const DefaultEmbeddingDimensions = 384

// defaultOpTimeout bounds each logical operation. Operations that exceed
// it surface domain.ErrStorageTimeout instead of hanging.
const defaultOpTimeout = 5 * time.Second

// vectorFunctionName is the scalar function backing in-database ranking.
const vectorFunctionName = "vec_cosine_similarity"

// SchemaInfo reports the outcome of schema provisioning. It distinguishes
// "store degraded but usable" from "operation failed": provisioning
// failures of the optional vector layer are recorded here, never returned
// as errors.
type SchemaInfo struct {
	// Path is the database file location.
	Path string

	// Dimensions is the effective embedding width.
	Dimensions int

	// VectorTable is true when the embedding table is queryable.
	// Without it, embedding insertion and similarity search return
	// domain.ErrVectorSearchUnavailable.
	VectorTable bool

	// Accelerated is true when cosine ranking runs inside SQLite.
	// When false (and VectorTable is true), search falls back to
	// ranking in Go.
	Accelerated bool

	// Degradation holds the reason the store is degraded, if any.
	Degradation string
}

// Store is the SQLite-backed document/vector store. It holds no open
// connection: every operation acquires a short-lived handle, so the
// store is safe for concurrent use by independent callers.
type Store struct {
	path             string
	dims             int
	timeout          time.Duration
	defaultThreshold float64
	vectorTable      bool
	accelerated      bool
	degradation      string
}

// Option configures a Store.
type Option func(*Store)

// WithDefaultThreshold sets the similarity threshold applied when a
// query carries no override.
func WithDefaultThreshold(v float64) Option {
	return func(s *Store) { s.defaultThreshold = v }
}

// WithOpTimeout sets the per-operation deadline.
func WithOpTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// Open creates or opens the store at path and guarantees the schema
// exists. It is idempotent: re-running against an already-initialised
// store is a no-op.
//
// The baseline tables are mandatory; the vector table is provisioned
// fail-open. Any failure to enable acceleration or create the vector
// table is logged and recorded on the returned Store's SchemaInfo -
// ingestion is never blocked by an optional-acceleration failure.
func Open(path string, dimensions int, opts ...Option) (*Store, error) {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}

	s := &Store{
		path:             path,
		dims:             dimensions,
		timeout:          defaultOpTimeout,
		defaultThreshold: domain.DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := ensureWritable(path); err != nil {
		return nil, err
	}

	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Probe checks whether the store at path is initialised, healing it when
// it is not. Missing baseline tables trigger full schema setup; a present
// baseline with a missing or unqueryable vector table triggers setup
// again (which recreates only what is absent).
func Probe(path string, dimensions int, opts ...Option) (*Store, error) {
	if dimensions <= 0 {
		dimensions = DefaultEmbeddingDimensions
	}

	s := &Store{
		path:             path,
		dims:             dimensions,
		timeout:          defaultOpTimeout,
		defaultThreshold: domain.DefaultSimilarityThreshold,
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := ensureWritable(path); err != nil {
		return nil, err
	}

	healthy, err := s.probeTables(context.Background())
	if err != nil {
		return nil, err
	}
	if !healthy {
		logger.Info("store at %s incomplete, re-running schema setup", path)
	}
	// ensureSchema is idempotent, so running it on a healthy store is
	// harmless and keeps the capability flags current.
	if err := s.ensureSchema(context.Background()); err != nil {
		return nil, err
	}

	return s, nil
}

// Info returns the provisioning outcome.
func (s *Store) Info() SchemaInfo {
	return SchemaInfo{
		Path:        s.path,
		Dimensions:  s.dims,
		VectorTable: s.vectorTable,
		Accelerated: s.accelerated,
		Degradation: s.degradation,
	}
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Dimensions returns the effective embedding width.
func (s *Store) Dimensions() int {
	return s.dims
}

// ensureSchema runs the baseline migrations and provisions the vector
// layer fail-open.
func (s *Store) ensureSchema(ctx context.Context) error {
	err := s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		return migrate(ctx, db, migrations.FS)
	})
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	// Everything below is optional acceleration. Failures degrade the
	// store instead of failing the caller.
	if err := registerVectorFunction(); err != nil {
		s.accelerated = false
		s.degradation = fmt.Sprintf("registering %s: %v", vectorFunctionName, err)
		logger.Warn("vector acceleration unavailable: %s", s.degradation)
	} else {
		s.accelerated = true
	}

	err = s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		_, err := db.ExecContext(ctx, `
			CREATE TABLE IF NOT EXISTS vss_embeddings (
				rowid INTEGER PRIMARY KEY,
				embedding BLOB NOT NULL
			)
		`)
		return err
	})
	if err != nil {
		s.vectorTable = false
		s.accelerated = false
		s.degradation = fmt.Sprintf("creating vector table: %v", err)
		logger.Warn("vector search unavailable, continuing without it: %s", s.degradation)
		return nil
	}
	s.vectorTable = true

	return nil
}

// probeTables reports whether both the baseline and the vector table are
// present and queryable.
func (s *Store) probeTables(ctx context.Context) (bool, error) {
	var healthy bool
	err := s.withConn(ctx, func(ctx context.Context, db *sql.DB) error {
		var name string
		err := db.QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = 'documents'`,
		).Scan(&name)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("checking baseline tables: %w", err)
		}

		// Baseline is present; the vector table must also answer a
		// query, not merely appear in sqlite_master.
		rows, err := db.QueryContext(ctx, `SELECT rowid, embedding FROM vss_embeddings LIMIT 1`)
		if err != nil {
			logger.Info("vector table missing or unqueryable: %v", err)
			return nil
		}
		defer rows.Close()
		if err := rows.Err(); err != nil {
			return nil
		}

		healthy = true
		return nil
	})
	return healthy, err
}

// withConn runs fn with a freshly acquired handle bounded by the
// per-operation timeout. The handle is released on every exit path.
func (s *Store) withConn(ctx context.Context, fn func(ctx context.Context, db *sql.DB) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	db, err := sql.Open("sqlite", s.dsn())
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer db.Close()

	if err := fn(ctx, db); err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return fmt.Errorf("%w: %v", domain.ErrStorageTimeout, err)
		}
		return err
	}
	return nil
}

// dsn builds the connection string. WAL keeps readers unblocked during
// writes; foreign keys must be enabled per connection, so both travel in
// the DSN rather than a one-off PRAGMA exec.
func (s *Store) dsn() string {
	return s.path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
}

// ensureWritable creates the parent directory if missing and verifies the
// database file can be written before any transaction starts.
func ensureWritable(path string) error {
	dir := filepath.Dir(path)
	if dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			if os.IsPermission(err) {
				return fmt.Errorf("%w: directory %s", domain.ErrPermissionDenied, dir)
			}
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0600)
	if err != nil {
		if os.IsPermission(err) {
			return fmt.Errorf("%w: %s", domain.ErrPermissionDenied, path)
		}
		return fmt.Errorf("checking database path: %w", err)
	}
	return f.Close()
}

// migrate runs all pending baseline migrations.
func migrate(ctx context.Context, db *sql.DB, fsys embed.FS) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var currentVersion int
	row := db.QueryRowContext(ctx, "SELECT COALESCE(MAX(version), 0) FROM schema_migrations")
	if err := row.Scan(&currentVersion); err != nil {
		return fmt.Errorf("getting current version: %w", err)
	}

	entries, err := fs.ReadDir(fsys, ".")
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}

	var upFiles []string
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".up.sql") {
			upFiles = append(upFiles, name)
		}
	}
	sort.Strings(upFiles)

	for _, name := range upFiles {
		var version int
		if _, err := fmt.Sscanf(name, "%d_", &version); err != nil {
			continue // Skip files that don't match pattern
		}

		if version <= currentVersion {
			continue // Already applied
		}

		content, err := fs.ReadFile(fsys, name)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", name, err)
		}

		if _, err := db.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("executing migration %s: %w", name, err)
		}

		if _, err := db.ExecContext(ctx,
			"INSERT INTO schema_migrations (version) VALUES (?)", version); err != nil {
			return fmt.Errorf("recording migration %s: %w", name, err)
		}
	}

	return nil
}

// ==================== Vector Function Registration ====================

var (
	vectorFnOnce sync.Once
	vectorFnErr  error
)

// registerVectorFunction makes vec_cosine_similarity available to every
// connection opened afterwards. The driver keeps the registration
// process-wide, so each short-lived connection sees it without
// re-enabling.
func registerVectorFunction() error {
	vectorFnOnce.Do(func() {
		vectorFnErr = sqlite.RegisterDeterministicScalarFunction(
			vectorFunctionName, 2, vecCosineSimilarityFn,
		)
	})
	return vectorFnErr
}
