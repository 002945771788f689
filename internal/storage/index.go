/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	applog "gowireframe/internal/log"
	"gowireframe/internal/version"

	// Pure-Go SQLite driver (CGO-free)
	_ "modernc.org/sqlite"
)

const (
	// DefaultFileName is the SQLite index file created when Options.Path names a directory.
	DefaultFileName = "wireframes.sqlite"

	// schemaVersion tracks the index schema. Bump it with a migration step.
	schemaVersion = 2
)

// Options selects and configures the index backend.
type Options struct {
	// Driver is DriverSQLite (default) or DriverPostgres.
	Driver string
	// Path is the SQLite file, or a directory that receives DefaultFileName.
	Path string
	// DSN is the Postgres connection string.
	DSN string
	// Password overrides the DSN password; it is usually read from the keyring.
	Password string
	Logger   *slog.Logger
}

// Index is an open wireframe index. It is safe for concurrent use.
type Index struct {
	db  *sql.DB
	d   dialect
	log *slog.Logger
}

// OpenIndex opens (creating when needed) the index described by opts and brings its schema up to date.
func OpenIndex(ctx context.Context, opts Options) (*Index, error) {
	d, err := dialectFor(opts.Driver)
	if err != nil {
		return nil, err
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("storage")
	}
	l = applog.WithOperation(l, "index_open").With(slog.String("driver", d.name()))

	var db *sql.DB
	switch d.(type) {
	case postgresDialect:
		db, err = openPostgres(opts)
	default:
		db, err = openSQLite(opts, l)
	}
	if err != nil {
		l.Error("open failed", slog.Any("err", err))
		return nil, err
	}
	ix := &Index{db: db, d: d, log: l}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping index: %w", err)
	}
	if err := ix.ensureMetaAndVersion(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure meta/version failed", slog.Any("err", err))
		return nil, err
	}
	if err := ix.ensureSchema(ctx); err != nil {
		_ = db.Close()
		l.Error("ensure index schema failed", slog.Any("err", err))
		return nil, err
	}
	if err := ix.runMigrations(ctx); err != nil {
		_ = db.Close()
		l.Error("run migrations failed", slog.Any("err", err))
		return nil, err
	}
	l.Debug("index ready")
	return ix, nil
}

// ResolvePath returns the SQLite file for p, appending DefaultFileName when p is a directory
// or has no extension.
func ResolvePath(p string) string {
	if st, err := os.Stat(p); err == nil && st.IsDir() {
		return filepath.Join(p, DefaultFileName)
	}
	if filepath.Ext(p) == "" {
		return filepath.Join(p, DefaultFileName)
	}
	return p
}

func openSQLite(opts Options, l *slog.Logger) (*sql.DB, error) {
	if strings.TrimSpace(opts.Path) == "" {
		return nil, errors.New("index path is required")
	}
	path := ResolvePath(opts.Path)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create index dir: %w", err)
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// A single writer keeps SQLite free of lock contention.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys=ON;"); err != nil {
		l.Warn("enable foreign_keys failed", slog.Any("err", err))
	}
	l.Debug("sqlite opened", slog.String("path", path))
	return db, nil
}

func openPostgres(opts Options) (*sql.DB, error) {
	if strings.TrimSpace(opts.DSN) == "" {
		return nil, errors.New("index dsn is required for postgres")
	}
	cfg, err := pgx.ParseConfig(opts.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	if opts.Password != "" {
		cfg.Password = opts.Password
	}
	return stdlib.OpenDB(*cfg), nil
}

// Close releases the database handle.
func (ix *Index) Close() error { return ix.db.Close() }

// Driver reports the backend in use.
func (ix *Index) Driver() string { return ix.d.name() }

func (ix *Index) exec(ctx context.Context, q string, args ...any) (sql.Result, error) {
	return ix.db.ExecContext(ctx, ix.d.rebind(q), args...)
}

func (ix *Index) ensureMetaAndVersion(ctx context.Context) error {
	ddl := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key   TEXT PRIMARY KEY,
			value TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS version (
			id          INTEGER PRIMARY KEY CHECK(id=1),
			schema      INTEGER NOT NULL,
			app         TEXT,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		);`,
	}
	for _, q := range ddl {
		if _, err := ix.exec(ctx, q); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	now := time.Now().UTC().Format(time.RFC3339)
	appv := version.String()
	var cur int
	err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if _, err := ix.exec(ctx, `INSERT INTO version (id, schema, app, created_at, updated_at) VALUES(1, ?, ?, ?, ?)`, schemaVersion, appv, now, now); err != nil {
			return fmt.Errorf("insert version: %w", err)
		}
	case err != nil:
		return fmt.Errorf("read version: %w", err)
	default:
		// Keep the stored schema so migrations can run from it.
		if _, err := ix.exec(ctx, `UPDATE version SET app=?, updated_at=? WHERE id=1`, appv, now); err != nil {
			return fmt.Errorf("update version: %w", err)
		}
	}
	return nil
}

func (ix *Index) ensureSchema(ctx context.Context) error {
	for _, q := range ix.d.schema() {
		if _, err := ix.exec(ctx, q); err != nil {
			return fmt.Errorf("ensure index schema: %w", err)
		}
	}
	return nil
}

// SchemaVersion returns the schema version stored in the index.
func (ix *Index) SchemaVersion(ctx context.Context) (int, error) {
	var cur int
	if err := ix.db.QueryRowContext(ctx, `SELECT schema FROM version WHERE id=1`).Scan(&cur); err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return cur, nil
}

// migrations maps a target schema version to the statements that reach it.
var migrations = map[int][]string{
	2: {
		`CREATE INDEX IF NOT EXISTS idx_documents_element ON documents(element_id);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_scene ON documents(path, scene_id);`,
	},
}

func (ix *Index) runMigrations(ctx context.Context) error {
	cur, err := ix.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	if cur > schemaVersion {
		ix.log.Warn("index schema is newer than this build", slog.Int("schema", cur), slog.Int("supported", schemaVersion))
		return nil
	}
	for cur < schemaVersion {
		next := cur + 1
		tx, err := ix.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", next, err)
		}
		for _, q := range migrations[next] {
			if _, err := tx.ExecContext(ctx, ix.d.rebind(q)); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("migration %d stmt failed: %w", next, err)
			}
		}
		if _, err := tx.ExecContext(ctx, ix.d.rebind(`UPDATE version SET schema=?, updated_at=? WHERE id=1`), next, time.Now().UTC().Format(time.RFC3339)); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d update version: %w", next, err)
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("migration %d commit: %w", next, err)
		}
		ix.log.Info("index migrated", slog.Int("schema", next))
		cur = next
	}
	if _, ok := ix.d.(sqliteDialect); ok {
		// best-effort; an empty FTS table may refuse to optimize
		_, _ = ix.exec(ctx, `INSERT INTO fts_documents(fts_documents) VALUES('optimize')`)
	}
	return nil
}

// Rebuild drops the derived tables and recreates an empty schema. Meta and version rows are kept.
func (ix *Index) Rebuild(ctx context.Context) error {
	drops := []string{
		"DROP TABLE IF EXISTS files;",
		"DROP TABLE IF EXISTS scenes;",
		"DROP TABLE IF EXISTS documents;",
	}
	if _, ok := ix.d.(sqliteDialect); ok {
		drops = append([]string{
			"DROP TRIGGER IF EXISTS documents_ai;",
			"DROP TRIGGER IF EXISTS documents_ad;",
		}, drops...)
		drops = append(drops, "DROP TABLE IF EXISTS fts_documents;")
	}
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	for _, q := range drops {
		if _, err := tx.ExecContext(ctx, q); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("drop schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("drop commit: %w", err)
	}
	if err := ix.ensureSchema(ctx); err != nil {
		return err
	}
	for _, q := range migrations[2] {
		if _, err := ix.exec(ctx, q); err != nil {
			return fmt.Errorf("recreate indexes: %w", err)
		}
	}
	ix.log.Info("index rebuilt")
	return nil
}

// Verify runs SQLite's quick_check. Postgres indexes always verify.
func (ix *Index) Verify(ctx context.Context) error {
	if _, ok := ix.d.(sqliteDialect); !ok {
		return nil
	}
	var chk string
	if err := ix.db.QueryRowContext(ctx, `PRAGMA quick_check;`).Scan(&chk); err != nil {
		return fmt.Errorf("quick_check: %w", err)
	}
	if !strings.EqualFold(strings.TrimSpace(chk), "ok") {
		return fmt.Errorf("index corrupt: %s", chk)
	}
	if _, err := ix.db.ExecContext(ctx, `SELECT 1 FROM documents LIMIT 1;`); err != nil {
		return fmt.Errorf("probe documents: %w", err)
	}
	return nil
}
