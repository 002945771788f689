/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package storage

import (
	"fmt"
	"strconv"
	"strings"
)

// Driver names accepted by Options.Driver.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "pgx"
)

// dialect hides the SQL differences between the two backends.
type dialect interface {
	name() string
	rebind(q string) string
	schema() []string
	// searchClause returns the FROM/WHERE fragment for a full-text match on one bound argument.
	searchClause() string
	now() string
}

func dialectFor(driver string) (dialect, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case "", DriverSQLite, "sqlite3":
		return sqliteDialect{}, nil
	case DriverPostgres, "postgres", "postgresql":
		return postgresDialect{}, nil
	default:
		return nil, fmt.Errorf("unknown index driver %q", driver)
	}
}

type sqliteDialect struct{}

func (sqliteDialect) name() string           { return DriverSQLite }
func (sqliteDialect) rebind(q string) string { return q }
func (sqliteDialect) now() string            { return "CURRENT_TIMESTAMP" }

func (sqliteDialect) searchClause() string {
	return "FROM fts_documents JOIN documents d ON fts_documents.rowid = d.doc_id WHERE fts_documents MATCH ?"
}

func (sqliteDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS files (
			path       TEXT PRIMARY KEY,
			revision   TEXT NOT NULL,
			scenes     INTEGER NOT NULL,
			indexed_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scenes (
			path       TEXT    NOT NULL,
			scene_id   TEXT    NOT NULL,
			title      TEXT    NOT NULL,
			transition TEXT    NOT NULL,
			line       INTEGER NOT NULL,
			ast_blob   BLOB    NOT NULL,
			revision   TEXT    NOT NULL,
			PRIMARY KEY(path, scene_id)
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id     INTEGER PRIMARY KEY,
			path       TEXT    NOT NULL,
			scene_id   TEXT    NOT NULL,
			element_id TEXT,
			type       TEXT    NOT NULL,
			line       INTEGER NOT NULL,
			col        INTEGER NOT NULL,
			text       TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`,
		`CREATE VIRTUAL TABLE IF NOT EXISTS fts_documents USING fts5(
			text,
			content='',
			tokenize = 'unicode61'
		);`,
		`CREATE TRIGGER IF NOT EXISTS documents_ai AFTER INSERT ON documents BEGIN
			INSERT INTO fts_documents(rowid, text) VALUES (new.doc_id, new.text);
		END;`,
		`CREATE TRIGGER IF NOT EXISTS documents_ad AFTER DELETE ON documents BEGIN
			INSERT INTO fts_documents(fts_documents, rowid, text) VALUES ('delete', old.doc_id, old.text);
		END;`,
	}
}

type postgresDialect struct{}

func (postgresDialect) name() string { return DriverPostgres }
func (postgresDialect) now() string  { return "now()" }

// rebind turns ? placeholders into $1..$n.
func (postgresDialect) rebind(q string) string {
	var sb strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			sb.WriteByte('$')
			sb.WriteString(strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

func (postgresDialect) searchClause() string {
	return "FROM documents d WHERE to_tsvector('simple', coalesce(d.text, '')) @@ plainto_tsquery('simple', ?)"
}

func (postgresDialect) schema() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS files (
			path       TEXT PRIMARY KEY,
			revision   TEXT NOT NULL,
			scenes     INTEGER NOT NULL,
			indexed_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS scenes (
			path       TEXT    NOT NULL,
			scene_id   TEXT    NOT NULL,
			title      TEXT    NOT NULL,
			transition TEXT    NOT NULL,
			line       INTEGER NOT NULL,
			ast_blob   BYTEA   NOT NULL,
			revision   TEXT    NOT NULL,
			PRIMARY KEY(path, scene_id)
		);`,
		`CREATE TABLE IF NOT EXISTS documents (
			doc_id     BIGSERIAL PRIMARY KEY,
			path       TEXT    NOT NULL,
			scene_id   TEXT    NOT NULL,
			element_id TEXT,
			type       TEXT    NOT NULL,
			line       INTEGER NOT NULL,
			col        INTEGER NOT NULL,
			text       TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_path ON documents(path);`,
		`CREATE INDEX IF NOT EXISTS idx_documents_fts ON documents USING GIN (to_tsvector('simple', coalesce(text, '')));`,
	}
}
