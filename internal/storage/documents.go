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
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"gowireframe/internal/ast"
)

// Revision describes one IndexFile call.
type Revision struct {
	ID        uuid.UUID `json:"id"`
	Path      string    `json:"path"`
	Scenes    int       `json:"scenes"`
	Documents int       `json:"documents"`
	IndexedAt time.Time `json:"indexed_at"`
}

// FileInfo is the stored summary of an indexed wireframe file.
type FileInfo struct {
	Path      string `json:"path"`
	Revision  string `json:"revision"`
	Scenes    int    `json:"scenes"`
	IndexedAt string `json:"indexed_at"`
}

type docRow struct {
	sceneID   string
	elementID sql.NullString
	typ       string
	line, col int
	text      string
}

func collectDocs(s ast.Scene) []docRow {
	var rows []docRow
	ast.Walk(s.Elements, func(e ast.Element) bool {
		txt := ast.SearchText(e)
		if txt == "" {
			return true
		}
		r, c := ast.Position(e)
		row := docRow{sceneID: s.ID, typ: e.Kind().String(), line: r, col: c, text: txt}
		if id := e.ElementID(); id != "" {
			row.elementID = sql.NullString{String: id, Valid: true}
		}
		rows = append(rows, row)
		return true
	})
	return rows
}

// IndexFile replaces everything stored for path with the scenes of a. All rows are written in one
// transaction, so readers see either the previous or the new revision.
func (ix *Index) IndexFile(ctx context.Context, path string, a *ast.AST) (Revision, error) {
	rev := Revision{ID: uuid.New(), Path: path, IndexedAt: time.Now().UTC()}
	if a == nil {
		return rev, fmt.Errorf("index %s: nil ast", path)
	}
	revID := rev.ID.String()

	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return rev, fmt.Errorf("begin tx: %w", err)
	}
	if err := ix.deleteTx(ctx, tx, path); err != nil {
		_ = tx.Rollback()
		return rev, err
	}
	insScene, err := tx.PrepareContext(ctx, ix.d.rebind(`INSERT INTO scenes(path, scene_id, title, transition, line, ast_blob, revision) VALUES(?,?,?,?,?,?,?)`))
	if err != nil {
		_ = tx.Rollback()
		return rev, fmt.Errorf("prepare scene insert: %w", err)
	}
	defer insScene.Close()
	insDoc, err := tx.PrepareContext(ctx, ix.d.rebind(`INSERT INTO documents(path, scene_id, element_id, type, line, col, text) VALUES(?,?,?,?,?,?,?)`))
	if err != nil {
		_ = tx.Rollback()
		return rev, fmt.Errorf("prepare document insert: %w", err)
	}
	defer insDoc.Close()

	for _, s := range a.Scenes {
		blob, err := ast.MarshalScene(s)
		if err != nil {
			_ = tx.Rollback()
			return rev, fmt.Errorf("encode scene %s: %w", s.ID, err)
		}
		if _, err := insScene.ExecContext(ctx, path, s.ID, s.Title, s.Transition, s.Pos.Row, blob, revID); err != nil {
			_ = tx.Rollback()
			return rev, fmt.Errorf("insert scene %s: %w", s.ID, err)
		}
		rev.Scenes++
		for _, d := range collectDocs(s) {
			if _, err := insDoc.ExecContext(ctx, path, d.sceneID, d.elementID, d.typ, d.line, d.col, d.text); err != nil {
				_ = tx.Rollback()
				return rev, fmt.Errorf("insert document: %w", err)
			}
			rev.Documents++
		}
	}
	if _, err := tx.ExecContext(ctx, ix.d.rebind(`INSERT INTO files(path, revision, scenes, indexed_at) VALUES(?,?,?,?)`),
		path, revID, rev.Scenes, rev.IndexedAt.Format(time.RFC3339)); err != nil {
		_ = tx.Rollback()
		return rev, fmt.Errorf("insert file: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return rev, fmt.Errorf("commit: %w", err)
	}
	ix.log.Debug("file indexed", slog.String("path", path), slog.String("revision", revID),
		slog.Int("scenes", rev.Scenes), slog.Int("documents", rev.Documents))
	return rev, nil
}

func (ix *Index) deleteTx(ctx context.Context, tx *sql.Tx, path string) error {
	for _, table := range []string{"documents", "scenes", "files"} {
		if _, err := tx.ExecContext(ctx, ix.d.rebind("DELETE FROM "+table+" WHERE path=?"), path); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// RemoveFile deletes every row stored for path.
func (ix *Index) RemoveFile(ctx context.Context, path string) error {
	tx, err := ix.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := ix.deleteTx(ctx, tx, path); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Files lists the indexed files ordered by path.
func (ix *Index) Files(ctx context.Context) ([]FileInfo, error) {
	rows, err := ix.db.QueryContext(ctx, `SELECT path, revision, scenes, indexed_at FROM files ORDER BY path`)
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()
	var out []FileInfo
	for rows.Next() {
		var f FileInfo
		if err := rows.Scan(&f.Path, &f.Revision, &f.Scenes, &f.IndexedAt); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, f)
	}
	return out, rows.Err()
}
