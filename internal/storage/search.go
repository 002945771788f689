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
	"strings"

	"gowireframe/internal/ast"
)

// ErrNotFound is returned by LoadScene when no snapshot matches.
var ErrNotFound = errors.New("storage: not found")

// Query describes a search request.
// Text uses the backend's full-text syntax (FTS5 on SQLite, plain terms on Postgres); when empty, only the
// filters apply. Types restricts element kinds such as button, link or text.
// Limit/Offset implement pagination; Limit defaults to 100.
type Query struct {
	Text   string
	Scene  string
	Path   string
	Types  []string
	Limit  int
	Offset int
}

// Result is one matching element. Line and Column are 0-based grid positions.
type Result struct {
	DocID     int64  `json:"doc_id"`
	Path      string `json:"path"`
	SceneID   string `json:"scene"`
	ElementID string `json:"element_id,omitempty"`
	Type      string `json:"type"`
	Line      int    `json:"line"`
	Column    int    `json:"column"`
	Text      string `json:"text"`
}

// Search performs full-text search with optional filters over the index.
func (ix *Index) Search(ctx context.Context, q Query) ([]Result, error) {
	var args []any
	var sb strings.Builder
	sb.WriteString("SELECT d.doc_id, d.path, d.scene_id, COALESCE(d.element_id,''), d.type, d.line, d.col, COALESCE(d.text,'')\n")
	if strings.TrimSpace(q.Text) != "" {
		sb.WriteString(ix.d.searchClause() + "\n")
		args = append(args, q.Text)
	} else {
		sb.WriteString("FROM documents d WHERE 1=1\n")
	}
	if len(q.Types) > 0 {
		sb.WriteString(" AND d.type IN (" + placeholders(len(q.Types)) + ")\n")
		for _, t := range q.Types {
			args = append(args, strings.ToLower(strings.TrimSpace(t)))
		}
	}
	if s := strings.TrimSpace(q.Scene); s != "" {
		sb.WriteString(" AND d.scene_id = ?\n")
		args = append(args, s)
	}
	if s := strings.TrimSpace(q.Path); s != "" {
		sb.WriteString(" AND d.path = ?\n")
		args = append(args, s)
	}
	limit := q.Limit
	if limit <= 0 {
		limit = 100
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}
	sb.WriteString("ORDER BY d.path, d.line, d.col, d.doc_id\n")
	sb.WriteString("LIMIT ? OFFSET ?")
	args = append(args, limit, offset)

	rows, err := ix.db.QueryContext(ctx, ix.d.rebind(sb.String()), args...)
	if err != nil {
		return nil, fmt.Errorf("search query: %w", err)
	}
	defer rows.Close()
	var out []Result
	for rows.Next() {
		var r Result
		if err := rows.Scan(&r.DocID, &r.Path, &r.SceneID, &r.ElementID, &r.Type, &r.Line, &r.Column, &r.Text); err != nil {
			return nil, fmt.Errorf("scan row: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// LoadScene decodes the stored snapshot of one scene.
func (ix *Index) LoadScene(ctx context.Context, path, sceneID string) (ast.Scene, error) {
	var blob []byte
	err := ix.db.QueryRowContext(ctx, ix.d.rebind(`SELECT ast_blob FROM scenes WHERE path=? AND scene_id=?`), path, sceneID).Scan(&blob)
	if errors.Is(err, sql.ErrNoRows) {
		return ast.Scene{}, fmt.Errorf("scene %s in %s: %w", sceneID, path, ErrNotFound)
	}
	if err != nil {
		return ast.Scene{}, fmt.Errorf("load scene: %w", err)
	}
	return ast.UnmarshalScene(blob)
}

// LoadFile rebuilds the AST of an indexed file from its snapshots, in source order.
func (ix *Index) LoadFile(ctx context.Context, path string) (ast.AST, error) {
	rows, err := ix.db.QueryContext(ctx, ix.d.rebind(`SELECT ast_blob FROM scenes WHERE path=? ORDER BY line`), path)
	if err != nil {
		return ast.AST{}, fmt.Errorf("load file: %w", err)
	}
	defer rows.Close()
	var a ast.AST
	for rows.Next() {
		var blob []byte
		if err := rows.Scan(&blob); err != nil {
			return ast.AST{}, fmt.Errorf("scan row: %w", err)
		}
		s, err := ast.UnmarshalScene(blob)
		if err != nil {
			return ast.AST{}, err
		}
		a.Scenes = append(a.Scenes, s)
	}
	if err := rows.Err(); err != nil {
		return ast.AST{}, err
	}
	if len(a.Scenes) == 0 {
		return ast.AST{}, fmt.Errorf("file %s: %w", path, ErrNotFound)
	}
	return a, nil
}

func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
