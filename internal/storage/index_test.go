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
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowireframe/internal/ast"
	"gowireframe/internal/log"
	"gowireframe/internal/semantic"
)

var sample = strings.Join([]string{
	"@scene: login",
	"@title: Sign in",
	"+-- Login ---------------+",
	"| #email                 |",
	"|      [ Sign in ]       |",
	"| \"Forgot password?\"     |",
	"+------------------------+",
	"@scene: home",
	"+-- Home ----------------+",
	"| Welcome back           |",
	"+------------------------+",
}, "\n")

func parseSample(t *testing.T) ast.AST {
	t.Helper()
	a, ds := semantic.New(semantic.Options{Logger: log.Discard()}).Parse(sample)
	require.False(t, ds.HasErrors(), "%v", ds)
	require.Len(t, a.Scenes, 2)
	return a
}

func openTemp(t *testing.T) *Index {
	t.Helper()
	ix, err := OpenIndex(context.Background(), Options{Path: t.TempDir(), Logger: log.Discard()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = ix.Close() })
	return ix
}

func TestOpenIndexCreatesSchema(t *testing.T) {
	ix := openTemp(t)
	assert.Equal(t, DriverSQLite, ix.Driver())
	v, err := ix.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, schemaVersion, v)
	require.NoError(t, ix.Verify(context.Background()))
}

func TestIndexAndSearch(t *testing.T) {
	ctx := context.Background()
	ix := openTemp(t)
	a := parseSample(t)

	rev, err := ix.IndexFile(ctx, "login.wf", &a)
	require.NoError(t, err)
	assert.Equal(t, 2, rev.Scenes)
	assert.Equal(t, 6, rev.Documents)

	res, err := ix.Search(ctx, Query{Text: "sign"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "button", res[0].Type)
	assert.Equal(t, "sign-in", res[0].ElementID)
	assert.Equal(t, "login", res[0].SceneID)
	assert.Equal(t, 4, res[0].Line)

	res, err = ix.Search(ctx, Query{Types: []string{"input", "link"}})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "email", res[0].Text)
	assert.Equal(t, "Forgot password?", res[1].Text)

	res, err = ix.Search(ctx, Query{Scene: "home"})
	require.NoError(t, err)
	require.Len(t, res, 2)
	assert.Equal(t, "box", res[0].Type)
	assert.Equal(t, "Welcome back", res[1].Text)

	res, err = ix.Search(ctx, Query{Text: "welcome", Scene: "login"})
	require.NoError(t, err)
	assert.Empty(t, res)
}

func TestReindexReplacesRows(t *testing.T) {
	ctx := context.Background()
	ix := openTemp(t)
	a := parseSample(t)

	first, err := ix.IndexFile(ctx, "login.wf", &a)
	require.NoError(t, err)
	second, err := ix.IndexFile(ctx, "login.wf", &a)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	res, err := ix.Search(ctx, Query{Text: "welcome"})
	require.NoError(t, err)
	assert.Len(t, res, 1)

	files, err := ix.Files(ctx)
	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Equal(t, second.ID.String(), files[0].Revision)
	assert.Equal(t, 2, files[0].Scenes)
}

func TestLoadSceneRoundTrip(t *testing.T) {
	ctx := context.Background()
	ix := openTemp(t)
	a := parseSample(t)
	_, err := ix.IndexFile(ctx, "login.wf", &a)
	require.NoError(t, err)

	s, err := ix.LoadScene(ctx, "login.wf", "login")
	require.NoError(t, err)
	assert.Equal(t, a.Scenes[0], s)

	all, err := ix.LoadFile(ctx, "login.wf")
	require.NoError(t, err)
	assert.Equal(t, a, all)

	_, err = ix.LoadScene(ctx, "login.wf", "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = ix.LoadFile(ctx, "other.wf")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveAndRebuild(t *testing.T) {
	ctx := context.Background()
	ix := openTemp(t)
	a := parseSample(t)
	_, err := ix.IndexFile(ctx, "a.wf", &a)
	require.NoError(t, err)
	_, err = ix.IndexFile(ctx, "b.wf", &a)
	require.NoError(t, err)

	require.NoError(t, ix.RemoveFile(ctx, "a.wf"))
	res, err := ix.Search(ctx, Query{Text: "welcome"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, "b.wf", res[0].Path)

	require.NoError(t, ix.Rebuild(ctx))
	res, err = ix.Search(ctx, Query{})
	require.NoError(t, err)
	assert.Empty(t, res)
	files, err := ix.Files(ctx)
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestMigrationFromV1(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DefaultFileName)
	db, err := sql.Open("sqlite", fmt.Sprintf("file:%s", filepath.ToSlash(path)))
	require.NoError(t, err)
	stmts := []string{
		`CREATE TABLE version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
	}
	for _, q := range stmts {
		_, err := db.Exec(q)
		require.NoError(t, err)
	}
	require.NoError(t, db.Close())

	ix, err := OpenIndex(context.Background(), Options{Path: path, Logger: log.Discard()})
	require.NoError(t, err)
	defer ix.Close()
	v, err := ix.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, v)

	var n int
	require.NoError(t, ix.db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name='idx_documents_element'`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestDialects(t *testing.T) {
	_, err := dialectFor("mysql")
	assert.Error(t, err)

	d, err := dialectFor("postgres")
	require.NoError(t, err)
	assert.Equal(t, DriverPostgres, d.name())
	assert.Equal(t, "SELECT a FROM t WHERE x=$1 AND y IN ($2,$3)", d.rebind("SELECT a FROM t WHERE x=? AND y IN ("+placeholders(2)+")"))

	_, err = OpenIndex(context.Background(), Options{Driver: DriverPostgres})
	assert.Error(t, err)

	db, err := openPostgres(Options{DSN: "postgres://wf@localhost:5432/wireframes", Password: "secret"})
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestResolvePath(t *testing.T) {
	dir := t.TempDir()
	assert.Equal(t, filepath.Join(dir, DefaultFileName), ResolvePath(dir))
	assert.Equal(t, filepath.Join(dir, "x.db"), ResolvePath(filepath.Join(dir, "x.db")))
}
