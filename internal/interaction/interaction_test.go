/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package interaction

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gowireframe/internal/ast"
	"gowireframe/internal/diag"
	"gowireframe/internal/geom"
)

const sampleHCL = `
element "sign-in" {
  properties = {
    primary = true
    width   = 120
    label   = "Go"
  }
  action "navigate" {
    to = "home"
  }
  action "track" {}
}

element "email" {
  action "validate" {
    pattern  = ".+@.+"
    required = true
  }
}
`

func TestParseBindings(t *testing.T) {
	bs, ds := Parse([]byte(sampleHCL), "ui.hcl")
	require.Empty(t, ds)
	require.Len(t, bs, 2)

	b := bs[0]
	assert.Equal(t, "sign-in", b.ElementID)
	assert.Equal(t, geom.P(1, 0), b.Pos)
	assert.Equal(t, map[string]any{"primary": true, "width": 120.0, "label": "Go"}, b.Properties)
	require.Len(t, b.Actions, 2)
	assert.Equal(t, "navigate", b.Actions[0].Kind)
	assert.Equal(t, map[string]any{"to": "home"}, b.Actions[0].Params)
	assert.Equal(t, "track", b.Actions[1].Kind)
	assert.Nil(t, b.Actions[1].Params)

	assert.Nil(t, bs[1].Properties)
	assert.Equal(t, map[string]any{"pattern": ".+@.+", "required": true}, bs[1].Actions[0].Params)
}

func TestParseSyntaxError(t *testing.T) {
	bs, ds := Parse([]byte("element \"x\" {\n  properties = {\n"), "bad.hcl")
	assert.Nil(t, bs)
	require.NotEmpty(t, ds)
	assert.Equal(t, diag.KindInvalidInteractionDSL, ds[0].Kind())
	assert.True(t, ds.HasErrors())
}

func TestParseRejectsNonScalarProperty(t *testing.T) {
	src := `
element "ok" {
  properties = { a = "b" }
}
element "bad" {
  properties = { list = [1, 2] }
}
`
	bs, ds := Parse([]byte(src), "mixed.hcl")
	require.Len(t, bs, 1)
	assert.Equal(t, "ok", bs[0].ElementID)
	require.Len(t, ds, 1)
	assert.Equal(t, diag.KindInvalidInteractionDSL, ds[0].Kind())
	assert.Equal(t, 5, ds[0].Pos.Row)
}

func TestParseUnknownBlock(t *testing.T) {
	_, ds := Parse([]byte("widget \"x\" {}\n"), "w.hcl")
	require.NotEmpty(t, ds)
	assert.Equal(t, diag.KindInvalidInteractionDSL, ds[0].Kind())
}

func tree() ast.AST {
	return ast.AST{Scenes: []ast.Scene{{
		ID: "main",
		Elements: []ast.Element{
			ast.Box{ID: "form", Bounds: geom.Bounds{Bottom: 5, Right: 20}, Children: []ast.Element{
				ast.Button{ID: "sign-in", Text: "Sign in"},
				ast.Input{ID: "email"},
			}},
		},
	}, {
		ID:       "other",
		Elements: []ast.Element{ast.Button{ID: "sign-in", Text: "Sign in"}},
	}}}
}

func TestMergeAttachesToEveryMatch(t *testing.T) {
	bs, ds := Parse([]byte(sampleHCL), "ui.hcl")
	require.Empty(t, ds)

	merged, ds := Merge(tree(), bs)
	require.Empty(t, ds)

	matches := ast.FindByID(merged, "sign-in")
	require.Len(t, matches, 2)
	for _, m := range matches {
		btn := m.(ast.Button)
		require.NotNil(t, btn.Behavior)
		assert.Equal(t, true, btn.Behavior.Properties["primary"])
		assert.Len(t, btn.Behavior.Actions, 2)
	}
	in := ast.FindByID(merged, "email")[0].(ast.Input)
	require.NotNil(t, in.Behavior)
	assert.Equal(t, "validate", in.Behavior.Actions[0].Kind)

	// The input tree is unchanged.
	assert.Nil(t, ast.FindByID(tree(), "sign-in")[0].(ast.Button).Behavior)
}

func TestMergeUnknownID(t *testing.T) {
	merged, ds := Merge(tree(), []Binding{{ElementID: "missing", Pos: geom.P(3, 0)}})
	require.Len(t, ds, 1)
	assert.Equal(t, diag.KindUnknownElementID, ds[0].Kind())
	assert.Equal(t, geom.P(3, 0), ds[0].Pos)
	assert.Equal(t, ast.IDs(tree()), ast.IDs(merged))
}
