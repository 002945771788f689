/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package interaction reads element behaviour written in HCL and merges it
// into a wireframe AST by element id:
//
//	element "sign-in" {
//	  properties = { primary = true, width = 120 }
//	  action "navigate" {
//	    to = "home"
//	  }
//	}
package interaction

import (
	"fmt"
	"sort"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/gocty"

	"gowireframe/internal/ast"
	"gowireframe/internal/diag"
	"gowireframe/internal/geom"
)

// Binding is the behaviour declared for one element id. Pos is the position
// of the element block in the interaction source.
type Binding struct {
	ElementID  string
	Properties map[string]any
	Actions    []ast.Action
	Pos        geom.Position
}

var fileSchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{{Type: "element", LabelNames: []string{"id"}}},
}

type elementBody struct {
	Properties hcl.Expression `hcl:"properties,optional"`
	Actions    []*actionBlock `hcl:"action,block"`
}

type actionBlock struct {
	Kind   string   `hcl:"kind,label"`
	Params hcl.Body `hcl:",remain"`
}

// Parse decodes interaction source. Every problem becomes an
// InvalidInteractionDSL diagnostic; blocks that decode cleanly are still
// returned next to the diagnostics of the broken ones.
func Parse(src []byte, filename string) ([]Binding, diag.List) {
	file, hd := hclparse.NewParser().ParseHCL(src, filename)
	if hd.HasErrors() {
		return nil, fromHCL(hd)
	}
	content, hd := file.Body.Content(fileSchema)
	diags := fromHCL(hd)

	var out []Binding
	for _, blk := range content.Blocks {
		b, ds := decodeElement(blk)
		diags = append(diags, ds...)
		if !ds.HasErrors() {
			out = append(out, b)
		}
	}
	return out, diags
}

func decodeElement(blk *hcl.Block) (Binding, diag.List) {
	b := Binding{ElementID: blk.Labels[0], Pos: posOf(blk.DefRange)}
	var body elementBody
	if hd := gohcl.DecodeBody(blk.Body, nil, &body); hd.HasErrors() {
		return b, fromHCL(hd)
	}

	var diags diag.List
	if body.Properties != nil {
		v, hd := body.Properties.Value(nil)
		diags = append(diags, fromHCL(hd)...)
		if !hd.HasErrors() && !v.IsNull() {
			props, err := scalarMap(v)
			if err != nil {
				diags = append(diags, invalid(err.Error(), body.Properties.Range()))
			}
			b.Properties = props
		}
	}

	for _, a := range body.Actions {
		attrs, hd := a.Params.JustAttributes()
		diags = append(diags, fromHCL(hd)...)
		act := ast.Action{Kind: a.Kind}
		for _, name := range sortedNames(attrs) {
			attr := attrs[name]
			v, hd := attr.Expr.Value(nil)
			if hd.HasErrors() {
				diags = append(diags, fromHCL(hd)...)
				continue
			}
			native, err := scalar(v)
			if err != nil {
				diags = append(diags, invalid(fmt.Sprintf("action %q parameter %q: %v", a.Kind, name, err), attr.Range))
				continue
			}
			if act.Params == nil {
				act.Params = map[string]any{}
			}
			act.Params[name] = native
		}
		b.Actions = append(b.Actions, act)
	}
	return b, diags
}

func sortedNames(attrs hcl.Attributes) []string {
	names := make([]string, 0, len(attrs))
	for n := range attrs {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func scalarMap(v cty.Value) (map[string]any, error) {
	ty := v.Type()
	if !ty.IsObjectType() && !ty.IsMapType() {
		return nil, fmt.Errorf("properties must be an object, got %s", ty.FriendlyName())
	}
	out := map[string]any{}
	it := v.ElementIterator()
	for it.Next() {
		k, val := it.Element()
		native, err := scalar(val)
		if err != nil {
			return nil, fmt.Errorf("property %q: %w", k.AsString(), err)
		}
		out[k.AsString()] = native
	}
	return out, nil
}

// scalar converts a cty value to string, float64, bool or nil.
func scalar(v cty.Value) (any, error) {
	if v.IsNull() || !v.IsKnown() {
		return nil, nil
	}
	switch ty := v.Type(); ty {
	case cty.String:
		return v.AsString(), nil
	case cty.Number:
		var f float64
		if err := gocty.FromCtyValue(v, &f); err != nil {
			return nil, err
		}
		return f, nil
	case cty.Bool:
		return v.True(), nil
	default:
		return nil, fmt.Errorf("must be a string, number or bool, got %s", ty.FriendlyName())
	}
}

func posOf(r hcl.Range) geom.Position {
	return geom.P(max(r.Start.Line-1, 0), max(r.Start.Column-1, 0))
}

func invalid(summary string, r hcl.Range) diag.Diagnostic {
	return diag.New(diag.InvalidInteractionDSL{Summary: summary}, posOf(r))
}

func fromHCL(hd hcl.Diagnostics) diag.List {
	var out diag.List
	for _, d := range hd {
		if d.Severity != hcl.DiagError {
			continue
		}
		summary := d.Summary
		if d.Detail != "" {
			summary += ": " + d.Detail
		}
		var pos geom.Position
		if d.Subject != nil {
			pos = posOf(*d.Subject)
		}
		out = append(out, diag.New(diag.InvalidInteractionDSL{Summary: summary}, pos))
	}
	return out
}

// Merge attaches every binding to all elements carrying its id and returns a
// new AST. Bindings naming an id that no element carries are reported and
// skipped; the merge never creates elements.
func Merge(a ast.AST, bindings []Binding) (ast.AST, diag.List) {
	ids := ast.IDs(a)
	byID := map[string][]ast.Behavior{}
	var diags diag.List
	for _, b := range bindings {
		if ids[b.ElementID] == 0 {
			diags = append(diags, diag.New(diag.UnknownElementID{ID: b.ElementID}, b.Pos))
			continue
		}
		byID[b.ElementID] = append(byID[b.ElementID], ast.Behavior{Properties: b.Properties, Actions: b.Actions})
	}
	if len(byID) == 0 {
		return a, diags
	}
	merged := ast.MapAST(a, func(e ast.Element) ast.Element {
		for _, bh := range byID[e.ElementID()] {
			e = ast.WithBehavior(e, bh)
		}
		return e
	})
	return merged, diags
}
