/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ast

// Children returns the direct children of container elements.
func Children(e Element) []Element {
	switch v := e.(type) {
	case Box:
		return v.Children
	case Row:
		return v.Children
	default:
		return nil
	}
}

// Walk visits elements depth-first in document order. Returning false from
// fn skips the element's children.
func Walk(elems []Element, fn func(Element) bool) {
	for _, e := range elems {
		if fn(e) {
			Walk(Children(e), fn)
		}
	}
}

// WalkAST walks every scene in order.
func WalkAST(a AST, fn func(Scene, Element) bool) {
	for _, s := range a.Scenes {
		Walk(s.Elements, func(e Element) bool { return fn(s, e) })
	}
}

// Map rebuilds the tree bottom-up, replacing every element with fn's result.
// Children are mapped before their container is passed to fn.
func Map(elems []Element, fn func(Element) Element) []Element {
	if elems == nil {
		return nil
	}
	out := make([]Element, len(elems))
	for i, e := range elems {
		switch v := e.(type) {
		case Box:
			v.Children = Map(v.Children, fn)
			e = v
		case Row:
			v.Children = Map(v.Children, fn)
			e = v
		}
		out[i] = fn(e)
	}
	return out
}

// MapAST applies Map to every scene and returns a new AST.
func MapAST(a AST, fn func(Element) Element) AST {
	out := AST{Scenes: make([]Scene, len(a.Scenes))}
	for i, s := range a.Scenes {
		s.Elements = Map(s.Elements, fn)
		out.Scenes[i] = s
	}
	return out
}

// FindByID returns every element carrying id, in document order.
func FindByID(a AST, id string) []Element {
	var out []Element
	if id == "" {
		return nil
	}
	WalkAST(a, func(_ Scene, e Element) bool {
		if e.ElementID() == id {
			out = append(out, e)
		}
		return true
	})
	return out
}

// IDs counts addressable elements by id.
func IDs(a AST) map[string]int {
	ids := map[string]int{}
	WalkAST(a, func(_ Scene, e Element) bool {
		if id := e.ElementID(); id != "" {
			ids[id]++
		}
		return true
	})
	return ids
}

// WithBehavior returns e with b attached when e is addressable. Existing
// properties are overwritten key by key and actions are appended.
func WithBehavior(e Element, b Behavior) Element {
	merge := func(cur *Behavior) *Behavior {
		out := &Behavior{Properties: map[string]any{}}
		if cur != nil {
			for k, v := range cur.Properties {
				out.Properties[k] = v
			}
			out.Actions = append(out.Actions, cur.Actions...)
		}
		for k, v := range b.Properties {
			out.Properties[k] = v
		}
		out.Actions = append(out.Actions, b.Actions...)
		if len(out.Properties) == 0 {
			out.Properties = nil
		}
		return out
	}
	switch v := e.(type) {
	case Box:
		v.Behavior = merge(v.Behavior)
		return v
	case Button:
		v.Behavior = merge(v.Behavior)
		return v
	case Input:
		v.Behavior = merge(v.Behavior)
		return v
	case Link:
		v.Behavior = merge(v.Behavior)
		return v
	default:
		return e
	}
}

// SearchText is the text an element contributes to full-text search.
func SearchText(e Element) string {
	switch v := e.(type) {
	case Box:
		return v.Name
	case Button:
		return v.Text
	case Input:
		return v.ID
	case Link:
		return v.Text
	case Checkbox:
		return v.Label
	case Text:
		return v.Content
	default:
		return ""
	}
}

// Position returns the anchor position of an element.
func Position(e Element) (row, col int) {
	switch v := e.(type) {
	case Box:
		return v.Bounds.Top, v.Bounds.Left
	case Button:
		return v.Pos.Row, v.Pos.Col
	case Input:
		return v.Pos.Row, v.Pos.Col
	case Link:
		return v.Pos.Row, v.Pos.Col
	case Checkbox:
		return v.Pos.Row, v.Pos.Col
	case Text:
		return v.Pos.Row, v.Pos.Col
	case Divider:
		return v.Pos.Row, v.Pos.Col
	case Row:
		return v.Bounds.Top, v.Bounds.Left
	case Spacer:
		return v.Pos.Row, v.Pos.Col
	default:
		return 0, 0
	}
}
