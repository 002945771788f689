/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package ast holds the typed document tree produced from a wireframe:
// scenes containing a hierarchy of UI elements. Elements are immutable once
// built; transformations return new trees.
package ast

import "gowireframe/internal/geom"

// Align is the inferred horizontal alignment of an element in its container.
type Align int

const (
	AlignLeft Align = iota
	AlignCenter
	AlignRight
)

func (a Align) String() string {
	switch a {
	case AlignCenter:
		return "center"
	case AlignRight:
		return "right"
	default:
		return "left"
	}
}

// ParseAlign is the inverse of String. Unknown values map to AlignLeft.
func ParseAlign(s string) Align {
	switch s {
	case "center":
		return AlignCenter
	case "right":
		return AlignRight
	default:
		return AlignLeft
	}
}

// Kind enumerates the element variants.
type Kind int

const (
	KindBox Kind = iota
	KindButton
	KindInput
	KindLink
	KindCheckbox
	KindText
	KindDivider
	KindRow
	KindSpacer
)

var kindNames = [...]string{"box", "button", "input", "link", "checkbox", "text", "divider", "row", "spacer"}

func (k Kind) String() string {
	if int(k) >= 0 && int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// ParseKind maps a wire name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Element is the closed set of node types. Implementations live in this
// package only.
type Element interface {
	Kind() Kind
	// ElementID is empty for elements that cannot be addressed.
	ElementID() string
	element()
}

// Action is one behaviour entry attached through the interaction layer.
type Action struct {
	Kind   string         `json:"kind" yaml:"kind" msgpack:"kind"`
	Params map[string]any `json:"params,omitempty" yaml:"params,omitempty" msgpack:"params,omitempty"`
}

// Behavior is the interaction metadata merged onto an addressable element.
type Behavior struct {
	Properties map[string]any `json:"properties,omitempty" yaml:"properties,omitempty" msgpack:"properties,omitempty"`
	Actions    []Action       `json:"actions,omitempty" yaml:"actions,omitempty" msgpack:"actions,omitempty"`
}

type Box struct {
	ID       string
	Name     string
	Bounds   geom.Bounds
	Children []Element
	Behavior *Behavior
}

type Button struct {
	ID       string
	Text     string
	Pos      geom.Position
	Align    Align
	Behavior *Behavior
}

type Input struct {
	ID       string
	Pos      geom.Position
	Align    Align
	Behavior *Behavior
}

type Link struct {
	ID       string
	Text     string
	Pos      geom.Position
	Align    Align
	Behavior *Behavior
}

type Checkbox struct {
	Label   string
	Checked bool
	Pos     geom.Position
	Align   Align
}

type Text struct {
	Content  string
	Emphasis bool
	Pos      geom.Position
	Align    Align
}

// Divider marks a full-width '=' row inside a box.
type Divider struct {
	Pos geom.Position
}

// Row groups horizontally adjacent sibling boxes.
type Row struct {
	Children []Element
	Bounds   geom.Bounds
	Align    Align
}

// Spacer stands in for a blank interior line.
type Spacer struct {
	Pos geom.Position
}

func (Box) Kind() Kind      { return KindBox }
func (Button) Kind() Kind   { return KindButton }
func (Input) Kind() Kind    { return KindInput }
func (Link) Kind() Kind     { return KindLink }
func (Checkbox) Kind() Kind { return KindCheckbox }
func (Text) Kind() Kind     { return KindText }
func (Divider) Kind() Kind  { return KindDivider }
func (Row) Kind() Kind      { return KindRow }
func (Spacer) Kind() Kind   { return KindSpacer }

func (e Box) ElementID() string    { return e.ID }
func (e Button) ElementID() string { return e.ID }
func (e Input) ElementID() string  { return e.ID }
func (e Link) ElementID() string   { return e.ID }
func (Checkbox) ElementID() string { return "" }
func (Text) ElementID() string     { return "" }
func (Divider) ElementID() string  { return "" }
func (Row) ElementID() string      { return "" }
func (Spacer) ElementID() string   { return "" }

func (Box) element()      {}
func (Button) element()   {}
func (Input) element()    {}
func (Link) element()     {}
func (Checkbox) element() {}
func (Text) element()     {}
func (Divider) element()  {}
func (Row) element()      {}
func (Spacer) element()   {}

// Scene is one `@scene:` block. Pos is where the scene starts in the file.
type Scene struct {
	ID         string
	Title      string
	Transition string
	Pos        geom.Position
	Elements   []Element
}

// AST is the parse result: scenes in source order.
type AST struct {
	Scenes []Scene
}

// Scene returns the scene with the given id.
func (a AST) Scene(id string) (Scene, bool) {
	for _, s := range a.Scenes {
		if s.ID == id {
			return s, true
		}
	}
	return Scene{}, false
}
