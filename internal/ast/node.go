/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package ast

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"gowireframe/internal/geom"
)

// Node is the serialisable form of an Element. Only the fields relevant to
// Type are set.
type Node struct {
	Type     string         `json:"type" yaml:"type" msgpack:"type"`
	ID       string         `json:"id,omitempty" yaml:"id,omitempty" msgpack:"id,omitempty"`
	Text     string         `json:"text,omitempty" yaml:"text,omitempty" msgpack:"text,omitempty"`
	Label    string         `json:"label,omitempty" yaml:"label,omitempty" msgpack:"label,omitempty"`
	Name     string         `json:"name,omitempty" yaml:"name,omitempty" msgpack:"name,omitempty"`
	Checked  bool           `json:"checked,omitempty" yaml:"checked,omitempty" msgpack:"checked,omitempty"`
	Emphasis bool           `json:"emphasis,omitempty" yaml:"emphasis,omitempty" msgpack:"emphasis,omitempty"`
	Align    string         `json:"align,omitempty" yaml:"align,omitempty" msgpack:"align,omitempty"`
	Position *geom.Position `json:"position,omitempty" yaml:"position,omitempty" msgpack:"position,omitempty"`
	Bounds   *geom.Bounds   `json:"bounds,omitempty" yaml:"bounds,omitempty" msgpack:"bounds,omitempty"`
	Children []Node         `json:"children,omitempty" yaml:"children,omitempty" msgpack:"children,omitempty"`
	Behavior *Behavior      `json:"behavior,omitempty" yaml:"behavior,omitempty" msgpack:"behavior,omitempty"`
}

// SceneNode is the serialisable form of a Scene.
type SceneNode struct {
	ID         string `json:"id" yaml:"id" msgpack:"id"`
	Title      string `json:"title" yaml:"title" msgpack:"title"`
	Transition string `json:"transition" yaml:"transition" msgpack:"transition"`
	Line       int    `json:"line" yaml:"line" msgpack:"line"`
	Elements   []Node `json:"elements" yaml:"elements" msgpack:"elements"`
}

// Document is the serialisable form of an AST.
type Document struct {
	Scenes []SceneNode `json:"scenes" yaml:"scenes" msgpack:"scenes"`
}

func ptrPos(p geom.Position) *geom.Position { return &p }
func ptrBounds(b geom.Bounds) *geom.Bounds  { return &b }

// ToNode converts an element and its subtree.
func ToNode(e Element) Node {
	n := Node{Type: e.Kind().String()}
	switch v := e.(type) {
	case Box:
		n.ID, n.Name, n.Bounds, n.Behavior = v.ID, v.Name, ptrBounds(v.Bounds), v.Behavior
		n.Children = toNodes(v.Children)
	case Button:
		n.ID, n.Text, n.Position, n.Align, n.Behavior = v.ID, v.Text, ptrPos(v.Pos), v.Align.String(), v.Behavior
	case Input:
		n.ID, n.Position, n.Align, n.Behavior = v.ID, ptrPos(v.Pos), v.Align.String(), v.Behavior
	case Link:
		n.ID, n.Text, n.Position, n.Align, n.Behavior = v.ID, v.Text, ptrPos(v.Pos), v.Align.String(), v.Behavior
	case Checkbox:
		n.Label, n.Checked, n.Position, n.Align = v.Label, v.Checked, ptrPos(v.Pos), v.Align.String()
	case Text:
		n.Text, n.Emphasis, n.Position, n.Align = v.Content, v.Emphasis, ptrPos(v.Pos), v.Align.String()
	case Divider:
		n.Position = ptrPos(v.Pos)
	case Row:
		n.Bounds, n.Align = ptrBounds(v.Bounds), v.Align.String()
		n.Children = toNodes(v.Children)
	case Spacer:
		n.Position = ptrPos(v.Pos)
	}
	return n
}

func toNodes(elems []Element) []Node {
	if len(elems) == 0 {
		return nil
	}
	out := make([]Node, len(elems))
	for i, e := range elems {
		out[i] = ToNode(e)
	}
	return out
}

// FromNode rebuilds an element from its wire form.
func FromNode(n Node) (Element, error) {
	k, ok := ParseKind(n.Type)
	if !ok {
		return nil, fmt.Errorf("unknown element type %q", n.Type)
	}
	var pos geom.Position
	if n.Position != nil {
		pos = *n.Position
	}
	var bounds geom.Bounds
	if n.Bounds != nil {
		bounds = *n.Bounds
	}
	align := ParseAlign(n.Align)
	switch k {
	case KindBox:
		children, err := fromNodes(n.Children)
		if err != nil {
			return nil, err
		}
		return Box{ID: n.ID, Name: n.Name, Bounds: bounds, Children: children, Behavior: n.Behavior}, nil
	case KindButton:
		return Button{ID: n.ID, Text: n.Text, Pos: pos, Align: align, Behavior: n.Behavior}, nil
	case KindInput:
		return Input{ID: n.ID, Pos: pos, Align: align, Behavior: n.Behavior}, nil
	case KindLink:
		return Link{ID: n.ID, Text: n.Text, Pos: pos, Align: align, Behavior: n.Behavior}, nil
	case KindCheckbox:
		return Checkbox{Label: n.Label, Checked: n.Checked, Pos: pos, Align: align}, nil
	case KindText:
		return Text{Content: n.Text, Emphasis: n.Emphasis, Pos: pos, Align: align}, nil
	case KindDivider:
		return Divider{Pos: pos}, nil
	case KindRow:
		children, err := fromNodes(n.Children)
		if err != nil {
			return nil, err
		}
		return Row{Children: children, Bounds: bounds, Align: align}, nil
	default:
		return Spacer{Pos: pos}, nil
	}
}

func fromNodes(nodes []Node) ([]Element, error) {
	if len(nodes) == 0 {
		return nil, nil
	}
	out := make([]Element, 0, len(nodes))
	for i, n := range nodes {
		e, err := FromNode(n)
		if err != nil {
			return nil, fmt.Errorf("child %d: %w", i, err)
		}
		out = append(out, e)
	}
	return out, nil
}

// SceneToNode converts one scene.
func SceneToNode(s Scene) SceneNode {
	elems := toNodes(s.Elements)
	if elems == nil {
		elems = []Node{}
	}
	return SceneNode{ID: s.ID, Title: s.Title, Transition: s.Transition, Line: s.Pos.Row + 1, Elements: elems}
}

// SceneFromNode rebuilds a scene.
func SceneFromNode(n SceneNode) (Scene, error) {
	elems, err := fromNodes(n.Elements)
	if err != nil {
		return Scene{}, fmt.Errorf("scene %q: %w", n.ID, err)
	}
	return Scene{ID: n.ID, Title: n.Title, Transition: n.Transition, Pos: geom.P(max(n.Line-1, 0), 0), Elements: elems}, nil
}

func ToDocument(a AST) Document {
	doc := Document{Scenes: make([]SceneNode, 0, len(a.Scenes))}
	for _, s := range a.Scenes {
		doc.Scenes = append(doc.Scenes, SceneToNode(s))
	}
	return doc
}

func FromDocument(doc Document) (AST, error) {
	var a AST
	for _, sn := range doc.Scenes {
		s, err := SceneFromNode(sn)
		if err != nil {
			return AST{}, err
		}
		a.Scenes = append(a.Scenes, s)
	}
	return a, nil
}

// MarshalJSON renders the AST as an indented JSON document.
func MarshalJSON(a AST) ([]byte, error) {
	return json.MarshalIndent(ToDocument(a), "", "  ")
}

func UnmarshalJSON(data []byte) (AST, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return AST{}, fmt.Errorf("decode ast json: %w", err)
	}
	return FromDocument(doc)
}

func MarshalYAML(a AST) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(ToDocument(a)); err != nil {
		return nil, fmt.Errorf("encode ast yaml: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func UnmarshalYAML(data []byte) (AST, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return AST{}, fmt.Errorf("decode ast yaml: %w", err)
	}
	return FromDocument(doc)
}

// MarshalScene encodes one scene as msgpack, the snapshot format of the index.
func MarshalScene(s Scene) ([]byte, error) {
	return msgpack.Marshal(SceneToNode(s))
}

func UnmarshalScene(data []byte) (Scene, error) {
	var n SceneNode
	if err := msgpack.Unmarshal(data, &n); err != nil {
		return Scene{}, fmt.Errorf("decode scene snapshot: %w", err)
	}
	return SceneFromNode(n)
}
