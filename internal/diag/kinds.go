/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package diag defines the diagnostics produced while parsing a wireframe.
// Every stage collects all problems it finds instead of stopping at the first;
// the resulting List doubles as the error value returned to callers.
package diag

import (
	"fmt"

	"gowireframe/internal/geom"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// Kind is the closed set of diagnostic kinds.
type Kind int

const (
	KindUnclosedBox Kind = iota
	KindMismatchedWidth
	KindMisalignedPipe
	KindOverlappingBoxes
	KindInvalidElement
	KindUnclosedBracket
	KindEmptyButton
	KindInvalidInteractionDSL
	KindUnusualSpacing
	KindDeepNesting
	KindDuplicateSceneID
	KindUnknownElementID
)

var kindNames = map[Kind]string{
	KindUnclosedBox:           "UnclosedBox",
	KindMismatchedWidth:       "MismatchedWidth",
	KindMisalignedPipe:        "MisalignedPipe",
	KindOverlappingBoxes:      "OverlappingBoxes",
	KindInvalidElement:        "InvalidElement",
	KindUnclosedBracket:       "UnclosedBracket",
	KindEmptyButton:           "EmptyButton",
	KindInvalidInteractionDSL: "InvalidInteractionDSL",
	KindUnusualSpacing:        "UnusualSpacing",
	KindDeepNesting:           "DeepNesting",
	KindDuplicateSceneID:      "DuplicateSceneID",
	KindUnknownElementID:      "UnknownElementID",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

func (k Kind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *Kind) UnmarshalText(b []byte) error {
	for kind, name := range kindNames {
		if name == string(b) {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown diagnostic kind %q", b)
}

// Severity is fixed per kind: style kinds warn, everything else blocks.
func (k Kind) Severity() Severity {
	switch k {
	case KindUnusualSpacing, KindDeepNesting:
		return SeverityWarning
	default:
		return SeverityError
	}
}

// Direction names the box edge that failed to close.
type Direction int

const (
	Top Direction = iota
	Right
	Bottom
	Left
)

func (d Direction) String() string {
	switch d {
	case Top:
		return "top"
	case Right:
		return "right"
	case Bottom:
		return "bottom"
	case Left:
		return "left"
	default:
		return "unknown"
	}
}

// Detail carries the structured context of one diagnostic kind. The set of
// implementations is closed to this package.
type Detail interface {
	Kind() Kind
	describe() string
}

type UnclosedBox struct {
	Direction Direction
}

type MismatchedWidth struct {
	TopWidth    int
	BottomWidth int
	// BottomRow is the absolute row of the bottom border.
	BottomRow int
}

type MisalignedPipe struct {
	ExpectedCol int
	ActualCol   int
}

type OverlappingBoxes struct {
	Box1 geom.Bounds
	Box2 geom.Bounds
}

type InvalidElement struct {
	Content string
}

type UnclosedBracket struct {
	Content string
	// ContentEnd is the column just past the last non-space rune of the content run.
	ContentEnd int
}

type EmptyButton struct{}

type InvalidInteractionDSL struct {
	Summary string
}

type UnusualSpacing struct {
	Tabs int
}

type DeepNesting struct {
	Depth int
	Limit int
}

type DuplicateSceneID struct {
	ID    string
	First geom.Position
}

type UnknownElementID struct {
	ID string
}

func (UnclosedBox) Kind() Kind           { return KindUnclosedBox }
func (MismatchedWidth) Kind() Kind       { return KindMismatchedWidth }
func (MisalignedPipe) Kind() Kind        { return KindMisalignedPipe }
func (OverlappingBoxes) Kind() Kind      { return KindOverlappingBoxes }
func (InvalidElement) Kind() Kind        { return KindInvalidElement }
func (UnclosedBracket) Kind() Kind       { return KindUnclosedBracket }
func (EmptyButton) Kind() Kind           { return KindEmptyButton }
func (InvalidInteractionDSL) Kind() Kind { return KindInvalidInteractionDSL }
func (UnusualSpacing) Kind() Kind        { return KindUnusualSpacing }
func (DeepNesting) Kind() Kind           { return KindDeepNesting }
func (DuplicateSceneID) Kind() Kind      { return KindDuplicateSceneID }
func (UnknownElementID) Kind() Kind      { return KindUnknownElementID }

func (d UnclosedBox) describe() string {
	return fmt.Sprintf("box is not closed on the %s edge", d.Direction)
}

func (d MismatchedWidth) describe() string {
	return fmt.Sprintf("top border is %d wide but bottom border is %d wide", d.TopWidth, d.BottomWidth)
}

func (d MisalignedPipe) describe() string {
	return fmt.Sprintf("expected '|' at column %d, found it at column %d", d.ExpectedCol+1, d.ActualCol+1)
}

func (d OverlappingBoxes) describe() string {
	return fmt.Sprintf("boxes %s and %s overlap without one containing the other", d.Box1, d.Box2)
}

func (d InvalidElement) describe() string {
	return fmt.Sprintf("invalid element %q", d.Content)
}

func (d UnclosedBracket) describe() string {
	return fmt.Sprintf("missing ']' in %q", d.Content)
}

func (EmptyButton) describe() string { return "button has no label" }

func (d InvalidInteractionDSL) describe() string {
	return "interaction: " + d.Summary
}

func (d UnusualSpacing) describe() string {
	if d.Tabs == 1 {
		return "line contains a tab; use spaces"
	}
	return fmt.Sprintf("line contains %d tabs; use spaces", d.Tabs)
}

func (d DeepNesting) describe() string {
	return fmt.Sprintf("boxes nested %d deep (limit %d)", d.Depth, d.Limit)
}

func (d DuplicateSceneID) describe() string {
	return fmt.Sprintf("scene id %q already used at line %d", d.ID, d.First.Row+1)
}

func (d UnknownElementID) describe() string {
	return fmt.Sprintf("no element with id %q", d.ID)
}
