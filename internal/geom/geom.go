/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

// Grid geometry for text diagrams. Coordinates are zero-based rows and columns
// counted in runes, not bytes.

import "fmt"

// Position is a cell coordinate in a text grid.
type Position struct {
	Row int `json:"row" yaml:"row" msgpack:"row"`
	Col int `json:"col" yaml:"col" msgpack:"col"`
}

func P(row, col int) Position { return Position{Row: row, Col: col} }

func (p Position) Right(n int) Position { return Position{Row: p.Row, Col: p.Col + n} }
func (p Position) Left(n int) Position  { return Position{Row: p.Row, Col: p.Col - n} }
func (p Position) Down(n int) Position  { return Position{Row: p.Row + n, Col: p.Col} }
func (p Position) Up(n int) Position    { return Position{Row: p.Row - n, Col: p.Col} }

// Offset shifts p down by rows. Used to translate block-relative rows into file rows.
func (p Position) Offset(rows int) Position { return p.Down(rows) }

func (p Position) String() string { return fmt.Sprintf("%d:%d", p.Row, p.Col) }

// Bounds is an inclusive rectangle. Top <= Bottom and Left <= Right; a zero
// height or width is legal and describes a single line or column.
type Bounds struct {
	Top    int `json:"top" yaml:"top" msgpack:"top"`
	Left   int `json:"left" yaml:"left" msgpack:"left"`
	Bottom int `json:"bottom" yaml:"bottom" msgpack:"bottom"`
	Right  int `json:"right" yaml:"right" msgpack:"right"`
}

// B builds Bounds from two opposite corners in any order.
func B(a, b Position) Bounds {
	return Bounds{
		Top:    min(a.Row, b.Row),
		Left:   min(a.Col, b.Col),
		Bottom: max(a.Row, b.Row),
		Right:  max(a.Col, b.Col),
	}
}

func (b Bounds) Width() int  { return b.Right - b.Left }
func (b Bounds) Height() int { return b.Bottom - b.Top }
func (b Bounds) Area() int   { return b.Width() * b.Height() }

func (b Bounds) TopLeft() Position     { return Position{Row: b.Top, Col: b.Left} }
func (b Bounds) BottomRight() Position { return Position{Row: b.Bottom, Col: b.Right} }

// Contains reports whether p lies inside b, edges included.
func (b Bounds) Contains(p Position) bool {
	return p.Row >= b.Top && p.Row <= b.Bottom && p.Col >= b.Left && p.Col <= b.Right
}

// StrictlyContains reports whether every edge of o lies strictly inside b.
// Touching edges and equal bounds do not count.
func (b Bounds) StrictlyContains(o Bounds) bool {
	return b.Top < o.Top && b.Left < o.Left && b.Bottom > o.Bottom && b.Right > o.Right
}

// Overlaps reports whether the two rectangles share interior area. Rectangles
// that only touch along an edge (a shared wall) do not overlap.
func (b Bounds) Overlaps(o Bounds) bool {
	return b.Left < o.Right && o.Left < b.Right && b.Top < o.Bottom && o.Top < b.Bottom
}

// SpansRow reports whether row lies within [Top, Bottom].
func (b Bounds) SpansRow(row int) bool { return row >= b.Top && row <= b.Bottom }

// Union returns the minimal bounds containing both.
func (b Bounds) Union(o Bounds) Bounds {
	return Bounds{
		Top:    min(b.Top, o.Top),
		Left:   min(b.Left, o.Left),
		Bottom: max(b.Bottom, o.Bottom),
		Right:  max(b.Right, o.Right),
	}
}

// Offset shifts the rectangle down by rows.
func (b Bounds) Offset(rows int) Bounds {
	return Bounds{Top: b.Top + rows, Left: b.Left, Bottom: b.Bottom + rows, Right: b.Right}
}

func (b Bounds) String() string {
	return fmt.Sprintf("[%d,%d..%d,%d]", b.Top, b.Left, b.Bottom, b.Right)
}
