/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package grid turns raw diagram text into a rectangular array of classified
// cells and keeps positional indices for the four structural glyphs.
package grid

import (
	"strings"

	"gowireframe/internal/geom"
)

// Kind classifies a single cell.
type Kind int

const (
	Space Kind = iota
	Corner
	HLine
	VLine
	Divider
	Char
)

func (k Kind) String() string {
	switch k {
	case Space:
		return "space"
	case Corner:
		return "corner"
	case HLine:
		return "hline"
	case VLine:
		return "vline"
	case Divider:
		return "divider"
	case Char:
		return "char"
	default:
		return "unknown"
	}
}

// Cell is a classified grid position. Ch is the raw rune for every kind.
type Cell struct {
	Kind Kind
	Ch   rune
}

// Classify maps a rune to its cell. The result does not depend on position.
func Classify(r rune) Cell {
	switch r {
	case '+':
		return Cell{Kind: Corner, Ch: r}
	case '-':
		return Cell{Kind: HLine, Ch: r}
	case '|':
		return Cell{Kind: VLine, Ch: r}
	case '=':
		return Cell{Kind: Divider, Ch: r}
	case ' ':
		return Cell{Kind: Space, Ch: r}
	default:
		return Cell{Kind: Char, Ch: r}
	}
}

// Is reports whether the cell has one of the given kinds.
func (c Cell) Is(kinds ...Kind) bool {
	for _, k := range kinds {
		if c.Kind == k {
			return true
		}
	}
	return false
}

// Scanned is one step of a directional scan.
type Scanned struct {
	Pos  geom.Position
	Cell Cell
}

// Grid is read-only after construction.
type Grid struct {
	cells  [][]Cell
	width  int
	height int
	index  map[Kind][]geom.Position
}

// NormalizeNewlines converts CRLF and lone CR line endings to LF.
func NormalizeNewlines(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}

// FromText splits text into lines (after newline normalisation) and builds a grid.
func FromText(text string) *Grid {
	if text == "" {
		return FromLines(nil)
	}
	return FromLines(strings.Split(NormalizeNewlines(text), "\n"))
}

// FromLines pads every line to the longest line with Space and classifies each
// cell. The structural indices are built in the same pass, in row-major order.
func FromLines(lines []string) *Grid {
	g := &Grid{index: map[Kind][]geom.Position{}}
	runes := make([][]rune, len(lines))
	for i, l := range lines {
		runes[i] = []rune(l)
		if n := len(runes[i]); n > g.width {
			g.width = n
		}
	}
	if g.width == 0 {
		// Only blank lines: nothing to classify.
		return g
	}
	g.height = len(lines)
	g.cells = make([][]Cell, g.height)
	for r, line := range runes {
		row := make([]Cell, g.width)
		for c := 0; c < g.width; c++ {
			cell := Cell{Kind: Space, Ch: ' '}
			if c < len(line) {
				cell = Classify(line[c])
			}
			row[c] = cell
			switch cell.Kind {
			case Corner, HLine, VLine, Divider:
				g.index[cell.Kind] = append(g.index[cell.Kind], geom.P(r, c))
			}
		}
		g.cells[r] = row
	}
	return g
}

func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Get returns the cell at p and false when p is outside the grid.
func (g *Grid) Get(p geom.Position) (Cell, bool) {
	if p.Row < 0 || p.Row >= g.height || p.Col < 0 || p.Col >= g.width {
		return Cell{}, false
	}
	return g.cells[p.Row][p.Col], true
}

// KindAt returns the kind at p, treating out-of-range positions as Space.
func (g *Grid) KindAt(p geom.Position) Kind {
	c, ok := g.Get(p)
	if !ok {
		return Space
	}
	return c.Kind
}

func (g *Grid) scan(start geom.Position, dr, dc int, pred func(Cell) bool) []Scanned {
	var out []Scanned
	for p := start; ; p = geom.P(p.Row+dr, p.Col+dc) {
		c, ok := g.Get(p)
		if !ok || !pred(c) {
			return out
		}
		out = append(out, Scanned{Pos: p, Cell: c})
	}
}

// ScanRight walks from start (inclusive) while pred holds.
func (g *Grid) ScanRight(start geom.Position, pred func(Cell) bool) []Scanned {
	return g.scan(start, 0, 1, pred)
}

func (g *Grid) ScanLeft(start geom.Position, pred func(Cell) bool) []Scanned {
	return g.scan(start, 0, -1, pred)
}

func (g *Grid) ScanDown(start geom.Position, pred func(Cell) bool) []Scanned {
	return g.scan(start, 1, 0, pred)
}

func (g *Grid) ScanUp(start geom.Position, pred func(Cell) bool) []Scanned {
	return g.scan(start, -1, 0, pred)
}

// FindAll returns the indexed positions of a structural kind. Space and Char
// are not indexed and always yield nil. Callers must not modify the slice.
func (g *Grid) FindAll(k Kind) []geom.Position {
	return g.index[k]
}

// FindInRange filters the index of k to positions inside b.
func (g *Grid) FindInRange(k Kind, b geom.Bounds) []geom.Position {
	var out []geom.Position
	for _, p := range g.index[k] {
		if b.Contains(p) {
			out = append(out, p)
		}
	}
	return out
}

// Text returns the runes of row between columns from and to inclusive, clipped
// to the grid.
func (g *Grid) Text(row, from, to int) string {
	if row < 0 || row >= g.height {
		return ""
	}
	from = max(from, 0)
	to = min(to, g.width-1)
	if from > to {
		return ""
	}
	var sb strings.Builder
	for c := from; c <= to; c++ {
		sb.WriteRune(g.cells[row][c].Ch)
	}
	return sb.String()
}

// Of returns a predicate accepting any of the given kinds.
func Of(kinds ...Kind) func(Cell) bool {
	return func(c Cell) bool { return c.Is(kinds...) }
}
