/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package detect finds rectangular boxes in a character grid and arranges them
// into a containment forest.
package detect

import (
	"strings"

	"gowireframe/internal/diag"
	"gowireframe/internal/geom"
	"gowireframe/internal/grid"
)

// Tolerance is how many columns a '|' may drift from its edge and still be
// reported as misaligned rather than missing.
const Tolerance = 2

// Box is a traced rectangle. Name is empty for unnamed boxes. Children are
// only populated by BuildHierarchy.
type Box struct {
	Name     string
	Bounds   geom.Bounds
	Children []Box
}

func (b Box) IsLeaf() bool { return len(b.Children) == 0 }

// Tracer walks box edges over one grid.
type Tracer struct {
	g *grid.Grid
}

func NewTracer(g *grid.Grid) *Tracer { return &Tracer{g: g} }

// Candidates returns every corner that can start a box: a '+' followed by
// '-' with a '|' below it. A '|' within Tolerance columns also counts, unless
// the corner sits under a '|' and so closes the box above it.
func (t *Tracer) Candidates() []geom.Position {
	var out []geom.Position
	for _, p := range t.g.FindAll(grid.Corner) {
		if t.g.KindAt(p.Right(1)) != grid.HLine {
			continue
		}
		if t.g.KindAt(p.Down(1)) == grid.VLine {
			out = append(out, p)
			continue
		}
		// A corner with a wall above closes a box; it only starts one when
		// its own wall continues straight down.
		if t.g.KindAt(p.Up(1)) == grid.VLine {
			continue
		}
		if _, ok := t.nearbyPipe(p.Row+1, p.Col); ok {
			out = append(out, p)
		}
	}
	return out
}

// TraceAll traces every candidate corner. Failed boxes contribute
// diagnostics; they never stop the remaining corners from being traced.
func (t *Tracer) TraceAll() ([]Box, diag.List) {
	var (
		boxes []Box
		diags diag.List
	)
	for _, start := range t.Candidates() {
		b, ds := t.Trace(start)
		diags = append(diags, ds...)
		if ds.HasErrors() {
			continue
		}
		boxes = append(boxes, b)
	}
	return boxes, diags
}

// Trace follows the edges of the box whose top-left corner is start, in the
// order top, right, bottom, left. Any returned diagnostic means the box failed.
func (t *Tracer) Trace(start geom.Position) (Box, diag.List) {
	var diags diag.List

	// Top edge: border dashes with an optional embedded name.
	run := t.g.ScanRight(start.Right(1), grid.Of(grid.HLine, grid.Char, grid.Space))
	end := start
	if len(run) > 0 {
		end = run[len(run)-1].Pos
	}
	topRight := end.Right(1)
	// The closing corner must follow a dash; a gap before a '+' means the
	// scan ran into a neighbouring box.
	if t.g.KindAt(topRight) != grid.Corner || t.g.KindAt(end) != grid.HLine {
		return Box{}, append(diags, diag.New(diag.UnclosedBox{Direction: diag.Top}, start))
	}
	name := extractName(t.g.Text(start.Row, start.Col+1, topRight.Col-1))

	// Right edge.
	rc := topRight.Col
	var bottomRight geom.Position
	found := false
	for r := start.Row + 1; r < t.g.Height(); r++ {
		p := geom.P(r, rc)
		switch t.g.KindAt(p) {
		case grid.VLine:
			continue
		case grid.Corner:
			bottomRight, found = p, true
		}
		if found {
			break
		}
		if c, ok := t.nearbyPipe(r, rc); ok {
			diags = append(diags, diag.New(diag.MisalignedPipe{ExpectedCol: rc, ActualCol: c}, geom.P(r, c)))
			continue
		}
		// A bottom border that does not end under the top-right corner.
		if d, ok := t.strayBottom(start, r, rc); ok {
			return Box{}, append(diags, d)
		}
		return Box{}, append(diags, diag.New(diag.UnclosedBox{Direction: diag.Right}, p))
	}
	if !found {
		last := geom.P(max(t.g.Height()-1, start.Row), rc)
		return Box{}, append(diags, diag.New(diag.UnclosedBox{Direction: diag.Right}, last))
	}

	// Bottom edge.
	run = t.g.ScanLeft(bottomRight.Left(1), grid.Of(grid.HLine, grid.Divider))
	end = bottomRight
	if len(run) > 0 {
		end = run[len(run)-1].Pos
	}
	bottomLeft := end.Left(1)
	if t.g.KindAt(bottomLeft) != grid.Corner {
		return Box{}, append(diags, diag.New(diag.UnclosedBox{Direction: diag.Bottom}, bottomLeft))
	}
	if bottomLeft.Col != start.Col {
		diags = append(diags, diag.New(diag.MismatchedWidth{
			TopWidth:    rc - start.Col,
			BottomWidth: bottomRight.Col - bottomLeft.Col,
			BottomRow:   bottomRight.Row,
		}, start))
	}

	// Left edge, walked upwards back to the start corner.
	for r := bottomRight.Row - 1; r > start.Row; r-- {
		p := geom.P(r, start.Col)
		if t.g.KindAt(p) == grid.VLine {
			continue
		}
		if c, ok := t.nearbyPipe(r, start.Col); ok {
			diags = append(diags, diag.New(diag.MisalignedPipe{ExpectedCol: start.Col, ActualCol: c}, geom.P(r, c)))
			continue
		}
		diags = append(diags, diag.New(diag.UnclosedBox{Direction: diag.Left}, p))
		break
	}

	if len(diags) > 0 {
		return Box{}, diags
	}
	return Box{Name: name, Bounds: geom.B(start, bottomRight)}, nil
}

// strayBottom recognises a bottom border starting at start.Col on row r whose
// right end is not at rc.
func (t *Tracer) strayBottom(start geom.Position, r, rc int) (diag.Diagnostic, bool) {
	left := geom.P(r, start.Col)
	if t.g.KindAt(left) != grid.Corner {
		return diag.Diagnostic{}, false
	}
	run := t.g.ScanRight(left.Right(1), grid.Of(grid.HLine, grid.Divider))
	if len(run) == 0 {
		return diag.Diagnostic{}, false
	}
	next := run[len(run)-1].Pos.Right(1)
	if t.g.KindAt(next) != grid.Corner {
		return diag.New(diag.UnclosedBox{Direction: diag.Bottom}, next), true
	}
	return diag.New(diag.MismatchedWidth{
		TopWidth:    rc - start.Col,
		BottomWidth: next.Col - start.Col,
		BottomRow:   r,
	}, start), true
}

// nearbyPipe finds the closest '|' within Tolerance columns of col on row,
// excluding col itself. Ties prefer the right side.
func (t *Tracer) nearbyPipe(row, col int) (int, bool) {
	for d := 1; d <= Tolerance; d++ {
		for _, c := range []int{col + d, col - d} {
			if t.g.KindAt(geom.P(row, c)) == grid.VLine {
				return c, true
			}
		}
	}
	return 0, false
}

func extractName(edge string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(edge), "-"))
}

// Dividers returns the interior rows of b that are '=' across the full
// interior width, top to bottom.
func Dividers(g *grid.Grid, b geom.Bounds) []int {
	if b.Right-b.Left < 2 {
		return nil
	}
	var rows []int
	for r := b.Top + 1; r < b.Bottom; r++ {
		run := g.ScanRight(geom.P(r, b.Left+1), grid.Of(grid.Divider))
		if len(run) == b.Right-b.Left-1 {
			rows = append(rows, r)
		}
	}
	return rows
}
