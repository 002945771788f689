/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package detect

import (
	"strings"
	"testing"

	"gowireframe/internal/diag"
	"gowireframe/internal/geom"
	"gowireframe/internal/grid"
)

func gridOf(lines ...string) *grid.Grid { return grid.FromLines(lines) }

func TestTraceSimpleBox(t *testing.T) {
	g := gridOf("+----+", "|    |", "+----+")
	b, ds := NewTracer(g).Trace(geom.P(0, 0))
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	want := geom.Bounds{Top: 0, Left: 0, Bottom: 2, Right: 5}
	if b.Bounds != want || b.Name != "" {
		t.Fatalf("unexpected box %+v", b)
	}
}

func TestTraceGeneratedBoxes(t *testing.T) {
	for w := 2; w <= 12; w++ {
		for h := 2; h <= 6; h++ {
			lines := []string{"+" + strings.Repeat("-", w-1) + "+"}
			for i := 1; i < h; i++ {
				lines = append(lines, "|"+strings.Repeat(" ", w-1)+"|")
			}
			lines = append(lines, lines[0])
			boxes, ds := NewTracer(gridOf(lines...)).TraceAll()
			if len(ds) != 0 || len(boxes) != 1 {
				t.Fatalf("w=%d h=%d: boxes=%v diags=%v", w, h, boxes, ds)
			}
			want := geom.Bounds{Top: 0, Left: 0, Bottom: h, Right: w}
			if boxes[0].Bounds != want {
				t.Fatalf("w=%d h=%d: got %v want %v", w, h, boxes[0].Bounds, want)
			}
		}
	}
}

func TestTraceName(t *testing.T) {
	g := gridOf("+-- Login Form --+", "|                |", "+----------------+")
	b, ds := NewTracer(g).Trace(geom.P(0, 0))
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics: %v", ds)
	}
	if b.Name != "Login Form" {
		t.Fatalf("unexpected name %q", b.Name)
	}
}

func TestTraceUnclosedBottom(t *testing.T) {
	g := gridOf("+----+", "|    |", "+----")
	boxes, ds := NewTracer(g).TraceAll()
	if len(boxes) != 0 || len(ds) != 1 {
		t.Fatalf("boxes=%v diags=%v", boxes, ds)
	}
	d, ok := ds[0].Detail.(diag.UnclosedBox)
	if !ok || d.Direction != diag.Bottom {
		t.Fatalf("expected unclosed bottom, got %v", ds[0])
	}
}

func TestTraceUnclosedTop(t *testing.T) {
	g := gridOf("+----", "|    |", "+----+")
	_, ds := NewTracer(g).Trace(geom.P(0, 0))
	if len(ds) != 1 || ds[0].Detail.(diag.UnclosedBox).Direction != diag.Top {
		t.Fatalf("expected unclosed top, got %v", ds)
	}
	if ds[0].Pos != geom.P(0, 0) {
		t.Fatalf("unclosed top is reported at the start corner, got %v", ds[0].Pos)
	}
}

func TestTraceUnclosedTopBesideBox(t *testing.T) {
	g := gridOf("+----   +----+", "|    |  |    |", "+----+  +----+")
	boxes, ds := NewTracer(g).TraceAll()
	if len(boxes) != 1 || boxes[0].Bounds != (geom.Bounds{Top: 0, Left: 8, Bottom: 2, Right: 13}) {
		t.Fatalf("expected only the right box, got %v", boxes)
	}
	if len(ds) != 1 {
		t.Fatalf("expected one diagnostic, got %v", ds)
	}
	if d, ok := ds[0].Detail.(diag.UnclosedBox); !ok || d.Direction != diag.Top || ds[0].Pos != geom.P(0, 0) {
		t.Fatalf("expected unclosed top at the start corner, got %v", ds[0])
	}
}

func TestTraceUnclosedRight(t *testing.T) {
	g := gridOf("+----+", "|     ", "|    |", "+----+")
	_, ds := NewTracer(g).Trace(geom.P(0, 0))
	if len(ds) != 1 || ds[0].Detail.(diag.UnclosedBox).Direction != diag.Right {
		t.Fatalf("expected unclosed right, got %v", ds)
	}
}

func TestTraceUnclosedLeft(t *testing.T) {
	g := gridOf("+----+", "|    |", "     |", "+----+")
	_, ds := NewTracer(g).Trace(geom.P(0, 0))
	if len(ds) != 1 || ds[0].Detail.(diag.UnclosedBox).Direction != diag.Left {
		t.Fatalf("expected unclosed left, got %v", ds)
	}
}

func TestTraceMisalignedPipe(t *testing.T) {
	g := gridOf("+----+", "|     |", "+----+")
	_, ds := NewTracer(g).Trace(geom.P(0, 0))
	if len(ds) != 1 {
		t.Fatalf("expected one diagnostic, got %v", ds)
	}
	mp, ok := ds[0].Detail.(diag.MisalignedPipe)
	if !ok || mp.ExpectedCol != 5 || mp.ActualCol != 6 {
		t.Fatalf("unexpected detail %v", ds[0])
	}
}

func TestTraceMismatchedWidth(t *testing.T) {
	g := gridOf("+----+", "|    |", "+-----+")
	_, ds := NewTracer(g).Trace(geom.P(0, 0))
	if len(ds) != 1 {
		t.Fatalf("expected one diagnostic, got %v", ds)
	}
	mw, ok := ds[0].Detail.(diag.MismatchedWidth)
	if !ok || mw.TopWidth != 5 || mw.BottomWidth != 6 || mw.BottomRow != 2 {
		t.Fatalf("unexpected detail %v", ds[0])
	}
}

func TestTraceAllCollectsEveryFailure(t *testing.T) {
	g := gridOf(
		"+---+  +---+  +---+",
		"|   |  |   |  |   |",
		"+---+  +---   +---+",
		"",
		"+---+",
		"|   |",
		"+--- ",
	)
	boxes, ds := NewTracer(g).TraceAll()
	if len(boxes) != 2 {
		t.Fatalf("expected 2 good boxes, got %d", len(boxes))
	}
	if len(ds.Errors()) != 2 {
		t.Fatalf("expected 2 errors, got %v", ds)
	}
}

func TestCandidatesSkipNonTopLeftCorners(t *testing.T) {
	g := gridOf("a + b", "+--+", "|  |", "+--+")
	c := NewTracer(g).Candidates()
	if len(c) != 1 || c[0] != geom.P(1, 0) {
		t.Fatalf("unexpected candidates %v", c)
	}
}

func TestDividers(t *testing.T) {
	g := gridOf(
		"+-----+",
		"| a   |",
		"|=====|",
		"| === |",
		"|=====|",
		"+-----+",
	)
	rows := Dividers(g, geom.Bounds{Top: 0, Left: 0, Bottom: 5, Right: 6})
	if len(rows) != 2 || rows[0] != 2 || rows[1] != 4 {
		t.Fatalf("unexpected divider rows %v", rows)
	}
}

func TestSharedWallBoxes(t *testing.T) {
	g := gridOf("+--+--+", "|  |  |", "+--+--+")
	roots, ds := Detect(g, 0)
	if len(ds) != 0 {
		t.Fatalf("unexpected diagnostics %v", ds)
	}
	if len(roots) != 2 || roots[0].Bounds.Left != 0 || roots[1].Bounds.Left != 3 {
		t.Fatalf("unexpected roots %+v", roots)
	}
}
