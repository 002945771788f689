/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package geom

import "testing"

func TestBoundsDerived(t *testing.T) {
	b := B(P(2, 5), P(0, 0))
	if b.Top != 0 || b.Left != 0 || b.Bottom != 2 || b.Right != 5 {
		t.Fatalf("unexpected bounds: %+v", b)
	}
	if b.Width() != 5 || b.Height() != 2 || b.Area() != 10 {
		t.Fatalf("unexpected width/height/area: %d %d %d", b.Width(), b.Height(), b.Area())
	}
	line := B(P(3, 1), P(3, 9))
	if line.Height() != 0 || line.Area() != 0 {
		t.Fatalf("degenerate bounds should have zero height and area: %+v", line)
	}
}

func TestStrictContainment(t *testing.T) {
	outer := Bounds{Top: 0, Left: 0, Bottom: 10, Right: 20}
	inner := Bounds{Top: 1, Left: 1, Bottom: 9, Right: 19}
	if !outer.StrictlyContains(inner) {
		t.Fatalf("expected strict containment")
	}
	if outer.StrictlyContains(outer) {
		t.Fatalf("equal bounds must not be strictly contained")
	}
	touching := Bounds{Top: 0, Left: 1, Bottom: 9, Right: 19}
	if outer.StrictlyContains(touching) {
		t.Fatalf("touching top edge must not count as containment")
	}
	if inner.StrictlyContains(outer) {
		t.Fatalf("containment is not symmetric")
	}
}

func TestOverlaps(t *testing.T) {
	a := Bounds{Top: 0, Left: 0, Bottom: 4, Right: 10}
	b := Bounds{Top: 2, Left: 5, Bottom: 6, Right: 15}
	if !a.Overlaps(b) || !b.Overlaps(a) {
		t.Fatalf("expected partial overlap")
	}
	wall := Bounds{Top: 0, Left: 10, Bottom: 4, Right: 20}
	if a.Overlaps(wall) {
		t.Fatalf("shared wall must not overlap")
	}
	far := Bounds{Top: 10, Left: 0, Bottom: 12, Right: 4}
	if a.Overlaps(far) {
		t.Fatalf("disjoint boxes must not overlap")
	}
}

func TestPositionArithmetic(t *testing.T) {
	p := P(3, 4)
	if p.Right(2) != P(3, 6) || p.Left(1) != P(3, 3) || p.Down(2) != P(5, 4) || p.Up(3) != P(0, 4) {
		t.Fatalf("unexpected arithmetic results")
	}
	if p.Offset(10) != P(13, 4) {
		t.Fatalf("unexpected offset: %v", p.Offset(10))
	}
}
