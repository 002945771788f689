/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package detect

import (
	"sort"

	"gowireframe/internal/diag"
	"gowireframe/internal/grid"
)

// DefaultDeepNestingLimit is the depth above which DeepNesting is reported.
const DefaultDeepNestingLimit = 4

// arena holds the flat boxes plus the parent/child relation as indices, so
// the final tree can be built in one pass without aliasing the flat slice.
type arena struct {
	boxes    []Box
	parentOf []int
	children [][]int
}

// BuildHierarchy arranges flat boxes into a forest. A box's parent is the
// smallest box that strictly contains it. Every pair of boxes that overlaps
// without containment is reported and no forest is returned in that case.
// Nesting deeper than limit yields a warning alongside the forest.
func BuildHierarchy(flat []Box, limit int) ([]Box, diag.List) {
	if limit <= 0 {
		limit = DefaultDeepNestingLimit
	}
	a := &arena{
		boxes:    flat,
		parentOf: make([]int, len(flat)),
		children: make([][]int, len(flat)),
	}

	order := make([]int, len(flat))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return flat[order[i]].Bounds.Area() > flat[order[j]].Bounds.Area()
	})

	for _, i := range order {
		a.parentOf[i] = -1
		for _, j := range order {
			if j == i || !flat[j].Bounds.StrictlyContains(flat[i].Bounds) {
				continue
			}
			p := a.parentOf[i]
			if p == -1 || flat[j].Bounds.Area() < flat[p].Bounds.Area() {
				a.parentOf[i] = j
			}
		}
	}

	var diags diag.List
	for i := range flat {
		for j := i + 1; j < len(flat); j++ {
			bi, bj := flat[i].Bounds, flat[j].Bounds
			if bi.StrictlyContains(bj) || bj.StrictlyContains(bi) || !bi.Overlaps(bj) {
				continue
			}
			diags = append(diags, diag.New(diag.OverlappingBoxes{Box1: bi, Box2: bj}, bj.TopLeft()))
		}
	}
	if diags.HasErrors() {
		return nil, diags
	}

	var roots []int
	for _, i := range order {
		if p := a.parentOf[i]; p >= 0 {
			a.children[p] = append(a.children[p], i)
		} else {
			roots = append(roots, i)
		}
	}
	for i := range a.children {
		a.sortByPosition(a.children[i])
	}
	a.sortByPosition(roots)

	out := make([]Box, 0, len(roots))
	for _, r := range roots {
		if d := a.depth(r); d > limit {
			diags = append(diags, diag.New(diag.DeepNesting{Depth: d, Limit: limit}, flat[r].Bounds.TopLeft()))
		}
		out = append(out, a.build(r))
	}
	return out, diags
}

func (a *arena) sortByPosition(ids []int) {
	sort.SliceStable(ids, func(i, j int) bool {
		bi, bj := a.boxes[ids[i]].Bounds, a.boxes[ids[j]].Bounds
		if bi.Top != bj.Top {
			return bi.Top < bj.Top
		}
		return bi.Left < bj.Left
	})
}

// depth counts levels, a childless box having depth 1.
func (a *arena) depth(i int) int {
	d := 0
	for _, c := range a.children[i] {
		d = max(d, a.depth(c))
	}
	return d + 1
}

func (a *arena) build(i int) Box {
	b := a.boxes[i]
	out := Box{Name: b.Name, Bounds: b.Bounds}
	for _, c := range a.children[i] {
		out.Children = append(out.Children, a.build(c))
	}
	return out
}

// Detect traces all boxes in g and builds their hierarchy, returning the
// roots together with every diagnostic found along the way.
func Detect(g *grid.Grid, limit int) ([]Box, diag.List) {
	flat, diags := NewTracer(g).TraceAll()
	roots, hd := BuildHierarchy(flat, limit)
	return roots, append(diags, hd...)
}
