/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package fixer

import (
	"fmt"
	"strings"

	"gowireframe/internal/diag"
)

// Strategy rewrites source text to resolve one diagnostic kind. Apply returns
// false when it declines; it must never return unchanged text as a success.
type Strategy interface {
	Name() string
	CanFix(k diag.Kind) bool
	Apply(text string, d diag.Diagnostic) (string, FixedIssue, bool)
}

// DefaultStrategies is the built-in strategy set in the order it is consulted.
func DefaultStrategies() []Strategy {
	return []Strategy{PipeAligner{}, TabExpander{}, BracketCloser{}, BorderExtender{}}
}

// lineEdit applies fn to the runes of one line of text.
func lineEdit(text string, row int, fn func([]rune) ([]rune, bool)) (string, bool) {
	lines := strings.Split(text, "\n")
	if row < 0 || row >= len(lines) {
		return text, false
	}
	out, ok := fn([]rune(lines[row]))
	if !ok {
		return text, false
	}
	lines[row] = string(out)
	return strings.Join(lines, "\n"), true
}

func insertAt(rs []rune, col int, ins ...rune) []rune {
	out := make([]rune, 0, len(rs)+len(ins))
	out = append(out, rs[:col]...)
	out = append(out, ins...)
	return append(out, rs[col:]...)
}

func repeat(r rune, n int) []rune {
	out := make([]rune, n)
	for i := range out {
		out[i] = r
	}
	return out
}

// PipeAligner moves a misplaced '|' to its expected column by inserting or
// removing spaces directly before it. It declines when anything but spaces
// would have to be removed.
type PipeAligner struct{}

func (PipeAligner) Name() string            { return "align-pipe" }
func (PipeAligner) CanFix(k diag.Kind) bool { return k == diag.KindMisalignedPipe }

func (PipeAligner) Apply(text string, d diag.Diagnostic) (string, FixedIssue, bool) {
	mp, ok := d.Detail.(diag.MisalignedPipe)
	if !ok || mp.ExpectedCol == mp.ActualCol || mp.ExpectedCol < 0 {
		return text, FixedIssue{}, false
	}
	out, ok := lineEdit(text, d.Pos.Row, func(rs []rune) ([]rune, bool) {
		if mp.ActualCol >= len(rs) || rs[mp.ActualCol] != '|' {
			return nil, false
		}
		if mp.ActualCol < mp.ExpectedCol {
			return insertAt(rs, mp.ActualCol, repeat(' ', mp.ExpectedCol-mp.ActualCol)...), true
		}
		for _, r := range rs[mp.ExpectedCol:mp.ActualCol] {
			if r != ' ' {
				return nil, false
			}
		}
		return append(append([]rune(nil), rs[:mp.ExpectedCol]...), rs[mp.ActualCol:]...), true
	})
	if !ok {
		return text, FixedIssue{}, false
	}
	return out, FixedIssue{
		Kind:        diag.KindMisalignedPipe,
		Line:        d.Pos.Row + 1,
		Description: fmt.Sprintf("moved '|' from column %d to column %d", mp.ActualCol+1, mp.ExpectedCol+1),
	}, true
}

// TabExpander replaces every tab on the reported line with two spaces.
type TabExpander struct{}

func (TabExpander) Name() string            { return "expand-tabs" }
func (TabExpander) CanFix(k diag.Kind) bool { return k == diag.KindUnusualSpacing }

func (TabExpander) Apply(text string, d diag.Diagnostic) (string, FixedIssue, bool) {
	n := 0
	out, ok := lineEdit(text, d.Pos.Row, func(rs []rune) ([]rune, bool) {
		s := string(rs)
		n = strings.Count(s, "\t")
		if n == 0 {
			return nil, false
		}
		return []rune(strings.ReplaceAll(s, "\t", "  ")), true
	})
	if !ok {
		return text, FixedIssue{}, false
	}
	return out, FixedIssue{
		Kind:        diag.KindUnusualSpacing,
		Line:        d.Pos.Row + 1,
		Description: fmt.Sprintf("replaced %d tab(s) with spaces", n),
	}, true
}

// BracketCloser adds the missing ']' right after the content, reusing a
// trailing space so the line keeps its width.
type BracketCloser struct{}

func (BracketCloser) Name() string            { return "close-bracket" }
func (BracketCloser) CanFix(k diag.Kind) bool { return k == diag.KindUnclosedBracket }

func (BracketCloser) Apply(text string, d diag.Diagnostic) (string, FixedIssue, bool) {
	ub, ok := d.Detail.(diag.UnclosedBracket)
	if !ok {
		return text, FixedIssue{}, false
	}
	out, ok := lineEdit(text, d.Pos.Row, func(rs []rune) ([]rune, bool) {
		end := ub.ContentEnd
		if end < 0 || end > len(rs) {
			return nil, false
		}
		if end < len(rs) && rs[end] == ' ' {
			cp := append([]rune(nil), rs...)
			cp[end] = ']'
			return cp, true
		}
		return insertAt(rs, end, ']'), true
	})
	if !ok {
		return text, FixedIssue{}, false
	}
	return out, FixedIssue{
		Kind:        diag.KindUnclosedBracket,
		Line:        d.Pos.Row + 1,
		Description: fmt.Sprintf("closed bracket after %q", ub.Content),
	}, true
}

// BorderExtender lengthens the shorter horizontal border of a box with dashes
// so both end in the same column. Both borders must start at the reported
// column.
type BorderExtender struct{}

func (BorderExtender) Name() string            { return "extend-border" }
func (BorderExtender) CanFix(k diag.Kind) bool { return k == diag.KindMismatchedWidth }

func (BorderExtender) Apply(text string, d diag.Diagnostic) (string, FixedIssue, bool) {
	mw, ok := d.Detail.(diag.MismatchedWidth)
	if !ok || mw.TopWidth == mw.BottomWidth {
		return text, FixedIssue{}, false
	}
	lines := strings.Split(text, "\n")
	left := d.Pos.Col
	corners := func(row, width int) bool {
		if row < 0 || row >= len(lines) {
			return false
		}
		rs := []rune(lines[row])
		return left+width < len(rs) && rs[left] == '+' && rs[left+width] == '+'
	}
	if !corners(d.Pos.Row, mw.TopWidth) || !corners(mw.BottomRow, mw.BottomWidth) {
		return text, FixedIssue{}, false
	}

	row, width, edge := d.Pos.Row, mw.TopWidth, "top"
	if mw.BottomWidth < mw.TopWidth {
		row, width, edge = mw.BottomRow, mw.BottomWidth, "bottom"
	}
	grow := max(mw.TopWidth, mw.BottomWidth) - width
	rs := []rune(lines[row])
	lines[row] = string(insertAt(rs, left+width, repeat('-', grow)...))
	return strings.Join(lines, "\n"), FixedIssue{
		Kind:        diag.KindMismatchedWidth,
		Line:        row + 1,
		Description: fmt.Sprintf("extended %s border by %d", edge, grow),
	}, true
}
