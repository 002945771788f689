/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package diag

import (
	"fmt"
	"sort"
	"strings"

	"gowireframe/internal/geom"
)

// Diagnostic is a value object: it is never mutated after construction.
// Pos is zero-based and absolute within the source file.
type Diagnostic struct {
	Detail  Detail
	Message string
	Pos     geom.Position
	Snippet string
}

// New builds a diagnostic with the kind's default message.
func New(d Detail, pos geom.Position) Diagnostic {
	return Diagnostic{Detail: d, Message: d.describe(), Pos: pos}
}

func (d Diagnostic) Kind() Kind         { return d.Detail.Kind() }
func (d Diagnostic) Severity() Severity { return d.Detail.Kind().Severity() }
func (d Diagnostic) IsError() bool      { return d.Severity() == SeverityError }

// WithSnippet returns a copy carrying the source line at Pos, when lines has one.
func (d Diagnostic) WithSnippet(lines []string) Diagnostic {
	if d.Pos.Row >= 0 && d.Pos.Row < len(lines) {
		d.Snippet = lines[d.Pos.Row]
	}
	return d
}

// Shift returns a copy moved down by rows. Structured positions inside the
// detail that refer to rows move with it.
func (d Diagnostic) Shift(rows int) Diagnostic {
	if rows == 0 {
		return d
	}
	d.Pos = d.Pos.Offset(rows)
	switch det := d.Detail.(type) {
	case MismatchedWidth:
		det.BottomRow += rows
		d.Detail = det
	case OverlappingBoxes:
		det.Box1 = det.Box1.Offset(rows)
		det.Box2 = det.Box2.Offset(rows)
		d.Detail = det
		d.Message = det.describe()
	case DuplicateSceneID:
		det.First = det.First.Offset(rows)
		d.Detail = det
		d.Message = det.describe()
	}
	return d
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%d:%d: %s: %s", d.Pos.Row+1, d.Pos.Col+1, d.Severity(), d.Message)
}

// Render prints the one-line summary followed, when a snippet is present, by
// the source line and a caret under the offending column.
func (d Diagnostic) Render() string {
	var sb strings.Builder
	sb.WriteString(d.String())
	if d.Snippet == "" {
		return sb.String()
	}
	gutter := fmt.Sprintf("%d | ", d.Pos.Row+1)
	sb.WriteString("\n")
	sb.WriteString(gutter)
	sb.WriteString(d.Snippet)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat(" ", len(gutter)-2))
	sb.WriteString("| ")
	// Tabs in the snippet keep their width in the caret line.
	for i, r := range []rune(d.Snippet) {
		if i >= d.Pos.Col {
			break
		}
		if r == '\t' {
			sb.WriteRune('\t')
		} else {
			sb.WriteRune(' ')
		}
	}
	sb.WriteString("^")
	return sb.String()
}

// Report is the serialisable form used by the CLI and HTTP API.
type Report struct {
	Kind     string `json:"kind" yaml:"kind"`
	Severity string `json:"severity" yaml:"severity"`
	Message  string `json:"message" yaml:"message"`
	Line     int    `json:"line" yaml:"line"`
	Column   int    `json:"column" yaml:"column"`
	Snippet  string `json:"snippet,omitempty" yaml:"snippet,omitempty"`
}

// Report converts to 1-based line and column numbers.
func (d Diagnostic) Report() Report {
	return Report{
		Kind:     d.Kind().String(),
		Severity: d.Severity().String(),
		Message:  d.Message,
		Line:     d.Pos.Row + 1,
		Column:   d.Pos.Col + 1,
		Snippet:  d.Snippet,
	}
}

// List is an ordered sequence of diagnostics. A List with at least one error
// is returned as the error value of a failed parse.
type List []Diagnostic

func (l List) Error() string {
	switch len(l) {
	case 0:
		return "no diagnostics"
	case 1:
		return l[0].String()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d problems:", len(l))
	for _, d := range l {
		sb.WriteString("\n  ")
		sb.WriteString(d.String())
	}
	return sb.String()
}

func (l List) HasErrors() bool {
	for _, d := range l {
		if d.IsError() {
			return true
		}
	}
	return false
}

func (l List) Errors() List   { return l.filter(SeverityError) }
func (l List) Warnings() List { return l.filter(SeverityWarning) }

func (l List) filter(s Severity) List {
	var out List
	for _, d := range l {
		if d.Severity() == s {
			out = append(out, d)
		}
	}
	return out
}

// Err returns l as an error when it holds an error, else nil.
func (l List) Err() error {
	if l.HasErrors() {
		return l
	}
	return nil
}

// Sorted returns a copy ordered by position; diagnostics at the same position
// keep their discovery order.
func (l List) Sorted() List {
	out := append(List(nil), l...)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i].Pos, out[j].Pos
		if a.Row != b.Row {
			return a.Row < b.Row
		}
		return a.Col < b.Col
	})
	return out
}

// WithSnippets attaches source lines to every diagnostic that lacks one.
func (l List) WithSnippets(lines []string) List {
	out := make(List, len(l))
	for i, d := range l {
		if d.Snippet == "" {
			d = d.WithSnippet(lines)
		}
		out[i] = d
	}
	return out
}

func (l List) Reports() []Report {
	out := make([]Report, 0, len(l))
	for _, d := range l {
		out = append(out, d.Report())
	}
	return out
}

// First returns the first diagnostic of kind k.
func (l List) First(k Kind) (Diagnostic, bool) {
	for _, d := range l {
		if d.Kind() == k {
			return d, true
		}
	}
	return Diagnostic{}, false
}
