/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package elements recognises typed inline elements in a single line of box
// content and infers their alignment.
package elements

import (
	"regexp"
	"sort"
	"strings"
	"unicode"

	"gowireframe/internal/ast"
	"gowireframe/internal/geom"
)

// Recognizer turns one trimmed content run into an element. Parse returns
// false to let lower-priority recognizers try.
type Recognizer interface {
	Name() string
	Priority() int
	CanParse(content string) bool
	Parse(content string, pos geom.Position, container geom.Bounds) (ast.Element, bool)
}

var (
	reButton   = regexp.MustCompile(`^\[\s*([^\[\]]+?)\s*\]$`)
	reInput    = regexp.MustCompile(`^#([A-Za-z_][A-Za-z0-9_-]*)$`)
	reCheckbox = regexp.MustCompile(`^\[([xX ])\]\s+(.+)$`)
	reLink     = regexp.MustCompile(`^"(.+)"$`)
	reEmphasis = regexp.MustCompile(`^\*\s+(.+)$`)
)

type ButtonRecognizer struct{ Align AlignStrategy }

func (ButtonRecognizer) Name() string                 { return "button" }
func (ButtonRecognizer) Priority() int                { return 100 }
func (ButtonRecognizer) CanParse(content string) bool { return reButton.MatchString(content) }

func (r ButtonRecognizer) Parse(content string, pos geom.Position, container geom.Bounds) (ast.Element, bool) {
	m := reButton.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}
	text := strings.TrimSpace(m[1])
	if text == "" {
		return nil, false
	}
	return ast.Button{ID: Slug(text), Text: text, Pos: pos, Align: alignOf(r.Align, content, pos, container)}, true
}

type InputRecognizer struct{ Align AlignStrategy }

func (InputRecognizer) Name() string                 { return "input" }
func (InputRecognizer) Priority() int                { return 90 }
func (InputRecognizer) CanParse(content string) bool { return reInput.MatchString(content) }

func (r InputRecognizer) Parse(content string, pos geom.Position, container geom.Bounds) (ast.Element, bool) {
	m := reInput.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}
	return ast.Input{ID: m[1], Pos: pos, Align: alignOf(r.Align, content, pos, container)}, true
}

type CheckboxRecognizer struct{ Align AlignStrategy }

func (CheckboxRecognizer) Name() string                 { return "checkbox" }
func (CheckboxRecognizer) Priority() int                { return 85 }
func (CheckboxRecognizer) CanParse(content string) bool { return reCheckbox.MatchString(content) }

func (r CheckboxRecognizer) Parse(content string, pos geom.Position, container geom.Bounds) (ast.Element, bool) {
	m := reCheckbox.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}
	label := strings.TrimSpace(m[2])
	if label == "" {
		return nil, false
	}
	return ast.Checkbox{
		Label:   label,
		Checked: m[1] != " ",
		Pos:     pos,
		Align:   alignOf(r.Align, content, pos, container),
	}, true
}

type LinkRecognizer struct{ Align AlignStrategy }

func (LinkRecognizer) Name() string                 { return "link" }
func (LinkRecognizer) Priority() int                { return 80 }
func (LinkRecognizer) CanParse(content string) bool { return reLink.MatchString(content) }

func (r LinkRecognizer) Parse(content string, pos geom.Position, container geom.Bounds) (ast.Element, bool) {
	m := reLink.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}
	text := strings.TrimSpace(m[1])
	if text == "" {
		return nil, false
	}
	return ast.Link{ID: Slug(text), Text: text, Pos: pos, Align: alignOf(r.Align, content, pos, container)}, true
}

type EmphasisRecognizer struct{ Align AlignStrategy }

func (EmphasisRecognizer) Name() string                 { return "emphasis" }
func (EmphasisRecognizer) Priority() int                { return 70 }
func (EmphasisRecognizer) CanParse(content string) bool { return reEmphasis.MatchString(content) }

func (r EmphasisRecognizer) Parse(content string, pos geom.Position, container geom.Bounds) (ast.Element, bool) {
	m := reEmphasis.FindStringSubmatch(content)
	if m == nil {
		return nil, false
	}
	return ast.Text{
		Content:  strings.TrimSpace(m[1]),
		Emphasis: true,
		Pos:      pos,
		Align:    alignOf(r.Align, content, pos, container),
	}, true
}

// TextRecognizer matches anything.
type TextRecognizer struct{ Align AlignStrategy }

func (TextRecognizer) Name() string         { return "text" }
func (TextRecognizer) Priority() int        { return 1 }
func (TextRecognizer) CanParse(string) bool { return true }

func (r TextRecognizer) Parse(content string, pos geom.Position, container geom.Bounds) (ast.Element, bool) {
	return ast.Text{Content: content, Pos: pos, Align: alignOf(r.Align, content, pos, container)}, true
}

func alignOf(s AlignStrategy, content string, pos geom.Position, container geom.Bounds) ast.Align {
	if s == nil {
		s = Computed{}
	}
	return s.Align(content, pos, container)
}

// Registry tries recognizers in descending priority. Recognizers with equal
// priority keep their declared order.
type Registry struct {
	recognizers []Recognizer
	fallback    Recognizer
}

// NewRegistry sorts rs by priority. The plain text recognizer is always the
// last resort even when rs omits it.
func NewRegistry(rs ...Recognizer) *Registry {
	sorted := append([]Recognizer(nil), rs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() > sorted[j].Priority() })
	return &Registry{recognizers: sorted, fallback: TextRecognizer{Align: AlwaysLeft{}}}
}

// Default is the standard recognizer set.
func Default() *Registry {
	return NewRegistry(
		ButtonRecognizer{},
		InputRecognizer{Align: AlwaysLeft{}},
		CheckboxRecognizer{Align: AlwaysLeft{}},
		LinkRecognizer{},
		EmphasisRecognizer{},
		TextRecognizer{Align: AlwaysLeft{}},
	)
}

// Recognizers lists the registered recognizers in the order they are tried.
func (r *Registry) Recognizers() []Recognizer {
	return append([]Recognizer(nil), r.recognizers...)
}

// Parse returns the first element any recognizer produces for content.
func (r *Registry) Parse(content string, pos geom.Position, container geom.Bounds) ast.Element {
	for _, rec := range r.recognizers {
		if !rec.CanParse(content) {
			continue
		}
		if e, ok := rec.Parse(content, pos, container); ok {
			return e
		}
	}
	e, _ := r.fallback.Parse(content, pos, container)
	return e
}

// Slug lowercases s and collapses every run of non-alphanumerics into '-'.
func Slug(s string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
