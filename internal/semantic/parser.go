/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package semantic turns detected boxes and their content lines into scenes
// of typed elements.
package semantic

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode"
	"unicode/utf8"

	"gowireframe/internal/ast"
	"gowireframe/internal/detect"
	"gowireframe/internal/diag"
	"gowireframe/internal/elements"
	"gowireframe/internal/geom"
	"gowireframe/internal/grid"
	"gowireframe/internal/log"
)

const (
	DefaultSceneID    = "main"
	DefaultTransition = "none"
)

type Options struct {
	DeepNestingLimit int
	Registry         *elements.Registry
	Logger           *slog.Logger
}

// Parser is stateless between calls and safe for concurrent use.
type Parser struct {
	limit int
	reg   *elements.Registry
	log   *slog.Logger
}

func New(opts Options) *Parser {
	p := &Parser{limit: opts.DeepNestingLimit, reg: opts.Registry, log: opts.Logger}
	if p.limit <= 0 {
		p.limit = detect.DefaultDeepNestingLimit
	}
	if p.reg == nil {
		p.reg = elements.Default()
	}
	if p.log == nil {
		p.log = log.WithComponent("semantic")
	}
	return p
}

// Parse builds the AST for text and returns it with every diagnostic found,
// errors and warnings alike, ordered by position. The AST is only meaningful
// when the list holds no errors.
func (p *Parser) Parse(text string) (ast.AST, diag.List) {
	lines := splitLines(grid.NormalizeNewlines(text))
	diags := tabWarnings(lines)

	blocks := splitScenes(lines)
	if len(blocks) == 0 {
		blocks = []block{{}}
	}

	var (
		out  ast.AST
		seen = map[string]geom.Position{}
	)
	for i, b := range blocks {
		scene, ds := p.parseBlock(b, i)
		diags = append(diags, ds...)
		if first, dup := seen[scene.ID]; dup {
			diags = append(diags, diag.New(diag.DuplicateSceneID{ID: scene.ID, First: first}, scene.Pos))
			continue
		}
		seen[scene.ID] = scene.Pos
		out.Scenes = append(out.Scenes, scene)
	}

	p.log.Debug("parsed wireframe",
		slog.Int("lines", len(lines)),
		slog.Int("scenes", len(out.Scenes)),
		slog.Int("diagnostics", len(diags)))
	return out, diags.WithSnippets(lines).Sorted()
}

func (p *Parser) parseBlock(b block, index int) (ast.Scene, diag.List) {
	scene := ast.Scene{
		ID:         b.id,
		Title:      b.title,
		Transition: b.transition,
		Pos:        b.idPos,
	}
	if scene.ID == "" {
		scene.ID = DefaultSceneID
		if index > 0 {
			scene.ID = fmt.Sprintf("scene-%d", index+1)
		}
		scene.Pos = geom.P(b.start, 0)
	}
	if scene.Title == "" {
		scene.Title = capitalize(scene.ID)
	}
	if scene.Transition == "" {
		scene.Transition = DefaultTransition
	}

	g := grid.FromLines(b.lines)
	roots, detected := detect.Detect(g, p.limit)
	var diags diag.List
	for _, d := range detected {
		diags = append(diags, d.Shift(b.start))
	}

	bl := &builder{g: g, reg: p.reg, off: b.start, skipLoose: detected.HasErrors()}
	view := geom.Bounds{Top: -1, Left: -1, Bottom: g.Height(), Right: g.Width()}
	scene.Elements = bl.container(view, roots, true)
	diags = append(diags, bl.diags...)

	p.log.Debug("parsed scene",
		slog.String("scene", scene.ID),
		slog.Int("boxes", len(roots)),
		slog.Int("elements", len(scene.Elements)))
	return scene, diags
}

// builder walks one block's box forest. Grid rows are block relative; every
// position it emits is shifted by off.
type builder struct {
	g   *grid.Grid
	reg *elements.Registry
	off int
	// skipLoose drops text outside boxes; after a structural failure it is
	// usually a fragment of a broken box.
	skipLoose bool
	diags     diag.List
}

// container emits the elements of one box interior (or of the whole scene
// when top is set) in row order, then groups side by side boxes into rows.
func (bl *builder) container(b geom.Bounds, children []detect.Box, top bool) []ast.Element {
	var dividers map[int]bool
	if !top {
		dividers = map[int]bool{}
		for _, r := range detect.Dividers(bl.g, b) {
			dividers[r] = true
		}
	}

	var out []ast.Element
	for r := b.Top + 1; r < b.Bottom; r++ {
		owned := false
		for _, c := range children {
			if c.Bounds.Top == r {
				out = append(out, bl.box(c))
			}
			if c.Bounds.SpansRow(r) {
				owned = true
			}
		}
		if owned {
			continue
		}
		if dividers[r] {
			out = append(out, ast.Divider{Pos: geom.P(r+bl.off, b.Left+1)})
			continue
		}
		raw := bl.g.Text(r, b.Left+1, b.Right-1)
		content := strings.TrimSpace(raw)
		if content == "" {
			if !top {
				out = append(out, ast.Spacer{Pos: geom.P(r+bl.off, b.Left+1)})
			}
			continue
		}
		if top && bl.skipLoose {
			continue
		}
		lead := utf8.RuneCountInString(raw) - utf8.RuneCountInString(strings.TrimLeftFunc(raw, unicode.IsSpace))
		pos := geom.P(r+bl.off, b.Left+1+lead)
		bl.diags = append(bl.diags, elements.Validate(content, pos)...)
		out = append(out, bl.reg.Parse(content, pos, b))
	}
	if onlySpacers(out) {
		// A blank interior is an empty box, not a column of spacers.
		return nil
	}
	return groupRows(out, b)
}

func onlySpacers(elems []ast.Element) bool {
	for _, e := range elems {
		if e.Kind() != ast.KindSpacer {
			return false
		}
	}
	return true
}

func (bl *builder) box(b detect.Box) ast.Element {
	return ast.Box{
		ID:       elements.Slug(b.Name),
		Name:     b.Name,
		Bounds:   b.Bounds.Offset(bl.off),
		Children: bl.container(b.Bounds, b.Children, false),
	}
}

// groupRows replaces each run of two or more consecutive boxes that share
// top and bottom rows and sit left to right with a single Row.
func groupRows(elems []ast.Element, container geom.Bounds) []ast.Element {
	var out []ast.Element
	for i := 0; i < len(elems); {
		first, ok := elems[i].(ast.Box)
		if !ok {
			out = append(out, elems[i])
			i++
			continue
		}
		run := []ast.Element{first}
		last := first
		j := i + 1
		for ; j < len(elems); j++ {
			next, ok := elems[j].(ast.Box)
			if !ok || !rowAligned(last.Bounds, next.Bounds) {
				break
			}
			run = append(run, next)
			last = next
		}
		if len(run) < 2 {
			out = append(out, first)
			i++
			continue
		}
		span := first.Bounds.Union(last.Bounds)
		out = append(out, ast.Row{
			Children: run,
			Bounds:   span,
			Align:    elements.AlignSpan(span.Left, span.Right-span.Left+1, container),
		})
		i = j
	}
	return out
}

func rowAligned(a, b geom.Bounds) bool {
	return a.Top == b.Top && a.Bottom == b.Bottom && a.Right <= b.Left
}

// Check returns only the diagnostics of text.
func (p *Parser) Check(text string) diag.List {
	_, ds := p.Parse(text)
	return ds
}
