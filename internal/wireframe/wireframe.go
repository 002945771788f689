/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package wireframe is the entry point for turning ASCII wireframes into an
// AST: parse, parse with interaction metadata, and auto-fix.
package wireframe

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"gowireframe/internal/ast"
	"gowireframe/internal/detect"
	"gowireframe/internal/diag"
	"gowireframe/internal/elements"
	"gowireframe/internal/fixer"
	"gowireframe/internal/grid"
	"gowireframe/internal/interaction"
	"gowireframe/internal/log"
	"gowireframe/internal/semantic"
)

// Options configures a Parser. Zero values select the defaults.
type Options struct {
	DeepNestingLimit int
	MaxFixIterations int
	// CacheSize > 0 keeps that many parse results keyed by content hash.
	CacheSize int
	Registry  *elements.Registry
	Logger    *slog.Logger
}

// Parser is safe for concurrent use.
type Parser struct {
	sem   *semantic.Parser
	fix   *fixer.Fixer
	cache *lru.Cache[string, result]
	log   *slog.Logger
}

type result struct {
	tree  ast.AST
	diags diag.List
}

func New(opts Options) (*Parser, error) {
	l := opts.Logger
	if l == nil {
		l = log.WithComponent("wireframe")
	}
	if opts.DeepNestingLimit <= 0 {
		opts.DeepNestingLimit = detect.DefaultDeepNestingLimit
	}
	p := &Parser{log: l}
	p.sem = semantic.New(semantic.Options{DeepNestingLimit: opts.DeepNestingLimit, Registry: opts.Registry, Logger: l})
	p.fix = fixer.New(p, fixer.Options{MaxIterations: opts.MaxFixIterations, Logger: l})
	if opts.CacheSize > 0 {
		c, err := lru.New[string, result](opts.CacheSize)
		if err != nil {
			return nil, fmt.Errorf("create parse cache: %w", err)
		}
		p.cache = c
	}
	return p, nil
}

func (p *Parser) run(text string) (ast.AST, diag.List) {
	if p.cache == nil {
		return p.sem.Parse(text)
	}
	sum := sha256.Sum256([]byte(text))
	key := hex.EncodeToString(sum[:])
	r, ok := p.cache.Get(key)
	if !ok {
		tree, ds := p.sem.Parse(text)
		r = result{tree: tree, diags: ds}
		p.cache.Add(key, r)
	}
	return r.copy()
}

// copy hands each caller its own slices so cached results are never shared.
func (r result) copy() (ast.AST, diag.List) {
	tree := ast.MapAST(r.tree, func(e ast.Element) ast.Element { return e })
	return tree, slices.Clone(r.diags)
}

// Check returns every diagnostic of text.
func (p *Parser) Check(text string) diag.List {
	_, ds := p.run(text)
	return ds
}

// Parse returns the AST, or a diag.List error holding only the errors.
func (p *Parser) Parse(text string) (ast.AST, error) {
	tree, _, err := p.ParseWithWarnings(text)
	return tree, err
}

// ParseWithWarnings returns the AST with the non-fatal warnings, or the
// errors as a diag.List.
func (p *Parser) ParseWithWarnings(text string) (ast.AST, diag.List, error) {
	tree, ds := p.run(text)
	if ds.HasErrors() {
		return ast.AST{}, nil, ds.Errors()
	}
	return tree, ds.Warnings(), nil
}

// ParseWithInteractions parses text and merges the HCL interaction source
// into it. Diagnostics from the interaction source carry its positions.
func (p *Parser) ParseWithInteractions(text string, src []byte, filename string) (ast.AST, diag.List, error) {
	tree, warnings, err := p.ParseWithWarnings(text)
	if err != nil {
		return ast.AST{}, nil, err
	}
	bindings, ds := interaction.Parse(src, filename)
	merged, md := interaction.Merge(tree, bindings)
	ds = append(ds, md...)
	if ds.HasErrors() {
		lines := strings.Split(grid.NormalizeNewlines(string(src)), "\n")
		return ast.AST{}, nil, ds.Errors().WithSnippets(lines)
	}
	p.log.Debug("merged interactions", slog.Int("bindings", len(bindings)))
	return merged, warnings, nil
}

// Fix runs the auto-fix loop over text.
func (p *Parser) Fix(text string) (fixer.Result, error) { return p.fix.Fix(text) }

// FixOnly returns the fixed text, falling back to text on failure.
func (p *Parser) FixOnly(text string) string { return p.fix.FixOnly(text) }

var (
	defaultOnce   sync.Once
	defaultParser *Parser
)

// Default returns a shared parser with default options and no cache.
func Default() *Parser {
	defaultOnce.Do(func() {
		defaultParser, _ = New(Options{})
	})
	return defaultParser
}

func Parse(text string) (ast.AST, error) { return Default().Parse(text) }

func ParseWithWarnings(text string) (ast.AST, diag.List, error) {
	return Default().ParseWithWarnings(text)
}

func Fix(text string) (fixer.Result, error) { return Default().Fix(text) }

func FixOnly(text string) string { return Default().FixOnly(text) }
