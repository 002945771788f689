/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package fixer repairs the fixable subset of wireframe diagnostics by
// rewriting the source and re-checking it until nothing fixable remains.
package fixer

import (
	"errors"
	"log/slog"

	"gowireframe/internal/diag"
	"gowireframe/internal/grid"
	"gowireframe/internal/log"
)

// DefaultMaxIterations bounds the fix loop.
const DefaultMaxIterations = 100

// ErrIterationLimit is returned when the loop is still applying fixes after
// the configured number of iterations.
var ErrIterationLimit = errors.New("fixer: iteration limit reached")

// Checker reports the diagnostics of a source text.
type Checker interface {
	Check(text string) diag.List
}

// FixedIssue describes one applied rewrite. Line is 1-based.
type FixedIssue struct {
	Kind        diag.Kind `json:"kind" yaml:"kind"`
	Line        int       `json:"line" yaml:"line"`
	Description string    `json:"description" yaml:"description"`
}

// Result is the outcome of a fix run. Remaining holds the diagnostics of the
// final text, fixable or not.
type Result struct {
	Text      string
	Fixed     []FixedIssue
	Remaining diag.List
}

type Options struct {
	MaxIterations int
	Strategies    []Strategy
	Logger        *slog.Logger
}

type Fixer struct {
	check      Checker
	strategies []Strategy
	max        int
	log        *slog.Logger
}

func New(check Checker, opts Options) *Fixer {
	f := &Fixer{check: check, strategies: opts.Strategies, max: opts.MaxIterations, log: opts.Logger}
	if len(f.strategies) == 0 {
		f.strategies = DefaultStrategies()
	}
	if f.max <= 0 {
		f.max = DefaultMaxIterations
	}
	if f.log == nil {
		f.log = log.WithComponent("fixer")
	}
	return f
}

// Fix applies one fix per iteration, re-checking the text after each, until
// no diagnostics remain or none of them can be fixed. Unfixable diagnostics do
// not stop the loop while fixable ones remain; they end up in Remaining.
// Positions move after every edit, so fixes are never batched.
func (f *Fixer) Fix(text string) (Result, error) {
	res := Result{Text: grid.NormalizeNewlines(text)}
	for i := 0; ; i++ {
		ds := f.check.Check(res.Text)
		res.Remaining = ds
		if len(ds) == 0 {
			return res, nil
		}
		next, issue, ok := f.applyFirst(res.Text, ds)
		if !ok {
			return res, nil
		}
		if i >= f.max {
			f.log.Debug("fix loop did not settle", slog.Int("iterations", i))
			return res, ErrIterationLimit
		}
		res.Text = next
		res.Fixed = append(res.Fixed, issue)
		f.log.Debug("applied fix",
			slog.Int("iteration", i+1),
			slog.String("kind", issue.Kind.String()),
			slog.Int("line", issue.Line))
	}
}

func (f *Fixer) applyFirst(text string, ds diag.List) (string, FixedIssue, bool) {
	for _, d := range ds {
		for _, s := range f.strategies {
			if !s.CanFix(d.Kind()) {
				continue
			}
			if out, issue, ok := s.Apply(text, d); ok && out != text {
				return out, issue, true
			}
		}
	}
	return text, FixedIssue{}, false
}

// FixOnly returns the fixed text, or text itself when the run fails.
func (f *Fixer) FixOnly(text string) string {
	res, err := f.Fix(text)
	if err != nil {
		return text
	}
	return res.Text
}
