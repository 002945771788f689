/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package elements

import (
	"testing"

	"gowireframe/internal/ast"
	"gowireframe/internal/diag"
	"gowireframe/internal/geom"
)

// container with a 20-column interior (columns 1..21).
var wide = geom.Bounds{Top: 0, Left: 0, Bottom: 4, Right: 22}

func TestRegistryRecognisesEachKind(t *testing.T) {
	reg := Default()
	cases := []struct {
		in   string
		kind ast.Kind
	}{
		{"[ Login ]", ast.KindButton},
		{"#email", ast.KindInput},
		{"[x] Remember me", ast.KindCheckbox},
		{"[ ] Subscribe", ast.KindCheckbox},
		{`"Forgot password?"`, ast.KindLink},
		{"* Important", ast.KindText},
		{"Hello world", ast.KindText},
		{"[ ]", ast.KindText},
		{`""`, ast.KindText},
	}
	for _, c := range cases {
		e := reg.Parse(c.in, geom.P(1, 1), wide)
		if e.Kind() != c.kind {
			t.Fatalf("%q: expected %s, got %s", c.in, c.kind, e.Kind())
		}
	}
}

func TestButtonFields(t *testing.T) {
	e := Default().Parse("[ Login ]", geom.P(1, 1), wide)
	b, ok := e.(ast.Button)
	if !ok {
		t.Fatalf("expected button, got %T", e)
	}
	if b.ID != "login" || b.Text != "Login" || b.Align != ast.AlignLeft {
		t.Fatalf("unexpected button %+v", b)
	}
}

func TestCheckboxAndEmphasis(t *testing.T) {
	reg := Default()
	cb := reg.Parse("[X] Remember me", geom.P(2, 8), wide).(ast.Checkbox)
	if !cb.Checked || cb.Label != "Remember me" || cb.Align != ast.AlignLeft {
		t.Fatalf("unexpected checkbox %+v", cb)
	}
	un := reg.Parse("[ ] Remember me", geom.P(2, 1), wide).(ast.Checkbox)
	if un.Checked {
		t.Fatalf("expected unchecked")
	}
	em := reg.Parse("* Welcome", geom.P(3, 1), wide).(ast.Text)
	if !em.Emphasis || em.Content != "Welcome" {
		t.Fatalf("unexpected emphasis %+v", em)
	}
}

func TestPlainTextAlwaysLeft(t *testing.T) {
	// Perfectly centred, but plain text never centres.
	e := Default().Parse("abcd", geom.P(1, 9), wide).(ast.Text)
	if e.Align != ast.AlignLeft {
		t.Fatalf("plain text must stay left, got %s", e.Align)
	}
}

type fixed struct{ prio int }

func (f fixed) Name() string         { return "fixed" }
func (f fixed) Priority() int        { return f.prio }
func (f fixed) CanParse(string) bool { return true }
func (f fixed) Parse(content string, pos geom.Position, _ geom.Bounds) (ast.Element, bool) {
	return ast.Link{ID: "fixed", Text: content, Pos: pos}, true
}

func TestRegistryOrderFollowsPriority(t *testing.T) {
	reg := NewRegistry(ButtonRecognizer{}, fixed{prio: 200})
	if got := reg.Recognizers()[0].Name(); got != "fixed" {
		t.Fatalf("highest priority must be tried first, got %s", got)
	}
	if e := reg.Parse("[ OK ]", geom.P(0, 0), wide); e.Kind() != ast.KindLink {
		t.Fatalf("expected fixed recognizer to win, got %s", e.Kind())
	}
	// Fallback is present even when not registered.
	if e := NewRegistry().Parse("x", geom.P(0, 0), wide); e.Kind() != ast.KindText {
		t.Fatalf("expected text fallback, got %s", e.Kind())
	}
}

func TestAlignSpan(t *testing.T) {
	cases := []struct {
		name      string
		col, size int
		want      ast.Align
	}{
		{"flush left", 1, 9, ast.AlignLeft},
		{"flush right", 13, 9, ast.AlignRight},
		{"exact centre", 9, 4, ast.AlignCenter},
		{"left of centre, not flush", 6, 4, ast.AlignLeft},
	}
	for _, c := range cases {
		if got := AlignSpan(c.col, c.size, wide); got != c.want {
			t.Fatalf("%s: expected %s, got %s", c.name, c.want, got)
		}
	}
	if got := AlignSpan(0, 1, geom.Bounds{Left: 0, Right: 2}); got != ast.AlignLeft {
		t.Fatalf("degenerate interior must be left, got %s", got)
	}
}

func TestAlignSymmetry(t *testing.T) {
	for width := 6; width <= 40; width += 2 {
		b := geom.Bounds{Left: 0, Right: width + 2}
		for size := 1; size < width; size++ {
			free := width + 1 - size
			if free%2 != 0 {
				continue
			}
			col := 1 + free/2
			if got := AlignSpan(col, size, b); got != ast.AlignCenter {
				t.Fatalf("width=%d size=%d: expected center, got %s", width, size, got)
			}
		}
	}
}

func TestSlug(t *testing.T) {
	cases := map[string]string{
		"Login":            "login",
		"Forgot password?": "forgot-password",
		"  Save & Exit  ":  "save-exit",
		"Step 2 of 3":      "step-2-of-3",
		"---":              "",
	}
	for in, want := range cases {
		if got := Slug(in); got != want {
			t.Fatalf("Slug(%q)=%q want %q", in, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	cases := []struct {
		in   string
		kind diag.Kind
	}{
		{"[ ]", diag.KindEmptyButton},
		{"[ Login", diag.KindUnclosedBracket},
		{"#1abc", diag.KindInvalidElement},
		{"#a b", diag.KindInvalidElement},
	}
	for _, c := range cases {
		ds := Validate(c.in, geom.P(3, 4))
		if len(ds) != 1 || ds[0].Kind() != c.kind {
			t.Fatalf("%q: expected %s, got %v", c.in, c.kind, ds)
		}
	}
	for _, ok := range []string{"[ OK ]", "#email", "# heading", "plain", "[x] done"} {
		if ds := Validate(ok, geom.P(0, 0)); len(ds) != 0 {
			t.Fatalf("%q: unexpected %v", ok, ds)
		}
	}
	ub := Validate("[ Login", geom.P(2, 5))[0].Detail.(diag.UnclosedBracket)
	if ub.ContentEnd != 12 {
		t.Fatalf("expected content end 12, got %d", ub.ContentEnd)
	}
}
