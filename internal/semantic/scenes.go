/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package semantic

import (
	"bufio"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"gowireframe/internal/diag"
	"gowireframe/internal/geom"
)

var (
	reSeparator = regexp.MustCompile(`^-{3,}$`)
	reDirective = regexp.MustCompile(`^@(\w+):\s*(.*)$`)
)

// block is one scene's slice of the source. Directive lines are blanked in
// lines so that row i of the block is file row start+i.
type block struct {
	start      int
	lines      []string
	id         string
	idPos      geom.Position
	title      string
	transition string
	content    bool
}

func (b block) empty() bool { return !b.content && b.id == "" && b.title == "" && b.transition == "" }

// splitLines splits normalised text into lines, keeping trailing whitespace.
func splitLines(text string) []string {
	var lines []string
	sc := bufio.NewScanner(strings.NewReader(text))
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	return lines
}

// splitScenes cuts the document on `---` lines and on a second `@scene:`
// directive within the same block.
func splitScenes(lines []string) []block {
	var (
		out []block
		cur = block{}
	)
	flush := func(next int) {
		if !cur.empty() {
			out = append(out, cur)
		}
		cur = block{start: next}
	}

	for row, line := range lines {
		trim := strings.TrimSpace(line)
		if reSeparator.MatchString(trim) {
			flush(row + 1)
			continue
		}
		m := reDirective.FindStringSubmatch(trim)
		if m == nil {
			cur.lines = append(cur.lines, line)
			if trim != "" {
				cur.content = true
			}
			continue
		}
		key, val := strings.ToLower(m[1]), strings.TrimSpace(m[2])
		if key == "scene" && cur.id != "" {
			flush(row)
		}
		switch key {
		case "scene":
			cur.id = val
			cur.idPos = geom.P(row, strings.Index(line, "@"))
		case "title":
			cur.title = val
		case "transition":
			cur.transition = val
		}
		cur.lines = append(cur.lines, "")
	}
	flush(len(lines))
	return out
}

func capitalize(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if n == 0 {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// tabWarnings reports one UnusualSpacing per line that contains a tab.
func tabWarnings(lines []string) diag.List {
	var out diag.List
	for row, line := range lines {
		n := strings.Count(line, "\t")
		if n == 0 {
			continue
		}
		col := utf8.RuneCountInString(line[:strings.Index(line, "\t")])
		out = append(out, diag.New(diag.UnusualSpacing{Tabs: n}, geom.P(row, col)))
	}
	return out
}
