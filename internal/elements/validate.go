/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package elements

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"gowireframe/internal/diag"
	"gowireframe/internal/geom"
)

var reEmptyButton = regexp.MustCompile(`^\[\s*\]$`)

// Validate reports syntax problems in one trimmed content run at pos.
func Validate(content string, pos geom.Position) diag.List {
	var out diag.List
	switch {
	case reEmptyButton.MatchString(content):
		out = append(out, diag.New(diag.EmptyButton{}, pos))
	case strings.HasPrefix(content, "[") && !strings.Contains(content, "]"):
		out = append(out, diag.New(diag.UnclosedBracket{
			Content:    content,
			ContentEnd: pos.Col + utf8.RuneCountInString(content),
		}, pos))
	case strings.HasPrefix(content, "#") && len(content) > 1 && content[1] != ' ' && content[1] != '\t':
		if !reInput.MatchString(content) {
			out = append(out, diag.New(diag.InvalidElement{Content: content}, pos))
		}
	}
	return out
}
