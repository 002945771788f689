/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package elements

import (
	"math"
	"unicode/utf8"

	"gowireframe/internal/ast"
	"gowireframe/internal/geom"
)

// Alignment thresholds, as fractions of the interior width.
const (
	edgeRatio     = 0.2
	farRatio      = 0.3
	centerEpsilon = 0.15
)

// AlignStrategy decides how an element sits inside its container.
type AlignStrategy interface {
	Align(content string, pos geom.Position, container geom.Bounds) ast.Align
}

// Computed infers alignment from the free space on either side.
type Computed struct{}

func (Computed) Align(content string, pos geom.Position, container geom.Bounds) ast.Align {
	return AlignSpan(pos.Col, utf8.RuneCountInString(content), container)
}

// AlwaysLeft never centers.
type AlwaysLeft struct{}

func (AlwaysLeft) Align(string, geom.Position, geom.Bounds) ast.Align { return ast.AlignLeft }

// AlignSpan classifies a run of length cells starting at col inside container.
func AlignSpan(col, length int, container geom.Bounds) ast.Align {
	interior := container.Right - container.Left - 2
	if interior <= 0 {
		return ast.AlignLeft
	}
	leftSpace := col - (container.Left + 1)
	contentEnd := col + length
	rightSpace := (container.Right - 1) - contentEnd + 1
	leftRatio := float64(leftSpace) / float64(interior)
	rightRatio := float64(rightSpace) / float64(interior)

	switch {
	case leftRatio < edgeRatio && rightRatio > farRatio:
		return ast.AlignLeft
	case rightRatio < edgeRatio && leftRatio > farRatio:
		return ast.AlignRight
	case math.Abs(leftRatio-rightRatio) < centerEpsilon:
		return ast.AlignCenter
	default:
		return ast.AlignLeft
	}
}
