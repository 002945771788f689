/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package server

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"gowireframe/internal/ast"
	"gowireframe/internal/diag"
	"gowireframe/internal/fixer"
	"gowireframe/internal/storage"
	"gowireframe/internal/version"
)

type ParseRequest struct {
	Text string `json:"text"`
	// Interactions is optional HCL merged into the parsed tree.
	Interactions string `json:"interactions,omitempty"`
	Filename     string `json:"filename,omitempty"`
}

type ParseResponse struct {
	OK          bool          `json:"ok"`
	AST         *ast.Document `json:"ast,omitempty"`
	Diagnostics []diag.Report `json:"diagnostics"`
}

type CheckResponse struct {
	OK          bool          `json:"ok"`
	Diagnostics []diag.Report `json:"diagnostics"`
}

type FixResponse struct {
	Text      string             `json:"text"`
	Fixed     []fixer.FixedIssue `json:"fixed"`
	Remaining []diag.Report      `json:"remaining"`
}

type SearchResponse struct {
	Results []storage.Result `json:"results"`
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status":  "ok",
		"version": version.String(),
		"index":   s.index != nil,
	})
}

func bindText(c echo.Context) (ParseRequest, error) {
	var req ParseRequest
	if err := c.Bind(&req); err != nil {
		return req, newBadRequest("invalid request body", err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return req, newValidationError("text")
	}
	return req, nil
}

// handleParse answers 200 with the tree, or 422 with the error diagnostics.
func (s *Server) handleParse(c echo.Context) error {
	req, err := bindText(c)
	if err != nil {
		return err
	}
	var (
		tree     ast.AST
		warnings diag.List
	)
	if req.Interactions != "" {
		name := req.Filename
		if name == "" {
			name = "interactions.hcl"
		}
		tree, warnings, err = s.parser.ParseWithInteractions(req.Text, []byte(req.Interactions), name)
	} else {
		tree, warnings, err = s.parser.ParseWithWarnings(req.Text)
	}
	if err != nil {
		var ds diag.List
		if errors.As(err, &ds) {
			return c.JSON(http.StatusUnprocessableEntity, ParseResponse{Diagnostics: ds.Reports()})
		}
		return newInternalError("parse failed", err)
	}
	doc := ast.ToDocument(tree)
	s.log.DebugContext(c.Request().Context(), "parsed", slog.Int("scenes", len(doc.Scenes)))
	return c.JSON(http.StatusOK, ParseResponse{OK: true, AST: &doc, Diagnostics: warnings.Reports()})
}

func (s *Server) handleCheck(c echo.Context) error {
	req, err := bindText(c)
	if err != nil {
		return err
	}
	ds := s.parser.Check(req.Text)
	return c.JSON(http.StatusOK, CheckResponse{OK: !ds.HasErrors(), Diagnostics: ds.Reports()})
}

func (s *Server) handleFix(c echo.Context) error {
	req, err := bindText(c)
	if err != nil {
		return err
	}
	res, err := s.parser.Fix(req.Text)
	if err != nil && !errors.Is(err, fixer.ErrIterationLimit) {
		return newInternalError("fix failed", err)
	}
	fixed := res.Fixed
	if fixed == nil {
		fixed = []fixer.FixedIssue{}
	}
	return c.JSON(http.StatusOK, FixResponse{Text: res.Text, Fixed: fixed, Remaining: res.Remaining.Reports()})
}

func (s *Server) handleSearch(c echo.Context) error {
	if s.index == nil {
		return newUnavailable("no index configured")
	}
	q := storage.Query{
		Text:  c.QueryParam("q"),
		Scene: c.QueryParam("scene"),
		Path:  c.QueryParam("path"),
	}
	if t := c.QueryParam("type"); t != "" {
		q.Types = strings.Split(t, ",")
	}
	for name, dst := range map[string]*int{"limit": &q.Limit, "offset": &q.Offset} {
		v := c.QueryParam(name)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return newValidationError(name)
		}
		*dst = n
	}
	res, err := s.index.Search(c.Request().Context(), q)
	if err != nil {
		return newBadRequest("search failed", err)
	}
	if res == nil {
		res = []storage.Result{}
	}
	return c.JSON(http.StatusOK, SearchResponse{Results: res})
}
