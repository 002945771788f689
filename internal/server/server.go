/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package server exposes the wireframe parser over HTTP.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	applog "gowireframe/internal/log"
	"gowireframe/internal/storage"
	"gowireframe/internal/wireframe"
)

const (
	DefaultAddr      = ":8090"
	DefaultBodyLimit = "2M"
)

// Searcher is the part of the index the server uses.
type Searcher interface {
	Search(ctx context.Context, q storage.Query) ([]storage.Result, error)
}

type Options struct {
	Addr      string
	BodyLimit string
	Timeout   time.Duration
	// Index enables /api/search when set.
	Index  Searcher
	Logger *slog.Logger
}

type Server struct {
	e      *echo.Echo
	parser *wireframe.Parser
	index  Searcher
	addr   string
	log    *slog.Logger
}

// New wires routes and middleware around p.
func New(p *wireframe.Parser, opts Options) *Server {
	if opts.Addr == "" {
		opts.Addr = DefaultAddr
	}
	if opts.BodyLimit == "" {
		opts.BodyLimit = DefaultBodyLimit
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	l := opts.Logger
	if l == nil {
		l = applog.WithComponent("server")
	}
	s := &Server{e: echo.New(), parser: p, index: opts.Index, addr: opts.Addr, log: l}
	e := s.e
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{StackSize: 4 << 10}))
	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, id string) {
			ctx := applog.ContextWith(c.Request().Context(), slog.String("request_id", id))
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:  true,
		LogURI:     true,
		LogMethod:  true,
		LogLatency: true,
		Skipper: func(c echo.Context) bool {
			return c.Request().URL.Path == "/health"
		},
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			s.log.InfoContext(c.Request().Context(), "request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
				slog.Duration("latency", v.Latency))
			return nil
		},
	}))
	e.Use(middleware.BodyLimit(opts.BodyLimit))
	e.Use(middleware.ContextTimeout(opts.Timeout))

	s.routes()
	return s
}

func (s *Server) routes() {
	s.e.GET("/health", s.handleHealth)
	api := s.e.Group("/api")
	api.POST("/parse", s.handleParse)
	api.POST("/check", s.handleCheck)
	api.POST("/fix", s.handleFix)
	api.GET("/search", s.handleSearch)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler { return s.e }

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.addr))
		errc <- s.e.StartServer(srv)
	}()
	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	if err := s.e.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return nil
}
