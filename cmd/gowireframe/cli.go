/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"gowireframe/internal/ast"
	"gowireframe/internal/config"
	"gowireframe/internal/crash"
	"gowireframe/internal/diag"
	"gowireframe/internal/fixer"
	applog "gowireframe/internal/log"
	"gowireframe/internal/server"
	"gowireframe/internal/storage"
	"gowireframe/internal/version"
	"gowireframe/internal/wireframe"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitUsage = 2
)

// exitError carries an exit code out of a command.
type exitError struct {
	Code    int
	Message string
}

func (e *exitError) Error() string { return e.Message }

func usageErr(format string, args ...any) error {
	return &exitError{Code: exitUsage, Message: fmt.Sprintf(format, args...)}
}

// errReported means diagnostics were already printed.
var errReported = &exitError{Code: exitFail}

type cli struct {
	cfg    config.AppConfig
	stdout io.Writer
	stderr io.Writer
	crash  *crash.Context
	log    *slog.Logger
}

func usage(w io.Writer) {
	fmt.Fprintf(w, `gowireframe %s

Usage:
  gowireframe version                                      Show version
  gowireframe parse [--interactions f.hcl] [--format json|yaml] [--validate] <file>
  gowireframe check <file>                                 Report diagnostics
  gowireframe fix [--write] <file>                         Apply automatic fixes
  gowireframe index [--rebuild] <db-or-dsn> <file>...      Index wireframes for search
  gowireframe search [--scene s] [--type t] [--limit n] <db-or-dsn> <query>
  gowireframe serve [--index db-or-dsn] [addr]             Start the HTTP API

Use "-" as <file> to read standard input.
`, version.String())
}

func run(args []string, stdout, stderr io.Writer, cc *crash.Context) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(stderr, "Error:", err)
		return exitUsage
	}
	lo := cfg.LogOptions()
	lo.Writer = stderr
	applog.Init(lo)

	if len(args) == 0 {
		usage(stderr)
		return exitUsage
	}
	c := &cli{cfg: cfg, stdout: stdout, stderr: stderr, crash: cc, log: applog.WithComponent("cli")}
	cc.Command = args[0]
	c.log.Debug("start", slog.String("command", args[0]), slog.Int("args", len(args)-1))

	var cmdErr error
	switch args[0] {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, "gowireframe", version.String())
		return exitOK
	case "help", "--help", "-h":
		usage(stdout)
		return exitOK
	case "parse":
		cmdErr = c.parse(args[1:])
	case "check":
		cmdErr = c.check(args[1:])
	case "fix":
		cmdErr = c.fix(args[1:])
	case "index":
		cmdErr = c.index(args[1:])
	case "search":
		cmdErr = c.search(args[1:])
	case "serve":
		cmdErr = c.serve(args[1:])
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", args[0])
		usage(stderr)
		return exitUsage
	}
	if cmdErr == nil {
		return exitOK
	}
	var ee *exitError
	if errors.As(cmdErr, &ee) {
		if ee.Message != "" {
			fmt.Fprintln(stderr, "Error:", ee.Message)
		}
		if ee.Code == exitUsage {
			usage(stderr)
		}
		return ee.Code
	}
	c.log.Error("command failed", slog.Any("err", cmdErr))
	fmt.Fprintln(stderr, "Error:", cmdErr)
	return exitFail
}

func (c *cli) flags(name string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(c.stderr)
	return fs
}

func parseFlags(fs *flag.FlagSet, args []string) error {
	if err := fs.Parse(args); err != nil {
		return &exitError{Code: exitUsage, Message: err.Error()}
	}
	return nil
}

// readInput reads a file, or stdin for "-", and records it for crash reports.
func (c *cli) readInput(path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	c.crash.File = path
	c.crash.Input = string(data)
	return string(data), nil
}

func (c *cli) newParser(cacheSize int) (*wireframe.Parser, error) {
	opts := c.cfg.WireframeOptions(cacheSize)
	opts.Logger = applog.WithComponent("wireframe")
	return wireframe.New(opts)
}

func (c *cli) report(file string, ds diag.List) {
	for _, d := range ds {
		fmt.Fprintf(c.stderr, "%s:%s\n", file, d.Render())
	}
}

func (c *cli) parse(args []string) error {
	fs := c.flags("parse")
	interactions := fs.String("interactions", "", "HCL file with element behaviour")
	format := fs.String("format", "json", "output format: json or yaml")
	validate := fs.Bool("validate", false, "validate the JSON output against the schema")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("parse requires exactly one <file>")
	}
	if *format != "json" && *format != "yaml" {
		return usageErr("invalid format %q: must be json or yaml", *format)
	}
	file := fs.Arg(0)
	text, err := c.readInput(file)
	if err != nil {
		return err
	}
	p, err := c.newParser(0)
	if err != nil {
		return err
	}

	var (
		tree     ast.AST
		warnings diag.List
	)
	if *interactions != "" {
		src, rerr := os.ReadFile(*interactions)
		if rerr != nil {
			return fmt.Errorf("read %s: %w", *interactions, rerr)
		}
		tree, warnings, err = p.ParseWithInteractions(text, src, *interactions)
	} else {
		tree, warnings, err = p.ParseWithWarnings(text)
	}
	var ds diag.List
	if errors.As(err, &ds) {
		src := file
		switch ds[0].Kind() {
		case diag.KindInvalidInteractionDSL, diag.KindUnknownElementID:
			src = *interactions
		}
		c.report(src, ds)
		return errReported
	}
	if err != nil {
		return err
	}
	c.report(file, warnings)

	js, err := ast.MarshalJSON(tree)
	if err != nil {
		return err
	}
	if *validate {
		if err := ast.ValidateJSON(js); err != nil {
			return fmt.Errorf("schema validation: %w", err)
		}
	}
	out := js
	if *format == "yaml" {
		if out, err = ast.MarshalYAML(tree); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintln(c.stdout, strings.TrimRight(string(out), "\n"))
	return err
}

func (c *cli) check(args []string) error {
	fs := c.flags("check")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("check requires exactly one <file>")
	}
	file := fs.Arg(0)
	text, err := c.readInput(file)
	if err != nil {
		return err
	}
	p, err := c.newParser(0)
	if err != nil {
		return err
	}
	ds := p.Check(text)
	c.report(file, ds)
	if ds.HasErrors() {
		fmt.Fprintf(c.stdout, "%s: %d error(s), %d warning(s)\n", file, len(ds.Errors()), len(ds.Warnings()))
		return errReported
	}
	fmt.Fprintf(c.stdout, "%s: ok (%d warning(s))\n", file, len(ds))
	return nil
}

func (c *cli) fix(args []string) error {
	fs := c.flags("fix")
	write := fs.Bool("write", false, "write the result back to the file")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return usageErr("fix requires exactly one <file>")
	}
	file := fs.Arg(0)
	if *write && file == "-" {
		return usageErr("--write cannot be used with standard input")
	}
	text, err := c.readInput(file)
	if err != nil {
		return err
	}
	p, err := c.newParser(0)
	if err != nil {
		return err
	}
	res, err := p.Fix(text)
	if err != nil && !errors.Is(err, fixer.ErrIterationLimit) {
		return err
	}
	if err != nil {
		c.log.Warn("fix stopped early", slog.Any("err", err))
	}
	for _, f := range res.Fixed {
		fmt.Fprintf(c.stderr, "%s:%d: fixed %s: %s\n", file, f.Line, f.Kind, f.Description)
	}
	if *write {
		if err := os.WriteFile(file, []byte(res.Text), 0o644); err != nil {
			return fmt.Errorf("write %s: %w", file, err)
		}
	} else {
		fmt.Fprintln(c.stdout, res.Text)
	}
	c.report(file, res.Remaining)
	if res.Remaining.HasErrors() {
		return errReported
	}
	return nil
}

func (c *cli) openIndex(ctx context.Context, target string) (*storage.Index, error) {
	opts, err := c.cfg.IndexOptions(target)
	if err != nil {
		return nil, err
	}
	opts.Logger = applog.WithComponent("storage")
	return storage.OpenIndex(ctx, opts)
}

func (c *cli) index(args []string) error {
	fs := c.flags("index")
	rebuild := fs.Bool("rebuild", false, "drop and recreate the index first")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return usageErr("index requires <db-or-dsn> and at least one <file>")
	}
	ctx := context.Background()
	ix, err := c.openIndex(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer ix.Close()
	if *rebuild {
		if err := ix.Rebuild(ctx); err != nil {
			return err
		}
	}
	p, err := c.newParser(0)
	if err != nil {
		return err
	}
	failed := false
	for _, file := range fs.Args()[1:] {
		text, err := c.readInput(file)
		if err != nil {
			return err
		}
		tree, err := p.Parse(text)
		var ds diag.List
		if errors.As(err, &ds) {
			c.report(file, ds)
			failed = true
			continue
		}
		if err != nil {
			return err
		}
		rev, err := ix.IndexFile(ctx, file, &tree)
		if err != nil {
			return err
		}
		fmt.Fprintf(c.stdout, "%s: %d scene(s), %d element(s), revision %s\n", file, rev.Scenes, rev.Documents, rev.ID)
	}
	if failed {
		return errReported
	}
	return nil
}

func (c *cli) search(args []string) error {
	fs := c.flags("search")
	scene := fs.String("scene", "", "only match elements of this scene")
	typ := fs.String("type", "", "comma-separated element kinds")
	limit := fs.Int("limit", 50, "maximum number of results")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return usageErr("search requires <db-or-dsn>")
	}
	q := storage.Query{Text: strings.Join(fs.Args()[1:], " "), Scene: *scene, Limit: *limit}
	if *typ != "" {
		q.Types = strings.Split(*typ, ",")
	}
	ctx := context.Background()
	ix, err := c.openIndex(ctx, fs.Arg(0))
	if err != nil {
		return err
	}
	defer ix.Close()
	res, err := ix.Search(ctx, q)
	if err != nil {
		return err
	}
	for _, r := range res {
		fmt.Fprintf(c.stdout, "%s:%d:%d\t%s\t%s\t%s\n", r.Path, r.Line+1, r.Column+1, r.SceneID, r.Type, r.Text)
	}
	if len(res) == 0 {
		return &exitError{Code: exitFail, Message: "no matches"}
	}
	return nil
}

func (c *cli) serve(args []string) error {
	fs := c.flags("serve")
	target := fs.String("index", "", "index to expose on /api/search")
	if err := parseFlags(fs, args); err != nil {
		return err
	}
	addr := c.cfg.Server.Addr
	if fs.NArg() > 0 {
		addr = fs.Arg(0)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	p, err := c.newParser(c.cfg.Server.CacheSize)
	if err != nil {
		return err
	}
	opts := server.Options{Addr: addr, Logger: applog.WithComponent("server")}
	if *target != "" || c.cfg.Index.Path != "" || c.cfg.Index.DSN != "" {
		ix, err := c.openIndex(ctx, *target)
		if err != nil {
			return err
		}
		defer ix.Close()
		opts.Index = ix
	}
	return server.New(p, opts).Run(ctx)
}
