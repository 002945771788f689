/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/zalando/go-keyring"

	"gowireframe/internal/storage"
)

func useConfigFile(t *testing.T, body string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), "config.yaml")
	if body != "" {
		if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
			t.Fatalf("write config: %v", err)
		}
	}
	t.Setenv(EnvConfigFile, p)
	return p
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	useConfigFile(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg != Defaults() {
		t.Fatalf("expected defaults, got %#v", cfg)
	}
}

func TestLoadMergesFile(t *testing.T) {
	useConfigFile(t, `
config_version: 1
parser:
  deep_nesting_limit: 6
fixer:
  max_iterations: 10
index:
  driver: PGX
  dsn: postgres://wf@db/wireframes
logging:
  level: DEBUG
  source: true
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Parser.DeepNestingLimit != 6 || cfg.Fixer.MaxIterations != 10 {
		t.Fatalf("parser/fixer not merged: %#v", cfg)
	}
	if cfg.Index.Driver != "pgx" || cfg.Index.DSN != "postgres://wf@db/wireframes" {
		t.Fatalf("index not merged: %#v", cfg.Index)
	}
	if cfg.Logging.Level != "debug" || !cfg.Logging.Source || cfg.Logging.Format != "console" {
		t.Fatalf("logging not merged: %#v", cfg.Logging)
	}
	if cfg.Server.Addr != ":8090" {
		t.Fatalf("server default lost: %q", cfg.Server.Addr)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	useConfigFile(t, "parser: [")
	if _, err := Load(); err == nil {
		t.Fatalf("expected error for malformed yaml")
	}
}

func TestEnvOverrides(t *testing.T) {
	useConfigFile(t, "server:\n  addr: \":9000\"\n")
	t.Setenv(EnvServerAddr, "127.0.0.1:7000")
	t.Setenv(EnvDeepNestingLimit, "2")
	t.Setenv(EnvFixMaxIterations, "nope")
	t.Setenv(EnvLogFormat, "JSON")
	t.Setenv(EnvLogSource, "yes")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Server.Addr != "127.0.0.1:7000" || cfg.Parser.DeepNestingLimit != 2 {
		t.Fatalf("env overrides not applied: %#v", cfg)
	}
	if cfg.Fixer.MaxIterations != 100 {
		t.Fatalf("invalid int override should be ignored, got %d", cfg.Fixer.MaxIterations)
	}
	if cfg.Logging.Format != "json" || !cfg.Logging.Source {
		t.Fatalf("logging overrides not applied: %#v", cfg.Logging)
	}
	if env, ok := EnvOverrideFor("server.addr"); !ok || env != EnvServerAddr {
		t.Fatalf("EnvOverrideFor(server.addr) = %q, %v", env, ok)
	}
	if _, ok := EnvOverrideFor("index.dsn"); ok {
		t.Fatalf("index.dsn is not overridden")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	useConfigFile(t, "")
	cfg := Defaults()
	cfg.Index.Path = "/tmp/wf.sqlite"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save() error: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip mismatch: %#v vs %#v", got, cfg)
	}
}

func TestIndexOptionsUsesKeyring(t *testing.T) {
	keyring.MockInit()
	cfg := Defaults()

	opts, err := cfg.IndexOptions("wf.sqlite")
	if err != nil {
		t.Fatalf("IndexOptions error: %v", err)
	}
	if opts.Driver != storage.DriverSQLite || opts.Path != "wf.sqlite" || opts.Password != "" {
		t.Fatalf("unexpected sqlite options %#v", opts)
	}

	if err := SetIndexPassword("s3cret"); err != nil {
		t.Fatalf("SetIndexPassword: %v", err)
	}
	opts, err = cfg.IndexOptions("postgres://wf@db/wireframes")
	if err != nil {
		t.Fatalf("IndexOptions error: %v", err)
	}
	if opts.Driver != storage.DriverPostgres || opts.DSN != "postgres://wf@db/wireframes" || opts.Password != "s3cret" {
		t.Fatalf("unexpected postgres options %#v", opts)
	}

	if err := SetIndexPassword(""); err != nil {
		t.Fatalf("clear password: %v", err)
	}
	if pw, err := IndexPassword(); err != nil || pw != "" {
		t.Fatalf("expected no password, got %q, %v", pw, err)
	}
}

func TestWireframeOptions(t *testing.T) {
	cfg := Defaults()
	cfg.Parser.CacheSize = 16
	if got := cfg.WireframeOptions(0); got.CacheSize != 16 || got.DeepNestingLimit != 4 || got.MaxFixIterations != 100 {
		t.Fatalf("unexpected options %#v", got)
	}
	if got := cfg.WireframeOptions(256); got.CacheSize != 256 {
		t.Fatalf("explicit cache size ignored: %d", got.CacheSize)
	}
	if lo := cfg.LogOptions(); lo.Level != "info" || lo.Format != "console" {
		t.Fatalf("unexpected log options %#v", lo)
	}
}
