/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gowireframe/internal/config"
	"gowireframe/internal/crash"
)

const loginWF = "+-- Login -----------+\n" +
	"| #email             |\n" +
	"|    [ Sign in ]     |\n" +
	"+--------------------+\n"

func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigFile, filepath.Join(dir, "config.yaml"))
	t.Setenv(config.EnvLogLevel, "error")
	return dir
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut, &crash.Context{})
	return code, out.String(), errOut.String()
}

func TestVersionAndUsage(t *testing.T) {
	setup(t)
	if code, out, _ := runCLI(t, "version"); code != exitOK || !strings.HasPrefix(out, "gowireframe ") {
		t.Fatalf("version: code=%d out=%q", code, out)
	}
	if code, _, errOut := runCLI(t); code != exitUsage || !strings.Contains(errOut, "Usage:") {
		t.Fatalf("no args: code=%d", code)
	}
	if code, _, _ := runCLI(t, "frobnicate"); code != exitUsage {
		t.Fatalf("unknown command: code=%d", code)
	}
	if code, _, _ := runCLI(t, "parse"); code != exitUsage {
		t.Fatalf("parse without file: code=%d", code)
	}
	if code, _, _ := runCLI(t, "parse", "--format", "xml", "x"); code != exitUsage {
		t.Fatalf("bad format: code=%d", code)
	}
}

func TestParseOutputs(t *testing.T) {
	dir := setup(t)
	f := writeFile(t, dir, "login.wf", loginWF)

	code, out, errOut := runCLI(t, "parse", "--validate", f)
	if code != exitOK {
		t.Fatalf("parse: code=%d stderr=%s", code, errOut)
	}
	if !strings.Contains(out, `"scenes"`) || !strings.Contains(out, `"sign-in"`) {
		t.Fatalf("unexpected json output: %s", out)
	}

	code, out, _ = runCLI(t, "parse", "--format", "yaml", f)
	if code != exitOK || !strings.Contains(out, "scenes:") {
		t.Fatalf("yaml: code=%d out=%s", code, out)
	}
}

func TestParseWithInteractionsFile(t *testing.T) {
	dir := setup(t)
	f := writeFile(t, dir, "login.wf", loginWF)
	good := writeFile(t, dir, "ok.hcl", "element \"sign-in\" {\n  action \"submit\" {}\n}\n")
	bad := writeFile(t, dir, "bad.hcl", "element \"ghost\" {\n}\n")

	code, out, errOut := runCLI(t, "parse", "--interactions", good, f)
	if code != exitOK || !strings.Contains(out, `"submit"`) {
		t.Fatalf("interactions: code=%d out=%s err=%s", code, out, errOut)
	}
	code, _, errOut = runCLI(t, "parse", "--interactions", bad, f)
	if code != exitFail || !strings.Contains(errOut, bad+":1:1:") {
		t.Fatalf("unknown id: code=%d err=%s", code, errOut)
	}
}

func TestCheckReportsDiagnostics(t *testing.T) {
	dir := setup(t)
	ok := writeFile(t, dir, "ok.wf", loginWF)
	broken := writeFile(t, dir, "broken.wf", "+----+\n|    |\n+----\n")

	if code, out, _ := runCLI(t, "check", ok); code != exitOK || !strings.Contains(out, "ok") {
		t.Fatalf("check ok: code=%d out=%s", code, out)
	}
	code, out, errOut := runCLI(t, "check", broken)
	if code != exitFail {
		t.Fatalf("check broken: code=%d", code)
	}
	if !strings.Contains(out, "1 error(s)") || !strings.Contains(errOut, broken+":3:6: error:") {
		t.Fatalf("unexpected report out=%s err=%s", out, errOut)
	}
	if code, _, _ := runCLI(t, "check", filepath.Join(dir, "missing.wf")); code != exitFail {
		t.Fatalf("missing file: code=%d", code)
	}
}

func TestFixWrite(t *testing.T) {
	dir := setup(t)
	f := writeFile(t, dir, "box.wf", "+----+\n|     |\n+----+")

	code, _, errOut := runCLI(t, "fix", "--write", f)
	if code != exitOK {
		t.Fatalf("fix: code=%d err=%s", code, errOut)
	}
	if !strings.Contains(errOut, "fixed MisalignedPipe") {
		t.Fatalf("expected fix report, got %s", errOut)
	}
	b, _ := os.ReadFile(f)
	if string(b) != "+----+\n|    |\n+----+" {
		t.Fatalf("file not fixed: %q", b)
	}
}

func TestIndexAndSearch(t *testing.T) {
	dir := setup(t)
	f := writeFile(t, dir, "login.wf", loginWF)
	broken := writeFile(t, dir, "broken.wf", "+----+\n|    |\n+----\n")
	db := filepath.Join(dir, "wf.sqlite")

	code, out, errOut := runCLI(t, "index", db, f)
	if code != exitOK || !strings.Contains(out, "1 scene(s)") {
		t.Fatalf("index: code=%d out=%s err=%s", code, out, errOut)
	}
	if code, _, _ := runCLI(t, "index", db, broken); code != exitFail {
		t.Fatalf("index broken: code=%d", code)
	}

	code, out, _ = runCLI(t, "search", "--type", "button", db, "sign")
	if code != exitOK || !strings.Contains(out, f+":3:6\tmain\tbutton\tSign in") {
		t.Fatalf("search: code=%d out=%q", code, out)
	}
	if code, _, _ := runCLI(t, "search", db, "nothing"); code != exitFail {
		t.Fatalf("search without matches: code=%d", code)
	}
}
