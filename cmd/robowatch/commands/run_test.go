// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/robowatch/cmd/robowatch/opts"
	"github.com/walteh/robowatch/pkg/config"
	"github.com/walteh/robowatch/pkg/history"
	"github.com/walteh/robowatch/pkg/log"
	"github.com/walteh/robowatch/pkg/logformat"
	"github.com/walteh/robowatch/pkg/progress"
	"github.com/walteh/robowatch/pkg/robocopy"
	"github.com/walteh/robowatch/pkg/status"
	"github.com/walteh/robowatch/pkg/testutils"
)

// exited is a robocopy process that has already finished
type exited int

func (p exited) Done() <-chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}
func (p exited) ExitCode() int { return int(p) }
func (p exited) Err() error    { return nil }
func (p exited) Kill() error   { return nil }
func (p exited) Pid() int      { return 1 }

// scriptedRunner writes a canned log for each run and exits with a fixed code
type scriptedRunner struct {
	scanCode, copyCode int
	scanLog, copyLog   string

	mu    sync.Mutex
	calls [][]string
}

func (r *scriptedRunner) Start(ctx context.Context, tool string, args []string) (robocopy.Process, error) {
	r.mu.Lock()
	r.calls = append(r.calls, args)
	r.mu.Unlock()

	scan := args[len(args)-1] == "/L"
	content, code := r.copyLog, r.copyCode
	if scan {
		content, code = r.scanLog, r.scanCode
	}
	for _, a := range args {
		if strings.HasPrefix(strings.ToLower(a), "/log:") {
			if err := os.WriteFile(a[len("/log:"):], []byte(content), 0o644); err != nil {
				return nil, err
			}
		}
	}
	return exited(code), nil
}

func newScriptedRunner(copyCode int) *scriptedRunner {
	return &scriptedRunner{
		scanCode: 1,
		copyCode: copyCode,
		scanLog:  testutils.ScanLog(`C:\src\`, `D:\dst\`, 3, 600),
		copyLog: testutils.CopyLog(`C:\src\`, `D:\dst\`, []testutils.Row{
			{Bytes: 100, Name: `C:\src\a.txt`},
			{Bytes: 200, Name: `C:\src\b.txt`},
			{Bytes: 300, Name: `C:\src\c.txt`},
		}, logformat.Summary{
			Dirs:        logformat.Counts{Total: 1, Skipped: 1},
			Files:       logformat.Counts{Total: 3, Copied: 3},
			Bytes:       logformat.Counts{Total: 600, Copied: 600},
			BytesPerSec: 60000,
		}),
	}
}

type harness struct {
	ctx     context.Context
	src     string
	dst     string
	history string
	console *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	t.Setenv(config.EnvTool, "")
	t.Setenv(config.EnvHistory, "")

	root := t.TempDir()
	h := &harness{
		src:     filepath.Join(root, "src"),
		dst:     filepath.Join(root, "dst"),
		history: filepath.Join(root, "history.db"),
		console: &bytes.Buffer{},
	}
	require.NoError(t, os.MkdirAll(h.src, 0o755))
	require.NoError(t, os.MkdirAll(h.dst, 0o755))

	logger := zerolog.New(zerolog.NewTestWriter(t))
	h.ctx = log.NewContext(logger.WithContext(context.Background()), log.New(h.console, logger))
	return h
}

func (h *harness) run(t *testing.T, o *opts.RootOpts, runner robocopy.Runner, args ...string) (string, error) {
	t.Helper()
	cmd := newRunCmd(o, runner)
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(h.ctx)
	return out.String(), err
}

func TestRunSingleJob(t *testing.T) {
	h := newHarness(t)
	runner := newScriptedRunner(1)

	out, err := h.run(t, &opts.RootOpts{}, runner,
		h.src, h.dst, "*.txt", "--mirror", "--retries", "2", "--name", "docs", "--history", h.history)
	require.NoError(t, err, "a successful copy should not fail the command")

	assert.Contains(t, out, "SUCCESS")
	assert.Contains(t, h.console.String(), "docs")

	require.Len(t, runner.calls, 2, "one scan and one copy")
	scan := runner.calls[0]
	assert.Equal(t, []string{h.src, h.dst, "*.txt", "/MIR", "/R:2"}, scan[:5], "filters then named options follow the paths")
	assert.Equal(t, "/L", scan[len(scan)-1])
	assert.Equal(t, "/NC", runner.calls[1][len(runner.calls[1])-1])

	store, err := history.Open(h.history)
	require.NoError(t, err)
	defer store.Close()
	entries, err := store.List(h.ctx, 0)
	require.NoError(t, err)
	require.Len(t, entries, 1, "the report should be recorded")
	assert.Equal(t, "docs", entries[0].Report.Name)
	assert.Equal(t, int64(3), entries[0].Report.Files.Copied)
	assert.Equal(t, int64(600), entries[0].Report.ScanTotal)
}

func TestRunCopyFailure(t *testing.T) {
	h := newHarness(t)

	out, err := h.run(t, &opts.RootOpts{}, newScriptedRunner(9), h.src, h.dst, "--no-history")
	require.Error(t, err, "a failed copy should fail the command")
	assert.Contains(t, err.Error(), "one or more jobs failed")
	assert.Contains(t, out, "FAILURE", "the report is still shown")
}

func TestRunScanFailure(t *testing.T) {
	h := newHarness(t)
	runner := newScriptedRunner(1)
	runner.scanCode = 16
	runner.scanLog = "ERROR : Invalid Parameter #3 : \"/BOGUS\"\r\n"

	out, err := h.run(t, &opts.RootOpts{}, runner, h.src, h.dst, "--no-history")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid Parameter", "the scan log explains the failure")
	assert.Len(t, runner.calls, 1, "no copy after a failed scan")
}

func TestRunFromConfig(t *testing.T) {
	h := newHarness(t)
	other := filepath.Join(filepath.Dir(h.src), "other")
	require.NoError(t, os.MkdirAll(other, 0o755))

	configFile := filepath.Join(t.TempDir(), "jobs.yaml")
	require.NoError(t, os.WriteFile(configFile, []byte(`
parallel: 2
jobs:
  - name: first
    source: `+h.src+`
    destination: `+h.dst+`
  - name: second
    source: `+other+`
    destination: `+h.dst+`
`), 0o644))

	runner := newScriptedRunner(1)
	_, err := h.run(t, &opts.RootOpts{ConfigFile: configFile}, runner, "--no-history")
	require.NoError(t, err)
	assert.Len(t, runner.calls, 4, "two jobs, each a scan and a copy")
	assert.Contains(t, h.console.String(), "first")
	assert.Contains(t, h.console.String(), "second")
}

func TestRunArgumentErrors(t *testing.T) {
	tests := []struct {
		name        string
		args        func(h *harness) []string
		errContains string
	}{
		{
			name:        "source_without_dest",
			args:        func(h *harness) []string { return []string{h.src} },
			errContains: "DEST is required",
		},
		{
			name:        "nothing_to_do",
			args:        func(h *harness) []string { return nil },
			errContains: "nothing to copy",
		},
		{
			name:        "reserved_flag",
			args:        func(h *harness) []string { return []string{h.src, h.dst, "--flag", "/NP"} },
			errContains: "managed by robowatch",
		},
		{
			name:        "poll_out_of_range",
			args:        func(h *harness) []string { return []string{h.src, h.dst, "--poll", "1m"} },
			errContains: "--poll",
		},
		{
			name:        "parallel_zero",
			args:        func(h *harness) []string { return []string{h.src, h.dst, "--parallel", "0"} },
			errContains: "--parallel",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			runner := newScriptedRunner(1)
			_, err := h.run(t, &opts.RootOpts{}, runner, append(tt.args(h), "--no-history")...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
			assert.Empty(t, runner.calls, "nothing should be started")
		})
	}
}

// recordingSink counts the calls it receives
type recordingSink struct {
	mu       sync.Mutex
	observed int
	done     int
}

func (r *recordingSink) Observe(progress.Sample) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observed++
}

func (r *recordingSink) Done() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.done++
}

func TestRunStopsSinksWhateverTheOutcome(t *testing.T) {
	tests := []struct {
		name   string
		source func(h *harness) string
		cancel bool
	}{
		{name: "completed", source: func(h *harness) string { return h.src }},
		{name: "missing_source", source: func(h *harness) string { return filepath.Join(h.src, "nope") }},
		{name: "cancelled", source: func(h *harness) string { return h.src }, cancel: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			ctx := h.ctx
			if tt.cancel {
				c, cancel := context.WithCancel(ctx)
				cancel()
				ctx = c
			}

			sink := &recordingSink{}
			f := &runFlags{
				noHistory: true,
				sinks: func(context.Context, string, int) ([]status.Sink, error) {
					return []status.Sink{sink}, nil
				},
			}
			cfg := &config.Config{Jobs: []config.Job{{Name: "j", Source: tt.source(h), Destination: h.dst}}}
			require.NoError(t, cfg.Validate())

			_ = run(ctx, &bytes.Buffer{}, cfg, f, newScriptedRunner(1))

			sink.mu.Lock()
			defer sink.mu.Unlock()
			assert.GreaterOrEqual(t, sink.done, 1, "the sink is stopped when the job returns")
		})
	}
}

func TestRunPrintsCopyLogWhenSummaryIsMissing(t *testing.T) {
	h := newHarness(t)
	runner := newScriptedRunner(16)
	runner.copyLog = testutils.Header(`C:\src\`, `D:\dst\`, "/NC") + "ERROR : Invalid Parameter #3 : \"/BOGUS\"\r\n"

	out, err := h.run(t, &opts.RootOpts{}, runner, h.src, h.dst, "--no-history")
	require.Error(t, err)
	assert.Contains(t, out, "Invalid Parameter #3", "the copy log explains the failure")
	assert.Contains(t, h.console.String(), "FAILURE (16)")
}
