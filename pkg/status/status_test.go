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

package status

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/operation"
	"github.com/walteh/robowatch/pkg/progress"
)

// 🔧 recordingSink keeps everything it is given
type recordingSink struct {
	samples []progress.Sample
	done    int
}

func (r *recordingSink) Observe(s progress.Sample) { r.samples = append(r.samples, s) }
func (r *recordingSink) Done()                     { r.done++ }

func TestDefaultFormatter(t *testing.T) {
	tests := []struct {
		name   string
		sample progress.Sample
		want   string
	}{
		{
			name:   "in_flight",
			sample: progress.Sample{Copied: 900, Total: 1000, Percent: 90, Label: "c.txt", InFlight: true, FilePercent: 50},
			want:   "⏳  90.0% (900 B / 1000 B) c.txt 50%",
		},
		{
			name:   "between_files",
			sample: progress.Sample{Copied: 300, Total: 600, Percent: 50, Label: "b.txt"},
			want:   "⏳  50.0% (300 B / 600 B) b.txt",
		},
		{
			name:   "finished",
			sample: progress.Sample{Copied: 2048, Total: 2048, Percent: 100, Label: "z.bin"},
			want:   "✅ 100.0% (2.0 KB / 2.0 KB) z.bin",
		},
		{
			name:   "no_files_yet",
			sample: progress.Sample{Total: 600},
			want:   "⏳   0.0% (0 B / 600 B)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DefaultFormatter{}.FormatProgress(tt.sample))
		})
	}

	assert.Empty(t, DefaultFormatter{}.FormatError(nil))
	assert.Equal(t, "❌ Error: boom", DefaultFormatter{}.FormatError(errors.New("boom")))
}

func logLines(t *testing.T, buf *bytes.Buffer) []map[string]any {
	t.Helper()
	var out []map[string]any
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		m := map[string]any{}
		require.NoError(t, json.Unmarshal([]byte(line), &m))
		out = append(out, m)
	}
	return out
}

func TestLogSinkThrottles(t *testing.T) {
	buf := &bytes.Buffer{}
	logger := zerolog.New(buf)
	ctx := logger.WithContext(context.Background())

	clock := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	sink := NewLogSink(ctx)
	sink.now = func() time.Time { return clock }

	for _, s := range []progress.Sample{
		{Percent: 1, Label: "a.txt", Total: 100, Copied: 1},
		{Percent: 2, Label: "a.txt", Total: 100, Copied: 2},  // held back
		{Percent: 7, Label: "a.txt", Total: 100, Copied: 7},  // step reached
		{Percent: 8, Label: "b.txt", Total: 100, Copied: 8},  // new file
		{Percent: 9, Label: "b.txt", Total: 100, Copied: 9},  // held back
		{Percent: 10, Label: "b.txt", Total: 100, Copied: 10}, // held back
	} {
		sink.Observe(s)
	}

	lines := logLines(t, buf)
	require.Len(t, lines, 3)
	assert.InDelta(t, 1.0, lines[0]["percent"], 0.001)
	assert.InDelta(t, 7.0, lines[1]["percent"], 0.001)
	assert.Equal(t, "b.txt", lines[2]["file"])

	clock = clock.Add(11 * time.Second)
	sink.Observe(progress.Sample{Percent: 11, Label: "b.txt", Total: 100, Copied: 11})
	require.Len(t, logLines(t, buf), 4, "a quiet period forces a line")

	sink.Observe(progress.Sample{Percent: 12, Label: "b.txt", Total: 100, Copied: 12})
	sink.Done()
	lines = logLines(t, buf)
	require.Len(t, lines, 5, "done flushes the held-back sample")
	assert.InDelta(t, 12.0, lines[4]["percent"], 0.001)

	sink.Done()
	assert.Len(t, logLines(t, buf), 5, "done is idempotent")
}

func TestBarSink(t *testing.T) {
	pterm.DisableStyling()
	defer pterm.EnableStyling()

	bar, err := NewBarSink(io.Discard, "backup")
	require.NoError(t, err)

	bar.Observe(progress.Sample{Percent: 25, Label: `C:\src\a.txt`})
	assert.Equal(t, 250, bar.Current())

	bar.Observe(progress.Sample{Percent: 20})
	assert.Equal(t, 250, bar.Current(), "the bar never moves backwards")

	bar.Observe(progress.Sample{Percent: 100})
	assert.Equal(t, barScale, bar.Current())

	bar.Done()
	bar.Done()
	bar.Observe(progress.Sample{Percent: 50})
	assert.Equal(t, barScale, bar.Current(), "samples after done are ignored")
}

func TestMulti(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := Multi(a, b)

	m.Observe(progress.Sample{Percent: 10})
	m.Done()

	assert.Len(t, a.samples, 1)
	assert.Len(t, b.samples, 1)
	assert.Equal(t, 1, a.done)
	assert.Equal(t, 1, b.done)
}

func TestHooks(t *testing.T) {
	pterm.DisableOutput()
	defer pterm.EnableOutput()

	logger := zerolog.New(io.Discard)
	ctx := logger.WithContext(context.Background())

	rec := &recordingSink{}
	hooks := Hooks(ctx, "job", rec)

	hooks.OnProgress(progress.Sample{Percent: 50})
	for _, s := range []operation.State{operation.StateScanning, operation.StateScanned, operation.StateCopying} {
		hooks.OnState(s)
	}
	assert.Zero(t, rec.done, "sink stays open while copying")

	hooks.OnState(operation.StateCompleted)
	assert.Equal(t, 1, rec.done)
	assert.Len(t, rec.samples, 1)
	assert.Nil(t, hooks.OnCancel)
}

func TestStateMessage(t *testing.T) {
	assert.Equal(t, "Scanning job", StateMessage("job", operation.StateScanning))
	assert.Equal(t, "Finished copy", StateMessage("", operation.StateCompleted))
	assert.Empty(t, StateMessage("job", operation.StateIdle))
}
