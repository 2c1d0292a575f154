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
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/walteh/robowatch/pkg/progress"
)

// DefaultStep is the percent change that makes LogSink write a new line
const DefaultStep = 5.0

// 📝 LogSink writes progress through zerolog. A line is written when the
// percentage has moved by Step, when the file changes, or when MaxQuiet has
// passed since the last line.
type LogSink struct {
	logger    zerolog.Logger
	formatter ProgressFormatter

	Step     float64
	MaxQuiet time.Duration

	mu          sync.Mutex
	last        progress.Sample
	logged      float64
	loggedLabel string
	lastAt      time.Time
	written     bool
	finished    bool
	now         func() time.Time
}

var _ Sink = (*LogSink)(nil)

// NewLogSink logs through the context logger
func NewLogSink(ctx context.Context) *LogSink {
	return &LogSink{
		logger:    *zerolog.Ctx(ctx),
		formatter: DefaultFormatter{},
		Step:      DefaultStep,
		MaxQuiet:  10 * time.Second,
		now:       time.Now,
	}
}

func (l *LogSink) Observe(s progress.Sample) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.written && !l.due(s) {
		l.last = s
		return
	}
	l.write(s)
}

func (l *LogSink) due(s progress.Sample) bool {
	switch {
	case s.Percent-l.logged >= l.Step:
		return true
	case s.Label != l.loggedLabel:
		return true
	case s.Percent >= 100 && l.logged < 100:
		return true
	case l.MaxQuiet > 0 && l.now().Sub(l.lastAt) >= l.MaxQuiet:
		return true
	}
	return false
}

func (l *LogSink) write(s progress.Sample) {
	l.logger.Info().
		Float64("percent", s.Percent).
		Int64("copied", s.Copied).
		Int64("total", s.Total).
		Str("file", s.Label).
		Msg(l.formatter.FormatProgress(s))
	l.last = s
	l.logged = s.Percent
	l.loggedLabel = s.Label
	l.lastAt = l.now()
	l.written = true
}

// Done writes the latest sample if it was held back
func (l *LogSink) Done() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.finished {
		return
	}
	l.finished = true
	if l.written && l.last.Percent != l.logged {
		l.write(l.last)
	}
}
