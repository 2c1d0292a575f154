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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"

	"github.com/walteh/robowatch/pkg/report"
)

// 🎨 Display configuration
const (
	jobIndent   = 4  // spaces to indent result lines
	nameWidth   = 24 // width for the job name
	bytesWidth  = 10 // width for copied bytes
	resultWidth = 14 // width for the verdict text
)

// 📦 JobOperation is one copy job, for logging
type JobOperation struct {
	Name        string
	Source      string
	Destination string
}

// 🎯 Logger writes colored console lines and mirrors them into zerolog
type Logger struct {
	zlog    zerolog.Logger
	console io.Writer
	mu      sync.Mutex
	current *JobOperation
	results int
}

// 🏭 New creates a logger writing to console and mirroring into zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:    zlog,
		console: console,
	}
}

// 🔑 contextKey is the type for context values
type contextKey struct{}

// 🎯 FromContext gets the logger from context
func FromContext(ctx context.Context) *Logger {
	logger, ok := ctx.Value(contextKey{}).(*Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}

// 🎯 NewContext adds the logger to context
func NewContext(ctx context.Context, l *Logger) context.Context {
	return context.WithValue(ctx, contextKey{}, l)
}

// 📝 formatResult formats one finished job for display
func (l *Logger) formatResult(name string, r *report.CopyReport) string {
	symbol, symbolColor := '✓', color.FgGreen
	verdict := "OK"
	switch {
	case !r.Success:
		symbol, symbolColor = '✗', color.FgRed
		verdict = "FAILED"
	case r.Files.Copied == 0:
		symbol, symbolColor = '•', color.FgCyan
		verdict = "UP TO DATE"
	}

	return fmt.Sprintf("%s%s %s %s %s %s",
		fmt.Sprintf("%*s", jobIndent, ""),
		color.New(symbolColor).Sprint(string(symbol)),
		fmt.Sprintf("%-*s", nameWidth, name),
		fmt.Sprintf("%*s", bytesWidth, report.FormatBytes(r.Bytes.Copied)),
		color.New(symbolColor).Sprint(fmt.Sprintf("%-*s", resultWidth, verdict)),
		color.New(color.Faint).Sprintf("exit %d", r.ExitCode))
}

// 📝 LogResult logs a finished job
func (l *Logger) LogResult(ctx context.Context, name string, r *report.CopyReport) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.results++
	fmt.Fprintln(l.console, l.formatResult(name, r))

	l.zlog.Info().
		Str("job", name).
		Str("source", r.Source).
		Str("destination", r.Destination).
		Int("exit_code", r.ExitCode).
		Bool("success", r.Success).
		Int64("files_copied", r.Files.Copied).
		Int64("bytes_copied", r.Bytes.Copied).
		Msg("job result")
}

// 📝 StartJob prints the job header
func (l *Logger) StartJob(ctx context.Context, op JobOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.current = &op

	fmt.Fprintf(l.console, "[copying %s]\n",
		color.New(color.FgCyan).Sprint(op.Destination))

	fmt.Fprintf(l.console, "%s %s %s %s\n",
		color.New(color.FgMagenta).Sprint("◆"),
		color.New(color.Bold).Sprint(op.Name),
		color.New(color.Faint).Sprint("•"),
		color.New(color.FgYellow).Sprint(op.Source))

	l.zlog.Info().
		Str("job", op.Name).
		Str("source", op.Source).
		Str("destination", op.Destination).
		Msg("starting job")
}

// 📝 EndJob ends the current job
func (l *Logger) EndJob(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.current == nil {
		return
	}

	l.zlog.Info().
		Str("job", l.current.Name).
		Int("results", l.results).
		Msg("job complete")

	l.current = nil
	l.results = 0
}

// 📝 LogNewline logs a newline
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header logs a header
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	nameText := color.New(color.Bold, color.FgCyan).Sprint("robowatch")
	fmt.Fprintf(l.console, "\n%s %s\n\n", nameText, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Success logs a success message
func (l *Logger) Success(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "✅ %s\n", color.New(color.FgGreen).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Warning logs a warning message
func (l *Logger) Warning(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "⚠️  %s\n", color.New(color.FgYellow).Sprint(msg))
	l.zlog.Warn().Msg(msg)
}

// 📝 Error logs an error message
func (l *Logger) Error(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "❌ %s\n", color.New(color.FgRed).Sprint(msg))
	l.zlog.Error().Msg(msg)
}

// 📝 Info logs an info message
func (l *Logger) Info(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "ℹ️  %s\n", color.New(color.FgCyan).Sprint(msg))
	l.zlog.Info().Msg(msg)
}

// 📝 Infof logs a formatted info message
func (l *Logger) Infof(format string, args ...interface{}) {
	l.Info(fmt.Sprintf(format, args...))
}

// 📝 Warningf logs a formatted warning message
func (l *Logger) Warningf(format string, args ...interface{}) {
	l.Warning(fmt.Sprintf(format, args...))
}

// 📝 Errorf logs a formatted error message
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.Error(fmt.Sprintf(format, args...))
}

// 📝 Successf logs a formatted success message
func (l *Logger) Successf(format string, args ...interface{}) {
	l.Success(fmt.Sprintf(format, args...))
}
