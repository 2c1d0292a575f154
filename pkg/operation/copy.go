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

package operation

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/logtail"
	"github.com/walteh/robowatch/pkg/progress"
	"github.com/walteh/robowatch/pkg/report"
	"github.com/walteh/robowatch/pkg/robocopy"
)

// 🚀 Execute scans, copies and reports. A copy that robocopy reports as
// failed (exit 8 and up) is not an error; the report carries Success=false.
func (o *CopyOperation) Execute(ctx context.Context) (*report.CopyReport, error) {
	if s := o.State(); s != StateIdle {
		return nil, errors.Errorf("operation already ran (state %s)", s)
	}

	logger := zerolog.Ctx(ctx).With().
		Str("job", o.req.Name).
		Str("source", o.req.Source).
		Str("destination", o.req.Destination).
		Logger()
	ctx = logger.WithContext(ctx)

	startedAt := time.Now()

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("not started: %w", err)
	}

	if err := checkDir("source", o.req.Source); err != nil {
		return nil, err
	}
	if err := checkDir("destination", o.req.Destination); err != nil {
		return nil, err
	}

	base, err := robocopy.BuildArguments(robocopy.Invocation{
		Source:      o.req.Source,
		Destination: o.req.Destination,
		Files:       o.req.Files,
		Options:     o.req.Options,
		Flags:       o.req.Flags,
	})
	if err != nil {
		return nil, errors.Errorf("building arguments: %w", err)
	}

	scanLog, err := newTempLog(o.opts.TempDir, "scan")
	if err != nil {
		return nil, err
	}
	var copyLog LogFile
	if o.req.LogFile != "" {
		copyLog, err = callerLog(o.req.LogFile)
	} else {
		copyLog, err = newTempLog(o.opts.TempDir, "copy")
	}
	if err != nil {
		scanLog.Dispose(ctx)
		return nil, err
	}
	cleanup := func() {
		scanLog.Dispose(ctx)
		copyLog.Dispose(ctx)
	}

	o.setState(ctx, StateScanning)

	total, err := o.scan(ctx, robocopy.ScanArguments(base, scanLog.Path), scanLog)
	if err != nil {
		if ctx.Err() == nil {
			o.setState(ctx, StateScanFailed)
			cleanup()
		}
		return nil, err
	}
	logger.Info().Int64("total_bytes", total).Msg("scan complete")
	o.setState(ctx, StateScanned)

	if err := ctx.Err(); err != nil {
		return nil, errors.Errorf("copy not started: %w", err)
	}

	copyArgs := robocopy.CopyArguments(base, copyLog.Path)
	o.setState(ctx, StateCopying)

	code, err := o.copy(ctx, copyArgs, copyLog, total)
	if err != nil {
		if ctx.Err() == nil {
			o.setState(ctx, StateFailed)
			cleanup()
		}
		return nil, err
	}

	lines := logtail.NewFullReader(copyLog.Path).Lines()
	result := robocopy.Classify(code)
	summary, err := o.opts.Format.Summary(lines)
	if err != nil {
		o.setState(ctx, StateFailed)
		cleanup()
		return nil, &SummaryError{
			ExitCode: code,
			Result:   result,
			Log:      strings.Join(lines, "\n"),
			Err:      err,
		}
	}

	retained := ""
	if !copyLog.Owned {
		retained = copyLog.Path
	}
	rep := report.Build(report.Params{
		Name:        o.req.Name,
		Source:      o.req.Source,
		Destination: o.req.Destination,
		CommandLine: robocopy.CommandLine(o.opts.Tool, copyArgs),
		ScanTotal:   total,
		Summary:     summary,
		Result:      result,
		LogFile:     retained,
		StartedAt:   startedAt,
		FinishedAt:  time.Now(),
	})

	cleanup()
	o.setState(ctx, StateCompleted)

	logger.Info().
		Int("exit_code", code).
		Bool("success", result.Success).
		Int64("files_copied", summary.Files.Copied).
		Int64("bytes_copied", summary.Bytes.Copied).
		Msg("copy complete")

	return rep, nil
}

// scan runs the dry run to completion and reads its byte total
func (o *CopyOperation) scan(ctx context.Context, args []string, log LogFile) (int64, error) {
	proc, err := o.opts.Runner.Start(ctx, o.opts.Tool, args)
	if err != nil {
		return 0, errors.Errorf("starting scan: %w", err)
	}

	select {
	case <-ctx.Done():
		o.cancel(ctx, proc)
		return 0, errors.Errorf("waiting for scan: %w", ctx.Err())
	case <-proc.Done():
	}

	code := proc.ExitCode()
	lines := logtail.NewFullReader(log.Path).Lines()
	zerolog.Ctx(ctx).Debug().Int("exit_code", code).Int("log_lines", len(lines)).Msg("scan exited")

	if robocopy.IsFailure(code) {
		return 0, &ScanError{
			ExitCode: code,
			Log:      strings.Join(lines, "\n"),
			Result:   robocopy.Classify(code),
		}
	}

	total, err := o.opts.Format.ScanTotal(lines)
	if err != nil {
		return 0, errors.Errorf("reading scan total: %w", err)
	}
	return total, nil
}

// copy runs the live copy, emitting a progress sample per tick until it exits
func (o *CopyOperation) copy(ctx context.Context, args []string, log LogFile, total int64) (int, error) {
	proc, err := o.opts.Runner.Start(ctx, o.opts.Tool, args)
	if err != nil {
		return 0, errors.Errorf("starting copy: %w", err)
	}

	var reader logtail.Reader = logtail.NewFullReader(log.Path)
	if o.opts.Incremental {
		reader = logtail.NewIncrementalReader(log.Path)
	}
	est := progress.New(o.opts.Format, total)

	ticker := time.NewTicker(o.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			o.cancel(ctx, proc)
			return 0, errors.Errorf("waiting for copy: %w", ctx.Err())
		case <-proc.Done():
			o.sample(est, reader)
			if err := proc.Err(); err != nil {
				zerolog.Ctx(ctx).Warn().Err(err).Msg("copy process did not exit cleanly")
			}
			return proc.ExitCode(), nil
		case <-ticker.C:
			o.sample(est, reader)
		}
	}
}

func (o *CopyOperation) cancel(ctx context.Context, proc robocopy.Process) {
	zerolog.Ctx(ctx).Warn().Int("pid", proc.Pid()).Str("state", o.State().String()).Msg("operation cancelled")
	if o.opts.Hooks.OnCancel != nil {
		o.opts.Hooks.OnCancel(proc)
	}
}

// sample emits an estimate for the current log. A tick that reads nothing
// keeps the previous sample.
func (o *CopyOperation) sample(est *progress.Estimator, reader logtail.Reader) {
	lines := reader.Lines()
	if len(lines) == 0 {
		return
	}
	o.emit(est.Estimate(lines))
}

func (o *CopyOperation) emit(s progress.Sample) {
	if o.opts.Hooks.OnProgress != nil {
		o.opts.Hooks.OnProgress(s)
	}
}

func (o *CopyOperation) setState(ctx context.Context, s State) {
	o.mu.Lock()
	prev := o.state
	o.state = s
	o.mu.Unlock()

	zerolog.Ctx(ctx).Debug().Str("from", prev.String()).Str("to", s.String()).Msg("state change")
	if o.opts.Hooks.OnState != nil {
		o.opts.Hooks.OnState(s)
	}
}

func checkDir(role, path string) error {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return &PathKindError{Role: role, Path: path}
	}
	return nil
}
