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
	"context"
	"fmt"
	"io"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/cmd/robowatch/opts"
	"github.com/walteh/robowatch/pkg/config"
	"github.com/walteh/robowatch/pkg/log"
	"github.com/walteh/robowatch/pkg/logformat"
	"github.com/walteh/robowatch/pkg/operation"
	"github.com/walteh/robowatch/pkg/report"
	"github.com/walteh/robowatch/pkg/robocopy"
	"github.com/walteh/robowatch/pkg/status"
)

// runFlags holds the flags of the run command. Job fields only apply when
// SOURCE and DEST are given on the command line.
type runFlags struct {
	job      config.Job
	retries  int
	wait     int
	poll     time.Duration
	parallel int

	tool        string
	historyPath string
	noHistory   bool
	incremental bool
	bar         bool
	output      bool

	// sinks builds the progress sinks of one job out of jobs
	sinks func(ctx context.Context, name string, jobs int) ([]status.Sink, error)
}

// NewRunCmd creates the run command
func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	return newRunCmd(o, nil)
}

func newRunCmd(o *opts.RootOpts, runner robocopy.Runner) *cobra.Command {
	f := &runFlags{}

	cmd := &cobra.Command{
		Use:   "run [SOURCE DEST [FILTER...]]",
		Short: "Copy with robocopy and report progress",
		Long: `Run scans SOURCE with a robocopy dry run to learn how many bytes will be
copied, then runs the real copy and reports progress while it works.

Without arguments every job in the --config file is run.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return errors.New("DEST is required when SOURCE is given")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ctx = zerolog.Ctx(ctx).With().Str("command", "run").Logger().WithContext(ctx)

			cfg, err := o.LoadConfig(ctx)
			if err != nil {
				return err
			}
			if err := f.apply(cmd, cfg, args); err != nil {
				return err
			}
			if len(cfg.Jobs) == 0 {
				return errors.New("nothing to copy: give SOURCE and DEST or a config file with jobs")
			}

			if f.sinks == nil {
				f.sinks = defaultSinks(f.bar, cmd.ErrOrStderr())
			}

			if runner == nil {
				r := &robocopy.ExecRunner{}
				if f.output {
					r.Stdout = cmd.ErrOrStderr()
					r.Stderr = cmd.ErrOrStderr()
				}
				runner = r
			}

			return run(ctx, cmd.OutOrStdout(), cfg, f, runner)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&f.job.Name, "name", "", "job name used in output and history")
	flags.StringVar(&f.job.LogFile, "log", "", "keep the copy log at this path")
	flags.StringSliceVar(&f.job.Flags, "flag", nil, "extra robocopy flag, repeatable")
	flags.BoolVar(&f.job.Mirror, "mirror", false, "mirror the tree (/MIR)")
	flags.BoolVar(&f.job.Subdirectories, "subdirs", false, "copy subdirectories (/S)")
	flags.BoolVar(&f.job.EmptySubdirectories, "empty-subdirs", false, "copy subdirectories including empty ones (/E)")
	flags.BoolVar(&f.job.Purge, "purge", false, "delete destination files missing from the source (/PURGE)")
	flags.BoolVar(&f.job.Move, "move", false, "delete source files after copying (/MOVE)")
	flags.BoolVar(&f.job.Restartable, "restartable", false, "copy in restartable mode (/Z)")
	flags.BoolVar(&f.job.Backup, "backup", false, "copy in backup mode (/B)")
	flags.BoolVar(&f.job.ExcludeOlder, "exclude-older", false, "skip source files older than the destination (/XO)")
	flags.StringVar(&f.job.CopyFlags, "copy", "", "file properties to copy (/COPY:)")
	flags.IntVar(&f.job.Threads, "threads", 0, "multithreaded copy with n threads (/MT:)")
	flags.IntVar(&f.retries, "retries", -1, "retries on failed copies (/R:)")
	flags.IntVar(&f.wait, "wait", -1, "seconds between retries (/W:)")
	flags.IntVar(&f.job.Level, "level", 0, "copy only the top n levels of the tree (/LEV:)")
	flags.StringSliceVar(&f.job.ExcludeFiles, "exclude-files", nil, "file patterns to skip (/XF)")
	flags.StringSliceVar(&f.job.ExcludeDirectories, "exclude-dirs", nil, "directories to skip (/XD)")

	flags.DurationVar(&f.poll, "poll", operation.DefaultPollInterval, "how often the copy log is read")
	flags.IntVar(&f.parallel, "parallel", 1, "jobs to run at once")
	flags.BoolVar(&f.incremental, "incremental", false, "read only what was appended to the copy log")
	flags.StringVar(&f.tool, "tool", "", "robocopy executable (default robocopy or $"+config.EnvTool+")")
	flags.StringVar(&f.historyPath, "history", "", "history database path (default under the user config dir or $"+config.EnvHistory+")")
	flags.BoolVar(&f.noHistory, "no-history", false, "do not record reports")
	flags.BoolVar(&f.bar, "bar", false, "draw a progress bar (single job only)")
	flags.BoolVar(&f.output, "output", false, "forward robocopy console output to stderr")

	return cmd
}

// apply lays command line flags over cfg. SOURCE and DEST replace the
// configured jobs with a single one built from the job flags.
func (f *runFlags) apply(cmd *cobra.Command, cfg *config.Config, args []string) error {
	flags := cmd.Flags()

	if f.tool != "" {
		cfg.Tool = f.tool
	}
	if f.historyPath != "" {
		cfg.History = f.historyPath
	}
	if flags.Changed("incremental") {
		cfg.Incremental = f.incremental
	}
	if flags.Changed("parallel") {
		if f.parallel < 1 {
			return errors.Errorf("--parallel must be at least 1, got %d", f.parallel)
		}
		cfg.Parallel = f.parallel
	}
	if flags.Changed("poll") {
		if err := cfg.SetPoll(f.poll); err != nil {
			return errors.Errorf("--poll: %w", err)
		}
	}

	if len(args) == 0 {
		return nil
	}

	job := f.job
	job.Source = args[0]
	job.Destination = args[1]
	job.Files = args[2:]
	if f.retries >= 0 {
		job.Retries = &f.retries
	}
	if f.wait >= 0 {
		job.WaitSeconds = &f.wait
	}
	if err := job.Validate(); err != nil {
		return errors.Errorf("invalid job: %w", err)
	}
	if job.Name == "" {
		job.Name = "copy"
	}
	cfg.Jobs = []config.Job{job}
	return nil
}

func run(ctx context.Context, out io.Writer, cfg *config.Config, f *runFlags, runner robocopy.Runner) error {
	logger := zerolog.Ctx(ctx)
	console := log.FromContext(ctx)

	format, err := logformat.Lookup(cfg.LogFormat)
	if err != nil {
		return errors.Errorf("resolving log format: %w", err)
	}

	console.Header(fmt.Sprintf("%d job(s), %d at a time", len(cfg.Jobs), cfg.Parallel))

	// every sink is stopped once its job returns, whatever state it ended in
	var started []status.Sink
	stopSinks := func() {
		for _, s := range started {
			s.Done()
		}
	}
	defer stopSinks()

	ops := make([]*operation.CopyOperation, 0, len(cfg.Jobs))
	for _, job := range cfg.Jobs {
		jobCtx := logger.With().Str("job", job.Name).Logger().WithContext(ctx)

		sinks, err := f.sinks(jobCtx, job.Name, len(cfg.Jobs))
		if err != nil {
			return errors.Errorf("starting progress for %s: %w", job.Name, err)
		}
		sink := status.Multi(sinks...)
		started = append(started, sink)

		hooks := status.Hooks(jobCtx, job.Name, sink)
		hooks.OnCancel = func(p robocopy.Process) {
			if err := p.Kill(); err != nil {
				zerolog.Ctx(jobCtx).Error().Err(err).Int("pid", p.Pid()).Msg("killing robocopy")
			}
		}

		op, err := operation.New(job.Request(), operation.Options{
			Tool:         cfg.Tool,
			Runner:       runner,
			Format:       format,
			PollInterval: cfg.Poll(),
			Incremental:  cfg.Incremental,
			Hooks:        hooks,
		})
		if err != nil {
			return errors.Errorf("preparing job %s: %w", job.Name, err)
		}
		ops = append(ops, op)
	}

	outcomes := operation.RunBatch(ctx, ops, cfg.Parallel)
	stopSinks()

	var store historySaver = noHistory{}
	if !f.noHistory {
		s, err := opts.OpenHistory(ctx, cfg.History)
		if err != nil {
			console.Warningf("history disabled: %v", err)
		} else {
			defer s.Close()
			store = s
		}
	}

	formatter := status.DefaultFormatter{}
	for _, o := range outcomes {
		req := o.Operation.Request()
		console.StartJob(ctx, log.JobOperation{Name: req.Name, Source: req.Source, Destination: req.Destination})
		if o.Err != nil {
			console.Error(formatter.FormatError(o.Err))
			var scanErr *operation.ScanError
			var sumErr *operation.SummaryError
			switch {
			case errors.As(o.Err, &scanErr) && scanErr.Log != "":
				fmt.Fprintln(out, scanErr.Log)
			case errors.As(o.Err, &sumErr) && sumErr.Log != "":
				fmt.Fprintln(out, sumErr.Log)
			}
			console.EndJob(ctx)
			console.LogNewline()
			continue
		}

		report.Render(out, o.Report)
		console.LogResult(ctx, req.Name, o.Report)
		if id, err := store.Save(ctx, o.Report); err != nil {
			console.Warningf("saving report: %v", err)
		} else if id > 0 {
			console.Infof("report saved as #%d", id)
		}
		console.EndJob(ctx)
		console.LogNewline()
	}

	if err := ctx.Err(); err != nil {
		return errors.Errorf("run interrupted: %w", err)
	}
	if operation.Failed(outcomes) {
		return errors.New("one or more jobs failed")
	}
	console.Successf("%d job(s) finished", len(outcomes))
	return nil
}

// defaultSinks logs progress through zerolog and, with bar set and a single
// job, also draws a progress bar on w
func defaultSinks(bar bool, w io.Writer) func(ctx context.Context, name string, jobs int) ([]status.Sink, error) {
	return func(ctx context.Context, name string, jobs int) ([]status.Sink, error) {
		sinks := []status.Sink{status.NewLogSink(ctx)}
		if bar && jobs == 1 {
			b, err := status.NewBarSink(w, name)
			if err != nil {
				return nil, err
			}
			sinks = append(sinks, b)
		}
		return sinks, nil
	}
}

type historySaver interface {
	Save(ctx context.Context, r *report.CopyReport) (uint64, error)
}

type noHistory struct{}

func (noHistory) Save(context.Context, *report.CopyReport) (uint64, error) { return 0, nil }
