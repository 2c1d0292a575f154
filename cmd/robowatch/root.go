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

package main

import (
	"context"
	"io"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/walteh/robowatch/cmd/robowatch/commands"
	"github.com/walteh/robowatch/cmd/robowatch/opts"
	"github.com/walteh/robowatch/pkg/log"
)

// newRootCmd creates the root command with all subcommands attached
func newRootCmd(o *opts.RootOpts) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "robowatch",
		Short: "Run robocopy and watch its progress",
		Long: `robowatch runs robocopy twice: a dry run to learn how much will be
copied, then the real copy while it follows the copy log and reports
percent complete. When robocopy exits the log summary and exit code are
turned into a report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			cmd.SetContext(setupLogging(cmd.Context(), o.Debug, cmd.ErrOrStderr(), cmd.OutOrStdout()))
		},
	}

	addRootFlags(rootCmd, o)

	rootCmd.AddCommand(
		commands.NewRunCmd(o),
		commands.NewClassifyCmd(),
		commands.NewHistoryCmd(o),
		newVersionCmd(),
	)

	return rootCmd
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command, o *opts.RootOpts) {
	cmd.PersistentFlags().StringVarP(&o.ConfigFile, "config", "c", "", "job file (.yaml, .yml, .json or .hcl)")
	cmd.PersistentFlags().BoolVarP(&o.Debug, "debug", "d", false, "enable debug logging")
}

// setupLogging puts a zerolog logger and a console logger into ctx
func setupLogging(ctx context.Context, debug bool, stderr, stdout io.Writer) context.Context {
	level := zerolog.InfoLevel
	if debug {
		level = zerolog.DebugLevel
	}

	var w io.Writer = stderr
	if f, ok := stderr.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		w = zerolog.ConsoleWriter{Out: stderr, TimeFormat: "15:04:05"}
	}
	logger := zerolog.New(w).Level(level).With().Timestamp().Logger()

	// console lines are already on stdout; only mirror them when debugging
	mirror := zerolog.Nop()
	if debug {
		mirror = logger
	}

	ctx = logger.WithContext(ctx)
	return log.NewContext(ctx, log.New(stdout, mirror))
}
