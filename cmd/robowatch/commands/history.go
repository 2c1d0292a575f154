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
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/cmd/robowatch/opts"
	"github.com/walteh/robowatch/pkg/history"
	"github.com/walteh/robowatch/pkg/report"
)

// NewHistoryCmd creates the history command and its list and show subcommands
func NewHistoryCmd(o *opts.RootOpts) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show reports of earlier runs",
	}
	cmd.PersistentFlags().StringVar(&path, "history", "", "history database path")

	open := func(cmd *cobra.Command) (*history.BoltStore, error) {
		ctx := cmd.Context()
		cfg, err := o.LoadConfig(ctx)
		if err != nil {
			return nil, err
		}
		if path != "" {
			cfg.History = path
		}
		return opts.OpenHistory(ctx, cfg.History)
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List recorded runs, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entries, err := store.List(cmd.Context(), limit)
			if err != nil {
				return errors.Errorf("listing reports: %w", err)
			}
			if len(entries) == 0 {
				cmd.Println("no runs recorded")
				return nil
			}
			report.RenderList(cmd.OutOrStdout(), entries)
			return nil
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show, 0 for all")

	show := &cobra.Command{
		Use:   "show ID",
		Short: "Show the full report of one run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseUint(args[0], 10, 64)
			if err != nil {
				return errors.Errorf("report id must be a positive number: %w", err)
			}

			store, err := open(cmd)
			if err != nil {
				return err
			}
			defer store.Close()

			entry, err := store.Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			report.Render(cmd.OutOrStdout(), entry.Report)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}
