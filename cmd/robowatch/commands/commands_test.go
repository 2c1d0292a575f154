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
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/robowatch/cmd/robowatch/opts"
	"github.com/walteh/robowatch/pkg/config"
	"github.com/walteh/robowatch/pkg/history"
	"github.com/walteh/robowatch/pkg/logformat"
	"github.com/walteh/robowatch/pkg/report"
	"github.com/walteh/robowatch/pkg/robocopy"
)

func execute(cmd *cobra.Command, args ...string) (string, error) {
	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestClassifyCmd(t *testing.T) {
	color.NoColor = true

	tests := []struct {
		name        string
		args        []string
		want        []string
		errContains string
	}{
		{name: "success_code", args: []string{"1"}, want: []string{" 1  SUCCESS  All files were copied successfully."}},
		{name: "failure_code", args: []string{"16"}, want: []string{"16  FAILURE  Serious error."}},
		{name: "unknown_code", args: []string{"42"}, want: []string{"42  FAILURE  Unknown exit code 42."}},
		{name: "not_a_number", args: []string{"eight"}, errContains: "must be a number"},
		{name: "missing_code", args: nil, errContains: "accepts 1 arg"},
		{name: "all", args: []string{"--all"}, want: []string{" 0  SUCCESS", " 7  SUCCESS", " 8  FAILURE", "16  FAILURE"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(NewClassifyCmd(), tt.args...)
			if tt.errContains != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errContains)
				return
			}
			require.NoError(t, err)
			for _, w := range tt.want {
				assert.Contains(t, out, w)
			}
		})
	}
}

func TestClassifyAllListsEveryCode(t *testing.T) {
	out, err := execute(NewClassifyCmd(), "--all")
	require.NoError(t, err)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 17)
}

func TestHistoryCmd(t *testing.T) {
	color.NoColor = true
	t.Setenv(config.EnvTool, "")
	t.Setenv(config.EnvHistory, "")

	path := filepath.Join(t.TempDir(), "history.db")
	store, err := history.Open(path)
	require.NoError(t, err)

	started := time.Date(2025, 1, 6, 10, 0, 0, 0, time.UTC)
	for _, name := range []string{"photos", "music"} {
		_, err := store.Save(context.Background(), report.Build(report.Params{
			Name:        name,
			Source:      `C:\` + name,
			Destination: `D:\` + name,
			Summary: logformat.Summary{
				Files: logformat.Counts{Total: 2, Copied: 2},
				Bytes: logformat.Counts{Total: 2048, Copied: 2048},
			},
			Result:     robocopy.Classify(1),
			StartedAt:  started,
			FinishedAt: started.Add(time.Minute),
		}))
		require.NoError(t, err)
	}
	require.NoError(t, store.Close())

	t.Run("list", func(t *testing.T) {
		out, err := execute(NewHistoryCmd(&opts.RootOpts{}), "list", "--history", path)
		require.NoError(t, err)
		assert.Less(t, strings.Index(out, `D:\music`), strings.Index(out, `D:\photos`), "newest first")
	})

	t.Run("list_limit", func(t *testing.T) {
		out, err := execute(NewHistoryCmd(&opts.RootOpts{}), "list", "-n", "1", "--history", path)
		require.NoError(t, err)
		assert.Contains(t, out, `D:\music`)
		assert.NotContains(t, out, `D:\photos`)
	})

	t.Run("show", func(t *testing.T) {
		out, err := execute(NewHistoryCmd(&opts.RootOpts{}), "show", "1", "--history", path)
		require.NoError(t, err)
		assert.Contains(t, out, "SUCCESS")
		assert.Contains(t, out, `D:\photos`)
	})

	t.Run("show_missing", func(t *testing.T) {
		_, err := execute(NewHistoryCmd(&opts.RootOpts{}), "show", "99", "--history", path)
		require.Error(t, err)
		assert.ErrorIs(t, err, history.ErrNotFound)
	})

	t.Run("show_bad_id", func(t *testing.T) {
		_, err := execute(NewHistoryCmd(&opts.RootOpts{}), "show", "-1", "--history", path)
		require.Error(t, err)
	})
}

func TestHistoryListEmpty(t *testing.T) {
	t.Setenv(config.EnvHistory, "")
	path := filepath.Join(t.TempDir(), "history.db")

	out, err := execute(NewHistoryCmd(&opts.RootOpts{}), "list", "--history", path)
	require.NoError(t, err)
	assert.Contains(t, out, "no runs recorded")
}
