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
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/report"
	"github.com/walteh/robowatch/pkg/robocopy"
)

// NewClassifyCmd creates the classify command
func NewClassifyCmd() *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "classify [CODE]",
		Short: "Explain a robocopy exit code",
		Long: `Classify prints whether a robocopy exit code means success and what it
says about the copy. Codes below 8 are successes.`,
		Args: func(cmd *cobra.Command, args []string) error {
			if all {
				return cobra.NoArgs(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if all {
				for code := 0; code <= 16; code++ {
					writeResult(out, robocopy.Classify(code))
				}
				return nil
			}

			code, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Errorf("exit code must be a number: %w", err)
			}
			writeResult(out, robocopy.Classify(code))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "list every known exit code")
	return cmd
}

func writeResult(out io.Writer, r robocopy.Result) {
	fmt.Fprintf(out, "%2d  %s  %s\n", r.Code, report.Verdict(r.Success), r.Message)
}
