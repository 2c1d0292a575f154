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

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/walteh/robowatch/pkg/report"
)

// 📬 Outcome is the result of one operation in a batch
type Outcome struct {
	Operation *CopyOperation
	Report    *report.CopyReport
	Err       error
}

// 🏃 RunBatch executes ops with at most parallel running at once. A failing
// operation does not stop the others; outcomes are returned in input order.
func RunBatch(ctx context.Context, ops []*CopyOperation, parallel int) []Outcome {
	if parallel < 1 {
		parallel = 1
	}
	logger := zerolog.Ctx(ctx)
	logger.Debug().Int("jobs", len(ops)).Int("parallel", parallel).Msg("starting batch")

	out := make([]Outcome, len(ops))

	var g errgroup.Group
	g.SetLimit(parallel)
	for i, op := range ops {
		g.Go(func() error {
			rep, err := op.Execute(ctx)
			out[i] = Outcome{Operation: op, Report: rep, Err: err}
			if err != nil {
				logger.Error().Err(err).Str("job", op.Request().Name).Msg("job failed")
			}
			return nil
		})
	}
	_ = g.Wait()

	return out
}

// Failed reports whether any outcome has an error or an unsuccessful report
func Failed(outcomes []Outcome) bool {
	for _, o := range outcomes {
		if o.Err != nil || o.Report == nil || !o.Report.Success {
			return true
		}
	}
	return false
}
