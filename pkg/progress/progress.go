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

// Package progress turns the lines of a growing copy log into a completion
// estimate.
package progress

import (
	"github.com/walteh/robowatch/pkg/logformat"
)

// 📈 Sample is one progress observation
type Sample struct {
	Copied  int64   // estimated bytes done
	Total   int64   // bytes the scan said would move
	Percent float64 // 0 to 100
	Label   string  // file currently being copied

	// FilePercent is the in-place percentage of Label, valid when InFlight
	FilePercent float64
	InFlight    bool
}

// 🧮 Estimator derives samples from log lines against a fixed scan total
type Estimator struct {
	format logformat.Format
	total  int64
}

// New creates an estimator for a copy expected to move total bytes
func New(format logformat.Format, total int64) *Estimator {
	return &Estimator{format: format, total: total}
}

// Estimate credits every file row but the last in full. The last row is
// credited by the trailing percentage on the final line when there is one,
// otherwise in full.
func (e *Estimator) Estimate(lines []string) Sample {
	s := Sample{Total: e.total}

	rows := e.format.FileRows(lines)
	if n := len(rows); n > 0 {
		for _, r := range rows[:n-1] {
			s.Copied += r.Bytes
		}
		last := rows[n-1]
		s.Label = last.Name

		if pct, ok := e.format.TrailingPercent(lines[len(lines)-1]); ok {
			s.InFlight = true
			s.FilePercent = pct
			s.Copied += int64(float64(last.Bytes) * pct / 100)
		} else {
			s.Copied += last.Bytes
		}
	}

	s.Percent = Percent(s.Copied, e.total)
	return s
}

// Percent is copied/total as a percentage, clamped to [0, 100]. A zero total
// means there was nothing to copy, which is complete.
func Percent(copied, total int64) float64 {
	if total <= 0 {
		return 100
	}
	p := float64(copied) / float64(total) * 100
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
