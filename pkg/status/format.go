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
	"fmt"

	"github.com/walteh/robowatch/pkg/progress"
	"github.com/walteh/robowatch/pkg/report"
)

// ProgressFormatter renders a sample as one line
type ProgressFormatter interface {
	FormatProgress(s progress.Sample) string
	FormatError(err error) string
}

// DefaultFormatter is the emoji line format used by LogSink
type DefaultFormatter struct{}

var _ ProgressFormatter = DefaultFormatter{}

// FormatProgress renders "⏳ 45.0% (270 B / 600 B) b.txt 50%"
func (DefaultFormatter) FormatProgress(s progress.Sample) string {
	icon := "⏳"
	if s.Percent >= 100 {
		icon = "✅"
	}
	line := fmt.Sprintf("%s %5.1f%% (%s / %s)", icon, s.Percent, report.FormatBytes(s.Copied), report.FormatBytes(s.Total))
	if s.Label != "" {
		line += " " + s.Label
		if s.InFlight {
			line += fmt.Sprintf(" %.0f%%", s.FilePercent)
		}
	}
	return line
}

func (DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
