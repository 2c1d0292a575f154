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

package report

import (
	"fmt"
	"time"
)

const unit = 1024.0

// FormatBytes formats a byte count, e.g. "1.5 MB"
func FormatBytes(bytes int64) string {
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	v, suffix := scale(float64(bytes))
	return fmt.Sprintf("%.1f %cB", v, suffix)
}

// FormatRate formats a transfer rate, e.g. "5.2 MB/s"
func FormatRate(bytesPerSec float64) string {
	if bytesPerSec < unit {
		return fmt.Sprintf("%.0f B/s", bytesPerSec)
	}
	v, suffix := scale(bytesPerSec)
	return fmt.Sprintf("%.1f %cB/s", v, suffix)
}

func scale(n float64) (float64, byte) {
	div, exp := unit, 0
	for v := n / unit; v >= unit && exp < 5; v /= unit {
		div *= unit
		exp++
	}
	return n / div, "KMGTPE"[exp]
}

// FormatDuration formats a duration as "2m 30s"
func FormatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	hours := d / time.Hour
	d %= time.Hour
	minutes := d / time.Minute
	d %= time.Minute
	seconds := d / time.Second

	if hours > 0 {
		return fmt.Sprintf("%dh %dm %ds", hours, minutes, seconds)
	} else if minutes > 0 {
		return fmt.Sprintf("%dm %ds", minutes, seconds)
	}
	return fmt.Sprintf("%ds", seconds)
}
