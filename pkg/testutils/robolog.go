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

// Package testutils builds robocopy log fixtures for tests.
package testutils

import (
	"fmt"
	"strings"
	"time"

	"github.com/walteh/robowatch/pkg/logformat"
)

const rule = "------------------------------------------------------------------------------"

// 📄 Row is one file record in a copy log. Percent, if set, is written as
// in-place progress updates after the record, each preceded by \r.
type Row struct {
	Bytes   int64
	Name    string
	Percent []float64
}

// Header is the banner robocopy writes before any file activity.
func Header(source, dest, options string) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString("-" + rule + "\r\n")
	b.WriteString("   ROBOCOPY     ::     Robust File Copy for Windows                              \r\n")
	b.WriteString("-" + rule + "\r\n")
	b.WriteString("\r\n")
	b.WriteString("  Started : Monday, January 6, 2025 10:00:00 AM\r\n")
	fmt.Fprintf(&b, "   Source : %s\r\n", source)
	fmt.Fprintf(&b, "     Dest : %s\r\n", dest)
	b.WriteString("\r\n")
	b.WriteString("    Files : *.*\r\n")
	b.WriteString("\t    \r\n")
	fmt.Fprintf(&b, "  Options : *.* %s /DCOPY:DA /COPY:DAT /R:1000000 /W:30 \r\n", options)
	b.WriteString("\r\n")
	b.WriteString(rule + "\r\n")
	b.WriteString("\r\n")
	return b.String()
}

// Rows renders file records the way robocopy writes them with /NC /BYTES.
// The final row's percentages are left unterminated, as they are while the
// file is still being copied.
func Rows(rows []Row) string {
	var b strings.Builder
	for i, r := range rows {
		fmt.Fprintf(&b, "\t\t\t%10d\t%s", r.Bytes, r.Name)
		for _, p := range r.Percent {
			fmt.Fprintf(&b, "\r%s", formatPercent(p))
		}
		if i < len(rows)-1 || len(r.Percent) == 0 {
			b.WriteString("\r\n")
		}
	}
	return b.String()
}

// ScanLog is a finished dry-run log reporting files and bytes to copy.
func ScanLog(source, dest string, files, bytes int64) string {
	var b strings.Builder
	b.WriteString(Header(source, dest, "/NDL /TEE /BYTES /NFL /L"))
	b.WriteString(rule + "\r\n")
	b.WriteString("\r\n")
	b.WriteString("               Total    Copied   Skipped  Mismatch    FAILED    Extras\r\n")
	b.WriteString(countsRow("Dirs", logformat.Counts{Total: 1, Skipped: 1}))
	b.WriteString(countsRow("Files", logformat.Counts{Total: files, Copied: files}))
	b.WriteString(countsRow("Bytes", logformat.Counts{Total: bytes, Copied: bytes}))
	b.WriteString(timesRow(logformat.Times{}))
	b.WriteString("   Ended : Monday, January 6, 2025 10:00:00 AM\r\n")
	b.WriteString("\r\n")
	return b.String()
}

// CopyLog is a finished copy log: header, file rows and the summary block.
func CopyLog(source, dest string, rows []Row, s logformat.Summary) string {
	var b strings.Builder
	b.WriteString(Header(source, dest, "/NDL /TEE /BYTES /NC"))
	done := make([]Row, len(rows))
	for i, r := range rows {
		done[i] = Row{Bytes: r.Bytes, Name: r.Name, Percent: r.Percent}
		if len(r.Percent) > 0 {
			done[i].Percent = append(append([]float64{}, r.Percent...), 100)
		}
	}
	b.WriteString(Rows(done))
	if n := len(done); n > 0 && len(done[n-1].Percent) > 0 {
		b.WriteString("\r\n")
	}
	b.WriteString(SummaryBlock(s))
	return b.String()
}

// SummaryBlock is the end-of-run block of a copy log.
func SummaryBlock(s logformat.Summary) string {
	var b strings.Builder
	b.WriteString("\r\n")
	b.WriteString(rule + "\r\n")
	b.WriteString("\r\n")
	b.WriteString("               Total    Copied   Skipped  Mismatch    FAILED    Extras\r\n")
	b.WriteString(countsRow("Dirs", s.Dirs))
	b.WriteString(countsRow("Files", s.Files))
	b.WriteString(countsRow("Bytes", s.Bytes))
	b.WriteString(timesRow(s.Times))
	b.WriteString("\r\n")
	b.WriteString("\r\n")
	fmt.Fprintf(&b, "   Speed :%20d Bytes/sec.\r\n", s.BytesPerSec)
	fmt.Fprintf(&b, "   Speed :%20.3f MegaBytes/min.\r\n", float64(s.BytesPerSec)*60/1024/1024)
	b.WriteString("   Ended : Monday, January 6, 2025 10:00:05 AM\r\n")
	b.WriteString("\r\n")
	return b.String()
}

func countsRow(name string, c logformat.Counts) string {
	return fmt.Sprintf("%8s :%10d%10d%10d%10d%10d%10d\r\n", name, c.Total, c.Copied, c.Skipped, c.Mismatch, c.Failed, c.Extras)
}

func timesRow(t logformat.Times) string {
	return fmt.Sprintf("   Times :%10s%10s%22s%10s\r\n", clock(t.Total), clock(t.Copied), clock(t.Failed), clock(t.Extras))
}

func clock(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	d -= h * time.Hour
	m := d / time.Minute
	d -= m * time.Minute
	return fmt.Sprintf("%d:%02d:%02d", h, m, d/time.Second)
}

func formatPercent(p float64) string {
	if p == float64(int64(p)) {
		return fmt.Sprintf("%3.0f%%", p)
	}
	return fmt.Sprintf("%4.1f%%", p)
}
