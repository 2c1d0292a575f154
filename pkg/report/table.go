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
	"io"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/walteh/robowatch/pkg/logformat"
)

// Verdict is "SUCCESS" in green or "FAILURE" in red
func Verdict(success bool) string {
	if success {
		return color.New(color.FgGreen, color.Bold).Sprint("SUCCESS")
	}
	return color.New(color.FgRed, color.Bold).Sprint("FAILURE")
}

// 🖨️ Render writes the summary table of one report
func Render(w io.Writer, r *CopyReport) {
	fmt.Fprintf(w, "%s (%d): %s\n", Verdict(r.Success), r.ExitCode, r.Message)
	if r.Name != "" {
		fmt.Fprintf(w, "%s ", text.Bold.Sprint(r.Name+":"))
	}
	fmt.Fprintf(w, "%s -> %s\n", r.Source, r.Destination)

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Row = text.Colors{text.Reset}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
		{Number: 4, Align: text.AlignRight},
		{Number: 5, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{
		"",
		text.Bold.Sprint("Total"),
		text.Bold.Sprint("Copied"),
		text.Bold.Sprint("Skipped"),
		text.Bold.Sprint("Mismatch"),
		text.Bold.Sprint("Failed"),
		text.Bold.Sprint("Extras"),
	})
	t.AppendRow(countsRow("Dirs", r.Dirs, itoa))
	t.AppendRow(countsRow("Files", r.Files, itoa))
	t.AppendRow(countsRow("Bytes", r.Bytes, FormatBytes))
	t.AppendRow(table.Row{
		text.Bold.Sprint("Times"),
		FormatDuration(r.Times.Total),
		FormatDuration(r.Times.Copied),
		"",
		"",
		FormatDuration(r.Times.Failed),
		FormatDuration(r.Times.Extras),
	})
	t.Render()

	fmt.Fprintf(w, "%s %s  %s %s  %s %s\n",
		text.Bold.Sprint("Speed:"), r.Speed,
		text.Bold.Sprint("Scanned:"), FormatBytes(r.ScanTotal),
		text.Bold.Sprint("Elapsed:"), FormatDuration(r.Elapsed()))
	if r.LogFile != "" {
		fmt.Fprintf(w, "%s %s\n", text.Bold.Sprint("Log:"), r.LogFile)
	}
}

// 📚 RenderList writes one line per stored report
func RenderList(w io.Writer, entries []Entry) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Row = text.Colors{text.Reset}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.AppendHeader(table.Row{
		text.Bold.Sprint("ID"),
		text.Bold.Sprint("Started"),
		text.Bold.Sprint("Result"),
		text.Bold.Sprint("Source"),
		text.Bold.Sprint("Destination"),
		text.Bold.Sprint("Files"),
		text.Bold.Sprint("Bytes"),
	})
	for _, e := range entries {
		r := e.Report
		t.AppendRow(table.Row{
			e.ID,
			r.StartedAt.Local().Format("2006-01-02 15:04:05"),
			fmt.Sprintf("%s (%d)", Verdict(r.Success), r.ExitCode),
			r.Source,
			r.Destination,
			r.Files.Copied,
			FormatBytes(r.Bytes.Copied),
		})
	}
	t.Render()
}

func countsRow(name string, c logformat.Counts, f func(int64) string) table.Row {
	return table.Row{
		text.Bold.Sprint(name),
		f(c.Total),
		f(c.Copied),
		f(c.Skipped),
		f(c.Mismatch),
		f(c.Failed),
		f(c.Extras),
	}
}

func itoa(n int64) string { return fmt.Sprintf("%d", n) }
