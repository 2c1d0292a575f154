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

package logformat

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

func init() {
	Register(V1{})
}

// Offsets from the last non-blank line. Scan logs end with Bytes, Times,
// Ended; copy logs add two blank lines and two Speed rows before Ended.
const (
	scanBytesOffset = 3

	copyDirsOffset  = 9
	copyFilesOffset = 8
	copyBytesOffset = 7
	copyTimesOffset = 6
	copySpeedOffset = 3
)

var (
	fileRowRe   = regexp.MustCompile(`^\s+(\d+)\s+(\S.*)$`)
	percentRe   = regexp.MustCompile(`(\d{1,3}(?:\.\d+)?)%\s*$`)
	scanBytesRe = regexp.MustCompile(`Bytes\s*:\s*(\d+)\s+(\d+)`)
	countsRe    = regexp.MustCompile(`^\s*(\w+)\s*:\s*(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s+(\d+)\s*$`)
	timesRe     = regexp.MustCompile(`^\s*Times\s*:\s*(\d+:\d{2}:\d{2})\s+(\d+:\d{2}:\d{2})\s+(\d+:\d{2}:\d{2})\s+(\d+:\d{2}:\d{2})\s*$`)
	speedRe     = regexp.MustCompile(`^\s*Speed\s*:\s*(\d+)\s+Bytes/sec\.?\s*$`)
)

// 📐 V1 is the layout written by robocopy XP010 and later when run with
// /BYTES /NDL and either /NFL /L (scan) or /NC (copy).
type V1 struct{}

var _ Format = V1{}

func (V1) Name() string { return "v1" }

// 🔍 ScanTotal reads the second number of the Bytes row
func (V1) ScanTotal(lines []string) (int64, error) {
	lines = trimTrailingBlank(lines)
	if len(lines) < scanBytesOffset {
		return 0, &ParseError{Row: "Bytes", Reason: "scan log too short"}
	}
	return ParseBytesRow(lines[len(lines)-scanBytesOffset])
}

// ParseBytesRow extracts the byte total from a scan summary Bytes row such as
// "  Bytes :   12   1048576".
func ParseBytesRow(line string) (int64, error) {
	m := scanBytesRe.FindStringSubmatch(line)
	if m == nil {
		return 0, &ParseError{Row: "Bytes", Line: line, Reason: "no byte total"}
	}
	n, err := strconv.ParseInt(m[2], 10, 64)
	if err != nil {
		return 0, &ParseError{Row: "Bytes", Line: line, Reason: err.Error()}
	}
	return n, nil
}

// 📄 FileRows collects every "<bytes> <name>" record
func (V1) FileRows(lines []string) []FileRow {
	var rows []FileRow
	for _, line := range lines {
		m := fileRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			continue
		}
		rows = append(rows, FileRow{Bytes: n, Name: strings.TrimSpace(m[2])})
	}
	return rows
}

// 📈 TrailingPercent matches " 42.5%" style in-place progress markers
func (V1) TrailingPercent(line string) (float64, bool) {
	m := percentRe.FindStringSubmatch(line)
	if m == nil {
		return 0, false
	}
	pct, err := strconv.ParseFloat(m[1], 64)
	if err != nil || pct > 100 {
		return 0, false
	}
	return pct, true
}

// 📋 Summary reads the fixed block at the end of a finished copy log
func (V1) Summary(lines []string) (Summary, error) {
	lines = trimTrailingBlank(lines)
	n := len(lines)

	row := func(name string, offset int) (string, error) {
		if n < offset {
			return "", &ParseError{Row: name, Reason: "log too short for summary block"}
		}
		return lines[n-offset], nil
	}

	var s Summary

	counts := []struct {
		name   string
		offset int
		dst    *Counts
	}{
		{"Dirs", copyDirsOffset, &s.Dirs},
		{"Files", copyFilesOffset, &s.Files},
		{"Bytes", copyBytesOffset, &s.Bytes},
	}
	for _, c := range counts {
		line, err := row(c.name, c.offset)
		if err != nil {
			return Summary{}, err
		}
		if *c.dst, err = parseCounts(c.name, line); err != nil {
			return Summary{}, err
		}
	}

	timesLine, err := row("Times", copyTimesOffset)
	if err != nil {
		return Summary{}, err
	}
	if s.Times, err = parseTimes(timesLine); err != nil {
		return Summary{}, err
	}

	speedLine, err := row("Speed", copySpeedOffset)
	if err != nil {
		return Summary{}, err
	}
	m := speedRe.FindStringSubmatch(speedLine)
	if m == nil {
		return Summary{}, &ParseError{Row: "Speed", Line: speedLine, Reason: "expected '<n> Bytes/sec.'"}
	}
	if s.BytesPerSec, err = strconv.ParseInt(m[1], 10, 64); err != nil {
		return Summary{}, &ParseError{Row: "Speed", Line: speedLine, Reason: err.Error()}
	}

	return s, nil
}

func parseCounts(name, line string) (Counts, error) {
	m := countsRe.FindStringSubmatch(line)
	if m == nil || m[1] != name {
		return Counts{}, &ParseError{Row: name, Line: line, Reason: "expected six counts"}
	}
	var v [6]int64
	for i := range v {
		n, err := strconv.ParseInt(m[i+2], 10, 64)
		if err != nil {
			return Counts{}, &ParseError{Row: name, Line: line, Reason: err.Error()}
		}
		v[i] = n
	}
	return Counts{
		Total:    v[0],
		Copied:   v[1],
		Skipped:  v[2],
		Mismatch: v[3],
		Failed:   v[4],
		Extras:   v[5],
	}, nil
}

func parseTimes(line string) (Times, error) {
	m := timesRe.FindStringSubmatch(line)
	if m == nil {
		return Times{}, &ParseError{Row: "Times", Line: line, Reason: "expected four h:mm:ss values"}
	}
	var d [4]time.Duration
	for i := range d {
		v, ok := parseClock(m[i+1])
		if !ok {
			return Times{}, &ParseError{Row: "Times", Line: line, Reason: "bad duration " + m[i+1]}
		}
		d[i] = v
	}
	return Times{Total: d[0], Copied: d[1], Failed: d[2], Extras: d[3]}, nil
}

// parseClock reads robocopy's h:mm:ss.
func parseClock(s string) (time.Duration, bool) {
	parts := strings.Split(s, ":")
	if len(parts) != 3 {
		return 0, false
	}
	var v [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return 0, false
		}
		v[i] = n
	}
	if v[1] > 59 || v[2] > 59 {
		return 0, false
	}
	return time.Duration(v[0])*time.Hour + time.Duration(v[1])*time.Minute + time.Duration(v[2])*time.Second, true
}
