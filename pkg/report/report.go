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

// Package report holds the outcome of one robocopy run and renders it.
package report

import (
	"time"

	"github.com/walteh/robowatch/pkg/logformat"
	"github.com/walteh/robowatch/pkg/robocopy"
)

// 📋 CopyReport is the result of a finished copy. It is assembled once by
// Build and not changed afterwards.
type CopyReport struct {
	Name        string `json:"name,omitempty"`
	Source      string `json:"source"`
	Destination string `json:"destination"`
	CommandLine string `json:"command_line"`

	Dirs  logformat.Counts `json:"dirs"`
	Files logformat.Counts `json:"files"`
	Bytes logformat.Counts `json:"bytes"`
	Times logformat.Times  `json:"times"`

	BytesPerSec int64  `json:"bytes_per_sec"`
	Speed       string `json:"speed"`
	ScanTotal   int64  `json:"scan_total"`

	ExitCode int    `json:"exit_code"`
	Success  bool   `json:"success"`
	Message  string `json:"message"`

	// LogFile is the retained copy log, empty when it was removed
	LogFile string `json:"log_file,omitempty"`

	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
}

// 🧾 Params is everything Build needs
type Params struct {
	Name        string
	Source      string
	Destination string
	CommandLine string
	ScanTotal   int64
	Summary     logformat.Summary
	Result      robocopy.Result
	LogFile     string
	StartedAt   time.Time
	FinishedAt  time.Time
}

// 🏗️ Build assembles a report from the parsed summary and exit classification
func Build(p Params) *CopyReport {
	return &CopyReport{
		Name:        p.Name,
		Source:      p.Source,
		Destination: p.Destination,
		CommandLine: p.CommandLine,
		Dirs:        p.Summary.Dirs,
		Files:       p.Summary.Files,
		Bytes:       p.Summary.Bytes,
		Times:       p.Summary.Times,
		BytesPerSec: p.Summary.BytesPerSec,
		Speed:       FormatRate(float64(p.Summary.BytesPerSec)),
		ScanTotal:   p.ScanTotal,
		ExitCode:    p.Result.Code,
		Success:     p.Result.Success,
		Message:     p.Result.Message,
		LogFile:     p.LogFile,
		StartedAt:   p.StartedAt,
		FinishedAt:  p.FinishedAt,
	}
}

// Elapsed is wall-clock time between start and finish
func (r *CopyReport) Elapsed() time.Duration {
	if r.FinishedAt.Before(r.StartedAt) {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Entry is a stored report together with its history id
type Entry struct {
	ID     uint64      `json:"id"`
	Report *CopyReport `json:"report"`
}
