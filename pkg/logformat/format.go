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
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"
)

// DefaultVersion is the format used when configuration does not name one.
const DefaultVersion = "v1"

// 🔌 Format knows the layout of one version of the robocopy log
type Format interface {
	// Name is the version string used in configuration
	Name() string
	// ScanTotal extracts the number of bytes a dry run would copy
	ScanTotal(lines []string) (int64, error)
	// FileRows returns the per-file transfer records in log order
	FileRows(lines []string) []FileRow
	// TrailingPercent reports the in-flight percentage carried by line, if any
	TrailingPercent(line string) (float64, bool)
	// Summary parses the block robocopy writes when it finishes
	Summary(lines []string) (Summary, error)
}

// 📄 FileRow is one "<bytes> <name>" record
type FileRow struct {
	Bytes int64
	Name  string
}

// 📊 Counts is one numeric row of the summary block
type Counts struct {
	Total    int64 `json:"total"`
	Copied   int64 `json:"copied"`
	Skipped  int64 `json:"skipped"`
	Mismatch int64 `json:"mismatch"`
	Failed   int64 `json:"failed"`
	Extras   int64 `json:"extras"`
}

// ⏱️ Times is the elapsed-time row of the summary block
type Times struct {
	Total  time.Duration `json:"total"`
	Copied time.Duration `json:"copied"`
	Failed time.Duration `json:"failed"`
	Extras time.Duration `json:"extras"`
}

// 📋 Summary is the parsed end-of-run block
type Summary struct {
	Dirs        Counts `json:"dirs"`
	Files       Counts `json:"files"`
	Bytes       Counts `json:"bytes"`
	Times       Times  `json:"times"`
	BytesPerSec int64  `json:"bytes_per_sec"`
}

// ❌ ParseError means an expected row was missing or did not have the expected shape
type ParseError struct {
	Row    string // summary row name, e.g. "Files"
	Line   string // the offending line, empty if the log was too short
	Reason string
}

func (e *ParseError) Error() string {
	if e.Line == "" {
		return fmt.Sprintf("parsing %s row: %s", e.Row, e.Reason)
	}
	return fmt.Sprintf("parsing %s row: %s: %q", e.Row, e.Reason, e.Line)
}

var (
	registryMu sync.RWMutex
	registry   = map[string]Format{}
)

// 📝 Register makes a format available to Lookup
func Register(f Format) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[strings.ToLower(f.Name())] = f
}

// 🎯 Lookup returns the format registered under name; empty means DefaultVersion
func Lookup(name string) (Format, error) {
	if name == "" {
		name = DefaultVersion
	}
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := registry[strings.ToLower(name)]
	if !ok {
		return nil, errors.Errorf("unknown log format %q (known: %s)", name, strings.Join(knownLocked(), ", "))
	}
	return f, nil
}

// Known lists the registered format names
func Known() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	return knownLocked()
}

func knownLocked() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// trimTrailingBlank drops empty and whitespace-only lines from the end.
func trimTrailingBlank(lines []string) []string {
	n := len(lines)
	for n > 0 && strings.TrimSpace(lines[n-1]) == "" {
		n--
	}
	return lines[:n]
}
