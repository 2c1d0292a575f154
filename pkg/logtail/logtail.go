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

// Package logtail reads a log file that another process is still writing.
package logtail

import (
	"bytes"
	"io"
	"os"
	"strings"
)

// 📖 Reader returns the lines currently present in a growing log file.
// Read failures are never reported; a tick that cannot read simply sees no
// new data.
type Reader interface {
	Lines() []string
}

// FullReader re-opens and re-reads the whole file on every call. A failed
// read returns the lines of the last successful one.
type FullReader struct {
	Path string

	last []string
}

var _ Reader = (*FullReader)(nil)

// NewFullReader creates a reader that re-reads path from the start each time
func NewFullReader(path string) *FullReader {
	return &FullReader{Path: path}
}

func (r *FullReader) Lines() []string {
	data, err := os.ReadFile(r.Path)
	if err != nil {
		return append([]string{}, r.last...)
	}
	lines, tail := SplitLines(data)
	if tail != "" {
		lines = append(lines, tail)
	}
	r.last = lines
	return append([]string{}, lines...)
}

// IncrementalReader remembers how far it has read and only reads what was
// appended since. An unterminated trailing fragment is returned as the last
// line and read again on the next call.
type IncrementalReader struct {
	Path string

	offset  int64
	lines   []string
	pending []byte
}

var _ Reader = (*IncrementalReader)(nil)

// NewIncrementalReader creates a reader that tracks its offset into path
func NewIncrementalReader(path string) *IncrementalReader {
	return &IncrementalReader{Path: path}
}

func (r *IncrementalReader) Lines() []string {
	r.advance()

	out := make([]string, len(r.lines), len(r.lines)+1)
	copy(out, r.lines)
	if len(r.pending) > 0 {
		out = append(out, strings.TrimSuffix(string(r.pending), "\r"))
	}
	return out
}

func (r *IncrementalReader) advance() {
	f, err := os.Open(r.Path)
	if err != nil {
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return
	}
	if info.Size() < r.offset {
		// truncated or replaced
		r.offset = 0
		r.lines = nil
		r.pending = nil
	}
	if info.Size() == r.offset {
		return
	}

	if _, err := f.Seek(r.offset, io.SeekStart); err != nil {
		return
	}
	chunk, err := io.ReadAll(f)
	if err != nil && len(chunk) == 0 {
		return
	}
	r.offset += int64(len(chunk))

	data := append(r.pending, chunk...)
	// a CR at the very end may be the first half of a CRLF
	hold := 0
	if n := len(data); n > 0 && data[n-1] == '\r' {
		hold = 1
	}
	lines, tail := SplitLines(data[:len(data)-hold])
	r.lines = append(r.lines, lines...)
	r.pending = append([]byte(tail), data[len(data)-hold:]...)
}

// SplitLines splits data on \r\n, \n and bare \r. The returned tail is the
// text after the last terminator, which may still be growing.
func SplitLines(data []byte) (lines []string, tail string) {
	for len(data) > 0 {
		i := bytes.IndexAny(data, "\r\n")
		if i < 0 {
			break
		}
		lines = append(lines, string(data[:i]))
		if data[i] == '\r' && i+1 < len(data) && data[i+1] == '\n' {
			i++
		}
		data = data[i+1:]
	}
	return lines, string(data)
}
