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
	"fmt"
	"sync"
	"time"

	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/logformat"
	"github.com/walteh/robowatch/pkg/progress"
	"github.com/walteh/robowatch/pkg/robocopy"
)

// DefaultPollInterval is how often the copy log is read when Options does not say
const DefaultPollInterval = 250 * time.Millisecond

// DefaultTool is the executable started when Options does not name one
const DefaultTool = "robocopy"

// 📦 Request describes one copy
type Request struct {
	// Name identifies the job in batch runs and history
	Name        string
	Source      string
	Destination string
	// Files are robocopy file filters, e.g. "*.txt"
	Files   []string
	Options robocopy.Options
	// Flags are passed through to robocopy as given
	Flags []string
	// LogFile keeps the copy log at this path; empty means a temp file
	LogFile string
}

// 🪝 Hooks receive events while an operation runs. Any of them may be nil.
type Hooks struct {
	OnProgress func(progress.Sample)
	OnState    func(State)
	// OnCancel is called with the running process when the context ends
	OnCancel func(robocopy.Process)
}

// 🔧 Options controls how a request is executed
type Options struct {
	Tool         string
	Runner       robocopy.Runner
	Format       logformat.Format
	PollInterval time.Duration
	// Incremental reads only the bytes appended to the copy log since the last tick
	Incremental bool
	// TempDir holds owned log files; empty means os.TempDir
	TempDir string
	Hooks   Hooks
}

// 🚦 State is where an operation is in its lifecycle
type State int

const (
	StateIdle State = iota
	StateScanning
	StateScanFailed
	StateScanned
	StateCopying
	StateCompleted
	// StateFailed means the copy ran but its log could not be read back
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateScanning:
		return "scanning"
	case StateScanFailed:
		return "scan_failed"
	case StateScanned:
		return "scanned"
	case StateCopying:
		return "copying"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// ❌ ScanError means the dry run exited with a failure code and no copy was attempted
type ScanError struct {
	ExitCode int
	Log      string
	Result   robocopy.Result
}

func (e *ScanError) Error() string {
	return fmt.Sprintf("scan failed: %s", e.Result)
}

// ❌ SummaryError means the copy exited but its log had no readable summary.
// Log holds the copy log content, since an owned log is removed.
type SummaryError struct {
	ExitCode int
	Result   robocopy.Result
	Log      string
	Err      error
}

func (e *SummaryError) Error() string {
	return fmt.Sprintf("reading copy summary after %s: %v", e.Result, e.Err)
}

func (e *SummaryError) Unwrap() error { return e.Err }

// ❌ PathKindError means a source or destination is missing or not a directory
type PathKindError struct {
	Role string // "source" or "destination"
	Path string
}

func (e *PathKindError) Error() string {
	return fmt.Sprintf("%s %q is not a directory", e.Role, e.Path)
}

// 🎯 CopyOperation is a single scan-then-copy run. It executes at most once.
type CopyOperation struct {
	req  Request
	opts Options

	mu    sync.Mutex
	state State
}

// 🏭 New checks opts and fills in defaults
func New(req Request, opts Options) (*CopyOperation, error) {
	if req.Source == "" {
		return nil, errors.New("source is required")
	}
	if req.Destination == "" {
		return nil, errors.New("destination is required")
	}
	if opts.Tool == "" {
		opts.Tool = DefaultTool
	}
	if opts.Runner == nil {
		opts.Runner = &robocopy.ExecRunner{}
	}
	if opts.Format == nil {
		f, err := logformat.Lookup("")
		if err != nil {
			return nil, errors.Errorf("resolving log format: %w", err)
		}
		opts.Format = f
	}
	if opts.PollInterval <= 0 {
		opts.PollInterval = DefaultPollInterval
	}
	return &CopyOperation{req: req, opts: opts}, nil
}

// Request returns the request this operation was created with
func (o *CopyOperation) Request() Request { return o.req }

// State reports the current lifecycle state
func (o *CopyOperation) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}
