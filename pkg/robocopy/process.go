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

package robocopy

import (
	"context"
	"io"
	"os/exec"
	"sync"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🔌 Runner starts robocopy processes
type Runner interface {
	Start(ctx context.Context, tool string, args []string) (Process, error)
}

// 🏃 Process is a started robocopy process
type Process interface {
	// Done is closed once the process has exited
	Done() <-chan struct{}
	// ExitCode is the exit status; only meaningful after Done is closed
	ExitCode() int
	// Err reports a failure to wait for the process that was not a plain exit status
	Err() error
	// Kill terminates the process
	Kill() error
	// Pid of the running process
	Pid() int
}

// ExecRunner runs the tool with os/exec. The process is not bound to the
// context passed to Start; stopping it is left to whoever holds the Process.
type ExecRunner struct {
	Stdout io.Writer
	Stderr io.Writer
}

var _ Runner = (*ExecRunner)(nil)

// 🚀 Start launches tool with args and begins waiting for it in the background
func (r *ExecRunner) Start(ctx context.Context, tool string, args []string) (Process, error) {
	cmd := exec.Command(tool, args...)
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	if err := cmd.Start(); err != nil {
		return nil, errors.Errorf("starting %s: %w", tool, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("tool", tool).
		Strs("args", args).
		Int("pid", cmd.Process.Pid).
		Msg("process started")

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go p.wait()
	return p, nil
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}

	mu       sync.Mutex
	exitCode int
	err      error
}

func (p *execProcess) wait() {
	err := p.cmd.Wait()

	p.mu.Lock()
	var exitErr *exec.ExitError
	switch {
	case err == nil:
		p.exitCode = 0
	case errors.As(err, &exitErr):
		p.exitCode = exitErr.ExitCode()
	default:
		p.exitCode = -1
		p.err = errors.Errorf("waiting for process: %w", err)
	}
	p.mu.Unlock()

	close(p.done)
}

func (p *execProcess) Done() <-chan struct{} { return p.done }

func (p *execProcess) ExitCode() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exitCode
}

func (p *execProcess) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

func (p *execProcess) Kill() error {
	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil {
		return errors.Errorf("killing process %d: %w", p.cmd.Process.Pid, err)
	}
	return nil
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }
