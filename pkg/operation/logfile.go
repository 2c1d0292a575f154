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
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🗒️ LogFile is a robocopy log path and whether this package created it
type LogFile struct {
	Path  string
	Owned bool
}

// newTempLog creates an empty owned log file in dir
func newTempLog(dir, prefix string) (LogFile, error) {
	f, err := os.CreateTemp(dir, "robowatch-"+prefix+"-*.log")
	if err != nil {
		return LogFile{}, errors.Errorf("creating %s log: %w", prefix, err)
	}
	if err := f.Close(); err != nil {
		return LogFile{}, errors.Errorf("closing %s log: %w", prefix, err)
	}
	return LogFile{Path: f.Name(), Owned: true}, nil
}

// callerLog wraps a caller-supplied path, making sure its directory exists
func callerLog(path string) (LogFile, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return LogFile{}, errors.Errorf("resolving log path %q: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o755); err != nil {
		return LogFile{}, errors.Errorf("creating log directory: %w", err)
	}
	return LogFile{Path: abs}, nil
}

// Dispose removes the file if it is owned. Files supplied by the caller are
// left alone.
func (l LogFile) Dispose(ctx context.Context) {
	if !l.Owned || l.Path == "" {
		return
	}
	if err := os.Remove(l.Path); err != nil && !os.IsNotExist(err) {
		zerolog.Ctx(ctx).Warn().Err(err).Str("log", l.Path).Msg("removing log file")
		return
	}
	zerolog.Ctx(ctx).Debug().Str("log", l.Path).Msg("removed log file")
}
