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

package opts

import (
	"context"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/config"
	"github.com/walteh/robowatch/pkg/history"
)

// RootOpts contains shared options used by all commands
type RootOpts struct {
	// ConfigFile is the job file given with --config; empty means none
	ConfigFile string
	Debug      bool
}

// 📝 LoadConfig reads the job file, or returns a validated empty config with
// environment overrides applied when no file was given
func (o *RootOpts) LoadConfig(ctx context.Context) (*config.Config, error) {
	if o.ConfigFile != "" {
		cfg, err := config.Load(ctx, o.ConfigFile)
		if err != nil {
			return nil, errors.Errorf("loading config: %w", err)
		}
		return cfg, nil
	}

	cfg := &config.Config{}
	cfg.ApplyEnv(os.LookupEnv)
	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating defaults: %w", err)
	}
	return cfg, nil
}

// 🗄️ OpenHistory opens the report store at path, or at the default location
func OpenHistory(ctx context.Context, path string) (*history.BoltStore, error) {
	if path == "" {
		p, err := history.DefaultPath()
		if err != nil {
			return nil, errors.Errorf("resolving history path: %w", err)
		}
		path = p
	}
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("opening history")

	store, err := history.Open(path)
	if err != nil {
		return nil, errors.Errorf("opening history: %w", err)
	}
	return store, nil
}
