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

package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/logformat"
	"github.com/walteh/robowatch/pkg/operation"
	"github.com/walteh/robowatch/pkg/robocopy"
)

// Environment variables that override file values
const (
	EnvTool    = "ROBOWATCH_TOOL"
	EnvHistory = "ROBOWATCH_HISTORY"
)

const (
	MinPollInterval = 10 * time.Millisecond
	MaxPollInterval = 10 * time.Second
)

// 🔌 Parser is the interface for config parsers
type Parser interface {
	// 📝 Parse parses the config from bytes
	Parse(ctx context.Context, data []byte) (*Config, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📚 Config is a whole job file
type Config struct {
	Tool         string `json:"tool,omitempty" yaml:"tool,omitempty" hcl:"tool,optional"`
	LogFormat    string `json:"log_format,omitempty" yaml:"log_format,omitempty" hcl:"log_format,optional"`
	PollInterval string `json:"poll_interval,omitempty" yaml:"poll_interval,omitempty" hcl:"poll_interval,optional"`
	History      string `json:"history,omitempty" yaml:"history,omitempty" hcl:"history,optional"`
	Parallel     int    `json:"parallel,omitempty" yaml:"parallel,omitempty" hcl:"parallel,optional"`
	Incremental  bool   `json:"incremental,omitempty" yaml:"incremental,omitempty" hcl:"incremental,optional"`
	Jobs         []Job  `json:"jobs,omitempty" yaml:"jobs,omitempty" hcl:"job,block"`

	poll time.Duration
}

// 📦 Job is one source/destination pair and its robocopy options
type Job struct {
	Name        string   `json:"name,omitempty" yaml:"name,omitempty" hcl:"name,label"`
	Source      string   `json:"source" yaml:"source" hcl:"source"`
	Destination string   `json:"destination" yaml:"destination" hcl:"destination"`
	Files       []string `json:"files,omitempty" yaml:"files,omitempty" hcl:"files,optional"`
	LogFile     string   `json:"log_file,omitempty" yaml:"log_file,omitempty" hcl:"log_file,optional"`
	Flags       []string `json:"flags,omitempty" yaml:"flags,omitempty" hcl:"flags,optional"`

	Mirror              bool     `json:"mirror,omitempty" yaml:"mirror,omitempty" hcl:"mirror,optional"`
	Subdirectories      bool     `json:"subdirectories,omitempty" yaml:"subdirectories,omitempty" hcl:"subdirectories,optional"`
	EmptySubdirectories bool     `json:"empty_subdirectories,omitempty" yaml:"empty_subdirectories,omitempty" hcl:"empty_subdirectories,optional"`
	Purge               bool     `json:"purge,omitempty" yaml:"purge,omitempty" hcl:"purge,optional"`
	Move                bool     `json:"move,omitempty" yaml:"move,omitempty" hcl:"move,optional"`
	Restartable         bool     `json:"restartable,omitempty" yaml:"restartable,omitempty" hcl:"restartable,optional"`
	Backup              bool     `json:"backup,omitempty" yaml:"backup,omitempty" hcl:"backup,optional"`
	ExcludeOlder        bool     `json:"exclude_older,omitempty" yaml:"exclude_older,omitempty" hcl:"exclude_older,optional"`
	CopyFlags           string   `json:"copy_flags,omitempty" yaml:"copy_flags,omitempty" hcl:"copy_flags,optional"`
	Threads             int      `json:"threads,omitempty" yaml:"threads,omitempty" hcl:"threads,optional"`
	Retries             *int     `json:"retries,omitempty" yaml:"retries,omitempty" hcl:"retries,optional"`
	WaitSeconds         *int     `json:"wait_seconds,omitempty" yaml:"wait_seconds,omitempty" hcl:"wait_seconds,optional"`
	Level               int      `json:"level,omitempty" yaml:"level,omitempty" hcl:"level,optional"`
	ExcludeFiles        []string `json:"exclude_files,omitempty" yaml:"exclude_files,omitempty" hcl:"exclude_files,optional"`
	ExcludeDirectories  []string `json:"exclude_directories,omitempty" yaml:"exclude_directories,omitempty" hcl:"exclude_directories,optional"`
}

// 🎯 Load reads, parses, applies the environment to and validates the file at path
func Load(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}

	cfg.ApplyEnv(os.LookupEnv)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().Int("jobs", len(cfg.Jobs)).Msg("configuration loaded")
	return cfg, nil
}

// ApplyEnv overrides file values with ROBOWATCH_* variables
func (cfg *Config) ApplyEnv(lookup func(string) (string, bool)) {
	if v, ok := lookup(EnvTool); ok && v != "" {
		cfg.Tool = v
	}
	if v, ok := lookup(EnvHistory); ok && v != "" {
		cfg.History = v
	}
}

// 🔍 Validate fills defaults, normalizes paths and checks every job
func (cfg *Config) Validate() error {
	if cfg.Tool == "" {
		cfg.Tool = operation.DefaultTool
	}

	if cfg.LogFormat == "" {
		cfg.LogFormat = logformat.DefaultVersion
	}
	if _, err := logformat.Lookup(cfg.LogFormat); err != nil {
		return errors.Errorf("log_format: %w", err)
	}

	cfg.poll = operation.DefaultPollInterval
	if cfg.PollInterval != "" {
		d, err := time.ParseDuration(cfg.PollInterval)
		if err != nil {
			return errors.Errorf("poll_interval: %w", err)
		}
		if d < MinPollInterval || d > MaxPollInterval {
			return errors.Errorf("poll_interval %s is outside %s to %s", d, MinPollInterval, MaxPollInterval)
		}
		cfg.poll = d
	}

	if cfg.Parallel < 0 {
		return errors.Errorf("parallel must not be negative, got %d", cfg.Parallel)
	}
	if cfg.Parallel == 0 {
		cfg.Parallel = 1
	}

	if cfg.History != "" {
		cfg.History = filepath.Clean(cfg.History)
	}

	seen := map[string]bool{}
	for i := range cfg.Jobs {
		job := &cfg.Jobs[i]
		if err := job.Validate(); err != nil {
			return errors.Errorf("job %d: %w", i+1, err)
		}
		if job.Name == "" {
			job.Name = fmt.Sprintf("job-%d", i+1)
		}
		if seen[job.Name] {
			return errors.Errorf("duplicate job name %q", job.Name)
		}
		seen[job.Name] = true
	}

	return nil
}

// Poll is the parsed poll interval; valid after Validate
func (cfg *Config) Poll() time.Duration {
	if cfg.poll == 0 {
		return operation.DefaultPollInterval
	}
	return cfg.poll
}

// SetPoll overrides the poll interval, e.g. from a command-line flag
func (cfg *Config) SetPoll(d time.Duration) error {
	if d < MinPollInterval || d > MaxPollInterval {
		return errors.Errorf("poll interval %s is outside %s to %s", d, MinPollInterval, MaxPollInterval)
	}
	cfg.poll = d
	cfg.PollInterval = d.String()
	return nil
}

// 🔍 Validate checks a single job
func (j *Job) Validate() error {
	if strings.TrimSpace(j.Source) == "" {
		return errors.New("source is required")
	}
	if strings.TrimSpace(j.Destination) == "" {
		return errors.New("destination is required")
	}
	j.Source = filepath.Clean(j.Source)
	j.Destination = filepath.Clean(j.Destination)
	if j.LogFile != "" {
		j.LogFile = filepath.Clean(j.LogFile)
	}

	for _, pattern := range append(append(append([]string{}, j.Files...), j.ExcludeFiles...), j.ExcludeDirectories...) {
		if !doublestar.ValidatePattern(pattern) {
			return errors.Errorf("invalid pattern %q", pattern)
		}
	}
	for _, f := range j.Files {
		if err := robocopy.CheckValue("file filter", f); err != nil {
			return err
		}
	}
	if err := j.Options().Validate(); err != nil {
		return err
	}
	for _, flag := range j.Flags {
		if robocopy.IsReserved(flag) {
			return errors.Errorf("flag %q is managed by robowatch and cannot be set", flag)
		}
	}
	if j.Threads < 0 || j.Threads > 128 {
		return errors.Errorf("threads must be between 0 and 128, got %d", j.Threads)
	}
	if j.Level < 0 {
		return errors.Errorf("level must not be negative, got %d", j.Level)
	}
	return nil
}

// Options converts the named options
func (j Job) Options() robocopy.Options {
	return robocopy.Options{
		Mirror:                     j.Mirror,
		IncludeSubdirectories:      j.Subdirectories,
		IncludeEmptySubdirectories: j.EmptySubdirectories,
		Purge:                      j.Purge,
		Move:                       j.Move,
		Restartable:                j.Restartable,
		Backup:                     j.Backup,
		ExcludeOlder:               j.ExcludeOlder,
		CopyFlags:                  j.CopyFlags,
		Threads:                    j.Threads,
		Retries:                    j.Retries,
		WaitSeconds:                j.WaitSeconds,
		Level:                      j.Level,
		ExcludeFiles:               j.ExcludeFiles,
		ExcludeDirs:                j.ExcludeDirectories,
	}
}

// Request converts the job into an operation request
func (j Job) Request() operation.Request {
	return operation.Request{
		Name:        j.Name,
		Source:      j.Source,
		Destination: j.Destination,
		Files:       j.Files,
		Options:     j.Options(),
		Flags:       j.Flags,
		LogFile:     j.LogFile,
	}
}

// 📝 String returns a string representation of the job
func (j Job) String() string {
	return fmt.Sprintf("%s: %s -> %s", j.Name, j.Source, j.Destination)
}
