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

package main

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/walteh/robowatch/cmd/robowatch/opts"
	"github.com/walteh/robowatch/pkg/log"
)

func TestFormatVersion(t *testing.T) {
	out := FormatVersion(&VersionInfo{
		Version:   "v1.2.3",
		GoVersion: "go1.24.0",
		Platform:  "windows/amd64",
		Revision:  "abc123",
		Modified:  true,
	})
	assert.Contains(t, out, "Version:   v1.2.3")
	assert.Contains(t, out, "Revision:  abc123 (modified)")
	assert.Contains(t, out, "Platform:  windows/amd64")
}

func TestGetVersionInfo(t *testing.T) {
	info := GetVersionInfo()
	assert.NotEmpty(t, info.Version)
	assert.NotEmpty(t, info.GoVersion)
	assert.Contains(t, info.Platform, "/")
}

func TestRootCommands(t *testing.T) {
	root := newRootCmd(&opts.RootOpts{})

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"run", "classify", "history", "version"})

	assert.NotNil(t, root.PersistentFlags().ShorthandLookup("c"), "--config has a shorthand")
	assert.NotNil(t, root.PersistentFlags().ShorthandLookup("d"), "--debug has a shorthand")
}

func TestRootRunsSubcommandWithLoggers(t *testing.T) {
	o := &opts.RootOpts{}
	root := newRootCmd(o)

	out := &bytes.Buffer{}
	root.SetOut(out)
	root.SetErr(out)
	root.SetArgs([]string{"--debug", "version"})

	require.NoError(t, root.ExecuteContext(context.Background()))
	assert.True(t, o.Debug)
	assert.Contains(t, out.String(), "robowatch version info")
}

func TestSetupLogging(t *testing.T) {
	stderr, stdout := &bytes.Buffer{}, &bytes.Buffer{}

	ctx := setupLogging(context.Background(), false, stderr, stdout)
	assert.Equal(t, zerolog.InfoLevel, zerolog.Ctx(ctx).GetLevel())

	log.FromContext(ctx).Info("hello")
	assert.Contains(t, stdout.String(), "hello")
	assert.Empty(t, stderr.String(), "console lines are not mirrored without --debug")

	ctx = setupLogging(context.Background(), true, stderr, stdout)
	assert.Equal(t, zerolog.DebugLevel, zerolog.Ctx(ctx).GetLevel())
	log.FromContext(ctx).Info("again")
	assert.Contains(t, stderr.String(), "again", "debug mirrors console lines into the log")
}
