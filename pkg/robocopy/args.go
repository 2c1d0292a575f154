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
	"fmt"
	"strings"
	"unicode"

	"github.com/bmatcuk/doublestar/v4"
	"gitlab.com/tozd/go/errors"
)

// reservedFlags are owned by the monitor: the scan and copy phases depend on
// them to produce a parseable log. Matching is done on the lowercased flag name
// (everything up to and including the first ':').
var reservedFlags = []string{
	"/{ndl,tee,bytes,nfl,l,nc,np}",
	"/{log,log+,unilog,unilog+}:",
}

// copyFlagLetters are the properties /COPY: accepts
const copyFlagLetters = "DATSOUX"

// 🔧 Options are the named robocopy switches a job can set
type Options struct {
	Mirror                     bool     // /MIR
	IncludeSubdirectories      bool     // /S
	IncludeEmptySubdirectories bool     // /E
	Purge                      bool     // /PURGE
	Move                       bool     // /MOVE
	Restartable                bool     // /Z
	Backup                     bool     // /B
	ExcludeOlder               bool     // /XO
	CopyFlags                  string   // /COPY:<flags>
	Threads                    int      // /MT:n
	Retries                    *int     // /R:n
	WaitSeconds                *int     // /W:n
	Level                      int      // /LEV:n
	ExcludeFiles               []string // /XF ...
	ExcludeDirs                []string // /XD ...
}

// 📦 Invocation describes one robocopy run before the phase specific flags are added
type Invocation struct {
	Source      string
	Destination string
	Files       []string
	Options     Options
	Flags       []string
}

// 🏗️ BuildArguments turns an invocation into the base argument list shared by
// the scan and copy phases.
func BuildArguments(inv Invocation) ([]string, error) {
	if inv.Source == "" {
		return nil, errors.New("source is required")
	}
	if inv.Destination == "" {
		return nil, errors.New("destination is required")
	}

	for _, f := range inv.Files {
		if !doublestar.ValidatePattern(f) {
			return nil, errors.Errorf("invalid file filter %q", f)
		}
		if err := CheckValue("file filter", f); err != nil {
			return nil, err
		}
	}

	if err := inv.Options.Validate(); err != nil {
		return nil, err
	}

	for _, flag := range inv.Flags {
		if IsReserved(flag) {
			return nil, errors.Errorf("flag %q is reserved and cannot be passed through", flag)
		}
	}

	args := []string{inv.Source, inv.Destination}
	args = append(args, inv.Files...)
	args = append(args, inv.Options.Tokens()...)
	args = append(args, inv.Flags...)
	return args, nil
}

// Tokens renders the named options in a stable order.
func (o Options) Tokens() []string {
	var tokens []string

	switches := []struct {
		set   bool
		token string
	}{
		{o.Mirror, "/MIR"},
		{o.IncludeSubdirectories, "/S"},
		{o.IncludeEmptySubdirectories, "/E"},
		{o.Purge, "/PURGE"},
		{o.Move, "/MOVE"},
		{o.Restartable, "/Z"},
		{o.Backup, "/B"},
		{o.ExcludeOlder, "/XO"},
	}
	for _, s := range switches {
		if s.set {
			tokens = append(tokens, s.token)
		}
	}

	if o.CopyFlags != "" {
		tokens = append(tokens, "/COPY:"+strings.ToUpper(o.CopyFlags))
	}
	if o.Threads > 0 {
		tokens = append(tokens, fmt.Sprintf("/MT:%d", o.Threads))
	}
	if o.Retries != nil {
		tokens = append(tokens, fmt.Sprintf("/R:%d", *o.Retries))
	}
	if o.WaitSeconds != nil {
		tokens = append(tokens, fmt.Sprintf("/W:%d", *o.WaitSeconds))
	}
	if o.Level > 0 {
		tokens = append(tokens, fmt.Sprintf("/LEV:%d", o.Level))
	}
	if len(o.ExcludeFiles) > 0 {
		tokens = append(tokens, "/XF")
		tokens = append(tokens, o.ExcludeFiles...)
	}
	if len(o.ExcludeDirs) > 0 {
		tokens = append(tokens, "/XD")
		tokens = append(tokens, o.ExcludeDirs...)
	}
	return tokens
}

// 🔍 ScanArguments appends the dry-run flags: list only, no per-file rows.
func ScanArguments(base []string, logPath string) []string {
	args := append([]string{}, base...)
	return append(args, "/ndl", "/TEE", "/bytes", "/Log:"+logPath, "/nfl", "/L")
}

// 📋 CopyArguments appends the live copy flags: per-file rows without the file class.
func CopyArguments(base []string, logPath string) []string {
	args := append([]string{}, base...)
	return append(args, "/ndl", "/TEE", "/bytes", "/Log:"+logPath, "/NC")
}

// 🛡️ Validate rejects option values robocopy would read as switches
func (o Options) Validate() error {
	for _, c := range o.CopyFlags {
		if !strings.ContainsRune(copyFlagLetters, unicode.ToUpper(c)) {
			return errors.Errorf("copy flags %q may only use the letters %s", o.CopyFlags, copyFlagLetters)
		}
	}
	for _, f := range o.ExcludeFiles {
		if err := CheckValue("excluded file", f); err != nil {
			return err
		}
	}
	for _, d := range o.ExcludeDirs {
		if err := CheckValue("excluded directory", d); err != nil {
			return err
		}
	}
	return nil
}

// CheckValue rejects a filter or exclusion that starts with '/'. robocopy
// parses such a value as a switch no matter where it appears.
func CheckValue(kind, value string) error {
	v := strings.TrimSpace(value)
	if v == "" {
		return errors.Errorf("%s must not be empty", kind)
	}
	if !strings.HasPrefix(v, "/") {
		return nil
	}
	if IsReserved(v) {
		return errors.Errorf("%s %q is a reserved switch", kind, value)
	}
	return errors.Errorf("%s %q would be read as a switch", kind, value)
}

// IsReserved reports whether flag collides with a switch the monitor owns.
func IsReserved(flag string) bool {
	name := strings.ToLower(strings.TrimSpace(flag))
	if i := strings.IndexByte(name, ':'); i >= 0 {
		name = name[:i+1]
	}
	for _, pattern := range reservedFlags {
		if ok, err := doublestar.Match(pattern, name); err == nil && ok {
			return true
		}
	}
	return false
}

// CommandLine renders tool and args the way a shell user would type them.
func CommandLine(tool string, args []string) string {
	parts := make([]string, 0, len(args)+1)
	for _, a := range append([]string{tool}, args...) {
		if a == "" || strings.ContainsAny(a, " \t") {
			a = `"` + a + `"`
		}
		parts = append(parts, a)
	}
	return strings.Join(parts, " ")
}
