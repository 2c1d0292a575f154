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

package status

import (
	"context"
	"fmt"

	"github.com/pterm/pterm"
	"github.com/rs/zerolog"

	"github.com/walteh/robowatch/pkg/operation"
)

// 📢 UserLogger prints one line per operation state change
type UserLogger struct {
	log zerolog.Logger
}

// 🎯 NewUserLogger creates a user logger that also mirrors into the context logger
func NewUserLogger(ctx context.Context) *UserLogger {
	return &UserLogger{
		log: *zerolog.Ctx(ctx),
	}
}

// StateMessage is the human text for a state, empty for states not worth a line
func StateMessage(name string, s operation.State) string {
	if name == "" {
		name = "copy"
	}
	switch s {
	case operation.StateScanning:
		return fmt.Sprintf("Scanning %s", name)
	case operation.StateScanned:
		return fmt.Sprintf("Scan of %s finished", name)
	case operation.StateCopying:
		return fmt.Sprintf("Copying %s", name)
	case operation.StateCompleted:
		return fmt.Sprintf("Finished %s", name)
	case operation.StateScanFailed:
		return fmt.Sprintf("Scan of %s failed", name)
	case operation.StateFailed:
		return fmt.Sprintf("Could not read the result of %s", name)
	}
	return ""
}

// 📦 LogState prints the state with a matching prefix
func (u *UserLogger) LogState(name string, s operation.State) {
	msg := StateMessage(name, s)
	if msg == "" {
		return
	}

	var printer *pterm.PrefixPrinter
	switch s {
	case operation.StateScanning:
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "🔍"})
	case operation.StateScanned:
		printer = pterm.Debug.WithPrefix(pterm.Prefix{Text: "📏"})
	case operation.StateCopying:
		printer = pterm.Info.WithPrefix(pterm.Prefix{Text: "📦"})
	case operation.StateCompleted:
		printer = pterm.Success.WithPrefix(pterm.Prefix{Text: "✅"})
	default:
		printer = pterm.Error.WithPrefix(pterm.Prefix{Text: "❌"})
	}

	printer.Println(msg)
	switch s {
	case operation.StateScanFailed, operation.StateFailed:
		u.log.Error().Str("state", s.String()).Msg(msg)
	default:
		u.log.Info().Str("state", s.String()).Msg(msg)
	}
}
