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
	"fmt"
	"io"
	"path/filepath"
	"sync"

	"github.com/pterm/pterm"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/robowatch/pkg/progress"
)

// barScale is the bar resolution: one step per tenth of a percent
const barScale = 1000

// 📊 BarSink draws a pterm progress bar. The bar only moves forward.
type BarSink struct {
	title string

	mu   sync.Mutex
	bar  *pterm.ProgressbarPrinter
	done bool
}

var _ Sink = (*BarSink)(nil)

// NewBarSink starts a bar titled title on w
func NewBarSink(w io.Writer, title string) (*BarSink, error) {
	bar, err := pterm.DefaultProgressbar.
		WithTotal(barScale).
		WithTitle(title).
		WithWriter(w).
		WithRemoveWhenDone(false).
		Start()
	if err != nil {
		return nil, errors.Errorf("starting progress bar: %w", err)
	}
	return &BarSink{title: title, bar: bar}, nil
}

func (b *BarSink) Observe(s progress.Sample) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}

	if s.Label != "" {
		b.bar.UpdateTitle(fmt.Sprintf("%s %s", b.title, filepath.Base(s.Label)))
	}
	target := int(s.Percent / 100 * barScale)
	if delta := target - b.bar.Current; delta > 0 {
		b.bar.Add(delta)
	}
}

// Current is the bar position in tenths of a percent
func (b *BarSink) Current() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bar.Current
}

func (b *BarSink) Done() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.done {
		return
	}
	b.done = true
	b.bar.UpdateTitle(b.title)
	_, _ = b.bar.Stop()
}
