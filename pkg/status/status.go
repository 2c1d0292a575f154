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

	"github.com/walteh/robowatch/pkg/operation"
	"github.com/walteh/robowatch/pkg/progress"
)

// 📡 Sink receives progress samples for one operation
type Sink interface {
	Observe(progress.Sample)
	// Done is called once after the last sample
	Done()
}

type multi []Sink

// Multi fans samples out to every sink
func Multi(sinks ...Sink) Sink {
	return multi(sinks)
}

func (m multi) Observe(s progress.Sample) {
	for _, sink := range m {
		sink.Observe(s)
	}
}

func (m multi) Done() {
	for _, sink := range m {
		sink.Done()
	}
}

// 🪝 Hooks wires a sink and a UserLogger into operation hooks. The sink's Done
// is called when the operation reaches a terminal state.
func Hooks(ctx context.Context, name string, sink Sink) operation.Hooks {
	user := NewUserLogger(ctx)
	return operation.Hooks{
		OnProgress: sink.Observe,
		OnState: func(s operation.State) {
			switch s {
			case operation.StateCompleted, operation.StateFailed, operation.StateScanFailed:
				sink.Done()
			}
			user.LogState(name, s)
		},
	}
}
