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

	"github.com/walteh/feedframe/pkg/status"
)

// 🎯 Operation is one stage of the pipeline
type Operation interface {
	// Name identifies the stage in logs and reports
	Name() string
	// Execute runs the stage and returns its report, which may be partial on error
	Execute(ctx context.Context) (status.Report, error)
}

// Reporter is any stage result that can summarize itself
type Reporter interface {
	Report() status.Report
}

// 🔌 Stage adapts a stage method such as (*feed.Fetcher).Fetch into an Operation
func Stage[R Reporter](name string, fn func(context.Context) (R, error)) Operation {
	return &stage[R]{name: name, fn: fn}
}

type stage[R Reporter] struct {
	name string
	fn   func(context.Context) (R, error)
}

func (s *stage[R]) Name() string {
	return s.name
}

func (s *stage[R]) Execute(ctx context.Context) (status.Report, error) {
	result, err := s.fn(ctx)
	report := result.Report()
	report.Stage = s.name
	return report, err
}
