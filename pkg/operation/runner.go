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
	"math"
	"time"

	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// 🏃 Runner executes operations one after another
type Runner struct {
	logger   *zerolog.Logger
	onReport func(status.Report)
}

// RunnerOption configures a Runner
type RunnerOption func(*Runner)

// WithReportHook is called with every report as soon as its stage finishes
func WithReportHook(fn func(status.Report)) RunnerOption {
	return func(r *Runner) {
		r.onReport = fn
	}
}

// 🏗️ NewRunner creates a new runner
func NewRunner(logger *zerolog.Logger, opts ...RunnerOption) *Runner {
	r := &Runner{logger: logger}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// 🏃 Run executes ops in order. A stage that finds nothing to process
// (filestore.ErrEmptyFileSet) is reported as skipped and the run goes on;
// any other error stops the run and is returned along with the reports
// collected so far.
func (r *Runner) Run(ctx context.Context, ops ...Operation) ([]status.Report, error) {
	ctx = r.logger.WithContext(ctx)
	reports := make([]status.Report, 0, len(ops))

	for _, op := range ops {
		if err := ctx.Err(); err != nil {
			return reports, errors.Errorf("run cancelled before %s: %w", op.Name(), err)
		}

		var report status.Report
		err := Timed(ctx, op.Name(), func(ctx context.Context) error {
			var err error
			report, err = op.Execute(ctx)
			return err
		})

		if err != nil && errors.Is(err, filestore.ErrEmptyFileSet) {
			r.logger.Warn().Err(err).Str("stage", op.Name()).Msg("nothing to process, stage skipped")
			report = status.NewReport(op.Name()).WithSkip(err.Error())
			err = nil
		}

		reports = append(reports, report)
		if r.onReport != nil {
			r.onReport(report)
		}

		if err != nil {
			return reports, errors.Errorf("running %s: %w", op.Name(), err)
		}
	}

	return reports, nil
}

// ⏱️ Timed logs the start and end of fn with its duration in seconds and minutes
func Timed(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	logger.Info().Str("function", name).Msg("started")
	err := fn(ctx)
	elapsed := time.Since(start)

	logger.Info().
		Str("function", name).
		Float64("seconds", round(elapsed.Seconds(), 3)).
		Float64("minutes", round(elapsed.Minutes(), 2)).
		Bool("ok", err == nil).
		Msg("finished")

	return err
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
