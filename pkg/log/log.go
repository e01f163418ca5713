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

package log

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/status"
)

// 🎯 StageOperation describes a pipeline stage for logging
type StageOperation struct {
	Name   string // Stage name, e.g. "frame images"
	Source string // Folder or URL list the stage reads
	Target string // Folder the stage writes
}

// 🎯 Logger prints stage progress to a console and mirrors it to zerolog
type Logger struct {
	zlog      zerolog.Logger
	console   io.Writer
	formatter status.Formatter
	mu        sync.Mutex
	currentOp *StageOperation
	counts    map[status.Outcome]int
}

// 🏭 New creates a logger writing human lines to console and events to zlog
func New(console io.Writer, zlog zerolog.Logger) *Logger {
	return &Logger{
		zlog:      zlog,
		console:   console,
		formatter: status.NewDefaultFormatter(),
		counts:    map[status.Outcome]int{},
	}
}

// 📝 StartStage prints a stage header and resets the item counts
func (l *Logger) StartStage(ctx context.Context, op StageOperation) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.currentOp = &op
	l.counts = map[status.Outcome]int{}

	fmt.Fprintf(l.console, "[%s]\n", color.New(color.FgCyan).Sprint(op.Name))
	if op.Source != "" || op.Target != "" {
		fmt.Fprintf(l.console, "%s %s %s %s\n",
			color.New(color.FgMagenta).Sprint("◆"),
			color.New(color.Bold).Sprint(op.Source),
			color.New(color.Faint).Sprint("→"),
			color.New(color.FgYellow).Sprint(op.Target))
	}

	l.zlog.Info().
		Str("stage", op.Name).
		Str("source", op.Source).
		Str("target", op.Target).
		Msg("starting stage")
}

// 📝 LogItem prints one item outcome of the current stage. Its signature
// matches status.ItemFunc so it can be handed to the stages directly.
func (l *Logger) LogItem(name string, outcome status.Outcome) {
	l.mu.Lock()
	defer l.mu.Unlock()

	stage := ""
	if l.currentOp != nil {
		stage = l.currentOp.Name
	}
	l.counts[outcome]++

	fmt.Fprintln(l.console, status.FormatItemLine(name, stage, outcome))

	l.zlog.Debug().
		Str("item", name).
		Str("stage", stage).
		Stringer("outcome", outcome).
		Msg("item processed")
}

// 📝 LogReport prints a stage report on one line
func (l *Logger) LogReport(r status.Report) {
	l.mu.Lock()
	defer l.mu.Unlock()

	line := l.formatter.FormatReport(r)
	if r.Skipped {
		line = color.New(color.FgYellow).Sprint(line)
	}
	fmt.Fprintln(l.console, line)
	l.zlog.Info().Object("report", r).Msg("stage report")
}

// 📝 EndStage closes the current stage. When items were printed a tally
// line follows them.
func (l *Logger) EndStage(ctx context.Context) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.currentOp == nil {
		return
	}

	written := l.counts[status.OutcomeWritten]
	skipped := l.counts[status.OutcomeSkipped]
	failed := l.counts[status.OutcomeFailed]
	if written+skipped+failed > 0 {
		fmt.Fprintln(l.console, color.New(color.Faint).Sprintf("└ %d written, %d skipped, %d failed", written, skipped, failed))
	}

	l.zlog.Info().
		Str("stage", l.currentOp.Name).
		Int("written", written).
		Int("skipped", skipped).
		Int("failed", failed).
		Msg("stage complete")

	l.currentOp = nil
}

// 📝 LogNewline prints an empty console line
func (l *Logger) LogNewline() {
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.console)
}

// 📝 Header prints the program banner followed by msg
func (l *Logger) Header(msg string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	name := color.New(color.Bold, color.FgCyan).Sprint("feedframe")
	fmt.Fprintf(l.console, "\n%s %s\n\n", name, color.New(color.Faint).Sprint("• "+msg))
	l.zlog.Info().Msg(msg)
}

// message kinds share one printer
type kind struct {
	icon  string
	color color.Attribute
	level zerolog.Level
}

var (
	kindInfo    = kind{"ℹ️ ", color.FgCyan, zerolog.InfoLevel}
	kindSuccess = kind{"✅", color.FgGreen, zerolog.InfoLevel}
	kindWarning = kind{"⚠️ ", color.FgYellow, zerolog.WarnLevel}
	kindError   = kind{"❌", color.FgRed, zerolog.ErrorLevel}
)

func (l *Logger) say(k kind, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintf(l.console, "%s %s\n", k.icon, color.New(k.color).Sprint(msg))
	l.zlog.WithLevel(k.level).Msg(msg)
}

// 📝 Infof prints an informational line
func (l *Logger) Infof(format string, args ...any) { l.say(kindInfo, format, args...) }

// 📝 Successf prints a success line
func (l *Logger) Successf(format string, args ...any) { l.say(kindSuccess, format, args...) }

// 📝 Warnf prints a warning line
func (l *Logger) Warnf(format string, args ...any) { l.say(kindWarning, format, args...) }

// 📝 Errorf prints an error line
func (l *Logger) Errorf(format string, args ...any) { l.say(kindError, format, args...) }
