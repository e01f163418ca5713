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
	"github.com/rs/zerolog"
)

// 📊 Outcome is what happened to a single item (feed, image, offer)
type Outcome int

const (
	OutcomeUnknown Outcome = iota
	OutcomeWritten         // Item was produced and written
	OutcomeSkipped         // Item already existed or had nothing to do
	OutcomeFailed          // Item failed and was abandoned
)

// String returns a string representation of Outcome
func (o Outcome) String() string {
	switch o {
	case OutcomeWritten:
		return "written"
	case OutcomeSkipped:
		return "skipped"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// 👀 ItemFunc observes per-item outcomes as a stage runs
type ItemFunc func(name string, outcome Outcome)

// Notify calls f if it is set
func (f ItemFunc) Notify(name string, outcome Outcome) {
	if f != nil {
		f(name, outcome)
	}
}

// 🔢 Counter is one named value of a stage report
type Counter struct {
	Name  string
	Value int
}

// 📋 Report is the summary a stage produces when it finishes
type Report struct {
	Stage    string
	Counters []Counter

	// Skipped is set when the stage had nothing to process
	Skipped bool
	Note    string

	current, total int
	hasProgress    bool
}

// 🏭 NewReport creates an empty report for stage
func NewReport(stage string) Report {
	return Report{Stage: stage}
}

// Add appends a counter
func (r Report) Add(name string, value int) Report {
	r.Counters = append(append([]Counter(nil), r.Counters...), Counter{Name: name, Value: value})
	return r
}

// WithProgress attaches a current/total pair, e.g. saved feeds out of all feeds
func (r Report) WithProgress(current, total int) Report {
	r.current, r.total, r.hasProgress = current, total, true
	return r
}

// WithSkip marks the stage as skipped with a reason
func (r Report) WithSkip(note string) Report {
	r.Skipped = true
	r.Note = note
	return r
}

// Progress returns the current/total pair if one was attached
func (r Report) Progress() (current, total int, ok bool) {
	return r.current, r.total, r.hasProgress
}

// Get returns a counter value, zero if absent
func (r Report) Get(name string) int {
	for _, c := range r.Counters {
		if c.Name == name {
			return c.Value
		}
	}
	return 0
}

// 📝 MarshalZerologObject lets a report be logged with Object
func (r Report) MarshalZerologObject(e *zerolog.Event) {
	e.Str("stage", r.Stage)
	for _, c := range r.Counters {
		e.Int(c.Name, c.Value)
	}
	if r.Skipped {
		e.Bool("skipped", true).Str("note", r.Note)
	}
}
