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
	"strings"
)

// Formatter defines how item outcomes and reports should be formatted
type Formatter interface {
	// FormatItem formats the outcome of one item
	FormatItem(name string, outcome Outcome) string

	// FormatProgress formats a progress message
	FormatProgress(current, total int) string

	// FormatReport formats a stage summary on a single line
	FormatReport(r Report) string

	// FormatError formats an error message
	FormatError(err error) string
}

// DefaultFormatter provides a default implementation of Formatter
type DefaultFormatter struct{}

// NewDefaultFormatter creates a new DefaultFormatter
func NewDefaultFormatter() *DefaultFormatter {
	return &DefaultFormatter{}
}

// FormatItem formats an item outcome with emojis
func (f *DefaultFormatter) FormatItem(name string, outcome Outcome) string {
	switch outcome {
	case OutcomeWritten:
		return fmt.Sprintf("✨ Wrote %s", name)
	case OutcomeSkipped:
		return fmt.Sprintf("👍 Skipped %s", name)
	case OutcomeFailed:
		return fmt.Sprintf("❌ Failed %s", name)
	default:
		return fmt.Sprintf("❔ %s", name)
	}
}

// FormatProgress formats a progress message with percentage
func (f *DefaultFormatter) FormatProgress(current, total int) string {
	var percentage float64
	if total == 0 {
		percentage = 0
		if current > 0 {
			percentage = 100
		}
	} else {
		percentage = float64(current) / float64(total) * 100
	}

	if current >= total {
		return fmt.Sprintf("✅ Progress: %d/%d (%.0f%%)", current, total, percentage)
	}
	return fmt.Sprintf("⏳ Progress: %d/%d (%.0f%%)", current, total, percentage)
}

// FormatReport formats counters as "stage: name=value, ..."
func (f *DefaultFormatter) FormatReport(r Report) string {
	if r.Skipped {
		return fmt.Sprintf("⏭️  %s: skipped (%s)", r.Stage, r.Note)
	}

	parts := make([]string, 0, len(r.Counters))
	for _, c := range r.Counters {
		parts = append(parts, fmt.Sprintf("%s=%d", c.Name, c.Value))
	}
	msg := fmt.Sprintf("📊 %s: %s", r.Stage, strings.Join(parts, ", "))

	if current, total, ok := r.Progress(); ok {
		msg += " " + f.FormatProgress(current, total)
	}
	return msg
}

// FormatError formats an error message with emoji
func (f *DefaultFormatter) FormatError(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("❌ Error: %v", err)
}
