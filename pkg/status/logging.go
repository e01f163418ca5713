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

	"github.com/fatih/color"
)

// 🎨 Display configuration
const (
	itemIndent   = 4  // spaces to indent item entries
	nameWidth    = 35 // Base width for item name
	stageWidth   = 15 // Width for stage name
	outcomeWidth = 10 // Width for outcome text
)

// 🎯 FormatItemLine formats one item outcome as an aligned, colored line
func FormatItemLine(name, stage string, outcome Outcome) string {
	var prefix string
	switch outcome {
	case OutcomeWritten:
		prefix = color.GreenString("✓")
	case OutcomeSkipped:
		prefix = color.HiBlackString("-")
	case OutcomeFailed:
		prefix = color.RedString("✗")
	default:
		prefix = color.YellowString("?")
	}

	return fmt.Sprintf("%s%s %s %s %s",
		strings.Repeat(" ", itemIndent),
		prefix,
		fmt.Sprintf("%-*s", nameWidth, name),
		fmt.Sprintf("%-*s", stageWidth, stage),
		fmt.Sprintf("%-*s", outcomeWidth, outcome.String()),
	)
}
