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

package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	"github.com/walteh/feedframe/cmd/feedframe/opts"
	"github.com/walteh/feedframe/pkg/operation"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func NewRunCmd(o *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the whole pipeline",
		Long: `Run executes every stage in order: fetch, images, frame, rewrite.
A stage whose input folder is empty is skipped; any other stage error stops
the run. A summary table is printed at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			o.Console.Header("running the pipeline")

			stages := []operation.Operation{
				feedStage(o),
				imagesStage(o),
				frameStage(o),
				rewriteStage(o),
			}
			reports, err := runStages(ctx, o, "feedframe run", stages...)

			o.Console.LogNewline()
			if len(reports) > 0 {
				if terr := pterm.DefaultTable.WithHasHeader().WithData(SummaryTable(reports, err)).Render(); terr != nil {
					return errors.Errorf("rendering summary: %w", terr)
				}
			}

			if err != nil {
				o.Console.Errorf("pipeline stopped after %d of %d stages", len(reports), len(stages))
				return errors.Errorf("running pipeline: %w", err)
			}

			skipped := 0
			for _, r := range reports {
				if r.Skipped {
					skipped++
				}
			}
			if skipped > 0 {
				o.Console.Warnf("%d of %d stages skipped", skipped, len(stages))
			}
			o.Console.Successf("pipeline finished")
			return nil
		},
	}

	return cmd
}

// SummaryTable lays out one row per stage report. When runErr is set the
// last report belongs to the stage that stopped the run.
func SummaryTable(reports []status.Report, runErr error) pterm.TableData {
	data := pterm.TableData{{"Stage", "Status", "Counters"}}
	for i, r := range reports {
		state := "done"
		counters := make([]string, 0, len(r.Counters))
		for _, c := range r.Counters {
			counters = append(counters, fmt.Sprintf("%s=%d", c.Name, c.Value))
		}
		if r.Skipped {
			state = "skipped"
			counters = []string{r.Note}
		} else if r.Get("failed") > 0 {
			state = "partial"
		}
		if runErr != nil && i == len(reports)-1 {
			state = "failed"
		}
		data = append(data, []string{r.Stage, state, strings.Join(counters, " ")})
	}
	return data
}
