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
	"github.com/spf13/cobra"
	"github.com/walteh/feedframe/cmd/feedframe/opts"
	"github.com/walteh/feedframe/pkg/operation"
	"gitlab.com/tozd/go/errors"
)

func newStageCmd(o *opts.RootOpts, use, short, long string, build func(*opts.RootOpts) operation.Operation) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Long:  long,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			o.Console.Infof("project root %s", o.Config.Root)
			if _, err := runStages(ctx, o, "feedframe "+use, build(o)); err != nil {
				return errors.Errorf("running %s: %w", use, err)
			}
			return nil
		},
	}
}

func NewFetchCmd(o *opts.RootOpts) *cobra.Command {
	return newStageCmd(o, "fetch", "Download the configured feeds",
		`Fetch downloads every configured feed URL.
It will:
1. Retry transient network errors with backoff
2. Reject empty or malformed bodies
3. Save each feed, indented, under the feeds folder`,
		feedStage)
}

func NewImagesCmd(o *opts.RootOpts) *cobra.Command {
	return newStageCmd(o, "images", "Download offer pictures referenced by the stored feeds",
		`Images walks every offer of every stored feed.
It will:
1. Pick the pictures that pass the include/exclude filter
2. Skip pictures already on disk
3. Save new pictures as {offer_id}_{index}.{format}`,
		imagesStage)
}

func NewFrameCmd(o *opts.RootOpts) *cobra.Command {
	return newStageCmd(o, "frame", "Composite downloaded pictures under the shop frame",
		`Frame composites every downloaded picture that has not been framed yet.
It will:
1. Scale the picture onto a filled canvas inset by the margins
2. Overlay the frame template scaled to the picture size
3. Save the result as {offer_id}_{index}.png`,
		frameStage)
}

func NewRewriteCmd(o *opts.RootOpts) *cobra.Command {
	return newStageCmd(o, "rewrite", "Point the stored feeds at the framed pictures",
		`Rewrite writes a copy of each stored feed.
It will:
1. Remove every picture of every offer with an id
2. Add one picture per framed image of that offer under the base URL
3. Save the feed as new_{name} in the output folder`,
		rewriteStage)
}
