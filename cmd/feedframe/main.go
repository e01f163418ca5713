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

package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/feedframe/cmd/feedframe/commands"
	"github.com/walteh/feedframe/cmd/feedframe/opts"
	"github.com/walteh/feedframe/pkg/status"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootOpts := &opts.RootOpts{}
	build := readBuildInfo()

	rootCmd := &cobra.Command{
		Use:   "feedframe",
		Short: "Re-host product feed images inside the shop frame",
		Long: `feedframe downloads product feeds, fetches the offer pictures they reference,
composites every picture onto a canvas under the shop frame and writes copies
of the feeds that point at the framed images.`,
		Version:       build.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			logger := setupLogging()
			ctx := logger.WithContext(cmd.Context())
			logger.Debug().Object("build", build).Msg("starting feedframe")
			cmd.SetContext(ctx)
			return newRootOpts(ctx, rootOpts)
		},
	}

	// Add shared flags
	addRootFlags(rootCmd)

	// Add commands
	rootCmd.AddCommand(
		commands.NewFetchCmd(rootOpts),
		commands.NewImagesCmd(rootOpts),
		commands.NewFrameCmd(rootOpts),
		commands.NewRewriteCmd(rootOpts),
		commands.NewRunCmd(rootOpts),
	)

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		zerolog.Ctx(rootCmd.Context()).Error().Err(err).Msg("command failed")
		color.New(color.FgRed).Fprintln(os.Stderr, status.NewDefaultFormatter().FormatError(err))
		os.Exit(1)
	}
}
