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

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/walteh/feedframe/cmd/feedframe/opts"
	"github.com/walteh/feedframe/pkg/config"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/log"
	"gitlab.com/tozd/go/errors"
)

var (
	// Flags
	configFile   string
	rootDir      string
	debugLogging bool
)

// newRootOpts loads the configuration and fills in the shared dependencies
func newRootOpts(ctx context.Context, o *opts.RootOpts) error {
	cfg, err := config.Load(ctx, config.LoadOptions{
		Path: configFile,
		Root: rootDir,
	})
	if err != nil {
		return errors.Errorf("loading config: %w", err)
	}

	o.Config = cfg
	o.Store = filestore.New(cfg.Root)
	o.Console = log.New(os.Stdout, *zerolog.Ctx(ctx))
	o.Verbose = debugLogging
	return nil
}

// addRootFlags adds shared flags to the root command
func addRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "config file path (.yaml, .yml, .json, .hcl or .feedframe)")
	cmd.PersistentFlags().StringVar(&rootDir, "root", "", "project root holding the feed and image folders (default: working directory)")
	cmd.PersistentFlags().BoolVarP(&debugLogging, "debug", "d", false, "enable debug logging")
}

// setupLogging configures zerolog based on flags
func setupLogging() zerolog.Logger {
	if debugLogging {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()
	zerolog.DefaultContextLogger = &logger
	return logger
}
