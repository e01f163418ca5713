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
	"context"
	"strings"

	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/cmd/feedframe/opts"
	"github.com/walteh/feedframe/pkg/feed"
	"github.com/walteh/feedframe/pkg/frame"
	"github.com/walteh/feedframe/pkg/images"
	"github.com/walteh/feedframe/pkg/log"
	"github.com/walteh/feedframe/pkg/operation"
	"github.com/walteh/feedframe/pkg/remote"
	"github.com/walteh/feedframe/pkg/rewrite"
	"github.com/walteh/feedframe/pkg/status"
)

const (
	stageFetchFeeds  = "fetch feeds"
	stageFetchImages = "fetch images"
	stageFrame       = "frame images"
	stageRewrite     = "rewrite feeds"
)

func itemFunc(o *opts.RootOpts) status.ItemFunc {
	if !o.Verbose {
		return nil
	}
	return o.Console.LogItem
}

func feedStage(o *opts.RootOpts) operation.Operation {
	cfg := o.Config
	return consoleStage(o, log.StageOperation{
		Name:   stageFetchFeeds,
		Source: strings.Join(cfg.FeedURLs, ", "),
		Target: cfg.Folders.Feeds,
	}, operation.Stage(stageFetchFeeds, func(ctx context.Context) (feed.Result, error) {
		client := remote.NewClient(
			remote.WithTimeout(cfg.FeedTimeout),
			remote.WithDialTimeout(cfg.FeedDialTimeout),
			remote.WithRetryPolicy(cfg.FeedPolicy()),
		)
		fetcher, err := feed.NewFetcher(feed.Options{
			URLs:   cfg.FeedURLs,
			Folder: cfg.Folders.Feeds,
			Store:  o.Store,
			Getter: client,
			OnItem: itemFunc(o),
		})
		if err != nil {
			return feed.Result{}, err
		}
		return fetcher.Fetch(ctx)
	}))
}

func imagesStage(o *opts.RootOpts) operation.Operation {
	cfg := o.Config
	return consoleStage(o, log.StageOperation{
		Name:   stageFetchImages,
		Source: cfg.Folders.Feeds,
		Target: cfg.Folders.Images,
	}, operation.Stage(stageFetchImages, func(ctx context.Context) (images.Result, error) {
		client := remote.NewClient(
			remote.WithTimeout(cfg.ImageTimeout),
			remote.WithRetryPolicy(remote.SingleAttempt()),
		)
		fetcher, err := images.NewFetcher(images.Options{
			FeedFolder:  cfg.Folders.Feeds,
			ImageFolder: cfg.Folders.Images,
			Store:       o.Store,
			Getter:      client,
			Filter:      cfg.PictureFilter(),
			OnItem:      itemFunc(o),
		})
		if err != nil {
			return images.Result{}, err
		}
		return fetcher.Fetch(ctx)
	}))
}

func frameStage(o *opts.RootOpts) operation.Operation {
	cfg := o.Config
	return consoleStage(o, log.StageOperation{
		Name:   stageFrame,
		Source: cfg.Folders.Images,
		Target: cfg.Folders.FramedImages,
	}, operation.Stage(stageFrame, func(ctx context.Context) (frame.Result, error) {
		compositor, err := frame.NewCompositor(frame.Options{
			ImageFolder:  cfg.Folders.Images,
			FrameFolder:  cfg.Folders.Frame,
			FrameName:    cfg.FrameName,
			OutputFolder: cfg.Folders.FramedImages,
			CanvasMargin: cfg.CanvasMargin,
			ImageMargin:  cfg.ImageMargin,
			CanvasFill:   cfg.CanvasFill,
			OutputFill:   cfg.OutputFill,
			Store:        o.Store,
			OnItem:       itemFunc(o),
		})
		if err != nil {
			return frame.Result{}, err
		}
		return compositor.Composite(ctx)
	}))
}

func rewriteStage(o *opts.RootOpts) operation.Operation {
	cfg := o.Config
	return consoleStage(o, log.StageOperation{
		Name:   stageRewrite,
		Source: cfg.Folders.Feeds,
		Target: cfg.Folders.NewFeeds,
	}, operation.Stage(stageRewrite, func(ctx context.Context) (rewrite.Result, error) {
		rewriter, err := rewrite.NewRewriter(rewrite.Options{
			FeedFolder:   cfg.Folders.Feeds,
			ImageFolder:  cfg.Folders.FramedImages,
			OutputFolder: cfg.Folders.NewFeeds,
			BaseURL:      cfg.BaseURL,
			Store:        o.Store,
			OnItem:       itemFunc(o),
		})
		if err != nil {
			return rewrite.Result{}, err
		}
		return rewriter.Rewrite(ctx)
	}))
}

// consoleStage brackets op with the console stage header and footer
func consoleStage(o *opts.RootOpts, desc log.StageOperation, op operation.Operation) operation.Operation {
	return &console{desc: desc, op: op, logger: o.Console}
}

type console struct {
	desc   log.StageOperation
	op     operation.Operation
	logger *log.Logger
}

func (c *console) Name() string {
	return c.op.Name()
}

func (c *console) Execute(ctx context.Context) (status.Report, error) {
	c.logger.StartStage(ctx, c.desc)
	defer c.logger.EndStage(ctx)
	return c.op.Execute(ctx)
}

// runStages runs stages under one script record and prints each report
func runStages(ctx context.Context, o *opts.RootOpts, name string, stages ...operation.Operation) ([]status.Report, error) {
	runner := operation.NewRunner(zerolog.Ctx(ctx), operation.WithReportHook(o.Console.LogReport))

	var reports []status.Report
	err := operation.Script(ctx, name, func(ctx context.Context) error {
		var err error
		reports, err = runner.Run(ctx, stages...)
		return err
	})
	return reports, err
}
