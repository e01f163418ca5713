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

// Package rewrite replaces the pictures of every offer in the stored feeds
// with links to the framed images.
package rewrite

import (
	"context"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
)

// OutputPrefix is prepended to the name of every rewritten feed
const OutputPrefix = "new_"

// 🔧 Options configures a Rewriter
type Options struct {
	FeedFolder   string
	ImageFolder  string
	OutputFolder string
	BaseURL      string
	Store        filestore.FileStore
	OnItem       status.ItemFunc
}

// ✏️ Rewriter writes a copy of each feed whose offers point at framed images
type Rewriter struct {
	opts Options
}

// 📊 Result summarizes a rewrite run across all feeds
type Result struct {
	Feeds    int
	Deleted  int
	Inserted int
	Failed   int
}

func (r Result) Report() status.Report {
	return status.NewReport("rewrite feeds").
		Add("feeds", r.Feeds).
		Add("deleted", r.Deleted).
		Add("inserted", r.Inserted).
		Add("failed", r.Failed)
}

// 🏭 NewRewriter creates a rewriter
func NewRewriter(opts Options) (*Rewriter, error) {
	if opts.Store == nil {
		return nil, errors.Errorf("file store is required")
	}
	if opts.BaseURL == "" {
		return nil, errors.Errorf("base url is required")
	}
	opts.BaseURL = strings.TrimRight(opts.BaseURL, "/")
	return &Rewriter{opts: opts}, nil
}

// 🏃 Rewrite processes every feed in the feed folder
func (r *Rewriter) Rewrite(ctx context.Context) (Result, error) {
	logger := zerolog.Ctx(ctx)
	var result Result

	images, err := BuildOfferImageMap(ctx, r.opts.Store, r.opts.ImageFolder)
	if err != nil {
		return result, errors.Errorf("building offer image map: %w", err)
	}
	logger.Debug().Int("offers", len(images)).Int("images", images.Count()).Msg("offer image map built")

	feeds, err := r.opts.Store.List(ctx, r.opts.FeedFolder, "*.xml")
	if err != nil {
		return result, errors.Errorf("listing feeds: %w", err)
	}

	if _, err := r.opts.Store.MakeDir(ctx, r.opts.OutputFolder); err != nil {
		return result, errors.Errorf("preparing output folder: %w", err)
	}

	for _, name := range feeds {
		doc, err := r.opts.Store.ReadTree(ctx, r.opts.FeedFolder, name)
		if err != nil {
			logger.Error().Err(err).Str("feed", name).Msg("skipping feed")
			result.Failed++
			r.opts.OnItem.Notify(name, status.OutcomeFailed)
			continue
		}

		deleted, inserted := r.ReplacePictures(doc, images)

		if err := r.opts.Store.WriteTree(ctx, r.opts.OutputFolder, OutputPrefix+name, doc); err != nil {
			logger.Error().Err(err).Str("feed", name).Str("file", OutputPrefix+name).Msg("writing rewritten feed")
			result.Failed++
			r.opts.OnItem.Notify(OutputPrefix+name, status.OutcomeFailed)
			continue
		}

		result.Feeds++
		r.opts.OnItem.Notify(OutputPrefix+name, status.OutcomeWritten)
		result.Deleted += deleted
		result.Inserted += inserted
		logger.Debug().Str("feed", name).Int("deleted", deleted).Int("inserted", inserted).Msg("feed rewritten")
	}

	logger.Info().Object("report", result.Report()).Msg("feeds rewritten")
	return result, nil
}

// ReplacePictures strips every picture of every offer that has an id and
// appends one picture per framed image of that offer. Offers without an id
// are left untouched.
func (r *Rewriter) ReplacePictures(doc *etree.Document, images OfferImageMap) (deleted, inserted int) {
	for _, offer := range doc.FindElements("//offer") {
		offerID := offer.SelectAttrValue("id", "")
		if offerID == "" {
			continue
		}

		for _, picture := range offer.SelectElements("picture") {
			offer.RemoveChild(picture)
			deleted++
		}

		for _, file := range images[offerID] {
			offer.CreateElement("picture").SetText(r.opts.BaseURL + "/" + file)
			inserted++
		}
	}
	return deleted, inserted
}
