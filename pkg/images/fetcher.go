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

// Package images downloads the product pictures referenced by stored feeds.
package images

import (
	"bytes"
	"context"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/naming"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// ErrImageDecode is returned when downloaded bytes are not a decodable image
var ErrImageDecode = errors.Base("image decode failure")

// 🌐 Getter downloads a URL
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// 🔧 Options configures a Fetcher
type Options struct {
	FeedFolder  string
	ImageFolder string
	Store       filestore.FileStore
	Getter      Getter
	Filter      PictureFilter
	OnItem      status.ItemFunc
}

// 📷 Fetcher downloads offer pictures into the image folder
type Fetcher struct {
	feedFolder  string
	imageFolder string
	store       filestore.FileStore
	getter      Getter
	filter      PictureFilter
	onItem      status.ItemFunc
}

// 📊 Result summarizes an image fetch run
type Result struct {
	Feeds            int
	ProcessedOffers  int
	OffersWithImages int
	Downloaded       int
	SkippedExisting  int
	Failed           int
}

func (r Result) Report() status.Report {
	return status.NewReport("fetch images").
		Add("feeds", r.Feeds).
		Add("offers", r.ProcessedOffers).
		Add("offers_with_images", r.OffersWithImages).
		Add("downloaded", r.Downloaded).
		Add("skipped", r.SkippedExisting).
		Add("failed", r.Failed)
}

// 🏭 NewFetcher creates a fetcher
func NewFetcher(opts Options) (*Fetcher, error) {
	if opts.Store == nil {
		return nil, errors.Errorf("file store is required")
	}
	if opts.Getter == nil {
		return nil, errors.Errorf("getter is required")
	}
	return &Fetcher{
		feedFolder:  opts.FeedFolder,
		imageFolder: opts.ImageFolder,
		store:       opts.Store,
		getter:      opts.Getter,
		filter:      opts.Filter,
		onItem:      opts.OnItem,
	}, nil
}

// 🏃 Fetch walks every stored feed and downloads pictures that are not on
// disk yet. Missing or empty feed folders abort; anything per-feed, per-offer
// or per-image is logged, counted and skipped.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	logger := zerolog.Ctx(ctx)
	var result Result

	feeds, err := f.store.List(ctx, f.feedFolder, "*.xml")
	if err != nil {
		return result, errors.Errorf("listing feeds: %w", err)
	}

	if _, err := f.store.MakeDir(ctx, f.imageFolder); err != nil {
		return result, errors.Errorf("preparing image folder: %w", err)
	}

	existing, err := f.store.Stems(ctx, f.imageFolder)
	if err != nil {
		return result, errors.Errorf("scanning existing images: %w", err)
	}

	for _, feedName := range feeds {
		doc, err := f.store.ReadTree(ctx, f.feedFolder, feedName)
		if err != nil {
			logger.Error().Err(err).Str("feed", feedName).Msg("skipping feed")
			continue
		}
		result.Feeds++

		for _, offer := range doc.FindElements("//offer") {
			result.ProcessedOffers++
			f.fetchOffer(ctx, offer, existing, &result)
		}
	}

	logger.Info().Object("report", result.Report()).Msg("images fetched")
	return result, nil
}

func (f *Fetcher) fetchOffer(ctx context.Context, offer *etree.Element, existing naming.StemSet, result *Result) {
	logger := zerolog.Ctx(ctx)

	offerID := offer.SelectAttrValue("id", "")
	if err := naming.ValidateOfferID(offerID); err != nil {
		logger.Warn().Err(err).Msg("skipping offer")
		return
	}

	urls := f.filter.Select(Pictures(offer))
	if len(urls) == 0 {
		logger.Warn().Str("offer_id", offerID).Msg("offer has no images")
		return
	}
	result.OffersWithImages++

	for index, url := range urls {
		name := naming.New(offerID, index, "")
		if existing.HasName(name) {
			logger.Debug().Str("stem", name.Stem()).Msg("image already downloaded")
			result.SkippedExisting++
			f.onItem.Notify(name.Stem(), status.OutcomeSkipped)
			continue
		}

		saved, err := f.fetchImage(ctx, url, name)
		if err != nil {
			logger.Error().Err(err).Str("offer_id", offerID).Str("url", url).Msg("image not saved")
			result.Failed++
			f.onItem.Notify(name.Stem(), status.OutcomeFailed)
			continue
		}

		existing.Add(saved.Filename())
		result.Downloaded++
		f.onItem.Notify(saved.Filename(), status.OutcomeWritten)
		logger.Debug().Str("file", saved.Filename()).Msg("image saved")
	}
}

func (f *Fetcher) fetchImage(ctx context.Context, url string, name naming.ImageName) (naming.ImageName, error) {
	body, err := f.getter.Get(ctx, url)
	if err != nil {
		return name, errors.Errorf("downloading: %w", err)
	}

	format, _, err := DetectFormat(body)
	if err != nil {
		return name, err
	}

	name.Ext = format
	if err := f.store.WriteFileAtomic(ctx, f.imageFolder, name.Filename(), body); err != nil {
		return name, errors.Errorf("writing %s: %w", name.Filename(), err)
	}
	return name, nil
}

// 🖼️ DetectFormat decodes body and returns the format name reported by the
// decoder (jpeg, png, gif, webp, bmp, tiff) and the pixel size. The URL
// extension is never trusted.
func DetectFormat(body []byte) (string, image.Point, error) {
	img, format, err := image.Decode(bytes.NewReader(body))
	if err != nil {
		return "", image.Point{}, errors.Errorf("%w: %s", ErrImageDecode, err.Error())
	}
	return strings.ToLower(format), img.Bounds().Size(), nil
}

// Pictures returns the trimmed text of every picture child of offer
func Pictures(offer *etree.Element) []string {
	var urls []string
	for _, p := range offer.SelectElements("picture") {
		if text := strings.TrimSpace(p.Text()); text != "" {
			urls = append(urls, text)
		}
	}
	return urls
}
