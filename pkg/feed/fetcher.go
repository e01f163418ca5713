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

// Package feed downloads product feeds, validates them and stores them
// indented in the feeds folder for the later pipeline stages.
package feed

import (
	"bytes"
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrEmptyFeedList is returned when no feed URLs are configured
	ErrEmptyFeedList = errors.Base("feed list is empty")
	// ErrEmptyFeed is returned when a downloaded body is blank
	ErrEmptyFeed = errors.Base("feed body is empty")
	// ErrInvalidFeed is returned when a downloaded body is not well-formed XML
	ErrInvalidFeed = errors.Base("feed body is not valid xml")
)

// 🌐 Getter downloads a URL
type Getter interface {
	Get(ctx context.Context, url string) ([]byte, error)
}

// 🔧 Options configures a Fetcher
type Options struct {
	URLs   []string
	Folder string
	Store  filestore.FileStore
	Getter Getter
	OnItem status.ItemFunc
}

// 📡 Fetcher saves remote feeds to disk
type Fetcher struct {
	urls   []string
	folder string
	store  filestore.FileStore
	getter Getter
	onItem status.ItemFunc
}

// 📊 Result summarizes a fetch run
type Result struct {
	Saved  int
	Total  int
	Failed int
}

func (r Result) Report() status.Report {
	return status.NewReport("fetch feeds").
		Add("saved", r.Saved).
		Add("failed", r.Failed).
		Add("total", r.Total).
		WithProgress(r.Saved, r.Total)
}

// 🏭 NewFetcher creates a fetcher
func NewFetcher(opts Options) (*Fetcher, error) {
	if len(opts.URLs) == 0 {
		return nil, errors.WithStack(ErrEmptyFeedList)
	}
	if opts.Store == nil {
		return nil, errors.Errorf("file store is required")
	}
	if opts.Getter == nil {
		return nil, errors.Errorf("getter is required")
	}
	return &Fetcher{
		urls:   opts.URLs,
		folder: opts.Folder,
		store:  opts.Store,
		getter: opts.Getter,
		onItem: opts.OnItem,
	}, nil
}

// 🏃 Fetch downloads every feed. A failing feed is logged and skipped; only
// a feeds folder that cannot be created aborts the run.
func (f *Fetcher) Fetch(ctx context.Context) (Result, error) {
	logger := zerolog.Ctx(ctx)
	result := Result{Total: len(f.urls)}

	if _, err := f.store.MakeDir(ctx, f.folder); err != nil {
		return result, errors.Errorf("preparing feeds folder: %w", err)
	}

	for _, feedURL := range f.urls {
		name, err := Filename(feedURL)
		if err != nil {
			logger.Error().Err(err).Str("url", feedURL).Msg("cannot name feed file")
			result.Failed++
			f.onItem.Notify(feedURL, status.OutcomeFailed)
			continue
		}

		if err := f.fetchOne(ctx, feedURL, name); err != nil {
			logger.Error().Err(err).Str("url", feedURL).Str("file", name).Msg("feed not saved")
			result.Failed++
			f.onItem.Notify(name, status.OutcomeFailed)
			continue
		}

		result.Saved++
		f.onItem.Notify(name, status.OutcomeWritten)
		logger.Info().Str("file", name).Msg("feed saved")
	}

	logger.Info().Int("saved", result.Saved).Int("total", result.Total).Msg("feeds written")
	return result, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, feedURL, name string) error {
	body, err := f.getter.Get(ctx, feedURL)
	if err != nil {
		return errors.Errorf("downloading: %w", err)
	}

	doc, err := Validate(body)
	if err != nil {
		return errors.Errorf("validating: %w", err)
	}

	if err := f.store.WriteTree(ctx, f.folder, name, doc); err != nil {
		return errors.Errorf("writing: %w", err)
	}
	return nil
}

// 🔍 Validate checks that body is non-empty, well-formed XML and returns the
// parsed tree
func Validate(body []byte) (*etree.Document, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, errors.WithStack(ErrEmptyFeed)
	}

	doc, err := filestore.ParseXML(body)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrInvalidFeed, err.Error())
	}
	return doc, nil
}

// Filename returns the last path segment of a feed URL
func Filename(feedURL string) (string, error) {
	u, err := url.Parse(feedURL)
	if err != nil {
		return "", errors.Errorf("parsing url: %w", err)
	}

	name := path.Base(strings.TrimRight(u.Path, "/"))
	if name == "" || name == "." || name == "/" {
		return "", errors.Errorf("url %q has no file name", feedURL)
	}
	return name, nil
}
