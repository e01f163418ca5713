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
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/feedframe/cmd/feedframe/opts"
	"github.com/walteh/feedframe/pkg/config"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/log"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
)

func encode(t *testing.T, w, h int, c color.NRGBA, asJPEG bool) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if asJPEG {
		require.NoError(t, jpeg.Encode(&buf, img, nil))
	} else {
		require.NoError(t, png.Encode(&buf, img))
	}
	return buf.Bytes()
}

func newTestOpts(t *testing.T, root string, feedURLs ...string) *opts.RootOpts {
	cfg := config.Default(root)
	cfg.FeedURLs = feedURLs
	require.NoError(t, cfg.Validate())

	return &opts.RootOpts{
		Config:  cfg,
		Store:   filestore.New(root),
		Console: log.New(io.Discard, zerolog.Nop()),
		Verbose: true,
	}
}

func TestPipeline(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())
	root := t.TempDir()

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	photo := encode(t, 300, 240, color.NRGBA{R: 200, A: 255}, true)
	mux.HandleFunc("/img/", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(photo)
	})
	mux.HandleFunc("/feeds/catalog.xml", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `<?xml version="1.0" encoding="UTF-8"?>
<yml_catalog><shop><offers>
<offer id="42"><picture>%[1]s/img/42_1.jpg</picture><picture>%[1]s/img/42_2.jpg</picture><picture>%[1]s/img/42_3.jpg</picture></offer>
<offer id="43"><picture>%[1]s/img/43_Technical1.jpg</picture></offer>
</offers></shop></yml_catalog>`, srv.URL)
	})

	frameDir := filepath.Join(root, "frame")
	require.NoError(t, os.MkdirAll(frameDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(frameDir, "uvi.png"), encode(t, 50, 50, color.NRGBA{}, false), 0644))

	o := newTestOpts(t, root, srv.URL+"/feeds/catalog.xml")

	reports, err := runStages(ctx, o, "feedframe run", feedStage(o), imagesStage(o), frameStage(o), rewriteStage(o))
	require.NoError(t, err)
	require.Len(t, reports, 4)

	assert.Equal(t, 1, reports[0].Get("saved"))
	assert.Equal(t, 2, reports[1].Get("downloaded"))
	assert.Equal(t, 2, reports[2].Get("framed"))
	assert.Equal(t, 2, reports[3].Get("inserted"))
	assert.Equal(t, 4, reports[3].Get("deleted"))

	for _, name := range []string{"42_0.jpeg", "42_1.jpeg"} {
		_, err := os.Stat(filepath.Join(root, "old_images", name))
		assert.NoError(t, err, name)
	}

	raw, err := os.ReadFile(filepath.Join(root, "new_feeds", "new_catalog.xml"))
	require.NoError(t, err)
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(raw))

	var pictures []string
	for _, p := range doc.FindElements("//offer[@id='42']/picture") {
		pictures = append(pictures, p.Text())
	}
	assert.Equal(t, []string{
		config.DefaultBaseURL + "/42_0.png",
		config.DefaultBaseURL + "/42_1.png",
	}, pictures)
	assert.Empty(t, doc.FindElements("//offer[@id='43']/picture"))

	t.Run("second_run_is_idempotent", func(t *testing.T) {
		reports, err := runStages(ctx, o, "feedframe run", imagesStage(o), frameStage(o))
		require.NoError(t, err)
		assert.Equal(t, 0, reports[0].Get("downloaded"))
		assert.Equal(t, 2, reports[0].Get("skipped"))
		assert.Equal(t, 0, reports[1].Get("framed"))
		assert.Equal(t, 2, reports[1].Get("skipped"))
	})
}

func TestPipelineStages(t *testing.T) {
	ctx := zerolog.New(zerolog.NewTestWriter(t)).WithContext(context.Background())

	t.Run("empty_image_folder_is_skipped", func(t *testing.T) {
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "old_images"), 0755))
		o := newTestOpts(t, root)

		reports, err := runStages(ctx, o, "feedframe frame", frameStage(o))
		require.NoError(t, err)
		require.Len(t, reports, 1)
		assert.True(t, reports[0].Skipped)
	})

	t.Run("no_feed_urls_fails", func(t *testing.T) {
		o := newTestOpts(t, t.TempDir())

		_, err := runStages(ctx, o, "feedframe fetch", feedStage(o))
		require.Error(t, err)
		assert.True(t, strings.Contains(err.Error(), "feed list is empty"), err.Error())
	})

	t.Run("missing_image_folder_aborts", func(t *testing.T) {
		o := newTestOpts(t, t.TempDir())

		reports, err := runStages(ctx, o, "feedframe run", imagesStage(o), frameStage(o))
		require.Error(t, err)
		assert.True(t, errors.Is(err, filestore.ErrDirectoryMissing))
		assert.Len(t, reports, 1, "the run stops at the first failing stage")
	})
}

func TestSummaryTable(t *testing.T) {
	reports := []status.Report{
		status.NewReport("fetch feeds").Add("saved", 1).Add("failed", 0),
		status.NewReport("fetch images").Add("downloaded", 3).Add("failed", 1),
		status.NewReport("frame images").WithSkip("no files to process"),
	}

	assert.Equal(t, [][]string{
		{"Stage", "Status", "Counters"},
		{"fetch feeds", "done", "saved=1 failed=0"},
		{"fetch images", "partial", "downloaded=3 failed=1"},
		{"frame images", "skipped", "no files to process"},
	}, [][]string(SummaryTable(reports, nil)))

	failed := SummaryTable(reports[:2], errors.New("boom"))
	assert.Equal(t, "failed", failed[2][1])
}
