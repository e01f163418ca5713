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

package images

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/gif"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/beevik/etree"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/feedframe/pkg/filestore"
	"gitlab.com/tozd/go/errors"
)

// 🧪 fakeGetter serves canned bodies keyed by url
type fakeGetter struct {
	bodies map[string][]byte
	calls  []string
}

func (g *fakeGetter) Get(ctx context.Context, url string) ([]byte, error) {
	g.calls = append(g.calls, url)
	body, ok := g.bodies[url]
	if !ok {
		return nil, errors.Errorf("unexpected status code: 404")
	}
	return body, nil
}

func testContext(t *testing.T) context.Context {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	return logger.WithContext(context.Background())
}

func solid(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 10, B: 10, A: 255})
		}
	}
	return img
}

func encodePNG(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, solid(w, h)))
	return buf.Bytes()
}

func encodeJPEG(t *testing.T, w, h int) []byte {
	var buf bytes.Buffer
	require.NoError(t, jpeg.Encode(&buf, solid(w, h), nil))
	return buf.Bytes()
}

func writeFile(t *testing.T, path, content string) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestPictureFilter(t *testing.T) {
	f := DefaultPictureFilter()

	got := f.Select([]string{"a_1.jpg", "a_2.jpg", "a_3.jpg", "a_Technical1.jpg"})
	assert.Equal(t, []string{"a_1.jpg", "a_2.jpg"}, got)

	assert.False(t, f.Match("A_1.JPG"), "matching is case-sensitive")
	assert.False(t, f.Match("https://cdn/Technical/b_2.jpg"))
	assert.True(t, f.Match("https://cdn/b_12.jpg?w=100"))

	all := PictureFilter{}
	assert.Equal(t, []string{"x.png", "y.gif"}, all.Select([]string{"x.png", "y.gif"}), "empty filter keeps everything")
}

const catalog = `<?xml version="1.0" encoding="UTF-8"?>
<yml_catalog>
  <shop>
    <offers>
      <offer id="offer1">
        <picture>https://img.example.com/offer1_1.jpg</picture>
        <picture>https://img.example.com/offer1_2.jpg</picture>
        <picture>https://img.example.com/offer1_3.jpg</picture>
        <picture>https://img.example.com/offer1_Technical1.jpg</picture>
      </offer>
      <offer id="offer2">
        <picture>https://img.example.com/offer2_3.jpg</picture>
      </offer>
      <offer>
        <picture>https://img.example.com/anon_1.jpg</picture>
      </offer>
      <offer id="offer3">
        <picture>https://img.example.com/offer3_1.jpg</picture>
        <picture>https://img.example.com/offer3_2.jpg</picture>
      </offer>
    </offers>
  </shop>
</yml_catalog>
`

func TestFetch(t *testing.T) {
	ctx := testContext(t)
	root := t.TempDir()

	writeFile(t, filepath.Join(root, "temp_feeds", "feed.xml"), catalog)
	writeFile(t, filepath.Join(root, "temp_feeds", "broken.xml"), "<yml_catalog><shop>")
	writeFile(t, filepath.Join(root, "old_images", "offer1_0.jpg"), "cached")

	getter := &fakeGetter{bodies: map[string][]byte{
		"https://img.example.com/offer1_1.jpg": encodeJPEG(t, 8, 8),
		// served as png despite the url extension
		"https://img.example.com/offer1_2.jpg": encodePNG(t, 6, 4),
		"https://img.example.com/anon_1.jpg":   encodeJPEG(t, 8, 8),
		"https://img.example.com/offer3_1.jpg": []byte("<html>not an image</html>"),
	}}

	fetcher, err := NewFetcher(Options{
		FeedFolder:  "temp_feeds",
		ImageFolder: "old_images",
		Store:       filestore.New(root),
		Getter:      getter,
		Filter:      DefaultPictureFilter(),
	})
	require.NoError(t, err)

	result, err := fetcher.Fetch(ctx)
	require.NoError(t, err)
	assert.Equal(t, Result{
		Feeds:            1,
		ProcessedOffers:  4,
		OffersWithImages: 2,
		Downloaded:       1,
		SkippedExisting:  1,
		Failed:           2,
	}, result)

	assert.Equal(t, []string{
		"https://img.example.com/offer1_2.jpg",
		"https://img.example.com/offer3_1.jpg",
		"https://img.example.com/offer3_2.jpg",
	}, getter.calls, "index 0 of offer1 is cached and must not be fetched")

	_, err = os.Stat(filepath.Join(root, "old_images", "offer1_1.png"))
	assert.NoError(t, err, "extension should come from the detected format")

	_, err = os.Stat(filepath.Join(root, "old_images", "offer3_0.html"))
	assert.True(t, os.IsNotExist(err))

	t.Run("second_run_is_idempotent", func(t *testing.T) {
		getter.calls = nil
		result, err := fetcher.Fetch(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, result.Downloaded)
		assert.Equal(t, 2, result.SkippedExisting)
		assert.Equal(t, 2, result.Failed, "failed images are retried on the next run")
		assert.NotContains(t, getter.calls, "https://img.example.com/offer1_2.jpg")
	})
}

func TestFetchMissingFeeds(t *testing.T) {
	ctx := testContext(t)

	fetcher, err := NewFetcher(Options{
		FeedFolder:  "temp_feeds",
		ImageFolder: "old_images",
		Store:       filestore.New(t.TempDir()),
		Getter:      &fakeGetter{},
		Filter:      DefaultPictureFilter(),
	})
	require.NoError(t, err)

	_, err = fetcher.Fetch(ctx)
	require.Error(t, err)
	assert.True(t, errors.Is(err, filestore.ErrDirectoryMissing))
}

func TestDetectFormat(t *testing.T) {
	var gifBuf bytes.Buffer
	require.NoError(t, gif.Encode(&gifBuf, solid(3, 5), nil))

	tests := []struct {
		name    string
		body    []byte
		want    string
		size    image.Point
		wantErr bool
	}{
		{name: "png", body: encodePNG(t, 4, 3), want: "png", size: image.Pt(4, 3)},
		{name: "jpeg", body: encodeJPEG(t, 2, 2), want: "jpeg", size: image.Pt(2, 2)},
		{name: "gif", body: gifBuf.Bytes(), want: "gif", size: image.Pt(3, 5)},
		{name: "garbage", body: []byte("nope"), wantErr: true},
		{name: "empty", body: nil, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, size, err := DetectFormat(tt.body)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrImageDecode))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, format)
			assert.Equal(t, tt.size, size)
		})
	}
}

func TestPictures(t *testing.T) {
	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromString(`<offer id="1"><picture> https://a/1.jpg </picture><picture/><name>x</name><picture>https://a/2.jpg</picture></offer>`))

	assert.Equal(t, []string{"https://a/1.jpg", "https://a/2.jpg"}, Pictures(doc.Root()))
}
