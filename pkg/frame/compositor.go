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

// Package frame composites downloaded product images onto a colored canvas
// and overlays the shop frame template.
package frame

import (
	"bytes"
	"context"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/naming"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

var (
	// ErrFrameTemplate is returned when the frame template cannot be loaded
	ErrFrameTemplate = errors.Base("frame template unavailable")
	// ErrImageDecode is returned when a source image cannot be decoded
	ErrImageDecode = errors.Base("image decode failure")
)

const (
	DefaultFrameName    = "uvi.png"
	DefaultCanvasMargin = 40
	DefaultImageMargin  = 200
)

var (
	// DefaultCanvasFill is opaque white
	DefaultCanvasFill = color.NRGBA{R: 255, G: 255, B: 255, A: 255}
	// DefaultOutputFill is fully transparent
	DefaultOutputFill = color.NRGBA{}
)

// 🔧 Options configures a Compositor
type Options struct {
	ImageFolder  string
	FrameFolder  string
	FrameName    string
	OutputFolder string

	CanvasMargin int
	ImageMargin  int
	CanvasFill   color.NRGBA
	OutputFill   color.NRGBA

	Store  filestore.FileStore
	OnItem status.ItemFunc
}

// 🖼️ Compositor frames every source image that has no framed counterpart yet
type Compositor struct {
	opts   Options
	scaler draw.Scaler
}

// 📊 Result summarizes a compositing run
type Result struct {
	Framed  int
	Skipped int
	Failed  int
}

func (r Result) Report() status.Report {
	return status.NewReport("frame images").
		Add("framed", r.Framed).
		Add("skipped", r.Skipped).
		Add("failed", r.Failed)
}

// 🏭 NewCompositor creates a compositor
func NewCompositor(opts Options) (*Compositor, error) {
	if opts.Store == nil {
		return nil, errors.Errorf("file store is required")
	}
	if opts.FrameName == "" {
		opts.FrameName = DefaultFrameName
	}
	return &Compositor{opts: opts, scaler: draw.CatmullRom}, nil
}

// 🏃 Composite frames all pending images. A missing source folder, an empty
// source folder or an unusable frame template abort the run; a source that
// cannot be decoded or laid out is counted as failed.
func (c *Compositor) Composite(ctx context.Context) (Result, error) {
	logger := zerolog.Ctx(ctx)
	var result Result

	sources, err := c.opts.Store.List(ctx, c.opts.ImageFolder, "*")
	if err != nil {
		return result, errors.Errorf("listing source images: %w", err)
	}

	tmpl, err := c.loadTemplate(ctx)
	if err != nil {
		return result, err
	}

	if _, err := c.opts.Store.MakeDir(ctx, c.opts.OutputFolder); err != nil {
		return result, errors.Errorf("preparing output folder: %w", err)
	}

	framed, err := c.opts.Store.Stems(ctx, c.opts.OutputFolder)
	if err != nil {
		return result, errors.Errorf("scanning framed images: %w", err)
	}

	logger.Debug().Int("sources", len(sources)).Int("framed", framed.Len()).Msg("scanned image folders")

	frames := newFrameCache(tmpl, c.scaler)

	for _, name := range sources {
		if err := ctx.Err(); err != nil {
			return result, errors.WithStack(err)
		}

		src, err := naming.Parse(name)
		if err != nil {
			logger.Error().Err(err).Str("file", name).Msg("image not framed")
			result.Failed++
			c.opts.OnItem.Notify(name, status.OutcomeFailed)
			continue
		}

		if framed.HasName(src.Framed()) {
			result.Skipped++
			c.opts.OnItem.Notify(name, status.OutcomeSkipped)
			continue
		}

		out := src.Framed().Filename()
		if err := c.frameOne(ctx, name, out, frames); err != nil {
			logger.Error().Err(err).Str("file", name).Msg("image not framed")
			result.Failed++
			c.opts.OnItem.Notify(name, status.OutcomeFailed)
			continue
		}

		framed.Add(out)
		result.Framed++
		c.opts.OnItem.Notify(out, status.OutcomeWritten)
		logger.Debug().Str("file", out).Msg("image framed")
	}

	logger.Info().Object("report", result.Report()).Msg("images framed")
	return result, nil
}

func (c *Compositor) loadTemplate(ctx context.Context) (image.Image, error) {
	raw, err := c.opts.Store.ReadFile(ctx, c.opts.FrameFolder, c.opts.FrameName)
	if err != nil {
		return nil, errors.Errorf("%w: %s", ErrFrameTemplate, err.Error())
	}
	tmpl, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, errors.Errorf("%w: decoding %s: %s", ErrFrameTemplate, c.opts.FrameName, err.Error())
	}
	return tmpl, nil
}

func (c *Compositor) frameOne(ctx context.Context, name, out string, frames *frameCache) error {
	raw, err := c.opts.Store.ReadFile(ctx, c.opts.ImageFolder, name)
	if err != nil {
		return errors.Errorf("reading source: %w", err)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return errors.Errorf("%w: %s", ErrImageDecode, err.Error())
	}

	size := src.Bounds().Size()
	layout, err := NewLayout(size.X, size.Y, c.opts.CanvasMargin, c.opts.ImageMargin)
	if err != nil {
		return err
	}

	img := c.Render(src, frames.get(layout.Size), layout)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return errors.Errorf("encoding png: %w", err)
	}

	if err := c.opts.Store.WriteFileAtomic(ctx, c.opts.OutputFolder, out, buf.Bytes()); err != nil {
		return errors.Errorf("writing %s: %w", out, err)
	}
	return nil
}

// 🎨 Render draws src and an already resized frame according to layout
func (c *Compositor) Render(src, frame image.Image, layout Layout) *image.NRGBA {
	canvas := image.NewNRGBA(image.Rectangle{Max: layout.CanvasSize()})
	draw.Draw(canvas, canvas.Bounds(), image.NewUniform(c.opts.CanvasFill), image.Point{}, draw.Src)

	inner := image.NewNRGBA(image.Rectangle{Max: layout.InnerSize()})
	c.scaler.Scale(inner, inner.Bounds(), src, src.Bounds(), draw.Src, nil)
	draw.Draw(canvas, layout.Inner, inner, image.Point{}, draw.Src)

	out := image.NewNRGBA(image.Rectangle{Max: layout.Size})
	draw.Draw(out, out.Bounds(), image.NewUniform(c.opts.OutputFill), image.Point{}, draw.Src)
	draw.Draw(out, layout.Canvas, canvas, image.Point{}, draw.Src)

	draw.Draw(out, out.Bounds(), frame, frame.Bounds().Min, draw.Over)
	return out
}

// frameCache holds the template scaled to each source size seen in a run
type frameCache struct {
	tmpl   image.Image
	scaler draw.Scaler
	sizes  map[image.Point]*image.NRGBA
}

func newFrameCache(tmpl image.Image, scaler draw.Scaler) *frameCache {
	return &frameCache{tmpl: tmpl, scaler: scaler, sizes: make(map[image.Point]*image.NRGBA)}
}

func (f *frameCache) get(size image.Point) *image.NRGBA {
	if scaled, ok := f.sizes[size]; ok {
		return scaled
	}
	scaled := image.NewNRGBA(image.Rectangle{Max: size})
	f.scaler.Scale(scaled, scaled.Bounds(), f.tmpl, f.tmpl.Bounds(), draw.Src, nil)
	f.sizes[size] = scaled
	return scaled
}
