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

package frame

import (
	"image"

	"gitlab.com/tozd/go/errors"
)

// ErrInvalidLayout is returned when the margins leave no room for the canvas or the image
var ErrInvalidLayout = errors.Base("invalid frame layout")

// 📐 Layout is the geometry of one framed image. All rectangles are in the
// coordinate space they get drawn into: Canvas on the output surface and
// Inner on the canvas.
type Layout struct {
	Size   image.Point
	Canvas image.Rectangle
	Inner  image.Rectangle
}

// 🏗️ NewLayout computes the layout for a source of width x height.
//
// The canvas is the source size minus canvasMargin, the inner image is the
// source size minus imageMargin. Each margin is subtracted once, not per side.
// Offsets use floor division so an inner image larger than the canvas is
// centered and clipped the same way on every platform.
func NewLayout(width, height, canvasMargin, imageMargin int) (Layout, error) {
	cw, ch := width-canvasMargin, height-canvasMargin
	iw, ih := width-imageMargin, height-imageMargin

	switch {
	case width <= 0 || height <= 0:
		return Layout{}, errors.Errorf("%w: source is %dx%d", ErrInvalidLayout, width, height)
	case cw <= 0 || ch <= 0:
		return Layout{}, errors.Errorf("%w: canvas margin %d leaves %dx%d", ErrInvalidLayout, canvasMargin, cw, ch)
	case iw <= 0 || ih <= 0:
		return Layout{}, errors.Errorf("%w: image margin %d leaves %dx%d", ErrInvalidLayout, imageMargin, iw, ih)
	}

	canvasAt := image.Pt(floorDiv(width-cw, 2), floorDiv(height-ch, 2))
	innerAt := image.Pt(floorDiv(cw-iw, 2), floorDiv(ch-ih, 2))

	return Layout{
		Size:   image.Pt(width, height),
		Canvas: image.Rectangle{Min: canvasAt, Max: canvasAt.Add(image.Pt(cw, ch))},
		Inner:  image.Rectangle{Min: innerAt, Max: innerAt.Add(image.Pt(iw, ih))},
	}, nil
}

// CanvasSize is the size of the filled canvas
func (l Layout) CanvasSize() image.Point {
	return l.Canvas.Size()
}

// InnerSize is the size the source image is scaled to
func (l Layout) InnerSize() image.Point {
	return l.Inner.Size()
}

func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
