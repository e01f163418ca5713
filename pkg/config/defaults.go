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

package config

import (
	"fmt"
	"image/color"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/walteh/feedframe/pkg/frame"
	"github.com/walteh/feedframe/pkg/images"
	"github.com/walteh/feedframe/pkg/remote"
	"gitlab.com/tozd/go/errors"
)

// ErrInvalidConfig is returned when a setting cannot be used
var ErrInvalidConfig = errors.Base("invalid config")

const (
	DefaultBaseURL         = "https://feeds.i-media.ru/projects/uvi/new_images"
	DefaultFeedTimeout     = 70 * time.Second
	DefaultFeedDialTimeout = 10 * time.Second
	DefaultImageTimeout    = 30 * time.Second
)

// 🏭 Default returns the built-in configuration rooted at root
func Default(root string) *Config {
	policy := remote.DefaultFeedPolicy()
	filter := images.DefaultPictureFilter()

	return &Config{
		Root: root,
		Folders: Folders{
			Feeds:        "temp_feeds",
			Images:       "old_images",
			Frame:        "frame",
			FramedImages: "new_images",
			NewFeeds:     "new_feeds",
		},
		BaseURL: DefaultBaseURL,

		FeedTimeout:     DefaultFeedTimeout,
		FeedDialTimeout: DefaultFeedDialTimeout,
		FeedAttempts:    policy.MaxAttempts,
		FeedDelays:      policy.Delays,

		ImageTimeout: DefaultImageTimeout,
		ImageInclude: filter.Include,
		ImageExclude: filter.Exclude,

		FrameName:    frame.DefaultFrameName,
		CanvasMargin: frame.DefaultCanvasMargin,
		ImageMargin:  frame.DefaultImageMargin,
		CanvasFill:   frame.DefaultCanvasFill,
		OutputFill:   frame.DefaultOutputFill,
	}
}

// 🔀 ApplyTo copies every set field of f onto cfg
func (f *File) ApplyTo(cfg *Config) error {
	if f.BaseURL != "" {
		cfg.BaseURL = f.BaseURL
	}

	if b := f.Folders; b != nil {
		setString(&cfg.Folders.Feeds, b.Feeds)
		setString(&cfg.Folders.Images, b.Images)
		setString(&cfg.Folders.Frame, b.Frame)
		setString(&cfg.Folders.FramedImages, b.FramedImages)
		setString(&cfg.Folders.NewFeeds, b.NewFeeds)
	}

	if b := f.Feeds; b != nil {
		if b.URLs != nil {
			cfg.FeedURLs = b.URLs
		}
		if err := setDuration(&cfg.FeedTimeout, "feeds.timeout", b.Timeout); err != nil {
			return err
		}
		if err := setDuration(&cfg.FeedDialTimeout, "feeds.dial_timeout", b.DialTimeout); err != nil {
			return err
		}
		if b.Attempts != 0 {
			cfg.FeedAttempts = b.Attempts
		}
		if b.Delays != nil {
			delays := make([]time.Duration, 0, len(b.Delays))
			for i, raw := range b.Delays {
				var d time.Duration
				if err := setDuration(&d, fmt.Sprintf("feeds.delays[%d]", i), raw); err != nil {
					return err
				}
				delays = append(delays, d)
			}
			cfg.FeedDelays = delays
		}
	}

	if b := f.Images; b != nil {
		if err := setDuration(&cfg.ImageTimeout, "images.timeout", b.Timeout); err != nil {
			return err
		}
		if b.Include != nil {
			cfg.ImageInclude = b.Include
		}
		if b.Exclude != nil {
			cfg.ImageExclude = b.Exclude
		}
	}

	if b := f.Frame; b != nil {
		setString(&cfg.FrameName, b.Name)
		if b.CanvasMargin != nil {
			cfg.CanvasMargin = *b.CanvasMargin
		}
		if b.ImageMargin != nil {
			cfg.ImageMargin = *b.ImageMargin
		}
		if err := setColor(&cfg.CanvasFill, "frame.canvas_fill", b.CanvasFill); err != nil {
			return err
		}
		if err := setColor(&cfg.OutputFill, "frame.output_fill", b.OutputFill); err != nil {
			return err
		}
	}

	return nil
}

// 🔍 Validate checks that the configuration can drive the pipeline
func (cfg *Config) Validate() error {
	folders := map[string]string{
		"folders.feeds":         cfg.Folders.Feeds,
		"folders.images":        cfg.Folders.Images,
		"folders.frame":         cfg.Folders.Frame,
		"folders.framed_images": cfg.Folders.FramedImages,
		"folders.new_feeds":     cfg.Folders.NewFeeds,
		"frame.name":            cfg.FrameName,
	}
	for field, v := range folders {
		if strings.TrimSpace(v) == "" {
			return errors.Errorf("%w: %s is required", ErrInvalidConfig, field)
		}
	}

	if err := validateHTTPURL("base_url", cfg.BaseURL); err != nil {
		return err
	}
	for i, u := range cfg.FeedURLs {
		if err := validateHTTPURL(fmt.Sprintf("feeds.urls[%d]", i), u); err != nil {
			return err
		}
	}

	switch {
	case cfg.FeedAttempts < 1:
		return errors.Errorf("%w: feeds.attempts must be at least 1, got %d", ErrInvalidConfig, cfg.FeedAttempts)
	case cfg.FeedTimeout <= 0:
		return errors.Errorf("%w: feeds.timeout must be positive", ErrInvalidConfig)
	case cfg.FeedDialTimeout <= 0:
		return errors.Errorf("%w: feeds.dial_timeout must be positive", ErrInvalidConfig)
	case cfg.ImageTimeout <= 0:
		return errors.Errorf("%w: images.timeout must be positive", ErrInvalidConfig)
	case cfg.CanvasMargin < 0 || cfg.ImageMargin < 0:
		return errors.Errorf("%w: frame margins must not be negative", ErrInvalidConfig)
	}

	for i, d := range cfg.FeedDelays {
		if d < 0 {
			return errors.Errorf("%w: feeds.delays[%d] is negative", ErrInvalidConfig, i)
		}
	}

	return nil
}

// FeedPolicy is the retry policy for feed downloads
func (cfg *Config) FeedPolicy() remote.RetryPolicy {
	return remote.RetryPolicy{MaxAttempts: cfg.FeedAttempts, Delays: cfg.FeedDelays}
}

// PictureFilter is the picture selection used by the image fetcher
func (cfg *Config) PictureFilter() images.PictureFilter {
	return images.PictureFilter{Include: cfg.ImageInclude, Exclude: cfg.ImageExclude}
}

// 🎨 ParseColor parses #RRGGBB (opaque) or #RRGGBBAA; the # is optional
func ParseColor(s string) (color.NRGBA, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 && len(hex) != 8 {
		return color.NRGBA{}, errors.Errorf("%w: color %q must be #RRGGBB or #RRGGBBAA", ErrInvalidConfig, s)
	}

	var channels [4]uint8
	channels[3] = 0xff
	for i := 0; i < len(hex)/2; i++ {
		v, err := strconv.ParseUint(hex[i*2:i*2+2], 16, 8)
		if err != nil {
			return color.NRGBA{}, errors.Errorf("%w: color %q: %s", ErrInvalidConfig, s, err.Error())
		}
		channels[i] = uint8(v)
	}
	return color.NRGBA{R: channels[0], G: channels[1], B: channels[2], A: channels[3]}, nil
}

// FormatColor renders c as #RRGGBBAA
func FormatColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func setDuration(dst *time.Duration, field, raw string) error {
	if raw == "" {
		return nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return errors.Errorf("%w: %s: %s", ErrInvalidConfig, field, err.Error())
	}
	*dst = d
	return nil
}

func setColor(dst *color.NRGBA, field, raw string) error {
	if raw == "" {
		return nil
	}
	c, err := ParseColor(raw)
	if err != nil {
		return errors.Errorf("%s: %w", field, err)
	}
	*dst = c
	return nil
}

func validateHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return errors.Errorf("%w: %s: %s", ErrInvalidConfig, field, err.Error())
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.Errorf("%w: %s must be an absolute http(s) url, got %q", ErrInvalidConfig, field, raw)
	}
	return nil
}
