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
	"context"
	"image/color"
	"time"
)

// 🔌 Parser is the interface for config file parsers
type Parser interface {
	// 📝 Parse decodes a config file. env holds the environment visible to
	// formats that can reference it.
	Parse(ctx context.Context, data []byte, env map[string]string) (*File, error)

	// 🔍 CanParse checks if this parser can handle the given file
	CanParse(filename string) bool
}

var (
	// 🗺️ parsers is a list of available parsers
	parsers []Parser
)

// 📝 Register registers a parser
func Register(p Parser) {
	parsers = append(parsers, p)
}

// 🎯 GetParser returns a parser that can handle the given file
func GetParser(filename string) Parser {
	for _, p := range parsers {
		if p.CanParse(filename) {
			return p
		}
	}
	return nil
}

// 📁 Folders are the pipeline directories, relative to the project root
type Folders struct {
	Feeds        string
	Images       string
	Frame        string
	FramedImages string
	NewFeeds     string
}

// 📚 Config is the resolved, validated configuration
type Config struct {
	Root    string
	Folders Folders
	BaseURL string

	FeedURLs        []string
	FeedTimeout     time.Duration
	FeedDialTimeout time.Duration
	FeedAttempts    int
	FeedDelays      []time.Duration

	ImageTimeout time.Duration
	ImageInclude []string
	ImageExclude []string

	FrameName    string
	CanvasMargin int
	ImageMargin  int
	CanvasFill   color.NRGBA
	OutputFill   color.NRGBA
}

// 📄 File is the on-disk shape of a config file. Every field is optional;
// unset fields keep their defaults.
type File struct {
	BaseURL string        `json:"base_url,omitempty" yaml:"base_url,omitempty" hcl:"base_url,optional"`
	Folders *FoldersBlock `json:"folders,omitempty" yaml:"folders,omitempty" hcl:"folders,block"`
	Feeds   *FeedsBlock   `json:"feeds,omitempty" yaml:"feeds,omitempty" hcl:"feeds,block"`
	Images  *ImagesBlock  `json:"images,omitempty" yaml:"images,omitempty" hcl:"images,block"`
	Frame   *FrameBlock   `json:"frame,omitempty" yaml:"frame,omitempty" hcl:"frame,block"`
}

// 📁 FoldersBlock overrides pipeline directories
type FoldersBlock struct {
	Feeds        string `json:"feeds,omitempty" yaml:"feeds,omitempty" hcl:"feeds,optional"`
	Images       string `json:"images,omitempty" yaml:"images,omitempty" hcl:"images,optional"`
	Frame        string `json:"frame,omitempty" yaml:"frame,omitempty" hcl:"frame,optional"`
	FramedImages string `json:"framed_images,omitempty" yaml:"framed_images,omitempty" hcl:"framed_images,optional"`
	NewFeeds     string `json:"new_feeds,omitempty" yaml:"new_feeds,omitempty" hcl:"new_feeds,optional"`
}

// 📡 FeedsBlock configures feed downloads
type FeedsBlock struct {
	URLs        []string `json:"urls,omitempty" yaml:"urls,omitempty" hcl:"urls,optional"`
	Timeout     string   `json:"timeout,omitempty" yaml:"timeout,omitempty" hcl:"timeout,optional"`
	DialTimeout string   `json:"dial_timeout,omitempty" yaml:"dial_timeout,omitempty" hcl:"dial_timeout,optional"`
	Attempts    int      `json:"attempts,omitempty" yaml:"attempts,omitempty" hcl:"attempts,optional"`
	Delays      []string `json:"delays,omitempty" yaml:"delays,omitempty" hcl:"delays,optional"`
}

// 📷 ImagesBlock configures image downloads
type ImagesBlock struct {
	Timeout string   `json:"timeout,omitempty" yaml:"timeout,omitempty" hcl:"timeout,optional"`
	Include []string `json:"include,omitempty" yaml:"include,omitempty" hcl:"include,optional"`
	Exclude []string `json:"exclude,omitempty" yaml:"exclude,omitempty" hcl:"exclude,optional"`
}

// 🖼️ FrameBlock configures compositing
type FrameBlock struct {
	Name         string `json:"name,omitempty" yaml:"name,omitempty" hcl:"name,optional"`
	CanvasMargin *int   `json:"canvas_margin,omitempty" yaml:"canvas_margin,omitempty" hcl:"canvas_margin,optional"`
	ImageMargin  *int   `json:"image_margin,omitempty" yaml:"image_margin,omitempty" hcl:"image_margin,optional"`
	CanvasFill   string `json:"canvas_fill,omitempty" yaml:"canvas_fill,omitempty" hcl:"canvas_fill,optional"`
	OutputFill   string `json:"output_fill,omitempty" yaml:"output_fill,omitempty" hcl:"output_fill,optional"`
}
