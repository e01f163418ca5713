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
	"strings"
)

// 🔍 PictureFilter selects which picture URLs of an offer are downloaded.
// A URL matches when it contains any Include substring (or Include is empty)
// and none of the Exclude substrings. Tests are case-sensitive.
type PictureFilter struct {
	Include []string
	Exclude []string
}

// DefaultPictureFilter keeps the first two product shots and drops
// technical drawings.
func DefaultPictureFilter() PictureFilter {
	return PictureFilter{
		Include: []string{"1.jpg", "2.jpg"},
		Exclude: []string{"Technical"},
	}
}

// Match reports whether url passes the filter
func (f PictureFilter) Match(url string) bool {
	for _, ex := range f.Exclude {
		if ex != "" && strings.Contains(url, ex) {
			return false
		}
	}
	if len(f.Include) == 0 {
		return true
	}
	for _, in := range f.Include {
		if strings.Contains(url, in) {
			return true
		}
	}
	return false
}

// Select returns the matching urls in their original order
func (f PictureFilter) Select(urls []string) []string {
	var out []string
	for _, u := range urls {
		if f.Match(u) {
			out = append(out, u)
		}
	}
	return out
}
