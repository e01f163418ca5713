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

package rewrite

import (
	"context"
	"sort"

	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/naming"
)

// 🗺️ OfferImageMap maps an offer id to its framed image filenames, ordered by index
type OfferImageMap map[string][]string

// BuildOfferImageMap scans the framed image folder. Filenames that do not
// follow the {offer_id}_{index} convention are logged and left out.
func BuildOfferImageMap(ctx context.Context, store filestore.FileStore, folder string) (OfferImageMap, error) {
	logger := zerolog.Ctx(ctx)

	files, err := store.List(ctx, folder, "*."+naming.FramedExt)
	if err != nil {
		return nil, err
	}

	type entry struct {
		file  string
		index int
	}

	parsed := make(map[string][]entry)
	for _, file := range files {
		name, err := naming.Parse(file)
		if err != nil {
			logger.Warn().Err(err).Str("file", file).Msg("framed image not assigned to an offer")
			continue
		}
		parsed[name.OfferID] = append(parsed[name.OfferID], entry{file: file, index: name.Index})
	}

	m := make(OfferImageMap, len(parsed))
	for id, entries := range parsed {
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].index < entries[j].index })
		ordered := make([]string, 0, len(entries))
		for _, e := range entries {
			ordered = append(ordered, e.file)
		}
		m[id] = ordered
	}
	return m, nil
}

// Count returns the number of images across all offers
func (m OfferImageMap) Count() int {
	n := 0
	for _, files := range m {
		n += len(files)
	}
	return n
}
