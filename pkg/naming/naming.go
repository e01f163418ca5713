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

// Package naming encodes and decodes the image filename convention shared by
// every pipeline stage: raw images are written as {offer_id}_{index}.{ext} and
// framed images as {offer_id}_{index}.png. The filename is the only identity an
// image has, so all stages parse names through this package.
package naming

import (
	"path/filepath"
	"strconv"
	"strings"

	"gitlab.com/tozd/go/errors"
)

// FramedExt is the extension of every framed image.
const FramedExt = "png"

var (
	// ErrInvalidName is returned when a filename does not follow the convention.
	ErrInvalidName = errors.Base("invalid image filename")
	// ErrInvalidOfferID is returned for offer ids that cannot be encoded in a filename.
	ErrInvalidOfferID = errors.Base("invalid offer id")
)

// 🏷️ ImageName is the decoded form of an image filename
type ImageName struct {
	OfferID string
	Index   int
	Ext     string // without the leading dot, may be empty
}

// 🏭 New builds an ImageName for an offer picture
func New(offerID string, index int, ext string) ImageName {
	return ImageName{OfferID: offerID, Index: index, Ext: strings.TrimPrefix(ext, ".")}
}

// Stem returns {offer_id}_{index}
func (n ImageName) Stem() string {
	return n.OfferID + "_" + strconv.Itoa(n.Index)
}

// Filename returns {offer_id}_{index}.{ext}, or the stem when Ext is empty
func (n ImageName) Filename() string {
	if n.Ext == "" {
		return n.Stem()
	}
	return n.Stem() + "." + n.Ext
}

// Framed returns the name of the framed image derived from n
func (n ImageName) Framed() ImageName {
	return ImageName{OfferID: n.OfferID, Index: n.Index, Ext: FramedExt}
}

func (n ImageName) String() string {
	return n.Filename()
}

// 🔍 Parse decodes a filename. The offer id is the text before the first
// underscore and the remainder of the stem must be a non-negative integer.
func Parse(filename string) (ImageName, error) {
	base := filepath.Base(filename)
	stem := Stem(base)
	ext := strings.TrimPrefix(filepath.Ext(base), ".")

	offerID, rawIndex, ok := strings.Cut(stem, "_")
	if !ok || offerID == "" {
		return ImageName{}, errors.Errorf("%q: missing offer id separator: %w", filename, ErrInvalidName)
	}

	index, err := strconv.Atoi(rawIndex)
	if err != nil || index < 0 {
		return ImageName{}, errors.Errorf("%q: index %q is not a non-negative integer: %w", filename, rawIndex, ErrInvalidName)
	}

	return ImageName{OfferID: offerID, Index: index, Ext: ext}, nil
}

// ValidateOfferID rejects ids that are empty, contain the index separator or
// would escape the image folder.
func ValidateOfferID(id string) error {
	switch {
	case id == "":
		return errors.Errorf("offer has no id: %w", ErrInvalidOfferID)
	case strings.Contains(id, "_"):
		return errors.Errorf("%q contains '_': %w", id, ErrInvalidOfferID)
	case strings.ContainsAny(id, `/\`) || id == "." || id == "..":
		return errors.Errorf("%q is not a plain file name: %w", id, ErrInvalidOfferID)
	}
	return nil
}

// OfferID returns the text before the first underscore of the stem
func OfferID(filename string) string {
	id, _, _ := strings.Cut(Stem(filepath.Base(filename)), "_")
	return id
}

// Stem strips the last extension from a filename
func Stem(filename string) string {
	return strings.TrimSuffix(filename, filepath.Ext(filename))
}

// 📦 StemSet is the set of stems already present in a folder
type StemSet map[string]struct{}

// NewStemSet builds a set from filenames
func NewStemSet(filenames ...string) StemSet {
	set := make(StemSet, len(filenames))
	for _, name := range filenames {
		set.Add(name)
	}
	return set
}

// Add inserts the stem of filename
func (s StemSet) Add(filename string) {
	s[Stem(filepath.Base(filename))] = struct{}{}
}

// Has reports whether the stem of filename is present
func (s StemSet) Has(filename string) bool {
	_, ok := s[Stem(filepath.Base(filename))]
	return ok
}

// HasName reports whether the stem of n is present, whatever its extension
func (s StemSet) HasName(n ImageName) bool {
	_, ok := s[n.Stem()]
	return ok
}

func (s StemSet) Len() int {
	return len(s)
}
