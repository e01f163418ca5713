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

package filestore

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/beevik/etree"
	"github.com/bmatcuk/doublestar/v4"
	"github.com/rs/zerolog"
	"github.com/walteh/feedframe/pkg/naming"
	"gitlab.com/tozd/go/errors"
)

var (
	// ErrDirectoryMissing is returned when a required folder does not exist
	ErrDirectoryMissing = errors.Base("directory missing")
	// ErrEmptyFileSet is returned when a folder exists but holds nothing to process
	ErrEmptyFileSet = errors.Base("no files to process")
	// ErrMalformedFeed is returned when a feed file cannot be parsed
	ErrMalformedFeed = errors.Base("malformed feed")
)

// 💾 FileStore is the filesystem capability injected into every stage
type FileStore interface {
	// Path resolves a folder (and optional file name) against the project root
	Path(folder string, name ...string) string
	// MakeDir creates a folder and returns its resolved path
	MakeDir(ctx context.Context, folder string) (string, error)
	// List returns the names of regular files in folder matching pattern
	List(ctx context.Context, folder, pattern string) ([]string, error)
	// Stems returns the stems of every file already present in folder
	Stems(ctx context.Context, folder string) (naming.StemSet, error)

	ReadFile(ctx context.Context, folder, name string) ([]byte, error)
	WriteFileAtomic(ctx context.Context, folder, name string, content []byte) error

	// ReadTree parses an XML file
	ReadTree(ctx context.Context, folder, name string) (*etree.Document, error)
	// WriteTree indents doc, sets a UTF-8 declaration and writes it atomically
	WriteTree(ctx context.Context, folder, name string, doc *etree.Document) error
}

// 🔧 Local implements FileStore on the local disk
type Local struct {
	root string
}

var _ FileStore = (*Local)(nil)

// 🏭 New creates a store rooted at root
func New(root string) *Local {
	return &Local{root: filepath.Clean(root)}
}

func (l *Local) Root() string {
	return l.root
}

func (l *Local) Path(folder string, name ...string) string {
	if filepath.IsAbs(folder) {
		return filepath.Join(append([]string{folder}, name...)...)
	}
	return filepath.Join(append([]string{l.root, folder}, name...)...)
}

func (l *Local) MakeDir(ctx context.Context, folder string) (string, error) {
	path := l.Path(folder)
	zerolog.Ctx(ctx).Debug().Str("path", path).Msg("creating directory")

	if err := os.MkdirAll(path, 0755); err != nil {
		return "", errors.Errorf("creating directory %s: %w", folder, err)
	}
	return path, nil
}

func (l *Local) List(ctx context.Context, folder, pattern string) ([]string, error) {
	logger := zerolog.Ctx(ctx)
	path := l.Path(folder)

	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Error().Str("folder", folder).Msg("folder does not exist")
			return nil, errors.Errorf("folder %s: %w", folder, ErrDirectoryMissing)
		}
		return nil, errors.Errorf("checking folder %s: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, errors.Errorf("%s is not a directory: %w", folder, ErrDirectoryMissing)
	}

	names, err := doublestar.Glob(os.DirFS(path), pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, errors.Errorf("listing %s in %s: %w", pattern, folder, err)
	}
	if len(names) == 0 {
		logger.Error().Str("folder", folder).Str("pattern", pattern).Msg("folder has no files")
		return nil, errors.Errorf("folder %s, pattern %s: %w", folder, pattern, ErrEmptyFileSet)
	}

	logger.Debug().Strs("files", names).Msg("found files")
	return names, nil
}

func (l *Local) Stems(ctx context.Context, folder string) (naming.StemSet, error) {
	names, err := l.List(ctx, folder, "*")
	if err != nil {
		// nothing produced yet
		if errors.Is(err, ErrDirectoryMissing) || errors.Is(err, ErrEmptyFileSet) {
			return naming.NewStemSet(), nil
		}
		return nil, err
	}
	return naming.NewStemSet(names...), nil
}

func (l *Local) ReadFile(ctx context.Context, folder, name string) ([]byte, error) {
	content, err := os.ReadFile(l.Path(folder, name))
	if err != nil {
		return nil, errors.Errorf("reading file %s: %w", name, err)
	}
	return content, nil
}

func (l *Local) WriteFileAtomic(ctx context.Context, folder, name string, content []byte) error {
	absPath := l.Path(folder, name)
	tempPath := absPath + ".tmp"

	if err := os.WriteFile(tempPath, content, 0644); err != nil {
		return errors.Errorf("writing temp file: %w", err)
	}

	// Rename temp file to target (atomic operation)
	if err := os.Rename(tempPath, absPath); err != nil {
		os.Remove(tempPath)
		return errors.Errorf("renaming temp file: %w", err)
	}

	return nil
}

func (l *Local) ReadTree(ctx context.Context, folder, name string) (*etree.Document, error) {
	zerolog.Ctx(ctx).Debug().Str("path", l.Path(folder, name)).Msg("reading feed tree")

	content, err := l.ReadFile(ctx, folder, name)
	if err != nil {
		return nil, err
	}

	doc, err := ParseXML(content)
	if err != nil {
		return nil, errors.Errorf("parsing feed %s: %w", name, err)
	}
	return doc, nil
}

func (l *Local) WriteTree(ctx context.Context, folder, name string, doc *etree.Document) error {
	content, err := Serialize(doc)
	if err != nil {
		return errors.Errorf("serializing %s: %w", name, err)
	}
	return l.WriteFileAtomic(ctx, folder, name, content)
}
