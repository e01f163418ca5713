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
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// Environment variables that override folders and the public base URL
const (
	EnvFeedsFolder    = "FEEDS_FOLDER"
	EnvImageFolder    = "IMAGE_FOLDER"
	EnvFrameFolder    = "FRAME_FOLDER"
	EnvNewImageFolder = "NEW_IMAGE_FOLDER"
	EnvNewFeedsFolder = "NEW_FEEDS_FOLDER"
	EnvBaseURL        = "BASE_URL"
	EnvFeedURLs       = "FEED_URLS"
)

// DotEnvFile is read from the project root unless LoadOptions.EnvFile says otherwise
const DotEnvFile = ".env"

// 🔧 LoadOptions controls where configuration comes from
type LoadOptions struct {
	// Path is an optional config file (.yaml, .yml, .json, .hcl or .feedframe)
	Path string
	// Root is the project root, defaults to the working directory
	Root string
	// EnvFile defaults to Root/.env; a missing file is not an error
	EnvFile string
	// Environ defaults to os.Environ()
	Environ []string
}

// 🎯 Load resolves the configuration. Later sources win:
// defaults, then the config file, then .env, then the process environment.
func Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	logger := zerolog.Ctx(ctx)

	root, err := resolveRoot(opts.Root)
	if err != nil {
		return nil, err
	}

	env, err := loadEnv(ctx, root, opts)
	if err != nil {
		return nil, err
	}

	cfg := Default(root)

	if opts.Path != "" {
		logger.Debug().Str("path", opts.Path).Msg("loading configuration file")
		f, err := LoadFile(ctx, opts.Path, env)
		if err != nil {
			return nil, err
		}
		if err := f.ApplyTo(cfg); err != nil {
			return nil, errors.Errorf("applying %s: %w", opts.Path, err)
		}
	}

	ApplyEnv(cfg, env)

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	logger.Debug().
		Str("root", cfg.Root).
		Str("base_url", cfg.BaseURL).
		Int("feeds", len(cfg.FeedURLs)).
		Msg("configuration loaded")
	return cfg, nil
}

// 📄 LoadFile reads and parses a config file. The format is chosen from the
// extension; a .feedframe file is tried as YAML first, then HCL.
func LoadFile(ctx context.Context, path string, env map[string]string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	if filepath.Ext(path) == ".feedframe" || filepath.Base(path) == ".feedframe" {
		f, yamlErr := (&YAMLParser{}).Parse(ctx, data, env)
		if yamlErr == nil {
			return f, nil
		}
		f, err := (&HCLParser{}).Parse(ctx, data, env)
		if err == nil {
			return f, nil
		}
		return nil, errors.Errorf("failed to parse %s as YAML (%s) or HCL: %w", path, yamlErr.Error(), err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	f, err := p.Parse(ctx, data, env)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	return f, nil
}

// 🌱 ApplyEnv overrides folders, the base URL and the feed list from env
func ApplyEnv(cfg *Config, env map[string]string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(env[key]); v != "" {
			*dst = v
		}
	}

	set(&cfg.Folders.Feeds, EnvFeedsFolder)
	set(&cfg.Folders.Images, EnvImageFolder)
	set(&cfg.Folders.Frame, EnvFrameFolder)
	set(&cfg.Folders.FramedImages, EnvNewImageFolder)
	set(&cfg.Folders.NewFeeds, EnvNewFeedsFolder)
	set(&cfg.BaseURL, EnvBaseURL)

	if urls := SplitList(env[EnvFeedURLs]); len(urls) > 0 {
		cfg.FeedURLs = urls
	}
}

// SplitList splits on commas and whitespace, dropping empty entries
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\n' || r == '\t' || r == '\r'
	})
}

func resolveRoot(root string) (string, error) {
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", errors.Errorf("getting working directory: %w", err)
		}
		root = wd
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", errors.Errorf("resolving root %s: %w", root, err)
	}
	return abs, nil
}

// loadEnv merges the dotenv file under the process environment, which wins
func loadEnv(ctx context.Context, root string, opts LoadOptions) (map[string]string, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = filepath.Join(root, DotEnvFile)
	}

	env := map[string]string{}
	if _, err := os.Stat(envFile); err == nil {
		dotenv, err := godotenv.Read(envFile)
		if err != nil {
			return nil, errors.Errorf("reading %s: %w", envFile, err)
		}
		for k, v := range dotenv {
			env[k] = v
		}
		zerolog.Ctx(ctx).Debug().Str("file", envFile).Int("vars", len(dotenv)).Msg("dotenv loaded")
	} else if opts.EnvFile != "" {
		return nil, errors.Errorf("env file %s: %w", envFile, err)
	}

	environ := opts.Environ
	if environ == nil {
		environ = os.Environ()
	}
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			env[k] = v
		}
	}
	return env, nil
}
