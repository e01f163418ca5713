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

package main

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/rs/zerolog"
)

// 🏷️ buildInfo describes the running binary
type buildInfo struct {
	Version  string
	Revision string
	Time     string
	Dirty    bool
	Go       string
	Platform string
}

// 🔍 readBuildInfo collects module and vcs stamps embedded by the go tool
func readBuildInfo() buildInfo {
	info := buildInfo{
		Version:  "dev",
		Go:       runtime.Version(),
		Platform: runtime.GOOS + "/" + runtime.GOARCH,
	}

	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return info
	}
	if bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		info.Version = bi.Main.Version
	}
	for _, s := range bi.Settings {
		switch s.Key {
		case "vcs.revision":
			info.Revision = s.Value
		case "vcs.time":
			info.Time = s.Value
		case "vcs.modified":
			info.Dirty = s.Value == "true"
		}
	}
	return info
}

// shortRevision trims a commit hash to the usual 12 characters
func (b buildInfo) shortRevision() string {
	if len(b.Revision) > 12 {
		return b.Revision[:12]
	}
	return b.Revision
}

func (b buildInfo) MarshalZerologObject(e *zerolog.Event) {
	e.Str("version", b.Version).
		Str("revision", b.shortRevision()).
		Bool("dirty", b.Dirty).
		Str("go", b.Go).
		Str("platform", b.Platform)
}

// 📝 String renders the text printed by --version
func (b buildInfo) String() string {
	var sb strings.Builder
	sb.WriteString(b.Version)
	if rev := b.shortRevision(); rev != "" {
		fmt.Fprintf(&sb, " (%s", rev)
		if b.Dirty {
			sb.WriteString(", modified")
		}
		sb.WriteString(")")
	}
	if b.Time != "" {
		fmt.Fprintf(&sb, " built %s", b.Time)
	}
	fmt.Fprintf(&sb, " %s %s", b.Go, b.Platform)
	return sb.String()
}
