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

package log

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/feedframe/pkg/status"
)

func TestLogger(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	tests := []struct {
		name      string
		op        func(logger *Logger)
		wantLines []string
	}{
		{
			name: "stage_with_items",
			op: func(logger *Logger) {
				logger.StartStage(context.Background(), StageOperation{
					Name:   "frame images",
					Source: "old_images",
					Target: "new_images",
				})
				logger.LogItem("offer1_0.png", status.OutcomeWritten)
				logger.LogItem("offer2_0.jpeg", status.OutcomeFailed)
				logger.EndStage(context.Background())
			},
			wantLines: []string{
				"[frame images]",
				"◆ old_images → new_images",
				"✓ offer1_0.png                        frame images    written",
				"✗ offer2_0.jpeg                       frame images    failed",
				"└ 1 written, 0 skipped, 1 failed",
			},
		},
		{
			name: "stage_without_items_has_no_tally",
			op: func(logger *Logger) {
				logger.StartStage(context.Background(), StageOperation{Name: "rewrite feeds"})
				logger.EndStage(context.Background())
				logger.EndStage(context.Background())
			},
			wantLines: []string{
				"[rewrite feeds]",
			},
		},
		{
			name: "item_outside_stage",
			op: func(logger *Logger) {
				logger.LogItem("x_0.png", status.OutcomeSkipped)
			},
			wantLines: []string{
				"- x_0.png                                             skipped",
			},
		},
		{
			name: "reports",
			op: func(logger *Logger) {
				logger.LogReport(status.NewReport("frame images").Add("framed", 2).Add("skipped", 1))
				logger.LogReport(status.NewReport("fetch images").WithSkip("no files to process"))
			},
			wantLines: []string{
				"📊 frame images: framed=2, skipped=1",
				"⏭️  fetch images: skipped (no files to process)",
			},
		},
		{
			name: "messages",
			op: func(logger *Logger) {
				logger.Infof("root %s", "/srv/uvi")
				logger.Warnf("%d of %d stages skipped", 1, 4)
				logger.Errorf("pipeline stopped")
				logger.Successf("pipeline finished")
			},
			wantLines: []string{
				"ℹ️  root /srv/uvi",
				"⚠️  1 of 4 stages skipped",
				"❌ pipeline stopped",
				"✅ pipeline finished",
			},
		},
		{
			name: "header_and_newline",
			op: func(logger *Logger) {
				logger.Header("running the pipeline")
				logger.Infof("first")
				logger.LogNewline()
				logger.Infof("second")
			},
			wantLines: []string{
				"feedframe • running the pipeline",
				"",
				"ℹ️  first",
				"",
				"ℹ️  second",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := &bytes.Buffer{}
			logger := New(buf, zerolog.New(zerolog.NewTestWriter(t)))

			tt.op(logger)

			lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
			require.Len(t, lines, len(tt.wantLines), "output:\n%s", buf.String())
			for i, want := range tt.wantLines {
				assert.Equal(t, want, strings.TrimSpace(lines[i]), "line %d", i)
			}
		})
	}
}

func TestLoggerMirrorsToZerolog(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	var events bytes.Buffer
	logger := New(&bytes.Buffer{}, zerolog.New(&events))

	logger.Warnf("stage %s skipped", "fetch images")
	logger.LogReport(status.NewReport("frame images").Add("framed", 3))

	out := events.String()
	assert.Contains(t, out, `"level":"warn"`)
	assert.Contains(t, out, `"message":"stage fetch images skipped"`)
	assert.Contains(t, out, `"stage":"frame images"`)
	assert.Contains(t, out, `"framed":3`)
}

func TestLogItemAsItemFunc(t *testing.T) {
	color.NoColor = true
	defer func() { color.NoColor = false }()

	buf := &bytes.Buffer{}
	logger := New(buf, zerolog.Nop())

	var notify status.ItemFunc = logger.LogItem
	notify.Notify("a_0.png", status.OutcomeWritten)

	assert.Contains(t, buf.String(), "a_0.png")
	assert.Equal(t, 1, logger.counts[status.OutcomeWritten])
}
