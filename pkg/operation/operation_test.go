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

package operation

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/walteh/feedframe/pkg/filestore"
	"github.com/walteh/feedframe/pkg/status"
	"gitlab.com/tozd/go/errors"
)

type fakeResult struct {
	count int
}

func (r fakeResult) Report() status.Report {
	return status.NewReport("fake").Add("count", r.count)
}

func fakeStage(name string, count int, err error, calls *[]string) Operation {
	return Stage(name, func(ctx context.Context) (fakeResult, error) {
		*calls = append(*calls, name)
		return fakeResult{count: count}, err
	})
}

func TestStage(t *testing.T) {
	var calls []string
	op := fakeStage("frame images", 3, nil, &calls)

	assert.Equal(t, "frame images", op.Name())

	report, err := op.Execute(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "frame images", report.Stage)
	assert.Equal(t, 3, report.Get("count"))
	assert.Equal(t, []string{"frame images"}, calls)
}

func TestRunner(t *testing.T) {
	boom := errors.Base("boom")

	tests := []struct {
		name        string
		ops         func(calls *[]string) []Operation
		wantCalls   []string
		wantReports int
		wantSkipped []bool
		wantErr     error
	}{
		{
			name: "all_stages_succeed",
			ops: func(calls *[]string) []Operation {
				return []Operation{
					fakeStage("a", 1, nil, calls),
					fakeStage("b", 2, nil, calls),
				}
			},
			wantCalls:   []string{"a", "b"},
			wantSkipped: []bool{false, false},
		},
		{
			name: "empty_file_set_is_downgraded",
			ops: func(calls *[]string) []Operation {
				return []Operation{
					fakeStage("a", 0, errors.Errorf("listing: %w", filestore.ErrEmptyFileSet), calls),
					fakeStage("b", 2, nil, calls),
				}
			},
			wantCalls:   []string{"a", "b"},
			wantSkipped: []bool{true, false},
		},
		{
			name: "other_errors_abort",
			ops: func(calls *[]string) []Operation {
				return []Operation{
					fakeStage("a", 1, nil, calls),
					fakeStage("b", 0, errors.Errorf("loading: %w", boom), calls),
					fakeStage("c", 1, nil, calls),
				}
			},
			wantCalls:   []string{"a", "b"},
			wantSkipped: []bool{false, false},
			wantErr:     boom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := zerolog.New(zerolog.NewTestWriter(t))
			var calls []string
			var hooked []string

			runner := NewRunner(&logger, WithReportHook(func(r status.Report) {
				hooked = append(hooked, r.Stage)
			}))

			reports, err := runner.Run(context.Background(), tt.ops(&calls)...)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				require.NoError(t, err)
			}

			assert.Equal(t, tt.wantCalls, calls)
			assert.Equal(t, tt.wantCalls, hooked)
			require.Len(t, reports, len(tt.wantSkipped))
			for i, skipped := range tt.wantSkipped {
				assert.Equal(t, skipped, reports[i].Skipped, "report %d", i)
			}
		})
	}
}

func TestRunnerCancelled(t *testing.T) {
	logger := zerolog.New(zerolog.NewTestWriter(t))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls []string
	reports, err := NewRunner(&logger).Run(ctx, fakeStage("a", 1, nil, &calls))
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Empty(t, reports)
	assert.Empty(t, calls)
}

func TestTimed(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())

	err := Timed(ctx, "get_images", func(ctx context.Context) error { return nil })
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"message":"started"`)

	var finished map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &finished))
	assert.Equal(t, "get_images", finished["function"])
	assert.Contains(t, finished, "seconds")
	assert.Contains(t, finished, "minutes")
}

func lastRecord(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	var record map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(lines[len(lines)-1]), &record))
	return record
}

func TestScript(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := zerolog.New(&buf).WithContext(context.Background())

		err := Script(ctx, "main", func(ctx context.Context) error { return nil })
		require.NoError(t, err)

		record := lastRecord(t, &buf)
		assert.Equal(t, ScriptSuccess, record["status"])
		assert.Equal(t, "main", record["function_name"])
		assert.Nil(t, record["error_type"])
		assert.Nil(t, record["error_message"])
		assert.Equal(t, float64(1), record["endlogging"])
		assert.Regexp(t, `^\d{4}-\d{2}-\d{2}$`, record["date"])
	})

	t.Run("error_is_returned_unchanged", func(t *testing.T) {
		var buf bytes.Buffer
		ctx := zerolog.New(&buf).WithContext(context.Background())
		want := errors.Errorf("running frame images: %w", filestore.ErrDirectoryMissing)

		err := Script(ctx, "main", func(ctx context.Context) error { return want })
		assert.Equal(t, want, err)

		record := lastRecord(t, &buf)
		assert.Equal(t, ScriptError, record["status"])
		assert.Equal(t, "directory missing", record["error_type"])
		assert.Equal(t, want.Error(), record["error_message"])
		assert.Equal(t, float64(1), record["endlogging"])
	})
}
