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
	"context"
	"time"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

const (
	ScriptSuccess = "SUCCESS"
	ScriptError   = "ERROR"

	dateFormat = "2006-01-02"
)

// 📜 ScriptRecord is the single structured line emitted at the end of a run
type ScriptRecord struct {
	Date          string
	Status        string
	FunctionName  string
	ExecutionTime float64
	ErrorType     string
	ErrorMessage  string
}

func (s ScriptRecord) MarshalZerologObject(e *zerolog.Event) {
	e.Str("date", s.Date).
		Str("status", s.Status).
		Str("function_name", s.FunctionName).
		Float64("execution_time", s.ExecutionTime)
	if s.Status == ScriptError {
		e.Str("error_type", s.ErrorType).Str("error_message", s.ErrorMessage)
	} else {
		e.Interface("error_type", nil).Interface("error_message", nil)
	}
	e.Int("endlogging", 1)
}

// 🎬 Script runs fn as the whole program, logs one ScriptRecord describing
// the outcome and returns fn's error unchanged.
func Script(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	logger := zerolog.Ctx(ctx)
	start := time.Now()

	logger.Info().Str("function", name).Str("date", start.Format(dateFormat)).Str("time", start.Format(time.TimeOnly)).Msg("script started")

	err := fn(ctx)

	record := ScriptRecord{
		Date:          start.Format(dateFormat),
		Status:        ScriptSuccess,
		FunctionName:  name,
		ExecutionTime: round(time.Since(start).Seconds(), 3),
	}
	if err != nil {
		record.Status = ScriptError
		record.ErrorType = ErrorType(err)
		record.ErrorMessage = err.Error()
	}

	logger.Info().EmbedObject(record).Msg("script finished")
	return err
}

// ErrorType names the root cause of err, the innermost error of its chain
func ErrorType(err error) string {
	for {
		next := errors.Unwrap(err)
		if next == nil {
			return err.Error()
		}
		err = next
	}
}
