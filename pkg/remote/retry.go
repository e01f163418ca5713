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

package remote

import (
	"context"
	"time"
)

// 🔁 RetryPolicy bounds how often a request is retried after a transient
// network failure. The delay before attempt n+1 is Delays[n-1]; when the
// schedule is shorter than the attempt cap its last entry repeats.
type RetryPolicy struct {
	MaxAttempts int
	Delays      []time.Duration
}

// DefaultFeedPolicy is three attempts with 2s, 5s and 10s delays.
func DefaultFeedPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Delays:      []time.Duration{2 * time.Second, 5 * time.Second, 10 * time.Second},
	}
}

// SingleAttempt never retries.
func SingleAttempt() RetryPolicy {
	return RetryPolicy{MaxAttempts: 1}
}

// Attempts returns the attempt cap, never less than one
func (p RetryPolicy) Attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

// Delay returns the wait after the given failed attempt (1-based)
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if len(p.Delays) == 0 || attempt < 1 {
		return 0
	}
	if attempt-1 < len(p.Delays) {
		return p.Delays[attempt-1]
	}
	return p.Delays[len(p.Delays)-1]
}

// SleepFunc blocks for d or until ctx is done
type SleepFunc func(ctx context.Context, d time.Duration) error

func sleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
