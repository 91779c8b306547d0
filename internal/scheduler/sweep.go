// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package scheduler publishes scheduled content. The sweep itself is a
// single store call; this package only decides when to run it.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mediaservice/internal/logging"
)

// Publisher publishes every due scheduled draft in one atomic update.
// store.ContentStore satisfies it.
type Publisher interface {
	PublishScheduled(ctx context.Context, now time.Time) (int64, error)
}

// Invalidator drops cached public responses after content changes.
type Invalidator interface {
	InvalidateAll(ctx context.Context) error
}

// DefaultSweepTimeout bounds a single sweep run.
const DefaultSweepTimeout = 30 * time.Second

// SweepJob runs the scheduled-publish sweep. It implements cron.Job.
type SweepJob struct {
	publisher   Publisher
	invalidator Invalidator
	now         func() time.Time
	timeout     time.Duration
}

// NewSweepJob creates a sweep job. invalidator may be nil.
func NewSweepJob(publisher Publisher, invalidator Invalidator) *SweepJob {
	return &SweepJob{
		publisher:   publisher,
		invalidator: invalidator,
		now:         time.Now,
		timeout:     DefaultSweepTimeout,
	}
}

// Sweep publishes everything due at the current time and returns the
// number of items published. When anything changed, cached feed responses
// are dropped; a cache failure is logged but does not fail the sweep.
func (j *SweepJob) Sweep(ctx context.Context) (int64, error) {
	now := j.now().UTC()
	n, err := j.publisher.PublishScheduled(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("sweep: %w", err)
	}

	if n > 0 {
		slog.InfoContext(ctx, "scheduled content published", "count", n, "at", now)
		if j.invalidator != nil {
			if err := j.invalidator.InvalidateAll(ctx); err != nil {
				slog.WarnContext(ctx, "cache invalidation after sweep failed", "error", err)
			}
		}
	} else {
		slog.DebugContext(ctx, "no scheduled content due", "at", now)
	}
	return n, nil
}

// Run is called by the cron engine. Each run gets its own trace id.
func (j *SweepJob) Run() {
	ctx := logging.WithTraceID(context.Background(), "job-publish-"+uuid.NewString())
	ctx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()

	if _, err := j.Sweep(ctx); err != nil {
		slog.ErrorContext(ctx, "scheduled publish sweep failed", "error", err)
	}
}
