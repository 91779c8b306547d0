// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"
)

// DefaultSpec runs the sweep once a minute.
const DefaultSpec = "@every 1m"

// Manager owns the cron engine that triggers the sweep.
type Manager struct {
	engine *cron.Cron
	spec   string
	sweep  cron.Job
}

// NewManager creates a manager that runs sweep on spec (standard five-field
// cron syntax or a descriptor such as "@every 30s"). An overlapping run is
// skipped instead of queued.
func NewManager(spec string, sweep cron.Job) *Manager {
	if spec == "" {
		spec = DefaultSpec
	}
	logger := slogCronLogger{}
	return &Manager{
		engine: cron.New(cron.WithLogger(logger), cron.WithChain(
			cron.Recover(logger),
			cron.SkipIfStillRunning(logger),
		)),
		spec:  spec,
		sweep: sweep,
	}
}

// RegisterJobs adds the sweep to the engine.
func (m *Manager) RegisterJobs() error {
	if _, err := m.engine.AddJob(m.spec, m.sweep); err != nil {
		return fmt.Errorf("register sweep %q: %w", m.spec, err)
	}
	return nil
}

// Start runs the engine in its own goroutine.
func (m *Manager) Start() {
	slog.Info("scheduler started", "spec", m.spec)
	m.engine.Start()
}

// Stop halts the engine and waits for a running sweep to finish or ctx
// to expire.
func (m *Manager) Stop(ctx context.Context) {
	done := m.engine.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
		slog.Warn("scheduler stop timed out")
	}
	slog.Info("scheduler stopped")
}

// slogCronLogger routes cron's internal logging to slog.
type slogCronLogger struct{}

func (slogCronLogger) Info(msg string, keysAndValues ...any) {
	slog.Debug("cron: "+msg, keysAndValues...)
}

func (slogCronLogger) Error(err error, msg string, keysAndValues ...any) {
	slog.Error("cron: "+msg, append(keysAndValues, "error", err)...)
}
