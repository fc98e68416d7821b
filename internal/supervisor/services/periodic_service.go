// Pushward - End-to-End Encrypted Push Delivery
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/pushward

package services

import (
	"context"
	"time"
)

// PeriodicService runs a task on a fixed interval until canceled.
type PeriodicService struct {
	name     string
	interval time.Duration
	task     func(ctx context.Context)
}

// NewPeriodicService creates a periodic task. A non-positive interval means
// one minute.
func NewPeriodicService(name string, interval time.Duration, task func(ctx context.Context)) *PeriodicService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &PeriodicService{name: name, interval: interval, task: task}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.task(ctx)
		}
	}
}

// String names the service in supervisor logs.
func (p *PeriodicService) String() string {
	return p.name
}
