package sla

import (
	"context"
	"time"

	"grievancedesk/internal/domain"
)

// DefaultTrackInterval is the recompute cadence while a grievance is
// pending.
const DefaultTrackInterval = time.Second

// Track emits a fresh Status for the grievance every interval until ctx
// is canceled. A completed grievance gets exactly one emission; its
// terminal status is fixed and needs no further recomputation. The
// returned channel is closed on every exit path, and the ticker is
// always released.
func Track(ctx context.Context, g domain.Grievance, interval time.Duration, now func() time.Time) <-chan Status {
	if interval < DefaultTrackInterval {
		interval = DefaultTrackInterval
	}
	if now == nil {
		now = time.Now
	}

	out := make(chan Status, 1)
	go func() {
		defer close(out)

		emit := func() bool {
			select {
			case out <- ComputeFor(g, now()):
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !emit() {
			return
		}
		if g.Completed() {
			return
		}

		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !emit() {
					return
				}
			}
		}
	}()
	return out
}
