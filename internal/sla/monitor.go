// Package sla computes resolution deadlines and live progress for
// grievances. Everything here is a pure function of the grievance
// fields, the department registry and an explicit "now", so callers
// inject a clock and tests stay deterministic.
package sla

import (
	"time"

	"grievancedesk/internal/domain"
	"grievancedesk/internal/registry"
)

// Status is one observation of a grievance against its SLA window.
type Status struct {
	Deadline        time.Time
	Elapsed         time.Duration
	Remaining       time.Duration // negative once past the deadline
	ProgressPercent float64       // clamped to [0, 100]
	Overdue         bool
}

// Compute derives the SLA status of a pending grievance created at
// createdAt, observed at now. Unknown departments fall back to the
// registry's default 24h window so monitoring is always defined.
func Compute(createdAt time.Time, departmentID string, now time.Time) Status {
	window := registry.ResolutionTime(departmentID)
	deadline := createdAt.Add(window)

	elapsed := now.Sub(createdAt)
	progress := float64(elapsed) / float64(window) * 100
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}

	return Status{
		Deadline:        deadline,
		Elapsed:         elapsed,
		Remaining:       deadline.Sub(now),
		ProgressPercent: progress,
		Overdue:         now.After(deadline),
	}
}

// ComputeFor evaluates a grievance record. Completed grievances are
// pinned at 100% progress and judged overdue against their completion
// time rather than now, so historical truth stops moving once the item
// is closed.
func ComputeFor(g domain.Grievance, now time.Time) Status {
	if g.Completed() && !g.CompletedAt.IsZero() {
		st := Compute(g.CreatedAt, g.DepartmentID, g.CompletedAt)
		st.ProgressPercent = 100
		st.Overdue = g.CompletedAt.After(st.Deadline)
		return st
	}
	return Compute(g.CreatedAt, g.DepartmentID, now)
}
