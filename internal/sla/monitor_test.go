package sla

import (
	"context"
	"testing"
	"time"

	"grievancedesk/internal/domain"
	"grievancedesk/internal/registry"
)

var base = time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestComputeProgressBoundaries(t *testing.T) {
	window := registry.ResolutionTime("dept_electrical") // 48h

	st := Compute(base, "dept_electrical", base)
	if st.ProgressPercent != 0 {
		t.Fatalf("progress at creation should be 0, got %f", st.ProgressPercent)
	}
	if st.Overdue {
		t.Fatal("fresh grievance must not be overdue")
	}
	if st.Remaining != window {
		t.Fatalf("remaining at creation should equal the window, got %s", st.Remaining)
	}

	deadline := base.Add(window)
	st = Compute(base, "dept_electrical", deadline)
	if st.ProgressPercent != 100 {
		t.Fatalf("progress at deadline should be 100, got %f", st.ProgressPercent)
	}
	if st.Overdue {
		t.Fatal("overdue is strict: exactly at the deadline is not overdue")
	}
}

func TestComputeOverdueBoundaries(t *testing.T) {
	deadline := base.Add(registry.ResolutionTime("dept_electrical"))

	if st := Compute(base, "dept_electrical", deadline.Add(-time.Second)); st.Overdue {
		t.Fatal("one second before the deadline must not be overdue")
	}
	st := Compute(base, "dept_electrical", deadline.Add(time.Second))
	if !st.Overdue {
		t.Fatal("one second past the deadline must be overdue")
	}
	if st.Remaining != -time.Second {
		t.Fatalf("remaining should go negative past the deadline, got %s", st.Remaining)
	}
	if st.ProgressPercent != 100 {
		t.Fatalf("progress is clamped at 100, got %f", st.ProgressPercent)
	}
}

func TestComputeHalfway(t *testing.T) {
	st := Compute(base, "dept_electrical", base.Add(24*time.Hour))
	if st.ProgressPercent != 50 {
		t.Fatalf("expected 50%% halfway through a 48h window, got %f", st.ProgressPercent)
	}
}

func TestComputeUnknownDepartmentUsesDefaultWindow(t *testing.T) {
	st := Compute(base, "dept_vanished", base)
	if st.Deadline != base.Add(registry.DefaultResolution) {
		t.Fatalf("unknown department should get the 24h default, deadline=%s", st.Deadline)
	}
}

func TestComputeForCompletedPinsProgress(t *testing.T) {
	deadline := base.Add(48 * time.Hour)

	early := domain.Grievance{
		DepartmentID: "dept_electrical",
		Status:       domain.StatusCompleted,
		CreatedAt:    base,
		CompletedAt:  base.Add(time.Hour),
	}
	// "now" is well past the deadline; the historical verdict must not move.
	st := ComputeFor(early, deadline.Add(100*time.Hour))
	if st.Overdue {
		t.Fatal("completed before the deadline is never overdue")
	}
	if st.ProgressPercent != 100 {
		t.Fatalf("completed grievances pin progress at 100, got %f", st.ProgressPercent)
	}

	late := early
	late.CompletedAt = deadline.Add(time.Minute)
	st = ComputeFor(late, deadline.Add(100*time.Hour))
	if !st.Overdue {
		t.Fatal("completed after the deadline stays overdue")
	}
}

func TestComputeForPendingTracksNow(t *testing.T) {
	g := domain.Grievance{
		DepartmentID: "dept_water", // 5h window
		Status:       domain.StatusPending,
		CreatedAt:    base,
	}
	st := ComputeFor(g, base.Add(6*time.Hour))
	if !st.Overdue {
		t.Fatal("pending grievance past its 5h window must be overdue")
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{2*24*time.Hour + 3*time.Hour + 4*time.Minute, "2d 3h 4m"},
		{3*time.Hour + 4*time.Minute + 5*time.Second, "3h 4m 5s"},
		{4*time.Minute + 5*time.Second, "4m 5s"},
		{9 * time.Second, "9s"},
		{0, "0s"},
		{-90 * time.Second, "1m 30s"}, // overdue amounts render as magnitude
	}
	for _, tc := range tests {
		if got := FormatDuration(tc.d); got != tc.want {
			t.Fatalf("FormatDuration(%s) = %q, want %q", tc.d, got, tc.want)
		}
	}
}

func TestTrackEmitsAndStopsOnCancel(t *testing.T) {
	g := domain.Grievance{
		DepartmentID: "dept_electrical",
		Status:       domain.StatusPending,
		CreatedAt:    base,
	}
	now := base.Add(time.Hour)
	clock := func() time.Time { return now }

	ctx, cancel := context.WithCancel(context.Background())
	ch := Track(ctx, g, time.Second, clock)

	st, ok := <-ch
	if !ok {
		t.Fatal("expected an immediate first emission")
	}
	if st.Overdue {
		t.Fatal("unexpected overdue status")
	}

	cancel()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return // channel closed: tracker wound down
			}
		case <-deadline:
			t.Fatal("tracker did not stop after cancellation")
		}
	}
}

func TestTrackCompletedEmitsTerminalStatusOnce(t *testing.T) {
	g := domain.Grievance{
		DepartmentID: "dept_electrical",
		Status:       domain.StatusCompleted,
		CreatedAt:    base,
		CompletedAt:  base.Add(time.Hour),
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := Track(ctx, g, time.Second, func() time.Time { return base.Add(50 * time.Hour) })

	st, ok := <-ch
	if !ok {
		t.Fatal("expected the terminal status")
	}
	if st.Overdue || st.ProgressPercent != 100 {
		t.Fatalf("unexpected terminal status %+v", st)
	}
	if _, ok := <-ch; ok {
		t.Fatal("completed grievances need exactly one emission")
	}
}
