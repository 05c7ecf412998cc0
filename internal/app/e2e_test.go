package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"grievancedesk/internal/classifier"
	"grievancedesk/internal/config"
	"grievancedesk/internal/domain"
	"grievancedesk/internal/sla"
	"grievancedesk/internal/storage/sqlite"
)

type downService struct{}

func (downService) Classify(ctx context.Context, text string) (classifier.RemoteResult, error) {
	return classifier.RemoteResult{}, errors.New("service unavailable")
}

// Full degraded-path scenario: the remote classifier is down, the
// keyword fallback assigns the department, the grievance is stored and
// the SLA monitor reports it overdue once its 2-day window passes.
func TestSubmissionSurvivesClassifierOutage(t *testing.T) {
	base := time.Date(2025, time.March, 10, 9, 0, 0, 0, time.UTC)
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "e2e-test.db"), func() time.Time { return base })
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer store.Close()

	core := &Core{
		Config: config.Config{
			ClassifierDebounceMillis: 10,
			ClassifyTimeoutSeconds:   5,
		},
		Store:   store,
		Service: downService{},
	}

	session := core.NewSession(nil)
	defer session.Close()

	session.SetText("Street light not working near Main Road for 5 days")
	session.Flush()

	result, ok := session.Result()
	if !ok {
		t.Fatal("expected a resolved classification")
	}
	if !result.IsValid {
		t.Fatal("keyword fallback should validate the complaint")
	}
	if result.DepartmentID != "dept_electrical" {
		t.Fatalf("expected dept_electrical, got %s", result.DepartmentID)
	}
	if result.Confidence != domain.ConfidenceLow {
		t.Fatalf("expected low confidence from a single keyword hit, got %s", result.Confidence)
	}

	g, err := store.Create("citizen_1", "Street light not working near Main Road for 5 days", result.DepartmentID, domain.GrievanceMeta{})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Electrical carries a 2-day window.
	atCreation := sla.ComputeFor(g, g.CreatedAt)
	if atCreation.ProgressPercent != 0 || atCreation.Overdue {
		t.Fatalf("fresh grievance should be at 0%% and on time: %+v", atCreation)
	}

	after3d := sla.ComputeFor(g, g.CreatedAt.Add(3*24*time.Hour))
	if !after3d.Overdue {
		t.Fatal("grievance should be overdue 3 days into a 2-day window")
	}
	if after3d.ProgressPercent != 100 {
		t.Fatalf("progress should be clamped at 100, got %f", after3d.ProgressPercent)
	}

	stats, err := store.Stats("citizen_1")
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.TotalGrievances != 1 || stats.PendingGrievances != 1 {
		t.Fatalf("unexpected stats: %+v", stats)
	}
}
