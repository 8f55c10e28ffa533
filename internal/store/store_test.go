package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"bayesarima/pkg/models/bsarima"
)

func testRecord(runID uuid.UUID, created time.Time) Record {
	return Record{
		RunID:         runID,
		CreatedAt:     created,
		Series:        "Consumption",
		Observations:  187,
		Model:         "BSARIMA(1,0,3)",
		PriorLocation: 0.6,
		PriorScale:    0.2,
		Seed:          874310,
		WAIC:          215.4,
	}
}

func TestArchiveRoundTrip(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	runID := uuid.New()
	params := []bsarima.ParamSummary{
		{Name: "mu", Mean: 0.31, SD: 0.05, Q5: 0.22, Q50: 0.31, Q95: 0.40, NEff: 950, RHat: 1.01},
		{Name: "sigma", Mean: 0.60, SD: 0.03, Q5: 0.55, Q50: 0.60, Q95: 0.65, NEff: 1100, RHat: 1.00},
		{Name: "phi1", Mean: 0.58, SD: 0.08, Q5: 0.45, Q50: 0.58, Q95: 0.71, NEff: 800, RHat: 1.02},
	}

	created := time.Date(2026, 5, 11, 9, 30, 0, 0, time.UTC)
	if err := s.ArchiveRun(testRecord(runID, created), params); err != nil {
		t.Fatalf("ArchiveRun: %v", err)
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	got := runs[0]
	if got.RunID != runID {
		t.Errorf("RunID = %s, want %s", got.RunID, runID)
	}
	if !got.CreatedAt.Equal(created) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, created)
	}
	if got.Seed != 874310 {
		t.Errorf("Seed = %d, want 874310", got.Seed)
	}
	if got.WAIC != 215.4 {
		t.Errorf("WAIC = %v, want 215.4", got.WAIC)
	}

	stored, err := s.Params(runID)
	if err != nil {
		t.Fatalf("Params: %v", err)
	}
	if len(stored) != len(params) {
		t.Fatalf("got %d params, want %d", len(stored), len(params))
	}
	for i, p := range params {
		if stored[i] != p {
			t.Errorf("param %d = %+v, want %+v", i, stored[i], p)
		}
	}
}

func TestRunsOrderedNewestFirst(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	older := testRecord(uuid.New(), time.Date(2026, 5, 10, 8, 0, 0, 0, time.UTC))
	newer := testRecord(uuid.New(), time.Date(2026, 5, 11, 8, 0, 0, 0, time.UTC))
	for _, rec := range []Record{older, newer} {
		if err := s.ArchiveRun(rec, nil); err != nil {
			t.Fatalf("ArchiveRun: %v", err)
		}
	}

	runs, err := s.Runs()
	if err != nil {
		t.Fatalf("Runs: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].RunID != newer.RunID || runs[1].RunID != older.RunID {
		t.Error("runs are not ordered newest first")
	}
}

func TestDuplicateRunRejected(t *testing.T) {
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()

	rec := testRecord(uuid.New(), time.Now())
	if err := s.ArchiveRun(rec, nil); err != nil {
		t.Fatalf("first ArchiveRun: %v", err)
	}
	if err := s.ArchiveRun(rec, nil); err == nil {
		t.Error("second ArchiveRun with same id succeeded, want error")
	}
}
