package storage

import (
	"testing"

	"sysflow/internal/builtin"
)

func TestSaveListLoadRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	if err := store.Init(); err != nil {
		t.Fatal(err)
	}

	s, err := builtin.Build("decay", nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(10); err != nil {
		t.Fatal(err)
	}

	runID, err := store.Save("decay", 1, 10, s.Results())
	if err != nil {
		t.Fatal(err)
	}

	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].ID != runID {
		t.Fatalf("List() = %+v, want the saved run", runs)
	}
	if runs[0].Steps != 10 {
		t.Errorf("Steps = %d, want 10", runs[0].Steps)
	}

	meta, err := store.Load(runID)
	if err != nil {
		t.Fatal(err)
	}
	if meta.Model != "decay" || meta.Dt != 1 {
		t.Errorf("Load() = %+v", meta)
	}

	times, names, rows, err := store.LoadSeries(runID)
	if err != nil {
		t.Fatal(err)
	}
	if len(times) != 10 || len(rows) != 10 {
		t.Fatalf("loaded %d times %d rows, want 10 each", len(times), len(rows))
	}
	if len(names) != len(s.Results().Names()) {
		t.Errorf("names = %v", names)
	}
	// Formatted to 6 decimal places; compare against the same rounding.
	want := s.Results().Row(9)
	for j, v := range rows[9] {
		if diff := v - want[j]; diff > 5e-7 || diff < -5e-7 {
			t.Errorf("row 9 col %d = %v, want %v", j, v, want[j])
		}
	}
}

func TestListEmptyBaseDir(t *testing.T) {
	store := New(t.TempDir() + "/never-created")
	runs, err := store.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 0 {
		t.Errorf("List() = %v, want empty", runs)
	}
}

func TestLoadMissingRun(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Load("ghost"); err == nil {
		t.Error("expected error for missing run")
	}
	if _, _, _, err := store.LoadSeries("ghost"); err == nil {
		t.Error("expected error for missing run")
	}
}
