package store

import "testing"

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	return s
}

func TestRecordAndListRuns(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	id, err := s.RecordRun("removed", "", 3, 1)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}
	if id == 0 {
		t.Fatal("expected nonzero run id")
	}
	if err := s.RecordFile(id, "/repo/pkgsinfo/A-1.plist", "pkginfo", "removed", ""); err != nil {
		t.Fatalf("RecordFile failed: %v", err)
	}
	if err := s.RecordFile(id, "/repo/pkgs/a.pkg", "pkg", "failed", "permission denied"); err != nil {
		t.Fatalf("RecordFile failed: %v", err)
	}
	if err := s.RecordName(id, "A"); err != nil {
		t.Fatalf("RecordName failed: %v", err)
	}

	id2, err := s.RecordRun("archived", "/archive", 1, 0)
	if err != nil {
		t.Fatalf("RecordRun failed: %v", err)
	}

	runs, err := s.ListRuns(0)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	// Newest first.
	if runs[0].ID != id2 || runs[1].ID != id {
		t.Errorf("unexpected order: %d then %d", runs[0].ID, runs[1].ID)
	}
	if runs[1].Mode != "removed" || runs[1].FileCount != 3 || runs[1].NameCount != 1 {
		t.Errorf("unexpected run row: %+v", runs[1])
	}
	if runs[0].ArchiveRoot != "/archive" {
		t.Errorf("expected archive root recorded, got %q", runs[0].ArchiveRoot)
	}
	if runs[0].StartedAt.IsZero() {
		t.Error("expected started_at parsed")
	}

	files, err := s.GetRunFiles(id)
	if err != nil {
		t.Fatalf("GetRunFiles failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	if files[1].Status != "failed" || files[1].Detail != "permission denied" {
		t.Errorf("unexpected file row: %+v", files[1])
	}

	names, err := s.GetRunNames(id)
	if err != nil {
		t.Fatalf("GetRunNames failed: %v", err)
	}
	if len(names) != 1 || names[0] != "A" {
		t.Errorf("expected names [A], got %v", names)
	}
}

func TestListRunsLimit(t *testing.T) {
	s := setupTestStore(t)
	defer s.Close()

	for i := 0; i < 5; i++ {
		if _, err := s.RecordRun("removed", "", 1, 0); err != nil {
			t.Fatalf("RecordRun failed: %v", err)
		}
	}
	runs, err := s.ListRuns(2)
	if err != nil {
		t.Fatalf("ListRuns failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(runs))
	}
}
