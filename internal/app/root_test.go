package app

import (
	"path/filepath"
	"testing"
)

func TestResolveRepoFlagWinsOverEnv(t *testing.T) {
	t.Setenv("MUNKI_REPO", "/from/env")
	flagRepo = "/from/flag"
	defer func() { flagRepo = "" }()

	rp, err := resolveRepo()
	if err != nil {
		t.Fatalf("resolveRepo failed: %v", err)
	}
	if rp.Root != "/from/flag" {
		t.Errorf("expected flag value, got %s", rp.Root)
	}
}

func TestResolveRepoFromEnv(t *testing.T) {
	t.Setenv("MUNKI_REPO", "/from/env")
	flagRepo = ""

	rp, err := resolveRepo()
	if err != nil {
		t.Fatalf("resolveRepo failed: %v", err)
	}
	if rp.Root != "/from/env" {
		t.Errorf("expected env value, got %s", rp.Root)
	}
}

func TestResolveRepoUnset(t *testing.T) {
	t.Setenv("MUNKI_REPO", "")
	flagRepo = ""

	if _, err := resolveRepo(); err == nil {
		t.Fatal("expected error with no repo configured")
	}
}

func TestGetDBPathFlag(t *testing.T) {
	want := filepath.Join(t.TempDir(), "journal.db")
	flagDB = want
	defer func() { flagDB = "" }()

	got, err := getDBPath()
	if err != nil {
		t.Fatalf("getDBPath failed: %v", err)
	}
	if got != want {
		t.Errorf("expected %s, got %s", want, got)
	}
}
