package repo

import (
	"os"
	"path/filepath"
	"testing"

	"howett.net/plist"
)

func writeRepoFile(t *testing.T, path string, v interface{}) {
	t.Helper()
	data, err := plist.Marshal(v, plist.XMLFormat)
	if err != nil {
		t.Fatalf("failed to marshal plist: %v", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("failed to create dir: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write %s: %v", path, err)
	}
}

func newTestRepo(t *testing.T) *Repo {
	t.Helper()
	r := New(t.TempDir())
	for _, dir := range []string{r.PkgsinfoDir(), r.PkgsDir(), r.ManifestsDir(), r.CatalogsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			t.Fatalf("failed to create %s: %v", dir, err)
		}
	}
	if err := os.WriteFile(filepath.Join(r.CatalogsDir(), "all"), []byte("<plist version=\"1.0\"><array/></plist>"), 0644); err != nil {
		t.Fatalf("failed to write catalogs/all: %v", err)
	}
	return r
}

func TestBuildCache(t *testing.T) {
	r := newTestRepo(t)

	good := filepath.Join(r.PkgsinfoDir(), "apps", "Firefox-1.0.plist")
	writeRepoFile(t, good, map[string]interface{}{
		"name":                    "Firefox",
		"version":                 "1.0",
		"catalogs":                []string{"testing", "production"},
		"category":                "Internet",
		"installer_item_location": "apps/Firefox-1.0.dmg",
		"installer_item_size":     1024,
		"requires":                []string{"CoolLib"},
		"unattended_install":      true,
	})

	bad := filepath.Join(r.PkgsinfoDir(), "broken.plist")
	if err := os.WriteFile(bad, []byte("not a plist at all"), 0644); err != nil {
		t.Fatalf("failed to write broken file: %v", err)
	}

	// Hidden files are not descriptors.
	hidden := filepath.Join(r.PkgsinfoDir(), ".DS_Store")
	if err := os.WriteFile(hidden, []byte{0}, 0644); err != nil {
		t.Fatalf("failed to write hidden file: %v", err)
	}

	cache, errs, err := BuildCache(r)
	if err != nil {
		t.Fatalf("BuildCache failed: %v", err)
	}

	if len(cache) != 1 {
		t.Fatalf("expected 1 cached descriptor, got %d", len(cache))
	}
	pi, ok := cache[good]
	if !ok {
		t.Fatalf("expected cache entry for %s", good)
	}
	if pi.Name != "Firefox" || pi.Version != "1.0" {
		t.Errorf("unexpected descriptor: %+v", pi)
	}
	if !pi.InProduction() || !pi.InTesting() {
		t.Errorf("expected production and testing membership, got %v", pi.Catalogs)
	}
	if pi.InstallerItemLocation != "apps/Firefox-1.0.dmg" {
		t.Errorf("unexpected installer location %q", pi.InstallerItemLocation)
	}
	if pi.InstallerItemSize != 1024 {
		t.Errorf("unexpected installer size %d", pi.InstallerItemSize)
	}
	if len(pi.Requires) != 1 || pi.Requires[0] != "CoolLib" {
		t.Errorf("unexpected requires %v", pi.Requires)
	}
	if !pi.UnattendedInstall {
		t.Error("expected unattended_install true")
	}
	if pi.HasForceInstall() {
		t.Error("expected no force_install_after_date")
	}

	if len(errs) != 1 {
		t.Fatalf("expected 1 parse error, got %d: %v", len(errs), errs)
	}
	if _, ok := errs[bad]; !ok {
		t.Errorf("expected parse error recorded for %s", bad)
	}
}

func TestCacheNames(t *testing.T) {
	cache := Cache{
		"/a": &PkgInfo{Name: "A", Version: "1.0"},
		"/b": &PkgInfo{Name: "A", Version: "2.0"},
		"/c": &PkgInfo{Name: "B", Version: "1.0"},
	}
	names := cache.Names()
	if len(names) != 2 {
		t.Fatalf("expected 2 names, got %d", len(names))
	}
	byName := cache.ByName()
	if len(byName["A"]) != 2 || len(byName["B"]) != 1 {
		t.Errorf("unexpected grouping: %v", byName)
	}
}

func TestLoadManifests(t *testing.T) {
	r := newTestRepo(t)

	writeRepoFile(t, filepath.Join(r.ManifestsDir(), "site_default"), map[string]interface{}{
		"managed_installs": []string{"Firefox", "Chrome"},
		"managed_updates":  []string{"Plugin"},
		"conditional_items": []map[string]interface{}{
			{
				"condition":         "os_vers BEGINSWITH \"14\"",
				"optional_installs": []string{"BetaTool"},
			},
		},
	})
	broken := filepath.Join(r.ManifestsDir(), "broken")
	if err := os.WriteFile(broken, []byte("garbage"), 0644); err != nil {
		t.Fatalf("failed to write broken manifest: %v", err)
	}

	manifests, skipped, err := LoadManifests(r)
	if err != nil {
		t.Fatalf("LoadManifests failed: %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("expected 1 manifest, got %d", len(manifests))
	}
	if _, ok := skipped[broken]; !ok {
		t.Errorf("expected %s to be skipped", broken)
	}

	for _, m := range manifests {
		names := m.ReferencedNames()
		want := map[string]bool{"Firefox": true, "Chrome": true, "Plugin": true, "BetaTool": true}
		if len(names) != len(want) {
			t.Fatalf("expected %d referenced names, got %v", len(want), names)
		}
		for _, n := range names {
			if !want[n] {
				t.Errorf("unexpected referenced name %q", n)
			}
		}
	}
}

func TestCheckMounted(t *testing.T) {
	r := newTestRepo(t)
	if err := r.CheckMounted(); err != nil {
		t.Errorf("expected mounted repo, got %v", err)
	}

	empty := New(t.TempDir())
	if err := empty.CheckMounted(); err == nil {
		t.Error("expected error for repo without catalogs/all")
	}
}
