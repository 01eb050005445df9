// Package repo provides access to the on-disk layout of a Munki
// repository: pkginfo descriptors, installer items, and manifests.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
)

// Repo describes the root of a Munki repository. The path is resolved
// once by the CLI and threaded through explicitly; nothing in this
// package consults the environment.
type Repo struct {
	Root string
}

// New returns a Repo rooted at the given path.
func New(root string) *Repo {
	return &Repo{Root: root}
}

// PkgsinfoDir returns the directory holding pkginfo descriptor files.
func (r *Repo) PkgsinfoDir() string {
	return filepath.Join(r.Root, "pkgsinfo")
}

// PkgsDir returns the directory holding installer items.
func (r *Repo) PkgsDir() string {
	return filepath.Join(r.Root, "pkgs")
}

// ManifestsDir returns the directory holding manifest files.
func (r *Repo) ManifestsDir() string {
	return filepath.Join(r.Root, "manifests")
}

// CatalogsDir returns the directory holding generated catalogs.
func (r *Repo) CatalogsDir() string {
	return filepath.Join(r.Root, "catalogs")
}

// InstallerPath joins an installer_item_location value against the
// pkgs directory.
func (r *Repo) InstallerPath(location string) string {
	return filepath.Join(r.PkgsDir(), location)
}

// CheckMounted verifies the repository is reachable by probing for the
// "all" catalog, which every functional Munki repo has.
func (r *Repo) CheckMounted() error {
	allPath := filepath.Join(r.CatalogsDir(), "all")
	if _, err := os.Stat(allPath); err != nil {
		return fmt.Errorf("repo %s does not look mounted (no catalogs/all): %w", r.Root, err)
	}
	return nil
}
