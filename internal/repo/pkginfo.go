package repo

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"howett.net/plist"
)

// PkgInfo is one descriptor record from the pkgsinfo tree. Keys not
// listed here are ignored on read; descriptors are never rewritten by
// this tool, so nothing is lost.
type PkgInfo struct {
	Name                  string    `plist:"name"`
	Version               string    `plist:"version"`
	Catalogs              []string  `plist:"catalogs"`
	Category              string    `plist:"category"`
	InstallerItemLocation string    `plist:"installer_item_location"`
	InstallerItemSize     int64     `plist:"installer_item_size"`
	Requires              []string  `plist:"requires"`
	UpdateFor             []string  `plist:"update_for"`
	ForceInstallAfterDate time.Time `plist:"force_install_after_date"`
	UnattendedInstall     bool      `plist:"unattended_install"`
}

// InCatalog reports whether the descriptor belongs to the named catalog.
func (p *PkgInfo) InCatalog(catalog string) bool {
	for _, c := range p.Catalogs {
		if c == catalog {
			return true
		}
	}
	return false
}

// InProduction reports membership in the production catalog.
func (p *PkgInfo) InProduction() bool { return p.InCatalog("production") }

// InTesting reports membership in the testing catalog.
func (p *PkgInfo) InTesting() bool { return p.InCatalog("testing") }

// HasForceInstall reports whether a force_install_after_date is set.
func (p *PkgInfo) HasForceInstall() bool { return !p.ForceInstallAfterDate.IsZero() }

// Cache maps pkginfo file paths to their parsed records. Paths are the
// unique identity of a descriptor; names are not unique across the cache.
type Cache map[string]*PkgInfo

// Names returns the set of product names present in the cache.
func (c Cache) Names() map[string]struct{} {
	names := make(map[string]struct{}, len(c))
	for _, pi := range c {
		names[pi.Name] = struct{}{}
	}
	return names
}

// ByName groups cached descriptor paths by product name.
func (c Cache) ByName() map[string][]string {
	byName := make(map[string][]string)
	for path, pi := range c {
		byName[pi.Name] = append(byName[pi.Name], path)
	}
	return byName
}

// BuildCache walks the pkgsinfo tree and parses every descriptor file.
// Per-file parse failures are recorded by path rather than aborting the
// walk; only a failure to read the tree itself is an error.
func BuildCache(r *Repo) (Cache, map[string]string, error) {
	cache := make(Cache)
	parseErrs := make(map[string]string)

	root := r.PkgsinfoDir()
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if strings.HasPrefix(d.Name(), ".") && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}

		data, err := os.ReadFile(path)
		if err != nil {
			parseErrs[path] = err.Error()
			return nil
		}
		var pi PkgInfo
		if _, err := plist.Unmarshal(data, &pi); err != nil {
			parseErrs[path] = err.Error()
			return nil
		}
		cache[path] = &pi
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	return cache, parseErrs, nil
}
