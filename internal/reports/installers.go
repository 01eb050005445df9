package reports

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// PathIssues flags installer_item_location values whose path components
// do not match the pkgs tree with exact case. Repos hosted on
// case-sensitive filesystems break on these even though they resolve
// fine on a default macOS volume.
type PathIssues struct{}

func (*PathIssues) Key() string  { return "path-issues" }
func (*PathIssues) Name() string { return "Case-Sensitive Path Issues Report" }
func (*PathIssues) Description() string {
	return "This report collects all items whose installer item is referenced " +
		"incorrectly due to case-sensitivity errors. Current macOS default " +
		"filesystem settings are case-insensitive, yet many admins host Munki " +
		"with Linux, which is by default case-sensitive. This can lead to " +
		"installer_item_location values which work on macOS, but do not " +
		"resolve correctly on case sensitive filesystems."
}
func (*PathIssues) Order() []string { return []string{"name", "path"} }

func (p *PathIssues) Collect(ctx *Context) ([]Finding, []Finding, error) {
	var items []Finding
	for path, pi := range ctx.Cache {
		if pi.InstallerItemLocation == "" {
			continue
		}
		bad := badPathComponent(pi.InstallerItemLocation, ctx.Repo.PkgsDir())
		if bad == "" {
			continue
		}
		items = append(items, Finding{
			"name":               pi.Name,
			"path":               path,
			"bad_path_component": bad,
		})
	}
	sortByNameVersion(items)
	return items, nil, nil
}

// badPathComponent walks an installer location one component at a time
// and returns the first component that is not an exact-case entry of
// its parent directory, or "" if every component resolves.
func badPathComponent(location, dir string) string {
	component := location
	rest := ""
	if i := strings.IndexByte(location, '/'); i >= 0 {
		component, rest = location[:i], location[i+1:]
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return component
	}
	for _, entry := range entries {
		if entry.Name() == component {
			if rest == "" {
				return ""
			}
			return badPathComponent(rest, filepath.Join(dir, component))
		}
	}
	return component
}

// MissingInstallers flags descriptors whose installer item does not
// exist on disk.
type MissingInstallers struct{}

func (*MissingInstallers) Key() string  { return "missing-installers" }
func (*MissingInstallers) Name() string { return "Missing Installer Report" }
func (*MissingInstallers) Description() string {
	return "This report collects all items which refer to nonexistent " +
		"installers (installer_item_location)."
}
func (*MissingInstallers) Order() []string { return []string{"name", "path"} }

func (m *MissingInstallers) Collect(ctx *Context) ([]Finding, []Finding, error) {
	var items []Finding
	for path, pi := range ctx.Cache {
		if pi.InstallerItemLocation == "" {
			continue
		}
		installerPath := ctx.Repo.InstallerPath(pi.InstallerItemLocation)
		if _, err := os.Stat(installerPath); err != nil {
			items = append(items, Finding{
				"name":              pi.Name,
				"path":              path,
				"missing_installer": installerPath,
			})
		}
	}
	sortByNameVersion(items)
	return items, nil, nil
}

// OrphanedInstallers flags files under pkgs with no referencing
// descriptor. Bundle-style packages (.pkg/.mpkg directories) count as a
// single item; their contents are never independent orphan candidates.
type OrphanedInstallers struct{}

func (*OrphanedInstallers) Key() string  { return "orphaned-installers" }
func (*OrphanedInstallers) Name() string { return "Orphaned Installer Report" }
func (*OrphanedInstallers) Description() string {
	return "This report collects all pkgs present in the repo which are not " +
		"referenced by any pkginfo files."
}
func (*OrphanedInstallers) Order() []string { return []string{"path"} }

func (o *OrphanedInstallers) Collect(ctx *Context) ([]Finding, []Finding, error) {
	used := make(map[string]struct{})
	for _, pi := range ctx.Cache {
		if pi.InstallerItemLocation != "" {
			used[pi.InstallerItemLocation] = struct{}{}
		}
	}

	pkgsDir := ctx.Repo.PkgsDir()
	var items []Finding
	err := filepath.WalkDir(pkgsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == pkgsDir {
			return nil
		}
		rel, err := filepath.Rel(pkgsDir, path)
		if err != nil {
			return err
		}
		if d.IsDir() {
			ext := strings.ToUpper(filepath.Ext(path))
			if ext == ".PKG" || ext == ".MPKG" {
				if _, ok := used[rel]; !ok {
					items = append(items, Finding{"path": path})
				}
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(d.Name(), ".") {
			return nil
		}
		if _, ok := used[rel]; !ok {
			items = append(items, Finding{"path": path})
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}
	sortByPath(items)
	return items, nil, nil
}
