// Package deprecate removes or archives items from a Munki repository
// while keeping descriptors, installer items, and manifests mutually
// consistent.
package deprecate

import (
	"fmt"
	"os"
	"sort"

	"howett.net/plist"

	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
)

// NoCategory is the selection literal matching descriptors that have no
// category set.
const NoCategory = "*NO CATEGORY*"

// Selection describes what the user asked to remove. The three criteria
// are additive.
type Selection struct {
	Categories []string
	Names      []string
	PlistPath  string
}

// Empty reports whether no selection criteria were given.
func (s Selection) Empty() bool {
	return len(s.Categories) == 0 && len(s.Names) == 0 && s.PlistPath == ""
}

// Plan is the concrete outcome of planning a removal: descriptor files,
// installer files, the product names to strip from manifests, and
// advisory warnings. All slices are lexically sorted.
type Plan struct {
	PkgInfos []string
	Pkgs     []string
	Names    []string
	Warnings []string
}

// Empty reports whether the plan would touch nothing.
func (p *Plan) Empty() bool {
	return len(p.PkgInfos) == 0 && len(p.Pkgs) == 0
}

// Files returns every file the plan removes, descriptors first.
func (p *Plan) Files() []string {
	files := make([]string, 0, len(p.PkgInfos)+len(p.Pkgs))
	files = append(files, p.PkgInfos...)
	files = append(files, p.Pkgs...)
	return files
}

// removalsFile is the structured removal-request input:
// {"removals": [{"path": ...}, ...]}.
type removalsFile struct {
	Removals []removalEntry `plist:"removals"`
}

type removalEntry struct {
	Path string `plist:"path"`
}

// BuildPlan computes the removal plan for a selection against the
// current cache. Plist entries whose paths are no longer in the cache
// are dropped silently, so replaying a removal list is idempotent.
func BuildPlan(sel Selection, cache repo.Cache, r *repo.Repo) (*Plan, error) {
	pkginfoSet := make(map[string]struct{})

	if len(sel.Categories) > 0 {
		matchCategories(sel.Categories, cache, pkginfoSet)
	}
	if len(sel.Names) > 0 {
		matchNames(sel.Names, cache, pkginfoSet)
	}
	if sel.PlistPath != "" {
		if err := matchPlist(sel.PlistPath, cache, pkginfoSet); err != nil {
			return nil, err
		}
	}

	pkgSet := make(map[string]struct{})
	for path := range pkginfoSet {
		if loc := cache[path].InstallerItemLocation; loc != "" {
			pkgSet[r.InstallerPath(loc)] = struct{}{}
		}
	}

	plan := &Plan{
		PkgInfos: sortedKeys(pkginfoSet),
		Pkgs:     sortedKeys(pkgSet),
		Names:    namesToRemove(pkginfoSet, cache),
		Warnings: multipleRefWarnings(pkginfoSet, pkgSet, cache, r),
	}
	return plan, nil
}

func matchCategories(categories []string, cache repo.Cache, out map[string]struct{}) {
	want := stringSet(categories)
	for path, pi := range cache {
		category := pi.Category
		if category == "" {
			category = NoCategory
		}
		if _, ok := want[category]; ok {
			out[path] = struct{}{}
		}
	}
}

func matchNames(names []string, cache repo.Cache, out map[string]struct{}) {
	want := stringSet(names)
	for path, pi := range cache {
		if _, ok := want[pi.Name]; ok {
			out[path] = struct{}{}
		}
	}
}

func matchPlist(path string, cache repo.Cache, out map[string]struct{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading removals plist: %w", err)
	}
	var rf removalsFile
	if _, err := plist.Unmarshal(data, &rf); err != nil {
		return fmt.Errorf("parsing removals plist %s: %w", path, err)
	}
	for _, entry := range rf.Removals {
		if _, ok := cache[entry.Path]; ok {
			out[entry.Path] = struct{}{}
		}
	}
	return nil
}

// namesToRemove returns the product names to strip from manifests: only
// names with zero descriptors surviving the removal qualify. A product
// with one remaining version must stay referenced.
func namesToRemove(removals map[string]struct{}, cache repo.Cache) []string {
	removalNames := make(map[string]struct{})
	for path := range removals {
		removalNames[cache[path].Name] = struct{}{}
	}

	for path, pi := range cache {
		if _, removed := removals[path]; removed {
			continue
		}
		delete(removalNames, pi.Name)
	}
	return sortedKeys(removalNames)
}

// multipleRefWarnings flags installers slated for removal that are
// still claimed by a surviving descriptor.
func multipleRefWarnings(removals, pkgRemovals map[string]struct{}, cache repo.Cache, r *repo.Repo) []string {
	var warnings []string
	for path, pi := range cache {
		if _, removed := removals[path]; removed {
			continue
		}
		if pi.InstallerItemLocation == "" {
			continue
		}
		installer := r.InstallerPath(pi.InstallerItemLocation)
		if _, slated := pkgRemovals[installer]; slated {
			warnings = append(warnings, fmt.Sprintf(
				"package %s is targeted for removal, but is referenced by pkginfo %s which is not targeted for removal",
				installer, path))
		}
	}
	sort.Strings(warnings)
	return warnings
}

func stringSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
