// Package analyzer computes which products in a Munki repository are
// actually in use, by closing over manifest references plus the
// requires and update_for relations between descriptors.
package analyzer

import (
	"sort"

	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
)

// Item is one resolved descriptor identity. Closure runs at name
// granularity; keep-N trimming distinguishes versions of a name.
type Item struct {
	Name      string
	Version   string
	Path      string
	Installer string
}

// Resolver answers usage questions over a pkginfo cache.
type Resolver struct {
	cache  repo.Cache
	byName map[string][]*entry
}

type entry struct {
	path string
	info *repo.PkgInfo
}

// New builds a Resolver over the given cache.
func New(cache repo.Cache) *Resolver {
	byName := make(map[string][]*entry)
	for path, pi := range cache {
		byName[pi.Name] = append(byName[pi.Name], &entry{path: path, info: pi})
	}
	// Highest version first, so keep-N trimming is a slice cut.
	for _, entries := range byName {
		sort.Slice(entries, func(i, j int) bool {
			if c := repo.CompareLoose(entries[i].info.Version, entries[j].info.Version); c != 0 {
				return c > 0
			}
			return entries[i].path < entries[j].path
		})
	}
	return &Resolver{cache: cache, byName: byName}
}

// ManifestNames collects every product name referenced by any manifest,
// including inside conditional sections. These are the closure seeds.
func ManifestNames(manifests map[string]*repo.Manifest) map[string]struct{} {
	names := make(map[string]struct{})
	for _, m := range manifests {
		for _, n := range m.ReferencedNames() {
			names[n] = struct{}{}
		}
	}
	return names
}

// UsedNames expands the seed set to a fixed point: requires edges add
// the names a used descriptor depends on, update_for edges add the
// names of descriptors that update a used product. The catalog filter
// restricts which descriptors contribute edges, not the seeds
// themselves; manifests may reference any catalog. Names that resolve
// to no descriptor stay in the set but contribute nothing.
func (r *Resolver) UsedNames(seeds map[string]struct{}, catalogs []string) map[string]struct{} {
	used := make(map[string]struct{}, len(seeds))
	for n := range seeds {
		used[n] = struct{}{}
	}

	for {
		before := len(used)

		// Forward pass: worklist over requires edges. The visited set
		// is the used set itself, so each name's edges are walked once
		// per pass and the loop terminates because the name universe
		// is finite.
		queue := make([]string, 0, len(used))
		for n := range used {
			queue = append(queue, n)
		}
		for len(queue) > 0 {
			name := queue[0]
			queue = queue[1:]
			for _, e := range r.byName[name] {
				if !matchesCatalogs(e.info, catalogs) {
					continue
				}
				for _, req := range e.info.Requires {
					if _, ok := used[req]; !ok {
						used[req] = struct{}{}
						queue = append(queue, req)
					}
				}
			}
		}

		// Reverse pass: an update inherits used status from any product
		// it updates.
		for name, entries := range r.byName {
			if _, ok := used[name]; ok {
				continue
			}
			for _, e := range entries {
				if !matchesCatalogs(e.info, catalogs) {
					continue
				}
				if anyUsed(e.info.UpdateFor, used) {
					used[name] = struct{}{}
					break
				}
			}
		}

		if len(used) == before {
			return used
		}
	}
}

// UsedItems resolves the used-name closure to concrete descriptor
// items. keep > 0 restricts each name to its keep highest versions
// (loose ordering) among descriptors matching the catalog filter;
// keep <= 0 keeps every version.
func (r *Resolver) UsedItems(seeds map[string]struct{}, keep int, catalogs []string) map[Item]struct{} {
	names := r.UsedNames(seeds, catalogs)
	items := make(map[Item]struct{})
	for name := range names {
		kept := 0
		for _, e := range r.byName[name] {
			if !matchesCatalogs(e.info, catalogs) {
				continue
			}
			if keep > 0 && kept >= keep {
				break
			}
			items[itemFor(e)] = struct{}{}
			kept++
		}
	}
	return items
}

// AllItems returns every descriptor in the cache matching the catalog
// filter, used as the universe for the unused comparison.
func (r *Resolver) AllItems(catalogs []string) map[Item]struct{} {
	items := make(map[Item]struct{})
	for _, entries := range r.byName {
		for _, e := range entries {
			if matchesCatalogs(e.info, catalogs) {
				items[itemFor(e)] = struct{}{}
			}
		}
	}
	return items
}

func itemFor(e *entry) Item {
	return Item{
		Name:      e.info.Name,
		Version:   e.info.Version,
		Path:      e.path,
		Installer: e.info.InstallerItemLocation,
	}
}

func matchesCatalogs(pi *repo.PkgInfo, catalogs []string) bool {
	if len(catalogs) == 0 {
		return true
	}
	for _, c := range catalogs {
		if pi.InCatalog(c) {
			return true
		}
	}
	return false
}

func anyUsed(names []string, used map[string]struct{}) bool {
	for _, n := range names {
		if _, ok := used[n]; ok {
			return true
		}
	}
	return false
}
