// Package reports implements the Spruce report suite: a closed set of
// read-only analyses over a loaded repository, dispatched through a
// shared Collector interface and a fixed registry.
package reports

import (
	"sort"

	"github.com/dodobyrd/Spruce-for-Munki/internal/analyzer"
	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
)

// Finding is one report row. Values are strings so the whole suite can
// be serialized as a single plist document without per-report schemas.
type Finding map[string]string

// Collector is one report variant. Collect returns items and metadata;
// both may be empty. Collectors never mutate the repository.
type Collector interface {
	Key() string
	Name() string
	Description() string
	// Order lists the finding keys to print first; remaining keys
	// follow alphabetically.
	Order() []string
	Collect(ctx *Context) (items, metadata []Finding, err error)
}

// Context carries everything a collector may need for one run. It is
// built once per invocation and shared read-only across the suite.
type Context struct {
	Repo       *repo.Repo
	Cache      repo.Cache
	CacheErrs  map[string]string
	Manifests  map[string]*repo.Manifest
	KeepCount  int
	resolver   *analyzer.Resolver
	seeds      map[string]struct{}
	seedsBuilt bool
}

// Resolver returns a usage resolver over the context cache, built once.
func (ctx *Context) Resolver() *analyzer.Resolver {
	if ctx.resolver == nil {
		ctx.resolver = analyzer.New(ctx.Cache)
	}
	return ctx.resolver
}

// Seeds returns the manifest-referenced name set, built once.
func (ctx *Context) Seeds() map[string]struct{} {
	if !ctx.seedsBuilt {
		ctx.seeds = analyzer.ManifestNames(ctx.Manifests)
		ctx.seedsBuilt = true
	}
	return ctx.seeds
}

// All returns the report suite in its fixed display order.
func All() []Collector {
	return []Collector{
		&PathIssues{},
		&MissingInstallers{},
		&OrphanedInstallers{},
		&PkginfoErrors{},
		&OutOfDate{},
		&Unused{},
		&DiskUsage{},
		unattendedTesting,
		attendedProduction,
		forceInstallTesting,
		forceInstallProduction,
	}
}

// ByKey looks a collector up by its registry key.
func ByKey(key string) (Collector, bool) {
	for _, c := range All() {
		if c.Key() == key {
			return c, true
		}
	}
	return nil, false
}

// sortByNameVersion orders findings by name ascending, then version
// descending under loose ordering, then path. Deterministic output is
// part of the report contract.
func sortByNameVersion(items []Finding) {
	sort.Slice(items, func(i, j int) bool {
		if items[i]["name"] != items[j]["name"] {
			return items[i]["name"] < items[j]["name"]
		}
		if c := repo.CompareLoose(items[i]["version"], items[j]["version"]); c != 0 {
			return c > 0
		}
		return items[i]["path"] < items[j]["path"]
	})
}

// sortByPath orders findings by their path key.
func sortByPath(items []Finding) {
	sort.Slice(items, func(i, j int) bool {
		return items[i]["path"] < items[j]["path"]
	})
}
