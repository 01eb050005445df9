package reports

import (
	"github.com/dustin/go-humanize"

	"github.com/dodobyrd/Spruce-for-Munki/internal/analyzer"
)

// OutOfDate lists production items that are used but superseded by
// newer versions of the same product. KeepCount controls how many
// current versions per product are considered not-out-of-date.
type OutOfDate struct{}

func (*OutOfDate) Key() string  { return "out-of-date" }
func (*OutOfDate) Name() string { return "Out of Date Items Report" }
func (*OutOfDate) Description() string {
	return "This report collects all items which are in the production " +
		"catalog, but are not the current release version. Items that have " +
		"dependencies to current releases through either the requires or " +
		"update_for keys are excluded. Items in non-production catalogs are " +
		"also excluded from consideration by this report."
}
func (*OutOfDate) Order() []string { return []string{"name", "path"} }

func (o *OutOfDate) Collect(ctx *Context) ([]Finding, []Finding, error) {
	items := itemFindings(ctx, outOfDateItems(ctx))
	sortByNameVersion(items)
	return items, nil, nil
}

func outOfDateItems(ctx *Context) map[analyzer.Item]struct{} {
	keep := ctx.KeepCount
	if keep <= 0 {
		keep = 1
	}
	production := []string{"production"}
	used := ctx.Resolver().UsedItems(ctx.Seeds(), 0, production)
	current := ctx.Resolver().UsedItems(ctx.Seeds(), keep, production)
	out := make(map[analyzer.Item]struct{})
	for item := range used {
		if _, ok := current[item]; !ok {
			out[item] = struct{}{}
		}
	}
	return out
}

// Unused lists items not reachable from any manifest via direct
// reference, requires, or update_for.
type Unused struct{}

func (*Unused) Key() string  { return "unused" }
func (*Unused) Name() string { return "Unused Item Report" }
func (*Unused) Description() string {
	return "This report collects all items in the catalogs which are not " +
		"used in any manifests, are not required by any items that are in " +
		"use (using the requires key), nor are updates for an item in use " +
		"(using the update_for key)."
}
func (*Unused) Order() []string { return []string{"name", "path"} }

func (u *Unused) Collect(ctx *Context) ([]Finding, []Finding, error) {
	items := itemFindings(ctx, unusedItems(ctx))
	sortByNameVersion(items)
	return items, nil, nil
}

func unusedItems(ctx *Context) map[analyzer.Item]struct{} {
	used := ctx.Resolver().UsedItems(ctx.Seeds(), 0, nil)
	unused := make(map[analyzer.Item]struct{})
	for item := range ctx.Resolver().AllItems(nil) {
		if _, ok := used[item]; !ok {
			unused[item] = struct{}{}
		}
	}
	return unused
}

// DiskUsage totals the installer sizes of unused and out-of-date items.
// Metadata only; pkginfo sizes are recorded in kilobytes.
type DiskUsage struct{}

func (*DiskUsage) Key() string  { return "unused-disk-usage" }
func (*DiskUsage) Name() string { return "Unused / Out Of Date Item Disk Usage" }
func (*DiskUsage) Description() string {
	return "This report sums the installer sizes of all unused and " +
		"out-of-date items to show how much disk space they occupy."
}
func (*DiskUsage) Order() []string { return nil }

func (d *DiskUsage) Collect(ctx *Context) ([]Finding, []Finding, error) {
	var totalKB int64
	count := func(items map[analyzer.Item]struct{}) {
		for item := range items {
			if pi, ok := ctx.Cache[item.Path]; ok {
				totalKB += pi.InstallerItemSize
			}
		}
	}
	count(unusedItems(ctx))
	count(outOfDateItems(ctx))

	metadata := []Finding{{
		"unused files account for": humanize.IBytes(uint64(totalKB) * 1024),
	}}
	return nil, metadata, nil
}

func itemFindings(ctx *Context, items map[analyzer.Item]struct{}) []Finding {
	findings := make([]Finding, 0, len(items))
	for item := range items {
		f := Finding{
			"name":    item.Name,
			"version": item.Version,
			"path":    item.Path,
		}
		if pi, ok := ctx.Cache[item.Path]; ok {
			f["size"] = humanize.IBytes(uint64(pi.InstallerItemSize) * 1024)
		}
		findings = append(findings, f)
	}
	return findings
}
