package reports

import "github.com/dodobyrd/Spruce-for-Munki/internal/repo"

// conditionReport is the shared shape for reports that just filter the
// cache by a predicate on the descriptor.
type conditionReport struct {
	key         string
	name        string
	description string
	match       func(*repo.PkgInfo) bool
}

func (c *conditionReport) Key() string         { return c.key }
func (c *conditionReport) Name() string        { return c.name }
func (c *conditionReport) Description() string { return c.description }
func (c *conditionReport) Order() []string     { return []string{"name", "path"} }

func (c *conditionReport) Collect(ctx *Context) ([]Finding, []Finding, error) {
	var items []Finding
	for path, pi := range ctx.Cache {
		if !c.match(pi) {
			continue
		}
		items = append(items, Finding{
			"name":    pi.Name,
			"version": pi.Version,
			"path":    path,
		})
	}
	sortByNameVersion(items)
	return items, nil, nil
}

var unattendedTesting = &conditionReport{
	key:  "unattended-testing",
	name: "Unattended Installs in Testing Report",
	description: "This report collects all items in the testing catalogs which " +
		"do not require user-intervention (i.e. use the " +
		"unattended_install: true setting).",
	match: func(pi *repo.PkgInfo) bool {
		return pi.InTesting() && pi.UnattendedInstall
	},
}

var attendedProduction = &conditionReport{
	key:  "attended-production",
	name: "Attended Installs in Production Report",
	description: "This report collects all items in the production catalog " +
		"which require user-intervention (i.e. do not use the " +
		"unattended_install: true setting).",
	match: func(pi *repo.PkgInfo) bool {
		return pi.InProduction() && !pi.UnattendedInstall
	},
}

var forceInstallTesting = &conditionReport{
	key:  "force-install-testing",
	name: "Testing Non-Forced Installation Report",
	description: "This report collects all items in the testing catalogs " +
		"which do not use the force_install_after_date key in their pkginfo.",
	match: func(pi *repo.PkgInfo) bool {
		return pi.InTesting() && !pi.HasForceInstall()
	},
}

var forceInstallProduction = &conditionReport{
	key:  "force-install-production",
	name: "Production Forced Installation Report",
	description: "This report collects all items in the production catalog " +
		"which use the force_install_after_date key in their pkginfo.",
	match: func(pi *repo.PkgInfo) bool {
		return pi.InProduction() && pi.HasForceInstall()
	},
}
