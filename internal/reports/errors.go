package reports

// PkginfoErrors surfaces the per-file parse failures captured while
// building the descriptor cache.
type PkginfoErrors struct{}

func (*PkginfoErrors) Key() string  { return "pkginfo-errors" }
func (*PkginfoErrors) Name() string { return "Pkginfo Syntax Error Report" }
func (*PkginfoErrors) Description() string {
	return "This report collects all items which have invalid plist syntax " +
		"in their pkginfo file."
}
func (*PkginfoErrors) Order() []string { return []string{"path"} }

func (p *PkginfoErrors) Collect(ctx *Context) ([]Finding, []Finding, error) {
	var items []Finding
	for path, msg := range ctx.CacheErrs {
		items = append(items, Finding{"path": path, "error": msg})
	}
	sortByPath(items)
	return items, nil, nil
}
