package app

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"howett.net/plist"

	"github.com/dodobyrd/Spruce-for-Munki/internal/output"
	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
	"github.com/dodobyrd/Spruce-for-Munki/internal/reports"
)

var (
	reportFlagPlist bool
	reportFlagKey   string
	reportFlagKeep  int
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Analyze the repo for unused, out-of-date, and broken items",
	Long: `Run the report suite over the repository.

Reports include orphaned installers, missing installers, case-sensitive
path issues, pkginfo parse errors, unused items, out-of-date items, and
catalog-hygiene checks. All reports are read-only.

Examples:
  # Full suite, human-readable
  spruce report

  # One report
  spruce report --report orphaned-installers

  # Keep two production versions per product when computing out-of-date
  spruce report --report out-of-date --keep 2

  # Single plist document for scripting
  spruce report --plist`,
	RunE: runReport,
}

func init() {
	reportCmd.Flags().BoolVar(&reportFlagPlist, "plist", false, "Emit one machine-readable plist document")
	reportCmd.Flags().StringVar(&reportFlagKey, "report", "", "Run a single report by key")
	reportCmd.Flags().IntVar(&reportFlagKeep, "keep", 1, "Current versions to keep per product for out-of-date")

	RootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	rp, err := resolveRepo()
	if err != nil {
		return err
	}

	collectors := reports.All()
	if reportFlagKey != "" {
		collector, ok := reports.ByKey(reportFlagKey)
		if !ok {
			return fmt.Errorf("unknown report %q: see 'spruce report --help' for keys", reportFlagKey)
		}
		collectors = []reports.Collector{collector}
	}

	ctx, err := buildReportContext(rp, reportFlagKeep)
	if err != nil {
		return err
	}

	return renderReports(ctx, collectors, reportFlagPlist)
}

// buildReportContext loads the descriptor cache and manifests once for
// a report run. Unparsable manifests are logged and skipped.
func buildReportContext(rp *repo.Repo, keep int) (*reports.Context, error) {
	if err := rp.CheckMounted(); err != nil {
		return nil, fmt.Errorf("please mount your Munki repo and try again: %w", err)
	}

	cache, cacheErrs, err := repo.BuildCache(rp)
	if err != nil {
		return nil, fmt.Errorf("failed to build pkginfo cache: %w", err)
	}
	manifests, skipped, err := repo.LoadManifests(rp)
	if err != nil {
		return nil, fmt.Errorf("failed to load manifests: %w", err)
	}
	for path, msg := range skipped {
		fmt.Fprintf(os.Stderr, "Error reading manifest %s: %s\n", path, msg)
	}

	return &reports.Context{
		Repo:      rp,
		Cache:     cache,
		CacheErrs: cacheErrs,
		Manifests: manifests,
		KeepCount: keep,
	}, nil
}

// renderReports runs the collectors and prints text sections or a
// single plist document keyed by report name.
func renderReports(ctx *reports.Context, collectors []reports.Collector, asPlist bool) error {
	if asPlist {
		doc := make(map[string]map[string][]reports.Finding, len(collectors))
		for _, c := range collectors {
			items, metadata, err := c.Collect(ctx)
			if err != nil {
				return fmt.Errorf("report %s: %w", c.Key(), err)
			}
			doc[c.Name()] = map[string][]reports.Finding{
				"items":    items,
				"metadata": metadata,
			}
		}
		data, err := plist.MarshalIndent(doc, plist.XMLFormat, "\t")
		if err != nil {
			return fmt.Errorf("failed to serialize report document: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	for _, c := range collectors {
		items, metadata, err := c.Collect(ctx)
		if err != nil {
			return fmt.Errorf("report %s: %w", c.Key(), err)
		}
		fmt.Print(output.RenderReport(c.Name(), c.Description(), c.Order(), items, metadata))
	}
	return nil
}
