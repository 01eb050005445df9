package app

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/dodobyrd/Spruce-for-Munki/internal/reports"
	"github.com/dodobyrd/Spruce-for-Munki/internal/watcher"
)

var watchFlagDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Re-run the report suite whenever the repo changes",
	Long: `Watch the pkgsinfo and manifests trees and re-run the report
suite after changes settle. Read-only; stop with Ctrl-C.

Examples:
  spruce watch
  spruce watch --debounce 10s`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchFlagDebounce, "debounce", 2*time.Second, "Settle time before re-running reports")

	RootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	rp, err := resolveRepo()
	if err != nil {
		return err
	}

	runSuite := func() {
		ctx, err := buildReportContext(rp, reportFlagKeep)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("=== %s ===\n", time.Now().Format(time.DateTime))
		if err := renderReports(ctx, reports.All(), false); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	}

	runSuite()

	w, err := watcher.New(
		[]string{rp.PkgsinfoDir(), rp.ManifestsDir()},
		watchFlagDebounce,
		runSuite,
	)
	if err != nil {
		return fmt.Errorf("failed to watch repo: %w", err)
	}
	w.Start()
	fmt.Fprintf(os.Stderr, "Watching %s (Ctrl-C to stop)\n", rp.Root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	return w.Stop()
}
