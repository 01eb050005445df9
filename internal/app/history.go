package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dodobyrd/Spruce-for-Munki/internal/output"
	"github.com/dodobyrd/Spruce-for-Munki/internal/store"
)

var (
	historyFlagLimit   int
	historyFlagVerbose bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List past deprecate runs from the journal",
	Long: `List recorded deprecate runs, newest first.

Examples:
  spruce history
  spruce history --limit 5 -v`,
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyFlagLimit, "limit", 20, "Maximum runs to show (0 for all)")
	historyCmd.Flags().BoolVarP(&historyFlagVerbose, "verbose", "v", false, "Show the files and names per run")

	RootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	dbPath, err := getDBPath()
	if err != nil {
		return err
	}
	st, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("failed to open journal: %w", err)
	}
	defer st.Close()

	runs, err := st.ListRuns(historyFlagLimit)
	if err != nil {
		return err
	}
	fmt.Print(output.RenderRunTable(runs))

	if !historyFlagVerbose {
		return nil
	}
	for _, run := range runs {
		files, err := st.GetRunFiles(run.ID)
		if err != nil {
			return err
		}
		names, err := st.GetRunNames(run.ID)
		if err != nil {
			return err
		}
		fmt.Printf("\nRun %d:\n", run.ID)
		for _, f := range files {
			line := fmt.Sprintf("\t[%s] %s (%s)", f.Status, f.Path, f.Kind)
			if f.Detail != "" {
				line += ": " + f.Detail
			}
			fmt.Println(line)
		}
		for _, name := range names {
			fmt.Printf("\tstripped from manifests: %s\n", name)
		}
	}
	return nil
}
