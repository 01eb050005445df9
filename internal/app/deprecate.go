package app

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dodobyrd/Spruce-for-Munki/internal/deprecate"
	"github.com/dodobyrd/Spruce-for-Munki/internal/output"
	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
	"github.com/dodobyrd/Spruce-for-Munki/internal/store"
)

var (
	deprecateFlagCategories []string
	deprecateFlagNames      []string
	deprecateFlagPlist      string
	deprecateFlagArchive    string
	deprecateFlagForce      bool
)

var deprecateCmd = &cobra.Command{
	Use:   "deprecate",
	Short: "Remove or archive items and scrub manifest references",
	Long: `Remove items from the repo, or relocate them to an archive.

Selection criteria are additive: every descriptor matching a --category,
a --name, or a path entry in a --plist removals file is selected, along
with its installer item. Products left with zero versions are also
stripped from every manifest's reference lists, including conditional
sections.

A plan is printed and confirmed before anything is touched. Each run is
recorded in the journal (see 'spruce history').

The category literal '*NO CATEGORY*' selects descriptors with no
category set.

Examples:
  # Preview and remove a category
  spruce deprecate --category "Obsolete"

  # Archive instead of deleting, keeping the repo directory layout
  spruce deprecate --name OldTool --archive /Volumes/archive

  # Replay a removals plist; already-removed entries are skipped
  spruce deprecate --plist removals.plist --force`,
	RunE: runDeprecate,
}

func init() {
	deprecateCmd.Flags().StringArrayVar(&deprecateFlagCategories, "category", nil, "Remove all items in this category (repeatable)")
	deprecateCmd.Flags().StringArrayVar(&deprecateFlagNames, "name", nil, "Remove all versions of this product (repeatable)")
	deprecateCmd.Flags().StringVar(&deprecateFlagPlist, "plist", "", "Removals plist file ({\"removals\": [{\"path\": ...}]})")
	deprecateCmd.Flags().StringVar(&deprecateFlagArchive, "archive", "", "Archive root to move items to instead of deleting")
	deprecateCmd.Flags().BoolVarP(&deprecateFlagForce, "force", "f", false, "Skip the confirmation prompt")

	RootCmd.AddCommand(deprecateCmd)
}

func runDeprecate(cmd *cobra.Command, args []string) error {
	sel := deprecate.Selection{
		Categories: deprecateFlagCategories,
		Names:      deprecateFlagNames,
		PlistPath:  deprecateFlagPlist,
	}
	if sel.Empty() {
		return fmt.Errorf("nothing selected: use --category, --name, or --plist")
	}

	rp, err := resolveRepo()
	if err != nil {
		return err
	}
	cache, _, err := repo.BuildCache(rp)
	if err != nil {
		return fmt.Errorf("failed to build pkginfo cache: %w", err)
	}

	plan, err := deprecate.BuildPlan(sel, cache, rp)
	if err != nil {
		return err
	}
	if plan.Empty() {
		fmt.Println("Nothing to remove.")
		return nil
	}

	printPlan(plan)

	if !deprecateFlagForce && !confirm() {
		fmt.Println("Cancelled.")
		return nil
	}

	executor := &deprecate.Executor{
		Repo:        rp,
		ArchiveRoot: deprecateFlagArchive,
		Journal:     openJournal(),
		Out:         os.Stdout,
	}

	result, err := executor.Execute(plan)
	if result != nil {
		printResult(executor.Mode(), result)
	}
	return err
}

func printPlan(plan *deprecate.Plan) {
	verb := "removed"
	if deprecateFlagArchive != "" {
		verb = "archived"
	}
	fmt.Printf("Items to be %s:\n", verb)
	for _, path := range plan.Files() {
		fmt.Printf("\t%s\n", path)
	}
	fmt.Println()

	fmt.Println("Items to be removed from manifests:")
	for _, name := range plan.Names {
		fmt.Printf("\t%s\n", name)
	}
	fmt.Println()

	for _, warning := range plan.Warnings {
		fmt.Println(output.Warn(warning))
	}
}

func printResult(mode string, result *deprecate.Result) {
	fmt.Printf("\n%d items %s.\n", len(result.Removed), mode)
	if len(result.Failures) > 0 {
		fmt.Printf("%d failures:\n", len(result.Failures))
		for path, msg := range result.Failures {
			fmt.Printf("\t%s: %s\n", path, msg)
		}
	}
	if len(result.Rewritten) > 0 {
		fmt.Printf("Rewrote %d manifests (stripped: %s).\n",
			len(result.Rewritten), strings.Join(result.FinalNames, ", "))
	}
	for _, advisory := range result.Advisories {
		fmt.Println(output.Warn(advisory))
	}
}

// confirm prompts before mutation begins. Declining aborts the whole
// run with nothing touched.
func confirm() bool {
	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Are you sure you want to continue? (Y|N): ")

	response, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	response = strings.ToUpper(strings.TrimSpace(response))
	return response == "Y" || response == "YES"
}

// openJournal opens the removal journal. A journal problem never
// blocks a removal the user already confirmed.
func openJournal() deprecate.Journal {
	dbPath, err := getDBPath()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: journal disabled: %v\n", err)
		return nil
	}
	st, err := store.New(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: journal disabled: %v\n", err)
		return nil
	}
	return st
}
