// Package output provides terminal rendering for spruce: report
// sections, the history table, and color handling.
package output

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/dodobyrd/Spruce-for-Munki/internal/reports"
	"github.com/dodobyrd/Spruce-for-Munki/internal/store"
)

// ANSI color codes for emphasis in terminal output
const (
	colorReset  = "\033[0m"
	colorYellow = "\033[33m"
	colorGray   = "\033[90m"
)

const separator = "--------------------"

// IsColorEnabled returns true if ANSI color codes should be emitted.
// It checks that os.Stdout is a TTY and that the NO_COLOR env var is not set.
func IsColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stdout.Fd())
}

// colorize wraps text in the given ANSI color code if color is enabled,
// otherwise returns the plain text.
func colorize(color, text string) string {
	if IsColorEnabled() {
		return color + text + colorReset
	}
	return text
}

// Warn renders a warning line with emphasis.
func Warn(text string) string {
	return colorize(colorYellow, "WARNING: "+text)
}

// RenderReport renders one report section: title, wrapped description,
// then items and metadata with the report's preferred key order first
// and any remaining keys alphabetically after.
func RenderReport(name, description string, order []string, items, metadata []reports.Finding) string {
	var sb strings.Builder
	sb.WriteString(name + ":\n")
	if description != "" {
		for _, line := range wrap(description, 73) {
			sb.WriteString("\t" + colorize(colorGray, line) + "\n")
		}
		sb.WriteString("\n")
	}

	if len(items) == 0 && len(metadata) == 0 {
		sb.WriteString("\tNo items.\n\n")
		return sb.String()
	}
	renderSection(&sb, "Items", order, items)
	renderSection(&sb, "Metadata", order, metadata)
	return sb.String()
}

func renderSection(sb *strings.Builder, title string, order []string, findings []reports.Finding) {
	if len(findings) == 0 {
		return
	}
	sb.WriteString("\t" + title + ":\n")
	sb.WriteString("\t" + separator + "\n")
	for _, finding := range findings {
		for _, key := range orderedKeys(order, finding) {
			fmt.Fprintf(sb, "\t%s: %s\n", key, finding[key])
		}
		sb.WriteString("\t" + separator + "\n")
	}
	sb.WriteString("\n")
}

// orderedKeys returns the preferred keys present in the finding, then
// the rest sorted.
func orderedKeys(order []string, finding reports.Finding) []string {
	keys := make([]string, 0, len(finding))
	seen := make(map[string]struct{})
	for _, key := range order {
		if _, ok := finding[key]; ok {
			keys = append(keys, key)
			seen[key] = struct{}{}
		}
	}
	var rest []string
	for key := range finding {
		if _, ok := seen[key]; !ok {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	return append(keys, rest...)
}

// RenderRunTable renders the deprecate history.
func RenderRunTable(runs []*store.Run) string {
	if len(runs) == 0 {
		return "No deprecate runs recorded.\n"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%-5s %-20s %-9s %-6s %-6s %s\n",
		"ID", "Started", "Mode", "Files", "Names", "Archive Root"))
	sb.WriteString(strings.Repeat("─", 72))
	sb.WriteString("\n")

	for _, run := range runs {
		sb.WriteString(fmt.Sprintf("%-5d %-20s %-9s %-6d %-6d %s\n",
			run.ID,
			run.StartedAt.Format(time.DateTime),
			run.Mode,
			run.FileCount,
			run.NameCount,
			run.ArchiveRoot))
	}
	return sb.String()
}

// wrap breaks text into lines no longer than width bytes.
func wrap(text string, width int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var lines []string
	line := words[0]
	for _, word := range words[1:] {
		if len(line)+1+len(word) > width {
			lines = append(lines, line)
			line = word
			continue
		}
		line += " " + word
	}
	return append(lines, line)
}
