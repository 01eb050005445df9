package deprecate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"

	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
)

// rewriteManifests strips fully-removed product names from every
// manifest. The descriptor cache is re-read from disk first: catalogs
// are not regenerated by this tool and another actor may have added a
// name back between planning and execution, so the final name set is
// re-derived, never trusted from the plan.
func (e *Executor) rewriteManifests(names []string, result *Result) error {
	if len(names) == 0 {
		return nil
	}

	cache, _, err := repo.BuildCache(e.Repo)
	if err != nil {
		return fmt.Errorf("rebuilding pkginfo cache: %w", err)
	}
	remaining := cache.Names()

	final := make(map[string]struct{})
	for _, name := range names {
		if _, present := remaining[name]; !present {
			final[name] = struct{}{}
		}
	}
	result.FinalNames = sortedKeys(final)
	if len(final) == 0 {
		return nil
	}

	entries, err := os.ReadDir(e.Repo.ManifestsDir())
	if err != nil {
		return fmt.Errorf("reading manifests directory: %w", err)
	}
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(e.Repo.ManifestsDir(), entry.Name())
		if err := e.rewriteManifest(path, final, result); err != nil {
			fmt.Fprintf(e.out(), "Error reading manifest %s: %v\n", path, err)
		}
	}
	return nil
}

// rewriteManifest strips names from one manifest file, writing it back
// only when something actually changed. The raw plist dictionary is
// mutated so keys this tool does not model are preserved.
func (e *Executor) rewriteManifest(path string, names map[string]struct{}, result *Result) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var dict map[string]interface{}
	format, err := plist.Unmarshal(data, &dict)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.out(), "Looking for name removals in %s\n", path)

	changed := false
	for _, key := range repo.ManifestKeys {
		if e.stripList(dict, key, names, result) {
			changed = true
		}
	}
	if conditionals, ok := dict["conditional_items"].([]interface{}); ok {
		for _, c := range conditionals {
			conditional, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			for _, key := range repo.ManifestKeys {
				if e.stripList(conditional, key, names, result) {
					changed = true
				}
			}
		}
	}

	if !changed {
		return nil
	}
	out, err := plist.MarshalIndent(dict, format, "\t")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return err
	}
	result.Rewritten = append(result.Rewritten, path)
	return nil
}

// stripList removes exact name matches from one reference list. Items
// that merely resemble a removal name are left alone and surfaced as
// advisories; a non-exact match is never removed automatically.
func (e *Executor) stripList(dict map[string]interface{}, key string, names map[string]struct{}, result *Result) bool {
	raw, ok := dict[key].([]interface{})
	if !ok {
		return false
	}

	kept := make([]interface{}, 0, len(raw))
	changed := false
	for _, v := range raw {
		item, ok := v.(string)
		if !ok {
			kept = append(kept, v)
			continue
		}
		if _, exact := names[item]; exact {
			fmt.Fprintf(e.out(), "\tRemoving %s from %s\n", item, key)
			changed = true
			continue
		}
		if similarName(item, names) {
			result.Advisories = append(result.Advisories, fmt.Sprintf(
				"manifest item %q resembles a name to remove but does not match exactly; left in place, remove manually if required", item))
		}
		kept = append(kept, v)
	}
	if changed {
		dict[key] = kept
	}
	return changed
}

// similarName reports whether an item shares a prefix with a removal
// name without ending in one, the boundary the advisory warns on.
func similarName(item string, names map[string]struct{}) bool {
	prefix := false
	for name := range names {
		if strings.HasPrefix(item, name) {
			prefix = true
		}
		if strings.HasSuffix(item, name) {
			return false
		}
	}
	return prefix
}
