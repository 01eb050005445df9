package repo

import (
	"os"
	"path/filepath"
	"strings"

	"howett.net/plist"
)

// ManifestKeys are the four reference lists a manifest (or one of its
// conditional sections) may carry.
var ManifestKeys = []string{
	"managed_installs",
	"managed_uninstalls",
	"optional_installs",
	"managed_updates",
}

// Conditional is one entry of a manifest's conditional_items array.
// Munki nests conditionals at most one level deep.
type Conditional struct {
	Condition         string   `plist:"condition"`
	ManagedInstalls   []string `plist:"managed_installs"`
	ManagedUninstalls []string `plist:"managed_uninstalls"`
	OptionalInstalls  []string `plist:"optional_installs"`
	ManagedUpdates    []string `plist:"managed_updates"`
}

// Manifest is the read-side view of a manifest file. Rewrites operate
// on the raw plist dictionary instead (see deprecate), so keys this
// struct does not model survive untouched.
type Manifest struct {
	ManagedInstalls   []string      `plist:"managed_installs"`
	ManagedUninstalls []string      `plist:"managed_uninstalls"`
	OptionalInstalls  []string      `plist:"optional_installs"`
	ManagedUpdates    []string      `plist:"managed_updates"`
	ConditionalItems  []Conditional `plist:"conditional_items"`
}

// ReferencedNames returns every product name the manifest references,
// including names inside conditional sections.
func (m *Manifest) ReferencedNames() []string {
	var names []string
	names = append(names, m.ManagedInstalls...)
	names = append(names, m.ManagedUninstalls...)
	names = append(names, m.OptionalInstalls...)
	names = append(names, m.ManagedUpdates...)
	for _, c := range m.ConditionalItems {
		names = append(names, c.ManagedInstalls...)
		names = append(names, c.ManagedUninstalls...)
		names = append(names, c.OptionalInstalls...)
		names = append(names, c.ManagedUpdates...)
	}
	return names
}

// LoadManifests parses every file in the manifests directory. Files
// that fail to parse are skipped and recorded by path; a broken
// manifest never aborts the batch.
func LoadManifests(r *Repo) (map[string]*Manifest, map[string]string, error) {
	entries, err := os.ReadDir(r.ManifestsDir())
	if err != nil {
		return nil, nil, err
	}

	manifests := make(map[string]*Manifest)
	skipped := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		path := filepath.Join(r.ManifestsDir(), entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			skipped[path] = err.Error()
			continue
		}
		var m Manifest
		if _, err := plist.Unmarshal(data, &m); err != nil {
			skipped[path] = err.Error()
			continue
		}
		manifests[path] = &m
	}
	return manifests, skipped, nil
}
