package deprecate

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dodobyrd/Spruce-for-Munki/internal/repo"
)

// Journal records completed removal runs. Satisfied by store.Store;
// a nil journal disables recording.
type Journal interface {
	RecordRun(mode, archiveRoot string, fileCount, nameCount int) (int64, error)
	RecordFile(runID int64, path, kind, status, detail string) error
	RecordName(runID int64, name string) error
}

// Modes a run can execute in.
const (
	ModeRemoved  = "removed"
	ModeArchived = "archived"
)

// Executor performs the filesystem mutation for a plan and the
// follow-up manifest rewrite. ArchiveRoot empty means delete.
type Executor struct {
	Repo        *repo.Repo
	ArchiveRoot string
	Journal     Journal
	Out         io.Writer
}

// Result reports what a run actually did. File failures are
// best-effort soft errors; advisories are user-facing warnings that
// never stop the run.
type Result struct {
	Removed    []string
	Failures   map[string]string
	FinalNames []string
	Rewritten  []string
	Advisories []string
}

// Mode returns the journal mode string for this executor.
func (e *Executor) Mode() string {
	if e.ArchiveRoot != "" {
		return ModeArchived
	}
	return ModeRemoved
}

func (e *Executor) out() io.Writer {
	if e.Out == nil {
		return io.Discard
	}
	return e.Out
}

// Execute mutates the repository per the plan. Delete mode is
// best-effort per file. Archive mode aborts on any directory-creation
// failure: a partially created archive tree would silently lose items.
// The manifest rewrite always runs afterwards when the plan names
// products for removal, against a fresh cache read.
func (e *Executor) Execute(plan *Plan) (*Result, error) {
	result := &Result{Failures: make(map[string]string)}

	var err error
	if e.ArchiveRoot != "" {
		err = e.archive(plan.Files(), result)
	} else {
		e.remove(plan.Files(), result)
	}
	if err != nil {
		return result, err
	}

	if err := e.rewriteManifests(plan.Names, result); err != nil {
		return result, err
	}

	e.journal(plan, result)
	return result, nil
}

// remove deletes each file in turn. A failure on one item, including
// an item already gone, is recorded and the batch continues.
func (e *Executor) remove(files []string, result *Result) {
	for _, path := range files {
		if _, err := os.Stat(path); err != nil {
			result.Failures[path] = err.Error()
			continue
		}
		// RemoveAll also covers bundle-style installer directories.
		if err := os.RemoveAll(path); err != nil {
			result.Failures[path] = err.Error()
			continue
		}
		result.Removed = append(result.Removed, path)
	}
}

// archive moves each file to its mirrored path under the archive root.
func (e *Executor) archive(files []string, result *Result) error {
	for _, dir := range []string{"pkgs", "pkgsinfo"} {
		if err := os.MkdirAll(filepath.Join(e.ArchiveRoot, dir), 0755); err != nil {
			return fmt.Errorf("failed to create archive directory: %w", err)
		}
	}

	for _, path := range files {
		rel, err := filepath.Rel(e.Repo.Root, path)
		if err != nil {
			result.Failures[path] = err.Error()
			continue
		}
		dest := filepath.Join(e.ArchiveRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return fmt.Errorf("failed to create archive directory %s: %w", filepath.Dir(dest), err)
		}
		if err := moveFile(path, dest); err != nil {
			result.Failures[path] = err.Error()
			continue
		}
		result.Removed = append(result.Removed, path)
	}
	return nil
}

// moveFile renames src to dest, falling back to copy-and-delete for
// regular files when the archive root is on another filesystem.
func moveFile(src, dest string) error {
	if err := os.Rename(src, dest); err == nil {
		return nil
	}
	info, err := os.Stat(src)
	if err != nil {
		return err
	}
	if info.IsDir() {
		return fmt.Errorf("cannot move directory %s across filesystems", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dest, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return err
	}
	return os.Remove(src)
}

// journal records the run. Failures here are downgraded to advisories:
// the repository mutation already happened and must be reported.
func (e *Executor) journal(plan *Plan, result *Result) {
	if e.Journal == nil {
		return
	}
	runID, err := e.Journal.RecordRun(e.Mode(), e.ArchiveRoot, len(plan.Files()), len(result.FinalNames))
	if err != nil {
		result.Advisories = append(result.Advisories, fmt.Sprintf("journal: %v", err))
		return
	}
	record := func(paths []string, kind string) {
		for _, path := range paths {
			status := e.Mode()
			detail := ""
			if msg, failed := result.Failures[path]; failed {
				status, detail = "failed", msg
			}
			if err := e.Journal.RecordFile(runID, path, kind, status, detail); err != nil {
				result.Advisories = append(result.Advisories, fmt.Sprintf("journal: %v", err))
			}
		}
	}
	record(plan.PkgInfos, "pkginfo")
	record(plan.Pkgs, "pkg")
	for _, name := range result.FinalNames {
		if err := e.Journal.RecordName(runID, name); err != nil {
			result.Advisories = append(result.Advisories, fmt.Sprintf("journal: %v", err))
		}
	}
}
