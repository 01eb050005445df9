package store

import "time"

// Run is one recorded deprecate invocation.
type Run struct {
	ID          int64
	StartedAt   time.Time
	Mode        string // "removed" or "archived"
	ArchiveRoot string
	FileCount   int
	NameCount   int
}

// RunFile is one file a run removed, archived, or failed on.
type RunFile struct {
	RunID  int64
	Path   string
	Kind   string // "pkginfo" or "pkg"
	Status string // "removed", "archived", or "failed"
	Detail string
}
