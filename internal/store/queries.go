package store

import (
	"fmt"
	"time"
)

// RecordRun inserts a run row and returns its ID.
func (s *Store) RecordRun(mode, archiveRoot string, fileCount, nameCount int) (int64, error) {
	query := `
		INSERT INTO runs (started_at, mode, archive_root, file_count, name_count)
		VALUES (?, ?, ?, ?, ?)
	`
	res, err := s.db.Exec(query, time.Now().Format(time.RFC3339), mode, archiveRoot, fileCount, nameCount)
	if err != nil {
		return 0, fmt.Errorf("failed to insert run: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

// RecordFile inserts one file action for a run.
func (s *Store) RecordFile(runID int64, path, kind, status, detail string) error {
	query := `
		INSERT INTO run_files (run_id, path, kind, status, detail)
		VALUES (?, ?, ?, ?, ?)
	`
	if _, err := s.db.Exec(query, runID, path, kind, status, detail); err != nil {
		return fmt.Errorf("failed to insert run file %s: %w", path, err)
	}
	return nil
}

// RecordName inserts one manifest-stripped name for a run.
func (s *Store) RecordName(runID int64, name string) error {
	query := `INSERT INTO run_names (run_id, name) VALUES (?, ?)`
	if _, err := s.db.Exec(query, runID, name); err != nil {
		return fmt.Errorf("failed to insert run name %s: %w", name, err)
	}
	return nil
}

// ListRuns returns runs newest first, up to limit (no limit when <= 0).
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	query := `
		SELECT id, started_at, mode, archive_root, file_count, name_count
		FROM runs
		ORDER BY id DESC
	`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}

	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var startedAt string
		if err := rows.Scan(&run.ID, &startedAt, &run.Mode, &run.ArchiveRoot, &run.FileCount, &run.NameCount); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		run.StartedAt, err = time.Parse(time.RFC3339, startedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to parse started_at: %w", err)
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetRunFiles returns the file actions for a run, in insertion order.
func (s *Store) GetRunFiles(runID int64) ([]*RunFile, error) {
	query := `
		SELECT run_id, path, kind, status, detail
		FROM run_files
		WHERE run_id = ?
		ORDER BY rowid
	`
	rows, err := s.db.Query(query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run files: %w", err)
	}
	defer rows.Close()

	var files []*RunFile
	for rows.Next() {
		var f RunFile
		if err := rows.Scan(&f.RunID, &f.Path, &f.Kind, &f.Status, &f.Detail); err != nil {
			return nil, fmt.Errorf("failed to scan run file: %w", err)
		}
		files = append(files, &f)
	}
	return files, rows.Err()
}

// GetRunNames returns the manifest names a run stripped.
func (s *Store) GetRunNames(runID int64) ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM run_names WHERE run_id = ? ORDER BY name`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan run name: %w", err)
		}
		names = append(names, name)
	}
	return names, rows.Err()
}
