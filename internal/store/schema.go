package store

const schema = `
CREATE TABLE IF NOT EXISTS runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    started_at TIMESTAMP NOT NULL,
    mode TEXT NOT NULL,
    archive_root TEXT,
    file_count INTEGER,
    name_count INTEGER
);

CREATE TABLE IF NOT EXISTS run_files (
    run_id INTEGER NOT NULL,
    path TEXT NOT NULL,
    kind TEXT NOT NULL,
    status TEXT NOT NULL,
    detail TEXT,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE TABLE IF NOT EXISTS run_names (
    run_id INTEGER NOT NULL,
    name TEXT NOT NULL,
    FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
CREATE INDEX IF NOT EXISTS idx_run_names_run ON run_names(run_id);
`
