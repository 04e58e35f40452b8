package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/mirrorlink/mirrorlink/internal/model"
)

// Run modes stored in the runs table.
const (
	// ModeScan marks a diagnostics-only run.
	ModeScan = "scan"

	// ModeRepair marks a run that rewrote (or dry-ran rewriting) documents.
	ModeRepair = "repair"
)

// RunDB provides SQLite-based storage for reconciliation run history.
// It manages connection pooling and provides methods for CRUD operations.
//
// Design decision: We use a single database file for all mirror pairs
// rather than one file per pair. This keeps cross-pair history queries
// simple and makes backup/restore a single-file operation.
type RunDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures RunDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent performance.
	// This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a RunDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*RunDB, error) {
	dbPath := filepath.Join(dbDir, "mirrorlink.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite uses mode=rw to prevent creating new files and
	// mode=rwc to allow creation.
	var dsn string
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	} else {
		dsn = dbPath + "?mode=rw"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single connection avoids
	// SQLITE_BUSY churn under concurrent mirror runs.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	rdb := &RunDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := rdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return rdb, nil
}

// Close closes the database connection.
func (rdb *RunDB) Close() error {
	return rdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (rdb *RunDB) createTables() error {
	schema := `
	-- Runs store one row per scan or repair, with the full report as JSON
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		mirror TEXT NOT NULL,
		mode TEXT NOT NULL,
		primary_dir TEXT NOT NULL,
		secondary_dir TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP,
		report_json TEXT NOT NULL,
		invalid_links INTEGER DEFAULT 0,
		mismatched_pairs INTEGER DEFAULT 0,
		unmatched_documents INTEGER DEFAULT 0,
		total_fixes INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_mirror ON runs(mirror);
	CREATE INDEX IF NOT EXISTS idx_runs_timestamp ON runs(timestamp);

	-- Document fingerprints seen during a run, for change detection
	CREATE TABLE IF NOT EXISTS documents (
		run_id INTEGER NOT NULL REFERENCES runs(id),
		tree TEXT NOT NULL,
		name TEXT NOT NULL,
		fingerprint TEXT NOT NULL,
		UNIQUE(run_id, tree, name)
	);

	CREATE INDEX IF NOT EXISTS idx_documents_run ON documents(run_id);
	`

	_, err := rdb.db.ExecContext(context.Background(), schema)
	return err
}

// SaveScanRun saves a diagnostics report as a scan run and returns its ID.
// The trees' directories are recorded so history output can tell runs of
// differently-located pairs apart even under the same mirror name.
func (rdb *RunDB) SaveScanRun(ctx context.Context, mirror, primaryDir, secondaryDir string, report *model.DiagnosticsReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	query := `
	INSERT INTO runs (mirror, mode, primary_dir, secondary_dir, report_json,
		invalid_links, mismatched_pairs, unmatched_documents)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		mirror,
		ModeScan,
		primaryDir,
		secondaryDir,
		string(reportJSON),
		report.InvalidLinks,
		report.MismatchedPairs,
		report.UnmatchedDocuments,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save scan run: %w", err)
	}

	return result.LastInsertId()
}

// SaveRepairRun saves a repair report as a repair run and returns its ID.
// Issue counters are taken from the embedded diagnostics when present.
func (rdb *RunDB) SaveRepairRun(ctx context.Context, mirror, primaryDir, secondaryDir string, report *model.RepairReport) (int64, error) {
	reportJSON, err := json.Marshal(report)
	if err != nil {
		return 0, fmt.Errorf("failed to serialize report: %w", err)
	}

	var invalid, mismatched, unmatched int
	if report.Diagnostics != nil {
		invalid = report.Diagnostics.InvalidLinks
		mismatched = report.Diagnostics.MismatchedPairs
		unmatched = report.Diagnostics.UnmatchedDocuments
	}

	query := `
	INSERT INTO runs (mirror, mode, primary_dir, secondary_dir, report_json,
		invalid_links, mismatched_pairs, unmatched_documents, total_fixes)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := rdb.db.ExecContext(ctx, query,
		mirror,
		ModeRepair,
		primaryDir,
		secondaryDir,
		string(reportJSON),
		invalid,
		mismatched,
		unmatched,
		report.TotalFixes(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save repair run: %w", err)
	}

	return result.LastInsertId()
}

// SaveFingerprints records a content fingerprint for every given document
// under the given run. Uses UPSERT so re-saving a run's documents is safe.
func (rdb *RunDB) SaveFingerprints(ctx context.Context, runID int64, docs []*model.Document) error {
	query := `
	INSERT INTO documents (run_id, tree, name, fingerprint)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(run_id, tree, name) DO UPDATE SET
		fingerprint = excluded.fingerprint
	`

	for _, doc := range docs {
		if _, err := rdb.db.ExecContext(ctx, query,
			runID,
			doc.Tree.String(),
			doc.Name,
			doc.Fingerprint(),
		); err != nil {
			return fmt.Errorf("failed to save fingerprint for %s: %w", doc.Ref(), err)
		}
	}
	return nil
}

// RunMetadata contains summary information about a stored run.
// This is used for displaying history without loading the full report.
type RunMetadata struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Mirror is the mirror pair name the run was performed on.
	Mirror string

	// Mode is ModeScan or ModeRepair.
	Mode string

	// PrimaryDir and SecondaryDir are the tree directories of the run.
	PrimaryDir   string
	SecondaryDir string

	// Timestamp is when the run was saved.
	Timestamp time.Time

	// InvalidLinks, MismatchedPairs and UnmatchedDocuments are the issue
	// counters of the run's report.
	InvalidLinks       int
	MismatchedPairs    int
	UnmatchedDocuments int

	// TotalFixes is the fix count for repair runs, zero for scans.
	TotalFixes int
}

// TotalIssues returns the sum of the issue counters.
func (m RunMetadata) TotalIssues() int {
	return m.InvalidLinks + m.MismatchedPairs + m.UnmatchedDocuments
}

// ListRuns returns run metadata, newest first. When mirror is non-empty,
// only runs of that mirror pair are returned.
func (rdb *RunDB) ListRuns(ctx context.Context, mirror string) ([]RunMetadata, error) {
	query := `
	SELECT id, mirror, mode, primary_dir, secondary_dir, timestamp,
		invalid_links, mismatched_pairs, unmatched_documents, total_fixes
	FROM runs
	`
	args := make([]any, 0, 1)

	if mirror != "" {
		query += " WHERE mirror = ?"
		args = append(args, mirror)
	}
	query += " ORDER BY timestamp DESC, id DESC"

	rows, err := rdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunMetadata
	for rows.Next() {
		var meta RunMetadata
		var timestamp string

		if err := rows.Scan(
			&meta.ID,
			&meta.Mirror,
			&meta.Mode,
			&meta.PrimaryDir,
			&meta.SecondaryDir,
			&timestamp,
			&meta.InvalidLinks,
			&meta.MismatchedPairs,
			&meta.UnmatchedDocuments,
			&meta.TotalFixes,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run metadata: %w", err)
		}

		meta.Timestamp = parseTimestamp(timestamp)
		results = append(results, meta)
	}

	return results, rows.Err()
}

// Run is a stored run with its full report decoded.
// Exactly one of Scan and Repair is non-nil, matching Meta.Mode.
type Run struct {
	// Meta is the run's summary row.
	Meta RunMetadata

	// Scan is the diagnostics report for scan runs.
	Scan *model.DiagnosticsReport

	// Repair is the repair report for repair runs.
	Repair *model.RepairReport
}

// Issues returns the run's findings regardless of mode. Repair runs
// without embedded diagnostics yield nil.
func (r *Run) Issues() []model.Issue {
	switch {
	case r.Scan != nil:
		return r.Scan.Issues
	case r.Repair != nil && r.Repair.Diagnostics != nil:
		return r.Repair.Diagnostics.Issues
	default:
		return nil
	}
}

// GetRunByID retrieves a stored run with its full report.
// Returns nil without error when the ID does not exist.
func (rdb *RunDB) GetRunByID(ctx context.Context, id int64) (*Run, error) {
	query := `
	SELECT id, mirror, mode, primary_dir, secondary_dir, timestamp,
		invalid_links, mismatched_pairs, unmatched_documents, total_fixes,
		report_json
	FROM runs
	WHERE id = ?
	`

	var run Run
	var timestamp, reportJSON string

	err := rdb.db.QueryRowContext(ctx, query, id).Scan(
		&run.Meta.ID,
		&run.Meta.Mirror,
		&run.Meta.Mode,
		&run.Meta.PrimaryDir,
		&run.Meta.SecondaryDir,
		&timestamp,
		&run.Meta.InvalidLinks,
		&run.Meta.MismatchedPairs,
		&run.Meta.UnmatchedDocuments,
		&run.Meta.TotalFixes,
		&reportJSON,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	run.Meta.Timestamp = parseTimestamp(timestamp)

	switch run.Meta.Mode {
	case ModeRepair:
		var report model.RepairReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("failed to parse repair report: %w", err)
		}
		run.Repair = &report
	default:
		var report model.DiagnosticsReport
		if err := json.Unmarshal([]byte(reportJSON), &report); err != nil {
			return nil, fmt.Errorf("failed to parse scan report: %w", err)
		}
		run.Scan = &report
	}

	return &run, nil
}

// ChangedBetween returns the "tree/name" refs of documents whose content
// fingerprint differs between two runs, plus documents present in only one
// of them. Results are sorted by tree, then name.
func (rdb *RunDB) ChangedBetween(ctx context.Context, runA, runB int64) ([]string, error) {
	query := `
	SELECT COALESCE(a.tree, b.tree), COALESCE(a.name, b.name)
	FROM (SELECT tree, name, fingerprint FROM documents WHERE run_id = ?) a
	FULL OUTER JOIN (SELECT tree, name, fingerprint FROM documents WHERE run_id = ?) b
		ON a.tree = b.tree AND a.name = b.name
	WHERE a.fingerprint IS NULL OR b.fingerprint IS NULL OR a.fingerprint != b.fingerprint
	ORDER BY 1, 2
	`

	rows, err := rdb.db.QueryContext(ctx, query, runA, runB)
	if err != nil {
		return nil, fmt.Errorf("failed to diff fingerprints: %w", err)
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var tree, name string
		if err := rows.Scan(&tree, &name); err != nil {
			return nil, fmt.Errorf("failed to scan fingerprint diff: %w", err)
		}
		refs = append(refs, tree+"/"+name)
	}

	return refs, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// SQLite may return timestamps in different formats depending on configuration.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
