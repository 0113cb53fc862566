package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nbscan/nbscan/internal/model"
)

// ScanDB provides SQLite-based storage for scan history.
// It manages connection pooling and provides methods for recording runs
// and querying their results.
//
// Design decision: We use a single database file for all directories
// rather than one file per scanned directory. This simplifies history
// queries across directories and backup/restore operations.
type ScanDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures ScanDB behavior.
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

// Open opens or creates a ScanDB at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*ScanDB, error) {
	dbPath := filepath.Join(dbDir, "nbscan.db")

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

	// modernc.org/sqlite connection string: mode=rw prevents creating new
	// files, mode=rwc allows creation.
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

	// SQLite only supports one writer; multiple readers can still share
	// the connection pool.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	sdb := &ScanDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := sdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return sdb, nil
}

// Close closes the database connection.
func (sdb *ScanDB) Close() error {
	return sdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (sdb *ScanDB) createTables() error {
	schema := `
	-- Scans store one record per scan run
	CREATE TABLE IF NOT EXISTS scans (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		directory TEXT NOT NULL,
		date_scanned DATETIME DEFAULT CURRENT_TIMESTAMP,
		elapsed_ms INTEGER DEFAULT 0,
		files_scanned INTEGER DEFAULT 0,
		cells_scanned INTEGER DEFAULT 0,
		urls_found INTEGER DEFAULT 0,
		output_file TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_scans_directory ON scans(directory);
	CREATE INDEX IF NOT EXISTS idx_scans_date ON scans(date_scanned);

	-- Scan URLs store the URL set each run produced
	CREATE TABLE IF NOT EXISTS scan_urls (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL,
		url TEXT NOT NULL,
		UNIQUE(scan_id, url),
		FOREIGN KEY(scan_id) REFERENCES scans(id)
	);

	CREATE INDEX IF NOT EXISTS idx_scan_urls_scan ON scan_urls(scan_id);

	-- Removed files store corrupt notebooks handled during each run
	CREATE TABLE IF NOT EXISTS removed_files (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		scan_id INTEGER NOT NULL,
		path TEXT NOT NULL,
		reason TEXT NOT NULL,
		kept INTEGER DEFAULT 0,
		FOREIGN KEY(scan_id) REFERENCES scans(id)
	);

	CREATE INDEX IF NOT EXISTS idx_removed_files_scan ON removed_files(scan_id);
	`

	_, err := sdb.db.ExecContext(context.Background(), schema)
	return err
}

// ScanRecord is the stored metadata of one scan run.
type ScanRecord struct {
	// ID is the database identifier of the run.
	ID int64

	// Directory is the scanned directory path.
	Directory string

	// DateScanned is when the run was recorded.
	DateScanned time.Time

	// Elapsed is the wall-clock duration of the run.
	Elapsed time.Duration

	// FilesScanned is the number of directory entries processed.
	FilesScanned int

	// CellsScanned is the number of code cells inspected.
	CellsScanned int

	// URLsFound is the size of the run's URL set.
	URLsFound int

	// RemovedCount is the number of corrupt files handled.
	RemovedCount int

	// OutputFile is where the run wrote its URL list.
	OutputFile string
}

// SaveScanReport records a completed run and its URL set.
// The insert is transactional: either the whole run lands or nothing does.
func (sdb *ScanDB) SaveScanReport(ctx context.Context, report *model.ScanReport) (int64, error) {
	tx, err := sdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	result, err := tx.ExecContext(ctx, `
	INSERT INTO scans (directory, elapsed_ms, files_scanned, cells_scanned, urls_found, output_file)
	VALUES (?, ?, ?, ?, ?, ?)`,
		report.Directory,
		report.Elapsed.Milliseconds(),
		report.FilesScanned,
		report.CellsScanned,
		report.URLCount(),
		report.OutputFile,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan record: %w", err)
	}

	scanID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get scan id: %w", err)
	}

	for _, url := range report.SortedURLs() {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scan_urls (scan_id, url) VALUES (?, ?)`, scanID, url); err != nil {
			return 0, fmt.Errorf("failed to insert scan url: %w", err)
		}
	}

	for _, rf := range report.RemovedFiles {
		kept := 0
		if rf.Kept {
			kept = 1
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO removed_files (scan_id, path, reason, kept) VALUES (?, ?, ?, ?)`,
			scanID, rf.Path, string(rf.Reason), kept); err != nil {
			return 0, fmt.Errorf("failed to insert removed file: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit scan report: %w", err)
	}

	return scanID, nil
}

// ListScannedDirectories returns all directories with recorded runs,
// most recently scanned first.
func (sdb *ScanDB) ListScannedDirectories(ctx context.Context) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT directory FROM scans
	GROUP BY directory
	ORDER BY MAX(date_scanned) DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list directories: %w", err)
	}
	defer rows.Close()

	var dirs []string
	for rows.Next() {
		var dir string
		if err := rows.Scan(&dir); err != nil {
			return nil, fmt.Errorf("failed to scan directory row: %w", err)
		}
		dirs = append(dirs, dir)
	}

	return dirs, rows.Err()
}

// ScanHistory returns all recorded runs for a directory, newest first.
func (sdb *ScanDB) ScanHistory(ctx context.Context, directory string) ([]ScanRecord, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT s.id, s.directory, s.date_scanned, s.elapsed_ms, s.files_scanned,
	       s.cells_scanned, s.urls_found, s.output_file,
	       (SELECT COUNT(*) FROM removed_files r WHERE r.scan_id = s.id)
	FROM scans s
	WHERE s.directory = ?
	ORDER BY s.date_scanned DESC, s.id DESC`, directory)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan history: %w", err)
	}
	defer rows.Close()

	var records []ScanRecord
	for rows.Next() {
		var rec ScanRecord
		var timestamp string
		var elapsedMS int64
		var outputFile sql.NullString

		if err := rows.Scan(
			&rec.ID,
			&rec.Directory,
			&timestamp,
			&elapsedMS,
			&rec.FilesScanned,
			&rec.CellsScanned,
			&rec.URLsFound,
			&outputFile,
			&rec.RemovedCount,
		); err != nil {
			return nil, fmt.Errorf("failed to scan history row: %w", err)
		}

		rec.DateScanned = parseTimestamp(timestamp)
		rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
		rec.OutputFile = outputFile.String
		records = append(records, rec)
	}

	return records, rows.Err()
}

// ScanByID returns the metadata of a single run, or nil when no run with
// that ID exists.
func (sdb *ScanDB) ScanByID(ctx context.Context, id int64) (*ScanRecord, error) {
	row := sdb.db.QueryRowContext(ctx, `
	SELECT s.id, s.directory, s.date_scanned, s.elapsed_ms, s.files_scanned,
	       s.cells_scanned, s.urls_found, s.output_file,
	       (SELECT COUNT(*) FROM removed_files r WHERE r.scan_id = s.id)
	FROM scans s
	WHERE s.id = ?`, id)

	var rec ScanRecord
	var timestamp string
	var elapsedMS int64
	var outputFile sql.NullString

	err := row.Scan(
		&rec.ID,
		&rec.Directory,
		&timestamp,
		&elapsedMS,
		&rec.FilesScanned,
		&rec.CellsScanned,
		&rec.URLsFound,
		&outputFile,
		&rec.RemovedCount,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scan %d: %w", id, err)
	}

	rec.DateScanned = parseTimestamp(timestamp)
	rec.Elapsed = time.Duration(elapsedMS) * time.Millisecond
	rec.OutputFile = outputFile.String
	return &rec, nil
}

// URLsForScan returns the URL set of a run, sorted ascending.
func (sdb *ScanDB) URLsForScan(ctx context.Context, scanID int64) ([]string, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT url FROM scan_urls
	WHERE scan_id = ?
	ORDER BY url ASC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan urls: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan url row: %w", err)
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

// RemovedFilesForScan returns the corrupt-file records of a run.
func (sdb *ScanDB) RemovedFilesForScan(ctx context.Context, scanID int64) ([]model.RemovedFile, error) {
	rows, err := sdb.db.QueryContext(ctx, `
	SELECT path, reason, kept FROM removed_files
	WHERE scan_id = ?
	ORDER BY id ASC`, scanID)
	if err != nil {
		return nil, fmt.Errorf("failed to query removed files: %w", err)
	}
	defer rows.Close()

	var files []model.RemovedFile
	for rows.Next() {
		var rf model.RemovedFile
		var reason string
		var kept int
		if err := rows.Scan(&rf.Path, &reason, &kept); err != nil {
			return nil, fmt.Errorf("failed to scan removed file row: %w", err)
		}
		rf.Reason = model.RemovalReason(reason)
		rf.Kept = kept != 0
		files = append(files, rf)
	}

	return files, rows.Err()
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
