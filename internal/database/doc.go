// Package database provides SQLite-based storage for nbscan.
//
// This package implements the ScanDB, which stores:
//   - Per-run scan records with extraction statistics
//   - The URL set each run produced
//   - Corrupt files removed (or flagged) during each run
//
// The database is a history journal: scans never read it, only append to
// it, and the compare command uses it to diff URL sets between runs.
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
// 1. No external dependencies - the database is a single file
// 2. CGO-free implementation allows easy cross-compilation
// 3. Sufficient performance for our use case
// 4. WAL mode provides good concurrent read performance
package database
