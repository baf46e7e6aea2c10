// Package database provides SQLite-based storage for sitescrape.
//
// This package implements the ExportDB, which archives:
//   - One row per crawl run (seed, domain, timing, counts)
//   - The page records of each run, in processing order
//   - The pages that failed during each run
//
// Design decision: We use SQLite (via modernc.org/sqlite) because:
// 1. The archive is a single file in the user's data directory
// 2. CGO-free implementation allows easy cross-compilation
// 3. WAL mode keeps history queries fast while a batch is being saved
package database
