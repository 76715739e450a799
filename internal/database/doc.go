// Package database provides SQLite-based storage for recipecrawl.
//
// This package implements the Ledger, which stores:
//   - Visit records: one terminal outcome per normalized URL
//   - Kept pages with their raw bodies and metadata
//   - Politeness skip records for disallowed domains
//   - Run metadata for resume and reporting
//
// Design decision: We use SQLite (via modernc.org/sqlite) instead of other
// databases because:
//  1. No external dependencies - the database is a single file
//  2. CGO-free implementation allows easy cross-compilation
//  3. Sufficient performance for our use case
//  4. WAL mode provides good concurrent read performance
//
// The ledger records only terminal states. A URL that was in flight when a
// run was interrupted has no row and is rediscovered naturally from the
// seeds on the next run, so resume needs no in-progress bookkeeping.
package database
