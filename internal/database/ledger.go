package database

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/recipecrawl/recipecrawl/internal/model"
)

// dbFileName is the SQLite database file created inside the data directory.
const dbFileName = "recipecrawl.db"

// Ledger provides SQLite-based storage for visit records, kept pages, and
// run metadata. It manages connection pooling and provides methods for the
// crawl driver and the export/report stages.
//
// Design decision: We use a single database file shared by all runs rather
// than one file per run. Resume only works if a later run can see the
// terminal records of earlier ones, and cross-run queries (export, history)
// stay trivial.
type Ledger struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures Ledger behavior.
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

// Open opens or creates a Ledger at the specified directory.
// If CreateIfNotExists is true, the directory and database file are created.
// If CreateIfNotExists is false and the database doesn't exist, an error is
// returned; the export command uses this to fail cleanly on a fresh machine.
func Open(dbDir string, opts Options) (*Ledger, error) {
	dbPath := filepath.Join(dbDir, dbFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (run a crawl first)", dbPath)
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

	// SQLite supports only one writer; funnel everything through a single
	// connection so concurrent workers serialize here instead of failing
	// with SQLITE_BUSY.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	l := &Ledger{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := l.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return l, nil
}

// Close closes the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (l *Ledger) createTables() error {
	schema := `
	-- Visit records: one terminal outcome per normalized URL
	CREATE TABLE IF NOT EXISTS ledger (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		normalized_url TEXT NOT NULL UNIQUE,
		url TEXT NOT NULL,
		domain TEXT NOT NULL,
		depth INTEGER NOT NULL,
		state TEXT NOT NULL,
		http_code INTEGER,
		attempts INTEGER,
		run_id TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_ledger_domain ON ledger(domain);
	CREATE INDEX IF NOT EXISTS idx_ledger_state ON ledger(state);
	CREATE INDEX IF NOT EXISTS idx_ledger_run ON ledger(run_id);

	-- Kept pages with raw bodies
	CREATE TABLE IF NOT EXISTS pages (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		normalized_url TEXT NOT NULL UNIQUE,
		final_url TEXT NOT NULL,
		domain TEXT NOT NULL,
		depth INTEGER NOT NULL,
		origin_url TEXT,
		status_code INTEGER,
		content_type TEXT,
		title TEXT,
		raw BLOB,
		hash TEXT NOT NULL,
		recipe_signal INTEGER NOT NULL DEFAULT 0,
		fetched_at DATETIME,
		run_id TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_pages_domain ON pages(domain);

	-- Politeness skips: at most one record per disallowed domain
	CREATE TABLE IF NOT EXISTS skips (
		domain TEXT PRIMARY KEY,
		run_id TEXT NOT NULL,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Run metadata
	CREATE TABLE IF NOT EXISTS runs (
		run_id TEXT PRIMARY KEY,
		started_at DATETIME NOT NULL,
		finished_at DATETIME,
		seeds TEXT NOT NULL,
		max_depth INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0
	);
	`

	_, err := l.db.ExecContext(context.Background(), schema)
	return err
}

// VisitRecord is one terminal ledger entry.
type VisitRecord struct {
	NormalizedURL string
	URL           string
	Domain        string
	Depth         int
	State         string
	HTTPCode      int
	Attempts      int
	RunID         string
	Timestamp     time.Time
}

// RecordVisit writes the terminal outcome for a URL. Replays of the same
// normalized URL (a resumed run racing its own ledger load) keep the first
// record, so a URL's terminal state is written exactly once.
func (l *Ledger) RecordVisit(ctx context.Context, rec *VisitRecord) error {
	query := `
	INSERT INTO ledger (normalized_url, url, domain, depth, state, http_code, attempts, run_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(normalized_url) DO NOTHING
	`

	_, err := l.db.ExecContext(ctx, query,
		rec.NormalizedURL,
		rec.URL,
		rec.Domain,
		rec.Depth,
		rec.State,
		rec.HTTPCode,
		rec.Attempts,
		rec.RunID,
	)
	if err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	return nil
}

// GetVisit retrieves the terminal record for a normalized URL, or nil when
// the URL has never reached a terminal state.
func (l *Ledger) GetVisit(ctx context.Context, normalizedURL string) (*VisitRecord, error) {
	query := `
	SELECT normalized_url, url, domain, depth, state, http_code, attempts, run_id, timestamp
	FROM ledger
	WHERE normalized_url = ?
	`

	var rec VisitRecord
	var timestamp string

	err := l.db.QueryRowContext(ctx, query, normalizedURL).Scan(
		&rec.NormalizedURL,
		&rec.URL,
		&rec.Domain,
		&rec.Depth,
		&rec.State,
		&rec.HTTPCode,
		&rec.Attempts,
		&rec.RunID,
		&timestamp,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get visit record: %w", err)
	}

	rec.Timestamp = parseTimestamp(timestamp)
	return &rec, nil
}

// LoadVisitedSet returns every normalized URL with a terminal record.
// The frontier seeds its de-duplication set from this so resumed runs never
// re-fetch completed work.
func (l *Ledger) LoadVisitedSet(ctx context.Context) (map[string]struct{}, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT normalized_url FROM ledger`)
	if err != nil {
		return nil, fmt.Errorf("failed to load visited set: %w", err)
	}
	defer rows.Close()

	visited := make(map[string]struct{})
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("failed to scan visited URL: %w", err)
		}
		visited[u] = struct{}{}
	}

	return visited, rows.Err()
}

// SavePage persists a kept page body keyed by its normalized URL.
func (l *Ledger) SavePage(ctx context.Context, normalizedURL, runID string, page *model.Page) error {
	query := `
	INSERT INTO pages (normalized_url, final_url, domain, depth, origin_url,
		status_code, content_type, title, raw, hash, recipe_signal, fetched_at, run_id)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT(normalized_url) DO NOTHING
	`

	_, err := l.db.ExecContext(ctx, query,
		normalizedURL,
		page.URL,
		page.Domain,
		page.Depth,
		page.OriginURL,
		page.StatusCode,
		page.ContentType,
		page.Title,
		page.Raw,
		page.Hash,
		boolToInt(page.RecipeSignal),
		page.FetchedAt.UTC().Format(time.RFC3339),
		runID,
	)
	if err != nil {
		return fmt.Errorf("failed to save page: %w", err)
	}

	return nil
}

// KeptPages returns the metadata of all kept pages, ordered by domain then
// URL. Bodies are omitted; GetPageBody fetches one on demand.
func (l *Ledger) KeptPages(ctx context.Context) ([]model.Page, error) {
	query := `
	SELECT final_url, domain, depth, origin_url, status_code, content_type,
		title, hash, recipe_signal, fetched_at
	FROM pages
	ORDER BY domain, final_url
	`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pages: %w", err)
	}
	defer rows.Close()

	var pages []model.Page
	for rows.Next() {
		var p model.Page
		var origin sql.NullString
		var signal int
		var fetchedAt string

		if err := rows.Scan(&p.URL, &p.Domain, &p.Depth, &origin, &p.StatusCode,
			&p.ContentType, &p.Title, &p.Hash, &signal, &fetchedAt); err != nil {
			return nil, fmt.Errorf("failed to scan page: %w", err)
		}
		p.OriginURL = origin.String
		p.RecipeSignal = signal != 0
		p.FetchedAt = parseTimestamp(fetchedAt)
		pages = append(pages, p)
	}

	return pages, rows.Err()
}

// GetPageBody returns the stored raw body for a normalized URL, or nil when
// no body was kept.
func (l *Ledger) GetPageBody(ctx context.Context, normalizedURL string) ([]byte, error) {
	var raw []byte
	err := l.db.QueryRowContext(ctx,
		`SELECT raw FROM pages WHERE normalized_url = ?`, normalizedURL).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get page body: %w", err)
	}
	return raw, nil
}

// RecordSkip writes the politeness skip record for a disallowed domain.
// The primary key keeps it to one record per domain across all runs.
func (l *Ledger) RecordSkip(ctx context.Context, domain, runID string) error {
	query := `
	INSERT INTO skips (domain, run_id) VALUES (?, ?)
	ON CONFLICT(domain) DO NOTHING
	`

	if _, err := l.db.ExecContext(ctx, query, domain, runID); err != nil {
		return fmt.Errorf("failed to record skip: %w", err)
	}
	return nil
}

// SkippedDomains returns all domains with a politeness skip record.
func (l *Ledger) SkippedDomains(ctx context.Context) ([]string, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT domain FROM skips ORDER BY domain`)
	if err != nil {
		return nil, fmt.Errorf("failed to list skips: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("failed to scan skip: %w", err)
		}
		domains = append(domains, d)
	}

	return domains, rows.Err()
}

// StartRun records the beginning of a crawl run.
func (l *Ledger) StartRun(ctx context.Context, runID string, seeds []string, maxDepth int, startedAt time.Time) error {
	seedsJSON, err := json.Marshal(seeds)
	if err != nil {
		return fmt.Errorf("failed to serialize seeds: %w", err)
	}

	query := `
	INSERT INTO runs (run_id, started_at, seeds, max_depth)
	VALUES (?, ?, ?, ?)
	`

	_, err = l.db.ExecContext(ctx, query,
		runID, startedAt.UTC().Format(time.RFC3339), string(seedsJSON), maxDepth)
	if err != nil {
		return fmt.Errorf("failed to start run: %w", err)
	}

	return nil
}

// FinishRun records the end of a crawl run.
func (l *Ledger) FinishRun(ctx context.Context, runID string, finishedAt time.Time, interrupted bool) error {
	query := `
	UPDATE runs SET finished_at = ?, interrupted = ? WHERE run_id = ?
	`

	_, err := l.db.ExecContext(ctx, query,
		finishedAt.UTC().Format(time.RFC3339), boolToInt(interrupted), runID)
	if err != nil {
		return fmt.Errorf("failed to finish run: %w", err)
	}

	return nil
}

// DomainStats aggregates ledger states per domain across all runs.
// Kept counts come from success records, discarded from content_rejected,
// and failed from the three failure states. Skips are joined in afterwards.
func (l *Ledger) DomainStats(ctx context.Context) ([]model.DomainStats, error) {
	query := `
	SELECT domain,
		COUNT(*) AS visited,
		SUM(CASE WHEN state = 'success' THEN 1 ELSE 0 END) AS kept,
		SUM(CASE WHEN state = 'content_rejected' THEN 1 ELSE 0 END) AS discarded,
		SUM(CASE WHEN state IN ('http_error', 'timeout', 'connection_error') THEN 1 ELSE 0 END) AS failed
	FROM ledger
	GROUP BY domain
	ORDER BY domain
	`

	rows, err := l.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate domain stats: %w", err)
	}
	defer rows.Close()

	var stats []model.DomainStats
	byDomain := make(map[string]int)
	for rows.Next() {
		var s model.DomainStats
		if err := rows.Scan(&s.Domain, &s.Visited, &s.Kept, &s.Discarded, &s.Failed); err != nil {
			return nil, fmt.Errorf("failed to scan domain stats: %w", err)
		}
		byDomain[s.Domain] = len(stats)
		stats = append(stats, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	skipped, err := l.SkippedDomains(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range skipped {
		if i, ok := byDomain[d]; ok {
			stats[i].Skipped = 1
			continue
		}
		stats = append(stats, model.DomainStats{Domain: d, Skipped: 1})
	}
	sort.Slice(stats, func(i, j int) bool { return stats[i].Domain < stats[j].Domain })

	return stats, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
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
