package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These are tuned for polite crawling of ordinary clearnet recipe sites.
const (
	// DefaultMaxDepth limits link-graph recursion from each seed.
	// Depth 2 reaches section indexes and the recipe pages they link to,
	// which covers the common site layout (home -> category -> recipe).
	DefaultMaxDepth = 2

	// DefaultGlobalConcurrency bounds the worker pool across all domains.
	// 16 workers keep a multi-domain crawl busy without saturating a
	// typical residential uplink.
	DefaultGlobalConcurrency = 16

	// DefaultDomainConcurrency bounds simultaneous requests to one host.
	// More than a couple of parallel connections to a single site is
	// rarely polite regardless of crawl-delay settings.
	DefaultDomainConcurrency = 2

	// DefaultMinInterval is the floor for the per-domain inter-request
	// interval when robots.txt supplies no crawl-delay. One second is the
	// conventional conservative default.
	DefaultMinInterval = 1 * time.Second

	// DefaultRequestTimeout is the per-attempt HTTP timeout.
	// Recipe sites are ordinary clearnet hosts; 30 seconds tolerates slow
	// shared hosting without stalling a worker for long.
	DefaultRequestTimeout = 30 * time.Second

	// DefaultMaxRetries is the number of retries after the first attempt
	// for transient failures (timeout, connection error, 429/503).
	DefaultMaxRetries = 2

	// DefaultMaxRedirects caps redirect chains per request.
	// Long chains on recipe sites are almost always bot traps or broken
	// canonicalization loops.
	DefaultMaxRedirects = 2

	// DefaultMinBodySize rejects bodies too small to plausibly contain a
	// recipe (ingredient list plus instructions).
	DefaultMinBodySize = 2 * 1024 // 2 KB

	// DefaultMaxBodySize rejects pathological pages and bounds memory.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5 MB

	// DefaultUserAgent identifies the crawler in HTTP requests.
	// A descriptive User-Agent lets operators identify crawler traffic.
	DefaultUserAgent = "recipecrawl/1.0 (+https://github.com/recipecrawl/recipecrawl)"

	// AppName is the application name used for XDG directory paths.
	AppName = "recipecrawl"

	// PolicyCacheFile is the file name of the politeness policy cache
	// inside the data directory.
	PolicyCacheFile = "robots-policy.yaml"
)

// Config holds all configuration options for one crawl run.
//
// Design decision: We use a single flat struct instead of nested sub-structs
// (FrontierConfig, FetchConfig, ...) for simplicity. The number of options is
// manageable, and every component receives the whole Config read-only.
type Config struct {
	// Seeds is the list of seed domains or URLs to crawl from.
	// A bare domain ("example.com") is crawled from its root; a full URL
	// that already looks recipe-focused is used as the base as-is.
	Seeds []string

	// MaxDepth is the maximum link recursion depth from each seed.
	// Depth 0 fetches only the seed pages.
	MaxDepth int

	// GlobalConcurrency is the size of the crawl worker pool.
	GlobalConcurrency int

	// DomainConcurrency is the per-domain in-flight request limit.
	DomainConcurrency int

	// MinInterval is the minimum interval between two request issuances to
	// the same domain. Used as a floor when robots.txt supplies a shorter
	// (or no) crawl-delay.
	MinInterval time.Duration

	// RequestTimeout is the timeout for each individual HTTP attempt.
	RequestTimeout time.Duration

	// MaxRetries is the number of retries after the first attempt for
	// transient failures. A URL is attempted at most MaxRetries+1 times.
	MaxRetries int

	// MaxRedirects caps the redirect chain length per request.
	MaxRedirects int

	// MinBodySize and MaxBodySize bound acceptable response body sizes
	// during content screening.
	MinBodySize int64
	MaxBodySize int64

	// UserAgent is the User-Agent header sent with every request,
	// including robots.txt fetches.
	UserAgent string

	// PositiveTerms and NegativeTerms drive the link classifier.
	// Each entry is a regular expression matched against the cleaned URL.
	// Negative terms win over positive ones.
	PositiveTerms []string
	NegativeTerms []string

	// PolicyFile is the path of the politeness policy cache produced by
	// `recipecrawl robots`. Empty means the XDG default location.
	PolicyFile string

	// FetchRobots makes the crawl command fetch robots.txt for seed
	// domains missing from the policy cache instead of defaulting them
	// to allowed.
	FetchRobots bool

	// DBDir is the directory holding the SQLite crawl database.
	// Defaults to the XDG data directory.
	DBDir string

	// Verbose enables debug-level logging.
	Verbose bool

	// JSONReport, CSVReport, and MarkdownReport select the summary output
	// format. At most one may be set; none means human-readable text.
	JSONReport     bool
	CSVReport      bool
	MarkdownReport bool

	// ReportFile is the output path for the summary report.
	// Empty writes to stdout.
	ReportFile string

	// ConfigFilePath is the path of the YAML configuration file.
	// Empty triggers the FindConfigFile search.
	ConfigFilePath string
}

// NewConfig creates a Config with default values.
//
// Design decision: We use a constructor instead of relying on zero values
// because most defaults are non-zero. The constructor also serves as
// documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		MaxDepth:          DefaultMaxDepth,
		GlobalConcurrency: DefaultGlobalConcurrency,
		DomainConcurrency: DefaultDomainConcurrency,
		MinInterval:       DefaultMinInterval,
		RequestTimeout:    DefaultRequestTimeout,
		MaxRetries:        DefaultMaxRetries,
		MaxRedirects:      DefaultMaxRedirects,
		MinBodySize:       DefaultMinBodySize,
		MaxBodySize:       DefaultMaxBodySize,
		UserAgent:         DefaultUserAgent,
		DBDir:             XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for recipecrawl.
// On Linux: ~/.local/share/recipecrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for recipecrawl.
// On Linux: ~/.config/recipecrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// DefaultPolicyFile returns the default path of the politeness policy cache.
func DefaultPolicyFile() string {
	return filepath.Join(XDGDataDir(), PolicyCacheFile)
}

// Validate checks the configuration and returns the first problem found.
//
// Design decision: We validate once after CLI parsing, before any crawling
// begins, to fail fast with a clear message. We return the first error
// rather than collecting all of them because fixing one often makes the
// rest irrelevant.
func (c *Config) Validate() error {
	if len(c.Seeds) == 0 {
		return ErrNoSeeds
	}
	if c.MaxDepth < 0 {
		return ErrInvalidMaxDepth
	}
	if c.RequestTimeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.GlobalConcurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.DomainConcurrency <= 0 {
		return ErrInvalidDomainConcurrency
	}
	if c.MinInterval < 0 {
		return ErrInvalidMinInterval
	}
	if c.MaxRetries < 0 {
		return ErrInvalidMaxRetries
	}
	if c.MinBodySize < 0 || c.MaxBodySize <= c.MinBodySize {
		return ErrInvalidBodyBounds
	}

	formats := 0
	for _, set := range []bool{c.JSONReport, c.CSVReport, c.MarkdownReport} {
		if set {
			formats++
		}
	}
	if formats > 1 {
		return ErrConflictingReportFormats
	}

	return nil
}
