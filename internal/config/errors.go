package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() and provide specific
// information about what is wrong with the configuration.
//
// Design decision: We use package-level sentinel errors rather than
// creating new error instances in Validate(). This allows callers to use
// errors.Is() for programmatic error handling while still providing
// human-readable messages.
var (
	// ErrNoSeeds is returned when no seed domain is specified.
	// A crawl without seeds has nothing to do.
	ErrNoSeeds = errors.New("no seed domains specified: provide seeds as arguments or in the config file")

	// ErrInvalidMaxDepth is returned when the depth bound is negative.
	// Depth 0 means seeds only; negative depth is meaningless.
	ErrInvalidMaxDepth = errors.New("invalid max depth: must be non-negative")

	// ErrInvalidTimeout is returned when the request timeout is not positive.
	// A zero or negative timeout would cause immediate request failures.
	ErrInvalidTimeout = errors.New("invalid request timeout: must be positive")

	// ErrInvalidConcurrency is returned when the global worker count is not
	// positive. Zero workers would mean the crawl never makes progress.
	ErrInvalidConcurrency = errors.New("invalid global concurrency: must be positive")

	// ErrInvalidDomainConcurrency is returned when the per-domain
	// concurrency limit is not positive.
	ErrInvalidDomainConcurrency = errors.New("invalid per-domain concurrency: must be positive")

	// ErrInvalidMinInterval is returned when the per-domain minimum request
	// interval is negative. Use 0 to disable the interval floor.
	ErrInvalidMinInterval = errors.New("invalid per-domain interval: must be non-negative")

	// ErrInvalidMaxRetries is returned when the retry count is negative.
	ErrInvalidMaxRetries = errors.New("invalid max retries: must be non-negative")

	// ErrInvalidBodyBounds is returned when the body size screen is
	// inverted (minimum above maximum) or negative.
	ErrInvalidBodyBounds = errors.New("invalid body size bounds: need 0 <= min < max")

	// ErrConflictingReportFormats is returned when more than one of --json,
	// --csv, and --markdown is specified for the summary output.
	ErrConflictingReportFormats = errors.New("conflicting report formats: choose at most one of --json, --csv, --markdown")
)
