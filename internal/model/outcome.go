package model

import "fmt"

// FetchStatus classifies the result of one fetch attempt.
type FetchStatus int

// Fetch attempt classifications. The taxonomy mirrors the retry policy:
// transient statuses may be retried, terminal ones may not.
const (
	// StatusSuccess means a 2xx/3xx response whose body passed screening.
	StatusSuccess FetchStatus = iota

	// StatusHTTPError means the server answered with status >= 400.
	StatusHTTPError

	// StatusTimeout means no response arrived within the request timeout.
	StatusTimeout

	// StatusConnectionError means a network-level failure (DNS, refused
	// connection, TLS handshake).
	StatusConnectionError

	// StatusContentRejected means the response arrived but the body failed
	// screening (wrong content type, size bounds, no relevance signal).
	// Outbound links are still harvested from rejected pages.
	StatusContentRejected
)

// String returns a stable, lowercase name for the status.
// These names are persisted in the ledger, so they must not change.
func (s FetchStatus) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusHTTPError:
		return "http_error"
	case StatusTimeout:
		return "timeout"
	case StatusConnectionError:
		return "connection_error"
	case StatusContentRejected:
		return "content_rejected"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Retryable reports whether a fetch attempt with this status may be retried.
// HTTP errors are only conditionally retryable (429/503); the executor
// checks the code separately.
func (s FetchStatus) Retryable() bool {
	return s == StatusTimeout || s == StatusConnectionError
}

// FetchOutcome is the result of crawling one URL, produced once per attempt
// sequence (including retries) and consumed by the crawl driver.
type FetchOutcome struct {
	// URL is the requested URL.
	URL string

	// FinalURL is the URL after redirects. Equal to URL when no redirect
	// occurred. Links are resolved against this value.
	FinalURL string

	// Status classifies the terminal result of the attempt sequence.
	Status FetchStatus

	// HTTPCode is the HTTP status code when Status is StatusHTTPError or
	// the final response code otherwise. Zero for network-level failures.
	HTTPCode int

	// Attempts is the total number of attempts made, including the first.
	Attempts int

	// ExtractedLinks holds in-scope absolute URLs discovered on the page,
	// in document order. Populated for success and content_rejected.
	ExtractedLinks []string

	// Page holds the kept body and metadata. Non-nil only for StatusSuccess.
	Page *Page
}
