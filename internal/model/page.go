package model

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// MaxPageSize is the maximum size of raw page content to store.
// Larger bodies are truncated to this size before persisting.
// 5MB is generous for HTML recipe pages while bounding memory per worker.
const MaxPageSize = 5 * 1024 * 1024 // 5 MB

// Page represents a fetched web page that passed content screening and is
// handed to the persistence layer.
//
// Design decision: We keep the struct minimal (no parsed forms, scripts, or
// metadata) because the engine deliberately does not interpret content.
// Downstream extraction stages consume the raw body.
type Page struct {
	// URL is the final URL of the page after any redirects.
	URL string `json:"url"`

	// Domain is the registrable domain the page belongs to.
	Domain string `json:"domain"`

	// Depth is the crawl depth at which the page was discovered.
	// 0 means the page is a seed.
	Depth int `json:"depth"`

	// OriginURL is the page on which this URL was discovered.
	// Empty for seeds.
	OriginURL string `json:"origin_url,omitempty"`

	// StatusCode is the HTTP response status code.
	StatusCode int `json:"status_code"`

	// ContentType is the MIME type from the Content-Type header.
	ContentType string `json:"content_type"`

	// Title is the page title extracted from the <title> tag, if any.
	Title string `json:"title,omitempty"`

	// Raw contains the raw response body, truncated to MaxPageSize.
	Raw []byte `json:"-"` // Excluded from JSON to keep exports small

	// Hash is the SHA-256 hash of the raw content before truncation.
	// Used by downstream deduplication (out of scope here) and change detection.
	Hash string `json:"hash"`

	// RecipeSignal reports whether content screening found a strong recipe
	// indicator (schema.org Recipe JSON-LD) rather than just keywords.
	RecipeSignal bool `json:"recipe_signal"`

	// FetchedAt is the time the page body was received.
	FetchedAt time.Time `json:"fetched_at"`
}

// ComputeHash calculates and stores the SHA-256 hash of the raw content.
func (p *Page) ComputeHash() {
	sum := sha256.Sum256(p.Raw)
	p.Hash = hex.EncodeToString(sum[:])
}

// TruncateRaw limits the raw content to MaxPageSize bytes.
// Call ComputeHash before truncating so the hash covers the full body.
func (p *Page) TruncateRaw() {
	if len(p.Raw) > MaxPageSize {
		p.Raw = p.Raw[:MaxPageSize]
	}
}
