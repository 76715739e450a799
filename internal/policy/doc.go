// Package policy implements the politeness oracle: the per-domain crawl
// permission and crawl-delay lookup consumed read-only by the crawl engine.
//
// The oracle is materialized before a crawl starts, either by loading the
// YAML policy cache written by `recipecrawl robots` or by fetching robots.txt
// for the seed domains directly. Re-checking robots.txt mid-run is out of
// scope; the crawl sees one immutable snapshot.
//
// Unknown or unreachable robots.txt defaults to allowed. This matches common
// crawler behavior: absence of a policy is not a prohibition.
package policy
