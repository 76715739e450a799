// Package classify implements the keyword-based link classifier.
//
// The classifier is a pure function from a candidate URL to a verdict
// (Accept, Reject, Uncertain), driven by externally supplied positive and
// negative regular-expression term lists. It shares no state with the crawl
// engine beyond this call, so the frontier can invoke it concurrently.
//
// Before matching, URLs are cleaned: percent-encoding is decoded until
// stable, the result is lowercased, and diacritics are folded to their ASCII
// base characters so that "Rezept" and "rezépt" match the same term.
package classify
