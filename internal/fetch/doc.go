// Package fetch implements the fetch executor: the component that performs
// the network request for one frontier entry, classifies the outcome,
// screens the content, and extracts in-scope outbound links.
//
// All failure handling is local. Transient failures (timeouts, connection
// errors, 429/503 answers) are retried under a single centralized policy
// with exponential backoff; every other failure is terminal for the URL and
// reported in the outcome for the driver to record. No failure of a single
// URL ever propagates as an error to the caller.
//
// Link discovery continues even on pages rejected by content screening:
// navigation and index pages rarely pass the recipe screen themselves but
// are the main source of links that do.
package fetch
