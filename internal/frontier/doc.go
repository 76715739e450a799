// Package frontier implements the authoritative pending-work queue of the
// crawl engine.
//
// The frontier owns three responsibilities that must stay together to keep
// the engine's invariants cheap to enforce:
//
//   - URL normalization, so de-duplication is stable across the different
//     spellings a link can appear under
//   - the visited-or-queued set, seeded at startup from the ledger, with
//     atomic check-and-insert under concurrent enqueues
//   - depth-bound and admission checks (politeness policy, link classifier)
//     applied before a URL ever becomes pending work
//
// Dequeuing is fair across domains: entries are drawn round-robin over the
// domains that currently have pending work, so one domain's deep backlog
// cannot starve the others while workers are available.
package frontier
