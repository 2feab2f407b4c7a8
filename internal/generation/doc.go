// Package generation materializes concrete, dated work items from
// declarative recurrence templates and weekly plan templates.
//
// The daily path runs, per template: cycle boundary check, recurrence
// evaluation, dedup pre-check, materialization, persist, reconciliation.
// Correctness under concurrent invocations does not rely on mutual
// exclusion during materialization: the storage uniqueness constraint on
// (template_id, generated_for_date) is the backstop for races that slip
// past the pre-check, and the Reconciler repairs any duplicates that
// predate the constraint or arrive through unexpected paths.
//
// The weekly path is coarser: it runs under a persisted job lock and
// dedupes per template on "any linked item created since this week's
// Monday", based on creation time rather than a generation-date marker.
// Near a week boundary a very late-firing trigger can therefore disagree
// with the daily generators about which week an item belongs to; this
// matches the observed behavior of the system and is intentionally left
// unreconciled.
package generation
