// Package mocks provides hand-rolled in-memory implementations of the
// store interfaces for unit tests. The work item store enforces the same
// (template_id, generated_for_date) uniqueness rule as the PostgreSQL
// partial index, so the generation engine's race handling can be
// exercised without a database.
package mocks
