// Package domain defines the core business entities of the generation
// engine: work items, the recurrence templates they are generated from,
// weekly plan templates, exemption quotas, and job locks.
//
// Entities here are persistence-agnostic. Storage interfaces live in
// internal/store and their PostgreSQL implementations in
// internal/platform/postgres.
package domain
