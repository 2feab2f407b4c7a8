// Package store provides abstractions for data persistence: entity store
// interfaces, shared store errors, the DBTX database abstraction, and the
// RunInTransaction helper. PostgreSQL implementations live in
// internal/platform/postgres.
package store
