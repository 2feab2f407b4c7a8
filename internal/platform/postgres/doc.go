// Package postgres contains the PostgreSQL implementations of the store
// interfaces defined in internal/store, using the pgx driver through
// database/sql. Database errors are translated to store sentinel errors by
// MapError so that callers never depend on driver-specific error types; in
// particular, unique violations on the generated-item dedup index surface
// as store.ErrDuplicate.
package postgres
