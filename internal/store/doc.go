// Package store provides persistent storage for taskd using SQLite.
//
// # Architecture
//
// Two interfaces split the persistence surface:
//
//   - UserStore: account creation and lookup by ID or email
//   - TaskStore: owner-scoped task CRUD, listing, and bulk delete
//
// Store combines both with Ping and Close. SQLiteStore implements Store in a
// single struct; MockStore is an in-memory implementation with the same
// semantics for unit tests.
//
// # Ownership
//
// Every TaskStore method other than CreateTask takes the owner ID and folds it
// into the statement itself:
//
//	UPDATE tasks SET ... WHERE id = ? AND owner_id = ? RETURNING ...
//	DELETE FROM tasks WHERE id = ? AND owner_id = ?
//
// There is no separate "load, compare owner, then write" step, so a task
// cannot change hands between the check and the mutation. A task owned by
// another user yields ErrNotFound, the same as a missing one.
//
// # SQLite Configuration
//
// WAL journal mode is enabled for file databases. foreign_keys and
// busy_timeout are set through the DSN so they apply to every pooled
// connection. Timestamps are stored as fixed-width UTC strings so that
// ORDER BY created_at sorts chronologically.
//
// # Error Handling
//
//   - ErrNotFound: entity does not exist (or is not owned by the caller)
//   - ErrEmailExists: a user with the email is already registered
//
// Other failures are wrapped with context and should be treated as internal.
//
// # Testing
//
// Use NewMockStore() for unit tests and NewSQLiteStore(path) with a
// t.TempDir() path for integration tests against real SQLite.
package store
