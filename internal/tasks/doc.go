// Package tasks implements the owner-scoped task operations behind the
// /tasks routes.
//
// Every method takes the caller's user ID and passes it to the store, which
// filters on owner in the same statement that reads or writes. A task owned
// by another user is reported exactly like a missing one, as
// "task not found".
package tasks
