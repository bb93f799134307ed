// Package dedupe remembers, for a bounded time window, which result a request
// key produced. taskd uses it to honor the Idempotency-Key header on task
// creation: a retried POST carrying the same key within the window returns the
// task created by the first attempt instead of creating another one.
package dedupe
