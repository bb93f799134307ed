// Package server exposes taskd over HTTP.
//
// # Routes
//
//	GET    /health             liveness, always 200
//	GET    /health/ready       200 when the store answers a ping, else 503
//	POST   /auth/register      create an account
//	POST   /auth/login         exchange credentials for a bearer token
//	GET    /auth/me            the caller's profile
//	POST   /tasks              create a task
//	GET    /tasks              list tasks (?page=&limit=&status=&search=)
//	GET    /tasks/{id}         read one task
//	PATCH  /tasks/{id}         partially update a task
//	DELETE /tasks/{id}         delete a task
//	POST   /tasks/delete       delete many tasks ({"ids": [...]})
//
// Every /tasks route and /auth/me sit behind auth.RequireUser.
//
// # Request Bodies
//
// Bodies are limited to 1 MiB and must hold exactly one JSON object. Unknown
// fields are rejected, except on PATCH /tasks/{id} where they are ignored so
// that a client echoing a whole task back cannot change its id or owner.
//
// # Idempotent Create
//
// POST /tasks honors an Idempotency-Key header. Within server.idempotency_ttl a
// repeat of the same key by the same user returns the original task, marked
// with Idempotent-Replayed: true.
//
// # Errors
//
// Every error response is {"error": "..."}. Service errors are mapped through
// apperr; internal failures are logged with the request ID and reported as a
// generic 500.
//
// # Listeners
//
// Run listens on server.http_addr, or on a Tailscale node when tailscale is
// enabled, and shuts down gracefully when its context is canceled.
package server
