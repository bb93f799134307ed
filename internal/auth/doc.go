// Package auth provides authentication for taskd.
//
// # Passwords
//
// BcryptHasher hashes and verifies passwords with a configurable work factor.
// A weighted semaphore caps how many bcrypt computations run at once, so a
// burst of logins queues for CPU instead of starving other requests. Waiters
// give up when their request context ends.
//
// # Tokens
//
// JWTService issues HS256 tokens carrying the user ID in "sub", the email,
// "iat", and "exp". Verification checks the signature first, then requires an
// unexpired "exp" and a non-empty subject. Tokens are stateless; there is no
// server-side session table and no revocation. Logout means the client
// discards its token.
//
// # Registration and Login
//
// Service.Register validates input, hashes the password, and stores the user.
// Duplicate emails are detected by the store's unique index and reported as a
// conflict. Service.Login returns the same "invalid email or password" error
// for unknown emails and wrong passwords, and runs a dummy bcrypt comparison
// for unknown emails so response timing does not reveal which accounts exist.
//
// # HTTP
//
// RequireUser is the gate in front of every task route:
//
//	mux.Handle("GET /tasks", auth.RequireUser(authService)(handler))
//
// Handlers read the caller with FromContext(r.Context()).
package auth
