// Package apperr defines the failure taxonomy shared by taskd's services.
//
// Services return *Error values built with Validation, Conflict,
// Unauthenticated, NotFound, or Internal. The HTTP layer converts them with
// HTTPStatus(KindOf(err)) and PublicMessage(err). Anything that is not an
// *Error is treated as internal: it is logged server-side and reported to the
// caller as "internal server error".
//
// NotFound doubles as the authorization-denied result for tasks owned by
// another user, so a caller cannot learn whether a foreign task exists.
package apperr
