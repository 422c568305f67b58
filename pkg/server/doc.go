// Package server provides the internal HTTP API of the gallery backend.
//
// The gallery web tier calls it when a user asks to delete their account,
// when a user logs in again, and to display a pending deletion:
//
//	POST   /v1/users/{id}/deletion   schedule a deletion (202, 409, 400)
//	DELETE /v1/users/{id}/deletion   cancel it (200 {"cancelled": bool})
//	GET    /v1/users/{id}/deletion   show it (200, 404)
//
// Operational endpoints are /health, /ready, /version and the configured
// metrics path.
//
// Requests pass through recovery, request ID, logging, tracing and metrics
// middleware, outermost first.
package server
