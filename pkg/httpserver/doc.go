// Package httpserver serves the status endpoints of a connection manager.
//
// Server wraps http.Server with a listener opened up front, so ":0" works and
// the bound address is known, and a graceful shutdown bounded by a timeout.
// Run blocks until its context is cancelled.
//
// Routes mounts, on a chi router:
//
//	GET /healthz  200 while connected, 503 otherwise
//	GET /readyz   runs the readiness checks, 200 READY or 503 NOT_READY
//	GET /status   JSON snapshot of status, session and signal counts
package httpserver
