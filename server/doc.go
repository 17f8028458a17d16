// Package server hosts the voxscribe HTTP API on gin, served over
// HTTP/1.1 and h2c.
//
// Server-wide middleware (server/middleware) wraps every request:
// recovery, request id, request logging, CORS, an optional per-IP rate
// limit and the upload size cap. Authentication is applied per route
// group with middleware.GinWrap.
//
// System endpoints (server/endpoint): /health, /alive, /ready, /info,
// /version and the Prometheus /metrics.
package server
