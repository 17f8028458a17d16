// Package component defines the lifecycle contract shared by the model
// backends, the summary client and the HTTP server, and a Registry that
// starts them in order, stops them in reverse and aggregates their health
// for /health and the startup summary.
package component
