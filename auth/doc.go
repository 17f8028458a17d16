// Package auth authenticates callers of the transcription API.
//
// Two methods are supported and may be enabled together:
//
//   - auth/jwt     HMAC bearer tokens carrying the "transcribe" scope
//   - auth/apikey  X-API-Key values checked against bcrypt hashes
//
// Build turns a Config into TokenValidators for the server's Auth
// middleware, which stores the resulting Principal with authctx.
package auth
