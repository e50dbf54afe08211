// Package http exposes signature validation over HTTP.
//
// The API is a single JSON endpoint intended for gateways that build the
// string-to-sign themselves and delegate the credential check:
//
//	POST /v1/validate
//	{"string_to_sign": "...", "signature": "...", "access_key": "..."}
//
// The response is always {"valid": true|false} with status 200 unless the
// credential store is unavailable (503) or the body is malformed (400). The
// reason for a false result is never returned to the caller.
//
// GET /healthz reports liveness and GET /metrics serves Prometheus metrics when
// a metrics.Metrics is configured. Every response carries an X-Request-Id
// header.
package http
