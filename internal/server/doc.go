// Package server exposes the reference upload API over HTTP.
//
// # Routes
//
// All routes live under /api:
//
//	HEAD /api/heartbeat                  liveness probe
//	POST /api/files                      multipart upload (file, fileId, nameVideo)
//	GET  /api/operations/:id             operation state
//	GET  /api/videos/:id/borrowings      borrowing table of an uploaded video
//	GET  /api/videos/:id/submission      the same table as a CSV attachment
//
// # Middleware
//
// [NewRouter] installs CORS for the configured origins, panic recovery, a request ID, request logging
// over charmbracelet/log and a per-IP [RateLimiter]. Uploads additionally pass through [BodySizeLimiter].
//
// Errors are reported as {"error": ..., "requestID": ...} so a request can be traced in the server log.
package server
