// Package services implements the HTTP clients of the upload API.
//
// # Upload Transport
//
// [UploadService] sends one staged file per request as multipart/form-data with three fields, in order:
//   - file : the raw payload, with the file's MIME type
//   - fileId : the client-side identifier of the staged file
//   - nameVideo : the original file name
//
// The body is framed up front so the request carries an exact Content-Length. A counting reader between the
// framed body and the HTTP client turns bytes sent into [Progress] events of floor(sent*100/total), emitted
// only when the percentage changes.
//
// # Read-side API
//
// [APIService] wraps the heartbeat, operation and borrowing endpoints and exposes a raw GET for debugging.
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : network failure, non-2xx status ([StatusError]) or undecodable body
//   - [shared.ErrServiceUnavailable] : heartbeat failed
//   - [shared.ErrNotFound] : unknown operation or video
//   - [shared.ErrInvalidInput] : a file without payload
package services
