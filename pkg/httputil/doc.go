// Package httputil provides HTTP helpers for the preview server.
//
// # Overview
//
// Handlers share one way of reading requests and writing responses:
//
//   - [DecodeJSON]: Strict, size-limited request body decoding
//   - [WriteJSON]: Indented JSON responses
//   - [WriteError]: Error responses with a status derived from the error code
//
// # Errors
//
// [StatusFor] maps the codes of [github.com/matzehuels/seamline/pkg/errors]
// to HTTP status codes. Invalid input and geometry failures are the client's
// fault (400/422), missing resources are 404 and anything uncoded is 500:
//
//	if err != nil {
//	    httputil.WriteError(w, err)
//	    return
//	}
//
// The response body carries the machine-readable code next to the message:
//
//	{"code": "UNKNOWN_PARAMETER", "error": "unknown parameter \"sleeve\""}
package httputil
