// Package transport builds and executes signed HTTP requests against the
// QuickBooks REST API.
//
// Builder produces immutable Request values: fully qualified URL, merged
// headers including the Authorization bearer header captured at build
// time, and a serialized body. Executor sends a Request over the wire
// through [github.com/go-resty/resty/v2], retrying timeouts and
// connection-level failures with exponential backoff. HTTP status codes
// are not classified here; a 4xx or 5xx response is returned as-is for
// the api package to interpret.
package transport
