// Package api classifies raw HTTP responses from the QuickBooks API into
// typed results.
//
// A 2xx response becomes a SuccessResponse, which knows how to unwrap the
// vendor's QueryResponse envelope and derive pagination. Anything else
// becomes an *Error built from the fault envelope
// ({"Fault":{"Error":[...]}}); the error kind is matched with errors.Is
// against the sentinel kinds in this package.
//
// JSON bodies are parsed defensively: a malformed body never fails the
// call, it degrades to a diagnostic payload carrying the raw text and the
// parse error.
package api
