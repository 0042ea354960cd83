// Package http executes built API calls for hitcall.
//
// It wraps the standard library's http package with additional features:
//   - Configurable timeouts, redirects, proxy and TLS verification
//   - Query string, JSON, form and multipart encoding of request params
//   - Response decoding into records the response package can inspect
package http
