// Package httpclient is a thin HTTP client for the model sidecars the
// pipeline talks to. It covers the two calls every sidecar supports:
// a GET /health probe and a multipart POST carrying audio plus form
// parameters, with the JSON response decoded into a caller-owned struct.
package httpclient
