// Package httpmiddleware provides reusable HTTP middleware: request IDs,
// request logging, panic recovery, CORS, rate limiting, and OpenTelemetry
// instrumentation.
package httpmiddleware

import "net/http"

// Middleware transforms an http.Handler into another http.Handler.
type Middleware func(http.Handler) http.Handler

// Wrap applies middlewares to h in reverse order, so the first middleware in
// the list is the outermost one at request time.
func Wrap(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}
