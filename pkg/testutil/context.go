package testutil

import (
	"net/http"
	"time"

	"fieldcheck/pkg/requestcontext"
)

// WithRequestID adds a request ID to the request context, simulating what the
// RequestID middleware would do.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	ctx := requestcontext.WithRequestID(req.Context(), requestID)
	return req.WithContext(ctx)
}

// WithRequestTime pins the request-scoped clock so handlers and services
// observe a deterministic "now".
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	ctx := requestcontext.WithTime(req.Context(), t)
	return req.WithContext(ctx)
}
