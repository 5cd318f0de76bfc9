package dispatch

import (
	"context"

	"github.com/google/uuid"
)

const (
	// RequestIDAttribute is the request attribute holding the request id.
	RequestIDAttribute = "request_id"
	// RequestIDHeader carries the request id on requests and responses.
	RequestIDHeader = "X-Request-Id"
)

// RequestID returns double-pass middleware that reuses the caller's
// X-Request-Id or generates a new one, stores it as a request attribute and
// echoes it on the response.
func RequestID() DoublePassFunc {
	return func(ctx context.Context, r Request, w Response, next Next) (Response, error) {
		id := r.Header(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		resp, err := next(ctx, r.WithAttribute(RequestIDAttribute, id), w)
		if err != nil {
			return resp, err
		}
		return resp.WithHeader(RequestIDHeader, id), nil
	}
}
