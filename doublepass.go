package dispatch

import (
	"context"
	"net/http"
)

// Next is the continuation handed to a double-pass middleware.
type Next func(ctx context.Context, r Request, w Response) (Response, error)

// DoublePassFunc is a middleware written in the double-pass convention: it
// receives the request, a response placeholder and an explicit continuation,
// and returns the final response itself.
type DoublePassFunc func(ctx context.Context, r Request, w Response, next Next) (Response, error)

// ResponseFactory creates the placeholder response handed to double-pass
// middleware.
type ResponseFactory func() Response

// DefaultResponseFactory returns an empty 200 response.
func DefaultResponseFactory() Response {
	return NewResponse(http.StatusOK)
}

// DoublePassAdapter lets a DoublePassFunc take part in a single-pass chain.
//
// The continuation it synthesizes ignores the response argument and returns
// whatever the rest of the chain produces. Any change a double-pass middleware
// makes to its response argument before calling next is therefore discarded;
// apply response changes to the value next returns instead. Likewise the
// placeholder never carries upstream state: reading it before calling next
// yields an empty default response.
type DoublePassAdapter struct {
	fn          DoublePassFunc
	placeholder Response
}

// NewDoublePassAdapter wraps fn. placeholder is passed as the response argument
// on every call.
func NewDoublePassAdapter(fn DoublePassFunc, placeholder Response) *DoublePassAdapter {
	return &DoublePassAdapter{
		fn:          fn,
		placeholder: placeholder,
	}
}

// Process implements Middleware.
func (a *DoublePassAdapter) Process(ctx context.Context, r Request, next Handler) (Response, error) {
	return a.fn(ctx, r, a.placeholder, func(ctx context.Context, r Request, _ Response) (Response, error) {
		return next.Handle(ctx, r)
	})
}
