package dispatch

import "context"

// Handler turns a request into a response. It is the terminal link of a chain,
// and also the shape in which "the rest of the chain" is handed to a Middleware.
type Handler interface {
	Handle(ctx context.Context, r Request) (Response, error)
}

// HandlerFunc is an adapter to allow ordinary functions as handlers.
type HandlerFunc func(ctx context.Context, r Request) (Response, error)

// Handle calls f(ctx, r).
func (f HandlerFunc) Handle(ctx context.Context, r Request) (Response, error) {
	return f(ctx, r)
}

// Middleware is a single-pass chain link. It may inspect or replace the request
// before calling next, inspect or replace the response after next returns, or
// skip next entirely to short-circuit the chain (e.g. rejecting unauthenticated
// requests).
type Middleware interface {
	Process(ctx context.Context, r Request, next Handler) (Response, error)
}

// MiddlewareFunc is an adapter to allow ordinary functions as middleware.
type MiddlewareFunc func(ctx context.Context, r Request, next Handler) (Response, error)

// Process calls f(ctx, r, next).
func (f MiddlewareFunc) Process(ctx context.Context, r Request, next Handler) (Response, error) {
	return f(ctx, r, next)
}

// Chain builds a middleware chain that executes in the order provided.
// It is a shortcut for a Dispatcher whose descriptors are all inline values,
// so no Lookup is involved.
//
// Example:
//
//	Chain(handler, logging, auth, rateLimit)
//	Execution order: logging -> auth -> rateLimit -> handler
func Chain(handler Handler, middlewares ...Middleware) Handler {
	descriptors := make([]Descriptor, 0, len(middlewares))
	for _, m := range middlewares {
		descriptors = append(descriptors, UseMiddleware(m))
	}
	return NewDispatcher(nil, UseHandler(handler), descriptors)
}
