// Package dispatch builds request pipelines out of an ordered list of
// middleware and a terminal handler.
//
// Chain links are given as descriptors: service identifiers resolved through a
// Lookup, identifier plus configurator pairs, inline values, or double-pass
// middleware functions. A Dispatcher resolves each link only when the request
// reaches it.
package dispatch

import (
	"context"
	"slices"

	"go.uber.org/zap"
)

// Option configures a Dispatcher.
type Option func(o *options)

type options struct {
	factory ResponseFactory
	logger  *zap.Logger
}

// WithResponseFactory sets the factory for the placeholder response handed to
// double-pass middleware.
func WithResponseFactory(f ResponseFactory) Option {
	return func(o *options) {
		o.factory = f
	}
}

// WithLogger sets a logger receiving a debug entry for every resolved link.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// Dispatcher is a Handler running a request through a list of middleware
// descriptors and then through a terminal handler descriptor.
//
// A Dispatcher is immutable. Handling a request with middleware left resolves
// the first descriptor and passes it a new Dispatcher holding the remaining
// descriptors as its next handler. The terminal handler descriptor is shared by
// every Dispatcher derived this way.
type Dispatcher struct {
	resolver   *Resolver
	handler    Descriptor
	middleware []Descriptor
	logger     *zap.Logger
}

// NewDispatcher creates a dispatcher. Descriptors are not validated here;
// each one is checked when a request first reaches it.
func NewDispatcher(lookup Lookup, handler Descriptor, middleware []Descriptor, opts ...Option) *Dispatcher {
	o := options{
		factory: DefaultResponseFactory,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	return &Dispatcher{
		resolver:   NewResolver(lookup, o.factory),
		handler:    handler,
		middleware: slices.Clone(middleware),
		logger:     o.logger,
	}
}

// Handle implements Handler. Errors from resolution, middleware and the
// handler are returned unchanged.
func (d *Dispatcher) Handle(ctx context.Context, r Request) (Response, error) {
	if len(d.middleware) == 0 {
		h, err := d.resolver.ResolveHandler(d.handler)
		if err != nil {
			return Response{}, err
		}
		d.logger.Debug("dispatching to handler", zap.Stringer("descriptor", d.handler))
		return h.Handle(ctx, r)
	}

	head, tail := d.middleware[0], d.middleware[1:]

	m, err := d.resolver.ResolveMiddleware(head)
	if err != nil {
		return Response{}, err
	}
	d.logger.Debug("dispatching to middleware",
		zap.Stringer("descriptor", head),
		zap.Int("remaining", len(tail)),
	)

	return m.Process(ctx, r, &Dispatcher{
		resolver:   d.resolver,
		handler:    d.handler,
		middleware: tail,
		logger:     d.logger,
	})
}

// Remaining reports how many middleware descriptors are left before the handler.
func (d *Dispatcher) Remaining() int {
	return len(d.middleware)
}
