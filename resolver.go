package dispatch

// Resolver turns descriptors into live handlers and middleware.
type Resolver struct {
	lookup  Lookup
	factory ResponseFactory
}

// NewResolver creates a resolver backed by lookup. A nil lookup treats every
// service identifier as unknown; a nil factory uses DefaultResponseFactory.
func NewResolver(lookup Lookup, factory ResponseFactory) *Resolver {
	if factory == nil {
		factory = DefaultResponseFactory
	}
	return &Resolver{
		lookup:  lookup,
		factory: factory,
	}
}

// Resolve returns an instance providing capability c. Errors from the Lookup
// and from configurators are returned unchanged.
func (r *Resolver) Resolve(d Descriptor, c Capability) (any, error) {
	switch d.kind {
	case kindService:
		instance, err := r.get(d.id)
		if err != nil {
			return nil, err
		}
		return r.check(d.id, instance, c)

	case kindConfigured:
		instance, err := r.get(d.id)
		if err != nil {
			return nil, err
		}
		if instance, err = r.check(d.id, instance, c); err != nil {
			return nil, err
		}
		if err := d.configure(instance); err != nil {
			return nil, err
		}
		return instance, nil

	case kindInstance:
		if !satisfies(d.instance, c) {
			return nil, invalidf("%T is not a %s", d.instance, c)
		}
		return d.instance, nil

	case kindDoublePass:
		if c != CapabilityMiddleware {
			return nil, invalidf("double-pass middleware cannot be used as a %s", c)
		}
		return NewDoublePassAdapter(d.doublePass, r.factory()), nil

	default:
		return nil, d.Err()
	}
}

// ResolveHandler resolves d as a terminal handler.
func (r *Resolver) ResolveHandler(d Descriptor) (Handler, error) {
	instance, err := r.Resolve(d, CapabilityHandler)
	if err != nil {
		return nil, err
	}
	return instance.(Handler), nil
}

// ResolveMiddleware resolves d as a single-pass middleware.
func (r *Resolver) ResolveMiddleware(d Descriptor) (Middleware, error) {
	instance, err := r.Resolve(d, CapabilityMiddleware)
	if err != nil {
		return nil, err
	}
	return instance.(Middleware), nil
}

func (r *Resolver) get(id string) (any, error) {
	if r.lookup == nil {
		return nil, &NotFoundError{ID: id}
	}
	return r.lookup.Get(id)
}

func (r *Resolver) check(id string, instance any, c Capability) (any, error) {
	if !satisfies(instance, c) {
		return nil, &ResolutionError{ID: id, Capability: c, Instance: instance}
	}
	return instance, nil
}

func satisfies(instance any, c Capability) bool {
	switch c {
	case CapabilityHandler:
		_, ok := instance.(Handler)
		return ok
	case CapabilityMiddleware:
		_, ok := instance.(Middleware)
		return ok
	default:
		return false
	}
}
