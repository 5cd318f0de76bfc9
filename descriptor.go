package dispatch

import (
	"context"
	"fmt"
)

// Capability is what a resolved descriptor must provide at its position in a chain.
type Capability int

const (
	// CapabilityHandler is required of the terminal handler.
	CapabilityHandler Capability = iota
	// CapabilityMiddleware is required of every chain link before the handler.
	CapabilityMiddleware
)

func (c Capability) String() string {
	switch c {
	case CapabilityHandler:
		return "request handler"
	case CapabilityMiddleware:
		return "middleware"
	default:
		return fmt.Sprintf("capability(%d)", int(c))
	}
}

// Configurator mutates a freshly looked up instance before it is used.
// Lookups may hand out shared instances, in which case every configurator
// applied to an identifier stays visible to later uses of that identifier.
type Configurator func(instance any) error

// ConfigureAs adapts a typed function into a Configurator. Applying it to an
// instance that is not a T fails with ErrInvalidDescriptor.
func ConfigureAs[T any](fn func(T) error) Configurator {
	return func(instance any) error {
		v, ok := instance.(T)
		if !ok {
			var zero T
			return invalidf("configurator expects %T, got %T", zero, instance)
		}
		return fn(v)
	}
}

type descriptorKind int

const (
	kindInvalid descriptorKind = iota
	kindService
	kindConfigured
	kindInstance
	kindDoublePass
)

// Descriptor says how to obtain one link of a chain. Build descriptors with
// Service, ServiceWith, UseMiddleware, UseHandler, UseDoublePass, or Describe
// for untyped values. Descriptors are resolved lazily, when the dispatcher
// reaches them, so a malformed descriptor only fails at that point.
//
// The zero Descriptor is invalid.
type Descriptor struct {
	kind       descriptorKind
	id         string
	configure  Configurator
	instance   any
	doublePass DoublePassFunc
	err        error
}

// Service refers to an instance registered under id in the Lookup.
func Service(id string) Descriptor {
	return Descriptor{kind: kindService, id: id}
}

// ServiceWith refers to an instance registered under id and applies configure
// to it each time the descriptor is resolved. The instance is checked against
// the capability its position requires before configure runs, so a
// configurator never sees an instance of the wrong kind.
func ServiceWith(id string, configure Configurator) Descriptor {
	if id == "" {
		return invalid(invalidf("configured service requires a non-empty service identifier"))
	}
	if configure == nil {
		return invalid(invalidf("configured service %q requires a configurator", id))
	}
	return Descriptor{kind: kindConfigured, id: id, configure: configure}
}

// UseMiddleware uses m as is.
func UseMiddleware(m Middleware) Descriptor {
	if m == nil {
		return invalid(invalidf("nil middleware"))
	}
	return Descriptor{kind: kindInstance, instance: m}
}

// UseHandler uses h as is.
func UseHandler(h Handler) Descriptor {
	if h == nil {
		return invalid(invalidf("nil handler"))
	}
	return Descriptor{kind: kindInstance, instance: h}
}

// UseDoublePass wraps fn in a DoublePassAdapter when resolved as middleware.
// It cannot serve as a terminal handler.
func UseDoublePass(fn DoublePassFunc) Descriptor {
	if fn == nil {
		return invalid(invalidf("nil double-pass middleware"))
	}
	return Descriptor{kind: kindDoublePass, doublePass: fn}
}

// Describe builds a descriptor from an untyped value, typically one decoded
// from configuration. Accepted shapes are:
//
//   - a Descriptor, returned unchanged
//   - a string service identifier
//   - a two element []any pair of service identifier and Configurator
//   - a Handler or Middleware value, or a function with the signature of
//     HandlerFunc or MiddlewareFunc
//   - a DoublePassFunc or a function with its signature
//
// Describe never fails. Anything else yields a descriptor that reports
// ErrInvalidDescriptor once the dispatcher tries to resolve it.
func Describe(v any) Descriptor {
	switch v := v.(type) {
	case Descriptor:
		return v
	case string:
		return Service(v)
	case []any:
		return describePair(v)
	case []string:
		pair := make([]any, len(v))
		for i, s := range v {
			pair[i] = s
		}
		return describePair(pair)
	case DoublePassFunc:
		return UseDoublePass(v)
	case func(context.Context, Request, Response, Next) (Response, error):
		return UseDoublePass(v)
	case func(context.Context, Request, Handler) (Response, error):
		if v == nil {
			return invalid(invalidf("nil middleware"))
		}
		return UseMiddleware(MiddlewareFunc(v))
	case func(context.Context, Request) (Response, error):
		if v == nil {
			return invalid(invalidf("nil handler"))
		}
		return UseHandler(HandlerFunc(v))
	case Middleware, Handler:
		return Descriptor{kind: kindInstance, instance: v}
	case nil:
		return invalid(invalidf("nil descriptor"))
	default:
		return invalid(invalidf("unsupported descriptor type %T", v))
	}
}

func describePair(pair []any) Descriptor {
	if len(pair) != 2 {
		return invalid(invalidf("configured service must be a pair of identifier and configurator, got %d elements", len(pair)))
	}
	id, ok := pair[0].(string)
	if !ok || id == "" {
		return invalid(invalidf("first element of a configured service must be a service identifier, got %T", pair[0]))
	}
	switch configure := pair[1].(type) {
	case Configurator:
		return ServiceWith(id, configure)
	case func(any) error:
		return ServiceWith(id, configure)
	default:
		return invalid(invalidf("second element of configured service %q must be a configurator, got %T", id, pair[1]))
	}
}

func invalid(err *DescriptorError) Descriptor {
	return Descriptor{kind: kindInvalid, err: err}
}

// Err reports the shape error of an invalid descriptor, or nil.
func (d Descriptor) Err() error {
	if d.kind != kindInvalid {
		return nil
	}
	if d.err == nil {
		return invalidf("empty descriptor")
	}
	return d.err
}

func (d Descriptor) String() string {
	switch d.kind {
	case kindService:
		return fmt.Sprintf("service(%s)", d.id)
	case kindConfigured:
		return fmt.Sprintf("service(%s)+configurator", d.id)
	case kindInstance:
		return fmt.Sprintf("instance(%T)", d.instance)
	case kindDoublePass:
		return "double-pass"
	default:
		return "invalid"
	}
}
