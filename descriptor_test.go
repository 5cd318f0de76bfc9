package dispatch

import (
	"context"
	"errors"
	"testing"
)

func TestDescribe(t *testing.T) {
	noop := MiddlewareFunc(func(ctx context.Context, r Request, next Handler) (Response, error) {
		return next.Handle(ctx, r)
	})
	configure := Configurator(func(any) error { return nil })

	tests := []struct {
		name    string
		value   any
		want    string
		invalid bool
	}{
		{name: "string", value: "svc", want: "service(svc)"},
		{name: "pair", value: []any{"svc", configure}, want: "service(svc)+configurator"},
		{name: "pair with plain func", value: []any{"svc", func(any) error { return nil }}, want: "service(svc)+configurator"},
		{name: "middleware", value: noop, want: "instance(dispatch.MiddlewareFunc)"},
		{name: "double-pass", value: RequestID(), want: "double-pass"},
		{name: "descriptor", value: Service("x"), want: "service(x)"},
		{name: "single-pass func", value: func(ctx context.Context, r Request, next Handler) (Response, error) {
			return next.Handle(ctx, r)
		}, want: "instance(dispatch.MiddlewareFunc)"},
		{name: "handler func", value: func(context.Context, Request) (Response, error) {
			return NewResponse(200), nil
		}, want: "instance(dispatch.HandlerFunc)"},
		{name: "nil single-pass func", value: (func(context.Context, Request, Handler) (Response, error))(nil), invalid: true},
		{name: "nil handler func", value: (func(context.Context, Request) (Response, error))(nil), invalid: true},
		{name: "one element pair", value: []any{"svc"}, invalid: true},
		{name: "three element pair", value: []any{"svc", configure, configure}, invalid: true},
		{name: "non-string identifier", value: []any{42, configure}, invalid: true},
		{name: "empty identifier", value: []any{"", configure}, invalid: true},
		{name: "non-invocable configurator", value: []string{"svc", "cfg"}, invalid: true},
		{name: "nil configurator", value: []any{"svc", Configurator(nil)}, invalid: true},
		{name: "nil", value: nil, invalid: true},
		{name: "number", value: 42, invalid: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Describe(tt.value)
			err := d.Err()
			if tt.invalid {
				if !errors.Is(err, ErrInvalidDescriptor) {
					t.Errorf("Expected ErrInvalidDescriptor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if got := d.String(); got != tt.want {
				t.Errorf("Expected %s, got %s", tt.want, got)
			}
		})
	}
}

func TestDescribeRawFuncsInChain(t *testing.T) {
	mark := func(ctx context.Context, r Request, next Handler) (Response, error) {
		return next.Handle(ctx, r.WithAttribute("marked", true))
	}
	terminal := func(ctx context.Context, r Request) (Response, error) {
		if _, ok := r.Attribute("marked"); !ok {
			return NewResponse(500), nil
		}
		return NewResponse(204), nil
	}

	resp, err := NewDispatcher(nil, Describe(terminal), []Descriptor{Describe(mark)}).Handle(context.Background(), newTestRequest())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if resp.StatusCode() != 204 {
		t.Errorf("Expected status 204, got %d", resp.StatusCode())
	}
}

func TestConfiguratorSkippedForWrongCapability(t *testing.T) {
	container := NewContainer()
	container.Set("handler", &echoHandler{})

	configured := false
	d := NewDispatcher(container, UseHandler(&echoHandler{}), []Descriptor{
		ServiceWith("handler", func(any) error {
			configured = true
			return nil
		}),
	})

	_, err := d.Handle(context.Background(), newTestRequest())
	if !errors.Is(err, ErrResolution) {
		t.Fatalf("Expected ErrResolution, got %v", err)
	}
	if configured {
		t.Error("Expected configurator not to run on an instance of the wrong kind")
	}
}

func TestConstructorsRejectNil(t *testing.T) {
	for name, d := range map[string]Descriptor{
		"middleware":  UseMiddleware(nil),
		"handler":     UseHandler(nil),
		"double-pass": UseDoublePass(nil),
		"configured":  ServiceWith("svc", nil),
	} {
		if !errors.Is(d.Err(), ErrInvalidDescriptor) {
			t.Errorf("%s: expected ErrInvalidDescriptor, got %v", name, d.Err())
		}
	}
}

func TestConfigureAsWrongType(t *testing.T) {
	container := NewContainer()
	container.Set("svc", RequireAuth("secret"))

	d := NewDispatcher(container, UseHandler(&echoHandler{}), []Descriptor{
		ServiceWith("svc", setParameter("k", "v")),
	})

	_, err := d.Handle(context.Background(), newTestRequest())
	if !errors.Is(err, ErrInvalidDescriptor) {
		t.Errorf("Expected ErrInvalidDescriptor, got %v", err)
	}
}

func TestResolverDoublePassGetsFreshPlaceholder(t *testing.T) {
	built := 0
	r := NewResolver(nil, func() Response {
		built++
		return NewResponse(204)
	})

	for i := 0; i < 2; i++ {
		if _, err := r.ResolveMiddleware(UseDoublePass(RequestID())); err != nil {
			t.Fatalf("Unexpected error: %v", err)
		}
	}
	if built != 2 {
		t.Errorf("Expected a placeholder per resolution, got %d", built)
	}
}
