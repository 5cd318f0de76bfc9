package dispatch

import (
	"context"
	"encoding/json"
	"errors"
	"maps"
	"net/http"
	"net/url"
	"slices"
)

// Request is an immutable inbound request: the underlying *http.Request plus a
// set of attributes middleware use to pass derived data downstream.
// The With methods return modified copies and leave the receiver untouched.
type Request struct {
	raw        *http.Request
	attributes map[string]any
}

// NewRequest wraps r. The returned request has no attributes.
func NewRequest(r *http.Request) Request {
	return Request{raw: r}
}

// HTTP returns the wrapped *http.Request.
func (r Request) HTTP() *http.Request {
	return r.raw
}

// Context returns the context of the wrapped request, or context.Background.
func (r Request) Context() context.Context {
	if r.raw == nil {
		return context.Background()
	}
	return r.raw.Context()
}

// WithContext returns a copy of r whose wrapped request carries ctx.
func (r Request) WithContext(ctx context.Context) Request {
	if r.raw == nil {
		return r
	}
	r.raw = r.raw.WithContext(ctx)
	return r
}

// Method returns the HTTP method, or "" when no request is wrapped.
func (r Request) Method() string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Method
}

// URL returns the request URL, or nil when no request is wrapped.
func (r Request) URL() *url.URL {
	if r.raw == nil {
		return nil
	}
	return r.raw.URL
}

// Header returns the first value of the named request header.
func (r Request) Header(name string) string {
	if r.raw == nil {
		return ""
	}
	return r.raw.Header.Get(name)
}

// Attribute returns the attribute stored under key.
func (r Request) Attribute(key string) (any, bool) {
	v, ok := r.attributes[key]
	return v, ok
}

// AttributeString returns the attribute under key if it is a string.
func (r Request) AttributeString(key string) (string, bool) {
	v, ok := r.attributes[key].(string)
	return v, ok
}

// Attributes returns a copy of all attributes.
func (r Request) Attributes() map[string]any {
	if r.attributes == nil {
		return map[string]any{}
	}
	return maps.Clone(r.attributes)
}

// AttributeKeys returns the attribute keys in sorted order.
func (r Request) AttributeKeys() []string {
	return slices.Sorted(maps.Keys(r.attributes))
}

// WithAttribute returns a copy of r with key set to value.
func (r Request) WithAttribute(key string, value any) Request {
	attributes := make(map[string]any, len(r.attributes)+1)
	maps.Copy(attributes, r.attributes)
	attributes[key] = value
	r.attributes = attributes
	return r
}

// WithoutAttribute returns a copy of r without key.
func (r Request) WithoutAttribute(key string) Request {
	if _, ok := r.attributes[key]; !ok {
		return r
	}
	r.attributes = maps.Clone(r.attributes)
	delete(r.attributes, key)
	return r
}

// WithHTTP returns a copy of r wrapping req and keeping the attributes.
func (r Request) WithHTTP(req *http.Request) Request {
	r.raw = req
	return r
}

// DecodeJSON decodes the request body into v.
func (r Request) DecodeJSON(v any) error {
	if r.raw == nil || r.raw.Body == nil {
		return errors.New("request has no body")
	}
	return json.NewDecoder(r.raw.Body).Decode(v)
}
