package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
)

// sendChunkSize is the buffer size used to stream response bodies.
const sendChunkSize = 10240

// Response is an immutable outbound response. Headers keep the order in which
// they were first set. The With methods return modified copies; the body
// reader is shared between copies.
type Response struct {
	status   int
	reason   string
	protocol string
	header   http.Header
	names    []string
	body     io.Reader
}

// NewResponse creates a response with the given status, the standard reason
// phrase, protocol version 1.1, no headers and an empty body.
func NewResponse(status int) Response {
	return Response{
		status:   status,
		reason:   http.StatusText(status),
		protocol: "1.1",
		header:   http.Header{},
		body:     bytes.NewReader(nil),
	}
}

// Text creates a response with a plain text body.
func Text(status int, body string) Response {
	return NewResponse(status).
		WithHeader("Content-Type", "text/plain; charset=utf-8").
		WithBody(strings.NewReader(body))
}

// JSON creates a response with data encoded as the JSON body.
func JSON(status int, data any) (Response, error) {
	body, err := json.Marshal(data)
	if err != nil {
		return Response{}, fmt.Errorf("encoding response body: %w", err)
	}
	return NewResponse(status).
		WithHeader("Content-Type", "application/json").
		WithBody(bytes.NewReader(body)), nil
}

// StatusCode returns the HTTP status code.
func (r Response) StatusCode() int {
	return r.status
}

// ReasonPhrase returns the reason phrase sent with the status code.
func (r Response) ReasonPhrase() string {
	return r.reason
}

// ProtocolVersion returns the HTTP protocol version, e.g. "1.1".
func (r Response) ProtocolVersion() string {
	return r.protocol
}

// Header returns a copy of the values of the named header.
func (r Response) Header(name string) []string {
	return slices.Clone(r.header[http.CanonicalHeaderKey(name)])
}

// HeaderLine returns the values of the named header joined by commas.
func (r Response) HeaderLine(name string) string {
	return strings.Join(r.header[http.CanonicalHeaderKey(name)], ",")
}

// HasHeader reports whether the named header is set.
func (r Response) HasHeader(name string) bool {
	_, ok := r.header[http.CanonicalHeaderKey(name)]
	return ok
}

// HeaderNames returns the canonical header names in insertion order.
func (r Response) HeaderNames() []string {
	return slices.Clone(r.names)
}

// Headers returns a copy of all headers.
func (r Response) Headers() http.Header {
	if r.header == nil {
		return http.Header{}
	}
	return r.header.Clone()
}

// Body returns the body reader.
func (r Response) Body() io.Reader {
	return r.body
}

// Bytes reads the whole body. Seekable bodies are rewound before and after
// reading so the response can still be sent.
func (r Response) Bytes() ([]byte, error) {
	if r.body == nil {
		return nil, nil
	}
	seeker, ok := r.body.(io.Seeker)
	if ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}
	b, err := io.ReadAll(r.body)
	if err != nil {
		return nil, err
	}
	if ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
	}
	return b, nil
}

// WithStatus returns a copy with the given status. An empty reason uses the
// standard phrase for code.
func (r Response) WithStatus(code int, reason string) Response {
	if reason == "" {
		reason = http.StatusText(code)
	}
	r.status, r.reason = code, reason
	return r
}

// WithProtocolVersion returns a copy with the given protocol version.
func (r Response) WithProtocolVersion(version string) Response {
	r.protocol = version
	return r
}

// WithHeader returns a copy with the named header replaced by values.
func (r Response) WithHeader(name string, values ...string) Response {
	name = http.CanonicalHeaderKey(name)
	r = r.cloneHeader()
	if _, ok := r.header[name]; !ok {
		r.names = append(r.names, name)
	}
	r.header[name] = slices.Clone(values)
	return r
}

// WithAddedHeader returns a copy with values appended to the named header.
func (r Response) WithAddedHeader(name string, values ...string) Response {
	name = http.CanonicalHeaderKey(name)
	r = r.cloneHeader()
	if _, ok := r.header[name]; !ok {
		r.names = append(r.names, name)
	}
	r.header[name] = append(r.header[name], values...)
	return r
}

// WithoutHeader returns a copy without the named header.
func (r Response) WithoutHeader(name string) Response {
	name = http.CanonicalHeaderKey(name)
	if _, ok := r.header[name]; !ok {
		return r
	}
	r = r.cloneHeader()
	delete(r.header, name)
	r.names = slices.DeleteFunc(r.names, func(n string) bool { return n == name })
	return r
}

// WithBody returns a copy with the given body.
func (r Response) WithBody(body io.Reader) Response {
	r.body = body
	return r
}

func (r Response) cloneHeader() Response {
	if r.header == nil {
		r.header = http.Header{}
	} else {
		r.header = r.header.Clone()
	}
	r.names = slices.Clone(r.names)
	return r
}

// Write sends the response to w.
func (r Response) Write(ctx context.Context, w http.ResponseWriter) error {
	return Send(w, r)
}

// Send writes resp to w: headers in insertion order, the status code, then the
// body streamed in chunks. Seekable bodies are rewound first. A zero status is
// sent as 200. net/http chooses the reason phrase and protocol version itself.
func Send(w http.ResponseWriter, resp Response) error {
	h := w.Header()
	for _, name := range resp.names {
		for _, v := range resp.header[name] {
			h.Add(name, v)
		}
	}

	status := resp.status
	if status == 0 {
		status = http.StatusOK
	}
	w.WriteHeader(status)

	if resp.body == nil {
		return nil
	}
	if seeker, ok := resp.body.(io.Seeker); ok {
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return err
		}
	}

	_, err := io.CopyBuffer(w, resp.body, make([]byte, sendChunkSize))
	return err
}
