package httpmsg

import (
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
	"golang.org/x/net/http/httpguts"
)

const headerHost = "Host"

// Request is an outgoing, client-side HTTP request.
//
// Request is immutable: every With* method returns a new Request and
// leaves the receiver untouched. The body Stream is shared by all
// requests derived from one another.
type Request struct {
	message

	method string
	uri    *URI
	// requestTarget overrides the target derived from uri when hasTarget.
	requestTarget string
	hasTarget     bool
}

// NewRequest returns a Request.
//
// uri is a string, parsed with ParseURI, or a *URI. body is nil for an
// empty memory stream, a *Stream, an *os.File or a string locator opened
// with mode "r+b". When header has no Host field and the URI has a host,
// the Host field is derived from the URI.
func NewRequest(method string, uri any, body any, header Header) (*Request, error) {
	if err := validateMethod(method); err != nil {
		return nil, err
	}
	u, err := requestURI(uri)
	if err != nil {
		return nil, err
	}
	b, err := bodyStream(body, defaultRequestBodyMode)
	if err != nil {
		return nil, err
	}
	r := &Request{
		message: newMessage(b, header),
		method:  method,
		uri:     u,
	}
	if !r.header.Has(headerHost) {
		r.updateHostFromURI()
	}
	return r, nil
}

func requestURI(uri any) (*URI, error) {
	switch u := uri.(type) {
	case string:
		return ParseURI(u)
	case *URI:
		if u == nil {
			return nil, invalidInput("the uri is nil")
		}
		return u, nil
	default:
		return nil, invalidInput("a uri must be a string or a *URI, %T given", uri)
	}
}

func validateMethod(method string) error {
	// A method is a token, just like a header field name.
	if !httpguts.ValidHeaderFieldName(method) {
		return invalidInput("method %q is not a token", method)
	}
	return nil
}

func (r *Request) clone() *Request {
	c := *r
	return &c
}

// Method returns the request method.
func (r *Request) Method() string {
	return r.method
}

// WithMethod returns a copy of r with the given method. The method is
// case-sensitive and kept as given.
func (r *Request) WithMethod(method string) (*Request, error) {
	if err := validateMethod(method); err != nil {
		return nil, err
	}
	c := r.clone()
	c.method = method
	return c, nil
}

// URI returns the request URI.
func (r *Request) URI() *URI {
	return r.uri
}

// WithURI returns a request with the given URI.
//
// r itself is returned when uri is the very URI r holds. Otherwise the
// Host header is recomputed from the new URI's host and port, unless
// preserveHost is set and r already has a Host header. A URI without a
// host leaves the Host header alone.
func (r *Request) WithURI(uri *URI, preserveHost bool) (*Request, error) {
	if uri == nil {
		return nil, invalidInput("the uri is nil")
	}
	if uri == r.uri {
		return r, nil
	}
	c := r.clone()
	c.uri = uri
	if preserveHost && r.header.Has(headerHost) {
		return c, nil
	}
	c.updateHostFromURI()
	return c, nil
}

func (r *Request) updateHostFromURI() {
	host := r.uri.Host()
	if host == "" {
		return
	}
	if port := r.uri.Port(); port != 0 {
		host += ":" + strconv.Itoa(port)
	}
	// Header values must be ASCII; internationalized hosts go out in
	// their punycode form.
	if ascii, err := httpguts.PunycodeHostPort(host); err == nil {
		host = ascii
	}
	if h, err := r.header.Set(headerHost, host); err == nil {
		r.header = h
	}
}

// RequestTarget returns the request target: the value set with
// WithRequestTarget, or else the URI path and query, or else "/".
func (r *Request) RequestTarget() string {
	if r.hasTarget {
		return r.requestTarget
	}
	target := r.uri.Path()
	if q := r.uri.Query(); q != "" {
		target += "?" + q
	}
	if target == "" {
		target = "/"
	}
	return target
}

// WithRequestTarget returns a copy of r with an explicit request target,
// for instance "*" or an absolute-form target. The target must not
// contain whitespace.
func (r *Request) WithRequestTarget(target string) (*Request, error) {
	if strings.ContainsAny(target, " \t\n\v\f\r") {
		return nil, invalidInput("request target %q contains whitespace", target)
	}
	c := r.clone()
	c.requestTarget, c.hasTarget = target, true
	return c, nil
}

// String returns the request line "METHOD target HTTP/version".
func (r *Request) String() string {
	b := bytebufferpool.Get()
	b.B = append(b.B, r.method...)
	b.B = append(b.B, ' ')
	b.B = append(b.B, r.RequestTarget()...)
	b.B = append(b.B, " HTTP/"...)
	b.B = append(b.B, r.protocol...)
	s := b.String()
	bytebufferpool.Put(b)
	return s
}

// WithProtocolVersion returns a copy of r with the given protocol version.
func (r *Request) WithProtocolVersion(v string) *Request {
	c := r.clone()
	c.message = c.message.withProtocolVersion(v)
	return c
}

// WithHeader returns a copy of r where the header named name holds
// exactly values, see Header.Set.
func (r *Request) WithHeader(name string, values ...string) (*Request, error) {
	m, err := r.message.withHeader(name, values)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithAddedHeader returns a copy of r with values appended to the header
// named name, see Header.Add.
func (r *Request) WithAddedHeader(name string, values ...string) (*Request, error) {
	m, err := r.message.withAddedHeader(name, values)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithoutHeader returns a copy of r without the header named name.
func (r *Request) WithoutHeader(name string) *Request {
	c := r.clone()
	c.message = c.message.withoutHeader(name)
	return c
}

// WithBody returns a copy of r with the given body.
func (r *Request) WithBody(body *Stream) (*Request, error) {
	m, err := r.message.withBody(body)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}
