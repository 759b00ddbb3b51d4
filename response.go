package httpmsg

import (
	"strconv"

	"github.com/valyala/bytebufferpool"
)

// Response is an HTTP response.
//
// Response is immutable: every With* method returns a new Response and
// leaves the receiver untouched. The body Stream is shared by all
// responses derived from one another.
type Response struct {
	message

	statusCode   int
	reasonPhrase string
}

// NewResponse returns a Response.
//
// body is a *Stream, an *os.File or a string locator opened with mode
// "wb+". statusCode must be in [100, 599]. An empty reasonPhrase is
// replaced by the registered phrase of statusCode, if any.
func NewResponse(body any, statusCode int, reasonPhrase string, header Header) (*Response, error) {
	if body == nil {
		return nil, invalidInput("a response body is required")
	}
	if err := validateStatusCode(statusCode); err != nil {
		return nil, err
	}
	b, err := bodyStream(body, defaultResponseBodyMode)
	if err != nil {
		return nil, err
	}
	return &Response{
		message:      newMessage(b, header),
		statusCode:   statusCode,
		reasonPhrase: reasonPhraseFor(statusCode, reasonPhrase),
	}, nil
}

func validateStatusCode(code int) error {
	if code < minStatusCode || code > maxStatusCode {
		return invalidInput("status code %d is outside the range [%d, %d]", code, minStatusCode, maxStatusCode)
	}
	return nil
}

func reasonPhraseFor(code int, phrase string) string {
	if phrase == "" {
		return StatusText(code)
	}
	return phrase
}

func (r *Response) clone() *Response {
	c := *r
	return &c
}

// StatusCode returns the response status code.
func (r *Response) StatusCode() int {
	return r.statusCode
}

// ReasonPhrase returns the reason phrase, which may be empty.
func (r *Response) ReasonPhrase() string {
	return r.reasonPhrase
}

// WithStatus returns a copy of r with the given status code and reason
// phrase. An empty reasonPhrase is replaced by the registered phrase of
// code, if any.
func (r *Response) WithStatus(code int, reasonPhrase string) (*Response, error) {
	if err := validateStatusCode(code); err != nil {
		return nil, err
	}
	c := r.clone()
	c.statusCode = code
	c.reasonPhrase = reasonPhraseFor(code, reasonPhrase)
	return c, nil
}

// String returns the status line "HTTP/version code reason-phrase".
func (r *Response) String() string {
	b := bytebufferpool.Get()
	b.B = append(b.B, "HTTP/"...)
	b.B = append(b.B, r.protocol...)
	b.B = append(b.B, ' ')
	b.B = strconv.AppendInt(b.B, int64(r.statusCode), 10)
	b.B = append(b.B, ' ')
	b.B = append(b.B, r.reasonPhrase...)
	s := b.String()
	bytebufferpool.Put(b)
	return s
}

// WithProtocolVersion returns a copy of r with the given protocol version.
func (r *Response) WithProtocolVersion(v string) *Response {
	c := r.clone()
	c.message = c.message.withProtocolVersion(v)
	return c
}

// WithHeader returns a copy of r where the header named name holds
// exactly values, see Header.Set.
func (r *Response) WithHeader(name string, values ...string) (*Response, error) {
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
func (r *Response) WithAddedHeader(name string, values ...string) (*Response, error) {
	m, err := r.message.withAddedHeader(name, values)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}

// WithoutHeader returns a copy of r without the header named name.
func (r *Response) WithoutHeader(name string) *Response {
	c := r.clone()
	c.message = c.message.withoutHeader(name)
	return c
}

// WithBody returns a copy of r with the given body.
func (r *Response) WithBody(body *Stream) (*Response, error) {
	m, err := r.message.withBody(body)
	if err != nil {
		return nil, err
	}
	c := r.clone()
	c.message = m
	return c, nil
}
