package httpmsg

import (
	"os"
)

// message holds the parts shared by every HTTP message type. The types
// embedding it copy it on every mutation; header is an immutable value
// while body is shared by pointer between all copies.
type message struct {
	protocol string
	header   Header
	body     *Stream
}

func newMessage(body *Stream, header Header) message {
	return message{
		protocol: defaultProtocolVersion,
		header:   header,
		body:     body,
	}
}

// ProtocolVersion returns the HTTP version number, e.g. "1.1".
func (m *message) ProtocolVersion() string {
	return m.protocol
}

// Header returns all header fields.
func (m *message) Header() Header {
	return m.header
}

// Headers returns a map from canonical header name to values.
func (m *message) Headers() map[string][]string {
	return m.header.All()
}

// HasHeader reports whether the header named name exists, ignoring case.
func (m *message) HasHeader(name string) bool {
	return m.header.Has(name)
}

// GetHeader returns the values of the header named name, ignoring case.
func (m *message) GetHeader(name string) []string {
	return m.header.Get(name)
}

// HeaderLine returns the values of the header named name joined with ", ".
func (m *message) HeaderLine(name string) string {
	return m.header.Line(name)
}

// Body returns the body stream.
func (m *message) Body() *Stream {
	return m.body
}

func (m message) withHeader(name string, values []string) (message, error) {
	h, err := m.header.Set(name, values...)
	if err != nil {
		return m, err
	}
	m.header = h
	return m, nil
}

func (m message) withAddedHeader(name string, values []string) (message, error) {
	h, err := m.header.Add(name, values...)
	if err != nil {
		return m, err
	}
	m.header = h
	return m, nil
}

func (m message) withoutHeader(name string) message {
	m.header = m.header.Del(name)
	return m
}

func (m message) withBody(body *Stream) (message, error) {
	if body == nil {
		return m, invalidInput("the body must be a *Stream, nil given")
	}
	m.body = body
	return m, nil
}

func (m message) withProtocolVersion(v string) message {
	m.protocol = v
	return m
}

// bodyStream turns a constructor body argument into a Stream. A string
// is a locator opened with mode; nil is a fresh memory stream.
func bodyStream(body any, mode string) (*Stream, error) {
	switch b := body.(type) {
	case nil:
		return NewStream(LocatorMemory, defaultRequestBodyMode)
	case *Stream:
		if b == nil {
			return nil, invalidInput("the body stream is nil")
		}
		return b, nil
	case *os.File, string:
		return NewStream(b, mode)
	default:
		return nil, invalidInput("a body must be a *Stream, an *os.File or a string locator, %T given", body)
	}
}

// Message is a bare HTTP message: a protocol version, header fields and a
// body stream.
//
// Message is immutable: every With* method returns a new Message and
// leaves the receiver untouched. The body Stream is shared by all
// messages derived from one another.
type Message struct {
	message
}

// NewMessage returns a Message with body, no header fields and the
// default protocol version.
func NewMessage(body *Stream) (*Message, error) {
	if body == nil {
		return nil, invalidInput("the body must be a *Stream, nil given")
	}
	return &Message{message: newMessage(body, Header{})}, nil
}

// WithProtocolVersion returns a copy of m with the given protocol version.
func (m *Message) WithProtocolVersion(v string) *Message {
	return &Message{message: m.message.withProtocolVersion(v)}
}

// WithHeader returns a copy of m where the header named name holds
// exactly values, see Header.Set.
func (m *Message) WithHeader(name string, values ...string) (*Message, error) {
	mm, err := m.message.withHeader(name, values)
	if err != nil {
		return nil, err
	}
	return &Message{message: mm}, nil
}

// WithAddedHeader returns a copy of m with values appended to the header
// named name, see Header.Add.
func (m *Message) WithAddedHeader(name string, values ...string) (*Message, error) {
	mm, err := m.message.withAddedHeader(name, values)
	if err != nil {
		return nil, err
	}
	return &Message{message: mm}, nil
}

// WithoutHeader returns a copy of m without the header named name.
func (m *Message) WithoutHeader(name string) *Message {
	return &Message{message: m.message.withoutHeader(name)}
}

// WithBody returns a copy of m with the given body.
func (m *Message) WithBody(body *Stream) (*Message, error) {
	mm, err := m.message.withBody(body)
	if err != nil {
		return nil, err
	}
	return &Message{message: mm}, nil
}
