package httpmsg

import (
	"reflect"
)

// ServerRequest is an incoming, server-side HTTP request: a Request plus
// the data a server derives from it.
//
// ServerRequest is immutable: every With* method returns a new
// ServerRequest. The maps passed in and handed out are copies.
type ServerRequest struct {
	Request

	serverParams  map[string]string
	cookieParams  map[string]string
	queryParams   map[string][]string
	uploadedFiles map[string]any
	parsedBody    any
	attributes    map[string]any
}

// ServerRequestParams are the server-derived parts of a ServerRequest.
type ServerRequestParams struct {
	ServerParams  map[string]string
	Cookies       map[string]string
	QueryParams   map[string][]string
	UploadedFiles map[string]any
	ParsedBody    any
}

// NewServerRequest returns a ServerRequest, see NewRequest for method,
// uri, body and header.
//
// params.UploadedFiles and params.ParsedBody are validated as by
// WithUploadedFiles and WithParsedBody.
func NewServerRequest(method string, uri any, body any, header Header, params ServerRequestParams) (*ServerRequest, error) {
	if err := validateUploadedFiles(params.UploadedFiles); err != nil {
		return nil, err
	}
	if err := validateParsedBody(params.ParsedBody); err != nil {
		return nil, err
	}
	r, err := NewRequest(method, uri, body, header)
	if err != nil {
		return nil, err
	}
	return &ServerRequest{
		Request:       *r,
		serverParams:  copyStrings(params.ServerParams),
		cookieParams:  copyStrings(params.Cookies),
		queryParams:   copyValues(params.QueryParams),
		uploadedFiles: copyAny(params.UploadedFiles),
		parsedBody:    params.ParsedBody,
		attributes:    map[string]any{},
	}, nil
}

func (r *ServerRequest) clone() *ServerRequest {
	c := *r
	return &c
}

func (r *ServerRequest) withRequest(req *Request) *ServerRequest {
	if req == &r.Request {
		return r
	}
	c := r.clone()
	c.Request = *req
	return c
}

// ServerParams returns the server parameters, such as the remote address.
func (r *ServerRequest) ServerParams() map[string]string {
	return copyStrings(r.serverParams)
}

// CookieParams returns the cookies sent by the client.
func (r *ServerRequest) CookieParams() map[string]string {
	return copyStrings(r.cookieParams)
}

// WithCookieParams returns a copy of r with the given cookies.
func (r *ServerRequest) WithCookieParams(cookies map[string]string) *ServerRequest {
	c := r.clone()
	c.cookieParams = copyStrings(cookies)
	return c
}

// QueryParams returns the deserialized query string arguments.
func (r *ServerRequest) QueryParams() map[string][]string {
	return copyValues(r.queryParams)
}

// WithQueryParams returns a copy of r with the given query string arguments.
func (r *ServerRequest) WithQueryParams(query map[string][]string) *ServerRequest {
	c := r.clone()
	c.queryParams = copyValues(query)
	return c
}

// UploadedFiles returns the tree of uploaded files.
func (r *ServerRequest) UploadedFiles() map[string]any {
	return copyAny(r.uploadedFiles)
}

// WithUploadedFiles returns a copy of r with the given tree of uploaded
// files. Every leaf must be an *UploadedFile; inner nodes are
// map[string]any, []any or []*UploadedFile.
func (r *ServerRequest) WithUploadedFiles(files map[string]any) (*ServerRequest, error) {
	if err := validateUploadedFiles(files); err != nil {
		return nil, err
	}
	c := r.clone()
	c.uploadedFiles = copyAny(files)
	return c, nil
}

// ParsedBody returns the deserialized body, or nil.
func (r *ServerRequest) ParsedBody() any {
	return r.parsedBody
}

// WithParsedBody returns a copy of r with the given deserialized body.
// data must be nil, a map, a slice, an array, a struct or a pointer to a
// struct.
func (r *ServerRequest) WithParsedBody(data any) (*ServerRequest, error) {
	if err := validateParsedBody(data); err != nil {
		return nil, err
	}
	c := r.clone()
	c.parsedBody = data
	return c, nil
}

// Attributes returns the attributes derived from the request.
func (r *ServerRequest) Attributes() map[string]any {
	return copyAny(r.attributes)
}

// Attribute returns the attribute named name, or def when there is none.
func (r *ServerRequest) Attribute(name string, def any) any {
	if v, ok := r.attributes[name]; ok {
		return v
	}
	return def
}

// WithAttribute returns a copy of r with the attribute name set to value.
func (r *ServerRequest) WithAttribute(name string, value any) *ServerRequest {
	c := r.clone()
	c.attributes = copyAny(r.attributes)
	c.attributes[name] = value
	return c
}

// WithoutAttribute returns a copy of r without the attribute name.
func (r *ServerRequest) WithoutAttribute(name string) *ServerRequest {
	c := r.clone()
	c.attributes = copyAny(r.attributes)
	delete(c.attributes, name)
	return c
}

// WithProtocolVersion returns a copy of r with the given protocol version.
func (r *ServerRequest) WithProtocolVersion(v string) *ServerRequest {
	return r.withRequest(r.Request.WithProtocolVersion(v))
}

// WithMethod returns a copy of r with the given method.
func (r *ServerRequest) WithMethod(method string) (*ServerRequest, error) {
	req, err := r.Request.WithMethod(method)
	if err != nil {
		return nil, err
	}
	return r.withRequest(req), nil
}

// WithURI returns a request with the given URI, see Request.WithURI.
func (r *ServerRequest) WithURI(uri *URI, preserveHost bool) (*ServerRequest, error) {
	req, err := r.Request.WithURI(uri, preserveHost)
	if err != nil {
		return nil, err
	}
	return r.withRequest(req), nil
}

// WithRequestTarget returns a copy of r with an explicit request target.
func (r *ServerRequest) WithRequestTarget(target string) (*ServerRequest, error) {
	req, err := r.Request.WithRequestTarget(target)
	if err != nil {
		return nil, err
	}
	return r.withRequest(req), nil
}

// WithHeader returns a copy of r where the header named name holds
// exactly values.
func (r *ServerRequest) WithHeader(name string, values ...string) (*ServerRequest, error) {
	req, err := r.Request.WithHeader(name, values...)
	if err != nil {
		return nil, err
	}
	return r.withRequest(req), nil
}

// WithAddedHeader returns a copy of r with values appended to the header
// named name.
func (r *ServerRequest) WithAddedHeader(name string, values ...string) (*ServerRequest, error) {
	req, err := r.Request.WithAddedHeader(name, values...)
	if err != nil {
		return nil, err
	}
	return r.withRequest(req), nil
}

// WithoutHeader returns a copy of r without the header named name.
func (r *ServerRequest) WithoutHeader(name string) *ServerRequest {
	return r.withRequest(r.Request.WithoutHeader(name))
}

// WithBody returns a copy of r with the given body.
func (r *ServerRequest) WithBody(body *Stream) (*ServerRequest, error) {
	req, err := r.Request.WithBody(body)
	if err != nil {
		return nil, err
	}
	return r.withRequest(req), nil
}

func validateUploadedFiles(tree map[string]any) error {
	for _, leaf := range tree {
		if err := validateUploadedLeaf(leaf); err != nil {
			return err
		}
	}
	return nil
}

func validateUploadedLeaf(leaf any) error {
	switch v := leaf.(type) {
	case *UploadedFile:
		if v == nil {
			return invalidInput("an uploaded file in the tree is nil")
		}
		return nil
	case []*UploadedFile:
		for _, f := range v {
			if err := validateUploadedLeaf(f); err != nil {
				return err
			}
		}
		return nil
	case []any:
		for _, f := range v {
			if err := validateUploadedLeaf(f); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		return validateUploadedFiles(v)
	default:
		return invalidInput("an element in the uploaded files tree must be an *UploadedFile, %T given", leaf)
	}
}

func validateParsedBody(data any) error {
	if data == nil {
		return nil
	}
	t := reflect.TypeOf(data)
	switch t.Kind() {
	case reflect.Map, reflect.Slice, reflect.Array, reflect.Struct:
		return nil
	case reflect.Pointer:
		if t.Elem().Kind() == reflect.Struct {
			return nil
		}
	}
	return invalidInput("a parsed body must be nil, a map, a slice, an array or a struct, %T given", data)
}

func copyStrings(m map[string]string) map[string]string {
	c := make(map[string]string, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}

func copyValues(m map[string][]string) map[string][]string {
	c := make(map[string][]string, len(m))
	for k, v := range m {
		c[k] = append([]string(nil), v...)
	}
	return c
}

func copyAny(m map[string]any) map[string]any {
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
