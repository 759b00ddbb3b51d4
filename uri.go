package httpmsg

import (
	"strconv"
	"strings"

	"github.com/valyala/bytebufferpool"
)

const (
	minPort = 1
	maxPort = 65535
)

// URI is an immutable URI reference.
//
// Scheme and host are stored lowercase. Path, query and fragment are
// stored percent-encoded, see ParseURI. Every With* method returns a new
// URI, except when the normalized new value equals the current one; then
// the receiver itself is returned.
type URI struct {
	scheme string
	// defaultPort is the default port registered for scheme when scheme
	// was set, so later RegisterScheme calls leave this URI alone.
	defaultPort int
	userInfo    string
	host        string
	port        int
	path        string
	query       string
	fragment    string
}

// ParseURI parses s into a URI.
//
// s is split into scheme, authority, path, query and fragment following
// the generic URI grammar of RFC 3986. Missing components are empty and a
// missing port is 0. The scheme, when present, must be registered (see
// RegisterScheme) and the port must be in [1, 65535]; otherwise the
// returned error matches ErrInvalidInput.
//
// Path, query and fragment are percent-encoded: every byte outside the
// unreserved and sub-delimiter sets, and every '%' not starting a valid
// escape, is replaced by its %XX form. Valid escapes are kept as is.
func ParseURI(s string) (*URI, error) {
	u := &URI{}
	rest := s

	if i := strings.IndexAny(rest, ":/?#"); i > 0 && rest[i] == ':' {
		scheme, defaultPort, err := normalizeScheme(rest[:i])
		if err != nil {
			return nil, err
		}
		u.scheme, u.defaultPort = scheme, defaultPort
		rest = rest[i+1:]
	}

	if strings.HasPrefix(rest, "//") {
		rest = rest[2:]
		n := strings.IndexAny(rest, "/?#")
		if n < 0 {
			n = len(rest)
		}
		if err := u.parseAuthority(rest[:n]); err != nil {
			return nil, err
		}
		rest = rest[n:]
	}

	if i := strings.IndexByte(rest, '#'); i >= 0 {
		u.fragment = encodeQueryOrFragment(rest[i+1:])
		rest = rest[:i]
	}
	if i := strings.IndexByte(rest, '?'); i >= 0 {
		u.query = encodeQueryOrFragment(rest[i+1:])
		rest = rest[:i]
	}
	u.path = encodePath(rest)
	return u, nil
}

// MustParseURI is like ParseURI but panics on error.
func MustParseURI(s string) *URI {
	u, err := ParseURI(s)
	if err != nil {
		panic(err)
	}
	return u
}

func (u *URI) parseAuthority(authority string) error {
	if i := strings.LastIndexByte(authority, '@'); i >= 0 {
		u.userInfo = authority[:i]
		authority = authority[i+1:]
	}
	host, port := authority, ""
	if strings.HasPrefix(authority, "[") {
		i := strings.IndexByte(authority, ']')
		if i < 0 {
			return invalidInput("missing ']' in host %q", authority)
		}
		host = authority[:i+1]
		if rest := authority[i+1:]; strings.HasPrefix(rest, ":") {
			port = rest[1:]
		} else if rest != "" {
			return invalidInput("malformed authority %q", authority)
		}
	} else if i := strings.LastIndexByte(authority, ':'); i >= 0 {
		host, port = authority[:i], authority[i+1:]
	}
	u.host = strings.ToLower(host)
	if port == "" {
		return nil
	}
	n, err := strconv.Atoi(port)
	if err != nil || port[0] == '+' || port[0] == '-' {
		return invalidInput("port %q is not a number", port)
	}
	if err = validatePort(n); err != nil {
		return err
	}
	u.port = n
	return nil
}

// Scheme returns the lowercase scheme, or "" when there is none.
func (u *URI) Scheme() string {
	return u.scheme
}

// UserInfo returns "user" or "user:password", or "".
func (u *URI) UserInfo() string {
	return u.userInfo
}

// Host returns the lowercase host, or "".
func (u *URI) Host() string {
	return u.host
}

// Port returns the port when it deviates from the scheme default.
//
// 0 is returned when no port is set or the port equals the default port
// the scheme had registered when it was set on u.
func (u *URI) Port() int {
	if u.port == 0 || u.isDefaultPort() {
		return 0
	}
	return u.port
}

// RawPort returns the stored port, default or not, or 0 when none is set.
func (u *URI) RawPort() int {
	return u.port
}

func (u *URI) isDefaultPort() bool {
	return u.scheme != "" && u.defaultPort == u.port
}

// Path returns the percent-encoded path.
func (u *URI) Path() string {
	return u.path
}

// Query returns the percent-encoded query without the leading '?'.
func (u *URI) Query() string {
	return u.query
}

// Fragment returns the percent-encoded fragment without the leading '#'.
func (u *URI) Fragment() string {
	return u.fragment
}

// Authority returns "[user-info@]host[:port]", or "" when there is no host.
//
// The port is omitted under the same rule as Port.
func (u *URI) Authority() string {
	if u.host == "" {
		return ""
	}
	b := bytebufferpool.Get()
	b.B = u.appendAuthority(b.B)
	s := b.String()
	bytebufferpool.Put(b)
	return s
}

func (u *URI) appendAuthority(dst []byte) []byte {
	if u.host == "" {
		return dst
	}
	if u.userInfo != "" {
		dst = append(dst, u.userInfo...)
		dst = append(dst, '@')
	}
	dst = append(dst, u.host...)
	if port := u.Port(); port != 0 {
		dst = append(dst, ':')
		dst = strconv.AppendInt(dst, int64(port), 10)
	}
	return dst
}

// String returns the URI reference
//
//	[scheme ":"] ["//" authority] path ["?" query] ["#" fragment]
//
// omitting each optional part when it is empty.
func (u *URI) String() string {
	b := bytebufferpool.Get()
	if u.scheme != "" {
		b.B = append(b.B, u.scheme...)
		b.B = append(b.B, ':')
	}
	if u.host != "" {
		b.B = append(b.B, "//"...)
		b.B = u.appendAuthority(b.B)
	}
	b.B = append(b.B, u.path...)
	if u.query != "" {
		b.B = append(b.B, '?')
		b.B = append(b.B, u.query...)
	}
	if u.fragment != "" {
		b.B = append(b.B, '#')
		b.B = append(b.B, u.fragment...)
	}
	s := b.String()
	bytebufferpool.Put(b)
	return s
}

// WithScheme returns u with the given scheme.
//
// The scheme is lowercased and must be registered; "" removes it.
func (u *URI) WithScheme(scheme string) (*URI, error) {
	var defaultPort int
	if scheme != "" {
		var err error
		if scheme, defaultPort, err = normalizeScheme(scheme); err != nil {
			return nil, err
		}
	}
	if scheme == u.scheme {
		return u, nil
	}
	c := *u
	c.scheme, c.defaultPort = scheme, defaultPort
	return &c, nil
}

// WithUserInfo returns u with the given user and password. An empty
// password leaves only the user.
func (u *URI) WithUserInfo(user, password string) *URI {
	userInfo := user
	if password != "" {
		userInfo += ":" + password
	}
	if userInfo == u.userInfo {
		return u
	}
	c := *u
	c.userInfo = userInfo
	return &c
}

// WithHost returns u with the given host, lowercased.
func (u *URI) WithHost(host string) *URI {
	host = strings.ToLower(host)
	if host == u.host {
		return u
	}
	c := *u
	c.host = host
	return &c
}

// WithPort returns u with the given port, which must be in [1, 65535].
func (u *URI) WithPort(port int) (*URI, error) {
	if err := validatePort(port); err != nil {
		return nil, err
	}
	if port == u.port {
		return u, nil
	}
	c := *u
	c.port = port
	return &c, nil
}

// WithoutPort returns u without port information.
func (u *URI) WithoutPort() *URI {
	if u.port == 0 {
		return u
	}
	c := *u
	c.port = 0
	return &c
}

// WithPath returns u with the given path, percent-encoded.
func (u *URI) WithPath(path string) *URI {
	path = encodePath(path)
	if path == u.path {
		return u
	}
	c := *u
	c.path = path
	return &c
}

// WithQuery returns u with the given query, percent-encoded.
func (u *URI) WithQuery(query string) *URI {
	query = encodeQueryOrFragment(query)
	if query == u.query {
		return u
	}
	c := *u
	c.query = query
	return &c
}

// WithFragment returns u with the given fragment, percent-encoded.
func (u *URI) WithFragment(fragment string) *URI {
	fragment = encodeQueryOrFragment(fragment)
	if fragment == u.fragment {
		return u
	}
	c := *u
	c.fragment = fragment
	return &c
}

// normalizeScheme lowercases scheme and returns its registered default port.
func normalizeScheme(scheme string) (string, int, error) {
	scheme = strings.ToLower(scheme)
	port, ok := schemePorts.Load(scheme)
	if !ok {
		return "", 0, invalidInput("scheme %q is not supported", scheme)
	}
	return scheme, port, nil
}

func validatePort(port int) error {
	if port < minPort || port > maxPort {
		return invalidInput("port %d is outside the range [%d, %d]", port, minPort, maxPort)
	}
	return nil
}

// validScheme reports whether s matches ALPHA *( ALPHA / DIGIT / "+" / "-" / "." ).
func validScheme(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z':
		case i > 0 && ('0' <= c && c <= '9' || c == '+' || c == '-' || c == '.'):
		default:
			return false
		}
	}
	return true
}
