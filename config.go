package httpmsg

import (
	"strings"

	"github.com/puzpuzpuz/xsync/v3"
)

// Stream locators understood by NewStream and Attach in addition to
// filesystem paths.
const (
	// LocatorMemory opens an anonymous scratch file that vanishes on Close.
	LocatorMemory = "stream://memory"
	// LocatorTemp is an alias of LocatorMemory.
	LocatorTemp = "stream://temp"
	// LocatorStdin, LocatorStdout and LocatorStderr open duplicates of the
	// process standard descriptors, so closing the stream leaves the
	// process descriptor open.
	LocatorStdin  = "stream://stdin"
	LocatorStdout = "stream://stdout"
	LocatorStderr = "stream://stderr"
)

const (
	defaultStreamMode       = "rb"
	defaultRequestBodyMode  = "r+b"
	defaultResponseBodyMode = "wb+"
)

var defaultProtocolVersion = "1.1"

// SetDefaultProtocolVersion sets the protocol version assigned by
// NewMessage, NewRequest, NewResponse and NewServerRequest.
//
// The initial value is "1.1".
func SetDefaultProtocolVersion(v string) {
	defaultProtocolVersion = v
}

// schemePorts maps a lowercase scheme to its registered default port.
// A URI may only carry a scheme present in this registry.
var schemePorts = newSchemeRegistry()

func newSchemeRegistry() *xsync.MapOf[string, int] {
	m := xsync.NewMapOf[string, int](xsync.WithPresize(8))
	m.Store("http", 80)
	m.Store("https", 443)
	m.Store("pop", 110)
	return m
}

// RegisterScheme adds scheme to the set of schemes a URI may carry,
// with defaultPort elided from the URI authority.
//
// Registering an already known scheme replaces its default port for URIs
// parsed or given that scheme afterwards; existing URIs keep theirs.
func RegisterScheme(scheme string, defaultPort int) error {
	scheme = strings.ToLower(scheme)
	if !validScheme(scheme) {
		return invalidInput("scheme %q is malformed", scheme)
	}
	if defaultPort < minPort || defaultPort > maxPort {
		return invalidInput("default port %d is outside the range [%d, %d]", defaultPort, minPort, maxPort)
	}
	schemePorts.Store(scheme, defaultPort)
	return nil
}

// DefaultSchemePort returns the default port registered for scheme.
func DefaultSchemePort(scheme string) (int, bool) {
	return schemePorts.Load(strings.ToLower(scheme))
}
