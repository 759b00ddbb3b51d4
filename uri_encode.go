package httpmsg

import (
	"github.com/valyala/bytebufferpool"
)

const upperhex = "0123456789ABCDEF"

var (
	pathSafe  [256]bool
	querySafe [256]bool
)

func init() {
	for c := 'a'; c <= 'z'; c++ {
		pathSafe[c] = true
		pathSafe[c-'a'+'A'] = true
	}
	for c := '0'; c <= '9'; c++ {
		pathSafe[c] = true
	}
	// unreserved, sub-delims and the characters allowed inside a path
	for _, c := range "_+-.~!$&'()*,;=/%@:" {
		pathSafe[c] = true
	}
	querySafe = pathSafe
	querySafe['?'] = true
}

// encodePath percent-encodes every byte of s that may not appear in a
// URI path as is.
func encodePath(s string) string {
	return percentEncode(s, &pathSafe)
}

// encodeQueryOrFragment is encodePath that also leaves '?' alone.
func encodeQueryOrFragment(s string) string {
	return percentEncode(s, &querySafe)
}

func percentEncode(s string, safe *[256]bool) string {
	i := 0
	for i < len(s) && keepByte(s, i, safe) {
		i++
	}
	if i == len(s) {
		return s
	}

	b := bytebufferpool.Get()
	b.B = append(b.B, s[:i]...)
	for ; i < len(s); i++ {
		c := s[i]
		if keepByte(s, i, safe) {
			b.B = append(b.B, c)
			continue
		}
		b.B = append(b.B, '%', upperhex[c>>4], upperhex[c&15])
	}
	encoded := b.String()
	bytebufferpool.Put(b)
	return encoded
}

// keepByte reports whether s[i] stays unencoded. A '%' stays only when it
// starts a valid escape, so encoding is idempotent.
func keepByte(s string, i int, safe *[256]bool) bool {
	c := s[i]
	if !safe[c] {
		return false
	}
	if c != '%' {
		return true
	}
	return i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2])
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
