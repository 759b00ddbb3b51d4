//go:build !(linux || darwin || freebsd || netbsd || openbsd || dragonfly)

package httpmsg

import (
	"os"
)

// fileMode cannot query descriptor flags on this platform; an attached
// *os.File is assumed to be open for reading and writing.
func fileMode(f *os.File) (string, bool) {
	if f == nil {
		return "", false
	}
	return "r+", true
}

// dupFile hands out f itself; closing the stream closes f.
func dupFile(f *os.File) (*os.File, error) {
	return f, nil
}
