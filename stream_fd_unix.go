//go:build linux || darwin || freebsd || netbsd || openbsd || dragonfly

package httpmsg

import (
	"os"

	"golang.org/x/sys/unix"
)

// fileMode reports the fopen style mode matching the open flags of the
// descriptor behind f. It is queried on every call, so a descriptor
// whose flags change is reported accurately.
func fileMode(f *os.File) (string, bool) {
	fl, err := unix.FcntlInt(f.Fd(), unix.F_GETFL, 0)
	if err != nil {
		return "", false
	}
	appendMode := fl&unix.O_APPEND != 0
	switch fl & unix.O_ACCMODE {
	case unix.O_RDONLY:
		return "r", true
	case unix.O_WRONLY:
		if appendMode {
			return "a", true
		}
		return "w", true
	case unix.O_RDWR:
		if appendMode {
			return "a+", true
		}
		return "r+", true
	}
	return "", false
}

// dupFile returns a new *os.File on a duplicate of f's descriptor.
func dupFile(f *os.File) (*os.File, error) {
	fd, err := unix.Dup(int(f.Fd()))
	if err != nil {
		return nil, err
	}
	unix.CloseOnExec(fd)
	return os.NewFile(uintptr(fd), f.Name()), nil
}
