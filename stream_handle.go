package httpmsg

import (
	"os"
	"strings"
)

const (
	readSigns  = "r+"
	writeSigns = "waxc+"
)

// modeReadable reports whether an fopen style mode permits reading.
func modeReadable(mode string) bool {
	return strings.ContainsAny(mode, readSigns)
}

// modeWritable reports whether an fopen style mode permits writing.
func modeWritable(mode string) bool {
	return strings.ContainsAny(mode, writeSigns)
}

// openFlags translates an fopen style mode ("r", "w+", "ab", "x+b", ...)
// into os.OpenFile flags. The leading letter selects creation and
// truncation, the access mode follows the read and write signs.
func openFlags(mode string) (int, bool) {
	if mode == "" {
		return 0, false
	}
	for i := 1; i < len(mode); i++ {
		switch mode[i] {
		case '+', 'b', 't', 'r', 'w':
		default:
			return 0, false
		}
	}

	var flag int
	switch mode[0] {
	case 'r':
	case 'w':
		flag = os.O_CREATE | os.O_TRUNC
	case 'a':
		flag = os.O_CREATE | os.O_APPEND
	case 'x':
		flag = os.O_CREATE | os.O_EXCL
	case 'c':
		flag = os.O_CREATE
	default:
		return 0, false
	}

	r, w := modeReadable(mode), modeWritable(mode)
	switch {
	case r && w:
		flag |= os.O_RDWR
	case w:
		flag |= os.O_WRONLY
	default:
		flag |= os.O_RDONLY
	}
	return flag, true
}

// openLocator opens the handle named by locator with the given mode.
func openLocator(locator, mode string) (*os.File, error) {
	flag, ok := openFlags(mode)
	if !ok {
		return nil, invalidInput("cannot open %q: unsupported mode %q", locator, mode)
	}

	var (
		f   *os.File
		err error
	)
	switch locator {
	case LocatorMemory, LocatorTemp:
		f, err = openScratch()
	case LocatorStdin:
		f, err = dupFile(os.Stdin)
	case LocatorStdout:
		f, err = dupFile(os.Stdout)
	case LocatorStderr:
		f, err = dupFile(os.Stderr)
	default:
		f, err = os.OpenFile(locator, flag, 0o666)
	}
	if err != nil {
		return nil, invalidInput("cannot open %q, error: %v", locator, err)
	}
	return f, nil
}

func isStdioLocator(locator string) bool {
	switch locator {
	case LocatorStdin, LocatorStdout, LocatorStderr:
		return true
	}
	return false
}

// openScratch returns a read-write temporary file that is already
// unlinked, so it disappears when closed.
func openScratch() (*os.File, error) {
	f, err := os.CreateTemp("", "httpmsg-*")
	if err != nil {
		return nil, err
	}
	// Removing an open file fails on some platforms; the file then lives
	// in the temp dir until cleaned up externally.
	_ = os.Remove(f.Name())
	return f, nil
}

// fileSeekable reports whether f refers to something with a position:
// regular files are, pipes, sockets and character devices are not.
func fileSeekable(f *os.File) bool {
	fi, err := f.Stat()
	if err != nil {
		return false
	}
	return fi.Mode()&(os.ModeNamedPipe|os.ModeSocket|os.ModeCharDevice) == 0
}
