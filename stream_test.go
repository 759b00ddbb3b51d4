package httpmsg

import (
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/gookit/goutil/testutil/assert"
	"github.com/xyproto/randomstring"
)

func newMemoryStream(t *testing.T, contents string) *Stream {
	t.Helper()
	s, err := NewStream(LocatorMemory, "r+b")
	assert.NoErr(t, err)
	t.Cleanup(func() { _ = s.Close() })
	if contents != "" {
		_, err = s.WriteString(contents)
		assert.NoErr(t, err)
		assert.NoErr(t, s.Rewind())
	}
	return s
}

func TestStreamModes(t *testing.T) {
	for _, tc := range []struct {
		mode               string
		readable, writable bool
	}{
		{"r", true, false},
		{"rb", true, false},
		{"rt", true, false},
		{"r+", true, true},
		{"r+b", true, true},
		{"rw", true, true},
		{"w", false, true},
		{"wb", false, true},
		{"w+", true, true},
		{"w+b", true, true},
		{"a", false, true},
		{"a+", true, true},
		{"ab", false, true},
		{"x", false, true},
		{"x+", true, true},
		{"x+b", true, true},
		{"c", false, true},
		{"c+", true, true},
		{"c+t", true, true},
	} {
		path := filepath.Join(t.TempDir(), "stream")
		if tc.mode[0] != 'x' {
			assert.NoErr(t, os.WriteFile(path, []byte("data"), 0o600))
		}
		s, err := NewStream(path, tc.mode)
		assert.NoErr(t, err, tc.mode)
		assert.Eq(t, tc.readable, s.IsReadable(), tc.mode)
		assert.Eq(t, tc.writable, s.IsWritable(), tc.mode)
		assert.True(t, s.IsSeekable())

		md, ok := s.Metadata()
		assert.True(t, ok)
		assert.Eq(t, tc.mode, md.Mode)
		assert.Eq(t, path, md.URI)
		assert.NoErr(t, s.Close())
	}
}

func TestStreamInvalidSource(t *testing.T) {
	_, err := NewStream(42, "r")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewStream((*os.File)(nil), "")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	_, err = NewStream(filepath.Join(t.TempDir(), "missing", "file"), "r")
	assert.True(t, errors.Is(err, ErrInvalidInput))

	for _, mode := range []string{"z", "rz", "+r", "r b"} {
		_, err = NewStream(LocatorMemory, mode)
		assert.True(t, errors.Is(err, ErrInvalidInput), mode)
	}

	path := filepath.Join(t.TempDir(), "exists")
	assert.NoErr(t, os.WriteFile(path, nil, 0o600))
	_, err = NewStream(path, "x")
	assert.True(t, errors.Is(err, ErrInvalidInput))
}

func TestStreamDefaultModeIsReadOnly(t *testing.T) {
	s, err := NewStream(LocatorTemp, "")
	assert.NoErr(t, err)
	defer s.Close() //nolint:errcheck

	md, ok := s.Metadata()
	assert.True(t, ok)
	assert.Eq(t, "rb", md.Mode)
	assert.Eq(t, LocatorTemp, md.URI)
	assert.True(t, s.IsReadable())
	assert.False(t, s.IsWritable())

	_, err = s.WriteString("x")
	assert.True(t, errors.Is(err, ErrNotWritable))
}

func TestStreamReadWriteSeek(t *testing.T) {
	s := newMemoryStream(t, "")

	n, err := s.WriteString("foo bar")
	assert.NoErr(t, err)
	assert.Eq(t, 7, n)

	pos, err := s.Tell()
	assert.NoErr(t, err)
	assert.Eq(t, int64(7), pos)

	size, ok := s.Size()
	assert.True(t, ok)
	assert.Eq(t, int64(7), size)

	assert.NoErr(t, s.Seek(4, io.SeekStart))
	p, err := s.Read(10)
	assert.NoErr(t, err)
	assert.Eq(t, "bar", string(p))

	assert.NoErr(t, s.Seek(-3, io.SeekEnd))
	p, err = s.Read(1)
	assert.NoErr(t, err)
	assert.Eq(t, "b", string(p))

	assert.NoErr(t, s.Seek(1, io.SeekCurrent))
	p, err = s.Read(1)
	assert.NoErr(t, err)
	assert.Eq(t, "r", string(p))

	p, err = s.Read(0)
	assert.NoErr(t, err)
	assert.Eq(t, 0, len(p))
}

func TestStreamEOF(t *testing.T) {
	s := newMemoryStream(t, "abc")

	assert.False(t, s.EOF())
	p, err := s.Read(3)
	assert.NoErr(t, err)
	assert.Eq(t, "abc", string(p))
	assert.False(t, s.EOF())

	p, err = s.Read(3)
	assert.NoErr(t, err)
	assert.Eq(t, 0, len(p))
	assert.True(t, s.EOF())

	assert.NoErr(t, s.Rewind())
	assert.False(t, s.EOF())

	_, err = s.GetContents()
	assert.NoErr(t, err)
	assert.True(t, s.EOF())

	_, err = s.WriteString("d")
	assert.NoErr(t, err)
	assert.False(t, s.EOF())
}

func TestStreamGetContents(t *testing.T) {
	s := newMemoryStream(t, "foo bar")

	assert.NoErr(t, s.Seek(4, io.SeekStart))
	contents, err := s.GetContents()
	assert.NoErr(t, err)
	assert.Eq(t, "bar", contents)

	contents, err = s.GetContents()
	assert.NoErr(t, err)
	assert.Eq(t, "", contents)
}

func TestStreamString(t *testing.T) {
	data := randomstring.HumanFriendlyString(12 << 10)
	s := newMemoryStream(t, data)

	assert.NoErr(t, s.Seek(100, io.SeekStart))
	assert.Eq(t, data, s.String())
	// again, from the end
	assert.Eq(t, data, s.String())
}

func TestStreamStringUnreadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "w")
	s, err := NewStream(path, "w")
	assert.NoErr(t, err)
	defer s.Close() //nolint:errcheck

	_, err = s.WriteString("secret")
	assert.NoErr(t, err)
	assert.Eq(t, "", s.String())

	_, err = s.Read(1)
	assert.True(t, errors.Is(err, ErrNotReadable))
	_, err = s.GetContents()
	assert.True(t, errors.Is(err, ErrNotReadable))
}

func TestStreamDetach(t *testing.T) {
	s := newMemoryStream(t, "abc")

	f := s.Detach()
	assert.NotNil(t, f)
	defer f.Close() //nolint:errcheck

	assertStreamUnattached(t, s)
	assert.True(t, s.Detach() == nil)

	// the handle stays open and usable
	_, err := f.Seek(0, io.SeekStart)
	assert.NoErr(t, err)
	b, err := io.ReadAll(f)
	assert.NoErr(t, err)
	assert.Eq(t, "abc", string(b))

	assert.NoErr(t, s.Attach(f, ""))
	assert.True(t, s.IsReadable())
	assert.Eq(t, "abc", s.String())
}

func TestStreamClose(t *testing.T) {
	s := newMemoryStream(t, "abc")

	assert.NoErr(t, s.Close())
	assertStreamUnattached(t, s)

	// closing twice is fine
	assert.NoErr(t, s.Close())
}

func assertStreamUnattached(t *testing.T, s *Stream) {
	t.Helper()

	_, ok := s.Metadata()
	assert.False(t, ok)
	assert.False(t, s.IsReadable())
	assert.False(t, s.IsWritable())
	assert.False(t, s.IsSeekable())
	assert.True(t, s.EOF())

	_, ok = s.Size()
	assert.False(t, ok)

	_, err := s.Read(1)
	assert.True(t, errors.Is(err, ErrNotReadable))
	_, err = s.WriteString("x")
	assert.True(t, errors.Is(err, ErrNotWritable))
	assert.True(t, errors.Is(s.Seek(0, io.SeekStart), ErrNotSeekable))
	assert.True(t, errors.Is(s.Rewind(), ErrNotSeekable))
	_, err = s.Tell()
	assert.True(t, errors.Is(err, ErrIOFailure))
	_, err = s.GetContents()
	assert.True(t, errors.Is(err, ErrNotReadable))
	assert.Eq(t, "", s.String())
}

func TestStreamAttachedFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("descriptor flags are not available on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "f")
	assert.NoErr(t, os.WriteFile(path, []byte("hello"), 0o600))

	for _, tc := range []struct {
		flag               int
		readable, writable bool
	}{
		{os.O_RDONLY, true, false},
		{os.O_WRONLY, false, true},
		{os.O_RDWR, true, true},
		{os.O_WRONLY | os.O_APPEND, false, true},
		{os.O_RDWR | os.O_APPEND, true, true},
	} {
		f, err := os.OpenFile(path, tc.flag, 0)
		assert.NoErr(t, err)
		s, err := NewStream(f, "ignored")
		assert.NoErr(t, err)
		assert.Eq(t, tc.readable, s.IsReadable())
		assert.Eq(t, tc.writable, s.IsWritable())

		md, ok := s.Metadata()
		assert.True(t, ok)
		assert.Eq(t, path, md.URI)
		assert.NoErr(t, s.Close())
	}
}

func TestStreamPipeIsNotSeekable(t *testing.T) {
	r, w, err := os.Pipe()
	assert.NoErr(t, err)

	rs, err := NewStream(r, "")
	assert.NoErr(t, err)
	defer rs.Close() //nolint:errcheck
	ws, err := NewStream(w, "")
	assert.NoErr(t, err)

	assert.False(t, rs.IsSeekable())
	assert.True(t, errors.Is(rs.Rewind(), ErrNotSeekable))

	_, err = ws.WriteString("piped")
	assert.NoErr(t, err)
	assert.NoErr(t, ws.Close())

	// String does not rewind a pipe, it reads what is left
	assert.Eq(t, "piped", rs.String())
	assert.True(t, rs.EOF())
}

func TestStreamStdioLocators(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("stdio locators share the process handle on windows")
	}
	for _, locator := range []string{LocatorStdin, LocatorStdout, LocatorStderr} {
		s, err := NewStream(locator, "r+")
		assert.NoErr(t, err, locator)
		md, ok := s.Metadata()
		assert.True(t, ok)
		assert.Eq(t, locator, md.URI)
		assert.NoErr(t, s.Close())
	}

	// the process descriptors are left open
	_, err := os.Stdout.Stat()
	assert.NoErr(t, err)
	_, err = os.Stderr.Stat()
	assert.NoErr(t, err)
}

func TestStreamMemoryLocatorsAreIndependent(t *testing.T) {
	a := newMemoryStream(t, "a")
	b := newMemoryStream(t, "b")
	assert.Eq(t, "a", a.String())
	assert.Eq(t, "b", b.String())
}

func TestStreamReadLargeCount(t *testing.T) {
	s := newMemoryStream(t, "abc")

	p, err := s.Read(1 << 62)
	assert.NoErr(t, err)
	assert.Eq(t, "abc", string(p))
	assert.False(t, s.EOF())

	p, err = s.Read(math.MaxInt)
	assert.NoErr(t, err)
	assert.Eq(t, 0, len(p))
	assert.True(t, s.EOF())
}

func TestStreamReadIsBounded(t *testing.T) {
	data := randomstring.HumanFriendlyString(3 * maxReadChunk)
	s := newMemoryStream(t, data)

	var got []byte
	for !s.EOF() {
		p, err := s.Read(1 << 40)
		assert.NoErr(t, err)
		assert.True(t, len(p) <= maxReadChunk)
		got = append(got, p...)
	}
	assert.Eq(t, data, string(got))
}

func TestStreamStdioLocatorModeFollowsDescriptor(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("descriptor flags are not available on windows")
	}
	want, ok := fileMode(os.Stdin)
	if !ok {
		t.Skip("stdin has no descriptor flags")
	}

	// the asked mode does not widen the duplicated descriptor's access
	s, err := NewStream(LocatorStdin, "w")
	assert.NoErr(t, err)
	defer s.Close() //nolint:errcheck

	md, ok := s.Metadata()
	assert.True(t, ok)
	assert.Eq(t, want, md.Mode)
	assert.Eq(t, modeWritable(want), s.IsWritable())
	assert.Eq(t, modeReadable(want), s.IsReadable())
}
