package httpmsg

import (
	"io"
	"os"

	pool "github.com/newacorn/simple-bytes-pool"
	"github.com/valyala/bytebufferpool"
)

// maxReadChunk caps the bytes a single Read returns.
const maxReadChunk = 32 << 10

// StreamMetadata describes the handle attached to a Stream.
type StreamMetadata struct {
	// Mode is the fopen style mode the handle was opened with, or the
	// mode derived from the descriptor flags for an attached *os.File
	// and for the stdio locators.
	Mode string
	// Seekable is false for pipes, sockets and character devices.
	Seekable bool
	// URI is the locator or file name of the handle.
	URI string
}

// Stream is a byte stream over an open file handle.
//
// A Stream is attached to a handle on creation and stays attached until
// Detach or Close. Once unattached, reads, writes and seeks fail, EOF
// reports true and Size reports no size.
//
// Messages share their body Stream by pointer: every message derived from
// another one sees reads, writes and Close on the same Stream.
//
// Stream instance MUST NOT be used from concurrently running goroutines.
type Stream struct {
	f *os.File
	// mode is the mode f was opened with, "" when f was attached as is.
	mode string
	uri  string
	eof  bool
}

// NewStream returns a Stream attached to source, see Attach.
func NewStream(source any, mode string) (*Stream, error) {
	s := &Stream{}
	if err := s.Attach(source, mode); err != nil {
		return nil, err
	}
	return s, nil
}

// Attach attaches s to source.
//
// source is either an open *os.File, attached as is and ignoring mode, or
// a string locator opened with the fopen style mode: a filesystem path,
// LocatorMemory, LocatorTemp, LocatorStdin, LocatorStdout or LocatorStderr.
// An empty mode means "rb".
//
// Any other source, or a failure to open the locator, returns an error
// matching ErrInvalidInput. A previously attached handle is detached
// without being closed.
func (s *Stream) Attach(source any, mode string) error {
	switch src := source.(type) {
	case *os.File:
		if src == nil {
			return invalidInput("the stream handle is nil")
		}
		s.f, s.mode, s.uri, s.eof = src, "", src.Name(), false
		return nil
	case string:
		if mode == "" {
			mode = defaultStreamMode
		}
		f, err := openLocator(src, mode)
		if err != nil {
			return err
		}
		if isStdioLocator(src) {
			// a duplicated descriptor keeps the access mode of the
			// original, whatever mode was asked for
			mode = ""
		}
		s.f, s.mode, s.uri, s.eof = f, mode, src, false
		return nil
	default:
		return invalidInput("a stream source must be a string locator or an *os.File, %T given", source)
	}
}

// Metadata returns the metadata of the attached handle.
//
// false is returned when s is unattached.
func (s *Stream) Metadata() (StreamMetadata, bool) {
	if s.f == nil {
		return StreamMetadata{}, false
	}
	mode := s.mode
	if mode == "" {
		mode, _ = fileMode(s.f)
	}
	return StreamMetadata{
		Mode:     mode,
		Seekable: fileSeekable(s.f),
		URI:      s.uri,
	}, true
}

// IsReadable reports whether the mode of the attached handle permits reading.
func (s *Stream) IsReadable() bool {
	md, ok := s.Metadata()
	return ok && modeReadable(md.Mode)
}

// IsWritable reports whether the mode of the attached handle permits writing.
func (s *Stream) IsWritable() bool {
	md, ok := s.Metadata()
	return ok && modeWritable(md.Mode)
}

// IsSeekable reports whether the attached handle supports Seek.
func (s *Stream) IsSeekable() bool {
	md, ok := s.Metadata()
	return ok && md.Seekable
}

// Read reads up to n bytes. Fewer bytes are returned when the handle
// returns fewer or n exceeds 32 KiB; an empty result with a nil error
// means end of stream.
func (s *Stream) Read(n int) ([]byte, error) {
	if !s.IsReadable() {
		return nil, ErrNotReadable
	}
	if n <= 0 {
		return []byte{}, nil
	}
	size := s.readSize(n)
	buf := pool.Get(size)
	buf.B = buf.B[:size]
	m, err := s.readInto(buf.B)
	if err == io.EOF {
		err = nil
	}
	var p []byte
	if err == nil {
		p = append(make([]byte, 0, m), buf.B[:m]...)
	}
	pool.Put(buf)
	return p, err
}

// readSize bounds the buffer of a Read of n bytes by maxReadChunk and,
// for a seekable handle, by the bytes left before the end.
func (s *Stream) readSize(n int) int {
	if n > maxReadChunk {
		n = maxReadChunk
	}
	if !s.IsSeekable() {
		return n
	}
	size, ok := s.Size()
	if !ok {
		return n
	}
	pos, err := s.Tell()
	if err != nil {
		return n
	}
	if left := size - pos; left < int64(n) {
		// one byte is enough to observe the end of the stream
		n = int(max(left, 1))
	}
	return n
}

// readInto reads into p, returning io.EOF once the handle is exhausted.
func (s *Stream) readInto(p []byte) (int, error) {
	if !s.IsReadable() {
		return 0, ErrNotReadable
	}
	n, err := s.f.Read(p)
	if err == io.EOF {
		s.eof = true
		return n, io.EOF
	}
	if err != nil {
		return n, ioFailure("cannot read the stream", err)
	}
	return n, nil
}

// Write writes p and returns the number of bytes written.
func (s *Stream) Write(p []byte) (int, error) {
	if !s.IsWritable() {
		return 0, ErrNotWritable
	}
	n, err := s.f.Write(p)
	if err != nil {
		return n, ioFailure("cannot write into the stream", err)
	}
	s.eof = false
	return n, nil
}

// WriteString is Write for a string.
func (s *Stream) WriteString(str string) (int, error) {
	return s.Write([]byte(str))
}

// Seek sets the position for the next Read or Write. whence is one of
// io.SeekStart, io.SeekCurrent and io.SeekEnd.
func (s *Stream) Seek(offset int64, whence int) error {
	if !s.IsSeekable() {
		return ErrNotSeekable
	}
	if _, err := s.f.Seek(offset, whence); err != nil {
		return ioFailure("seeking error", err)
	}
	s.eof = false
	return nil
}

// Rewind seeks to the start of the stream.
func (s *Stream) Rewind() error {
	return s.Seek(0, io.SeekStart)
}

// Tell returns the current position.
func (s *Stream) Tell() (int64, error) {
	if s.f == nil {
		return 0, ioFailure("there is no handle to tell the position of", nil)
	}
	pos, err := s.f.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, ioFailure("cannot tell the position", err)
	}
	return pos, nil
}

// Size returns the size in bytes of the attached handle.
//
// false is returned when s is unattached or the size cannot be determined.
func (s *Stream) Size() (int64, bool) {
	if s.f == nil {
		return 0, false
	}
	fi, err := s.f.Stat()
	if err != nil {
		return 0, false
	}
	return fi.Size(), true
}

// EOF reports whether a Read reached the end of the stream. It is true
// for an unattached stream.
func (s *Stream) EOF() bool {
	return s.f == nil || s.eof
}

// GetContents reads the remainder of the stream.
func (s *Stream) GetContents() (string, error) {
	if !s.IsReadable() {
		return "", ErrNotReadable
	}
	b := bytebufferpool.Get()
	defer bytebufferpool.Put(b)
	if _, err := b.ReadFrom(s.f); err != nil {
		return "", ioFailure("an error occurred during reading the stream", err)
	}
	s.eof = true
	return b.String(), nil
}

// Detach returns the attached handle without closing it and leaves s
// unattached. The caller owns the handle afterwards.
//
// nil is returned when s is already unattached.
func (s *Stream) Detach() *os.File {
	f := s.f
	s.f, s.mode, s.uri, s.eof = nil, "", "", false
	return f
}

// Close detaches and closes the attached handle. Closing an unattached
// stream is a no-op.
func (s *Stream) Close() error {
	if s.f == nil {
		return nil
	}
	uri := s.uri
	if err := s.Detach().Close(); err != nil {
		logger.Debug().Err(err).Str("uri", uri).Msg("closing stream handle failed")
		return ioFailure("cannot close the stream", err)
	}
	return nil
}

// String returns the whole content of the stream, rewinding first when
// the stream is seekable.
//
// String never fails: an unreadable stream or any read or seek error
// yields "".
func (s *Stream) String() string {
	if !s.IsReadable() {
		return ""
	}
	if s.IsSeekable() {
		if err := s.Rewind(); err != nil {
			logger.Debug().Err(err).Str("uri", s.uri).Msg("stream to string: rewind failed")
			return ""
		}
	}
	contents, err := s.GetContents()
	if err != nil {
		logger.Debug().Err(err).Str("uri", s.uri).Msg("stream to string: read failed")
		return ""
	}
	return contents
}
