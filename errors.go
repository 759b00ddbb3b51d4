package httpmsg

import (
	"github.com/pkg/errors"
)

var (
	// ErrInvalidInput is returned when an argument is malformed or out of
	// contract: an unsupported scheme, an out-of-range port or status code,
	// a header field of the wrong shape, whitespace in a request target or
	// a source that is not a stream handle.
	ErrInvalidInput = errors.New("httpmsg: invalid input")
	// ErrNotReadable is returned by reads on a stream whose mode disallows reading.
	ErrNotReadable = errors.New("httpmsg: stream is not readable")
	// ErrNotWritable is returned by writes on a stream whose mode disallows writing.
	ErrNotWritable = errors.New("httpmsg: stream is not writable")
	// ErrNotSeekable is returned by Seek and Rewind on a non-seekable stream.
	ErrNotSeekable = errors.New("httpmsg: stream is not seekable")
	// ErrIOFailure is returned when the underlying handle reports a failure.
	ErrIOFailure = errors.New("httpmsg: i/o failure")

	// ErrUploadFailed is returned by UploadedFile when the upload carries an error status.
	ErrUploadFailed = errors.New("httpmsg: uploaded file has an upload error")
	// ErrAlreadyMoved is returned by UploadedFile after a successful MoveTo.
	ErrAlreadyMoved = errors.New("httpmsg: uploaded file has already been moved")
)

func invalidInput(format string, args ...any) error {
	return errors.Wrapf(ErrInvalidInput, format, args...)
}

func ioFailure(op string, err error) error {
	if err == nil {
		return errors.Wrap(ErrIOFailure, op)
	}
	return errors.Wrapf(ErrIOFailure, "%s: %v", op, err)
}
