package httpmsg

import (
	"os"
	"strings"

	"github.com/pkg/errors"
)

// Upload error statuses, as reported by the component that received the
// upload.
const (
	UploadErrOK        = 0
	UploadErrIniSize   = 1
	UploadErrFormSize  = 2
	UploadErrPartial   = 3
	UploadErrNoFile    = 4
	UploadErrNoTmpDir  = 6
	UploadErrCantWrite = 7
	UploadErrExtension = 8
)

var uploadErrText = map[int]string{
	UploadErrOK:        "there is no error, the file uploaded with success",
	UploadErrIniSize:   "the uploaded file exceeds the maximum upload size",
	UploadErrFormSize:  "the uploaded file exceeds the maximum size specified by the form",
	UploadErrPartial:   "the uploaded file was only partially uploaded",
	UploadErrNoFile:    "no file was uploaded",
	UploadErrNoTmpDir:  "missing a temporary folder",
	UploadErrCantWrite: "failed to write file to disk",
	UploadErrExtension: "an extension stopped the file upload",
}

const moveChunkSize = 4096

// UploadedFile is a file received through an upload.
//
// The file content is either a Stream or a file path; MoveTo copies a
// stream into the target and renames a path.
type UploadedFile struct {
	stream *Stream
	file   string

	size            int64
	errorStatus     int
	clientFilename  string
	clientMediaType string
	moved           bool
}

// NewUploadedFile returns an UploadedFile.
//
// source is a *Stream, an *os.File or a file path. errorStatus must be one
// of the UploadErr* values; when it is not UploadErrOK, source is ignored.
func NewUploadedFile(source any, size int64, errorStatus int, clientFilename, clientMediaType string) (*UploadedFile, error) {
	if errorStatus < UploadErrOK || errorStatus > UploadErrExtension {
		return nil, invalidInput("upload error status %d is outside the range [%d, %d]", errorStatus, UploadErrOK, UploadErrExtension)
	}
	uf := &UploadedFile{
		size:            size,
		errorStatus:     errorStatus,
		clientFilename:  clientFilename,
		clientMediaType: clientMediaType,
	}
	switch src := source.(type) {
	case *Stream:
		if src == nil {
			return nil, invalidInput("the uploaded stream is nil")
		}
		uf.stream = src
	case *os.File:
		if src == nil {
			return nil, invalidInput("the uploaded file handle is nil")
		}
		if uf.hasError() {
			break
		}
		s, err := NewStream(src, "")
		if err != nil {
			return nil, err
		}
		uf.stream = s
	case string:
		uf.file = src
	default:
		return nil, invalidInput("an uploaded file source must be a *Stream, an *os.File or a path, %T given", source)
	}
	if uf.hasError() {
		uf.stream, uf.file = nil, ""
	}
	return uf, nil
}

func (uf *UploadedFile) hasError() bool {
	return uf.errorStatus != UploadErrOK
}

// Size returns the file size in bytes as reported on upload.
func (uf *UploadedFile) Size() int64 {
	return uf.size
}

// Error returns the upload error status, one of the UploadErr* values.
func (uf *UploadedFile) Error() int {
	return uf.errorStatus
}

// ClientFilename returns the file name sent by the client.
func (uf *UploadedFile) ClientFilename() string {
	return uf.clientFilename
}

// ClientMediaType returns the media type sent by the client.
func (uf *UploadedFile) ClientMediaType() string {
	return uf.clientMediaType
}

func (uf *UploadedFile) checkUsable() error {
	if uf.hasError() {
		return errors.Wrap(ErrUploadFailed, uploadErrText[uf.errorStatus])
	}
	if uf.moved {
		return ErrAlreadyMoved
	}
	return nil
}

// Stream returns the file content as a Stream. A path source is opened
// on first use.
func (uf *UploadedFile) Stream() (*Stream, error) {
	if err := uf.checkUsable(); err != nil {
		return nil, err
	}
	if uf.stream != nil {
		return uf.stream, nil
	}
	s, err := NewStream(uf.file, defaultStreamMode)
	if err != nil {
		return nil, err
	}
	uf.stream = s
	return s, nil
}

// MoveTo moves the file content to targetPath.
//
// A stream source is copied into targetPath; a path source is renamed.
// MoveTo fails with ErrAlreadyMoved on any call after a successful one.
func (uf *UploadedFile) MoveTo(targetPath string) error {
	if err := uf.checkUsable(); err != nil {
		return err
	}
	if strings.TrimSpace(targetPath) == "" {
		return invalidInput("the target path must not be empty")
	}

	if uf.stream != nil {
		if err := copyStreamTo(uf.stream, targetPath); err != nil {
			logger.Debug().Err(err).Str("target", targetPath).Msg("moving uploaded stream failed")
			return err
		}
		logger.Debug().Str("target", targetPath).Msg("uploaded stream copied")
		uf.moved = true
		return nil
	}

	if err := os.Rename(uf.file, targetPath); err != nil {
		logger.Debug().Err(err).Str("source", uf.file).Str("target", targetPath).Msg("renaming uploaded file failed")
		return ioFailure("couldn't move to "+targetPath, err)
	}
	logger.Debug().Str("source", uf.file).Str("target", targetPath).Msg("uploaded file renamed")
	uf.moved = true
	return nil
}

func copyStreamTo(from *Stream, targetPath string) error {
	to, err := NewStream(targetPath, "wb")
	if err != nil {
		return err
	}
	defer to.Close() //nolint:errcheck

	if from.IsSeekable() {
		if err = from.Rewind(); err != nil {
			return err
		}
	}
	if _, err = copyStream(to, from); err != nil {
		return err
	}
	return to.Close()
}
