package httpmsg

import (
	"sync"

	pio "github.com/newacorn/goutils/io"
	pool "github.com/newacorn/simple-bytes-pool"
)

// streamIO exposes a Stream as an io.Reader and io.Writer, so it can be
// handed to io.Copy and friends.
type streamIO struct {
	s *Stream
}

func (sio *streamIO) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return sio.s.readInto(p)
}

func (sio *streamIO) Write(p []byte) (int, error) {
	return sio.s.Write(p)
}

func acquireStreamIO(s *Stream) *streamIO {
	sio := streamIOPool.Get().(*streamIO)
	sio.s = s
	return sio
}

func releaseStreamIO(sio *streamIO) {
	sio.s = nil
	streamIOPool.Put(sio)
}

var streamIOPool = sync.Pool{
	New: func() any {
		return &streamIO{}
	},
}

// copyStream copies from src into dst until src is exhausted, moving at
// most moveChunkSize bytes per read.
func copyStream(dst, src *Stream) (int64, error) {
	r := acquireStreamIO(src)
	defer releaseStreamIO(r)
	w := acquireStreamIO(dst)
	defer releaseStreamIO(w)

	buf := pool.Get(moveChunkSize)
	buf.B = buf.B[:moveChunkSize]
	n, err := pio.CopyBufferMust(w, r, buf.B)
	pool.Put(buf)
	return n, err
}
