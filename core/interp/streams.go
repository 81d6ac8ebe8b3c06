package interp

import (
	"io"
	"os"
)

// StreamHolder binds a logical file descriptor slot to a stream along with
// an ownership tag. Exactly one holder in a live table owns a given stream:
// duplicating a holder or inheriting it into a child context always yields
// a non-owning alias, so only the scope that opened the stream closes it.
type StreamHolder struct {
	stream io.Closer
	owned  bool
}

// NewStreamHolder wraps a stream. Pass owned for streams this holder is
// responsible for closing.
func NewStreamHolder(stream io.Closer, owned bool) *StreamHolder {
	return &StreamHolder{stream: stream, owned: owned}
}

// Alias creates a non-owning copy of the holder. Aliasing nil (an unbound
// slot) yields nil.
func (h *StreamHolder) Alias() *StreamHolder {
	if h == nil {
		return nil
	}
	return &StreamHolder{stream: h.stream}
}

// Stream returns the underlying stream.
func (h *StreamHolder) Stream() io.Closer {
	if h == nil {
		return nil
	}
	return h.stream
}

// Owned reports whether this holder must close the stream.
func (h *StreamHolder) Owned() bool {
	return h != nil && h.owned
}

// Close closes the stream if this holder owns it; closing a borrowed or
// unbound holder is a no-op. Close failures are suppressed so that a
// failing close during error unwinding cannot mask the original error.
func (h *StreamHolder) Close() {
	if h == nil || !h.owned {
		return
	}
	// Clear the tag first in case close is called twice.
	h.owned = false
	_ = h.stream.Close()
}

// Reader returns the stream as a reader, or nil if it cannot be read from.
func (h *StreamHolder) Reader() io.Reader {
	if h == nil {
		return nil
	}
	r, _ := h.stream.(io.Reader)
	return r
}

// Writer returns the stream as a writer, or nil if it cannot be written to.
func (h *StreamHolder) Writer() io.Writer {
	if h == nil {
		return nil
	}
	w, _ := h.stream.(io.Writer)
	return w
}

// CopyStreamHolders copies a stream table without passing ownership.
func CopyStreamHolders(holders []*StreamHolder) []*StreamHolder {
	res := make([]*StreamHolder, len(holders))
	for i := range holders {
		res[i] = holders[i].Alias()
	}
	return res
}

// StdStreams builds the conventional three-entry fd table around a
// process's standard streams. The entries are borrowed: the caller keeps
// ownership of the streams it passed in. Nil streams read as closed or
// discard writes.
func StdStreams(stdin io.Reader, stdout, stderr io.Writer) []*StreamHolder {
	return []*StreamHolder{
		NewStreamHolder(toReadCloser(stdin), false),
		NewStreamHolder(toWriteCloser(stdout), false),
		NewStreamHolder(toWriteCloser(stderr), false),
	}
}

func toReadCloser(r io.Reader) io.ReadCloser {
	if r == nil {
		return &devNull{}
	}
	if rc, ok := r.(io.ReadCloser); ok {
		return rc
	}
	return io.NopCloser(r)
}

func toWriteCloser(w io.Writer) io.WriteCloser {
	if w == nil {
		return &devNull{}
	}
	if wc, ok := w.(io.WriteCloser); ok {
		return wc
	}
	return nopWriteCloser{w}
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }

// devNull implements io.ReadCloser and io.WriteCloser, failing reads and
// discarding writes.
type devNull struct{}

var _ io.ReadCloser = (*devNull)(nil)
var _ io.WriteCloser = (*devNull)(nil)

func (*devNull) Read([]byte) (int, error) {
	return 0, os.ErrClosed
}

func (*devNull) Write(b []byte) (int, error) {
	return len(b), nil
}

func (*devNull) Close() error {
	return nil
}
