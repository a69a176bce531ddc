package httpwire

import (
	"github.com/valyala/bytebufferpool"
)

// Sink receives a message's decoded body as it streams in. Write is
// called zero or more times with successive body chunks (already run
// through any Content-Encoding decoder), followed by exactly one Close
// call -- with a non-nil err if the body could not be completed (a
// truncated chunked stream, a decompression failure, fewer bytes than
// Content-Length before EOF).
//
// A Sink implementation that wants backpressure (e.g. because it is
// bounded or forwards to a slow consumer) can make Write block or return
// an error; a returned error aborts the parse with a *Error of
// KindContentLength (KindTransferEncoding for a chunked body), which does
// not carry the Sink's own error.
type Sink interface {
	Write(p []byte) (int, error)
	Close(err error) error
}

// Factory constructs a fresh Sink for each message body the parser reaches.
// DefaultFactory returns a BufferSink-backed Factory; callers streaming a
// body straight to a socket, file, or handler instead supply their own.
type Factory func() Sink

// DefaultFactory returns a Factory producing pooled, in-memory
// BufferSinks, suitable when the caller wants Parser.Body() materialized
// rather than streamed.
func DefaultFactory() Factory {
	return func() Sink { return NewBufferSink() }
}

// BufferSink is a Sink backed by a pooled, growable buffer, for callers
// that want the whole decoded body materialized in memory (as opposed to
// streaming it to a socket, file, or higher-level handler as it arrives).
type BufferSink struct {
	buf   *bytebufferpool.ByteBuffer
	err   error
	limit int64
}

// NewBufferSink allocates a BufferSink from the shared bytebufferpool,
// returning the buffer to the pool when Release is called.
func NewBufferSink() *BufferSink {
	return &BufferSink{buf: bytebufferpool.Get()}
}

func (s *BufferSink) Write(p []byte) (int, error) {
	return s.buf.Write(p)
}

func (s *BufferSink) Close(err error) error {
	s.err = err
	return nil
}

// Err returns the error, if any, the producer closed this sink with.
func (s *BufferSink) Err() error { return s.err }

// Bytes returns the accumulated body. Valid only after Close has been
// called; the returned slice is only valid until Release.
func (s *BufferSink) Bytes() []byte { return s.buf.B }

// SetError lets a transport poison the sink from outside the parser (e.g.
// a socket read error) so a subsequent read reports failure instead of a
// silently truncated body.
func (s *BufferSink) SetError(err error) { s.err = err }

// Full reports whether the buffer has grown past limit, the high-water
// mark a transport polls to apply backpressure before calling Feed again.
// A zero limit (the default) means Full never reports true.
func (s *BufferSink) Full() bool { return s.limit > 0 && int64(len(s.buf.B)) >= s.limit }

// Release returns the underlying buffer to the pool. The BufferSink must
// not be used afterwards.
func (s *BufferSink) Release() {
	bytebufferpool.Put(s.buf)
	s.buf = nil
}

// DiscardSink is a Sink that drops every byte written to it, for callers
// that only care about framing (knowing where the body ends) and not its
// content.
type DiscardSink struct {
	N   int64
	err error
}

func (s *DiscardSink) Write(p []byte) (int, error) {
	s.N += int64(len(p))
	return len(p), nil
}

func (s *DiscardSink) Close(err error) error {
	s.err = err
	return nil
}
