package httpwire

// BodyMode identifies how a message's body is framed (RFC 9112 §6.3).
type BodyMode uint8

const (
	// BodyNone means the message has no body at all (e.g. a HEAD
	// response, a 204/304, or a request with neither Content-Length nor
	// Transfer-Encoding).
	BodyNone BodyMode = iota
	// BodyLength means the body is exactly N bytes, from Content-Length.
	BodyLength
	// BodyChunked means the body is chunked-encoded.
	BodyChunked
	// BodyUntilEOF means the body runs until the connection closes
	// (only legal for responses, and only when neither Content-Length
	// nor a chunked Transfer-Encoding applies).
	BodyUntilEOF
)

type bodySubState uint8

const (
	bodyReadingData bodySubState = iota
	bodyReadingChunkHdr
	bodyReadingChunkData
	bodyReadingChunkCRLF
	bodyDone
)

// BodyParser streams a message body -- in whichever of the four framings
// applies -- through an optional Decoder chain and into a Sink, tracking
// enough state to resume across Feed calls at arbitrary byte boundaries.
type BodyParser struct {
	Mode BodyMode

	dec         Decoder
	strict      bool
	lws         lwsFlags
	maxTrailers int
	maxBodySize int64

	remaining int64 // BodyLength: bytes left: BodyChunked: current chunk data left
	sent      int64 // total decoded-input bytes handed to dec so far
	chunk     ChunkVal
	sub       bodySubState
}

// Init configures bp for a new message body. length is only meaningful
// for BodyLength. dec must not be nil; pass NewDecoder(CEncIdentityF, sink)
// for an uncompressed body.
func (bp *BodyParser) Init(mode BodyMode, length int64, dec Decoder, strict bool, lws lwsFlags, maxTrailers int, maxBodySize int64) {
	chunk := bp.chunk
	chunk.Reset()
	*bp = BodyParser{
		Mode: mode, dec: dec, strict: strict, lws: lws,
		maxTrailers: maxTrailers, maxBodySize: maxBodySize,
		remaining: length, chunk: chunk,
	}
	if mode == BodyNone {
		bp.sub = bodyDone
		dec.Close(nil)
	} else if mode == BodyChunked {
		bp.sub = bodyReadingChunkHdr
	}
}

func (bp *BodyParser) Done() bool { return bp.sub == bodyDone }

// Feed consumes as much of buf[offs:] as is currently available. It
// returns the offset past the bytes it consumed, whether the body is now
// fully parsed, and an hErr (hErrOk when the body is complete,
// hErrMoreBytes to request more input, any other value is a hard error).
func (bp *BodyParser) Feed(buf []byte, offs int) (int, bool, hErr) {
	i := offs
	for {
		switch bp.Mode {
		case BodyNone:
			return i, true, hErrOk
		case BodyUntilEOF:
			if i < len(buf) {
				n := len(buf) - i
				if err := bp.write(buf[i:]); err != nil {
					return i, false, hErrBadChar
				}
				i += n
			}
			return i, false, hErrMoreBytes
		case BodyLength:
			avail := int64(len(buf) - i)
			if avail > bp.remaining {
				avail = bp.remaining
			}
			if avail > 0 {
				if err := bp.write(buf[i : i+int(avail)]); err != nil {
					return i, false, hErrBadChar
				}
				i += int(avail)
				bp.remaining -= avail
			}
			if bp.remaining == 0 {
				bp.dec.Close(nil)
				bp.sub = bodyDone
				return i, true, hErrOk
			}
			return i, false, hErrMoreBytes
		case BodyChunked:
			switch bp.sub {
			case bodyReadingChunkHdr:
				n, size, err := ParseChunk(buf, i, &bp.chunk, bp.strict, bp.lws, bp.maxTrailers)
				if err == hErrMoreBytes {
					return n, false, hErrMoreBytes
				}
				if err != hErrOk {
					return n, false, err
				}
				i = n
				if size == 0 {
					bp.dec.Close(nil)
					bp.sub = bodyDone
					return i, true, hErrOk
				}
				bp.remaining = size
				bp.sub = bodyReadingChunkData
				continue
			case bodyReadingChunkData:
				avail := int64(len(buf) - i)
				if avail > bp.remaining {
					avail = bp.remaining
				}
				if avail > 0 {
					if err := bp.write(buf[i : i+int(avail)]); err != nil {
						return i, false, hErrBadChar
					}
					i += int(avail)
					bp.remaining -= avail
				}
				if bp.remaining > 0 {
					return i, false, hErrMoreBytes
				}
				bp.sub = bodyReadingChunkCRLF
				continue
			case bodyReadingChunkCRLF:
				n, _, err := skipCRLF(buf, i, bp.lws&lwsAllowBareLF != 0)
				if err != hErrOk {
					return n, false, err
				}
				i = n
				bp.chunk.Reset()
				bp.sub = bodyReadingChunkHdr
				continue
			}
		}
		return i, bp.sub == bodyDone, hErrOk
	}
}

func (bp *BodyParser) write(p []byte) error {
	if bp.maxBodySize > 0 {
		bp.sent += int64(len(p))
		if bp.sent > bp.maxBodySize {
			return newErr(KindContentLength, "body exceeds configured maximum size")
		}
	}
	_, err := bp.dec.Write(p)
	return err
}

// FeedEOF signals that no more input bytes will ever arrive. For
// BodyUntilEOF this is the normal, expected way the body ends; for any
// other mode, seeing EOF before the body is Done is a truncated message.
func (bp *BodyParser) FeedEOF() *Error {
	if bp.Mode == BodyUntilEOF {
		bp.dec.Close(nil)
		bp.sub = bodyDone
		return nil
	}
	if bp.sub != bodyDone {
		bp.dec.Close(errTruncated)
		return newErr(KindContentLength, "connection closed before body was fully received")
	}
	return nil
}

var errTruncated = newErr(KindContentLength, "truncated body")
