package httpwire

// ChunkVal is one parsed chunk-size line (RFC 9112 §7.1): the size, its
// optional chunk-extension, and -- only meaningful once Size == 0 -- the
// trailer section that follows the last chunk.
type ChunkVal struct {
	Ext         PField // raw chunk-extension, including the leading ';', if any
	Size        int64
	TrailerHdrs HdrLst

	state  chunkState
	soffs  int
	digits int
}

type chunkState uint8

const (
	cInit chunkState = iota
	cSize
	cExt
	cCRLF
	cTrailer
	cFIN
)

func (v *ChunkVal) Reset() {
	hl := v.TrailerHdrs
	*v = ChunkVal{TrailerHdrs: hl}
	v.TrailerHdrs.Reset()
}

// More reports whether another chunk follows this one (size > 0).
func (v *ChunkVal) More() bool { return v.Size > 0 }

const maxChunkSizeDigits = 16 // 64 bit hex value

// ParseChunk parses one chunk-size line, and -- if it is the last chunk
// (size 0) -- the trailer section through the message's final CRLF. The
// returned offset points right after the chunk-size line's own CRLF for a
// data chunk (the caller still owns skipping Size bytes of data plus its
// trailing CRLF), or, for the last chunk, past the trailer section and its
// terminating CRLF -- the chunked body is then fully consumed.
//
// strict controls whether trailing whitespace between the chunk-size (or
// its extension) and the line ending is accepted; RFC 9112 §7.1.1 forbids
// it but real servers emit it, so lenient mode tolerates it. lws's bare-LF
// bit is honored the same way it is for header lines.
func ParseChunk(buf []byte, offs int, chunk *ChunkVal, strict bool, lws lwsFlags, maxTrailers int) (int, int64, hErr) {
	i := offs
	size := int64(-1)
	var err hErr

	switch chunk.state {
	case cInit:
		chunk.soffs = i
		chunk.state = cSize
		fallthrough
	case cSize:
		for i < len(buf) {
			c := buf[i]
			if isHexDigit(c) {
				i++
				chunk.digits++
				if chunk.digits > maxChunkSizeDigits {
					return i, -1, hErrNumTooBig
				}
				continue
			}
			break
		}
		if i >= len(buf) {
			return i, -1, hErrMoreBytes
		}
		if chunk.digits == 0 {
			return i, -1, hErrValNotNumber
		}
		if c := buf[i]; c != ';' && c != '\r' && c != '\n' && c != ' ' && c != '\t' {
			// Anything else terminating the digit run (e.g. "blah\r\n",
			// size "b" followed by garbage with no leading ';') is not a
			// chunk-extension at all -- raw-scanning into cExt would
			// silently swallow it as extension text.
			return i, -1, hErrBadChar
		}
		sz, ok := hexToU(buf[chunk.soffs:i])
		if !ok {
			return i, -1, hErrValNotNumber
		}
		chunk.Size = int64(sz)
		chunk.Ext.Set(i, i)
		chunk.state = cExt
		fallthrough
	case cExt:
		// Raw-scan the rest of the line (extension text plus any trailing
		// OWS); this is trivially resumable since it never needs to look
		// behind i. Quoted-string content cannot legally contain a raw
		// CR/LF, so stopping at the first one is always correct.
		n := skipLineContent(buf, i)
		if n >= len(buf) {
			return i, -1, hErrMoreBytes
		}
		if strict && n > i && (buf[n-1] == ' ' || buf[n-1] == '\t') {
			return n, -1, hErrBadChar
		}
		chunk.Ext.Extend(n)
		i = n
		chunk.state = cCRLF
		fallthrough
	case cCRLF:
		n, _, e := skipCRLF(buf, i, lws&lwsAllowBareLF != 0)
		if e != hErrOk {
			return n, -1, e
		}
		i = n
		if chunk.Size == 0 {
			chunk.state = cTrailer
		} else {
			chunk.state = cFIN
			return i, chunk.Size, hErrOk
		}
		fallthrough
	case cTrailer:
		// ParseHeaders' own empty-line grammar is exactly the trailer
		// section's: zero or more field-lines terminated by a blank
		// line. Its returned offset already lands past that blank
		// line's CRLF, which is the chunked body's own terminating
		// CRLF -- nothing more to skip here.
		n, e := ParseHeaders(buf, i, &chunk.TrailerHdrs, strict, lws, maxTrailers)
		if e != hErrOk && e != hErrEmpty {
			return n, -1, e
		}
		chunk.state = cFIN
		size = chunk.Size
		return n, size, hErrOk
	}
	return i, -1, hErrBug
}

func isHexDigit(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}

// skipLineContent advances i to the first CR or LF byte (or len(buf) if
// none is found yet).
func skipLineContent(buf []byte, i int) int {
	for i < len(buf) && buf[i] != '\r' && buf[i] != '\n' {
		i++
	}
	return i
}
