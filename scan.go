package httpwire

// Low level byte scanners shared by the first-line, header and token-list
// parsers. None of these allocate; all operate on offsets into a caller
// owned buffer and return hErrMoreBytes when the scan runs off the end of
// buf so the caller can resume once more bytes arrive.

// isTokenChar reports whether c is a valid RFC 9110 §5.6.2 tchar: letters,
// digits, and "!#$%&'*+-.^_`|~".
func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}

// skipToken advances i over a run of token characters, stopping at the
// first non-token byte or end of buffer (in which case i == len(buf), the
// caller must check for more input itself since an incomplete token is not
// distinguishable from a complete one abutting the buffer end here).
func skipToken(buf []byte, i int) int {
	for i < len(buf) && isTokenChar(buf[i]) {
		i++
	}
	return i
}

// skipTokenDelim is like skipToken but also stops at the given delimiter
// byte (used to find the ':' terminating a header name without requiring
// it to be a token char itself, since ':' is not one).
func skipTokenDelim(buf []byte, i int, delim byte) int {
	for i < len(buf) && buf[i] != delim && isTokenChar(buf[i]) {
		i++
	}
	return i
}

// skipFieldValue advances i over a run of header field-vchar/obs-text
// bytes (RFC 9110 §5.5): anything but SP, HTAB, CR, LF or a control byte.
// It stops at whitespace the same way skipToken stops at a delimiter, so
// the caller can tell interior whitespace (more value follows) from
// trailing whitespace (end of the header) exactly as it does for tokens.
func skipFieldValue(buf []byte, i int) int {
	for i < len(buf) {
		c := buf[i]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			break
		}
		if c < 0x20 || c == 0x7f {
			break
		}
		i++
	}
	return i
}

// skipWS advances i over spaces and tabs only (no CR/LF).
func skipWS(buf []byte, i int) int {
	for i < len(buf) && (buf[i] == ' ' || buf[i] == '\t') {
		i++
	}
	return i
}

// lwsFlags controls skipLWS's obs-fold acceptance.
type lwsFlags uint

const (
	lwsNone lwsFlags = 0
	// lwsAllowFold permits a CRLF (or bare LF) followed by SP/HT to be
	// treated as folded whitespace rather than end-of-header.
	lwsAllowFold lwsFlags = 1 << iota
	// lwsAllowBareLF permits a lone '\n' wherever '\r\n' is expected.
	lwsAllowBareLF
)

// skipLWS skips linear whitespace starting at i: plain SP/HT, or (if
// lwsAllowFold is set) a line ending followed by SP/HT continuing the
// value (obsolete line folding). It returns:
//   - (next, 0, hErrOk) when whitespace was consumed and more non-WS bytes
//     follow at next;
//   - (next, 0, hErrEOH) when the line ending was NOT followed by SP/HT,
//     i.e. this is genuinely the end of the header/value; next points
//     right after the line ending;
//   - (i, 0, hErrMoreBytes) when buf ends before the scan could tell which
//     of the above applies;
//   - (i, 0, hErrBadChar) for a bare CR, or a bare LF when lwsAllowBareLF
//     is not set.
func skipLWS(buf []byte, i int, flags uint) (int, int, hErr) {
	allowFold := flags&uint(lwsAllowFold) != 0
	allowBareLF := flags&uint(lwsAllowBareLF) != 0
	start := i
	for {
		if i >= len(buf) {
			return start, 0, hErrMoreBytes
		}
		switch buf[i] {
		case ' ', '\t':
			i++
			continue
		case '\r':
			if i+1 >= len(buf) {
				return start, 0, hErrMoreBytes
			}
			if buf[i+1] != '\n' {
				// A bare CR is never a valid line ending or fold
				// continuation -- obs-fold requires a full CRLF before the
				// continuation whitespace (RFC 9112 §2.2) -- so tolerating
				// it here would let a lone CR inside a header value read as
				// end-of-header, splitting the rest of the line into a
				// second, attacker-controlled header.
				return i, 0, hErrBadChar
			}
			if !allowFold {
				return i + 2, 0, hErrEOH
			}
			if i+2 >= len(buf) {
				return start, 0, hErrMoreBytes
			}
			if buf[i+2] == ' ' || buf[i+2] == '\t' {
				i += 3
				continue
			}
			return i + 2, 0, hErrEOH
		case '\n':
			if !allowBareLF {
				// a bare LF is not an accepted line ending outside lax mode
				return i, 0, hErrBadChar
			}
			if !allowFold {
				return i + 1, 0, hErrEOH
			}
			if i+1 >= len(buf) {
				return start, 0, hErrMoreBytes
			}
			if buf[i+1] == ' ' || buf[i+1] == '\t' {
				i += 2
				continue
			}
			return i + 1, 0, hErrEOH
		default:
			if i == start {
				return i, 0, hErrOk
			}
			return i, 0, hErrOk
		}
	}
}

// skipCRLF requires buf[i:] to start with CRLF (or, if allowBareLF, a bare
// LF) and returns the offset right after it.
func skipCRLF(buf []byte, i int, allowBareLF bool) (int, int, hErr) {
	if i >= len(buf) {
		return i, 0, hErrMoreBytes
	}
	if buf[i] == '\r' {
		if i+1 >= len(buf) {
			return i, 0, hErrMoreBytes
		}
		if buf[i+1] != '\n' {
			return i, 0, hErrBadChar
		}
		return i + 2, 2, hErrOk
	}
	if buf[i] == '\n' && allowBareLF {
		return i + 1, 1, hErrOk
	}
	return i, 0, hErrBadChar
}

// skipLine advances to the first byte after the next line ending starting
// at i, and returns the line-ending length (1 or 2) so callers can exclude
// it from a captured field via Extend(i - crlfLen).
func skipLine(buf []byte, i int, allowBareLF bool) (int, int, hErr) {
	for j := i; j < len(buf); j++ {
		switch buf[j] {
		case '\n':
			if j > i && buf[j-1] == '\r' {
				return j + 1, 2, hErrOk
			}
			if allowBareLF {
				return j + 1, 1, hErrOk
			}
			return j, 0, hErrBadChar
		case '\r':
			// handled when we see the following '\n' above; a bare
			// trailing CR at buffer end means we need more bytes.
		}
	}
	return i, 0, hErrMoreBytes
}

// hexToU parses buf as a run of ASCII hex digits (case-insensitive),
// returning the accumulated value. The second return is false for an empty
// buf, a non-hex byte, or overflow beyond 64 bits; the cases are not told
// apart.
func hexToU(buf []byte) (uint64, bool) {
	if len(buf) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range buf {
		var d uint64
		switch {
		case c >= '0' && c <= '9':
			d = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			d = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			d = uint64(c-'A') + 10
		default:
			return 0, false
		}
		if v > (1<<64-1-d)/16 {
			return 0, false // overflow
		}
		v = v*16 + d
	}
	return v, true
}

// decToU parses buf as a run of ASCII decimal digits only (no sign, no
// leading '+'/'-', matching spec.md's Content-Length / status code rules).
func decToU(buf []byte) (uint64, bool) {
	if len(buf) == 0 {
		return 0, false
	}
	var v uint64
	for _, c := range buf {
		if c < '0' || c > '9' {
			return 0, false
		}
		d := uint64(c - '0')
		if v > (^uint64(0)-d)/10 {
			return 0, false // overflow
		}
		v = v*10 + d
	}
	return v, true
}
