package httpwire

// hErr is the internal control-flow result used by the low-level scanners
// (scan.go, token.go, firstline.go, headers.go, chunk.go). It mirrors the
// teacher's ErrorHdr convention: zero means "fully parsed, no error", and a
// handful of non-zero sentinels mean "not an error, keep calling me" rather
// than "parsing failed". Only hErrBadChar/hErrBug/hErrValNotNumber and
// friends represent genuine parse failures; those are translated into a
// public *Error at the package's exported boundary (Feed/FeedEOF). That
// *Error carries a Kind and a message; it does not carry the offending
// line or position, except for Host header errors, which include the
// header value.
type hErr int

const (
	hErrOk hErr = iota
	// hErrMoreBytes: the value is not fully contained in the buffer;
	// callers resume by calling again with more data appended and the
	// returned offset.
	hErrMoreBytes
	// hErrMoreValues: a value was fully parsed but a separator indicates
	// more values follow (comma/space separated lists).
	hErrMoreValues
	// hErrEmpty: an empty header line (CRLF with nothing before it) was
	// found; signals end-of-headers to ParseHeaders' caller.
	hErrEmpty
	// hErrEOH: end-of-header encountered while parsing a sub-value (token
	// list, parameter); not itself an error, see call sites.
	hErrEOH
	// hErrBadChar: disallowed byte encountered; a real parse failure.
	hErrBadChar
	// hErrValNotNumber: a numeric field (the chunk size) did not parse
	// as digits.
	hErrValNotNumber
	// hErrNumTooBig: a numeric field overflowed its allowed range.
	hErrNumTooBig
	// hErrBug signals an internal invariant violation (unreachable state).
	hErrBug
)
