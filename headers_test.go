package httpwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func newHdrLst() HdrLst {
	return HdrLst{Hdrs: make([]Hdr, 16)}
}

func TestParseHeadersBasic(t *testing.T) {
	buf := []byte("Host: example.com\r\nContent-Length: 5\r\n\r\n")
	hl := newHdrLst()
	n, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, 2, hl.N)
	require.True(t, hl.hasCLen)
	require.Equal(t, uint64(5), hl.CLen)
	h := hl.GetHdr(HdrHost)
	require.NotNil(t, h)
	require.Equal(t, "example.com", string(h.Val.Get(buf)))
}

func TestParseHeadersEmptySectionOnly(t *testing.T) {
	buf := []byte("\r\n")
	hl := newHdrLst()
	n, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrEmpty, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, 0, hl.N)
}

func TestParseHeadersResumesAcrossSplits(t *testing.T) {
	full := []byte("Host: a.example\r\nX-Foo: bar\r\n\r\n")
	hl := newHdrLst()
	offs := 0
	for n := 1; n <= len(full); n++ {
		next, err := ParseHeaders(full[:n], offs, &hl, false, lwsNone, 0)
		if err == hErrMoreBytes {
			offs = next
			continue
		}
		require.Equal(t, hErrOk, err)
		require.Equal(t, len(full), next)
		break
	}
	require.Equal(t, 2, hl.N)
}

func TestParseHeadersConflictingContentLengthRejected(t *testing.T) {
	buf := []byte("Content-Length: 5\r\nContent-Length: 6\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrBadChar, err)
}

func TestParseHeadersAgreeingContentLengthAccepted(t *testing.T) {
	buf := []byte("Content-Length: 5\r\nContent-Length: 5\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, uint64(5), hl.CLen)
}

func TestParseHeadersMaxHeaderCountEnforced(t *testing.T) {
	buf := []byte("A: 1\r\nB: 2\r\nC: 3\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 2)
	require.Equal(t, hErrBadChar, err)
}

func TestParseHeadersOverflowsIntoScratchHdr(t *testing.T) {
	buf := []byte("A: 1\r\nB: 2\r\nC: 3\r\n\r\n")
	hl := HdrLst{Hdrs: make([]Hdr, 1)}
	n, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, len(buf), n)
	require.Equal(t, 3, hl.N)
	// the second and third headers overflowed hl.Hdrs but are still
	// counted and, if well-known, captured via hl.h.
}

func TestParseHeadersCapturesWellKnownTypeRegardlessOfHdrsCapacity(t *testing.T) {
	buf := []byte("X-Other: 1\r\nContent-Length: 42\r\n\r\n")
	hl := HdrLst{} // zero capacity Hdrs slice
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrOk, err)
	require.True(t, hl.hasCLen)
	require.Equal(t, uint64(42), hl.CLen)
}

func TestParseHeadersObsFoldRejectedStrict(t *testing.T) {
	buf := []byte("X-Foo: bar\r\n baz\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, true, lwsNone, 0)
	require.Equal(t, hErrBadChar, err)
}

func TestParseHeadersObsFoldAcceptedLax(t *testing.T) {
	buf := []byte("X-Foo: bar\r\n baz\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, false, lwsAllowFold, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 1, hl.N)
}

func TestParseHeadersTransferEncodingAccumulates(t *testing.T) {
	buf := []byte("Transfer-Encoding: gzip, chunked\r\n\r\n")
	hl := newHdrLst()
	hl.TrEnc.Vals = make([]TrEncVal, 4)
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 2, hl.TrEnc.N)
	require.True(t, hl.TrEnc.LastIsChunked())
}

func TestParseHeadersConnectionTokensAccumulate(t *testing.T) {
	buf := []byte("Connection: keep-alive, Upgrade\r\n\r\n")
	hl := newHdrLst()
	hl.Conn.Vals = make([]ConnTokVal, 4)
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrOk, err)
	require.True(t, hl.Conn.KeepAlive())
	require.True(t, hl.Conn.Upgrade())
}

func TestParseHeadersRejectsDuplicateHostHeader(t *testing.T) {
	buf := []byte("Host: a.example\r\nHost: b.example\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrBadChar, err)
	require.Equal(t, 2, hl.HostCount)
}

func TestParseHeadersSingleHostHeaderAccepted(t *testing.T) {
	buf := []byte("Host: a.example\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, false, lwsNone, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 1, hl.HostCount)
}

func TestParseHeadersRejectsBareCRInsideValue(t *testing.T) {
	// A bare CR (not part of a CRLF) inside a header value must never be
	// treated as an unremarkable end-of-header: doing so would let the
	// bytes following it be read back as a second, attacker-controlled
	// header (the request-smuggling pattern CVE-2023-37276 regression
	// tests against).
	buf := []byte("X-Abc: \rTransfer-Encoding: chunked\r\n\r\n")
	hl := newHdrLst()
	_, err := ParseHeaders(buf, 0, &hl, false, lwsAllowFold|lwsAllowBareLF, 0)
	require.Equal(t, hErrBadChar, err)
}

func TestGetHdrTypeKnownHeaders(t *testing.T) {
	require.Equal(t, HdrCLen, GetHdrType([]byte("Content-Length")))
	require.Equal(t, HdrHost, GetHdrType([]byte("host")))
	require.Equal(t, HdrOther, GetHdrType([]byte("X-Custom")))
}
