package httpwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSkipToken(t *testing.T) {
	buf := []byte("chunked, gzip")
	require.Equal(t, 7, skipToken(buf, 0))
}

func TestSkipTokenDelim(t *testing.T) {
	buf := []byte("Content-Length: 5\r\n")
	require.Equal(t, 14, skipTokenDelim(buf, 0, ':'))
}

func TestSkipWS(t *testing.T) {
	buf := []byte("  \t value")
	require.Equal(t, 4, skipWS(buf, 0))
}

func TestSkipCRLFStrict(t *testing.T) {
	buf := []byte("\r\nrest")
	n, crl, err := skipCRLF(buf, 0, false)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 2, n)
	require.Equal(t, 2, crl)
}

func TestSkipCRLFBareLFRejectedInStrict(t *testing.T) {
	buf := []byte("\nrest")
	_, _, err := skipCRLF(buf, 0, false)
	require.Equal(t, hErrBadChar, err)
}

func TestSkipCRLFBareLFAcceptedInLax(t *testing.T) {
	buf := []byte("\nrest")
	n, crl, err := skipCRLF(buf, 0, true)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 1, n)
	require.Equal(t, 1, crl)
}

func TestSkipCRLFNeedsMoreBytes(t *testing.T) {
	buf := []byte("\r")
	_, _, err := skipCRLF(buf, 0, false)
	require.Equal(t, hErrMoreBytes, err)
}

func TestSkipLineFindsEnding(t *testing.T) {
	buf := []byte("reason phrase\r\nnext")
	n, crl, err := skipLine(buf, 0, false)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 2, crl)
	require.Equal(t, "next", string(buf[n:]))
}

func TestSkipLineNeedsMoreBytes(t *testing.T) {
	buf := []byte("reason phrase")
	_, _, err := skipLine(buf, 0, false)
	require.Equal(t, hErrMoreBytes, err)
}

func TestSkipLWSPlainWhitespace(t *testing.T) {
	buf := []byte("   rest")
	n, _, err := skipLWS(buf, 0, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 3, n)
}

func TestSkipLWSEndOfHeaderStrict(t *testing.T) {
	buf := []byte("\r\nX-Next: 1")
	_, _, err := skipLWS(buf, 0, 0)
	require.Equal(t, hErrEOH, err)
}

func TestSkipLWSObsFoldLax(t *testing.T) {
	buf := []byte("\r\n   more")
	n, _, err := skipLWS(buf, 0, uint(lwsAllowFold))
	require.Equal(t, hErrOk, err)
	require.Equal(t, "more", string(buf[n:]))
}

func TestSkipLWSObsFoldRejectedStrict(t *testing.T) {
	// no lwsAllowFold: a line ending followed by whitespace is simply the
	// end of this value, not a fold.
	buf := []byte("\r\n   more")
	_, _, err := skipLWS(buf, 0, 0)
	require.Equal(t, hErrEOH, err)
}

func TestHexToU(t *testing.T) {
	v, ok := hexToU([]byte("1A"))
	require.True(t, ok)
	require.Equal(t, uint64(26), v)
}

func TestHexToUEmpty(t *testing.T) {
	_, ok := hexToU(nil)
	require.False(t, ok)
}

func TestHexToUOverflow(t *testing.T) {
	_, ok := hexToU([]byte("FFFFFFFFFFFFFFFFF"))
	require.False(t, ok)
}

func TestHexToUBadDigit(t *testing.T) {
	_, ok := hexToU([]byte("1G"))
	require.False(t, ok)
}

func TestDecToU(t *testing.T) {
	v, ok := decToU([]byte("12345"))
	require.True(t, ok)
	require.Equal(t, uint64(12345), v)
}

func TestDecToURejectsNonDigit(t *testing.T) {
	_, ok := decToU([]byte("12a45"))
	require.False(t, ok)
}

func TestIsTokenChar(t *testing.T) {
	require.True(t, isTokenChar('a'))
	require.True(t, isTokenChar('9'))
	require.True(t, isTokenChar('-'))
	require.False(t, isTokenChar(' '))
	require.False(t, isTokenChar(':'))
}
