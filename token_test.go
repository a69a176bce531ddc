package httpwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParseTokenLstSingle(t *testing.T) {
	buf := []byte("chunked\r\n")
	var pt PToken
	n, err := ParseTokenLst(buf, 0, &pt, tokCommaSepF, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, "chunked", string(pt.Name().Get(buf)))
	require.Equal(t, 9, n)
}

func TestParseTokenLstCommaSeparated(t *testing.T) {
	buf := []byte("gzip, chunked\r\n")
	var pt PToken
	offs := 0
	var names []string
	for {
		n, err := ParseTokenLst(buf, offs, &pt, tokCommaSepF, lwsNone)
		names = append(names, string(pt.Name().Get(buf)))
		if err == hErrMoreValues {
			offs = n
			pt.Reset()
			continue
		}
		require.Equal(t, hErrOk, err)
		break
	}
	require.Equal(t, []string{"gzip", "chunked"}, names)
}

func TestParseTokenLstNeedsMoreBytes(t *testing.T) {
	buf := []byte("chun")
	var pt PToken
	_, err := ParseTokenLst(buf, 0, &pt, tokCommaSepF, lwsNone)
	require.Equal(t, hErrMoreBytes, err)
}

func TestParseTokenLstResumesAcrossSplit(t *testing.T) {
	full := []byte("chunked\r\n")
	var pt PToken
	n, err := ParseTokenLst(full[:4], 0, &pt, tokCommaSepF, lwsNone)
	require.Equal(t, hErrMoreBytes, err)
	n, err = ParseTokenLst(full, n, &pt, tokCommaSepF, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, "chunked", string(pt.Name().Get(full)))
	_ = n
}

func TestParseTokenLstSlashSuffix(t *testing.T) {
	buf := []byte("HTTP/2.0\r\n")
	var pt PToken
	_, err := ParseTokenLst(buf, 0, &pt, tokCommaSepF|tokAllowSlashF, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, "HTTP", string(pt.Name().Get(buf)))
	require.Equal(t, "2.0", string(pt.Suffix().Get(buf)))
}

func TestParseTokenLstRejectsSlashWithoutFlag(t *testing.T) {
	buf := []byte("HTTP/2.0\r\n")
	var pt PToken
	_, err := ParseTokenLst(buf, 0, &pt, tokCommaSepF, lwsNone)
	require.Equal(t, hErrBadChar, err)
}

func TestParseTokenLstWithParams(t *testing.T) {
	buf := []byte("identity;q=0.5\r\n")
	var pt PToken
	_, err := ParseTokenLst(buf, 0, &pt, tokCommaSepF|tokAllowParamsF, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, "identity", string(pt.Name().Get(buf)))
	require.Equal(t, uint(1), pt.ParamsNo)
	require.Equal(t, "q", string(pt.LastParam.Name.Get(buf)))
	require.Equal(t, "0.5", string(pt.LastParam.Val.Get(buf)))
}

func TestParseTokenLstEmptyValueIsEndOfHeaders(t *testing.T) {
	buf := []byte("\r\n")
	var pt PToken
	_, err := ParseTokenLst(buf, 0, &pt, tokCommaSepF, lwsNone)
	require.Equal(t, hErrEmpty, err)
}

func TestSkipQuoted(t *testing.T) {
	buf := []byte(`quoted value"rest`)
	n, err := SkipQuoted(buf, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, "rest", string(buf[n:]))
}

func TestSkipQuotedRejectsRawCRLF(t *testing.T) {
	buf := []byte("bad\r\nvalue\"")
	_, err := SkipQuoted(buf, 0)
	require.Equal(t, hErrBadChar, err)
}

func TestSkipQuotedHandlesEscapes(t *testing.T) {
	buf := []byte(`esc\"aped"rest`)
	n, err := SkipQuoted(buf, 0)
	require.Equal(t, hErrOk, err)
	require.Equal(t, "rest", string(buf[n:]))
}
