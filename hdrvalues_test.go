package httpwire

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTrEncResolveKnownCodings(t *testing.T) {
	require.Equal(t, TrEncChunkedF, TrEncResolve([]byte("chunked")))
	require.Equal(t, TrEncGzipF, TrEncResolve([]byte("gzip")))
	require.Equal(t, TrEncDeflateF, TrEncResolve([]byte("deflate")))
	require.Equal(t, TrEncCompressF, TrEncResolve([]byte("compress")))
	require.Equal(t, TrEncIdentityF, TrEncResolve([]byte("identity")))
	require.Equal(t, TrEncTrailersF, TrEncResolve([]byte("trailers")))
	require.Equal(t, TrEncOtherF, TrEncResolve([]byte("bogus")))
}

func TestParseAllTrEncValuesAccumulatesAppliedOrder(t *testing.T) {
	buf := []byte("gzip, chunked\r\n")
	var p PTrEnc
	p.Vals = make([]TrEncVal, 4)
	_, n, err := ParseAllTrEncValues(buf, 0, &p, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 2, n)
	require.True(t, p.LastIsChunked())
	require.Equal(t, TrEncGzipF, p.Vals[0].Enc)
	require.Equal(t, TrEncChunkedF, p.Vals[1].Enc)
}

func TestUpgProtoResolveKnownProtocols(t *testing.T) {
	require.Equal(t, UProtoWSockF, UpgProtoResolve([]byte("websocket")))
	require.Equal(t, UProtoHTTP2F, UpgProtoResolve([]byte("h2c")))
	require.Equal(t, UProtoHTTP2F, UpgProtoResolve([]byte("HTTP/2.0")))
	require.Equal(t, UProtoOtherF, UpgProtoResolve([]byte("spdy/3")))
}

func TestParseAllUpgradeValuesAllowsSlash(t *testing.T) {
	buf := []byte("HTTP/2.0, websocket\r\n")
	var p PUpgrade
	p.Vals = make([]UpgProtoVal, 4)
	_, n, err := ParseAllUpgradeValues(buf, 0, &p, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 2, n)
	require.Equal(t, UProtoHTTP2F, p.Vals[0].Proto)
	require.Equal(t, UProtoWSockF, p.Vals[1].Proto)
}

func TestConnTokResolveKnownTokens(t *testing.T) {
	require.Equal(t, ConnCloseF, ConnTokResolve([]byte("close")))
	require.Equal(t, ConnKeepAliveF, ConnTokResolve([]byte("keep-alive")))
	require.Equal(t, ConnUpgradeF, ConnTokResolve([]byte("Upgrade")))
	require.Equal(t, ConnOtherF, ConnTokResolve([]byte("X-Strip-Me")))
}

func TestParseAllConnTokensAndQueries(t *testing.T) {
	buf := []byte("keep-alive, upgrade\r\n")
	var p PConnection
	p.Vals = make([]ConnTokVal, 0, 4)
	_, n, err := ParseAllConnTokens(buf, 0, &p, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 2, n)
	require.True(t, p.KeepAlive())
	require.True(t, p.Upgrade())
	require.False(t, p.Close())
}

func TestCEncResolveKnownCodings(t *testing.T) {
	require.Equal(t, CEncGzipF, CEncResolve([]byte("gzip")))
	require.Equal(t, CEncDeflateF, CEncResolve([]byte("deflate")))
	require.Equal(t, CEncBrF, CEncResolve([]byte("br")))
	require.Equal(t, CEncZstdF, CEncResolve([]byte("zstd")))
	require.Equal(t, CEncIdentityF, CEncResolve([]byte("identity")))
	require.Equal(t, CEncOtherF, CEncResolve([]byte("lzma")))
}

func TestParseAllCEncValuesWireOrder(t *testing.T) {
	buf := []byte("gzip, br\r\n")
	var p PContentEncoding
	p.Vals = make([]CEncVal, 4)
	_, n, err := ParseAllCEncValues(buf, 0, &p, lwsNone)
	require.Equal(t, hErrOk, err)
	require.Equal(t, 2, n)
	require.Equal(t, CEncGzipF, p.Vals[0].Enc)
	require.Equal(t, CEncBrF, p.Vals[1].Enc)
	require.Equal(t, CEncGzipF|CEncBrF, p.Encs)
}

func TestParseAllTrEncValuesResumesAcrossSplit(t *testing.T) {
	full := []byte("gzip, chunked\r\n")
	var p PTrEnc
	p.Vals = make([]TrEncVal, 0, 4)
	offs := 0
	for n := 1; n <= len(full); n++ {
		next, _, err := ParseAllTrEncValues(full[:n], offs, &p, lwsNone)
		offs = next
		if err == hErrMoreBytes {
			continue
		}
		require.Equal(t, hErrOk, err)
		require.True(t, p.LastIsChunked())
		return
	}
	t.Fatal("never completed")
}
