package httpwire

import (
	"github.com/intuitivelabs/bytescase"
)

// CEncT flags the Content-Encoding codings this package can decode (see
// decode.go for the dispatch table).
type CEncT uint

const (
	CEncNone     CEncT = 0
	CEncIdentityF CEncT = 1 << iota
	CEncGzipF
	CEncDeflateF
	CEncBrF
	CEncZstdF
	CEncCompressF // obsolete, no decoder available
	CEncOtherF    // unknown coding, not decodable
)

// CEncResolve maps a Content-Encoding token to its CEncT flag.
func CEncResolve(n []byte) CEncT {
	switch len(n) {
	case 8:
		switch {
		case bytescase.CmpEq(n, []byte("identity")):
			return CEncIdentityF
		case bytescase.CmpEq(n, []byte("compress")):
			return CEncCompressF
		}
	case 4:
		switch {
		case bytescase.CmpEq(n, []byte("gzip")):
			return CEncGzipF
		case bytescase.CmpEq(n, []byte("zstd")):
			return CEncZstdF
		}
	case 7:
		if bytescase.CmpEq(n, []byte("deflate")) {
			return CEncDeflateF
		}
	case 2:
		if bytescase.CmpEq(n, []byte("br")) {
			return CEncBrF
		}
	}
	return CEncOtherF
}

// CEncVal is one parsed Content-Encoding coding.
type CEncVal struct {
	Val PToken
	Enc CEncT
}

func (v *CEncVal) Reset() { *v = CEncVal{} }

// PContentEncoding accumulates every coding parsed across one or more
// Content-Encoding headers, in wire order (the order they must be undone
// in reverse, per RFC 9110 §8.4.1).
type PContentEncoding struct {
	Vals []CEncVal
	N    int
	Encs CEncT
	tmp  CEncVal
}

func (u *PContentEncoding) Reset() {
	v := u.Vals
	*u = PContentEncoding{Vals: v}
}

func (u *PContentEncoding) Empty() bool { return u.N == 0 }

// ParseAllCEncValues parses every coding in one Content-Encoding header
// value. See ParseTokenLst for the hErr resumption contract.
func ParseAllCEncValues(buf []byte, offs int, u *PContentEncoding, lws lwsFlags) (int, int, hErr) {
	const flags = tokCommaSepF
	var next int
	var err hErr
	vNo := 0
	for {
		pv := &u.tmp
		next, err = ParseTokenLst(buf, offs, &pv.Val, flags, lws)
		switch err {
		case hErrOk, hErrMoreValues:
			pv.Enc = CEncResolve(pv.Val.Name().Get(buf))
			u.Encs |= pv.Enc
			if u.N < len(u.Vals) {
				u.Vals[u.N] = *pv
			}
			u.N++
			vNo++
			u.tmp.Reset()
			if err == hErrMoreValues {
				offs = next
				continue
			}
		case hErrMoreBytes:
		default:
			pv.Reset()
		}
		break
	}
	return next, vNo, err
}
