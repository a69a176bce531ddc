package httpwire

import (
	"github.com/intuitivelabs/bytescase"
)

// TrEncT flags the known Transfer-Encoding / TE coding names (RFC 9112
// §6.1 / IANA HTTP transfer coding registry).
type TrEncT uint

const (
	TrEncNone     TrEncT = 0
	TrEncChunkedF TrEncT = 1 << iota
	TrEncCompressF
	TrEncDeflateF
	TrEncGzipF
	TrEncIdentityF
	TrEncTrailersF // TE-only pseudo-coding
	TrEncOtherF
)

// TrEncResolve maps a coding name to its TrEncT flag.
func TrEncResolve(n []byte) TrEncT {
	switch len(n) {
	case 7:
		switch {
		case bytescase.CmpEq(n, []byte("chunked")):
			return TrEncChunkedF
		case bytescase.CmpEq(n, []byte("deflate")):
			return TrEncDeflateF
		}
	case 8:
		switch {
		case bytescase.CmpEq(n, []byte("compress")):
			return TrEncCompressF
		case bytescase.CmpEq(n, []byte("identity")):
			return TrEncIdentityF
		case bytescase.CmpEq(n, []byte("trailers")):
			return TrEncTrailersF
		}
	case 4:
		if bytescase.CmpEq(n, []byte("gzip")) {
			return TrEncGzipF
		}
	}
	return TrEncOtherF
}

// TrEncVal is one parsed Transfer-Encoding coding, with any ";param=val"
// parameters it carried (coding parameters are legal per the grammar but
// have no defined semantics for any of the standard codings).
type TrEncVal struct {
	Val PToken
	Enc TrEncT
}

func (v *TrEncVal) Reset() { *v = TrEncVal{} }

// PTrEnc accumulates every coding parsed out of one or more
// Transfer-Encoding headers, in order (order matters: it is the applied
// order of encodings, last-applied-last, per RFC 9112 §6.1).
type PTrEnc struct {
	Vals      []TrEncVal
	N         int
	Encodings TrEncT
	tmp       TrEncVal
}

func (u *PTrEnc) Reset() {
	v := u.Vals
	*u = PTrEnc{Vals: v}
}

func (u *PTrEnc) Empty() bool { return u.N == 0 }

// LastIsChunked reports whether the final (outermost, applied-last) coding
// is "chunked" -- the only arrangement RFC 9112 permits for a message
// framed by Transfer-Encoding.
func (u *PTrEnc) LastIsChunked() bool {
	if u.N == 0 {
		return false
	}
	n := u.N - 1
	if n < len(u.Vals) {
		return u.Vals[n].Enc == TrEncChunkedF
	}
	return u.tmp.Enc == TrEncChunkedF
}

// ParseAllTrEncValues parses every coding in one Transfer-Encoding (or TE)
// header value, appending to u. Returns the offset past the value and the
// count of codings parsed in this call; see ParseTokenLst for the hErr
// resumption contract.
func ParseAllTrEncValues(buf []byte, offs int, u *PTrEnc, lws lwsFlags) (int, int, hErr) {
	const flags = tokCommaSepF | tokAllowParamsF

	var next int
	var err hErr
	vNo := 0
	for {
		pv := &u.tmp
		next, err = ParseTokenLst(buf, offs, &pv.Val, flags, lws)
		switch err {
		case hErrOk, hErrMoreValues:
			pv.Enc = TrEncResolve(pv.Val.Name().Get(buf))
			u.Encodings |= pv.Enc
			if u.N < len(u.Vals) {
				u.Vals[u.N] = *pv
			}
			u.N++
			vNo++
			u.tmp.Val.Reset()
			if err == hErrMoreValues {
				offs = next
				pv.Val.Reset()
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
