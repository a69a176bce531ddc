package httpwire

import (
	"github.com/intuitivelabs/bytescase"
)

// UpgProtoT flags the well-known Upgrade protocol tokens (IANA HTTP
// Upgrade Token Registry).
type UpgProtoT uint

const (
	UProtoNone   UpgProtoT = 0
	UProtoWSockF UpgProtoT = 1 << iota
	UProtoHTTP2F
	UProtoOtherF
)

// UpgProtoResolve maps an Upgrade token to its UpgProtoT flag.
func UpgProtoResolve(n []byte) UpgProtoT {
	switch {
	case len(n) == 9 && bytescase.CmpEq(n, []byte("websocket")):
		return UProtoWSockF
	case len(n) == 3 && bytescase.CmpEq(n, []byte("h2c")):
		return UProtoHTTP2F
	case len(n) == 8 && bytescase.CmpEq(n, []byte("http/2.0")):
		return UProtoHTTP2F
	}
	return UProtoOtherF
}

// UpgProtoVal is one parsed Upgrade protocol value, e.g. "websocket" or
// "HTTP/2.0" (the slash is part of the token, see tokAllowSlashF in token.go).
type UpgProtoVal struct {
	Val   PToken
	Proto UpgProtoT
}

func (v *UpgProtoVal) Reset() { *v = UpgProtoVal{} }

// PUpgrade accumulates every protocol offered across one or more Upgrade
// headers, in the client's stated preference order.
type PUpgrade struct {
	Vals   []UpgProtoVal
	N      int
	Protos UpgProtoT
	tmp    UpgProtoVal
}

func (u *PUpgrade) Reset() {
	v := u.Vals
	*u = PUpgrade{Vals: v}
}

func (u *PUpgrade) Empty() bool { return u.N == 0 }

// ParseAllUpgradeValues parses every protocol token in one Upgrade header
// value. See ParseTokenLst for the hErr resumption contract.
func ParseAllUpgradeValues(buf []byte, offs int, u *PUpgrade, lws lwsFlags) (int, int, hErr) {
	const flags = tokCommaSepF | tokAllowSlashF
	var next int
	var err hErr
	vNo := 0
	for {
		pv := &u.tmp
		next, err = ParseTokenLst(buf, offs, &pv.Val, flags, lws)
		switch err {
		case hErrOk, hErrMoreValues:
			pv.Proto = UpgProtoResolve(pv.Val.V.Get(buf))
			u.Protos |= pv.Proto
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
