package httpwire

import (
	"github.com/intuitivelabs/bytescase"
)

// ConnTokT flags the well-known Connection header tokens (RFC 9110 §7.6.1).
type ConnTokT uint

const (
	ConnTokNone    ConnTokT = 0
	ConnCloseF     ConnTokT = 1 << iota
	ConnKeepAliveF          // obsolete but still widely sent
	ConnUpgradeF
	ConnOtherF // a connection-option naming a header to strip (hop-by-hop)
)

// ConnTokResolve maps a Connection token to its ConnTokT flag.
func ConnTokResolve(n []byte) ConnTokT {
	switch {
	case len(n) == 5 && bytescase.CmpEq(n, []byte("close")):
		return ConnCloseF
	case len(n) == 10 && bytescase.CmpEq(n, []byte("keep-alive")):
		return ConnKeepAliveF
	case len(n) == 7 && bytescase.CmpEq(n, []byte("upgrade")):
		return ConnUpgradeF
	}
	return ConnOtherF
}

// ConnTokVal is one parsed Connection token.
type ConnTokVal struct {
	Val PToken
	Tok ConnTokT
}

func (v *ConnTokVal) Reset() { *v = ConnTokVal{} }

// PConnection accumulates every token parsed across one or more
// Connection headers.
type PConnection struct {
	Vals   []ConnTokVal
	N      int
	Tokens ConnTokT
	tmp    ConnTokVal
}

func (u *PConnection) Reset() {
	v := u.Vals
	*u = PConnection{Vals: v}
}

func (u *PConnection) Empty() bool { return u.N == 0 }

func (u *PConnection) Close() bool     { return u.Tokens&ConnCloseF != 0 }
func (u *PConnection) KeepAlive() bool { return u.Tokens&ConnKeepAliveF != 0 }
func (u *PConnection) Upgrade() bool   { return u.Tokens&ConnUpgradeF != 0 }

// ParseAllConnTokens parses every token in one Connection header value.
// See ParseTokenLst for the hErr resumption contract.
func ParseAllConnTokens(buf []byte, offs int, u *PConnection, lws lwsFlags) (int, int, hErr) {
	const flags = tokCommaSepF
	var next int
	var err hErr
	vNo := 0
	for {
		pv := &u.tmp
		next, err = ParseTokenLst(buf, offs, &pv.Val, flags, lws)
		switch err {
		case hErrOk, hErrMoreValues:
			pv.Tok = ConnTokResolve(pv.Val.Name().Get(buf))
			u.Tokens |= pv.Tok
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
