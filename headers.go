package httpwire

import (
	"github.com/intuitivelabs/bytescase"
)

// HdrT identifies a header's type as a small numeric constant, so callers
// can switch on well-known headers without string comparisons.
type HdrT uint16

// HdrFlags packs a HdrLst's set of encountered header types into bits.
type HdrFlags uint32

func (f *HdrFlags) Reset()             { *f = 0 }
func (f *HdrFlags) Set(t HdrT)         { *f |= 1 << t }
func (f HdrFlags) Test(t HdrT) bool    { return f&(1<<t) != 0 }
func (f HdrFlags) Any(ts ...HdrT) bool {
	for _, t := range ts {
		if f&(1<<t) != 0 {
			return true
		}
	}
	return false
}

// HdrT values. HdrOther is both "generic/unrecognized" and the table's
// upper bound, matching the teacher's convention.
const (
	HdrNone HdrT = iota
	HdrCLen
	HdrTrEncoding
	HdrUpgrade
	HdrCEncoding
	HdrHost
	HdrServer
	HdrConnection
	HdrDate
	HdrUserAgent
	HdrExpect
	HdrOther
)

var hdrTStr = [...]string{
	HdrNone:       "nil",
	HdrCLen:       "Content-Length",
	HdrTrEncoding: "Transfer-Encoding",
	HdrUpgrade:    "Upgrade",
	HdrCEncoding:  "Content-Encoding",
	HdrHost:       "Host",
	HdrServer:     "Server",
	HdrConnection: "Connection",
	HdrDate:       "Date",
	HdrUserAgent:  "User-Agent",
	HdrExpect:     "Expect",
	HdrOther:      "Generic",
}

func (t HdrT) String() string {
	if int(t) >= len(hdrTStr) {
		return "invalid"
	}
	return hdrTStr[t]
}

type hdr2Type struct {
	n []byte
	t HdrT
}

// always lowercase
var hdrName2Type = [...]hdr2Type{
	{n: []byte("content-length"), t: HdrCLen},
	{n: []byte("transfer-encoding"), t: HdrTrEncoding},
	{n: []byte("upgrade"), t: HdrUpgrade},
	{n: []byte("content-encoding"), t: HdrCEncoding},
	{n: []byte("host"), t: HdrHost},
	{n: []byte("server"), t: HdrServer},
	{n: []byte("connection"), t: HdrConnection},
	{n: []byte("date"), t: HdrDate},
	{n: []byte("user-agent"), t: HdrUserAgent},
	{n: []byte("expect"), t: HdrExpect},
}

const (
	hnBitsLen   uint = 2
	hnBitsFChar uint = 5
)

var hdrNameLookup [1 << (hnBitsLen + hnBitsFChar)][]hdr2Type

func hashHdrName(n []byte) int {
	const (
		mC = (1 << hnBitsFChar) - 1
		mL = (1 << hnBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) | ((len(n) & mL) << hnBitsFChar)
}

func init() {
	for _, h := range hdrName2Type {
		i := hashHdrName(h.n)
		hdrNameLookup[i] = append(hdrNameLookup[i], h)
	}
}

// GetHdrType returns the corresponding HdrT for a header name (no leading
// or trailing whitespace).
func GetHdrType(name []byte) HdrT {
	if len(name) == 0 {
		return HdrOther
	}
	i := hashHdrName(name)
	for _, h := range hdrNameLookup[i] {
		if bytescase.CmpEq(name, h.n) {
			return h.t
		}
	}
	return HdrOther
}

// Hdr is a single parsed header field.
type Hdr struct {
	Type HdrT
	Name PField
	Val  PField

	state hdrState
}

type hdrState uint8

const (
	hInit hdrState = iota
	hName
	hNameEnd
	hBodyStart
	hVal
	hValEnd
	hFIN
)

func (h *Hdr) Reset()        { *h = Hdr{} }
func (h *Hdr) Missing() bool { return h.Type == HdrNone }

// HdrLst accumulates all headers parsed from a message.
type HdrLst struct {
	PFlags HdrFlags
	N      int
	Hdrs   []Hdr // backing storage for up to len(Hdrs) headers
	h      [int(HdrOther)]Hdr

	// CLen is the accumulated, validated Content-Length value, set once
	// the first Content-Length header parses; a second, disagreeing
	// Content-Length header is a hard error (see ParseHdrLine).
	CLen    uint64
	hasCLen bool

	// HostCount counts every Host header seen, regardless of whether it
	// fit in Hdrs; a request carrying more than one is rejected (see
	// validateHdr) since there is no sound way to pick which one names
	// the real target.
	HostCount int

	// TrEnc/Upg/Conn/CEnc accumulate every value across however many
	// headers of that type the message carried, regardless of whether
	// the individual Hdr itself fit in Hdrs -- multi-valued headers are
	// resolved here, inline, as each header line finishes parsing (see
	// validateHdr), not from a second pass over Hdrs.
	TrEnc PTrEnc
	Upg   PUpgrade
	Conn  PConnection
	CEnc  PContentEncoding

	hdr Hdr // scratch header used once Hdrs is exhausted
}

func (hl *HdrLst) Reset() {
	hdrs := hl.Hdrs
	trEnc, upg, conn, cenc := hl.TrEnc.Vals, hl.Upg.Vals, hl.Conn.Vals, hl.CEnc.Vals
	*hl = HdrLst{Hdrs: hdrs}
	hl.TrEnc.Vals, hl.Upg.Vals, hl.Conn.Vals, hl.CEnc.Vals = trEnc, upg, conn, cenc
	for i := range hdrs {
		hdrs[i].Reset()
	}
}

// GetHdr returns the first parsed header of type t, or nil if none was
// seen.
func (hl *HdrLst) GetHdr(t HdrT) *Hdr {
	if t > HdrNone && t < HdrOther && !hl.h[int(t)].Missing() {
		return &hl.h[int(t)]
	}
	return nil
}

func (hl *HdrLst) setHdr(newhdr *Hdr) {
	i := int(newhdr.Type)
	if i > 0 && i < len(hl.h) && hl.h[i].Missing() {
		hl.h[i] = *newhdr
	}
}

// ParseHdrLine parses a single header line: Name *WS ":" *LWS value *LWS
// line-ending. Returns (next, hErrOk) on a fully parsed header,
// (next, hErrEmpty) on an empty line (end-of-headers marker, next points
// past its line ending), (next, hErrMoreBytes) when more input is needed
// (resume at next), or any other hErr for malformed input.
//
// lws governs obs-fold/bare-LF tolerance for the *value* portion only; the
// line ending terminating the header name and the empty end-of-headers
// line always honor lws's bare-LF bit but never fold (a header name is
// never continued).
func ParseHdrLine(buf []byte, offs int, h *Hdr, hl *HdrLst, strict bool, lws lwsFlags) (int, hErr) {
	i := offs
	var crl int
	for i < len(buf) {
		switch h.state {
		case hInit:
			if len(buf)-i < 1 {
				return i, hErrMoreBytes
			}
			if buf[i] == '\r' {
				if len(buf)-i < 2 {
					return i, hErrMoreBytes
				}
				h.state = hFIN
				if buf[i+1] == '\n' {
					return i + 2, hErrEmpty
				}
				if lws&lwsAllowBareLF == 0 {
					return i, hErrBadChar
				}
				return i + 1, hErrEmpty
			}
			if buf[i] == '\n' {
				if lws&lwsAllowBareLF == 0 {
					return i, hErrBadChar
				}
				h.state = hFIN
				return i + 1, hErrEmpty
			}
			h.state = hName
			h.Name.Set(i, i)
			fallthrough
		case hName:
			i = skipTokenDelim(buf, i, ':')
			if i >= len(buf) {
				return i, hErrMoreBytes
			}
			switch buf[i] {
			case ' ', '\t':
				h.state = hNameEnd
				h.Name.Extend(i)
				if h.Name.Empty() {
					return i, hErrBadChar
				}
				i++
			case ':':
				h.Name.Extend(i)
				if h.Name.Empty() {
					return i, hErrBadChar
				}
				h.Type = GetHdrType(h.Name.Get(buf))
				h.state = hBodyStart
				i++
			default:
				return i, hErrBadChar
			}
		case hNameEnd:
			i = skipWS(buf, i)
			if i >= len(buf) {
				return i, hErrMoreBytes
			}
			if buf[i] != ':' {
				return i, hErrBadChar
			}
			h.Type = GetHdrType(h.Name.Get(buf))
			h.state = hBodyStart
			i++
		case hBodyStart:
			n, c, err := skipLWS(buf, i, uint(lws&^lwsAllowFold))
			switch err {
			case hErrOk:
				i = n
				h.state = hVal
				h.Val.Set(i, i)
				crl = 0
			case hErrEOH:
				i = n
				crl = c
				goto endOfHdr
			case hErrMoreBytes:
				return n, err
			default:
				return n, err
			}
		case hVal:
			i = skipFieldValue(buf, i)
			if i >= len(buf) {
				return i, hErrMoreBytes
			}
			if buf[i] != ' ' && buf[i] != '\t' && buf[i] != '\r' && buf[i] != '\n' {
				return i, hErrBadChar
			}
			h.Val.Extend(i)
			h.state = hValEnd
			fallthrough
		case hValEnd:
			n, c, err := skipLWS(buf, i, uint(lws))
			switch err {
			case hErrOk:
				i = n
				h.state = hVal
				crl = 0
			case hErrEOH:
				i = n
				crl = c
				goto endOfHdr
			case hErrMoreBytes:
				return n, err
			default:
				return n, err
			}
		default:
			return i, hErrBug
		}
	}
	return i, hErrMoreBytes
endOfHdr:
	h.state = hFIN
	if err := validateHdr(h, buf, hl, strict, lws); err != nil {
		return i + crl, hErrBadChar
	}
	return i + crl, hErrOk
}

// validateHdr applies header-specific structural checks and value
// parsing that must happen as soon as a header is fully parsed: the
// duplicate Content-Length rule (RFC 9112 §6.3 p7 — multiple
// Content-Length headers are only allowed if they all agree), and
// resolving Transfer-Encoding/Upgrade/Connection/Content-Encoding tokens
// into hl's accumulators so multi-valued and repeated headers of these
// types are never lost regardless of Hdrs' capacity.
func validateHdr(h *Hdr, buf []byte, hl *HdrLst, strict bool, lws lwsFlags) *Error {
	if hl == nil {
		return nil
	}
	switch h.Type {
	case HdrHost:
		hl.HostCount++
		if hl.HostCount > 1 {
			return newErrAt(KindBadMessage, "multiple Host headers", h.Val.Get(buf), -1)
		}
	case HdrCLen:
		v, ok := decToU(h.Val.Get(buf))
		if !ok {
			return newErrAt(KindContentLength, "non-numeric Content-Length", h.Val.Get(buf), -1)
		}
		if hl.hasCLen && hl.CLen != v {
			return newErrAt(KindContentLength, "conflicting Content-Length headers", h.Val.Get(buf), -1)
		}
		hl.CLen = v
		hl.hasCLen = true
	case HdrTrEncoding:
		if _, _, err := ParseAllTrEncValues(buf, int(h.Val.Offs), &hl.TrEnc, lws); err != hErrOk && err != hErrEmpty {
			return newErrAt(KindTransferEncoding, "malformed Transfer-Encoding value", h.Val.Get(buf), -1)
		}
	case HdrUpgrade:
		if _, _, err := ParseAllUpgradeValues(buf, int(h.Val.Offs), &hl.Upg, lws); err != hErrOk && err != hErrEmpty {
			return newErrAt(KindInvalidHeader, "malformed Upgrade value", h.Val.Get(buf), -1)
		}
	case HdrConnection:
		if _, _, err := ParseAllConnTokens(buf, int(h.Val.Offs), &hl.Conn, lws); err != hErrOk && err != hErrEmpty {
			return newErrAt(KindInvalidHeader, "malformed Connection value", h.Val.Get(buf), -1)
		}
	case HdrCEncoding:
		if _, _, err := ParseAllCEncValues(buf, int(h.Val.Offs), &hl.CEnc, lws); err != hErrOk && err != hErrEmpty {
			return newErrAt(KindContentEncoding, "malformed Content-Encoding value", h.Val.Get(buf), -1)
		}
	}
	return nil
}

// ParseHeaders parses all headers up to and including the blank line that
// ends the header section. strict and lws are forwarded to ParseHdrLine
// and gate obs-fold/bare-LF tolerance. maxHeaders bounds hl.N to defend
// against unbounded-memory attacks (a message with more headers than that
// is rejected, not silently truncated).
func ParseHeaders(buf []byte, offs int, hl *HdrLst, strict bool, lws lwsFlags, maxHeaders int) (int, hErr) {
	i := offs
	for i < len(buf) {
		var h *Hdr
		if hl.N < len(hl.Hdrs) {
			h = &hl.Hdrs[hl.N]
		} else {
			h = &hl.hdr
		}
		n, err := ParseHdrLine(buf, i, h, hl, strict, lws)
		switch err {
		case hErrOk:
			hl.PFlags.Set(h.Type)
			hl.setHdr(h)
			if h == &hl.hdr {
				hl.hdr.Reset()
			}
			i = n
			hl.N++
			if maxHeaders > 0 && hl.N > maxHeaders {
				return i, hErrBadChar
			}
			continue
		case hErrEmpty:
			if hl.N > 0 {
				return n, hErrOk
			}
			return n, hErrEmpty
		default:
			return n, err
		}
	}
	return i, hErrMoreBytes
}
