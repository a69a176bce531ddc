package httpwire

// MessageHead is the fully parsed start-line + header section of one
// HTTP/1.x message, plus the derived fields needed to frame and decode
// its body (RFC 9112 §6).
type MessageHead struct {
	FirstLine
	Hdrs HdrLst

	// BodyLen is the Content-Length value, valid only when HasCLen is
	// true.
	BodyLen uint64
	HasCLen bool
	// Chunked is true when the final Transfer-Encoding coding is
	// "chunked" -- the only body-framing Transfer-Encoding defines.
	Chunked bool
	// ShouldClose reports whether the connection must be closed after
	// this message completes (RFC 9112 §9.6): an explicit
	// "Connection: close", or an HTTP/1.0 message without
	// "Connection: keep-alive". It is derived from the version and the
	// Connection header only; EOF-framed bodies do not set it.
	ShouldClose bool
	// WantsUpgrade reports whether this message asks to switch
	// protocols: Connection contains "upgrade" and an Upgrade header is
	// present (RFC 9110 §7.8).
	WantsUpgrade bool
	// ExpectContinue reports whether a request carries
	// "Expect: 100-continue".
	ExpectContinue bool
}

func (mh *MessageHead) Reset() {
	hdrs := mh.Hdrs
	*mh = MessageHead{}
	hdrs.Reset()
	mh.Hdrs = hdrs
}

// finalize computes the derived fields once the header section is fully
// parsed. isRequest selects request-only rules (Expect, no EOF-delimited
// bodies); mh.Major/mh.Minor must already hold the parsed HTTP version.
func (mh *MessageHead) finalize(buf []byte, isRequest bool) *Error {
	if mh.Hdrs.hasCLen {
		mh.BodyLen = mh.Hdrs.CLen
		mh.HasCLen = true
	}
	mh.Chunked = mh.Hdrs.TrEnc.LastIsChunked()
	if mh.Hdrs.TrEnc.N > 0 && mh.HasCLen {
		// RFC 9112 6.1 p10: a message with both a Transfer-Encoding and a
		// Content-Length must be treated as invalid framing.
		return newErr(KindBadMessage, "both Content-Length and Transfer-Encoding present")
	}
	if isRequest && mh.Hdrs.TrEnc.N > 0 && !mh.Chunked {
		// A request body framed by Transfer-Encoding must apply
		// chunked as the final coding; any other arrangement leaves no
		// reliable way to find the end of the body.
		return newErr(KindBadMessage, "Transfer-Encoding present without chunked as the final coding")
	}

	httpOldVersion := mh.Major == 1 && mh.Minor == 0

	switch {
	case mh.Hdrs.Conn.Close():
		mh.ShouldClose = true
	case httpOldVersion && !mh.Hdrs.Conn.KeepAlive():
		mh.ShouldClose = true
	}

	if mh.Hdrs.Conn.Upgrade() && mh.Hdrs.PFlags.Test(HdrUpgrade) {
		mh.WantsUpgrade = true
	}

	if isRequest {
		if e := mh.Hdrs.GetHdr(HdrExpect); e != nil {
			if equalsFold(e.Val.Get(buf), []byte("100-continue")) {
				mh.ExpectContinue = true
			}
		}
		if h := mh.Hdrs.GetHdr(HdrHost); h == nil && mh.Major >= 1 && mh.Minor >= 1 {
			return newErr(KindBadMessage, "missing required Host header")
		} else if h != nil {
			if err := validateHost(h.Val.Get(buf)); err != nil {
				return err
			}
		}
	}
	return nil
}

// ConnectionTokens returns the case-folded Connection header token list
// (e.g. ["keep-alive"], ["close"], ["upgrade"]), or nil if the message
// carried no Connection header. buf must be the same buffer the message
// was parsed from.
func (mh *MessageHead) ConnectionTokens(buf []byte) []string {
	if mh.Hdrs.Conn.N == 0 {
		return nil
	}
	out := make([]string, 0, mh.Hdrs.Conn.N)
	for i := 0; i < mh.Hdrs.Conn.N && i < len(mh.Hdrs.Conn.Vals); i++ {
		name := mh.Hdrs.Conn.Vals[i].Val.Name().Get(buf)
		lower := make([]byte, len(name))
		for j, c := range name {
			if c >= 'A' && c <= 'Z' {
				c += 'a' - 'A'
			}
			lower[j] = c
		}
		out = append(out, string(lower))
	}
	return out
}

func equalsFold(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// validateHost applies the minimal structural checks RFC 9112 §3.2
// requires of a Host header: non-empty, and no bytes a URI authority
// could never contain (whitespace, control bytes).
func validateHost(v []byte) *Error {
	if len(v) == 0 {
		return newErrAt(KindInvalidHeader, "empty Host header", v, -1)
	}
	for _, c := range v {
		if c < 0x21 || c == 0x7f {
			return newErrAt(KindInvalidHeader, "invalid byte in Host header", v, -1)
		}
	}
	return nil
}
