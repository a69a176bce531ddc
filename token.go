package httpwire

// PToken is a parsed token, with enough internal state to resume parsing
// across buffer boundaries. Generic shape: token ["/" suffix] *(";" param
// "=" val). Used for Connection, Transfer-Encoding, Upgrade and
// Content-Encoding values.
type PToken struct {
	V         PField // complete token (name/suffix)
	SepOffs   OffsT  // '/' offset, or 0 if no suffix
	Params    PField // complete parameter string (";p1=v1;p2=v2")
	ParamsNo  uint
	LastParam PTokParam
	ParamLst  []PTokParam // optional slice to collect all parameters into

	state tokState
	soffs int
}

type tokState uint8

const (
	tokInit tokState = iota
	tokName
	tokWS
	tokFNxt
	tokFParam
	tokFIN
	tokERR
)

// Reset re-initializes pt, keeping any ParamLst backing array.
func (pt *PToken) Reset() {
	lst := pt.ParamLst
	*pt = PToken{}
	pt.ParamLst = lst
}

func (pt *PToken) Empty() bool  { return pt.state == tokInit }
func (pt *PToken) Parsed() bool { return pt.state == tokFIN || pt.state == tokWS || pt.state == tokFNxt }

// Name returns the name part of the token (before '/').
func (pt *PToken) Name() PField {
	if pt.SepOffs != 0 {
		var n PField
		n.Set(int(pt.V.Offs), int(pt.SepOffs))
		return n
	}
	return pt.V
}

// Suffix returns the part of the token after '/', if any.
func (pt *PToken) Suffix() PField {
	if pt.SepOffs != 0 {
		var s PField
		s.Set(int(pt.SepOffs)+1, pt.V.EndOffs())
		return s
	}
	return PField{}
}

// PTokParam is a single ";name=value" token parameter.
type PTokParam struct {
	All  PField // "name=value" or "name"
	Name PField
	Val  PField
	state paramState
}

type paramState uint8

const (
	paramInit paramState = iota
	paramName
	paramFEq
	paramFVal
	paramVal
	paramFSemi
	paramFNxt
	paramQuotedVal
	paramERR
	paramFIN
)

func (pt *PTokParam) Reset() { *pt = PTokParam{} }
func (pt *PTokParam) Empty() bool { return pt.All.Empty() }

// token-list parsing flags.
const (
	tokNoneF        uint = 0
	tokCommaSepF    uint = 1 << iota // comma separated list
	tokSpSepF                        // whitespace separated list
	tokAllowSlashF                   // allow '/' inside the token (e.g. "h2c"/"HTTP/2.0")
	tokAllowParamsF                  // allow ";param=val" after the token
	tokInputEndF                     // caller guarantees buf holds the whole input
)

// ParseTokenLst iterates through a comma- and/or space-separated token
// list, one token per call. lws controls how embedded line-ending
// whitespace is tolerated (obs-fold / bare LF); the header parser passes
// the same lws it used for the message's header lines — see headers.go.
//
// Returns (next, hErrOk) when the token list and the header line both
// ended; (next, hErrMoreValues) when this token is done but a separator
// indicates another follows; (next, hErrMoreBytes) when more input is
// needed (resume at next); any other hErr is a real parse failure at the
// returned offset.
func ParseTokenLst(buf []byte, offs int, ptok *PToken, flags uint, lws lwsFlags) (int, hErr) {
	if ptok.state == tokFIN {
		return offs, hErrOk
	}
	s := ptok.soffs
	i := offs
	var n, crl int
	var err, retOkErr hErr

	for i < len(buf) {
		c := buf[i]
		switch ptok.state {
		case tokInit:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				if err == hErrMoreBytes {
					i = n
					goto moreBytes
				}
				ptok.state = tokERR
				return n, err
			case ',':
				if flags&tokCommaSepF != 0 {
					i++
					continue
				}
				ptok.state = tokERR
				return i, hErrBadChar
			case '(', ')', '<', '>', '@', ';', ':', '\\', '"', '[', ']', '?', '=', '{', '}', '/':
				ptok.state = tokERR
				return i, hErrBadChar
			default:
				if !isTokenChar(c) {
					ptok.state = tokERR
					return i, hErrBadChar
				}
				s = i
				ptok.V.Set(i, i)
				ptok.state = tokName
			}
		case tokName:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				ptok.state = tokWS
				ptok.V.Extend(i)
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				ptok.state = tokERR
				return n, err
			case ',':
				if flags&tokCommaSepF != 0 {
					ptok.V.Extend(i)
					ptok.state = tokFNxt
				} else {
					ptok.state = tokERR
					return i, hErrBadChar
				}
			case '(', ')', '<', '>', '@', ':', '\\', '"', '[', ']', '?', '=', '{', '}':
				ptok.state = tokERR
				return i, hErrBadChar
			case '/':
				if flags&tokAllowSlashF == 0 {
					return i, hErrBadChar
				}
				ptok.SepOffs = OffsT(i)
			case ';':
				if flags&tokAllowParamsF == 0 {
					return i, hErrBadChar
				}
				ptok.V.Extend(i)
				ptok.state = tokFParam
			default:
				if !isTokenChar(c) {
					ptok.state = tokERR
					return i, hErrBadChar
				}
			}
		case tokWS:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				ptok.state = tokERR
				return n, err
			case ',':
				if flags&tokCommaSepF != 0 {
					ptok.state = tokFNxt
				} else {
					ptok.state = tokERR
					return i, hErrBadChar
				}
			case ';':
				if flags&tokAllowParamsF == 0 {
					return i, hErrBadChar
				}
				ptok.state = tokFParam
			default:
				if flags&tokSpSepF != 0 {
					goto moreValues
				}
				ptok.state = tokERR
				return i, hErrBadChar
			}
		case tokFNxt:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				ptok.state = tokERR
				return n, err
			case ',':
				if flags&tokCommaSepF == 0 {
					ptok.state = tokERR
					return i, hErrBadChar
				}
			case '(', ')', '<', '>', '@', ';', ':', '\\', '"', '[', ']', '?', '=', '{', '}', '/':
				ptok.state = tokERR
				return i, hErrBadChar
			default:
				goto moreValues
			}
		case tokFParam:
			n, err = ParseTokenParam(buf, i, &ptok.LastParam, flags, lws)
			if err == hErrMoreBytes {
				i = n
				goto moreBytes
			}
			if !ptok.LastParam.All.Empty() {
				if len(ptok.ParamLst) > int(ptok.ParamsNo) {
					ptok.ParamLst[ptok.ParamsNo] = ptok.LastParam
				}
				ptok.ParamsNo++
				if ptok.Params.Empty() {
					ptok.Params = ptok.LastParam.All
				} else {
					ptok.Params.Extend(int(ptok.LastParam.All.Offs) + int(ptok.LastParam.All.Len))
				}
			}
			if err == hErrMoreValues {
				i = n
				continue
			}
			if err == hErrOk {
				ptok.state = tokFNxt
				i = n + 1
				if n >= len(buf) {
					goto moreBytes
				}
				continue
			}
			if err == hErrEOH {
				goto endOfHdr
			}
			ptok.state = tokERR
			return n, err
		default:
			return i, hErrBug
		}
		i++
	}
moreBytes:
	if flags&tokInputEndF != 0 {
		switch ptok.state {
		case tokInit, tokWS, tokFNxt, tokFParam:
		case tokName:
			ptok.V.Extend(i)
		default:
			ptok.state = tokERR
			return i, hErrBug
		}
		crl = 0
		ptok.soffs = s
		n = len(buf)
		retOkErr = hErrOk
		goto endOfHdr
	}
	ptok.soffs = s
	return i, hErrMoreBytes
moreValues:
	retOkErr = hErrMoreValues
	n = i
	crl = 0
	switch ptok.state {
	case tokWS, tokFNxt:
	default:
		ptok.state = tokERR
		return n + crl, hErrBug
	}
	ptok.soffs = 0
	return n + crl, retOkErr
endOfHdr:
	switch ptok.state {
	case tokInit:
		return n + crl, hErrEmpty
	case tokName, tokWS, tokFNxt, tokFParam:
		ptok.state = tokFIN
	default:
		ptok.state = tokERR
		return n + crl, hErrBug
	}
	ptok.soffs = 0
	return n + crl, retOkErr
}

// SkipQuoted skips a quoted-string starting right after the opening '"',
// handling backslash escapes, and returns the offset right after the
// closing '"'.
func SkipQuoted(buf []byte, offs int) (int, hErr) {
	i := offs
	for i < len(buf) {
		c := buf[i]
		switch c {
		case '"':
			return i + 1, hErrOk
		case '\\':
			if i+1 < len(buf) {
				if buf[i+1] == '\r' || buf[i+1] == '\n' {
					return i + 1, hErrBadChar
				}
				i += 2
				continue
			}
			goto moreBytes
		case '\n', '\r', 0x7f:
			return i, hErrBadChar
		default:
			if c < 0x21 && c != ' ' && c != '\t' {
				return i, hErrBadChar
			}
		}
		i++
	}
moreBytes:
	return i, hErrMoreBytes
}

// ParseTokenParam parses "name[=value][;]" where value is a token or a
// quoted string. See ParseTokenLst for the retOkErr contract
// (hErrMoreValues / hErrOk / hErrEOH / hErrMoreBytes).
func ParseTokenParam(buf []byte, offs int, param *PTokParam, flags uint, lws lwsFlags) (int, hErr) {
	if param.state == paramFIN {
		return offs, hErrOk
	}
	i := offs
	var n, crl int
	var err, retOkErr hErr

	for i < len(buf) {
		c := buf[i]
		n = 0
		switch param.state {
		case paramInit, paramFNxt:
			wasNxt := param.state == paramFNxt
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				return n, err
			case ';':
				// allow empty parameters
			case '(', ')', '<', '>', '@', ':', '\\', '"', '[', ']', '?', '=', '{', '}', '/', ',':
				param.state = paramERR
				return i, hErrBadChar
			default:
				if !isTokenChar(c) {
					param.state = paramERR
					return i, hErrBadChar
				}
				if wasNxt {
					goto moreValues
				}
				param.state = paramName
				param.Name.Set(i, i)
				param.All.Set(i, i)
			}
		case paramName:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				param.state = paramFEq
				param.Name.Extend(i)
				param.All.Extend(i)
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				return n, err
			case ';':
				param.Name.Extend(i)
				param.All.Extend(i)
				param.state = paramFNxt
			case '=':
				param.Name.Extend(i)
				param.All.Extend(i + 1)
				param.state = paramFVal
			case ',':
				if flags&tokCommaSepF != 0 {
					param.Name.Extend(i)
					param.All.Extend(i)
					param.state = paramFIN
					return i, hErrOk
				}
				param.state = paramERR
				return i, hErrBadChar
			case '(', ')', '<', '>', '@', ':', '\\', '"', '[', ']', '?', '{', '}', '/':
				param.state = paramERR
				return i, hErrBadChar
			default:
				if !isTokenChar(c) {
					param.state = paramERR
					return i, hErrBadChar
				}
			}
		case paramFEq:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				return n, err
			case ';':
				param.state = paramFNxt
			case '=':
				param.state = paramFVal
			case ',':
				if flags&tokCommaSepF != 0 {
					param.state = paramFIN
					return i, hErrOk
				}
				param.state = paramERR
				return i, hErrBadChar
			default:
				param.state = paramERR
				return i, hErrBadChar
			}
		case paramFVal:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				return n, err
			case ';':
				param.Val.Set(i, i)
				param.All.Extend(i)
				param.state = paramFNxt
			case ',':
				if flags&tokCommaSepF != 0 {
					param.Val.Set(i, i)
					param.state = paramFIN
					return i, hErrOk
				}
				param.state = paramERR
				return i, hErrBadChar
			case '"':
				param.Val.Set(i, i)
				param.All.Extend(i)
				param.state = paramQuotedVal
			case '(', ')', '<', '>', '@', ':', '\\', '[', ']', '?', '=', '{', '}', '/':
				param.state = paramERR
				return i, hErrBadChar
			default:
				if !isTokenChar(c) {
					param.state = paramERR
					return i, hErrBadChar
				}
				param.state = paramVal
				param.Val.Set(i, i)
				param.All.Extend(i)
			}
		case paramVal:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				param.state = paramFSemi
				param.Val.Extend(i)
				param.All.Extend(i)
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				return n, err
			case ';':
				param.Val.Extend(i)
				param.All.Extend(i)
				param.state = paramFNxt
			case ',':
				if flags&tokCommaSepF != 0 {
					param.Val.Extend(i)
					param.All.Extend(i)
					param.state = paramFIN
					return i, hErrOk
				}
				param.state = paramERR
				return i, hErrBadChar
			case '(', ')', '<', '>', '@', ':', '\\', '"', '[', ']', '?', '=', '{', '}', '/':
				param.state = paramERR
				return i, hErrBadChar
			default:
				if !isTokenChar(c) {
					param.state = paramERR
					return i, hErrBadChar
				}
			}
		case paramQuotedVal:
			n, err = SkipQuoted(buf, i)
			if err == hErrMoreBytes {
				i = n
				goto moreBytes
			}
			if err == hErrOk {
				i = n
				param.Val.Extend(i)
				param.All.Extend(i)
				param.state = paramFSemi
				continue
			}
			return n, err
		case paramFSemi:
			switch c {
			case ' ', '\t', '\n', '\r':
				n, crl, err = skipLWS(buf, i, uint(lws))
				if err == hErrMoreBytes {
					goto moreBytes
				}
				if err == hErrOk {
					i = n
					continue
				}
				if err == hErrEOH {
					goto endOfHdr
				}
				return n, err
			case ';':
				param.state = paramFNxt
			case ',':
				if flags&tokCommaSepF != 0 {
					param.state = paramFIN
					return i, hErrOk
				}
				param.state = paramERR
				return i, hErrBadChar
			default:
				if !isTokenChar(c) {
					param.state = paramERR
					return i, hErrBadChar
				}
				param.state = paramERR
				return i, hErrBadChar
			}
		}
		i++
	}
moreBytes:
	if flags&tokInputEndF != 0 {
		switch param.state {
		case paramInit, paramFNxt, paramFSemi, paramFVal, paramFEq:
		case paramName:
			param.Name.Extend(i)
			param.All.Extend(i)
		case paramVal:
			param.Val.Extend(i)
			param.All.Extend(i)
		case paramQuotedVal:
			return i, hErrMoreBytes
		default:
			return i, hErrBug
		}
		crl = 0
		n = len(buf)
		retOkErr = hErrOk
		goto endOfHdr
	}
	return i, hErrMoreBytes
moreValues:
	retOkErr = hErrMoreValues
	n = i
	crl = 0
	param.state = paramInit
	return n + crl, retOkErr
endOfHdr:
	switch param.state {
	case paramInit:
		return n + crl, hErrEOH
	case paramFNxt, paramName, paramFEq, paramFVal, paramVal, paramFSemi:
		param.state = paramFIN
	default:
		param.state = paramERR
		return n + crl, hErrBug
	}
	return n + crl, hErrEOH
}
