package httpwire

// FirstLine holds the parsed request-line or status-line of a message.
// Exactly one of the request fields (Method/Target) or the response fields
// (StatusCode/Reason) is populated, depending on whether ParseRequestLine
// or ParseStatusLine filled it.
type FirstLine struct {
	// request fields
	MethodNo Method
	Method   PField
	Target   PField // raw request-target, unparsed
	// response fields
	Status     uint16
	StatusCode PField
	Reason     PField
	// common
	Version PField // e.g. "HTTP/1.1"
	Major   uint8
	Minor   uint8

	state flState
}

type flState uint8

const (
	flInit flState = iota
	flReqMethod
	flReqTarget
	flReqVersion
	flRplVersion
	flRplStatus
	flRplReason
	flCRLF
	flFIN
)

// Reset re-initializes the first line for reuse.
func (fl *FirstLine) Reset() { *fl = FirstLine{} }

// Empty reports whether parsing of the first line has not started yet;
// Parsed reports whether it has been parsed completely.
func (fl *FirstLine) Empty() bool  { return fl.state == flInit }
func (fl *FirstLine) Parsed() bool { return fl.state == flFIN }

// httpVersionPrefix is the literal "HTTP/" token every version string
// starts with.
var httpVersionPrefix = []byte("HTTP/")

// parseVersion parses "HTTP/" DIGIT "." DIGIT starting at i (strict single
// digit major/minor, matching RFC 9112 §2.3's grammar exactly -- no
// multi-digit versions are defined for HTTP/1.x); for major version 1 the
// minor version must be 0 or 1. Returns the offset right after the minor
// digit.
func parseVersion(buf []byte, i int) (int, uint8, uint8, hErr) {
	if len(buf)-i < 8 {
		if len(buf)-i >= len(httpVersionPrefix) {
			// enough to tell it's not "HTTP/" at all
			for k := 0; k < len(httpVersionPrefix); k++ {
				if buf[i+k] != httpVersionPrefix[k] {
					return i, 0, 0, hErrBadChar
				}
			}
		}
		return i, 0, 0, hErrMoreBytes
	}
	for k := 0; k < len(httpVersionPrefix); k++ {
		if buf[i+k] != httpVersionPrefix[k] {
			return i, 0, 0, hErrBadChar
		}
	}
	j := i + len(httpVersionPrefix)
	if buf[j] < '0' || buf[j] > '9' {
		return j, 0, 0, hErrBadChar
	}
	major := buf[j] - '0'
	j++
	if buf[j] != '.' {
		return j, 0, 0, hErrBadChar
	}
	j++
	if buf[j] < '0' || buf[j] > '9' {
		return j, 0, 0, hErrBadChar
	}
	minor := buf[j] - '0'
	if major == 1 && minor > 1 {
		return j, 0, 0, hErrBadChar
	}
	j++
	return j, major, minor, hErrOk
}

// skipTargetChars advances i over request-target bytes: anything but SP,
// CR, LF and the C0 control range (DEL is allowed through on the wire and
// rejected later by url.go's stricter validation, matching how the teacher
// defers URI validation to a later layer).
func skipTargetChars(buf []byte, i int) int {
	for i < len(buf) {
		c := buf[i]
		if c == ' ' || c == '\r' || c == '\n' || c < 0x20 {
			break
		}
		i++
	}
	return i
}

// ParseRequestLine parses a request-line: method SP request-target SP
// HTTP-version CRLF. See ParseHeaders for the resumption contract: on
// hErrMoreBytes the caller re-invokes with more data appended, resuming at
// the returned offset.
func ParseRequestLine(buf []byte, offs int, fl *FirstLine, lws lwsFlags) (int, hErr) {
	i := offs
	switch fl.state {
	case flInit:
		fl.Method.Set(i, i)
		fl.state = flReqMethod
		fallthrough
	case flReqMethod:
		i = skipToken(buf, i)
		if i >= len(buf) {
			return i, hErrMoreBytes
		}
		if buf[i] != ' ' {
			return i, hErrBadChar
		}
		fl.Method.Extend(i)
		if fl.Method.Empty() {
			return i, hErrBadChar
		}
		fl.MethodNo = GetMethodNo(fl.Method.Get(buf))
		i++
		fl.Target.Set(i, i)
		fl.state = flReqTarget
		fallthrough
	case flReqTarget:
		i = skipTargetChars(buf, i)
		if i >= len(buf) {
			return i, hErrMoreBytes
		}
		if buf[i] != ' ' {
			return i, hErrBadChar
		}
		fl.Target.Extend(i)
		if fl.Target.Empty() {
			return i, hErrBadChar
		}
		i++
		fl.Version.Set(i, i)
		fl.state = flReqVersion
		fallthrough
	case flReqVersion:
		end, major, minor, err := parseVersion(buf, i)
		if err == hErrMoreBytes {
			return i, hErrMoreBytes
		}
		if err != hErrOk {
			return end, err
		}
		fl.Version.Extend(end)
		fl.Major, fl.Minor = major, minor
		i = end
		fl.state = flCRLF
		fallthrough
	case flCRLF:
		end, _, err := skipCRLF(buf, i, lws&lwsAllowBareLF != 0)
		if err != hErrOk {
			return end, err
		}
		i = end
	}
	fl.state = flFIN
	return i, hErrOk
}

// ParseStatusLine parses a status-line: HTTP-version SP status-code SP
// reason-phrase CRLF.
func ParseStatusLine(buf []byte, offs int, fl *FirstLine, lws lwsFlags) (int, hErr) {
	i := offs
	switch fl.state {
	case flInit:
		fl.Version.Set(i, i)
		fl.state = flRplVersion
		fallthrough
	case flRplVersion:
		end, major, minor, err := parseVersion(buf, i)
		if err == hErrMoreBytes {
			return i, hErrMoreBytes
		}
		if err != hErrOk {
			return end, err
		}
		fl.Version.Extend(end)
		fl.Major, fl.Minor = major, minor
		i = end
		if i >= len(buf) {
			return i, hErrMoreBytes
		}
		if buf[i] != ' ' {
			return i, hErrBadChar
		}
		i++
		fl.StatusCode.Set(i, i)
		fl.state = flRplStatus
		fallthrough
	case flRplStatus:
		if len(buf)-i < 4 {
			return i, hErrMoreBytes
		}
		if buf[i+3] != ' ' ||
			buf[i] < '0' || buf[i] > '9' ||
			buf[i+1] < '0' || buf[i+1] > '9' ||
			buf[i+2] < '0' || buf[i+2] > '9' {
			return i, hErrBadChar
		}
		fl.StatusCode.Set(i, i+3)
		fl.Status = uint16(buf[i]-'0')*100 + uint16(buf[i+1]-'0')*10 + uint16(buf[i+2]-'0')
		i += 4
		fl.Reason.Set(i, i)
		fl.state = flRplReason
		fallthrough
	case flRplReason:
		end, crl, err := skipLine(buf, i, lws&lwsAllowBareLF != 0)
		if err != hErrOk {
			return end, err
		}
		fl.Reason.Extend(end - crl)
		i = end
	}
	fl.state = flFIN
	return i, hErrOk
}
