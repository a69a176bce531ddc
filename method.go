package httpwire

import (
	"github.com/intuitivelabs/bytescase"
)

// Method is the type used to hold the request method as a small numeric
// constant, avoiding string comparisons on the hot path.
type Method uint8

// Method values. MOther covers any token not in the well-known list (still
// a syntactically valid method per RFC 9110 §9.1, e.g. a WebDAV verb).
const (
	MUndef Method = iota
	MGet
	MHead
	MPost
	MPut
	MDelete
	MConnect
	MOptions
	MTrace
	MPatch
	MOther // must be last
)

// method2Name translates a numeric Method to its ASCII name.
var method2Name = [MOther + 1][]byte{
	MUndef:   []byte(""),
	MGet:     []byte("GET"),
	MHead:    []byte("HEAD"),
	MPost:    []byte("POST"),
	MPut:     []byte("PUT"),
	MDelete:  []byte("DELETE"),
	MConnect: []byte("CONNECT"),
	MOptions: []byte("OPTIONS"),
	MTrace:   []byte("TRACE"),
	MPatch:   []byte("PATCH"),
	MOther:   []byte("OTHER"),
}

// Name returns the canonical ASCII method name, "" for MUndef (or any out
// of range value) and "OTHER" for MOther (use the Method field of the raw
// request line for the actual name).
func (m Method) Name() []byte {
	if m > MOther {
		return method2Name[MUndef]
	}
	return method2Name[m]
}

// String implements fmt.Stringer.
func (m Method) String() string {
	return string(m.Name())
}

const (
	mthBitsLen   uint = 2 // re-run the GetMethodNo tests if this changes
	mthBitsFChar uint = 3
)

type mth2Type struct {
	n []byte
	t Method
}

var mthNameLookup [1 << (mthBitsLen + mthBitsFChar)][]mth2Type

func hashMthName(n []byte) int {
	const (
		mC = (1 << mthBitsFChar) - 1
		mL = (1 << mthBitsLen) - 1
	)
	return (int(bytescase.ByteToLower(n[0])) & mC) |
		((len(n) & mL) << mthBitsFChar)
}

func init() {
	for i := MUndef + 1; i < MOther; i++ {
		h := hashMthName(method2Name[i])
		mthNameLookup[h] = append(mthNameLookup[h], mth2Type{method2Name[i], i})
	}
}

// GetMethodNo converts an ASCII method token (as received on the wire) to
// the corresponding Method. It does not validate that buf is a well formed
// token; the first-line parser rejects non-token bytes before calling
// this.
func GetMethodNo(buf []byte) Method {
	if len(buf) == 0 {
		return MOther
	}
	i := hashMthName(buf)
	for _, m := range mthNameLookup[i] {
		if bytescase.CmpEq(buf, m.n) {
			return m.t
		}
	}
	return MOther
}
