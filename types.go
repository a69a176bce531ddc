// Package httpwire implements an incremental, streaming HTTP/1.x message
// parser suitable for use inside a general purpose HTTP client or server.
package httpwire

// OffsT is the type used for offsets and lengths inside PField.
type OffsT uint32

// PField is a parsed field: an offset and a length inside some buffer.
// It never copies bytes; Get() returns a slice view into the original
// buffer. Zero value is the empty field.
type PField struct {
	Offs OffsT
	Len  OffsT
}

// Set sets a PField to point to [start:end).
// end points to the first byte after the end of the field.
func (p *PField) Set(start, end int) {
	if end < start {
		panic("httpwire: invalid PField range")
	}
	p.Offs = OffsT(start)
	p.Len = OffsT(end - start)
}

// Reset sets a PField to the empty value.
func (p *PField) Reset() {
	*p = PField{}
}

// Extend "grows" a PField to a new end offset.
func (p *PField) Extend(newEnd int) {
	if newEnd < int(p.Offs) {
		panic("httpwire: invalid PField end offset")
	}
	p.Len = OffsT(newEnd) - p.Offs
}

// Empty returns true if the PField has zero length.
func (p PField) Empty() bool {
	return p.Len == 0
}

// EndOffs returns the offset of the first byte after the field.
func (p PField) EndOffs() int {
	return int(p.Offs) + int(p.Len)
}

// OffsIn returns true if offs falls inside the field.
func (p PField) OffsIn(offs int) bool {
	return offs >= int(p.Offs) && offs < p.EndOffs()
}

// Get returns the byte slice inside buf corresponding to p.
func (p PField) Get(buf []byte) []byte {
	return buf[p.Offs : p.Offs+p.Len]
}
