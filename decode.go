package httpwire

import (
	"bytes"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Decoder undoes one Content-Encoding on a body. Write feeds encoded bytes
// in; the identity/passthrough decoder forwards them to the wrapped Sink
// at once, while the compressed codings buffer their input and write the
// decompressed output to the Sink when Close is called. Close signals
// end-of-input; it passes err (or a decompression error) on to the wrapped
// Sink's Close and returns what that call returns.
type Decoder interface {
	Write(p []byte) (int, error)
	Close(err error) error
}

// passthroughDecoder forwards bytes unmodified; used for "identity" and,
// for robustness, any coding this package does not recognize (CEncOtherF)
// rather than failing the whole message outright -- a caller inspecting
// PContentEncoding can still see the raw coding name and decide to reject
// it itself.
type passthroughDecoder struct {
	sink Sink
}

func (d *passthroughDecoder) Write(p []byte) (int, error) { return d.sink.Write(p) }
func (d *passthroughDecoder) Close(err error) error       { return d.sink.Close(err) }

// deflateDecoder buffers all compressed input then inflates it in one
// shot on Close; RFC 9110 §8.4.1.2 "deflate" is, confusingly, the raw
// DEFLATE algorithm wrapped in a zlib header for some senders and bare for
// others -- sniffDeflateReader below picks the right reader.
type deflateDecoder struct {
	sink Sink
	buf  bytes.Buffer
}

func (d *deflateDecoder) Write(p []byte) (int, error) { return d.buf.Write(p) }

func (d *deflateDecoder) Close(err error) error {
	if err != nil {
		return d.sink.Close(err)
	}
	r := sniffDeflateReader(d.buf.Bytes())
	defer r.Close()
	_, cErr := io.Copy(writerFunc(d.sink.Write), r)
	return d.sink.Close(cErr)
}

// sniffDeflateReader picks a zlib or raw-flate reader by inspecting the
// first two bytes, the same heuristic widely used by HTTP clients since
// RFC 7230 never pinned down which "deflate" senders actually produce.
func sniffDeflateReader(b []byte) io.ReadCloser {
	if len(b) >= 2 && b[0]&0x0f == 0x08 && (uint16(b[0])<<8+uint16(b[1]))%31 == 0 {
		if zr, err := zlib.NewReader(bytes.NewReader(b)); err == nil {
			return zr
		}
	}
	return flate.NewReader(bytes.NewReader(b))
}

type gzipDecoder struct {
	sink Sink
	buf  bytes.Buffer
}

func (d *gzipDecoder) Write(p []byte) (int, error) { return d.buf.Write(p) }

func (d *gzipDecoder) Close(err error) error {
	if err != nil {
		return d.sink.Close(err)
	}
	gr, gErr := gzip.NewReader(bytes.NewReader(d.buf.Bytes()))
	if gErr != nil {
		return d.sink.Close(gErr)
	}
	defer gr.Close()
	_, cErr := io.Copy(writerFunc(d.sink.Write), gr)
	return d.sink.Close(cErr)
}

type brotliDecoder struct {
	sink Sink
	buf  bytes.Buffer
}

func (d *brotliDecoder) Write(p []byte) (int, error) { return d.buf.Write(p) }

func (d *brotliDecoder) Close(err error) error {
	if err != nil {
		return d.sink.Close(err)
	}
	br := brotli.NewReader(bytes.NewReader(d.buf.Bytes()))
	_, cErr := io.Copy(writerFunc(d.sink.Write), br)
	return d.sink.Close(cErr)
}

type zstdDecoder struct {
	sink Sink
	buf  bytes.Buffer
}

func (d *zstdDecoder) Write(p []byte) (int, error) { return d.buf.Write(p) }

func (d *zstdDecoder) Close(err error) error {
	if err != nil {
		return d.sink.Close(err)
	}
	zr, zErr := zstd.NewReader(bytes.NewReader(d.buf.Bytes()))
	if zErr != nil {
		return d.sink.Close(zErr)
	}
	defer zr.Close()
	_, cErr := io.Copy(writerFunc(d.sink.Write), zr)
	return d.sink.Close(cErr)
}

type writerFunc func(p []byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }

// NewDecoder returns the Decoder for a single Content-Encoding coding,
// wrapping sink as the final destination. Codings are applied in the
// order they were sent and must be undone in reverse (RFC 9110 §8.4.1);
// core.buildDecoder in parser.go chains one Decoder per coding, innermost
// last.
func NewDecoder(enc CEncT, sink Sink) Decoder {
	switch enc {
	case CEncGzipF:
		return &gzipDecoder{sink: sink}
	case CEncDeflateF:
		return &deflateDecoder{sink: sink}
	case CEncBrF:
		return &brotliDecoder{sink: sink}
	case CEncZstdF:
		return &zstdDecoder{sink: sink}
	default:
		return &passthroughDecoder{sink: sink}
	}
}
