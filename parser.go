package httpwire

import (
	"go.uber.org/zap"
)

// parserState drives the top-level message state machine, mirroring the
// teacher's PMsg/ParseMsg states (MsgFLine/MsgHeaders/MsgBody*/MsgFIN)
// generalized to the request/response split and the decoder chain this
// package adds.
type parserState uint8

const (
	pInit parserState = iota
	pFirstLine
	pHeaders
	pBodyInit
	pBody
	pUpgraded
	pDone
	pErr
)

// core holds everything RequestParser and ResponseParser share: the
// first-line/header state machine, body framing and decoding, and the
// bookkeeping needed to resume a Feed call across an arbitrary split.
type core struct {
	opts      Options
	log       *zap.Logger
	isRequest bool

	state parserState
	head  MessageHead
	body  BodyParser
	sink  Sink
	err   *Error

	// reqMethod is the method of the request a response answers, used to
	// apply the HEAD/CONNECT body-framing exceptions; MUndef if unknown,
	// which is treated as "assume a body may follow" (the safe default).
	reqMethod Method
}

// defaultHdrCap/defaultCodingCap size the backing arrays newCore
// preallocates, mirroring the teacher's own PMsg.hdrs[10]Hdr default --
// enough for ordinary messages without forcing every caller to size their
// own, while still falling back to HdrLst's scratch header / unordered
// bitmask accumulation if a message carries more than this.
const (
	defaultHdrCap    = 32
	defaultCodingCap = 4
)

func newCore(isRequest bool, opts Options, log *zap.Logger) core {
	if log == nil {
		log = zap.NewNop()
	}
	c := core{opts: opts, log: log, isRequest: isRequest}
	c.head.Hdrs.Hdrs = make([]Hdr, defaultHdrCap)
	c.head.Hdrs.TrEnc.Vals = make([]TrEncVal, defaultCodingCap)
	c.head.Hdrs.Upg.Vals = make([]UpgProtoVal, defaultCodingCap)
	c.head.Hdrs.Conn.Vals = make([]ConnTokVal, defaultCodingCap)
	c.head.Hdrs.CEnc.Vals = make([]CEncVal, defaultCodingCap)
	return c
}

// Reset prepares the core (and its MessageHead) for the next message on
// the same connection, e.g. after a keep-alive response completes.
func (c *core) reset() {
	c.head.Reset()
	c.body = BodyParser{}
	c.sink = nil
	c.err = nil
	c.state = pInit
}

// Err returns the parse error that poisoned this parser, if any. Once set
// it is sticky: Feed/FeedEOF always return it without doing further work.
func (c *core) Err() *Error { return c.err }

func (c *core) Done() bool       { return c.state == pDone }
func (c *core) Upgraded() bool   { return c.state == pUpgraded }
func (c *core) Head() *MessageHead { return &c.head }

// feed drives the state machine as far as buf[offs:] allows. It returns
// the offset parsing reached and an hErr: hErrOk once the message is
// complete or the connection was upgraded, hErrMoreBytes when more input is
// needed, and hErrBadChar on failure, with the *Error stored in c.err. The
// public Feed wrappers below turn this into their *Error result.
func (c *core) feed(buf []byte, offs int, sinkFactory Factory) (int, hErr) {
	i := offs
	if c.err != nil {
		return i, hErrBadChar
	}
	for {
		switch c.state {
		case pInit:
			c.state = pFirstLine
			fallthrough
		case pFirstLine:
			var n int
			var err hErr
			fllws := c.opts.lwsFor(!c.isRequest)
			if c.isRequest {
				n, err = ParseRequestLine(buf, i, &c.head.FirstLine, fllws)
			} else {
				n, err = ParseStatusLine(buf, i, &c.head.FirstLine, fllws)
			}
			start := int(c.head.Version.Offs)
			if c.isRequest {
				start = int(c.head.Method.Offs)
			}
			if err == hErrMoreBytes {
				if c.opts.MaxLineSize > 0 && len(buf)-start > c.opts.MaxLineSize {
					return c.fail(n, newErrTooLong(c.opts.MaxLineSize, len(buf)-start)), hErrBadChar
				}
				return n, err
			}
			if err != hErrOk {
				return c.fail(n, newErr(KindBadStatusLine, "malformed start line")), hErrBadChar
			}
			if c.opts.MaxLineSize > 0 && n-start > c.opts.MaxLineSize {
				return c.fail(n, newErrTooLong(c.opts.MaxLineSize, n-start)), hErrBadChar
			}
			if c.isRequest {
				if _, _, e := ClassifyTarget(c.head.Target.Get(buf), c.head.MethodNo, c.opts.Strict); e != nil {
					return c.fail(n, e.(*Error)), hErrBadChar
				}
			}
			c.log.Debug("first line parsed", zap.Bool("request", c.isRequest))
			i = n
			c.state = pHeaders
			fallthrough
		case pHeaders:
			lws := c.opts.lwsFor(!c.isRequest)
			n, err := ParseHeaders(buf, i, &c.head.Hdrs, c.opts.Strict, lws, c.opts.MaxHeaderCount)
			if err == hErrMoreBytes {
				return n, err
			}
			if err != hErrOk && err != hErrEmpty {
				return c.fail(n, newErr(KindBadMessage, "malformed header section")), hErrBadChar
			}
			i = n
			if e := c.head.finalize(buf, c.isRequest); e != nil {
				return c.fail(i, e), hErrBadChar
			}
			c.log.Debug("headers parsed",
				zap.Bool("chunked", c.head.Chunked),
				zap.Bool("hasContentLength", c.head.HasCLen),
				zap.Bool("upgrade", c.head.WantsUpgrade))
			c.state = pBodyInit
			fallthrough
		case pBodyInit:
			if c.head.WantsUpgrade {
				c.log.Debug("switching protocols, handing connection off")
				c.state = pUpgraded
				return i, hErrOk
			}
			mode, length := c.bodyMode()
			sink := c.sink
			if sink == nil {
				if sinkFactory == nil {
					sinkFactory = DefaultFactory()
				}
				sink = sinkFactory()
				c.sink = sink
			}
			dec := c.buildDecoder(sink)
			blws := c.opts.lwsFor(!c.isRequest)
			c.body.Init(mode, length, dec, c.opts.Strict, blws, c.opts.MaxHeaderCount, c.opts.Limit)
			c.log.Debug("body framing selected", zap.Uint8("mode", uint8(mode)))
			c.state = pBody
			fallthrough
		case pBody:
			n, done, err := c.body.Feed(buf, i)
			i = n
			if err == hErrMoreBytes {
				return i, err
			}
			if err != hErrOk {
				kind := KindContentLength
				if c.body.Mode == BodyChunked {
					kind = KindTransferEncoding
				}
				ferr := newErr(kind, "malformed body framing")
				c.body.dec.Close(ferr)
				return c.fail(i, ferr), hErrBadChar
			}
			if !done {
				return i, hErrMoreBytes
			}
			if !c.isRequest && c.head.Status >= 100 && c.head.Status < 200 {
				// Informational responses are not final; the real
				// response still follows on the same connection.
				c.log.Debug("informational response consumed, awaiting final response",
					zap.Uint16("status", c.head.Status))
				c.reset()
				continue
			}
			c.state = pDone
			return i, hErrOk
		case pDone:
			// The current message is fully parsed; the caller must
			// Reset before feeding the next one (or stop, if
			// Head().ShouldClose said the connection is ending). More
			// bytes showing up here means the caller skipped Reset.
			if i < len(buf) {
				return c.fail(i, newErr(KindBadMessage, "Feed called again before Reset for the next message")), hErrBadChar
			}
			return i, hErrOk
		case pUpgraded:
			return i, hErrOk
		case pErr:
			return i, hErrBadChar
		}
	}
}

func (c *core) fail(offs int, e *Error) int {
	c.err = e
	c.state = pErr
	return offs
}

// feedEOF signals no more bytes will ever arrive, translating that into
// the right outcome for whichever body framing (if any) is in flight.
func (c *core) feedEOF() *Error {
	if c.err != nil {
		return c.err
	}
	switch c.state {
	case pInit, pFirstLine, pHeaders:
		return c.mkErr(newErr(KindBadMessage, "connection closed before message head was complete"))
	case pBody:
		if e := c.body.FeedEOF(); e != nil {
			return c.mkErr(e)
		}
		c.state = pDone
		return nil
	case pBodyInit:
		// headers just finished parsing with no body bytes seen yet;
		// BodyUntilEOF with a zero-length body is legal (e.g. a
		// connection closed immediately after headers).
		if mode, _ := c.bodyMode(); mode == BodyUntilEOF {
			c.state = pDone
			return nil
		}
		return c.mkErr(newErr(KindContentLength, "connection closed before body was received"))
	default:
		return nil
	}
}

func (c *core) mkErr(e *Error) *Error {
	c.err = e
	c.state = pErr
	return e
}

// bodyMode implements the body-framing selection table (spec.md §4.2):
// the bodiless responses (1xx, 204, 304, HEAD) come first, then
// Transfer-Encoding (if chunked is the final coding) beats Content-Length,
// which beats the request/response defaults.
func (c *core) bodyMode() (BodyMode, int64) {
	if !c.isRequest && !c.opts.ResponseWithBody {
		if (c.head.Status > 99 && c.head.Status < 200) ||
			c.head.Status == 204 || c.head.Status == 304 ||
			c.reqMethod == MHead {
			return BodyNone, 0
		}
	}
	if c.head.Chunked {
		return BodyChunked, 0
	}
	if c.head.Hdrs.TrEnc.N > 0 && !c.head.Chunked {
		// Transfer-Encoding present but chunked is not the final
		// coding: finalize already rejects this for requests; for a
		// response, read until the connection closes.
		return BodyUntilEOF, 0
	}
	if c.head.HasCLen {
		return BodyLength, int64(c.head.BodyLen)
	}
	if c.isRequest {
		return BodyNone, 0
	}
	// Response, no length indicator in the headers: read until the
	// connection closes when ReadUntilEOF is set, or for a 2xx response to
	// CONNECT (RFC 9110 §9.3.6) -- a CONNECT tunnel has no other framing to
	// speak of. Otherwise the response has no body.
	if c.opts.ReadUntilEOF || (c.reqMethod == MConnect && c.head.Status/100 == 2) {
		return BodyUntilEOF, 0
	}
	return BodyNone, 0
}

// buildDecoder chains one Decoder per Content-Encoding coding, innermost
// (first applied, closest to the original bytes) last, so undoing happens
// in the required reverse order (RFC 9110 §8.4.1) -- see decode.go.
func (c *core) buildDecoder(sink Sink) Decoder {
	n := c.head.Hdrs.CEnc.N
	if n > len(c.head.Hdrs.CEnc.Vals) {
		n = len(c.head.Hdrs.CEnc.Vals)
	}
	var d Decoder = &passthroughDecoder{sink: sink}
	for i := 0; i < n; i++ {
		d = NewDecoder(c.head.Hdrs.CEnc.Vals[i].Enc, d)
	}
	return d
}

// RequestParser incrementally parses one or more HTTP requests off a
// single connection's byte stream.
type RequestParser struct {
	c           core
	sinkFactory Factory
}

// NewRequestParser builds a RequestParser. sinkFactory supplies a fresh
// Sink for each request's body; pass nil to use DefaultFactory (an
// in-memory BufferSink per message). log may be nil (zap.NewNop()).
func NewRequestParser(sinkFactory Factory, log *zap.Logger, opts ...Option) *RequestParser {
	return &RequestParser{
		c:           newCore(true, NewOptions(opts...), log),
		sinkFactory: sinkFactory,
	}
}

// Feed consumes as much of buf[offs:] as currently available, resuming
// whatever state a previous call to Feed (or FeedEOF after Reset, for a
// subsequent keep-alive request) left off in. On a hard parse error it
// returns that *Error and the parser is poisoned (Err() keeps returning
// it until Reset). It is not an error for Feed to make no progress and
// return (offs, nil); that means "come back with more bytes".
func (p *RequestParser) Feed(buf []byte, offs int) (int, *Error) {
	n, err := p.c.feed(buf, offs, p.sinkFactory)
	if err != hErrOk && err != hErrMoreBytes {
		return n, p.c.err
	}
	return n, nil
}

// FeedEOF signals that the connection has closed; see core.feedEOF.
func (p *RequestParser) FeedEOF() *Error { return p.c.feedEOF() }

// Done reports whether the current request is fully parsed.
func (p *RequestParser) Done() bool { return p.c.Done() }

// Upgraded reports whether the request asked to switch protocols
// (Connection: upgrade + an Upgrade header); the caller owns the
// connection from here on, the parser will not consume any more bytes.
func (p *RequestParser) Upgraded() bool { return p.c.Upgraded() }

// Head returns the parsed request head. Valid once the headers phase has
// completed (see MessageHead.Parsed via Head().FirstLine.Parsed()).
func (p *RequestParser) Head() *MessageHead { return p.c.Head() }

// Body returns the Sink the current request's body was (or is being)
// written to, or nil before body parsing has started.
func (p *RequestParser) Body() Sink { return p.c.sink }

// Err returns the sticky parse error, if any.
func (p *RequestParser) Err() *Error { return p.c.Err() }

// Reset prepares the parser for the next request on the same connection
// (HTTP pipelining / keep-alive).
func (p *RequestParser) Reset() { p.c.reset() }

// ResponseParser incrementally parses one or more HTTP responses off a
// single connection's byte stream. Because a response's body framing can
// depend on the method of the request it answers (HEAD, CONNECT) and this
// package does not itself track request/response pairing, the caller
// supplies that method via SetRequestMethod before each response.
type ResponseParser struct {
	c           core
	sinkFactory Factory
}

// NewResponseParser builds a ResponseParser. See NewRequestParser for the
// sinkFactory/log contract.
func NewResponseParser(sinkFactory Factory, log *zap.Logger, opts ...Option) *ResponseParser {
	return &ResponseParser{
		c:           newCore(false, NewOptions(opts...), log),
		sinkFactory: sinkFactory,
	}
}

// SetRequestMethod records the method of the request this response (and
// any informational responses preceding it) answers; pass MUndef if
// unknown. Must be called before Feed for each response whose framing
// depends on it (HEAD responses have no body regardless of headers;
// 2xx responses to CONNECT tunnel until the connection closes).
func (p *ResponseParser) SetRequestMethod(m Method) { p.c.reqMethod = m }

// Feed is RequestParser.Feed's response-side counterpart.
func (p *ResponseParser) Feed(buf []byte, offs int) (int, *Error) {
	n, err := p.c.feed(buf, offs, p.sinkFactory)
	if err != hErrOk && err != hErrMoreBytes {
		return n, p.c.err
	}
	return n, nil
}

// FeedEOF signals that the connection has closed; see core.feedEOF. A
// response body framed BodyUntilEOF treats this as the normal way the
// body ends, not a truncation.
func (p *ResponseParser) FeedEOF() *Error { return p.c.feedEOF() }

func (p *ResponseParser) Done() bool         { return p.c.Done() }
func (p *ResponseParser) Upgraded() bool     { return p.c.Upgraded() }
func (p *ResponseParser) Head() *MessageHead { return p.c.Head() }
func (p *ResponseParser) Body() Sink         { return p.c.sink }
func (p *ResponseParser) Err() *Error        { return p.c.Err() }

// Reset prepares the parser for the next response on the same connection.
// reqMethod (set via SetRequestMethod) is preserved across Reset only if
// the caller calls SetRequestMethod again for clarity at each response;
// it is NOT implicitly carried over since the next response typically
// answers a different request.
func (p *ResponseParser) Reset() {
	p.c.reset()
	p.c.reqMethod = MUndef
}
