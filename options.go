package httpwire

// Options configures a RequestParser/ResponseParser. The zero Options is
// not directly usable; construct via NewOptions or DefaultOptions.
type Options struct {
	// Strict selects RFC 9112 strict-mode parsing: obs-fold is rejected
	// outright, bare LF line endings are rejected, trailing whitespace
	// after a chunk-size is rejected, and non-ASCII request-target bytes
	// are rejected as KindInvalidURL (see ClassifyTarget). When false,
	// obs-fold and bare LF are accepted from responses only (never from
	// requests -- see lwsFor), trailing chunk-size whitespace is accepted
	// in either direction, and non-ASCII target bytes are handed to
	// net/url unchanged.
	Strict bool
	// MaxLineSize bounds the length of the request/status line; exceeding
	// it is a LineTooLong error rather than unbounded buffering.
	MaxLineSize int
	// MaxFieldSize holds the configured maximum header line size (name
	// plus value). The parsers do not check header lines against it; only
	// MaxLineSize and MaxHeaderCount are enforced on the message head.
	MaxFieldSize int
	// MaxHeaderCount bounds the number of headers (and, separately,
	// trailer headers) a single message may carry.
	MaxHeaderCount int
	// Limit bounds the number of body bytes handed to the Content-Encoding
	// decoder (counted before decoding), in every framing; 0 means
	// unbounded.
	Limit int64
	// ReadUntilEOF forces BodyUntilEOF framing for a response lacking
	// both Content-Length and a chunked Transfer-Encoding, even where
	// §4.2's table would otherwise select BodyNone (e.g. a 200 response
	// to a method the parser cannot correlate against, since this
	// package does not track request/response pairing itself). Disabled
	// by default, matching aiohttp's default of trusting BodyNone unless
	// told otherwise. 1xx, 204, 304 and HEAD responses have no body
	// either way.
	ReadUntilEOF bool
	// ResponseWithBody overrides the no-body status/method table (1xx,
	// 204, 304, and HEAD responses) to force BodyLength/BodyChunked
	// framing to still apply when the headers indicate one -- for
	// transports that already know better than the generic table (e.g.
	// a test harness replaying a response whose original request method
	// is known to not have been HEAD).
	ResponseWithBody bool
}

const (
	defaultMaxLineSize    = 8190
	defaultMaxFieldSize   = 8190
	defaultMaxHeaderCount = 32768
)

// Option mutates an Options in place.
type Option func(*Options)

// WithStrict toggles strict RFC 9112 parsing. See Options.Strict.
func WithStrict(strict bool) Option {
	return func(o *Options) { o.Strict = strict }
}

// WithMaxLineSize overrides the default maximum request/status line size.
func WithMaxLineSize(n int) Option {
	return func(o *Options) { o.MaxLineSize = n }
}

// WithMaxFieldSize overrides the default maximum header line size.
func WithMaxFieldSize(n int) Option {
	return func(o *Options) { o.MaxFieldSize = n }
}

// WithMaxHeaderCount overrides the default maximum header count.
func WithMaxHeaderCount(n int) Option {
	return func(o *Options) { o.MaxHeaderCount = n }
}

// WithLimit bounds the body size counted before decoding; 0 disables the
// bound.
func WithLimit(n int64) Option {
	return func(o *Options) { o.Limit = n }
}

// WithReadUntilEOF forces BodyUntilEOF framing for responses that carry
// neither Content-Length nor Transfer-Encoding. See Options.ReadUntilEOF.
func WithReadUntilEOF(b bool) Option {
	return func(o *Options) { o.ReadUntilEOF = b }
}

// WithResponseWithBody overrides the no-body status/method table.
func WithResponseWithBody(b bool) Option {
	return func(o *Options) { o.ResponseWithBody = b }
}

// DefaultOptions returns the package's default configuration: lenient
// parsing, an 8190-byte line/field limit (matching aiohttp's defaults), a
// 32768 header limit, and no body size bound.
func DefaultOptions() Options {
	return Options{
		Strict:         false,
		MaxLineSize:    defaultMaxLineSize,
		MaxFieldSize:   defaultMaxFieldSize,
		MaxHeaderCount: defaultMaxHeaderCount,
	}
}

// NewOptions builds an Options starting from DefaultOptions and applying
// opts in order.
func NewOptions(opts ...Option) Options {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// lwsFor returns the lwsFlags this Options/message-type combination
// allows. obs-fold and bare-LF are both forbidden in strict mode; in lax
// mode they are tolerated, but per spec.md's asymmetry only for
// responses -- a request using either is always rejected, matching how
// real deployments must never reward a misbehaving client while still
// tolerating a misbehaving upstream server.
func (o Options) lwsFor(isResponse bool) lwsFlags {
	if o.Strict || !isResponse {
		return lwsNone
	}
	return lwsAllowFold | lwsAllowBareLF
}
