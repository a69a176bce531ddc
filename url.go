package httpwire

import (
	"net/url"
	"strings"
)

// TargetForm identifies which of the four request-target forms (RFC 9112
// §3.2) a request-line used.
type TargetForm uint8

const (
	// TargetUndef is the zero value; ClassifyTarget returns it together
	// with a non-nil error.
	TargetUndef TargetForm = iota
	// TargetOrigin is "/path?query", used by almost all requests.
	TargetOrigin
	// TargetAbsolute is a full URL, as sent to a proxy.
	TargetAbsolute
	// TargetAuthority is "host:port", used only with CONNECT.
	TargetAuthority
	// TargetAsterisk is "*", used only with OPTIONS.
	TargetAsterisk
)

// ClassifyTarget determines the request-target form from its raw bytes and,
// for origin/absolute forms, parses it with net/url. CONNECT's
// authority-form target has no scheme, so it is parsed as "//"+tgt and u
// carries only Host; for the asterisk form u is nil. The caller has raw
// access to tgt regardless via FirstLine.Target.
//
// strict controls whether non-ASCII bytes in tgt are rejected outright
// (matching RFC 9110's requirement that a request-target is composed of a
// restricted ASCII subset). When strict is false the bytes are passed to
// net/url unchanged, with no escaping; Options.Strict, false by default,
// supplies this flag when the parser calls ClassifyTarget.
func ClassifyTarget(tgt []byte, method Method, strict bool) (TargetForm, *url.URL, error) {
	if strict {
		for _, c := range tgt {
			if c >= 0x80 {
				return TargetUndef, nil, newErr(KindInvalidURL, "non-ASCII byte in request-target")
			}
		}
	}
	if method == MConnect {
		if u, ok := parseAuthorityForm(tgt); ok {
			return TargetAuthority, u, nil
		}
		return TargetUndef, nil, newErr(KindInvalidURL, "malformed CONNECT authority-form target")
	}
	s := string(tgt)
	if s == "*" {
		if method != MOptions {
			return TargetUndef, nil, newErr(KindInvalidURL, "asterisk-form target only valid with OPTIONS")
		}
		return TargetAsterisk, nil, nil
	}
	if len(s) > 0 && s[0] == '/' {
		u, err := url.ParseRequestURI(s)
		if err != nil {
			return TargetUndef, nil, newErr(KindInvalidURL, "invalid origin-form target: "+err.Error())
		}
		return TargetOrigin, u, nil
	}
	u, err := url.ParseRequestURI(s)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return TargetUndef, nil, newErr(KindInvalidURL, "invalid absolute-form target")
	}
	return TargetAbsolute, u, nil
}

// parseAuthorityForm validates a CONNECT target as "host:port", rejecting
// anything carrying a scheme, userinfo, path or query (none of which are
// legal in authority-form).
func parseAuthorityForm(tgt []byte) (*url.URL, bool) {
	s := string(tgt)
	if strings.ContainsAny(s, "/?#") {
		return nil, false
	}
	u, err := url.Parse("//" + s)
	if err != nil || u.Host == "" || u.Host != s || u.User != nil {
		return nil, false
	}
	return u, true
}
