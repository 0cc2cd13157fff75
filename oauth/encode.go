package oauth

import (
	"net/url"
	"sort"
	"strings"
)

const upperhex = "0123456789ABCDEF"

// escape percent-encodes every byte of s that keep does not accept.
func escape(s string, keep func(byte) bool) string {
	var hexCount int
	for i := 0; i < len(s); i++ {
		if !keep(s[i]) {
			hexCount++
		}
	}
	if hexCount == 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 2*hexCount)
	for i := 0; i < len(s); i++ {
		c := s[i]
		if keep(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(upperhex[c>>4])
		b.WriteByte(upperhex[c&15])
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9'
}

// isMark reports whether c is in the RFC 2396 unreserved "mark" set.
func isMark(c byte) bool {
	switch c {
	case '-', '_', '.', '!', '~', '*', '\'', '(', ')':
		return true
	}
	return false
}

// isUnreserved reports whether c is in the RFC 3986 unreserved set.
func isUnreserved(c byte) bool {
	switch c {
	case '-', '_', '.', '~':
		return true
	}
	return isAlnum(c)
}

// EscapeDataString encodes s the way the legacy platform data escaper does:
// RFC 2396 unreserved characters, including ! * ' ( ), pass through.
func EscapeDataString(s string) string {
	return escape(s, func(c byte) bool { return isAlnum(c) || isMark(c) })
}

// EncodeRFC3986 applies EscapeDataString and then escapes ! * ' ( ) which
// RFC 3986 reserves. The remote verifier requires this exact form.
func EncodeRFC3986(s string) string {
	return escape(EscapeDataString(s), func(c byte) bool {
		switch c {
		case '!', '*', '\'', '(', ')':
			return false
		}
		return true
	})
}

// Encode percent-encodes s using the RFC 3986 unreserved set directly.
// It is equivalent to EncodeRFC3986 and used for signature parameters.
func Encode(s string) string {
	return escape(s, isUnreserved)
}

// EncodeQuery encodes v as a query string with RFC 3986 escaping and keys
// in sorted order. Spaces become %20, not '+'.
func EncodeQuery(v url.Values) string {
	if len(v) == 0 {
		return ""
	}
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		for _, val := range v[k] {
			if b.Len() > 0 {
				b.WriteByte('&')
			}
			b.WriteString(Encode(k))
			b.WriteByte('=')
			b.WriteString(Encode(val))
		}
	}
	return b.String()
}
