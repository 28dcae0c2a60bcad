package minify

import (
	"html"
	"regexp"
	"strings"
)

// namedRefPrefixRe matches the start of a legacy named character reference
// that HTML5 recognises even without a trailing semicolon (e.g. "&amp",
// "&copy", "&reg"). Only a representative, commonly-hit subset is listed;
// the goal is catching the ambiguous-ampersand case, not an exhaustive
// named-reference table.
var namedRefPrefixRe = regexp.MustCompile(`^&(amp|lt|gt|quot|apos|copy|reg|nbsp|trade|mdash|ndash|hellip)(;?)`)

// charRefRe matches the start of any character reference form: named,
// decimal, or hexadecimal.
var charRefRe = regexp.MustCompile(`^&(#[0-9]+;?|#[xX][0-9a-fA-F]+;?|[a-zA-Z][a-zA-Z0-9]*;?)`)

// decodeEntitiesStrict decodes entities the way html.UnescapeString does,
// which only unescapes well-formed references and leaves a bare "&" that
// doesn't start one alone.
func decodeEntitiesStrict(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	return html.UnescapeString(s)
}

// encodeAmbiguousAmpersands re-escapes every "&" that either starts a
// legacy named reference without its trailing semicolon, or starts any
// character reference at all, to "&amp;", so that re-parsing the output
// can never resurrect a reference the minifier didn't intend. A "&" that
// is not the start of any recognised reference form is left alone.
func encodeAmbiguousAmpersands(s string) string {
	if !strings.ContainsRune(s, '&') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '&' {
			b.WriteByte(s[i])
			continue
		}
		rest := s[i:]
		if m := namedRefPrefixRe.FindStringSubmatch(rest); m != nil && m[2] == "" {
			b.WriteString("&amp;")
			continue
		}
		if m := charRefRe.FindString(rest); m != "" {
			b.WriteString("&amp;")
			continue
		}
		b.WriteByte('&')
	}
	return b.String()
}

// escapeStrayLessThan escapes a "<" that doesn't start a recognisable tag,
// comment, or CDATA open, which would otherwise corrupt re-parsing of
// text content that legitimately contains a literal less-than sign.
func escapeStrayLessThan(s string) string {
	if !strings.ContainsRune(s, '<') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != '<' {
			b.WriteByte(s[i])
			continue
		}
		if looksLikeMarkupOpen(s[i:]) {
			b.WriteByte('<')
			continue
		}
		b.WriteString("&lt;")
	}
	return b.String()
}

func looksLikeMarkupOpen(rest string) bool {
	if len(rest) < 2 {
		return false
	}
	c := rest[1]
	return c == '!' || c == '/' || c == '?' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
