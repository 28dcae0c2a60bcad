package minify

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/aurorahtml/minify/internal/htmltok"
	"github.com/aurorahtml/minify/subminify"
)

// reserialiseJSON re-serialises a <script type="application/json">-family
// body through a decode/encode round trip, which drops insignificant
// whitespace without needing a CSS/JS-grade minifier. Invalid JSON is
// returned unchanged: it may be a template placeholder or simply
// malformed content the minifier must not corrupt further.
func reserialiseJSON(text string) string {
	var v interface{}
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return text
	}
	out, err := json.Marshal(v)
	if err != nil {
		return text
	}
	return string(out)
}

// jsMimeTypes are the MIME types RemoveScriptTypeAttributes/step 4 treat
// as "this is JavaScript" (module is handled separately: it is never
// droppable and never sub-minified as a classic script).
var jsMimeTypes = map[string]bool{
	"": true, "text/javascript": true, "application/javascript": true,
	"application/x-javascript": true, "text/ecmascript": true,
	"application/ecmascript": true, "text/jscript": true,
	"text/livescript": true, "text/x-javascript": true,
	"text/x-ecmascript": true,
}

// cssMimeTypes are the MIME types RemoveStyleLinkTypeAttributes treats as
// "this is CSS".
var cssMimeTypes = map[string]bool{"text/css": true}

// jsonScriptTypes are the script MIME types chars() step 3 re-serialises
// via a JSON round-trip instead of running through the JS sub-minifier.
var jsonScriptTypes = map[string]bool{
	"application/json": true, "application/ld+json": true,
	"application/manifest+json": true, "application/vnd.geo+json": true,
	"application/problem+json": true, "application/merge-patch+json": true,
	"application/json-patch+json": true, "importmap": true,
	"speculationrules": true,
}

// redundantAttributeDefaults lists attribute values that match the
// element's implicit default and so carry no information.
var redundantAttributeDefaults = map[string]map[string]string{
	"script": {"language": "javascript", "charset": "utf-8"},
	"style":  {"media": "all"},
	"form":   {"method": "get"},
	"input":  {"type": "text"},
	"button": {"type": "submit"},
	"area":   {"shape": "rect"},
}

var uriAttributes = map[string]bool{
	"href": true, "src": true, "action": true, "formaction": true,
	"cite": true, "data": true, "poster": true, "background": true,
	"longdesc": true, "usemap": true, "manifest": true, "icon": true,
	"profile": true, "archive": true, "codebase": true,
}

var numericAttributes = map[string]bool{
	"maxlength": true, "tabindex": true, "cols": true, "rows": true,
	"size": true, "width": true, "height": true, "colspan": true,
	"rowspan": true, "minlength": true, "start": true, "span": true,
}

var defaultEmptyDroppableAttrs = map[string]bool{
	"class": true, "id": true, "style": true, "title": true, "lang": true, "dir": true,
}

var eventAttrRe = regexp.MustCompile(`^on[a-z]+$`)

// buildAttribute runs one attribute through normalisation, value
// cleaning, empty-attribute removal, and quote/delimiter selection, and
// returns the rendered "name" or `name="value"` text and whether it
// survives at all.
func (d *driver) buildAttribute(tag string, a Attribute) (string, bool) {
	o := d.opts
	name := o.Name(a.Name)
	value := a.Value

	if o.DecodeEntities && strings.ContainsRune(value, '&') {
		value = decodeEntitiesStrict(value)
	}

	if d.isRedundant(tag, name, value) {
		return "", false
	}
	if o.RemoveScriptTypeAttributes && tag == "script" && name == "type" && jsMimeTypes[strings.ToLower(value)] {
		return "", false
	}
	if o.RemoveStyleLinkTypeAttributes && name == "type" && (tag == "style" || tag == "link") && cssMimeTypes[strings.ToLower(value)] {
		return "", false
	}

	value = d.cleanAttributeValue(tag, name, value, a)

	if o.RemoveEmptyAttributes && strings.TrimSpace(value) == "" && a.HasValue {
		drop := defaultEmptyDroppableAttrs[name] || eventAttrRe.MatchString(name)
		if o.RemoveEmptyAttributesFunc != nil {
			drop = o.RemoveEmptyAttributesFunc(tag, name)
		}
		if drop {
			return "", false
		}
	}

	if o.DecodeEntities {
		value = encodeAmbiguousAmpersands(value)
	}

	return d.renderAttribute(name, value, a), true
}

func (d *driver) isRedundant(tag, name, value string) bool {
	if !d.opts.RemoveRedundantAttributes {
		return false
	}
	defaults, ok := redundantAttributeDefaults[tag]
	if !ok {
		return false
	}
	want, ok := defaults[name]
	return ok && strings.EqualFold(value, want)
}

// cleanAttributeValue applies the per-category value transformation for
// the attribute's kind (event handler, class list, URI, numeric, style,
// srcset, meta content, media query, or iframe srcdoc).
func (d *driver) cleanAttributeValue(tag, name, value string, a Attribute) string {
	o := d.opts

	switch {
	case eventAttrRe.MatchString(name) || matchesAny(o.CustomEventAttributes, name):
		value = strings.TrimPrefix(value, "javascript:")
		value = d.runJS(value, subminify.Hint{Context: "inline", Tag: tag})

	case name == "class":
		if o.SortClassNameFunc != nil {
			value = o.SortClassNameFunc(value)
		} else if o.SortClassName && d.sorter != nil {
			value = d.sorter.sortClassName(value)
		} else if o.CollapseWhitespace {
			value = collapseInteriorRuns(strings.TrimSpace(value))
		}

	case uriAttributes[name]:
		if !(name == "href" && d.relCanonical) {
			value = d.runURL(value)
		}

	case numericAttributes[name]:
		value = strings.TrimSpace(value)

	case name == "style":
		value = strings.TrimSpace(value)
		if !strings.HasSuffix(value, ";") || endsInEntity(value) {
			// leave as-is
		} else {
			value = strings.TrimSuffix(value, ";")
		}
		value = d.runCSS(value, subminify.Hint{Context: "inline", Tag: tag})

	case name == "srcset":
		value = d.rewriteSrcset(value)

	case name == "content" && d.metaIsViewport:
		value = canonicaliseViewport(value)

	case name == "content" && d.metaIsCSP:
		value = collapseInteriorRuns(strings.TrimSpace(value))

	case name == "media" && (tag == "link" || tag == "style"):
		value = d.runCSS(value, subminify.Hint{Context: "media", Tag: tag})

	case tag == "iframe" && name == "srcdoc":
		value = d.recursiveMinify(value)

	case o.CustomAttrCollapse != nil && o.CustomAttrCollapse.MatchString(name):
		value = collapseNewlinesAndSpaces(value)
	}

	return value
}

func matchesAny(res []*regexp.Regexp, s string) bool {
	for _, re := range res {
		if re.MatchString(s) {
			return true
		}
	}
	return false
}

func endsInEntity(s string) bool {
	i := strings.LastIndexByte(s, '&')
	if i < 0 {
		return false
	}
	return strings.ContainsRune(s[i:], ';')
}

// endsInQuote reports whether rendered attribute text s ends with a quote
// delimiter, meaning the value it closes already marks where the
// attribute ends without needing a following space.
func endsInQuote(s string) bool {
	if s == "" {
		return false
	}
	c := s[len(s)-1]
	return c == '"' || c == '\''
}

func collapseNewlinesAndSpaces(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	return collapseInteriorRuns(s)
}

// rewriteSrcset splits on commas (ignoring whitespace inside URLs, which
// don't legally contain unescaped commas), minifies each URL, rebuilds
// with a single space before the descriptor, and drops a trailing "1x"
// descriptor since it's the implicit default.
func (d *driver) rewriteSrcset(value string) string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		fields := strings.Fields(p)
		url := d.runURL(fields[0])
		if len(fields) == 1 {
			out = append(out, url)
			continue
		}
		descriptor := fields[1]
		if descriptor == "1x" {
			out = append(out, url)
			continue
		}
		out = append(out, url+" "+descriptor)
	}
	return strings.Join(out, ",")
}

var viewportNumRe = regexp.MustCompile(`-?\d+\.\d+`)

// canonicaliseViewport strips all whitespace from a meta viewport content
// value and trims trailing zeroes from decimal numbers (0.9000 -> 0.9).
func canonicaliseViewport(value string) string {
	value = strings.Map(func(r rune) rune {
		if isWhitespace(byte(r)) {
			return -1
		}
		return r
	}, value)
	return viewportNumRe.ReplaceAllStringFunc(value, func(n string) string {
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return n
		}
		s := strconv.FormatFloat(f, 'f', -1, 64)
		return s
	})
}

// renderAttribute applies quote selection and the unquoted/boolean
// delimiter choice, rendering the final "name" or name="value" text.
func (d *driver) renderAttribute(name, value string, a Attribute) string {
	o := d.opts

	if o.CollapseBooleanAttributes && htmltok.IsBooleanAttribute(name) {
		return name
	}

	if !a.HasValue {
		return name
	}

	if o.RemoveAttributeQuotes && unquotableRe.MatchString(value) && !strings.Contains(value, "UID") {
		return name + "=" + value
	}

	quote := chooseQuote(value, o.QuoteCharacter)
	escaped := escapeForQuote(value, quote)
	return fmt.Sprintf("%s=%c%s%c", name, quote, escaped, quote)
}

var unquotableRe = regexp.MustCompile(`^[^ \t\n\f\r"'` + "`" + `=<>]+$`)

func chooseQuote(value string, forced byte) byte {
	if forced == '"' || forced == '\'' {
		return forced
	}
	dq := strings.Count(value, `"`)
	sq := strings.Count(value, `'`)
	if sq < dq {
		return '\''
	}
	return '"'
}

func escapeForQuote(value string, quote byte) string {
	if quote == '"' {
		return strings.ReplaceAll(value, `"`, "&#34;")
	}
	return strings.ReplaceAll(value, `'`, "&#39;")
}

func (d *driver) runJS(text string, hint subminify.Hint) string {
	fn := d.jsFunc()
	out, err := d.callSub(subminify.JS, fn, text, hint)
	if err != nil {
		return text
	}
	return out
}

func (d *driver) runCSS(text string, hint subminify.Hint) string {
	fn := d.cssFunc()
	out, err := d.callSub(subminify.CSS, fn, text, hint)
	if err != nil {
		return text
	}
	return out
}

func (d *driver) runURL(text string) string {
	fn := d.urlFunc()
	out, err := d.callSub(subminify.URL, fn, text, subminify.Hint{})
	if err != nil {
		return text
	}
	return out
}

func (d *driver) jsFunc() subminify.Func {
	var fn subminify.Func
	switch {
	case d.opts.MinifyJSFunc != nil:
		fn = d.opts.MinifyJSFunc
	case d.opts.MinifyJS:
		fn = subminify.DefaultJS
	default:
		return nil
	}
	return wrapForFragments(fn, d.fragments)
}

func (d *driver) cssFunc() subminify.Func {
	var fn subminify.Func
	switch {
	case d.opts.MinifyCSSFunc != nil:
		fn = d.opts.MinifyCSSFunc
	case d.opts.MinifyCSS:
		fn = subminify.DefaultCSS
	default:
		return nil
	}
	return wrapForFragments(fn, d.fragments)
}

func (d *driver) urlFunc() subminify.Func {
	var fn subminify.Func
	switch {
	case d.opts.MinifyURLsFunc != nil:
		fn = d.opts.MinifyURLsFunc
	case d.opts.MinifyURLs:
		fn = subminify.DefaultURL
	default:
		return nil
	}
	return wrapForFragments(fn, d.fragments)
}

func (d *driver) runSVG(text string) string {
	fn := d.svgFunc()
	out, err := d.callSub(subminify.SVG, fn, text, subminify.Hint{Tag: "svg"})
	if err != nil {
		return text
	}
	return out
}

func (d *driver) svgFunc() subminify.Func {
	var fn subminify.Func
	switch {
	case d.opts.MinifySVGFunc != nil:
		fn = d.opts.MinifySVGFunc
	case d.opts.MinifySVG:
		fn = subminify.DefaultSVG
	default:
		return nil
	}
	return wrapForFragments(fn, d.fragments)
}

func (d *driver) callSub(kind subminify.Kind, fn subminify.Func, text string, hint subminify.Hint) (string, error) {
	if fn == nil {
		return text, nil
	}
	out, err := d.opts.Caches.Call(context.Background(), kind, text, optionsSignature(d.opts), hint, fn)
	if err != nil {
		if d.opts.ContinueOnMinifyError {
			d.opts.Log(&MinifyError{Kind: string(kind), Err: err})
			return text, nil
		}
		return "", &MinifyError{Kind: string(kind), Err: err}
	}
	return out, nil
}

func optionsSignature(o Options) string {
	return fmt.Sprintf("css=%t|js=%t|url=%t|svg=%t", o.MinifyCSS, o.MinifyJS, o.MinifyURLs, o.MinifySVG)
}

// recursiveMinify is the hook iframe srcdoc uses to minify its value as a
// full HTML document with the same options.
func (d *driver) recursiveMinify(value string) string {
	o := d.rootOpts
	out, err := Minify(value, &o)
	if err != nil {
		return value
	}
	return out
}
