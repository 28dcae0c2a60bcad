package minify

import (
	"regexp"
	"strings"

	"github.com/aurorahtml/minify/internal/htmltok"
	"github.com/aurorahtml/minify/subminify"
)

// segKind identifies which kind of output-buffer segment a driver wrote,
// so removeStartTag/removeEndTag can walk backward and find the right
// one to rewind past.
type segKind int

const (
	segOther segKind = iota
	segStartTag
	segEndTag
)

type segment struct {
	kind segKind
	name string
	s    string
}

// stackFrame is one entry of the driver's open-element stack.
type stackFrame struct {
	name           string
	attrs          []Attribute
	selfClosing    bool
	enteredForeign bool // true if this push entered svg/math shadowing
}

// driver is the Transformation Driver: it owns the output buffer, the
// open-element stack, and the whitespace/optional-tag bookkeeping, and
// walks a token stream produced by internal/htmltok emitting into the
// buffer.
type driver struct {
	rootOpts Options
	opts     Options

	buf   []segment
	stack []stackFrame

	noTrimDepth   map[string]int
	foreignDepth  int
	svgSpanStart  int // buf index where the outermost <svg> subtree began, -1 when none is open
	currentTag    string
	hasChars      bool
	currentScript scriptContext

	// metaIsViewport/metaIsCSP/relCanonical are per-start-tag context
	// flags, computed once from the full attribute set before the
	// attribute-building loop runs, since a single attribute (e.g.
	// "content" on <meta>) is cleaned without visibility into its
	// siblings otherwise.
	metaIsViewport bool
	metaIsCSP      bool
	relCanonical   bool

	optionalStartTag     *int // index into buf of a candidate optional start tag, or nil
	pendingFirstChildTag string // "body"/"colgroup"/"tbody" while optionalStartTag awaits a first-child decision
	optionalEndTag       *int

	sorter *sortAnalyser

	extraInline     map[string]bool
	extraInlineText map[string]bool

	ignoreComments map[string]bool // UID placeholder comments exempted from removeComments

	stats     *Stats
	fragments *fragmentTables
	err       error
}

type scriptContext struct {
	active bool
	tag    string // "script" or "style"
	typ    string
}

func newDriver(o Options, sorter *sortAnalyser) *driver {
	extra := map[string]bool{}
	extraText := map[string]bool{}
	for _, e := range o.InlineCustomElements {
		extra[e] = true
		extraText[e] = true
	}
	return &driver{
		rootOpts:        o,
		opts:            o,
		noTrimDepth:     map[string]int{},
		svgSpanStart:    -1,
		sorter:          sorter,
		extraInline:     extra,
		extraInlineText: extraText,
		ignoreComments:  map[string]bool{},
		stats:           o.Stats,
	}
}

// run drives toks through the handlers in document order and returns the
// joined output buffer.
func (d *driver) run(toks []htmltok.Token) (string, error) {
	for _, tok := range toks {
		switch tok.Type {
		case htmltok.StartTagToken:
			d.start(tok)
		case htmltok.EndTagToken:
			d.end(tok)
		case htmltok.TextToken:
			d.chars(tok)
		case htmltok.CommentToken:
			d.comment(tok)
		case htmltok.DoctypeToken:
			d.doctype(tok)
		}
		if d.err != nil {
			return "", d.err
		}
	}
	return d.String(), nil
}

func (d *driver) String() string {
	var b strings.Builder
	for _, seg := range d.buf {
		b.WriteString(seg.s)
	}
	return b.String()
}

func (d *driver) append(kind segKind, name, s string) int {
	d.buf = append(d.buf, segment{kind: kind, name: name, s: s})
	return len(d.buf) - 1
}

// removeStartTag walks backward for the most recent start-tag segment
// named name and truncates the buffer to just before it, returning true
// if one was found.
func (d *driver) removeStartTag(name string) bool {
	for i := len(d.buf) - 1; i >= 0; i-- {
		if d.buf[i].kind == segStartTag && d.buf[i].name == name {
			d.buf = d.buf[:i]
			return true
		}
		if d.buf[i].kind == segStartTag || d.buf[i].kind == segEndTag ||
			strings.Trim(d.buf[i].s, " \t\n\r\f") != "" {
			// A different tag boundary or real content sits in between;
			// only whitespace-only segments between here and the
			// candidate are safe to skip over.
			break
		}
	}
	return false
}

func (d *driver) removeEndTag(name string) bool {
	for i := len(d.buf) - 1; i >= 0; i-- {
		if d.buf[i].kind == segEndTag && d.buf[i].name == name {
			d.buf = d.buf[:i]
			return true
		}
		if d.buf[i].kind == segStartTag || d.buf[i].kind == segEndTag ||
			strings.Trim(d.buf[i].s, " \t\n\r\f") != "" {
			break
		}
	}
	return false
}

func (d *driver) pushNoTrim(name string) {
	d.noTrimDepth[name]++
}

func (d *driver) popNoTrim(name string) {
	if d.noTrimDepth[name] > 0 {
		d.noTrimDepth[name]--
	}
}

func (d *driver) inNoTrim() bool {
	for _, n := range d.noTrimDepth {
		if n > 0 {
			return true
		}
	}
	return false
}

var baseNoTrimElements = map[string]bool{"pre": true, "textarea": true, "script": true, "style": true}

func (d *driver) isNoTrimElement(name string) bool {
	if baseNoTrimElements[name] {
		return true
	}
	for _, n := range d.opts.NoTrimElements {
		if n == name {
			return true
		}
	}
	return false
}

// start implements the start(tag, attrs, unary, unarySlash, autoGenerated)
// handler.
func (d *driver) start(tok htmltok.Token) {
	name := d.opts.Name(tok.Name)

	if d.opts.RemoveOptionalTags {
		d.resolvePendingFirstChildOmission(name)
	}

	if !d.opts.CaseSensitive && (name == "svg" || name == "math") {
		if d.foreignDepth == 0 && name == "svg" {
			d.svgSpanStart = len(d.buf)
		}
		d.opts = d.opts.shadowForeign()
		d.foreignDepth++
	} else if d.opts.CaseSensitive {
		name = tok.Name
	}

	d.currentTag = name
	d.hasChars = false

	if d.opts.RemoveOptionalTags {
		d.applyStartOmission(name)
	}

	attrs := append([]Attribute(nil), tok.Attr...)
	d.computeTagContext(name, attrs)

	if name == "script" || name == "style" {
		typ := ""
		for _, a := range attrs {
			if a.Name == "type" {
				typ = strings.ToLower(strings.TrimSpace(a.Value))
			}
		}
		d.currentScript = scriptContext{active: true, tag: name, typ: typ}
	}

	if d.isNoTrimElement(name) {
		d.pushNoTrim(name)
	}

	if d.opts.SortAttributes && d.opts.SortAttributesFunc != nil {
		d.opts.SortAttributesFunc(name, attrs)
	} else if d.opts.SortAttributes && d.sorter != nil {
		d.sorter.sortAttrs(name, attrs)
	}

	// Attributes are built back-to-front, so the rendered strings are
	// collected here and then emitted in reverse to restore their order.
	rendered := make([]string, 0, len(attrs))
	for i := len(attrs) - 1; i >= 0; i-- {
		r, keep := d.buildAttribute(name, attrs[i])
		if !keep {
			continue
		}
		rendered = append(rendered, r)
	}

	var out strings.Builder
	out.WriteByte('<')
	out.WriteString(name)

	survivors := len(rendered)
	prev := ""
	for i := len(rendered) - 1; i >= 0; i-- {
		r := rendered[i]
		// A quoted attribute value already delimits where it ends, so the
		// separating space before the next attribute is redundant; skip it
		// when RemoveTagWhitespace asks for the tightest valid rendering.
		if prev == "" || !d.opts.RemoveTagWhitespace || !endsInQuote(prev) {
			out.WriteByte(' ')
		}
		out.WriteString(r)
		prev = r
	}

	keepSlash := tok.HadTrailingSlash && (d.opts.KeepClosingSlash || htmltok.IsVoid(name) && tok.SelfClosing)
	if d.opts.CaseSensitive {
		// Inside svg/math, always echo the original trailing slash.
		keepSlash = tok.HadTrailingSlash
	}
	if keepSlash {
		out.WriteString(" /")
	}
	out.WriteByte('>')

	idx := d.append(segStartTag, name, out.String())

	if survivors == 0 && d.opts.RemoveOptionalTags {
		switch {
		case startTagOmittable(name):
			d.removeStartTag(name)
		case name == "body" || name == "colgroup" || name == "tbody":
			// Conditional on the first child; resolved by
			// resolvePendingFirstChildOmission or, if the element turns
			// out empty, by applyEndOmission.
			d.optionalStartTag = &idx
			d.pendingFirstChildTag = name
		}
	}

	if !d.opts.IncludeAutoGeneratedTags && tok.AutoGenerated {
		d.removeStartTag(name)
		return
	}

	if !tok.SelfClosing {
		d.stack = append(d.stack, stackFrame{
			name: name, attrs: attrs,
			enteredForeign: d.opts.CaseSensitive && !d.rootOpts.CaseSensitive && d.foreignDepth > 0 && name != "svg" && name != "math",
		})
		if name == "svg" || name == "math" {
			d.stack[len(d.stack)-1].enteredForeign = true
		}
	}
}

func (d *driver) statsTrack() bool { return d.stats != nil }

// computeTagContext derives the sibling-attribute-dependent flags
// buildAttribute needs: whether <meta name=viewport|...> owns this
// content attribute, and whether a "rel" attribute on this tag includes
// "canonical" (which exempts "href" from URL sub-minification).
func (d *driver) computeTagContext(tag string, attrs []Attribute) {
	d.metaIsViewport, d.metaIsCSP, d.relCanonical = false, false, false
	if tag != "meta" && tag != "link" && tag != "a" {
		return
	}
	for _, a := range attrs {
		switch a.Name {
		case "name":
			if strings.EqualFold(a.Value, "viewport") {
				d.metaIsViewport = true
			}
			if strings.EqualFold(a.Value, "content-security-policy") {
				d.metaIsCSP = true
			}
		case "http-equiv":
			if strings.EqualFold(a.Value, "content-security-policy") {
				d.metaIsCSP = true
			}
		case "rel":
			for _, tok := range splitTokens(a.Value) {
				if strings.EqualFold(tok, "canonical") {
					d.relCanonical = true
				}
			}
		}
	}
}

// end implements the end(tag, attrs, autoGenerated) handler.
func (d *driver) end(tok htmltok.Token) {
	name := d.opts.Name(tok.Name)
	if d.opts.CaseSensitive {
		name = tok.Name
	}

	var frame stackFrame
	if n := len(d.stack); n > 0 && d.stack[n-1].name == name {
		frame = d.stack[n-1]
		d.stack = d.stack[:n-1]
	}

	closeSVGRoot := false
	if frame.enteredForeign && (name == "svg" || name == "math") {
		d.opts = d.rootOpts
		if d.foreignDepth > 0 {
			d.foreignDepth--
		}
		if name == "svg" && d.foreignDepth == 0 {
			closeSVGRoot = true
		}
	}

	if d.isNoTrimElement(name) {
		d.popNoTrim(name)
	}
	if name == "script" || name == "style" {
		d.currentScript = scriptContext{}
	}

	isElementEmpty := d.currentTag == name && !d.hasChars

	if d.opts.RemoveOptionalTags {
		d.applyEndOmission(name, isElementEmpty)
	}

	if d.opts.RemoveEmptyElements && isElementEmpty && d.canRemoveElement(name, frame.attrs) &&
		!stringInList(d.opts.RemoveEmptyElementsExcept, name) {
		if d.removeStartTag(name) {
			if d.statsTrack() {
				d.stats.ElementsRemoved++
			}
			if closeSVGRoot {
				d.svgSpanStart = -1
			}
			return
		}
	}

	if !d.opts.IncludeAutoGeneratedTags && tok.AutoGenerated {
		if closeSVGRoot {
			d.svgSpanStart = -1
		}
		return
	}

	endIdx := d.append(segEndTag, name, "</"+name+">")
	if d.opts.RemoveOptionalTags {
		d.optionalEndTag = &endIdx
	}

	if closeSVGRoot {
		d.collapseSVGSpan()
	}
}

// collapseSVGSpan joins the buffered segments of the just-closed <svg>
// subtree, runs the whole serialised island through the SVG
// sub-minifier, and replaces the span with the single rewritten result.
func (d *driver) collapseSVGSpan() {
	start := d.svgSpanStart
	d.svgSpanStart = -1
	if start < 0 || start >= len(d.buf) {
		return
	}
	if d.svgFunc() == nil {
		return
	}

	var b strings.Builder
	for _, seg := range d.buf[start:] {
		b.WriteString(seg.s)
	}

	out := d.runSVG(b.String())
	d.buf = append(d.buf[:start], segment{kind: segOther, s: out})
}

func stringInList(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// canRemoveElement refuses removal for elements whose presence alone can
// be meaningful regardless of content.
func (d *driver) canRemoveElement(tag string, attrs []Attribute) bool {
	if tag == "textarea" {
		return false
	}
	for _, a := range attrs {
		switch a.Name {
		case "id":
			return false
		case "src", "srcdoc":
			if tag == "iframe" || tag == "frame" || tag == "img" || tag == "script" {
				return false
			}
		case "data":
			if tag == "object" {
				return false
			}
		case "code":
			if tag == "applet" {
				return false
			}
		}
	}
	return true
}

// applyStartOmission consults the end-tag-before-start-tag rules: a
// previously buffered optional end tag (e.g. a dangling </li>) may be
// dropped now that we know what start tag follows it.
func (d *driver) applyStartOmission(name string) {
	if d.optionalEndTag != nil && endTagOmittableBefore(d.endTagCandidateName(), name) {
		d.removeEndTag(d.endTagCandidateName())
		d.optionalEndTag = nil
	}
}

func (d *driver) applyEndOmission(name string, isEmpty bool) {
	if isEmpty && d.optionalStartTag != nil && (name == "html" || name == "head" || name == "body") {
		if d.removeStartTag(name) {
			d.optionalStartTag = nil
			return
		}
	}
	if name == d.pendingFirstChildTag {
		d.pendingFirstChildTag = ""
		d.optionalStartTag = nil
	}
}

// resolvePendingFirstChildOmission decides a buffered body/colgroup/tbody
// start tag's fate now that firstChild, the name of the element opening
// right after it, is known: per bodyStartOmittable/colgroupStartOmittable/
// tbodyStartOmittable it is either dropped or kept, and either way the
// decision only applies to the literal first child, so the pending state
// is cleared.
func (d *driver) resolvePendingFirstChildOmission(firstChild string) {
	if d.pendingFirstChildTag == "" {
		return
	}
	tag := d.pendingFirstChildTag
	d.pendingFirstChildTag = ""

	var omit bool
	switch tag {
	case "body":
		omit = bodyStartOmittable(firstChild)
	case "colgroup":
		omit = colgroupStartOmittable(firstChild)
	case "tbody":
		omit = tbodyStartOmittable(firstChild)
	}
	if omit {
		d.removeStartTag(tag)
	}
	d.optionalStartTag = nil
}

func (d *driver) endTagCandidateName() string {
	if d.optionalEndTag == nil || *d.optionalEndTag >= len(d.buf) {
		return ""
	}
	return d.buf[*d.optionalEndTag].name
}

// doctype implements the doctype(text) handler.
func (d *driver) doctype(tok htmltok.Token) {
	if d.opts.UseShortDoctype {
		d.append(segOther, "", "<!doctype html>")
		return
	}
	d.append(segOther, "", "<!"+tok.Text+">")
}

// chars implements the chars(text, prevTag, nextTag, prevAttrs, nextAttrs)
// handler.
func (d *driver) chars(tok htmltok.Token) {
	text := tok.Text
	if text != "" {
		d.hasChars = true
	}
	if strings.TrimSpace(text) != "" && d.pendingFirstChildTag != "" {
		d.pendingFirstChildTag = ""
		d.optionalStartTag = nil
	}

	inRawText := d.currentScript.active
	if d.opts.DecodeEntities && !inRawText {
		text = decodeEntitiesStrict(text)
	}

	if d.opts.CollapseWhitespace && !d.inNoTrim() {
		text = collapseWhitespaceSmart(text, tok.PrevTag, tok.NextTag, tok.PrevAttrs, tok.NextAttrs, d.opts, d.extraInline, d.extraInlineText)
	}

	if inRawText {
		text = d.processScriptOrStyleBody(text)
	}

	if d.opts.DecodeEntities && !inRawText {
		text = encodeAmbiguousAmpersands(text)
		text = escapeStrayLessThan(text)
	}

	if d.inNoTrim() && d.fragments != nil {
		text = d.fragments.expandInline(text)
	}

	d.append(segOther, "", text)
}

// processScriptOrStyleBody implements chars() steps 3-4 for the body of
// the currently open <script> or <style>: JSON round-trip, recursive
// minify for a user-declared processable type, or JS/CSS sub-minify for
// an executable script / stylesheet.
func (d *driver) processScriptOrStyleBody(text string) string {
	sc := d.currentScript

	if sc.tag == "style" {
		return d.runCSS(text, subminify.Hint{Tag: "style"})
	}

	if jsonScriptTypes[sc.typ] || matchesExtraJSONType(d.opts.ExtraJSONTypes, sc.typ) {
		return reserialiseJSON(text)
	}
	if stringInList(d.opts.ProcessScripts, sc.typ) {
		return d.recursiveMinify(text)
	}
	if sc.typ != "module" && jsMimeTypes[sc.typ] {
		return d.runJS(text, subminify.Hint{Tag: "script"})
	}
	return text
}

func matchesExtraJSONType(extra []string, typ string) bool {
	return stringInList(extra, typ)
}

// comment implements the comment(text, nonStandard) handler.
func (d *driver) comment(tok htmltok.Token) {
	text := tok.Text
	if d.pendingFirstChildTag != "" {
		d.pendingFirstChildTag = ""
		d.optionalStartTag = nil
	}

	if looksLikeConditionalComment(text) {
		d.emitConditionalComment(tok)
		return
	}

	if d.isUIDIgnoreComment(text) {
		d.append(segOther, "", "<!--"+text+"-->")
		return
	}

	if d.opts.RemoveComments && !matchesAny(d.opts.IgnoreCustomComments, text) && !defaultIgnoredComment(text) {
		return
	}

	d.append(segOther, "", "<!--"+text+"-->")
}

func defaultIgnoredComment(text string) bool {
	return strings.HasPrefix(text, "!") || regexpLeadingHash.MatchString(text)
}

func (d *driver) isUIDIgnoreComment(text string) bool {
	return d.fragments != nil && strings.HasPrefix(text, d.fragments.uid)
}

func looksLikeConditionalComment(text string) bool {
	t := strings.TrimSpace(text)
	return strings.HasPrefix(t, "[if ") && strings.HasSuffix(t, "]") && strings.Contains(t, "<![endif]")
}

// emitConditionalComment recursively minifies a conditional comment's
// inner markup when ProcessConditionalComments is set, otherwise keeps
// the comment verbatim (subject to the same RemoveComments policy as any
// other comment).
func (d *driver) emitConditionalComment(tok htmltok.Token) {
	text := tok.Text
	if !d.opts.ProcessConditionalComments {
		if d.opts.RemoveComments {
			return
		}
		d.append(segOther, "", "<!--"+text+"-->")
		return
	}

	openEnd := strings.Index(text, "]>")
	closeStart := strings.LastIndex(text, "<![endif]")
	if openEnd < 0 || closeStart < 0 || closeStart < openEnd {
		d.append(segOther, "", "<!--"+text+"-->")
		return
	}
	head := text[:openEnd+2]
	body := text[openEnd+2 : closeStart]
	tail := text[closeStart:]

	minified := d.recursiveMinify(body)
	d.append(segOther, "", "<!--"+head+minified+tail+"-->")
}

var regexpLeadingHash = regexp.MustCompile(`^\s*#`)
