package htmltok

import (
	"fmt"
	"regexp"
	"strings"
)

// Options configures a single tokenizer run. It is deliberately narrow: the
// tokenizer only needs to know how to find the end of a start tag (custom
// attribute syntax) and whether to tolerate malformed markup.
type Options struct {
	ContinueOnParseError bool
	PartialMarkup        bool
	// WantsNextTag enables the one-token lookahead needed to populate
	// Token.NextTag/NextAttrs on TextToken. Disabling it is a minor
	// performance win when the caller never uses that context.
	WantsNextTag bool

	CustomAttrAssign   []*regexp.Regexp
	CustomAttrSurround [][2]*regexp.Regexp
}

// attrRegionFallback is the length above which the start-tag scanner
// switches from the general attribute pattern to a manual bounded search
// for the closing quote, to avoid catastrophic regex backtracking on
// pathological input.
const attrRegionFallback = 20000

var (
	tagNameRe   = regexp.MustCompile(`^([a-zA-Z][-a-zA-Z0-9:._]*)`)
	attrStartRe = regexp.MustCompile(`^[ \t\n\r\f]*`)
	attrNameRe  = regexp.MustCompile(`^([^\s=/>"'<]+)`)
)

type stackEntry struct {
	name  string
	attrs []Attribute
}

// Tokenizer turns an HTML/XML document into a flat token stream. It is not
// reentrant and is meant to be used once per document.
type Tokenizer struct {
	src  string
	opts Options

	caseSensitive bool
	// foreignTag is set while the attributes of an <svg>/<math> start tag
	// are scanned: they belong to foreign content even though the element
	// is not on the stack yet.
	foreignTag bool

	stack []stackEntry
	built []Token
	err   error
	idx   int
}

// New returns a Tokenizer ready to scan src.
func New(src string, opts Options) *Tokenizer {
	return &Tokenizer{src: src, opts: opts}
}

// SetCaseSensitive forces case-sensitive name handling for the whole scan,
// e.g. when the caller already knows the document root itself is a foreign
// (SVG/MathML) fragment. Leaving it false still preserves original casing
// inside any <svg>/<math> island encountered mid-document: since All runs
// as a single eager pass, per-element toggling can't be driven from
// outside the scan, so the tokenizer tracks foreign-content nesting itself
// via its open-element stack and consults inForeignContent at every name
// normalisation site instead of relying solely on the caseSensitive field.
func (t *Tokenizer) SetCaseSensitive(v bool) { t.caseSensitive = v }

// inForeignContent reports whether the tag about to be scanned is nested
// inside an <svg> or <math> ancestor already on the stack, per the HTML5
// foreign-content rules that give SVG/MathML elements and attributes their
// original (often camelCase) casing.
func (t *Tokenizer) inForeignContent() bool {
	for i := len(t.stack) - 1; i >= 0; i-- {
		switch t.stack[i].name {
		case "svg", "math":
			return true
		}
	}
	return false
}

// Err returns the terminal tokenizer error, if any (nil on clean EOF).
func (t *Tokenizer) Err() error { return t.err }

// All scans the entire document and returns its token stream. It is the
// only scanning entry point: rather than interleave document-order
// generation with lookahead bookkeeping, the whole stream is produced up
// front and PrevTag/NextTag context is filled in as a cheap second pass.
// This realizes the "pull-based iterator" shape called for by the design
// (no coroutines/async needed) while keeping the lookahead logic simple
// and provably document-ordered.
func (t *Tokenizer) All() ([]Token, error) {
	if t.built != nil || t.err != nil {
		return t.built, t.err
	}

	pos := 0
	for pos < len(t.src) {
		np, err := t.step(pos)
		if err != nil {
			if perr, ok := err.(*ParseError); ok && t.opts.ContinueOnParseError {
				t.emitText(string(t.src[pos]))
				pos++
				_ = perr
				continue
			}
			t.err = err
			return t.built, err
		}
		if np <= pos {
			// Defensive: never spin in place.
			np = pos + 1
		}
		pos = np
	}

	if !t.opts.PartialMarkup {
		for i := len(t.stack) - 1; i >= 0; i-- {
			t.emit(Token{Type: EndTagToken, Name: t.stack[i].name, AutoGenerated: true})
		}
		t.stack = nil
	}

	t.fillLookahead()
	return t.built, nil
}

func (t *Tokenizer) emit(tok Token) { t.built = append(t.built, tok) }

func (t *Tokenizer) emitText(s string) {
	if s == "" {
		return
	}
	if n := len(t.built); n > 0 && t.built[n-1].Type == TextToken {
		t.built[n-1].Text += s
		return
	}
	t.emit(Token{Type: TextToken, Text: s})
}

func (t *Tokenizer) fillLookahead() {
	prevTag, prevAttrs := "", []Attribute(nil)
	for i := range t.built {
		tok := &t.built[i]
		switch tok.Type {
		case TextToken:
			tok.PrevTag, tok.PrevAttrs = prevTag, prevAttrs
			if t.opts.WantsNextTag {
				for j := i + 1; j < len(t.built); j++ {
					nt := t.built[j]
					switch nt.Type {
					case StartTagToken:
						tok.NextTag, tok.NextAttrs = nt.Name, nt.Attr
					case EndTagToken:
						tok.NextTag, tok.NextAttrs = "/"+nt.Name, nt.Attr
					case CommentToken:
						tok.NextTag = "comment"
					}
					break
				}
			}
		case StartTagToken:
			prevTag, prevAttrs = tok.Name, tok.Attr
		case EndTagToken:
			prevTag, prevAttrs = "/"+tok.Name, tok.Attr
		case CommentToken:
			prevTag, prevAttrs = "comment", nil
		}
	}
}

func (t *Tokenizer) pos2line(pos int) Position {
	line, col := 1, 1
	for i := 0; i < pos && i < len(t.src); i++ {
		if t.src[i] == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Position{Line: line, Column: col}
}

func (t *Tokenizer) parseError(pos int, msg string) *ParseError {
	p := t.pos2line(pos)
	lo := pos - 25
	if lo < 0 {
		lo = 0
	}
	hi := pos + 25
	if hi > len(t.src) {
		hi = len(t.src)
	}
	return &ParseError{Line: p.Line, Column: p.Column, Context: t.src[lo:hi], Msg: msg}
}

// step consumes one construct starting at pos and returns the offset of
// the next unconsumed byte.
func (t *Tokenizer) step(pos int) (int, error) {
	if top := t.currentRawText(); top != "" {
		return t.scanRawText(pos, top)
	}

	if t.src[pos] != '<' {
		end := strings.IndexByte(t.src[pos:], '<')
		if end == -1 {
			t.emitText(t.src[pos:])
			return len(t.src), nil
		}
		t.emitText(t.src[pos : pos+end])
		return pos + end, nil
	}

	rest := t.src[pos:]
	switch {
	case strings.HasPrefix(rest, "<!--"):
		return t.scanComment(pos)
	case strings.HasPrefix(rest, "<![") && !strings.HasPrefix(rest, "<![CDATA["):
		return t.scanDownlevelConditional(pos)
	case strings.HasPrefix(rest, "<![CDATA["):
		return t.scanCDATA(pos)
	case strings.HasPrefix(rest, "<!") :
		return t.scanDoctype(pos)
	case strings.HasPrefix(rest, "</"):
		return t.scanEndTag(pos)
	default:
		if np, ok, err := t.tryStartTag(pos); ok {
			return np, err
		}
		// Not a recognizable tag: treat '<' as text.
		if !t.opts.ContinueOnParseError {
			return pos, t.parseError(pos, "invalid tag syntax")
		}
		t.emitText("<")
		return pos + 1, nil
	}
}

func (t *Tokenizer) currentRawText() string {
	if len(t.stack) == 0 {
		return ""
	}
	top := t.stack[len(t.stack)-1].name
	if IsRawText(top) || IsEscapableRawText(top) {
		return top
	}
	return ""
}

func (t *Tokenizer) scanRawText(pos int, name string) (int, error) {
	closeTag := "</" + name
	rest := t.src[pos:]
	lower := rest
	if !t.caseSensitive {
		lower = strings.ToLower(rest)
	}
	idx := strings.Index(lower, strings.ToLower(closeTag))
	if idx == -1 {
		t.emitText(rest)
		t.stack = t.stack[:len(t.stack)-1]
		t.emit(Token{Type: EndTagToken, Name: name, AutoGenerated: true})
		return len(t.src), nil
	}
	t.emitText(rest[:idx])
	return t.scanEndTag(pos + idx)
}

func (t *Tokenizer) scanComment(pos int) (int, error) {
	end := strings.Index(t.src[pos:], "-->")
	var text string
	var next int
	if end == -1 {
		text = t.src[pos+4:]
		next = len(t.src)
	} else {
		text = t.src[pos+4 : pos+end]
		next = pos + end + 3
	}
	t.emit(Token{Type: CommentToken, Text: text})
	return next, nil
}

// scanDownlevelConditional handles the non-standard downlevel-revealed form
// "<![if ...]> ... <![endif]>", emitted as a pair of non-standard comments
// around their bracket markers so the driver can treat them uniformly with
// "<!--[if ...]>"/"<![endif]-->".
func (t *Tokenizer) scanDownlevelConditional(pos int) (int, error) {
	end := strings.IndexByte(t.src[pos:], ']')
	if end == -1 {
		if !t.opts.ContinueOnParseError {
			return pos, t.parseError(pos, "unterminated conditional marker")
		}
		t.emitText(t.src[pos:])
		return len(t.src), nil
	}
	closeAngle := strings.IndexByte(t.src[pos+end:], '>')
	if closeAngle == -1 {
		if !t.opts.ContinueOnParseError {
			return pos, t.parseError(pos, "unterminated conditional marker")
		}
		t.emitText(t.src[pos:])
		return len(t.src), nil
	}
	text := t.src[pos+2 : pos+end+closeAngle+1]
	t.emit(Token{Type: CommentToken, Text: text, NonStandardComment: true})
	return pos + end + closeAngle + 1, nil
}

func (t *Tokenizer) scanCDATA(pos int) (int, error) {
	end := strings.Index(t.src[pos:], "]]>")
	var text string
	var next int
	if end == -1 {
		text = t.src[pos+9:]
		next = len(t.src)
	} else {
		text = t.src[pos+9 : pos+end]
		next = pos + end + 3
	}
	t.emitText(text)
	return next, nil
}

func (t *Tokenizer) scanDoctype(pos int) (int, error) {
	end := strings.IndexByte(t.src[pos:], '>')
	if end == -1 {
		if !t.opts.ContinueOnParseError {
			return pos, t.parseError(pos, "unterminated doctype")
		}
		t.emitText(t.src[pos:])
		return len(t.src), nil
	}
	text := t.src[pos+2 : pos+end]
	t.emit(Token{Type: DoctypeToken, Text: strings.TrimSpace(text)})
	return pos + end + 1, nil
}

func (t *Tokenizer) normalizeName(name string) string {
	if t.caseSensitive || t.foreignTag || t.inForeignContent() {
		return name
	}
	return strings.ToLower(name)
}

func (t *Tokenizer) tryStartTag(pos int) (int, bool, error) {
	m := tagNameRe.FindString(t.src[pos+1:])
	if m == "" {
		return pos, false, nil
	}
	name := t.normalizeName(m)
	cur := pos + 1 + len(m)

	t.foreignTag = name == "svg" || name == "math"
	attrs, np, err := t.scanAttrs(cur)
	t.foreignTag = false
	if err != nil {
		return pos, true, err
	}
	cur = np

	selfClosingSlash := false
	if cur < len(t.src) && t.src[cur] == '/' {
		selfClosingSlash = true
		cur++
	}
	if cur >= len(t.src) || t.src[cur] != '>' {
		if !t.opts.ContinueOnParseError {
			return pos, true, t.parseError(pos, "unterminated start tag")
		}
		t.emitText("<")
		return pos + 1, true, nil
	}
	cur++ // consume '>'

	void := IsVoid(name)
	tok := Token{
		Type:             StartTagToken,
		Name:             name,
		Attr:             attrs,
		SelfClosing:      void || selfClosingSlash,
		HadTrailingSlash: selfClosingSlash,
	}

	t.applyImplicitOpen(name)
	t.emit(tok)

	if void || selfClosingSlash {
		if !void {
			// Non-void elements closed with "/>" in HTML mode are treated
			// as if they were opened and immediately closed.
			t.emit(Token{Type: EndTagToken, Name: name, AutoGenerated: true})
		}
		return cur, true, nil
	}

	if name != "col" {
		// <col> never opens a scope of its own; every other non-void,
		// non-self-closing element does, raw-text and escapable-raw-text
		// elements (script/style/textarea/title) included — they're
		// popped by scanRawText's matching end tag instead of by nested
		// start tags, since currentRawText keeps them from being parsed
		// as markup.
		t.stack = append(t.stack, stackEntry{name: name, attrs: attrs})
	}
	return cur, true, nil
}

// applyImplicitOpen synthesizes implied tag-closes/opens before a new start
// tag is pushed, per the HTML5 "optional tag" implicit-closing rules.
func (t *Tokenizer) applyImplicitOpen(name string) {
	if top := t.topName(); top == "p" && IsNonPhrasing(name) {
		t.closeTo("p")
	}

	switch name {
	case "tbody", "tfoot":
		if top := t.topName(); top == "thead" || top == "tbody" {
			t.closeToWithinTable(top)
		}
	case "thead":
		if top := t.topName(); top == "tbody" || top == "tfoot" {
			t.closeToWithinTable(top)
		}
	case "col":
		if top := t.topName(); top != "colgroup" {
			t.emit(Token{Type: StartTagToken, Name: "colgroup", AutoGenerated: true})
			t.stack = append(t.stack, stackEntry{name: "colgroup"})
		}
	case "dt", "dd":
		if top := t.topName(); top == "dt" || top == "dd" {
			t.closeTo(top)
		}
	}
}

func (t *Tokenizer) topName() string {
	if len(t.stack) == 0 {
		return ""
	}
	return t.stack[len(t.stack)-1].name
}

// closeTo emits end tags for every element above and including the nearest
// open element named name.
func (t *Tokenizer) closeTo(name string) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].name == name {
			for j := len(t.stack) - 1; j >= i; j-- {
				t.emit(Token{Type: EndTagToken, Name: t.stack[j].name, AutoGenerated: true})
			}
			t.stack = t.stack[:i]
			return
		}
	}
}

// closeToWithinTable is like closeTo but never scans past the nearest
// enclosing <table>, matching the "same table" scoping rule.
func (t *Tokenizer) closeToWithinTable(name string) {
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].name == "table" {
			return
		}
		if t.stack[i].name == name {
			for j := len(t.stack) - 1; j >= i; j-- {
				t.emit(Token{Type: EndTagToken, Name: t.stack[j].name, AutoGenerated: true})
			}
			t.stack = t.stack[:i]
			return
		}
	}
}

func (t *Tokenizer) scanEndTag(pos int) (int, error) {
	m := tagNameRe.FindString(t.src[pos+2:])
	if m == "" {
		end := strings.IndexByte(t.src[pos:], '>')
		if end == -1 {
			if !t.opts.ContinueOnParseError {
				return pos, t.parseError(pos, "malformed end tag")
			}
			t.emitText(t.src[pos:])
			return len(t.src), nil
		}
		return pos + end + 1, nil
	}
	name := t.normalizeName(m)
	cur := pos + 2 + len(m)
	end := strings.IndexByte(t.src[cur:], '>')
	if end == -1 {
		if !t.opts.ContinueOnParseError {
			return pos, t.parseError(pos, "unterminated end tag")
		}
		t.emitText(t.src[pos:])
		return len(t.src), nil
	}
	cur = cur + end + 1

	if name == "br" {
		// </br> synthesizes a unary <br>.
		t.emit(Token{Type: StartTagToken, Name: "br", SelfClosing: true, AutoGenerated: true})
		return cur, nil
	}

	idx := -1
	for i := len(t.stack) - 1; i >= 0; i-- {
		if t.stack[i].name == name {
			idx = i
			break
		}
	}

	if idx == -1 {
		if name == "p" {
			t.emit(Token{Type: StartTagToken, Name: "p", AutoGenerated: true})
			t.emit(Token{Type: EndTagToken, Name: "p", AutoGenerated: true})
			return cur, nil
		}
		if t.opts.PartialMarkup {
			t.emit(Token{Type: EndTagToken, Name: name})
			return cur, nil
		}
		// Ignore the stray end tag: there is nothing open to close.
		return cur, nil
	}

	for j := len(t.stack) - 1; j > idx; j-- {
		t.emit(Token{Type: EndTagToken, Name: t.stack[j].name, AutoGenerated: true})
	}
	t.emit(Token{Type: EndTagToken, Name: name})
	t.stack = t.stack[:idx]
	return cur, nil
}

// scanAttrs parses the attribute list of a start tag starting at cur
// (immediately after the tag name) up to (not including) the closing
// "/>"/">" . It understands custom surround/assign syntax and falls back to
// a manual bounded scan for long unresolved regions to avoid catastrophic
// regex backtracking.
func (t *Tokenizer) scanAttrs(cur int) ([]Attribute, int, error) {
	var attrs []Attribute
	regionStart := cur
	for {
		ws := attrStartRe.FindString(t.src[cur:])
		cur += len(ws)
		if cur >= len(t.src) {
			return attrs, cur, nil
		}
		if t.src[cur] == '>' || (t.src[cur] == '/' && cur+1 < len(t.src) && t.src[cur+1] == '>') {
			return attrs, cur, nil
		}

		if cur-regionStart > attrRegionFallback {
			return t.scanAttrsBounded(regionStart, attrs)
		}

		var customOpen string
		for _, pair := range t.opts.CustomAttrSurround {
			if loc := pair[0].FindStringIndex(t.src[cur:]); loc != nil && loc[0] == 0 {
				customOpen = t.src[cur+loc[0] : cur+loc[1]]
				cur += loc[1]
				break
			}
		}

		nameMatch := attrNameRe.FindString(t.src[cur:])
		if nameMatch == "" {
			// Not an attribute start; bail out of the loop so the caller
			// can decide how to terminate the tag.
			return attrs, cur, nil
		}
		name := nameMatch
		cur += len(name)

		attr := Attribute{Name: t.normalizeName(name), CustomOpen: customOpen}

		wsBefore := attrStartRe.FindString(t.src[cur:])
		eqPos := cur + len(wsBefore)

		assignLen := 0
		if eqPos < len(t.src) && t.src[eqPos] == '=' {
			assignLen = 1
		} else {
			for _, re := range t.opts.CustomAttrAssign {
				if loc := re.FindStringIndex(t.src[eqPos:]); loc != nil && loc[0] == 0 {
					assignLen = loc[1]
					attr.CustomAssign = t.src[eqPos : eqPos+loc[1]]
					break
				}
			}
		}

		if assignLen > 0 {
			cur = eqPos + assignLen
			cur += len(attrStartRe.FindString(t.src[cur:]))
			if cur < len(t.src) && (t.src[cur] == '"' || t.src[cur] == '\'') {
				quote := t.src[cur]
				vstart := cur + 1
				vend := strings.IndexByte(t.src[vstart:], quote)
				if vend == -1 {
					if !t.opts.ContinueOnParseError {
						return nil, cur, t.parseError(cur, "unterminated attribute value")
					}
					vend = len(t.src) - vstart
				}
				attr.Value = t.src[vstart : vstart+vend]
				attr.HasValue = true
				attr.Quote = quote
				cur = vstart + vend + 1
			} else {
				vstart := cur
				for cur < len(t.src) && !isAttrBoundary(t.src[cur]) {
					cur++
				}
				attr.Value = t.src[vstart:cur]
				attr.HasValue = true
			}
		}

		for _, pair := range t.opts.CustomAttrSurround {
			if loc := pair[1].FindStringIndex(t.src[cur:]); loc != nil && loc[0] == 0 {
				attr.CustomClose = t.src[cur+loc[0] : cur+loc[1]]
				cur += loc[1]
				break
			}
		}

		attrs = append(attrs, attr)
		regionStart = cur
	}
}

// scanAttrsBounded is the ReDoS-resistant fallback: it walks byte-by-byte
// instead of re-running the general attribute regex over a huge unresolved
// region.
func (t *Tokenizer) scanAttrsBounded(cur int, attrs []Attribute) ([]Attribute, int, error) {
	for cur < len(t.src) {
		for cur < len(t.src) && isAttrSpace(t.src[cur]) {
			cur++
		}
		if cur >= len(t.src) || t.src[cur] == '>' || t.src[cur] == '/' {
			return attrs, cur, nil
		}
		nstart := cur
		for cur < len(t.src) && !isAttrSpace(t.src[cur]) && t.src[cur] != '=' && t.src[cur] != '>' {
			cur++
		}
		name := t.normalizeName(t.src[nstart:cur])
		attr := Attribute{Name: name}

		save := cur
		for cur < len(t.src) && isAttrSpace(t.src[cur]) {
			cur++
		}
		if cur < len(t.src) && t.src[cur] == '=' {
			cur++
			for cur < len(t.src) && isAttrSpace(t.src[cur]) {
				cur++
			}
			if cur < len(t.src) && (t.src[cur] == '"' || t.src[cur] == '\'') {
				quote := t.src[cur]
				vstart := cur + 1
				idx := strings.IndexByte(t.src[vstart:], quote)
				if idx == -1 {
					attr.Value = t.src[vstart:]
					cur = len(t.src)
				} else {
					attr.Value = t.src[vstart : vstart+idx]
					cur = vstart + idx + 1
				}
				attr.HasValue = true
				attr.Quote = quote
			} else {
				vstart := cur
				for cur < len(t.src) && !isAttrBoundary(t.src[cur]) {
					cur++
				}
				attr.Value = t.src[vstart:cur]
				attr.HasValue = true
			}
		} else {
			cur = save
		}
		attrs = append(attrs, attr)
	}
	return attrs, cur, nil
}

func isAttrSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f':
		return true
	}
	return false
}

func isAttrBoundary(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '"', '\'', '`', '=', '<', '>':
		return true
	}
	return false
}

// ParseError reports malformed markup encountered while tokenizing. Line
// and Column are 1-based; Context is up to 50 characters of surrounding
// source.
type ParseError struct {
	Line, Column int
	Context      string
	Msg          string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at %d:%d: %s (near %q)", e.Line, e.Column, e.Msg, e.Context)
}
