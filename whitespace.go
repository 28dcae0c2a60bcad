package minify

import "strings"

// inlineElements never force a line break and participate in "don't trim
// whitespace adjacent to me" decisions the same way text does.
var inlineElements = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "b": true, "bdo": true,
	"big": true, "br": true, "button": true, "cite": true, "code": true,
	"dfn": true, "em": true, "font": true, "i": true, "img": true,
	"input": true, "kbd": true, "label": true, "map": true, "object": true,
	"output": true, "q": true, "samp": true, "select": true, "small": true,
	"span": true, "strike": true, "strong": true, "sub": true, "sup": true,
	"textarea": true, "tt": true, "u": true, "var": true,
}

// inlineTextWrapperElements are elements whose presence just *before* a
// text run (as an end tag) should not force a trim on that side, because
// the element itself reads like running text.
var inlineTextWrapperElements = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "b": true, "bdo": true,
	"big": true, "button": true, "cite": true, "code": true, "dfn": true,
	"em": true, "font": true, "i": true, "kbd": true, "label": true,
	"object": true, "output": true, "q": true, "samp": true, "select": true,
	"small": true, "span": true, "strike": true, "strong": true, "sub": true,
	"sup": true, "textarea": true, "tt": true, "u": true, "var": true,
}

// alwaysKeepSurroundingWhitespace never has the whitespace on either side
// of it collapsed, because the element itself renders as content (or, for
// wbr, is a zero-width break point whose surrounding space is meaningful).
var alwaysKeepSurroundingWhitespace = map[string]bool{
	"comment": true, "img": true, "input": true, "wbr": true,
}

// formControlElements participate in the aggressive
// CollapseInlineTagWhitespace rule: whitespace purely between two of them
// collapses even though they're otherwise inline.
var formControlElements = map[string]bool{
	"button": true, "input": true, "select": true, "textarea": true,
	"label": true, "option": true, "optgroup": true,
}

func stripLeadingSlash(tag string) string {
	return strings.TrimPrefix(tag, "/")
}

func isHiddenInput(tag string, attrs []Attribute) bool {
	if stripLeadingSlash(tag) != "input" {
		return false
	}
	for _, a := range attrs {
		if a.Name == "type" && strings.EqualFold(a.Value, "hidden") {
			return true
		}
	}
	return false
}

// trimDecision computes (trimLeft, trimRight) for a text run given the
// element names (and their attributes) immediately before and after it.
// prevTag/nextTag follow the tokenizer's convention: "" at a document
// boundary, "/name" for an end tag, or the literal "comment"; inline names
// beyond the builtin sets that the caller has declared custom-inline are
// passed in via extraInline/extraInlineText.
func trimDecision(prevTag, nextTag string, prevAttrs, nextAttrs []Attribute, o Options, extraInline, extraInlineText map[string]bool) (trimLeft, trimRight, collapseAll bool) {
	collapseAll = o.CollapseWhitespace

	prevName := stripLeadingSlash(prevTag)
	nextName := stripLeadingSlash(nextTag)

	prevKeeps := alwaysKeepSurroundingWhitespace[prevName] && !isHiddenInput(prevTag, prevAttrs)
	nextKeeps := alwaysKeepSurroundingWhitespace[nextName] && !isHiddenInput(nextTag, nextAttrs)

	if o.CollapseInlineTagWhitespace && formControlElements[prevName] && formControlElements[nextName] {
		return true, true, collapseAll
	}

	trimLeft = true
	trimRight = true

	if prevTag != "" {
		if prevKeeps {
			trimLeft = false
		} else if strings.HasPrefix(prevTag, "/") {
			// End tag immediately before this text: don't trim if the
			// closing element reads as inline text.
			if inlineTextWrapperElements[prevName] || extraInlineText[prevName] {
				trimLeft = false
			}
		} else {
			// Start tag immediately before this text.
			if inlineElements[prevName] || extraInline[prevName] {
				trimLeft = false
			}
		}
	}

	if nextTag != "" {
		if nextKeeps {
			trimRight = false
		} else if strings.HasPrefix(nextTag, "/") {
			if inlineElements[nextName] || extraInline[nextName] {
				trimRight = false
			}
		} else {
			if inlineTextWrapperElements[nextName] || extraInlineText[nextName] {
				trimRight = false
			}
		}
	}

	return trimLeft, trimRight, collapseAll
}

const whitespaceChars = " \t\n\r\f\v"

func isWhitespace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

// collapseWhitespace trims and/or collapses interior whitespace runs in
// str, honouring ConservativeCollapse (never trim to nothing) and
// PreserveLineBreaks (keep one \n where a run contained one).
func collapseWhitespace(str string, o Options, trimLeft, trimRight, collapseAll bool) string {
	if str == "" {
		return str
	}

	leadRun, rest := splitLeadingWhitespace(str)
	rest, trailRun := splitTrailingWhitespace(rest)

	leadOut := collapseRun(leadRun, o, trimLeft)
	trailOut := collapseRun(trailRun, o, trimRight)

	if collapseAll {
		rest = collapseInteriorRuns(rest)
	}

	return leadOut + rest + trailOut
}

func splitLeadingWhitespace(s string) (lead, rest string) {
	i := 0
	for i < len(s) && isWhitespace(s[i]) {
		i++
	}
	// A no-break space (' ') is not whitespace here and is never split off.
	return s[:i], s[i:]
}

func splitTrailingWhitespace(s string) (rest, trail string) {
	i := len(s)
	for i > 0 && isWhitespace(s[i-1]) {
		i--
	}
	// A no-break space (' ') is not whitespace here and is never split off.
	return s[:i], s[i:]
}

// collapseRun reduces a leading/trailing whitespace run to nothing (if
// trim is requested), or to a single representative space/tab/newline if
// ConservativeCollapse or PreserveLineBreaks requires something to survive.
func collapseRun(run string, o Options, trim bool) string {
	if run == "" {
		return ""
	}
	if !trim {
		return run
	}
	if o.PreserveLineBreaks && strings.ContainsRune(run, '\n') {
		return "\n"
	}
	if o.ConservativeCollapse {
		if strings.IndexByte(run, ' ') == -1 && strings.ContainsRune(run, '\t') {
			return "\t"
		}
		return " "
	}
	return ""
}

// collapseInteriorRuns replaces every run of plain whitespace (space, tab,
// newline, CR, FF, VT) with a single space. A no-break space is never part of
// a run and is always kept as-is. Standalone tabs with no other
// whitespace around them are left untouched, matching the "tabs survive"
// carve-out.
func collapseInteriorRuns(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	i := 0
	for i < len(s) {
		c := s[i]
		if c == '\t' {
			// A lone tab (not part of a larger whitespace run) survives.
			if (i == 0 || !isWhitespace(s[i-1])) && (i+1 >= len(s) || !isWhitespace(s[i+1])) {
				b.WriteByte('\t')
				i++
				continue
			}
		}
		if isWhitespace(c) {
			j := i
			for j < len(s) && isWhitespace(s[j]) {
				j++
			}
			b.WriteByte(' ')
			i = j
			continue
		}
		b.WriteByte(c)
		i++
	}
	return b.String()
}

// collapseWhitespaceSmart is the entry point the driver calls from
// chars(): it decides trim/collapse flags from the surrounding tags and
// then applies them.
func collapseWhitespaceSmart(text, prevTag, nextTag string, prevAttrs, nextAttrs []Attribute, o Options, extraInline, extraInlineText map[string]bool) string {
	trimLeft, trimRight, collapseAll := trimDecision(prevTag, nextTag, prevAttrs, nextAttrs, o, extraInline, extraInlineText)
	return collapseWhitespace(text, o, trimLeft, trimRight, collapseAll)
}
