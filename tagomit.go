package minify

// startTagOmittable reports whether tag's opening tag can be dropped
// unconditionally regardless of what follows it (the "always" rules;
// conditional ones — body unless metadata comes first, colgroup/tbody
// only before their first child — are applied at the call sites in the
// driver, which has the lookahead to check).
func startTagOmittable(tag string) bool {
	switch tag {
	case "html", "head":
		return true
	}
	return false
}

// bodyStartOmittable reports whether a <body> start tag can be dropped
// given that firstChild is the name of the first thing that will appear
// inside it (empty string if body turns out empty).
func bodyStartOmittable(firstChild string) bool {
	switch firstChild {
	case "meta", "link", "script", "style", "template":
		return false
	}
	return true
}

// colgroupStartOmittable reports whether <colgroup> can be dropped given
// that firstChild is the name of the element immediately inside it.
func colgroupStartOmittable(firstChild string) bool { return firstChild == "col" }

// tbodyStartOmittable reports whether <tbody> can be dropped given that
// firstChild is the name of the element immediately inside it.
func tbodyStartOmittable(firstChild string) bool { return firstChild == "tr" }

// endTagUnconditional names end tags that may always be dropped,
// regardless of what follows.
var endTagUnconditional = map[string]bool{
	"html": true, "head": true, "body": true, "colgroup": true, "caption": true,
}

// rubyClosers before each other per the Ruby extensions draft: rt/rp may
// be omitted before another rt or rp.
var rubyClosers = map[string]bool{"rt": true, "rp": true}

// pInlineElements are the inline/phrasing elements that a </p> may never
// be omitted before — everything else that is block-level is fair game.
var pInlineElements = map[string]bool{
	"a": true, "abbr": true, "acronym": true, "b": true, "bdo": true,
	"big": true, "br": true, "button": true, "cite": true, "code": true,
	"dfn": true, "em": true, "font": true, "i": true, "img": true,
	"input": true, "kbd": true, "label": true, "map": true, "object": true,
	"output": true, "q": true, "samp": true, "select": true, "small": true,
	"span": true, "strike": true, "strong": true, "sub": true, "sup": true,
	"textarea": true, "tt": true, "u": true, "var": true,
}

// endTagOmittableBefore reports whether tag's end tag may be dropped
// because next (the name of the sibling or enclosing close that follows
// it; "" if nothing follows at this nesting level) disqualifies it from
// needing an explicit close.
func endTagOmittableBefore(tag, next string) bool {
	if endTagUnconditional[tag] {
		return true
	}
	switch tag {
	case "li":
		return next == "li" || next == ""
	case "optgroup":
		return next == "optgroup" || next == ""
	case "tr":
		return next == "tr" || next == ""
	case "dt", "dd":
		return next == "dt" || next == "dd" || next == ""
	case "p":
		if next == "" {
			return true
		}
		return !pInlineElements[next]
	case "rt", "rp":
		return rubyClosers[next] || next == ""
	case "option":
		return next == "option" || next == "optgroup" || next == ""
	case "thead", "tbody":
		return next == "thead" || next == "tbody" || next == "tfoot" || next == ""
	case "tfoot":
		return next == "tbody" || next == ""
	case "td", "th":
		return next == "td" || next == "th" || next == ""
	}
	return false
}
