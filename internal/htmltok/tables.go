package htmltok

import "golang.org/x/net/html/atom"

// voidElements never have a closing tag; the tokenizer always reports them
// as SelfClosing regardless of how they were spelled in the source.
var voidElements = map[atom.Atom]bool{
	atom.Area: true, atom.Base: true, atom.Br: true, atom.Col: true,
	atom.Embed: true, atom.Hr: true, atom.Img: true, atom.Input: true,
	atom.Link: true, atom.Meta: true, atom.Source: true, atom.Track: true,
	atom.Wbr: true,
	// Legacy/non-standard void elements some authors still emit.
	atom.Basefont: true, atom.Bgsound: true,
}

// rawTextElements are never parsed as markup; their content runs verbatim
// until the matching end tag.
var rawTextElements = map[atom.Atom]bool{
	atom.Script: true, atom.Style: true, atom.Noscript: true,
}

// escapableRawTextElements additionally decode entities but still don't
// nest markup (textarea/title). The tokenizer treats them like raw text for
// tag-matching purposes but the driver is free to decode entities in them.
var escapableRawTextElements = map[atom.Atom]bool{
	atom.Textarea: true, atom.Title: true,
}

// nonPhrasingElements is the (practical, non-exhaustive) set of elements
// that are never phrasing content; encountering one while <p> is open
// implicitly closes the <p>, per the HTML5 "optional tag" rules.
var nonPhrasingElements = map[atom.Atom]bool{
	atom.Address: true, atom.Article: true, atom.Aside: true, atom.Blockquote: true,
	atom.Details: true, atom.Div: true, atom.Dl: true, atom.Fieldset: true,
	atom.Figcaption: true, atom.Figure: true, atom.Footer: true, atom.Form: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Header: true, atom.Hgroup: true, atom.Hr: true, atom.Main: true, atom.Menu: true,
	atom.Nav: true, atom.Ol: true, atom.P: true, atom.Pre: true, atom.Section: true,
	atom.Table: true, atom.Ul: true, atom.Dd: true, atom.Dt: true, atom.Li: true,
	atom.Center: true, atom.Dir: true, atom.Listing: true, atom.Xmp: true,
}

// specialElements is the HTML "special" element category, exposed through
// IsSpecial. The tokenizer's end-tag resolution does not consult it: an end
// tag closes the nearest open element of the same name.
var specialElements = map[atom.Atom]bool{
	atom.Address: true, atom.Applet: true, atom.Area: true, atom.Article: true,
	atom.Aside: true, atom.Base: true, atom.Body: true, atom.Blockquote: true,
	atom.Button: true, atom.Caption: true, atom.Center: true, atom.Col: true,
	atom.Colgroup: true, atom.Dd: true, atom.Details: true, atom.Dir: true,
	atom.Div: true, atom.Dl: true, atom.Dt: true, atom.Embed: true,
	atom.Fieldset: true, atom.Figcaption: true, atom.Figure: true, atom.Footer: true,
	atom.Form: true, atom.Frame: true, atom.Frameset: true,
	atom.H1: true, atom.H2: true, atom.H3: true, atom.H4: true, atom.H5: true, atom.H6: true,
	atom.Head: true, atom.Header: true, atom.Hgroup: true, atom.Hr: true, atom.Html: true,
	atom.Iframe: true, atom.Img: true, atom.Input: true, atom.Li: true, atom.Link: true,
	atom.Listing: true, atom.Main: true, atom.Marquee: true, atom.Menu: true, atom.Meta: true,
	atom.Nav: true, atom.Noembed: true, atom.Noframes: true, atom.Noscript: true,
	atom.Object: true, atom.Ol: true, atom.P: true, atom.Param: true, atom.Plaintext: true,
	atom.Pre: true, atom.Script: true, atom.Section: true, atom.Select: true,
	atom.Source: true, atom.Style: true, atom.Summary: true, atom.Table: true,
	atom.Tbody: true, atom.Td: true, atom.Template: true, atom.Textarea: true,
	atom.Tfoot: true, atom.Th: true, atom.Thead: true, atom.Title: true, atom.Tr: true,
	atom.Track: true, atom.Ul: true, atom.Wbr: true, atom.Xmp: true,
}

// booleanAttributes is the default set collapsible to a bare name by
// Options.CollapseBooleanAttributes. "draggable" is excluded: it is a
// tri-state attribute (true/false/auto), never boolean, and the attribute
// builder gives it no other treatment, so its value is always kept.
var booleanAttributes = map[string]bool{
	"allowfullscreen": true, "async": true, "autofocus": true, "autoplay": true,
	"checked": true, "compact": true, "controls": true, "declare": true,
	"default": true, "defaultchecked": true, "defaultmuted": true,
	"defaultselected": true, "defer": true, "disabled": true, "enabled": true,
	"formnovalidate": true, "hidden": true, "indeterminate": true, "inert": true,
	"ismap": true, "itemscope": true, "loop": true, "multiple": true, "muted": true,
	"nohref": true, "noresize": true, "noshade": true, "novalidate": true,
	"nowrap": true, "open": true, "pauseonexit": true, "readonly": true,
	"required": true, "reversed": true, "scoped": true, "seamless": true,
	"selected": true, "sortable": true, "truespeed": true, "typemustmatch": true,
	"visible": true,
}

// IsVoid reports whether the named element is always self-closing.
func IsVoid(name string) bool { return voidElements[atom.Lookup([]byte(name))] }

// IsRawText reports whether the named element's content is never parsed
// as markup (script/style/noscript).
func IsRawText(name string) bool { return rawTextElements[atom.Lookup([]byte(name))] }

// IsEscapableRawText reports whether the named element allows entities but
// not child markup (textarea/title).
func IsEscapableRawText(name string) bool {
	return escapableRawTextElements[atom.Lookup([]byte(name))]
}

// IsNonPhrasing reports whether name is never valid phrasing content.
func IsNonPhrasing(name string) bool { return nonPhrasingElements[atom.Lookup([]byte(name))] }

// IsSpecial reports whether name belongs to the HTML "special" category.
func IsSpecial(name string) bool { return specialElements[atom.Lookup([]byte(name))] }

// IsBooleanAttribute reports whether attr collapses to a bare name under
// Options.CollapseBooleanAttributes.
func IsBooleanAttribute(attr string) bool { return booleanAttributes[attr] }
