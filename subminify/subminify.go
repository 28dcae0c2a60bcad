// Package subminify defines the narrow callback contract the core uses to
// invoke external CSS/JS/URL/SVG minifiers, plus the process-lifetime LRU
// caching and call-coalescing that wraps them. The core never inspects a
// sub-minifier's internals — it only ever calls a Func and reacts to the
// error it returns.
package subminify

import "context"

// Kind identifies which sub-minifier a Func backs, used for cache
// namespacing and MinifyError.Kind.
type Kind string

const (
	CSS Kind = "css"
	JS  Kind = "js"
	URL Kind = "url"
	SVG Kind = "svg"
)

// Hint carries the small amount of context a sub-minifier may need beyond
// the raw text: whether it's minifying a full document, an inline
// attribute value, or a narrower slice like a media-query or srcset
// component.
type Hint struct {
	// Context is one of "" (full document/stylesheet), "inline" (a style
	// or event-handler attribute value), or "media" (a media-query list).
	Context string
	// Tag is the element the text came from, when known ("script",
	// "style", "" for an attribute with no owning element context).
	Tag string
}

// Func is the sub-minifier contract: given text and an optional hint,
// return the minified text or an error. Implementations must not retain
// ctx past return and must not mutate the input string (strings are
// immutable in Go, but the contract is stated for parity with the
// original callable shape).
type Func func(ctx context.Context, text string, hint Hint) (string, error)
