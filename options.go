package minify

import (
	"log"
	"regexp"
	"strings"

	"github.com/aurorahtml/minify/internal/htmltok"
	"github.com/aurorahtml/minify/internal/predicate"
	"github.com/aurorahtml/minify/subminify"
)

// Attribute is the minifier's attribute record: {name, value?, quote?,
// customAssign, customOpen, customClose}. It is the same type the
// tokenizer emits, so no conversion happens at the tokenizer/driver
// boundary.
type Attribute = htmltok.Attribute

// NamePredicate normalises a tag or attribute name. The default lower-cases
// unless Options.CaseSensitive; inside <svg>/<math> it is shadowed to the
// identity function.
type NamePredicate func(string) string

// AttrSortFunc reorders attrs in place.
type AttrSortFunc func(tag string, attrs []Attribute)

// ClassSortFunc returns a reordered, space-joined class list.
type ClassSortFunc func(classList string) string

// EmptyAttrFunc decides whether a whitespace-only attribute value should be
// dropped.
type EmptyAttrFunc func(tag, name string) bool

// Options configures a single Minify call. The zero value is a
// maximally-conservative, no-op configuration; use Conservative or
// Comprehensive for ready-made profiles.
type Options struct {
	CaseSensitive               bool
	CollapseBooleanAttributes   bool
	CollapseInlineTagWhitespace bool
	CollapseWhitespace          bool
	ConservativeCollapse        bool
	ContinueOnMinifyError       bool
	ContinueOnParseError        bool

	CustomAttrAssign              []*regexp.Regexp
	CustomAttrCollapse            *regexp.Regexp
	CustomAttrSurround            [][2]*regexp.Regexp
	CustomEventAttributes         []*regexp.Regexp
	CustomFragmentQuantifierLimit int

	DecodeEntities bool

	HTML5 bool

	IgnoreCustomComments  []*regexp.Regexp
	IgnoreCustomFragments []*regexp.Regexp

	IncludeAutoGeneratedTags bool
	InlineCustomElements     []string
	// NoTrimElements names additional elements (beyond pre/textarea/
	// script/style) whose text content is never whitespace-collapsed.
	NoTrimElements []string

	KeepClosingSlash bool

	Log func(error)

	MaxInputLength int
	MaxLineLength  int

	// MinifyCSS/MinifyJS/MinifyURLs enable the default sub-minifier
	// backing (subminify.DefaultCSS/DefaultJS/DefaultURL) when true and
	// the matching *Func field is nil. Setting the *Func field always
	// takes precedence, matching the "bool | object | callable" shape
	// a JS-originated minifier option normally takes.
	MinifyCSS      bool
	MinifyCSSFunc  subminify.Func
	MinifyJS       bool
	MinifyJSFunc   subminify.Func
	MinifyURLs     bool
	MinifyURLsFunc subminify.Func
	// MinifySVG enables the etree-backed rewrite of an <svg> island's
	// whole subtree (subminify.DefaultSVG) when true and MinifySVGFunc
	// is nil; setting MinifySVGFunc always takes precedence.
	MinifySVG     bool
	MinifySVGFunc subminify.Func

	// ProcessScripts lists additional <script type="..."> values whose
	// body should be recursively minified as HTML.
	ProcessScripts []string
	// ExtraJSONTypes registers additional script MIME types that should
	// be treated as JSON (re-serialised, not JS-minified), beyond the
	// built-in application/json / importmap / ld+json set.
	ExtraJSONTypes []string

	Name NamePredicate

	NoNewlinesBeforeTagClose bool
	PartialMarkup            bool
	PreserveLineBreaks       bool
	PreventAttributesEscaping bool
	ProcessConditionalComments bool

	QuoteCharacter byte

	RemoveAttributeQuotes bool
	RemoveComments        bool

	RemoveEmptyAttributes     bool
	RemoveEmptyAttributesFunc EmptyAttrFunc

	RemoveEmptyElements       bool
	RemoveEmptyElementsExcept []string

	RemoveOptionalTags            bool
	RemoveRedundantAttributes     bool
	RemoveScriptTypeAttributes    bool
	RemoveStyleLinkTypeAttributes bool
	RemoveTagWhitespace           bool

	SortAttributes     bool
	SortAttributesFunc AttrSortFunc
	// SortAttributesExpr is an expr-lang expression evaluated per
	// attribute pair (env: {tag, a, b}) as a declarative alternative to
	// SortAttributesFunc; see internal/predicate.
	SortAttributesExpr string

	SortClassName     bool
	SortClassNameFunc ClassSortFunc

	TrimCustomFragments bool
	UseShortDoctype     bool

	// Caches backs the Sub-minifier Facade's process-lifetime LRU
	// caches. Nil uses the package-level default (see subminify.Default).
	Caches *subminify.Caches

	// Stats, if non-nil, is populated with counters after a successful
	// call.
	Stats *Stats
}

// Stats carries simple before/after counters a caller (e.g. the
// out-of-scope CLI) can use for reporting without the core printing
// anything itself. Minify fills in BytesIn, BytesOut and ElementsRemoved;
// CommentsDropped and TagsOmitted are not updated by it.
type Stats struct {
	BytesIn, BytesOut int
	CommentsDropped   int
	ElementsRemoved   int
	TagsOmitted       int
}

func defaultLogger(err error) { log.Printf("minify: %v", err) }

// normalise fills in defaults and compiles any *Expr predicate fields,
// returning a ready-to-use copy. It never mutates the caller's Options.
func (o Options) normalise() (Options, error) {
	if o.Log == nil {
		o.Log = defaultLogger
	}
	if o.CustomFragmentQuantifierLimit == 0 {
		o.CustomFragmentQuantifierLimit = 200
	}
	if o.Name == nil {
		if o.CaseSensitive {
			o.Name = func(s string) string { return s }
		} else {
			o.Name = strings.ToLower
		}
	}
	if o.Caches == nil {
		o.Caches = subminify.Default()
	}

	if o.SortAttributesFunc == nil && o.SortAttributesExpr != "" {
		prog, err := predicate.Compile(o.SortAttributesExpr)
		if err != nil {
			return o, &ConfigError{Msg: "SortAttributesExpr: " + err.Error()}
		}
		o.SortAttributesFunc = func(tag string, attrs []Attribute) {
			predicate.SortAttrs(prog, tag, attrs)
		}
	}

	return o, nil
}

// DefaultOptions returns the conservative default configuration: HTML5
// mode on, ContinueOnMinifyError on, everything else off. Minify uses
// this when called with a nil *Options.
func DefaultOptions() Options {
	return Options{
		HTML5:                 true,
		ContinueOnMinifyError: true,
	}
}

// shadowForeign returns a copy of o configured for content inside an
// <svg>/<math> island: case-sensitive names, identity name-normaliser, and
// the closing slash preserved on self-closing tags. It is installed on
// entry and the original Options restored on exit.
func (o Options) shadowForeign() Options {
	shadow := o
	shadow.CaseSensitive = true
	shadow.Name = func(s string) string { return s }
	shadow.KeepClosingSlash = true
	return shadow
}
