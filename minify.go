package minify

import (
	"github.com/aurorahtml/minify/internal/htmltok"
)

// Minify returns a semantically-equivalent, shorter rendering of source
// under opts. A nil opts is equivalent to a pointer to DefaultOptions().
func Minify(source string, opts *Options) (string, error) {
	var o Options
	if opts == nil {
		o = DefaultOptions()
	} else {
		o = *opts
	}

	if o.MaxInputLength > 0 && len(source) > o.MaxInputLength {
		return "", &InputTooLarge{Length: len(source), Max: o.MaxInputLength}
	}

	o, err := o.normalise()
	if err != nil {
		return "", err
	}

	frags := newFragmentTables()
	src := frags.extractIgnoreRegions(source)
	src = frags.extractCustomFragments(src, o.IgnoreCustomFragments)

	var sorter *sortAnalyser
	if (o.SortAttributes && o.SortAttributesFunc == nil) || (o.SortClassName && o.SortClassNameFunc == nil) {
		sorter, err = analyseSortOrder(src, o)
		if err != nil {
			return "", err
		}
	}

	toks, err := tokenize(src, o)
	if err != nil {
		return "", err
	}

	d := newDriver(o, sorter)
	d.fragments = frags
	out, err := d.run(toks)
	if err != nil {
		return "", err
	}

	out = join(out, frags, o)

	if o.Stats != nil {
		o.Stats.BytesIn = len(source)
		o.Stats.BytesOut = len(out)
	}

	return out, nil
}

func tokenize(src string, o Options) ([]htmltok.Token, error) {
	tok := htmltok.New(src, htmltok.Options{
		ContinueOnParseError: o.ContinueOnParseError,
		PartialMarkup:        o.PartialMarkup,
		WantsNextTag:         true,
		CustomAttrAssign:     o.CustomAttrAssign,
		CustomAttrSurround:   o.CustomAttrSurround,
	})
	tok.SetCaseSensitive(o.CaseSensitive)
	return tok.All()
}

// analyseSortOrder runs a preliminary tokenize pass with every aggressive
// or destructive option disabled, walking the resulting tag stream to
// build the attribute/class frequency chains the real pass will sort by.
func analyseSortOrder(src string, o Options) (*sortAnalyser, error) {
	pre := o
	pre.SortAttributes = false
	pre.SortAttributesFunc = nil
	pre.SortClassName = false
	pre.SortClassNameFunc = nil
	pre.CollapseWhitespace = false
	pre.RemoveAttributeQuotes = false
	pre.DecodeEntities = false
	pre.MinifyCSS = false
	pre.MinifyCSSFunc = nil
	pre.MinifyJS = false
	pre.MinifyJSFunc = nil
	pre.MinifyURLs = false
	pre.MinifyURLsFunc = nil
	pre.ContinueOnParseError = true

	toks, err := tokenize(src, pre)
	if err != nil {
		return nil, err
	}

	sorter := newSortAnalyser()
	for _, tok := range toks {
		if tok.Type == htmltok.StartTagToken {
			sorter.observe(pre.Name(tok.Name), tok.Attr)
		}
	}
	return sorter, nil
}
