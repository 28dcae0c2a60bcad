package minify

// Conservative returns a safety-first profile: whitespace collapse and
// comment removal only, nothing that could plausibly change rendering or
// break template syntax embedded in attributes.
func Conservative() Options {
	o := DefaultOptions()
	o.CollapseWhitespace = true
	o.RemoveComments = true
	o.DecodeEntities = false
	return o
}

// Comprehensive returns an aggressive, size-first profile: every
// transformation this package implements is turned on except
// RemoveEmptyElements, which stays off.
func Comprehensive() Options {
	o := DefaultOptions()
	o.CaseSensitive = false
	o.CollapseBooleanAttributes = true
	o.CollapseInlineTagWhitespace = true
	o.CollapseWhitespace = true
	o.ConservativeCollapse = false
	o.DecodeEntities = true
	o.MinifyCSS = true
	o.MinifyJS = true
	o.MinifySVG = true
	o.MinifyURLs = true
	o.RemoveAttributeQuotes = true
	o.RemoveComments = true
	o.RemoveEmptyAttributes = true
	o.RemoveEmptyElements = false
	o.RemoveOptionalTags = true
	o.RemoveRedundantAttributes = true
	o.RemoveScriptTypeAttributes = true
	o.RemoveStyleLinkTypeAttributes = true
	o.RemoveTagWhitespace = true
	o.SortAttributes = true
	o.SortClassName = true
	o.UseShortDoctype = true
	return o
}

// presetRegistry backs GetPreset/GetPresetNames. It is built once from
// the constructors above rather than holding mutable Options values, so a
// caller mutating the Options it gets back can never corrupt a later
// GetPreset call.
var presetRegistry = map[string]func() Options{
	"conservative": Conservative,
	"comprehensive": Comprehensive,
}

// GetPreset returns a fresh copy of the named preset's Options, and false
// if name isn't registered.
func GetPreset(name string) (Options, bool) {
	ctor, ok := presetRegistry[name]
	if !ok {
		return Options{}, false
	}
	return ctor(), true
}

// GetPresetNames returns the registered preset names.
func GetPresetNames() []string {
	names := make([]string, 0, len(presetRegistry))
	for n := range presetRegistry {
		names = append(names, n)
	}
	return names
}
