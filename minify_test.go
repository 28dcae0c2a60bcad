package minify

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMinify_CollapseWhitespaceAndComments(t *testing.T) {
	o := DefaultOptions()
	o.CollapseWhitespace = true
	o.RemoveComments = true

	in := `<html>
		<body>
			<!-- drop me -->
			<p>  hello   world  </p>
		</body>
	</html>`

	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.NotContains(t, out, "<!--")
	require.Contains(t, out, "hello world")
}

func TestMinify_RemoveOptionalTags(t *testing.T) {
	o := DefaultOptions()
	o.RemoveOptionalTags = true
	o.CollapseWhitespace = true

	in := `<html><head><title>x</title></head><body><p>a<p>b</body></html>`
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.NotContains(t, out, "<html>")
	require.NotContains(t, out, "</p>")
}

func TestMinify_BodyKeptBeforeMeta(t *testing.T) {
	o := DefaultOptions()
	o.RemoveOptionalTags = true

	in := `<html><head></head><body><meta charset="utf-8"></body></html>`
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Contains(t, out, "<body>")
	require.Contains(t, out, "<meta")
}

func TestMinify_BodyKeptBeforeText(t *testing.T) {
	o := DefaultOptions()
	o.RemoveOptionalTags = true

	in := `<html><head></head><body>hello</body></html>`
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Contains(t, out, "<body>")
}

func TestMinify_AttributeOrderPreservedWithoutSort(t *testing.T) {
	o := DefaultOptions()

	in := `<div id="x" class="y" data-foo="z"></div>`
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Equal(t, in, out)
}

func TestMinify_SortAttributes(t *testing.T) {
	o := DefaultOptions()
	o.SortAttributes = true

	// The first two tags teach the Sort Analyser that "class" precedes
	// "id" on div; the third tag starts out in the opposite order and
	// must come out reordered to match, with its attribute values
	// carried along with their own names.
	in := `<div class="a" id="x"></div><div class="a" id="x"></div><div id="y" class="b"></div>`
	want := `<div class="a" id="x"></div><div class="a" id="x"></div><div class="b" id="y"></div>`

	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Equal(t, want, out)
}

func TestMinify_MaxInputLength(t *testing.T) {
	o := DefaultOptions()
	o.MaxInputLength = 4
	_, err := Minify("<p>too long</p>", &o)
	require.Error(t, err)
	var tooLarge *InputTooLarge
	require.ErrorAs(t, err, &tooLarge)
}

func TestMinify_IgnoreRegionPreserved(t *testing.T) {
	o := DefaultOptions()
	o.CollapseWhitespace = true

	in := "<p>  a  </p><!-- htmlmin:ignore -->  keep   spacing  <!-- htmlmin:ignore -->"
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Contains(t, out, "  keep   spacing  ")
}

func TestMinify_SVGAttributesPreserveCase(t *testing.T) {
	o := DefaultOptions()

	in := `<svg viewBox="0 0 10 10"><rect width="5"/></svg>`
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Contains(t, out, "viewBox")
}

func TestMinify_SVGPathDataTrimmed(t *testing.T) {
	o := DefaultOptions()
	o.MinifySVG = true

	in := `<svg><path d="M 0.000 0.000"/></svg>`
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Contains(t, out, `d="M0 0"`)
}

func TestMinify_SVGUntouchedWhenMinifySVGDisabled(t *testing.T) {
	o := DefaultOptions()

	in := `<svg><path d="M 0.000 0.000"/></svg>`
	out, err := Minify(in, &o)
	require.NoError(t, err)
	require.Contains(t, out, `d="M 0.000 0.000"`)
}

func TestMinify_NilOptionsUsesDefaults(t *testing.T) {
	out, err := Minify("<p>hi</p>", nil)
	require.NoError(t, err)
	require.Contains(t, out, "hi")
}

func TestGetPreset(t *testing.T) {
	o, ok := GetPreset("comprehensive")
	require.True(t, ok)
	require.True(t, o.CollapseWhitespace)

	_, ok = GetPreset("nonexistent")
	require.False(t, ok)
}
