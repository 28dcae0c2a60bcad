package htmltok

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func tokenNames(toks []Token, typ Type) []string {
	var names []string
	for _, tok := range toks {
		if tok.Type == typ {
			names = append(names, tok.Name)
		}
	}
	return names
}

func TestTokenizer_ImplicitClose(t *testing.T) {
	toks, err := New(`<p>a<p>b`, Options{}).All()
	require.NoError(t, err)

	var autoClosed int
	for _, tok := range toks {
		if tok.Type == EndTagToken && tok.Name == "p" && tok.AutoGenerated {
			autoClosed++
		}
	}
	// The second <p> implies a close of the first, and the end of input
	// closes the second: both ends are synthesized.
	require.Equal(t, 2, autoClosed)
}

func TestTokenizer_VoidElementsNeverStacked(t *testing.T) {
	toks, err := New(`<br><img src="x">`, Options{}).All()
	require.NoError(t, err)
	require.Empty(t, tokenNames(toks, EndTagToken))
}

func TestTokenizer_RawTextIsNotScanned(t *testing.T) {
	toks, err := New(`<script>var x = "<p>";</script>`, Options{}).All()
	require.NoError(t, err)

	var text string
	for _, tok := range toks {
		if tok.Type == TextToken {
			text = tok.Text
		}
	}
	require.Equal(t, `var x = "<p>";`, text)
}

func TestTokenizer_EscapableRawTextKeepsNestedMarkupAsText(t *testing.T) {
	toks, err := New(`<textarea><div>nested</div></textarea>`, Options{}).All()
	require.NoError(t, err)

	want := []Token{
		{Type: StartTagToken, Name: "textarea"},
		{Type: TextToken, Text: "<div>nested</div>", PrevTag: "textarea"},
		{Type: EndTagToken, Name: "textarea"},
	}
	if diff := cmp.Diff(want, toks); diff != "" {
		t.Fatalf("token stream mismatch (-want +got):\n%s", diff)
	}
}

func TestTokenizer_ForeignContentKeepsCase(t *testing.T) {
	toks, err := New(`<svg viewBox="0 0 1 1"><linearGradient></linearGradient></svg>`, Options{}).All()
	require.NoError(t, err)

	var sawAttr, sawElem bool
	for _, tok := range toks {
		if tok.Type == StartTagToken {
			if tok.Name == "linearGradient" {
				sawElem = true
			}
			for _, a := range tok.Attr {
				if a.Name == "viewBox" {
					sawAttr = true
				}
			}
		}
	}
	require.True(t, sawAttr, "expected viewBox attribute name to keep its case")
	require.True(t, sawElem, "expected linearGradient element name to keep its case")
}

func TestTokenizer_OutsideForeignContentIsLowercased(t *testing.T) {
	toks, err := New(`<DIV CLASS="a"></DIV>`, Options{}).All()
	require.NoError(t, err)

	var sawName bool
	for _, tok := range toks {
		if tok.Type == StartTagToken {
			require.Equal(t, "div", tok.Name)
			sawName = true
			for _, a := range tok.Attr {
				require.Equal(t, "class", a.Name)
			}
		}
	}
	require.True(t, sawName)
}

func TestTokenizer_NextTagLookahead(t *testing.T) {
	toks, err := New(`x<p>y</p>`, Options{WantsNextTag: true}).All()
	require.NoError(t, err)

	for _, tok := range toks {
		if tok.Type == TextToken && tok.Text == "x" {
			require.Equal(t, "p", tok.NextTag)
		}
	}
}
