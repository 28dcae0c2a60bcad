package subminify

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/beevik/etree"
)

// DefaultSVG minifies an <svg>...</svg> (or <math>...</math>) island's
// inner markup by round-tripping it through an XML tree: self-closing
// elements are re-serialised in
// their canonical form, and numeric attributes (path data, coordinates,
// lengths) have their decimal values trimmed of trailing zeroes and
// redundant separating space. Anything that doesn't parse as well-formed
// XML (stray ampersands, unclosed tags a lenient HTML parser tolerated)
// is returned unchanged rather than dropped, since this callback only
// ever runs when the caller opted into MinifySVG and a parse failure
// here must never lose content.
func DefaultSVG(ctx context.Context, text string, hint Hint) (string, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.Permissive = true
	if err := doc.ReadFromString("<root>" + text + "</root>"); err != nil {
		return text, nil
	}
	if verifyWellFormed(doc.Root()) != nil {
		return text, nil
	}

	for _, el := range doc.Root().FindElements(".//*") {
		trimNumericAttrs(el)
	}

	doc.WriteSettings.CanonicalText = false
	doc.WriteSettings.CanonicalAttrVal = false
	doc.Indent(etree.NoIndent)

	out, err := doc.WriteToString()
	if err != nil {
		return text, nil
	}
	return stripRootWrapper(out), nil
}

// pathDataAttrs holds the attributes whose value is a path-command
// string (a sequence of letter commands followed by coordinates), as
// opposed to a bare number list.
var pathDataAttrs = map[string]bool{"d": true, "points": true}

// plainNumberAttrs holds attributes whose value is itself a single
// number or a list of numbers with no command letters.
var plainNumberAttrs = map[string]bool{
	"viewBox": true, "cx": true, "cy": true, "r": true, "rx": true, "ry": true,
	"x": true, "y": true, "x1": true, "y1": true, "x2": true, "y2": true,
	"width": true, "height": true, "offset": true,
	"stroke-width": true, "font-size": true,
}

func trimNumericAttrs(el *etree.Element) {
	for i, a := range el.Attr {
		switch {
		case pathDataAttrs[a.Key]:
			el.Attr[i].Value = trimPathData(a.Value)
		case plainNumberAttrs[a.Key]:
			el.Attr[i].Value = trimNumbers(a.Value)
		}
	}
}

var decimalRe = regexp.MustCompile(`-?\d+\.\d+`)

// trimNumbers rewrites every decimal number in s to its shortest
// equivalent representation (0.000 -> 0, 0.9000 -> 0.9).
func trimNumbers(s string) string {
	return decimalRe.ReplaceAllStringFunc(s, func(n string) string {
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return n
		}
		return strconv.FormatFloat(f, 'f', -1, 64)
	})
}

var pathCommandSpaceRe = regexp.MustCompile(`([MmLlHhVvCcSsQqTtAaZz])\s+`)

// trimPathData trims decimal numbers in a path/points value and drops
// the space a command letter doesn't need before its first coordinate
// (the letter itself already delimits where the number starts).
func trimPathData(s string) string {
	s = trimNumbers(s)
	return pathCommandSpaceRe.ReplaceAllString(s, "$1")
}

// verifyWellFormed is a conservative safety check: it refuses to trust a
// tree containing processing instructions or directives, which a real
// SVG minifier could mishandle.
func verifyWellFormed(root *etree.Element) error {
	if root == nil {
		return fmt.Errorf("empty document")
	}
	for _, child := range root.Child {
		switch c := child.(type) {
		case *etree.Directive:
			return fmt.Errorf("unexpected directive")
		case *etree.ProcInst:
			return fmt.Errorf("unexpected processing instruction")
		case *etree.Element:
			if err := verifyWellFormed(c); err != nil {
				return err
			}
		}
	}
	return nil
}

func stripRootWrapper(s string) string {
	const open, close = "<root>", "</root>"
	if len(s) >= len(open)+len(close) && s[:len(open)] == open && s[len(s)-len(close):] == close {
		return s[len(open) : len(s)-len(close)]
	}
	return s
}
