package subminify

import (
	"context"

	"github.com/nlnwa/whatwg-url/url"
)

var urlParser = url.NewParser(url.WithPercentEncodeSinglePercentSign())

// DefaultURL canonicalises text as a URL reference with the WHATWG URL
// parser: it lower-cases the scheme/host, removes a default port, and
// percent-encodes what needs encoding, all of which are safe, semantics-
// preserving rewrites. Values that don't parse as a URL at all (template
// placeholders, relative fragments the parser rejects) are returned
// unchanged rather than erroring, since a URL attribute can legitimately
// hold non-URL template syntax the core has already protected with a
// fragment placeholder.
func DefaultURL(ctx context.Context, text string, hint Hint) (string, error) {
	u, err := urlParser.Parse(text)
	if err != nil {
		return text, nil
	}
	return u.Href(false), nil
}
