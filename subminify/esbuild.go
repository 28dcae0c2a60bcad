package subminify

import (
	"context"
	"fmt"
	"strings"

	esbuild "github.com/evanw/esbuild/pkg/api"
)

// DefaultJS minifies text as JavaScript with esbuild's Transform API,
// always targeting ES2018. The hint is not consulted: an inline
// event-handler body is transformed exactly like a full script.
func DefaultJS(ctx context.Context, text string, hint Hint) (string, error) {
	loader := esbuild.LoaderJS
	result := esbuild.Transform(text, esbuild.TransformOptions{
		Loader:            loader,
		MinifyWhitespace:  true,
		MinifyIdentifiers: true,
		MinifySyntax:      true,
		Target:            esbuild.ES2018,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("esbuild js: %s", formatMessages(result.Errors))
	}
	return strings.TrimSuffix(string(result.Code), "\n"), nil
}

// DefaultCSS minifies text as CSS with esbuild's Transform API, with
// whitespace and syntax minification on. The hint is not consulted: an
// inline style attribute or a media-query list is transformed as if it
// were a whole stylesheet.
func DefaultCSS(ctx context.Context, text string, hint Hint) (string, error) {
	result := esbuild.Transform(text, esbuild.TransformOptions{
		Loader:           esbuild.LoaderCSS,
		MinifyWhitespace: true,
		MinifySyntax:     true,
	})
	if len(result.Errors) > 0 {
		return "", fmt.Errorf("esbuild css: %s", formatMessages(result.Errors))
	}
	return strings.TrimSuffix(string(result.Code), "\n"), nil
}

func formatMessages(msgs []esbuild.Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(m.Text)
	}
	return b.String()
}
