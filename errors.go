package minify

import (
	"fmt"

	"github.com/aurorahtml/minify/internal/htmltok"
)

// ParseError reports malformed markup. It is a type alias for the
// tokenizer's own error type so that errors.As works whether the caller
// imports minify or (for tooling that embeds the tokenizer directly)
// internal/htmltok.
type ParseError = htmltok.ParseError

// InputTooLarge is returned before any output is produced when the input
// exceeds Options.MaxInputLength.
type InputTooLarge struct {
	Length, Max int
}

func (e *InputTooLarge) Error() string {
	return fmt.Sprintf("input length %d exceeds MaxInputLength %d", e.Length, e.Max)
}

// MinifyError wraps a failure from a sub-minifier callback (CSS/JS/URL/
// SVG). It is surfaced to the caller only when
// Options.ContinueOnMinifyError is false; otherwise it is routed through
// Options.Log and the original fragment is kept verbatim.
type MinifyError struct {
	Kind string // "css", "js", "url", "svg"
	Err  error
}

func (e *MinifyError) Error() string {
	return fmt.Sprintf("minify %s: %v", e.Kind, e.Err)
}

func (e *MinifyError) Unwrap() error { return e.Err }

// ConfigError reports an invalid Options value, detected at call entry
// before any parsing happens. An unknown preset name is not an error:
// GetPreset reports it through its boolean result.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "minify: " + e.Msg }
